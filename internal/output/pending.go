package output

import (
	"encoding/json"
	"fmt"
	"io"

	"tmplint/internal/results"
)

// PendingHint precedes the manifest in plain (non-JSON) output.
const PendingHint = "Add the following to your lint config file to mark these files as pending."

// WritePending prints the pending manifest. In JSON mode only the indented
// array is written; otherwise a hint line and a "pending: " prefixed array.
func WritePending(w io.Writer, entries []results.PendingEntry, asJSON bool) error {
	if entries == nil {
		entries = []results.PendingEntry{}
	}

	if !asJSON {
		if _, err := fmt.Fprintf(w, "%s\n\n", PendingHint); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "pending: "); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return flushIfPossible(w)
}
