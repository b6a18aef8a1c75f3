package output

import (
	"tmplint/internal/lint"
	"tmplint/internal/results"
)

// Event types written by the engine and by sinks that stream.
const (
	EventRunStarted  = "run.started"
	EventMessage     = "lint.message"
	EventRunFinished = "run.finished"
)

// Event is a lifecycle record for NDJSON streaming output.
//
// The engine writes run.started and run.finished around the results.Report;
// NDJSON sinks expand the report into one lint.message event per message.
type Event struct {
	Type string `json:"type"`
	*lint.Message
	Sources      int `json:"sources,omitempty"`
	ErrorCount   int `json:"errorCount,omitempty"`
	WarningCount int `json:"warningCount,omitempty"`
	ExitCode     int `json:"exit_code,omitempty"`
}

func eventsFromReport(r results.Report) []Event {
	var out []Event
	for _, f := range r.Files {
		for i := range f.Messages {
			m := f.Messages[i]
			out = append(out, Event{Type: EventMessage, Message: &m})
		}
	}
	return out
}
