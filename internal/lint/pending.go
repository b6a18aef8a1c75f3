package lint

import "fmt"

// Rule ids reported when the pending list itself is stale.
const (
	RuleInvalidPendingModule     = "invalid-pending-module"
	RuleInvalidPendingModuleRule = "invalid-pending-module-rule"
)

// applyPending suppresses failures that the config marks as pending for the
// module and reports pending entries that no longer fail.
func (l *TemplateLinter) applyPending(opts Options, msgs []Message) []Message {
	pm, ok := l.pending[opts.ModuleID]
	if !ok {
		return msgs
	}

	if len(pm.Only) == 0 {
		if len(msgs) > 0 {
			return nil
		}
		return []Message{l.pendingMessage(opts, RuleInvalidPendingModule,
			fmt.Sprintf("Pending module (`%s`) passes all rules. Please remove `%s` from pending list.", pm.ModuleID, pm.ModuleID))}
	}

	pendingRules := make(map[string]bool, len(pm.Only))
	for _, r := range pm.Only {
		pendingRules[r] = true
	}

	failing := make(map[string]bool)
	var kept []Message
	for _, m := range msgs {
		if pendingRules[m.Rule] {
			failing[m.Rule] = true
			continue
		}
		kept = append(kept, m)
	}

	for _, r := range pm.Only {
		if failing[r] {
			continue
		}
		kept = append(kept, l.pendingMessage(opts, RuleInvalidPendingModuleRule,
			fmt.Sprintf("Pending module (`%s`) passes `%s` rule. Please remove `%s` from pending list.", pm.ModuleID, r, r)))
	}
	return kept
}

func (l *TemplateLinter) pendingMessage(opts Options, rule, text string) Message {
	return Message{
		Rule:     rule,
		Severity: SeverityError,
		FilePath: opts.FilePath,
		ModuleID: opts.ModuleID,
		Line:     1,
		Column:   0,
		Message:  text,
	}
}
