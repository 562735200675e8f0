package ingest

import "strings"

type OutcomeKind int

const (
	// Resolved rows were written.
	Resolved OutcomeKind = iota
	// Skipped rows had nothing to do: a blank key column or an unresolvable period on confirm.
	Skipped
	// Invalid rows need a human to fix them.
	Invalid
)

func (k OutcomeKind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case Skipped:
		return "skipped"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Outcome is the result of processing one row or aggregate. Persistence
// failures are not outcomes; they are returned as errors and abort the commit.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
	Errors []string
}

func resolved() Outcome {
	return Outcome{Kind: Resolved}
}

func skipped(reason string) Outcome {
	return Outcome{Kind: Skipped, Reason: reason}
}

func invalid(errs ...error) Outcome {
	o := Outcome{Kind: Invalid}
	for _, err := range errs {
		o.Errors = append(o.Errors, err.Error())
	}
	o.Reason = strings.Join(o.Errors, "; ")
	return o
}
