package translate

import "fmt"

// Error reports a translation-time failure: the dynamic CBOR value did
// not match the graph at the given node (spec §4.5).
type Error struct {
	Rule    string
	Reason  string
	Attempts []error // aggregated failed-alternative messages for a UNION (spec §4.5)
}

func (e *Error) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("translate: %s: %s", e.Rule, e.Reason)
	}
	msg := fmt.Sprintf("translate: %s: %s (tried %d alternatives)", e.Rule, e.Reason, len(e.Attempts))
	for _, a := range e.Attempts {
		msg += "\n  - " + a.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error { return e.Attempts }
