package pathmatch

import "fmt"

// InvalidPatternError reports a malformed pattern argument list. Position is
// the index of the offending argument, or -1 when the whole list is at
// fault.
type InvalidPatternError struct {
	Position int
	Reason   string
}

func (e *InvalidPatternError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("invalid pattern: %s", e.Reason)
	}
	return fmt.Sprintf("invalid pattern: argument %d: %s", e.Position, e.Reason)
}
