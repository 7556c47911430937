package universe

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownEngine = errors.New("unknown engine")
	ErrClosed        = errors.New("grid is closed")
)

//InvalidDimensionsError is returned when a grid is built with a non-positive side
type InvalidDimensionsError struct {
	Width  int
	Height int
}

func (e *InvalidDimensionsError) Error() string {
	return fmt.Sprintf("invalid grid dimensions %dx%d: both sides must be positive", e.Width, e.Height)
}

//MalformedRuleError is returned for rule strings not matching B<digits>/S<digits>
type MalformedRuleError struct {
	Rule   string
	Reason string
}

func (e *MalformedRuleError) Error() string {
	return fmt.Sprintf("malformed rule %q: %s", e.Rule, e.Reason)
}
