package installer

import "fmt"

// Error reports a failed step of the runtime installation
type Error struct {
	Step string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("server install failed during %s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
