package manifest

import "fmt"

// Error reports a manifest that is missing, malformed or incomplete.
// It is always fatal to the build.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
