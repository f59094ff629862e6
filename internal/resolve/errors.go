package resolve

import "fmt"

// ResolutionError reports a failed metadata lookup. It is always fatal to
// the build.
type ResolutionError struct {
	ProjectID int
	FileID    int
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve project %d file %d: %v", e.ProjectID, e.FileID, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
