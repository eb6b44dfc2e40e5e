package pipeline

import (
	"errors"
	"fmt"
)

// ErrIO indicates a disk write or copy failed mid-run.
var ErrIO = errors.New("io failure")

// PartialError wraps the error that aborted a run partway through,
// carrying the list of files that were already written and have since
// been cleaned up.
type PartialError struct {
	Err     error
	Cleaned []string
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("pipeline aborted after %d file(s), all cleaned up: %v", len(e.Cleaned), e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}
