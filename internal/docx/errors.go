package docx

import (
	"errors"
	"fmt"
)

// ErrMissingBody means the archive has no main document part.
var ErrMissingBody = errors.New("main document part not found")

// ContainerError reports a failure to read or rebuild the .docx archive.
// Op is one of "open", "locate", "read", "parse", "serialize", "write".
type ContainerError struct {
	Op  string
	Err error
}

func (e *ContainerError) Error() string {
	return fmt.Sprintf("docx %s: %v", e.Op, e.Err)
}

func (e *ContainerError) Unwrap() error {
	return e.Err
}
