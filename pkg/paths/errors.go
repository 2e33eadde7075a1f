package paths

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPattern is returned when a pattern is empty or does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrPathNotFound is returned when a subpath does not lead to an existing node.
	ErrPathNotFound = errors.New("path not found")
)

// InsertError reports a skipped insertion. The tree is left unchanged.
type InsertError struct {
	Pattern string
	Subpath []string
	Err     error
}

func (e *InsertError) Error() string {
	if len(e.Subpath) == 0 {
		return fmt.Sprintf("insert %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("insert %q at [%s]: %v", e.Pattern, strings.Join(e.Subpath, " > "), e.Err)
}

func (e *InsertError) Unwrap() error {
	return e.Err
}
