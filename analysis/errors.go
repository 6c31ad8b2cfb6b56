package analysis

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when the input path does not exist
	ErrNotFound = errors.New("path not found")
	// ErrNotAFile is returned when a file was expected but the path is something else
	ErrNotAFile = errors.New("not a regular file")
	// ErrNotADirectory is returned when a directory was expected
	ErrNotADirectory = errors.New("not a directory")
	// ErrEmptyFile is returned for zero-byte inputs
	ErrEmptyFile = errors.New("file is empty")
	// ErrNoValidRows is returned when every row of an expense file was rejected
	ErrNoValidRows = errors.New("no valid data rows after validation")
)

// MissingColumnsError reports required CSV columns absent from the header
type MissingColumnsError struct {
	Missing []string
	Found   []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s (found: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Found, ", "))
}
