package loader

import (
	"errors"
	"fmt"
)

// Sentinel errors classify load failures; test with errors.Is.
var (
	ErrIO                = errors.New("i/o error")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrParse             = errors.New("parse error")
	ErrFileTooLarge      = errors.New("file too large")
	ErrTooManyRows       = errors.New("too many rows")
)

// LoadError records which step of loading which file failed.
type LoadError struct {
	Path string
	Op   string
	Kind error
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the sentinel kind and the underlying cause.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(path, op string, kind, err error) *LoadError {
	return &LoadError{Path: path, Op: op, Kind: kind, Err: err}
}
