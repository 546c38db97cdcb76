package svgraster

import (
	"errors"
	"fmt"
)

// Kind classifies a rasterization failure.
type Kind uint8

const (
	// ParseError is returned when the source is not a valid SVG document.
	ParseError Kind = iota + 1
	// AllocationError is returned when a pixel surface can't be created,
	// because its dimensions are degenerate or too large.
	AllocationError
	// RenderError is returned when the rasterizer could not complete.
	RenderError
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case AllocationError:
		return "AllocationError"
	case RenderError:
		return "RenderError"
	default:
		return "<unknown Kind>"
	}
}

// ErrRasterization matches every *Error with errors.Is.
var ErrRasterization = errors.New("svg rasterization failed")

// Error is the single error type returned by Rasterize.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("svgraster: %s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrRasterization }

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// IsKind reports whether err wraps a rasterization error of the given kind.
func IsKind(err error, kind Kind) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}
