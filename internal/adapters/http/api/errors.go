package api

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrGeneration      = errors.New("Failed to generate practice plan") //nolint:stylecheck // returned to callers verbatim
)

// KindError tags an underlying error with the operation and kind that
// produced it.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Is reports whether target is the error kind.
func (e *KindError) Is(target error) bool {
	return target == e.Kind
}

func (e *KindError) Unwrap() error {
	return e.Err
}

// WrapKind wraps err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// NewKind returns a KindError with no underlying cause.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

// publicMessage is the text returned to callers: the underlying cause when
// it has a non-blank message, otherwise the kind.
func publicMessage(err error) string {
	if err == nil {
		return ""
	}
	var ke *KindError
	if errors.As(err, &ke) {
		if ke.Err != nil && strings.TrimSpace(ke.Err.Error()) != "" {
			return ke.Err.Error()
		}
		return ke.Kind.Error()
	}
	return err.Error()
}
