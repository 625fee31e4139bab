package plan

import "errors"

// Sentinel errors for plan generation.
var (
	ErrGeneration   = errors.New("plan generation failed")
	ErrNoGenerator  = errors.New("no generator configured")
	ErrNoCurriculum = errors.New("no curriculum configured")
)

// GenerationError is a collaborator failure. It matches ErrGeneration and
// reads as the collaborator's own message, which may be empty.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Is reports whether target is ErrGeneration.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
