package model

import (
	"errors"
	"fmt"
)

var (
	ErrModelNotFound      = errors.New("model file not found")
	ErrInvalidInputLength = errors.New("invalid input length")
	ErrUnsupportedDevice  = errors.New("unsupported device")
	ErrUnexpectedOutput   = errors.New("unexpected model output")
)

// InputLengthError reports a flat input whose length does not match the
// model input shape.
type InputLengthError struct {
	Expected int
	Got      int
}

func (e *InputLengthError) Error() string {
	return fmt.Sprintf("expected %d values, got %d", e.Expected, e.Got)
}

func (e *InputLengthError) Is(target error) bool {
	return target == ErrInvalidInputLength
}
