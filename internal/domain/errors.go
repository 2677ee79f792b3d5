package domain

import (
	"errors"
	"fmt"
)

// Reading error types

var (
	// ErrDataLoad indicates the card dataset is missing or malformed
	ErrDataLoad = errors.New("card data load failed")

	// ErrDeckExhausted indicates no undrawn cards remain for the session
	ErrDeckExhausted = errors.New("deck exhausted")

	// ErrSessionFull indicates the whole spread is already drawn
	ErrSessionFull = errors.New("all five cards have already been drawn")

	// ErrInvalidIndex indicates a card index outside the drawn range
	ErrInvalidIndex = errors.New("invalid card index")

	// ErrInvalidRequest indicates an insufficient or malformed request
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInterpretationFailed indicates the model could not produce an interpretation
	ErrInterpretationFailed = errors.New("interpretation failed")

	// ErrSessionNotFound indicates no live session exists for the identifier
	ErrSessionNotFound = errors.New("session not found")
)

// LM Studio error types

var (
	// ErrLMStudioUnavailable indicates the LM Studio service is unavailable
	ErrLMStudioUnavailable = errors.New("lm studio service unavailable")

	// ErrLMStudioTimeout indicates a request to LM Studio timed out
	ErrLMStudioTimeout = errors.New("lm studio request timeout")
)

// InterpretationFailedError wraps a model or transport failure.
// It matches ErrInterpretationFailed and unwraps to the original cause.
type InterpretationFailedError struct {
	Kind  InterpretationKind
	Cause error
}

func (e *InterpretationFailedError) Error() string {
	return fmt.Sprintf("%s interpretation failed: %v", e.Kind, e.Cause)
}

func (e *InterpretationFailedError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrInterpretationFailed) match
func (e *InterpretationFailedError) Is(target error) bool {
	return target == ErrInterpretationFailed
}
