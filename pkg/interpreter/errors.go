package interpreter

import (
	"errors"
	"fmt"
)

var (
	ErrUnboundIdentifier = errors.New("unbound identifier")
	ErrNotApplicable     = errors.New("value is not applicable")
	ErrTupleIndex        = errors.New("tuple index out of range")
	ErrTypeMismatch      = errors.New("operand type mismatch")
	ErrBuiltinType       = errors.New("builtin argument type error")
	ErrArithmetic        = errors.New("arithmetic error")
	ErrStepLimit         = errors.New("step limit exceeded")
)

// RuntimeError is an evaluation failure. Kind is one of the Err sentinels
// above; Subject names the identifier, operator or builtin involved.
type RuntimeError struct {
	Kind    error
	Subject string
	Message string
}

func (e *RuntimeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("runtime error: %v: %s", e.Kind, e.Subject)
	}
	return "runtime error: " + e.Message
}

func (e *RuntimeError) Unwrap() error {
	return e.Kind
}

func runtimeErrorf(kind error, subject, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)}
}
