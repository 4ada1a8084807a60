package service

import (
	"errors"
	"fmt"
)

// InputError marks a client-input problem: the message is safe to return to
// the caller, nothing was mutated, and the request should map to a 4xx.
// Everything else coming out of the services is a server fault and must be
// reported generically.
type InputError struct {
	msg string
}

func inputErrorf(format string, args ...interface{}) *InputError {
	return &InputError{msg: fmt.Sprintf(format, args...)}
}

func (e *InputError) Error() string {
	return e.msg
}

// IsInputError reports whether err (or anything it wraps) is a client-input
// error.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
