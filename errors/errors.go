package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSeparator separates an error's message from its wrapped cause.
const ErrSeparator = " -- "

// Error is a string based error type allowing packages to declare const errors.
type Error string

func (e Error) Error() string {
	return string(e)
}

// Is reports whether target carries the same message, directly or as a prefix
// of a wrapped chain.
func (e Error) Is(target error) bool {
	return e.Error() == target.Error() || strings.HasPrefix(target.Error(), e.Error()+ErrSeparator)
}

// Wrap attaches err as the cause of this Error.
func (e Error) Wrap(err error) error {
	return wrapped{msg: string(e), cause: err}
}

type wrapped struct {
	msg   string
	cause error
}

func (w wrapped) Error() string {
	if w.cause == nil {
		return w.msg
	}
	return fmt.Sprintf("%s%s%v", w.msg, ErrSeparator, w.cause)
}

func (w wrapped) Is(target error) bool {
	return Error(w.msg).Is(target)
}

func (w wrapped) Unwrap() error {
	return w.cause
}

// The remainder mirrors the stdlib errors package so callers only need one
// import.

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func New(message string) error {
	return errors.New(message)
}

func Join(errs ...error) error {
	return errors.Join(errs...)
}
