// Package result holds the success/failure value returned by every request handler.
package result

import (
	"fmt"

	stderrors "errors"
	"teamspace/errors"
)

// Result is either a success carrying a value or a failure carrying a cause.
// The zero Result is a failure without cause.
type Result[T any] struct {
	value T
	cause error
	ok    bool
}

func Success[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

func Failure[T any](reason string) Result[T] {
	return Result[T]{cause: stderrors.New(reason)}
}

func Failuref[T any](format string, args ...any) Result[T] {
	return Result[T]{cause: fmt.Errorf(format, args...)}
}

// FailureOf keeps err as the cause so callers can match error kinds with errors.Is.
func FailureOf[T any](err error) Result[T] {
	if err == nil {
		err = errors.ErrResultFailure
	}
	return Result[T]{cause: err}
}

func (r Result[T]) IsSuccess() bool { return r.ok }

func (r Result[T]) IsFailure() bool { return !r.ok }

// Value returns the success value and panics on a failure.
func (r Result[T]) Value() T {
	if !r.ok {
		panic(fmt.Errorf("%w: %s", errors.ErrResultFailure, r.Error()))
	}
	return r.value
}

func (r Result[T]) ValueOr(def T) T {
	if !r.ok {
		return def
	}
	return r.value
}

// Err returns nil on success.
func (r Result[T]) Err() error {
	if r.ok {
		return nil
	}
	if r.cause == nil {
		return errors.ErrResultFailure
	}
	return r.cause
}

func (r Result[T]) Error() string {
	if err := r.Err(); err != nil {
		return err.Error()
	}
	return ""
}

func (r Result[T]) String() string {
	if r.ok {
		return fmt.Sprintf("Success(%v)", r.value)
	}
	return fmt.Sprintf("Failure(%s)", r.Error())
}

// Map applies f to a success value. Failures pass through with their cause.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if !r.ok {
		return Result[U]{cause: r.Err()}
	}
	return Success(f(r.value))
}
