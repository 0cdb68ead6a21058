package mediator

import (
	"context"
	"reflect"

	"teamspace/result"
)

type request interface {
	isRequest()
}

// Request is a command or query whose handler answers with a result.Result[R].
// Concrete request types embed Returns[R].
type Request[R any] interface {
	request
	returns() R
}

// Returns marks the embedding struct as a request answered by a value of type R.
type Returns[R any] struct{}

func (Returns[R]) isRequest() {}

func (Returns[R]) returns() R {
	var zero R
	return zero
}

// HandlerFunc is the single handler of a request type.
type HandlerFunc[Q Request[R], R any] func(ctx context.Context, req Q) result.Result[R]

// Response is what behaviors see of a result.Result once its type parameter is erased.
type Response interface {
	IsSuccess() bool
	Err() error
}

// Call describes the dispatch in progress. Behaviors must treat it as read-only.
type Call struct {
	Request      any
	RequestName  string
	ResponseName string
}

type route struct {
	requestName  string
	responseName string
	handle       func(ctx context.Context, req any) Response
}

func typeName(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
