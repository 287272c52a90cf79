package exchange

import (
	"context"
	"net/http"
	"sync"

	"github.com/pkg/errors"
)

// Response is the value a successful dispatch resolves with.
// Value is the body parsed according to the response type.
type Response struct {
	Status int
	Header http.Header
	Value  interface{}
}

// Future is the pending result of one dispatch. It settles exactly once;
// later settlements are ignored.
type Future struct {
	once sync.Once
	done chan struct{}
	resp *Response
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(resp *Response) bool {
	return f.settle(resp, nil)
}

func (f *Future) reject(err error) bool {
	return f.settle(nil, err)
}

func (f *Future) settle(resp *Response, err error) bool {
	settled := false
	f.once.Do(func() {
		f.resp = resp
		f.err = err
		settled = true
		close(f.done)
	})
	return settled
}

// Done is closed once the future has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has been resolved or rejected.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future settles or ctx is done. Giving up on ctx
// does not cancel the request.
func (f *Future) Await(ctx context.Context) (*Response, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "waiting for response")
	}
}
