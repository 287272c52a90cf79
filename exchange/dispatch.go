package exchange

import (
	"context"

	"github.com/HexmosTech/xhreq/input"
	"github.com/apex/log"
	"github.com/pkg/errors"
)

// Dispatcher turns descriptors into transport calls. Every Dispatch
// creates its own transport.
type Dispatcher struct {
	NewTransport func() (Transport, error)
	Logger       log.Interface
}

// NewDispatcher returns a dispatcher backed by HTTPTransport. All of its
// transports share one HTTP client. Cancelling ctx aborts every request
// still in flight.
func NewDispatcher(ctx context.Context, options *Options) *Dispatcher {
	client, err := BuildHTTPClient(options)
	return &Dispatcher{
		NewTransport: func() (Transport, error) {
			if err != nil {
				return nil, err
			}
			return newHTTPTransport(ctx, client, options), nil
		},
		Logger: log.Log,
	}
}

// Dispatch starts the request described by d and returns its pending
// result. It never panics and never blocks on the network: every failure,
// including an invalid descriptor, is delivered through the Future.
//
// A descriptor without URI is rejected before any transport is created.
func (dp *Dispatcher) Dispatch(d *input.Descriptor) *Future {
	future := newFuture()
	if d == nil || d.URI == "" {
		future.reject(newValidationError())
		return future
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				future.reject(newUnexpectedError(errors.Errorf("panic while building request: %v", r)))
			}
		}()
		if err := dp.start(d, future); err != nil {
			future.reject(newUnexpectedError(err))
		}
	}()
	return future
}

func (dp *Dispatcher) start(d *input.Descriptor, future *Future) error {
	opts := input.Merge(input.Defaults(), *d)

	target, err := BuildURL(&opts)
	if err != nil {
		return err
	}
	logger := dp.logger().WithFields(log.Fields{
		"method": opts.Method,
		"url":    target,
	})

	tr, err := dp.NewTransport()
	if err != nil {
		return errors.Wrap(err, "creating transport")
	}
	if err := tr.Open(opts.Method, target); err != nil {
		return err
	}

	if err := resolveBody(&opts); err != nil {
		return err
	}
	for _, field := range opts.Header {
		value, err := stringify(field.Value)
		if err != nil {
			return errors.Wrapf(err, "header '%s'", field.Name)
		}
		if err := tr.SetRequestHeader(field.Name, value); err != nil {
			return err
		}
	}

	if rt, ok := responseType(&opts); ok {
		if err := tr.SetResponseType(rt); err != nil {
			return err
		}
	}

	tr.SetHandlers(Handlers{
		OnAbort: func(ev Event) {
			logger.WithField("status", ev.Status).Debug("request aborted")
			future.reject(newTransportError(AbortedError, ev))
		},
		OnError: func(ev Event) {
			logger.WithField("status", ev.Status).Debug("request failed")
			future.reject(newTransportError(NetworkError, ev))
		},
		OnTimeout: func(ev Event) {
			logger.WithField("status", ev.Status).Debug("request timed out")
			future.reject(newTransportError(TimeoutError, ev))
		},
		OnLoad: func(ev Event) {
			logger.WithField("status", ev.Status).Debug("request completed")
			if ev.Status >= 200 && ev.Status < 300 {
				future.resolve(&Response{Status: ev.Status, Header: ev.Header, Value: ev.Response})
				return
			}
			future.reject(newStatusError(ev))
		},
	})

	logger.Debug("sending request")
	return tr.Send(opts.Body)
}

func (dp *Dispatcher) logger() log.Interface {
	if dp.Logger == nil {
		return log.Log
	}
	return dp.Logger
}

