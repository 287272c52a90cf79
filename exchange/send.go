package exchange

import (
	"context"

	"github.com/HexmosTech/xhreq/input"
	"github.com/apex/log"
)

// Send dispatches d on a one-off HTTP transport and waits for the outcome.
// Cancelling ctx aborts the request.
func Send(ctx context.Context, d *input.Descriptor, options *Options) (*Response, error) {
	dp := &Dispatcher{
		NewTransport: func() (Transport, error) {
			return NewHTTPTransport(ctx, options)
		},
		Logger: log.Log,
	}
	return dp.Dispatch(d).Await(ctx)
}
