package xhreq

import (
	"context"

	"github.com/HexmosTech/xhreq/exchange"
	"github.com/HexmosTech/xhreq/input"
)

var defaultDispatcher = exchange.NewDispatcher(context.Background(), &exchange.Options{})

// Request sends the request described by d and returns its pending result.
// The future resolves with the response for a 2xx status and rejects with
// an *exchange.Error otherwise.
func Request(d *input.Descriptor) *exchange.Future {
	return defaultDispatcher.Dispatch(d)
}
