package exchange

import (
	"net/http"
)

// ResponseType selects how a transport parses the response body.
type ResponseType string

const (
	ResponseTypeDefault     ResponseType = ""
	ResponseTypeText        ResponseType = "text"
	ResponseTypeJSON        ResponseType = "json"
	ResponseTypeArrayBuffer ResponseType = "arraybuffer"
	ResponseTypeBlob        ResponseType = "blob"
	ResponseTypeDocument    ResponseType = "document"
)

func knownResponseType(rt ResponseType) bool {
	switch rt {
	case ResponseTypeDefault, ResponseTypeText, ResponseTypeJSON,
		ResponseTypeArrayBuffer, ResponseTypeBlob, ResponseTypeDocument:
		return true
	default:
		return false
	}
}

// Event is what a transport reports when it reaches a terminal state.
type Event struct {
	Status   int
	Header   http.Header
	Response interface{}
}

// Handlers receive the terminal event of a transport.
// A transport calls exactly one of them, at most once.
type Handlers struct {
	OnAbort   func(Event)
	OnError   func(Event)
	OnTimeout func(Event)
	OnLoad    func(Event)
}

// Transport performs one network exchange. It is created per request and
// never reused.
//
// Open must be called before SetRequestHeader. Send starts the exchange
// and returns without waiting for it; the outcome is delivered through
// Handlers.
type Transport interface {
	Open(method, url string) error
	SetRequestHeader(name, value string) error
	SetResponseType(t ResponseType) error
	SetHandlers(h Handlers)
	Send(body interface{}) error
}
