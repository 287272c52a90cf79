package exchange

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

type Kind int

const (
	UnexpectedError Kind = iota
	ValidationError
	AbortedError
	NetworkError
	TimeoutError
	HTTPStatusError
)

const (
	msgEmptyURI    = "The value for the uri option can't be empty."
	msgAborted     = "The request to the server has been aborted."
	msgNetwork     = "The request to the server ended unexpectedly."
	msgTimeout     = "The request exceeded the maximum waiting time without receiving a response."
	msgErrorStatus = "The request has ended with an error status response."
)

func (k Kind) String() string {
	switch k {
	case ValidationError:
		return "ValidationError"
	case AbortedError:
		return "AbortedError"
	case NetworkError:
		return "NetworkError"
	case TimeoutError:
		return "TimeoutError"
	case HTTPStatusError:
		return "HTTPStatusError"
	default:
		return "UnexpectedError"
	}
}

// Error is the rejection value of a dispatched request.
type Error struct {
	Kind   Kind
	Status int

	// Fields holds the members of a structured error response body.
	Fields map[string]interface{}

	cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ValidationError:
		return msgEmptyURI
	case AbortedError:
		return msgAborted
	case NetworkError:
		return msgNetwork
	case TimeoutError:
		return msgTimeout
	case HTTPStatusError:
		return msgErrorStatus
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return "unexpected error"
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') && e.cause != nil {
		fmt.Fprintf(s, "%+v", e.cause)
		return
	}
	fmt.Fprint(s, e.Error())
}

// Get looks up a property of the error. Body fields shadow "status",
// the same way they overwrite it when copied onto the error.
func (e *Error) Get(name string) (interface{}, bool) {
	if v, ok := e.Fields[name]; ok {
		return v, true
	}
	if name == "status" {
		return e.Status, true
	}
	return nil, false
}

// Properties returns the status code merged with the body fields.
func (e *Error) Properties() map[string]interface{} {
	props := map[string]interface{}{"status": e.Status}
	for k, v := range e.Fields {
		props[k] = v
	}
	return props
}

func newValidationError() error {
	return errors.WithStack(&Error{Kind: ValidationError})
}

func newTransportError(kind Kind, ev Event) error {
	return errors.WithStack(&Error{Kind: kind, Status: ev.Status})
}

func newStatusError(ev Event) error {
	e := &Error{Kind: HTTPStatusError, Status: ev.Status}
	switch body := ev.Response.(type) {
	case map[string]interface{}:
		e.Fields = body
	case []interface{}:
		// array members are keyed by index
		e.Fields = make(map[string]interface{}, len(body))
		for i, v := range body {
			e.Fields[strconv.Itoa(i)] = v
		}
	}
	return errors.WithStack(e)
}

func newUnexpectedError(cause error) error {
	return &Error{Kind: UnexpectedError, cause: cause}
}

// KindOf reports the kind of a dispatch error. Errors that did not come
// from a dispatch are UnexpectedError.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return UnexpectedError
}

// StatusOf returns the status code carried by a dispatch error.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
