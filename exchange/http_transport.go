package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/HexmosTech/xhreq/version"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/http/httpguts"
)

type readyState int

const (
	stateUnsent readyState = iota
	stateOpened
	stateSent
	stateDone
)

// HTTPTransport is a Transport on top of net/http that behaves like a
// browser request object: it is opened, configured, sent once, and reports
// one terminal event from a background goroutine.
type HTTPTransport struct {
	options *Options
	client  *http.Client
	parent  context.Context
	// owned clients are closed after the exchange; shared ones keep their pool
	owned bool

	mu           sync.Mutex
	state        readyState
	method       string
	url          *url.URL
	header       http.Header
	responseType ResponseType
	handlers     Handlers
	cancel       context.CancelFunc

	fired sync.Once
}

// NewHTTPTransport creates a transport bound to ctx: cancelling ctx aborts
// the exchange.
func NewHTTPTransport(ctx context.Context, options *Options) (*HTTPTransport, error) {
	client, err := BuildHTTPClient(options)
	if err != nil {
		return nil, err
	}
	t := newHTTPTransport(ctx, client, options)
	t.owned = true
	return t, nil
}

func newHTTPTransport(ctx context.Context, client *http.Client, options *Options) *HTTPTransport {
	return &HTTPTransport{
		options: options,
		client:  client,
		parent:  ctx,
		header:  make(http.Header),
	}
}

func invalidState(format string, args ...interface{}) error {
	return errors.Errorf("InvalidStateError: "+format, args...)
}

func (t *HTTPTransport) Open(method, rawURL string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state >= stateSent {
		return invalidState("cannot open a transport that was already sent")
	}
	if !httpguts.ValidHeaderFieldName(method) {
		return errors.Errorf("invalid method: %q", method)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return errors.Wrapf(err, "parsing URL %q", rawURL)
	}
	if !u.IsAbs() {
		if t.options.Origin == nil {
			return errors.Errorf("relative URL %q requires an origin", rawURL)
		}
		u = t.options.Origin.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("unsupported protocol scheme %q", u.Scheme)
	}

	t.method = strings.ToUpper(method)
	t.url = u
	t.header = make(http.Header)
	t.state = stateOpened
	return nil
}

func (t *HTTPTransport) SetRequestHeader(name, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateOpened {
		return invalidState("headers can only be set after open and before send")
	}
	if !httpguts.ValidHeaderFieldName(name) {
		return errors.Errorf("invalid header field name: %q", name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return errors.Errorf("invalid value for header %q", name)
	}
	t.header.Add(name, value)
	return nil
}

// SetResponseType selects the parsing mode. Unknown types are ignored and
// the previous mode stays in effect.
func (t *HTTPTransport) SetResponseType(rt ResponseType) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state >= stateSent {
		return invalidState("response type cannot change after send")
	}
	if !knownResponseType(rt) {
		return nil
	}
	t.responseType = rt
	return nil
}

func (t *HTTPTransport) SetHandlers(h Handlers) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = h
}

// Send starts the exchange in the background. Bodies are ignored for GET
// and HEAD.
func (t *HTTPTransport) Send(body interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateOpened {
		return invalidState("send requires an opened transport")
	}

	header := t.header.Clone()
	if t.method == http.MethodGet || t.method == http.MethodHead {
		body = nil
	}
	reader, err := encodeBody(body, header)
	if err != nil {
		return err
	}
	if header.Get("User-Agent") == "" {
		header.Set("User-Agent", fmt.Sprintf("xhreq/%s", version.Current()))
	}

	ctx, cancel := context.WithCancel(t.parent)
	req, err := http.NewRequestWithContext(ctx, t.method, t.url.String(), reader)
	if err != nil {
		cancel()
		return errors.Wrap(err, "building HTTP request")
	}
	req.Header = header
	if host := header.Get("Host"); host != "" {
		req.Host = host
	}
	if t.options.Auth.Enabled && header.Get("Authorization") == "" {
		req.SetBasicAuth(t.options.Auth.UserName, t.options.Auth.Password)
	}

	t.state = stateSent
	t.cancel = cancel
	go t.run(req, cancel, t.responseType, t.handlers)
	return nil
}

// Abort cancels the exchange. A sent transport reports OnAbort; an opened
// one goes back to unsent without an event.
func (t *HTTPTransport) Abort() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == stateOpened {
		t.state = stateUnsent
	}
	if t.cancel != nil {
		t.cancel()
	}
}

func (t *HTTPTransport) run(req *http.Request, cancel context.CancelFunc, rt ResponseType, h Handlers) {
	defer cancel()
	if t.owned {
		defer t.client.CloseIdleConnections()
	}

	resp, err := t.client.Do(req)
	if err != nil {
		t.fail(h, err)
		return
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.fail(h, err)
		return
	}
	t.fire(h.OnLoad, Event{
		Status:   resp.StatusCode,
		Header:   resp.Header,
		Response: parseResponse(raw, rt),
	})
}

// fail maps a transport error to abort, timeout or network error.
func (t *HTTPTransport) fail(h Handlers, err error) {
	ev := Event{Status: 0}
	switch {
	case isTimeout(err):
		t.fire(h.OnTimeout, ev)
	case errors.Is(err, context.Canceled):
		t.fire(h.OnAbort, ev)
	default:
		t.fire(h.OnError, ev)
	}
}

func (t *HTTPTransport) fire(handler func(Event), ev Event) {
	t.fired.Do(func() {
		t.mu.Lock()
		t.state = stateDone
		t.mu.Unlock()
		if handler != nil {
			handler(ev)
		}
	})
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func encodeBody(body interface{}, header http.Header) (io.Reader, error) {
	setDefault := func(contentType string) {
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", contentType)
		}
	}

	switch b := body.(type) {
	case nil:
		return nil, nil
	case string:
		setDefault("text/plain;charset=UTF-8")
		return strings.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	case *FormData:
		data, contentType, err := b.Encode()
		if err != nil {
			return nil, err
		}
		setDefault(contentType)
		return bytes.NewReader(data), nil
	case url.Values:
		setDefault("application/x-www-form-urlencoded;charset=UTF-8")
		return strings.NewReader(b.Encode()), nil
	case io.Reader:
		return b, nil
	default:
		s, err := stringify(b)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		setDefault("text/plain;charset=UTF-8")
		return strings.NewReader(s), nil
	}
}

// parseResponse converts the body per response type. Bodies that fail to
// parse as JSON or HTML become nil.
func parseResponse(raw []byte, rt ResponseType) interface{} {
	switch rt {
	case ResponseTypeJSON:
		if len(raw) == 0 {
			return nil
		}
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil
		}
		return v
	case ResponseTypeArrayBuffer, ResponseTypeBlob:
		return raw
	case ResponseTypeDocument:
		doc, err := html.Parse(bytes.NewReader(raw))
		if err != nil {
			return nil
		}
		return doc
	default:
		return string(raw)
	}
}
