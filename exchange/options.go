package exchange

import (
	"net/http"
	"net/url"
	"time"
)

type Options struct {
	Timeout         time.Duration
	FollowRedirects bool
	Auth            AuthOptions
	SkipVerify      bool
	ForceHTTP1      bool

	// Origin resolves relative request URLs, like the base URL of a page.
	Origin *url.URL

	// Transport overrides the round tripper of the HTTP client.
	Transport http.RoundTripper
}

type AuthOptions struct {
	Enabled  bool
	UserName string
	Password string
}
