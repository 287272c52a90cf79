package exchange

import (
	"crypto/tls"
	"net/http"
)

// BuildHTTPClient returns a client configured from options. A caller
// supplied *http.Transport is cloned before TLS settings are applied, so
// the same round tripper can back several clients at once.
func BuildHTTPClient(options *Options) (*http.Client, error) {
	client := &http.Client{
		Timeout:   options.Timeout,
		Transport: roundTripper(options),
	}
	if !options.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client, nil
}

func roundTripper(options *Options) http.RoundTripper {
	var base *http.Transport
	switch rt := options.Transport.(type) {
	case nil:
		base = http.DefaultTransport.(*http.Transport)
	case *http.Transport:
		base = rt
	default:
		// opaque round trippers are used as given
		return rt
	}

	transport := base.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	}
	if options.SkipVerify {
		transport.TLSClientConfig.InsecureSkipVerify = true
	}
	if options.ForceHTTP1 {
		transport.TLSClientConfig.NextProtos = []string{"http/1.1", "http/1.0"}
		transport.TLSNextProto = make(map[string]func(string, *tls.Conn) http.RoundTripper)
		transport.ForceAttemptHTTP2 = false
	}
	return transport
}
