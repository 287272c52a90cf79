package exchange

import (
	"crypto/tls"
	"net/http"
	"testing"
	"time"
)

func TestBuildHTTPClient(t *testing.T) {
	options := &Options{
		Timeout:    3 * time.Second,
		SkipVerify: true,
		ForceHTTP1: true,
	}

	client, err := BuildHTTPClient(options)
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}

	if client.Timeout != 3*time.Second {
		t.Errorf("unexpected timeout: %v", client.Timeout)
	}
	if client.CheckRedirect == nil {
		t.Errorf("redirects must not be followed by default")
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("unexpected transport type: %T", client.Transport)
	}
	if !transport.TLSClientConfig.InsecureSkipVerify {
		t.Errorf("TLS verification should be skipped")
	}
	if len(transport.TLSNextProto) != 0 {
		t.Errorf("HTTP/2 should be disabled")
	}
}

func TestBuildHTTPClient_FollowRedirects(t *testing.T) {
	client, err := BuildHTTPClient(&Options{FollowRedirects: true})
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}
	if client.CheckRedirect != nil {
		t.Errorf("redirects should be followed")
	}
}

func TestBuildHTTPClient_CallerTransport(t *testing.T) {
	// Setup
	own := &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}

	// Exercise
	client, err := BuildHTTPClient(&Options{Transport: own, ForceHTTP1: true})

	// Verify
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("unexpected transport type: %T", client.Transport)
	}
	if transport == own {
		t.Errorf("caller transport must be cloned")
	}
	if !transport.TLSClientConfig.InsecureSkipVerify {
		t.Errorf("caller InsecureSkipVerify must be kept")
	}
	if own.TLSClientConfig.NextProtos != nil || own.TLSNextProto != nil {
		t.Errorf("caller transport was modified: %+v", own)
	}
}
