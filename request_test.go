package xhreq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/HexmosTech/xhreq/exchange"
	"github.com/HexmosTech/xhreq/input"
)

func TestRequest(t *testing.T) {
	// Setup
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "hello world" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"reason": "bad query"}`))
			return
		}
		w.Write([]byte(`{"answer": 42}`))
	}))
	defer server.Close()

	// Exercise
	future := Request(&input.Descriptor{
		BaseURL: server.URL,
		URI:     "/search",
		QS:      input.Fields{{Name: "q", Value: "hello world"}},
		JSON:    true,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := future.Await(ctx)

	// Verify
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}
	body, ok := resp.Value.(map[string]interface{})
	if !ok || body["answer"] != 42.0 {
		t.Errorf("unexpected response: %+v", resp.Value)
	}
}

func TestRequest_EmptyURI(t *testing.T) {
	_, err := Request(&input.Descriptor{}).Await(context.Background())

	if exchange.KindOf(err) != exchange.ValidationError {
		t.Errorf("unexpected error: %v", err)
	}
}
