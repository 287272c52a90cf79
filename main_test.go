package xhreq

import (
	"net/http"
	"testing"

	"github.com/HexmosTech/xhreq/input"
	"github.com/HexmosTech/xhreq/output"
	"github.com/google/go-cmp/cmp"
)

type recordingPrinter struct {
	requestLine string
	header      http.Header
}

func (p *recordingPrinter) PrintRequestLine(method, url string) error {
	p.requestLine = method + " " + url
	return nil
}

func (p *recordingPrinter) PrintStatusLine(status int) error { return nil }

func (p *recordingPrinter) PrintHeader(header http.Header) error {
	p.header = header
	return nil
}

func (p *recordingPrinter) PrintBody(value interface{}, contentType string) error { return nil }

func (p *recordingPrinter) PrintError(err error) error { return nil }

func TestPrintRequest_HeaderValuesAsSent(t *testing.T) {
	// Setup
	printer := &recordingPrinter{}
	descriptor := &input.Descriptor{
		URI: "http://example.com/",
		Header: input.Fields{
			{Name: "X-Nil", Value: nil},
			{Name: "X-List", Value: []interface{}{"a", "b"}},
			{Name: "X-Number", Value: 42},
		},
	}

	// Exercise
	err := printRequest(printer, descriptor, &output.Options{PrintRequestHeader: true})

	// Verify
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}
	if printer.requestLine != "GET http://example.com/" {
		t.Errorf("unexpected request line: %q", printer.requestLine)
	}
	expected := http.Header{
		"X-Nil":    []string{"null"},
		"X-List":   []string{"a,b"},
		"X-Number": []string{"42"},
	}
	if diff := cmp.Diff(expected, printer.header); diff != "" {
		t.Errorf("unexpected header (-want +got):\n%s", diff)
	}
}
