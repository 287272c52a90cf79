package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"unicode/utf8"

	"code.cloudfoundry.org/bytefmt"
	"github.com/HexmosTech/xhreq/exchange"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

type PlainPrinter struct {
	writer io.Writer
}

func NewPlainPrinter(writer io.Writer) Printer {
	return &PlainPrinter{
		writer: writer,
	}
}

func (p *PlainPrinter) PrintRequestLine(method, url string) error {
	fmt.Fprintf(p.writer, "%s %s\n", method, url)
	return nil
}

func (p *PlainPrinter) PrintStatusLine(status int) error {
	fmt.Fprintf(p.writer, "%d %s\n", status, http.StatusText(status))
	return nil
}

func (p *PlainPrinter) PrintHeader(header http.Header) error {
	for _, name := range sortedKeys(header) {
		for _, value := range header[name] {
			fmt.Fprintf(p.writer, "%s: %s\n", name, value)
		}
	}
	fmt.Fprintln(p.writer)
	return nil
}

func (p *PlainPrinter) PrintBody(value interface{}, contentType string) error {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		_, err := io.WriteString(p.writer, v)
		return errors.Wrap(err, "printing response body")
	case []byte:
		if isBinary(v) {
			fmt.Fprintln(p.writer, binaryNote(len(v)))
			return nil
		}
		_, err := p.writer.Write(v)
		return errors.Wrap(err, "printing response body")
	case *html.Node:
		if err := html.Render(p.writer, v); err != nil {
			return errors.Wrap(err, "rendering HTML document")
		}
		fmt.Fprintln(p.writer)
		return nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
		_, err = fmt.Fprintf(p.writer, "%s\n", b)
		return err
	}
}

func (p *PlainPrinter) PrintError(err error) error {
	fmt.Fprintf(p.writer, "%s\n", err)
	props := errorProperties(err)
	for _, name := range sortedKeys(props) {
		fmt.Fprintf(p.writer, "  %s: %v\n", name, props[name])
	}
	return nil
}

// errorProperties returns the properties of a status error, or nil.
func errorProperties(err error) map[string]interface{} {
	var e *exchange.Error
	if !errors.As(err, &e) || e.Kind != exchange.HTTPStatusError {
		return nil
	}
	return e.Properties()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isBinary(b []byte) bool {
	return !utf8.Valid(b) || bytes.IndexByte(b, 0) != -1
}

func binaryNote(size int) string {
	return fmt.Sprintf("+-----------------------------------------+\n"+
		"| NOTE: binary data not shown in terminal |\n"+
		"| size: %-33s |\n"+
		"+-----------------------------------------+", bytefmt.ByteSize(uint64(size)))
}
