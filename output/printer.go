package output

import (
	"io"
	"net/http"
)

type Printer interface {
	PrintRequestLine(method, url string) error
	PrintStatusLine(status int) error
	PrintHeader(header http.Header) error
	PrintBody(value interface{}, contentType string) error
	PrintError(err error) error
}

// NewPrinter picks the pretty printer when formatting or colour is wanted.
func NewPrinter(w io.Writer, options *Options) Printer {
	if options.EnableFormat || options.EnableColor {
		return NewPrettyPrinter(PrettyPrinterConfig{
			Writer:      w,
			EnableColor: options.EnableColor,
		})
	}
	return NewPlainPrinter(w)
}
