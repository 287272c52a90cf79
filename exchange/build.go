package exchange

import (
	"bytes"
	"encoding/json"

	"github.com/HexmosTech/xhreq/input"
	"github.com/pkg/errors"
)

const (
	multipartEnctype = "multipart/form-data"
	jsonContentType  = "application/json; charset=utf-8"
)

// resolveBody applies the multipartData and form shortcuts to opts.
// form is applied last, so it wins when both are given.
//
// The multipart shortcut only sets an "enctype" header. The transport
// derives the real Content-Type, boundary included, from the FormData body.
func resolveBody(opts *input.Descriptor) error {
	if opts.MultipartData != nil && opts.Form == nil {
		formData, err := NewFormData(opts.MultipartData)
		if err != nil {
			return err
		}
		opts.Header.Set("enctype", multipartEnctype)
		opts.Body = formData
	}

	if opts.Form != nil {
		body, err := marshalForm(opts.Form)
		if err != nil {
			return err
		}
		opts.Body = body
		opts.Header.Set("Content-Type", jsonContentType)
	}
	return nil
}

func marshalForm(form interface{}) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(form); err != nil {
		return "", errors.Wrap(err, "marshaling JSON of form")
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// responseType picks the parsing mode: json overrides responseType.
// Unknown values are passed through; transports ignore them.
func responseType(opts *input.Descriptor) (ResponseType, bool) {
	if opts.JSON {
		return ResponseTypeJSON, true
	}
	if opts.ResponseType == "" {
		return ResponseTypeDefault, false
	}
	return ResponseType(opts.ResponseType), true
}
