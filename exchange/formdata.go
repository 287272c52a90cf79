package exchange

import (
	"bytes"
	"mime/multipart"
	"net/textproto"

	"github.com/HexmosTech/xhreq/input"
	"github.com/pkg/errors"
)

// FormData is an ordered list of multipart parts. A name may repeat.
type FormData struct {
	parts []formPart
}

type formPart struct {
	name  string
	value string
	file  *input.File
}

// NewFormData appends one part per scalar value and one part per element
// of a sequence value. An empty sequence still contributes an empty part.
func NewFormData(fields input.Fields) (*FormData, error) {
	fd := &FormData{}
	for _, field := range fields {
		if elems, ok := sequence(field.Value); ok && len(elems) > 0 {
			for _, elem := range elems {
				if err := fd.Append(field.Name, elem); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := fd.Append(field.Name, field.Value); err != nil {
			return nil, err
		}
	}
	return fd, nil
}

func (fd *FormData) Append(name string, value interface{}) error {
	switch v := value.(type) {
	case input.File:
		fd.parts = append(fd.parts, formPart{name: name, file: &v})
		return nil
	case *input.File:
		fd.parts = append(fd.parts, formPart{name: name, file: v})
		return nil
	}
	s, err := stringify(value)
	if err != nil {
		return errors.Wrapf(err, "multipart field '%s'", name)
	}
	fd.parts = append(fd.parts, formPart{name: name, value: s})
	return nil
}

func (fd *FormData) Len() int {
	return len(fd.parts)
}

// Values returns the string values of the non-file parts called name.
func (fd *FormData) Values(name string) []string {
	var values []string
	for _, p := range fd.parts {
		if p.name == name && p.file == nil {
			values = append(values, p.value)
		}
	}
	return values
}

// Encode renders the multipart body and its Content-Type, boundary included.
func (fd *FormData) Encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range fd.parts {
		if p.file == nil {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", errors.Wrapf(err, "writing multipart field '%s'", p.name)
			}
			continue
		}
		part, err := w.CreatePart(fileHeader(p.name, p.file))
		if err != nil {
			return nil, "", errors.Wrapf(err, "creating multipart file '%s'", p.name)
		}
		if _, err := part.Write(p.file.Content); err != nil {
			return nil, "", errors.Wrapf(err, "writing multipart file '%s'", p.name)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "closing multipart body")
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func fileHeader(name string, file *input.File) textproto.MIMEHeader {
	filename := file.Filename
	if filename == "" {
		filename = "blob"
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+escapeQuotes(name)+`"; filename="`+escapeQuotes(filename)+`"`)
	h.Set("Content-Type", contentType)
	return h
}

func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString("%22")
		case '\r':
			buf.WriteString("%0D")
		case '\n':
			buf.WriteString("%0A")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
