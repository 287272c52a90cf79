package input

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Descriptor is a declarative description of one HTTP request.
// Only URI is required; every other field falls back to Defaults.
type Descriptor struct {
	Method        string
	URI           string
	BaseURL       string
	QS            Fields
	Header        Fields
	Body          interface{}
	MultipartData Fields
	Form          interface{} // serialized as JSON; wins over MultipartData
	JSON          bool        // forces the "json" response type
	ResponseType  string
}

// Field is one entry of an ordered mapping.
// Value is a scalar or a sequence (slice or array) of scalars.
type Field struct {
	Name  string
	Value interface{}
}

// Fields is a mapping that remembers insertion order.
type Fields []Field

// File is a multipart value sent as a file part.
type File struct {
	Filename    string
	ContentType string
	Content     []byte
}

func (fs Fields) Get(name string) (interface{}, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of the first field called name, keeping its
// position, or appends a new field.
func (fs *Fields) Set(name string, value interface{}) {
	for i := range *fs {
		if (*fs)[i].Name == name {
			(*fs)[i].Value = value
			return
		}
	}
	fs.Add(name, value)
}

func (fs *Fields) Add(name string, value interface{}) {
	*fs = append(*fs, Field{Name: name, Value: value})
}

// Clone returns a shallow copy. The clone of a nil Fields is nil.
func (fs Fields) Clone() Fields {
	if fs == nil {
		return nil
	}
	clone := make(Fields, len(fs))
	copy(clone, fs)
	return clone
}

// MarshalJSON encodes the fields as a JSON object in insertion order.
func (fs Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := marshalNoEscape(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := marshalNoEscape(f.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "marshaling JSON value of '%s'", f.Name)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Defaults returns the options every descriptor is merged over.
func Defaults() Descriptor {
	return Descriptor{
		Method: "GET",
		URI:    "",
		QS:     Fields{},
		Header: Fields{},
		Body:   nil,
	}
}

// Merge builds the effective options: each field set in overrides replaces
// the one in defaults. Mappings are replaced as a whole, never merged, and
// the result owns copies of them.
func Merge(defaults, overrides Descriptor) Descriptor {
	opts := defaults
	if overrides.Method != "" {
		opts.Method = overrides.Method
	}
	if overrides.URI != "" {
		opts.URI = overrides.URI
	}
	if overrides.BaseURL != "" {
		opts.BaseURL = overrides.BaseURL
	}
	if overrides.QS != nil {
		opts.QS = overrides.QS
	}
	if overrides.Header != nil {
		opts.Header = overrides.Header
	}
	if overrides.Body != nil {
		opts.Body = overrides.Body
	}
	if overrides.MultipartData != nil {
		opts.MultipartData = overrides.MultipartData
	}
	if overrides.Form != nil {
		opts.Form = overrides.Form
	}
	if overrides.JSON {
		opts.JSON = true
	}
	if overrides.ResponseType != "" {
		opts.ResponseType = overrides.ResponseType
	}

	opts.QS = opts.QS.Clone()
	opts.Header = opts.Header.Clone()
	opts.MultipartData = opts.MultipartData.Clone()
	return opts
}
