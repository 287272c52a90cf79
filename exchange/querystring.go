package exchange

import (
	"reflect"
	"strings"

	"github.com/HexmosTech/xhreq/input"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// BuildQueryString renders qs in field order. A sequence value repeats the
// key with a "[]" suffix once per element. Keys are written verbatim and
// values are escaped like encodeURIComponent. Empty qs yields "".
func BuildQueryString(qs input.Fields) (string, error) {
	var sb strings.Builder
	emit := func(key string, value interface{}) error {
		s, err := stringify(value)
		if err != nil {
			return errors.Wrapf(err, "query parameter '%s'", key)
		}
		if sb.Len() == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(key)
		sb.WriteByte('=')
		sb.WriteString(encodeURIComponent(s))
		return nil
	}

	for _, field := range qs {
		if elems, ok := sequence(field.Value); ok {
			for _, elem := range elems {
				if err := emit(field.Name+"[]", elem); err != nil {
					return "", err
				}
			}
			continue
		}
		if err := emit(field.Name, field.Value); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// BuildURL joins the base URL, the URI and the query string.
func BuildURL(opts *input.Descriptor) (string, error) {
	qs, err := BuildQueryString(opts.QS)
	if err != nil {
		return "", err
	}
	return opts.BaseURL + opts.URI + qs, nil
}

// sequence reports whether v is a slice or array and returns its elements.
// []byte is a scalar.
func sequence(v interface{}) ([]interface{}, bool) {
	if v == nil {
		return nil, false
	}
	if _, ok := v.([]byte); ok {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	elems := make([]interface{}, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i).Interface()
	}
	return elems, true
}

// FieldValue renders a query or header value exactly as it is sent.
func FieldValue(v interface{}) (string, error) {
	return stringify(v)
}

func stringify(v interface{}) (string, error) {
	if v == nil {
		return "null", nil
	}
	if elems, ok := sequence(v); ok {
		parts := make([]string, len(elems))
		for i, elem := range elems {
			s, err := stringify(elem)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ","), nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", errors.Errorf("cannot convert %T to string", v)
	}
	return s, nil
}

const upperhex = "0123456789ABCDEF"

func encodeURIComponent(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			sb.WriteByte('%')
			sb.WriteByte(upperhex[c>>4])
			sb.WriteByte(upperhex[c&15])
		} else {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func shouldEscape(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return false
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return false
	}
	return true
}
