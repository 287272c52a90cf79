package input

import (
	"encoding/json"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	reMethod          = regexp.MustCompile(`^[a-zA-Z]+$`)
	reHeaderFieldName = regexp.MustCompile("^[-!#$%&'*+.^_|~a-zA-Z0-9]+$")
	reScheme          = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+-.]*://`)
)

type itemType int

const (
	unknownItem itemType = iota
	httpHeaderItem
	urlParameterItem
	dataFieldItem
	rawJSONFieldItem
	formFileFieldItem
)

type UsageError string

func (e *UsageError) Error() string {
	return string(*e)
}

func newUsageError(message string) error {
	u := UsageError(message)
	return errors.WithStack(&u)
}

type state struct {
	multipart     bool
	hasBody       bool
	stdinConsumed bool
	form          Fields
}

// ParseArgs builds a descriptor from "[METHOD] URI [ITEM ...]".
func ParseArgs(args []string, stdin io.Reader, options *Options) (*Descriptor, error) {
	var argMethod string
	var argURI string
	var argItems []string
	switch len(args) {
	case 0:
		return nil, newUsageError("URL is required")
	case 1:
		argURI = args[0]
	default:
		switch {
		case reMethod.MatchString(args[0]):
			argMethod = args[0]
			argURI = args[1]
			argItems = args[2:]
		case reScheme.MatchString(args[1]):
			// the second argument is clearly the URL, so the first was meant as a method
			return nil, newUsageError("invalid method: " + args[0])
		default:
			argURI = args[0]
			argItems = args[1:]
		}
	}

	d := Descriptor{
		BaseURL:      options.BaseURL,
		JSON:         options.JSON,
		ResponseType: options.ResponseType,
	}
	state := state{multipart: options.Multipart}

	if d.BaseURL == "" {
		uri, err := parseURI(argURI)
		if err != nil {
			return nil, err
		}
		d.URI = uri
	} else {
		d.URI = argURI
	}

	for _, arg := range argItems {
		if err := parseItem(arg, stdin, &state, &d); err != nil {
			return nil, err
		}
	}
	if state.form != nil {
		d.Form = state.form
	}

	if options.ReadStdin && !state.stdinConsumed {
		if state.hasBody {
			return nil, errors.New("request body (from stdin) and request item (key=value) cannot be mixed")
		}
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read stdin")
		}
		d.Body = string(raw)
		state.hasBody = true
		state.stdinConsumed = true
	}

	if argMethod != "" {
		method, err := parseMethod(argMethod)
		if err != nil {
			return nil, err
		}
		d.Method = method
	} else {
		d.Method = guessMethod(state.hasBody)
	}

	return &d, nil
}

func parseMethod(s string) (string, error) {
	if !reMethod.MatchString(s) {
		return "", errors.Errorf("METHOD must consist of alphabets: %s", s)
	}
	return strings.ToUpper(s), nil
}

func guessMethod(hasBody bool) string {
	if hasBody {
		return "POST"
	}
	return "GET"
}

func parseURI(s string) (string, error) {
	defaultScheme := "http"
	defaultHost := "localhost"

	// ex) :8080/hello or /hello
	if strings.HasPrefix(s, ":") || strings.HasPrefix(s, "/") {
		s = defaultHost + s
	}

	// ex) example.com/hello
	if !reScheme.MatchString(s) {
		s = defaultScheme + "://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", newUsageError("Invalid URL: " + s)
	}
	u.Host = strings.TrimSuffix(u.Host, ":")
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

func parseItem(s string, stdin io.Reader, state *state, d *Descriptor) error {
	itemType, name, value := splitItem(s)
	switch itemType {
	case dataFieldItem:
		v, err := resolveValue(name, value, stdin, state)
		if err != nil {
			return err
		}
		state.hasBody = true
		if state.multipart {
			if d.MultipartData == nil {
				d.MultipartData = Fields{}
			}
			appendValue(&d.MultipartData, name, v)
		} else {
			if state.form == nil {
				state.form = Fields{}
			}
			state.form.Set(name, v)
		}
	case rawJSONFieldItem:
		if state.multipart {
			return errors.New("raw JSON field item cannot be used in multipart body")
		}
		v, err := resolveValue(name, value, stdin, state)
		if err != nil {
			return err
		}
		var decoded interface{}
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return errors.Errorf("invalid JSON at '%s': %s", name, v)
		}
		state.hasBody = true
		if state.form == nil {
			state.form = Fields{}
		}
		state.form.Set(name, decoded)
	case httpHeaderItem:
		if !isValidHeaderFieldName(name) {
			return errors.Errorf("invalid header field name: %s", name)
		}
		v, err := resolveValue(name, value, stdin, state)
		if err != nil {
			return err
		}
		if d.Header == nil {
			d.Header = Fields{}
		}
		d.Header.Add(name, v)
	case urlParameterItem:
		v, err := resolveValue(name, value, stdin, state)
		if err != nil {
			return err
		}
		if d.QS == nil {
			d.QS = Fields{}
		}
		appendValue(&d.QS, name, v)
	case formFileFieldItem:
		if !state.multipart {
			return errors.New("form file field item cannot be used in non-multipart body (perhaps you meant --multipart?)")
		}
		file, err := readFile(value)
		if err != nil {
			return errors.Wrapf(err, "reading file for '%s'", name)
		}
		state.hasBody = true
		if d.MultipartData == nil {
			d.MultipartData = Fields{}
		}
		appendValue(&d.MultipartData, name, file)
	default:
		return errors.Errorf("unknown request item: %s", s)
	}
	return nil
}

// appendValue turns a repeated key into a sequence.
func appendValue(fs *Fields, name string, value interface{}) {
	current, ok := fs.Get(name)
	if !ok {
		fs.Add(name, value)
		return
	}
	if seq, ok := current.([]interface{}); ok {
		fs.Set(name, append(seq, value))
		return
	}
	fs.Set(name, []interface{}{current, value})
}

func splitItem(s string) (itemType, string, string) {
	for i, c := range s {
		switch c {
		case ':':
			if i+1 < len(s) && s[i+1] == '=' {
				return rawJSONFieldItem, s[:i], s[i+2:]
			} else {
				return httpHeaderItem, s[:i], s[i+1:]
			}
		case '=':
			if i+1 < len(s) && s[i+1] == '=' {
				return urlParameterItem, s[:i], s[i+2:]
			} else {
				return dataFieldItem, s[:i], s[i+1:]
			}
		case '@':
			return formFileFieldItem, s[:i], s[i+1:]
		}
	}
	return unknownItem, "", ""
}

func isValidHeaderFieldName(s string) bool {
	return reHeaderFieldName.MatchString(s)
}

// resolveValue reads "@path" values from a file and "@-" from stdin.
func resolveValue(name, value string, stdin io.Reader, state *state) (string, error) {
	if !strings.HasPrefix(value, "@") {
		return value, nil
	}
	if value[1:] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrapf(err, "reading stdin for '%s'", name)
		}
		state.stdinConsumed = true
		return string(b), nil
	}
	b, err := os.ReadFile(value[1:])
	if err != nil {
		return "", errors.Wrapf(err, "reading field value of '%s'", name)
	}
	return string(b), nil
}

func readFile(path string) (File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return File{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Content:     content,
	}, nil
}
