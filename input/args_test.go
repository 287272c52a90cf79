package input

import (
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestParseArgs(t *testing.T) {
	testCases := []struct {
		title              string
		args               []string
		options            Options
		expectedDescriptor *Descriptor
		shouldBeError      bool
	}{
		{
			title: "Happy case",
			args:  []string{"GET", "http://example.com/hello"},
			expectedDescriptor: &Descriptor{
				Method: "GET",
				URI:    "http://example.com/hello",
			},
		},
		{
			title: "Method is guessed from body",
			args:  []string{"example.com/hello", "foo=bar"},
			expectedDescriptor: &Descriptor{
				Method: "POST",
				URI:    "http://example.com/hello",
				Form:   Fields{{Name: "foo", Value: "bar"}},
			},
		},
		{
			title:   "Base URL keeps URI as given",
			args:    []string{"delete", "/users/1"},
			options: Options{BaseURL: "https://api.example.com"},
			expectedDescriptor: &Descriptor{
				Method:  "DELETE",
				URI:     "/users/1",
				BaseURL: "https://api.example.com",
			},
		},
		{
			title:   "Response options are copied",
			args:    []string{"example.com"},
			options: Options{JSON: true, ResponseType: "text"},
			expectedDescriptor: &Descriptor{
				Method:       "GET",
				URI:          "http://example.com/",
				JSON:         true,
				ResponseType: "text",
			},
		},
		{
			title:   "Multipart fields",
			args:    []string{"example.com", "a=1", "a=2", "b=3"},
			options: Options{Multipart: true},
			expectedDescriptor: &Descriptor{
				Method: "POST",
				URI:    "http://example.com/",
				MultipartData: Fields{
					{Name: "a", Value: []interface{}{"1", "2"}},
					{Name: "b", Value: "3"},
				},
			},
		},
		{
			title:         "Invalid method",
			args:          []string{"GET/POST", "http://example.com/hello"},
			shouldBeError: true,
		},
		{
			title:         "URL missing",
			args:          []string{},
			shouldBeError: true,
		},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			descriptor, err := ParseArgs(tt.args, strings.NewReader(""), &tt.options)
			if (err != nil) != tt.shouldBeError {
				t.Errorf("unexpected error: shouldBeError=%v, err=%v", tt.shouldBeError, err)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(descriptor, tt.expectedDescriptor) {
				t.Errorf("unexpected descriptor: expected=%+v, actual=%+v", tt.expectedDescriptor, descriptor)
			}
		})
	}
}

func TestParseArgs_UsageError(t *testing.T) {
	testCases := []struct {
		title string
		args  []string
	}{
		{title: "URL missing", args: nil},
		{title: "Method with slash before URL", args: []string{"GET/POST", "http://example.com/hello"}},
		{title: "Method with digits before URL", args: []string{"P0ST", "https://example.com/", "a=b"}},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			// Exercise
			d, err := ParseArgs(tt.args, strings.NewReader(""), &Options{})

			// Verify
			if _, ok := errors.Cause(err).(*UsageError); !ok {
				t.Errorf("expected UsageError: err=%+v, descriptor=%+v", err, d)
			}
		})
	}
}

func TestParseArgs_Stdin(t *testing.T) {
	// Setup
	stdin := strings.NewReader(`{"hello": "world"}`)
	options := &Options{ReadStdin: true}

	// Exercise
	descriptor, err := ParseArgs([]string{"PUT", "example.com/x", "X-Foo:bar"}, stdin, options)
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}

	// Verify
	if descriptor.Body != `{"hello": "world"}` {
		t.Errorf("unexpected body: %v", descriptor.Body)
	}
	expectedHeader := Fields{{Name: "X-Foo", Value: "bar"}}
	if !reflect.DeepEqual(descriptor.Header, expectedHeader) {
		t.Errorf("unexpected header: expected=%+v, actual=%+v", expectedHeader, descriptor.Header)
	}
}

func TestParseArgs_StdinAndItemsCannotBeMixed(t *testing.T) {
	options := &Options{ReadStdin: true}
	_, err := ParseArgs([]string{"example.com", "a=b"}, strings.NewReader("xyz"), options)
	if err == nil {
		t.Errorf("expected an error")
	}
}

func TestParseItem(t *testing.T) {
	testCases := []struct {
		title                 string
		input                 string
		multipart             bool
		expectedForm          Fields
		expectedMultipartData Fields
		expectedHeader        Fields
		expectedQS            Fields
		shouldBeError         bool
	}{
		{
			title:        "Data field",
			input:        "hello=world",
			expectedForm: Fields{{Name: "hello", Value: "world"}},
		},
		{
			title:        "Data field with empty value",
			input:        "hello=",
			expectedForm: Fields{{Name: "hello", Value: ""}},
		},
		{
			title:                 "Multipart data field",
			input:                 "hello=world",
			multipart:             true,
			expectedMultipartData: Fields{{Name: "hello", Value: "world"}},
		},
		{
			title:        "Raw JSON field",
			input:        `hello:=[1, true, "world"]`,
			expectedForm: Fields{{Name: "hello", Value: []interface{}{1.0, true, "world"}}},
		},
		{
			title:         "Raw JSON field with invalid JSON",
			input:         `hello:={invalid: JSON}`,
			shouldBeError: true,
		},
		{
			title:         "Raw JSON field in multipart body",
			input:         `hello:=1`,
			multipart:     true,
			shouldBeError: true,
		},
		{
			title:          "Header field",
			input:          "X-Example:Sample Value",
			expectedHeader: Fields{{Name: "X-Example", Value: "Sample Value"}},
		},
		{
			title:          "Header field with empty value",
			input:          "X-Example:",
			expectedHeader: Fields{{Name: "X-Example", Value: ""}},
		},
		{
			title:         "Invalid header field name",
			input:         `Bad"header":test`,
			shouldBeError: true,
		},
		{
			title:      "URL parameter",
			input:      "hello==world",
			expectedQS: Fields{{Name: "hello", Value: "world"}},
		},
		{
			title:      "URL parameter with empty value",
			input:      "hello==",
			expectedQS: Fields{{Name: "hello", Value: ""}},
		},
		{
			title:         "File field without multipart",
			input:         "file@/dev/null",
			shouldBeError: true,
		},
		{
			title:         "Unknown item",
			input:         "nothing",
			shouldBeError: true,
		},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			d := Descriptor{}
			s := state{multipart: tt.multipart}
			err := parseItem(tt.input, strings.NewReader(""), &s, &d)
			if (err != nil) != tt.shouldBeError {
				t.Errorf("unexpected error: shouldBeError=%v, err=%v", tt.shouldBeError, err)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(s.form, tt.expectedForm) {
				t.Errorf("unexpected form: expected=%+v, actual=%+v", tt.expectedForm, s.form)
			}
			if !reflect.DeepEqual(d.MultipartData, tt.expectedMultipartData) {
				t.Errorf("unexpected multipart data: expected=%+v, actual=%+v", tt.expectedMultipartData, d.MultipartData)
			}
			if !reflect.DeepEqual(d.Header, tt.expectedHeader) {
				t.Errorf("unexpected header: expected=%+v, actual=%+v", tt.expectedHeader, d.Header)
			}
			if !reflect.DeepEqual(d.QS, tt.expectedQS) {
				t.Errorf("unexpected query: expected=%+v, actual=%+v", tt.expectedQS, d.QS)
			}
		})
	}
}

func TestParseItem_RepeatedParameterBecomesSequence(t *testing.T) {
	d := Descriptor{}
	s := state{}
	for _, item := range []string{"a==1", "b==2", "b==3", "b==4"} {
		if err := parseItem(item, strings.NewReader(""), &s, &d); err != nil {
			t.Fatalf("unexpected error: err=%+v", err)
		}
	}
	expected := Fields{
		{Name: "a", Value: "1"},
		{Name: "b", Value: []interface{}{"2", "3", "4"}},
	}
	if !reflect.DeepEqual(d.QS, expected) {
		t.Errorf("unexpected query: expected=%+v, actual=%+v", expected, d.QS)
	}
}

func TestParseItem_FileField(t *testing.T) {
	// Setup
	tmpfile, err := os.CreateTemp("", "xhreq-test-*.txt")
	if err != nil {
		t.Fatalf("failed to create temporary file: %v", err)
	}
	defer os.Remove(tmpfile.Name())
	if _, err := tmpfile.WriteString("love & peace"); err != nil {
		t.Fatalf("failed to write to temporary file: %v", err)
	}
	tmpfile.Close()

	// Exercise
	d := Descriptor{}
	s := state{multipart: true}
	if err := parseItem("upload@"+tmpfile.Name(), strings.NewReader(""), &s, &d); err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}

	// Verify
	v, ok := d.MultipartData.Get("upload")
	if !ok {
		t.Fatalf("upload field is missing: %+v", d.MultipartData)
	}
	file, ok := v.(File)
	if !ok {
		t.Fatalf("unexpected value type: %T", v)
	}
	if string(file.Content) != "love & peace" {
		t.Errorf("unexpected content: %s", file.Content)
	}
	if !strings.HasPrefix(file.ContentType, "text/plain") {
		t.Errorf("unexpected content type: %s", file.ContentType)
	}
}

func TestParseURI(t *testing.T) {
	testCases := []struct {
		title    string
		input    string
		expected string
	}{
		{
			title:    "Typical case",
			input:    "http://example.com/hello/world",
			expected: "http://example.com/hello/world",
		},
		{
			title:    "No scheme",
			input:    "example.com/hello/world",
			expected: "http://example.com/hello/world",
		},
		{
			title:    "No host and port",
			input:    "/hello/world",
			expected: "http://localhost/hello/world",
		},
		{
			title:    "Only colon",
			input:    ":",
			expected: "http://localhost/",
		},
		{
			title:    "No host but has port",
			input:    ":8080/hello/world",
			expected: "http://localhost:8080/hello/world",
		},
		{
			title:    "Has query parameters",
			input:    "http://example.com/?q=hello&lang=ja",
			expected: "http://example.com/?q=hello&lang=ja",
		},
		{
			title:    "No path",
			input:    "https://example.com",
			expected: "https://example.com/",
		},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			u, err := parseURI(tt.input)
			if err != nil {
				t.Errorf("unexpected error: err=%v", err)
			}
			if u != tt.expected {
				t.Errorf("unexpected result: expected=%s, actual=%s", tt.expected, u)
			}
		})
	}
}
