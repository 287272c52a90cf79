package output

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
)

type PrettyPrinter struct {
	writer        io.Writer
	plain         Printer
	aurora        aurora.Aurora
	headerPalette *HeaderPalette
	jsonPalette   *JSONPalette
}

type PrettyPrinterConfig struct {
	Writer      io.Writer
	EnableColor bool
}

type HeaderPalette struct {
	Method         aurora.Color
	URL            aurora.Color
	Status         aurora.Color
	StatusText     aurora.Color
	FieldName      aurora.Color
	FieldValue     aurora.Color
	FieldSeparator aurora.Color
}

var defaultHeaderPalette = HeaderPalette{
	Method:         aurora.GreenFg | aurora.BoldFm,
	URL:            aurora.CyanFg,
	Status:         aurora.BlueFg | aurora.BoldFm,
	StatusText:     aurora.CyanFg,
	FieldName:      aurora.GrayFg,
	FieldValue:     aurora.CyanFg,
	FieldSeparator: aurora.GrayFg,
}

type JSONPalette struct {
	Name    aurora.Color
	String  aurora.Color
	Number  aurora.Color
	Boolean aurora.Color
	Null    aurora.Color
	Symbol  aurora.Color
}

var defaultJSONPalette = JSONPalette{
	Name:    aurora.BlueFg,
	String:  aurora.BrownFg,
	Number:  aurora.CyanFg,
	Boolean: aurora.RedFg | aurora.BoldFm,
	Null:    aurora.RedFg | aurora.BoldFm,
	Symbol:  aurora.GrayFg,
}

const indentString = "    "

func NewPrettyPrinter(config PrettyPrinterConfig) Printer {
	return &PrettyPrinter{
		writer:        config.Writer,
		plain:         NewPlainPrinter(config.Writer),
		aurora:        aurora.NewAurora(config.EnableColor),
		headerPalette: &defaultHeaderPalette,
		jsonPalette:   &defaultJSONPalette,
	}
}

func (p *PrettyPrinter) PrintRequestLine(method, url string) error {
	fmt.Fprintf(p.writer, "%s %s\n",
		p.aurora.Colorize(method, p.headerPalette.Method),
		p.aurora.Colorize(url, p.headerPalette.URL))
	return nil
}

func (p *PrettyPrinter) PrintStatusLine(status int) error {
	fmt.Fprintf(p.writer, "%s %s\n",
		p.aurora.Colorize(strconv.Itoa(status), p.headerPalette.Status),
		p.aurora.Colorize(http.StatusText(status), p.headerPalette.StatusText))
	return nil
}

func (p *PrettyPrinter) PrintHeader(header http.Header) error {
	for _, name := range sortedKeys(header) {
		for _, value := range header[name] {
			p.printField(name, value)
		}
	}
	fmt.Fprintln(p.writer)
	return nil
}

func (p *PrettyPrinter) printField(name string, value interface{}) {
	fmt.Fprintf(p.writer, "%s%s %s\n",
		p.aurora.Colorize(name, p.headerPalette.FieldName),
		p.aurora.Colorize(":", p.headerPalette.FieldSeparator),
		p.aurora.Colorize(fmt.Sprint(value), p.headerPalette.FieldValue))
}

func isJSON(contentType string) bool {
	contentType = strings.TrimSpace(contentType)

	semicolon := strings.Index(contentType, ";")
	if semicolon != -1 {
		contentType = contentType[:semicolon]
	}

	return contentType == "application/json" || strings.HasSuffix(contentType, "+json")
}

func (p *PrettyPrinter) PrintBody(value interface{}, contentType string) error {
	switch v := value.(type) {
	case string:
		// Fallback to PlainPrinter when the body is not JSON
		if !isJSON(contentType) {
			return p.plain.PrintBody(v, contentType)
		}
		var decoded interface{}
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return p.plain.PrintBody(v, contentType)
		}
		value = decoded
	case []byte:
		if isBinary(v) {
			return p.plain.PrintBody(v, contentType)
		}
		return p.PrintBody(string(v), contentType)
	case map[string]interface{}, []interface{}, float64, bool, nil:
	default:
		return p.plain.PrintBody(value, contentType)
	}

	var sb strings.Builder
	if err := p.writeJSON(&sb, value, 0); err != nil {
		return err
	}
	sb.WriteString("\n")
	_, err := io.WriteString(p.writer, sb.String())
	return errors.Wrap(err, "printing response body")
}

func (p *PrettyPrinter) writeJSON(sb *strings.Builder, value interface{}, depth int) error {
	symbol := func(s string) {
		sb.WriteString(p.aurora.Colorize(s, p.jsonPalette.Symbol).String())
	}
	indent := func(d int) {
		sb.WriteString(strings.Repeat(indentString, d))
	}

	switch v := value.(type) {
	case nil:
		sb.WriteString(p.aurora.Colorize("null", p.jsonPalette.Null).String())
	case bool:
		sb.WriteString(p.aurora.Colorize(strconv.FormatBool(v), p.jsonPalette.Boolean).String())
	case float64:
		sb.WriteString(p.aurora.Colorize(strconv.FormatFloat(v, 'f', -1, 64), p.jsonPalette.Number).String())
	case string:
		s, err := marshalString(v)
		if err != nil {
			return err
		}
		sb.WriteString(p.aurora.Colorize(s, p.jsonPalette.String).String())
	case []interface{}:
		if len(v) == 0 {
			symbol("[]")
			return nil
		}
		symbol("[")
		sb.WriteString("\n")
		for i, elem := range v {
			indent(depth + 1)
			if err := p.writeJSON(sb, elem, depth+1); err != nil {
				return err
			}
			if i < len(v)-1 {
				symbol(",")
			}
			sb.WriteString("\n")
		}
		indent(depth)
		symbol("]")
	case map[string]interface{}:
		if len(v) == 0 {
			symbol("{}")
			return nil
		}
		symbol("{")
		sb.WriteString("\n")
		keys := sortedKeys(v)
		for i, key := range keys {
			indent(depth + 1)
			name, err := marshalString(key)
			if err != nil {
				return err
			}
			sb.WriteString(p.aurora.Colorize(name, p.jsonPalette.Name).String())
			symbol(":")
			sb.WriteString(" ")
			if err := p.writeJSON(sb, v[key], depth+1); err != nil {
				return err
			}
			if i < len(keys)-1 {
				symbol(",")
			}
			sb.WriteString("\n")
		}
		indent(depth)
		symbol("}")
	default:
		return errors.Errorf("unexpected JSON value: %T", value)
	}
	return nil
}

func marshalString(s string) (string, error) {
	var sb strings.Builder
	encoder := json.NewEncoder(&sb)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		return "", errors.Wrap(err, "encoding JSON")
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}

func (p *PrettyPrinter) PrintError(err error) error {
	fmt.Fprintf(p.writer, "%s\n", p.aurora.Colorize(err.Error(), aurora.RedFg|aurora.BoldFm))
	props := errorProperties(err)
	for _, name := range sortedKeys(props) {
		p.printField("  "+name, props[name])
	}
	return nil
}
