package output

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/pkg/errors"
)

var reIndexSuffix = regexp.MustCompile(`\.(\d+)$`)

type FileWriter struct {
	fullPath string
}

func NewFileWriter(target string, options *Options) *FileWriter {
	var fullPath string

	if options.OutputFile == "" {
		fullPath = fmt.Sprintf("./%s", defaultFilename(target))
	} else {
		fullPath = options.OutputFile
	}

	if !options.Overwrite {
		fullPath = makeNonOverlappingFilename(fullPath)
	}

	return &FileWriter{
		fullPath: fullPath,
	}
}

func defaultFilename(target string) string {
	path := target
	if u, err := url.Parse(target); err == nil {
		path = u.Path
	}
	name := filepath.Base(path)
	if name == "." || name == "/" || name == "" {
		return "index"
	}
	return name
}

func makeNonOverlappingFilename(path string) string {
	_, err := os.Stat(path)
	if err == nil {
		newPath := reIndexSuffix.ReplaceAllStringFunc(path, func(index string) string {
			i, err := strconv.Atoi(strings.TrimPrefix(index, "."))
			if err != nil {
				panic(err)
			}
			i++
			return fmt.Sprintf(".%d", i)
		})
		if path == newPath {
			path = fmt.Sprintf("%s.%d", path, 1)
		} else {
			path = newPath
		}
		path = makeNonOverlappingFilename(path)
	}
	return path
}

// Download writes a response body to the file and reports its size on w.
func (f *FileWriter) Download(value interface{}, w io.Writer) error {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
	default:
		return errors.Errorf("cannot download a %T response", value)
	}

	if err := os.WriteFile(f.fullPath, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", f.fullPath)
	}
	fmt.Fprintf(w, "Downloaded %s to %s\n", bytefmt.ByteSize(uint64(len(data))), f.Filename())
	return nil
}

func (f *FileWriter) Filename() string {
	return filepath.Base(f.fullPath)
}
