package sqlcmd

import (
	"io/fs"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FileReader reads the files named by :r directives. Errors are passed on
// to the caller of the preprocessor unchanged.
type FileReader interface {
	ReadFile(path string) (string, error)
}

// OSFiles reads from the operating system; relative paths are relative to
// the working directory.
type OSFiles struct{}

func (OSFiles) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return DecodeText(data)
}

// FSFiles reads from a file system such as an embed.FS.
type FSFiles struct {
	FS fs.FS
}

func (f FSFiles) ReadFile(path string) (string, error) {
	data, err := fs.ReadFile(f.FS, path)
	if err != nil {
		return "", err
	}
	return DecodeText(data)
}

// DecodeText decodes script text. A UTF-8 or UTF-16 byte order mark selects
// the encoding and is removed; without one the text is taken to be UTF-8.
func DecodeText(data []byte) (string, error) {
	if !hasBOM(data) {
		return string(data), nil
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func hasBOM(data []byte) bool {
	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return true
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return true
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return true
	}
	return false
}
