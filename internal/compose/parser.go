package compose

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"
)

// ErrEmptyDocument is returned for input without any YAML content.
var ErrEmptyDocument = errors.New("document is empty")

// ParseError reports a compose document that could not be decoded.
type ParseError struct {
	Source string // File path or other origin, empty if unknown
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("failed to parse docker-compose document: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse docker-compose file %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes a docker-compose document.
//
// The parser works on the supplied bytes only. Malformed input yields a
// *ParseError, it never panics. JSON input is accepted since it is valid YAML.
func Parse(data []byte) (*Document, error) {
	return parse("", data)
}

// ParseReader reads the whole stream and decodes it. The source name is only
// used in error messages.
func ParseReader(source string, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Source: source, Err: fmt.Errorf("failed to read document: %w", err)}
	}
	return parse(source, data)
}

func parse(source string, data []byte) (doc *Document, err error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Source: source, Err: ErrEmptyDocument}
	}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &ParseError{Source: source, Err: fmt.Errorf("decoder panic: %v", r)}
		}
	}()

	var decoded Document
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	if decoded.Services == nil {
		decoded.Services = map[string]Service{}
	}
	return &decoded, nil
}
