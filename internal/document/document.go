// Package document defines the text-extraction seam consumed by the
// pipeline. The core treats extracted text as opaque and inserts it verbatim
// into prompts; format-specific parsers (PDF, DOCX) live behind the
// Extractor interface and are supplied by the caller.
package document

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Extractor turns raw uploaded bytes into prompt-ready text.
type Extractor interface {
	ExtractText(raw []byte) (string, error)
}

// ReadError reports an unparseable document.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("error reading document: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// PlainText extracts UTF-8 text files verbatim.
type PlainText struct{}

func (PlainText) ExtractText(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", &ReadError{Err: fmt.Errorf("document is not valid UTF-8 text")}
	}
	if strings.TrimSpace(string(raw)) == "" {
		return "", &ReadError{Err: fmt.Errorf("document is empty")}
	}
	return string(raw), nil
}
