// Package extractor turns uploaded resume files into plain text.
package extractor

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

const (
	// UnsupportedText is stored for file types we cannot read.
	UnsupportedText = "Unsupported file type"
	// FailedText is stored when a supported file could not be parsed.
	FailedText = "Extraction failed"
)

// Kind is the file variant, resolved once from the file name.
type Kind int

const (
	KindUnsupported Kind = iota
	KindPDF
	KindDOCX
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindDOCX:
		return "docx"
	default:
		return "unsupported"
	}
}

// KindFor dispatches on the lowercased extension of filename.
func KindFor(filename string) Kind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	default:
		return KindUnsupported
	}
}

// Parser extracts text from a complete document.
type Parser interface {
	Parse(r io.ReaderAt, size int64) (string, error)
}

type ParserFunc func(r io.ReaderAt, size int64) (string, error)

func (f ParserFunc) Parse(r io.ReaderAt, size int64) (string, error) { return f(r, size) }

// Result is the outcome of one extraction. Failed is set when a supported
// document could not be parsed; Err then holds the cause.
type Result struct {
	Kind   Kind
	Text   string
	Failed bool
	Err    error
}

type Extractor struct {
	parsers map[Kind]Parser
}

// New returns an Extractor wired with the PDF and DOCX parsers.
func New() *Extractor {
	return &Extractor{parsers: map[Kind]Parser{
		KindPDF:  PDFParser{},
		KindDOCX: DOCXParser{},
	}}
}

// WithParser replaces the parser for one kind.
func (e *Extractor) WithParser(k Kind, p Parser) *Extractor {
	cp := make(map[Kind]Parser, len(e.parsers))
	for kind, parser := range e.parsers {
		cp[kind] = parser
	}
	cp[k] = p
	return &Extractor{parsers: cp}
}

// Extract reads the whole document and never returns an error: parse failures
// become FailedText and unknown types UnsupportedText.
func (e *Extractor) Extract(filename string, r io.Reader) Result {
	kind := KindFor(filename)
	parser, ok := e.parsers[kind]
	if kind == KindUnsupported || !ok {
		return Result{Kind: kind, Text: UnsupportedText}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return failed(kind, fmt.Errorf("read %s: %w", kind, err))
	}

	text, err := safeParse(parser, data)
	if err != nil {
		return failed(kind, err)
	}
	return Result{Kind: kind, Text: text}
}

func failed(kind Kind, err error) Result {
	return Result{Kind: kind, Text: FailedText, Failed: true, Err: err}
}

// safeParse shields the caller from parsers that panic on malformed input.
func safeParse(p Parser, data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("parser panic: %v", rec)
		}
	}()
	return p.Parse(bytes.NewReader(data), int64(len(data)))
}
