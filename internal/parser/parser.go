package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var (
	// ErrUndecodable marks content that cannot be turned into text. It is a
	// per-document condition; callers skip the document and move on.
	ErrUndecodable = errors.New("content is not decodable as text")

	// ErrUnsupported is returned for an unknown source encoding label.
	ErrUnsupported = errors.New("unsupported encoding")
)

// Parser converts raw document bytes into plain text, one line per
// paragraph-like unit, separated by "\n".
type Parser interface {
	Parse(r io.Reader, filename string) (string, error)
}

// Options control parser selection.
type Options struct {
	// Encoding of plain text sources. Nil means strict UTF-8.
	Encoding encoding.Encoding
	// RichFormats enables the Markdown, HTML, PDF and DOCX extractors.
	// When false every file is read as plain text.
	RichFormats bool
	// PDFFallbackPdftotext shells out to pdftotext when the Go extractor fails.
	PDFFallbackPdftotext bool
}

// LookupEncoding resolves a WHATWG encoding label. "", "utf-8" and "utf8"
// return nil, which selects strict UTF-8 validation.
func LookupEncoding(label string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, label)
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}

// SupportedExtensions lists the extensions with a dedicated extractor.
// Anything else is read as plain text.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the parser for a filename. Without RichFormats every file
// is plain text regardless of its extension. With it, compressed files
// (.gz, .zst) are unwrapped and dispatched on the inner extension.
func ForFile(filename string, opts Options) Parser {
	if !opts.RichFormats {
		return &TextParser{Encoding: opts.Encoding}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".gz":
		return &DecompressParser{Kind: Gzip, Inner: ForFile(strings.TrimSuffix(filename, filepath.Ext(filename)), opts)}
	case ".zst":
		return &DecompressParser{Kind: Zstd, Inner: ForFile(strings.TrimSuffix(filename, filepath.Ext(filename)), opts)}
	case ".md", ".markdown":
		return &MarkdownParser{}
	case ".html", ".htm":
		return &HTMLParser{}
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}
	case ".docx":
		return &DOCXParser{}
	default:
		return &TextParser{Encoding: opts.Encoding}
	}
}

// IsSupportedExtension checks if a file extension has a dedicated extractor.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// undecodable wraps a parse failure so callers can match ErrUndecodable.
func undecodable(stage string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUndecodable, stage, err)
}

// normalizeNewlines turns CRLF and lone CR line endings into LF.
func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// joinLines joins extracted units with "\n", dropping empty ones.
func joinLines(units []string) string {
	var b strings.Builder
	for _, u := range units {
		if u == "" {
			continue
		}
		b.WriteString(u)
		b.WriteByte('\n')
	}
	return b.String()
}
