package parser

import (
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
)

var errInvalidUTF8 = errors.New("invalid utf-8 sequence")

// TextParser handles plain text files. Content is decoded strictly: with
// no Encoding set, any invalid UTF-8 makes the whole document undecodable.
type TextParser struct {
	Encoding encoding.Encoding
}

func (p *TextParser) Parse(r io.Reader, filename string) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	if p.Encoding == nil {
		if !utf8.Valid(raw) {
			return "", undecodable("utf-8", errInvalidUTF8)
		}
		return normalizeNewlines(string(raw)), nil
	}

	decoded, err := p.Encoding.NewDecoder().Bytes(raw)
	if err != nil {
		return "", undecodable("decode", err)
	}
	return normalizeNewlines(string(decoded)), nil
}
