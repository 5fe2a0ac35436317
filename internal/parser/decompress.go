package parser

import (
	"bufio"
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies a stream wrapper around a document.
type Compression int

const (
	Gzip Compression = iota + 1
	Zstd
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

func (c Compression) magic() []byte {
	switch c {
	case Gzip:
		return gzipMagic
	case Zstd:
		return zstdMagic
	}
	return nil
}

// DecompressParser unwraps a compressed document and hands the plain
// stream to Inner. A file whose leading bytes are not the expected magic
// number is passed to Inner unchanged.
type DecompressParser struct {
	Kind  Compression
	Inner Parser
}

func (p *DecompressParser) Parse(r io.Reader, filename string) (string, error) {
	br := bufio.NewReader(r)
	if magic := p.Kind.magic(); magic != nil {
		head, _ := br.Peek(len(magic))
		if !bytes.Equal(head, magic) {
			return p.Inner.Parse(br, filename)
		}
	}

	switch p.Kind {
	case Gzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return "", undecodable("gzip", err)
		}
		defer zr.Close()
		return p.parseInner(zr, filename)
	case Zstd:
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return "", undecodable("zstd", err)
		}
		defer zr.Close()
		return p.parseInner(zr, filename)
	default:
		return p.Inner.Parse(br, filename)
	}
}

func (p *DecompressParser) parseInner(r io.Reader, filename string) (string, error) {
	// Read fully first so a truncated stream is reported as undecodable
	// rather than as a read error from the inner parser.
	plain, err := io.ReadAll(r)
	if err != nil {
		return "", undecodable("decompress", err)
	}
	return p.Inner.Parse(bytes.NewReader(plain), filename)
}
