package parser

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/charmap"
)

func TestTextParser_ValidUTF8(t *testing.T) {
	p := &TextParser{}
	got, err := p.Parse(strings.NewReader("Wiederaufnahme der Sitzungsperiode\nÜbersetzung\n"), "ep-00-01-17.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Wiederaufnahme der Sitzungsperiode\nÜbersetzung\n" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestTextParser_InvalidUTF8(t *testing.T) {
	p := &TextParser{}
	_, err := p.Parse(bytes.NewReader([]byte{'o', 'k', '\n', 0xff, 0xfe, '\n'}), "bad.txt")
	if !errors.Is(err, ErrUndecodable) {
		t.Fatalf("expected ErrUndecodable, got %v", err)
	}
}

func TestTextParser_NormalizesLineEndings(t *testing.T) {
	p := &TextParser{}
	got, err := p.Parse(strings.NewReader("one\r\ntwo\rthree\n"), "crlf.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "one\ntwo\nthree\n" {
		t.Errorf("expected LF line endings, got %q", got)
	}
}

func TestTextParser_Latin1(t *testing.T) {
	p := &TextParser{Encoding: charmap.ISO8859_1}
	got, err := p.Parse(bytes.NewReader([]byte{'c', 'a', 'f', 0xe9, '\n'}), "latin1.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "café\n" {
		t.Errorf("expected %q, got %q", "café\n", got)
	}
}

func TestLookupEncoding(t *testing.T) {
	for _, label := range []string{"", "utf-8", "UTF8"} {
		enc, err := LookupEncoding(label)
		if err != nil || enc != nil {
			t.Errorf("LookupEncoding(%q) = %v, %v; want nil, nil", label, enc, err)
		}
	}

	enc, err := LookupEncoding("iso-8859-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enc == nil {
		t.Fatal("expected an encoding for iso-8859-1")
	}

	if _, err := LookupEncoding("klingon"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestMarkdownParser_KeepsProseDropsCode(t *testing.T) {
	input := "# Title\n\nIntro *text*.\n\n```\ncode block\n```\n\n- item one\n- item two\n"
	got, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Title\nIntro text.\nitem one\nitem two\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestHTMLParser_BlockText(t *testing.T) {
	input := `<html><head><title>T</title><style>p{}</style></head>
<body><nav>menu</nav><h1>Heading</h1><p>First   paragraph
spans lines.</p><script>var x;</script><ul><li>Item</li></ul></body></html>`
	got, err := (&HTMLParser{}).Parse(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Heading\nFirst paragraph spans lines.\nItem\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPDFParser_Garbage(t *testing.T) {
	_, err := (&PDFParser{}).Parse(strings.NewReader("not a pdf"), "x.pdf")
	if !errors.Is(err, ErrUndecodable) {
		t.Fatalf("expected ErrUndecodable, got %v", err)
	}
}

func TestDOCXParser_Garbage(t *testing.T) {
	_, err := (&DOCXParser{}).Parse(strings.NewReader("not a zip"), "x.docx")
	if !errors.Is(err, ErrUndecodable) {
		t.Fatalf("expected ErrUndecodable, got %v", err)
	}
}

func TestDecompressParser_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("<P>\nhello\n"))
	zw.Close()

	p := ForFile("doc.txt.gz", Options{RichFormats: true})
	got, err := p.Parse(&buf, "doc.txt.gz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "<P>\nhello\n" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestDecompressParser_Zstd(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	compressed := enc.EncodeAll([]byte("bonjour\n"), nil)
	enc.Close()

	got, err := ForFile("doc.txt.zst", Options{RichFormats: true}).Parse(bytes.NewReader(compressed), "doc.txt.zst")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "bonjour\n" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestDecompressParser_CorruptStream(t *testing.T) {
	_, err := ForFile("doc.txt.gz", Options{RichFormats: true}).Parse(strings.NewReader("\x1f\x8bnot really gzip"), "doc.txt.gz")
	if !errors.Is(err, ErrUndecodable) {
		t.Fatalf("expected ErrUndecodable, got %v", err)
	}
}

func TestDecompressParser_PlainTextWithCompressedName(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		opts     Options
	}{
		{"gz text mode", "c.gz", Options{}},
		{"zst text mode", "c.zst", Options{}},
		{"gz rich mode", "c.gz", Options{RichFormats: true}},
		{"zst rich mode", "c.txt.zst", Options{RichFormats: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ForFile(tt.filename, tt.opts).Parse(strings.NewReader("plain text\n"), tt.filename)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != "plain text\n" {
				t.Errorf("unexpected text %q", got)
			}
		})
	}
}

func TestForFile(t *testing.T) {
	rich := Options{RichFormats: true}
	tests := []struct {
		filename string
		opts     Options
		want     string
	}{
		{"ep-00-01-17.txt", rich, "*parser.TextParser"},
		{"ep-00-01-17", rich, "*parser.TextParser"},
		{"README.md", rich, "*parser.MarkdownParser"},
		{"page.HTM", rich, "*parser.HTMLParser"},
		{"report.pdf", rich, "*parser.PDFParser"},
		{"letter.docx", rich, "*parser.DOCXParser"},
		{"page.html", Options{}, "*parser.TextParser"},
		{"README.md", Options{}, "*parser.TextParser"},
		{"report.pdf", Options{}, "*parser.TextParser"},
		{"doc.txt.gz", rich, "*parser.DecompressParser"},
		{"doc.txt.gz", Options{}, "*parser.TextParser"},
		{"doc.txt.zst", Options{}, "*parser.TextParser"},
	}
	for _, tt := range tests {
		got := typeName(ForFile(tt.filename, tt.opts))
		if got != tt.want {
			t.Errorf("ForFile(%q) = %s, want %s", tt.filename, got, tt.want)
		}
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("a.DOCX") {
		t.Error("expected .DOCX to be supported")
	}
	if IsSupportedExtension("a.csv") {
		t.Error("expected .csv to fall back to plain text")
	}
}

func typeName(p Parser) string {
	switch p.(type) {
	case *TextParser:
		return "*parser.TextParser"
	case *MarkdownParser:
		return "*parser.MarkdownParser"
	case *HTMLParser:
		return "*parser.HTMLParser"
	case *PDFParser:
		return "*parser.PDFParser"
	case *DOCXParser:
		return "*parser.DOCXParser"
	case *DecompressParser:
		return "*parser.DecompressParser"
	}
	return "unknown"
}
