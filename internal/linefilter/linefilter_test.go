package linefilter

import (
	"strings"
	"testing"
)

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty input", "", ""},
		{"empty lines elided", "a\n\nb\n", "a\nb\n"},
		{"missing final newline added", "a\nb", "a\nb\n"},
		{"document tags dropped", "<CHAPTER ID=1>\nResumption of the session\n", "Resumption of the session\n"},
		{"annotations dropped", "(The sitting was opened at 9 a.m.)\nI declare resumed.\n", "I declare resumed.\n"},
		{"whitespace-only line kept", "a\n   \nb\n", "a\n   \nb\n"},
		{"markup only after leading space is kept", " <p>\n", " <p>\n"},
		{"markup later in line is kept", "x < y (z)\n", "x < y (z)\n"},
		{"only markup", "<P>\n(applause)\n<SPEAKER ID=2>\n", ""},
		{"carriage return stays on the line", "hello\r\n", "hello\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filter(tt.input); got != tt.want {
				t.Errorf("Filter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"<doc>\nline one\n\n(note)\nline two",
		"   \n\t\nplain",
		"ünïcödé\n<tag>\nκείμενο\n",
	}
	for _, in := range inputs {
		once := Filter(in)
		twice := Filter(once)
		if once != twice {
			t.Errorf("Filter not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestFilter_PreservesOrderOfKeptLines(t *testing.T) {
	var in strings.Builder
	var want strings.Builder
	for i := range 50 {
		line := strings.Repeat("w", i+1)
		in.WriteString("<s id=x>\n")
		in.WriteString(line + "\n\n")
		want.WriteString(line + "\n")
	}
	if got := Filter(in.String()); got != want.String() {
		t.Errorf("kept lines out of order:\n got %q\nwant %q", got, want.String())
	}
}

func TestApply_Stats(t *testing.T) {
	out, stats := Apply("<P>\nfirst\n\n(2)\nsecond\n\n")
	if out != "first\nsecond\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if stats.Kept != 2 {
		t.Errorf("expected 2 kept, got %d", stats.Kept)
	}
	if stats.MarkupLines != 2 {
		t.Errorf("expected 2 markup lines, got %d", stats.MarkupLines)
	}
	if stats.EmptyLines != 2 {
		t.Errorf("expected 2 empty lines, got %d", stats.EmptyLines)
	}
}

func TestStats_Add(t *testing.T) {
	s := Stats{Kept: 1, MarkupLines: 2, EmptyLines: 3}
	s.Add(Stats{Kept: 10, MarkupLines: 20, EmptyLines: 30})
	if s != (Stats{Kept: 11, MarkupLines: 22, EmptyLines: 33}) {
		t.Errorf("unexpected sum %+v", s)
	}
}

func TestIsMarkup(t *testing.T) {
	cases := map[string]bool{
		"":          false,
		"<":         true,
		"(":         true,
		"<CHAPTER>": true,
		"text":      false,
		" (x)":      false,
		"[x]":       false,
	}
	for line, want := range cases {
		if got := IsMarkup(line); got != want {
			t.Errorf("IsMarkup(%q) = %v, want %v", line, got, want)
		}
	}
}
