package linefilter

import "strings"

// Stats counts what Apply did with each input line.
type Stats struct {
	Kept        int `json:"kept"`
	MarkupLines int `json:"markup_dropped"`
	EmptyLines  int `json:"empty_dropped"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Kept += other.Kept
	s.MarkupLines += other.MarkupLines
	s.EmptyLines += other.EmptyLines
}

// IsMarkup reports whether a non-empty line starts with a document tag
// ("<") or an annotation ("(").
func IsMarkup(line string) bool {
	return len(line) > 0 && (line[0] == '<' || line[0] == '(')
}

// Filter returns text with empty and markup lines removed. Every kept line
// is terminated by exactly one newline.
func Filter(text string) string {
	out, _ := Apply(text)
	return out
}

// Apply is Filter plus line counts.
func Apply(text string) (string, Stats) {
	var (
		b     strings.Builder
		stats Stats
	)
	if text == "" {
		return "", stats
	}
	b.Grow(len(text) + 1)

	// A trailing newline terminates the last line; it does not start an
	// empty one.
	for line := range strings.SplitSeq(strings.TrimSuffix(text, "\n"), "\n") {
		switch {
		case line == "":
			stats.EmptyLines++
		case IsMarkup(line):
			stats.MarkupLines++
		default:
			stats.Kept++
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String(), stats
}
