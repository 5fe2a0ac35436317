package corpus

import (
	"fmt"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/dgallion1/corpusprep/internal/filestore"
	"github.com/dgallion1/corpusprep/internal/linefilter"
)

// Report summarizes one Build run.
type Report struct {
	InputRoot  string           `json:"input_root"`
	OutputRoot string           `json:"output_root"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Languages  []LanguageReport `json:"languages"`
}

// LanguageReport describes the artifact built for one language code.
type LanguageReport struct {
	Code      string           `json:"code"`
	Artifact  string           `json:"artifact"`
	Files     int              `json:"files"`
	Skipped   []SkippedFile    `json:"skipped,omitempty"`
	Lines     linefilter.Stats `json:"lines"`
	Bytes     int64            `json:"bytes"`
	Checksum  string           `json:"xxh3,omitempty"`
	ElapsedMs int64            `json:"elapsed_ms"`
	Error     string           `json:"error,omitempty"`
}

// SkippedFile is an input file left out of its language's corpus.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Failed returns the languages that produced no artifact.
func (r *Report) Failed() []LanguageReport {
	var out []LanguageReport
	for _, l := range r.Languages {
		if l.Error != "" {
			out = append(out, l)
		}
	}
	return out
}

// SkippedFiles counts skipped files across all languages.
func (r *Report) SkippedFiles() int {
	n := 0
	for _, l := range r.Languages {
		n += len(l.Skipped)
	}
	return n
}

// WriteManifest stores the report as indented JSON at path.
func WriteManifest(store filestore.Store, path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := store.MkdirAll(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	if err := store.WriteText(path, string(data)+"\n"); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
