package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/corpusprep/internal/filestore"
	"github.com/dgallion1/corpusprep/internal/linefilter"
	"github.com/dgallion1/corpusprep/internal/parser"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
)

// ErrInputRootMissing is returned when the input root is not a directory.
// Nothing is created or modified in that case.
var ErrInputRootMissing = errors.New("input directory does not exist")

// ArtifactName is the output file name for a language code.
func ArtifactName(code string) string {
	return "lang-" + code + ".txt"
}

// Options configure a Builder.
type Options struct {
	Parser parser.Options
	// Workers bounds how many languages are built at once. Values below 2
	// give a strictly sequential run.
	Workers int
}

// Builder turns an input tree of per-language directories into one
// filtered artifact per language. It holds no per-run state, so a single
// Builder may serve concurrent Build calls on different roots.
type Builder struct {
	store filestore.Store
	opts  Options
	log   *slog.Logger
}

// NewBuilder creates a Builder reading and writing through store.
func NewBuilder(store filestore.Store, opts Options, log *slog.Logger) *Builder {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Builder{store: store, opts: opts, log: log}
}

// Document is one decoded input file.
type Document struct {
	Path string
	Text string
}

// ReadDocument reads and decodes a single file. Errors wrapping
// parser.ErrUndecodable mean the content is not text; any other error is an
// I/O failure. Both are per-file conditions.
func (b *Builder) ReadDocument(path string) (Document, error) {
	raw, err := b.store.ReadBytes(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	p := parser.ForFile(filepath.Base(path), b.opts.Parser)
	text, err := p.Parse(bytes.NewReader(raw), filepath.Base(path))
	if err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return Document{Path: path, Text: text}, nil
}

// Build processes every language directory under inputRoot and writes
// outputRoot/lang-<code>.txt for each. Per-file and per-language failures
// are logged and recorded in the report; only a missing input root, an
// unusable output root or cancellation end the run early.
func (b *Builder) Build(ctx context.Context, inputRoot, outputRoot string) (*Report, error) {
	report := &Report{
		InputRoot:  inputRoot,
		OutputRoot: outputRoot,
		StartedAt:  time.Now().UTC(),
	}
	defer func() { report.FinishedAt = time.Now().UTC() }()

	ok, err := b.store.IsDir(inputRoot)
	if err != nil {
		return report, fmt.Errorf("stat input root: %w", err)
	}
	if !ok {
		b.log.Error("input directory does not exist", "path", inputRoot)
		return report, fmt.Errorf("%w: %s", ErrInputRootMissing, inputRoot)
	}

	if err := b.store.MkdirAll(outputRoot); err != nil {
		return report, fmt.Errorf("create output root: %w", err)
	}

	entries, err := b.store.List(inputRoot)
	if err != nil {
		return report, fmt.Errorf("list input root: %w", err)
	}

	var codes []string
	for _, e := range entries {
		if !e.IsDir {
			b.log.Debug("skipping non-directory entry", "path", filepath.Join(inputRoot, e.Name))
			continue
		}
		codes = append(codes, e.Name)
	}

	report.Languages = make([]LanguageReport, len(codes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for i, code := range codes {
		g.Go(func() error {
			lr, err := b.buildLanguage(gctx, inputRoot, outputRoot, code)
			report.Languages[i] = lr
			// Only cancellation stops the other languages.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

func (b *Builder) buildLanguage(ctx context.Context, inputRoot, outputRoot, code string) (LanguageReport, error) {
	start := time.Now()
	dir := filepath.Join(inputRoot, code)
	log := b.log.With("lang", code)

	lr := LanguageReport{
		Code:     code,
		Artifact: filepath.Join(outputRoot, ArtifactName(code)),
	}
	fail := func(err error) (LanguageReport, error) {
		lr.Error = err.Error()
		lr.ElapsedMs = time.Since(start).Milliseconds()
		return lr, err
	}

	log.Info("processing directory", "path", dir)

	entries, err := b.store.List(dir)
	if err != nil {
		log.Error("list language directory failed", "path", dir, "error", err)
		return fail(fmt.Errorf("list %s: %w", dir, err))
	}

	var corpus strings.Builder
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		path := filepath.Join(dir, e.Name)
		if !e.IsRegular {
			log.Debug("skipping non-file entry", "path", path)
			continue
		}
		lr.Files++

		doc, err := b.ReadDocument(path)
		if err != nil {
			if errors.Is(err, parser.ErrUndecodable) {
				log.Warn("skipping undecodable file", "path", path, "error", err)
			} else {
				log.Warn("skipping unreadable file", "path", path, "error", err)
			}
			lr.Skipped = append(lr.Skipped, SkippedFile{Path: path, Reason: err.Error()})
			continue
		}

		filtered, stats := linefilter.Apply(doc.Text)
		lr.Lines.Add(stats)
		corpus.WriteString(filtered)
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	text := corpus.String()
	if text == "" {
		log.Warn("empty corpus", "path", dir, "files", lr.Files, "skipped", len(lr.Skipped))
	}
	if err := b.store.WriteText(lr.Artifact, text); err != nil {
		log.Error("write artifact failed", "artifact", lr.Artifact, "error", err)
		return fail(fmt.Errorf("write %s: %w", lr.Artifact, err))
	}

	lr.Bytes = int64(len(text))
	lr.Checksum = fmt.Sprintf("%016x", xxh3.HashString(text))
	lr.ElapsedMs = time.Since(start).Milliseconds()
	log.Info("wrote artifact",
		"artifact", lr.Artifact,
		"files", lr.Files,
		"skipped", len(lr.Skipped),
		"lines", lr.Lines.Kept,
		"bytes", lr.Bytes,
	)
	return lr, nil
}
