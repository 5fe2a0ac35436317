package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/corpusprep/internal/api"
	"github.com/dgallion1/corpusprep/internal/config"
	"github.com/dgallion1/corpusprep/internal/corpus"
	"github.com/dgallion1/corpusprep/internal/filestore"
	"github.com/dgallion1/corpusprep/internal/parser"
	"github.com/dgallion1/corpusprep/internal/pipeline"
)

const (
	exitOK           = 0
	exitConfig       = 1
	exitInputMissing = 2
	exitBuildFailed  = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	cfg := config.Load()

	fs := flag.NewFlagSet("corpusbuild", flag.ContinueOnError)
	fs.StringVar(&cfg.InputDir, "in", cfg.InputDir, "input root with one subdirectory per language code")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "output root for lang-<code>.txt artifacts")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "languages built in parallel")
	fs.StringVar(&cfg.ManifestPath, "manifest", cfg.ManifestPath, "write a JSON build report to this path")
	fs.StringVar(&cfg.InputEncoding, "encoding", cfg.InputEncoding, "source text encoding (WHATWG label)")
	serve := fs.Bool("serve", false, "run the HTTP API instead of a single build")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	log := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	validate := cfg.Validate
	if *serve {
		validate = cfg.ValidateServe
	}
	if err := validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return exitConfig
	}

	enc, err := parser.LookupEncoding(cfg.InputEncoding)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		return exitConfig
	}

	store := filestore.NewOS(cfg.AtomicWrites)
	builder := corpus.NewBuilder(store, corpus.Options{
		Parser: parser.Options{
			Encoding:             enc,
			RichFormats:          cfg.RichFormats,
			PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
		},
		Workers: cfg.Workers,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *serve {
		return serveAPI(ctx, cfg, store, builder, log)
	}
	return buildOnce(ctx, cfg, store, builder, log)
}

func buildOnce(ctx context.Context, cfg config.Config, store filestore.Store, builder *corpus.Builder, log *slog.Logger) int {
	report, err := builder.Build(ctx, cfg.InputDir, cfg.OutputDir)
	if errors.Is(err, corpus.ErrInputRootMissing) {
		// Already reported by the builder.
		return exitInputMissing
	}
	if err != nil {
		log.Error("build failed", "error", err)
		return exitBuildFailed
	}

	if cfg.ManifestPath != "" {
		if err := corpus.WriteManifest(store, cfg.ManifestPath, report); err != nil {
			log.Error("write manifest failed", "error", err)
			return exitBuildFailed
		}
	}

	log.Info("build completed",
		"languages", len(report.Languages),
		"failed_languages", len(report.Failed()),
		"skipped_files", report.SkippedFiles(),
		"elapsed", report.FinishedAt.Sub(report.StartedAt).String(),
	)
	if len(report.Failed()) > 0 {
		return exitBuildFailed
	}
	return exitOK
}

func serveAPI(ctx context.Context, cfg config.Config, store filestore.Store, builder *corpus.Builder, log *slog.Logger) int {
	pcfg := pipeline.Config{
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	}
	if cfg.ManifestPath != "" {
		pcfg.AfterBuild = func(r *corpus.Report) error {
			return corpus.WriteManifest(store, cfg.ManifestPath, r)
		}
	}

	orch := pipeline.NewOrchestrator(pcfg, builder, log)
	orch.Start(ctx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(orch, store, log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		orch.Stop()
	}()

	log.Info("starting corpusbuild api", "port", cfg.Port, "input", cfg.InputDir, "output", cfg.OutputDir)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", fmt.Errorf("listen: %w", err))
		return exitConfig
	}
	orch.Stop()
	return exitOK
}
