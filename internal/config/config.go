package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Corpus roots
	InputDir  string
	OutputDir string

	// Decoding
	InputEncoding        string
	RichFormats          bool
	PDFFallbackPdftotext bool

	// Output
	AtomicWrites bool
	ManifestPath string

	// Languages built in parallel; 1 keeps the run sequential.
	Workers int

	LogLevel slog.Level

	// Serve mode
	Port         string
	APIKey       string
	MaxQueueSize int
	JobTTL       time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present; real environment variables
// take precedence over it.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		InputDir:  os.Getenv("INPUT_DIR"),
		OutputDir: os.Getenv("OUTPUT_DIR"),

		InputEncoding:        envOr("INPUT_ENCODING", "utf-8"),
		RichFormats:          envBool("RICH_FORMATS", false),
		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", false),

		AtomicWrites: envBool("ATOMIC_WRITES", true),
		ManifestPath: os.Getenv("MANIFEST_PATH"),

		Workers: envInt("WORKERS", 1),

		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),

		Port:         envOr("PORT", "8091"),
		APIKey:       os.Getenv("API_KEY"),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 16),
		JobTTL:       envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 16
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// Validate checks the settings needed for a build run.
func (c Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("INPUT_DIR (or -in) is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR (or -out) is required")
	}
	return nil
}

// ValidateServe additionally checks serve-mode settings.
func (c Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required in serve mode")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return lvl
}
