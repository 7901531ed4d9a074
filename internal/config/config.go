// Package config reads runtime settings from the environment. A .env file
// in the working directory is loaded first when present; variables already
// set in the environment take precedence over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAPIKey          = "GEMINI_API_KEY"
	EnvModel           = "PDFTRANSLATE_MODEL"
	EnvTargetLanguage  = "PDFTRANSLATE_TARGET_LANGUAGE"
	EnvPagesPerChunk   = "PDFTRANSLATE_PAGES_PER_CHUNK"
	EnvConcurrency     = "PDFTRANSLATE_CONCURRENCY"
	EnvMaxUploadBytes  = "PDFTRANSLATE_MAX_UPLOAD_BYTES"
	EnvListenAddr      = "PDFTRANSLATE_ADDR"
	EnvLogLevel        = "PDFTRANSLATE_LOG_LEVEL"
	EnvLogFormat       = "PDFTRANSLATE_LOG_FORMAT"
	EnvFontPath        = "PDFTRANSLATE_FONT"
	EnvShutdownTimeout = "PDFTRANSLATE_SHUTDOWN_TIMEOUT"
	EnvDocumentTTL     = "PDFTRANSLATE_DOCUMENT_TTL"
)

// Config holds the settings shared by the command and the server.
type Config struct {
	GeminiAPIKey    string
	Model           string
	TargetLanguage  string
	PagesPerChunk   int
	Concurrency     int
	MaxUploadBytes  int64
	ListenAddr      string
	LogLevel        string
	LogFormat       string
	FontPath        string
	ShutdownTimeout time.Duration
	DocumentTTL     time.Duration
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Model:           "gemini-2.0-flash",
		TargetLanguage:  "English",
		PagesPerChunk:   10,
		Concurrency:     1,
		MaxUploadBytes:  50 << 20,
		ListenAddr:      ":8080",
		LogLevel:        "info",
		LogFormat:       "console",
		ShutdownTimeout: 10 * time.Second,
		DocumentTTL:     time.Hour,
	}
}

// Load reads the named dotenv files, or .env when none are named, and
// then the environment. Missing files are skipped.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv applies the variables returned by getenv over Default and
// validates the result.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()
	p := parser{getenv: getenv}

	p.stringVar(EnvAPIKey, &c.GeminiAPIKey)
	p.stringVar(EnvModel, &c.Model)
	p.stringVar(EnvTargetLanguage, &c.TargetLanguage)
	p.intVar(EnvPagesPerChunk, &c.PagesPerChunk)
	p.intVar(EnvConcurrency, &c.Concurrency)
	p.int64Var(EnvMaxUploadBytes, &c.MaxUploadBytes)
	p.stringVar(EnvListenAddr, &c.ListenAddr)
	p.stringVar(EnvLogLevel, &c.LogLevel)
	p.stringVar(EnvLogFormat, &c.LogFormat)
	p.stringVar(EnvFontPath, &c.FontPath)
	p.durationVar(EnvShutdownTimeout, &c.ShutdownTimeout)
	p.durationVar(EnvDocumentTTL, &c.DocumentTTL)

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	if c.PagesPerChunk <= 0 {
		errs = append(errs, fmt.Errorf("pages per chunk must be positive, got %d", c.PagesPerChunk))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout))
	}
	if c.DocumentTTL <= 0 {
		errs = append(errs, fmt.Errorf("document TTL must be positive, got %s", c.DocumentTTL))
	}
	if c.Model == "" {
		errs = append(errs, errors.New("model must not be empty"))
	}
	if c.TargetLanguage == "" {
		errs = append(errs, errors.New("target language must not be empty"))
	}
	return errors.Join(errs...)
}

type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) stringVar(key string, dst *string) {
	if v := p.getenv(key); v != "" {
		*dst = v
	}
}

func (p *parser) intVar(key string, dst *int) {
	v := p.getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func (p *parser) int64Var(key string, dst *int64) {
	v := p.getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func (p *parser) durationVar(key string, dst *time.Duration) {
	v := p.getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = d
}
