package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/tsawler/pdftranslate"
	"github.com/tsawler/pdftranslate/assemble"
	"github.com/tsawler/pdftranslate/internal/config"
	"github.com/tsawler/pdftranslate/internal/logging"
	"github.com/tsawler/pdftranslate/internal/server"
	"github.com/tsawler/pdftranslate/translate"
)

// setup loads configuration and builds the logger.
func setup(stderr io.Writer) (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, stderr)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

func logWarnings(logger zerolog.Logger, warnings []pdftranslate.Warning) {
	for _, w := range warnings {
		ev := logger.Warn().Err(w.Err).Int("page", w.Page)
		if w.Image != "" {
			ev = ev.Str("image", w.Image)
		}
		ev.Msg("extraction warning")
	}
}

func runExtract(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "", "write the text to this file instead of standard output")
	imageDir := fs.String("images", "", "write recovered images to this directory")
	textOnly := fs.Bool("text-only", false, "skip image decoding")

	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return fmt.Errorf("%w: extract needs one input file", errUsage)
	}

	_, logger, err := setup(stderr)
	if err != nil {
		return err
	}

	ex := pdftranslate.Open(pos[0]).WithLogger(logger)
	if *textOnly {
		ex = ex.TextOnly()
	}
	res, warnings, err := ex.Extract()
	if err != nil {
		return fmt.Errorf("extracting %s: %w", pos[0], err)
	}
	logWarnings(logger, warnings)

	if *out == "" {
		if _, err := io.WriteString(stdout, string(res.Text)); err != nil {
			return err
		}
	} else if err := os.WriteFile(*out, []byte(res.Text), 0o644); err != nil {
		return fmt.Errorf("writing text: %w", err)
	}

	if *imageDir != "" {
		if err := os.MkdirAll(*imageDir, 0o755); err != nil {
			return fmt.Errorf("creating image directory: %w", err)
		}
		for _, img := range res.Images {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := filepath.Join(*imageDir, img.FileName())
			if err := os.WriteFile(p, img.Data, 0o644); err != nil {
				return fmt.Errorf("writing image: %w", err)
			}
		}
	}

	logger.Info().
		Int("pages", res.PageCount).
		Int("images", len(res.Images)).
		Int("warnings", len(warnings)).
		Msg("extraction complete")
	return nil
}

func runTranslate(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "", "output PDF file (required)")
	backend := fs.String("translator", "gemini", "translation backend: gemini or none")
	lang := fs.String("lang", "", "target language (default from PDFTRANSLATE_TARGET_LANGUAGE)")
	pagesPerChunk := fs.Int("chunk", 0, "pages per translation request (default from PDFTRANSLATE_PAGES_PER_CHUNK)")
	concurrency := fs.Int("concurrency", 0, "concurrent translation requests (default from PDFTRANSLATE_CONCURRENCY)")
	font := fs.String("font", "", "UTF-8 TrueType font for the output (default from PDFTRANSLATE_FONT)")
	keepTemp := fs.Bool("keep-temp", false, "keep the extracted and translated text in a scratch directory")

	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 || *out == "" {
		return fmt.Errorf("%w: translate needs one input file and -o", errUsage)
	}

	cfg, logger, err := setup(stderr)
	if err != nil {
		return err
	}
	if *lang != "" {
		cfg.TargetLanguage = *lang
	}
	if *pagesPerChunk != 0 {
		cfg.PagesPerChunk = *pagesPerChunk
	}
	if *concurrency != 0 {
		cfg.Concurrency = *concurrency
	}
	if *font != "" {
		cfg.FontPath = *font
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	tr, err := newTranslator(ctx, *backend, cfg)
	if err != nil {
		return err
	}

	scratch, err := os.MkdirTemp("", "pdftranslate-*")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	if *keepTemp {
		logger.Info().Str("dir", scratch).Msg("keeping intermediate files")
	} else {
		defer os.RemoveAll(scratch)
	}

	res, warnings, err := pdftranslate.Open(pos[0]).WithLogger(logger).Extract()
	if err != nil {
		return fmt.Errorf("extracting %s: %w", pos[0], err)
	}
	logWarnings(logger, warnings)
	if err := os.WriteFile(filepath.Join(scratch, "extracted.txt"), []byte(res.Text), 0o600); err != nil {
		return err
	}

	engine := translate.NewEngine(tr,
		translate.WithPagesPerChunk(cfg.PagesPerChunk),
		translate.WithConcurrency(cfg.Concurrency),
		translate.WithLogger(logger),
		translate.WithProgress(func(done, total int) {
			logger.Info().Msgf("translated chunk %d/%d", done, total)
		}),
	)
	text, err := engine.Translate(ctx, res.Text)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(scratch, "translated.txt"), []byte(text), 0o600); err != nil {
		return err
	}

	pdf, imgWarnings, err := assemble.Build(ctx, text, res.Images,
		assemble.WithFontFile(cfg.FontPath),
		assemble.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	for _, w := range imgWarnings {
		logger.Warn().Err(w.Err).Int("page", w.Page).Str("image", w.Image).Msg("image left out of PDF")
	}
	if err := os.WriteFile(*out, pdf, 0o644); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}

	fmt.Fprintf(stdout, "wrote %s (%d pages, %d images)\n", *out, res.PageCount, len(res.Images)-len(imgWarnings))
	return nil
}

func newTranslator(ctx context.Context, backend string, cfg config.Config) (translate.Translator, error) {
	switch backend {
	case "gemini":
		return translate.NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.TargetLanguage)
	case "none":
		return translate.Passthrough{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown translator %q", errUsage, backend)
	}
}

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", "", "listen address (default from PDFTRANSLATE_ADDR)")
	backend := fs.String("translator", "gemini", "translation backend: gemini or none")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	cfg, logger, err := setup(stderr)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	tr, err := newTranslator(ctx, *backend, cfg)
	if err != nil {
		return err
	}

	s := server.New(server.Config{
		MaxUploadBytes: cfg.MaxUploadBytes,
		PagesPerChunk:  cfg.PagesPerChunk,
		Concurrency:    cfg.Concurrency,
		FontPath:       cfg.FontPath,
		DocumentTTL:    cfg.DocumentTTL,
	}, tr, logger)
	go s.Store().Run(ctx, time.Minute)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
