package translate

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tsawler/pdftranslate/chunk"
	"github.com/tsawler/pdftranslate/model"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc is called after each chunk with the number finished so far
// and the total. Calls are serialised.
type ProgressFunc func(done, total int)

// Engine translates whole documents chunk by chunk.
type Engine struct {
	translator    Translator
	pagesPerChunk int
	concurrency   int
	progress      ProgressFunc
	logger        zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPagesPerChunk sets the chunk size in pages.
func WithPagesPerChunk(n int) Option {
	return func(e *Engine) { e.pagesPerChunk = n }
}

// WithConcurrency sets how many chunks may be in flight at once. Values
// below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.concurrency = n
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// WithLogger sets the engine's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine returns an Engine using t. By default chunks hold
// chunk.DefaultPagesPerChunk pages and run one at a time.
func NewEngine(t Translator, opts ...Option) *Engine {
	e := &Engine{
		translator:    t,
		pagesPerChunk: chunk.DefaultPagesPerChunk,
		concurrency:   1,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Translate splits text into chunks, translates each and joins the
// results in chunk order. The first failure cancels the chunks still
// running and is returned.
func (e *Engine) Translate(ctx context.Context, text model.AnnotatedText) (model.AnnotatedText, error) {
	chunks, err := chunk.Split(text, e.pagesPerChunk)
	if err != nil {
		return "", err
	}

	results := make([]string, len(chunks))
	total := len(chunks)
	var (
		mu   sync.Mutex
		done int
	)
	report := func() {
		mu.Lock()
		defer mu.Unlock()
		done++
		if e.progress != nil {
			e.progress(done, total)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, c := range chunks {
		if c.Empty() {
			report()
			continue
		}
		g.Go(func() error {
			e.logger.Debug().
				Int("chunk", c.Index+1).
				Int("of", total).
				Int("first_page", c.FirstPage).
				Int("last_page", c.LastPage).
				Msg("translating chunk")

			out, err := e.translator.Translate(gctx, c.Text)
			if err != nil {
				return fmt.Errorf("chunk %d (pages %d-%d): %w", c.Index+1, c.FirstPage, c.LastPage, err)
			}
			results[c.Index] = out
			report()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	e.logger.Info().Int("chunks", total).Int("pages", text.PageCount()).Msg("translation complete")
	return chunk.Join(results), nil
}
