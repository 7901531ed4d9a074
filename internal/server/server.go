// Package server exposes extraction, translation and reassembly over
// HTTP. Uploaded documents are kept in memory for a limited time.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/tsawler/pdftranslate/internal/logging"
	"github.com/tsawler/pdftranslate/translate"
)

// multipartOverhead is allowed on top of the file size limit for the
// form envelope.
const multipartOverhead = 1 << 20

// Config holds the server's limits and translation settings.
type Config struct {
	MaxUploadBytes int64
	PagesPerChunk  int
	Concurrency    int
	FontPath       string
	DocumentTTL    time.Duration
}

// Server serves the HTTP API.
type Server struct {
	cfg        Config
	translator translate.Translator
	store      *Store
	log        zerolog.Logger
	engine     *gin.Engine
}

// New returns a server that translates with t.
func New(cfg Config, t translate.Translator, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:        cfg,
		translator: t,
		store:      NewStore(cfg.DocumentTTL),
		log:        logger,
	}

	r := gin.New()
	r.Use(logging.Middleware(logger))
	r.Use(gin.CustomRecovery(s.handlePanics))
	r.MaxMultipartMemory = cfg.MaxUploadBytes

	r.GET("/healthz", s.health)
	r.GET("/", s.index)

	docs := r.Group("/api/v1/documents")
	{
		docs.POST("", s.upload)
		docs.GET("/:id", s.status)
		docs.GET("/:id/images/:index", s.image)
		docs.POST("/:id/translate", s.translate)
		docs.GET("/:id/pdf", s.pdf)
		docs.DELETE("/:id", s.remove)
	}

	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Store returns the document store, so callers can run its sweeper.
func (s *Server) Store() *Store {
	return s.store
}

func (s *Server) handlePanics(c *gin.Context, recovered any) {
	s.log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
	if err, ok := recovered.(error); ok {
		c.String(http.StatusInternalServerError, err.Error())
	}
	c.AbortWithStatus(http.StatusInternalServerError)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

func abort(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
