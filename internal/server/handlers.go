package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tsawler/pdftranslate"
	"github.com/tsawler/pdftranslate/assemble"
	"github.com/tsawler/pdftranslate/translate"
)

var (
	errNotFound       = errors.New("document not found")
	errNotTranslated  = errors.New("document has not been translated")
	errTooLarge       = errors.New("file exceeds the upload limit")
	errImageNotFound  = errors.New("image not found")
	errMissingFile    = errors.New("multipart field \"file\" is required")
	errBadImageNumber = errors.New("image index must be a non-negative integer")
)

type imageInfo struct {
	Index  int    `json:"index"`
	Page   int    `json:"page"`
	Name   string `json:"name"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"url"`
}

type documentInfo struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Pages      int         `json:"pages"`
	Images     []imageInfo `json:"images"`
	Warnings   []string    `json:"warnings"`
	Translated bool        `json:"translated"`
	Created    time.Time   `json:"created"`
	Expires    time.Time   `json:"expires"`
	Text       string      `json:"text,omitempty"`
}

func describe(doc *Document, withText bool) documentInfo {
	_, done := doc.Translation()
	info := documentInfo{
		ID:         doc.ID,
		Name:       doc.Name,
		Pages:      doc.Result.PageCount,
		Images:     make([]imageInfo, len(doc.Result.Images)),
		Warnings:   make([]string, len(doc.Warnings)),
		Translated: done,
		Created:    doc.Created,
		Expires:    doc.Expires,
	}
	for i, img := range doc.Result.Images {
		info.Images[i] = imageInfo{
			Index:  i,
			Page:   img.Page,
			Name:   img.Name,
			Format: img.Format.String(),
			Width:  img.Width,
			Height: img.Height,
			URL:    fmt.Sprintf("/api/v1/documents/%s/images/%d", doc.ID, i),
		}
	}
	for i, w := range doc.Warnings {
		info.Warnings[i] = w.Error()
	}
	if withText {
		info.Text = string(doc.Result.Text)
	}
	return info
}

func (s *Server) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			abort(c, http.StatusRequestEntityTooLarge, errTooLarge)
			return
		}
		abort(c, http.StatusBadRequest, errMissingFile)
		return
	}
	if fh.Size > s.cfg.MaxUploadBytes {
		abort(c, http.StatusRequestEntityTooLarge, errTooLarge)
		return
	}

	f, err := fh.Open()
	if err != nil {
		abort(c, http.StatusBadRequest, fmt.Errorf("opening upload: %w", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		abort(c, http.StatusBadRequest, fmt.Errorf("reading upload: %w", err))
		return
	}

	res, warnings, err := pdftranslate.FromBytes(data).WithLogger(s.log).Extract()
	if err != nil {
		var me *pdftranslate.MalformedDocumentError
		if errors.As(err, &me) {
			abort(c, http.StatusUnprocessableEntity, err)
			return
		}
		abort(c, http.StatusInternalServerError, err)
		return
	}

	doc := &Document{Name: path.Base(fh.Filename), Result: res, Warnings: warnings}
	s.store.Add(doc)
	s.log.Info().
		Str("id", doc.ID).
		Str("name", doc.Name).
		Int("pages", res.PageCount).
		Int("images", len(res.Images)).
		Int("warnings", len(warnings)).
		Msg("document extracted")

	c.JSON(http.StatusCreated, describe(doc, true))
}

func (s *Server) document(c *gin.Context) (*Document, bool) {
	doc, ok := s.store.Get(c.Param("id"))
	if !ok {
		abort(c, http.StatusNotFound, errNotFound)
	}
	return doc, ok
}

func (s *Server) status(c *gin.Context) {
	doc, ok := s.document(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, describe(doc, false))
}

func (s *Server) image(c *gin.Context) {
	doc, ok := s.document(c)
	if !ok {
		return
	}
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil || i < 0 {
		abort(c, http.StatusBadRequest, errBadImageNumber)
		return
	}
	if i >= len(doc.Result.Images) {
		abort(c, http.StatusNotFound, errImageNotFound)
		return
	}
	img := doc.Result.Images[i]
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", img.FileName()))
	c.Data(http.StatusOK, img.Format.MIMEType(), img.Data)
}

func (s *Server) translate(c *gin.Context) {
	doc, ok := s.document(c)
	if !ok {
		return
	}

	engine := translate.NewEngine(s.translator,
		translate.WithPagesPerChunk(s.cfg.PagesPerChunk),
		translate.WithConcurrency(s.cfg.Concurrency),
		translate.WithLogger(s.log.With().Str("id", doc.ID).Logger()),
		translate.WithProgress(func(done, total int) {
			s.log.Debug().Str("id", doc.ID).Int("done", done).Int("total", total).Msg("translation progress")
		}),
	)
	out, err := engine.Translate(c.Request.Context(), doc.Result.Text)
	if err != nil {
		abort(c, http.StatusBadGateway, fmt.Errorf("translation failed: %w", err))
		return
	}
	doc.setTranslation(out)

	c.JSON(http.StatusOK, gin.H{"id": doc.ID, "text": string(out)})
}

func (s *Server) pdf(c *gin.Context) {
	doc, ok := s.document(c)
	if !ok {
		return
	}
	text, done := doc.Translation()
	if !done {
		abort(c, http.StatusConflict, errNotTranslated)
		return
	}

	out, warnings, err := assemble.Build(c.Request.Context(), text, doc.Result.Images,
		assemble.WithFontFile(s.cfg.FontPath),
		assemble.WithLogger(s.log),
	)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	for _, w := range warnings {
		s.log.Warn().Err(w.Err).Str("id", doc.ID).Int("page", w.Page).Str("image", w.Image).Msg("image left out of PDF")
	}

	name := strings.TrimSuffix(doc.Name, path.Ext(doc.Name)) + "-translated.pdf"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("X-Image-Warnings", strconv.Itoa(len(warnings)))
	c.Data(http.StatusOK, "application/pdf", out)
}

func (s *Server) remove(c *gin.Context) {
	if !s.store.Delete(c.Param("id")) {
		abort(c, http.StatusNotFound, errNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
