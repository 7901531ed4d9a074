package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/tsawler/pdftranslate/internal/pdftest"
	"github.com/tsawler/pdftranslate/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() Config {
	return Config{
		MaxUploadBytes: 1 << 20,
		PagesPerChunk:  10,
		Concurrency:    1,
		DocumentTTL:    time.Hour,
	}
}

// shoutTranslator upper-cases body lines and keeps markers.
type shoutTranslator struct{ err error }

func (s shoutTranslator) Translate(ctx context.Context, text string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if _, ok := model.ParsePageMarker(l); ok {
			continue
		}
		if _, ok := model.ParseImageMarker(l); ok {
			continue
		}
		lines[i] = strings.ToUpper(l)
	}
	return strings.Join(lines, "\n"), nil
}

func sampleDoc() []byte {
	b := pdftest.New()
	font := b.Add(pdftest.HelveticaFont)
	gray := b.AddStream("/Subtype /Image /Width 2 /Height 2 /ColorSpace /DeviceGray /BitsPerComponent 8", []byte{0, 85, 170, 255})
	return b.Document(
		pdftest.Page{
			Content:   pdftest.TextContent("Hello") + "\n/Im1 Do",
			Resources: fmt.Sprintf("/Font << /F1 %d 0 R >> /XObject << /Im1 %d 0 R >>", font, gray),
		},
		pdftest.Page{
			Content:   pdftest.TextContent("Second page"),
			Resources: fmt.Sprintf("/Font << /F1 %d 0 R >>", font),
		},
	)
}

func uploadRequest(t *testing.T, name string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
}

// TestDocumentLifecycle tests upload, image download, translation, PDF
// generation and deletion.
func TestDocumentLifecycle(t *testing.T) {
	s := New(testConfig(), shoutTranslator{}, zerolog.Nop())

	w := do(s, uploadRequest(t, "report.pdf", sampleDoc()))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", w.Code, w.Body)
	}
	var info documentInfo
	decode(t, w, &info)
	if info.Pages != 2 || len(info.Images) != 1 || info.Name != "report.pdf" {
		t.Fatalf("upload info = %+v", info)
	}
	wantText := "--- Page 1 ---\nHello\n[Image present on page 1]\n--- Page 2 ---\nSecond page\n"
	if info.Text != wantText {
		t.Errorf("text = %q, want %q", info.Text, wantText)
	}
	base := "/api/v1/documents/" + info.ID

	w = do(s, httptest.NewRequest(http.MethodGet, base+"/images/0", nil))
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Errorf("image status = %d, type %q", w.Code, w.Header().Get("Content-Type"))
	}

	w = do(s, httptest.NewRequest(http.MethodGet, base+"/pdf", nil))
	if w.Code != http.StatusConflict {
		t.Errorf("pdf before translation status = %d, want 409", w.Code)
	}

	w = do(s, httptest.NewRequest(http.MethodPost, base+"/translate", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("translate status = %d, body %s", w.Code, w.Body)
	}
	var tr struct{ Text string }
	decode(t, w, &tr)
	if want := "--- Page 1 ---\nHELLO\n[Image present on page 1]\n--- Page 2 ---\nSECOND PAGE\n"; tr.Text != want {
		t.Errorf("translated = %q, want %q", tr.Text, want)
	}

	w = do(s, httptest.NewRequest(http.MethodGet, base, nil))
	var status documentInfo
	decode(t, w, &status)
	if !status.Translated || status.Text != "" || status.ID != info.ID {
		t.Errorf("status after translation = %+v", status)
	}

	w = do(s, httptest.NewRequest(http.MethodGet, base+"/pdf", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("pdf status = %d, body %s", w.Code, w.Body)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Error("pdf response is not a PDF")
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "report-translated.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	w = do(s, httptest.NewRequest(http.MethodDelete, base, nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", w.Code)
	}
	w = do(s, httptest.NewRequest(http.MethodGet, base, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", w.Code)
	}
}

// TestErrors tests error statuses.
func TestErrors(t *testing.T) {
	small := testConfig()
	small.MaxUploadBytes = 64

	tests := []struct {
		name       string
		server     *Server
		req        func(t *testing.T, s *Server) *http.Request
		wantStatus int
	}{
		{
			name:   "too large",
			server: New(small, shoutTranslator{}, zerolog.Nop()),
			req: func(t *testing.T, s *Server) *http.Request {
				return uploadRequest(t, "big.pdf", sampleDoc())
			},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:   "not a pdf",
			server: New(testConfig(), shoutTranslator{}, zerolog.Nop()),
			req: func(t *testing.T, s *Server) *http.Request {
				return uploadRequest(t, "notes.txt", []byte("plain text"))
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:   "missing file",
			server: New(testConfig(), shoutTranslator{}, zerolog.Nop()),
			req: func(t *testing.T, s *Server) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(""))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "unknown document",
			server: New(testConfig(), shoutTranslator{}, zerolog.Nop()),
			req: func(t *testing.T, s *Server) *http.Request {
				return httptest.NewRequest(http.MethodGet, "/api/v1/documents/nope", nil)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "bad image index",
			server: New(testConfig(), shoutTranslator{}, zerolog.Nop()),
			req: func(t *testing.T, s *Server) *http.Request {
				id := s.Store().Add(&Document{})
				return httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+id+"/images/x", nil)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "image out of range",
			server: New(testConfig(), shoutTranslator{}, zerolog.Nop()),
			req: func(t *testing.T, s *Server) *http.Request {
				id := s.Store().Add(&Document{})
				return httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+id+"/images/3", nil)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "translator failure",
			server: New(testConfig(), shoutTranslator{err: errors.New("quota")}, zerolog.Nop()),
			req: func(t *testing.T, s *Server) *http.Request {
				id := s.Store().Add(&Document{})
				s.store.docs[id].Result.Text = "--- Page 1 ---\nx\n"
				return httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+id+"/translate", nil)
			},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(tt.server, tt.req(t, tt.server))
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", w.Code, tt.wantStatus, w.Body)
			}
			var body struct{ Error string }
			decode(t, w, &body)
			if body.Error == "" {
				t.Error("error body is empty")
			}
		})
	}
}

// TestHealthAndIndex tests the static routes.
func TestHealthAndIndex(t *testing.T) {
	s := New(testConfig(), shoutTranslator{}, zerolog.Nop())

	w := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("healthz = %d %s", w.Code, w.Body)
	}

	w = do(s, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<form") {
		t.Errorf("index = %d", w.Code)
	}
}
