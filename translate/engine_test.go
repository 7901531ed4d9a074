package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tsawler/pdftranslate/model"
)

// upperTranslator upper-cases text, leaving marker lines alone.
type upperTranslator struct {
	mu    sync.Mutex
	calls []string

	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
	failOn   string
}

func (u *upperTranslator) Translate(ctx context.Context, text string) (string, error) {
	n := u.inFlight.Add(1)
	defer u.inFlight.Add(-1)
	for {
		p := u.peak.Load()
		if n <= p || u.peak.CompareAndSwap(p, n) {
			break
		}
	}

	u.mu.Lock()
	u.calls = append(u.calls, text)
	u.mu.Unlock()

	if u.delay > 0 {
		select {
		case <-time.After(u.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if u.failOn != "" && strings.Contains(text, u.failOn) {
		return "", errors.New("quota exceeded")
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
	return "  " + strings.Join(lines, "\n") + "\n\n", nil
}

func document(pages int) model.AnnotatedText {
	return documentWith(pages, "page %d text")
}

func documentWith(pages int, format string) model.AnnotatedText {
	var b model.TextBuilder
	for i := 1; i <= pages; i++ {
		b.AddPage(i, fmt.Sprintf(format, i), i == 2)
	}
	return b.Text()
}

// TestEngineTranslate tests chunking, ordering and marker survival.
func TestEngineTranslate(t *testing.T) {
	tests := []struct {
		name        string
		pages       int
		perChunk    int
		concurrency int
		wantCalls   int
	}{
		{"single chunk", 3, 10, 1, 1},
		{"sequential", 5, 2, 1, 3},
		{"concurrent", 7, 1, 4, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &upperTranslator{delay: time.Millisecond}
			e := NewEngine(tr, WithPagesPerChunk(tt.perChunk), WithConcurrency(tt.concurrency))

			got, err := e.Translate(context.Background(), document(tt.pages))
			if err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			if len(tr.calls) != tt.wantCalls {
				t.Errorf("got %d calls, want %d", len(tr.calls), tt.wantCalls)
			}
			if int(tr.peak.Load()) > tt.concurrency {
				t.Errorf("peak concurrency %d exceeds %d", tr.peak.Load(), tt.concurrency)
			}

			want := documentWith(tt.pages, "PAGE %d TEXT")
			if got != want {
				t.Errorf("Translate() = %q, want %q", got, want)
			}

			blocks := got.Blocks()
			for i, b := range blocks {
				if b.Page != i+1 {
					t.Errorf("block %d has page %d", i, b.Page)
				}
			}
		})
	}
}

// TestEngineError tests that a failing chunk fails the document.
func TestEngineError(t *testing.T) {
	tr := &upperTranslator{failOn: "page 3 text"}
	e := NewEngine(tr, WithPagesPerChunk(1), WithConcurrency(2))

	_, err := e.Translate(context.Background(), document(4))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "chunk 3 (pages 3-3)") {
		t.Errorf("error %q does not name the chunk", err)
	}
}

// TestEngineProgress tests the progress callback.
func TestEngineProgress(t *testing.T) {
	var got [][2]int
	e := NewEngine(Passthrough{}, WithPagesPerChunk(2), WithProgress(func(done, total int) {
		got = append(got, [2]int{done, total})
	}))

	if _, err := e.Translate(context.Background(), document(5)); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	want := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("progress = %v, want %v", got, want)
	}
}

// TestEngineInvalidChunkSize tests configuration errors.
func TestEngineInvalidChunkSize(t *testing.T) {
	e := NewEngine(Passthrough{}, WithPagesPerChunk(0))
	if _, err := e.Translate(context.Background(), document(1)); err == nil {
		t.Error("expected an error for zero pages per chunk")
	}
}

// TestEngineCancelled tests a cancelled context.
func TestEngineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(Passthrough{}).Translate(ctx, document(2))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// TestEngineEmptyDocument tests that nothing is sent for empty text.
func TestEngineEmptyDocument(t *testing.T) {
	tr := &upperTranslator{}
	got, err := NewEngine(tr).Translate(context.Background(), "")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "" || len(tr.calls) != 0 {
		t.Errorf("got %q with %d calls, want nothing", got, len(tr.calls))
	}
}
