package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tsawler/pdftranslate"
	"github.com/tsawler/pdftranslate/model"
)

// Document is an uploaded PDF and what has been derived from it.
type Document struct {
	ID       string
	Name     string
	Created  time.Time
	Expires  time.Time
	Result   pdftranslate.Result
	Warnings []pdftranslate.Warning

	mu         sync.RWMutex
	translated model.AnnotatedText
	done       bool
}

// Translation returns the translated text, if translation has finished.
func (d *Document) Translation() (model.AnnotatedText, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.translated, d.done
}

func (d *Document) setTranslation(text model.AnnotatedText) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.translated = text
	d.done = true
}

// Store keeps documents in memory until they expire.
type Store struct {
	mu   sync.Mutex
	docs map[string]*Document
	ttl  time.Duration
	now  func() time.Time
}

// NewStore returns a store whose documents live for ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		docs: make(map[string]*Document),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Add assigns doc an ID and expiry and stores it.
func (s *Store) Add(doc *Document) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.ID = uuid.NewString()
	doc.Created = s.now()
	doc.Expires = doc.Created.Add(s.ttl)
	s.docs[doc.ID] = doc
	return doc.ID
}

// Get returns a live document.
func (s *Store) Get(id string) (*Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, false
	}
	if !s.now().Before(doc.Expires) {
		delete(s.docs, id)
		return nil, false
	}
	return doc, true
}

// Delete removes a document and reports whether it was present.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.docs[id]
	delete(s.docs, id)
	return ok
}

// Len returns the number of stored documents, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// Sweep removes expired documents and returns how many went.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, doc := range s.docs {
		if !now.Before(doc.Expires) {
			delete(s.docs, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}
