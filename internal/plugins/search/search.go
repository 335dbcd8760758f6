package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/pageflow/internal/document"
	"github.com/roach88/pageflow/internal/plugin"
	"github.com/roach88/pageflow/internal/store"
)

// Store keys.
const (
	KeyKeyword      = "keyword"
	KeyMatches      = "matches"
	KeyCurrentMatch = "currentMatch"
	KeyHighlights   = "highlights"
)

// DefaultConcurrency bounds concurrent page text extraction.
const DefaultConcurrency = 4

var (
	// ErrNoDocument is returned by Search before a document is loaded.
	ErrNoDocument = errors.New("no document loaded")

	// ErrNoText is returned when the document cannot provide page text.
	ErrNoText = errors.New("document has no text layer")

	// ErrNoMatch is returned when there is no match to jump to.
	ErrNoMatch = errors.New("no such match")
)

// Highlight lists the matches of one page. It is published under
// KeyHighlights when the page's text layer renders.
type Highlight struct {
	PageIndex int
	Matches   []Match
}

// Searcher is the search plugin.
type Searcher struct {
	store       *store.Store
	concurrency int
	logger      *slog.Logger

	mu      sync.Mutex
	handle  plugin.Handle
	doc     document.Document
	keyword Keyword
	matches []Match
	current int
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithConcurrency bounds concurrent page text extraction.
func WithConcurrency(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithStore shares an existing store instead of creating one.
func WithStore(st *store.Store) Option {
	return func(s *Searcher) {
		s.store = st
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// New creates a search plugin.
func New(opts ...Option) *Searcher {
	s := &Searcher{
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
		current:     -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = store.New()
	}
	return s
}

// Store returns the plugin store.
func (s *Searcher) Store() *store.Store {
	return s.store
}

// Plugin returns the hook bundle to register with the viewer.
func (s *Searcher) Plugin() plugin.Plugin {
	return plugin.Plugin{
		Name: "search",
		Install: func(h plugin.Handle) error {
			s.mu.Lock()
			s.handle = h
			s.mu.Unlock()
			return nil
		},
		Uninstall: func(plugin.Handle) error {
			s.mu.Lock()
			s.handle = nil
			s.mu.Unlock()
			return nil
		},
		OnDocumentLoad: func(ev plugin.DocumentLoadEvent) error {
			s.mu.Lock()
			s.doc = ev.Doc
			s.matches = nil
			s.current = -1
			s.mu.Unlock()
			return nil
		},
		OnTextLayerRender: s.onTextLayerRender,
	}
}

func (s *Searcher) onTextLayerRender(ev plugin.TextLayerRenderEvent) error {
	if ev.Status != plugin.DidRender {
		return nil
	}
	s.mu.Lock()
	var page []Match
	for _, m := range s.matches {
		if m.PageIndex == ev.PageIndex {
			page = append(page, m)
		}
	}
	s.mu.Unlock()

	if len(page) > 0 {
		s.store.Update(KeyHighlights, Highlight{PageIndex: ev.PageIndex, Matches: page})
	}
	return nil
}

// SetKeyword replaces the keyword. Matches of the previous keyword are kept
// until the next Search.
func (s *Searcher) SetKeyword(kw Keyword) {
	s.mu.Lock()
	s.keyword = kw
	s.mu.Unlock()
	s.store.Update(KeyKeyword, kw)
}

// Keyword returns the current keyword.
func (s *Searcher) Keyword() Keyword {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyword
}

// Search finds every match of the current keyword in page order. An empty
// keyword clears the matches.
func (s *Searcher) Search(ctx context.Context) ([]Match, error) {
	s.mu.Lock()
	doc, kw := s.doc, s.keyword
	s.mu.Unlock()

	if doc == nil {
		return nil, ErrNoDocument
	}
	if kw.Text == "" {
		s.setMatches(nil)
		return nil, nil
	}
	src, ok := doc.(document.TextSource)
	if !ok {
		return nil, fmt.Errorf("search %s: %w", doc.ID(), ErrNoText)
	}

	texts := make([]string, doc.NumPages())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range texts {
		g.Go(func() error {
			text, err := src.Text(gctx, i)
			if err != nil {
				return fmt.Errorf("page %d: %w", i, err)
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search %s: %w", doc.ID(), err)
	}

	m := newMatcher(kw)
	var matches []Match
	for i, text := range texts {
		matches = append(matches, m.find(i, text)...)
	}

	s.logger.Info("search finished",
		"doc_id", doc.ID(),
		"keyword", kw.Text,
		"match_case", kw.MatchCase,
		"whole_words", kw.WholeWords,
		"matches", len(matches),
	)
	s.setMatches(matches)
	return matches, nil
}

// Clear drops the keyword and every match.
func (s *Searcher) Clear() {
	s.SetKeyword(Keyword{})
	s.setMatches(nil)
}

// Matches returns the matches of the last Search.
func (s *Searcher) Matches() []Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Match(nil), s.matches...)
}

// CurrentMatch returns the index of the match jumped to last, or -1.
func (s *Searcher) CurrentMatch() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// JumpToMatch jumps to the page of match i.
func (s *Searcher) JumpToMatch(i int) (Match, error) {
	s.mu.Lock()
	h := s.handle
	if h == nil {
		s.mu.Unlock()
		return Match{}, plugin.ErrNotInstalled
	}
	if i < 0 || i >= len(s.matches) {
		n := len(s.matches)
		s.mu.Unlock()
		return Match{}, fmt.Errorf("match %d of %d: %w", i, n, ErrNoMatch)
	}
	m := s.matches[i]
	s.current = i
	s.mu.Unlock()

	s.store.Update(KeyCurrentMatch, i)
	h.JumpToPage(m.PageIndex)
	return m, nil
}

// JumpToNextMatch jumps to the match after the current one, wrapping
// around.
func (s *Searcher) JumpToNextMatch() (Match, error) {
	s.mu.Lock()
	n, cur := len(s.matches), s.current
	s.mu.Unlock()
	if n == 0 {
		return Match{}, ErrNoMatch
	}
	return s.JumpToMatch((cur + 1) % n)
}

// JumpToPreviousMatch jumps to the match before the current one, wrapping
// around.
func (s *Searcher) JumpToPreviousMatch() (Match, error) {
	s.mu.Lock()
	n, cur := len(s.matches), s.current
	s.mu.Unlock()
	if n == 0 {
		return Match{}, ErrNoMatch
	}
	if cur < 0 {
		cur = 0
	}
	return s.JumpToMatch((cur - 1 + n) % n)
}

func (s *Searcher) setMatches(matches []Match) {
	s.mu.Lock()
	s.matches = matches
	s.current = -1
	s.mu.Unlock()

	s.store.Update(KeyMatches, append([]Match(nil), matches...))
	s.store.Update(KeyCurrentMatch, -1)
}
