package document

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/roach88/pageflow/internal/model"
)

// ErrInjectedFailure is returned by Synthetic renders configured to fail.
var ErrInjectedFailure = errors.New("injected render failure")

// SyntheticPage describes one page of a Synthetic document.
type SyntheticPage struct {
	Width       float64      `yaml:"width"`
	Height      float64      `yaml:"height"`
	Text        string       `yaml:"text"`
	Annotations []Annotation `yaml:"annotations"`
}

// Synthetic is an in-memory Document. It also implements Loader, TextSource
// and AnnotationSource.
type Synthetic struct {
	id       string
	pages    []SyntheticPage
	password string
	latency  time.Duration
	loadErr  error

	mu       sync.Mutex
	failures map[int]int
	renders  []int
}

// SyntheticOption configures a Synthetic document.
type SyntheticOption func(*Synthetic)

// WithPassword makes Load require password.
func WithPassword(password string) SyntheticOption {
	return func(s *Synthetic) {
		s.password = password
	}
}

// WithLatency delays every render by d.
func WithLatency(d time.Duration) SyntheticOption {
	return func(s *Synthetic) {
		s.latency = d
	}
}

// WithRenderFailures makes the next n renders of page fail.
func WithRenderFailures(page, n int) SyntheticOption {
	return func(s *Synthetic) {
		s.failures[page] = n
	}
}

// WithLoadError makes every Load fail with err.
func WithLoadError(err error) SyntheticOption {
	return func(s *Synthetic) {
		s.loadErr = err
	}
}

// NewSynthetic creates a document with the given pages.
func NewSynthetic(id string, pages []SyntheticPage, opts ...SyntheticOption) *Synthetic {
	s := &Synthetic{
		id:       id,
		pages:    append([]SyntheticPage(nil), pages...),
		failures: make(map[int]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UniformPages returns n pages of the same size with text "page <i>".
func UniformPages(n int, width, height float64) []SyntheticPage {
	pages := make([]SyntheticPage, n)
	for i := range pages {
		pages[i] = SyntheticPage{
			Width:  width,
			Height: height,
			Text:   fmt.Sprintf("page %d", i+1),
		}
	}
	return pages
}

// Load returns s when password matches.
func (s *Synthetic) Load(ctx context.Context, file model.File, password string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.loadErr != nil {
		return nil, fmt.Errorf("load %q: %w", file.Name, s.loadErr)
	}
	if s.password != "" && password != s.password {
		if password == "" {
			return nil, fmt.Errorf("load %q: %w", file.Name, ErrPasswordRequired)
		}
		return nil, fmt.Errorf("load %q: %w", file.Name, ErrWrongPassword)
	}
	return s, nil
}

func (s *Synthetic) ID() string {
	return s.id
}

func (s *Synthetic) NumPages() int {
	return len(s.pages)
}

func (s *Synthetic) Page(ctx context.Context, i int) (Page, error) {
	if i < 0 || i >= len(s.pages) {
		return nil, fmt.Errorf("page %d of %d: %w", i, len(s.pages), ErrNoSuchPage)
	}
	return syntheticPage{doc: s, index: i}, nil
}

func (s *Synthetic) Text(ctx context.Context, pageIndex int) (string, error) {
	if pageIndex < 0 || pageIndex >= len(s.pages) {
		return "", fmt.Errorf("text of page %d: %w", pageIndex, ErrNoSuchPage)
	}
	return s.pages[pageIndex].Text, nil
}

func (s *Synthetic) Annotations(ctx context.Context, pageIndex int) ([]Annotation, error) {
	if pageIndex < 0 || pageIndex >= len(s.pages) {
		return nil, fmt.Errorf("annotations of page %d: %w", pageIndex, ErrNoSuchPage)
	}
	return append([]Annotation(nil), s.pages[pageIndex].Annotations...), nil
}

// Renders returns the page indices rendered so far, in completion order.
// Failed renders are not included.
func (s *Synthetic) Renders() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.renders...)
}

// Fill is the colour a synthetic page paints. It varies with the index so
// tests can tell surfaces apart.
func Fill(pageIndex int) color.Gray {
	return color.Gray{Y: uint8(255 - 16*(pageIndex%8))}
}

type syntheticPage struct {
	doc   *Synthetic
	index int
}

func (p syntheticPage) Index() int {
	return p.index
}

func (p syntheticPage) Viewport(rotation int, scale float64) model.Size {
	sp := p.doc.pages[p.index]
	d := model.Descriptor{Index: p.index, Width: sp.Width, Height: sp.Height}
	return d.Size(rotation, scale)
}

func (p syntheticPage) Render(ctx context.Context, surface draw.Image, rotation int, scale float64) error {
	if p.doc.latency > 0 {
		timer := time.NewTimer(p.doc.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	if n := p.doc.failures[p.index]; n > 0 {
		p.doc.failures[p.index] = n - 1
		return fmt.Errorf("render page %d: %w", p.index, ErrInjectedFailure)
	}

	draw.Draw(surface, surface.Bounds(), image.NewUniform(Fill(p.index)), image.Point{}, draw.Src)
	p.doc.renders = append(p.doc.renders, p.index)
	return nil
}
