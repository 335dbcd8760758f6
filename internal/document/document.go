package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/pageflow/internal/model"
)

var (
	// ErrPasswordRequired is returned by Load for an encrypted document when
	// no password was supplied.
	ErrPasswordRequired = errors.New("password required")

	// ErrWrongPassword is returned by Load when the supplied password does
	// not open the document.
	ErrWrongPassword = errors.New("wrong password")

	// ErrNoSuchPage is returned by Page for an index outside the document.
	ErrNoSuchPage = errors.New("no such page")
)

// DefaultMeasureConcurrency bounds MeasurePages when the caller passes a
// non-positive limit.
const DefaultMeasureConcurrency = 8

// Document is a loaded document. Implementations must be safe for
// concurrent use: the viewer measures and renders pages from worker
// goroutines.
type Document interface {
	// ID is a stable identity for the document bytes.
	ID() string
	// NumPages is fixed for the lifetime of the document.
	NumPages() int
	// Page returns the handle of page i.
	Page(ctx context.Context, i int) (Page, error)
}

// Page is one page of a Document.
type Page interface {
	Index() int
	// Viewport returns the page size at the given rotation and scale.
	Viewport(rotation int, scale float64) model.Size
	// Render paints the page into surface. The surface is sized from
	// Viewport(rotation, scale).
	Render(ctx context.Context, surface draw.Image, rotation int, scale float64) error
}

// TextSource is implemented by documents that can provide the plain text of
// a page. Search and the text layer use it.
type TextSource interface {
	Text(ctx context.Context, pageIndex int) (string, error)
}

// Annotation is a page annotation in unscaled page coordinates.
type Annotation struct {
	Kind     string     `json:"kind" yaml:"kind"`
	Rect     [4]float64 `json:"rect" yaml:"rect"`
	Contents string     `json:"contents,omitempty" yaml:"contents,omitempty"`
}

// AnnotationSource is implemented by documents that expose annotations.
type AnnotationSource interface {
	Annotations(ctx context.Context, pageIndex int) ([]Annotation, error)
}

// Loader opens a file. Load returns ErrPasswordRequired or ErrWrongPassword
// (possibly wrapped) for encrypted documents; any other error is a load
// failure.
type Loader interface {
	Load(ctx context.Context, file model.File, password string) (Document, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, file model.File, password string) (Document, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, file model.File, password string) (Document, error) {
	return f(ctx, file, password)
}

// IsPasswordError reports whether err asks for a (different) password.
func IsPasswordError(err error) bool {
	return errors.Is(err, ErrPasswordRequired) || errors.Is(err, ErrWrongPassword)
}

// MeasurePages returns the descriptor of every page at rotation 0 and scale
// 1. Pages are measured concurrently, at most limit at a time.
func MeasurePages(ctx context.Context, doc Document, limit int) ([]model.Descriptor, error) {
	if limit <= 0 {
		limit = DefaultMeasureConcurrency
	}
	n := doc.NumPages()
	pages := make([]model.Descriptor, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			p, err := doc.Page(gctx, i)
			if err != nil {
				return fmt.Errorf("page %d: %w", i, err)
			}
			size := p.Viewport(0, 1)
			pages[i] = model.Descriptor{Index: i, Width: size.Width, Height: size.Height}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("measure pages of %s: %w", doc.ID(), err)
	}

	slog.Debug("pages measured", "doc_id", doc.ID(), "pages", n, "limit", limit)
	return pages, nil
}
