package viewer

import (
	"context"
	"log/slog"

	"github.com/roach88/pageflow/internal/journal"
	"github.com/roach88/pageflow/internal/model"
	"github.com/roach88/pageflow/internal/plugin"
)

// Default option values.
const (
	DefaultPageGap           = 8
	DefaultMaxRenderAttempts = 3
)

// DocumentLoadEvent is fired to the hosting application once per loaded
// document.
type DocumentLoadEvent struct {
	DocID    string `json:"doc_id"`
	NumPages int    `json:"num_pages"`
	FileName string `json:"file_name"`
}

// PageChangeEvent is fired when the committed current page changes, and
// once for the initial page right after DocumentLoadEvent.
type PageChangeEvent struct {
	DocID     string `json:"doc_id"`
	PageIndex int    `json:"page_index"`
	NumPages  int    `json:"num_pages"`
}

// ZoomEvent is fired when the committed scale changes.
type ZoomEvent struct {
	DocID string  `json:"doc_id"`
	Scale float64 `json:"scale"`
}

// Recorder persists committed states and outward events. *journal.Journal
// implements it.
type Recorder interface {
	BeginSession(ctx context.Context, docID, fileName string, numPages int) (string, error)
	RecordState(ctx context.Context, sessionID string, seq int64, st model.ViewerState) error
	RecordEvent(ctx context.Context, sessionID string, seq int64, kind string, pageIndex int, scale float64) error
	LastPosition(ctx context.Context, docID string) (journal.Position, bool, error)
}

// Event kinds written to the Recorder.
const (
	KindDocumentLoad = "document-load"
	KindPageChange   = "page-change"
	KindZoom         = "zoom"
)

// Option configures a Controller.
type Option func(*Controller)

// WithPlugins registers plugins in the given order.
func WithPlugins(plugins ...plugin.Plugin) Option {
	return func(c *Controller) {
		c.plugins = append(c.plugins, plugins...)
	}
}

// WithHookPolicy sets the plugin hook failure policy.
func WithHookPolicy(p plugin.Policy) Option {
	return func(c *Controller) {
		c.policy = p
	}
}

// WithInitialPage sets the page shown after load. Out-of-range values fall
// back to page 0.
func WithInitialPage(pageIndex int) Option {
	return func(c *Controller) {
		c.initialPage = pageIndex
	}
}

// WithDefaultScale sets a fixed initial scale.
func WithDefaultScale(scale float64) Option {
	return func(c *Controller) {
		if scale > 0 {
			c.defaultScale = scale
			c.defaultLevel = ""
		}
	}
}

// WithDefaultZoomLevel sets an initial scale that follows the viewport.
// This is the default, with model.PageWidth.
func WithDefaultZoomLevel(level model.SpecialZoomLevel) Option {
	return func(c *Controller) {
		c.defaultLevel = level
		c.defaultScale = 0
	}
}

// WithViewport sets the initial container size.
func WithViewport(width, height float64) Option {
	return func(c *Controller) {
		c.viewport = model.Size{Width: width, Height: height}
	}
}

// WithOverscan sets how many pages beyond the visible ones are mounted.
func WithOverscan(pages int) Option {
	return func(c *Controller) {
		c.overscan = pages
	}
}

// WithPageGap sets the gap between pages along the scroll axis.
func WithPageGap(gap float64) Option {
	return func(c *Controller) {
		c.gap = gap
	}
}

// WithScrollMode sets the scroll axis.
func WithScrollMode(mode model.ScrollMode) Option {
	return func(c *Controller) {
		c.mode = mode
	}
}

// WithMeasureConcurrency bounds concurrent page measurement after load.
func WithMeasureConcurrency(n int) Option {
	return func(c *Controller) {
		c.measureLimit = n
	}
}

// WithMaxRenderAttempts sets how often a failing page render is retried
// before the page is left rendered empty.
func WithMaxRenderAttempts(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithRecorder journals committed states and outward events.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithRestorePosition resumes at the last journaled page, scale and
// rotation of the same document. Requires WithRecorder.
func WithRestorePosition(restore bool) Option {
	return func(c *Controller) {
		c.restore = restore
	}
}

// WithSequencer replaces the logical clock.
func WithSequencer(s Sequencer) Option {
	return func(c *Controller) {
		c.clock = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// OnDocumentLoad registers the document-load callback.
func OnDocumentLoad(fn func(DocumentLoadEvent)) Option {
	return func(c *Controller) {
		c.onDocumentLoad = fn
	}
}

// OnPageChange registers the page-change callback.
func OnPageChange(fn func(PageChangeEvent)) Option {
	return func(c *Controller) {
		c.onPageChange = fn
	}
}

// OnZoom registers the zoom callback.
func OnZoom(fn func(ZoomEvent)) Option {
	return func(c *Controller) {
		c.onZoom = fn
	}
}

// OnLoadError registers the callback that renders a load failure.
func OnLoadError(fn func(error)) Option {
	return func(c *Controller) {
		c.onLoadError = fn
	}
}

// OnPasswordRequired registers the callback invoked each time the
// controller enters AskingPassword.
func OnPasswordRequired(fn func(PasswordReason)) Option {
	return func(c *Controller) {
		c.onPassword = fn
	}
}
