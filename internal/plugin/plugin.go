package plugin

import (
	"golang.org/x/image/draw"

	"github.com/roach88/pageflow/internal/document"
	"github.com/roach88/pageflow/internal/model"
)

// Direction is the sense of a quarter-turn rotation.
type Direction int

const (
	// Forward rotates clockwise by 90 degrees.
	Forward Direction = iota + 1
	// Backward rotates counter-clockwise by 90 degrees.
	Backward
)

// Degrees returns the signed rotation step of d.
func (d Direction) Degrees() int {
	if d == Backward {
		return -90
	}
	return 90
}

// Handle is what a plugin receives on install. Mutations are requests: the
// viewer applies them on its event loop, so ViewerState may not reflect a
// request until it has been processed. All methods are safe to call from any
// goroutine.
type Handle interface {
	// JumpToPage scrolls to pageIndex. Indices outside the document are
	// ignored.
	JumpToPage(pageIndex int)
	Rotate(dir Direction)
	SetScale(scale float64)
	ZoomTo(level model.SpecialZoomLevel)
	ViewerState() model.ViewerState
}

// LayerRenderStatus tells whether a layer hook runs before or after the
// layer was drawn.
type LayerRenderStatus int

const (
	PreRender LayerRenderStatus = iota + 1
	DidRender
)

func (s LayerRenderStatus) String() string {
	switch s {
	case PreRender:
		return "PreRender"
	case DidRender:
		return "DidRender"
	default:
		return "Unknown"
	}
}

// DocumentLoadEvent is dispatched once per loaded document.
type DocumentLoadEvent struct {
	Doc  document.Document
	File model.File
}

// CanvasLayerRenderEvent is dispatched before and after a page's canvas is
// painted. Surface is nil for PreRender.
type CanvasLayerRenderEvent struct {
	PageIndex int
	Rotation  int
	Scale     float64
	Status    LayerRenderStatus
	Surface   draw.Image
}

// TextLayerRenderEvent is dispatched before and after a page's text layer is
// built. Text is set for DidRender when the document has a text source.
type TextLayerRenderEvent struct {
	PageIndex int
	Scale     float64
	Status    LayerRenderStatus
	Text      string
}

// AnnotationLayerRenderEvent is dispatched after a page's annotations were
// read.
type AnnotationLayerRenderEvent struct {
	PageIndex   int
	Rotation    int
	Scale       float64
	Annotations []document.Annotation
}

// Plugin is a bundle of optional hooks. A nil hook is skipped.
type Plugin struct {
	// Name identifies the plugin in logs and errors.
	Name string

	Install   func(h Handle) error
	Uninstall func(h Handle) error

	OnDocumentLoad          func(ev DocumentLoadEvent) error
	OnTextLayerRender       func(ev TextLayerRenderEvent) error
	OnAnnotationLayerRender func(ev AnnotationLayerRenderEvent) error
	OnCanvasLayerRender     func(ev CanvasLayerRenderEvent) error

	// OnViewerStateChange receives the pending state and returns the state
	// to pass on to the next plugin.
	OnViewerStateChange func(st model.ViewerState) (model.ViewerState, error)

	// OnViewerStateCommit receives the state the viewer committed after the
	// transform chain. A change dropped by the chain is never committed.
	OnViewerStateCommit func(st model.ViewerState) error
}

// Provider is implemented by feature plugins that expose methods beyond the
// hook bundle.
type Provider interface {
	Plugin() Plugin
}
