// Package zoom provides zoom in/out along a ladder of levels, special zoom
// levels and an optional scale lock.
package zoom

import (
	"sort"
	"sync"

	"github.com/roach88/pageflow/internal/model"
	"github.com/roach88/pageflow/internal/plugin"
	"github.com/roach88/pageflow/internal/store"
)

// KeyScale holds the last committed scale.
const KeyScale = "scale"

// DefaultLevels is the zoom ladder used by ZoomIn and ZoomOut.
var DefaultLevels = []float64{
	0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1,
	1.1, 1.3, 1.5, 1.7, 1.9, 2.1, 2.4, 2.7, 3, 3.3,
	3.7, 4.1, 4.6, 5.1, 5.7, 6.3, 7, 7.7, 8.5, 9.4, 10,
}

// Zoomer is the zoom plugin.
type Zoomer struct {
	store  *store.Store
	levels []float64

	mu     sync.Mutex
	handle plugin.Handle
	locked float64
}

// Option configures a Zoomer.
type Option func(*Zoomer)

// WithLevels replaces the zoom ladder. Levels are sorted; non-positive
// values are dropped.
func WithLevels(levels ...float64) Option {
	return func(z *Zoomer) {
		ls := make([]float64, 0, len(levels))
		for _, l := range levels {
			if l > 0 {
				ls = append(ls, l)
			}
		}
		sort.Float64s(ls)
		z.levels = ls
	}
}

// WithStore shares an existing store instead of creating one.
func WithStore(s *store.Store) Option {
	return func(z *Zoomer) {
		z.store = s
	}
}

// New creates a zoom plugin.
func New(opts ...Option) *Zoomer {
	z := &Zoomer{levels: DefaultLevels}
	for _, opt := range opts {
		opt(z)
	}
	if z.store == nil {
		z.store = store.New()
	}
	return z
}

// Store returns the plugin store.
func (z *Zoomer) Store() *store.Store {
	return z.store
}

// Plugin returns the hook bundle to register with the viewer.
func (z *Zoomer) Plugin() plugin.Plugin {
	return plugin.Plugin{
		Name: "zoom",
		Install: func(h plugin.Handle) error {
			z.mu.Lock()
			z.handle = h
			z.mu.Unlock()
			return nil
		},
		Uninstall: func(plugin.Handle) error {
			z.mu.Lock()
			z.handle = nil
			z.mu.Unlock()
			return nil
		},
		OnViewerStateChange: z.onViewerStateChange,
		OnViewerStateCommit: z.onViewerStateCommit,
	}
}

func (z *Zoomer) onViewerStateChange(st model.ViewerState) (model.ViewerState, error) {
	z.mu.Lock()
	locked := z.locked
	z.mu.Unlock()

	if locked > 0 {
		st.Scale = locked
	}
	return st, nil
}

func (z *Zoomer) onViewerStateCommit(st model.ViewerState) error {
	if prev, ok := store.Get[float64](z.store, KeyScale); !ok || prev != st.Scale {
		z.store.Update(KeyScale, st.Scale)
	}
	return nil
}

// Scale returns the last scale seen by the plugin, or 1 before load.
func (z *Zoomer) Scale() float64 {
	return store.GetOr(z.store, KeyScale, 1.0)
}

// Increase returns the first ladder level above scale, or scale at the top.
func (z *Zoomer) Increase(scale float64) float64 {
	i := sort.Search(len(z.levels), func(i int) bool { return z.levels[i] > scale })
	if i == len(z.levels) {
		return scale
	}
	return z.levels[i]
}

// Decrease returns the last ladder level below scale, or scale at the
// bottom.
func (z *Zoomer) Decrease(scale float64) float64 {
	i := sort.Search(len(z.levels), func(i int) bool { return z.levels[i] >= scale })
	if i == 0 {
		return scale
	}
	return z.levels[i-1]
}

// ZoomIn moves one level up the ladder.
func (z *Zoomer) ZoomIn() error {
	return z.SetScale(z.Increase(z.Scale()))
}

// ZoomOut moves one level down the ladder.
func (z *Zoomer) ZoomOut() error {
	return z.SetScale(z.Decrease(z.Scale()))
}

// SetScale requests a fixed scale.
func (z *Zoomer) SetScale(scale float64) error {
	h, err := z.getHandle()
	if err != nil {
		return err
	}
	h.SetScale(scale)
	return nil
}

// ZoomTo requests a scale that follows the viewport.
func (z *Zoomer) ZoomTo(level model.SpecialZoomLevel) error {
	h, err := z.getHandle()
	if err != nil {
		return err
	}
	h.ZoomTo(level)
	return nil
}

// LockScale overrides every committed scale with scale until Unlock. A
// non-positive scale unlocks.
func (z *Zoomer) LockScale(scale float64) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.locked = max(scale, 0)
}

// Unlock removes the scale lock.
func (z *Zoomer) Unlock() {
	z.LockScale(0)
}

func (z *Zoomer) getHandle() (plugin.Handle, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.handle == nil {
		return nil, plugin.ErrNotInstalled
	}
	return z.handle, nil
}
