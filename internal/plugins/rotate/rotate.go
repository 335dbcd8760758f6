// Package rotate rotates every page by quarter turns and mirrors the
// committed rotation into its store.
package rotate

import (
	"sync"

	"github.com/roach88/pageflow/internal/model"
	"github.com/roach88/pageflow/internal/plugin"
	"github.com/roach88/pageflow/internal/store"
)

// KeyRotation holds the last committed rotation in degrees.
const KeyRotation = "rotation"

// Rotator is the rotate plugin.
type Rotator struct {
	store *store.Store

	mu     sync.Mutex
	handle plugin.Handle
}

// New creates a rotate plugin. A nil store creates a private one.
func New(s *store.Store) *Rotator {
	if s == nil {
		s = store.NewWithValues(map[string]any{KeyRotation: 0})
	}
	return &Rotator{store: s}
}

func (r *Rotator) Store() *store.Store {
	return r.store
}

func (r *Rotator) Plugin() plugin.Plugin {
	return plugin.Plugin{
		Name: "rotate",
		Install: func(h plugin.Handle) error {
			r.mu.Lock()
			r.handle = h
			r.mu.Unlock()
			return nil
		},
		Uninstall: func(plugin.Handle) error {
			r.mu.Lock()
			r.handle = nil
			r.mu.Unlock()
			return nil
		},
		OnViewerStateCommit: func(st model.ViewerState) error {
			if st.Rotation != r.Rotation() {
				r.store.Update(KeyRotation, st.Rotation)
			}
			return nil
		},
	}
}

// Rotation returns the last rotation seen by the plugin.
func (r *Rotator) Rotation() int {
	return store.GetOr(r.store, KeyRotation, 0)
}

// Rotate turns every page a quarter in dir.
func (r *Rotator) Rotate(dir plugin.Direction) error {
	r.mu.Lock()
	h := r.handle
	r.mu.Unlock()

	if h == nil {
		return plugin.ErrNotInstalled
	}
	h.Rotate(dir)
	return nil
}

// RotateForward turns clockwise.
func (r *Rotator) RotateForward() error {
	return r.Rotate(plugin.Forward)
}

// RotateBackward turns counter-clockwise.
func (r *Rotator) RotateBackward() error {
	return r.Rotate(plugin.Backward)
}
