package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/pageflow/internal/model"
)

// Policy decides what happens after a hook fails.
type Policy int

const (
	// PolicyIsolate logs the failure and continues with the next plugin.
	PolicyIsolate Policy = iota
	// PolicyFailFast aborts dispatch for the event at the first failure.
	PolicyFailFast
)

// ParsePolicy maps "isolate" and "fail-fast" to a Policy. The empty string
// means PolicyIsolate.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "isolate":
		return PolicyIsolate, nil
	case "fail-fast":
		return PolicyFailFast, nil
	default:
		return PolicyIsolate, fmt.Errorf("unknown hook failure policy %q", s)
	}
}

func (p Policy) String() string {
	if p == PolicyFailFast {
		return "fail-fast"
	}
	return "isolate"
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithPolicy sets the hook failure policy.
func WithPolicy(p Policy) HostOption {
	return func(h *Host) {
		h.policy = p
	}
}

// WithLogger sets the logger used for hook failures.
func WithLogger(logger *slog.Logger) HostOption {
	return func(h *Host) {
		h.logger = logger
	}
}

// Host owns the ordered plugin registrations of one viewer mount.
//
// Thread-safety: Install and Uninstall may be called from any goroutine.
// Dispatch methods are called from the viewer's event loop only.
type Host struct {
	plugins []Plugin // registration order, never reordered
	policy  Policy
	logger  *slog.Logger

	mu        sync.Mutex
	installed bool
	removed   bool
	handle    Handle
}

// NewHost creates a host for plugins. The slice is copied.
func NewHost(plugins []Plugin, opts ...HostOption) *Host {
	h := &Host{
		plugins: append([]Plugin(nil), plugins...),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Policy returns the configured failure policy.
func (h *Host) Policy() Policy {
	return h.policy
}

// Len returns the number of registrations.
func (h *Host) Len() int {
	return len(h.plugins)
}

// Names returns the plugin names in registration order.
func (h *Host) Names() []string {
	names := make([]string, len(h.plugins))
	for i := range h.plugins {
		names[i] = h.name(i)
	}
	return names
}

// Install runs every install hook once, in order. A second call returns
// ErrAlreadyInstalled.
func (h *Host) Install(handle Handle) error {
	h.mu.Lock()
	if h.installed {
		h.mu.Unlock()
		return ErrAlreadyInstalled
	}
	h.installed = true
	h.handle = handle
	h.mu.Unlock()

	h.logger.Debug("installing plugins", "count", len(h.plugins), "policy", h.policy.String())
	return h.dispatch(HookInstall, func(p Plugin) error {
		if p.Install == nil {
			return nil
		}
		return p.Install(handle)
	})
}

// Uninstall runs every uninstall hook once, in registration order.
func (h *Host) Uninstall() error {
	h.mu.Lock()
	if !h.installed {
		h.mu.Unlock()
		return ErrNotInstalled
	}
	if h.removed {
		h.mu.Unlock()
		return nil
	}
	h.removed = true
	handle := h.handle
	h.mu.Unlock()

	return h.dispatch(HookUninstall, func(p Plugin) error {
		if p.Uninstall == nil {
			return nil
		}
		return p.Uninstall(handle)
	})
}

// DispatchDocumentLoad calls every OnDocumentLoad hook.
func (h *Host) DispatchDocumentLoad(ev DocumentLoadEvent) error {
	return h.dispatch(HookDocumentLoad, func(p Plugin) error {
		if p.OnDocumentLoad == nil {
			return nil
		}
		return p.OnDocumentLoad(ev)
	})
}

// DispatchTextLayerRender calls every OnTextLayerRender hook.
func (h *Host) DispatchTextLayerRender(ev TextLayerRenderEvent) error {
	return h.dispatch(HookTextLayerRender, func(p Plugin) error {
		if p.OnTextLayerRender == nil {
			return nil
		}
		return p.OnTextLayerRender(ev)
	})
}

// DispatchAnnotationLayerRender calls every OnAnnotationLayerRender hook.
func (h *Host) DispatchAnnotationLayerRender(ev AnnotationLayerRenderEvent) error {
	return h.dispatch(HookAnnotationLayerRender, func(p Plugin) error {
		if p.OnAnnotationLayerRender == nil {
			return nil
		}
		return p.OnAnnotationLayerRender(ev)
	})
}

// DispatchCanvasLayerRender calls every OnCanvasLayerRender hook.
func (h *Host) DispatchCanvasLayerRender(ev CanvasLayerRenderEvent) error {
	return h.dispatch(HookCanvasLayerRender, func(p Plugin) error {
		if p.OnCanvasLayerRender == nil {
			return nil
		}
		return p.OnCanvasLayerRender(ev)
	})
}

// DispatchViewerStateCommit tells every plugin about a committed state.
func (h *Host) DispatchViewerStateCommit(st model.ViewerState) error {
	return h.dispatch(HookViewerStateCommit, func(p Plugin) error {
		if p.OnViewerStateCommit == nil {
			return nil
		}
		return p.OnViewerStateCommit(st)
	})
}

// TransformViewerState runs the OnViewerStateChange chain. Each hook sees
// the previous hook's output.
//
// Under PolicyIsolate a failing hook's output is discarded and the chain
// continues with the state it was given; the returned state is always
// usable. Under PolicyFailFast the chain stops and the returned error is
// non-nil; the caller must not commit the returned state.
func (h *Host) TransformViewerState(st model.ViewerState) (model.ViewerState, error) {
	cur := st
	err := h.dispatch(HookViewerStateChange, func(p Plugin) error {
		if p.OnViewerStateChange == nil {
			return nil
		}
		next, err := p.OnViewerStateChange(cur)
		if err != nil {
			return err
		}
		cur = next
		return nil
	})
	return cur, err
}

// dispatch calls fn for every plugin in registration order and applies the
// failure policy.
func (h *Host) dispatch(hook string, fn func(p Plugin) error) error {
	var errs []error
	for i, p := range h.plugins {
		err := h.call(i, hook, p, fn)
		if err == nil {
			continue
		}
		if h.policy == PolicyFailFast {
			h.logger.Error("plugin hook failed, aborting dispatch",
				"plugin", h.name(i),
				"hook", hook,
				"error", err,
				"skipped", len(h.plugins)-i-1,
			)
			return err
		}
		h.logger.Error("plugin hook failed",
			"plugin", h.name(i),
			"hook", hook,
			"error", err,
		)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// call runs one hook and turns both returned errors and panics into
// HookError.
func (h *Host) call(i int, hook string, p Plugin, fn func(p Plugin) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HookError{Plugin: h.name(i), Hook: hook, Panic: r}
		}
	}()
	if e := fn(p); e != nil {
		return &HookError{Plugin: h.name(i), Hook: hook, Err: e}
	}
	return nil
}

func (h *Host) name(i int) string {
	if n := h.plugins[i].Name; n != "" {
		return n
	}
	return fmt.Sprintf("#%d", i)
}
