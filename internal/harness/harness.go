package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/roach88/pageflow/internal/document"
	"github.com/roach88/pageflow/internal/model"
	"github.com/roach88/pageflow/internal/plugin"
	"github.com/roach88/pageflow/internal/testutil"
	"github.com/roach88/pageflow/internal/viewer"
)

// DefaultTimeout bounds one scenario run.
const DefaultTimeout = 10 * time.Second

// Harness drives one viewer through a scenario and records the trace.
//
// Everything the trace records happens on the goroutine calling Run: the
// viewer loop runs inside Drain, and its callbacks and hooks run there too.
type Harness struct {
	ctrl   *viewer.Controller
	clock  *testutil.DeterministicClock
	result *Result
	logger *slog.Logger
}

// RunOption configures Run.
type RunOption func(*runConfig)

type runConfig struct {
	viewerOpts []viewer.Option
	logger     *slog.Logger
	timeout    time.Duration
}

// WithViewerOptions applies options before the scenario's own options,
// typically the ones of a configuration file.
func WithViewerOptions(opts ...viewer.Option) RunOption {
	return func(c *runConfig) {
		c.viewerOpts = append(c.viewerOpts, opts...)
	}
}

// WithLogger sets the viewer logger. Logs are discarded by default.
func WithLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithTimeout bounds the whole run.
func WithTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Build the synthetic document and the viewer
// 2. Mount and drain the initial load
// 3. Apply every step, draining after each unless it is queued
// 4. Evaluate assertions against the trace and the final state
func Run(scenario *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{
		logger:  testutil.QuietLogger(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Harness{
		clock:  testutil.NewDeterministicClock(),
		result: NewResult(),
		logger: cfg.logger,
	}

	fileName := scenario.Document.FileName
	if fileName == "" {
		fileName = scenario.Document.ID + ".pdf"
	}

	vopts := append([]viewer.Option{}, cfg.viewerOpts...)
	vopts = append(vopts, scenarioOptions(scenario)...)
	vopts = append(vopts,
		viewer.WithLogger(cfg.logger),
		viewer.WithViewport(scenario.Viewport.Width, scenario.Viewport.Height),
		viewer.WithPlugins(h.tracer()),
		viewer.OnDocumentLoad(func(ev viewer.DocumentLoadEvent) {
			h.trace(EntryEvent, viewer.KindDocumentLoad, strconv.Itoa(ev.NumPages))
		}),
		viewer.OnPageChange(func(ev viewer.PageChangeEvent) {
			h.trace(EntryEvent, viewer.KindPageChange, strconv.Itoa(ev.PageIndex))
		}),
		viewer.OnZoom(func(ev viewer.ZoomEvent) {
			h.trace(EntryEvent, viewer.KindZoom, formatFloat(ev.Scale))
		}),
		viewer.OnPasswordRequired(func(reason viewer.PasswordReason) {
			h.trace(EntryEvent, "password-required", reason.String())
		}),
		viewer.OnLoadError(func(err error) {
			h.trace(EntryEvent, "load-error", err.Error())
		}),
	)

	h.ctrl = viewer.New(buildDocument(scenario.Document), model.File{Name: fileName}, vopts...)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()

	h.trace(EntryStep, "mount", "")
	if err := h.ctrl.Mount(); err != nil {
		return nil, fmt.Errorf("failed to mount viewer: %w", err)
	}
	if err := h.ctrl.Drain(ctx); err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	for i, step := range scenario.Steps {
		if err := h.apply(step); err != nil {
			h.result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
		}
		if step.Queue {
			continue
		}
		if err := h.ctrl.Drain(ctx); err != nil {
			return nil, fmt.Errorf("steps[%d]: failed to drain: %w", i, err)
		}
	}
	if err := h.ctrl.Drain(ctx); err != nil {
		return nil, fmt.Errorf("failed to drain: %w", err)
	}

	h.result.Final = h.finalState()
	if err := h.ctrl.Unmount(); err != nil {
		h.logger.Warn("unmount failed", "scenario", scenario.Name, "error", err)
	}

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

// tracer records completed renders.
func (h *Harness) tracer() plugin.Plugin {
	return plugin.Plugin{
		Name: "harness-tracer",
		OnCanvasLayerRender: func(ev plugin.CanvasLayerRenderEvent) error {
			if ev.Status == plugin.DidRender {
				h.trace(EntryRender, "page", strconv.Itoa(ev.PageIndex))
			}
			return nil
		},
	}
}

func (h *Harness) trace(typ, name, value string) {
	h.result.Trace = append(h.result.Trace, TraceEntry{
		Seq:   h.clock.Next(),
		Type:  typ,
		Name:  name,
		Value: value,
	})
}

// apply posts the action of one step.
func (h *Harness) apply(s Step) error {
	switch {
	case s.Resize != nil:
		h.trace(EntryStep, "resize", fmt.Sprintf("%sx%s", formatFloat(s.Resize.Width), formatFloat(s.Resize.Height)))
		h.ctrl.Resize(s.Resize.Width, s.Resize.Height)
	case s.Scroll != nil:
		h.trace(EntryStep, "scroll", formatFloat(*s.Scroll))
		h.ctrl.Scroll(*s.Scroll)
	case s.Jump != nil:
		h.trace(EntryStep, "jump", strconv.Itoa(*s.Jump))
		h.ctrl.JumpToPage(*s.Jump)
	case s.Rotate != "":
		h.trace(EntryStep, "rotate", s.Rotate)
		dir := plugin.Forward
		if s.Rotate == "backward" {
			dir = plugin.Backward
		}
		h.ctrl.Rotate(dir)
	case s.Zoom != nil:
		if s.Zoom.Level != "" {
			h.trace(EntryStep, "zoom", s.Zoom.Level)
			h.ctrl.ZoomTo(model.SpecialZoomLevel(s.Zoom.Level))
		} else {
			h.trace(EntryStep, "zoom", formatFloat(s.Zoom.Scale))
			h.ctrl.SetScale(s.Zoom.Scale)
		}
	case s.Password != nil:
		h.trace(EntryStep, "password", "")
		return h.ctrl.SubmitPassword(*s.Password)
	case s.Cancel:
		h.trace(EntryStep, "cancel", "")
		return h.ctrl.Cancel()
	case s.Drain:
		h.trace(EntryStep, "drain", "")
	}
	return nil
}

func (h *Harness) finalState() FinalState {
	st := h.ctrl.ViewerState()
	win := h.ctrl.Window()
	return FinalState{
		Status:    h.ctrl.Status().String(),
		PageIndex: st.PageIndex,
		Scale:     st.Scale,
		Rotation:  st.Rotation,
		Window:    [2]int{win.Start, win.End},
		NumPages:  h.ctrl.NumPages(),
	}
}

func scenarioOptions(s *Scenario) []viewer.Option {
	o := s.Options
	var opts []viewer.Option
	switch {
	case o.Scale > 0:
		opts = append(opts, viewer.WithDefaultScale(o.Scale))
	case o.ZoomLevel != "":
		opts = append(opts, viewer.WithDefaultZoomLevel(model.SpecialZoomLevel(o.ZoomLevel)))
	}
	if o.InitialPage > 0 {
		opts = append(opts, viewer.WithInitialPage(o.InitialPage))
	}
	if o.Overscan != nil {
		opts = append(opts, viewer.WithOverscan(*o.Overscan))
	}
	if o.PageGap != nil {
		opts = append(opts, viewer.WithPageGap(*o.PageGap))
	}
	if o.ScrollMode != "" {
		opts = append(opts, viewer.WithScrollMode(model.ScrollMode(o.ScrollMode)))
	}
	if o.HookFailure != "" {
		// Validated by validateOptions.
		policy, _ := plugin.ParsePolicy(o.HookFailure)
		opts = append(opts, viewer.WithHookPolicy(policy))
	}
	if o.MaxRenderAttempts > 0 {
		opts = append(opts, viewer.WithMaxRenderAttempts(o.MaxRenderAttempts))
	}
	return opts
}

func buildDocument(d DocumentSpec) *document.Synthetic {
	pages := d.Pages
	if d.Uniform != nil {
		pages = document.UniformPages(d.Uniform.Count, d.Uniform.Width, d.Uniform.Height)
	}

	var opts []document.SyntheticOption
	if d.Password != "" {
		opts = append(opts, document.WithPassword(d.Password))
	}
	for page, n := range d.RenderFailures {
		opts = append(opts, document.WithRenderFailures(page, n))
	}
	if d.LoadError != "" {
		opts = append(opts, document.WithLoadError(errors.New(d.LoadError)))
	}
	return document.NewSynthetic(d.ID, pages, opts...)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
