package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/roach88/pageflow/internal/document"
	"github.com/roach88/pageflow/internal/model"
	"github.com/roach88/pageflow/internal/plugin"
	"github.com/roach88/pageflow/internal/render"
	"github.com/roach88/pageflow/internal/visibility"
)

// Controller owns the viewer state of one document.
//
// All mutations happen on the loop goroutine (Run or Drain). Every public
// mutator only posts an event; read accessors return the snapshot published
// after the last processed event.
//
// Thread-safety model:
//   - Mount, Unmount, mutators and accessors: safe from any goroutine
//   - Run / Drain: must be called from exactly one goroutine at a time
//
// Controller implements plugin.Handle and is what plugins receive on
// install.
type Controller struct {
	loader       document.Loader
	file         model.File
	plugins      []plugin.Plugin
	policy       plugin.Policy
	host         *plugin.Host
	initialPage  int
	defaultScale float64
	defaultLevel model.SpecialZoomLevel
	overscan     int
	gap          float64
	mode         model.ScrollMode
	measureLimit int
	maxAttempts  int
	recorder     Recorder
	restore      bool
	clock        Sequencer
	logger       *slog.Logger

	onDocumentLoad func(DocumentLoadEvent)
	onPageChange   func(PageChangeEvent)
	onZoom         func(ZoomEvent)
	onLoadError    func(error)
	onPassword     func(PasswordReason)

	queue *eventQueue

	// mu guards the snapshot read from other goroutines. uninstallPending
	// hands the uninstall hooks to a running loop.
	mu               sync.RWMutex
	mounted          bool
	unmounted        bool
	running          bool
	uninstallPending bool
	status           Status
	reason           PasswordReason
	loadErr          error
	state            model.ViewerState
	records          []model.Record
	window           model.Range
	numPages         int
	docID            string

	// Loop-owned.
	ctx            context.Context
	loadGen        uint64
	loading        bool
	doc            document.Document
	pages          []model.Descriptor
	rq             *render.Queue
	tracker        *visibility.Tracker
	viewport       model.Size
	level          model.SpecialZoomLevel
	layoutScale    float64
	layoutRotation int
	gen            uint64
	nextJob        uint64
	jobs           map[uint64]renderJob
	attempts       map[int]int
	surfaces       map[int]renderResult
	sessionID      string
}

// New creates a controller for file. Nothing happens until Mount.
func New(loader document.Loader, file model.File, opts ...Option) *Controller {
	c := &Controller{
		loader:       loader,
		file:         file,
		defaultLevel: model.PageWidth,
		overscan:     visibility.DefaultOverscan,
		gap:          DefaultPageGap,
		mode:         model.Vertical,
		measureLimit: document.DefaultMeasureConcurrency,
		maxAttempts:  DefaultMaxRenderAttempts,
		clock:        NewClock(),
		logger:       slog.Default(),
		queue:        newEventQueue(),
		status:       StatusLoading,
		jobs:         make(map[uint64]renderJob),
		attempts:     make(map[int]int),
		surfaces:     make(map[int]renderResult),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.host = plugin.NewHost(c.plugins, plugin.WithPolicy(c.policy), plugin.WithLogger(c.logger))
	return c
}

// Mount installs the plugins, in registration order, and starts loading
// the document. Under the fail-fast policy a failing install hook aborts
// the mount.
func (c *Controller) Mount() error {
	if err := c.host.Install(c); err != nil {
		if errors.Is(err, plugin.ErrAlreadyInstalled) || c.policy == plugin.PolicyFailFast {
			return fmt.Errorf("mount: %w", err)
		}
	}

	c.mu.Lock()
	c.mounted = true
	c.mu.Unlock()

	c.logger.Info("viewer mounted", "file", c.file.Name, "plugins", c.host.Len())
	c.post(event{kind: evLoad})
	return nil
}

// Unmount stops the loop and runs every uninstall hook once. Events still
// queued are discarded. When Run or Drain is active, the uninstall hooks
// run on the loop goroutine after it stops and their error is logged.
func (c *Controller) Unmount() error {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return ErrNotMounted
	}
	if c.unmounted {
		c.mu.Unlock()
		return nil
	}
	c.unmounted = true
	deferred := c.running
	c.uninstallPending = deferred
	c.mu.Unlock()

	c.queue.Close()
	if deferred {
		c.logger.Debug("uninstall deferred to the viewer loop")
		return nil
	}
	return c.uninstall()
}

func (c *Controller) uninstall() error {
	if err := c.host.Uninstall(); err != nil {
		return fmt.Errorf("unmount: %w", err)
	}
	c.logger.Info("viewer unmounted", "file", c.file.Name)
	return nil
}

// enterLoop marks the loop as running. The returned func must run when the
// loop returns; it performs an uninstall that Unmount left to the loop.
func (c *Controller) enterLoop() func() {
	c.mu.Lock()
	c.running = true
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		c.running = false
		pending := c.uninstallPending
		c.uninstallPending = false
		c.mu.Unlock()

		if !pending {
			return
		}
		c.cancelJobs(math.MaxUint64)
		if err := c.uninstall(); err != nil {
			c.logger.Error("uninstall failed", "error", err)
		}
	}
}

func (c *Controller) isUnmounted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unmounted
}

// Run processes events until ctx is cancelled or the viewer is unmounted.
//
// ERROR HANDLING: failures inside the loop (render errors, hook errors,
// journal writes) are logged with context and processing continues.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("viewer loop starting", "file", c.file.Name)
	c.ctx = ctx
	defer c.enterLoop()()

	for {
		if ev, ok := c.queue.TryDequeue(); ok {
			c.process(ev)
			continue
		}

		select {
		case <-ctx.Done():
			c.logger.Info("viewer loop stopping: context cancelled")
			c.queue.Close()
			c.cancelJobs(math.MaxUint64)
			return ctx.Err()

		case _, open := <-c.queue.Wait():
			if !open && c.queue.Len() == 0 {
				c.logger.Info("viewer loop stopping: unmounted")
				c.cancelJobs(math.MaxUint64)
				return nil
			}
		}
	}
}

// Drain processes events until the queue is empty and no load or render is
// in flight. It is the synchronous alternative to Run for tests and batch
// tools.
func (c *Controller) Drain(ctx context.Context) error {
	c.ctx = ctx
	defer c.enterLoop()()

	for {
		if ev, ok := c.queue.TryDequeue(); ok {
			c.process(ev)
			continue
		}
		if !c.loading && len(c.jobs) == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, open := <-c.queue.Wait():
			if !open && c.queue.Len() == 0 {
				return nil
			}
		}
	}
}

// Resize reports a new container size.
func (c *Controller) Resize(width, height float64) {
	c.post(event{kind: evResize, width: width, height: height})
}

// Scroll reports a new scroll offset along the scroll axis.
func (c *Controller) Scroll(offset float64) {
	c.post(event{kind: evScroll, offset: offset})
}

// IntersectionChanged reports an intersection ratio measured by the host.
func (c *Controller) IntersectionChanged(pageIndex int, ratio float64) {
	c.post(event{kind: evIntersection, page: pageIndex, ratio: ratio})
}

// JumpToPage scrolls to pageIndex. Indices outside the document are
// ignored.
func (c *Controller) JumpToPage(pageIndex int) {
	c.post(event{kind: evJump, page: pageIndex})
}

// Rotate turns every page by a quarter.
func (c *Controller) Rotate(dir plugin.Direction) {
	c.post(event{kind: evRotate, dir: dir})
}

// SetScale sets a fixed scale. Non-positive values are ignored.
func (c *Controller) SetScale(scale float64) {
	c.post(event{kind: evSetScale, scale: scale})
}

// ZoomTo sets a scale that follows the viewport.
func (c *Controller) ZoomTo(level model.SpecialZoomLevel) {
	c.post(event{kind: evZoomTo, level: level})
}

// SubmitPassword retries the load with password. It is only valid while
// the controller is asking for a password.
func (c *Controller) SubmitPassword(password string) error {
	if st := c.Status(); st != StatusAskingPassword {
		return fmt.Errorf("submit password while %s: %w", st, ErrInvalidTransition)
	}
	c.post(event{kind: evSubmitPassword, password: password})
	return nil
}

// Cancel gives up on loading. The controller ends in Failed with
// ErrLoadCancelled.
func (c *Controller) Cancel() error {
	if st := c.Status(); st.Terminal() {
		return fmt.Errorf("cancel while %s: %w", st, ErrInvalidTransition)
	}
	c.post(event{kind: evCancel})
	return nil
}

// Status returns the lifecycle status.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// PasswordReason returns why a password is asked for.
func (c *Controller) PasswordReason() PasswordReason {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reason
}

// Err returns the load failure once the controller is Failed.
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}

// ViewerState returns the last committed state.
func (c *Controller) ViewerState() model.ViewerState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Records returns the per-page records as of the last processed event.
func (c *Controller) Records() []model.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Record(nil), c.records...)
}

// Window returns the render range as of the last processed event.
func (c *Controller) Window() model.Range {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.window
}

// NumPages returns the page count, or 0 before load.
func (c *Controller) NumPages() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.numPages
}

// DocID returns the loaded document identity.
func (c *Controller) DocID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.docID
}

func (c *Controller) post(ev event) {
	if !c.queue.Enqueue(ev) {
		c.logger.Debug("viewer closed, dropping event", "kind", ev.kind.String())
	}
}

// process routes an event to its handler.
// CRITICAL: called only from the loop goroutine.
func (c *Controller) process(ev event) {
	if c.isUnmounted() {
		c.logger.Debug("dropping event after unmount", "kind", ev.kind.String())
		return
	}
	c.logger.Debug("processing event", "kind", ev.kind.String())

	switch ev.kind {
	case evLoad:
		c.startLoad("")
	case evSubmitPassword:
		c.handleSubmitPassword(ev.password)
	case evCancel:
		c.handleCancel()
	case evLoadDone:
		c.handleLoadDone(ev)
	case evResize:
		c.handleResize(ev.width, ev.height)
	case evScroll:
		c.handleScroll(ev.offset)
	case evIntersection:
		c.handleIntersection(ev.page, ev.ratio)
	case evJump:
		c.handleJump(ev.page)
	case evRotate:
		c.handleRotate(ev.dir)
	case evSetScale:
		c.handleSetScale(ev.scale)
	case evZoomTo:
		c.handleZoomTo(ev.level)
	case evRenderDone:
		c.handleRenderDone(ev)
	default:
		c.logger.Error("unknown event", "kind", int(ev.kind))
	}

	c.publish()
}

func (c *Controller) publish() {
	if c.rq == nil {
		return
	}
	records := c.rq.Records()
	window := c.rq.Range()

	c.mu.Lock()
	c.records = records
	c.window = window
	c.mu.Unlock()
}

func (c *Controller) transition(to Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !canTransition(c.status, to) {
		return fmt.Errorf("%s -> %s: %w", c.status, to, ErrInvalidTransition)
	}
	c.logger.Debug("lifecycle transition", "from", c.status.String(), "to", to.String())
	c.status = to
	return nil
}

// startLoad runs the loader and page measurement off the loop and posts
// the result back.
func (c *Controller) startLoad(password string) {
	c.loadGen++
	gen := c.loadGen
	c.loading = true
	ctx := c.ctx
	loader, file, limit := c.loader, c.file, c.measureLimit

	go func() {
		doc, err := loader.Load(ctx, file, password)
		var pages []model.Descriptor
		if err == nil {
			pages, err = document.MeasurePages(ctx, doc, limit)
		}
		c.queue.Enqueue(event{kind: evLoadDone, gen: gen, doc: doc, pages: pages, err: err})
	}()
}

func (c *Controller) handleSubmitPassword(password string) {
	if err := c.transition(StatusVerifyingPassword); err != nil {
		c.logger.Debug("ignoring password", "error", err)
		return
	}
	c.startLoad(password)
}

func (c *Controller) handleCancel() {
	if c.Status().Terminal() {
		return
	}
	// Invalidate the load in flight; its completion is dropped.
	c.loadGen++
	c.loading = false
	c.fail(ErrLoadCancelled)
}

func (c *Controller) handleLoadDone(ev event) {
	if ev.gen != c.loadGen {
		c.logger.Debug("dropping stale load result", "gen", ev.gen, "current_gen", c.loadGen)
		return
	}
	c.loading = false

	if ev.err != nil {
		switch {
		case errors.Is(ev.err, document.ErrWrongPassword):
			c.askPassword(WrongPassword)
		case errors.Is(ev.err, document.ErrPasswordRequired):
			c.askPassword(RequirePassword)
		default:
			c.fail(ev.err)
		}
		return
	}

	if err := c.transition(StatusLoaded); err != nil {
		c.logger.Error("cannot complete load", "error", err)
		return
	}
	c.onLoaded(ev.doc, ev.pages)
}

func (c *Controller) askPassword(reason PasswordReason) {
	if err := c.transition(StatusAskingPassword); err != nil {
		c.logger.Error("cannot ask for password", "error", err)
		return
	}
	c.mu.Lock()
	c.reason = reason
	c.mu.Unlock()

	c.logger.Info("password required", "file", c.file.Name, "reason", reason.String())
	if c.onPassword != nil {
		c.onPassword(reason)
	}
}

func (c *Controller) fail(err error) {
	if terr := c.transition(StatusFailed); terr != nil {
		c.logger.Error("cannot fail load", "error", terr, "cause", err)
		return
	}
	c.mu.Lock()
	c.loadErr = err
	c.mu.Unlock()

	if errors.Is(err, ErrLoadCancelled) {
		c.logger.Info("document load cancelled", "file", c.file.Name)
	} else {
		c.logger.Error("document load failed", "file", c.file.Name, "error", err)
	}
	if c.onLoadError != nil {
		c.onLoadError(err)
	}
}

// onLoaded seeds the render queue, the layout and the initial state.
func (c *Controller) onLoaded(doc document.Document, pages []model.Descriptor) {
	n := len(pages)
	c.doc = doc
	c.pages = pages
	c.rq = render.NewQueue(n)

	c.mu.Lock()
	c.numPages = n
	c.docID = doc.ID()
	c.mu.Unlock()

	page, rotation, scale, level := c.initialPage, 0, c.defaultScale, c.defaultLevel
	if c.restore && c.recorder != nil {
		pos, ok, err := c.recorder.LastPosition(c.ctx, doc.ID())
		switch {
		case err != nil:
			c.logger.Warn("cannot read last position", "doc_id", doc.ID(), "error", err)
		case ok:
			page, rotation = pos.PageIndex, model.NormalizeRotation(pos.Rotation)
			if pos.Scale > 0 {
				scale, level = pos.Scale, ""
			}
			c.logger.Info("restoring position", "doc_id", doc.ID(), "page", page, "scale", pos.Scale)
		}
	}
	if page < 0 || page >= n {
		page = 0
	}
	if level == "" && scale <= 0 {
		level = model.PageWidth
	}
	c.level = level
	if level != "" {
		scale = c.resolveLevel(level, page, rotation)
	}

	c.layoutScale, c.layoutRotation = scale, rotation
	layout := visibility.NewLayout(pages, scale, rotation, c.gap, c.mode)
	c.tracker = visibility.NewTracker(c.rq, layout, c.overscan)
	if _, err := c.tracker.OnResize(c.viewport.Width, c.viewport.Height); err != nil {
		c.logger.Error("initial visibility failed", "error", err)
	}
	if n > 0 {
		if _, err := c.tracker.ScrollTo(page); err != nil {
			c.logger.Error("initial scroll failed", "page", page, "error", err)
		}
	}

	if c.recorder != nil {
		id, err := c.recorder.BeginSession(c.ctx, doc.ID(), c.file.Name, n)
		if err != nil {
			c.logger.Warn("journal session not started", "doc_id", doc.ID(), "error", err)
		}
		c.sessionID = id
	}

	c.logger.Info("document loaded",
		"doc_id", doc.ID(),
		"pages", n,
		"initial_page", page,
		"scale", scale,
		"rotation", rotation,
	)

	_ = c.host.DispatchDocumentLoad(plugin.DocumentLoadEvent{Doc: doc, File: c.file})
	c.commit(model.ViewerState{PageIndex: page, Scale: scale, Rotation: rotation, File: c.file}, true)
	c.schedule()
}

// resolveLevel computes the scale of a special zoom level for page at
// rotation in the current viewport.
func (c *Controller) resolveLevel(level model.SpecialZoomLevel, page, rotation int) float64 {
	if page < 0 || page >= len(c.pages) {
		return 1
	}
	return level.ScaleFor(c.pages[page].Size(rotation, 1), c.viewport)
}

// commit runs the plugin transform chain on next, makes the result the
// committed state and fires outward events. Geometry follows the committed
// state, including changes made by hooks.
func (c *Controller) commit(next model.ViewerState, initial bool) {
	prev := c.state

	out, err := c.host.TransformViewerState(next)
	if err != nil && c.host.Policy() == plugin.PolicyFailFast {
		c.logger.Error("state change aborted by plugin",
			"page", next.PageIndex,
			"scale", next.Scale,
			"rotation", next.Rotation,
			"error", err,
		)
		if !initial {
			return
		}
		out = next
	}
	out = c.sanitize(out, next)

	c.mu.Lock()
	c.state = out
	c.mu.Unlock()

	if out.Scale != c.layoutScale || out.Rotation != c.layoutRotation {
		c.relayout(out)
	} else if out.PageIndex != next.PageIndex {
		c.scrollTo(out.PageIndex)
	}
	c.recordState(out)
	_ = c.host.DispatchViewerStateCommit(out)

	if initial {
		c.fireDocumentLoad()
		c.firePageChange(out)
		return
	}
	if out.PageIndex != prev.PageIndex {
		c.firePageChange(out)
	}
	if out.Scale != prev.Scale {
		c.fireZoom(out)
	}
}

// sanitize repairs fields a hook may have broken. fallback supplies values
// for fields that cannot be repaired.
func (c *Controller) sanitize(st, fallback model.ViewerState) model.ViewerState {
	st.Rotation = model.NormalizeRotation(st.Rotation)
	if st.Scale <= 0 || math.IsNaN(st.Scale) || math.IsInf(st.Scale, 0) {
		st.Scale = fallback.Scale
	}
	if st.PageIndex < 0 || st.PageIndex >= len(c.pages) {
		st.PageIndex = fallback.PageIndex
	}
	if st.PageIndex >= 0 && st.PageIndex < len(c.pages) {
		d := c.pages[st.PageIndex]
		st.PageWidth, st.PageHeight = d.Width, d.Height
	}
	st.File = c.file
	return st
}

// relayout rebuilds the layout for a new scale or rotation. Every rendered
// page is invalidated and renders in flight are abandoned.
func (c *Controller) relayout(st model.ViewerState) {
	c.bumpGeneration()
	c.rq.MarkRangeNotRendered()
	c.layoutScale, c.layoutRotation = st.Scale, st.Rotation

	layout := visibility.NewLayout(c.pages, st.Scale, st.Rotation, c.gap, c.mode)
	if _, err := c.tracker.SetLayout(layout, st.PageIndex); err != nil {
		c.logger.Error("relayout failed", "error", err)
	}
	c.logger.Debug("layout rebuilt",
		"scale", st.Scale,
		"rotation", st.Rotation,
		"anchor", st.PageIndex,
		"gen", c.gen,
	)
}

func (c *Controller) scrollTo(pageIndex int) {
	if _, err := c.tracker.ScrollTo(pageIndex); err != nil {
		c.logger.Error("scroll failed", "page", pageIndex, "error", err)
	}
}

// afterVisibility recomputes the current page and polls the scheduler. A
// window where no page intersects the viewport keeps the current page.
func (c *Controller) afterVisibility() {
	if cur := c.rq.CurrentPage(); cur != render.NoPage && cur != c.state.PageIndex {
		rec, _ := c.rq.Record(cur)
		if r, ok := rec.Visibility.Ratio(); ok && r > 0 {
			next := c.state
			next.PageIndex = cur
			c.commit(next, false)
		}
	}
	c.schedule()
}

func (c *Controller) handleResize(width, height float64) {
	c.viewport = model.Size{Width: max(width, 0), Height: max(height, 0)}
	if c.tracker == nil {
		return
	}
	if _, err := c.tracker.OnResize(c.viewport.Width, c.viewport.Height); err != nil {
		c.logger.Error("resize failed", "error", err)
	}
	if c.level != "" {
		if s := c.resolveLevel(c.level, c.state.PageIndex, c.state.Rotation); s != c.state.Scale {
			next := c.state
			next.Scale = s
			c.commit(next, false)
		}
	}
	c.afterVisibility()
}

func (c *Controller) handleScroll(offset float64) {
	if c.tracker == nil {
		return
	}
	if _, err := c.tracker.OnScroll(offset); err != nil {
		c.logger.Error("scroll failed", "offset", offset, "error", err)
	}
	c.afterVisibility()
}

func (c *Controller) handleIntersection(pageIndex int, ratio float64) {
	if c.tracker == nil {
		return
	}
	if err := c.tracker.OnIntersectionChange(pageIndex, ratio); err != nil {
		c.logger.Debug("ignoring intersection", "page", pageIndex, "error", err)
		return
	}
	c.afterVisibility()
}

func (c *Controller) handleJump(pageIndex int) {
	if c.rq == nil || pageIndex < 0 || pageIndex >= len(c.pages) {
		c.logger.Debug("ignoring jump outside document", "page", pageIndex, "pages", len(c.pages))
		return
	}
	c.scrollTo(pageIndex)
	c.afterVisibility()
}

func (c *Controller) handleRotate(dir plugin.Direction) {
	if c.rq == nil {
		return
	}
	next := c.state
	next.Rotation = model.NormalizeRotation(next.Rotation + dir.Degrees())
	c.commit(next, false)
	c.schedule()
}

func (c *Controller) handleSetScale(scale float64) {
	if c.rq == nil || scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return
	}
	c.level = ""
	next := c.state
	next.Scale = scale
	c.commit(next, false)
	c.schedule()
}

func (c *Controller) handleZoomTo(level model.SpecialZoomLevel) {
	if c.rq == nil {
		return
	}
	c.level = level
	next := c.state
	next.Scale = c.resolveLevel(level, next.PageIndex, next.Rotation)
	c.commit(next, false)
	c.schedule()
}

func (c *Controller) recordState(st model.ViewerState) {
	seq := c.clock.Next()
	if c.recorder == nil || c.sessionID == "" {
		return
	}
	if err := c.recorder.RecordState(c.ctx, c.sessionID, seq, st); err != nil {
		c.logger.Warn("journal write failed", "seq", seq, "error", err)
	}
}

func (c *Controller) recordEvent(kind string, pageIndex int, scale float64) {
	seq := c.clock.Next()
	if c.recorder == nil || c.sessionID == "" {
		return
	}
	if err := c.recorder.RecordEvent(c.ctx, c.sessionID, seq, kind, pageIndex, scale); err != nil {
		c.logger.Warn("journal write failed", "seq", seq, "kind", kind, "error", err)
	}
}

func (c *Controller) fireDocumentLoad() {
	ev := DocumentLoadEvent{DocID: c.doc.ID(), NumPages: len(c.pages), FileName: c.file.Name}
	c.recordEvent(KindDocumentLoad, c.state.PageIndex, c.state.Scale)
	if c.onDocumentLoad != nil {
		c.onDocumentLoad(ev)
	}
}

func (c *Controller) firePageChange(st model.ViewerState) {
	ev := PageChangeEvent{DocID: c.doc.ID(), PageIndex: st.PageIndex, NumPages: len(c.pages)}
	c.logger.Debug("page changed", "page", st.PageIndex)
	c.recordEvent(KindPageChange, st.PageIndex, st.Scale)
	if c.onPageChange != nil {
		c.onPageChange(ev)
	}
}

func (c *Controller) fireZoom(st model.ViewerState) {
	ev := ZoomEvent{DocID: c.doc.ID(), Scale: st.Scale}
	c.logger.Debug("zoom changed", "scale", st.Scale)
	c.recordEvent(KindZoom, st.PageIndex, st.Scale)
	if c.onZoom != nil {
		c.onZoom(ev)
	}
}
