package viewer

import (
	"context"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/roach88/pageflow/internal/document"
	"github.com/roach88/pageflow/internal/model"
	"github.com/roach88/pageflow/internal/plugin"
	"github.com/roach88/pageflow/internal/render"
)

// renderJob is a page render running on a worker goroutine.
type renderJob struct {
	page   int
	gen    uint64
	cancel context.CancelFunc
}

// renderResult is everything a worker produces for one page. Results of
// the current generation are cached per page so a page that completed while
// out of range does not have to be decoded again.
type renderResult struct {
	surface     draw.Image
	text        string
	annotations []document.Annotation
}

// schedule polls the render queue and starts the next render, if any.
// Cached results are applied immediately and the queue is polled again.
func (c *Controller) schedule() {
	if c.rq == nil || c.doc == nil {
		return
	}
	for {
		p := c.rq.HighestPriorityPage()
		if p == render.NoPage {
			return
		}
		// A prefetch candidate may already be rendering.
		if rec, _ := c.rq.Record(p); rec.Status == model.Rendering {
			return
		}
		// A prefetch just outside the window only warms the surface cache.
		if !c.rq.IsInRange(p) {
			if _, ok := c.surfaces[p]; !ok && !c.inFlight(p) {
				c.startRender(p)
			}
			return
		}
		// A prefetch started outside the window is adopted once the page
		// enters it.
		if c.inFlight(p) {
			if err := c.rq.MarkRendering(p); err != nil {
				c.logger.Error("cannot mark rendering", "page", p, "error", err)
				return
			}
			c.dispatchCanvas(p, plugin.PreRender, nil)
			return
		}

		if res, ok := c.surfaces[p]; ok {
			c.logger.Debug("reusing rendered surface", "page", p, "gen", c.gen)
			if err := c.rq.MarkRendering(p); err != nil {
				c.logger.Error("cannot mark rendering", "page", p, "error", err)
				return
			}
			c.dispatchCanvas(p, plugin.PreRender, nil)
			c.finishRender(p, res)
			continue
		}

		c.startRender(p)
		return
	}
}

// startRender marks p Rendering and paints it on a worker goroutine. The
// completion re-enters the loop as an evRenderDone event.
//
// A page outside the window is rendered off the books: it is not marked
// and gets no hooks until it enters the window and is taken from the cache.
func (c *Controller) startRender(p int) {
	if c.rq.IsInRange(p) {
		if err := c.rq.MarkRendering(p); err != nil {
			c.logger.Error("cannot mark rendering", "page", p, "error", err)
			return
		}
		c.dispatchCanvas(p, plugin.PreRender, nil)
	} else {
		c.logger.Debug("prefetching page outside window", "page", p, "window", c.rq.Range().String())
	}

	ctx, cancel := context.WithCancel(c.ctx)
	c.nextJob++
	id := c.nextJob
	c.jobs[id] = renderJob{page: p, gen: c.gen, cancel: cancel}

	doc, gen := c.doc, c.gen
	size := c.tracker.Layout().Size(p)
	rotation, scale := c.layoutRotation, c.layoutScale

	c.logger.Debug("render started",
		"page", p,
		"gen", gen,
		"attempt", c.attempts[p]+1,
	)

	go func() {
		res, err := renderPage(ctx, doc, p, size, rotation, scale)
		c.queue.Enqueue(event{kind: evRenderDone, job: id, page: p, gen: gen, result: res, err: err})
	}()
}

func (c *Controller) handleRenderDone(ev event) {
	if job, ok := c.jobs[ev.job]; ok {
		job.cancel()
		delete(c.jobs, ev.job)
	}
	if ev.gen != c.gen || c.rq == nil {
		c.logger.Debug("dropping stale render", "page", ev.page, "gen", ev.gen, "current_gen", c.gen)
		c.schedule()
		return
	}

	if ev.err != nil {
		c.renderFailed(ev.page, ev.err)
		c.schedule()
		return
	}

	delete(c.attempts, ev.page)
	c.surfaces[ev.page] = ev.result
	c.finishRender(ev.page, ev.result)
	c.schedule()
}

// renderFailed demotes p so it is retried. After maxAttempts failures the
// page is left rendered without content.
func (c *Controller) renderFailed(p int, err error) {
	c.attempts[p]++
	n := c.attempts[p]
	if n < c.maxAttempts {
		c.logger.Warn("page render failed, retrying",
			"page", p,
			"attempt", n,
			"max_attempts", c.maxAttempts,
			"error", err,
		)
		if merr := c.rq.MarkNotRendered(p); merr != nil {
			c.logger.Error("cannot reset page", "page", p, "error", merr)
		}
		return
	}

	c.logger.Error("page render failed, giving up",
		"page", p,
		"attempts", n,
		"error", err,
	)
	delete(c.attempts, p)
	if !c.rq.IsInRange(p) {
		// Cached empty so the prefetch is not retried forever.
		c.surfaces[p] = renderResult{}
		return
	}
	c.finishRender(p, renderResult{})
}

// inFlight reports whether a render of p from the current generation is
// running.
func (c *Controller) inFlight(p int) bool {
	for _, job := range c.jobs {
		if job.page == p && job.gen == c.gen {
			return true
		}
	}
	return false
}

// finishRender marks p Rendered and runs the post-render hooks in order:
// canvas DidRender, text layer, annotation layer. A page that left the
// range stays NotRendered and gets no hooks.
func (c *Controller) finishRender(p int, res renderResult) {
	if err := c.rq.MarkRendered(p); err != nil {
		c.logger.Error("cannot mark rendered", "page", p, "error", err)
		return
	}
	if rec, _ := c.rq.Record(p); rec.Status != model.Rendered {
		return
	}

	c.logger.Debug("page rendered", "page", p, "gen", c.gen)
	c.dispatchCanvas(p, plugin.DidRender, res.surface)

	_ = c.host.DispatchTextLayerRender(plugin.TextLayerRenderEvent{
		PageIndex: p,
		Scale:     c.layoutScale,
		Status:    plugin.PreRender,
	})
	_ = c.host.DispatchTextLayerRender(plugin.TextLayerRenderEvent{
		PageIndex: p,
		Scale:     c.layoutScale,
		Status:    plugin.DidRender,
		Text:      res.text,
	})
	_ = c.host.DispatchAnnotationLayerRender(plugin.AnnotationLayerRenderEvent{
		PageIndex:   p,
		Rotation:    c.layoutRotation,
		Scale:       c.layoutScale,
		Annotations: res.annotations,
	})
}

func (c *Controller) dispatchCanvas(p int, status plugin.LayerRenderStatus, surface draw.Image) {
	_ = c.host.DispatchCanvasLayerRender(plugin.CanvasLayerRenderEvent{
		PageIndex: p,
		Rotation:  c.layoutRotation,
		Scale:     c.layoutScale,
		Status:    status,
		Surface:   surface,
	})
}

// bumpGeneration invalidates every render in flight and every cached
// surface.
func (c *Controller) bumpGeneration() {
	c.gen++
	c.cancelJobs(c.gen)
	clear(c.surfaces)
	clear(c.attempts)
}

// cancelJobs cancels the context of every job older than gen. Their
// completions still arrive and are dropped as stale.
func (c *Controller) cancelJobs(gen uint64) {
	for _, job := range c.jobs {
		if job.gen < gen {
			job.cancel()
		}
	}
}

// renderPage runs on a worker goroutine.
func renderPage(ctx context.Context, doc document.Document, p int, size model.Size, rotation int, scale float64) (renderResult, error) {
	var res renderResult

	page, err := doc.Page(ctx, p)
	if err != nil {
		return res, fmt.Errorf("open page %d: %w", p, err)
	}

	w := max(int(math.Ceil(size.Width)), 1)
	h := max(int(math.Ceil(size.Height)), 1)
	surface := image.NewRGBA(image.Rect(0, 0, w, h))
	if err := page.Render(ctx, surface, rotation, scale); err != nil {
		return res, fmt.Errorf("render page %d: %w", p, err)
	}
	res.surface = surface

	if ts, ok := doc.(document.TextSource); ok {
		text, err := ts.Text(ctx, p)
		if err != nil {
			return res, fmt.Errorf("text of page %d: %w", p, err)
		}
		res.text = text
	}
	if as, ok := doc.(document.AnnotationSource); ok {
		annots, err := as.Annotations(ctx, p)
		if err != nil {
			return res, fmt.Errorf("annotations of page %d: %w", p, err)
		}
		res.annotations = annots
	}
	return res, nil
}
