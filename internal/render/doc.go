// Package render implements the render queue: the per-page visibility and
// render-status records of one document, and the pull-based scheduler that
// decides which single page renders next.
//
// INVARIANTS:
//   - len(records) == numPages for the lifetime of the queue
//   - Range is always valid: 0 <= Start <= End < numPages
//   - A page outside the range is OutOfRange and NotRendered
//   - At most one page is Rendering
//   - CurrentRenderingPage() == -1 exactly when no page is Rendering
//
// The queue is pull-based. The host calls HighestPriorityPage after every
// visibility change or render completion instead of the queue pushing work.
// That keeps the scheduler free of state between ticks: after any external
// mutation (range change, document swap, rescale) the next poll simply
// recomputes the answer.
//
// Thread-safety: Queue is not safe for concurrent use. The viewer owns one
// Queue per document and touches it only from its event loop.
package render
