// Package visibility converts viewport geometry into per-page visibility.
//
// A Layout stacks the pages of a document along the scroll axis at a given
// scale and rotation. A Tracker combines the layout with the current
// viewport size and scroll offset, computes the intersection ratio of every
// page, derives the virtualization window (the visible pages plus an
// overscan margin on each side) and pushes the result into a Sink, which in
// production is the render queue.
//
// The ratio of a page is the fraction of its extent along the scroll axis
// that lies inside the viewport. Pages that do not intersect the viewport
// are reported OutOfRange rather than Visible(0), so they never count as
// visible for scheduling.
package visibility
