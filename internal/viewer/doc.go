// Package viewer implements the viewer state controller.
//
// A Controller owns one document from load to unmount. It wires the
// document loader, the render queue, the visibility tracker and the plugin
// host together behind a single-writer event loop.
//
// # Event loop
//
// Public mutators (Resize, Scroll, JumpToPage, Rotate, SetScale, ZoomTo and
// the plugin Handle methods) only post an event. Run or Drain processes
// events one at a time on the calling goroutine. Loading and page rendering
// run on worker goroutines and post their completions back as events, so
// every state change happens on the loop.
//
// # Lifecycle
//
//	Loading -> Loaded
//	Loading -> AskingPassword -> VerifyingPassword -> Loaded
//	                 ^                   |
//	                 +---- wrong --------+
//	any non-terminal status -> Failed
//
// # Committing state
//
// Every state change is passed through the plugins' OnViewerStateChange
// hooks in registration order. The result is sanitized and committed, then
// handed to every OnViewerStateCommit hook.
// Layout follows the committed scale and rotation, and outward events
// (OnPageChange, OnZoom) fire from committed values only.
//
// # Rendering
//
// After every event the controller polls the render queue for the highest
// priority page and starts at most one render. A scale or rotation change
// bumps the render generation: renders in flight are cancelled and their
// completions dropped.
package viewer
