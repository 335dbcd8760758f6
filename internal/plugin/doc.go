// Package plugin defines the plugin contract and the host that dispatches
// viewer events to installed plugins.
//
// A Plugin is a bundle of optional hooks. The Host keeps the registrations
// in the order they were given and never reorders them. Every dispatch
// walks that list and calls only the hooks that are set.
//
// Install and Uninstall run once each, in registration order. Install hands
// every plugin a Handle: the only way a plugin can change shared viewer
// state (jump, rotate, set scale, zoom to a special level). Plugins read the
// committed state through Handle.ViewerState and never touch viewer
// internals.
//
// OnViewerStateChange hooks form a transform chain: each hook receives the
// previous hook's output and the final value is what the viewer commits.
// Plugins that mirror viewer state into a store publish it from
// OnViewerStateCommit, which only ever sees committed values.
//
// # Failure policy
//
// With PolicyIsolate (the default) a failing or panicking hook is logged,
// its result is discarded, and dispatch continues with the next plugin. The
// failures are returned joined so callers can inspect them.
//
// With PolicyFailFast the first failure stops dispatch for that event and is
// returned; later plugins do not see the event. Panics are recovered into a
// HookError under both policies so that a plugin cannot take down the event
// loop.
package plugin
