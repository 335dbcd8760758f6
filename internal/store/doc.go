// Package store implements the reactive key/value hub that plugins share.
//
// A Store maps opaque string keys to arbitrary values and keeps an ordered
// list of subscribers per key. Update sets the value and synchronously
// notifies every subscriber of that key, in subscription order, before it
// returns. There is no batching and no deduplication: updating a key to the
// value it already holds still runs a full notification pass.
//
// # Cascades
//
// A subscriber may call Update from inside its handler. The nested update is
// processed completely (value set, all of its subscribers notified) before
// control returns to the outer notification loop. Dispatch is depth-first:
//
//	update(doc) -> handler A -> update(currentPage) -> handlers of currentPage
//	            -> handler B
//
// Each pass iterates a snapshot of the subscriber list taken when the pass
// starts, so handlers added or removed during a pass take effect on the next
// one. A cascade deeper than the configured limit is dropped and logged.
//
// # Ownership
//
// Each plugin family owns its own Store scoped to its own keys; there is no
// global registry. The viewer engine never reads a Store to make scheduling
// decisions.
package store
