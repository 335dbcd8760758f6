// Package journal provides SQLite-backed durable storage for viewer sessions.
//
// Every committed viewer state and every outward event (document load, page
// change, zoom) is appended to the journal together with the controller's
// logical sequence number. The journal is what lets a viewer resume at the
// last page a reader saw and lets the CLI print a reading history.
//
// # Tables
//
//   - sessions: one row per opened document instance
//   - states: committed viewer-state snapshots
//   - events: outward events fired to the host application
//
// # Ordering
//
// All reads order by session ordinal, then seq. Sequence numbers come from
// the controller's logical clock, never from wall time, so a replayed session
// produces identical rows.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads while the viewer writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package journal
