// Package harness runs scripted viewer sessions against synthetic
// documents.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: jump_to_page
//	description: "Jumping renders the target page first"
//	document:
//	  id: doc-1
//	  uniform: { count: 8, width: 100, height: 200 }
//	viewport: { width: 100, height: 300 }
//	options:
//	  scale: 1
//	  overscan: 1
//	  page_gap: 0
//	steps:
//	  - jump: 5
//	  - rotate: forward
//	  - zoom: { scale: 2 }
//	  - zoom: { level: page-fit }
//	  - scroll: 400
//	  - resize: { width: 200, height: 300 }
//	assertions:
//	  - type: current_page
//	    page: 5
//	  - type: render_order
//	    pages: [0, 1, 2, 5, 6, 7, 4]
//	  - type: events
//	    events: ["document-load:8", "page-change:0", "page-change:5"]
//
// Every step is applied and then drained, so the trace shows the complete
// effect of one user action before the next one starts. A step with
// queue: true is only posted; the next drained step processes it together
// with its own event.
//
// # Assertion Types
//
//   - current_page: the committed page after the last step
//   - status: the lifecycle status (Loaded, AskingPassword, Failed, ...)
//   - render_order: every completed page render, in order
//   - events: every outward event, in order, as "kind:value"
//   - final_state: scale, rotation and window after the last step
//
// # Deterministic Testing
//
// Trace entries are stamped by testutil.DeterministicClock. Synthetic
// documents render without latency, and the viewer serializes renders, so
// the same scenario always produces the same trace. RunWithGolden compares
// the trace against testdata/golden/{name}.golden.
package harness
