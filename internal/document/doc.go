// Package document defines the decoding collaborator the viewer engine
// talks to, plus two implementations.
//
// The engine never parses document bytes itself. It asks a Loader for a
// Document, measures every page once through Page.Viewport, and later asks a
// Page to paint into a surface. Decoding may be slow; Render is called from a
// worker goroutine and must honour ctx.
//
// PDFLoader reads PDFs with pdfcpu. It supplies page count, page geometry and
// password handling; painting fills the page background only, since glyph and
// image decoding is outside this module. Synthetic is an in-memory document
// with per-page text and annotations, configurable latency and injected
// failures, used by the scenario harness and tests.
package document
