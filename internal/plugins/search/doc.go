// Package search finds keywords in the text of every page and navigates
// between matches.
//
// Search extracts the text of all pages concurrently, normalizes it to NFC
// and, unless the keyword asks for a case-sensitive match, folds case
// before matching. Match offsets are byte offsets into Match.PageText, the
// normalized text that was searched.
//
// Jumping to a match goes through the viewer handle, so the target page is
// scrolled into the window and rendered like any other jump. When a page's
// text layer renders, the matches of that page are published under
// KeyHighlights.
package search
