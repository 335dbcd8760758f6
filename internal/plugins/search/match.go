package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Keyword is what to search for.
type Keyword struct {
	Text       string `json:"text" yaml:"text"`
	MatchCase  bool   `json:"match_case,omitempty" yaml:"match_case,omitempty"`
	WholeWords bool   `json:"whole_words,omitempty" yaml:"whole_words,omitempty"`
}

// Match is one occurrence of the keyword. MatchIndex is the position of
// the match within its page.
type Match struct {
	PageIndex  int    `json:"page_index"`
	MatchIndex int    `json:"match_index"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	PageText   string `json:"-"`
}

// matcher finds non-overlapping occurrences of one keyword.
// Not safe for concurrent use: cases.Caser keeps state.
type matcher struct {
	kw     Keyword
	needle string
	caser  cases.Caser
}

func newMatcher(kw Keyword) *matcher {
	m := &matcher{kw: kw, caser: cases.Fold()}
	m.needle = m.normalize(kw.Text)
	return m
}

func (m *matcher) normalize(s string) string {
	s = norm.NFC.String(s)
	if !m.kw.MatchCase {
		s = m.caser.String(s)
	}
	return s
}

// find returns the matches in the text of page pageIndex.
func (m *matcher) find(pageIndex int, text string) []Match {
	if m.needle == "" {
		return nil
	}
	text = m.normalize(text)

	var out []Match
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], m.needle)
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len(m.needle)

		if m.kw.WholeWords && !isWordBoundary(text, start, end) {
			_, size := utf8.DecodeRuneInString(text[start:])
			offset = start + size
			continue
		}

		out = append(out, Match{
			PageIndex:  pageIndex,
			MatchIndex: len(out),
			StartIndex: start,
			EndIndex:   end,
			PageText:   text,
		})
		offset = end
	}
	return out
}

func isWordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
