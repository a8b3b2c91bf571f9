package bm25

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// snippetRadius is the number of characters kept on each side of the first match.
const snippetRadius = 80

// highlighter wraps query tokens found in text with open/close markers.
type highlighter struct {
	open  string
	close string
}

// snippet returns a window of text around the first match of re with every
// match marked. Returns "" when re is nil or does not match.
func (h highlighter) snippet(text string, re *regexp.Regexp) string {
	if re == nil {
		return ""
	}

	loc := re.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	window, prefix, suffix := cutWindow(text, loc[0], loc[1])
	marked := re.ReplaceAllStringFunc(window, func(m string) string {
		return h.open + m + h.close
	})
	return prefix + marked + suffix
}

// tokenPattern builds a case-insensitive alternation of the tokens, longest first.
// A token restored from a compound also matches its split form, so "frontend"
// marks "front end" and "front-end".
func tokenPattern(tokens []string, parts func(string) [][2]string) *regexp.Regexp {
	alts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		alts = append(alts, regexp.QuoteMeta(t))
		if parts == nil {
			continue
		}
		for _, p := range parts(t) {
			alts = append(alts, regexp.QuoteMeta(p[0])+`[\s\-]*`+regexp.QuoteMeta(p[1]))
		}
	}
	if len(alts) == 0 {
		return nil
	}
	sort.SliceStable(alts, func(i, j int) bool {
		return len(alts[i]) > len(alts[j])
	})
	return regexp.MustCompile(`(?i)` + strings.Join(alts, "|"))
}

// cutWindow returns text around [start,end) plus ellipsis markers for any cut side.
func cutWindow(text string, start, end int) (window, prefix, suffix string) {
	from := start
	for n := 0; n < snippetRadius && from > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}

	to := end
	for n := 0; n < snippetRadius && to < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}

	if from > 0 {
		prefix = "…"
	}
	if to < len(text) {
		suffix = "…"
	}
	return text[from:to], prefix, suffix
}
