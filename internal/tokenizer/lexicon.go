package tokenizer

import (
	"sort"
	"strings"
)

// Compound is an adjacent token pair that should be re-merged into one term.
type Compound struct {
	// Parts are the two halves as produced by splitting.
	Parts [2]string

	// Merged is the restored term. Defaults to the concatenated parts.
	Merged string
}

// Lexicon holds the stopword set and compound dictionary.
// A Lexicon is immutable once built; replace it wholesale.
type Lexicon struct {
	stopwords map[string]struct{}
	compounds map[[2]string]string
}

// NewLexicon builds a lexicon from stopwords and compounds.
// Entries are lowercased and trimmed; blanks are ignored.
func NewLexicon(stopwords []string, compounds []Compound) *Lexicon {
	l := &Lexicon{
		stopwords: make(map[string]struct{}, len(stopwords)),
		compounds: make(map[[2]string]string, len(compounds)),
	}
	for _, w := range stopwords {
		w = normalise(w)
		if w != "" {
			l.stopwords[w] = struct{}{}
		}
	}
	for _, c := range compounds {
		first, second := normalise(c.Parts[0]), normalise(c.Parts[1])
		if first == "" || second == "" {
			continue
		}
		merged := normalise(c.Merged)
		if merged == "" {
			merged = first + second
		}
		l.compounds[[2]string{first, second}] = merged
	}
	return l
}

// Extend returns a new lexicon containing the receiver's entries plus the given ones.
func (l *Lexicon) Extend(stopwords []string, compounds []Compound) *Lexicon {
	out := NewLexicon(stopwords, compounds)
	for w := range l.stopwords {
		out.stopwords[w] = struct{}{}
	}
	for k, v := range l.compounds {
		if _, ok := out.compounds[k]; !ok {
			out.compounds[k] = v
		}
	}
	return out
}

// IsStopword reports whether the token is in the stopword set.
func (l *Lexicon) IsStopword(token string) bool {
	_, ok := l.stopwords[token]
	return ok
}

// Compound returns the merged term for an adjacent pair, if any.
func (l *Lexicon) Compound(first, second string) (string, bool) {
	merged, ok := l.compounds[[2]string{first, second}]
	return merged, ok
}

// Parts returns the split pairs that merge into term, sorted.
func (l *Lexicon) Parts(term string) [][2]string {
	var out [][2]string
	for pair, merged := range l.compounds {
		if merged == term {
			out = append(out, pair)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// Len returns the number of stopwords and compounds.
func (l *Lexicon) Len() (stopwords, compounds int) {
	return len(l.stopwords), len(l.compounds)
}

func normalise(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DefaultStopwords are particles, copulas, generic filler words and units
// common in Korean and English application documents.
var DefaultStopwords = []string{
	// Korean particles
	"은", "는", "이", "가", "을", "를", "의", "에", "에서", "으로", "로", "와", "과",
	"도", "만", "께서", "에게", "한테", "부터", "까지", "보다", "처럼", "이나", "나",
	// Copulas and auxiliaries
	"이다", "입니다", "있다", "없다", "하다", "되다", "했다", "했습니다", "합니다",
	"있습니다", "됩니다", "되었습니다", "하였습니다",
	// Filler words
	"저", "제", "저는", "제가", "저의", "그리고", "그러나", "하지만", "또한", "및", "등",
	"것", "수", "때", "더", "잘", "위해", "통해", "대한", "대해", "관련", "경우", "정도",
	"다양한", "많은", "여러",
	// Units
	"년", "월", "일", "개월", "명", "개", "번", "시간", "분", "회", "차",
	// English
	"the", "a", "an", "and", "or", "of", "to", "in", "on", "for", "with", "at", "by",
	"from", "is", "are", "was", "were", "be", "been", "this", "that", "i", "my", "we", "our",
}

// DefaultCompounds are split pairs that analyzers and whitespace commonly break apart.
var DefaultCompounds = []Compound{
	{Parts: [2]string{"프론트", "엔드"}},
	{Parts: [2]string{"백", "엔드"}},
	{Parts: [2]string{"풀", "스택"}},
	{Parts: [2]string{"데이터", "베이스"}},
	{Parts: [2]string{"머신", "러닝"}},
	{Parts: [2]string{"딥", "러닝"}},
	{Parts: [2]string{"인공", "지능"}},
	{Parts: [2]string{"빅", "데이터"}},
	{Parts: [2]string{"클라우드", "네이티브"}},
	{Parts: [2]string{"데브", "옵스"}},
	{Parts: [2]string{"자연어", "처리"}},
	{Parts: [2]string{"front", "end"}},
	{Parts: [2]string{"back", "end"}},
}

// DefaultLexicon returns the built-in lexicon.
func DefaultLexicon() *Lexicon {
	return NewLexicon(DefaultStopwords, DefaultCompounds)
}
