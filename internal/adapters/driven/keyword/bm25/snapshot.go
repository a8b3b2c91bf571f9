package bm25

import (
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/hirescope/internal/core/domain"
)

// snapshot is an immutable built index. It is replaced wholesale on rebuild.
type snapshot struct {
	ids     []string
	docs    map[string]domain.Document
	texts   []string
	tf      []map[string]int
	lengths []int
	avgLen  float64
	idf     map[string]float64
	vocab   []string
	k1, b   float64
}

// newSnapshot computes term statistics over pre-tokenized documents.
// Entries whose term list is empty are skipped.
func newSnapshot(docs []domain.Document, terms [][]string, k1, b float64) *snapshot {
	s := &snapshot{
		docs: make(map[string]domain.Document),
		idf:  make(map[string]float64),
		k1:   k1,
		b:    b,
	}

	df := make(map[string]int)
	total := 0
	for i := range docs {
		if len(terms[i]) == 0 {
			continue
		}
		if _, dup := s.docs[docs[i].ID]; dup {
			continue
		}

		freq := make(map[string]int, len(terms[i]))
		for _, t := range terms[i] {
			freq[t]++
		}
		for t := range freq {
			df[t]++
		}

		s.ids = append(s.ids, docs[i].ID)
		s.docs[docs[i].ID] = docs[i]
		s.texts = append(s.texts, docs[i].SearchableText())
		s.tf = append(s.tf, freq)
		s.lengths = append(s.lengths, len(terms[i]))
		total += len(terms[i])
	}

	n := float64(len(s.ids))
	if n > 0 {
		s.avgLen = float64(total) / n
	}
	for t, d := range df {
		s.idf[t] = math.Log((n-float64(d)+0.5)/(float64(d)+0.5) + 1)
		s.vocab = append(s.vocab, t)
	}
	sort.Strings(s.vocab)

	return s
}

// size returns the number of indexed documents.
func (s *snapshot) size() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// score returns the BM25 score of every document with a positive score.
func (s *snapshot) score(query []string) map[int]float64 {
	scores := make(map[int]float64)
	if s.size() == 0 {
		return scores
	}

	for _, term := range query {
		idf, ok := s.idf[term]
		if !ok {
			continue
		}
		for i, freq := range s.tf {
			f, ok := freq[term]
			if !ok {
				continue
			}
			tf := float64(f)
			norm := 1 - s.b + s.b*float64(s.lengths[i])/s.avgLen
			scores[i] += idf * (tf * (s.k1 + 1)) / (tf + s.k1*norm)
		}
	}

	for i, v := range scores {
		if v <= 0 {
			delete(scores, i)
		}
	}
	return scores
}

// suggest returns up to limit vocabulary entries starting with prefix.
func (s *snapshot) suggest(prefix string, limit int) []string {
	if s.size() == 0 {
		return []string{}
	}

	out := []string{}
	for i := sort.SearchStrings(s.vocab, prefix); i < len(s.vocab) && len(out) < limit; i++ {
		if !strings.HasPrefix(s.vocab[i], prefix) {
			break
		}
		out = append(out, s.vocab[i])
	}
	return out
}
