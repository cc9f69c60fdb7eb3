package search

import (
	"math"
	"sort"

	"github.com/mvp-joe/contexto/internal/storage"
)

// Index is a computed TF-IDF index ready to be persisted.
type Index struct {
	Documents int
	IDF       map[string]float64
	Postings  []storage.Posting
}

// NewIndex computes normalized term frequencies and smoothed inverse document
// frequencies for docs. Postings are ordered by node id, then term.
func NewIndex(docs []storage.SearchDocument) *Index {
	idx := &Index{
		Documents: len(docs),
		IDF:       make(map[string]float64),
	}
	if len(docs) == 0 {
		return idx
	}

	docFreq := make(map[string]int)
	for _, doc := range docs {
		counts := make(map[string]int)
		maxCount := 0
		for _, term := range Tokenize(documentText(doc.Name, doc.Signature, doc.Docstring)) {
			counts[term]++
			if counts[term] > maxCount {
				maxCount = counts[term]
			}
		}

		terms := make([]string, 0, len(counts))
		for term := range counts {
			terms = append(terms, term)
			docFreq[term]++
		}
		sort.Strings(terms)

		for _, term := range terms {
			idx.Postings = append(idx.Postings, storage.Posting{
				NodeID: doc.NodeID,
				Term:   term,
				TF:     float64(counts[term]) / float64(maxCount),
			})
		}
	}

	n := float64(len(docs))
	for term, df := range docFreq {
		idx.IDF[term] = math.Log((n+1)/(float64(df)+1)) + 1
	}
	return idx
}
