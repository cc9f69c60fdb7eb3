package search

import (
	"context"
	"sort"
	"sync"

	"github.com/mvp-joe/contexto/internal/graph"
	"github.com/mvp-joe/contexto/internal/storage"
)

// DefaultLimit is used when a search is called with a non-positive limit.
const DefaultLimit = 10

// Result is a matching node and its score normalized to [0, 1].
type Result struct {
	Node  *graph.Node `json:"node"`
	Score float64     `json:"score"`
}

// Engine ranks classes, functions, and methods against free-text queries.
// The IDF table is cached after the first search until Invalidate is called.
type Engine struct {
	store *storage.Store

	mu     sync.RWMutex
	idf    map[string]float64
	maxIDF float64
}

// NewEngine creates a search engine over store.
func NewEngine(store *storage.Store) *Engine {
	return &Engine{store: store}
}

// BuildIndex recomputes the whole index in its own transaction.
func (e *Engine) BuildIndex(ctx context.Context) error {
	defer e.Invalidate()
	return e.store.Update(ctx, func(w *storage.Writer) error {
		return e.Rebuild(ctx, w)
	})
}

// Rebuild recomputes the index inside an existing transaction, so it commits
// or rolls back together with the graph writes that precede it.
func (e *Engine) Rebuild(ctx context.Context, w *storage.Writer) error {
	docs, err := w.SearchDocuments(ctx)
	if err != nil {
		return err
	}
	idx := NewIndex(docs)
	return w.ReplaceSearchIndex(ctx, idx.IDF, idx.Postings)
}

// Invalidate drops the cached IDF table.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.idf = nil
	e.maxIDF = 0
}

func (e *Engine) loadIDF(ctx context.Context) (map[string]float64, float64, error) {
	e.mu.RLock()
	idf, maxIDF := e.idf, e.maxIDF
	e.mu.RUnlock()
	if idf != nil {
		return idf, maxIDF, nil
	}

	idf, err := e.store.IDF(ctx)
	if err != nil {
		return nil, 0, err
	}
	maxIDF = 0
	for _, v := range idf {
		if v > maxIDF {
			maxIDF = v
		}
	}

	e.mu.Lock()
	e.idf, e.maxIDF = idf, maxIDF
	e.mu.Unlock()
	return idf, maxIDF, nil
}

// Search returns up to limit nodes ranked by summed tf*idf over the query
// terms. Scores are divided by the query term count times the corpus maximum
// idf, so terms missing from the index lower every score. Equal scores are
// ordered by node id. A query with no indexed terms returns an empty slice.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	results := []Result{}
	terms := Tokenize(query)
	if len(terms) == 0 {
		return results, nil
	}

	idf, maxIDF, err := e.loadIDF(ctx)
	if err != nil {
		return nil, err
	}

	var kept []string
	for _, term := range terms {
		if idf[term] > 0 {
			kept = append(kept, term)
		}
	}
	if len(kept) == 0 {
		return results, nil
	}

	scores := make(map[string]float64)
	postings := make(map[string][]storage.Posting)
	for _, term := range kept {
		list, ok := postings[term]
		if !ok {
			list, err = e.store.Postings(ctx, term)
			if err != nil {
				return nil, err
			}
			postings[term] = list
		}
		for _, p := range list {
			scores[p.NodeID] += p.TF * idf[term]
		}
	}

	type scored struct {
		id    string
		score float64
	}
	ranked := make([]scored, 0, len(scores))
	for id, score := range scores {
		ranked = append(ranked, scored{id: id, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	normalizer := float64(len(terms)) * maxIDF
	for _, r := range ranked {
		node, err := e.store.GetNode(ctx, r.id)
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}
		score := 0.0
		if normalizer > 0 {
			score = r.score / normalizer
			if score > 1 {
				score = 1
			}
		}
		results = append(results, Result{Node: node, Score: score})
	}
	return results, nil
}
