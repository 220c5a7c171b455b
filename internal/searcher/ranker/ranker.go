package ranker

import (
	"container/heap"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer/index"
)

// DefaultLimit is the number of results a query returns.
const DefaultLimit = 10

// Better reports whether a ranks above b: higher summed weight first, and
// among equal weights the higher document id.
func Better(a, b index.Candidate) bool {
	if a.Weight != b.Weight {
		return a.Weight > b.Weight
	}
	return a.DocID > b.DocID
}

// Sort orders candidates best first, in place.
func Sort(candidates []index.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		return Better(candidates[i], candidates[j])
	})
}

// Rank returns the best limit candidates, best first. A limit of zero or
// less means DefaultLimit. The input is not modified.
func Rank(candidates []index.Candidate, limit int) []index.Candidate {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(candidates) <= limit {
		out := make([]index.Candidate, len(candidates))
		copy(out, candidates)
		Sort(out)
		return out
	}
	h := &candidateHeap{}
	heap.Init(h)
	for _, c := range candidates {
		heap.Push(h, c)
		if h.Len() > limit {
			heap.Pop(h)
		}
	}
	result := make([]index.Candidate, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(index.Candidate)
	}
	return result
}

// candidateHeap keeps the worst retained candidate on top.
type candidateHeap []index.Candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool { return Better(h[j], h[i]) }

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x interface{}) {
	*h = append(*h, x.(index.Candidate))
}

func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
