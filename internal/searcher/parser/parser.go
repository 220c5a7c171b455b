package parser

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer/tokenizer"
)

// QueryPlan is a tokenized query. Terms are distinct, in the order they
// first appear; every term is looked up and all matches contribute.
type QueryPlan struct {
	Terms    []string
	RawQuery string
}

func Parse(query string) *QueryPlan {
	plan := &QueryPlan{
		Terms:    make([]string, 0),
		RawQuery: query,
	}
	if strings.TrimSpace(query) == "" {
		return plan
	}
	plan.Terms = tokenizer.Terms(query)
	return plan
}

// Empty reports whether the query produced no terms.
func (p *QueryPlan) Empty() bool {
	return len(p.Terms) == 0
}

// Normalized renders the terms as a single space-separated string. Queries
// that tokenize to the same terms share it.
func (p *QueryPlan) Normalized() string {
	return strings.Join(p.Terms, " ")
}
