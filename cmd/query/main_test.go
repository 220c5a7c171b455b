package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/searcher/executor"
)

func TestPrintResult(t *testing.T) {
	tests := []struct {
		name   string
		result *executor.SearchResult
		want   string
	}{
		{"empty", &executor.SearchResult{Results: []executor.Hit{}}, "No results\n"},
		{"ranked", &executor.SearchResult{Results: []executor.Hit{
			{DocID: 9, FileName: "b.html", Weight: 7},
			{DocID: 5, FileName: "a.html", Weight: 3},
		}}, "b.html\t7\na.html\t3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printResult(&buf, tt.result)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
