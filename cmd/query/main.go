// Command query answers one query against an index directory and prints
// the ranked documents as file<TAB>weight lines.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/logger"
)

func main() {
	query := flag.String("q", "", "query text")
	dir := flag.String("d", "", "index directory (overrides the config file)")
	configPath := flag.String("config", "", "optional path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dir != "" {
		cfg.Index.Dir = *dir
	}
	// Results go to stdout, so logs must not.
	slog.SetDefault(logger.New(os.Stderr, cfg.Logging.Level, "text"))

	result, err := executor.New(cfg, nil).Execute(context.Background(), *query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
		os.Exit(1)
	}
	printResult(os.Stdout, result)
}

func printResult(w io.Writer, result *executor.SearchResult) {
	if result.Empty() {
		fmt.Fprintln(w, "No results")
		return
	}
	for _, hit := range result.Results {
		fmt.Fprintf(w, "%s\t%d\n", hit.FileName, hit.Weight)
	}
}
