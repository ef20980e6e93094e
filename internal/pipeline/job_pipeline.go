package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jobs-search/internal/models"
	"github.com/jobs-search/internal/parser"
	"github.com/jobs-search/internal/presenter"
)

// Searcher sends one query to the AI service and returns its raw reply.
type Searcher interface {
	Search(ctx context.Context, q models.SearchQuery) (string, error)
}

// JobPipeline runs search, parse and render for a single query
type JobPipeline struct {
	searcher Searcher
	out      io.Writer
}

// NewJobPipeline creates a pipeline that prints results to out
func NewJobPipeline(searcher Searcher, out io.Writer) *JobPipeline {
	return &JobPipeline{
		searcher: searcher,
		out:      out,
	}
}

// Run performs the search and prints the listings. The parsed listings are
// returned as well so callers can inspect them.
func (p *JobPipeline) Run(ctx context.Context, q models.SearchQuery) ([]models.JobListing, error) {
	reply, err := p.searcher.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("job search failed: %w", err)
	}

	listings := parser.Parse(reply)
	if len(listings) == 0 && !parser.NoResults(reply) {
		slog.Debug("reply contained no recognizable listings", slog.Int("chars", len(reply)))
	}
	slog.Debug("parsed listings", slog.Int("count", len(listings)))

	if err := presenter.Render(p.out, q, listings); err != nil {
		return nil, fmt.Errorf("failed to render results: %w", err)
	}

	return listings, nil
}
