package port

import (
	"context"

	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
)

type SearchService interface {
	Run(ctx context.Context, cfg domain.SearchConfig) (*domain.SearchResult, error)
	Cancel()
	Attempts() uint64
	Status() domain.SearchStatus
	Metrics() (domain.ResourceMetrics, bool)
}

type HashService interface {
	Identify(hash string) domain.HashType
	Digest(candidate string, hashType domain.HashType) string
	Verify(candidate, hash string, hashType domain.HashType) bool
	Supports(hashType domain.HashType) bool
	DigestSize(hashType domain.HashType) int
}

// ResultSink receives the summary of every finished search.
type ResultSink interface {
	Record(category string, data interface{})
	Flush() error
}
