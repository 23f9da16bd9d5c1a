package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stwalsh4118/randwise/api/internal/content"
	"github.com/stwalsh4118/randwise/api/internal/logger"
	"github.com/stwalsh4118/randwise/api/internal/repository"
	"github.com/stwalsh4118/randwise/api/internal/search"
)

// SearchIndexCacheKey is the cache key of the serialised search index.
const SearchIndexCacheKey = "search:index"

// SearchResponse is a grouped search answer.
type SearchResponse struct {
	Query  string        `json:"query"`
	Total  int           `json:"total"`
	Groups search.Groups `json:"groups"`
}

// SearchService defines the site search operations.
type SearchService interface {
	// Index returns every searchable record, from cache when warm.
	Index(ctx context.Context) ([]search.Record, error)

	// Search ranks the index against query. A limit of zero or less uses the
	// configured default.
	Search(ctx context.Context, query string, limit int) (*SearchResponse, error)
}

// searchService is the concrete implementation of SearchService.
type searchService struct {
	sources []content.Source
	cache   repository.Cache
	ttl     time.Duration
	opts    search.Options
	log     *logger.Logger
}

// NewSearchService creates a SearchService collecting from sources in order.
func NewSearchService(sources []content.Source, cache repository.Cache, ttl time.Duration, opts search.Options, log *logger.Logger) SearchService {
	return &searchService{
		sources: sources,
		cache:   cache,
		ttl:     ttl,
		opts:    opts,
		log:     log.With(map[string]interface{}{"component": "search"}),
	}
}

func (s *searchService) Index(ctx context.Context) ([]search.Record, error) {
	cached, ok, err := s.cache.Get(ctx, SearchIndexCacheKey)
	if err != nil {
		// A broken cache degrades to a rebuild.
		s.log.Error("Failed to read search index cache", err, nil)
	}
	if ok {
		var records []search.Record
		if err := json.Unmarshal(cached, &records); err == nil {
			return records, nil
		}
		s.log.Warn("Discarding corrupt search index cache", nil)
	}

	records, err := content.Collect(ctx, s.sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to build search index: %w", err)
	}

	encoded, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search index: %w", err)
	}
	if err := s.cache.Set(ctx, SearchIndexCacheKey, encoded, s.ttl); err != nil {
		s.log.Error("Failed to write search index cache", err, nil)
	}

	s.log.Info("Rebuilt search index", map[string]interface{}{
		"records": len(records),
	})
	return records, nil
}

func (s *searchService) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	records, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}

	opts := s.opts
	if limit > 0 {
		opts.Limit = limit
	}
	results := search.Search(records, query, opts)

	s.log.Debug("Search completed", map[string]interface{}{
		"query":   query,
		"results": len(results),
	})
	return &SearchResponse{
		Query:  query,
		Total:  len(results),
		Groups: search.Group(results),
	}, nil
}
