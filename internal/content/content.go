// Package content gathers the site's searchable records from blog posts, the
// calculator catalogue and the historical datasets.
package content

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/randwise/api/internal/search"
)

// Source produces search records for one content category.
type Source interface {
	Name() string
	Records(ctx context.Context) ([]search.Record, error)
}

// Collect concatenates the records of each source in order. It stops at the
// first failing source or when ctx is cancelled.
func Collect(ctx context.Context, sources ...Source) ([]search.Record, error) {
	var out []search.Record
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := src.Records(ctx)
		if err != nil {
			return nil, fmt.Errorf("collect %s: %w", src.Name(), err)
		}
		out = append(out, recs...)
	}
	if out == nil {
		out = []search.Record{}
	}
	return out, nil
}
