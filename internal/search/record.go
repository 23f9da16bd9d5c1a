// Package search implements the site's fuzzy search over a small, freshly
// collected list of content records.
package search

import (
	"time"
)

// Category groups records in search results.
type Category string

const (
	CategoryBlog       Category = "blog"
	CategoryCalculator Category = "calculator"
	CategoryData       Category = "data"
)

// Categories lists the categories in result display order.
var Categories = []Category{CategoryBlog, CategoryCalculator, CategoryData}

// Record is one searchable piece of site content.
type Record struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Href        string     `json:"href"`
	Category    Category   `json:"category"`
	Date        *time.Time `json:"date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// Result is a matched record with its score; lower scores are better.
// Unscored results come from an empty query.
type Result struct {
	Record
	Score float64 `json:"score"`
}

// Groups holds results bucketed by category in rank order.
type Groups struct {
	Blog       []Result `json:"blog"`
	Calculator []Result `json:"calculator"`
	Data       []Result `json:"data"`
}

// Group partitions results by category, preserving their relative order.
func Group(results []Result) Groups {
	g := Groups{
		Blog:       []Result{},
		Calculator: []Result{},
		Data:       []Result{},
	}
	for _, r := range results {
		switch r.Category {
		case CategoryBlog:
			g.Blog = append(g.Blog, r)
		case CategoryCalculator:
			g.Calculator = append(g.Calculator, r)
		case CategoryData:
			g.Data = append(g.Data, r)
		}
	}
	return g
}
