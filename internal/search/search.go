package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Weights sets the relative importance of each record field.
type Weights struct {
	Title       float64
	Description float64
	Tags        float64
}

func (w Weights) total() float64 {
	return w.Title + w.Description + w.Tags
}

// Options tunes matching and ranking.
type Options struct {
	// Threshold is the highest normalised edit distance still counted as a
	// match, between 0 (exact) and 1 (anything).
	Threshold float64
	// Limit caps the number of results. Zero means no cap.
	Limit int
	// MinTokenLength drops shorter query tokens.
	MinTokenLength int
	Weights        Weights
}

// DefaultOptions returns the options used by the site search.
func DefaultOptions() Options {
	return Options{
		Threshold:      0.4,
		Limit:          10,
		MinTokenLength: 2,
		Weights:        Weights{Title: 0.6, Description: 0.3, Tags: 0.1},
	}
}

// Search ranks records against query. An empty query returns the first
// records in their original order without scores.
func Search(records []Record, query string, opts Options) []Result {
	tokens := Tokenize(query, opts.MinTokenLength)
	if len(tokens) == 0 {
		n := len(records)
		if opts.Limit > 0 && opts.Limit < n {
			n = opts.Limit
		}
		out := make([]Result, n)
		for i := 0; i < n; i++ {
			out[i] = Result{Record: records[i]}
		}
		return out
	}

	weights := opts.Weights
	if weights.total() <= 0 {
		weights = DefaultOptions().Weights
	}

	results := make([]Result, 0, len(records))
	for _, rec := range records {
		fields := [3]fieldWords{
			{weight: weights.Title, words: words(rec.Title)},
			{weight: weights.Description, words: words(rec.Description)},
			{weight: weights.Tags, words: words(strings.Join(rec.Tags, " "))},
		}
		score, ok := scoreRecord(fields[:], tokens, opts.Threshold, weights.total())
		if ok {
			results = append(results, Result{Record: rec, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}

// Tokenize lower-cases query and splits it on whitespace, dropping tokens
// shorter than minLen runes.
func Tokenize(query string, minLen int) []string {
	var tokens []string
	for _, t := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(t) < minLen {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

type fieldWords struct {
	weight float64
	words  []string
}

func scoreRecord(fields []fieldWords, tokens []string, threshold, totalWeight float64) (float64, bool) {
	var sum float64
	for _, tok := range tokens {
		var weighted float64
		matched := false
		for _, f := range fields {
			d := bestDistance(tok, f.words)
			if d <= threshold {
				matched = true
			} else {
				d = 1
			}
			weighted += f.weight * d
		}
		if !matched {
			return 0, false
		}
		sum += weighted / totalWeight
	}
	return sum / float64(len(tokens)), true
}

// bestDistance is the smallest normalised distance between tok and any word.
// A word containing tok scores zero.
func bestDistance(tok string, words []string) float64 {
	best := 1.0
	for _, w := range words {
		if strings.Contains(w, tok) {
			return 0
		}
		if d := Distance(tok, w); d < best {
			best = d
		}
	}
	return best
}

// Distance is the Levenshtein distance between a and b divided by the length
// of the longer string, in runes.
func Distance(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
