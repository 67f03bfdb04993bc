// Package fuzzy ranks candidate strings against a short query.
package fuzzy

import (
	"sort"
	"strings"
)

// Match is a candidate that scored at or above the threshold.
type Match struct {
	Value string
	Score int
	Index int
}

// Options configures Rank.
type Options struct {
	// CaseSensitive enables case-sensitive matching
	CaseSensitive bool
	// MaxResults limits the number of results returned (0 = unlimited)
	MaxResults int
	// MinScore sets minimum score threshold (0-100)
	MinScore int
}

// DefaultOptions returns the options used for command line arguments.
func DefaultOptions() Options {
	return Options{
		CaseSensitive: false,
		MaxResults:    10,
		MinScore:      60,
	}
}

// Rank scores every candidate against query.
// Results are sorted by score (highest first), then by candidate order.
func Rank(query string, candidates []string, options Options) []Match {
	if !options.CaseSensitive {
		query = strings.ToLower(query)
	}

	results := make([]Match, 0, len(candidates))
	for i, candidate := range candidates {
		compare := candidate
		if !options.CaseSensitive {
			compare = strings.ToLower(candidate)
		}

		score := Score(query, compare)
		if score >= options.MinScore {
			results = append(results, Match{Value: candidate, Score: score, Index: i})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Index < results[j].Index
	})

	if options.MaxResults > 0 && len(results) > options.MaxResults {
		results = results[:options.MaxResults]
	}

	return results
}

// Best returns the highest ranked candidate, if any reached the threshold.
func Best(query string, candidates []string, options Options) (Match, bool) {
	results := Rank(query, candidates, options)
	if len(results) == 0 {
		return Match{}, false
	}
	return results[0], true
}

// Score calculates a similarity score between query and target (0-100).
// Exact matches score 100, prefixes 90+, substrings 80+, anything else
// falls back to Levenshtein similarity.
func Score(query, target string) int {
	if query == target {
		return 100
	}

	if len(query) == 0 || len(target) == 0 {
		return 0
	}

	if strings.HasPrefix(target, query) {
		return 90 + len(query)*9/len(target)
	}

	if strings.Contains(target, query) {
		return 80 + len(query)*9/len(target)
	}

	a, b := []rune(query), []rune(target)
	distance := levenshtein(a, b)
	return 100 - distance*100/max(len(a), len(b))
}

// levenshtein is the minimum number of single-rune edits turning a into b.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
