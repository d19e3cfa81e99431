// Package match implements fuzzy comparison of patient name pairs.
package match

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	TypeDirect         = "direct_match"
	TypeHighSimilarity = "high_similarity_match"
	TypeInterchange    = "interchange_match"
	TypeNoMatch        = "no_match"
	TypeIncompleteData = "incomplete_data"

	// DefaultThreshold is the minimum similarity percentage for a name component match.
	DefaultThreshold = 85
	// highThreshold admits borderline first names when the last name clears the
	// regular threshold.
	highThreshold = 90
)

// Result carries the outcome of one name pair comparison, including all
// component scores for auditing.
type Result struct {
	Match bool
	Type  string
	Score int

	FirstToFirst int
	LastToLast   int
	FirstToLast  int
	LastToFirst  int
}

type Matcher struct {
	threshold int
}

func NewMatcher(threshold int) *Matcher {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Compare classifies two (first, last) name pairs. The classification is
// symmetric: swapping the pairs swaps the cross scores but never the outcome.
func (m *Matcher) Compare(first1, last1, first2, last2 string) Result {
	first1 = normalize(first1)
	last1 = normalize(last1)
	first2 = normalize(first2)
	last2 = normalize(last2)

	if first1 == "" || last1 == "" || first2 == "" || last2 == "" {
		return Result{Type: TypeIncompleteData}
	}

	result := Result{
		FirstToFirst: Ratio(first1, first2),
		LastToLast:   Ratio(last1, last2),
		FirstToLast:  Ratio(first1, last2),
		LastToFirst:  Ratio(last1, first2),
	}

	switch {
	case result.FirstToFirst >= m.threshold && result.LastToLast >= m.threshold:
		result.Match = true
		result.Type = TypeDirect
		result.Score = min(result.FirstToFirst, result.LastToLast)
	case result.FirstToFirst >= highThreshold && result.LastToLast >= m.threshold:
		result.Match = true
		result.Type = TypeHighSimilarity
		result.Score = min(result.FirstToFirst, result.LastToLast)
	case result.FirstToLast >= m.threshold && result.LastToFirst >= m.threshold:
		result.Match = true
		result.Type = TypeInterchange
		result.Score = min(result.FirstToLast, result.LastToFirst)
	default:
		result.Type = TypeNoMatch
		result.Score = max(max(result.FirstToFirst, result.LastToLast), max(result.FirstToLast, result.LastToFirst))
	}

	return result
}

// Ratio is the similarity of two strings as a percentage, based on the
// Levenshtein distance normalized by the longer string.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}

	longest := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > longest {
		longest = l
	}
	if longest == 0 {
		return 100
	}

	distance := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(distance)/float64(longest))))
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
