// file: internal/metadata/scorer.go
// version: 1.0.0
// guid: 690d0896-5d85-4172-ba91-981c09b276cb

package metadata

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/jdfalk/library-catalog/internal/isbn"
)

// Candidate scoring weights. An exact identifier match equals every
// completeness signal combined; Rank breaks that tie in the match's favor.
const (
	scoreIdentifierMatch = 50
	scoreCover           = 20
	scoreDescription     = 10
	scoreAuthor          = 10
	scorePublisher       = 5
	scorePublishedDate   = 5

	// minDescriptionLength is the length a description must exceed to count.
	minDescriptionLength = 50

	// titleSimilarityWeight scales the title bonus applied to title queries.
	titleSimilarityWeight = 25
)

// Signals is the provider-independent view of one candidate used for scoring.
type Signals struct {
	Identifiers   []string
	HasCover      bool
	Description   string
	AuthorCount   int
	Publisher     string
	PublishedDate string
	Title         string
}

// Query describes what the caller searched for. Identifier is set for
// identifier lookups, Title for title searches.
type Query struct {
	Identifier string
	Title      string
}

// ScoredCandidate pairs a provider-native record with its score. Matched
// reports whether one of its identifiers equals the queried one.
type ScoredCandidate[T any] struct {
	Candidate T
	Score     int
	Matched   bool
}

func matchesIdentifier(s Signals, q Query) bool {
	if q.Identifier == "" {
		return false
	}
	target := isbn.Normalize(q.Identifier)
	for _, id := range s.Identifiers {
		if isbn.Normalize(id) == target {
			return true
		}
	}
	return false
}

// Score computes the ranking score for one candidate.
func Score(s Signals, q Query) int {
	score := 0

	if matchesIdentifier(s, q) {
		score += scoreIdentifierMatch
	}
	if s.HasCover {
		score += scoreCover
	}
	if utf8.RuneCountInString(s.Description) > minDescriptionLength {
		score += scoreDescription
	}
	if s.AuthorCount > 0 {
		score += scoreAuthor
	}
	if s.Publisher != "" {
		score += scorePublisher
	}
	if s.PublishedDate != "" {
		score += scorePublishedDate
	}
	if q.Title != "" && s.Title != "" {
		score += int(math.Round(TitleSimilarity(q.Title, s.Title) * titleSimilarityWeight))
	}

	return score
}

// Rank scores every candidate and sorts them by descending score. On equal
// scores an identifier match goes first; remaining ties keep the provider's
// original order.
func Rank[T any](candidates []T, q Query, signals func(T) Signals) []ScoredCandidate[T] {
	ranked := make([]ScoredCandidate[T], len(candidates))
	for i, c := range candidates {
		sig := signals(c)
		ranked[i] = ScoredCandidate[T]{Candidate: c, Score: Score(sig, q), Matched: matchesIdentifier(sig, q)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Matched && !ranked[j].Matched
	})
	return ranked
}

// SelectBest returns the highest scoring candidate, or false when there are
// no candidates.
func SelectBest[T any](candidates []T, q Query, signals func(T) Signals) (T, bool) {
	if len(candidates) == 0 {
		var zero T
		return zero, false
	}
	return Rank(candidates, q, signals)[0].Candidate, true
}
