package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/voicecart/backend/internal/lexicon"
)

// Scoring weights for token overlap
const (
	queryCoverageWeight     = 0.60 // share of spoken tokens found in the candidate
	candidateCoverageWeight = 0.20 // share of candidate tokens found in the spoken phrase
	jaccardWeight           = 0.20
	substringMatchBonus     = 0.10 // one string contains the other
	fuzzyWeightFactor       = 0.8  // fuzzy token matches count 80% of an exact one
	defaultFuzzyDistance    = 1
)

var numericRegex = regexp.MustCompile(`^\d+$`)

// Scorer rates how similar a spoken phrase is to a catalog name, in [0,1]
type Scorer interface {
	Score(query, candidate string) float64
}

// Scoring strategies accepted by NewScorer
const (
	StrategyExact  = "exact"
	StrategyEdit   = "edit"
	StrategyToken  = "token"
	StrategyHybrid = "hybrid"
)

// NewScorer returns the scorer for a strategy name
func NewScorer(strategy string) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case StrategyExact:
		return ExactScorer{}, nil
	case StrategyEdit:
		return EditDistanceScorer{}, nil
	case StrategyToken:
		return TokenOverlapScorer{}, nil
	case StrategyHybrid, "":
		return HybridScorer{Scorers: []Scorer{TokenOverlapScorer{}, EditDistanceScorer{}}}, nil
	default:
		return nil, fmt.Errorf("unknown scoring strategy %q", strategy)
	}
}

// ExactScorer gives 1 for identical normalized strings and 0 otherwise
type ExactScorer struct{}

func (ExactScorer) Score(query, candidate string) float64 {
	q, c := lexicon.Normalize(query), lexicon.Normalize(candidate)
	if q != "" && q == c {
		return 1
	}
	return 0
}

// EditDistanceScorer is 1 - levenshtein/maxLen over the normalized strings
type EditDistanceScorer struct{}

func (EditDistanceScorer) Score(query, candidate string) float64 {
	q, c := []rune(lexicon.Normalize(query)), []rune(lexicon.Normalize(candidate))
	longest := max(len(q), len(c))
	if longest == 0 || len(q) == 0 || len(c) == 0 {
		return 0
	}
	return 1 - float64(levenshteinDistance(string(q), string(c)))/float64(longest)
}

// TokenOverlapScorer combines query coverage, candidate coverage and Jaccard
// similarity over word tokens, with a bonus for substring containment.
// Tokens within FuzzyEditDistance edits count as partial matches.
type TokenOverlapScorer struct {
	FuzzyEditDistance int
}

func (s TokenOverlapScorer) Score(query, candidate string) float64 {
	queryTokens := tokenize(query)
	candidateTokens := tokenize(candidate)
	if len(queryTokens) == 0 || len(candidateTokens) == 0 {
		return 0
	}

	dist := s.FuzzyEditDistance
	if dist <= 0 {
		dist = defaultFuzzyDistance
	}

	queryMatched := weightedMatches(queryTokens, candidateTokens, dist)
	candidateMatched := weightedMatches(candidateTokens, queryTokens, dist)

	queryCoverage := queryMatched / float64(len(queryTokens))
	candidateCoverage := candidateMatched / float64(len(candidateTokens))

	exact, _ := findIntersection(queryTokens, candidateTokens)
	jaccard := float64(exact) / float64(findUnion(queryTokens, candidateTokens))

	score := queryCoverage*queryCoverageWeight + candidateCoverage*candidateCoverageWeight + jaccard*jaccardWeight

	q := strings.Join(queryTokens, " ")
	c := strings.Join(candidateTokens, " ")
	if len(q) > 3 && (strings.Contains(c, q) || strings.Contains(q, c)) {
		score += substringMatchBonus
	}

	return min(score, 1)
}

// HybridScorer takes the best score among its strategies
type HybridScorer struct {
	Scorers []Scorer
}

func (h HybridScorer) Score(query, candidate string) float64 {
	best := 0.0
	for _, s := range h.Scorers {
		best = max(best, s.Score(query, candidate))
	}
	return best
}

// weightedMatches counts tokens of a found in b; fuzzy hits count fuzzyWeightFactor
func weightedMatches(a, b []string, dist int) float64 {
	set := make(map[string]bool, len(b))
	for _, t := range b {
		set[t] = true
	}

	total := 0.0
	for _, t := range a {
		if set[t] {
			total++
			continue
		}
		for _, other := range b {
			if fuzzyTokenMatch(t, other, dist) {
				total += fuzzyWeightFactor
				break
			}
		}
	}
	return total
}

// tokenize splits a string into normalized tokens, dropping single
// characters and pure numbers.
func tokenize(s string) []string {
	var tokens []string
	for _, word := range lexicon.Tokens(s) {
		if len([]rune(word)) <= 1 {
			continue
		}
		if numericRegex.MatchString(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	// Short tokens produce too many false positives
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Two rows instead of the full matrix
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// findIntersection returns the count of common tokens and the list of matched tokens
func findIntersection(tokens1, tokens2 []string) (int, []string) {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}

	var matched []string
	seen := make(map[string]bool)
	for _, t := range tokens2 {
		if set[t] && !seen[t] {
			matched = append(matched, t)
			seen[t] = true
		}
	}

	return len(matched), matched
}

// findUnion returns the count of unique tokens across both sets
func findUnion(tokens1, tokens2 []string) int {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}
	for _, t := range tokens2 {
		set[t] = true
	}
	return len(set)
}
