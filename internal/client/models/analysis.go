package models

import (
	"math"
	"sort"
)

// AnalysisSection describes one scoring dimension. Which optional fields
// are set depends on the dimension.
type AnalysisSection struct {
	Score      float64             `json:"score"`
	Label      string              `json:"label"`
	Weight     float64             `json:"weight"`
	Found      []string            `json:"found,omitempty"`
	Missing    []string            `json:"missing,omitempty"`
	Feedback   *string             `json:"feedback,omitempty"`
	WordCount  *int                `json:"word_count,omitempty"`
	Count      *int                `json:"count,omitempty"`
	MatchCount *int                `json:"match_count,omitempty"`
	TypesFound []string            `json:"types_found,omitempty"`
	ByCategory map[string][]string `json:"by_category,omitempty"`
	Issues     []string            `json:"issues,omitempty"`
}

// AnalysisResult is a computed analysis. The backend is the source of truth
// for OverallScore; see WeightedScore.
type AnalysisResult struct {
	ID           string                     `json:"id"`
	OverallScore float64                    `json:"overall_score"`
	Sections     map[string]AnalysisSection `json:"sections"`
	Suggestions  []string                   `json:"suggestions"`
	Keywords     []string                   `json:"keywords"`
	CreatedAt    Timestamp                  `json:"created_at"`
}

// Known section keys in display order.
var SectionOrder = []string{
	"contact_info",
	"sections",
	"length",
	"action_verbs",
	"quantifiable_achievements",
	"keyword_optimization",
	"formatting",
}

// OrderedSectionKeys returns the keys of r.Sections: known keys first in
// SectionOrder, then any others alphabetically.
func (r AnalysisResult) OrderedSectionKeys() []string {
	keys := make([]string, 0, len(r.Sections))
	known := make(map[string]struct{}, len(SectionOrder))

	for _, k := range SectionOrder {
		known[k] = struct{}{}
		if _, ok := r.Sections[k]; ok {
			keys = append(keys, k)
		}
	}

	var rest []string
	for k := range r.Sections {
		if _, ok := known[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)

	return append(keys, rest...)
}

// WeightedScore returns the sum of score*weight rounded to one decimal,
// together with the sum of weights.
func (r AnalysisResult) WeightedScore() (score float64, weights float64) {
	var total float64
	for _, s := range r.Sections {
		total += s.Score * s.Weight
		weights += s.Weight
	}
	return math.Round(total*10) / 10, weights
}

// Verdict is the one-line reading of an overall score.
type Verdict string

const (
	VerdictExcellent Verdict = "Excellent"
	VerdictGood      Verdict = "Good"
	VerdictNeedsWork Verdict = "Needs work"
)

// VerdictFor maps a 0-100 score to a Verdict.
func VerdictFor(score float64) Verdict {
	switch {
	case score >= 80:
		return VerdictExcellent
	case score >= 60:
		return VerdictGood
	default:
		return VerdictNeedsWork
	}
}
