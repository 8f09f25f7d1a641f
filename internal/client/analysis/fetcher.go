// Package analysis reads analysis results, the resume list and the
// dashboard from the backend.
//
// The backend is the source of truth for scores. CheckConsistency only
// reports how far the overall score is from the weighted section scores,
// and the fetcher logs a mismatch without changing the result.
package analysis

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/dmitrijs2005/resumecli/internal/client/models"
	"github.com/dmitrijs2005/resumecli/internal/logging"
	"github.com/montanaflynn/stats"
)

var ErrMissingID = errors.New("resume id is required")

const (
	scoreTolerance  = 0.1
	weightTolerance = 0.01
)

// API is the read side of client.Client.
type API interface {
	GetResume(ctx context.Context, resumeID string) (models.ResumeWithAnalysis, error)
	ListResumes(ctx context.Context) (models.ResumeList, error)
	Dashboard(ctx context.Context) (models.DashboardSnapshot, error)
}

type Fetcher struct {
	api API
	log logging.Logger
}

func NewFetcher(api API, log logging.Logger) *Fetcher {
	if log == nil {
		log = logging.Discard()
	}
	return &Fetcher{api: api, log: log.With("component", "analysis")}
}

// Fetch returns the resume and its analysis. A nil Analysis is a valid
// result meaning the resume has not been analyzed.
func (f *Fetcher) Fetch(ctx context.Context, resumeID string) (models.ResumeWithAnalysis, error) {
	resumeID = strings.TrimSpace(resumeID)
	if resumeID == "" {
		return models.ResumeWithAnalysis{}, ErrMissingID
	}

	res, err := f.api.GetResume(ctx, resumeID)
	if err != nil {
		return models.ResumeWithAnalysis{}, err
	}

	if res.Analysis != nil {
		if delta, ok := CheckConsistency(*res.Analysis); !ok {
			f.log.Debug(ctx, "overall score differs from weighted sections",
				"resume_id", resumeID, "overall", res.Analysis.OverallScore, "delta", delta)
		}
	}
	return res, nil
}

func (f *Fetcher) List(ctx context.Context) ([]models.ResumeListItem, error) {
	list, err := f.api.ListResumes(ctx)
	if err != nil {
		return nil, err
	}
	return list.Resumes, nil
}

func (f *Fetcher) Dashboard(ctx context.Context) (models.DashboardSnapshot, error) {
	return f.api.Dashboard(ctx)
}

// Summary describes the scores of a resume list. Score fields are zero
// when Scored is zero.
type Summary struct {
	Count  int
	Scored int
	Mean   float64
	Median float64
	Best   float64
	Worst  float64
	StdDev float64
}

// Summarize computes score statistics over the scored items.
func Summarize(items []models.ResumeListItem) Summary {
	s := Summary{Count: len(items)}

	var data stats.Float64Data
	for _, it := range items {
		if it.OverallScore != nil {
			data = append(data, *it.OverallScore)
		}
	}
	s.Scored = len(data)
	if s.Scored == 0 {
		return s
	}

	// The only error these return is for empty input, excluded above.
	s.Mean, _ = stats.Mean(data)
	s.Median, _ = stats.Median(data)
	s.Best, _ = stats.Max(data)
	s.Worst, _ = stats.Min(data)
	s.StdDev, _ = stats.StandardDeviation(data)

	s.Mean = round1(s.Mean)
	s.StdDev = round1(s.StdDev)
	return s
}

// CheckConsistency compares OverallScore with the weighted sum of section
// scores. ok is false when they differ by more than 0.1 or the weights do
// not sum to 1. A result without sections is consistent.
func CheckConsistency(r models.AnalysisResult) (delta float64, ok bool) {
	if len(r.Sections) == 0 {
		return 0, true
	}
	weighted, weights := r.WeightedScore()
	delta = round1(math.Abs(r.OverallScore - weighted))
	ok = delta <= scoreTolerance && math.Abs(weights-1) <= weightTolerance
	return delta, ok
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
