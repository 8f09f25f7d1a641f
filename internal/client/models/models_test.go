package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_AcceptsBackendLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2025-03-01T10:20:30Z"`, time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)},
		{`"2025-03-01T10:20:30.123456+00:00"`, time.Date(2025, 3, 1, 10, 20, 30, 123456000, time.UTC)},
		{`"2025-03-01T10:20:30.123456"`, time.Date(2025, 3, 1, 10, 20, 30, 123456000, time.UTC)},
	}
	for _, tt := range tests {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(tt.in), &ts), tt.in)
		assert.True(t, tt.want.Equal(ts.Time), "%s -> %v", tt.in, ts.Time)
	}

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())
	require.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestUserProfile_DisplayName(t *testing.T) {
	name := "Ada Lovelace"
	empty := ""

	assert.Equal(t, "Ada Lovelace", UserProfile{Email: "ada@example.com", FullName: &name}.DisplayName())
	assert.Equal(t, "ada@example.com", UserProfile{Email: "ada@example.com", FullName: &empty}.DisplayName())
	assert.Equal(t, "ada@example.com", UserProfile{Email: "ada@example.com"}.DisplayName())
}

func TestResumeWithAnalysis_NullAnalysisDecodes(t *testing.T) {
	body := `{"resume":{"id":"r1","filename":"cv.pdf","status":"processing","created_at":"2025-01-01T00:00:00","raw_text":""},"analysis":null}`

	var r ResumeWithAnalysis
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	assert.False(t, r.HasAnalysis())
	assert.Equal(t, "cv.pdf", r.Resume.Filename)
}

func TestAnalysisResult_DecodesHeterogeneousSections(t *testing.T) {
	body := `{
		"id": "a1",
		"overall_score": 72,
		"sections": {
			"length": {"score": 80, "label": "Length", "weight": 0.5, "word_count": 512, "feedback": "ok"},
			"keyword_optimization": {"score": 64, "label": "Keywords", "weight": 0.5, "match_count": 9,
				"by_category": {"languages": ["go", "sql"]}}
		},
		"suggestions": ["Add metrics"],
		"keywords": ["go"],
		"created_at": "2025-01-01T00:00:00Z"
	}`

	var r AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(body), &r))

	length := r.Sections["length"]
	require.NotNil(t, length.WordCount)
	assert.Equal(t, 512, *length.WordCount)
	assert.Nil(t, length.MatchCount)

	kw := r.Sections["keyword_optimization"]
	require.NotNil(t, kw.MatchCount)
	assert.Equal(t, []string{"go", "sql"}, kw.ByCategory["languages"])

	score, weights := r.WeightedScore()
	assert.Equal(t, 72.0, score)
	assert.InDelta(t, 1.0, weights, 1e-9)
}

func TestAnalysisResult_OrderedSectionKeys(t *testing.T) {
	r := AnalysisResult{Sections: map[string]AnalysisSection{
		"formatting":   {},
		"zeta":         {},
		"contact_info": {},
		"alpha":        {},
		"length":       {},
	}}

	assert.Equal(t, []string{"contact_info", "length", "formatting", "alpha", "zeta"}, r.OrderedSectionKeys())
}

func TestVerdictFor(t *testing.T) {
	assert.Equal(t, VerdictExcellent, VerdictFor(80))
	assert.Equal(t, VerdictGood, VerdictFor(79.9))
	assert.Equal(t, VerdictGood, VerdictFor(60))
	assert.Equal(t, VerdictNeedsWork, VerdictFor(59))
}
