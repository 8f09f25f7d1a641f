package fakebackend

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Weights of the scored dimensions. They sum to 1.
var sectionWeights = map[string]float64{
	"contact_info":              0.10,
	"sections":                  0.20,
	"length":                    0.10,
	"action_verbs":              0.15,
	"quantifiable_achievements": 0.20,
	"keyword_optimization":      0.15,
	"formatting":                0.10,
}

var (
	reEmail    = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)
	rePhone    = regexp.MustCompile(`\+?\d[\d\s\-().]{7,}\d`)
	reLinkedIn = regexp.MustCompile(`(?i)linkedin\.com/in/`)
	reWord     = regexp.MustCompile(`[a-z]+`)
	rePercent  = regexp.MustCompile(`\d+\s*%`)
	reDollar   = regexp.MustCompile(`\$[\d,]+\.?\d*`)
	reBullet   = regexp.MustCompile(`(?m)^\s*[•\-*]`)

	essentialSections = map[string]*regexp.Regexp{
		"summary":    regexp.MustCompile(`(?i)(summary|objective|profile)`),
		"experience": regexp.MustCompile(`(?i)(experience|employment|work\s*history)`),
		"education":  regexp.MustCompile(`(?i)(education|university|college|degree)`),
		"skills":     regexp.MustCompile(`(?i)(skills|technologies|competencies)`),
	}

	actionVerbs = map[string]struct{}{
		"achieved": {}, "automated": {}, "built": {}, "created": {}, "delivered": {},
		"designed": {}, "developed": {}, "improved": {}, "increased": {}, "launched": {},
		"led": {}, "managed": {}, "mentored": {}, "optimized": {}, "reduced": {},
		"resolved": {}, "scaled": {}, "shipped": {}, "streamlined": {},
	}

	keywordPool = map[string][]string{
		"technical": {"go", "python", "sql", "docker", "kubernetes", "aws", "git", "api", "cloud"},
		"soft":      {"leadership", "communication", "teamwork", "collaboration"},
		"business":  {"strategy", "revenue", "stakeholder", "metrics"},
	}
)

type scoredSection struct {
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

type analysisResult struct {
	OverallScore float64
	Sections     map[string]scoredSection
	Suggestions  []string
	Keywords     []string
}

// analyze is a small rule-based scorer. It only needs to produce plausible,
// deterministic output for the client to render.
func analyze(text string) analysisResult {
	sections := map[string]scoredSection{
		"contact_info":              scoreContact(text),
		"sections":                  scoreSections(text),
		"length":                    scoreLength(text),
		"action_verbs":              scoreVerbs(text),
		"quantifiable_achievements": scoreQuantifiable(text),
		"keyword_optimization":      scoreKeywords(text),
		"formatting":                scoreFormatting(text),
	}

	var total float64
	for k, s := range sections {
		s.Weight = sectionWeights[k]
		sections[k] = s
		total += s.Score * s.Weight
	}

	kw := sections["keyword_optimization"].Found

	return analysisResult{
		OverallScore: math.Round(total*10) / 10,
		Sections:     sections,
		Suggestions:  suggestions(sections),
		Keywords:     kw,
	}
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func ratio(n, d int) float64 {
	return math.Round(float64(n) / float64(d) * 100)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func scoreContact(text string) scoredSection {
	var found, missing []string
	for _, c := range []struct {
		name string
		re   *regexp.Regexp
	}{{"email", reEmail}, {"phone", rePhone}, {"linkedin", reLinkedIn}} {
		if c.re.MatchString(text) {
			found = append(found, c.name)
		} else {
			missing = append(missing, c.name)
		}
	}
	return scoredSection{Score: ratio(len(found), 3), Label: "Contact Information", Found: found, Missing: missing}
}

func scoreSections(text string) scoredSection {
	names := make([]string, 0, len(essentialSections))
	for name := range essentialSections {
		names = append(names, name)
	}
	sort.Strings(names)

	var found, missing []string
	for _, name := range names {
		if essentialSections[name].MatchString(text) {
			found = append(found, name)
		} else {
			missing = append(missing, name)
		}
	}
	return scoredSection{Score: ratio(len(found), len(names)), Label: "Resume Sections", Found: found, Missing: missing}
}

func scoreLength(text string) scoredSection {
	words := len(strings.Fields(text))

	var score float64
	var feedback string
	switch {
	case words >= 300 && words <= 800:
		score, feedback = 100, "Great length for a one-page resume."
	case words >= 200 && words < 300:
		score, feedback = 70, "A bit short. Consider adding more detail to your experience."
	case words > 800 && words <= 1200:
		score, feedback = 80, "Slightly long. Consider trimming to keep it concise."
	case words < 200:
		score, feedback = 40, "Too short. Your resume likely lacks sufficient detail."
	default:
		score, feedback = 60, "Very long. Consider limiting to 1-2 pages."
	}
	return scoredSection{Score: score, Label: "Resume Length", WordCount: intPtr(words), Feedback: strPtr(feedback)}
}

func scoreVerbs(text string) scoredSection {
	seen := map[string]struct{}{}
	for _, w := range reWord.FindAllString(strings.ToLower(text), -1) {
		if _, ok := actionVerbs[w]; ok {
			seen[w] = struct{}{}
		}
	}
	found := make([]string, 0, len(seen))
	for w := range seen {
		found = append(found, w)
	}
	sort.Strings(found)

	return scoredSection{
		Score: clamp(15 + float64(len(found))*15),
		Label: "Action Verbs",
		Found: found,
		Count: intPtr(len(found)),
	}
}

func scoreQuantifiable(text string) scoredSection {
	var types []string
	total := 0
	if n := len(rePercent.FindAllString(text, -1)); n > 0 {
		types = append(types, "percentage")
		total += n
	}
	if n := len(reDollar.FindAllString(text, -1)); n > 0 {
		types = append(types, "dollar_amount")
		total += n
	}

	return scoredSection{
		Score:      clamp(15 + float64(total)*20),
		Label:      "Quantifiable Achievements",
		MatchCount: intPtr(total),
		TypesFound: types,
	}
}

func scoreKeywords(text string) scoredSection {
	words := map[string]struct{}{}
	for _, w := range reWord.FindAllString(strings.ToLower(text), -1) {
		words[w] = struct{}{}
	}

	var found []string
	byCategory := map[string][]string{}
	possible := 0
	for cat, kws := range keywordPool {
		possible += len(kws)
		for _, kw := range kws {
			if _, ok := words[kw]; ok {
				byCategory[cat] = append(byCategory[cat], kw)
				found = append(found, kw)
			}
		}
	}
	sort.Strings(found)

	return scoredSection{
		Score:      clamp(25 + ratio(len(found), possible)*2),
		Label:      "Keyword Optimization",
		Found:      found,
		MatchCount: intPtr(len(found)),
		ByCategory: byCategory,
	}
}

func scoreFormatting(text string) scoredSection {
	var issues []string
	if !reBullet.MatchString(text) {
		issues = append(issues, "No bullet points found. Use bullets to improve readability.")
	}
	long := 0
	for _, ln := range strings.Split(text, "\n") {
		if len(ln) > 120 {
			long++
		}
	}
	if long > 10 {
		issues = append(issues, "Many lines exceed 120 characters. Improve text wrapping.")
	}
	return scoredSection{Score: math.Max(20, 100-float64(len(issues))*20), Label: "Formatting Quality", Issues: issues}
}

func suggestions(sections map[string]scoredSection) []string {
	var out []string
	for _, m := range sections["contact_info"].Missing {
		out = append(out, fmt.Sprintf("Add your %s to the contact details.", m))
	}
	for _, m := range sections["sections"].Missing {
		out = append(out, fmt.Sprintf("Add a '%s' section. ATS systems look for standard resume sections.", strings.ToUpper(m[:1])+m[1:]))
	}
	if s := sections["length"]; s.Score < 70 && s.Feedback != nil {
		out = append(out, *s.Feedback)
	}
	if sections["action_verbs"].Score < 70 {
		out = append(out, "Use stronger action verbs like 'achieved', 'led', 'designed' to start your bullet points.")
	}
	if sections["quantifiable_achievements"].Score < 70 {
		out = append(out, "Add more numbers and metrics, e.g. 'Increased sales by 25%'.")
	}
	out = append(out, sections["formatting"].Issues...)
	if len(out) == 0 {
		out = append(out, "Excellent resume! Keep it updated regularly.")
	}
	return out
}
