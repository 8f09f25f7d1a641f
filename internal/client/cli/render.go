package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/resumecli/internal/client/models"
)

const dateLayout = "2006-01-02 15:04"

func writeResumeTable(w io.Writer, items []models.ResumeListItem) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tSTATUS\tSCORE\tUPLOADED")
	for _, it := range items {
		score := "-"
		if it.OverallScore != nil {
			score = fmt.Sprintf("%.1f", *it.OverallScore)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.ID, it.Filename, it.Status, score, it.CreatedAt.Format(dateLayout))
	}
	tw.Flush()
}

func writeAnalysis(w io.Writer, r models.ResumeDetail, res models.AnalysisResult) {
	fmt.Fprintf(w, "Resume: %s (%s)\n", r.Filename, r.Status)
	fmt.Fprintf(w, "Overall score: %.1f/100 (%s)\n", res.OverallScore, models.VerdictFor(res.OverallScore))

	if keys := res.OrderedSectionKeys(); len(keys) > 0 {
		fmt.Fprintln(w, "\nSections:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, key := range keys {
			sec := res.Sections[key]
			label := sec.Label
			if label == "" {
				label = key
			}
			fmt.Fprintf(tw, "  %s\t%.1f\tweight %.0f%%\n", label, sec.Score, sec.Weight*100)
		}
		tw.Flush()

		for _, key := range keys {
			writeSectionDetails(w, res.Sections[key])
		}
	}

	if len(res.Suggestions) > 0 {
		fmt.Fprintln(w, "\nSuggestions:")
		for _, s := range res.Suggestions {
			fmt.Fprintln(w, "  -", s)
		}
	}
	if len(res.Keywords) > 0 {
		fmt.Fprintln(w, "\nKeywords:", strings.Join(res.Keywords, ", "))
	}
}

func writeSectionDetails(w io.Writer, sec models.AnalysisSection) {
	var lines []string
	if sec.Feedback != nil && *sec.Feedback != "" {
		lines = append(lines, *sec.Feedback)
	}
	if len(sec.Found) > 0 {
		lines = append(lines, "found: "+strings.Join(sec.Found, ", "))
	}
	if len(sec.Missing) > 0 {
		lines = append(lines, "missing: "+strings.Join(sec.Missing, ", "))
	}
	for _, issue := range sec.Issues {
		lines = append(lines, "issue: "+issue)
	}
	if len(lines) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s:\n", sec.Label)
	for _, l := range lines {
		fmt.Fprintln(w, "  ", l)
	}
}
