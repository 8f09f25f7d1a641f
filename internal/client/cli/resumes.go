package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/resumecli/internal/client/analysis"
	"github.com/dmitrijs2005/resumecli/internal/client/client"
	"github.com/dmitrijs2005/resumecli/internal/client/models"
	"github.com/dmitrijs2005/resumecli/internal/client/upload"
	"github.com/dustin/go-humanize"
)

// Upload selects the file at path, shows a short local preview and
// submits it for analysis.
func (a *App) Upload(ctx context.Context, path string) error {
	if !a.requireAuth() {
		return errLoginRequired
	}

	cand, err := upload.NewCandidate(path)
	if err != nil {
		fmt.Fprintln(a.out, "Cannot read file:", err)
		return err
	}
	if err := a.uploads.Select(cand); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	fmt.Fprintf(a.out, "Selected %s (%s, %s)\n", cand.Name, humanize.IBytes(uint64(cand.SizeBytes)), cand.MIMEType)

	if p, err := upload.NewPreview(cand); err != nil {
		a.log.Debug(ctx, "preview unavailable", "name", cand.Name, "error", err)
	} else {
		if p.PageErr != nil {
			a.log.Debug(ctx, "preview skipped pdf pages", "name", cand.Name, "error", p.PageErr)
		}
		fmt.Fprintf(a.out, "%d words: %s\n", p.WordCount, p.Excerpt)
	}

	return a.submit(ctx)
}

// Retry submits the file of the last failed upload again.
func (a *App) Retry(ctx context.Context) error {
	if !a.requireAuth() {
		return errLoginRequired
	}
	if a.uploads.Status().State != upload.StateFailed {
		fmt.Fprintln(a.out, "Nothing to retry.")
		return upload.ErrNothingSelected
	}
	return a.submit(ctx)
}

func (a *App) submit(ctx context.Context) error {
	fmt.Fprintln(a.out, "Uploading and analyzing...")

	out, err := a.uploads.Submit(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Upload failed:", client.Message(err))
		if a.dropRejectedSession(ctx, err) {
			return err
		}
		if a.uploads.Status().State == upload.StateFailed {
			fmt.Fprintln(a.out, "Type 'retry' to try again.")
		}
		return err
	}

	fmt.Fprintf(a.out, "Analysis complete: %s scored %.1f/100 (%s)\n",
		out.Filename, out.OverallScore, models.VerdictFor(out.OverallScore))
	fmt.Fprintf(a.out, "Resume ID: %s\n", out.ResumeID)
	fmt.Fprintf(a.out, "Type 'analysis %s' to see the full report.\n", out.ResumeID)
	return nil
}

// Analysis prints the report of one resume.
func (a *App) Analysis(ctx context.Context, resumeID string) error {
	if !a.requireAuth() {
		return errLoginRequired
	}

	r, err := a.analysis.Fetch(ctx, resumeID)
	if err != nil {
		fmt.Fprintln(a.out, client.Message(err))
		a.dropRejectedSession(ctx, err)
		return err
	}
	if !r.HasAnalysis() {
		fmt.Fprintf(a.out, "No analysis available for %s yet (status: %s).\n", r.Resume.Filename, r.Resume.Status)
		return nil
	}

	writeAnalysis(a.out, r.Resume, *r.Analysis)
	return nil
}

// List prints every resume of the account with score statistics.
func (a *App) List(ctx context.Context) error {
	if !a.requireAuth() {
		return errLoginRequired
	}

	items, err := a.analysis.List(ctx)
	if err != nil {
		fmt.Fprintln(a.out, client.Message(err))
		a.dropRejectedSession(ctx, err)
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No resumes yet. Type 'upload <path>' to add one.")
		return nil
	}

	writeResumeTable(a.out, items)

	s := analysis.Summarize(items)
	fmt.Fprintf(a.out, "%d resumes, %d scored", s.Count, s.Scored)
	if s.Scored > 0 {
		fmt.Fprintf(a.out, ": mean %.1f, median %.1f, best %.1f, worst %.1f, spread %.1f",
			s.Mean, s.Median, s.Best, s.Worst, s.StdDev)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Dashboard prints the greeting, totals and the most recent resumes.
func (a *App) Dashboard(ctx context.Context) error {
	if !a.requireAuth() {
		return errLoginRequired
	}

	d, err := a.analysis.Dashboard(ctx)
	if err != nil {
		fmt.Fprintln(a.out, client.Message(err))
		a.dropRejectedSession(ctx, err)
		return err
	}

	fmt.Fprintln(a.out, d.Message)
	fmt.Fprintf(a.out, "Resumes analyzed: %d\n", d.Stats.ResumesAnalyzed)
	if d.Stats.AverageScore != nil {
		fmt.Fprintf(a.out, "Average score:    %.1f\n", *d.Stats.AverageScore)
	} else {
		fmt.Fprintln(a.out, "Average score:    -")
	}

	if len(d.RecentResumes) == 0 {
		fmt.Fprintln(a.out, "No resumes yet. Type 'upload <path>' to add one.")
		return nil
	}
	fmt.Fprintln(a.out, "Recent resumes:")
	writeResumeTable(a.out, d.RecentResumes)
	return nil
}
