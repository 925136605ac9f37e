package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"eightd/internal/audit"
	"eightd/internal/display"
	"eightd/internal/format"
	"eightd/internal/rules"
	"eightd/internal/sections"
	"eightd/internal/verdict"
)

// errRejected is returned by review --fail-on-reject.
var errRejected = errors.New("one or more reports were rejected")

var reviewFlags struct {
	json         bool
	parallel     int
	failOnReject bool
	detail       bool
}

var reviewCmd = &cobra.Command{
	Use:   "review <file>...",
	Short: "Run the D3-D8 checks on one or more reports",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReview,
}

func init() {
	f := reviewCmd.Flags()
	f.BoolVar(&reviewFlags.json, "json", false, "print results as JSON")
	f.IntVar(&reviewFlags.parallel, "parallel", 0, "concurrent reviews (0 = review.parallel from config)")
	f.BoolVar(&reviewFlags.failOnReject, "fail-on-reject", false, "exit non-zero when any report is rejected")
	f.BoolVar(&reviewFlags.detail, "detail", false, "also print the per-section checks of each report")
}

type reviewJSON struct {
	FilePath       string           `json:"file_path"`
	Verdict        string           `json:"verdict,omitempty"`
	OverallPassed  bool             `json:"overall_passed"`
	FailedSections []sections.Label `json:"failed_sections,omitempty"`
	Reviews        *rules.Reviews   `json:"reviews,omitempty"`
	ReviewDate     string           `json:"review_date,omitempty"`
	Error          string           `json:"error,omitempty"`
}

func runReview(cmd *cobra.Command, args []string) error {
	parallel := reviewFlags.parallel
	if parallel <= 0 {
		parallel = cfg.Review.Parallel
	}
	results, err := newAuditor().ReviewFiles(cmd.Context(), args, parallel)
	if err != nil {
		return fmt.Errorf("review: %w", err)
	}

	out := cmd.OutOrStdout()
	if reviewFlags.json {
		err = writeReviewJSON(out, results)
	} else {
		writeReviewTable(out, results)
		if reviewFlags.detail {
			writeSectionTables(out, results)
		}
	}
	if err != nil {
		return err
	}

	var failed, rejected int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case !r.Outcome.Verdict.OverallPassed:
			rejected++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d reports could not be reviewed", failed, len(results))
	}
	if reviewFlags.failOnReject && rejected > 0 {
		return fmt.Errorf("%w (%d of %d)", errRejected, rejected, len(results))
	}
	return nil
}

func writeReviewJSON(w io.Writer, results []audit.FileResult) error {
	list := make([]reviewJSON, 0, len(results))
	for _, r := range results {
		item := reviewJSON{FilePath: r.Path}
		if r.Err != nil {
			item.Error = r.Err.Error()
		} else {
			v := r.Outcome.Verdict
			item.Verdict = v.Banner()
			item.OverallPassed = v.OverallPassed
			item.FailedSections = v.FailedSections
			item.Reviews = &v.Reviews
			item.ReviewDate = r.Outcome.ReviewDate
		}
		list = append(list, item)
	}
	return writeJSON(w, list)
}

func writeReviewTable(w io.Writer, results []audit.FileResult) {
	tb := format.NewTable(format.ASCII, "File", "Result", "Critical", "Failed")
	var approved int
	for _, r := range results {
		if r.Err != nil {
			tb.Row(r.Path, "ERROR", "-", format.Truncate(r.Err.Error(), 60))
			continue
		}
		v := r.Outcome.Verdict
		if v.OverallPassed {
			approved++
		}
		failed := make([]string, len(v.FailedSections))
		for i, l := range v.FailedSections {
			failed[i] = string(l)
		}
		tb.Row(
			r.Path,
			display.Icon(v.OverallPassed)+" "+display.Outcome(v.OverallPassed),
			format.Ratio(len(v.PassedLabels()), len(verdict.CriticalLabels)),
			format.List(failed),
		)
	}
	tb.Footer("", fmt.Sprintf("%d approved", approved), "", fmt.Sprintf("%d files", len(results)))
	fmt.Fprintln(w, tb.String())
}

func writeSectionTables(w io.Writer, results []audit.FileResult) {
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		tb := format.NewTable(format.ASCII, "Section", "Name", "OK", "Comment")
		for _, res := range r.Outcome.Verdict.Reviews.All() {
			l := string(res.Section())
			tb.Row(l, display.Section(l), format.BoolMark(rules.Passed(res)), rules.Comment(res))
		}
		fmt.Fprintf(w, "\n%s\n%s\n", r.Path, tb.String())
	}
}
