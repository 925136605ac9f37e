package audit_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"eightd/internal/audit"
	"eightd/internal/ingest"
	"eightd/internal/sections"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
}

func TestReview_Approved(t *testing.T) {
	a := &audit.Auditor{Clock: fixedClock}
	out, err := a.Review(filepath.Join("testdata", "approved.txt"))
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if !out.Verdict.OverallPassed {
		t.Fatalf("expected approval, failed %v", out.Verdict.FailedSections)
	}
	if out.ReviewDate != "2024-03-09 14:05:07" {
		t.Errorf("ReviewDate = %q", out.ReviewDate)
	}
	if out.FilePath() != filepath.Join("testdata", "approved.txt") {
		t.Errorf("FilePath = %q", out.FilePath())
	}
	if got := out.Document.Sections.Get(sections.D1); got != "Team: Quality lead, process engineer, line supervisor" {
		t.Errorf("D1 = %q", got)
	}
	if !out.Verdict.Reviews.D8.HasSummary {
		t.Error("D8 summary expected")
	}
}

func TestReview_Rejected(t *testing.T) {
	a := &audit.Auditor{Clock: fixedClock}
	out, err := a.Review(filepath.Join("testdata", "rejected.txt"))
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	want := []sections.Label{sections.D3, sections.D4, sections.D5, sections.D6}
	if diff := cmp.Diff(want, out.Verdict.FailedSections); diff != "" {
		t.Errorf("FailedSections (-want +got):\n%s", diff)
	}
	if got := out.Verdict.Reviews.D5.Comment; got != "Issues: Missing owner; Missing deadline" {
		t.Errorf("D5 comment = %q", got)
	}
	if out.Verdict.Reviews.D8.HasSummary {
		t.Error("D8 summary not expected")
	}
}

func TestRead_ParagraphCount(t *testing.T) {
	doc, err := audit.New(sections.ModeLeaky).Read(filepath.Join("testdata", "rejected.txt"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.ParagraphCount != 8 {
		t.Errorf("ParagraphCount = %d, want 8", doc.ParagraphCount)
	}
	if len(doc.Sections) != len(sections.Labels) {
		t.Errorf("sections = %d, want 8", len(doc.Sections))
	}
}

func TestRead_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.pdf")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := (&audit.Auditor{}).Read(path)
	if !errors.Is(err, ingest.ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestReviewText_MatchesReview(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "rejected.txt"))
	if err != nil {
		t.Fatal(err)
	}
	a := &audit.Auditor{Clock: fixedClock}
	fromText := a.ReviewText(ingest.ReadText(data).Text())
	fromFile, err := a.Review(filepath.Join("testdata", "rejected.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(fromFile.Verdict.FailedSections, fromText.Verdict.FailedSections); diff != "" {
		t.Errorf("verdict mismatch (-file +text):\n%s", diff)
	}
	if fromText.FilePath() != "" {
		t.Errorf("FilePath = %q, want empty", fromText.FilePath())
	}
}

func TestReviewFiles_OrderAndErrors(t *testing.T) {
	paths := []string{
		filepath.Join("testdata", "approved.txt"),
		filepath.Join("testdata", "missing.txt"),
		filepath.Join("testdata", "rejected.txt"),
		filepath.Join("testdata", "approved.txt"),
	}
	results, err := (&audit.Auditor{}).ReviewFiles(context.Background(), paths, 2)
	if err != nil {
		t.Fatalf("ReviewFiles: %v", err)
	}
	if len(results) != len(paths) {
		t.Fatalf("results = %d, want %d", len(results), len(paths))
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Errorf("results[%d].Path = %q, want %q", i, r.Path, paths[i])
		}
	}
	if results[1].Err == nil {
		t.Error("missing file should carry an error")
	}
	if !results[0].Outcome.Verdict.OverallPassed || results[2].Outcome.Verdict.OverallPassed {
		t.Error("unexpected verdicts")
	}
}

func TestReviewFiles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := (&audit.Auditor{}).ReviewFiles(ctx, []string{filepath.Join("testdata", "approved.txt")}, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("result err = %v", results[0].Err)
	}
}
