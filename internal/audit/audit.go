// Package audit wires document reading, segmentation, rule evaluation and
// the verdict into one review pipeline.
package audit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"eightd/internal/ingest"
	"eightd/internal/logging"
	"eightd/internal/sections"
	"eightd/internal/verdict"
)

// DateLayout is the review timestamp layout.
const DateLayout = "2006-01-02 15:04:05"

// Document is a flattened report and its sections.
type Document struct {
	FilePath       string       `json:"file_path"`
	FullText       string       `json:"full_text"`
	Sections       sections.Map `json:"sections"`
	ParagraphCount int          `json:"paragraph_count"`
}

// Outcome is the review of one document.
type Outcome struct {
	Document   *Document       `json:"-"`
	Verdict    verdict.Verdict `json:"verdict"`
	ReviewDate string          `json:"review_date"`
}

// FilePath is the reviewed document path, empty for in-memory text.
func (o *Outcome) FilePath() string {
	if o.Document == nil {
		return ""
	}
	return o.Document.FilePath
}

// Auditor runs reviews. The zero value uses leaky segmentation and the wall
// clock.
type Auditor struct {
	Segmenter sections.Segmenter
	Clock     func() time.Time
}

// New returns an Auditor segmenting in the given mode.
func New(mode sections.Mode) *Auditor {
	return &Auditor{Segmenter: sections.Segmenter{Mode: mode}}
}

func (a *Auditor) now() time.Time {
	if a.Clock != nil {
		return a.Clock()
	}
	return time.Now()
}

// Read flattens and segments the document at path.
func (a *Auditor) Read(path string) (*Document, error) {
	doc, err := ingest.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	text := doc.Text()
	return &Document{
		FilePath:       path,
		FullText:       text,
		Sections:       a.Segmenter.Split(text),
		ParagraphCount: doc.ParagraphCount,
	}, nil
}

// Review reads the document at path and evaluates it.
func (a *Auditor) Review(path string) (*Outcome, error) {
	doc, err := a.Read(path)
	if err != nil {
		return nil, err
	}
	out := a.evaluate(doc)
	logging.New("audit").Info("reviewed",
		"file", path,
		"overall_passed", out.Verdict.OverallPassed,
		"failed_sections", out.Verdict.FailedSections)
	return out, nil
}

// ReviewText evaluates in-memory report text.
func (a *Auditor) ReviewText(text string) *Outcome {
	return a.evaluate(&Document{
		FullText: text,
		Sections: a.Segmenter.Split(text),
	})
}

func (a *Auditor) evaluate(doc *Document) *Outcome {
	return &Outcome{
		Document:   doc,
		Verdict:    verdict.Evaluate(doc.Sections),
		ReviewDate: a.now().Format(DateLayout),
	}
}

// FileResult is one entry of a batch review.
type FileResult struct {
	Path    string
	Outcome *Outcome
	Err     error
}

// ReviewFiles reviews paths with at most parallel concurrent workers.
// Results keep the input order. Per-file failures are recorded in the
// result; the returned error is only set when ctx is cancelled, in which
// case unscheduled files carry ctx.Err().
func (a *Auditor) ReviewFiles(ctx context.Context, paths []string, parallel int) ([]FileResult, error) {
	if parallel < 1 {
		parallel = 1
	}
	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, p := range paths {
		results[i].Path = p
		if err := gctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			out, err := a.Review(p)
			if err != nil {
				logging.New("audit").Warn("review failed", "file", p, "error", err)
			}
			results[i].Outcome, results[i].Err = out, err
			return nil
		})
	}
	_ = g.Wait()
	return results, ctx.Err()
}
