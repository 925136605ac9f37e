package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eightd/internal/audit"
	"eightd/internal/logging"
)

// Save statuses.
const (
	StatusSaved           = "success"
	StatusNeedsLogicAudit = "needs_logic_audit"
)

// FilePrefix starts every saved review file name.
const FilePrefix = "8D_Review_"

// SaveOptions controls Save.
type SaveOptions struct {
	LogicAudit        string
	RequireLogicAudit bool
	// OutputDir defaults to the directory of the reviewed file.
	OutputDir string
	Now       func() time.Time
}

// SaveResult reports what Save did.
type SaveResult struct {
	Status              string  `json:"status"`
	Message             string  `json:"message"`
	SavedPath           string  `json:"saved_path,omitempty"`
	Filename            string  `json:"filename,omitempty"`
	LogicReviewIncluded bool    `json:"logic_review_included"`
	ReportContent       string  `json:"report_content,omitempty"`
	Packet              *Packet `json:"logic_audit_packet,omitempty"`
}

// FileName returns the review file name for a report read from source at
// t. Inline text (empty source) gets the timestamp alone.
func FileName(source string, t time.Time) string {
	ts := t.Format("20060102_150405")
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if source == "" || stem == "" || stem == "." {
		return FilePrefix + ts + ".md"
	}
	return FilePrefix + stem + "_" + ts + ".md"
}

// maxNameAttempts bounds the numeric suffixes tried when a name is taken.
const maxNameAttempts = 1000

// Save renders o, merges the logic audit and writes the report. When a
// logic audit is required but missing nothing is written and the result
// carries the packet to complete it.
func (r *Renderer) Save(o *audit.Outcome, opts SaveOptions) (*SaveResult, error) {
	hasAudit := strings.TrimSpace(opts.LogicAudit) != ""
	if opts.RequireLogicAudit && !hasAudit {
		return &SaveResult{
			Status: StatusNeedsLogicAudit,
			Message: "Stage-2 Logic Audit is required. Use logic_audit_packet to write logic_review_md " +
				"(verbatim Evidence quotes; Not Found if missing), then save again with logic_review_md.",
			Packet: NewPacket(o),
		}, nil
	}

	content := MergeLogicAudit(r.Render(o), opts.LogicAudit)

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	dir := opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(o.FilePath())
	}
	path, err := writeFileUnique(dir, FileName(o.FilePath(), now()), []byte(content))
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	logging.New("report").Info("review report saved", "path", path, "logic_audit", hasAudit)
	return &SaveResult{
		Status:              StatusSaved,
		Message:             "Review report saved",
		SavedPath:           path,
		Filename:            name,
		LogicReviewIncluded: hasAudit,
		ReportContent:       content,
	}, nil
}

// writeFileUnique writes data under name in dir, or name_2, name_3 and so on
// when a file of that name exists. Existing files are never replaced.
func writeFileUnique(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path, err := reserve(dir, name)
	if err != nil {
		return "", err
	}
	if err := replaceAtomic(path, data); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// reserve creates an empty placeholder at the first free candidate name.
func reserve(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; i <= maxNameAttempts; i++ {
		candidate := name
		if i > 1 {
			candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create report: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("close report: %w", err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free report name for %s in %s", name, dir)
}

// replaceAtomic swaps the reserved placeholder at path for data.
func replaceAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".8d-review-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}
