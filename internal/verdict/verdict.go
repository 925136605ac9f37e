// Package verdict folds the per-section results into one approval gate.
package verdict

import (
	"eightd/internal/rules"
	"eightd/internal/sections"
)

// CriticalLabels are the sections whose failure blocks approval, in the
// order failures are reported. D8 is advisory and never counted.
var CriticalLabels = []sections.Label{sections.D3, sections.D4, sections.D5, sections.D6, sections.D7}

// Banners shown for the overall decision.
const (
	Approved = "✅ 8D Report APPROVED"
	Rejected = "❌ 8D Report REJECTED"
)

// Verdict is the overall decision for one document.
type Verdict struct {
	OverallPassed  bool             `json:"overall_passed"`
	FailedSections []sections.Label `json:"failed_sections"`
	Reviews        rules.Reviews    `json:"reviews"`
}

// Aggregate computes the verdict over the critical sections.
func Aggregate(r rules.Reviews) Verdict {
	failed := []sections.Label{}
	for _, l := range CriticalLabels {
		if !rules.Passed(r.Get(l)) {
			failed = append(failed, l)
		}
	}
	return Verdict{
		OverallPassed:  len(failed) == 0,
		FailedSections: failed,
		Reviews:        r,
	}
}

// Evaluate runs every rule over m and aggregates the results.
func Evaluate(m sections.Map) Verdict {
	return Aggregate(rules.EvaluateAll(m))
}

// Banner returns the approval banner.
func (v Verdict) Banner() string {
	if v.OverallPassed {
		return Approved
	}
	return Rejected
}

// PassedLabels returns the critical sections that passed, in order.
func (v Verdict) PassedLabels() []sections.Label {
	out := []sections.Label{}
	for _, l := range CriticalLabels {
		if rules.Passed(v.Reviews.Get(l)) {
			out = append(out, l)
		}
	}
	return out
}
