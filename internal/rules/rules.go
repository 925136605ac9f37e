// Package rules holds the D3..D8 completion rules. Each evaluator is a pure
// function of the section text; every verdict traces back to literal keyword
// matches from keywords.yaml.
package rules

import (
	"regexp"
	"strings"

	"eightd/internal/sections"
)

// Category names reported in Found/Missing.
const (
	CatWIP           = "WIP"
	CatInTransit     = "In-transit"
	CatCustomerSite  = "Customer Site"
	CatCustomerStock = "Customer Stock"
	CatInternalStock = "Internal Stock"

	CatMechanism   = "Mechanism"
	CatRootCause   = "Root Cause"
	CatEscapePoint = "Escape Point"

	CatMeasures = "Measures"
	CatOwner    = "Owner"
	CatDeadline = "Deadline"

	CatProduction   = "Production Verification"
	CatExperiment   = "Experiment Verification"
	CatVerification = "Verification Method"
	CatData         = "Data"

	CatDocRevision = "Document Revision"
	CatTraining    = "Training"

	CatSummary = "Summary"
)

// Issue messages.
const (
	IssueNoMeasures   = "No specific actions described"
	IssueNoOwner      = "Missing owner"
	IssueNoDeadline   = "Missing deadline"
	IssueNoMethod     = "Validation method not specified (Production or Experiment)"
	IssueNoData       = "No validation data provided"
	IssueNoDocs       = "Missing document revision"
	IssueNoTraining   = "Missing training"
	CommentPass       = "Pass"
	CommentSystemic   = "Pass (Bonus: Systemic analysis included)"
	CommentSuggestion = "Suggestion: Add team recognition or lessons learned"
)

// Common carries the fields every section result shares.
type Common struct {
	Passed  bool   `json:"passed"`
	Comment string `json:"comment"`
}

func (c Common) common() Common { return c }

// Result is implemented by D3Result..D8Result. Callers type-switch on the
// concrete type for the section-specific payload.
type Result interface {
	Section() sections.Label
	// Categories returns the found and missing category tags.
	Categories() (found, missing []string)
	common() Common
}

// Passed reports whether r passed.
func Passed(r Result) bool { return r.common().Passed }

// Comment returns the one-line comment of r.
func Comment(r Result) string { return r.common().Comment }

// D3Result is the containment check over five inventory locations.
type D3Result struct {
	Common
	FoundLocations   []string `json:"found_locations"`
	MissingLocations []string `json:"missing_locations"`
}

func (D3Result) Section() sections.Label { return sections.D3 }

func (r D3Result) Categories() ([]string, []string) { return r.FoundLocations, r.MissingLocations }

// D4Result is the root-cause analysis check.
type D4Result struct {
	Common
	FoundAnalysis     []string `json:"found_analysis"`
	MissingAnalysis   []string `json:"missing_analysis"`
	HasSystemAnalysis bool     `json:"has_system_analysis"`
}

func (D4Result) Section() sections.Label { return sections.D4 }

func (r D4Result) Categories() ([]string, []string) { return r.FoundAnalysis, r.MissingAnalysis }

// D5Result is the permanent-action check.
type D5Result struct {
	Common
	HasMeasures bool     `json:"has_measures"`
	HasOwner    bool     `json:"has_owner"`
	HasDeadline bool     `json:"has_deadline"`
	Issues      []string `json:"issues"`
}

func (D5Result) Section() sections.Label { return sections.D5 }

func (r D5Result) Categories() ([]string, []string) {
	return split(
		flag{CatMeasures, r.HasMeasures},
		flag{CatOwner, r.HasOwner},
		flag{CatDeadline, r.HasDeadline},
	)
}

// D6Result is the validation check.
type D6Result struct {
	Common
	HasProductionVerification bool     `json:"has_production_verification"`
	HasExperimentVerification bool     `json:"has_experiment_verification"`
	HasData                   bool     `json:"has_data"`
	Issues                    []string `json:"issues"`
}

func (D6Result) Section() sections.Label { return sections.D6 }

func (r D6Result) Categories() ([]string, []string) {
	found, missing := []string{}, []string{}
	if r.HasProductionVerification {
		found = append(found, CatProduction)
	}
	if r.HasExperimentVerification {
		found = append(found, CatExperiment)
	}
	// Either verification type satisfies the method requirement.
	if !r.HasProductionVerification && !r.HasExperimentVerification {
		missing = append(missing, CatVerification)
	}
	if r.HasData {
		found = append(found, CatData)
	} else {
		missing = append(missing, CatData)
	}
	return found, missing
}

// D7Result is the prevention check.
type D7Result struct {
	Common
	HasDocRevision bool     `json:"has_doc_revision"`
	HasTraining    bool     `json:"has_training"`
	Issues         []string `json:"issues"`
}

func (D7Result) Section() sections.Label { return sections.D7 }

func (r D7Result) Categories() ([]string, []string) {
	return split(flag{CatDocRevision, r.HasDocRevision}, flag{CatTraining, r.HasTraining})
}

// D8Result is advisory and always passes.
type D8Result struct {
	Common
	HasSummary bool `json:"has_summary"`
}

func (D8Result) Section() sections.Label { return sections.D8 }

func (r D8Result) Categories() ([]string, []string) {
	return split(flag{CatSummary, r.HasSummary})
}

type flag struct {
	name string
	set  bool
}

func split(flags ...flag) (found, missing []string) {
	found, missing = []string{}, []string{}
	for _, f := range flags {
		if f.set {
			found = append(found, f.name)
		} else {
			missing = append(missing, f.name)
		}
	}
	return found, missing
}

// EvaluateD3 checks containment in all five locations.
func EvaluateD3(content string) D3Result {
	found, missing := checkCategories(strings.ToLower(content), keywords.D3.Categories)
	r := D3Result{FoundLocations: found, MissingLocations: missing}
	r.Passed = len(missing) == 0
	r.Comment = CommentPass
	if !r.Passed {
		r.Comment = "Missing containment for: " + strings.Join(missing, ", ")
	}
	return r
}

// EvaluateD4 checks mechanism, root cause and escape point. Systemic
// keywords only change the comment.
func EvaluateD4(content string) D4Result {
	lower := strings.ToLower(content)
	found, missing := checkCategories(lower, keywords.D4.Categories)
	r := D4Result{
		FoundAnalysis:     found,
		MissingAnalysis:   missing,
		HasSystemAnalysis: matchAny(lower, keywords.D4.Systemic),
	}
	r.Passed = len(missing) == 0
	switch {
	case !r.Passed:
		r.Comment = "Missing analysis for: " + strings.Join(missing, ", ")
	case r.HasSystemAnalysis:
		r.Comment = CommentSystemic
	default:
		r.Comment = CommentPass
	}
	return r
}

// EvaluateD5 checks measures, owner and deadline within the D5 text.
//
// rootCause is accepted so callers can pass the D4 text, but it is not
// inspected: there is no alignment check between actions and root causes.
func EvaluateD5(content, rootCause string) D5Result {
	lower := strings.ToLower(content)
	cats := keywords.D5.Categories
	r := D5Result{
		HasMeasures: matchAny(lower, cats[0].Keywords),
		HasOwner:    matchAny(lower, cats[1].Keywords),
		HasDeadline: matchAny(lower, cats[2].Keywords),
		Issues:      []string{},
	}
	if !r.HasMeasures {
		r.Issues = append(r.Issues, IssueNoMeasures)
	}
	if !r.HasOwner {
		r.Issues = append(r.Issues, IssueNoOwner)
	}
	if !r.HasDeadline {
		r.Issues = append(r.Issues, IssueNoDeadline)
	}
	r.Passed = len(r.Issues) == 0
	r.Comment = issuesComment(r.Issues)
	return r
}

var percentData = regexp.MustCompile(`\p{Nd}+\.?\p{Nd}*[\s\p{Zs}]*[%％]`)

// EvaluateD6 passes when a verification type is named and data backs it.
func EvaluateD6(content string) D6Result {
	lower := strings.ToLower(content)
	r := D6Result{
		HasProductionVerification: matchAny(lower, keywords.D6.Production),
		HasExperimentVerification: matchAny(lower, keywords.D6.Experiment),
		HasData:                   percentData.MatchString(content) || matchAny(lower, keywords.D6.Pass),
		Issues:                    []string{},
	}
	method := r.HasProductionVerification || r.HasExperimentVerification
	if !method {
		r.Issues = append(r.Issues, IssueNoMethod)
	}
	if !r.HasData {
		r.Issues = append(r.Issues, IssueNoData)
	}
	r.Passed = method && r.HasData
	r.Comment = issuesComment(r.Issues)
	return r
}

// EvaluateD7 requires both a document revision and training.
func EvaluateD7(content string) D7Result {
	lower := strings.ToLower(content)
	cats := keywords.D7.Categories
	r := D7Result{
		HasDocRevision: matchAny(lower, cats[0].Keywords),
		HasTraining:    matchAny(lower, cats[1].Keywords),
		Issues:         []string{},
	}
	if !r.HasDocRevision {
		r.Issues = append(r.Issues, IssueNoDocs)
	}
	if !r.HasTraining {
		r.Issues = append(r.Issues, IssueNoTraining)
	}
	r.Passed = r.HasDocRevision && r.HasTraining
	r.Comment = issuesComment(r.Issues)
	return r
}

// EvaluateD8 never fails; the comment suggests a summary when none is found.
func EvaluateD8(content string) D8Result {
	r := D8Result{HasSummary: matchAny(strings.ToLower(content), keywords.D8.Summary)}
	r.Passed = true
	r.Comment = CommentPass
	if !r.HasSummary {
		r.Comment = CommentSuggestion
	}
	return r
}

func issuesComment(issues []string) string {
	if len(issues) == 0 {
		return CommentPass
	}
	return "Issues: " + strings.Join(issues, "; ")
}
