// Package report renders review outcomes as Markdown, builds the
// logic-audit packet and writes review files.
package report

import (
	"fmt"
	"strings"

	"eightd/internal/audit"
	"eightd/internal/display"
	"eightd/internal/evidence"
	"eightd/internal/format"
	"eightd/internal/rules"
	"eightd/internal/sections"
	"eightd/internal/verdict"
)

// DefaultTitle is the report title when none is given.
const DefaultTitle = "8D Report Review"

// Footer closes every report; MergeLogicAudit inserts before it.
const Footer = "*Generated by eightd Quality Review*"

// DefaultContainmentMaxLength bounds each D3 evidence quote.
const DefaultContainmentMaxLength = 140

// Preferred keywords for the three D3 evidence quotes.
var (
	customerStockKeywords = []string{"customer warehouse", "customer stock", "customer warehouse sorting", "warehouse", "客户仓库", "客户库存"}
	inTransitKeywords     = []string{"in-transit", "in transit", "shipment", "shipping", "returned", "return", "在途", "运输", "发运", "退回"}
	wipInternalKeywords   = []string{"wip", "in-process", "stop production", "quarantine", "segreg", "hold", "internal stock", "inventory", "在制", "停产", "隔离", "我司", "本司", "内部库存"}
)

// Renderer turns an outcome into Markdown. Zero lengths use the defaults.
type Renderer struct {
	Title                string
	MaxLength            int
	ContainmentMaxLength int
}

// Render renders o with the default lengths.
func Render(o *audit.Outcome, title string) string {
	return (&Renderer{Title: title}).Render(o)
}

func (r *Renderer) title() string {
	if strings.TrimSpace(r.Title) == "" {
		return DefaultTitle
	}
	return r.Title
}

func (r *Renderer) maxLength() int {
	if r.MaxLength <= 0 {
		return evidence.DefaultMaxLength
	}
	return r.MaxLength
}

func (r *Renderer) containmentMax() int {
	if r.ContainmentMaxLength <= 0 {
		return DefaultContainmentMaxLength
	}
	return r.ContainmentMaxLength
}

func (r *Renderer) quote(text string) string {
	s := evidence.Select(text, r.maxLength())
	if s == evidence.NotFound {
		return s
	}
	return `"` + s + `"`
}

// Render renders the full review report.
func (r *Renderer) Render(o *audit.Outcome) string {
	var b strings.Builder
	v := o.Verdict
	secs := sections.Map{}
	if o.Document != nil {
		secs = o.Document.Sections
	}

	r.header(&b, o)
	summary(&b, v)

	b.WriteString("---\n\n## II. Detailed Audit\n\n")
	r.d3(&b, v.Reviews.D3, secs.Get(sections.D3))
	r.d4(&b, v.Reviews.D4, secs.Get(sections.D4))
	r.d5(&b, v.Reviews.D5, secs.Get(sections.D5))
	r.d6(&b, v.Reviews.D6, secs.Get(sections.D6))
	r.d7(&b, v.Reviews.D7, secs.Get(sections.D7))
	d8(&b, v.Reviews.D8)

	if !v.OverallPassed {
		actionItems(&b, v)
	}
	b.WriteString("---\n\n" + Footer + "\n")
	return b.String()
}

func labels(ls []sections.Label) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = string(l)
	}
	return out
}

func (r *Renderer) header(b *strings.Builder, o *audit.Outcome) {
	v := o.Verdict
	total := len(verdict.CriticalLabels)
	passed := labels(v.PassedLabels())
	failed := labels(v.FailedSections)
	file := o.FilePath()
	if file == "" {
		file = "(inline text)"
	}
	fmt.Fprintf(b, "# %s\n\n", r.title())
	fmt.Fprintf(b, "> 📅 **Date**: %s  \n", o.ReviewDate)
	fmt.Fprintf(b, "> 📁 **File**: `%s`  \n", file)
	fmt.Fprintf(b, "> 📊 **Result**: %s (%d/%d Critical Sections Passed)  \n", display.Outcome(v.OverallPassed), total-len(failed), total)
	fmt.Fprintf(b, "> 🔎 **Critical sections definition**: D3 to D7 (%d sections)  \n", total)
	fmt.Fprintf(b, "> ✅ **Critical sections passed**: %d/%d (%s)  \n", len(passed), total, display.SectionList(passed))
	fmt.Fprintf(b, "> ❌ **Critical sections failed**: %d/%d (%s)\n\n", len(failed), total, display.SectionList(failed))
	b.WriteString("---\n\n## I. Executive Summary\n\n")
	fmt.Fprintf(b, "### %s\n\n", v.Banner())
}

func summary(b *strings.Builder, v verdict.Verdict) {
	if !v.OverallPassed {
		b.WriteString(format.Pairs(format.Markdown, "Status", "Detail", [][2]string{
			{"**Rejected Sections**", strings.Join(labels(v.FailedSections), ", ")},
			{"**Issues Found**", fmt.Sprintf("%d Critical Issues", len(v.FailedSections))},
			{"**Action**", "Please revise and resubmit."},
		}) + "\n\n")
		return
	}
	b.WriteString(format.Pairs(format.Markdown, "Status", "Detail", [][2]string{
		{"**Result**", "All critical sections passed."},
		{"**Action**", "Closure after confirming all corrective/preventive actions are completed (see Logic Audit)."},
	}) + "\n\n")

	b.WriteString("### ✨ Highlights\n\n")
	for _, h := range Highlights(v.Reviews) {
		b.WriteString("- " + h + "\n")
	}
	b.WriteString("\n")
}

// Highlights lists the strengths of a review, one line per passing section.
func Highlights(r rules.Reviews) []string {
	var out []string
	if r.D3.Passed && len(r.D3.FoundLocations) == 5 {
		out = append(out, "D3: Covered all 5 containment locations (WIP, In-transit, Customer Site, Customer Stock, Internal Stock).")
	}
	if r.D4.Passed {
		if r.D4.HasSystemAnalysis {
			out = append(out, "D4: Included systemic root cause analysis.")
		} else {
			out = append(out, "D4: Covered Mechanism, Root Cause, and Escape Point.")
		}
	}
	if r.D5.Passed {
		out = append(out, "D5: Actions have clear owners and deadlines.")
	}
	if r.D6.Passed {
		if r.D6.HasProductionVerification && r.D6.HasExperimentVerification {
			out = append(out, "D6: Verified by both Production and Experiment data.")
		} else {
			out = append(out, "D6: Verified with quantitative data.")
		}
	}
	if r.D7.Passed {
		out = append(out, "D7: Preventive actions include document updates and training.")
	}
	if r.D8.HasSummary {
		out = append(out, "D8: Team recognition included.")
	}
	return out
}

func heading(b *strings.Builder, l sections.Label, mark string) {
	fmt.Fprintf(b, "### %s %s\n\n", display.SectionWithCode(string(l)), mark)
}

func findings(b *strings.Builder, col string, rows [][2]string) {
	b.WriteString("**Findings**:\n\n" + format.Pairs(format.Markdown, col, "Status", rows) + "\n\n")
}

func rejection(b *strings.Builder, reason string, actions ...string) {
	fmt.Fprintf(b, "**❌ Rejection Reason**: %s\n\n**Required Actions**:\n", reason)
	for i, a := range actions {
		fmt.Fprintf(b, "%d. %s\n", i+1, a)
	}
	b.WriteString("\n")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (r *Renderer) d3(b *strings.Builder, res rules.D3Result, text string) {
	heading(b, sections.D3, display.Icon(res.Passed))
	b.WriteString("**Standard**: Must contain product in 5 locations:\n")
	for _, loc := range []string{"WIP (In-process)", rules.CatInTransit, rules.CatCustomerSite, rules.CatCustomerStock, rules.CatInternalStock} {
		b.WriteString("- " + loc + "\n")
	}
	b.WriteString("\n")

	var quotes []string
	for _, q := range []struct {
		label string
		kws   []string
	}{
		{"Customer Stock", customerStockKeywords},
		{"In-transit", inTransitKeywords},
		{"WIP/Internal", wipInternalKeywords},
	} {
		if s := evidence.Select(text, r.containmentMax(), q.kws...); s != evidence.NotFound {
			quotes = append(quotes, fmt.Sprintf("- %s: \"%s\"", q.label, s))
		}
	}
	if len(quotes) == 0 {
		b.WriteString("**Evidence**: " + evidence.NotFound + "\n\n")
	} else {
		b.WriteString("**Evidence**:\n" + strings.Join(quotes, "\n") + "\n\n")
	}

	var rows [][2]string
	for _, loc := range []string{rules.CatWIP, rules.CatInTransit, rules.CatCustomerSite, rules.CatCustomerStock, rules.CatInternalStock} {
		rows = append(rows, [2]string{loc, display.Checked(contains(res.FoundLocations, loc))})
	}
	findings(b, "Location", rows)

	if !res.Passed {
		rejection(b, "Missing containment for "+strings.Join(res.MissingLocations, ", "),
			"Confirm status of parts in missing locations.",
			"Provide quantity and method of screening.")
	}
}

func (r *Renderer) d4(b *strings.Builder, res rules.D4Result, text string) {
	heading(b, sections.D4, display.Icon(res.Passed))
	b.WriteString("**Standard**: Must analyze:\n" +
		"- **Mechanism**: How it happened physically.\n" +
		"- **Root Cause**: Why it happened (Process/Method).\n" +
		"- **Escape Point**: Why it wasn't detected.\n\n")
	b.WriteString("**Evidence**: " + r.quote(text) + "\n\n")

	var rows [][2]string
	for _, dim := range []string{rules.CatMechanism, rules.CatRootCause, rules.CatEscapePoint} {
		rows = append(rows, [2]string{dim, display.Analyzed(contains(res.FoundAnalysis, dim))})
	}
	rows = append(rows, [2]string{"Systemic", display.Bonus(res.HasSystemAnalysis)})
	findings(b, "Dimension", rows)

	switch {
	case !res.Passed:
		rejection(b, "Missing analysis for "+strings.Join(res.MissingAnalysis, ", "),
			"Use 5-Why or Fishbone.",
			"Drill down to process parameters or design features.",
			"Explain why current controls failed to detect the defect.")
	case res.HasSystemAnalysis:
		b.WriteString("**✨ Bonus**: Good job identifying systemic/management issues.\n\n")
	}
}

func (r *Renderer) d5(b *strings.Builder, res rules.D5Result, text string) {
	heading(b, sections.D5, display.Icon(res.Passed))
	b.WriteString("**Standard**:\n- Actions must match Root Causes.\n- Must have Owner and Deadline.\n\n")
	b.WriteString("**Evidence**: " + r.quote(text) + "\n\n")
	findings(b, "Item", [][2]string{
		{"Action Description", display.Present(res.HasMeasures)},
		{"Owner", display.Present(res.HasOwner)},
		{"Deadline", display.Present(res.HasDeadline)},
	})
	if res.Passed {
		return
	}
	var actions []string
	if !res.HasMeasures {
		actions = append(actions, "Define specific actions.")
	}
	if !res.HasOwner {
		actions = append(actions, "Assign specific owners.")
	}
	if !res.HasDeadline {
		actions = append(actions, "Add deadlines/due dates.")
	}
	if len(actions) == 0 {
		actions = append(actions, "Clarify missing information.")
	}
	rejection(b, strings.Join(res.Issues, ", "), actions...)
}

func (r *Renderer) d6(b *strings.Builder, res rules.D6Result, text string) {
	heading(b, sections.D6, display.Icon(res.Passed))
	b.WriteString("**Standard**:\n- Must verify with Data (Production or Experiment).\n\n")
	b.WriteString("**Evidence**: " + r.quote(text) + "\n\n")
	findings(b, "Item", [][2]string{
		{"Production Run", display.Present(res.HasProductionVerification)},
		{"Experiment/Test", display.Present(res.HasExperimentVerification)},
		{"Data Support", display.Present(res.HasData)},
	})
	if !res.Passed {
		rejection(b, strings.Join(res.Issues, ", "),
			"Provide quantitative data (e.g., Defect rate 0%).",
			"Compare Before vs. After.")
	}
}

func (r *Renderer) d7(b *strings.Builder, res rules.D7Result, text string) {
	heading(b, sections.D7, display.Icon(res.Passed))
	b.WriteString("**Standard**:\n- Update Documents (SOP/Control Plan).\n- Conduct Training.\n\n")
	b.WriteString("**Evidence**: " + r.quote(text) + "\n\n")
	findings(b, "Item", [][2]string{
		{"Document Update", display.Present(res.HasDocRevision)},
		{"Training", display.Present(res.HasTraining)},
	})
	if !res.Passed {
		rejection(b, strings.Join(res.Issues, ", "),
			"Update SOP/Work Instructions.",
			"Train operators and keep records.")
	}
}

func d8(b *strings.Builder, res rules.D8Result) {
	mark := "✅"
	if !res.HasSummary {
		mark = "💡 Suggestion"
	}
	heading(b, sections.D8, mark)
	b.WriteString("**Standard**: Team recognition and lessons learned.\n\n")
	b.WriteString("- Recognition: " + display.Present(res.HasSummary) + "\n\n")
	if !res.HasSummary {
		b.WriteString("**Suggestion**: Add team recognition or summarize lessons learned.\n\n")
	}
}

// ActionItem is one row of the action items table.
type ActionItem struct {
	Section     sections.Label
	Requirement string
}

// ActionItems lists what a rejected report must fix, one per failed section.
func ActionItems(v verdict.Verdict) []ActionItem {
	var out []ActionItem
	for _, l := range v.FailedSections {
		var req string
		switch res := v.Reviews.Get(l).(type) {
		case rules.D3Result:
			req = "Check " + strings.Join(res.MissingLocations, ", ")
		case rules.D4Result:
			req = "Analyze " + strings.Join(res.MissingAnalysis, ", ")
		case rules.D5Result:
			req = strings.Join(res.Issues, ", ")
		case rules.D6Result:
			req = strings.Join(res.Issues, ", ")
		case rules.D7Result:
			req = strings.Join(res.Issues, ", ")
		}
		out = append(out, ActionItem{Section: l, Requirement: req})
	}
	return out
}

func actionItems(b *strings.Builder, v verdict.Verdict) {
	b.WriteString("---\n\n## III. Action Items\n\nPlease address the following issues:\n\n")
	tb := format.NewTable(format.Markdown, "#", "Section", "Requirement")
	for i, it := range ActionItems(v) {
		tb.Row(i+1, string(it.Section), it.Requirement)
	}
	b.WriteString(tb.String() + "\n\n")
}
