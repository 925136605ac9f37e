package report

import (
	_ "embed"
	"fmt"
	"strings"

	"eightd/internal/audit"
	"eightd/internal/rules"
	"eightd/internal/sections"
	"eightd/internal/verdict"
)

//go:embed logic_audit.md
var LogicAuditInstructions string

// GateResult is the deterministic verdict handed to the logic auditor.
type GateResult struct {
	OverallPassed  bool             `json:"overall_passed"`
	FailedSections []sections.Label `json:"failed_sections"`
	Reviews        rules.Reviews    `json:"reviews"`
	ReviewDate     string           `json:"review_date"`
}

// Packet is the source of truth for a second-stage logic audit: the
// critical section text, the gate result and the auditor instructions.
type Packet struct {
	FilePath                   string                    `json:"file_path"`
	CriticalSectionsDefinition string                    `json:"critical_sections_definition"`
	GateResult                 GateResult                `json:"gate_result"`
	SourceSections             map[sections.Label]string `json:"source_sections"`
	Instructions               string                    `json:"logic_audit_instructions"`
}

// NewPacket builds the logic-audit packet for o.
func NewPacket(o *audit.Outcome) *Packet {
	src := make(map[sections.Label]string, len(verdict.CriticalLabels))
	for _, l := range verdict.CriticalLabels {
		if o.Document != nil {
			src[l] = o.Document.Sections.Get(l)
		} else {
			src[l] = ""
		}
	}
	v := o.Verdict
	return &Packet{
		FilePath:                   o.FilePath(),
		CriticalSectionsDefinition: fmt.Sprintf("D3 to D7 (%d sections)", len(verdict.CriticalLabels)),
		GateResult: GateResult{
			OverallPassed:  v.OverallPassed,
			FailedSections: v.FailedSections,
			Reviews:        v.Reviews,
			ReviewDate:     o.ReviewDate,
		},
		SourceSections: src,
		Instructions:   LogicAuditInstructions,
	}
}

// MergeLogicAudit inserts the trimmed logic audit before the footer, or
// appends it when the footer is absent. A blank audit returns report as is.
func MergeLogicAudit(report, logicAudit string) string {
	block := strings.TrimSpace(logicAudit)
	if block == "" {
		return report
	}
	marker := "\n" + Footer + "\n"
	if head, tail, ok := strings.Cut(report, marker); ok {
		head = strings.TrimRight(head, " \t\r\n")
		head = strings.TrimRight(strings.TrimSuffix(head, "---"), " \t\r\n")
		return head + "\n\n---\n\n" + block + "\n\n---\n\n" + Footer + "\n" + strings.TrimLeft(tail, "\n")
	}
	return strings.TrimRight(report, " \t\r\n") + "\n\n---\n\n" + block + "\n"
}
