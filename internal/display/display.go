// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in CLI output and markdown reports.
// Keep raw codes for JSON fields, map keys, and equality comparisons.
package display

import "strings"

// --- Sections ---

var sectionNames = map[string]string{
	"D1": "Team",
	"D2": "Problem Description",
	"D3": "Interim Containment",
	"D4": "Root Cause Analysis",
	"D5": "Permanent Actions",
	"D6": "Validation",
	"D7": "Prevention",
	"D8": "Recognition",
}

// Section returns the human-readable name for a section label.
// "D3" -> "Interim Containment". Unknown labels are returned as-is.
func Section(label string) string {
	if name, ok := sectionNames[label]; ok {
		return name
	}
	return label
}

// SectionWithCode returns "D3 Interim Containment" format.
func SectionWithCode(label string) string {
	if name, ok := sectionNames[label]; ok {
		return label + " " + name
	}
	return label
}

// SectionList joins labels with ", ", or returns "None" when empty.
func SectionList(labels []string) string {
	if len(labels) == 0 {
		return "None"
	}
	return strings.Join(labels, ", ")
}

// --- Status ---

// Icon returns ✅ for a passing check and ❌ otherwise.
func Icon(passed bool) string {
	if passed {
		return "✅"
	}
	return "❌"
}

// Outcome returns "APPROVED" or "REJECTED".
func Outcome(passed bool) string {
	if passed {
		return "APPROVED"
	}
	return "REJECTED"
}

// Checked renders a D3 location finding.
func Checked(ok bool) string {
	if ok {
		return "✅ Checked"
	}
	return "❌ Not Checked"
}

// Analyzed renders a D4 dimension finding.
func Analyzed(ok bool) string {
	if ok {
		return "✅ Analyzed"
	}
	return "❌ Missing"
}

// Present renders a D5–D8 item finding.
func Present(ok bool) string {
	if ok {
		return "✅ Present"
	}
	return "❌ Missing"
}

// Bonus renders the D4 systemic bonus column.
func Bonus(ok bool) string {
	if ok {
		return "✨ Bonus"
	}
	return "⚪ N/A"
}
