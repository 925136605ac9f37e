package display

import "testing"

func TestSection(t *testing.T) {
	cases := []struct {
		code, want string
	}{
		{"D1", "Team"},
		{"D3", "Interim Containment"},
		{"D4", "Root Cause Analysis"},
		{"D5", "Permanent Actions"},
		{"D6", "Validation"},
		{"D7", "Prevention"},
		{"D8", "Recognition"},
		{"D9", "D9"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Section(tc.code); got != tc.want {
			t.Errorf("Section(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestSectionWithCode(t *testing.T) {
	if got := SectionWithCode("D6"); got != "D6 Validation" {
		t.Errorf("got %q", got)
	}
	if got := SectionWithCode("X"); got != "X" {
		t.Errorf("got %q", got)
	}
}

func TestSectionList(t *testing.T) {
	if got := SectionList(nil); got != "None" {
		t.Errorf("got %q", got)
	}
	if got := SectionList([]string{"D3", "D6"}); got != "D3, D6" {
		t.Errorf("got %q", got)
	}
}

func TestStatusMarks(t *testing.T) {
	cases := []struct {
		name string
		fn   func(bool) string
		yes  string
		no   string
	}{
		{"Icon", Icon, "✅", "❌"},
		{"Outcome", Outcome, "APPROVED", "REJECTED"},
		{"Checked", Checked, "✅ Checked", "❌ Not Checked"},
		{"Analyzed", Analyzed, "✅ Analyzed", "❌ Missing"},
		{"Present", Present, "✅ Present", "❌ Missing"},
		{"Bonus", Bonus, "✨ Bonus", "⚪ N/A"},
	}
	for _, tc := range cases {
		if got := tc.fn(true); got != tc.yes {
			t.Errorf("%s(true) = %q, want %q", tc.name, got, tc.yes)
		}
		if got := tc.fn(false); got != tc.no {
			t.Errorf("%s(false) = %q, want %q", tc.name, got, tc.no)
		}
	}
}
