package format_test

import (
	"strings"
	"testing"
	"time"

	"eightd/internal/format"
)

func TestASCII_Table(t *testing.T) {
	tb := format.NewTable(format.ASCII, "Section", "Status", "Comment")
	tb.Row("D3", "✗", "Missing containment for: WIP")
	tb.Row("D4", "✓", "Pass")
	out := tb.String()

	for _, want := range []string{"SECTION", "Missing containment for: WIP", "───"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestMarkdown_Table(t *testing.T) {
	tb := format.NewTable(format.Markdown, "Section", "Result")
	tb.Row("D5", "Pass")
	tb.Footer("TOTAL", "1/1")
	out := tb.String()

	for _, want := range []string{"| Section", "---", "D5", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestMarkdown_MultilineCellStaysOneRow(t *testing.T) {
	tb := format.NewTable(format.Markdown, "Location", "Evidence")
	tb.Row("WIP", "line 2 on hold\n340 pcs sorted")
	out := strings.TrimSpace(tb.String())

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, separator and one row, got:\n%s", out)
	}
	if !strings.Contains(lines[2], "line 2 on hold 340 pcs sorted") {
		t.Errorf("row = %q", lines[2])
	}
}

func TestPairs(t *testing.T) {
	out := format.Pairs(format.Markdown, "Item", "Status", [][2]string{
		{"Owner", "✅ Present"},
		{"Deadline", "❌ Missing"},
	})
	for _, want := range []string{"| Item | Status |", "| Owner | ✅ Present |", "| Deadline | ❌ Missing |"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestAlignRight(t *testing.T) {
	tb := format.NewTable(format.ASCII, "Name", "Chars")
	tb.Row("report.docx", 7)
	tb.Row("x", 12345)
	tb.AlignRight(2)
	out := tb.String()
	if !strings.Contains(out, "│     7 │") {
		t.Errorf("expected right-aligned count in output:\n%s", out)
	}
}

func TestSameData_DualFormat(t *testing.T) {
	build := func(m format.Mode) string {
		tb := format.NewTable(m, "A", "B")
		tb.Row("x", "y")
		return tb.String()
	}
	if build(format.ASCII) == build(format.Markdown) {
		t.Error("ASCII and Markdown output should differ")
	}
}

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m 30s"},
	}
	for _, tc := range tests {
		if got := format.FmtDuration(tc.in); got != tc.want {
			t.Errorf("FmtDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		p, n int
		want string
	}{
		{0, 0, "0/0"},
		{5, 5, "5/5 (100%)"},
		{3, 5, "3/5 (60%)"},
	}
	for _, tc := range tests {
		if got := format.Ratio(tc.p, tc.n); got != tc.want {
			t.Errorf("Ratio(%d,%d) = %q, want %q", tc.p, tc.n, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello..."},
		{"abcdef", 3, "abc"},
		{"在制品在途品", 5, "在制..."},
		{"在制品", 2, "在制"},
	}
	for _, tc := range tests {
		if got := format.Truncate(tc.in, tc.maxLen); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
	}
}

func TestCell(t *testing.T) {
	if got := format.Cell(" a |\n\tb "); got != "a | b" {
		t.Errorf("Cell = %q", got)
	}
}

func TestBoolMarkAndList(t *testing.T) {
	if format.BoolMark(true) != "✓" || format.BoolMark(false) != "✗" {
		t.Error("BoolMark mismatch")
	}
	if format.List(nil) != "-" {
		t.Error("List(nil) should be -")
	}
	if got := format.List([]string{"WIP", "Stock"}); got != "WIP, Stock" {
		t.Errorf("List = %q", got)
	}
}
