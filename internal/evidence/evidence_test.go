package evidence

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxLen    int
		preferred []string
		want      string
	}{
		{
			name: "empty text",
			text: "", maxLen: 160,
			want: NotFound,
		},
		{
			name: "only blank lines",
			text: "  \n\t\n   ", maxLen: 160,
			want: NotFound,
		},
		{
			name:   "data line beats colon heading",
			text:   "Root Cause:\nCPK improved from 0.8 to 1.5 after fixture upgrade",
			maxLen: 160,
			want:   "CPK improved from 0.8 to 1.5 after fixture upgrade",
		},
		{
			name:   "uppercase banner is a heading",
			text:   "INTERIM CONTAINMENT ACTIONS (ICA)\nAll 240 pcs in warehouse were screened, 3 rejected",
			maxLen: 160,
			want:   "All 240 pcs in warehouse were screened, 3 rejected",
		},
		{
			name:   "heading marker without digits",
			text:   "Permanent Corrective Actions for the housing defect\nOperator retrained on torque setting",
			maxLen: 160,
			want:   "Operator retrained on torque setting",
		},
		{
			name:   "all lines heading-like falls back to all",
			text:   "D4\nRoot cause",
			maxLen: 160,
			want:   "D4",
		},
		{
			name:      "preferred keyword wins",
			text:      "Lot 2301 sorted at supplier dock, 0 defects found\nCustomer warehouse stock quarantined and relabeled",
			maxLen:    160,
			preferred: []string{"customer warehouse", "warehouse", "stock"},
			want:      "Customer warehouse stock quarantined and relabeled",
		},
		{
			name:   "ties keep first line",
			text:   "first plain sentence without data\nsecond plain sentence without data",
			maxLen: 160,
			want:   "first plain sentence without data",
		},
		{
			name:   "whitespace collapsed",
			text:   "   yield   reached\t 99.5%   on line 3   ",
			maxLen: 160,
			want:   "yield reached 99.5% on line 3",
		},
		{
			name:   "truncated with ellipsis",
			text:   "Screened 1200 pcs at customer warehouse and found 4 scratched housings",
			maxLen: 20,
			want:   "Screened 1200 pcs...",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.text, tt.maxLen, tt.preferred...)
			if got != tt.want {
				t.Errorf("Select() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelect_NeverExceedsMaxLen(t *testing.T) {
	text := strings.Repeat("在制品已全部隔离并完成筛选，数量1200件。", 20) + "\n" + strings.Repeat("x", 500)
	for _, n := range []int{0, 1, 2, 3, 4, 10, 50, 140, 160} {
		got := Select(text, n)
		if c := utf8.RuneCountInString(got); c > n {
			t.Errorf("maxLen %d: got %d runes: %q", n, c, got)
		}
	}
}

func TestSelect_NonPositiveMaxLen(t *testing.T) {
	for _, n := range []int{0, -1} {
		if got := Select(strings.Repeat("inspect 10 lots ", 40), n); got != "" {
			t.Errorf("maxLen %d: got %q, want empty", n, got)
		}
		if got := Select("  \n\t\n", n); got != NotFound {
			t.Errorf("maxLen %d on blank text: got %q, want %q", n, got, NotFound)
		}
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		line      string
		preferred []string
		want      int
	}{
		{"plain words", nil, 0},
		{"lot 7", nil, 3 + 2},
		{"verify lot 7", nil, 3 + 2 + 2},
		{"a b c d", []string{"a", "b", "c", "d"}, 5 + 3},
		{"in-transit shipment held", []string{"in-transit", "shipment"}, 5 + 2},
		{strings.Repeat("y", 40), nil, 1},
	}
	for _, tt := range tests {
		if got := Score(tt.line, tt.preferred); got != tt.want {
			t.Errorf("Score(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestLines(t *testing.T) {
	got := Lines("a  b\r\n\r\n c d\n")
	want := []string{"a b", "c d"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
}
