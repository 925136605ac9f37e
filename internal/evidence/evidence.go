// Package evidence picks the single most quotable line out of a section.
package evidence

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NotFound is returned when a section has no usable line.
const NotFound = "Not Found"

// DefaultMaxLength is the snippet length used when the caller passes <= 0.
const DefaultMaxLength = 160

var uppercaseOnly = regexp.MustCompile(`^[A-Z0-9\s\-()\[\]#:·•]+$`)

var headingMarkers = []string{
	"(ica)",
	"(pca)",
	"interim containment",
	"permanent corrective",
	"validation of",
	"system/process controls",
}

var unitTokens = []string{"%", "mpa", "pcs", "lot", "0/", "sop", "coa", "cpk", "ppm"}

var actionTokens = []string{
	"screen", "sort", "inspect", "segreg", "hold", "stop ship", "lock",
	"verify", "update", "train", "recipe",
	"筛选", "挑选", "检验", "隔离", "冻结", "停止发货", "锁定", "验证", "更新", "培训", "配方",
}

// Select returns the best-scoring line of text, truncated to maxLen runes
// with a trailing "...", or NotFound. Ties go to the earliest line.
// A non-positive maxLen yields "" for non-blank text.
func Select(text string, maxLen int, preferred ...string) string {
	maxLen = max(maxLen, 0)
	lines := Lines(text)
	if len(lines) == 0 {
		return NotFound
	}

	candidates := make([]string, 0, len(lines))
	for _, ln := range lines {
		if !headingLike(ln) {
			candidates = append(candidates, ln)
		}
	}
	if len(candidates) == 0 {
		candidates = lines
	}

	best, bestScore := candidates[0], Score(candidates[0], preferred)
	for _, c := range candidates[1:] {
		if s := Score(c, preferred); s > bestScore {
			best, bestScore = c, s
		}
	}

	best = strings.TrimSpace(best)
	if best == "" {
		return NotFound
	}
	return truncate(best, maxLen)
}

// Lines splits text on any line boundary, collapses runs of whitespace to a
// single space and drops blank lines.
func Lines(text string) []string {
	raw := strings.FieldsFunc(text, isLineBreak)
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if ln := strings.Join(strings.Fields(r), " "); ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1C, 0x1D, 0x1E, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

func headingLike(line string) bool {
	if utf8.RuneCountInString(line) < 18 {
		return true
	}
	if uppercaseOnly.MatchString(line) {
		return true
	}
	lower := strings.ToLower(line)
	digits := hasDigit(line)
	if !digits && containsAny(lower, headingMarkers) {
		return true
	}
	if !digits && strings.HasSuffix(line, ":") {
		return true
	}
	return false
}

// Score rates how much verifiable content a line carries.
func Score(line string, preferred []string) int {
	lower := strings.ToLower(line)
	s := 0
	if hits := countHits(lower, preferred); hits > 0 {
		s += 5 + min(hits, 3)
	}
	if hasDigit(line) {
		s += 3
	}
	if containsAny(lower, unitTokens) {
		s += 2
	}
	if containsAny(lower, actionTokens) {
		s += 2
	}
	if utf8.RuneCountInString(line) >= 40 {
		s++
	}
	return s
}

func countHits(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}

func containsAny(lower string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return strings.TrimRightFunc(string(runes[:maxLen-3]), unicode.IsSpace) + "..."
}
