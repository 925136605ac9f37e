// Package sections splits a flattened 8D report into its eight labeled phases.
//
// Two modes are supported. Leaky mode searches the whole text once per label,
// so a missing later label lets the earlier section run on into whatever
// follows. Partition mode locates every label token first and slices between
// consecutive positions, so sections never overlap.
package sections

import (
	"regexp"
	"sort"
	"strings"
)

// Label names one 8D phase.
type Label string

const (
	D1 Label = "D1"
	D2 Label = "D2"
	D3 Label = "D3"
	D4 Label = "D4"
	D5 Label = "D5"
	D6 Label = "D6"
	D7 Label = "D7"
	D8 Label = "D8"
)

// Labels is the fixed D1..D8 order.
var Labels = []Label{D1, D2, D3, D4, D5, D6, D7, D8}

// Map holds the text of every section. Keys D1..D8 are always present.
type Map map[Label]string

// Get returns the section text, or "" for an unknown label.
func (m Map) Get(l Label) string {
	return m[l]
}

// Mode selects the segmentation strategy.
type Mode string

const (
	ModeLeaky     Mode = "leaky"
	ModePartition Mode = "partition"
)

// ParseMode maps a config value to a Mode. Empty means leaky.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLeaky:
		return ModeLeaky, true
	case ModePartition:
		return ModePartition, true
	}
	return "", false
}

// Segmenter splits text using its Mode.
type Segmenter struct {
	Mode Mode
}

// Split runs the configured strategy.
func (s Segmenter) Split(text string) Map {
	if s.Mode == ModePartition {
		return Partition(text)
	}
	return Split(text)
}

// sep is the punctuation/whitespace allowed between a label token and its
// content: ASCII and full-width colon, period, ideographic comma and any
// Unicode whitespace.
const sep = `[.、:：\s\v\x{1C}-\x{1F}\x{85}\p{Z}]`

var (
	openers = compile(func(l Label) string { return `(?i)` + string(l) + sep + `*` })
	closers = compile(func(l Label) string { return `(?i)` + string(l) + sep })
	// bounds is the closer rule, also accepted at end of text.
	bounds  = compile(func(l Label) string { return `(?i)` + string(l) + `(?:` + sep + `|$)` })
)

func compile(pattern func(Label) string) map[Label]*regexp.Regexp {
	out := make(map[Label]*regexp.Regexp, len(Labels))
	for _, l := range Labels {
		out[l] = regexp.MustCompile(pattern(l))
	}
	return out
}

func empty() Map {
	m := make(Map, len(Labels))
	for _, l := range Labels {
		m[l] = ""
	}
	return m
}

// Split is the leaky strategy. For each label the first case-insensitive
// token starts the section; it ends at the first following occurrence of the
// next label token that is followed by a separator, or at end of text. D8
// always runs to end of text.
func Split(text string) Map {
	m := empty()
	for i, l := range Labels {
		loc := openers[l].FindStringIndex(text)
		if loc == nil {
			continue
		}
		start := loc[1]
		end := len(text)
		if i+1 < len(Labels) {
			if next := closers[Labels[i+1]].FindStringIndex(text[start:]); next != nil {
				end = start + next[0]
			}
		}
		m[l] = strings.TrimSpace(text[start:end])
	}
	return m
}

type mark struct {
	label      Label
	pos        int
	contentPos int
}

// Partition is the token-position strategy: the first occurrence of every
// label followed by a separator (or end of text) is located, positions are
// sorted and each section spans from its token to the next located token.
// A token glued to a word, as in "D2-style" or "D10", is not a boundary.
// Labels that never occur stay empty.
func Partition(text string) Map {
	m := empty()
	var marks []mark
	for _, l := range Labels {
		loc := bounds[l].FindStringIndex(text)
		if loc == nil {
			continue
		}
		content := openers[l].FindStringIndex(text[loc[0]:])
		marks = append(marks, mark{label: l, pos: loc[0], contentPos: loc[0] + content[1]})
	}
	sort.SliceStable(marks, func(i, j int) bool { return marks[i].pos < marks[j].pos })
	for i, mk := range marks {
		end := len(text)
		if i+1 < len(marks) {
			end = marks[i+1].pos
		}
		if mk.contentPos >= end {
			continue
		}
		m[mk.label] = strings.TrimSpace(text[mk.contentPos:end])
	}
	return m
}
