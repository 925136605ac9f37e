package rules

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var keywordsYAML []byte

// Category is one required item of a section and the words that evidence it.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type sectionKeywords struct {
	Categories []Category `yaml:"categories"`
	Systemic   []string   `yaml:"systemic"`
	Production []string   `yaml:"production"`
	Experiment []string   `yaml:"experiment"`
	Pass       []string   `yaml:"pass"`
	Summary    []string   `yaml:"summary"`
}

// Table holds every section's keyword lists, lower-cased at load time.
type Table struct {
	D3 sectionKeywords `yaml:"d3"`
	D4 sectionKeywords `yaml:"d4"`
	D5 sectionKeywords `yaml:"d5"`
	D6 sectionKeywords `yaml:"d6"`
	D7 sectionKeywords `yaml:"d7"`
	D8 sectionKeywords `yaml:"d8"`
}

var keywords = mustLoadTable(keywordsYAML)

// LoadTable parses a keyword table.
func LoadTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse keyword table: %w", err)
	}
	for _, s := range []*sectionKeywords{&t.D3, &t.D4, &t.D5, &t.D6, &t.D7, &t.D8} {
		for i := range s.Categories {
			s.Categories[i].Keywords = lowerAll(s.Categories[i].Keywords)
		}
		s.Systemic = lowerAll(s.Systemic)
		s.Production = lowerAll(s.Production)
		s.Experiment = lowerAll(s.Experiment)
		s.Pass = lowerAll(s.Pass)
		s.Summary = lowerAll(s.Summary)
	}
	if len(t.D3.Categories) != 5 || len(t.D4.Categories) != 3 || len(t.D5.Categories) != 3 || len(t.D7.Categories) != 2 {
		return nil, fmt.Errorf("keyword table: unexpected category count")
	}
	return &t, nil
}

func mustLoadTable(data []byte) *Table {
	t, err := LoadTable(data)
	if err != nil {
		panic(fmt.Sprintf("load keywords.yaml: %v", err))
	}
	return t
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// matchAny reports whether lower contains any of the (already lower-case) keywords.
func matchAny(lower string, kws []string) bool {
	for _, kw := range kws {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// checkCategories splits categories into found and missing names, in table order.
func checkCategories(lower string, cats []Category) (found, missing []string) {
	found, missing = []string{}, []string{}
	for _, c := range cats {
		if matchAny(lower, c.Keywords) {
			found = append(found, c.Name)
		} else {
			missing = append(missing, c.Name)
		}
	}
	return found, missing
}
