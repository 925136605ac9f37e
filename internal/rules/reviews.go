package rules

import "eightd/internal/sections"

// Reviews holds one result per reviewed section.
type Reviews struct {
	D3 D3Result `json:"D3"`
	D4 D4Result `json:"D4"`
	D5 D5Result `json:"D5"`
	D6 D6Result `json:"D6"`
	D7 D7Result `json:"D7"`
	D8 D8Result `json:"D8"`
}

// ReviewedLabels lists the sections that have rules, in report order.
var ReviewedLabels = []sections.Label{sections.D3, sections.D4, sections.D5, sections.D6, sections.D7, sections.D8}

// EvaluateAll runs every evaluator over its section of m.
func EvaluateAll(m sections.Map) Reviews {
	return Reviews{
		D3: EvaluateD3(m.Get(sections.D3)),
		D4: EvaluateD4(m.Get(sections.D4)),
		D5: EvaluateD5(m.Get(sections.D5), m.Get(sections.D4)),
		D6: EvaluateD6(m.Get(sections.D6)),
		D7: EvaluateD7(m.Get(sections.D7)),
		D8: EvaluateD8(m.Get(sections.D8)),
	}
}

// Get returns the result for l, or nil for D1/D2.
func (r Reviews) Get(l sections.Label) Result {
	switch l {
	case sections.D3:
		return r.D3
	case sections.D4:
		return r.D4
	case sections.D5:
		return r.D5
	case sections.D6:
		return r.D6
	case sections.D7:
		return r.D7
	case sections.D8:
		return r.D8
	}
	return nil
}

// All returns the results in ReviewedLabels order.
func (r Reviews) All() []Result {
	out := make([]Result, 0, len(ReviewedLabels))
	for _, l := range ReviewedLabels {
		out = append(out, r.Get(l))
	}
	return out
}
