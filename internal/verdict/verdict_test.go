package verdict

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"eightd/internal/rules"
	"eightd/internal/sections"
)

func passingReviews() rules.Reviews {
	return rules.Reviews{
		D3: rules.D3Result{Common: rules.Common{Passed: true}},
		D4: rules.D4Result{Common: rules.Common{Passed: true}},
		D5: rules.D5Result{Common: rules.Common{Passed: true}},
		D6: rules.D6Result{Common: rules.Common{Passed: true}},
		D7: rules.D7Result{Common: rules.Common{Passed: true}},
		D8: rules.D8Result{Common: rules.Common{Passed: true}},
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*rules.Reviews)
		wantPassed bool
		wantFailed []sections.Label
	}{
		{
			name:       "all pass",
			mutate:     func(*rules.Reviews) {},
			wantPassed: true,
			wantFailed: []sections.Label{},
		},
		{
			name:       "D8 failure is ignored",
			mutate:     func(r *rules.Reviews) { r.D8.Passed = false },
			wantPassed: true,
			wantFailed: []sections.Label{},
		},
		{
			name: "failures listed in fixed order",
			mutate: func(r *rules.Reviews) {
				r.D7.Passed = false
				r.D3.Passed = false
				r.D5.Passed = false
			},
			wantPassed: false,
			wantFailed: []sections.Label{sections.D3, sections.D5, sections.D7},
		},
		{
			name:       "single D6 failure",
			mutate:     func(r *rules.Reviews) { r.D6.Passed = false },
			wantPassed: false,
			wantFailed: []sections.Label{sections.D6},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := passingReviews()
			tt.mutate(&r)
			v := Aggregate(r)
			if v.OverallPassed != tt.wantPassed {
				t.Errorf("OverallPassed = %v, want %v", v.OverallPassed, tt.wantPassed)
			}
			if diff := cmp.Diff(tt.wantFailed, v.FailedSections); diff != "" {
				t.Errorf("FailedSections (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluate_EmptyDocumentIsRejected(t *testing.T) {
	v := Evaluate(sections.Split(""))
	if v.OverallPassed {
		t.Fatal("empty document must be rejected")
	}
	if diff := cmp.Diff(CriticalLabels, v.FailedSections); diff != "" {
		t.Errorf("FailedSections (-want +got):\n%s", diff)
	}
	if !v.Reviews.D8.Passed {
		t.Error("D8 always passes")
	}
	if v.Banner() != Rejected {
		t.Errorf("Banner = %q", v.Banner())
	}
	if len(v.PassedLabels()) != 0 {
		t.Errorf("PassedLabels = %v", v.PassedLabels())
	}
}

func TestEvaluate_CompleteReport(t *testing.T) {
	text := `D3: WIP 在制品已隔离；在途物资已暂停发运；客户现场已通知；客户仓库已标识；我司仓库已筛选
D4: 发生机制：夹具磨损。根本原因：点检不足。流出原因：终检漏检。
D5: 整改措施：更换夹具，责任人：王工，完成时间：5月1日
D6: 生产验证：连续3批量产，合格率100%
D7: SOP已修订，操作员已培训
D8: 感谢团队`
	v := Evaluate(sections.Split(text))
	if !v.OverallPassed {
		t.Fatalf("expected approval, failed: %v", v.FailedSections)
	}
	if v.Banner() != Approved {
		t.Errorf("Banner = %q", v.Banner())
	}
	if diff := cmp.Diff(CriticalLabels, v.PassedLabels()); diff != "" {
		t.Errorf("PassedLabels (-want +got):\n%s", diff)
	}
}
