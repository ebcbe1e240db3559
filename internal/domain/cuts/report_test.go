package cuts

import (
	"strings"
	"testing"

	"github.com/ebaad11/drp-jl-cut-api/internal/types"
)

func TestReport_FinalizeCounts(t *testing.T) {
	var r Report
	r.Add(
		types.BoundaryResult{Outcome: types.OutcomeApplied},
		types.BoundaryResult{Outcome: types.OutcomeApplied},
		types.BoundaryResult{Outcome: types.OutcomeSkippedIneligible},
		types.BoundaryResult{Outcome: types.OutcomeSkippedInfeasible},
	)
	r.Finalize()

	want := Summary{Boundaries: 4, Applied: 2, SkippedIneligible: 1, SkippedInfeasible: 1}
	if r.Summary != want {
		t.Fatalf("summary = %+v, want %+v", r.Summary, want)
	}
	if r.HasFailed() {
		t.Fatalf("no failed results expected")
	}

	r.Add(types.BoundaryResult{Outcome: types.OutcomeFailed})
	r.Finalize()
	if !r.HasFailed() || r.Summary.Failed != 1 || r.Summary.Boundaries != 5 {
		t.Fatalf("failed result not accounted: %+v", r.Summary)
	}
}

func TestSummary_String(t *testing.T) {
	s := Summary{Boundaries: 3, Applied: 1, SkippedIneligible: 1, SkippedInfeasible: 1}
	got := s.String()
	for _, want := range []string{"3 boundaries", "1 applied", "1 ineligible", "1 infeasible", "0 failed"} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary %q missing %q", got, want)
		}
	}
}
