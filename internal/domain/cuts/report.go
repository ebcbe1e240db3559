package cuts

import (
	"fmt"

	"github.com/ebaad11/drp-jl-cut-api/internal/types"
)

// Report aggregates boundary outcomes across every timeline in a run.
type Report struct {
	Results []types.BoundaryResult `json:"results"`
	Summary Summary                `json:"summary"`
}

type Summary struct {
	Boundaries        int `json:"boundaries"`
	Applied           int `json:"applied"`
	SkippedIneligible int `json:"skipped_ineligible"`
	SkippedInfeasible int `json:"skipped_infeasible"`
	Failed            int `json:"failed"`
}

func (r *Report) Add(results ...types.BoundaryResult) {
	r.Results = append(r.Results, results...)
}

// Finalize recomputes the summary from the results. Call once after the
// last Add; safe to call again.
func (r *Report) Finalize() {
	var s Summary
	s.Boundaries = len(r.Results)
	for _, res := range r.Results {
		switch res.Outcome {
		case types.OutcomeApplied:
			s.Applied++
		case types.OutcomeSkippedIneligible:
			s.SkippedIneligible++
		case types.OutcomeSkippedInfeasible:
			s.SkippedInfeasible++
		case types.OutcomeFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// HasFailed reports whether any boundary hit an internal inconsistency.
// A run with failed results is suspect and its output must not be written.
func (r *Report) HasFailed() bool {
	for _, res := range r.Results {
		if res.Outcome == types.OutcomeFailed {
			return true
		}
	}
	return false
}

func (s Summary) String() string {
	return fmt.Sprintf("%d boundaries: %d applied, %d ineligible, %d infeasible, %d failed",
		s.Boundaries, s.Applied, s.SkippedIneligible, s.SkippedInfeasible, s.Failed)
}
