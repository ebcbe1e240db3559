package cuts

import (
	"fmt"

	"github.com/ebaad11/drp-jl-cut-api/internal/types"
)

// Mode selects which side of the video cut the audio edit point moves to.
type Mode string

const (
	// ModeJ moves the audio edit point earlier: the incoming clip's audio
	// leads its video.
	ModeJ Mode = "J"
	// ModeL moves the audio edit point later: the outgoing clip's audio
	// trails its video.
	ModeL Mode = "L"
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "J", "j":
		return ModeJ, nil
	case "L", "l":
		return ModeL, nil
	}
	return "", fmt.Errorf("cut mode must be J or L, got %q", s)
}

type Options struct {
	Offset int64
	Mode   Mode
	DryRun bool
}

// Apply attempts the edit-point shift on every boundary, in the order
// given, and returns one result per boundary. The video track is never
// touched. Per-boundary problems never abort the batch; the returned error
// covers only whole-run conditions (bad options, missing track).
//
// With DryRun set the same feasibility checks run but nothing is written
// back, so the pass is a pure simulation.
func Apply(tl *types.Timeline, boundaries []types.Boundary, opts Options) ([]types.BoundaryResult, error) {
	if opts.Offset < 1 {
		return nil, fmt.Errorf("offset must be a positive frame count, got %d", opts.Offset)
	}
	if opts.Mode != ModeJ && opts.Mode != ModeL {
		return nil, fmt.Errorf("cut mode must be J or L, got %q", string(opts.Mode))
	}
	if tl == nil || tl.Video == nil || tl.Audio == nil {
		return nil, ErrMissingTrack
	}

	results := make([]types.BoundaryResult, 0, len(boundaries))
	for _, b := range boundaries {
		if !b.Eligible {
			results = append(results, types.BoundaryResult{
				Boundary: b,
				Outcome:  types.OutcomeSkippedIneligible,
				Reason:   b.Reason,
			})
			continue
		}
		results = append(results, applyOne(tl, b, opts))
	}
	return results, nil
}

// applyOne validates one boundary against the current model state and, if
// feasible and not a dry run, commits the two new clip values. New values
// are computed first and written only after every check passes, so a
// rejected boundary leaves the model untouched.
func applyOne(tl *types.Timeline, b types.Boundary, opts Options) types.BoundaryResult {
	audio := tl.Audio.Clips
	if b.AudioA < 0 || b.AudioA >= len(audio) || b.AudioB < 0 || b.AudioB >= len(audio) {
		return failed(b, fmt.Sprintf("audio clip index out of range (%d, %d)", b.AudioA, b.AudioB))
	}
	a, c := audio[b.AudioA], audio[b.AudioB]
	if a.End() != b.Frame || c.Start != b.Frame {
		return failed(b, fmt.Sprintf("audio clips no longer meet at frame %d", b.Frame))
	}

	off := opts.Offset
	newA, newB := a, c
	switch opts.Mode {
	case ModeJ:
		// Trim A's tail, extend B's head earlier into its source.
		if a.Duration-off < 1 {
			return infeasible(b, fmt.Sprintf("clip %q would shrink to %d frames (minimum 1)", a.Name, a.Duration-off))
		}
		if _, ok := tl.Source(c.SourceID); !ok {
			return failed(b, fmt.Sprintf("media source %q not found", c.SourceID))
		}
		if c.SourceIn-off < 0 {
			return infeasible(b, fmt.Sprintf("clip %q needs %d more frames of source handle before its in-point", c.Name, off-c.SourceIn))
		}
		newA.Duration -= off
		newB.Start = b.Frame - off
		newB.Duration += off
		newB.SourceIn -= off
	case ModeL:
		// Extend A's tail further into its source, trim B's head.
		if c.Duration-off < 1 {
			return infeasible(b, fmt.Sprintf("clip %q would shrink to %d frames (minimum 1)", c.Name, c.Duration-off))
		}
		src, ok := tl.Source(a.SourceID)
		if !ok {
			return failed(b, fmt.Sprintf("media source %q not found", a.SourceID))
		}
		if src.Length > 0 && a.SourceOut()+off > src.Length {
			return infeasible(b, fmt.Sprintf("clip %q needs %d more frames of source handle after its out-point", a.Name, a.SourceOut()+off-src.Length))
		}
		newA.Duration += off
		newB.Start = b.Frame + off
		newB.Duration -= off
		newB.SourceIn += off
	}

	if !opts.DryRun {
		audio[b.AudioA] = newA
		audio[b.AudioB] = newB
	}
	return types.BoundaryResult{
		Boundary: b,
		Outcome:  types.OutcomeApplied,
		Reason:   fmt.Sprintf("%s-cut: audio edit point moved %d -> %d", opts.Mode, b.Frame, newB.Start),
	}
}

func infeasible(b types.Boundary, reason string) types.BoundaryResult {
	return types.BoundaryResult{Boundary: b, Outcome: types.OutcomeSkippedInfeasible, Reason: reason}
}

func failed(b types.Boundary, reason string) types.BoundaryResult {
	return types.BoundaryResult{Boundary: b, Outcome: types.OutcomeFailed, Reason: reason}
}
