package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/ebaad11/drp-jl-cut-api/internal/domain/cuts"
	"github.com/ebaad11/drp-jl-cut-api/internal/ports"
	"github.com/ebaad11/drp-jl-cut-api/internal/types"
)

// ErrNoTimelines means the project archive contained no sequence documents.
var ErrNoTimelines = errors.New("no timelines found in project")

type Deps struct {
	Archive ports.Archive
	Store   ports.TimelineStore
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	InputDRP string
	WorkDir  string
	OutPath  string // ignored when DryRun

	Offset int64
	Mode   cuts.Mode
	DryRun bool

	Logf     func(format string, args ...any)
	Progress func(done, total int)
}

type Result struct {
	Report    cuts.Report
	Sequences int
	Wrote     bool
}

// Run executes one batch: unpack the archive, transform every timeline in
// it, and repack into a sibling output archive. Nothing is written unless
// at least one cut applied, no boundary failed, and DryRun is off; the
// input archive is never modified.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	logf := in.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	progress := in.Progress
	if progress == nil {
		progress = func(int, int) {}
	}

	if err := u.d.Archive.Unpack(ctx, in.InputDRP, in.WorkDir); err != nil {
		return Result{}, fmt.Errorf("unpack: %w", err)
	}

	seqs, err := u.d.Store.FindSequences(ctx, in.WorkDir)
	if err != nil {
		return Result{}, err
	}
	if len(seqs) == 0 {
		return Result{}, ErrNoTimelines
	}
	logf("found %d timeline(s)", len(seqs))

	res := Result{Sequences: len(seqs)}
	for i, path := range seqs {
		tl, err := u.d.Store.Load(ctx, path)
		if err != nil {
			return Result{}, err
		}
		results, err := transform(tl, in)
		if err != nil {
			return Result{}, fmt.Errorf("timeline %q: %w", tl.Name, err)
		}
		res.Report.Add(results...)
		logf("timeline %q: %d boundaries", tl.Name, len(results))

		if !in.DryRun && countApplied(results) > 0 {
			if err := u.d.Store.Save(ctx, path, tl); err != nil {
				return Result{}, fmt.Errorf("save timeline %q: %w", tl.Name, err)
			}
		}
		progress(i+1, len(seqs))
	}
	res.Report.Finalize()

	if res.Report.HasFailed() {
		logf("run contains failed boundaries; output will not be written")
		return res, nil
	}
	if in.DryRun || res.Report.Summary.Applied == 0 {
		return res, nil
	}

	if err := u.d.Archive.Repack(ctx, in.WorkDir, in.OutPath); err != nil {
		return Result{}, fmt.Errorf("repack: %w", err)
	}
	res.Wrote = true
	return res, nil
}

func transform(tl *types.Timeline, in Input) ([]types.BoundaryResult, error) {
	boundaries, err := cuts.Detect(tl)
	if err != nil {
		return nil, err
	}
	return cuts.Apply(tl, boundaries, cuts.Options{
		Offset: in.Offset,
		Mode:   in.Mode,
		DryRun: in.DryRun,
	})
}

func countApplied(results []types.BoundaryResult) int {
	n := 0
	for _, r := range results {
		if r.Outcome == types.OutcomeApplied {
			n++
		}
	}
	return n
}
