package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ebaad11/drp-jl-cut-api/internal/domain/cuts"
	"github.com/ebaad11/drp-jl-cut-api/internal/ports"
	"github.com/ebaad11/drp-jl-cut-api/internal/ports/adapters/drpzip"
	"github.com/ebaad11/drp-jl-cut-api/internal/ports/adapters/resolvexml"
	"github.com/ebaad11/drp-jl-cut-api/internal/usecase"
)

// MaxOffset bounds the edit-point shift; larger values are editor error,
// not a real J/L cut.
const MaxOffset = 100

// ErrSuspectRun means at least one boundary failed with an internal
// inconsistency; no output was written.
var ErrSuspectRun = errors.New("run contains failed boundaries; output not written")

type Config struct {
	InputDRP string
	OutDir   string // defaults to the input's directory
	Offset   int
	Mode     string // "J" or "L"
	DryRun   bool

	// CacheDir is the base directory for extraction scratch space.
	// If empty, defaults to ".cache".
	CacheDir string

	Logf     func(format string, args ...any)
	Progress func(done, total int)
}

func (c Config) Validate() error {
	if c.InputDRP == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.InputDRP); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if !strings.EqualFold(filepath.Ext(c.InputDRP), ".drp") {
		return fmt.Errorf("input must be a .drp project, got %q", filepath.Base(c.InputDRP))
	}
	if c.Offset < 1 || c.Offset > MaxOffset {
		return fmt.Errorf("offset must be between 1 and %d frames, got %d", MaxOffset, c.Offset)
	}
	if _, err := cuts.ParseMode(c.Mode); err != nil {
		return err
	}
	return nil
}

type Result struct {
	Report  cuts.Report
	OutPath string // empty when nothing was written
}

// Run validates the config, wires the concrete adapters and executes one
// batch. Scratch space lives under CacheDir and is removed afterwards.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("config: %w", err)
	}
	mode, _ := cuts.ParseMode(cfg.Mode)

	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	baseCache := cfg.CacheDir
	if baseCache == "" {
		baseCache = ".cache"
	}
	if err := os.MkdirAll(baseCache, 0o755); err != nil {
		return Result{}, err
	}
	workDir, err := os.MkdirTemp(baseCache, "drp-extract-*")
	if err != nil {
		return Result{}, err
	}
	defer os.RemoveAll(workDir)
	logf("workspace: %s", workDir)

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = filepath.Dir(cfg.InputDRP)
	}
	outPath := filepath.Join(outDir, drpzip.OutputName(cfg.InputDRP, cfg.Mode))

	uc := usecase.New(usecase.Deps{
		Archive: drpzip.New(),
		Store:   resolvexml.New(),
	})
	res, err := uc.Run(ctx, usecase.Input{
		InputDRP: cfg.InputDRP,
		WorkDir:  workDir,
		OutPath:  outPath,
		Offset:   int64(cfg.Offset),
		Mode:     mode,
		DryRun:   cfg.DryRun,
		Logf:     logf,
		Progress: cfg.Progress,
	})
	if err != nil {
		return Result{}, err
	}

	logf("%s", res.Report.Summary)
	if res.Report.HasFailed() {
		return Result{Report: res.Report}, ErrSuspectRun
	}
	out := Result{Report: res.Report}
	if res.Wrote {
		out.OutPath = outPath
		logf("wrote %s", outPath)
	}
	return out, nil
}

// ensure adapters implement ports
var _ ports.Archive = (*drpzip.Adapter)(nil)
var _ ports.TimelineStore = (*resolvexml.Adapter)(nil)
