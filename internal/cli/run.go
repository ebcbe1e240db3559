package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ebaad11/drp-jl-cut-api/internal/pipeline"
	"github.com/ebaad11/drp-jl-cut-api/internal/server"
)

func run(cmd *cobra.Command, input string) error {
	offset, _ := cmd.Flags().GetInt("offset")
	mode, _ := cmd.Flags().GetString("mode")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	outDir, _ := cmd.Flags().GetString("out")
	cacheDir, _ := cmd.Flags().GetString("cache")

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var bar *progressbar.ProgressBar
	cfg := pipeline.Config{
		InputDRP: absIn,
		OutDir:   outDir,
		Offset:   offset,
		Mode:     mode,
		DryRun:   dryRun,
		CacheDir: cacheDir,
		Logf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		},
		Progress: func(done, total int) {
			if bar == nil {
				bar = progressbar.Default(int64(total), "timelines")
			}
			_ = bar.Set(done)
		},
	}

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}

	s := res.Report.Summary
	if dryRun {
		fmt.Printf("dry run: %s\n", s)
		return nil
	}
	if res.OutPath == "" {
		fmt.Printf("nothing applied (%s); no output written\n", s)
		return nil
	}
	fmt.Printf("%s\n%s\n", s, res.OutPath)
	return nil
}

func serveCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP processing API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			cacheDir, _ := cmd.Flags().GetString("cache")
			srv := server.New(server.Config{CacheDir: cacheDir, Logf: func(format string, args ...any) {
				fmt.Fprintf(os.Stderr, format+"\n", args...)
			}})
			return srv.Run(addr)
		},
	}
	c.Flags().String("addr", ":8080", "Listen address")
	c.Flags().String("cache", ".cache", "Scratch directory for archive extraction")
	return c
}
