package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "drpcut <project.drp>",
		Short:        "Batch-convert straight cuts in a Resolve project to J-cuts or L-cuts",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().IntP("offset", "n", 8, "Edit point shift in frames")
	root.Flags().StringP("mode", "m", "J", "Cut mode: J (audio leads) or L (audio trails)")
	root.Flags().Bool("dry-run", false, "Report what would change without writing output")
	root.Flags().String("out", "", "Output directory (default: next to the input)")

	// Hidden tuning flag (internal)
	root.Flags().String("cache", ".cache", "Scratch directory for archive extraction")
	_ = root.Flags().MarkHidden("cache")

	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
