package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tsq/internal/compiler"
	"github.com/roach88/tsq/internal/store"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Database string
	System   string
}

// LoadResult is the payload of a successful load.
type LoadResult struct {
	Database string        `json:"database"`
	System   SystemSummary `json:"system"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <system.cue>",
		Short: "Load a system into a database",
		Long: `Compile and validate a system, then write its states, transitions and
facts to a SQLite database in a single transaction. The database is
created if it does not exist.

A system that collides with rows already stored (for example a state id
that exists) is rejected and nothing is written.

Example:
  tsq load --db ./flipbit.db ./flipbit.cue
  tsq load --db ./lights.db --system dimmer ./lights.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.System, "system", "", "system to load when the file defines several")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runLoad(opts *LoadOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, formatter.GetErrWriter())

	sys, err := LoadSystem(path, opts.System)
	if err != nil {
		return failWith(formatter, "failed to load system", err)
	}

	if errs := compiler.ValidateSystem(sys); len(errs) > 0 {
		return outputValidationErrors(formatter, ValidationResult{
			Systems: []SystemSummary{summarize(sys)},
			Errors:  errs,
		})
	}

	logger.Info("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return failWith(formatter, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := st.Load(ctx, sys); err != nil {
		return failWith(formatter, fmt.Sprintf("failed to load system %q", sys.Name), err)
	}

	summary := summarize(sys)
	logger.Info("system loaded",
		"system", summary.Name,
		"states", summary.States,
		"transitions", summary.Transitions,
		"facts", summary.Facts,
	)

	if formatter.JSON() {
		return formatter.Success(LoadResult{Database: opts.Database, System: summary})
	}
	fmt.Fprintf(formatter.Writer, "\u2713 Loaded %s into %s\n", summary, opts.Database)
	return nil
}
