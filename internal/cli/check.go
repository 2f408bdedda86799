package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tsq/internal/eval"
	"github.com/roach88/tsq/internal/formula"
	"github.com/roach88/tsq/internal/querysql"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Database string
	State    int64
	All      bool
	Pushdown bool

	// TraceIDs allows overriding the trace id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	TraceIDs TraceIDGenerator
}

// CheckResult is the payload of the check command. Holds is set for a
// single state, States for --all.
type CheckResult struct {
	Formula string  `json:"formula"`
	State   *int64  `json:"state,omitempty"`
	Holds   *bool   `json:"holds,omitempty"`
	States  []int64 `json:"states,omitempty"`
	Total   int     `json:"total,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return newCheckCommand(&CheckOptions{RootOptions: rootOpts})
}

func newCheckCommand(opts *CheckOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <formula>",
		Short: "Evaluate a formula against stored states",
		Long: `Evaluate a propositional formula over the facts stored in a database.

With --state the formula is evaluated at one state; the command exits 1
when it does not hold. A state that was never stored has no facts, so
every atom is false there. With --all the command lists every stored
state where the formula holds.

Formula syntax: atoms are name(arg, ...) with string or number
arguments and null for an absent attribute; combine with !, && and ||.

Example:
  tsq check --db ./flipbit.db --state 1 'b("1") && !b("0")'
  tsq check --db ./flipbit.db --all 'b("0") || b("1")' --pushdown`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().Int64Var(&opts.State, "state", 0, "state to evaluate the formula at")
	cmd.Flags().BoolVar(&opts.All, "all", false, "list every stored state where the formula holds")
	cmd.Flags().BoolVar(&opts.Pushdown, "pushdown", false, "evaluate the whole formula as one SQL query")
	_ = cmd.MarkFlagRequired("db")
	cmd.MarkFlagsOneRequired("state", "all")
	cmd.MarkFlagsMutuallyExclusive("state", "all")

	return cmd
}

func runCheck(opts *CheckOptions, text string, cmd *cobra.Command) error {
	traceIDs := opts.TraceIDs
	if traceIDs == nil {
		traceIDs = UUIDv7Generator{}
	}

	formatter := newFormatter(opts.RootOptions, cmd)
	formatter.TraceID = traceIDs.Generate()
	logger := newLogger(opts.RootOptions, formatter.GetErrWriter()).With("trace_id", formatter.TraceID)

	f, err := formula.Parse(text)
	if err != nil {
		return failWith(formatter, "invalid formula", err)
	}

	st, err := openExistingStore(opts.Database)
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

	ev := eval.New(st, eval.WithLogger(logger), eval.WithPushdown(opts.Pushdown))
	result := CheckResult{Formula: formula.String(f)}

	if opts.All {
		states, err := st.ReadStates(ctx)
		if err != nil {
			return failWith(formatter, "failed to read states", err)
		}
		ids := make([]int64, len(states))
		for i, s := range states {
			ids[i] = s.ID
		}

		var holding []int64
		if opts.Pushdown {
			holding, err = st.SatisfyingStates(ctx, f)
			if errors.Is(err, querysql.ErrTooComplex) {
				logger.Debug("push-down declined, evaluating per state", "reason", err.Error())
				holding, err = ev.Satisfying(ctx, f, ids)
			}
		} else {
			holding, err = ev.Satisfying(ctx, f, ids)
		}
		if err != nil {
			return failWith(formatter, "evaluation failed", err)
		}

		result.States = holding
		result.Total = len(ids)
		logger.Debug("formula checked", "formula", result.Formula, "states", len(holding), "of", len(ids))

		if formatter.JSON() {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "%s holds in %d of %d states: %s\n",
			result.Formula, len(holding), len(ids), joinIDs(holding))
		return nil
	}

	holds, err := ev.Evaluate(ctx, f, opts.State)
	if err != nil {
		return failWith(formatter, "evaluation failed", err)
	}

	result.State = &opts.State
	result.Holds = &holds
	logger.Debug("formula checked", "formula", result.Formula, "state", opts.State, "holds", holds)

	if holds {
		if formatter.JSON() {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "\u2713 %s holds at state %d\n", result.Formula, opts.State)
		return nil
	}

	message := fmt.Sprintf("%s does not hold at state %d", result.Formula, opts.State)
	if formatter.JSON() {
		if err := formatter.Failure(ErrCodeCheckFailed, message, result); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "\u2717 %s\n", message)
	}
	return NewExitError(ExitFailure, message)
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
