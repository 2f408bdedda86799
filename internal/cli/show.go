package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/tsq/internal/formula"
	"github.com/roach88/tsq/internal/ir"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	State    int64
}

// ShowResult lists stored rows. With --state it holds that state, its
// outgoing transitions and its facts.
type ShowResult struct {
	States      []ir.State      `json:"states"`
	Transitions []ir.Transition `json:"transitions"`
	Facts       []ir.Fact       `json:"facts"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List stored states, transitions and facts",
		Long: `List the contents of a database in ascending id order.

With --state only that state, its outgoing transitions and its facts
are listed.

Example:
  tsq show --db ./flipbit.db
  tsq show --db ./flipbit.db --state 1 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().Int64Var(&opts.State, "state", 0, "show a single state")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runShow(opts *ShowOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, formatter.GetErrWriter())

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

	var result ShowResult
	if cmd.Flags().Changed("state") {
		result, err = showState(ctx, st, opts.State)
	} else {
		result, err = showAll(ctx, st)
	}
	if err != nil {
		return failWith(formatter, "failed to read database", err)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	writeShowText(formatter.Writer, result)
	return nil
}

type showReader interface {
	ReadStates(ctx context.Context) ([]ir.State, error)
	ReadTransitions(ctx context.Context) ([]ir.Transition, error)
	ReadAllFacts(ctx context.Context) ([]ir.Fact, error)
	Successors(ctx context.Context, stateID int64) ([]int64, error)
	ReadFacts(ctx context.Context, stateID int64) ([]ir.Fact, error)
}

func showAll(ctx context.Context, r showReader) (ShowResult, error) {
	states, err := r.ReadStates(ctx)
	if err != nil {
		return ShowResult{}, err
	}
	transitions, err := r.ReadTransitions(ctx)
	if err != nil {
		return ShowResult{}, err
	}
	facts, err := r.ReadAllFacts(ctx)
	if err != nil {
		return ShowResult{}, err
	}
	return ShowResult{States: states, Transitions: transitions, Facts: facts}, nil
}

func showState(ctx context.Context, r showReader, id int64) (ShowResult, error) {
	all, err := r.ReadStates(ctx)
	if err != nil {
		return ShowResult{}, err
	}
	result := ShowResult{States: []ir.State{}}
	for _, s := range all {
		if s.ID == id {
			result.States = append(result.States, s)
		}
	}

	next, err := r.Successors(ctx, id)
	if err != nil {
		return ShowResult{}, err
	}
	result.Transitions = make([]ir.Transition, len(next))
	for i, to := range next {
		result.Transitions[i] = ir.Transition{From: id, To: to}
	}

	result.Facts, err = r.ReadFacts(ctx, id)
	if err != nil {
		return ShowResult{}, err
	}
	return result, nil
}

func writeShowText(w io.Writer, r ShowResult) {
	fmt.Fprintf(w, "states (%d):\n", len(r.States))
	for _, s := range r.States {
		if s.Initial {
			fmt.Fprintf(w, "  %d (initial)\n", s.ID)
		} else {
			fmt.Fprintf(w, "  %d\n", s.ID)
		}
	}

	fmt.Fprintf(w, "transitions (%d):\n", len(r.Transitions))
	for _, t := range r.Transitions {
		fmt.Fprintf(w, "  %d -> %d\n", t.From, t.To)
	}

	fmt.Fprintf(w, "facts (%d):\n", len(r.Facts))
	for _, f := range r.Facts {
		atom := formula.Atomic{Name: f.Name, Attrs: f.Attrs}
		fmt.Fprintf(w, "  #%d @%d %s\n", f.ID, f.StateID, atom.String())
	}
}
