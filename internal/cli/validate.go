package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tsq/internal/compiler"
	"github.com/roach88/tsq/internal/ir"
)

// SystemSummary counts the rows of one system.
type SystemSummary struct {
	Name        string `json:"name"`
	States      int    `json:"states"`
	Transitions int    `json:"transitions"`
	Facts       int    `json:"facts"`
}

func summarize(sys *ir.System) SystemSummary {
	return SystemSummary{
		Name:        sys.Name,
		States:      len(sys.States),
		Transitions: len(sys.Transitions),
		Facts:       len(sys.Facts),
	}
}

func (s SystemSummary) String() string {
	return fmt.Sprintf("%s (%d states, %d transitions, %d facts)", s.Name, s.States, s.Transitions, s.Facts)
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Systems []SystemSummary            `json:"systems"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <system.cue>",
		Short: "Validate systems without loading them",
		Long: `Compile every system in a CUE file and check the key and reference
rules the store enforces: non-negative unique state ids, unique
transitions, unique fact ids, and no references to undeclared states.

Nothing is written. Use load to store a valid system.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	logger := newLogger(opts, formatter.GetErrWriter())

	systems, err := LoadSystems(path)
	if err != nil {
		return failWith(formatter, "failed to load systems", err)
	}

	result := ValidationResult{Valid: true, Systems: make([]SystemSummary, 0, len(systems))}
	for _, sys := range systems {
		logger.Debug("validating system", "system", sys.Name)
		result.Systems = append(result.Systems, summarize(sys))
		result.Errors = append(result.Errors, compiler.ValidateSystem(sys)...)
	}

	if len(result.Errors) > 0 {
		result.Valid = false
		return outputValidationErrors(formatter, result)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	for _, s := range result.Systems {
		fmt.Fprintf(formatter.Writer, "\u2713 %s\n", s)
	}
	fmt.Fprintln(formatter.Writer, "\u2713 All systems valid")
	return nil
}

// outputValidationErrors outputs validation errors and returns an
// ExitFailure error.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.JSON() {
		if err := formatter.Failure(errs[0].Code, errs[0].Message, result); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(formatter.Writer, "\u2717 Validation failed")
		fmt.Fprintln(formatter.Writer)
		for _, e := range errs {
			fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", e.Code, e.Field, e.Message)
		}
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
