package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/tsq/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update   bool   // regenerate golden files
	Filter   string // scenario filter (glob pattern)
	Parallel int    // scenarios run concurrently
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario.yaml|dir>...",
		Short: "Run check scenarios",
		Long: `Run YAML check scenarios. Each scenario loads its system into a fresh
store and evaluates every check. Directories are searched recursively
for .yaml and .yml files.

When golden/<name>.golden exists next to a scenario file, the canonical
JSON report must match it byte for byte. --update rewrites the golden
files instead.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  tsq test ./scenarios
  tsq test ./scenarios --filter "flip*"
  tsq test ./scenarios/flipbit.yaml --update
  tsq test ./scenarios --parallel 4
  tsq test ./scenarios --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().IntVarP(&opts.Parallel, "parallel", "p", 1, "number of scenarios to run concurrently")

	return cmd
}

func runTests(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, formatter.GetErrWriter())

	var scenarioFiles []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenario path not found: %s", p), nil)
		}
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to read scenario path", err)
		}
		if !info.IsDir() {
			scenarioFiles = append(scenarioFiles, p)
			continue
		}
		found, err := findScenarioFiles(p, opts.Filter)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to find scenarios", err)
		}
		scenarioFiles = append(scenarioFiles, found...)
	}

	if err := checkDuplicateScenarios(scenarioFiles); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "duplicate scenarios", err)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	if len(scenarioFiles) == 0 {
		if formatter.JSON() {
			return formatter.Success(result)
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Text progress goes to the output writer; JSON output is a single document.
	progress := formatter.Writer
	if formatter.JSON() {
		progress = io.Discard
	}

	// Each scenario gets its own store, so runs are independent. Results
	// are reported in file order regardless of completion order.
	r := harness.New(harness.WithLogger(logger))
	results := make([]ScenarioResult, len(scenarioFiles))
	var g errgroup.Group
	g.SetLimit(max(opts.Parallel, 1))
	for i, file := range scenarioFiles {
		g.Go(func() error {
			results[i] = runScenario(ctx, r, file, opts.Update)
			return nil
		})
	}
	_ = g.Wait()

	for _, scenResult := range results {
		result.Scenarios = append(result.Scenarios, scenResult)
		writeScenarioText(progress, scenResult, opts.Update)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.JSON() {
		if result.Failed > 0 {
			message := fmt.Sprintf("%d scenario(s) failed", result.Failed)
			if err := formatter.Failure(ErrCodeTestFailed, message, result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, message)
		}
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "\u2713 All scenarios passed")
	return nil
}

// findScenarioFiles finds all YAML scenario files in a directory.
// Files under golden/ directories are skipped.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if info.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		// Apply filter if specified
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// checkDuplicateScenarios rejects scenario sets where two files share a
// golden file or a scenario name. Files that fail to load are left for
// runScenario to report.
func checkDuplicateScenarios(files []string) error {
	goldens := make(map[string]string, len(files))
	names := make(map[string]string, len(files))
	for _, file := range files {
		golden := filepath.Clean(goldenFilePath(file))
		if prev, ok := goldens[golden]; ok {
			return fmt.Errorf("%s and %s share golden file %s", prev, file, golden)
		}
		goldens[golden] = file

		scenario, err := harness.LoadScenario(file)
		if err != nil {
			continue
		}
		if prev, ok := names[scenario.Name]; ok {
			return fmt.Errorf("%s and %s share scenario name %q", prev, file, scenario.Name)
		}
		names[scenario.Name] = file
	}
	return nil
}

// runScenario executes a single scenario and returns the result.
func runScenario(ctx context.Context, r *harness.Harness, file string, update bool) ScenarioResult {
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	fail := func(format string, args ...any) ScenarioResult {
		return ScenarioResult{Name: name, File: file, Errors: []string{fmt.Sprintf(format, args...)}}
	}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return fail("failed to load scenario: %v", err)
	}
	name = scenario.Name

	result, err := r.Run(ctx, scenario)
	if err != nil {
		return fail("execution failed: %v", err)
	}

	data, err := harness.MarshalResult(result)
	if err != nil {
		return fail("failed to marshal result: %v", err)
	}

	goldenPath := goldenFilePath(file)
	if update {
		if err := writeGoldenFile(goldenPath, data); err != nil {
			return fail("failed to update golden file: %v", err)
		}
	} else if golden, err := os.ReadFile(goldenPath); err == nil {
		if !bytes.Equal(golden, data) {
			return fail("result does not match golden file %s (run with --update to regenerate)", goldenPath)
		}
	} else if !os.IsNotExist(err) {
		return fail("failed to read golden file: %v", err)
	}

	return ScenarioResult{
		Name:   scenario.Name,
		File:   file,
		Pass:   result.Pass,
		Errors: result.Errors,
	}
}

func writeScenarioText(w io.Writer, r ScenarioResult, update bool) {
	switch {
	case r.Pass && update:
		fmt.Fprintf(w, "\u2713 %s (golden updated)\n", r.Name)
	case r.Pass:
		fmt.Fprintf(w, "\u2713 %s\n", r.Name)
	default:
		fmt.Fprintf(w, "\u2717 %s\n", r.Name)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// writeGoldenFile writes a canonical report as the golden file.
func writeGoldenFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}
