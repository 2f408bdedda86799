package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/tsq/internal/compiler"
	"github.com/roach88/tsq/internal/eval"
	"github.com/roach88/tsq/internal/formula"
	"github.com/roach88/tsq/internal/ir"
	"github.com/roach88/tsq/internal/store"
)

// backend is the store surface a scenario run needs. Implemented by
// *store.Store and *store.Memory.
type backend interface {
	eval.Store
	Load(ctx context.Context, sys *ir.System) error
	ReadStates(ctx context.Context) ([]ir.State, error)
	Close() error
}

// Harness runs scenarios against a fresh store per run.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger for run and check tracing.
//
// Default: a logger that discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	return New(opts...).Run(ctx, scenario)
}

// Run compiles and validates the scenario's system, loads it into a fresh
// store and evaluates every check.
//
// Check failures (wrong truth value, wrong satisfying set, evaluation
// errors) are reported in the Result. Problems that prevent the checks
// from running at all (unreadable system, validation errors, load
// failures) are returned as errors.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	sys, err := compiler.LoadSystemFile(scenario.System, scenario.SystemName)
	if err != nil {
		return nil, fmt.Errorf("load system: %w", err)
	}

	if verrs := compiler.ValidateSystem(sys); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, v := range verrs {
			msgs[i] = v.Error()
		}
		return nil, fmt.Errorf("invalid system %q: %s", sys.Name, strings.Join(msgs, "; "))
	}

	b, err := openBackend(scenario.Backend)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	if err := b.Load(ctx, sys); err != nil {
		return nil, fmt.Errorf("load system %q: %w", sys.Name, err)
	}

	states, err := b.ReadStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("read states: %w", err)
	}
	ids := make([]int64, len(states))
	for i, st := range states {
		ids[i] = st.ID
	}

	ev := eval.New(b,
		eval.WithLogger(h.logger),
		eval.WithPushdown(scenario.Pushdown),
	)

	h.logger.Info("scenario started",
		"scenario", scenario.Name,
		"system", sys.Name,
		"backend", backendName(scenario.Backend),
		"states", len(ids),
	)

	result := NewResult(scenario.Name)
	result.System = sys.Name
	for i, check := range scenario.Checks {
		cr, msg := h.runCheck(ctx, ev, ids, check)
		result.AddCheck(cr, fmt.Sprintf("check %d (%s): %s", i, check.Name, msg))
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"failed", len(result.Errors),
	)
	return result, nil
}

// runCheck evaluates one check. The returned message describes the
// failure and is empty when the check passes.
func (h *Harness) runCheck(ctx context.Context, ev *eval.Evaluator, ids []int64, c Check) (CheckResult, string) {
	cr := CheckResult{Name: c.Name, Formula: c.Formula}

	f, err := formula.Parse(c.Formula)
	if err != nil {
		cr.Error = err.Error()
		return cr, cr.Error
	}
	cr.Formula = formula.String(f)

	if c.State != nil {
		cr.State = c.State
		cr.Expect = c.Expect
		holds, err := ev.Evaluate(ctx, f, *c.State)
		if err != nil {
			cr.Error = err.Error()
			return cr, cr.Error
		}
		cr.Holds = &holds
		cr.Pass = holds == *c.Expect
		if !cr.Pass {
			return cr, fmt.Sprintf("%s at state %d: expected %t, got %t", cr.Formula, *c.State, *c.Expect, holds)
		}
		return cr, ""
	}

	want := slices.Clone(c.ExpectStates)
	slices.Sort(want)
	cr.ExpectStates = want

	got, err := ev.Satisfying(ctx, f, ids)
	if err != nil {
		cr.Error = err.Error()
		return cr, cr.Error
	}
	cr.States = got
	cr.Pass = slices.Equal(want, got)
	if !cr.Pass {
		return cr, fmt.Sprintf("%s: expected states %v, got %v", cr.Formula, want, got)
	}
	return cr, ""
}

func openBackend(name string) (backend, error) {
	switch name {
	case "", BackendSQLite:
		s, err := store.Open(":memory:")
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return s, nil
	case BackendMemory:
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func backendName(name string) string {
	if name == "" {
		return BackendSQLite
	}
	return name
}
