package harness

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name string `json:"name"`

	// Formula is the normalized text of the checked formula.
	Formula string `json:"formula"`

	// State, Expect and Holds are set for state checks.
	State  *int64 `json:"state,omitempty"`
	Expect *bool  `json:"expect,omitempty"`
	Holds  *bool  `json:"holds,omitempty"`

	// ExpectStates and States are set for satisfying-set checks.
	ExpectStates []int64 `json:"expect_states,omitempty"`
	States       []int64 `json:"states,omitempty"`

	Pass  bool   `json:"pass"`
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// System is the name of the loaded system.
	System string `json:"system"`

	// Pass indicates overall success.
	// True if every check matches.
	Pass bool `json:"pass"`

	// Checks holds one entry per scenario check, in order.
	Checks []CheckResult `json:"checks"`

	// Errors contains one message per failed check.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario: scenario,
		Pass:     true,
		Checks:   []CheckResult{},
		Errors:   []string{},
	}
}

// AddCheck records a check outcome. A failing check marks the result
// as failed and adds msg to Errors.
func (r *Result) AddCheck(c CheckResult, msg string) {
	r.Checks = append(r.Checks, c)
	if !c.Pass {
		r.AddError(msg)
	}
}

// AddError adds an error message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Snapshot converts the result to a map suitable for ir.MarshalCanonical.
// Optional fields are omitted when unset.
func (r *Result) Snapshot() map[string]any {
	checks := make([]any, len(r.Checks))
	for i, c := range r.Checks {
		m := map[string]any{
			"name":    c.Name,
			"formula": c.Formula,
			"pass":    c.Pass,
		}
		if c.State != nil {
			m["state"] = *c.State
		}
		if c.Expect != nil {
			m["expect"] = *c.Expect
		}
		if c.Holds != nil {
			m["holds"] = *c.Holds
		}
		if c.ExpectStates != nil {
			m["expect_states"] = idList(c.ExpectStates)
		}
		if c.States != nil {
			m["states"] = idList(c.States)
		}
		if c.Error != "" {
			m["error"] = c.Error
		}
		checks[i] = m
	}

	errs := make([]any, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}

	return map[string]any{
		"scenario": r.Scenario,
		"system":   r.System,
		"pass":     r.Pass,
		"checks":   checks,
		"errors":   errs,
	}
}

func idList(ids []int64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
