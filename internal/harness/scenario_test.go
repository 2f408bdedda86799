package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes a scenario file next to a copy of the flip-bit
// system and returns its path.
func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()

	cue, err := os.ReadFile(filepath.Join("testdata", "systems", "flipbit.cue"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flipbit.cue"), cue, 0o644))

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/flipbit.yaml")
	require.NoError(t, err)

	assert.Equal(t, "flipbit", s.Name)
	assert.Equal(t, filepath.Join("testdata", "systems", "flipbit.cue"), s.System)
	assert.Empty(t, s.Backend)
	assert.False(t, s.Pushdown)
	require.Len(t, s.Checks, 15)

	first := s.Checks[0]
	assert.Equal(t, `b("1")`, first.Formula)
	require.NotNil(t, first.State)
	require.NotNil(t, first.Expect)
	assert.Equal(t, int64(1), *first.State)
	assert.True(t, *first.Expect)

	last := s.Checks[14]
	assert.Nil(t, last.State)
	assert.NotNil(t, last.ExpectStates)
	assert.Empty(t, last.ExpectStates)
}

func TestLoadScenario_AbsoluteSystemPath(t *testing.T) {
	abs, err := filepath.Abs("testdata/systems/flipbit.cue")
	require.NoError(t, err)

	path := writeScenario(t, `
name: abs
description: absolute system path
system: `+abs+`
checks:
  - name: c
    state: 0
    formula: 'b("0")'
    expect: true
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, abs, s.System)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/missing.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: misspelled checks field
system: flipbit.cue
check:
  - name: c
    state: 0
    formula: 'b("0")'
    expect: true
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "missing name",
			body: `
description: d
system: flipbit.cue
checks: [{name: c, state: 0, formula: 'b()', expect: true}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			body: `
name: n
system: flipbit.cue
checks: [{name: c, state: 0, formula: 'b()', expect: true}]
`,
			wantErr: "description is required",
		},
		{
			name: "missing system",
			body: `
name: n
description: d
checks: [{name: c, state: 0, formula: 'b()', expect: true}]
`,
			wantErr: "system is required",
		},
		{
			name: "system file not found",
			body: `
name: n
description: d
system: nowhere.cue
checks: [{name: c, state: 0, formula: 'b()', expect: true}]
`,
			wantErr: "system file not found",
		},
		{
			name: "unknown backend",
			body: `
name: n
description: d
system: flipbit.cue
backend: postgres
checks: [{name: c, state: 0, formula: 'b()', expect: true}]
`,
			wantErr: `backend "postgres"`,
		},
		{
			name: "no checks",
			body: `
name: n
description: d
system: flipbit.cue
checks: []
`,
			wantErr: "checks list is required",
		},
		{
			name: "check without name",
			body: `
name: n
description: d
system: flipbit.cue
checks: [{state: 0, formula: 'b()', expect: true}]
`,
			wantErr: "checks[0]: name is required",
		},
		{
			name: "check without formula",
			body: `
name: n
description: d
system: flipbit.cue
checks: [{name: c, state: 0, expect: true}]
`,
			wantErr: "checks[0]: formula is required",
		},
		{
			name: "unparsable formula",
			body: `
name: n
description: d
system: flipbit.cue
checks: [{name: c, state: 0, formula: 'b() &&', expect: true}]
`,
			wantErr: "unexpected end of formula",
		},
		{
			name: "state without expect",
			body: `
name: n
description: d
system: flipbit.cue
checks: [{name: c, state: 0, formula: 'b()'}]
`,
			wantErr: "expect is required with state",
		},
		{
			name: "state with expect_states",
			body: `
name: n
description: d
system: flipbit.cue
checks: [{name: c, state: 0, formula: 'b()', expect: true, expect_states: [0]}]
`,
			wantErr: "cannot be combined",
		},
		{
			name: "expect without state",
			body: `
name: n
description: d
system: flipbit.cue
checks: [{name: c, formula: 'b()', expect: true}]
`,
			wantErr: "expect requires state",
		},
		{
			name: "no expectation",
			body: `
name: n
description: d
system: flipbit.cue
checks: [{name: c, formula: 'b()'}]
`,
			wantErr: "either state with expect, or expect_states",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
