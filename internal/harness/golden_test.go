package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"flipbit", "flipbit_memory", "flipbit_pushdown", "dimmer", "failing"} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, loadScenario(t, name)))
		})
	}
}

func TestAssertGolden_MemoryMatchesSQLite(t *testing.T) {
	s := loadScenario(t, "flipbit")
	s.Backend = BackendMemory

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	require.NoError(t, AssertGolden(t, "flipbit", result))
}

func TestMarshalResult_Deterministic(t *testing.T) {
	result, err := Run(context.Background(), loadScenario(t, "flipbit"))
	require.NoError(t, err)

	first, err := MarshalResult(result)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := MarshalResult(result)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMarshalResult_OmitsUnsetFields(t *testing.T) {
	state := int64(3)
	expect := true
	r := NewResult("s")
	r.System = "sys"
	r.AddCheck(CheckResult{Name: "c", Formula: "p()", State: &state, Expect: &expect, Error: "boom"}, "boom")

	data, err := MarshalResult(r)
	require.NoError(t, err)
	assert.Equal(t,
		`{"checks":[{"error":"boom","expect":true,"formula":"p()","name":"c","pass":false,"state":3}],"errors":["boom"],"pass":false,"scenario":"s","system":"sys"}`,
		string(data))
}
