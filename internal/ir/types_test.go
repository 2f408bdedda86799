package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternMatchesExactly(t *testing.T) {
	fact := Fact{ID: 1, StateID: 0, Name: "b", Attrs: [Arity]Attr{Val("1")}}

	tests := []struct {
		name    string
		pattern Pattern
		want    bool
	}{
		{"same", Pattern{Name: "b", Attrs: [Arity]Attr{Val("1")}}, true},
		{"other name", Pattern{Name: "c", Attrs: [Arity]Attr{Val("1")}}, false},
		{"other value", Pattern{Name: "b", Attrs: [Arity]Attr{Val("0")}}, false},
		{"absent is not wildcard", Pattern{Name: "b"}, false},
		{"extra value", Pattern{Name: "b", Attrs: [Arity]Attr{Val("1"), Val("")}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pattern.Matches(fact))
		})
	}
}

func TestFactPattern(t *testing.T) {
	fact := Fact{ID: 7, StateID: 3, Name: "edge", Attrs: [Arity]Attr{Val("a"), Absent(), Val("c")}}
	assert.True(t, fact.Pattern().Matches(fact))
}

func TestSystemInitialStates(t *testing.T) {
	sys := System{States: []State{{ID: 2, Initial: true}, {ID: 0}, {ID: 1, Initial: true}}}
	assert.Equal(t, []int64{2, 1}, sys.InitialStates())
}

func TestFactJSONUsesSnakeCase(t *testing.T) {
	fact := Fact{ID: 1, StateID: 0, Name: "b", Attrs: [Arity]Attr{Val("0")}}
	data, err := json.Marshal(fact)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fact_id":1,"state_id":0,"name":"b","attrs":["0",null,null]}`, string(data))
}
