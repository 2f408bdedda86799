package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrZeroValueIsAbsent(t *testing.T) {
	var a Attr
	assert.True(t, a.IsAbsent())
	assert.True(t, a.Equal(Absent()))

	_, ok := a.Get()
	assert.False(t, ok)
}

func TestAttrAbsentIsNotEmptyString(t *testing.T) {
	assert.False(t, Absent().Equal(Val("")))
	assert.False(t, Val("").IsAbsent())
	assert.False(t, Val("0").Equal(Absent()))
}

func TestAttrString(t *testing.T) {
	assert.Equal(t, "null", Absent().String())
	assert.Equal(t, `"1"`, Val("1").String())
	assert.Equal(t, `"it's \"x\""`, Val(`it's "x"`).String())
}

func TestAttrDriverValue(t *testing.T) {
	v, err := Absent().Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = Val("x").Value()
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestAttrScan(t *testing.T) {
	var a Attr
	require.NoError(t, a.Scan(nil))
	assert.True(t, a.IsAbsent())

	require.NoError(t, a.Scan("v"))
	assert.True(t, a.Equal(Val("v")))

	require.NoError(t, a.Scan([]byte("raw")))
	assert.True(t, a.Equal(Val("raw")))

	assert.Error(t, a.Scan(int64(1)))
}

func TestAttrJSON(t *testing.T) {
	data, err := json.Marshal([]Attr{Val("a"), Absent(), Val("")})
	require.NoError(t, err)
	assert.Equal(t, `["a",null,""]`, string(data))

	var back []Attr
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 3)
	assert.True(t, back[0].Equal(Val("a")))
	assert.True(t, back[1].IsAbsent())
	assert.True(t, back[2].Equal(Val("")))

	var bad Attr
	assert.Error(t, json.Unmarshal([]byte(`1`), &bad))
}

func TestAttrFromPtr(t *testing.T) {
	assert.True(t, AttrFromPtr(nil).IsAbsent())
	s := "x"
	a := AttrFromPtr(&s)
	assert.True(t, a.Equal(Val("x")))
	assert.Equal(t, "x", *a.Ptr())
	assert.Nil(t, Absent().Ptr())
}

func TestAttrs(t *testing.T) {
	attrs, err := Attrs("1")
	require.NoError(t, err)
	assert.True(t, attrs[0].Equal(Val("1")))
	assert.True(t, attrs[1].IsAbsent())
	assert.True(t, attrs[2].IsAbsent())

	_, err = Attrs("a", "b", "c", "d")
	assert.Error(t, err)
}
