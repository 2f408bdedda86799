package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tsq/internal/ir"
	"github.com/roach88/tsq/internal/testutil"
)

func TestShowText(t *testing.T) {
	db := loadedFlipBitDB(t)

	out, _, err := execute(NewShowCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Equal(t, `states (2):
  0 (initial)
  1 (initial)
transitions (2):
  0 -> 1
  1 -> 0
facts (2):
  #1 @0 b("0")
  #2 @1 b("1")
`, out)
}

func TestShowJSON(t *testing.T) {
	db := loadedFlipBitDB(t)

	out, _, err := execute(NewShowCommand(&RootOptions{Format: "json"}), "--db", db)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   ShowResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	want := testutil.FlipBit()
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, want.States, resp.Data.States)
	assert.Equal(t, want.Transitions, resp.Data.Transitions)
	assert.Equal(t, want.Facts, resp.Data.Facts)
}

func TestShowState(t *testing.T) {
	db := loadedFlipBitDB(t)

	out, _, err := execute(NewShowCommand(&RootOptions{Format: "json"}), "--db", db, "--state", "1")
	require.NoError(t, err)

	var resp struct {
		Data ShowResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []ir.State{{ID: 1, Initial: true}}, resp.Data.States)
	assert.Equal(t, []ir.Transition{{From: 1, To: 0}}, resp.Data.Transitions)
	require.Len(t, resp.Data.Facts, 1)
	assert.Equal(t, "b", resp.Data.Facts[0].Name)
}

func TestShowUnknownState(t *testing.T) {
	db := loadedFlipBitDB(t)

	out, _, err := execute(NewShowCommand(&RootOptions{Format: "text"}), "--db", db, "--state", "42")
	require.NoError(t, err)
	assert.Equal(t, "states (0):\ntransitions (0):\nfacts (0):\n", out)
}

func TestShowMissingDatabase(t *testing.T) {
	_, _, err := execute(NewShowCommand(&RootOptions{Format: "text"}), "--db", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}
