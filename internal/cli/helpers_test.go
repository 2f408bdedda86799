package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const flipBitCUE = `
system: flipbit: {
	states: [{id: 0, initial: true}, {id: 1, initial: true}]
	transitions: [{from: 0, to: 1}, {from: 1, to: 0}]
	facts: [
		{state: 0, name: "b", args: ["0"]},
		{state: 1, name: "b", args: ["1"]},
	]
}
`

const lightsCUE = `
system: light: {
	states: [{id: 0, initial: true}, {id: 1}]
	facts: [{state: 0, name: "off"}, {state: 1, name: "on"}]
}
system: dimmer: {
	states: [{id: 0}, {id: 1}, {id: 2}]
	facts: [{state: 2, name: "level", args: [100]}]
}
`

// writeFile writes content to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs cmd with args and returns its stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// loadedFlipBitDB returns a database path with the flip-bit system loaded.
func loadedFlipBitDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	sysFile := writeFile(t, dir, "flipbit.cue", flipBitCUE)
	db := filepath.Join(dir, "flipbit.db")

	_, _, err := execute(NewLoadCommand(&RootOptions{Format: "text"}), "--db", db, sysFile)
	require.NoError(t, err)
	return db
}
