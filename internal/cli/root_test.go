package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tsq/internal/ir"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "tsq", cmd.Use)
	assert.Contains(t, cmd.Long, "transition systems")
}

func TestVersionFlag(t *testing.T) {
	out, _, err := execute(NewRootCommand(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, ir.ToolVersion)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"load", "validate", "check", "show", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		command string
		flags   []string
	}{
		{"load", []string{"db", "system"}},
		{"check", []string{"db", "state", "all", "pushdown"}},
		{"show", []string{"db", "state"}},
		{"test", []string{"update", "filter", "parallel"}},
	}

	root := NewRootCommand()
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			sub, _, err := root.Find([]string{tt.command})
			require.NoError(t, err)
			for _, name := range tt.flags {
				assert.NotNil(t, sub.Flags().Lookup(name), "flag --%s", name)
			}
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(NewRootCommand(), "--format", "yaml", "validate", "x.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestDBFlagRequired(t *testing.T) {
	for _, name := range []string{"load", "check", "show"} {
		t.Run(name, func(t *testing.T) {
			args := []string{name}
			if name != "show" {
				args = append(args, "arg")
			}
			_, _, err := execute(NewRootCommand(), args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), `"db" not set`)
		})
	}
}
