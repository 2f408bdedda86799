package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/tsq/internal/ir"
)

// LoadFile compiles every system defined in a CUE file.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
func LoadFile(path string) ([]*ir.System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read system file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError("cue", err)
	}

	return CompileSystems(v)
}

// LoadSystemFile compiles one system from a CUE file.
//
// With an empty name the file must define exactly one system. Otherwise
// the system with that label is returned.
func LoadSystemFile(path, name string) (*ir.System, error) {
	systems, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if name == "" {
		if len(systems) != 1 {
			return nil, &CompileError{
				Field:   "system",
				Message: fmt.Sprintf("%s defines %d systems; choose one by name", path, len(systems)),
			}
		}
		return systems[0], nil
	}

	for _, sys := range systems {
		if sys.Name == name {
			return sys, nil
		}
	}
	return nil, &CompileError{
		Field:   "system." + name,
		Message: fmt.Sprintf("system not found in %s", path),
	}
}
