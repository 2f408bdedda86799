package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tsq/internal/ir"
	"github.com/roach88/tsq/internal/testutil"
)

// createTestStore creates a new file-backed store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createFlipBitStore creates a store loaded with the flip-bit system.
func createFlipBitStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	require.NoError(t, s.Load(context.Background(), testutil.FlipBit()))
	return s
}

// pattern builds a pattern with leading concrete values.
func pattern(name string, values ...string) ir.Pattern {
	attrs, err := ir.Attrs(values...)
	if err != nil {
		panic(err)
	}
	return ir.Pattern{Name: name, Attrs: attrs}
}
