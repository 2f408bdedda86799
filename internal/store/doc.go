// Package store persists transition systems and answers fact-existence
// queries against them.
//
// A system is three tables:
//   - state: one row per state id, flagged initial or not
//   - transition: directed (from_state, to_state) edges
//   - predicate: ground facts name(attr1, attr2, attr3) pinned to a state
//
// # Matching
//
// Fact patterns match exactly. A concrete attribute compiles to "= ?" and
// an absent attribute compiles to "IS NULL"; absent never acts as a
// wildcard and "" is a concrete value. All values are bound parameters.
//
// # Errors
//
// Writes that break a key or reference fail with CONSTRAINT_VIOLATION.
// Any operation on a closed store, or against a database without the
// schema, fails with STORE_UNAVAILABLE. A pattern that matches nothing, or
// a state that does not exist, is simply false.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Memory provides the same operations over in-process maps for callers
// that need no persistence.
package store
