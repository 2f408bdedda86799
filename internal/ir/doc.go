// Package ir provides the data model types for tsq.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the data model the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - A fact carries exactly Arity positional attribute slots
//   - An absent attribute is a distinct value, never a wildcard
//   - State ids are non-negative int64 values
//   - All JSON tags use snake_case
package ir
