package ir

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// Arity is the number of positional attribute slots on every fact.
const Arity = 3

// Attr is one positional attribute slot of a fact or pattern.
//
// An Attr is either a concrete string or absent. The zero value is absent.
// Absent is distinct from every string, including the empty string, and it
// is never a wildcard: an absent slot in a pattern matches only an absent
// slot in a fact.
//
// Attr maps absent to SQL NULL (driver.Valuer, sql.Scanner) and to JSON null.
type Attr struct {
	value   string
	present bool
}

// Val returns a concrete attribute holding s.
func Val(s string) Attr {
	return Attr{value: s, present: true}
}

// Absent returns the absent attribute. Equivalent to Attr{}.
func Absent() Attr {
	return Attr{}
}

// AttrFromPtr converts a nil-able string into an Attr.
// nil becomes absent.
func AttrFromPtr(p *string) Attr {
	if p == nil {
		return Absent()
	}
	return Val(*p)
}

// Get returns the concrete value and whether one is present.
func (a Attr) Get() (string, bool) {
	return a.value, a.present
}

// IsAbsent reports whether the slot holds no value.
func (a Attr) IsAbsent() bool {
	return !a.present
}

// Ptr returns a pointer to a copy of the value, or nil when absent.
func (a Attr) Ptr() *string {
	if !a.present {
		return nil
	}
	v := a.value
	return &v
}

// Equal reports exact equality, treating absent as equal only to absent.
func (a Attr) Equal(b Attr) bool {
	return a.present == b.present && a.value == b.value
}

// String renders a concrete value as a Go-quoted string and absent as null.
func (a Attr) String() string {
	if !a.present {
		return "null"
	}
	return strconv.Quote(a.value)
}

// Value implements driver.Valuer. Absent becomes SQL NULL.
func (a Attr) Value() (driver.Value, error) {
	if !a.present {
		return nil, nil
	}
	return a.value, nil
}

// Scan implements sql.Scanner. SQL NULL becomes absent.
func (a *Attr) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Absent()
	case string:
		*a = Val(v)
	case []byte:
		*a = Val(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Attr", src)
	}
	return nil
}

// MarshalJSON encodes absent as null and a value as a JSON string.
func (a Attr) MarshalJSON() ([]byte, error) {
	if !a.present {
		return []byte("null"), nil
	}
	return json.Marshal(a.value)
}

// UnmarshalJSON decodes null as absent and a JSON string as a value.
// Any other JSON type is rejected.
func (a *Attr) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = Absent()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("attribute must be a string or null: %w", err)
	}
	*a = Val(s)
	return nil
}

// Attrs builds a full attribute tuple from leading concrete values.
// Slots beyond len(values) are absent. Returns an error if more than
// Arity values are given.
func Attrs(values ...string) ([Arity]Attr, error) {
	var out [Arity]Attr
	if len(values) > Arity {
		return out, fmt.Errorf("at most %d attributes allowed, got %d", Arity, len(values))
	}
	for i, v := range values {
		out[i] = Val(v)
	}
	return out, nil
}
