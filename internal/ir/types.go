package ir

// State is one node of the modeled transition system.
//
// ID is non-negative and unique within a system. Initial marks states the
// system may start in; more than one state may be initial.
type State struct {
	ID      int64 `json:"state_id"`
	Initial bool  `json:"is_initial"`
}

// Transition is a directed edge between two states.
// The (From, To) pair is unique. Self-loops are permitted.
type Transition struct {
	From int64 `json:"from_state"`
	To   int64 `json:"to_state"`
}

// Fact is a ground atomic proposition Name(Attrs[0], Attrs[1], Attrs[2])
// that holds in state StateID.
//
// Facts are not deduplicated by content: ID is the sole identity. Two facts
// with identical (StateID, Name, Attrs) are logically equivalent for
// query purposes.
type Fact struct {
	ID      int64       `json:"fact_id"`
	StateID int64       `json:"state_id"`
	Name    string      `json:"name"`
	Attrs   [Arity]Attr `json:"attrs"`
}

// Pattern returns the query-side shape of the fact.
func (f Fact) Pattern() Pattern {
	return Pattern{Name: f.Name, Attrs: f.Attrs}
}

// Pattern is the query-side shape of a fact: a name and an exact
// attribute tuple. It carries no state; the state is supplied when the
// pattern is matched against a store.
type Pattern struct {
	Name  string      `json:"name"`
	Attrs [Arity]Attr `json:"attrs"`
}

// Matches reports whether fact f has exactly this name and attribute
// tuple. Absent slots match only absent slots.
func (p Pattern) Matches(f Fact) bool {
	if p.Name != f.Name {
		return false
	}
	for i := range p.Attrs {
		if !p.Attrs[i].Equal(f.Attrs[i]) {
			return false
		}
	}
	return true
}

// System is a complete transition system as produced by a loader.
type System struct {
	Name        string       `json:"name"`
	States      []State      `json:"states"`
	Transitions []Transition `json:"transitions"`
	Facts       []Fact       `json:"facts"`
}

// InitialStates returns the ids of states marked initial, in declaration order.
func (s *System) InitialStates() []int64 {
	var ids []int64
	for _, st := range s.States {
		if st.Initial {
			ids = append(ids, st.ID)
		}
	}
	return ids
}
