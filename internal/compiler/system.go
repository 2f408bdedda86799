package compiler

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue"

	"github.com/roach88/tsq/internal/ir"
)

// CompileSystems compiles every entry of the top-level "system" struct,
// in declaration order:
//
//	system: flipbit: {
//		states: [{id: 0, initial: true}, {id: 1}]
//		transitions: [{from: 0, to: 1}]
//		facts: [{state: 0, name: "b", args: ["0"]}]
//	}
func CompileSystems(root cue.Value) ([]*ir.System, error) {
	if err := root.Err(); err != nil {
		return nil, formatCUEError("cue", err)
	}

	systemsVal := root.LookupPath(cue.ParsePath("system"))
	if !systemsVal.Exists() {
		return nil, &CompileError{
			Field:   "system",
			Message: "no system defined",
			Pos:     root.Pos(),
		}
	}

	iter, err := systemsVal.Fields()
	if err != nil {
		return nil, formatCUEError("system", err)
	}

	var systems []*ir.System
	for iter.Next() {
		sys, err := compileSystem(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		systems = append(systems, sys)
	}
	return systems, nil
}

// CompileSystem parses a CUE value into a System.
//
// The CUE value should be the system struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`system: flipbit: { ... }`)
//	sys, err := CompileSystem(v.LookupPath(cue.ParsePath("system.flipbit")))
//
// The system is named after the last path label.
func CompileSystem(v cue.Value) (*ir.System, error) {
	var name string
	if labels := v.Path().Selectors(); len(labels) > 0 {
		name = labels[len(labels)-1].String()
	}
	return compileSystem(name, v)
}

func compileSystem(name string, v cue.Value) (*ir.System, error) {
	prefix := "system." + name
	if err := v.Err(); err != nil {
		return nil, formatCUEError(prefix, err)
	}

	sys := &ir.System{
		Name:        name,
		States:      []ir.State{},
		Transitions: []ir.Transition{},
		Facts:       []ir.Fact{},
	}

	statesVal := v.LookupPath(cue.ParsePath("states"))
	if !statesVal.Exists() {
		return nil, &CompileError{
			Field:   prefix + ".states",
			Message: "states are required",
			Pos:     v.Pos(),
		}
	}
	err := eachElem(statesVal, prefix+".states", func(field string, elem cue.Value) error {
		st, err := parseState(field, elem)
		if err != nil {
			return err
		}
		sys.States = append(sys.States, st)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// transitions and facts are optional
	if tv := v.LookupPath(cue.ParsePath("transitions")); tv.Exists() {
		err := eachElem(tv, prefix+".transitions", func(field string, elem cue.Value) error {
			tr, err := parseTransition(field, elem)
			if err != nil {
				return err
			}
			sys.Transitions = append(sys.Transitions, tr)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if fv := v.LookupPath(cue.ParsePath("facts")); fv.Exists() {
		var explicit []bool
		err := eachElem(fv, prefix+".facts", func(field string, elem cue.Value) error {
			f, hasID, err := parseFact(field, elem)
			if err != nil {
				return err
			}
			sys.Facts = append(sys.Facts, f)
			explicit = append(explicit, hasID)
			return nil
		})
		if err != nil {
			return nil, err
		}
		assignFactIDs(sys.Facts, explicit)
	}

	return sys, nil
}

// assignFactIDs numbers facts declared without an id, in declaration
// order, starting after the highest explicit id (or at 1).
func assignFactIDs(facts []ir.Fact, explicit []bool) {
	var next int64
	for i, f := range facts {
		if explicit[i] && f.ID > next {
			next = f.ID
		}
	}
	for i := range facts {
		if !explicit[i] {
			next++
			facts[i].ID = next
		}
	}
}

// eachElem iterates a CUE list, passing each element with its field path.
func eachElem(list cue.Value, field string, fn func(field string, elem cue.Value) error) error {
	iter, err := list.List()
	if err != nil {
		return formatCUEError(field, err)
	}
	for i := 0; iter.Next(); i++ {
		if err := fn(fmt.Sprintf("%s[%d]", field, i), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func parseState(field string, v cue.Value) (ir.State, error) {
	var st ir.State

	id, err := requireInt(field, "id", v)
	if err != nil {
		return st, err
	}
	st.ID = id

	if iv := v.LookupPath(cue.ParsePath("initial")); iv.Exists() {
		initial, err := iv.Bool()
		if err != nil {
			return st, formatCUEError(field+".initial", err)
		}
		st.Initial = initial
	}
	return st, nil
}

func parseTransition(field string, v cue.Value) (ir.Transition, error) {
	var tr ir.Transition

	from, err := requireInt(field, "from", v)
	if err != nil {
		return tr, err
	}
	to, err := requireInt(field, "to", v)
	if err != nil {
		return tr, err
	}
	tr.From, tr.To = from, to
	return tr, nil
}

// parseFact returns the fact and whether its id was given explicitly.
func parseFact(field string, v cue.Value) (ir.Fact, bool, error) {
	var f ir.Fact

	hasID := false
	if idVal := v.LookupPath(cue.ParsePath("id")); idVal.Exists() {
		id, err := idVal.Int64()
		if err != nil {
			return f, false, formatCUEError(field+".id", err)
		}
		f.ID = id
		hasID = true
	}

	stateID, err := requireInt(field, "state", v)
	if err != nil {
		return f, false, err
	}
	f.StateID = stateID

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return f, false, &CompileError{
			Field:   field + ".name",
			Message: "fact name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return f, false, formatCUEError(field+".name", err)
	}
	f.Name = name

	if argsVal := v.LookupPath(cue.ParsePath("args")); argsVal.Exists() {
		attrs, err := parseArgs(field+".args", argsVal)
		if err != nil {
			return f, false, err
		}
		f.Attrs = attrs
	}

	return f, hasID, nil
}

// parseArgs reads up to ir.Arity arguments. null is absent; integers are
// taken as their decimal text. Missing trailing arguments are absent.
func parseArgs(field string, v cue.Value) ([ir.Arity]ir.Attr, error) {
	var attrs [ir.Arity]ir.Attr

	iter, err := v.List()
	if err != nil {
		return attrs, formatCUEError(field, err)
	}

	for i := 0; iter.Next(); i++ {
		elem := iter.Value()
		if i >= ir.Arity {
			return attrs, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("at most %d arguments allowed", ir.Arity),
				Pos:     elem.Pos(),
			}
		}

		elemField := fmt.Sprintf("%s[%d]", field, i)
		switch elem.Kind() {
		case cue.NullKind:
			attrs[i] = ir.Absent()
		case cue.StringKind:
			s, err := elem.String()
			if err != nil {
				return attrs, formatCUEError(elemField, err)
			}
			attrs[i] = ir.Val(s)
		case cue.IntKind:
			n, err := elem.Int64()
			if err != nil {
				return attrs, formatCUEError(elemField, err)
			}
			attrs[i] = ir.Val(strconv.FormatInt(n, 10))
		default:
			return attrs, &CompileError{
				Field:   elemField,
				Message: fmt.Sprintf("argument must be a string, integer or null, got %v", elem.IncompleteKind()),
				Pos:     elem.Pos(),
			}
		}
	}
	return attrs, nil
}

func requireInt(field, name string, v cue.Value) (int64, error) {
	iv := v.LookupPath(cue.ParsePath(name))
	if !iv.Exists() {
		return 0, &CompileError{
			Field:   field + "." + name,
			Message: name + " is required",
			Pos:     v.Pos(),
		}
	}
	n, err := iv.Int64()
	if err != nil {
		return 0, formatCUEError(field+"."+name, err)
	}
	return n, nil
}
