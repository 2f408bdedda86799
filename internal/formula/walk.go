package formula

// Normalize flattens nested conjunctions and disjunctions of the same kind
// and replaces single-operand And/Or nodes by their operand.
//
// The result is logically equivalent to f. Negations are kept as written.
// Parse always returns normalized formulas.
func Normalize(f Formula) Formula {
	switch v := Unwrap(f).(type) {
	case Not:
		return Not{Operand: Normalize(v.Operand)}
	case And:
		ops := make([]Formula, 0, len(v.Operands))
		for _, op := range v.Operands {
			n := Normalize(op)
			if inner, ok := n.(And); ok {
				ops = append(ops, inner.Operands...)
				continue
			}
			ops = append(ops, n)
		}
		switch len(ops) {
		case 0:
			return And{}
		case 1:
			return ops[0]
		}
		return And{Operands: ops}
	case Or:
		ops := make([]Formula, 0, len(v.Operands))
		for _, op := range v.Operands {
			n := Normalize(op)
			if inner, ok := n.(Or); ok {
				ops = append(ops, inner.Operands...)
				continue
			}
			ops = append(ops, n)
		}
		switch len(ops) {
		case 0:
			return Or{}
		case 1:
			return ops[0]
		}
		return Or{Operands: ops}
	default:
		return v
	}
}

// Atoms returns the distinct atomic tests in f in first-occurrence order.
func Atoms(f Formula) []Atomic {
	var out []Atomic
	var visit func(Formula)
	visit = func(f Formula) {
		switch v := Unwrap(f).(type) {
		case Atomic:
			for _, seen := range out {
				if seen.Pattern() == v.Pattern() {
					return
				}
			}
			out = append(out, v)
		case Not:
			visit(v.Operand)
		case And:
			for _, op := range v.Operands {
				visit(op)
			}
		case Or:
			for _, op := range v.Operands {
				visit(op)
			}
		}
	}
	visit(f)
	return out
}

// Depth returns the nesting depth of f. An atom has depth 1.
func Depth(f Formula) int {
	switch v := Unwrap(f).(type) {
	case Not:
		return 1 + Depth(v.Operand)
	case And:
		return 1 + maxDepth(v.Operands)
	case Or:
		return 1 + maxDepth(v.Operands)
	case nil:
		return 0
	default:
		return 1
	}
}

func maxDepth(ops []Formula) int {
	m := 0
	for _, op := range ops {
		if d := Depth(op); d > m {
			m = d
		}
	}
	return m
}

