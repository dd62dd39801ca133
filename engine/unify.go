package engine

import (
	"bytes"
	"fmt"
)

// Unify unifies x and y, binding variables on the trail.
// On failure the bindings made so far are left in place; callers unwind them with UndoTo.
func (e *Env) Unify(x, y Term) bool {
	return e.unify(x, y, e.OccursCheck)
}

// UnifyWithOccursCheck is Unify which never creates a cyclic term.
func (e *Env) UnifyWithOccursCheck(x, y Term) bool {
	return e.unify(x, y, true)
}

// IsUnifiable checks if x and y unify without leaving any binding.
func (e *Env) IsUnifiable(x, y Term) bool {
	m := e.Mark()
	defer e.UndoTo(m)
	return e.Unify(x, y)
}

type pair struct {
	x, y Term
}

func (e *Env) unify(x, y Term, occursCheck bool) bool {
	var seen map[[2]*Compound]struct{}
	for stack := []pair{{x, y}}; len(stack) > 0; {
		var p pair
		p, stack = stack[len(stack)-1], stack[:len(stack)-1]
		x, y := Resolve(p.x), Resolve(p.y)

		if v, ok := y.(*Variable); ok {
			if occursCheck && x != Term(v) && Contains(x, v) {
				return false
			}
			e.Bind(v, x)
			continue
		}
		if v, ok := x.(*Variable); ok {
			if occursCheck && Contains(y, v) {
				return false
			}
			e.Bind(v, y)
			continue
		}

		switch x := x.(type) {
		case *Compound:
			y, ok := y.(*Compound)
			if !ok || x.Functor != y.Functor || len(x.Args) != len(y.Args) {
				return false
			}
			if x == y {
				continue
			}
			// Without occurs check, terms may be cyclic. A pair already being unified needs no second visit.
			if seen == nil {
				seen = map[[2]*Compound]struct{}{}
			}
			k := [2]*Compound{x, y}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			for i := len(x.Args) - 1; i >= 0; i-- {
				stack = append(stack, pair{x.Args[i], y.Args[i]})
			}
		default:
			if !equalAtomic(x, y) {
				return false
			}
		}
	}
	return true
}

// equalAtomic compares two atomic terms by kind-specific equality.
func equalAtomic(x, y Term) bool {
	switch x := x.(type) {
	case Number:
		switch y := y.(type) {
		case Number:
			return x.Cmp(y) == 0
		case Complex:
			return x.equalsComplex(y)
		}
		return false
	case Complex:
		switch y := y.(type) {
		case Number:
			return y.equalsComplex(x)
		case Complex:
			return x == y
		}
		return false
	case Atom, String, Bool, TimeSpan:
		return x == y
	case DateTime:
		y, ok := y.(DateTime)
		return ok && x.Time().Equal(y.Time())
	case Binary:
		y, ok := y.(Binary)
		return ok && bytes.Equal(x, y)
	case *Compound:
		return false
	default:
		panic(fmt.Sprintf("unknown term kind: %T", x))
	}
}
