package engine

import (
	"bytes"
	"fmt"
	"strings"
)

// Term is a prolog term.
//
// The set of terms is closed: *Variable, Atom, Number, Complex, String, Bool, DateTime, TimeSpan, Binary and *Compound.
type Term interface {
	fmt.Stringer
	term()
}

func (*Variable) term() {}
func (Atom) term()      {}
func (Number) term()    {}
func (Complex) term()   {}
func (String) term()    {}
func (Bool) term()      {}
func (DateTime) term()  {}
func (TimeSpan) term()  {}
func (Binary) term()    {}
func (*Compound) term() {}

// Resolve follows the variable chain and returns the first non-variable term or the last free variable.
func Resolve(t Term) Term {
	for {
		v, ok := t.(*Variable)
		if !ok || v.Ref == nil {
			return t
		}
		t = v.Ref
	}
}

// Callable checks if t is an atom or a compound and returns its name and arguments.
func Callable(t Term) (Atom, []Term, bool) {
	switch t := Resolve(t).(type) {
	case Atom:
		return t, nil, true
	case *Compound:
		return t.Functor, t.Args, true
	default:
		return "", nil, false
	}
}

// Contains checks if t contains s.
func Contains(t, s Term) bool {
	for stack := []Term{t}; len(stack) > 0; {
		t, stack = Resolve(stack[len(stack)-1]), stack[:len(stack)-1]
		if t == s {
			return true
		}
		if c, ok := t.(*Compound); ok {
			stack = append(stack, c.Args...)
		}
	}
	return false
}

// Rulify returns t if t is in a form of P:-Q, t:-true otherwise.
func Rulify(t Term) (Term, Term) {
	t = Resolve(t)
	if c, ok := t.(*Compound); ok && c.Functor == atomIf && len(c.Args) == 2 {
		return Resolve(c.Args[0]), Resolve(c.Args[1])
	}
	return t, atomTrue
}

// kind ranks terms in the standard order.
func kind(t Term) int {
	switch t.(type) {
	case *Variable:
		return 0
	case Number, Complex:
		return 1
	case Atom:
		return 2
	case String:
		return 3
	case Bool:
		return 4
	case DateTime:
		return 5
	case TimeSpan:
		return 6
	case Binary:
		return 7
	case *Compound:
		return 8
	default:
		panic(fmt.Sprintf("unknown term kind: %T", t))
	}
}

// Compare compares two terms in the standard order of terms.
// It returns a negative number if x < y, 0 if x == y, and a positive number if x > y.
func Compare(x, y Term) int {
	x, y = Resolve(x), Resolve(y)
	if kx, ky := kind(x), kind(y); kx != ky {
		return kx - ky
	}
	switch x := x.(type) {
	case *Variable:
		y := y.(*Variable)
		switch {
		case x == y:
			return 0
		case x.id < y.id:
			return -1
		case x.id > y.id:
			return 1
		default:
			return strings.Compare(fmt.Sprintf("%p", x), fmt.Sprintf("%p", y))
		}
	case Number:
		switch y := y.(type) {
		case Number:
			return x.Cmp(y)
		case Complex:
			return compareComplex(complex(x.Float64(), 0), complex128(y))
		}
	case Complex:
		switch y := y.(type) {
		case Number:
			return compareComplex(complex128(x), complex(y.Float64(), 0))
		case Complex:
			return compareComplex(complex128(x), complex128(y))
		}
	case Atom:
		return strings.Compare(string(x), string(y.(Atom)))
	case String:
		return strings.Compare(string(x), string(y.(String)))
	case Bool:
		y := y.(Bool)
		switch {
		case x == y:
			return 0
		case !bool(x):
			return -1
		default:
			return 1
		}
	case DateTime:
		return x.Time().Compare(y.(DateTime).Time())
	case TimeSpan:
		y := y.(TimeSpan)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case Binary:
		return bytes.Compare(x, y.(Binary))
	case *Compound:
		y := y.(*Compound)
		if d := len(x.Args) - len(y.Args); d != 0 {
			return d
		}
		if d := strings.Compare(string(x.Functor), string(y.Functor)); d != 0 {
			return d
		}
		for i := range x.Args {
			if d := Compare(x.Args[i], y.Args[i]); d != 0 {
				return d
			}
		}
		return 0
	}
	panic(fmt.Sprintf("unknown term kind: %T", x))
}

func compareComplex(x, y complex128) int {
	switch {
	case real(x) < real(y):
		return -1
	case real(x) > real(y):
		return 1
	case imag(x) < imag(y):
		return -1
	case imag(x) > imag(y):
		return 1
	default:
		return 0
	}
}

// Variables returns the free variables in t in depth-first, left-to-right order.
func Variables(t Term) []*Variable {
	var (
		vs   []*Variable
		seen = map[*Variable]struct{}{}
	)
	for stack := []Term{t}; len(stack) > 0; {
		t, stack = Resolve(stack[len(stack)-1]), stack[:len(stack)-1]
		switch t := t.(type) {
		case *Variable:
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			vs = append(vs, t)
		case *Compound:
			for i := len(t.Args) - 1; i >= 0; i-- {
				stack = append(stack, t.Args[i])
			}
		}
	}
	return vs
}
