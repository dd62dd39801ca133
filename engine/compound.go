package engine

import (
	"strings"
)

// Compound is a prolog compound.
type Compound struct {
	Functor Atom
	Args    []Term
}

func (c *Compound) String() string {
	var sb strings.Builder
	_ = Write(&sb, c, WriteOptions{Quoted: true})
	return sb.String()
}

// Cons returns a list consists of a first element car and the rest cdr.
func Cons(car, cdr Term) Term {
	return &Compound{
		Functor: atomDot,
		Args:    []Term{car, cdr},
	}
}

// List returns a list of ts.
func List(ts ...Term) Term {
	return ListRest(atomEmptyList, ts...)
}

// ListRest returns a list of ts followed by rest.
func ListRest(rest Term, ts ...Term) Term {
	l := rest
	for i := len(ts) - 1; i >= 0; i-- {
		l = Cons(ts[i], l)
	}
	return l
}

// Slice returns the elements of a proper list. It returns false if t is a partial list or not a list.
func Slice(t Term) ([]Term, bool) {
	var ts []Term
	for {
		switch l := Resolve(t).(type) {
		case Atom:
			return ts, l == atomEmptyList
		case *Compound:
			if l.Functor != atomDot || len(l.Args) != 2 {
				return nil, false
			}
			ts = append(ts, l.Args[0])
			t = l.Args[1]
		default:
			return nil, false
		}
	}
}

// PI returns the predicate indicator name/arity of the compound.
func (c *Compound) PI() PI {
	return PI{Name: c.Functor, Arity: len(c.Args)}
}

// PI is a predicate indicator.
type PI struct {
	Name  Atom
	Arity int
}

// NewPI returns a predicate indicator of a callable term.
func NewPI(t Term) (PI, bool) {
	name, args, ok := Callable(t)
	if !ok {
		return PI{}, false
	}
	return PI{Name: name, Arity: len(args)}, true
}

// ParsePI interprets a term of the form Name/Arity.
func ParsePI(t Term) (PI, error) {
	switch t := Resolve(t).(type) {
	case *Variable:
		return PI{}, &InstantiationError{Culprit: t}
	case *Compound:
		if t.Functor != atomSlash || len(t.Args) != 2 {
			return PI{}, &TypeError{Type: "predicate_indicator", Culprit: t}
		}
		name, ok := Resolve(t.Args[0]).(Atom)
		if !ok {
			return PI{}, &TypeError{Type: "predicate_indicator", Culprit: t}
		}
		arity, ok := Resolve(t.Args[1]).(Number)
		if !ok {
			return PI{}, &TypeError{Type: "predicate_indicator", Culprit: t}
		}
		n, ok := arity.Int64()
		if !ok || n < 0 {
			return PI{}, &DomainError{Domain: "not_less_than_zero", Culprit: arity}
		}
		return PI{Name: name, Arity: int(n)}, nil
	default:
		return PI{}, &TypeError{Type: "predicate_indicator", Culprit: t}
	}
}

// Term returns the term Name/Arity.
func (p PI) Term() Term {
	return atomSlash.Apply(p.Name, NewInteger(int64(p.Arity)))
}

func (p PI) String() string {
	return p.Term().String()
}
