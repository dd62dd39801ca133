package engine

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// Builtin is a predicate implemented in Go. It returns true on success, false on failure, or an error.
//
// When a builtin is called, the continuation of the machine is already set to the goals after it.
// A nondeterministic builtin calls Machine.Redo before making any binding.
type Builtin func(m *Machine, args []Term) (bool, error)

// BuiltinID identifies a registered builtin. The zero value means no builtin.
type BuiltinID int

func registerCoreBuiltins(db *Database) {
	for _, b := range []struct {
		name  Atom
		arity int
		f     Builtin
	}{
		// Unification and comparison.
		{name: atomEqual, arity: 2, f: unify},
		{name: `\=`, arity: 2, f: notUnifiable},
		{name: "unify_with_occurs_check", arity: 2, f: unifyWithOccursCheck},
		{name: "==", arity: 2, f: compareWith(func(o int) bool { return o == 0 })},
		{name: `\==`, arity: 2, f: compareWith(func(o int) bool { return o != 0 })},
		{name: "@<", arity: 2, f: compareWith(func(o int) bool { return o < 0 })},
		{name: "@>", arity: 2, f: compareWith(func(o int) bool { return o > 0 })},
		{name: "@=<", arity: 2, f: compareWith(func(o int) bool { return o <= 0 })},
		{name: "@>=", arity: 2, f: compareWith(func(o int) bool { return o >= 0 })},
		{name: "compare", arity: 3, f: compare},

		// Type tests.
		{name: "var", arity: 1, f: typeTest(isVariable)},
		{name: "nonvar", arity: 1, f: typeTest(func(t Term) bool { return !isVariable(t) })},
		{name: "atom", arity: 1, f: typeTest(isAtom)},
		{name: "number", arity: 1, f: typeTest(isNumeric)},
		{name: "integer", arity: 1, f: typeTest(isInteger)},
		{name: "float", arity: 1, f: typeTest(isFloat)},
		{name: "atomic", arity: 1, f: typeTest(isAtomic)},
		{name: "compound", arity: 1, f: typeTest(isCompound)},
		{name: "callable", arity: 1, f: typeTest(isCallable)},
		{name: "is_list", arity: 1, f: typeTest(isList)},
		{name: "string", arity: 1, f: typeTest(isString)},
		{name: "ground", arity: 1, f: typeTest(func(t Term) bool { return len(Variables(t)) == 0 })},

		// Term construction.
		{name: "functor", arity: 3, f: functor},
		{name: "arg", arity: 3, f: arg},
		{name: "=..", arity: 2, f: univ},
		{name: "copy_term", arity: 2, f: copyTerm},

		// Arithmetic.
		{name: "is", arity: 2, f: is},
		{name: "=:=", arity: 2, f: compareNumbers(func(o int) bool { return o == 0 })},
		{name: `=\=`, arity: 2, f: compareNumbers(func(o int) bool { return o != 0 })},
		{name: atomLessThan, arity: 2, f: compareNumbers(func(o int) bool { return o < 0 })},
		{name: atomGreater, arity: 2, f: compareNumbers(func(o int) bool { return o > 0 })},
		{name: "=<", arity: 2, f: compareNumbers(func(o int) bool { return o <= 0 })},
		{name: ">=", arity: 2, f: compareNumbers(func(o int) bool { return o >= 0 })},
		{name: "between", arity: 3, f: between},
		{name: "complex", arity: 3, f: complexParts},

		// Clause database.
		{name: "asserta", arity: 1, f: assertClause(true)},
		{name: "assertz", arity: 1, f: assertClause(false)},
		{name: "assert", arity: 1, f: assertClause(false)},
		{name: "retract", arity: 1, f: retract},
		{name: "retractall", arity: 1, f: retractAll},
		{name: "abolish", arity: 1, f: abolish},
		{name: "clause", arity: 2, f: clause},
		{name: "dynamic", arity: 1, f: declare(dynamic, true)},
		{name: "discontiguous", arity: 1, f: declare(discontiguous, false)},
		{name: "cache", arity: 1, f: declare(cached, false)},
		{name: "consult", arity: 1, f: consult},

		// Debugging and flags.
		{name: "spy", arity: 1, f: spy(true)},
		{name: "nospy", arity: 1, f: spy(false)},
		{name: "trace", arity: 0, f: trace(true)},
		{name: "notrace", arity: 0, f: trace(false)},
		{name: "set_prolog_flag", arity: 2, f: setFlag},
		{name: "current_prolog_flag", arity: 2, f: currentFlag},
		{name: "unknown", arity: 2, f: unknown},
		{name: "op", arity: 3, f: op},

		// Output.
		{name: "write", arity: 1, f: write(WriteOptions{})},
		{name: "print", arity: 1, f: write(WriteOptions{Quoted: true})},
		{name: "writeq", arity: 1, f: write(WriteOptions{Quoted: true})},
		{name: "write_canonical", arity: 1, f: write(WriteOptions{Quoted: true, IgnoreOps: true})},
		{name: "writeln", arity: 1, f: writeln},
		{name: "nl", arity: 0, f: nl},
		{name: "tab", arity: 1, f: tab},

		// Text and lists.
		{name: "atom_length", arity: 2, f: atomLength},
		{name: "atom_codes", arity: 2, f: atomCodes},
		{name: "atom_chars", arity: 2, f: atomChars},
		{name: "number_codes", arity: 2, f: numberCodes},
		{name: "length", arity: 2, f: length},
		{name: "$length", arity: 3, f: lengthFrom},
		{name: "$member", arity: 2, f: memberOf},
		{name: "$dcg_body", arity: 4, f: dcgTranslate},

		{name: "halt", arity: 0, f: halt},
	} {
		db.Register(b.name, b.arity, b.f)
	}
}

func unify(m *Machine, args []Term) (bool, error) {
	return m.env.Unify(args[0], args[1]), nil
}

func notUnifiable(m *Machine, args []Term) (bool, error) {
	return !m.env.IsUnifiable(args[0], args[1]), nil
}

func unifyWithOccursCheck(m *Machine, args []Term) (bool, error) {
	return m.env.UnifyWithOccursCheck(args[0], args[1]), nil
}

func compareWith(f func(int) bool) Builtin {
	return func(_ *Machine, args []Term) (bool, error) {
		return f(Compare(args[0], args[1])), nil
	}
}

func compare(m *Machine, args []Term) (bool, error) {
	switch o := Resolve(args[0]).(type) {
	case *Variable:
	case Atom:
		if o != atomEqual && o != atomLessThan && o != atomGreater {
			return false, &DomainError{Domain: "order", Culprit: o}
		}
	default:
		return false, &TypeError{Type: "atom", Culprit: o}
	}

	order := atomEqual
	switch c := Compare(args[1], args[2]); {
	case c < 0:
		order = atomLessThan
	case c > 0:
		order = atomGreater
	}
	return m.env.Unify(args[0], order), nil
}

func typeTest(f func(Term) bool) Builtin {
	return func(_ *Machine, args []Term) (bool, error) {
		return f(Resolve(args[0])), nil
	}
}

func isAtom(t Term) bool {
	_, ok := Resolve(t).(Atom)
	return ok
}

func isInteger(t Term) bool {
	n, ok := Resolve(t).(Number)
	return ok && n.IsInteger()
}

func isFloat(t Term) bool {
	switch t := Resolve(t).(type) {
	case Number:
		return !t.IsInteger()
	case Complex:
		return true
	default:
		return false
	}
}

func isAtomic(t Term) bool {
	switch Resolve(t).(type) {
	case *Variable, *Compound:
		return false
	default:
		return true
	}
}

func isCompound(t Term) bool {
	_, ok := Resolve(t).(*Compound)
	return ok
}

func isCallable(t Term) bool {
	_, _, ok := Callable(t)
	return ok
}

func isList(t Term) bool {
	_, ok := Slice(t)
	return ok
}

func isString(t Term) bool {
	_, ok := Resolve(t).(String)
	return ok
}

// functor extracts the name and the arity of a term, or constructs a term of fresh arguments.
func functor(m *Machine, args []Term) (bool, error) {
	switch t := Resolve(args[0]).(type) {
	case *Variable:
		a := Resolve(args[2])
		var arity int64
		switch n := a.(type) {
		case *Variable:
			return false, &InstantiationError{Culprit: n}
		case Number:
			i, ok := n.Int64()
			if !ok {
				return false, &TypeError{Type: "integer", Culprit: n}
			}
			if i < 0 {
				return false, &DomainError{Domain: "not_less_than_zero", Culprit: n}
			}
			arity = i
		default:
			return false, &TypeError{Type: "integer", Culprit: n}
		}

		name := Resolve(args[1])
		if isVariable(name) {
			return false, &InstantiationError{Culprit: name}
		}
		if arity == 0 {
			if !isAtomic(name) {
				return false, &TypeError{Type: "atomic", Culprit: name}
			}
			return m.env.Unify(t, name), nil
		}
		f, ok := name.(Atom)
		if !ok {
			return false, &TypeError{Type: "atom", Culprit: name}
		}
		vs := make([]Term, arity)
		for i := range vs {
			vs[i] = m.env.NewVariable()
		}
		return m.env.Unify(t, f.Apply(vs...)), nil
	case *Compound:
		return m.env.Unify(args[1], t.Functor) && m.env.Unify(args[2], NewInteger(int64(len(t.Args)))), nil
	default:
		return m.env.Unify(args[1], t) && m.env.Unify(args[2], NewInteger(0)), nil
	}
}

// arg extracts the nth argument of a compound, or enumerates the arguments if nth is a variable.
func arg(m *Machine, args []Term) (bool, error) {
	c, ok := Resolve(args[1]).(*Compound)
	if !ok {
		if isVariable(args[1]) {
			return false, &InstantiationError{Culprit: args[1]}
		}
		return false, &TypeError{Type: "compound", Culprit: args[1]}
	}

	switch n := Resolve(args[0]).(type) {
	case *Variable:
		pairs := make([]Term, len(c.Args))
		for i, a := range c.Args {
			pairs[i] = atomMinus.Apply(NewInteger(int64(i+1)), a)
		}
		return memberOf(m, []Term{atomMinus.Apply(n, args[2]), List(pairs...)})
	case Number:
		i, ok := n.Int64()
		if !ok {
			return false, &TypeError{Type: "integer", Culprit: n}
		}
		if i < 0 {
			return false, &DomainError{Domain: "not_less_than_zero", Culprit: n}
		}
		if i == 0 || int(i) > len(c.Args) {
			return false, nil
		}
		return m.env.Unify(args[2], c.Args[i-1]), nil
	default:
		return false, &TypeError{Type: "integer", Culprit: n}
	}
}

// univ converts a term to a list of its functor and arguments, or the other way around.
func univ(m *Machine, args []Term) (bool, error) {
	switch t := Resolve(args[0]).(type) {
	case *Variable:
		l := Resolve(args[1])
		if l == atomEmptyList {
			return false, &DomainError{Domain: "non_empty_list", Culprit: l}
		}
		ts, ok := Slice(l)
		if !ok {
			if isVariable(l) {
				return false, &InstantiationError{Culprit: l}
			}
			return false, &TypeError{Type: "list", Culprit: l}
		}
		switch f := Resolve(ts[0]).(type) {
		case *Variable:
			return false, &InstantiationError{Culprit: f}
		case Atom:
			return m.env.Unify(t, f.Apply(ts[1:]...)), nil
		case *Compound:
			return false, &TypeError{Type: "atomic", Culprit: f}
		default:
			if len(ts) > 1 {
				return false, &TypeError{Type: "atom", Culprit: f}
			}
			return m.env.Unify(t, f), nil
		}
	case *Compound:
		return m.env.Unify(args[1], List(append([]Term{t.Functor}, t.Args...)...)), nil
	default:
		return m.env.Unify(args[1], List(t)), nil
	}
}

func copyTerm(m *Machine, args []Term) (bool, error) {
	return m.env.Unify(m.env.Copy(args[0]), args[1]), nil
}

func is(m *Machine, args []Term) (bool, error) {
	v, err := DefaultEvaluableFunctors.Eval(args[1])
	if err != nil {
		return false, err
	}
	return m.env.Unify(args[0], v), nil
}

func compareNumbers(f func(int) bool) Builtin {
	return func(_ *Machine, args []Term) (bool, error) {
		o, err := DefaultEvaluableFunctors.CompareNumbers(args[0], args[1])
		if err != nil {
			return false, err
		}
		return f(o), nil
	}
}

// between enumerates the integers from low to high. high may be inf.
func between(m *Machine, args []Term) (bool, error) {
	low, err := integerArg(args[0])
	if err != nil {
		return false, err
	}
	var high int64
	switch h := Resolve(args[1]).(type) {
	case Atom:
		if h != "inf" && h != "infinite" {
			return false, &TypeError{Type: "integer", Culprit: h}
		}
		high = 1<<63 - 1
	default:
		high, err = integerArg(h)
		if err != nil {
			return false, err
		}
	}

	switch x := Resolve(args[2]).(type) {
	case *Variable:
		if low > high {
			return false, nil
		}
		if low < high {
			m.Redo(Atom("between").Apply(NewInteger(low+1), args[1], x))
		}
		return m.env.Unify(x, NewInteger(low)), nil
	case Number:
		i, ok := x.Int64()
		if !ok {
			return false, &TypeError{Type: "integer", Culprit: x}
		}
		return low <= i && i <= high, nil
	default:
		return false, &TypeError{Type: "integer", Culprit: x}
	}
}

// complexParts relates a complex number to its real and imaginary parts.
func complexParts(m *Machine, args []Term) (bool, error) {
	switch c := Resolve(args[0]).(type) {
	case *Variable:
		re, err := DefaultEvaluableFunctors.Eval(args[1])
		if err != nil {
			return false, err
		}
		im, err := DefaultEvaluableFunctors.Eval(args[2])
		if err != nil {
			return false, err
		}
		return m.env.Unify(c, Complex(complex(toFloat(re), toFloat(im)))), nil
	case Number, Complex:
		z := toComplex(c)
		re, err := NewFloat(real(z))
		if err != nil {
			return false, err
		}
		im, err := NewFloat(imag(z))
		if err != nil {
			return false, err
		}
		return m.env.Unify(args[1], re) && m.env.Unify(args[2], im), nil
	default:
		return false, &TypeError{Type: "number", Culprit: c}
	}
}

func integerArg(t Term) (int64, error) {
	switch n := Resolve(t).(type) {
	case *Variable:
		return 0, &InstantiationError{Culprit: n}
	case Number:
		i, ok := n.Int64()
		if !ok {
			return 0, &TypeError{Type: "integer", Culprit: n}
		}
		return i, nil
	default:
		return 0, &TypeError{Type: "integer", Culprit: n}
	}
}

func assertClause(front bool) Builtin {
	return func(m *Machine, args []Term) (bool, error) {
		if err := m.db.Assert(args[0], front); err != nil {
			return false, err
		}
		return true, nil
	}
}

// retract removes the first matching clause. On backtracking, it removes the next one.
func retract(m *Machine, args []Term) (bool, error) {
	mark := m.env.Mark()
	c, err := m.db.Retract(&m.env, args[0])
	if err != nil || c == nil {
		return false, err
	}
	m.env.UndoTo(mark)
	m.Redo(Atom("retract").Apply(args[0]))
	head, body := Rulify(args[0])
	h, b := c.rename(&m.env)
	return m.env.Unify(head, h) && m.env.Unify(body, conjunction(b)), nil
}

func retractAll(m *Machine, args []Term) (bool, error) {
	if err := m.db.RetractAll(&m.env, args[0]); err != nil {
		return false, err
	}
	return true, nil
}

func abolish(m *Machine, args []Term) (bool, error) {
	pi, err := ParsePI(args[0])
	if err != nil {
		return false, err
	}
	if err := m.db.Abolish(pi); err != nil {
		return false, err
	}
	return true, nil
}

// clause enumerates the clauses whose head and body unify with the arguments.
func clause(m *Machine, args []Term) (bool, error) {
	pi, ok := NewPI(args[0])
	if !ok {
		if isVariable(args[0]) {
			return false, &InstantiationError{Culprit: args[0]}
		}
		return false, &TypeError{Type: "callable", Culprit: args[0]}
	}
	switch b := Resolve(args[1]).(type) {
	case *Variable, Atom, *Compound:
	default:
		return false, &TypeError{Type: "callable", Culprit: b}
	}

	p, ok := m.db.Lookup(pi)
	if !ok {
		return false, nil
	}
	if p.Builtin != 0 {
		return false, &PermissionError{Operation: "access", ObjectType: "private_procedure", Culprit: pi.Term()}
	}
	cs := make([]Term, len(p.clauses))
	for i, c := range p.clauses {
		h, b := c.rename(&m.env)
		cs[i] = atomIf.Apply(h, conjunction(b))
	}
	return memberOf(m, []Term{atomIf.Apply(args[0], args[1]), List(cs...)})
}

func dynamic(*Predicate) {}

func discontiguous(p *Predicate) {
	p.Discontiguous = true
}

func cached(p *Predicate) {
	p.Cache = true
}

// declare applies f to every predicate of a declaration such as foo/1, (foo/1, bar/2) or [foo/1, bar/2].
// Calls to a dynamic predicate without clauses fail.
func declare(f func(p *Predicate), dynamic bool) Builtin {
	return func(m *Machine, args []Term) (bool, error) {
		pis, err := indicators(args[0])
		if err != nil {
			return false, err
		}
		for _, pi := range pis {
			if p, ok := m.db.Lookup(pi); ok && p.Predefined {
				return false, &PermissionError{Operation: "modify", ObjectType: "static_procedure", Culprit: pi.Term()}
			}
			if err := m.db.Declare(pi, f); err != nil {
				return false, err
			}
			if dynamic {
				m.db.SetUnknownFor(pi, UnknownFail)
			}
		}
		return true, nil
	}
}

func indicators(t Term) ([]PI, error) {
	var ts []Term
	if l, ok := Slice(t); ok {
		ts = l
	} else {
		for {
			c, ok := Resolve(t).(*Compound)
			if !ok || c.Functor != atomComma || len(c.Args) != 2 {
				break
			}
			ts = append(ts, c.Args[0])
			t = c.Args[1]
		}
		ts = append(ts, t)
	}
	pis := make([]PI, len(ts))
	for i, t := range ts {
		pi, err := ParsePI(t)
		if err != nil {
			return nil, err
		}
		pis[i] = pi
	}
	return pis, nil
}

// consult loads a file. The extension .pl is added if the file doesn't exist.
func consult(m *Machine, args []Term) (bool, error) {
	var name string
	switch f := Resolve(args[0]).(type) {
	case *Variable:
		return false, &InstantiationError{Culprit: f}
	case Atom:
		name = string(f)
	case String:
		name = string(f)
	default:
		return false, &TypeError{Type: "atom", Culprit: f}
	}
	if _, err := os.Stat(name); os.IsNotExist(err) && !strings.HasSuffix(name, ".pl") {
		name += ".pl"
	}

	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return false, &ExistenceError{ObjectType: "source_sink", Culprit: args[0]}
		}
		return false, err
	}
	defer f.Close()

	if err := Consult(m.Context(), m.db, f, name, WithOutput(m.out), WithLogger(m.log), WithDebug(m.debug)); err != nil {
		return false, err
	}
	return true, nil
}

// spy sets or clears the spy flag of predicates given by Name/Arity or by Name for every arity.
func spy(b bool) Builtin {
	return func(m *Machine, args []Term) (bool, error) {
		var pis []PI
		switch t := Resolve(args[0]).(type) {
		case *Variable:
			return false, &InstantiationError{Culprit: t}
		case Atom:
			for _, pi := range m.db.Predicates() {
				if pi.Name == t {
					pis = append(pis, pi)
				}
			}
		default:
			var err error
			pis, err = indicators(t)
			if err != nil {
				return false, err
			}
		}
		for _, pi := range pis {
			if err := m.db.Declare(pi, func(p *Predicate) {
				p.Spy = b
			}); err != nil {
				return false, err
			}
		}
		return true, nil
	}
}

func trace(b bool) Builtin {
	return func(m *Machine, _ []Term) (bool, error) {
		m.SetTrace(b)
		return true, nil
	}
}

func flagAtom(t Term) (Atom, error) {
	switch a := Resolve(t).(type) {
	case *Variable:
		return "", &InstantiationError{Culprit: a}
	case Atom:
		return a, nil
	default:
		return "", &TypeError{Type: "atom", Culprit: a}
	}
}

func onOff(b bool) Atom {
	if b {
		return "on"
	}
	return "off"
}

func setFlag(m *Machine, args []Term) (bool, error) {
	f, err := flagAtom(args[0])
	if err != nil {
		return false, err
	}
	v, err := flagAtom(args[1])
	if err != nil {
		return false, err
	}
	flagValueError := &DomainError{Domain: "flag_value", Culprit: Atom("+").Apply(f, v)}
	switch f {
	case "unknown":
		u, err := ParseUnknown(string(v))
		if err != nil {
			return false, flagValueError
		}
		m.db.SetUnknown(u)
	case "occurs_check":
		switch v {
		case "true", "on":
			m.db.SetOccursCheck(true)
			m.env.OccursCheck = true
		case "false", "off":
			m.db.SetOccursCheck(false)
			m.env.OccursCheck = false
		default:
			return false, flagValueError
		}
	case "debug":
		switch v {
		case "on":
			m.debug = true
		case "off":
			m.debug = false
		default:
			return false, flagValueError
		}
	case "bounded", "max_integer", "min_integer":
		return false, &PermissionError{Operation: "modify", ObjectType: "flag", Culprit: f}
	default:
		return false, &DomainError{Domain: "prolog_flag", Culprit: f}
	}
	return true, nil
}

func currentFlag(m *Machine, args []Term) (bool, error) {
	switch f := Resolve(args[0]).(type) {
	case *Variable, Atom:
	default:
		return false, &TypeError{Type: "atom", Culprit: f}
	}
	occursCheck := Atom("false")
	if m.db.OccursCheck() {
		occursCheck = "true"
	}
	flags := []Term{
		atomMinus.Apply(Atom("bounded"), Atom("true")),
		atomMinus.Apply(Atom("max_integer"), DefaultEvaluableFunctors.Constant["max_integer"]),
		atomMinus.Apply(Atom("min_integer"), DefaultEvaluableFunctors.Constant["min_integer"]),
		atomMinus.Apply(Atom("unknown"), Atom(m.db.unknownDefault().String())),
		atomMinus.Apply(Atom("occurs_check"), occursCheck),
		atomMinus.Apply(Atom("debug"), onOff(m.debug)),
	}
	return memberOf(m, []Term{atomMinus.Apply(args[0], args[1]), List(flags...)})
}

// unknown unifies old with the current policy for undefined predicates and sets new.
func unknown(m *Machine, args []Term) (bool, error) {
	if !m.env.Unify(args[0], Atom(m.db.unknownDefault().String())) {
		return false, nil
	}
	v, err := flagAtom(args[1])
	if err != nil {
		return false, err
	}
	u, err := ParseUnknown(string(v))
	if err != nil {
		return false, &DomainError{Domain: "flag_value", Culprit: Atom("+").Apply(Atom("unknown"), v)}
	}
	m.db.SetUnknown(u)
	return true, nil
}

// op defines operators. The name can be a list of names.
func op(m *Machine, args []Term) (bool, error) {
	priority, err := integerArg(args[0])
	if err != nil {
		return false, err
	}
	if priority < 0 || priority > 1200 {
		return false, &DomainError{Domain: "operator_priority", Culprit: args[0]}
	}
	s, err := flagAtom(args[1])
	if err != nil {
		return false, err
	}
	spec, ok := ParseOperatorSpecifier(s)
	if !ok {
		return false, &DomainError{Domain: "operator_specifier", Culprit: s}
	}
	names, ok := Slice(args[2])
	if !ok {
		names = []Term{args[2]}
	}
	for _, n := range names {
		name, err := flagAtom(n)
		if err != nil {
			return false, err
		}
		if name == atomComma {
			return false, &PermissionError{Operation: "modify", ObjectType: "operator", Culprit: name}
		}
		m.db.Operators().Define(int(priority), spec, name)
	}
	return true, nil
}

func write(opts WriteOptions) Builtin {
	return func(m *Machine, args []Term) (bool, error) {
		opts := opts
		opts.Ops = m.db.Operators()
		if err := Write(m.out, args[0], opts); err != nil {
			return false, err
		}
		return true, nil
	}
}

func writeln(m *Machine, args []Term) (bool, error) {
	if err := Write(m.out, args[0], WriteOptions{Ops: m.db.Operators()}); err != nil {
		return false, err
	}
	return nl(m, nil)
}

func nl(m *Machine, _ []Term) (bool, error) {
	if _, err := fmt.Fprintln(m.out); err != nil {
		return false, err
	}
	return true, nil
}

func tab(m *Machine, args []Term) (bool, error) {
	v, err := DefaultEvaluableFunctors.Eval(args[0])
	if err != nil {
		return false, err
	}
	n, err := toInt64(v)
	if err != nil {
		return false, err
	}
	if n < 0 {
		return false, &DomainError{Domain: "not_less_than_zero", Culprit: v}
	}
	if _, err := fmt.Fprint(m.out, strings.Repeat(" ", int(n))); err != nil {
		return false, err
	}
	return true, nil
}

// text returns the text of an atom, a string or a number.
func text(t Term) (string, bool) {
	switch t := Resolve(t).(type) {
	case Atom:
		return string(t), true
	case String:
		return string(t), true
	case Number:
		return t.String(), true
	default:
		return "", false
	}
}

func atomLength(m *Machine, args []Term) (bool, error) {
	s, ok := text(args[0])
	if !ok {
		if isVariable(args[0]) {
			return false, &InstantiationError{Culprit: args[0]}
		}
		return false, &TypeError{Type: "atom", Culprit: args[0]}
	}
	switch l := Resolve(args[1]).(type) {
	case *Variable:
	case Number:
		i, ok := l.Int64()
		if !ok {
			return false, &TypeError{Type: "integer", Culprit: l}
		}
		if i < 0 {
			return false, &DomainError{Domain: "not_less_than_zero", Culprit: l}
		}
	default:
		return false, &TypeError{Type: "integer", Culprit: l}
	}
	return m.env.Unify(args[1], NewInteger(int64(utf8.RuneCountInString(s)))), nil
}

// atomCodes converts an atom to a list of character codes and vice versa.
func atomCodes(m *Machine, args []Term) (bool, error) {
	return atomText(m, args, func(r rune) Term {
		return NewInteger(int64(r))
	}, func(t Term) (rune, bool) {
		n, ok := Resolve(t).(Number)
		if !ok {
			return 0, false
		}
		i, ok := n.Int64()
		return rune(i), ok && utf8.ValidRune(rune(i))
	}, func(s string) Term {
		return Atom(s)
	})
}

// atomChars converts an atom to a list of single-character atoms and vice versa.
func atomChars(m *Machine, args []Term) (bool, error) {
	return atomText(m, args, charAtom, char, func(s string) Term {
		return Atom(s)
	})
}

// numberCodes converts a number to a list of character codes and vice versa.
func numberCodes(m *Machine, args []Term) (bool, error) {
	return atomText(m, args, func(r rune) Term {
		return NewInteger(int64(r))
	}, func(t Term) (rune, bool) {
		n, ok := Resolve(t).(Number)
		if !ok {
			return 0, false
		}
		i, ok := n.Int64()
		return rune(i), ok && utf8.ValidRune(rune(i))
	}, nil)
}

func charAtom(r rune) Term {
	return Atom(string(r))
}

func char(t Term) (rune, bool) {
	a, ok := Resolve(t).(Atom)
	if !ok || utf8.RuneCountInString(string(a)) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(string(a))
	return r, true
}

// atomText relates the text of args[0] to a list of elements in args[1].
// If build is nil, the text is read as a number.
func atomText(m *Machine, args []Term, elem func(rune) Term, decode func(Term) (rune, bool), build func(string) Term) (bool, error) {
	if s, ok := text(args[0]); ok {
		if _, ok := Resolve(args[0]).(Number); build != nil || ok {
			rs := []rune(s)
			es := make([]Term, len(rs))
			for i, r := range rs {
				es[i] = elem(r)
			}
			return m.env.Unify(args[1], List(es...)), nil
		}
		return false, &TypeError{Type: "number", Culprit: args[0]}
	}
	if !isVariable(args[0]) {
		if build == nil {
			return false, &TypeError{Type: "number", Culprit: args[0]}
		}
		return false, &TypeError{Type: "atom", Culprit: args[0]}
	}

	ts, ok := Slice(args[1])
	if !ok {
		return false, &InstantiationError{Culprit: args[1]}
	}
	var sb strings.Builder
	for _, t := range ts {
		if isVariable(t) {
			return false, &InstantiationError{Culprit: t}
		}
		r, ok := decode(t)
		if !ok {
			return false, &RepresentationError{Limit: "character_code"}
		}
		_, _ = sb.WriteRune(r)
	}
	if build != nil {
		return m.env.Unify(args[0], build(sb.String())), nil
	}
	n, err := ParseNumber(strings.TrimSpace(sb.String()))
	if err != nil {
		return false, &SyntaxError{Detail: "illegal_number"}
	}
	return m.env.Unify(args[0], n), nil
}

// length relates a list to its length. A partial list and an unbound length enumerate longer lists.
func length(m *Machine, args []Term) (bool, error) {
	n, rest := 0, Resolve(args[0])
	for {
		c, ok := rest.(*Compound)
		if !ok || c.Functor != atomDot || len(c.Args) != 2 {
			break
		}
		n++
		rest = Resolve(c.Args[1])
	}

	switch l := Resolve(args[1]).(type) {
	case *Variable:
	case Number:
		i, ok := l.Int64()
		if !ok {
			return false, &TypeError{Type: "integer", Culprit: l}
		}
		if i < 0 {
			return false, &DomainError{Domain: "not_less_than_zero", Culprit: l}
		}
	default:
		return false, &TypeError{Type: "integer", Culprit: l}
	}

	switch r := rest.(type) {
	case Atom:
		if r != atomEmptyList {
			return false, nil
		}
		return m.env.Unify(args[1], NewInteger(int64(n))), nil
	case *Variable:
		if i, ok := Resolve(args[1]).(Number); ok {
			k, _ := i.Int64()
			if int(k) < n {
				return false, nil
			}
			return m.env.Unify(r, freshList(&m.env, int(k)-n)), nil
		}
		return lengthFrom(m, []Term{args[0], args[1], NewInteger(int64(n))})
	default:
		return false, nil
	}
}

// lengthFrom binds the open tail of a partial list so that the list has k elements, then k+1 on backtracking.
func lengthFrom(m *Machine, args []Term) (bool, error) {
	k, err := integerArg(args[2])
	if err != nil {
		return false, err
	}
	m.Redo(Atom("$length").Apply(args[0], args[1], NewInteger(k+1)))
	n, rest := 0, Resolve(args[0])
	for {
		c, ok := rest.(*Compound)
		if !ok || c.Functor != atomDot || len(c.Args) != 2 {
			break
		}
		n++
		rest = Resolve(c.Args[1])
	}
	v, ok := rest.(*Variable)
	if !ok || int(k) < n {
		return false, nil
	}
	return m.env.Unify(v, freshList(&m.env, int(k)-n)) && m.env.Unify(args[1], NewInteger(k)), nil
}

func freshList(env *Env, n int) Term {
	vs := make([]Term, n)
	for i := range vs {
		vs[i] = env.NewVariable()
	}
	return List(vs...)
}

// memberOf unifies args[0] with an element of the list args[1], trying the rest on backtracking.
func memberOf(m *Machine, args []Term) (bool, error) {
	l := Resolve(args[1])
	for {
		c, ok := l.(*Compound)
		if !ok || c.Functor != atomDot || len(c.Args) != 2 {
			return false, nil
		}
		rest := Resolve(c.Args[1])
		if !m.env.IsUnifiable(args[0], c.Args[0]) {
			l = rest
			continue
		}
		if rest != atomEmptyList {
			m.Redo(Atom("$member").Apply(args[0], rest))
		}
		return m.env.Unify(args[0], c.Args[0]), nil
	}
}

func halt(*Machine, []Term) (bool, error) {
	return false, ErrHalt
}
