package engine

import (
	"errors"
)

// based on: https://www.complang.tuwien.ac.at/ulrich/iso-prolog/dcgs/dcgsdin150408.pdf

var errDCGNotApplicable = errors.New("not applicable")

// expandDCG translates a grammar rule Head --> Body into an ordinary clause.
func expandDCG(t Term) (Term, error) {
	rule, ok := Resolve(t).(*Compound)
	if !ok || rule.Functor != atomArrow || len(rule.Args) != 2 {
		return nil, errDCGNotApplicable
	}

	s0, s1, s := &Variable{}, &Variable{}, &Variable{}
	if c, ok := Resolve(rule.Args[0]).(*Compound); ok && c.Functor == atomComma && len(c.Args) == 2 {
		head, err := dcgNonTerminal(c.Args[0], s0, s)
		if err != nil {
			return nil, err
		}
		goal1, err := dcgBody(rule.Args[1], s0, s1)
		if err != nil {
			return nil, err
		}
		goal2, err := dcgTerminals(c.Args[1], s, s1)
		if err != nil {
			return nil, err
		}
		return atomIf.Apply(head, atomComma.Apply(goal1, goal2)), nil
	}

	head, err := dcgNonTerminal(rule.Args[0], s0, s)
	if err != nil {
		return nil, err
	}
	body, err := dcgBody(rule.Args[1], s0, s)
	if err != nil {
		return nil, err
	}
	return atomIf.Apply(head, body), nil
}

func dcgNonTerminal(nonTerminal, list, rest Term) (Term, error) {
	name, args, ok := Callable(nonTerminal)
	if !ok {
		if isVariable(nonTerminal) {
			return nil, &InstantiationError{Culprit: nonTerminal}
		}
		return nil, &TypeError{Type: "callable", Culprit: nonTerminal}
	}
	as := make([]Term, 0, len(args)+2)
	as = append(as, args...)
	return name.Apply(append(as, list, rest)...), nil
}

func dcgTerminals(terminals, list, rest Term) (Term, error) {
	elems, ok := Slice(terminals)
	if !ok {
		return nil, &TypeError{Type: "list", Culprit: terminals}
	}
	return atomEqual.Apply(list, ListRest(rest, elems...)), nil
}

var dcgConstr map[PI]func(args []Term, list, rest Term) (Term, error)

func init() {
	dcgConstr = map[PI]func(args []Term, list, rest Term) (Term, error){
		{Name: atomEmptyList, Arity: 0}: func(_ []Term, list, rest Term) (Term, error) {
			return atomEqual.Apply(list, rest), nil
		},
		{Name: atomDot, Arity: 2}: func(args []Term, list, rest Term) (Term, error) {
			return dcgTerminals(atomDot.Apply(args...), list, rest)
		},
		{Name: atomComma, Arity: 2}: func(args []Term, list, rest Term) (Term, error) {
			v := &Variable{}
			first, err := dcgBody(args[0], list, v)
			if err != nil {
				return nil, err
			}
			second, err := dcgBody(args[1], v, rest)
			if err != nil {
				return nil, err
			}
			return atomComma.Apply(first, second), nil
		},
		{Name: atomSemicolon, Arity: 2}: dcgOr,
		{Name: atomBar, Arity: 2}:       dcgOr,
		{Name: atomEmptyBlock, Arity: 1}: func(args []Term, list, rest Term) (Term, error) {
			return atomComma.Apply(args[0], atomEqual.Apply(list, rest)), nil
		},
		{Name: atomCall, Arity: 1}: func(args []Term, list, rest Term) (Term, error) {
			return atomCall.Apply(args[0], list, rest), nil
		},
		{Name: atomPhrase, Arity: 1}: func(args []Term, list, rest Term) (Term, error) {
			return atomPhrase.Apply(args[0], list, rest), nil
		},
		{Name: atomCut, Arity: 0}: func(_ []Term, list, rest Term) (Term, error) {
			return atomComma.Apply(atomCut, atomEqual.Apply(list, rest)), nil
		},
		{Name: atomNegation, Arity: 1}: func(args []Term, list, rest Term) (Term, error) {
			g, err := dcgBody(args[0], list, &Variable{})
			if err != nil {
				return nil, err
			}
			return atomComma.Apply(atomNegation.Apply(g), atomEqual.Apply(list, rest)), nil
		},
		{Name: atomThen, Arity: 2}: func(args []Term, list, rest Term) (Term, error) {
			v := &Variable{}
			cond, err := dcgBody(args[0], list, v)
			if err != nil {
				return nil, err
			}
			then, err := dcgBody(args[1], v, rest)
			if err != nil {
				return nil, err
			}
			return atomThen.Apply(cond, then), nil
		},
	}
}

func dcgOr(args []Term, list, rest Term) (Term, error) {
	either, err := dcgBody(args[0], list, rest)
	if err != nil {
		return nil, err
	}
	or, err := dcgBody(args[1], list, rest)
	if err != nil {
		return nil, err
	}
	return atomSemicolon.Apply(either, or), nil
}

func dcgBody(t, list, rest Term) (Term, error) {
	t = Resolve(t)
	if _, ok := t.(*Variable); ok {
		return atomPhrase.Apply(t, list, rest), nil
	}

	g, err := dcgCBody(t, list, rest)
	if errors.Is(err, errDCGNotApplicable) {
		return dcgNonTerminal(t, list, rest)
	}
	return g, err
}

func dcgCBody(t, list, rest Term) (Term, error) {
	pi, ok := NewPI(t)
	if !ok {
		return nil, &TypeError{Type: "callable", Culprit: t}
	}
	_, args, _ := Callable(t)
	if c, ok := dcgConstr[pi]; ok {
		return c(args, list, rest)
	}
	return nil, errDCGNotApplicable
}

// dcgTranslate is '$dcg_body'(Body, S0, S, Goal). It translates a grammar body for phrase/3.
func dcgTranslate(m *Machine, args []Term) (bool, error) {
	g, err := dcgBody(args[0], args[1], args[2])
	if err != nil {
		return false, err
	}
	return m.env.Unify(args[3], g), nil
}
