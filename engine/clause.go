package engine

// Clause is a clause template. Its variables are private to the clause and never bound;
// every use works on a renamed copy.
type Clause struct {
	Head Term
	// Body is the flattened conjunction of the clause body. It is nil for a fact.
	Body   []Term
	Source string

	pi PI
}

// NewClause compiles a term of the form Head or Head :- Body into a clause template.
func NewClause(t Term, source string) (*Clause, error) {
	t = (&copier{vars: map[*Variable]Term{}}).copy(simplify(t, map[*Variable]struct{}{}))
	head, body := Rulify(t)
	pi, ok := NewPI(head)
	if !ok {
		if isVariable(head) {
			return nil, &InstantiationError{Culprit: head}
		}
		return nil, &TypeError{Type: "callable", Culprit: head}
	}
	if _, ok := controlConstructs[pi]; ok {
		return nil, &PermissionError{Operation: "modify", ObjectType: "static_procedure", Culprit: pi.Term()}
	}
	goals, err := flatten(body)
	if err != nil {
		return nil, err
	}
	return &Clause{Head: head, Body: goals, Source: source, pi: pi}, nil
}

// PI returns the predicate indicator of the clause head.
func (c *Clause) PI() PI {
	return c.pi
}

// Term returns the clause as a term of the form Head :- Body.
func (c *Clause) Term() Term {
	return atomIf.Apply(c.Head, conjunction(c.Body))
}

// rename copies the head and the body with a shared set of fresh variables.
func (c *Clause) rename(e *Env) (Term, []Term) {
	cp := e.copier()
	head := cp.copy(c.Head)
	if len(c.Body) == 0 {
		return head, nil
	}
	body := make([]Term, len(c.Body))
	for i, g := range c.Body {
		body[i] = cp.copy(g)
	}
	return head, body
}

// flatten turns a conjunction into a list of goals. A variable goal G becomes call(G).
func flatten(body Term) ([]Term, error) {
	var goals []Term
	for stack := []Term{body}; len(stack) > 0; {
		t := Resolve(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		switch t := t.(type) {
		case *Variable:
			goals = append(goals, atomCall.Apply(t))
		case Atom:
			if t == atomTrue {
				continue
			}
			goals = append(goals, t)
		case *Compound:
			if t.Functor == atomComma && len(t.Args) == 2 {
				stack = append(stack, t.Args[1], t.Args[0])
				continue
			}
			goals = append(goals, t)
		default:
			return nil, &TypeError{Type: "callable", Culprit: body}
		}
	}
	return goals, nil
}

// conjunction is the inverse of flatten.
func conjunction(goals []Term) Term {
	if len(goals) == 0 {
		return atomTrue
	}
	t := goals[len(goals)-1]
	for i := len(goals) - 2; i >= 0; i-- {
		t = atomComma.Apply(goals[i], t)
	}
	return t
}

func isVariable(t Term) bool {
	_, ok := Resolve(t).(*Variable)
	return ok
}
