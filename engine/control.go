package engine

import (
	"strings"
)

// control is a construct interpreted by the machine itself. It may rewrite the continuation.
type control func(m *Machine, g *goal, args []Term) (bool, error)

var controlConstructs map[PI]control

func init() {
	controlConstructs = map[PI]control{
		{Name: atomTrue, Arity: 0}:      succeed,
		{Name: atomFail, Arity: 0}:      fail,
		{Name: atomFalse, Arity: 0}:     fail,
		{Name: atomCut, Arity: 0}:       cut,
		{Name: atomComma, Arity: 2}:     conj,
		{Name: atomSemicolon, Arity: 2}: disj,
		{Name: atomThen, Arity: 2}:      ifThen,
		{Name: atomNegation, Arity: 1}:  negation,
		{Name: "not", Arity: 1}:         negation,
		{Name: "findall", Arity: 3}:     findAll,
		{Name: "forall", Arity: 2}:      forAll,
		{Name: atomCatch, Arity: 3}:     catch,
		{Name: "try", Arity: 2}:         try,
		{Name: "throw", Arity: 1}:       throw,
		{Name: "throw", Arity: 2}:       throw,
		{Name: "throw", Arity: 3}:       throw,
	}
	for arity := 1; arity <= 8; arity++ {
		controlConstructs[PI{Name: atomCall, Arity: arity}] = call
	}
}

func succeed(m *Machine, g *goal, _ []Term) (bool, error) {
	m.cont = g.next
	return true, nil
}

func fail(*Machine, *goal, []Term) (bool, error) {
	return false, nil
}

func cut(m *Machine, g *goal, _ []Term) (bool, error) {
	m.env.cut(g.barrier)
	m.cont = g.next
	return true, nil
}

func conj(m *Machine, g *goal, args []Term) (bool, error) {
	m.cont = goals(args, g.barrier, g.level, g.next)
	return true, nil
}

// disj tries the left branch first, leaving the right branch as a choice point.
// Cut in either branch is the cut of the enclosing clause.
func disj(m *Machine, g *goal, args []Term) (bool, error) {
	if c, ok := Resolve(args[0]).(*Compound); ok && c.Functor == atomThen && len(c.Args) == 2 {
		m.ifThenElse(g, c.Args[0], c.Args[1], args[1])
		return true, nil
	}
	m.pushAlt(goals(args[1:], g.barrier, g.level, g.next))
	m.cont = goals(args[:1], g.barrier, g.level, g.next)
	return true, nil
}

func ifThen(m *Machine, g *goal, args []Term) (bool, error) {
	m.ifThenElse(g, args[0], args[1], atomFail)
	return true, nil
}

func negation(m *Machine, g *goal, args []Term) (bool, error) {
	m.ifThenElse(g, args[0], atomFail, atomTrue)
	return true, nil
}

func forAll(m *Machine, g *goal, args []Term) (bool, error) {
	m.ifThenElse(g, atomComma.Apply(args[0], atomNegation.Apply(args[1])), atomFail, atomTrue)
	return true, nil
}

// ifThenElse pushes a choice point for the else branch and runs the condition with its own cut barrier.
// Once the condition succeeds, a commit node removes the else branch and the alternatives of the condition.
func (m *Machine) ifThenElse(g *goal, cond, then, els Term) {
	p := m.env.Mark()
	m.pushAlt(goals([]Term{els}, g.barrier, g.level, g.next))
	commit := &goal{kind: goalCommit, barrier: p, level: g.level, next: goals([]Term{then}, g.barrier, g.level, g.next)}
	m.cont = &goal{kind: goalCall, term: cond, barrier: m.env.Mark(), level: g.level + 1, next: commit}
}

// call calls the goal with extra arguments. Cut inside the goal is local to it.
func call(m *Machine, g *goal, args []Term) (bool, error) {
	t := Resolve(args[0])
	if len(args) > 1 {
		name, cargs, ok := Callable(t)
		if !ok {
			if isVariable(t) {
				return false, &InstantiationError{Culprit: t}
			}
			return false, &TypeError{Type: "callable", Culprit: t}
		}
		as := make([]Term, 0, len(cargs)+len(args)-1)
		as = append(as, cargs...)
		as = append(as, args[1:]...)
		t = name.Apply(as...)
	}
	switch t.(type) {
	case Atom, *Compound:
	case *Variable:
		return false, &InstantiationError{Culprit: t}
	default:
		return false, &TypeError{Type: "callable", Culprit: t}
	}
	m.cont = &goal{kind: goalCall, term: t, barrier: m.env.Mark(), level: g.level + 1, next: g.next}
	return true, nil
}

// findAll collects copies of the template for every solution of the goal.
// The results are unified with the instance when the goal has no more solutions.
func findAll(m *Machine, g *goal, args []Term) (bool, error) {
	f := findall{template: args[0], instance: args[2]}
	m.env.push(entry{kind: entryChoice, choice: &choice{kind: choiceFindall, goal: g.next, tries: m.tries, collect: &f}})
	collect := &goal{kind: goalCollect, term: args[0], level: g.level, collect: &f, next: g.next}
	m.cont = &goal{kind: goalCall, term: args[1], barrier: m.env.Mark(), level: g.level + 1, next: collect}
	return true, nil
}

func (m *Machine) newTryID() int64 {
	m.lastID++
	return m.lastID
}

// try runs the goal guarded by handlers of the form catch(Class, Message, Handler).
// Catches is one handler or a list of them. A variable class catches every exception.
func try(m *Machine, g *goal, args []Term) (bool, error) {
	catches, ok := Slice(args[1])
	if !ok {
		catches = []Term{args[1]}
	}

	id := m.newTryID()
	next := &goal{kind: goalTryClose, id: id, level: g.level, next: g.next}
	for i := len(catches) - 1; i >= 0; i-- {
		c, ok := Resolve(catches[i]).(*Compound)
		if !ok || c.Functor != atomCatch || len(c.Args) != 3 {
			return false, &TypeError{Type: "catch", Culprit: catches[i]}
		}
		class := c.Args[0]
		if isVariable(class) {
			class = nil
		}
		next = &goal{
			kind:    goalCatchOpen,
			id:      id,
			class:   class,
			message: c.Args[1],
			seq:     i,
			level:   g.level,
			next:    goals(c.Args[2:], g.barrier, g.level, next),
		}
	}
	m.cont = &goal{kind: goalTryOpen, id: id, level: g.level, next: goals(args[:1], g.barrier, g.level, next)}
	return true, nil
}

// catch is catch/3. The goal and the recovery are called as call/1.
func catch(m *Machine, g *goal, args []Term) (bool, error) {
	id := m.newTryID()
	closing := &goal{kind: goalTryClose, id: id, level: g.level, next: g.next}
	recovery := &goal{kind: goalCall, term: atomCall.Apply(args[2]), barrier: g.barrier, level: g.level, next: closing}
	catcher := &goal{kind: goalCatchOpen, id: id, message: args[1], iso: true, level: g.level, next: recovery}
	body := &goal{kind: goalCall, term: atomCall.Apply(args[0]), barrier: g.barrier, level: g.level, next: catcher}
	m.cont = &goal{kind: goalTryOpen, id: id, level: g.level, next: body}
	return true, nil
}

// throw is throw(Message), throw(Class, Message) or throw(Class, Format, Args).
func throw(m *Machine, _ *goal, args []Term) (bool, error) {
	for _, a := range args {
		if isVariable(a) {
			return false, &InstantiationError{Culprit: a}
		}
	}
	switch len(args) {
	case 1:
		return false, &Exception{Message: args[0]}
	case 2:
		return false, &Exception{Class: args[0], Message: args[1]}
	default:
		msg, err := format(args[1], args[2])
		if err != nil {
			return false, err
		}
		return false, &Exception{Class: args[0], Message: msg}
	}
}

// throw looks for a matching handler in the continuation, innermost try first.
// Bindings made since the try are kept; alternatives created inside the try are cut.
func (m *Machine) throw(g *goal, ex *Exception) bool {
	n := g.next
	for f := m.tries; f != nil; f = f.next {
		for ; n != nil; n = n.next {
			if n.kind == goalTryClose && n.id == f.id {
				break
			}
			if n.kind != goalCatchOpen || n.id != f.id {
				continue
			}
			if m.catches(n, ex) {
				m.env.cut(f.depth)
				m.tries = f.next
				m.cont = n.next
				return true
			}
		}
		if n == nil {
			break
		}
	}
	return false
}

func (m *Machine) catches(n *goal, ex *Exception) bool {
	mark := m.env.Mark()
	ok := m.matches(n, ex)
	if !ok {
		m.env.UndoTo(mark)
	}
	return ok
}

func (m *Machine) matches(n *goal, ex *Exception) bool {
	if n.iso {
		return m.env.Unify(n.message, ex.Ball())
	}
	if n.class != nil && (ex.Class == nil || !m.env.Unify(n.class, ex.Class)) {
		return false
	}
	return m.env.Unify(n.message, ex.Message)
}

// format replaces ~w, ~q and ~a in the format with the arguments.
func format(f, args Term) (Term, error) {
	var s string
	switch f := Resolve(f).(type) {
	case Atom:
		s = string(f)
	case String:
		s = string(f)
	default:
		return nil, &TypeError{Type: "text", Culprit: f}
	}
	as, ok := Slice(args)
	if !ok {
		as = []Term{args}
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '~' || i+1 == len(s) {
			_ = sb.WriteByte(s[i])
			continue
		}
		i++
		switch c := s[i]; c {
		case 'w', 'a', 'q':
			if len(as) == 0 {
				return nil, &DomainError{Domain: "format_arguments", Culprit: args}
			}
			_ = Write(&sb, as[0], WriteOptions{Quoted: c == 'q', Ops: DefaultOperators()})
			as = as[1:]
		case 'n':
			_ = sb.WriteByte('\n')
		case '~':
			_ = sb.WriteByte('~')
		default:
			return nil, &DomainError{Domain: "format_directive", Culprit: Atom(string(c))}
		}
	}
	return String(sb.String()), nil
}
