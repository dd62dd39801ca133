package engine

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"
)

// Machine resolves a single query against a database.
//
// The machine never recurses on the host stack: the goal continuation is a linked list and
// alternatives are choice points on the trail.
type Machine struct {
	db    *Database
	env   Env
	log   logrus.FieldLogger
	out   io.Writer
	debug bool
	trace bool

	ctx     context.Context
	cont    *goal
	tries   *tryFrame
	current *goal
	lastID  int64
	vars    []queryVar
	started bool
	done    bool
}

type queryVar struct {
	name     string
	variable Term
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger for warnings and spy ports.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Machine) {
		m.log = l
	}
}

// WithOutput sets the writer for output builtins.
func WithOutput(w io.Writer) Option {
	return func(m *Machine) {
		m.out = w
	}
}

// WithDebug logs every call at debug level.
func WithDebug(b bool) Option {
	return func(m *Machine) {
		m.debug = b
	}
}

// NewMachine creates a machine over the database.
func NewMachine(db *Database, opts ...Option) *Machine {
	m := Machine{
		db:  db,
		log: logrus.StandardLogger(),
		out: io.Discard,
	}
	for _, o := range opts {
		o(&m)
	}
	return &m
}

// ParsedVariable is a named variable of a parsed term.
type ParsedVariable struct {
	Name     string
	Variable *Variable
	Count    int
}

// Prepare sets up the machine for the query. It returns false if the query is a clause
// rather than a goal, which the host is expected to handle.
func (m *Machine) Prepare(query Term, vars []ParsedVariable) bool {
	if c, ok := Resolve(query).(*Compound); ok && c.Functor == atomIf && len(c.Args) == 2 {
		return false
	}
	m.env.UndoTo(0)
	m.env.OccursCheck = m.db.OccursCheck()
	m.tries, m.vars = nil, nil
	cp := m.env.copier()
	cp.named = true
	q := cp.copy(query)
	for _, v := range vars {
		m.vars = append(m.vars, queryVar{name: v.Name, variable: cp.copy(v.Variable)})
	}
	m.cont = &goal{kind: goalCall, term: q, level: 1}
	m.started, m.done = false, false
	return true
}

// Next computes the next solution. It returns false when there are no more solutions.
func (m *Machine) Next(ctx context.Context) (bool, error) {
	if m.done {
		return false, nil
	}
	if m.started && !m.backtrack() {
		m.done = true
		return false, nil
	}
	m.started = true
	m.ctx = ctx
	for {
		select {
		case <-ctx.Done():
			m.abandon()
			return false, ErrAborted
		default:
		}

		if m.cont == nil {
			return true, nil
		}

		ok, err := m.step()
		if err != nil {
			m.abandon()
			return false, err
		}
		if !ok && !m.backtrack() {
			m.done = true
			return false, nil
		}
	}
}

// abandon tears down the state of the query.
func (m *Machine) abandon() {
	m.done = true
	m.cont = nil
	m.tries = nil
	m.env.UndoTo(0)
}

// Binding is a query variable and its value.
type Binding struct {
	Name  string
	Value Term
}

// Solution is an answer to the query.
type Solution struct {
	Bindings []Binding
	// IsLast is true if no alternative remains.
	IsLast bool
}

// Solution returns the current answer.
func (m *Machine) Solution() Solution {
	s := Solution{
		Bindings: make([]Binding, len(m.vars)),
		IsLast:   !m.env.hasChoice(),
	}
	for i, v := range m.vars {
		s.Bindings[i] = Binding{Name: v.name, Value: m.env.Simplify(v.variable)}
	}
	return s
}

// Context returns the context of the running Next call.
func (m *Machine) Context() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

// Env returns the variable heap and trail of the query.
func (m *Machine) Env() *Env {
	return &m.env
}

// Database returns the clause database.
func (m *Machine) Database() *Database {
	return m.db
}

// Output returns the writer for output builtins.
func (m *Machine) Output() io.Writer {
	return m.out
}

// Logger returns the logger.
func (m *Machine) Logger() logrus.FieldLogger {
	return m.log
}

// Unify unifies x and y on the trail of the query.
func (m *Machine) Unify(x, y Term) bool {
	return m.env.Unify(x, y)
}

// Redo pushes a choice point which calls t in place of the current builtin goal on backtracking.
// Builtins call Redo before making any binding.
func (m *Machine) Redo(t Term) {
	g := m.current
	m.pushAlt(&goal{kind: goalCall, term: t, barrier: g.barrier, level: g.level, next: g.next})
}

func (m *Machine) pushAlt(g *goal) {
	m.env.push(entry{kind: entryChoice, choice: &choice{kind: choiceAlt, goal: g, tries: m.tries}})
}

func (m *Machine) step() (bool, error) {
	g := m.cont
	switch g.kind {
	case goalCall:
		ok, err := m.call(g)
		if err != nil {
			return m.raise(g, err)
		}
		return ok, nil
	case goalCut, goalCommit:
		m.env.cut(g.barrier)
		m.cont = g.next
	case goalTryOpen:
		m.tries = &tryFrame{id: g.id, depth: m.env.Mark(), next: m.tries}
		m.cont = g.next
	case goalCatchOpen:
		// The body succeeded. Handlers are skipped.
		id := g.id
		for g.kind != goalTryClose || g.id != id {
			g = g.next
		}
		m.popTry(id)
		m.cont = g.next
	case goalTryClose:
		m.popTry(g.id)
		m.cont = g.next
	case goalSpyExit:
		m.port("exit", g)
		m.cont = g.next
	case goalCacheExit:
		m.exitCached(g)
		m.cont = g.next
	case goalCollect:
		f := g.collect
		f.results = append(f.results, m.env.Copy(m.env.Simplify(f.template)))
		return false, nil
	}
	return true, nil
}

func (m *Machine) popTry(id int64) {
	if m.tries != nil && m.tries.id == id {
		m.tries = m.tries.next
	}
}

func (m *Machine) call(g *goal) (bool, error) {
	t := Resolve(g.term)
	name, args, ok := Callable(t)
	if !ok {
		if _, ok := t.(*Variable); ok {
			return false, &InstantiationError{Culprit: t}
		}
		return false, &TypeError{Type: "callable", Culprit: t}
	}
	pi := PI{Name: name, Arity: len(args)}

	if m.debug {
		m.log.WithFields(logrus.Fields{
			"goal":  t,
			"level": g.level,
		}).Debug("call")
	}

	if c, ok := controlConstructs[pi]; ok {
		return c(m, g, args)
	}

	p, ok := m.db.Lookup(pi)
	if !ok {
		return m.unknown(pi)
	}

	if p.Builtin != 0 {
		m.current = g
		m.cont = g.next
		return m.db.builtin(p.Builtin)(m, args)
	}

	return m.resolve(g, p), nil
}

func (m *Machine) unknown(pi PI) (bool, error) {
	switch m.db.UnknownFor(pi) {
	case UnknownWarning:
		m.log.WithField("procedure", pi).Warn("unknown procedure")
		return false, nil
	case UnknownFail:
		return false, nil
	default:
		return false, &ExistenceError{ObjectType: "procedure", Culprit: pi.Term()}
	}
}

// resolve calls a user-defined predicate.
func (m *Machine) resolve(g *goal, p Predicate) bool {
	exit := g.next
	if p.Spy || m.trace {
		m.port("call", g)
		m.env.push(entry{kind: entrySpy, spy: &spyFrame{goal: g}})
		exit = &goal{kind: goalSpyExit, term: g.term, level: g.level, next: exit}
	}
	if p.Cache && p.answers != nil {
		mark := m.env.Mark()
		f, ok := m.callCached(g, p)
		if f == nil {
			m.cont = exit
			return ok
		}
		exit = &goal{kind: goalCacheExit, term: g.term, barrier: mark, level: g.level, cache: f, next: exit}
	}
	return m.tryClauses(g, p, p.clauses, 0, exit)
}

// tryClauses tries the clauses from i on. A choice point is pushed only if an alternative remains.
func (m *Machine) tryClauses(g *goal, p Predicate, cs []*Clause, i int, exit *goal) bool {
	barrier := m.env.Mark()
	for ; i < len(cs); i++ {
		if i+1 < len(cs) {
			m.env.push(entry{kind: entryChoice, choice: &choice{
				kind:    choiceClauses,
				goal:    g,
				tries:   m.tries,
				pred:    p,
				clauses: cs,
				index:   i + 1,
				exit:    exit,
			}})
		}
		head, body := cs[i].rename(&m.env)
		if m.env.Unify(g.term, head) {
			m.cont = goals(body, barrier, g.level+1, exit)
			return true
		}
		m.env.UndoTo(barrier)
	}
	return false
}

// backtrack resumes the most recent active choice point.
func (m *Machine) backtrack() bool {
	for {
		e, ok := m.env.popMarker()
		if !ok {
			return false
		}
		switch e.kind {
		case entrySpy:
			m.port("fail", e.spy.goal)
		case entryCache:
			m.failCached(e.cache)
		case entryChoice:
			c := e.choice
			m.tries = c.tries
			switch c.kind {
			case choiceAlt:
				m.cont = c.goal
				return true
			case choiceClauses:
				if c.pred.Spy || m.trace {
					m.port("redo", c.goal)
				}
				if m.tryClauses(c.goal, c.pred, c.clauses, c.index, c.exit) {
					return true
				}
			case choiceFindall:
				if m.env.Unify(c.collect.instance, List(c.collect.results...)) {
					m.cont = c.goal
					return true
				}
			}
		}
	}
}

// raise turns an error from a goal into a thrown exception, or a query error if it's not catchable.
func (m *Machine) raise(g *goal, err error) (bool, error) {
	var ex *Exception
	if !errors.As(err, &ex) {
		var e exceptional
		if !errors.As(err, &e) {
			return false, &QueryError{Goal: m.env.Simplify(g.term), Level: g.level, Err: err}
		}
		ex = e.exception()
	}
	if m.throw(g, ex) {
		return true, nil
	}
	var class Term
	if ex.Class != nil {
		class = m.env.Simplify(ex.Class)
	}
	return false, &Exception{Class: class, Message: m.env.Simplify(ex.Message)}
}
