package engine

import (
	"fmt"
)

// Env is the variable heap and the trail of a single query.
//
// The trail records variable bindings interleaved with markers (choice points, spy and cache markers).
// Markers are linked through prev so that cut and backtracking visit markers only.
type Env struct {
	// OccursCheck makes Unify fail instead of creating cyclic terms.
	OccursCheck bool

	lastID int64
	trail  []entry
	top    int // 1-based index of the topmost active marker. 0 if none.
}

type entryKind uint8

const (
	entryBinding entryKind = iota
	entryChoice
	entrySpy
	entryCache
)

func (k entryKind) String() string {
	return [...]string{
		entryBinding: "binding",
		entryChoice:  "choice",
		entrySpy:     "spy",
		entryCache:   "cache",
	}[k]
}

type entry struct {
	kind     entryKind
	variable *Variable
	prev     int
	inactive bool

	choice *choice
	spy    *spyFrame
	cache  *cacheFrame
}

// NewVariable creates a fresh anonymous variable.
func (e *Env) NewVariable() *Variable {
	e.lastID++
	return &Variable{id: e.lastID}
}

// NewNamedVariable creates a fresh variable with a display name.
func (e *Env) NewNamedVariable(name string) *Variable {
	v := e.NewVariable()
	v.Name = name
	return v
}

// Bind binds v to t and records it on the trail. Binding a variable to itself is a no-op.
func (e *Env) Bind(v *Variable, t Term) {
	if v.Ref != nil {
		panic(fmt.Sprintf("variable %s is already bound", v))
	}
	if t == Term(v) {
		return
	}
	v.Ref = t
	e.trail = append(e.trail, entry{kind: entryBinding, variable: v})
}

// Mark returns the current depth of the trail.
func (e *Env) Mark() int {
	return len(e.trail)
}

// UndoTo pops the trail down to mark, unbinding variables bound since then.
func (e *Env) UndoTo(mark int) {
	for len(e.trail) > mark {
		e.pop()
	}
}

func (e *Env) pop() entry {
	n := len(e.trail)
	en := e.trail[n-1]
	e.trail = e.trail[:n-1]
	switch {
	case en.kind == entryBinding:
		en.variable.Ref = nil
	case e.top == n:
		e.top = en.prev
	}
	return en
}

func (e *Env) push(en entry) {
	en.prev = e.top
	e.trail = append(e.trail, en)
	e.top = len(e.trail)
}

// popMarker unwinds the trail down to the topmost active marker and returns it.
// It returns false if no active marker remains, leaving the trail empty.
func (e *Env) popMarker() (entry, bool) {
	for len(e.trail) > 0 {
		active := e.top == len(e.trail)
		en := e.pop()
		if en.kind != entryBinding && active {
			return en, true
		}
	}
	return entry{}, false
}

// cut deactivates every marker at or above barrier. Bindings are kept.
func (e *Env) cut(barrier int) {
	for e.top > barrier {
		m := &e.trail[e.top-1]
		m.inactive = true
		e.top = m.prev
	}
}

// hasChoice checks if any active choice point remains.
func (e *Env) hasChoice() bool {
	for i := e.top; i > 0; i = e.trail[i-1].prev {
		if e.trail[i-1].kind == entryChoice {
			return true
		}
	}
	return false
}

// Copy returns a copy of t in which every free variable is replaced by a fresh one.
// Repeated occurrences of a variable map to the same fresh variable.
func (e *Env) Copy(t Term) Term {
	return e.copier().copy(t)
}

func (e *Env) copier() *copier {
	return &copier{env: e, vars: map[*Variable]Term{}}
}

type copier struct {
	env  *Env
	vars map[*Variable]Term
	// named keeps the display names of the variables.
	named bool
}

func (c *copier) fresh(name string) *Variable {
	switch {
	case c.env == nil:
		return &Variable{Name: name}
	case c.named:
		return c.env.NewNamedVariable(name)
	default:
		return c.env.NewVariable()
	}
}

func (c *copier) copy(t Term) Term {
	switch t := t.(type) {
	case *Variable:
		if n, ok := c.vars[t]; ok {
			return n
		}
		if t.Ref == nil {
			n := c.fresh(t.Name)
			c.vars[t] = n
			return n
		}
		// Registered before descending so that cyclic terms are copied as cyclic terms.
		n := c.fresh(t.Name)
		c.vars[t] = n
		n.Ref = c.copy(t.Ref)
		return n
	case *Compound:
		args := make([]Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = c.copy(a)
		}
		return &Compound{Functor: t.Functor, Args: args}
	case Atom, Number, Complex, String, Bool, DateTime, TimeSpan, Binary:
		return t
	default:
		panic(fmt.Sprintf("unknown term kind: %T", t))
	}
}

// Simplify returns t with every bound variable replaced by its value.
// A variable met again while its own value is being expanded is left as is.
func (e *Env) Simplify(t Term) Term {
	return simplify(t, map[*Variable]struct{}{})
}

func simplify(t Term, visiting map[*Variable]struct{}) Term {
	switch t := t.(type) {
	case *Variable:
		if t.Ref == nil {
			return t
		}
		if _, ok := visiting[t]; ok {
			return t
		}
		visiting[t] = struct{}{}
		defer delete(visiting, t)
		return simplify(t.Ref, visiting)
	case *Compound:
		args := make([]Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = simplify(a, visiting)
		}
		return &Compound{Functor: t.Functor, Args: args}
	default:
		return t
	}
}
