package engine

import (
	"fmt"
	"sync"
)

// Unknown is the policy for calls to undefined predicates.
type Unknown uint8

const (
	// UnknownError throws an existence error.
	UnknownError Unknown = iota
	// UnknownFail fails silently.
	UnknownFail
	// UnknownWarning logs a warning and fails.
	UnknownWarning
)

func (u Unknown) String() string {
	return [...]string{
		UnknownError:   "error",
		UnknownFail:    "fail",
		UnknownWarning: "warning",
	}[u]
}

// ParseUnknown parses the name of an unknown-predicate policy.
func ParseUnknown(s string) (Unknown, error) {
	switch s {
	case "error":
		return UnknownError, nil
	case "fail":
		return UnknownFail, nil
	case "warning":
		return UnknownWarning, nil
	default:
		return 0, fmt.Errorf("unknown policy %q", s)
	}
}

// Predicate is a set of clauses sharing the same name and arity, or a builtin.
type Predicate struct {
	PI            PI
	Builtin       BuiltinID
	Predefined    bool
	Spy           bool
	Discontiguous bool
	Cache         bool
	Source        string

	clauses []*Clause
	answers *answerCache
}

// Clauses returns the clauses of the predicate.
func (p *Predicate) Clauses() []*Clause {
	return p.clauses
}

// Database is the clause database shared by queries.
//
// Clause lists are never modified in place. A running clause scan keeps the list it started with.
type Database struct {
	mu          sync.RWMutex
	preds       map[PI]*Predicate
	builtins    []Builtin
	unknown     Unknown
	unknownPI   map[PI]Unknown
	occursCheck bool
	ops         *Operators
}

// NewDatabase creates a database with the core builtins registered.
func NewDatabase() *Database {
	db := Database{
		preds:     map[PI]*Predicate{},
		unknownPI: map[PI]Unknown{},
		ops:       DefaultOperators(),
	}
	registerCoreBuiltins(&db)
	return &db
}

// Register adds a builtin predicate.
func (db *Database) Register(name Atom, arity int, b Builtin) BuiltinID {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.builtins = append(db.builtins, b)
	id := BuiltinID(len(db.builtins))
	pi := PI{Name: name, Arity: arity}
	db.preds[pi] = &Predicate{PI: pi, Builtin: id, Predefined: true}
	return id
}

func (db *Database) builtin(id BuiltinID) Builtin {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.builtins[id-1]
}

// Lookup returns a snapshot of the predicate.
func (db *Database) Lookup(pi PI) (Predicate, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	p, ok := db.preds[pi]
	if !ok {
		return Predicate{}, false
	}
	return *p, true
}

// Define appends a consulted clause.
func (db *Database) Define(c *Clause) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	p, err := db.modifiable(c.pi)
	if err != nil {
		return err
	}
	switch {
	case p.Source == "":
		p.Source = c.Source
	case p.Source != c.Source && !p.Discontiguous && len(p.clauses) > 0:
		return &PermissionError{Operation: "modify", ObjectType: "static_procedure", Culprit: c.pi.Term()}
	}
	p.add(c, false)
	return nil
}

// Assert adds a copy of t at the front or the back of its predicate.
func (db *Database) Assert(t Term, front bool) error {
	c, err := NewClause(t, "")
	if err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	p, err := db.modifiable(c.pi)
	if err != nil {
		return err
	}
	p.add(c, front)
	return nil
}

// Retract removes the first clause which unifies with t and returns it, keeping the bindings of the successful match.
// It returns nil if no clause matches.
func (db *Database) Retract(env *Env, t Term) (*Clause, error) {
	head, body := Rulify(t)
	pi, ok := NewPI(head)
	if !ok {
		if isVariable(head) {
			return nil, &InstantiationError{Culprit: head}
		}
		return nil, &TypeError{Type: "callable", Culprit: head}
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.preds[pi]
	if !ok {
		return nil, nil
	}
	if p.Predefined {
		return nil, &PermissionError{Operation: "modify", ObjectType: "static_procedure", Culprit: pi.Term()}
	}
	for _, c := range p.clauses {
		m := env.Mark()
		h, b := c.rename(env)
		if env.Unify(head, h) && env.Unify(body, conjunction(b)) {
			db.remove(p, c)
			return c, nil
		}
		env.UndoTo(m)
	}
	return nil, nil
}

// RetractAll removes every clause which head unifies with head. No binding is left.
func (db *Database) RetractAll(env *Env, head Term) error {
	pi, ok := NewPI(head)
	if !ok {
		if isVariable(head) {
			return &InstantiationError{Culprit: head}
		}
		return &TypeError{Type: "callable", Culprit: head}
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.preds[pi]
	if !ok {
		return nil
	}
	if p.Predefined {
		return &PermissionError{Operation: "modify", ObjectType: "static_procedure", Culprit: pi.Term()}
	}
	for _, c := range p.clauses {
		h, _ := c.rename(env)
		if env.IsUnifiable(head, h) {
			db.remove(p, c)
		}
	}
	return nil
}

// Abolish removes the whole predicate.
func (db *Database) Abolish(pi PI) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.preds[pi]
	if !ok {
		return nil
	}
	if p.Predefined {
		return &PermissionError{Operation: "modify", ObjectType: "static_procedure", Culprit: pi.Term()}
	}
	delete(db.preds, pi)
	return nil
}

// Declare creates the predicate if needed and lets f update its flags.
func (db *Database) Declare(pi PI, f func(p *Predicate)) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.preds[pi]
	if !ok {
		if _, ok := controlConstructs[pi]; ok {
			return &PermissionError{Operation: "modify", ObjectType: "static_procedure", Culprit: pi.Term()}
		}
		p = &Predicate{PI: pi}
		db.preds[pi] = p
	}
	f(p)
	if p.Cache && p.answers == nil {
		p.answers = newAnswerCache()
	}
	return nil
}

// Protect marks every user-defined predicate so far as predefined.
func (db *Database) Protect() {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, p := range db.preds {
		p.Predefined = true
	}
}

// Predicates returns the indicators of every predicate.
func (db *Database) Predicates() []PI {
	db.mu.RLock()
	defer db.mu.RUnlock()
	pis := make([]PI, 0, len(db.preds))
	for pi := range db.preds {
		pis = append(pis, pi)
	}
	return pis
}

// SetUnknown sets the default policy for undefined predicates.
func (db *Database) SetUnknown(u Unknown) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.unknown = u
}

func (db *Database) unknownDefault() Unknown {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.unknown
}

// SetUnknownFor overrides the policy for the predicate pi.
func (db *Database) SetUnknownFor(pi PI, u Unknown) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.unknownPI[pi] = u
}

// UnknownFor returns the policy for the predicate pi.
func (db *Database) UnknownFor(pi PI) Unknown {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if u, ok := db.unknownPI[pi]; ok {
		return u
	}
	return db.unknown
}

// SetOccursCheck sets the occurs check flag for queries prepared afterwards.
func (db *Database) SetOccursCheck(b bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.occursCheck = b
}

// OccursCheck returns the occurs check flag.
func (db *Database) OccursCheck() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.occursCheck
}

// Operators returns the operator table.
func (db *Database) Operators() *Operators {
	return db.ops
}

func (db *Database) modifiable(pi PI) (*Predicate, error) {
	if _, ok := controlConstructs[pi]; ok {
		return nil, &PermissionError{Operation: "modify", ObjectType: "static_procedure", Culprit: pi.Term()}
	}
	p, ok := db.preds[pi]
	if !ok {
		p = &Predicate{PI: pi}
		db.preds[pi] = p
	}
	if p.Predefined {
		return nil, &PermissionError{Operation: "modify", ObjectType: "static_procedure", Culprit: pi.Term()}
	}
	return p, nil
}

func (p *Predicate) add(c *Clause, front bool) {
	cs := make([]*Clause, 0, len(p.clauses)+1)
	if front {
		cs = append(cs, c)
		cs = append(cs, p.clauses...)
	} else {
		cs = append(cs, p.clauses...)
		cs = append(cs, c)
	}
	p.clauses = cs
	p.answers.clear()
}

// remove drops c from p. A predicate left without clauses is deleted.
func (db *Database) remove(p *Predicate, c *Clause) {
	cs := make([]*Clause, 0, len(p.clauses))
	for _, e := range p.clauses {
		if e != c {
			cs = append(cs, e)
		}
	}
	p.clauses = cs
	p.answers.clear()
	if len(cs) == 0 {
		delete(db.preds, p.PI)
	}
}
