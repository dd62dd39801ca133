package engine

import (
	"sync"
)

type operatorClass uint8

const (
	operatorClassPrefix operatorClass = iota
	operatorClassInfix
	operatorClassPostfix
	_operatorClassLen
)

// OperatorSpecifier is the type and associativity of an operator.
type OperatorSpecifier uint8

// OperatorSpecifier is one of these values.
const (
	OperatorSpecifierNone OperatorSpecifier = iota
	OperatorSpecifierFX
	OperatorSpecifierFY
	OperatorSpecifierXF
	OperatorSpecifierYF
	OperatorSpecifierXFX
	OperatorSpecifierXFY
	OperatorSpecifierYFX
)

// ParseOperatorSpecifier parses the name of a specifier such as xfy.
func ParseOperatorSpecifier(a Atom) (OperatorSpecifier, bool) {
	s, ok := map[Atom]OperatorSpecifier{
		"fx":  OperatorSpecifierFX,
		"fy":  OperatorSpecifierFY,
		"xf":  OperatorSpecifierXF,
		"yf":  OperatorSpecifierYF,
		"xfx": OperatorSpecifierXFX,
		"xfy": OperatorSpecifierXFY,
		"yfx": OperatorSpecifierYFX,
	}[a]
	return s, ok
}

func (s OperatorSpecifier) class() operatorClass {
	switch s {
	case OperatorSpecifierFX, OperatorSpecifierFY:
		return operatorClassPrefix
	case OperatorSpecifierXF, OperatorSpecifierYF:
		return operatorClassPostfix
	default:
		return operatorClassInfix
	}
}

// Operator is an operator definition.
type Operator struct {
	Priority  int // 1 ~ 1200
	Specifier OperatorSpecifier
	Name      Atom
}

// Pratt parser's binding powers but in Prolog priority.
func (o Operator) bindingPriorities() (int, int) {
	const max = 1202
	type lr struct {
		left, right int
	}
	p := [...]lr{
		OperatorSpecifierFX:  {max, o.Priority - 1},
		OperatorSpecifierFY:  {max, o.Priority},
		OperatorSpecifierXF:  {o.Priority - 1, max},
		OperatorSpecifierYF:  {o.Priority, max},
		OperatorSpecifierXFX: {o.Priority - 1, o.Priority - 1},
		OperatorSpecifierXFY: {o.Priority - 1, o.Priority},
		OperatorSpecifierYFX: {o.Priority, o.Priority - 1},
	}[o.Specifier]
	return p.left, p.right
}

// Operators is an operator table.
type Operators struct {
	mu  sync.RWMutex
	ops map[Atom][_operatorClassLen]Operator
}

// DefaultOperators returns a table of the standard operators.
func DefaultOperators() *Operators {
	var ops Operators
	for _, o := range []Operator{
		{Priority: 1200, Specifier: OperatorSpecifierXFX, Name: atomIf},
		{Priority: 1200, Specifier: OperatorSpecifierXFX, Name: atomArrow},
		{Priority: 1200, Specifier: OperatorSpecifierFX, Name: atomIf},
		{Priority: 1200, Specifier: OperatorSpecifierFX, Name: "?-"},
		{Priority: 1150, Specifier: OperatorSpecifierFX, Name: "dynamic"},
		{Priority: 1150, Specifier: OperatorSpecifierFX, Name: "discontiguous"},
		{Priority: 1150, Specifier: OperatorSpecifierFX, Name: "cache"},
		{Priority: 1100, Specifier: OperatorSpecifierXFY, Name: atomSemicolon},
		{Priority: 1100, Specifier: OperatorSpecifierXFY, Name: atomBar},
		{Priority: 1050, Specifier: OperatorSpecifierXFY, Name: atomThen},
		{Priority: 1000, Specifier: OperatorSpecifierXFY, Name: atomComma},
		{Priority: 900, Specifier: OperatorSpecifierFY, Name: atomNegation},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: atomEqual},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: `\=`},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "=="},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: `\==`},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "@<"},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "@>"},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "@=<"},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "@>="},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "=.."},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "is"},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "=:="},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: `=\=`},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: atomLessThan},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: atomGreater},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "=<"},
		{Priority: 700, Specifier: OperatorSpecifierXFX, Name: ">="},
		{Priority: 600, Specifier: OperatorSpecifierXFY, Name: ":"},
		{Priority: 500, Specifier: OperatorSpecifierYFX, Name: "+"},
		{Priority: 500, Specifier: OperatorSpecifierYFX, Name: atomMinus},
		{Priority: 500, Specifier: OperatorSpecifierYFX, Name: `/\`},
		{Priority: 500, Specifier: OperatorSpecifierYFX, Name: `\/`},
		{Priority: 500, Specifier: OperatorSpecifierYFX, Name: "xor"},
		{Priority: 400, Specifier: OperatorSpecifierYFX, Name: "*"},
		{Priority: 400, Specifier: OperatorSpecifierYFX, Name: atomSlash},
		{Priority: 400, Specifier: OperatorSpecifierYFX, Name: "//"},
		{Priority: 400, Specifier: OperatorSpecifierYFX, Name: "rem"},
		{Priority: 400, Specifier: OperatorSpecifierYFX, Name: "mod"},
		{Priority: 400, Specifier: OperatorSpecifierYFX, Name: "div"},
		{Priority: 400, Specifier: OperatorSpecifierYFX, Name: "<<"},
		{Priority: 400, Specifier: OperatorSpecifierYFX, Name: ">>"},
		{Priority: 200, Specifier: OperatorSpecifierXFX, Name: "**"},
		{Priority: 200, Specifier: OperatorSpecifierXFY, Name: "^"},
		{Priority: 200, Specifier: OperatorSpecifierFY, Name: atomMinus},
		{Priority: 200, Specifier: OperatorSpecifierFY, Name: "+"},
		{Priority: 200, Specifier: OperatorSpecifierFY, Name: `\`},
	} {
		ops.Define(o.Priority, o.Specifier, o.Name)
	}
	return &ops
}

// Define adds an operator. Priority 0 removes the operator of the same class.
func (ops *Operators) Define(priority int, spec OperatorSpecifier, name Atom) {
	ops.mu.Lock()
	defer ops.mu.Unlock()
	if ops.ops == nil {
		ops.ops = map[Atom][_operatorClassLen]Operator{}
	}
	os := ops.ops[name]
	if priority == 0 {
		os[spec.class()] = Operator{}
	} else {
		os[spec.class()] = Operator{Priority: priority, Specifier: spec, Name: name}
	}
	if os == ([_operatorClassLen]Operator{}) {
		delete(ops.ops, name)
		return
	}
	ops.ops[name] = os
}

func (ops *Operators) lookup(name Atom, class operatorClass) (Operator, bool) {
	if ops == nil {
		return Operator{}, false
	}
	ops.mu.RLock()
	defer ops.mu.RUnlock()
	o := ops.ops[name][class]
	return o, o != Operator{}
}

func (ops *Operators) defined(name Atom) bool {
	if ops == nil {
		return false
	}
	ops.mu.RLock()
	defer ops.mu.RUnlock()
	_, ok := ops.ops[name]
	return ok
}

// All returns every operator definition.
func (ops *Operators) All() []Operator {
	ops.mu.RLock()
	defer ops.mu.RUnlock()
	var ret []Operator
	for _, os := range ops.ops {
		for _, o := range os {
			if o != (Operator{}) {
				ret = append(ret, o)
			}
		}
	}
	return ret
}
