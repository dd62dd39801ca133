package engine

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// WriteOptions controls how a term is written.
type WriteOptions struct {
	// Quoted quotes atoms and strings so that the output can be read back.
	Quoted bool
	// IgnoreOps writes every compound in the canonical form f(a, b).
	IgnoreOps bool
	// Ops is the operator table. If nil, the default table is used.
	Ops *Operators
	// Priority is the context priority. 0 means 1200.
	Priority int

	variableNames map[*Variable]string
}

var defaultOperators = DefaultOperators()

// Write writes the term.
func Write(w io.Writer, t Term, opts WriteOptions) error {
	if opts.Ops == nil {
		opts.Ops = defaultOperators
	}
	if opts.Priority == 0 {
		opts.Priority = 1200
	}
	tw := termWriter{w: w, opts: opts, visiting: map[*Variable]struct{}{}}
	tw.write(t, opts.Priority)
	return tw.err
}

type termWriter struct {
	w        io.Writer
	opts     WriteOptions
	visiting map[*Variable]struct{}
	err      error
	last     rune
}

func (tw *termWriter) str(s string) {
	if tw.err != nil || s == "" {
		return
	}
	// Avoid gluing two tokens into one.
	if r := []rune(s)[0]; tw.last != 0 && glues(tw.last, r) {
		_, tw.err = io.WriteString(tw.w, " ")
	}
	_, tw.err = io.WriteString(tw.w, s)
	rs := []rune(s)
	tw.last = rs[len(rs)-1]
}

func glues(a, b rune) bool {
	alnum := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
	}
	return (alnum(a) && alnum(b)) || (isGraphic(a) && isGraphic(b))
}

func (tw *termWriter) write(t Term, priority int) {
	switch t := t.(type) {
	case *Variable:
		if t.Ref != nil {
			if _, ok := tw.visiting[t]; ok {
				tw.str("...")
				return
			}
			tw.visiting[t] = struct{}{}
			tw.write(t.Ref, priority)
			delete(tw.visiting, t)
			return
		}
		if n, ok := tw.opts.variableNames[t]; ok {
			tw.str(n)
			return
		}
		tw.str(t.String())
	case Atom:
		tw.atom(t, priority)
	case Number:
		tw.str(t.String())
	case String:
		if tw.opts.Quoted {
			tw.str(strconv.Quote(string(t)))
			return
		}
		tw.str(string(t))
	case Complex, Bool, DateTime, TimeSpan, Binary:
		tw.str(t.String())
	case *Compound:
		tw.compound(t, priority)
	default:
		panic(fmt.Sprintf("unknown term kind: %T", t))
	}
}

func (tw *termWriter) atom(a Atom, priority int) {
	s := string(a)
	if tw.opts.Quoted {
		s = a.quoted()
	}
	if tw.opts.Ops.defined(a) && priority < 1200 && !tw.opts.IgnoreOps {
		if o, ok := tw.opts.Ops.lookup(a, operatorClassInfix); ok && o.Priority > priority {
			tw.str("(")
			tw.str(s)
			tw.str(")")
			return
		}
	}
	tw.str(s)
}

func (tw *termWriter) compound(c *Compound, priority int) {
	if c.Functor == atomDot && len(c.Args) == 2 {
		tw.list(c)
		return
	}
	if c.Functor == atomEmptyBlock && len(c.Args) == 1 && !tw.opts.IgnoreOps {
		tw.str("{")
		tw.write(c.Args[0], 1200)
		tw.str("}")
		return
	}
	if !tw.opts.IgnoreOps {
		switch len(c.Args) {
		case 1:
			if o, ok := tw.opts.Ops.lookup(c.Functor, operatorClassPrefix); ok {
				tw.prefix(o, c, priority)
				return
			}
			if o, ok := tw.opts.Ops.lookup(c.Functor, operatorClassPostfix); ok {
				tw.postfix(o, c, priority)
				return
			}
		case 2:
			if o, ok := tw.opts.Ops.lookup(c.Functor, operatorClassInfix); ok {
				tw.infix(o, c, priority)
				return
			}
		}
	}
	tw.atom(c.Functor, 1200)
	tw.str("(")
	for i, a := range c.Args {
		if i > 0 {
			tw.str(",")
		}
		tw.write(a, 999)
	}
	tw.str(")")
}

func (tw *termWriter) list(c *Compound) {
	tw.str("[")
	tw.write(c.Args[0], 999)
	t := c.Args[1]
	for {
		t = tw.resolve(t)
		switch l := t.(type) {
		case Atom:
			if l != atomEmptyList {
				tw.str("|")
				tw.write(l, 999)
			}
			tw.str("]")
			return
		case *Compound:
			if l.Functor == atomDot && len(l.Args) == 2 {
				tw.str(",")
				tw.write(l.Args[0], 999)
				t = l.Args[1]
				continue
			}
		}
		tw.str("|")
		tw.write(t, 999)
		tw.str("]")
		return
	}
}

// resolve follows bound variables unless it would loop.
func (tw *termWriter) resolve(t Term) Term {
	for {
		v, ok := t.(*Variable)
		if !ok || v.Ref == nil {
			return t
		}
		if _, ok := tw.visiting[v]; ok {
			return v
		}
		t = v.Ref
	}
}

func (tw *termWriter) prefix(o Operator, c *Compound, priority int) {
	_, r := o.bindingPriorities()
	open := o.Priority > priority
	if open {
		tw.str("(")
	}
	tw.atom(c.Functor, 1200)
	arg := tw.resolve(c.Args[0])
	if _, ok := arg.(Number); ok || isSymbolic(arg) {
		tw.str(" ")
	}
	tw.write(arg, r)
	if open {
		tw.str(")")
	}
}

func (tw *termWriter) postfix(o Operator, c *Compound, priority int) {
	l, _ := o.bindingPriorities()
	open := o.Priority > priority
	if open {
		tw.str("(")
	}
	tw.write(c.Args[0], l)
	tw.atom(c.Functor, 1200)
	if open {
		tw.str(")")
	}
}

func (tw *termWriter) infix(o Operator, c *Compound, priority int) {
	l, r := o.bindingPriorities()
	open := o.Priority > priority
	if open {
		tw.str("(")
	}
	tw.write(c.Args[0], l)
	switch c.Functor {
	case atomComma:
		tw.str(",")
	case atomBar:
		tw.str("|")
	default:
		s := string(c.Functor)
		if tw.opts.Quoted {
			s = c.Functor.quoted()
		}
		if unicode.IsLetter([]rune(s)[0]) || c.Functor == atomIf || c.Functor == atomArrow || c.Functor == atomThen || c.Functor == atomSemicolon {
			tw.str(" ")
			tw.str(s)
			tw.str(" ")
		} else {
			tw.str(s)
		}
	}
	tw.write(c.Args[1], r)
	if open {
		tw.str(")")
	}
}

func isSymbolic(t Term) bool {
	a, ok := t.(Atom)
	if !ok {
		return false
	}
	return graphicalAtomPattern.MatchString(string(a))
}

// Text returns the text of the term as written by write/1.
func Text(t Term) string {
	var sb strings.Builder
	_ = Write(&sb, t, WriteOptions{})
	return sb.String()
}
