package engine

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parser turns tokens into terms.
type Parser struct {
	lexer   *Lexer
	ops     *Operators
	pending []Token
	current Token

	// Vars are the named variables of the last term read, in order of appearance.
	Vars []ParsedVariable
}

// NewParser creates a parser which reads terms from r with the operator table ops.
func NewParser(r io.Reader, ops *Operators) *Parser {
	if ops == nil {
		ops = defaultOperators
	}
	return &Parser{lexer: NewLexer(r), ops: ops}
}

// Term reads the next term ended by a period. It returns io.EOF if no term remains.
// After a syntax error, the rest of the malformed term is skipped.
func (p *Parser) Term() (Term, error) {
	p.Vars = nil

	t, err := p.next()
	if err != nil {
		return nil, p.syntaxError(err)
	}
	if t.Kind == TokenEOS {
		return nil, io.EOF
	}
	p.backup()

	term, err := p.term(1200)
	if err != nil {
		if e := (unexpectedTokenError{}); !errors.As(err, &e) || e.actual.Kind != TokenPeriod {
			p.skip()
		}
		return nil, p.syntaxError(err)
	}

	t, err = p.next()
	if err != nil {
		return nil, p.syntaxError(err)
	}
	if t.Kind != TokenPeriod {
		p.skip()
		return nil, p.syntaxError(unexpectedTokenError{actual: t})
	}
	return term, nil
}

func (p *Parser) syntaxError(err error) error {
	if errors.Is(err, ErrInsufficient) {
		return &SyntaxError{Line: p.lexer.Line(), Detail: "end_of_file"}
	}
	var u UnexpectedRuneError
	if errors.As(err, &u) {
		return &SyntaxError{Line: u.line, Detail: err.Error()}
	}
	var e unexpectedTokenError
	if errors.As(err, &e) {
		return &SyntaxError{Line: e.actual.Line, Detail: err.Error()}
	}
	return &SyntaxError{Line: p.lexer.Line(), Detail: err.Error()}
}

// skip discards tokens up to the next period.
func (p *Parser) skip() {
	for {
		t, err := p.next()
		if err != nil || t.Kind == TokenPeriod || t.Kind == TokenEOS {
			return
		}
	}
}

func (p *Parser) next() (Token, error) {
	if n := len(p.pending); n > 0 {
		p.current, p.pending = p.pending[n-1], p.pending[:n-1]
		return p.current, nil
	}
	t, err := p.lexer.Next()
	if err != nil {
		return Token{}, err
	}
	p.current = t
	return t, nil
}

// backup pushes back the current token.
func (p *Parser) backup() {
	p.pending = append(p.pending, p.current)
}

func (p *Parser) peek() (Token, error) {
	cur := p.current
	t, err := p.next()
	if err != nil {
		return Token{}, err
	}
	p.backup()
	p.current = cur
	return t, nil
}

func (p *Parser) expect(k TokenKind) error {
	t, err := p.next()
	if err != nil {
		return err
	}
	if t.Kind != k {
		return unexpectedTokenError{actual: t}
	}
	return nil
}

// name returns the atom of a token which can be an operator or a functor.
func (p *Parser) name(t Token) (Atom, bool, error) {
	switch t.Kind {
	case TokenIdent, TokenGraphic:
		return Atom(t.Val), true, nil
	case TokenQuotedIdent:
		s, err := unescape(t.Val)
		if err != nil {
			return "", false, err
		}
		return Atom(s), true, nil
	case TokenComma:
		return atomComma, true, nil
	case TokenBar:
		return atomBar, true, nil
	default:
		return "", false, nil
	}
}

func (p *Parser) term(maxPriority int) (Term, error) {
	lhs, priority, err := p.primary(maxPriority)
	if err != nil {
		return nil, err
	}
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		name, ok, err := p.name(t)
		if err != nil {
			return nil, err
		}
		if !ok {
			p.backup()
			return lhs, nil
		}

		if o, ok := p.ops.lookup(name, operatorClassInfix); ok && o.Priority <= maxPriority {
			l, r := o.bindingPriorities()
			if l >= priority {
				rhs, err := p.term(r)
				if err != nil {
					return nil, err
				}
				if name == atomBar {
					name = atomSemicolon
				}
				lhs, priority = name.Apply(lhs, rhs), o.Priority
				continue
			}
		}

		if o, ok := p.ops.lookup(name, operatorClassPostfix); ok && o.Priority <= maxPriority {
			l, _ := o.bindingPriorities()
			if l >= priority {
				lhs, priority = name.Apply(lhs), o.Priority
				continue
			}
		}

		p.backup()
		return lhs, nil
	}
}

// primary reads a term which doesn't start with an infix operator. It returns the term and its priority.
func (p *Parser) primary(maxPriority int) (Term, int, error) {
	t, err := p.next()
	if err != nil {
		return nil, 0, err
	}
	switch t.Kind {
	case TokenInteger, TokenFloat:
		n, err := number(t, false)
		return n, 0, err
	case TokenVariable:
		return p.variable(t.Val), 0, nil
	case TokenDoubleQuoted:
		s, err := unescape(t.Val)
		if err != nil {
			return nil, 0, err
		}
		return String(s), 0, nil
	case TokenParenL:
		term, err := p.term(1200)
		if err != nil {
			return nil, 0, err
		}
		return term, 0, p.expect(TokenParenR)
	case TokenBracketL:
		term, err := p.list()
		return term, 0, err
	case TokenBraceL:
		term, err := p.term(1200)
		if err != nil {
			return nil, 0, err
		}
		return atomEmptyBlock.Apply(term), 0, p.expect(TokenBraceR)
	case TokenIdent, TokenGraphic, TokenQuotedIdent:
		name, _, err := p.name(t)
		if err != nil {
			return nil, 0, err
		}
		return p.atomic(t, name, maxPriority)
	default:
		return nil, 0, unexpectedTokenError{actual: t}
	}
}

// atomic reads a term starting with a name: a compound in functional notation, a negative number,
// a prefix operator application, or the atom itself.
func (p *Parser) atomic(t Token, name Atom, maxPriority int) (Term, int, error) {
	next, err := p.peek()
	if err != nil {
		return nil, 0, err
	}

	if next.Kind == TokenParenL && !next.Layout {
		_, _ = p.next()
		c, err := p.arguments(name)
		return c, 0, err
	}

	if name == atomMinus && t.Kind == TokenGraphic && !next.Layout && (next.Kind == TokenInteger || next.Kind == TokenFloat) {
		_, _ = p.next()
		n, err := number(next, true)
		return n, 0, err
	}

	o, ok := p.ops.lookup(name, operatorClassPrefix)
	if !ok || p.isTermEnd(next) {
		return name, 0, nil
	}
	_, r := o.bindingPriorities()
	priority := o.Priority
	if priority > maxPriority {
		priority, r = maxPriority, min(r, maxPriority)
	}
	arg, err := p.term(r)
	if err != nil {
		return nil, 0, err
	}
	return name.Apply(arg), priority, nil
}

// isTermEnd checks if the token after a prefix operator means the operator is an atom.
func (p *Parser) isTermEnd(t Token) bool {
	switch t.Kind {
	case TokenEOS, TokenPeriod, TokenParenR, TokenBracketR, TokenBraceR, TokenComma, TokenBar:
		return true
	case TokenIdent, TokenGraphic:
		a := Atom(t.Val)
		_, infix := p.ops.lookup(a, operatorClassInfix)
		_, prefix := p.ops.lookup(a, operatorClassPrefix)
		return infix && !prefix
	default:
		return false
	}
}

func (p *Parser) arguments(functor Atom) (Term, error) {
	var args []Term
	for {
		arg, err := p.term(999)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		t, err := p.next()
		if err != nil {
			return nil, err
		}
		switch t.Kind {
		case TokenComma:
			continue
		case TokenParenR:
			return functor.Apply(args...), nil
		default:
			return nil, unexpectedTokenError{actual: t}
		}
	}
}

func (p *Parser) list() (Term, error) {
	var elems []Term
	for {
		e, err := p.term(999)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)

		t, err := p.next()
		if err != nil {
			return nil, err
		}
		switch t.Kind {
		case TokenComma:
			continue
		case TokenBar:
			rest, err := p.term(999)
			if err != nil {
				return nil, err
			}
			if err := p.expect(TokenBracketR); err != nil {
				return nil, err
			}
			return ListRest(rest, elems...), nil
		case TokenBracketR:
			return List(elems...), nil
		default:
			return nil, unexpectedTokenError{actual: t}
		}
	}
}

// variable returns the variable of the name. Each _ is a distinct variable.
func (p *Parser) variable(name string) Term {
	if name == "_" {
		return &Variable{}
	}
	for i, v := range p.Vars {
		if v.Name == name {
			p.Vars[i].Count++
			return v.Variable
		}
	}
	v := &Variable{Name: name}
	p.Vars = append(p.Vars, ParsedVariable{Name: name, Variable: v, Count: 1})
	return v
}

func number(t Token, negative bool) (Number, error) {
	s := t.Val
	if t.Kind == TokenInteger && len(s) > 2 && s[0] == '0' {
		base := map[byte]int{'x': 16, 'o': 8, 'b': 2}[s[1]]
		if base != 0 {
			i, err := strconv.ParseInt(s[2:], base, 64)
			if err != nil {
				return Number{}, &RepresentationError{Limit: "max_integer"}
			}
			if negative {
				i = -i
			}
			return NewInteger(i), nil
		}
	}
	if negative {
		s = "-" + s
	}
	return ParseNumber(s)
}

type unexpectedTokenError struct {
	actual Token
}

func (e unexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected token: %s", e.actual)
}

// ParseTerm parses a single term ended by a period.
func ParseTerm(s string, ops *Operators) (Term, []ParsedVariable, error) {
	if !strings.HasSuffix(strings.TrimSpace(s), ".") {
		s += "."
	}
	p := NewParser(strings.NewReader(s), ops)
	t, err := p.Term()
	if err != nil {
		return nil, nil, err
	}
	return t, p.Vars, nil
}
