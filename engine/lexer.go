package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Lexer turns runes into tokens.
type Lexer struct {
	input  *bufio.Reader
	tokens []Token
	line   int
	last   rune
	layout bool
}

// NewLexer creates a lexer.
func NewLexer(input io.Reader) *Lexer {
	br, ok := input.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(input)
	}
	return &Lexer{input: br, line: 1}
}

// Line returns the current line number.
func (l *Lexer) Line() int {
	return l.line
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	state := l.init
	for state != nil && len(l.tokens) == 0 {
		r, err := l.next()
		if err != nil {
			return Token{}, err
		}
		state, err = state(r)
		if err != nil {
			return Token{}, err
		}
	}

	if len(l.tokens) > 0 {
		var t Token
		t, l.tokens = l.tokens[0], l.tokens[1:]
		return t, nil
	}

	return Token{}, errors.New("no match")
}

const etx = 0x2

func (l *Lexer) next() (rune, error) {
	r, _, err := l.input.ReadRune()
	if err == io.EOF {
		r, err = etx, nil
	}
	if err != nil {
		return 0, err
	}
	if r == '\n' {
		l.line++
	}
	l.last = r
	return r, nil
}

func (l *Lexer) backup() {
	if l.last == etx {
		return
	}
	_ = l.input.UnreadRune()
	if l.last == '\n' {
		l.line--
	}
}

func (l *Lexer) emit(t Token) {
	t.Layout = l.layout
	t.Line = l.line
	l.layout = false
	l.tokens = append(l.tokens, t)
}

// Token is a smallest meaningful unit of prolog program.
type Token struct {
	Kind TokenKind
	Val  string
	// Layout is true if the token is preceded by spaces or comments.
	Layout bool
	Line   int
}

func (t Token) String() string {
	return fmt.Sprintf("<%s %s>", t.Kind, t.Val)
}

// TokenKind is a type of Token.
type TokenKind byte

const (
	// TokenEOS represents an end of token stream.
	TokenEOS TokenKind = iota

	// TokenVariable represents a variable token.
	TokenVariable

	// TokenFloat represents a floating-point token.
	TokenFloat

	// TokenInteger represents an integer token.
	TokenInteger

	// TokenIdent represents an identifier token.
	TokenIdent

	// TokenQuotedIdent represents a quoted identifier token. Its value is the text between the quotes.
	TokenQuotedIdent

	// TokenGraphic represents a graphical token.
	TokenGraphic

	// TokenComma represents a comma.
	TokenComma

	// TokenPeriod represents a period.
	TokenPeriod

	// TokenBar represents a bar.
	TokenBar

	// TokenParenL represents an open parenthesis.
	TokenParenL

	// TokenParenR represents a close parenthesis.
	TokenParenR

	// TokenBracketL represents an open bracket.
	TokenBracketL

	// TokenBracketR represents a close bracket.
	TokenBracketR

	// TokenBraceL represents an open brace.
	TokenBraceL

	// TokenBraceR represents a close brace.
	TokenBraceR

	// TokenDoubleQuoted represents a double-quoted string. Its value is the text between the quotes.
	TokenDoubleQuoted

	tokenKindLen
)

func (k TokenKind) String() string {
	return [tokenKindLen]string{
		TokenEOS:          "eos",
		TokenVariable:     "variable",
		TokenFloat:        "float",
		TokenInteger:      "integer",
		TokenIdent:        "ident",
		TokenQuotedIdent:  "quoted ident",
		TokenGraphic:      "graphical",
		TokenComma:        "comma",
		TokenPeriod:       "period",
		TokenBar:          "bar",
		TokenParenL:       "paren L",
		TokenParenR:       "paren R",
		TokenBracketL:     "bracket L",
		TokenBracketR:     "bracket R",
		TokenBraceL:       "brace L",
		TokenBraceR:       "brace R",
		TokenDoubleQuoted: "double quoted",
	}[k]
}

type lexState func(rune) (lexState, error)

func (l *Lexer) init(r rune) (lexState, error) {
	switch {
	case r == etx:
		l.emit(Token{Kind: TokenEOS})
		return nil, nil
	case unicode.IsSpace(r):
		l.layout = true
		return l.init, nil
	case r == '%':
		l.layout = true
		return l.singleLineComment, nil
	case r == '/':
		return l.slash, nil
	case r == '(':
		l.emit(Token{Kind: TokenParenL, Val: "("})
		return nil, nil
	case r == ')':
		l.emit(Token{Kind: TokenParenR, Val: ")"})
		return nil, nil
	case r == ',':
		l.emit(Token{Kind: TokenComma, Val: ","})
		return nil, nil
	case r == '|':
		return l.bar, nil
	case r == '[':
		return l.squareBracket, nil
	case r == ']':
		l.emit(Token{Kind: TokenBracketR, Val: "]"})
		return nil, nil
	case r == '{':
		return l.curlyBracket, nil
	case r == '}':
		l.emit(Token{Kind: TokenBraceR, Val: "}"})
		return nil, nil
	case r == '.':
		return l.period, nil
	case r == ';', r == '!':
		l.emit(Token{Kind: TokenIdent, Val: string(r)})
		return nil, nil
	case r == '\'':
		var b strings.Builder
		return l.quoted('\'', TokenQuotedIdent, &b), nil
	case r == '"':
		var b strings.Builder
		return l.quoted('"', TokenDoubleQuoted, &b), nil
	case r == '0':
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.integerZero(&b), nil
	case unicode.IsDigit(r):
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.integerDecimal(&b), nil
	case unicode.IsUpper(r), r == '_':
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.alphanumeric(TokenVariable, &b), nil
	case unicode.IsLetter(r):
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.alphanumeric(TokenIdent, &b), nil
	case isGraphic(r):
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.graphic(&b), nil
	default:
		return nil, UnexpectedRuneError{rune: r, line: l.line}
	}
}

func (l *Lexer) period(r rune) (lexState, error) {
	switch {
	case r == etx, r == '%', unicode.IsSpace(r):
		l.backup()
		l.emit(Token{Kind: TokenPeriod, Val: "."})
		return nil, nil
	default:
		l.backup()
		var b strings.Builder
		_, _ = b.WriteRune('.')
		return l.graphic(&b), nil
	}
}

func (l *Lexer) bar(r rune) (lexState, error) {
	if r == '|' {
		l.emit(Token{Kind: TokenIdent, Val: "||"})
		return nil, nil
	}
	l.backup()
	l.emit(Token{Kind: TokenBar, Val: "|"})
	return nil, nil
}

func (l *Lexer) squareBracket(r rune) (lexState, error) {
	if r == ']' {
		l.emit(Token{Kind: TokenIdent, Val: "[]"})
		return nil, nil
	}
	l.backup()
	l.emit(Token{Kind: TokenBracketL, Val: "["})
	return nil, nil
}

func (l *Lexer) curlyBracket(r rune) (lexState, error) {
	if r == '}' {
		l.emit(Token{Kind: TokenIdent, Val: "{}"})
		return nil, nil
	}
	l.backup()
	l.emit(Token{Kind: TokenBraceL, Val: "{"})
	return nil, nil
}

func (l *Lexer) alphanumeric(kind TokenKind, b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			_, _ = b.WriteRune(r)
			return l.alphanumeric(kind, b), nil
		default:
			l.backup()
			l.emit(Token{Kind: kind, Val: b.String()})
			return nil, nil
		}
	}
}

func (l *Lexer) graphic(b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case isGraphic(r):
			_, _ = b.WriteRune(r)
			return l.graphic(b), nil
		default:
			l.backup()
			// A run such as ?. before layout is an atom followed by an end.
			if v := b.String(); len(v) > 1 && strings.HasSuffix(v, ".") && !strings.HasSuffix(v, "..") && (r == etx || r == '%' || unicode.IsSpace(r)) {
				l.emit(Token{Kind: TokenGraphic, Val: strings.TrimSuffix(v, ".")})
				l.emit(Token{Kind: TokenPeriod, Val: "."})
				return nil, nil
			}
			l.emit(Token{Kind: TokenGraphic, Val: b.String()})
			return nil, nil
		}
	}
}

// quoted reads a quoted token. A doubled quote stands for the quote itself. Escapes are kept as they are.
func (l *Lexer) quoted(q rune, kind TokenKind, b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch r {
		case etx:
			return nil, ErrInsufficient
		case q:
			return l.quotedQuote(q, kind, b), nil
		case '\\':
			_, _ = b.WriteRune(r)
			return l.quotedEscape(q, kind, b), nil
		default:
			_, _ = b.WriteRune(r)
			return l.quoted(q, kind, b), nil
		}
	}
}

func (l *Lexer) quotedQuote(q rune, kind TokenKind, b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		if r == q {
			_, _ = b.WriteRune(r)
			return l.quoted(q, kind, b), nil
		}
		l.backup()
		l.emit(Token{Kind: kind, Val: b.String()})
		return nil, nil
	}
}

func (l *Lexer) quotedEscape(q rune, kind TokenKind, b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		if r == etx {
			return nil, ErrInsufficient
		}
		_, _ = b.WriteRune(r)
		return l.quoted(q, kind, b), nil
	}
}

func (l *Lexer) integerZero(b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case r == 'o':
			_, _ = b.WriteRune(r)
			return l.integerRadix(b, isOctal), nil
		case r == 'x':
			_, _ = b.WriteRune(r)
			return l.integerRadix(b, isHex), nil
		case r == 'b':
			_, _ = b.WriteRune(r)
			return l.integerRadix(b, isBinary), nil
		case r == '\'':
			return l.integerChar, nil
		case unicode.IsDigit(r):
			_, _ = b.WriteRune(r)
			return l.integerDecimal(b), nil
		case r == '.':
			return l.fraction(b)
		default:
			l.backup()
			l.emit(Token{Kind: TokenInteger, Val: b.String()})
			return nil, nil
		}
	}
}

func (l *Lexer) integerRadix(b *strings.Builder, digit func(rune) bool) lexState {
	return func(r rune) (lexState, error) {
		if digit(r) {
			_, _ = b.WriteRune(r)
			return l.integerRadix(b, digit), nil
		}
		l.backup()
		l.emit(Token{Kind: TokenInteger, Val: b.String()})
		return nil, nil
	}
}

// integerChar reads the character of 0'c. The value of the token is the code in decimal.
func (l *Lexer) integerChar(r rune) (lexState, error) {
	switch r {
	case etx:
		return nil, ErrInsufficient
	case '\\':
		return l.integerCharEscape, nil
	case '\'':
		return func(r rune) (lexState, error) {
			if r != '\'' {
				l.backup()
			}
			l.emit(Token{Kind: TokenInteger, Val: fmt.Sprint('\'')})
			return nil, nil
		}, nil
	default:
		l.emit(Token{Kind: TokenInteger, Val: fmt.Sprint(r)})
		return nil, nil
	}
}

func (l *Lexer) integerCharEscape(r rune) (lexState, error) {
	if r == etx {
		return nil, ErrInsufficient
	}
	s, err := unescape(`\` + string(r))
	if err != nil {
		return nil, UnexpectedRuneError{rune: r, line: l.line}
	}
	l.emit(Token{Kind: TokenInteger, Val: fmt.Sprint([]rune(s)[0])})
	return nil, nil
}

func (l *Lexer) integerDecimal(b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case unicode.IsDigit(r):
			_, _ = b.WriteRune(r)
			return l.integerDecimal(b), nil
		case r == '.':
			return l.fraction(b)
		case r == 'e' || r == 'E':
			return l.floatE(b, r), nil
		default:
			l.backup()
			l.emit(Token{Kind: TokenInteger, Val: b.String()})
			return nil, nil
		}
	}
}

// fraction decides if the dot after an integer is a decimal point or an end.
func (l *Lexer) fraction(b *strings.Builder) (lexState, error) {
	l.backup()
	if p, _ := l.input.Peek(2); len(p) == 2 && p[0] == '.' && '0' <= p[1] && p[1] <= '9' {
		if _, err := l.next(); err != nil {
			return nil, err
		}
		_, _ = b.WriteRune('.')
		return l.floatMantissa(b), nil
	}
	l.emit(Token{Kind: TokenInteger, Val: b.String()})
	return nil, nil
}

func (l *Lexer) floatMantissa(b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case unicode.IsDigit(r):
			_, _ = b.WriteRune(r)
			return l.floatMantissa(b), nil
		case r == 'e' || r == 'E':
			return l.floatE(b, r), nil
		default:
			l.backup()
			l.emit(Token{Kind: TokenFloat, Val: b.String()})
			return nil, nil
		}
	}
}

// floatE reads the exponent. If no digit follows, the e is the start of the next token.
func (l *Lexer) floatE(b *strings.Builder, e rune) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case unicode.IsDigit(r):
			_, _ = b.WriteRune(e)
			_, _ = b.WriteRune(r)
			return l.floatExponent(b), nil
		case r == '+' || r == '-':
			return func(d rune) (lexState, error) {
				if !unicode.IsDigit(d) {
					return nil, UnexpectedRuneError{rune: d, line: l.line}
				}
				_, _ = b.WriteRune(e)
				_, _ = b.WriteRune(r)
				_, _ = b.WriteRune(d)
				return l.floatExponent(b), nil
			}, nil
		default:
			return nil, UnexpectedRuneError{rune: r, line: l.line}
		}
	}
}

func (l *Lexer) floatExponent(b *strings.Builder) lexState {
	return func(r rune) (lexState, error) {
		if unicode.IsDigit(r) {
			_, _ = b.WriteRune(r)
			return l.floatExponent(b), nil
		}
		l.backup()
		l.emit(Token{Kind: TokenFloat, Val: b.String()})
		return nil, nil
	}
}

func (l *Lexer) slash(r rune) (lexState, error) {
	if r == '*' {
		l.layout = true
		return l.multiLineCommentBody, nil
	}
	l.backup()
	var b strings.Builder
	_, _ = b.WriteRune('/')
	return l.graphic(&b), nil
}

func (l *Lexer) singleLineComment(r rune) (lexState, error) {
	switch r {
	case etx:
		l.backup()
		return l.init, nil
	case '\n':
		return l.init, nil
	default:
		return l.singleLineComment, nil
	}
}

func (l *Lexer) multiLineCommentBody(r rune) (lexState, error) {
	switch r {
	case etx:
		return nil, ErrInsufficient
	case '*':
		return l.multiLineCommentEnd, nil
	default:
		return l.multiLineCommentBody, nil
	}
}

func (l *Lexer) multiLineCommentEnd(r rune) (lexState, error) {
	switch r {
	case etx:
		return nil, ErrInsufficient
	case '/':
		return l.init, nil
	case '*':
		return l.multiLineCommentEnd, nil
	default:
		return l.multiLineCommentBody, nil
	}
}

func isOctal(r rune) bool {
	return strings.ContainsRune("01234567", r)
}

func isHex(r rune) bool {
	return strings.ContainsRune("0123456789ABCDEF", unicode.ToUpper(r))
}

func isBinary(r rune) bool {
	return r == '0' || r == '1'
}

func isGraphic(r rune) bool {
	return strings.ContainsRune("#$&*+-./:<=>?@^~\\", r)
}

// ErrInsufficient represents an error which is raised when the given input is insufficient for a term.
var ErrInsufficient = errors.New("insufficient input")

// UnexpectedRuneError represents an error which is raised when the given input contains an unexpected rune.
type UnexpectedRuneError struct {
	rune rune
	line int
}

func (e UnexpectedRuneError) Error() string {
	return fmt.Sprintf("unexpected char: %s", string(e.rune))
}
