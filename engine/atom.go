package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	unquotedAtomPattern     = regexp.MustCompile(`\A[a-z][a-zA-Z0-9_]*\z`)
	graphicalAtomPattern    = regexp.MustCompile(`\A[#$&*+\-./:<=>?@^~\\]+\z`)
	quotedAtomEscapePattern = regexp.MustCompile("[[:cntrl:]]|\\\\|'")
)

// Atom is a prolog atom.
type Atom string

// Well-known atoms.
const (
	atomEmptyList  = Atom("[]")
	atomEmptyBlock = Atom("{}")
	atomDot        = Atom(".")
	atomComma      = Atom(",")
	atomBar        = Atom("|")
	atomSemicolon  = Atom(";")
	atomIf         = Atom(":-")
	atomThen       = Atom("->")
	atomNegation   = Atom(`\+`)
	atomCut        = Atom("!")
	atomTrue       = Atom("true")
	atomFalse      = Atom("false")
	atomFail       = Atom("fail")
	atomCall       = Atom("call")
	atomError      = Atom("error")
	atomMinus      = Atom("-")
	atomSlash      = Atom("/")
	atomEqual      = Atom("=")
	atomArrow      = Atom("-->")
	atomCatch      = Atom("catch")
	atomPhrase     = Atom("phrase")
	atomLessThan   = Atom("<")
	atomGreater    = Atom(">")
)

// Apply returns a Compound which Functor is the Atom and Args are the arguments. If the arguments are empty,
// then returns itself.
func (a Atom) Apply(args ...Term) Term {
	if len(args) == 0 {
		return a
	}
	return &Compound{
		Functor: a,
		Args:    args,
	}
}

func (a Atom) String() string {
	var sb strings.Builder
	_ = Write(&sb, a, WriteOptions{Quoted: true})
	return sb.String()
}

// quoted returns the atom quoted if it can't be read back as is.
func (a Atom) quoted() string {
	switch {
	case a == atomComma:
		return "','"
	case a == atomEmptyList, a == atomEmptyBlock, a == atomCut, a == atomSemicolon:
		return string(a)
	case unquotedAtomPattern.MatchString(string(a)), graphicalAtomPattern.MatchString(string(a)):
		return string(a)
	default:
		return quote(string(a))
	}
}

func quote(s string) string {
	return fmt.Sprintf("'%s'", quotedAtomEscapePattern.ReplaceAllStringFunc(s, quotedIdentEscape))
}

func quotedIdentEscape(s string) string {
	switch s {
	case "\a":
		return `\a`
	case "\b":
		return `\b`
	case "\f":
		return `\f`
	case "\n":
		return `\n`
	case "\r":
		return `\r`
	case "\t":
		return `\t`
	case "\v":
		return `\v`
	case `\`:
		return `\\`
	case `'`:
		return `\'`
	default:
		var sb strings.Builder
		for _, r := range s {
			_, _ = fmt.Fprintf(&sb, `\x%x\`, r)
		}
		return sb.String()
	}
}

func unescape(s string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			_ = sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", errBadEscape
		}
		switch c := s[i]; c {
		case 'a':
			_ = sb.WriteByte('\a')
		case 'b':
			_ = sb.WriteByte('\b')
		case 'f':
			_ = sb.WriteByte('\f')
		case 'n':
			_ = sb.WriteByte('\n')
		case 'r':
			_ = sb.WriteByte('\r')
		case 't':
			_ = sb.WriteByte('\t')
		case 'v':
			_ = sb.WriteByte('\v')
		case '\\', '\'', '"', '`':
			_ = sb.WriteByte(c)
		case '\n': // continuation
		case 'x':
			j := strings.IndexByte(s[i:], '\\')
			if j < 0 {
				return "", errBadEscape
			}
			r, err := strconv.ParseInt(s[i+1:i+j], 16, 32)
			if err != nil {
				return "", errBadEscape
			}
			_, _ = sb.WriteRune(rune(r))
			i += j
		default:
			if c < '0' || c > '7' {
				return "", errBadEscape
			}
			j := strings.IndexByte(s[i:], '\\')
			if j < 0 {
				return "", errBadEscape
			}
			r, err := strconv.ParseInt(s[i:i+j], 8, 32)
			if err != nil {
				return "", errBadEscape
			}
			_, _ = sb.WriteRune(rune(r))
			i += j
		}
	}
	return sb.String(), nil
}
