package engine

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestWrite(t *testing.T) {
	var e Env
	x := e.NewNamedVariable("X")

	tests := []struct {
		title  string
		term   Term
		opts   WriteOptions
		output string
	}{
		{title: "atom", term: Atom("a"), output: "a"},
		{title: "quoted atom", term: Atom("hello world"), opts: WriteOptions{Quoted: true}, output: "'hello world'"},
		{title: "quoted escape", term: Atom("it's\n"), opts: WriteOptions{Quoted: true}, output: `'it\'s\n'`},
		{title: "graphic atom", term: Atom("+"), opts: WriteOptions{Quoted: true}, output: "+"},
		{title: "empty list", term: atomEmptyList, opts: WriteOptions{Quoted: true}, output: "[]"},
		{title: "comma", term: atomComma, opts: WriteOptions{Quoted: true}, output: "','"},
		{title: "integer", term: NewInteger(-42), output: "-42"},
		{title: "float", term: mustFloat(1.5), output: "1.5"},
		{title: "string", term: String("a b"), output: "a b"},
		{title: "quoted string", term: String("a\"b"), opts: WriteOptions{Quoted: true}, output: `"a\"b"`},
		{title: "variable", term: x, output: "X"},
		{title: "compound", term: Atom("f").Apply(Atom("a"), Atom("b")), output: "f(a,b)"},
		{title: "list", term: List(Atom("a"), Atom("b")), output: "[a,b]"},
		{title: "partial list", term: ListRest(x, Atom("a")), output: "[a|X]"},
		{title: "curly", term: atomEmptyBlock.Apply(Atom("a")), output: "{a}"},
		{title: "infix", term: Atom("+").Apply(NewInteger(1), NewInteger(2)), output: "1+2"},
		{title: "infix letters", term: Atom("is").Apply(x, NewInteger(2)), output: "X is 2"},
		{title: "clause", term: atomIf.Apply(Atom("p"), Atom("q")), output: "p :- q"},
		{title: "conjunction", term: atomComma.Apply(Atom("p"), Atom("q")), output: "p,q"},
		{title: "priority", term: Atom("*").Apply(Atom("+").Apply(NewInteger(1), NewInteger(2)), NewInteger(3)), output: "(1+2)*3"},
		{title: "left associative", term: Atom("-").Apply(Atom("-").Apply(NewInteger(1), NewInteger(2)), NewInteger(3)), output: "1-2-3"},
		{title: "right operand of yfx", term: Atom("-").Apply(NewInteger(1), Atom("-").Apply(NewInteger(2), NewInteger(3))), output: "1-(2-3)"},
		{title: "negative operand", term: Atom("-").Apply(NewInteger(1), NewInteger(-1)), output: "1- -1"},
		{title: "prefix", term: Atom("-").Apply(Atom("a")), output: "-a"},
		{title: "prefix number", term: Atom("-").Apply(NewInteger(1)), output: "- 1"},
		{title: "negation", term: atomNegation.Apply(Atom("p")), output: `\+p`},
		{title: "operator as an argument", term: Atom("f").Apply(Atom("+")), output: "f(+)"},
		{title: "ignore ops", term: Atom("+").Apply(NewInteger(1), NewInteger(2)), opts: WriteOptions{IgnoreOps: true}, output: "+(1,2)"},
		{title: "comma in arguments", term: Atom("f").Apply(atomComma.Apply(Atom("a"), Atom("b"))), output: "f((a,b))"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			var buf bytes.Buffer
			assert.NoError(t, Write(&buf, tt.term, tt.opts))
			assert.Equal(t, tt.output, buf.String())
		})
	}

	t.Run("cyclic", func(t *testing.T) {
		var e Env
		x := e.NewVariable()
		e.Bind(x, Atom("f").Apply(x))
		assert.Equal(t, "f(...)", Text(x))
	})

	t.Run("error", func(t *testing.T) {
		var w mockWriter
		w.On("Write", mock.Anything).Return(0, errors.New("failed")).Once()
		assert.Error(t, Write(&w, Atom("f").Apply(Atom("a")), WriteOptions{}))
		w.AssertExpectations(t)
	})
}

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) Write(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}
