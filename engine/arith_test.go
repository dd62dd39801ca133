package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluableFunctors_Eval(t *testing.T) {
	tests := []struct {
		expr   string
		result string
	}{
		{expr: "1 + 2", result: "3"},
		{expr: "7 - 10", result: "-3"},
		{expr: "6 * 7", result: "42"},
		{expr: "7 / 2", result: "3.5"},
		{expr: "7 // 2", result: "3"},
		{expr: "-7 // 2", result: "-3"},
		{expr: "-7 div 2", result: "-4"},
		{expr: "-7 rem 2", result: "-1"},
		{expr: "-7 mod 2", result: "1"},
		{expr: "2 ** 10", result: "1024"},
		{expr: "2 ^ 3", result: "8"},
		{expr: "min(1, 2)", result: "1"},
		{expr: "max(1, 2)", result: "2"},
		{expr: "abs(-3)", result: "3"},
		{expr: "sign(-3)", result: "-1"},
		{expr: "- (3)", result: "-3"},
		{expr: "floor(2.5)", result: "2"},
		{expr: "ceiling(2.5)", result: "3"},
		{expr: "truncate(-2.5)", result: "-2"},
		{expr: "1 << 4", result: "16"},
		{expr: "16 >> 2", result: "4"},
		{expr: `5 /\ 3`, result: "1"},
		{expr: `5 \/ 3`, result: "7"},
		{expr: "5 xor 3", result: "6"},
		{expr: `\ 0`, result: "-1"},
		{expr: "0.1 + 0.2", result: "0.3"},
		{expr: "max_integer", result: "9223372036854775807"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, _, err := ParseTerm(tt.expr, nil)
			assert.NoError(t, err)
			v, err := DefaultEvaluableFunctors.Eval(e)
			assert.NoError(t, err)
			assert.Equal(t, tt.result, Text(v))
		})
	}

	t.Run("errors", func(t *testing.T) {
		var e Env
		x := e.NewVariable()

		_, err := DefaultEvaluableFunctors.Eval(Atom("+").Apply(x, NewInteger(1)))
		assert.IsType(t, &InstantiationError{}, err)

		_, err = DefaultEvaluableFunctors.Eval(Atom("foo").Apply(NewInteger(1)))
		if assert.IsType(t, &TypeError{}, err) {
			assert.Equal(t, Atom("evaluable"), err.(*TypeError).Type)
			assert.Equal(t, "foo/1", Text(err.(*TypeError).Culprit))
		}

		_, err = DefaultEvaluableFunctors.Eval(Atom("foo"))
		assert.IsType(t, &TypeError{}, err)

		for _, f := range []Atom{"/", "//", "mod"} {
			_, err = DefaultEvaluableFunctors.Eval(f.Apply(NewInteger(1), NewInteger(0)))
			assert.Equal(t, &EvaluationError{Kind: "zero_divisor"}, err, f)
		}

		_, err = DefaultEvaluableFunctors.Eval(Atom("//").Apply(mustFloat(1.5), NewInteger(1)))
		assert.IsType(t, &TypeError{}, err)

		_, err = DefaultEvaluableFunctors.Eval(Atom("sqrt").Apply(NewInteger(-1)))
		assert.Equal(t, &EvaluationError{Kind: "undefined"}, err)
	})

	t.Run("complex", func(t *testing.T) {
		z := Complex(complex(1, 2))

		v, err := DefaultEvaluableFunctors.Eval(Atom("+").Apply(z, NewInteger(1)))
		assert.NoError(t, err)
		assert.Equal(t, Complex(complex(2, 2)), v)

		v, err = DefaultEvaluableFunctors.Eval(Atom("re").Apply(z))
		assert.NoError(t, err)
		assert.Equal(t, "1", Text(v))

		v, err = DefaultEvaluableFunctors.Eval(Atom("im").Apply(z))
		assert.NoError(t, err)
		assert.Equal(t, "2", Text(v))

		// (1+2i)(1-2i) = 5
		v, err = DefaultEvaluableFunctors.Eval(Atom("*").Apply(z, Complex(complex(1, -2))))
		assert.NoError(t, err)
		assert.Equal(t, "5", Text(v))

		_, err = DefaultEvaluableFunctors.Eval(Atom("/").Apply(NewInteger(1), Complex(0)))
		assert.Equal(t, &EvaluationError{Kind: "zero_divisor"}, err)
	})
}

func TestEvaluableFunctors_CompareNumbers(t *testing.T) {
	o, err := DefaultEvaluableFunctors.CompareNumbers(NewInteger(1), mustFloat(1.0))
	assert.NoError(t, err)
	assert.Zero(t, o)

	o, err = DefaultEvaluableFunctors.CompareNumbers(Atom("+").Apply(NewInteger(1), NewInteger(1)), NewInteger(3))
	assert.NoError(t, err)
	assert.Negative(t, o)

	o, err = DefaultEvaluableFunctors.CompareNumbers(Complex(complex(3, 0)), NewInteger(2))
	assert.NoError(t, err)
	assert.Positive(t, o)

	o, err = DefaultEvaluableFunctors.CompareNumbers(Atom("sqrt").Apply(NewInteger(16)), NewInteger(4))
	assert.NoError(t, err)
	assert.Zero(t, o)

	_, err = DefaultEvaluableFunctors.CompareNumbers(Complex(complex(1, 1)), NewInteger(2))
	assert.IsType(t, &TypeError{}, err)
}

func TestNumber_IsInteger(t *testing.T) {
	tests := []struct {
		text    string
		integer bool
		int64   bool
	}{
		{text: "42", integer: true, int64: true},
		{text: "-7", integer: true, int64: true},
		{text: "1.5", integer: false, int64: false},
		{text: "2.0", integer: true, int64: true},
		{text: "100000000000000000000", integer: true, int64: false},
		{text: "100000000000000000000.5", integer: false, int64: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			n, err := ParseNumber(tt.text)
			assert.NoError(t, err)
			assert.Equal(t, tt.integer, n.IsInteger())
			_, ok := n.Int64()
			assert.Equal(t, tt.int64, ok)
		})
	}

	t.Run("complex", func(t *testing.T) {
		n, err := ParseNumber("100000000000000000000")
		assert.NoError(t, err)
		assert.True(t, n.equalsComplex(Complex(complex(1e20, 0))))
	})

	t.Run("out of range", func(t *testing.T) {
		n, err := ParseNumber("100000000000000000000")
		assert.NoError(t, err)
		_, err = toInt64(n)
		assert.IsType(t, &RepresentationError{}, err)

		_, err = toInt64(mustFloat(1.5))
		assert.IsType(t, &TypeError{}, err)
	})
}
