package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnv_Unify(t *testing.T) {
	t.Run("atomic", func(t *testing.T) {
		tests := []struct {
			title string
			x, y  Term
			ok    bool
		}{
			{title: "same atom", x: Atom("a"), y: Atom("a"), ok: true},
			{title: "different atoms", x: Atom("a"), y: Atom("b")},
			{title: "integer and float of the same value", x: NewInteger(1), y: mustFloat(1.0), ok: true},
			{title: "different numbers", x: NewInteger(1), y: NewInteger(2)},
			{title: "number and complex of zero imaginary part", x: NewInteger(2), y: Complex(complex(2, 1e-12)), ok: true},
			{title: "number and complex", x: NewInteger(2), y: Complex(complex(2, 1))},
			{title: "atom and string", x: Atom("a"), y: String("a")},
			{title: "bools", x: Bool(true), y: Bool(true), ok: true},
			{title: "date times", x: DateTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)), y: DateTime(time.Date(2020, 1, 1, 9, 0, 0, 0, time.FixedZone("JST", 9*60*60))), ok: true},
			{title: "time spans", x: TimeSpan(time.Second), y: TimeSpan(time.Minute)},
			{title: "binaries", x: Binary{1, 2}, y: Binary{1, 2}, ok: true},
		}
		for _, tt := range tests {
			t.Run(tt.title, func(t *testing.T) {
				var e Env
				assert.Equal(t, tt.ok, e.Unify(tt.x, tt.y))
			})
		}
	})

	t.Run("variables", func(t *testing.T) {
		var e Env
		x, y := e.NewVariable(), e.NewVariable()
		assert.True(t, e.Unify(Atom("f").Apply(x, Atom("b")), Atom("f").Apply(Atom("a"), y)))
		assert.Equal(t, Atom("a"), Resolve(x))
		assert.Equal(t, Atom("b"), Resolve(y))
	})

	t.Run("shared variable", func(t *testing.T) {
		var e Env
		x := e.NewVariable()
		assert.False(t, e.Unify(Atom("f").Apply(x, x), Atom("f").Apply(Atom("a"), Atom("b"))))
	})

	t.Run("functor mismatch", func(t *testing.T) {
		var e Env
		assert.False(t, e.Unify(Atom("f").Apply(Atom("a")), Atom("g").Apply(Atom("a"))))
		assert.False(t, e.Unify(Atom("f").Apply(Atom("a")), Atom("f").Apply(Atom("a"), Atom("b"))))
	})

	t.Run("occurs check", func(t *testing.T) {
		var e Env
		x := e.NewVariable()
		assert.False(t, e.UnifyWithOccursCheck(x, Atom("f").Apply(x)))
		assert.False(t, x.Bound())

		e.OccursCheck = true
		assert.False(t, e.Unify(Atom("f").Apply(x), x))
	})

	t.Run("cyclic terms", func(t *testing.T) {
		var e Env
		x, y := e.NewVariable(), e.NewVariable()
		assert.True(t, e.Unify(x, Atom("f").Apply(x)))
		assert.True(t, e.Unify(y, Atom("f").Apply(y)))
		assert.True(t, e.Unify(x, y))
	})
}

func TestEnv_Unify_symmetric(t *testing.T) {
	tests := []struct {
		title string
		terms func(e *Env) (Term, Term)
	}{
		{title: "variable and atom", terms: func(e *Env) (Term, Term) {
			return e.NewVariable(), Atom("a")
		}},
		{title: "two variables", terms: func(e *Env) (Term, Term) {
			return e.NewVariable(), e.NewVariable()
		}},
		{title: "variable chain", terms: func(e *Env) (Term, Term) {
			x, y, z := e.NewVariable(), e.NewVariable(), e.NewVariable()
			e.Unify(x, y)
			e.Unify(z, Atom("b"))
			return Atom("f").Apply(x, z), Atom("f").Apply(y, y)
		}},
		{title: "compounds", terms: func(e *Env) (Term, Term) {
			x, y := e.NewVariable(), e.NewVariable()
			return Atom("f").Apply(x, Atom("b")), Atom("f").Apply(Atom("a"), y)
		}},
		{title: "mismatch", terms: func(e *Env) (Term, Term) {
			return Atom("f").Apply(Atom("a")), Atom("f").Apply(Atom("b"))
		}},
		{title: "numbers", terms: func(e *Env) (Term, Term) {
			return NewInteger(2), mustFloat(2)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			var e1, e2 Env
			x1, y1 := tt.terms(&e1)
			x2, y2 := tt.terms(&e2)

			ok1 := e1.Unify(x1, y1)
			ok2 := e2.Unify(y2, x2)
			assert.Equal(t, ok1, ok2)
			if !ok1 {
				return
			}
			assert.Equal(t, Text(e1.Simplify(x1)), Text(e1.Simplify(y1)))
			assert.Equal(t, Text(e2.Simplify(x2)), Text(e2.Simplify(y2)))
			assert.Equal(t, Resolve(x1) == Resolve(y1), Resolve(x2) == Resolve(y2))
		})
	}
}

func TestEnv_IsUnifiable(t *testing.T) {
	var e Env
	x := e.NewVariable()
	assert.True(t, e.IsUnifiable(x, Atom("a")))
	assert.False(t, x.Bound())
	assert.Equal(t, 0, e.Mark())
}

func mustFloat(f float64) Number {
	n, err := NewFloat(f)
	if err != nil {
		panic(err)
	}
	return n
}
