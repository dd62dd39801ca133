package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnv_UndoTo(t *testing.T) {
	var e Env
	x, y := e.NewNamedVariable("X"), e.NewNamedVariable("Y")

	e.Bind(x, Atom("a"))
	m := e.Mark()
	e.Bind(y, Atom("b"))
	assert.Equal(t, Atom("b"), Resolve(y))

	e.UndoTo(m)
	assert.Equal(t, Atom("a"), Resolve(x))
	assert.False(t, y.Bound())

	e.UndoTo(0)
	assert.False(t, x.Bound())
}

func TestEnv_Bind(t *testing.T) {
	t.Run("self", func(t *testing.T) {
		var e Env
		x := e.NewVariable()
		e.Bind(x, x)
		assert.False(t, x.Bound())
		assert.Equal(t, 0, e.Mark())
	})

	t.Run("bound", func(t *testing.T) {
		var e Env
		x := e.NewVariable()
		e.Bind(x, Atom("a"))
		assert.Panics(t, func() {
			e.Bind(x, Atom("b"))
		})
	})
}

func TestEnv_cut(t *testing.T) {
	var e Env
	x, y := e.NewVariable(), e.NewVariable()

	e.push(entry{kind: entryChoice, choice: &choice{kind: choiceAlt}})
	barrier := e.Mark()
	e.push(entry{kind: entryChoice, choice: &choice{kind: choiceAlt}})
	e.Bind(x, Atom("a"))
	e.push(entry{kind: entrySpy, spy: &spyFrame{}})
	e.Bind(y, Atom("b"))

	e.cut(barrier)
	assert.Equal(t, Atom("a"), Resolve(x), "cut keeps bindings")
	assert.Equal(t, Atom("b"), Resolve(y), "cut keeps bindings")
	assert.True(t, e.hasChoice())

	en, ok := e.popMarker()
	assert.True(t, ok)
	assert.Equal(t, entryChoice, en.kind)
	assert.False(t, x.Bound())
	assert.False(t, y.Bound())
	assert.Equal(t, 0, e.Mark())

	_, ok = e.popMarker()
	assert.False(t, ok)
	assert.False(t, e.hasChoice())
}

func TestEnv_hasChoice(t *testing.T) {
	var e Env
	assert.False(t, e.hasChoice())

	e.push(entry{kind: entryCache, cache: &cacheFrame{}})
	assert.False(t, e.hasChoice())

	e.push(entry{kind: entryChoice, choice: &choice{kind: choiceAlt}})
	assert.True(t, e.hasChoice())

	e.cut(1)
	assert.False(t, e.hasChoice())
}

func TestEnv_Copy(t *testing.T) {
	var e Env
	x, y := e.NewNamedVariable("X"), e.NewNamedVariable("Y")
	e.Bind(y, Atom("a"))

	c := e.Copy(Atom("f").Apply(x, x, y)).(*Compound)
	v, ok := c.Args[0].(*Variable)
	assert.True(t, ok)
	assert.NotSame(t, x, v)
	assert.Equal(t, "", v.Name)
	assert.Same(t, v, c.Args[1])
	assert.Equal(t, Atom("a"), Resolve(c.Args[2]))

	t.Run("cyclic", func(t *testing.T) {
		var e Env
		x := e.NewVariable()
		e.Bind(x, Atom("f").Apply(x))
		c := e.Copy(x).(*Variable)
		assert.NotSame(t, x, c)
		assert.Same(t, c, Resolve(c).(*Compound).Args[0])
	})
}

func TestEnv_Simplify(t *testing.T) {
	var e Env
	x, y, z := e.NewVariable(), e.NewVariable(), e.NewVariable()
	e.Bind(x, Atom("f").Apply(y, z))
	e.Bind(y, Atom("a"))

	s := e.Simplify(x).(*Compound)
	assert.Equal(t, Atom("a"), s.Args[0])
	assert.Same(t, z, s.Args[1])

	t.Run("cyclic", func(t *testing.T) {
		var e Env
		x := e.NewVariable()
		e.Bind(x, Atom("f").Apply(x))
		s := e.Simplify(x).(*Compound)
		assert.Same(t, x, s.Args[0])
	})
}
