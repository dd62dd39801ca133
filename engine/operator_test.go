package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOperatorSpecifier(t *testing.T) {
	s, ok := ParseOperatorSpecifier("xfy")
	assert.True(t, ok)
	assert.Equal(t, OperatorSpecifierXFY, s)

	_, ok = ParseOperatorSpecifier("xyz")
	assert.False(t, ok)
}

func TestOperators_Define(t *testing.T) {
	ops := DefaultOperators()

	t.Run("prefix and infix", func(t *testing.T) {
		o, ok := ops.lookup(atomMinus, operatorClassPrefix)
		assert.True(t, ok)
		assert.Equal(t, Operator{Priority: 200, Specifier: OperatorSpecifierFY, Name: atomMinus}, o)

		o, ok = ops.lookup(atomMinus, operatorClassInfix)
		assert.True(t, ok)
		assert.Equal(t, 500, o.Priority)

		_, ok = ops.lookup(atomMinus, operatorClassPostfix)
		assert.False(t, ok)
	})

	t.Run("define and remove", func(t *testing.T) {
		ops.Define(700, OperatorSpecifierXFX, "===>")
		assert.True(t, ops.defined("===>"))
		assert.Contains(t, ops.All(), Operator{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "===>"})

		ops.Define(0, OperatorSpecifierXFX, "===>")
		assert.False(t, ops.defined("===>"))
	})

	t.Run("redefine", func(t *testing.T) {
		ops.Define(400, OperatorSpecifierYFX, "is")
		o, ok := ops.lookup("is", operatorClassInfix)
		assert.True(t, ok)
		assert.Equal(t, 400, o.Priority)
	})

	t.Run("nil", func(t *testing.T) {
		var ops *Operators
		_, ok := ops.lookup(atomComma, operatorClassInfix)
		assert.False(t, ok)
		assert.False(t, ops.defined(atomComma))
	})
}

func TestOperator_bindingPriorities(t *testing.T) {
	tests := []struct {
		op          Operator
		left, right int
	}{
		{op: Operator{Priority: 1000, Specifier: OperatorSpecifierXFY}, left: 999, right: 1000},
		{op: Operator{Priority: 500, Specifier: OperatorSpecifierYFX}, left: 500, right: 499},
		{op: Operator{Priority: 700, Specifier: OperatorSpecifierXFX}, left: 699, right: 699},
		{op: Operator{Priority: 1200, Specifier: OperatorSpecifierFX}, left: 1202, right: 1199},
		{op: Operator{Priority: 200, Specifier: OperatorSpecifierFY}, left: 1202, right: 200},
		{op: Operator{Priority: 100, Specifier: OperatorSpecifierXF}, left: 99, right: 1202},
	}
	for _, tt := range tests {
		l, r := tt.op.bindingPriorities()
		assert.Equal(t, tt.left, l)
		assert.Equal(t, tt.right, r)
	}
}
