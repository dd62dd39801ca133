package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestException(t *testing.T) {
	t.Run("class", func(t *testing.T) {
		e := (&TypeError{Type: "integer", Culprit: Atom("a")}).exception()
		assert.Equal(t, "type_error(integer,a)", Text(e.Class))
		assert.Equal(t, String("type error: expected integer, got a"), e.Message)
		assert.Equal(t, atomError.Apply(e.Class, e.Message), e.Ball())
		assert.Equal(t, "uncaught exception: type_error(integer,a): type error: expected integer, got a", e.Error())
	})

	t.Run("class-less", func(t *testing.T) {
		e := &Exception{Message: Atom("oops")}
		assert.Equal(t, Atom("oops"), e.Ball())
		assert.Equal(t, "uncaught exception: oops", e.Error())
	})

	t.Run("quoted class", func(t *testing.T) {
		e := &Exception{Class: Atom("not found"), Message: String("no such row")}
		assert.Equal(t, "uncaught exception: 'not found': no such row", e.Error())
	})
}

func TestExceptional(t *testing.T) {
	tests := []struct {
		err   exceptional
		class string
	}{
		{err: &InstantiationError{}, class: "instantiation_error"},
		{err: &TypeError{Type: "callable", Culprit: NewInteger(1)}, class: "type_error(callable,1)"},
		{err: &DomainError{Domain: "order", Culprit: Atom("foo")}, class: "domain_error(order,foo)"},
		{err: &ExistenceError{ObjectType: "procedure", Culprit: PI{Name: "foo"}.Term()}, class: "existence_error(procedure,foo/0)"},
		{err: &PermissionError{Operation: "modify", ObjectType: "flag", Culprit: Atom("bounded")}, class: "permission_error(modify,flag,bounded)"},
		{err: &EvaluationError{Kind: "zero_divisor"}, class: "evaluation_error(zero_divisor)"},
		{err: &RepresentationError{Limit: "character_code"}, class: "representation_error(character_code)"},
		{err: &SyntaxError{Line: 3, Detail: "end_of_file"}, class: "syntax_error(end_of_file)"},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			e := tt.err.exception()
			assert.Equal(t, tt.class, Text(e.Class))
			assert.Equal(t, String(tt.err.Error()), e.Message)
		})
	}
}

func TestQueryError(t *testing.T) {
	err := &QueryError{Goal: Atom("halt"), Level: 2, Err: ErrHalt}
	assert.True(t, errors.Is(err, ErrHalt))
	assert.Equal(t, "halt (goal: halt, level: 2)", err.Error())
}
