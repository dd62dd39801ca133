package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestConsult(t *testing.T) {
	t.Run("clauses", func(t *testing.T) {
		db := NewDatabase()
		assert.NoError(t, Consult(context.Background(), db, strings.NewReader("p(a).\np(b).\nq(X) :- p(X)."), "test"))
		sols, err := solve(t, db, "q(X)")
		assert.NoError(t, err)
		assert.Equal(t, []string{"X = a", "X = b"}, sols)

		p, ok := db.Lookup(PI{Name: "p", Arity: 1})
		assert.True(t, ok)
		assert.Equal(t, "test", p.Source)
	})

	t.Run("syntax error", func(t *testing.T) {
		l, hook := test.NewNullLogger()
		db := NewDatabase()
		err := Consult(context.Background(), db, strings.NewReader("a.\nb(.\nc."), "test", WithLogger(l))
		var se *SyntaxError
		if assert.ErrorAs(t, err, &se) {
			assert.Equal(t, 2, se.Line)
		}
		assert.Contains(t, err.Error(), "test: ")

		for _, pi := range []PI{{Name: "a"}, {Name: "c"}} {
			_, ok := db.Lookup(pi)
			assert.True(t, ok, pi)
		}
		if assert.Len(t, hook.AllEntries(), 1) {
			assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
			assert.Equal(t, "syntax error", hook.LastEntry().Message)
		}
	})

	t.Run("directive", func(t *testing.T) {
		db := NewDatabase()
		assert.NoError(t, Consult(context.Background(), db, strings.NewReader(":- assertz(d(1)).\n:- dynamic(e/0)."), "test"))
		sols, err := solve(t, db, "d(X), \\+ e")
		assert.NoError(t, err)
		assert.Equal(t, []string{"X = 1"}, sols)
	})

	t.Run("failed directive", func(t *testing.T) {
		l, hook := test.NewNullLogger()
		db := NewDatabase()
		assert.NoError(t, Consult(context.Background(), db, strings.NewReader(":- fail.\nok."), "test", WithLogger(l)))
		if assert.Len(t, hook.AllEntries(), 1) {
			assert.Equal(t, "directive failed", hook.LastEntry().Message)
			assert.Equal(t, "test", hook.LastEntry().Data["source"])
		}
		_, ok := db.Lookup(PI{Name: "ok"})
		assert.True(t, ok)
	})

	t.Run("directive error", func(t *testing.T) {
		l, hook := test.NewNullLogger()
		db := NewDatabase()
		err := Consult(context.Background(), db, strings.NewReader(":- foo.\n:- atom_length(_, _).\nok."), "test", WithLogger(l))
		var ex *Exception
		if assert.ErrorAs(t, err, &ex) {
			assert.Equal(t, "existence_error(procedure,foo/0)", Text(ex.Class))
		}
		assert.Len(t, hook.AllEntries(), 2)
		_, ok := db.Lookup(PI{Name: "ok"})
		assert.True(t, ok)
	})

	t.Run("halt", func(t *testing.T) {
		db := NewDatabase()
		err := Consult(context.Background(), db, strings.NewReader("a.\n:- halt.\nb."), "test")
		assert.True(t, errors.Is(err, ErrHalt))
		_, ok := db.Lookup(PI{Name: "b"})
		assert.False(t, ok)
	})

	t.Run("grammar rule", func(t *testing.T) {
		db := NewDatabase()
		assert.NoError(t, Consult(context.Background(), db, strings.NewReader("greeting --> [hi]."), "test"))
		_, ok := db.Lookup(PI{Name: "greeting", Arity: 2})
		assert.True(t, ok)
	})

	t.Run("operators", func(t *testing.T) {
		db := NewDatabase()
		assert.NoError(t, Consult(context.Background(), db, strings.NewReader(":- op(200, xfy, ::).\nx :: y."), "test"))
		_, ok := db.Lookup(PI{Name: "::", Arity: 2})
		assert.True(t, ok)
	})

	t.Run("redefinition from another source", func(t *testing.T) {
		db := NewDatabase()
		assert.NoError(t, Consult(context.Background(), db, strings.NewReader("p(a)."), "a"))
		err := Consult(context.Background(), db, strings.NewReader("p(b)."), "b")
		var pe *PermissionError
		assert.ErrorAs(t, err, &pe)
	})
}

func TestConsult_builtin(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "lib.pl"), []byte("lib(ok)."), 0o644))

	t.Run("extension", func(t *testing.T) {
		sols, err := run(t, "", "consult('"+filepath.Join(dir, "lib")+"'), lib(X)")
		assert.NoError(t, err)
		assert.Equal(t, []string{"X = ok"}, sols)
	})

	t.Run("missing file", func(t *testing.T) {
		sols, err := run(t, "", "catch(consult('"+filepath.Join(dir, "nothing")+"'), error(existence_error(T, _), _), true)")
		assert.NoError(t, err)
		assert.Equal(t, []string{"T = source_sink"}, sols)
	})

	t.Run("not an atom", func(t *testing.T) {
		sols, err := run(t, "", "catch(consult(1), error(type_error(T, _), _), true)")
		assert.NoError(t, err)
		assert.Equal(t, []string{"T = atom"}, sols)
	})
}
