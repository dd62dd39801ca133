package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestBuiltins(t *testing.T) {
	tests := []struct {
		title   string
		program string
		query   string
		sols    []string
	}{
		// Unification and comparison.
		{title: "unify", query: "X = f(Y), Y = a", sols: []string{"X = f(a), Y = a"}},
		{title: "not unifiable", query: `a \= b`, sols: []string{"true"}},
		{title: "not unifiable fails", query: `X \= a`},
		{title: "occurs check", query: "unify_with_occurs_check(X, f(X))"},
		{title: "identical", query: "a == a", sols: []string{"true"}},
		{title: "distinct variables", query: "X == Y"},
		{title: "not identical", query: `X \== Y`, sols: []string{"X = X, Y = Y"}},
		{title: "standard order", query: "1 @< a, a @< f(x), f(x) @>= f(x)", sols: []string{"true"}},
		{title: "compare", query: "compare(O, 1, a)", sols: []string{"O = <"}},
		{title: "compare equal", query: "compare(O, f(a), f(a))", sols: []string{"O = ="}},

		// Type tests.
		{title: "var", query: "var(X)", sols: []string{"X = X"}},
		{title: "nonvar", query: "nonvar(f(_))", sols: []string{"true"}},
		{title: "atom", query: "atom(a), atom([]), \\+ atom(\"a\"), \\+ atom(1)", sols: []string{"true"}},
		{title: "number", query: "number(1), number(1.5), \\+ number(a)", sols: []string{"true"}},
		{title: "integer", query: "integer(3), \\+ integer(1.5)", sols: []string{"true"}},
		{title: "float", query: "float(1.5), \\+ float(3)", sols: []string{"true"}},
		{title: "big integer", query: "X is 10000000000000000000 * 10, integer(X), \\+ float(X)", sols: []string{"X = 100000000000000000000"}},
		{title: "atomic", query: "atomic(a), atomic(1), atomic(\"s\"), \\+ atomic(f(a))", sols: []string{"true"}},
		{title: "compound", query: "compound(f(a)), compound([a]), \\+ compound(a)", sols: []string{"true"}},
		{title: "callable", query: "callable(a), callable(f(x)), \\+ callable(1)", sols: []string{"true"}},
		{title: "is_list", query: "is_list([a,b]), is_list([]), \\+ is_list([a|_])", sols: []string{"true"}},
		{title: "string", query: "string(\"s\"), \\+ string(s)", sols: []string{"true"}},
		{title: "ground", query: "ground(f(a)), \\+ ground(f(_))", sols: []string{"true"}},

		// Term construction.
		{title: "functor of a compound", query: "functor(f(a, b), N, A)", sols: []string{"N = f, A = 2"}},
		{title: "functor of an atom", query: "functor(a, N, A)", sols: []string{"N = a, A = 0"}},
		{title: "functor constructs", query: "functor(T, f, 2), T = f(a, b)", sols: []string{"T = f(a,b)"}},
		{title: "arg", query: "arg(2, f(a, b), X)", sols: []string{"X = b"}},
		{title: "arg out of range", query: "arg(3, f(a, b), X)"},
		{title: "arg enumerates", query: "arg(N, f(a, b), X)", sols: []string{"N = 1, X = a", "N = 2, X = b"}},
		{title: "univ decomposes", query: "f(a, b) =.. L", sols: []string{"L = [f,a,b]"}},
		{title: "univ constructs", query: "T =.. [g, x]", sols: []string{"T = g(x)"}},
		{title: "univ atomic", query: "T =.. [1]", sols: []string{"T = 1"}},
		{title: "copy_term", query: "copy_term(f(X, Y, X), f(a, b, Z))", sols: []string{"X = X, Y = Y, Z = a"}},

		// Arithmetic.
		{title: "is", query: "X is 1 + 2 * 3", sols: []string{"X = 7"}},
		{title: "arithmetic comparison", query: "1 + 1 =:= 2, 1 < 2, 2 >= 2, 1 =\\= 2", sols: []string{"true"}},
		{title: "arithmetic comparison fails", query: "2 =< 1"},
		{title: "between", query: "between(1, 3, X)", sols: []string{"X = 1", "X = 2", "X = 3"}},
		{title: "between check", query: "between(1, inf, 3)", sols: []string{"true"}},
		{title: "between empty", query: "between(3, 1, X)"},
		{title: "complex", query: "complex(Z, 1, 2), complex(Z, R, I)", sols: []string{"Z = 1+2i, R = 1, I = 2"}},

		// Clause database.
		{title: "asserta and assertz", query: "assertz(p(1)), asserta(p(0)), assert(p(2)), findall(X, p(X), L)", sols: []string{"X = X, L = [0,1,2]"}},
		{title: "assert copies", query: "assertz(p(X)), X = a, p(b)", sols: []string{"X = a"}},
		{title: "retract a rule", query: "assertz((r(X) :- X > 0)), retract((r(Y) :- B))", sols: []string{"X = X, Y = Y, B = Y>0"}},
		{title: "retractall", program: ":- dynamic(p/1).", query: "assertz(p(1)), assertz(p(2)), retractall(p(_)), findall(X, p(X), L)", sols: []string{"X = X, L = []"}},
		{title: "retract last clause", query: "assertz(foo(1)), retract(foo(_)), catch(foo(_), error(existence_error(procedure, PI), _), true)", sols: []string{"PI = foo/1"}},
		{title: "abolish", query: "assertz(p(1)), abolish(p/1), catch(p(X), error(E, _), true)", sols: []string{"X = X, E = existence_error(procedure,p/1)"}},
		{title: "clause", program: "p(X) :- q(X). p(a).", query: "clause(p(Y), B)", sols: []string{"Y = Y, B = q(Y)", "Y = a, B = true"}},
		{title: "clause of a builtin", query: "catch(clause(atom(_), B), error(E, _), true)", sols: []string{"B = B, E = permission_error(access,private_procedure,atom/1)"}},
		{title: "clause of an unknown predicate", query: "clause(nothing, B)"},
		{title: "modify a builtin", query: "catch(assertz(atom(a)), error(E, _), true)", sols: []string{"E = permission_error(modify,static_procedure,atom/1)"}},
		{title: "declare a builtin", query: "catch(dynamic(atom/1), error(permission_error(A, T, C), _), true)", sols: []string{"A = modify, T = static_procedure, C = atom/1"}},
		{title: "dynamic list", program: ":- dynamic([a/0, b/1]).", query: "\\+ a, \\+ b(_)", sols: []string{"true"}},
		{title: "discontiguous", program: ":- discontiguous(d/1).\nd(1).\ne.\nd(2).", query: "findall(X, d(X), L)", sols: []string{"X = X, L = [1,2]"}},

		// Flags.
		{title: "current flag", query: "current_prolog_flag(bounded, X)", sols: []string{"X = true"}},
		{title: "enumerate flags", query: "findall(F, current_prolog_flag(F, _), L)", sols: []string{"F = F, L = [bounded,max_integer,min_integer,unknown,occurs_check,debug]"}},
		{title: "occurs check flag", query: "set_prolog_flag(occurs_check, true), X = f(X)"},
		{title: "unknown flag", query: "set_prolog_flag(unknown, fail), current_prolog_flag(unknown, X)", sols: []string{"X = fail"}},
		{title: "read-only flag", query: "catch(set_prolog_flag(bounded, false), error(E, _), true)", sols: []string{"E = permission_error(modify,flag,bounded)"}},
		{title: "unknown flag value", query: "catch(set_prolog_flag(unknown, maybe), error(domain_error(D, _), _), true)", sols: []string{"D = flag_value"}},
		{title: "unknown/2", query: "unknown(Old, warning), unknown(New, error)", sols: []string{"Old = error, New = warning"}},

		// Operators.
		{title: "op", program: ":- op(700, xfx, ===>).", query: "X = (a ===> b), X =.. L", sols: []string{"X = ===>(a,b), L = [===>,a,b]"}},
		{title: "op on comma", query: "catch(op(1000, xfy, ','), error(permission_error(modify, operator, _), _), true)", sols: []string{"true"}},
		{title: "op priority", query: "catch(op(1201, xfx, foo), error(domain_error(D, _), _), true)", sols: []string{"D = operator_priority"}},

		// Text and lists.
		{title: "atom_length", query: "atom_length(hello, N)", sols: []string{"N = 5"}},
		{title: "atom_length of a number", query: "atom_length(123, N)", sols: []string{"N = 3"}},
		{title: "atom_codes", query: "atom_codes(abc, L)", sols: []string{"L = [97,98,99]"}},
		{title: "atom_codes constructs", query: "atom_codes(A, [0'h, 0'i])", sols: []string{"A = hi"}},
		{title: "atom_chars", query: "atom_chars(ab, L)", sols: []string{"L = [a,b]"}},
		{title: "atom_chars constructs", query: "atom_chars(X, [a, b])", sols: []string{"X = ab"}},
		{title: "number_codes", query: "number_codes(12, L)", sols: []string{"L = [49,50]"}},
		{title: "number_codes constructs", query: "number_codes(N, [0'1, 0'2]), integer(N)", sols: []string{"N = 12"}},
		{title: "number_codes syntax error", query: "catch(number_codes(N, [0'a]), error(syntax_error(S), _), true)", sols: []string{"N = N, S = illegal_number"}},
		{title: "length", query: "length([a, b], N)", sols: []string{"N = 2"}},
		{title: "length constructs", query: "length(L, 2), L = [a, b]", sols: []string{"L = [a,b]"}},
		{title: "length of a partial list", query: "length([a|T], 3), T = [b, c]", sols: []string{"T = [b,c]"}},
		{title: "length enumerates", query: "length(L, N), N >= 2, !, L = [x, y]", sols: []string{"L = [x,y], N = 2"}},
		{title: "length negative", query: "catch(length(_, -1), error(domain_error(D, _), _), true)", sols: []string{"D = not_less_than_zero"}},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			sols, err := run(t, tt.program, tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.sols, sols)
		})
	}

	t.Run("output", func(t *testing.T) {
		tests := []struct {
			query  string
			output string
		}{
			{query: "write('a b')", output: "a b"},
			{query: "print('a b')", output: "'a b'"},
			{query: "writeq(f('A', \"s\", [x]))", output: `f('A',"s",[x])`},
			{query: "write_canonical(1 + 2)", output: "+(1,2)"},
			{query: "writeln(a + b)", output: "a+b\n"},
			{query: "tab(1 + 1), write(x)", output: "  x"},
			{query: "write(- (1))", output: "- 1"},
		}
		for _, tt := range tests {
			t.Run(tt.query, func(t *testing.T) {
				var sb strings.Builder
				_, err := run(t, "", tt.query, WithOutput(&sb))
				assert.NoError(t, err)
				assert.Equal(t, tt.output, sb.String())
			})
		}
	})

	t.Run("output error", func(t *testing.T) {
		var w mockWriter
		w.On("Write", mock.Anything).Return(0, errors.New("closed"))
		_, err := run(t, "", "write(foo)", WithOutput(&w))
		var qe *QueryError
		if assert.ErrorAs(t, err, &qe) {
			assert.Equal(t, Atom("write").Apply(Atom("foo")), qe.Goal)
		}
	})

	t.Run("type errors", func(t *testing.T) {
		tests := []struct {
			query string
			ball  string
		}{
			{query: "atom_length(X, _)", ball: "instantiation_error"},
			{query: "atom_length(f(x), _)", ball: "type_error(atom,f(x))"},
			{query: "functor(_, _, 1)", ball: "instantiation_error"},
			{query: "functor(_, f(a), 1)", ball: "type_error(atom,f(a))"},
			{query: "arg(x, f(a), _)", ball: "type_error(integer,x)"},
			{query: "_ =.. []", ball: "domain_error(non_empty_list,[])"},
			{query: "X is foo + 1", ball: "type_error(evaluable,foo/0)"},
			{query: "X is 1 / 0", ball: "evaluation_error(zero_divisor)"},
			{query: "between(a, 3, _)", ball: "type_error(integer,a)"},
			{query: "call(1)", ball: "type_error(callable,1)"},
			{query: "call(_)", ball: "instantiation_error"},
			{query: "assertz(_)", ball: "instantiation_error"},
			{query: "assertz((foo :- 1))", ball: "type_error(callable,1)"},
			{query: "compare(foo, a, b)", ball: "domain_error(order,foo)"},
			{query: "abolish(foo)", ball: "type_error(predicate_indicator,foo)"},
		}
		for _, tt := range tests {
			t.Run(tt.query, func(t *testing.T) {
				var sb strings.Builder
				_, err := run(t, "", "catch(("+tt.query+"), error(E, _), true), write(E)", WithOutput(&sb))
				assert.NoError(t, err)
				assert.Equal(t, tt.ball, sb.String())
			})
		}
	})
}
