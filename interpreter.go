package resolver

import (
	"context"
	_ "embed" // for go:embed
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ichiban/resolver/engine"
)

//go:embed bootstrap.pl
var bootstrap string

// Interpreter is a logic-programming interpreter with a clause database and the bootstrap library.
type Interpreter struct {
	db      *engine.Database
	input   *engine.Parser
	out     io.Writer
	log     logrus.FieldLogger
	timeout time.Duration
	verbose bool
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger for warnings, spy ports and verbose traces.
func WithLogger(l logrus.FieldLogger) Option {
	return func(i *Interpreter) {
		i.log = l
	}
}

// WithTimeout bounds every query. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(i *Interpreter) {
		i.timeout = d
	}
}

// WithConfig applies a configuration. The unknown policy must be valid; see Config.Validate.
func WithConfig(c Config) Option {
	return func(i *Interpreter) {
		if c.Unknown != "" {
			if u, err := engine.ParseUnknown(c.Unknown); err == nil {
				i.db.SetUnknown(u)
			}
		}
		i.db.SetOccursCheck(c.OccursCheck)
		if c.Timeout > 0 {
			i.timeout = c.Timeout
		}
		i.verbose = c.Verbose
	}
}

// New creates an interpreter which reads terms for read/1 from in and writes output to out.
// Either can be nil.
func New(in io.Reader, out io.Writer, opts ...Option) *Interpreter {
	if in == nil {
		in = strings.NewReader("")
	}
	if out == nil {
		out = io.Discard
	}
	i := Interpreter{
		db:  engine.NewDatabase(),
		out: out,
		log: logrus.StandardLogger(),
	}
	i.input = engine.NewParser(in, i.db.Operators())
	for _, o := range opts {
		o(&i)
	}

	i.Register("read", 1, i.read)

	if err := engine.Consult(context.Background(), i.db, strings.NewReader(bootstrap), "bootstrap", i.options()...); err != nil {
		panic(err)
	}
	i.db.Protect()
	return &i
}

func (i *Interpreter) options() []engine.Option {
	return []engine.Option{
		engine.WithOutput(i.out),
		engine.WithLogger(i.log),
		engine.WithDebug(i.verbose),
	}
}

func (i *Interpreter) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if i.timeout > 0 {
		return context.WithTimeout(ctx, i.timeout)
	}
	return context.WithCancel(ctx)
}

// Register adds a predicate implemented in Go.
func (i *Interpreter) Register(name string, arity int, b engine.Builtin) {
	i.db.Register(engine.Atom(name), arity, b)
}

// Database returns the clause database.
func (i *Interpreter) Database() *engine.Database {
	return i.db
}

// Exec loads clauses and runs directives in the text. Placeholders ? are replaced with args in order.
func (i *Interpreter) Exec(text string, args ...interface{}) error {
	return i.ExecContext(context.Background(), text, args...)
}

// ExecContext is Exec with a context.
func (i *Interpreter) ExecContext(ctx context.Context, text string, args ...interface{}) error {
	ctx, cancel := i.context(ctx)
	defer cancel()
	if len(args) == 0 {
		return engine.Consult(ctx, i.db, strings.NewReader(text), "user", i.options()...)
	}

	p := engine.NewParser(strings.NewReader(text), i.db.Operators())
	for {
		t, err := p.Term()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		var n int
		t, err = replace(t, func() (engine.Term, error) {
			if n >= len(args) {
				return nil, fmt.Errorf("placeholder %d: missing argument", n)
			}
			n++
			return TermOf(args[n-1])
		})
		if err != nil {
			return err
		}
		args = args[n:]
		if err := engine.ConsultTerm(ctx, i.db, t, p.Vars, "user", i.options()...); err != nil {
			return err
		}
	}
	if len(args) > 0 {
		return fmt.Errorf("%d arguments left without placeholders", len(args))
	}
	return nil
}

// Consult loads a file. The file name is the source of its clauses.
func (i *Interpreter) Consult(ctx context.Context, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("consult: %w", err)
	}
	defer f.Close()

	ctx, cancel := i.context(ctx)
	defer cancel()
	return engine.Consult(ctx, i.db, f, name, i.options()...)
}

// Query executes a query and returns *Solutions.
func (i *Interpreter) Query(text string, args ...interface{}) (*Solutions, error) {
	return i.QueryContext(context.Background(), text, args...)
}

// QueryContext executes a query with a context. Placeholders ? are replaced with args in order.
// A clause Head :- Body given as a query is asserted and the query succeeds once.
func (i *Interpreter) QueryContext(ctx context.Context, text string, args ...interface{}) (*Solutions, error) {
	t, vars, err := engine.ParseTerm(text, i.db.Operators())
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		t, err = placehold(t, args)
		if err != nil {
			return nil, err
		}
	}

	m := engine.NewMachine(i.db, i.options()...)
	if !m.Prepare(t, vars) {
		if err := i.db.Assert(t, false); err != nil {
			return nil, err
		}
		vars = nil
		m.Prepare(engine.Atom("true"), nil)
	}

	ctx, cancel := i.context(ctx)
	names := make([]string, len(vars))
	for j, v := range vars {
		names[j] = v.Name
	}
	return &Solutions{m: m, ctx: ctx, cancel: cancel, vars: names}, nil
}

// ErrNoSolutions indicates there's no solutions for the query.
var ErrNoSolutions = errors.New("no solutions")

// QuerySolution executes a query for the first solution.
func (i *Interpreter) QuerySolution(text string, args ...interface{}) *Solution {
	return i.QuerySolutionContext(context.Background(), text, args...)
}

// QuerySolutionContext executes a query for the first solution with a context.
func (i *Interpreter) QuerySolutionContext(ctx context.Context, text string, args ...interface{}) *Solution {
	sols, err := i.QueryContext(ctx, text, args...)
	if err != nil {
		return &Solution{err: err}
	}
	defer sols.Close()

	if !sols.Next() {
		if err := sols.Err(); err != nil {
			return &Solution{err: err}
		}
		return &Solution{err: ErrNoSolutions}
	}
	return &Solution{vars: sols.vars, sol: sols.sol}
}

// read is read/1. It reads the next term from the input of the interpreter, or end_of_file.
func (i *Interpreter) read(m *engine.Machine, args []engine.Term) (bool, error) {
	t, err := i.input.Term()
	switch {
	case errors.Is(err, io.EOF):
		return m.Unify(args[0], engine.Atom("end_of_file")), nil
	case err != nil:
		return false, err
	default:
		return m.Unify(args[0], t), nil
	}
}

func placehold(t engine.Term, args []interface{}) (engine.Term, error) {
	var n int
	t, err := replace(t, func() (engine.Term, error) {
		if n >= len(args) {
			return nil, fmt.Errorf("placeholder %d: missing argument", n)
		}
		n++
		return TermOf(args[n-1])
	})
	if err != nil {
		return nil, err
	}
	if n < len(args) {
		return nil, fmt.Errorf("%d placeholders for %d arguments", n, len(args))
	}
	return t, nil
}

const placeholder = engine.Atom("?")

// replace substitutes every placeholder atom in t, left to right.
func replace(t engine.Term, next func() (engine.Term, error)) (engine.Term, error) {
	switch t := engine.Resolve(t).(type) {
	case engine.Atom:
		if t == placeholder {
			return next()
		}
		return t, nil
	case *engine.Compound:
		args := make([]engine.Term, len(t.Args))
		for j, a := range t.Args {
			r, err := replace(a, next)
			if err != nil {
				return nil, err
			}
			args[j] = r
		}
		return t.Functor.Apply(args...), nil
	default:
		return t, nil
	}
}

// TermOf converts a Go value into a term.
func TermOf(v interface{}) (engine.Term, error) {
	switch v := v.(type) {
	case engine.Term:
		return v, nil
	case string:
		return engine.Atom(v), nil
	case bool:
		return engine.Bool(v), nil
	case time.Time:
		return engine.DateTime(v), nil
	case time.Duration:
		return engine.TimeSpan(v), nil
	case []byte:
		return engine.Binary(v), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return engine.NewInteger(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return engine.NewInteger(int64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return engine.NewFloat(rv.Float())
	case reflect.String:
		return engine.Atom(rv.String()), nil
	case reflect.Bool:
		return engine.Bool(rv.Bool()), nil
	case reflect.Slice, reflect.Array:
		ts := make([]engine.Term, rv.Len())
		for j := range ts {
			t, err := TermOf(rv.Index(j).Interface())
			if err != nil {
				return nil, err
			}
			ts[j] = t
		}
		return engine.List(ts...), nil
	default:
		return nil, fmt.Errorf("can't convert %T to a term", v)
	}
}
