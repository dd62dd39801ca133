package resolver

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/ichiban/resolver/engine"
)

var errClosed = errors.New("closed")

// Solutions is the result of a query. Everytime the Next method is called, it searches for the next solution.
// By calling the Scan method, you can retrieve the content of the solution.
type Solutions struct {
	m      *engine.Machine
	ctx    context.Context
	cancel context.CancelFunc
	vars   []string
	sol    engine.Solution
	err    error
	closed bool
}

// Close closes the Solutions and terminates the search for other solutions.
func (s *Solutions) Close() error {
	if s.closed {
		return errClosed
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// Next prepares the next solution for reading with the Scan method. It returns true if it finds another solution,
// or false if there's no further solutions or if there's an error.
func (s *Solutions) Next() bool {
	if s.closed || s.err != nil || s.m == nil {
		return false
	}
	ok, err := s.m.Next(s.ctx)
	if err != nil {
		if errors.Is(err, engine.ErrAborted) && s.ctx.Err() != nil {
			err = fmt.Errorf("%w: %v", err, s.ctx.Err())
		}
		s.err = err
		return false
	}
	if !ok {
		return false
	}
	s.sol = s.m.Solution()
	return true
}

// IsLast checks if the current solution is known to be the last one.
func (s *Solutions) IsLast() bool {
	return s.sol.IsLast
}

// Scan copies the variable values of the current solution into the specified struct/map.
func (s *Solutions) Scan(dest interface{}) error {
	return scan(s.sol, dest)
}

// Err returns the error if exists.
func (s *Solutions) Err() error {
	return s.err
}

// Vars returns variable names.
func (s *Solutions) Vars() []string {
	return s.vars
}

// Solution is the single result of a query.
type Solution struct {
	vars []string
	sol  engine.Solution
	err  error
}

// Scan copies the variable values of the solution into the specified struct/map.
func (s *Solution) Scan(dest interface{}) error {
	if s.err != nil {
		return s.err
	}
	return scan(s.sol, dest)
}

// Err returns an error that occurred while querying for the Solution, if any.
func (s *Solution) Err() error {
	return s.err
}

// Vars returns variable names.
func (s *Solution) Vars() []string {
	return s.vars
}

var termType = reflect.TypeOf((*engine.Term)(nil)).Elem()

func scan(sol engine.Solution, dest interface{}) error {
	o := reflect.ValueOf(dest)
	switch o.Kind() {
	case reflect.Map:
		if o.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("invalid map key: %s", o.Type().Key())
		}
		for _, b := range sol.Bindings {
			v, err := convert(b.Value, o.Type().Elem())
			if err != nil {
				return fmt.Errorf("%s: %w", b.Name, err)
			}
			o.SetMapIndex(reflect.ValueOf(b.Name).Convert(o.Type().Key()), v)
		}
		return nil
	case reflect.Ptr:
		o = o.Elem()
		if o.Kind() != reflect.Struct {
			return fmt.Errorf("invalid kind: %s", o.Kind())
		}
		values := make(map[string]engine.Term, len(sol.Bindings))
		for _, b := range sol.Bindings {
			values[b.Name] = b.Value
		}
		t := o.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" {
				continue
			}
			name := f.Name
			if tag, ok := f.Tag.Lookup("prolog"); ok {
				name = tag
			}
			val, ok := values[name]
			if !ok {
				continue
			}
			v, err := convert(val, f.Type)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			o.Field(i).Set(v)
		}
		return nil
	default:
		return fmt.Errorf("invalid kind: %s", o.Kind())
	}
}

var timeType = reflect.TypeOf(time.Time{})

// convert turns a term into a Go value of the type typ.
func convert(t engine.Term, typ reflect.Type) (reflect.Value, error) {
	t = engine.Resolve(t)
	if typ == termType {
		return reflect.ValueOf(&t).Elem(), nil
	}
	if typ == timeType {
		if d, ok := t.(engine.DateTime); ok {
			return reflect.ValueOf(d.Time()), nil
		}
		return reflect.Value{}, conversionError(t, typ)
	}

	v := reflect.New(typ).Elem()
	switch typ.Kind() {
	case reflect.Interface:
		if typ.NumMethod() != 0 {
			return reflect.Value{}, conversionError(t, typ)
		}
		if n := native(t); n != nil {
			v.Set(reflect.ValueOf(n))
		}
	case reflect.String:
		switch t := t.(type) {
		case engine.Atom:
			v.SetString(string(t))
		case engine.String:
			v.SetString(string(t))
		default:
			return reflect.Value{}, conversionError(t, typ)
		}
	case reflect.Bool:
		switch t {
		case engine.Bool(true), engine.Atom("true"):
			v.SetBool(true)
		case engine.Bool(false), engine.Atom("false"):
			v.SetBool(false)
		default:
			return reflect.Value{}, conversionError(t, typ)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if typ == reflect.TypeOf(time.Duration(0)) {
			if d, ok := t.(engine.TimeSpan); ok {
				v.SetInt(int64(d))
				break
			}
		}
		n, ok := t.(engine.Number)
		if !ok {
			return reflect.Value{}, conversionError(t, typ)
		}
		i, ok := n.Int64()
		if !ok || v.OverflowInt(i) {
			return reflect.Value{}, conversionError(t, typ)
		}
		v.SetInt(i)
	case reflect.Float32, reflect.Float64:
		n, ok := t.(engine.Number)
		if !ok {
			return reflect.Value{}, conversionError(t, typ)
		}
		v.SetFloat(n.Float64())
	case reflect.Slice:
		if b, ok := t.(engine.Binary); ok && typ.Elem().Kind() == reflect.Uint8 {
			v.SetBytes([]byte(b))
			break
		}
		ts, ok := engine.Slice(t)
		if !ok {
			return reflect.Value{}, conversionError(t, typ)
		}
		v = reflect.MakeSlice(typ, len(ts), len(ts))
		for i, e := range ts {
			ev, err := convert(e, typ.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			v.Index(i).Set(ev)
		}
	default:
		return reflect.Value{}, conversionError(t, typ)
	}
	return v, nil
}

// native returns the natural Go value of a term: string for atoms and strings,
// int64 or float64 for numbers, []interface{} for lists, or the term itself.
func native(t engine.Term) interface{} {
	switch t := engine.Resolve(t).(type) {
	case engine.Atom:
		if ts, ok := engine.Slice(t); ok && len(ts) == 0 {
			return []interface{}{}
		}
		return string(t)
	case engine.String:
		return string(t)
	case engine.Number:
		if i, ok := t.Int64(); ok && t.IsInteger() {
			return i
		}
		return t.Float64()
	case engine.Bool:
		return bool(t)
	case engine.DateTime:
		return t.Time()
	case *engine.Compound:
		ts, ok := engine.Slice(t)
		if !ok {
			return t
		}
		vs := make([]interface{}, len(ts))
		for i, e := range ts {
			vs[i] = native(e)
		}
		return vs
	default:
		return t
	}
}

func conversionError(t engine.Term, typ reflect.Type) error {
	return fmt.Errorf("can't convert %s to %s", engine.Text(t), typ)
}
