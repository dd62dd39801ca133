package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Consult reads clauses from r and adds them to the database under the source name.
// A directive :- Goal runs once when it is read. Errors don't stop the rest of the text from loading;
// they are logged and returned together at the end.
func Consult(ctx context.Context, db *Database, r io.Reader, source string, opts ...Option) error {
	log := NewMachine(db, opts...).Logger()
	p := NewParser(r, db.Operators())
	var errs []error
	for {
		t, err := p.Term()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.WithField("source", source).WithError(err).Warn("syntax error")
			errs = append(errs, fmt.Errorf("%s: %w", source, err))
			continue
		}

		if err := ConsultTerm(ctx, db, t, p.Vars, source, opts...); err != nil {
			if errors.Is(err, ErrAborted) || errors.Is(err, ErrHalt) {
				return err
			}
			log.WithFields(logrus.Fields{
				"source": source,
				"term":   t,
			}).WithError(err).Warn("consult")
			errs = append(errs, fmt.Errorf("%s: %w", source, err))
		}
	}
	return errors.Join(errs...)
}

// ConsultTerm adds a single clause read from source, or runs it if it's a directive.
func ConsultTerm(ctx context.Context, db *Database, t Term, vars []ParsedVariable, source string, opts ...Option) error {
	if c, ok := t.(*Compound); ok && c.Functor == atomIf && len(c.Args) == 1 {
		m := NewMachine(db, opts...)
		m.Prepare(c.Args[0], vars)
		ok, err := m.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			m.Logger().WithFields(logrus.Fields{
				"source":    source,
				"directive": c.Args[0],
			}).Warn("directive failed")
		}
		return nil
	}

	if dcg, err := expandDCG(t); err == nil {
		t = dcg
	} else if !errors.Is(err, errDCGNotApplicable) {
		return err
	}

	c, err := NewClause(t, source)
	if err != nil {
		return err
	}
	return db.Define(c)
}
