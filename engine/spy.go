package engine

import (
	"github.com/sirupsen/logrus"
)

type spyFrame struct {
	goal *goal
}

// port logs a port of a spied call: call, exit, redo or fail.
func (m *Machine) port(name string, g *goal) {
	m.log.WithFields(logrus.Fields{
		"port":  name,
		"level": g.level,
		"goal":  m.env.Simplify(g.term),
	}).Info("spy")
}

// SetTrace makes every user-defined predicate behave as spied for the rest of the query.
func (m *Machine) SetTrace(b bool) {
	m.trace = b
}
