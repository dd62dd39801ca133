package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAborted is returned when a query is abandoned by cancellation or timeout.
	ErrAborted = errors.New("aborted")

	// ErrHalt is returned by halt/0.
	ErrHalt = errors.New("halt")

	errBadEscape = errors.New("bad escape sequence")
)

// Exception is a thrown term. Class is nil for a class-less throw.
type Exception struct {
	Class   Term
	Message Term
}

// Ball returns the term matched against catch/3 catchers.
func (e *Exception) Ball() Term {
	if e.Class == nil {
		return e.Message
	}
	return atomError.Apply(e.Class, e.Message)
}

func (e *Exception) Error() string {
	var sb strings.Builder
	_, _ = sb.WriteString("uncaught exception: ")
	if e.Class != nil {
		_ = Write(&sb, e.Class, WriteOptions{Quoted: true})
		_, _ = sb.WriteString(": ")
	}
	_ = Write(&sb, e.Message, WriteOptions{Quoted: false})
	return sb.String()
}

// exceptional is an error which can be turned into a catchable Exception.
type exceptional interface {
	error
	exception() *Exception
}

func newErrorException(class Term, err error) *Exception {
	return &Exception{Class: class, Message: String(err.Error())}
}

// InstantiationError is raised when an argument is a variable where a nonvar is expected.
type InstantiationError struct {
	Culprit Term
}

func (e *InstantiationError) Error() string {
	return "instantiation error"
}

func (e *InstantiationError) exception() *Exception {
	return newErrorException(Atom("instantiation_error"), e)
}

// TypeError is raised when an argument is of a wrong type.
type TypeError struct {
	Type    Atom
	Culprit Term
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error: expected %s, got %s", e.Type, e.Culprit)
}

func (e *TypeError) exception() *Exception {
	return newErrorException(Atom("type_error").Apply(e.Type, e.Culprit), e)
}

// DomainError is raised when an argument is of the right type but out of the domain.
type DomainError struct {
	Domain  Atom
	Culprit Term
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain error: expected %s, got %s", e.Domain, e.Culprit)
}

func (e *DomainError) exception() *Exception {
	return newErrorException(Atom("domain_error").Apply(e.Domain, e.Culprit), e)
}

// ExistenceError is raised when an object such as a procedure doesn't exist.
type ExistenceError struct {
	ObjectType Atom
	Culprit    Term
}

func (e *ExistenceError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.ObjectType, e.Culprit)
}

func (e *ExistenceError) exception() *Exception {
	return newErrorException(Atom("existence_error").Apply(e.ObjectType, e.Culprit), e)
}

// PermissionError is raised when an operation is not allowed on an object.
type PermissionError struct {
	Operation  Atom
	ObjectType Atom
	Culprit    Term
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission error: can't %s %s %s", e.Operation, e.ObjectType, e.Culprit)
}

func (e *PermissionError) exception() *Exception {
	return newErrorException(Atom("permission_error").Apply(e.Operation, e.ObjectType, e.Culprit), e)
}

// EvaluationError is raised when an arithmetic evaluation fails.
type EvaluationError struct {
	Kind Atom
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error: %s", e.Kind)
}

func (e *EvaluationError) exception() *Exception {
	return newErrorException(Atom("evaluation_error").Apply(e.Kind), e)
}

// RepresentationError is raised when a value is beyond an implementation limit.
type RepresentationError struct {
	Limit Atom
}

func (e *RepresentationError) Error() string {
	return fmt.Sprintf("representation error: %s", e.Limit)
}

func (e *RepresentationError) exception() *Exception {
	return newErrorException(Atom("representation_error").Apply(e.Limit), e)
}

// SyntaxError is raised when the reader meets malformed text.
type SyntaxError struct {
	Line   int
	Detail string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d: %s", e.Line, e.Detail)
}

func (e *SyntaxError) exception() *Exception {
	return newErrorException(Atom("syntax_error").Apply(Atom(e.Detail)), e)
}

// QueryError is an error which terminated a query, with the goal being executed.
type QueryError struct {
	Goal  Term
	Level int
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s (goal: %s, level: %d)", e.Err, e.Goal, e.Level)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
