package engine

import (
	"math"
	"math/cmplx"

	"github.com/cockroachdb/apd"
)

// EvaluableFunctors is a set of unary/binary functions.
type EvaluableFunctors struct {
	// Constant is a set of constants.
	Constant map[Atom]Term

	// Unary is a set of functions of arity 1.
	Unary map[Atom]func(x Term) (Term, error)

	// Binary is a set of functions of arity 2.
	Binary map[Atom]func(x, y Term) (Term, error)
}

// DefaultEvaluableFunctors is an EvaluableFunctors with builtin functions.
var DefaultEvaluableFunctors EvaluableFunctors

func init() {
	pi, _ := NewFloat(math.Pi)
	e, _ := NewFloat(math.E)
	DefaultEvaluableFunctors = EvaluableFunctors{
		Constant: map[Atom]Term{
			"pi":          pi,
			"e":           e,
			"max_integer": NewInteger(math.MaxInt64),
			"min_integer": NewInteger(math.MinInt64),
		},
		Unary: map[Atom]func(Term) (Term, error){
			`+`:        pos,
			`-`:        unaryDecimal(decimalContext.Neg, cmplxNeg),
			`abs`:      unaryDecimal(decimalContext.Abs, cmplxAbs),
			`sqrt`:     unaryDecimal(sqrt, cmplx.Sqrt),
			`floor`:    unaryDecimal(decimalContext.Floor, nil),
			`ceiling`:  unaryDecimal(decimalContext.Ceil, nil),
			`round`:    unaryDecimal(decimalContext.RoundToIntegralValue, nil),
			`truncate`: unaryDecimal(truncate, nil),
			`integer`:  unaryDecimal(decimalContext.RoundToIntegralValue, nil),
			`float`:    pos,
			`sign`:     sign,
			`exp`:      unaryDecimal(decimalContext.Exp, cmplx.Exp),
			`log`:      unaryDecimal(decimalContext.Ln, cmplx.Log),
			`sin`:      unaryFloat(math.Sin, cmplx.Sin),
			`cos`:      unaryFloat(math.Cos, cmplx.Cos),
			`tan`:      unaryFloat(math.Tan, cmplx.Tan),
			`atan`:     unaryFloat(math.Atan, cmplx.Atan),
			`re`:       re,
			`im`:       im,
			`\`:        unaryInteger(func(i int64) int64 { return ^i }),
		},
		Binary: map[Atom]func(Term, Term) (Term, error){
			`+`:   binaryDecimal(decimalContext.Add, func(x, y complex128) complex128 { return x + y }),
			`-`:   binaryDecimal(decimalContext.Sub, func(x, y complex128) complex128 { return x - y }),
			`*`:   binaryDecimal(decimalContext.Mul, func(x, y complex128) complex128 { return x * y }),
			`/`:   binaryDecimal(quo, func(x, y complex128) complex128 { return x / y }),
			`//`:  binaryInteger(func(i, j int64) int64 { return i / j }),
			`div`: binaryInteger(floorDiv),
			`rem`: binaryInteger(func(i, j int64) int64 { return i % j }),
			`mod`: binaryInteger(func(i, j int64) int64 { return (i%j + j) % j }),
			`**`:  binaryDecimal(decimalContext.Pow, cmplx.Pow),
			`^`:   binaryDecimal(decimalContext.Pow, cmplx.Pow),
			`min`: minMax(-1),
			`max`: minMax(1),
			`>>`:  binaryInteger(func(i, j int64) int64 { return i >> uint64(j) }),
			`<<`:  binaryInteger(func(i, j int64) int64 { return i << uint64(j) }),
			`/\`:  binaryInteger(func(i, j int64) int64 { return i & j }),
			`\/`:  binaryInteger(func(i, j int64) int64 { return i | j }),
			`xor`: binaryInteger(func(i, j int64) int64 { return i ^ j }),
			`atan2`: func(x, y Term) (Term, error) {
				return float(math.Atan2(toFloat(x), toFloat(y)))
			},
		},
	}
}

// Eval evaluates an arithmetic expression.
func (fs EvaluableFunctors) Eval(expression Term) (Term, error) {
	switch t := Resolve(expression).(type) {
	case *Variable:
		return nil, &InstantiationError{Culprit: t}
	case Number, Complex:
		return t, nil
	case Atom:
		if c, ok := fs.Constant[t]; ok {
			return c, nil
		}
		return nil, &TypeError{Type: "evaluable", Culprit: PI{Name: t, Arity: 0}.Term()}
	case *Compound:
		switch len(t.Args) {
		case 1:
			f, ok := fs.Unary[t.Functor]
			if !ok {
				break
			}
			x, err := fs.Eval(t.Args[0])
			if err != nil {
				return nil, err
			}
			return f(x)
		case 2:
			f, ok := fs.Binary[t.Functor]
			if !ok {
				break
			}
			x, err := fs.Eval(t.Args[0])
			if err != nil {
				return nil, err
			}
			y, err := fs.Eval(t.Args[1])
			if err != nil {
				return nil, err
			}
			return f(x, y)
		}
		return nil, &TypeError{Type: "evaluable", Culprit: t.PI().Term()}
	default:
		return nil, &TypeError{Type: "evaluable", Culprit: t}
	}
}

// CompareNumbers evaluates both expressions and compares the results.
func (fs EvaluableFunctors) CompareNumbers(lhs, rhs Term) (int, error) {
	x, err := fs.Eval(lhs)
	if err != nil {
		return 0, err
	}
	y, err := fs.Eval(rhs)
	if err != nil {
		return 0, err
	}
	xn, xok := x.(Number)
	yn, yok := y.(Number)
	if xok && yok {
		return xn.Cmp(yn), nil
	}
	if equalAtomic(x, y) {
		return 0, nil
	}
	// Complex numbers are ordered by their real parts only when the imaginary parts vanish.
	xc, yc := toComplex(x), toComplex(y)
	if math.Abs(imag(xc)) >= complexEpsilon || math.Abs(imag(yc)) >= complexEpsilon {
		return 0, &TypeError{Type: "comparable", Culprit: Complex(xc)}
	}
	return compareComplex(complex(real(xc), 0), complex(real(yc), 0)), nil
}

func pos(x Term) (Term, error) {
	return x, nil
}

func sign(x Term) (Term, error) {
	n, ok := x.(Number)
	if !ok {
		return nil, &TypeError{Type: "number", Culprit: x}
	}
	return NewInteger(int64(n.Sign())), nil
}

func re(x Term) (Term, error) {
	return float(real(toComplex(x)))
}

func im(x Term) (Term, error) {
	return float(imag(toComplex(x)))
}

func cmplxNeg(x complex128) complex128 {
	return -x
}

func cmplxAbs(x complex128) complex128 {
	return complex(cmplx.Abs(x), 0)
}

func sqrt(d, x *apd.Decimal) (apd.Condition, error) {
	if x.Sign() < 0 {
		return 0, &EvaluationError{Kind: "undefined"}
	}
	return decimalContext.Sqrt(d, x)
}

func truncate(d, x *apd.Decimal) (apd.Condition, error) {
	var frac apd.Decimal
	x.Modf(d, &frac)
	return 0, nil
}

func quo(d, x, y *apd.Decimal) (apd.Condition, error) {
	if y.Sign() == 0 {
		return 0, &EvaluationError{Kind: "zero_divisor"}
	}
	return decimalContext.Quo(d, x, y)
}

func floorDiv(i, j int64) int64 {
	q := i / j
	if (i%j != 0) && ((i < 0) != (j < 0)) {
		q--
	}
	return q
}

func minMax(order int) func(Term, Term) (Term, error) {
	return func(x, y Term) (Term, error) {
		xn, ok := x.(Number)
		if !ok {
			return nil, &TypeError{Type: "number", Culprit: x}
		}
		yn, ok := y.(Number)
		if !ok {
			return nil, &TypeError{Type: "number", Culprit: y}
		}
		if xn.Cmp(yn)*order >= 0 {
			return xn, nil
		}
		return yn, nil
	}
}

func unaryDecimal(fd func(d, x *apd.Decimal) (apd.Condition, error), fc func(complex128) complex128) func(Term) (Term, error) {
	return func(x Term) (Term, error) {
		switch x := x.(type) {
		case Number:
			var d apd.Decimal
			if _, err := fd(&d, x.decimal()); err != nil {
				return nil, arithmeticError(err)
			}
			return NewNumber(&d), nil
		case Complex:
			if fc == nil {
				return nil, &TypeError{Type: "number", Culprit: x}
			}
			return fromComplex(fc(complex128(x))), nil
		default:
			return nil, &TypeError{Type: "number", Culprit: x}
		}
	}
}

func binaryDecimal(fd func(d, x, y *apd.Decimal) (apd.Condition, error), fc func(x, y complex128) complex128) func(Term, Term) (Term, error) {
	return func(x, y Term) (Term, error) {
		xn, xok := x.(Number)
		yn, yok := y.(Number)
		if xok && yok {
			var d apd.Decimal
			if _, err := fd(&d, xn.decimal(), yn.decimal()); err != nil {
				return nil, arithmeticError(err)
			}
			return NewNumber(&d), nil
		}
		if !isNumeric(x) {
			return nil, &TypeError{Type: "number", Culprit: x}
		}
		if !isNumeric(y) {
			return nil, &TypeError{Type: "number", Culprit: y}
		}
		yc := toComplex(y)
		if yc == 0 && fc != nil {
			// Division by a complex zero.
			if _, ok := Resolve(y).(Complex); ok {
				return nil, &EvaluationError{Kind: "zero_divisor"}
			}
		}
		return fromComplex(fc(toComplex(x), yc)), nil
	}
}

func unaryFloat(f func(float64) float64, fc func(complex128) complex128) func(Term) (Term, error) {
	return func(x Term) (Term, error) {
		switch x := x.(type) {
		case Number:
			return float(f(x.Float64()))
		case Complex:
			return fromComplex(fc(complex128(x))), nil
		default:
			return nil, &TypeError{Type: "number", Culprit: x}
		}
	}
}

func unaryInteger(f func(int64) int64) func(Term) (Term, error) {
	return func(x Term) (Term, error) {
		i, err := toInt64(x)
		if err != nil {
			return nil, err
		}
		return NewInteger(f(i)), nil
	}
}

func binaryInteger(f func(i, j int64) int64) func(Term, Term) (Term, error) {
	return func(x, y Term) (Term, error) {
		i, err := toInt64(x)
		if err != nil {
			return nil, err
		}
		j, err := toInt64(y)
		if err != nil {
			return nil, err
		}
		if j == 0 {
			return nil, &EvaluationError{Kind: "zero_divisor"}
		}
		return NewInteger(f(i, j)), nil
	}
}

func float(f float64) (Term, error) {
	n, err := NewFloat(f)
	if err != nil {
		return nil, &EvaluationError{Kind: "undefined"}
	}
	return n, nil
}

func toInt64(t Term) (int64, error) {
	n, ok := t.(Number)
	if !ok {
		return 0, &TypeError{Type: "integer", Culprit: t}
	}
	i, ok := n.Int64()
	switch {
	case ok:
		return i, nil
	case n.IsInteger():
		return 0, &RepresentationError{Limit: "max_integer"}
	default:
		return 0, &TypeError{Type: "integer", Culprit: t}
	}
}

func isNumeric(t Term) bool {
	switch t.(type) {
	case Number, Complex:
		return true
	default:
		return false
	}
}

func toFloat(t Term) float64 {
	switch t := t.(type) {
	case Number:
		return t.Float64()
	case Complex:
		return real(t)
	default:
		return math.NaN()
	}
}

func toComplex(t Term) complex128 {
	switch t := t.(type) {
	case Number:
		return complex(t.Float64(), 0)
	case Complex:
		return complex128(t)
	default:
		return cmplx.NaN()
	}
}

// fromComplex returns a Number if the imaginary part vanishes.
func fromComplex(c complex128) Term {
	if math.Abs(imag(c)) < complexEpsilon {
		if n, err := NewFloat(real(c)); err == nil {
			return n
		}
	}
	return Complex(c)
}

func arithmeticError(err error) error {
	if _, ok := err.(*EvaluationError); ok {
		return err
	}
	return &EvaluationError{Kind: "undefined"}
}
