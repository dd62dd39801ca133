package engine

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cockroachdb/apd"
)

// complexEpsilon is the tolerance used when a Number is unified or compared with a Complex.
const complexEpsilon = 1.0e-10

// decimalContext is the context for every arithmetic operation on Numbers.
var decimalContext = apd.BaseContext.WithPrecision(34)

// Number is a prolog number. Integers and floats share the same decimal representation and are equal if they have the same value.
type Number struct {
	d *apd.Decimal
}

// NewInteger returns a Number of the integer value.
func NewInteger(i int64) Number {
	return Number{d: apd.New(i, 0)}
}

// NewFloat returns a Number of the float value.
func NewFloat(f float64) (Number, error) {
	var d apd.Decimal
	if _, err := d.SetFloat64(f); err != nil {
		return Number{}, err
	}
	return Number{d: &d}, nil
}

// NewNumber returns a Number which shares the value of d.
func NewNumber(d *apd.Decimal) Number {
	return Number{d: d}
}

// ParseNumber parses a decimal literal.
func ParseNumber(s string) (Number, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Number{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return Number{d: d}, nil
}

func (n Number) decimal() *apd.Decimal {
	if n.d == nil {
		return &apd.Decimal{}
	}
	return n.d
}

// Decimal returns a copy of the underlying decimal.
func (n Number) Decimal() *apd.Decimal {
	var d apd.Decimal
	d.Set(n.decimal())
	return &d
}

// Int64 returns the integer value of the number if it has no fractional part and fits in int64.
func (n Number) Int64() (int64, bool) {
	i, err := n.decimal().Int64()
	if err != nil {
		return 0, false
	}
	return i, true
}

// IsInteger checks if the number has no fractional part, whatever its magnitude.
func (n Number) IsInteger() bool {
	var integ, frac apd.Decimal
	n.decimal().Modf(&integ, &frac)
	return frac.IsZero()
}

// Float64 returns the nearest float value.
func (n Number) Float64() float64 {
	f, err := n.decimal().Float64()
	if err != nil {
		return math.NaN()
	}
	return f
}

// Cmp compares two numbers by value.
func (n Number) Cmp(m Number) int {
	return n.decimal().Cmp(m.decimal())
}

// Sign returns -1, 0, or 1.
func (n Number) Sign() int {
	return n.decimal().Sign()
}

func (n Number) String() string {
	return n.decimal().Text('f')
}

// Complex is a complex number. It is an auxiliary kind which only arithmetic helpers produce.
type Complex complex128

func (c Complex) String() string {
	return fmt.Sprintf("%s%+gi", strconv.FormatFloat(real(c), 'g', -1, 64), imag(c))
}

// equalsComplex checks if an integral number equals to a complex number of zero imaginary part.
func (n Number) equalsComplex(c Complex) bool {
	if !n.IsInteger() {
		return false
	}
	return math.Abs(imag(c)) < complexEpsilon && math.Abs(real(c)-n.Float64()) < complexEpsilon
}
