package engine

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// String is a sequence of characters written in double quotes.
// Unlike ISO prolog, it is a distinct atomic kind rather than a list of codes.
type String string

func (s String) String() string {
	return strconv.Quote(string(s))
}

// Bool is a boolean value.
type Bool bool

func (b Bool) String() string {
	return strconv.FormatBool(bool(b))
}

// DateTime is a point in time.
type DateTime time.Time

// Time returns the time.Time.
func (d DateTime) Time() time.Time {
	return time.Time(d)
}

func (d DateTime) String() string {
	return d.Time().Format(time.RFC3339Nano)
}

// TimeSpan is a duration.
type TimeSpan time.Duration

func (t TimeSpan) String() string {
	return time.Duration(t).String()
}

// Binary is an opaque byte sequence.
type Binary []byte

func (b Binary) String() string {
	return fmt.Sprintf("0x%s", hex.EncodeToString(b))
}
