package ocplist

import (
	"fmt"
	"strings"
)

// Scaled is a fixed-point number with 16 bits of fraction. Positions of
// splices are given as scaled values, where Unity addresses the boundary
// after the first character of a buffer.
type Scaled int32

// Unity is the scaled value 1.0.
const Unity Scaled = 1 << 16

// MaxScaled is the largest scaled position.
const MaxScaled Scaled = 1<<30 - 1

// endless marks an interval without upper bound.
const endless Scaled = MaxScaled + 1

// CharIndex returns the index of the first character at or after position s.
func (s Scaled) CharIndex() int {
	return int((s + Unity - 1) / Unity)
}

// At returns the scaled position of the character with index i.
func At(i int) Scaled {
	return Scaled(i) * Unity
}

// String prints s with as few decimal digits as necessary to be read back
// unchanged.
func (s Scaled) String() string {
	var b strings.Builder
	if s < 0 {
		b.WriteByte('-')
		s = -s
	}
	fmt.Fprintf(&b, "%d", s/Unity)
	f := 10*(s%Unity) + 5
	b.WriteByte('.')
	delta := Scaled(10)
	for {
		if delta > Unity {
			f = f + 0x8000 - 50000 // round the last digit
		}
		b.WriteByte(byte('0' + f/Unity))
		f = 10 * (f % Unity)
		delta *= 10
		if f <= delta {
			break
		}
	}
	return b.String()
}

// ParseScaled reads a decimal number with optional fraction, such as "12" or
// "-0.75", rounding the fraction to the nearest scaled value.
func ParseScaled(str string) (Scaled, error) {
	s := strings.TrimSpace(str)
	if s == "" {
		return 0, fmt.Errorf("ocplist: empty number")
	}
	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	intpart, frac, _ := strings.Cut(s, ".")
	if intpart == "" && frac == "" {
		return 0, fmt.Errorf("ocplist: malformed number %q", str)
	}
	var n int64
	for _, c := range intpart {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("ocplist: malformed number %q", str)
		}
		n = 10*n + int64(c-'0')
		if n > int64(MaxScaled/Unity) {
			return 0, fmt.Errorf("ocplist: number too large %q", str)
		}
	}
	// fraction digits are accumulated from the last to the first
	var f int64
	digits := []byte(frac)
	if len(digits) > 17 {
		digits = digits[:17]
	}
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("ocplist: malformed number %q", str)
		}
		f = (f + int64(c-'0')*int64(2*Unity)) / 10
	}
	v := n*int64(Unity) + (f+1)/2
	if v > int64(MaxScaled) {
		return 0, fmt.Errorf("ocplist: number too large %q", str)
	}
	if negative {
		v = -v
	}
	return Scaled(v), nil
}
