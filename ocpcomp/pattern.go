package ocpcomp

import (
	"fmt"
	"strings"
)

// pattern is an item of the left side of a rule.
//
// Every pattern knows the range of characters it may match. Patterns nested
// in choices and repetitions must be fixed-width, as failure within them is
// handled by backing up a known number of characters.
type pattern interface {
	width() (int, bool) // number of characters matched, and whether it is fixed
	minWidth() int      // minimum number of characters matched
	String() string
}

// charClass matches a single character in [lo, hi], or any character.
type charClass struct {
	lo, hi rune
	any    bool
}

func (c charClass) width() (int, bool) { return 1, true }
func (c charClass) minWidth() int      { return 1 }

func (c charClass) String() string {
	switch {
	case c.any:
		return "."
	case c.lo == c.hi:
		return charString(c.lo)
	}
	return charString(c.lo) + "-" + charString(c.hi)
}

// complement matches a single character not in any of the classes.
type complement struct {
	classes []charClass
}

func (c complement) width() (int, bool) { return 1, true }
func (c complement) minWidth() int      { return 1 }

func (c complement) String() string {
	parts := make([]string, len(c.classes))
	for i, cl := range c.classes {
		parts[i] = cl.String()
	}
	return "^(" + strings.Join(parts, " | ") + ")"
}

// anchor matches the beginning or the end of the input, without consuming
// characters.
type anchor struct {
	end bool
}

func (a anchor) width() (int, bool) { return 0, true }
func (a anchor) minWidth() int      { return 0 }

func (a anchor) String() string {
	if a.end {
		return "<end:>"
	}
	return "<begin:>"
}

// sequence matches its patterns one after another. Strings and aliases are
// represented as sequences.
type sequence []pattern

func (s sequence) width() (int, bool) {
	w, fixed := 0, true
	for _, p := range s {
		pw, pf := p.width()
		w += pw
		fixed = fixed && pf
	}
	return w, fixed
}

func (s sequence) minWidth() int {
	w := 0
	for _, p := range s {
		w += p.minWidth()
	}
	return w
}

func (s sequence) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

// choice matches the first of its alternatives which matches.
type choice struct {
	alts []sequence
}

func (c choice) width() (int, bool) {
	w, fixed := c.alts[0].width()
	for _, alt := range c.alts[1:] {
		aw, af := alt.width()
		fixed = fixed && af && aw == w
	}
	return w, fixed
}

func (c choice) minWidth() int {
	min := c.alts[0].minWidth()
	for _, alt := range c.alts[1:] {
		if w := alt.minWidth(); w < min {
			min = w
		}
	}
	return min
}

func (c choice) String() string {
	parts := make([]string, len(c.alts))
	for i, alt := range c.alts {
		parts[i] = alt.String()
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

// unbounded is the maximum count of open repetitions.
const unbounded = -1

// repetition matches a fixed-width pattern between min and max times,
// greedily and without backtracking.
type repetition struct {
	item     pattern
	min, max int
}

func (r repetition) width() (int, bool) {
	w, _ := r.item.width()
	return r.min * w, r.min == r.max
}

func (r repetition) minWidth() int {
	return r.min * r.item.minWidth()
}

func (r repetition) String() string {
	switch {
	case r.max == unbounded:
		return fmt.Sprintf("%s<%d,>", r.item, r.min)
	case r.min == r.max:
		return fmt.Sprintf("%s<%d>", r.item, r.min)
	}
	return fmt.Sprintf("%s<%d,%d>", r.item, r.min, r.max)
}

func charString(c rune) string {
	if c > ' ' && c < 0x7f && c != '\'' && c != '`' {
		return "`" + string(c) + "'"
	}
	return fmt.Sprintf("@\"%X", c)
}
