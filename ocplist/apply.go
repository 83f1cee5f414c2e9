package ocplist

import (
	"fmt"
	"slices"

	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpvm"
	"golang.org/x/text/unicode/norm"
)

// ApplyOption configures the application of a list to text.
type ApplyOption func(*applyConfig)

type applyConfig struct {
	vm        []ocpvm.Option
	normalize bool
	form      norm.Form
}

// WithMachineOptions passes options to the virtual machines executing the
// programs of the list.
func WithMachineOptions(opts ...ocpvm.Option) ApplyOption {
	return func(c *applyConfig) {
		c.vm = append(c.vm, opts...)
	}
}

// WithNormalization normalizes the input to Unicode normal form f before
// the programs are applied. Positions refer to the normalized input.
func WithNormalization(f norm.Form) ApplyOption {
	return func(c *applyConfig) {
		c.normalize = true
		c.form = f
	}
}

// Apply runs the programs of the list over input.
//
// The input is split into segments at the character boundaries implied by
// the splice positions of the list's programs. A position s falls on the
// boundary before character ⌈s/Unity⌉. Every segment is run through the
// programs active at its first character, head first, and the results are
// concatenated. Applying the empty list returns a copy of the input.
func (l List) Apply(input []rune, opts ...ApplyOption) ([]rune, error) {
	conf := applyConfig{}
	for _, opt := range opts {
		opt(&conf)
	}
	text := input
	if conf.normalize {
		text = []rune(conf.form.String(string(input)))
	}
	out := make([]rune, 0, len(text))
	start := 0
	for _, end := range append(l.boundaries(len(text)), len(text)) {
		seg, err := run(l.ActiveAt(At(start)), text[start:end], conf.vm)
		if err != nil {
			return nil, err
		}
		out = append(out, seg...)
		start = end
	}
	return out, nil
}

// ApplyAt runs the programs active at position pos over input, head first.
func (l List) ApplyAt(pos Scaled, input []rune, opts ...ApplyOption) ([]rune, error) {
	conf := applyConfig{}
	for _, opt := range opts {
		opt(&conf)
	}
	text := input
	if conf.normalize {
		text = []rune(conf.form.String(string(input)))
	}
	out, err := run(l.ActiveAt(pos), text, conf.vm)
	if err != nil {
		return nil, err
	}
	return append(make([]rune, 0, len(out)), out...), nil
}

// boundaries returns the sorted character indices strictly inside a text of
// length n at which the set of active programs may change.
func (l List) boundaries(n int) []int {
	var b []int
	add := func(s Scaled) {
		if i := s.CharIndex(); i > 0 && i < n {
			b = append(b, i)
		}
	}
	for e := l.head; e != nil; e = e.next {
		add(e.from)
		if e.to <= MaxScaled {
			add(e.to)
		}
	}
	slices.Sort(b)
	return slices.Compact(b)
}

func run(progs []*ocpcode.Program, text []rune, opts []ocpvm.Option) ([]rune, error) {
	for _, p := range progs {
		out, err := ocpvm.Translate(p, text, opts...)
		if err != nil {
			return nil, fmt.Errorf("ocplist: applying %s: %w", p, err)
		}
		text = out
	}
	return text, nil
}
