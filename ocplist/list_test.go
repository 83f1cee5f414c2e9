package ocplist

import (
	"errors"
	"fmt"
	"testing"

	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpcomp"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/unicode/norm"
)

// --- Test Suite Preparation ------------------------------------------------

type ListTestEnviron struct {
	suite.Suite
	progs map[string]*ocpcode.Program
}

// listen for 'go test' command --> run test methods
func TestListFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.list")
	defer teardown()
	suite.Run(t, new(ListTestEnviron))
}

// run once, before test suite methods
func (env *ListTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("ocp.vm").SetTraceLevel(tracing.LevelError)
	env.progs = map[string]*ocpcode.Program{}
	// P1 turns a into b, P2 turns b into c, P3 turns c into d
	for i, name := range []string{"P1", "P2", "P3", "P4"} {
		src := fmt.Sprintf("expressions: @\"%x => @\"%x;", 'a'+i, 'b'+i)
		p, err := ocpcomp.Compile(name, src)
		env.Require().NoError(err, "compiling %s", name)
		env.progs[name] = p
	}
	umlaut, err := ocpcomp.Compile("umlaut", `expressions: "a" @"308 => @"E4;`)
	env.Require().NoError(err)
	env.progs["umlaut"] = umlaut
}

// run once, after test suite methods
func (env *ListTestEnviron) TearDownSuite() {
	env.T().Log("Tearing down test suite")
}

// --- Tests -----------------------------------------------------------------

func (env *ListTestEnviron) TestEmptyListIsIdentity() {
	env.True(Null.IsTerminator())
	env.True(Empty().IsTerminator())
	env.Equal(0, Null.Len())
	env.Equal("[]", Null.String())
	env.apply(Null, "any text", "any text")
	env.apply(Null, "", "")
	l := Prepend(env.progs["P1"], Null)
	env.False(l.IsTerminator())
	env.True(Null.IsTerminator(), "prepending must not change the empty list")
}

func (env *ListTestEnviron) TestPrependOrder() {
	l := env.list("P1", "P2", "P3")
	env.Equal(3, l.Len())
	env.Equal("[P1, P2, P3]", l.String())
	env.apply(l, "aaaa", "dddd")
	// reversed order: P3 first sees no c
	env.apply(env.list("P3", "P2", "P1"), "aaaa", "bbbb")
	env.Panics(func() { Prepend(nil, Null) })
}

func (env *ListTestEnviron) TestRemoveAfter() {
	full := env.list("P1", "P2", "P3")
	l, err := RemoveAfter(full, 2*Unity, env.progs["P2"])
	env.Require().NoError(err)
	env.Equal("[P1, P2[0.0..2.0), P3]", l.String())
	env.Equal(env.progs["P2"], l.ActiveAt(Unity)[1])
	env.Len(l.ActiveAt(2*Unity), 2)
	// before pos the whole list applies, at and after pos it is [P1, P3]
	env.apply(l, "aaaa", "ddbb")
	without := env.list("P1", "P3")
	for i, c := range "aaaa" {
		want, err := without.ApplyAt(At(i), []rune{c})
		env.Require().NoError(err)
		if i < 2 {
			want, err = full.ApplyAt(At(i), []rune{c})
			env.Require().NoError(err)
		}
		got, err := l.ApplyAt(At(i), []rune{c})
		env.Require().NoError(err)
		env.Equal(string(want), string(got), "character %d", i)
	}
	// the original list is unchanged
	env.Equal("[P1, P2, P3]", full.String())
	env.apply(full, "aaaa", "dddd")
}

func (env *ListTestEnviron) TestRemoveBefore() {
	full := env.list("P1", "P2", "P3")
	l, err := full.RemoveBefore(2*Unity, env.progs["P2"])
	env.Require().NoError(err)
	env.Equal("[P1, P2[2.0..], P3]", l.String())
	env.apply(l, "aaaa", "bbdd")
	env.apply(full, "aaaa", "dddd")
}

func (env *ListTestEnviron) TestFractionalPositions() {
	pos, err := ParseScaled("1.5")
	env.Require().NoError(err)
	l, err := env.list("P1", "P2", "P3").RemoveAfter(pos, env.progs["P2"])
	env.Require().NoError(err)
	// characters 0 and 1 start before 1.5
	env.apply(l, "aaaa", "ddbb")
	l, err = env.list("P1", "P2", "P3").RemoveBefore(pos, env.progs["P2"])
	env.Require().NoError(err)
	env.apply(l, "aaaa", "bbdd")
}

func (env *ListTestEnviron) TestBothSplices() {
	l, err := env.list("P1", "P2", "P3").RemoveAfter(3*Unity, env.progs["P2"])
	env.Require().NoError(err)
	l, err = l.RemoveBefore(Unity, env.progs["P2"])
	env.Require().NoError(err)
	env.Equal("[P1, P2[1.0..3.0), P3]", l.String())
	env.apply(l, "aaaaa", "bddbb")
}

func (env *ListTestEnviron) TestDeadNodesAreDropped() {
	l, err := env.list("P1", "P2", "P3").RemoveAfter(0, env.progs["P2"])
	env.Require().NoError(err)
	env.Equal(2, l.Len())
	env.Equal("[P1, P3]", l.String())
	l, err = env.list("P1").RemoveAfter(0, env.progs["P1"])
	env.Require().NoError(err)
	env.True(l.IsTerminator())
}

func (env *ListTestEnviron) TestSpliceSharesTail() {
	full := env.list("P1", "P2", "P3")
	l, err := full.RemoveAfter(Unity, env.progs["P2"])
	env.Require().NoError(err)
	env.True(l.head.next.next == full.head.next.next, "tail after spliced node must be shared")
	env.False(l.head == full.head)
}

func (env *ListTestEnviron) TestDuplicatePrograms() {
	// the first active occurrence is spliced
	l := env.list("P1", "P1")
	l, err := l.RemoveAfter(Unity, env.progs["P1"])
	env.Require().NoError(err)
	env.Equal("[P1[0.0..1.0), P1]", l.String())
	l, err = l.RemoveAfter(2*Unity, env.progs["P1"])
	env.Require().NoError(err)
	env.Equal("[P1[0.0..1.0), P1[0.0..2.0)]", l.String())
}

func (env *ListTestEnviron) TestSpliceErrors() {
	full := env.list("P1", "P2", "P3")
	check := func(l List, err error, sentinel error) {
		env.Require().Error(err)
		env.True(errors.Is(err, sentinel), "expected %v, got %v", sentinel, err)
		var serr *SpliceError
		env.True(errors.As(err, &serr))
		env.Same(full.head, l.head, "list must be left unchanged")
	}
	l, err := full.RemoveAfter(Unity, env.progs["P4"])
	check(l, err, ErrNotInList)
	l, err = full.RemoveBefore(-1, env.progs["P1"])
	check(l, err, ErrPosition)
	l, err = full.RemoveAfter(MaxScaled+1, env.progs["P1"])
	check(l, err, ErrPosition)
	//
	spliced, err := full.RemoveAfter(2*Unity, env.progs["P2"])
	env.Require().NoError(err)
	_, err = spliced.RemoveAfter(3*Unity, env.progs["P2"])
	env.True(errors.Is(err, ErrNotActive))
	_, err = Null.RemoveAfter(0, env.progs["P1"])
	env.True(errors.Is(err, ErrNotInList))
}

func (env *ListTestEnviron) TestBuilderFoldOrder() {
	b := NewBuilder().
		AddBefore(env.progs["P1"]).
		RemoveAfter(2*Unity, env.progs["P2"]).
		AddBefore(env.progs["P2"]).
		AddBefore(env.progs["P3"])
	env.Len(b.Commands(), 4)
	l, err := b.Build(Null)
	env.Require().NoError(err)
	env.Equal("[P1, P2[0.0..2.0), P3]", l.String())
	env.Same(env.progs["P1"], l.Entries()[0].Program, "first-written command is the head")
	// building again is repeatable
	again, err := b.Build(Null)
	env.Require().NoError(err)
	env.Equal(l.String(), again.String())
	// a splice before its program is added fails
	_, err = NewBuilder().AddBefore(env.progs["P2"]).RemoveAfter(Unity, env.progs["P2"]).Build(Null)
	env.Require().Error(err)
	env.True(errors.Is(err, ErrNotInList))
	env.Contains(err.Error(), "command #2")
}

func (env *ListTestEnviron) TestBuildOnBase() {
	base := env.list("P3")
	l, err := NewBuilder().AddBefore(env.progs["P1"]).Build(base)
	env.Require().NoError(err)
	env.Equal("[P1, P3]", l.String())
	env.Equal("[P3]", base.String())
}

func (env *ListTestEnviron) TestParseChain() {
	res := mapResolver(env.progs)
	l, err := Parse(`\addbeforeocplist \P1
		\removeafterocplist 2 \P2 \addbeforeocplist \P2
		\addbeforeocplist \P3 \nullocplist`, res)
	env.Require().NoError(err)
	env.Equal("[P1, P2[0.0..2.0), P3]", l.String())
	env.apply(l, "aaaa", "ddbb")
	l, err = Parse(`\nullocplist`, res)
	env.Require().NoError(err)
	env.True(l.IsTerminator())
	b, err := ParseChain(`\removebeforeocplist 0.5 \P1 \addbeforeocplist \P1 \nullocplist`, res)
	env.Require().NoError(err)
	env.Equal(`\removebeforeocplist 0.5 \P1`, b.Commands()[0].String())
}

func (env *ListTestEnviron) TestParseChainErrors() {
	res := mapResolver(env.progs)
	for _, chain := range []string{
		``,
		`\addbeforeocplist \P1`,
		`\addbeforeocplist`,
		`\addbeforeocplist P1 \nullocplist`,
		`\addbeforeocplist \nosuch \nullocplist`,
		`\removeafterocplist \P1 \nullocplist`,
		`\removeafterocplist 1`,
		`\nullocplist \addbeforeocplist \P1`,
		`\appendocplist \P1 \nullocplist`,
	} {
		_, err := Parse(chain, res)
		env.Error(err, "chain %q", chain)
	}
}

func (env *ListTestEnviron) TestNormalization() {
	l := env.list("umlaut")
	env.apply(l, "ba\u0308r", "b\u00e4r")
	env.apply(l, "b\u00e4r", "b\u00e4r")
	decomposed, err := l.Apply([]rune("b\u00e4r"), WithNormalization(norm.NFD))
	env.Require().NoError(err)
	env.Equal("b\u00e4r", string(decomposed))
	composed, err := l.Apply([]rune("ba\u0308r"), WithNormalization(norm.NFC))
	env.Require().NoError(err)
	env.Equal("b\u00e4r", string(composed), "NFC composes before the program runs")
}

func (env *ListTestEnviron) TestScaled() {
	for _, c := range []struct {
		s    Scaled
		text string
	}{
		{0, "0.0"},
		{Unity, "1.0"},
		{Unity / 2, "0.5"},
		{-3 * Unity / 4, "-0.75"},
		{10*Unity + 1, "10.00002"},
		{MaxScaled, "16383.99998"},
	} {
		env.Equal(c.text, c.s.String())
		back, err := ParseScaled(c.text)
		env.Require().NoError(err)
		env.Equal(c.s, back, "reading back %s", c.text)
	}
	for _, bad := range []string{"", "-", "1.x", "a", "16384", "1e3"} {
		_, err := ParseScaled(bad)
		env.Error(err, "parsing %q", bad)
	}
	env.Equal(0, Scaled(0).CharIndex())
	env.Equal(1, Scaled(1).CharIndex())
	env.Equal(2, (2 * Unity).CharIndex())
	env.Equal(3*Unity, At(3))
}

// --- Helpers ---------------------------------------------------------------

// list builds a list of the named test programs, the first one at the head.
func (env *ListTestEnviron) list(names ...string) List {
	l := Null
	for i := len(names) - 1; i >= 0; i-- {
		p, ok := env.progs[names[i]]
		env.Require().True(ok, "no test program %s", names[i])
		l = l.Prepend(p)
	}
	return l
}

func (env *ListTestEnviron) apply(l List, input, expected string) {
	out, err := l.Apply([]rune(input))
	env.Require().NoError(err, "applying %s to %q", l, input)
	env.Equal(expected, string(out), "applying %s to %q", l, input)
}

type mapResolver map[string]*ocpcode.Program

func (m mapResolver) Load(name string) (*ocpcode.Program, error) {
	if p, ok := m[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no program %q", name)
}
