package ocpcomp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpvm"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Preparation ------------------------------------------------

type CompilerTestEnviron struct {
	suite.Suite
}

// listen for 'go test' command --> run test methods
func TestCompilerFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.comp")
	defer teardown()
	suite.Run(t, new(CompilerTestEnviron))
}

// run once, before test suite methods
func (env *CompilerTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("ocp.vm").SetTraceLevel(tracing.LevelError)
}

// run once, after test suite methods
func (env *CompilerTestEnviron) TearDownSuite() {
	env.T().Log("Tearing down test suite")
}

// --- Tests -----------------------------------------------------------------

func (env *CompilerTestEnviron) TestCharacters() {
	prog := env.compile(`
		expressions:
		  ` + "`a'" + ` => ` + "`b'" + `;
		  "xy" => "YX";
		  @"41 => \1 \1;
	`)
	env.translate(prog, "a-xy-xA-a", "b-YX-xAA-b")
}

func (env *CompilerTestEnviron) TestRangesAndComplement() {
	prog := env.compile(`
		expressions:
		  @"30-@"39 => "#";
		  ^(@"61-@"7A | @"20) => "?";
	`)
	env.translate(prog, "ab 12,c", "ab ##?c")
}

func (env *CompilerTestEnviron) TestChoice() {
	prog := env.compile(`
		aliases:
		  VOWEL = (@"61 | @"65 | @"69 | @"6F | @"75);
		expressions:
		  ("ng" | "n" @"79) => "N";
		  {VOWEL} {VOWEL} => \2;
	`)
	env.translate(prog, "nanyngoaeu", "naNNau")
}

func (env *CompilerTestEnviron) TestChoiceBacktracking() {
	// the first alternative matches two characters before failing, the
	// second one has to start from the beginning again
	prog := env.compile(`
		expressions:
		  ("abc" | "abd" | "a") => "<" \* ">";
	`)
	env.translate(prog, "abcabdabx", "<abc><abd><a>bx")
}

func (env *CompilerTestEnviron) TestRepetition() {
	prog := env.compile(`
		expressions:
		  @"2D<2,3> => "=";
		  @"20<1,> => @"20;
		  "x"<2> => "X";
	`)
	env.translate(prog, "a-b--c---d----e     fxxx", "a-b=c=d=-e fXx")
}

func (env *CompilerTestEnviron) TestRepetitionInChoice() {
	prog := env.compile(`
		expressions:
		  ("ab"<2> | "ac") . => \* "!";
	`)
	env.translate(prog, "ababx abacx", "ababx! abacx!")
}

func (env *CompilerTestEnviron) TestSomeAndLastChar() {
	prog := env.compile(`
		expressions:
		  "[" ^("]")<0,> "]" => \(*+1-1);
		  "<" . . ">" => \$ \($-1) \($-2) \($-3);
	`)
	env.translate(prog, "a[bcd]e[]f<xy>", "abcdef>yx<")
}

func (env *CompilerTestEnviron) TestAnchors() {
	prog := env.compile(`
		expressions:
		  <begin:> "a" => "A";
		  "z" <end:> => "Z";
	`)
	env.translate(prog, "aaazz", "AaazZ")
}

func (env *CompilerTestEnviron) TestTablesAndExpressions() {
	prog := env.compile(`
		tables:
		  rot[3] = {@"63, @"61, @"62};
		expressions:
		  (@"61-@"63) => #rot[\1 - @"61];
		  @"30-@"39 @"30-@"39 => #((\1 - @"30) * 10 + \2 - @"30 + @"40);
	`)
	env.translate(prog, "abc-42", "cab-j")
}

func (env *CompilerTestEnviron) TestPushback() {
	prog := env.compile(`
		expressions:
		  "ae" => <= "ä";
		  "ä" => "[" "ä" "]";
	`)
	env.translate(prog, "maer", "m[ä]r")
}

func (env *CompilerTestEnviron) TestPushbackWithoutProgress() {
	prog := env.compile(`
		expressions:
		  "a" => <= "a";
	`)
	_, err := ocpvm.Translate(prog, []rune("a"))
	env.ErrorIs(err, ocpvm.ErrNoProgress)
	prog = env.compile(`
		expressions:
		  "a" => <= "b";
		  "b" => <= "a";
	`)
	_, err = ocpvm.Translate(prog, []rune("ba"))
	env.ErrorIs(err, ocpvm.ErrStepLimit)
}

func (env *CompilerTestEnviron) TestStates() {
	prog := env.compile(`
		states:
		  QUOTED;
		expressions:
		  @"22 => "<<" <push: QUOTED>;
		  <QUOTED> @"22 => ">>" <pop:>;
		  <QUOTED> @"61-@"7A => #(\1 - @"20);
	`)
	env.Equal(2, prog.StateCount())
	env.translate(prog, `say "hi" ok`, "say <<HI>> ok")
}

func (env *CompilerTestEnviron) TestStateChange() {
	prog := env.compile(`
		states:
		  ONE, TWO;
		expressions:
		  "." => <ONE>;
		  <ONE> "." => <TWO>;
		  <TWO> "." => "!" <INITIAL>;
	`)
	env.Equal(3, prog.StateCount())
	env.translate(prog, "a.b.c.d", "abc!d")
}

func (env *CompilerTestEnviron) TestHeader() {
	prog := env.compile(`
		input: 1;
		output: 4;
		expressions:
		  . => \1;
	`)
	env.Equal(1, prog.InputBytes())
	env.Equal(4, prog.OutputBytes())
}

func (env *CompilerTestEnviron) TestExternalTables() {
	reg := ocpcode.NewTableRegistry()
	reg.Define("shift", []int{1, 2, 3})
	prog, err := Compile("ext", `
		expressions:
		  @"61-@"63 => #(\1 + shift[\1 - @"61]);
	`, WithTables(reg))
	env.Require().NoError(err)
	env.translate(prog, "abc", "bdf")
}

func (env *CompilerTestEnviron) TestCompileErrors() {
	for src, kind := range map[string]error{
		`expressions: "a" => \2;`:                      ocpcode.ErrSyntax,
		`expressions: "a" => \($-1);`:                  ocpcode.ErrSyntax,
		`expressions: "ab" => \(*+2-1);`:               ocpcode.ErrSyntax,
		`expressions: "a" => #t[\1];`:                  ocpcode.ErrTableNotDefined,
		`expressions: "a" => 65536;`:                   ocpcode.ErrArgumentTooBig,
		`expressions: <NOSTATE> "a" => "b";`:           ocpcode.ErrSyntax,
		`expressions: {NOALIAS} => "b";`:               ocpcode.ErrSyntax,
		`expressions: ("a"<1,> | "b") => "b";`:         ocpcode.ErrSyntax,
		`expressions: ("a" . <1,>) => "b";`:            ocpcode.ErrSyntax,
		`expressions: "a" => "b"`:                      ocpcode.ErrSyntax,
		`expressions: "a" "b";`:                        ocpcode.ErrSyntax,
		`tables: t[2] = {1}; expressions: . => \1;`:    ocpcode.ErrSyntax,
		`states: A, A;`:                                ocpcode.ErrSyntax,
		`input: 7;`:                                    ocpcode.ErrSyntax,
		`colors: 7;`:                                   ocpcode.ErrSyntax,
		`expressions: ^("ab") => "b";`:                 ocpcode.ErrSyntax,
		`expressions: "a"<3,2> => "b";`:                ocpcode.ErrSyntax,
		`expressions: <begin:><2> => "b";`:             ocpcode.ErrSyntax,
		`tables: t[1] = {1}; t[1] = {2};`:              ocpcode.ErrSyntax,
		`expressions: "a" => "b" <push: INITIAL> "c";`: ocpcode.ErrSyntax,
	} {
		_, err := Compile("bad", src)
		env.Errorf(err, "expected error for %q", src)
		env.Truef(errors.Is(err, kind), "expected %v for %q, got %v", kind, src, err)
	}
}

func (env *CompilerTestEnviron) TestCompileFile() {
	dir := env.T().TempDir()
	path := filepath.Join(dir, "lower.otp")
	err := os.WriteFile(path, []byte("expressions:\n  @\"41-@\"5A => #(\\1 + @\"20);\n"), 0o644)
	env.Require().NoError(err)
	prog, err := CompileFile(path)
	env.Require().NoError(err)
	env.Equal("lower", prog.Name())
	env.translate(prog, "Hello OCP", "hello ocp")
	// compiled programs survive encoding to .ocp format
	decoded, err := ocpcode.Decode("lower", ocpcode.Encode(prog))
	env.Require().NoError(err)
	env.translate(decoded, "Hello OCP", "hello ocp")
}

func (env *CompilerTestEnviron) TestDefaultRule() {
	prog := env.compile(`expressions: "a" => "b";`)
	code := prog.State(0)
	env.Equal(ocpcode.OpLeftReturn, code[len(code)-1].Opcode())
	bare, err := Compile("bare", `expressions: "a" => "b";`, WithoutDefaultRule())
	env.Require().NoError(err)
	env.Less(len(bare.State(0)), len(code))
	env.translate(bare, "cab", "cbb")
}

// --- Helpers ---------------------------------------------------------------

func (env *CompilerTestEnviron) compile(src string) *ocpcode.Program {
	env.T().Helper()
	prog, err := Compile(env.T().Name(), src)
	env.Require().NoError(err, "compiling test OCP")
	return prog
}

func (env *CompilerTestEnviron) translate(prog *ocpcode.Program, input, expected string) {
	env.T().Helper()
	out, err := ocpvm.Translate(prog, []rune(input), ocpvm.WithStepLimit(100000))
	env.Require().NoError(err, "translating %q", input)
	env.Equal(expected, string(out), "translation of %q", input)
}
