package ocpcomp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/ocp/ocpcode"
)

// Option configures a compilation.
type Option func(*config)

type config struct {
	tables      *ocpcode.TableRegistry
	defaultRule bool
}

// WithTables makes the tables of reg available to the source text. Tables
// defined by the source are added to reg.
func WithTables(reg *ocpcode.TableRegistry) Option {
	return func(c *config) {
		c.tables = reg
	}
}

// WithoutDefaultRule suppresses the rule copying a single character, which is
// otherwise appended to the code of every state. Characters not matched by
// any rule are then still copied by the scan loop, but the code of a state
// no longer guarantees that.
func WithoutDefaultRule() Option {
	return func(c *config) {
		c.defaultRule = false
	}
}

// Compile compiles OCP source text into a program called name.
func Compile(name, text string, opts ...Option) (*ocpcode.Program, error) {
	conf := config{defaultRule: true}
	for _, opt := range opts {
		opt(&conf)
	}
	src, err := newParser(text, conf.tables).parse()
	if err != nil {
		tracer().Infof("cannot parse OCP %s: %v", name, err)
		return nil, err
	}
	states := make([]*ocpcode.CompilerState, len(src.stateNames))
	for i := range states {
		states[i] = ocpcode.NewCompilerState(src.tables)
	}
	for _, r := range src.rules {
		tracer().Debugf("%s: compiling rule at %s for state %s", name, r.at, src.stateNames[r.state])
		if err = compileRule(states[r.state], r); err != nil {
			tracer().Infof("cannot compile OCP %s: %v", name, err)
			return nil, positioned(err, r.at)
		}
	}
	code := make([][]ocpcode.Instruction, len(states))
	for i, cs := range states {
		if conf.defaultRule {
			if err = compileDefaultRule(cs); err != nil {
				return nil, err
			}
		}
		code[i] = cs.Finish()
	}
	prog, err := ocpcode.NewProgram(name, src.input, src.output, src.tables, code...)
	if err != nil {
		return nil, fmt.Errorf("ocpcomp: compiled code of %s does not validate: %w", name, err)
	}
	tracer().Infof("compiled OCP %s: %d rules, %d states, %d tables, %d words",
		name, len(src.rules), prog.StateCount(), prog.TableCount(), prog.Size())
	return prog, nil
}

// CompileFile compiles an OCP source file. The program is named after the
// file, without directory and extension.
func CompileFile(path string, opts ...Option) (*ocpcode.Program, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Compile(name, string(text), opts...)
}
