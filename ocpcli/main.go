package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/ocp"
	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpload"
	"github.com/npillmayer/ocp/ocpstore"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'ocp.cli'
func tracer() tracing.Trace {
	return tracing.Select("ocp.cli")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
		"trace.ocp.cli":   "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	dir := flag.String("dir", ".", "Directory to load compiled OCPs from")
	db := flag.String("db", "", "OCP library to load compiled OCPs from")
	ocpname := flag.String("ocp", "", "OCP to use")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError) // will set the correct level later
	pterm.Info.Println("Welcome to OCP CLI")   // colored welcome message
	//
	// set up program search path
	finders := ocpload.Finders{ocpload.NewDirFinder(*dir)}
	if *db != "" {
		lib, err := ocpstore.Open(*db)
		if err != nil {
			tracer().Errorf("%v", err)
			os.Exit(2)
		}
		defer lib.Close()
		finders = append(ocpload.Finders{lib}, finders...)
	}
	//
	// set up REPL
	repl, err := readline.New("ocp > ")
	if err != nil {
		tracer().Errorf("%v", err)
		os.Exit(3)
	}
	intp := &Intp{repl: repl, env: ocp.NewEnv(finders)}
	//
	// load OCP to use
	if *ocpname != "" {
		if err := intp.use(*ocpname); err != nil { // OCP name provided by flag
			tracer().Errorf("%v", err)
			os.Exit(4)
		}
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	repl    *readline.Instance
	env     *ocp.Env
	program *ocpcode.Program // program in use
	window  []rune           // characters \1, \2, … of expressions
}

func (intp *Intp) String() string {
	if intp == nil {
		return "()"
	}
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("( ocp=%s )", intp.program))
	if active := intp.env.Active(); !active.IsTerminator() {
		sb.WriteString(fmt.Sprintf(" -> %s", active))
	}
	return sb.String()
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		op := parseCommand(line)
		err, quit := intp.execute(op)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Op is a command, consisting of an op-code and the rest of the input line.
type Op struct {
	code int
	arg  string
}

const (
	QUIT int = iota
	HELP
	EXPR
	WINDOW
	COMPILE
	USE
	DISASM
	RUN
	LIST
	PUSH
	POP
	CHARS
)

var opMap = map[string]int{
	"quit":    QUIT,
	"help":    HELP,
	"expr":    EXPR,
	"window":  WINDOW,
	"compile": COMPILE,
	"use":     USE,
	"disasm":  DISASM,
	"run":     RUN,
	"list":    LIST,
	"push":    PUSH,
	"pop":     POP,
	"chars":   CHARS,
}

// parseCommand splits a line into command word and argument. Unknown
// commands are treated as requests for help.
func parseCommand(line string) *Op {
	word, arg, _ := strings.Cut(line, " ")
	code, ok := opMap[strings.ToLower(word)]
	if !ok {
		return &Op{code: HELP, arg: word}
	}
	tracer().Debugf("parsed command: %s %q", word, arg)
	return &Op{code: code, arg: strings.TrimSpace(arg)}
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:    quitOp,
	HELP:    helpOp,
	EXPR:    exprOp,
	WINDOW:  windowOp,
	COMPILE: compileOp,
	USE:     useOp,
	DISASM:  disasmOp,
	RUN:     runOp,
	LIST:    listOp,
	PUSH:    pushOp,
	POP:     popOp,
	CHARS:   charsOp,
}

func (intp *Intp) execute(op *Op) (err error, stop bool) {
	f, ok := commandFn[op.code]
	if !ok {
		return fmt.Errorf("unknown command code: %d", op.code), false
	}
	return f(intp, op)
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

func (op *Op) noArg() bool {
	return op.arg == ""
}
