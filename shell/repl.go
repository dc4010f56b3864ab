package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/cybermatrixco/nginx-python-module/config"
	"github.com/cybermatrixco/nginx-python-module/engine"
	"github.com/cybermatrixco/nginx-python-module/interp"
	"github.com/cybermatrixco/nginx-python-module/reactor"
)

// main() starts an interactive CLI where users may enter script lines.
// Each line is evaluated as a task against a live reactor; a line that
// suspends on a blocking builtin is driven until it settles, so
// sleep(500) actually sleeps and connect(...) actually connects.
func main() {
	// set up logging
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	conff := flag.String("config", "", "Host configuration file (TOML)")
	flag.Parse()
	tracer().SetTraceLevel(tracing.TraceLevelFromString(*tlevel))
	pterm.Info.Println("Welcome to the script shell")
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// wire up the host
	setup, err := loadSetup(*conff)
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(2)
	}
	defer setup.Close()
	//
	// set up REPL
	repl, err := readline.New("script> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	sh := &Shell{
		setup: setup,
		task:  setup.NewTask(),
		repl:  repl,
	}
	tracer().Infof("Quit with <ctrl>D")
	sh.REPL()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// loadSetup applies the given configuration file, or the defaults when no
// file is named.
func loadSetup(path string) (*config.Setup, error) {
	if path == "" {
		return config.Default().Apply()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	tracer().Infof("Loaded configuration from %s", path)
	return cfg.Apply()
}

// Shell is our interpreter object
type Shell struct {
	setup  *config.Setup
	task   *engine.Task
	repl   *readline.Instance
	lineno int
}

// REPL starts interactive mode.
func (sh *Shell) REPL() {
	for {
		line, err := sh.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		sh.lineno++
		sh.evalLine(line)
	}
	println("Good bye!")
}

// evalLine compiles and evaluates one input line, driving the reactor
// until a suspended evaluation has settled.
func (sh *Shell) evalLine(line string) {
	code, err := sh.setup.CompileCached(line, fmt.Sprintf("<shell>:%d", sh.lineno))
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	e := sh.setup.Engine
	r := sh.setup.Reactor
	var final engine.Result
	var wake *reactor.Event
	wake = r.NewEvent("shell-continue", func() {
		final = e.Eval(sh.task, nil, wake)
	})
	res := e.Eval(sh.task, code, wake)
	if !res.Settled() {
		r.RunUntilIdle()
		res = final
	}
	sh.printResult(res)
}

func (sh *Shell) printResult(res engine.Result) {
	switch res.Kind {
	case engine.ValueResult:
		pterm.Info.Println(interp.FormatValue(res.Value))
	case engine.EmptyResult:
		pterm.Error.Println("evaluation failed (see trace output)")
	default:
		pterm.Error.Println("evaluation did not settle")
	}
}
