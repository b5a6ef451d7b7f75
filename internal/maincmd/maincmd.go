// Package maincmd implements cmd/hpl's command surface: the mainer.Cmd
// that parses flags and dispatches to one of validate, run or debug,
// plus a tokenize command retained for inspecting the scanner's output.
// Grounded on _examples/mna-nenuphar's internal/maincmd package (the same
// mainer.Cmd/buildCmds reflection-dispatch shape), generalized from the
// teacher's parse/resolve/tokenize trio to this port's validate/run/debug
// trio (spec.md §6's three core APIs).
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "hpl"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>...] [-- <arg>...]
       %[1]s -h|--help
       %[1]s -v|--version

Interpreter and sandboxed execution tool for the HPL structured-document
scripting language.

The <command> can be one of:
       validate                  Load and link a document without running
                                  it, printing every diagnostic found.
       run                       Execute a document inside the sandbox and
                                  print its output.
       debug                     Execute a document inside the sandbox with
                                  debug instrumentation attached and print
                                  its execution trace.
       tokenize                  Run the scanner phase alone and print the
                                  resulting tokens.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Valid flag options for the <run> and <debug> commands are:
       --call <target>           Override the document's own call/main
                                  entry point, e.g. "name" or "obj.method".
       --arg <value>             Append an argument to the call target;
                                  may be repeated.
       --input <line>            Append a line fed to the program's
                                  stdin; may be repeated.
       --memory-mb <n>           Override the sandbox memory limit.
       --cpu-seconds <n>         Override the sandbox CPU time limit.
       --wall-seconds <n>        Override the sandbox wall clock limit.

More information on the HPL repository:
       https://github.com/mna/hpl
`, binName)
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Call string   `flag:"call"`
	Arg  []string `flag:"arg"`
	In   []string `flag:"input"`

	MemoryMB    int     `flag:"memory-mb"`
	CPUSeconds  int     `flag:"cpu-seconds"`
	WallSeconds float64 `flag:"wall-seconds"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]

	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", c.args[0])
	}

	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: at least one file must be provided", cmdName)
	}

	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		if ec, ok := err.(exitCoder); ok {
			return mainer.ExitCode(ec.ExitCode())
		}
		return mainer.Failure
	}
	return mainer.Success
}

// exitCoder lets a command communicate a specific process exit code (spec.md
// §6: "0 success, 1 runtime error, 2 syntax/import error, 124 timeout") back
// through Main's single error return, without mainer.Failure's flat 1.
type exitCoder interface {
	error
	ExitCode() int
}

type cmdError struct {
	msg  string
	code int
}

func (e *cmdError) Error() string { return e.msg }
func (e *cmdError) ExitCode() int { return e.code }

// valid commands are those that take a mainer.Stdio and a slice of strings as
// input, and return an error as output.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}

		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
