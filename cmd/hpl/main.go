package main

import (
	"os"

	"github.com/mna/mainer"

	"github.com/mna/hpl/internal/maincmd"
	"github.com/mna/hpl/lang/sandbox"
)

var (
	// placeholder values, replaced on build
	version   = "{v}" // must be N.N[.N]
	buildDate = "{d}" // must be YYYY-mm-DD
)

func main() {
	// A hidden re-exec: `hpl __hpl-sandbox-worker` runs this binary as a
	// sandbox worker (lang/sandbox.Main) instead of the ordinary CLI, the
	// transport lang/sandbox.Runner.spawn relies on. Checked before mainer
	// ever sees os.Args so it never collides with the real flag grammar.
	if len(os.Args) > 1 && os.Args[1] == sandbox.WorkerArg {
		os.Exit(sandbox.Main(os.Stdin, os.Stdout))
	}

	c := maincmd.Cmd{BuildVersion: version, BuildDate: buildDate}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
