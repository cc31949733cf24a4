// Command sorodbg is the CLI/REPL/remote-debug frontend over the
// deterministic contract debugger core: it loads a contract, drives the
// Execution Engine through it, and renders the engine's state through the
// introspection, comparison, and trace packages.
package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/promisszn/soroban-debugger-sub000/internal/eventlog"
)

func main() {
	os.Exit(doMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// doMain is separated from main for the purpose of unit testing: every verb
// reads only from stdin/args and writes only to stdOut/stdErr.
func doMain(args []string, stdin io.Reader, stdOut, stdErr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdErr)
		return 1
	}

	verb := args[0]
	rest := args[1:]

	switch verb {
	case "run":
		return doRun(rest, stdOut, stdErr)
	case "inspect":
		return doInspect(rest, stdOut, stdErr)
	case "analyze":
		return doAnalyze(rest, stdOut, stdErr)
	case "optimize":
		return doOptimize(rest, stdOut, stdErr)
	case "profile":
		return doProfile(rest, stdOut, stdErr)
	case "compare":
		return doCompare(rest, stdOut, stdErr)
	case "replay":
		return doReplay(rest, stdOut, stdErr)
	case "server":
		return doServer(rest, stdOut, stdErr)
	case "remote":
		return doRemote(rest, stdin, stdOut, stdErr)
	case "repl", "interactive", "tui":
		return doRepl(rest, stdin, stdOut, stdErr)
	case "symbolic":
		fmt.Fprintln(stdErr, "symbolic: symbolic execution is out of scope for this debugger")
		return 1
	case "upgrade-check":
		return doUpgradeCheck(rest, stdOut, stdErr)
	case "completions":
		return doCompletions(rest, stdOut, stdErr)
	case "-h", "--help", "help":
		printUsage(stdErr)
		return 0
	default:
		fmt.Fprintf(stdErr, "sorodbg: unknown command %q\n", verb)
		printUsage(stdErr)
		return 1
	}
}

func printUsage(stdErr io.Writer) {
	fmt.Fprintln(stdErr, "sorodbg CLI")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Usage:\n  sorodbg <command> [flags]")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Commands:")
	fmt.Fprintln(stdErr, "  run            Invoke a contract function once and print the result")
	fmt.Fprintln(stdErr, "  inspect        Load a contract and print storage/events/auth without invoking")
	fmt.Fprintln(stdErr, "  analyze        Execute a function and report budget and call-flow summary")
	fmt.Fprintln(stdErr, "  optimize       Report budget consumption as a percentage of configured limits")
	fmt.Fprintln(stdErr, "  profile        Report wall-clock timing across --repeat runs")
	fmt.Fprintln(stdErr, "  compare        Diff two persisted execution traces")
	fmt.Fprintln(stdErr, "  replay         Re-run a persisted trace's invocation and diff against it")
	fmt.Fprintln(stdErr, "  server         Serve the remote-debug wire protocol over TCP")
	fmt.Fprintln(stdErr, "  remote         Connect to a remote-debug server as a line-oriented client")
	fmt.Fprintln(stdErr, "  repl           Start an interactive read-eval-print debugging loop")
	fmt.Fprintln(stdErr, "  interactive    Alias for repl")
	fmt.Fprintln(stdErr, "  tui            Alias for repl (no terminal UI renderer is implemented)")
	fmt.Fprintln(stdErr, "  symbolic       Unsupported; always exits non-zero")
	fmt.Fprintln(stdErr, "  upgrade-check  Report whether a newer sorodbg release is available")
	fmt.Fprintln(stdErr, "  completions    Print a shell completion script")
}

// newLogger builds the process's single zap logger from the global
// verbosity flags, threaded by value into whichever verb needs it rather
// than read from a package-level global.
func newLogger(quiet, verbose bool) *zap.SugaredLogger {
	return eventlog.New(quiet, verbose)
}
