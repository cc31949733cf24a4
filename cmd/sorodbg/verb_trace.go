package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/promisszn/soroban-debugger-sub000/internal/compare"
	"github.com/promisszn/soroban-debugger-sub000/internal/format"
)

// doCompare diffs two persisted execution traces and prints the report.
func doCompare(args []string, stdOut, stdErr io.Writer) int {
	flags := flag.NewFlagSet("compare", flag.ContinueOnError)
	flags.SetOutput(stdErr)
	jsonOutput := flags.Bool("json", false, "Emit the comparison as JSON instead of a text report.")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() < 2 {
		fmt.Fprintln(stdErr, "compare: requires two trace file paths")
		return 1
	}

	a, err := readTrace(flags.Arg(0))
	if err != nil {
		return reportError(stdErr, err, *jsonOutput)
	}
	b, err := readTrace(flags.Arg(1))
	if err != nil {
		return reportError(stdErr, err, *jsonOutput)
	}

	report := compare.Compare(a, b)
	if *jsonOutput {
		out, _ := format.JSON(report)
		fmt.Fprintln(stdOut, out)
		return 0
	}
	fmt.Fprint(stdOut, compare.RenderReport(report))
	return 0
}

// doReplay re-runs a persisted trace's recorded invocation against a freshly
// loaded contract and reports whether the new run reproduces it.
func doReplay(args []string, stdOut, stdErr io.Writer) int {
	flags, f := registerExecFlags("replay", stdErr)
	var tracePath string
	flags.StringVar(&tracePath, "trace", "", "Path to the persisted trace to replay.")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if tracePath == "" {
		fmt.Fprintln(stdErr, "replay: --trace is required")
		return 1
	}

	recorded, err := readTrace(tracePath)
	if err != nil {
		return reportError(stdErr, err, f.jsonOutput)
	}

	function := f.function
	if function == "" && recorded.Function != nil {
		function = *recorded.Function
	}
	argsText := f.args
	if argsText == "[]" && recorded.Args != nil {
		argsText = *recorded.Args
	}

	sess, err := newSession(f.session())
	if err != nil {
		return reportError(stdErr, err, f.jsonOutput)
	}
	if _, execErr := sess.eng.Execute(function, argsText); execErr != nil {
		return reportError(stdErr, execErr, f.jsonOutput)
	}

	replayed := sess.eng.CaptureTrace(f.contract, sess.handle.Address, function, argsText)
	report := compare.Compare(recorded, replayed)

	if f.jsonOutput {
		out, _ := format.JSON(report)
		fmt.Fprintln(stdOut, out)
	} else {
		fmt.Fprint(stdOut, compare.RenderReport(report))
	}

	if !report.FlowDiff.Identical || !report.ReturnValueDiff.Equal {
		return 1
	}
	return 0
}
