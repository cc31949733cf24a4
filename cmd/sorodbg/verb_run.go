package main

import (
	"fmt"
	"io"
	"time"

	"github.com/promisszn/soroban-debugger-sub000/internal/format"
	"github.com/promisszn/soroban-debugger-sub000/internal/introspect"
)

// doRun loads a contract, invokes --function --repeat times, and renders
// the result, storage, events, and auth tree per the requested flags.
func doRun(args []string, stdOut, stdErr io.Writer) int {
	flags, f := registerExecFlags("run", stdErr)
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if f.repeat < 1 {
		f.repeat = 1
	}

	cfg := f.config()
	logger := newLogger(cfg.Quiet(), cfg.Verbose())
	defer logger.Sync() //nolint:errcheck
	logger.Debugw("loading contract", "path", f.contract, "function", f.function)

	sess, err := newSession(f.session())
	if err != nil {
		return reportError(stdErr, err, f.jsonOutput)
	}

	if f.dryRun {
		fmt.Fprintf(stdOut, "dry run: %s loaded as %s, function %q not invoked\n", f.contract, sess.handle.Address, f.function)
		return 0
	}

	var lastErr error
	for i := 0; i < f.repeat; i++ {
		_, lastErr = sess.eng.Execute(f.function, f.args)
	}
	if lastErr != nil {
		return reportError(stdErr, lastErr, f.jsonOutput)
	}

	renderExecutionResult(stdOut, sess, f)

	if f.traceOut != "" {
		tr := sess.eng.CaptureTrace(f.contract, sess.handle.Address, f.function, f.args)
		if err := writeTrace(f.traceOut, tr); err != nil {
			return reportError(stdErr, err, f.jsonOutput)
		}
	}
	return 0
}

// doAnalyze executes the function once and prints a budget/call-flow
// summary without the raw return value, the shape a static review pass
// over an invocation would want.
func doAnalyze(args []string, stdOut, stdErr io.Writer) int {
	flags, f := registerExecFlags("analyze", stdErr)
	if err := flags.Parse(args); err != nil {
		return 2
	}

	sess, err := newSession(f.session())
	if err != nil {
		return reportError(stdErr, err, f.jsonOutput)
	}
	_, execErr := sess.eng.Execute(f.function, f.args)
	if execErr != nil {
		return reportError(stdErr, execErr, f.jsonOutput)
	}

	budget := introspect.BudgetInfo(sess.host.Budget())
	stack := sess.eng.CallStack()

	if f.jsonOutput {
		out, _ := format.JSON(map[string]interface{}{
			"cpu_instructions": budget.CPUInstructions,
			"cpu_percent":      budget.CPUPercent(),
			"memory_bytes":     budget.MemoryBytes,
			"memory_percent":   budget.MemoryPercent(),
			"call_depth":       len(stack),
		})
		fmt.Fprintln(stdOut, out)
		return 0
	}
	fmt.Fprintf(stdOut, "cpu: %d instructions (%.1f%%)\n", budget.CPUInstructions, budget.CPUPercent())
	fmt.Fprintf(stdOut, "memory: %d bytes (%.1f%%)\n", budget.MemoryBytes, budget.MemoryPercent())
	fmt.Fprintf(stdOut, "call depth: %d\n", len(stack))
	return 0
}

// doOptimize executes the function once and reports budget consumption as a
// percentage of configured limits, flagging functions close to exhausting
// either resource.
func doOptimize(args []string, stdOut, stdErr io.Writer) int {
	flags, f := registerExecFlags("optimize", stdErr)
	if err := flags.Parse(args); err != nil {
		return 2
	}

	sess, err := newSession(f.session())
	if err != nil {
		return reportError(stdErr, err, f.jsonOutput)
	}
	_, execErr := sess.eng.Execute(f.function, f.args)
	if execErr != nil {
		return reportError(stdErr, execErr, f.jsonOutput)
	}

	budget := introspect.BudgetInfo(sess.host.Budget())
	if f.jsonOutput {
		out, _ := format.JSON(map[string]interface{}{
			"cpu_percent":    budget.CPUPercent(),
			"memory_percent": budget.MemoryPercent(),
		})
		fmt.Fprintln(stdOut, out)
		return 0
	}
	fmt.Fprintf(stdOut, "%s: %.1f%% of CPU budget, %.1f%% of memory budget\n", f.function, budget.CPUPercent(), budget.MemoryPercent())
	if budget.CPUPercent() > 80 {
		fmt.Fprintln(stdOut, "warning: approaching CPU budget limit")
	}
	if budget.MemoryPercent() > 80 {
		fmt.Fprintln(stdOut, "warning: approaching memory budget limit")
	}
	return 0
}

// doProfile repeats the invocation --repeat times and reports wall-clock
// timing; the JSON form also reports the final call-stack depth as
// "call_sequence".
func doProfile(args []string, stdOut, stdErr io.Writer) int {
	flags, f := registerExecFlags("profile", stdErr)
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if f.repeat < 1 {
		f.repeat = 1
	}

	sess, err := newSession(f.session())
	if err != nil {
		return reportError(stdErr, err, f.jsonOutput)
	}

	start := time.Now()
	var execErr error
	for i := 0; i < f.repeat; i++ {
		_, execErr = sess.eng.Execute(f.function, f.args)
		if execErr != nil {
			break
		}
	}
	elapsed := time.Since(start)
	if execErr != nil {
		return reportError(stdErr, execErr, f.jsonOutput)
	}

	if f.jsonOutput {
		out, _ := format.JSON(map[string]interface{}{
			"repeat":        f.repeat,
			"total_ms":      elapsed.Milliseconds(),
			"avg_ms":        float64(elapsed.Milliseconds()) / float64(f.repeat),
			"call_sequence": len(sess.eng.CallStack()),
		})
		fmt.Fprintln(stdOut, out)
		return 0
	}
	fmt.Fprintf(stdOut, "%d run(s) in %s (avg %s/run)\n", f.repeat, elapsed, elapsed/time.Duration(f.repeat))
	return 0
}

func renderExecutionResult(stdOut io.Writer, sess *session, f *execFlags) {
	result := sess.eng.LastResult()

	if f.jsonOutput {
		payload := map[string]interface{}{
			"result": format.JSONValue(result),
		}
		if f.showEvents {
			payload["events"] = renderEventsJSON(sess, f.filterTopic)
		}
		if f.showAuth {
			payload["auth"] = renderAuthJSON(sess)
		}
		if len(f.storageFilters) > 0 {
			payload["storage"] = filteredStorage(sess, f.storageFilters)
		}
		out, _ := format.JSON(payload)
		fmt.Fprintln(stdOut, out)
		return
	}

	fmt.Fprintf(stdOut, "=> %s\n", format.Value(result))
	if f.showEvents {
		printEvents(stdOut, sess, f.filterTopic)
	}
	if f.showAuth {
		printAuthTree(stdOut, sess)
	}
	if len(f.storageFilters) > 0 {
		printFilteredStorage(stdOut, sess, f.storageFilters)
	}
}

func reportError(stdErr io.Writer, err error, asJSON bool) int {
	fmt.Fprintln(stdErr, format.Error(err, asJSON))
	return 1
}
