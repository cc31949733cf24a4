package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/promisszn/soroban-debugger-sub000/internal/format"
	"github.com/promisszn/soroban-debugger-sub000/internal/stepper"
)

// doRepl runs an interactive read-eval-print loop over a single contract
// session. Commands are whitespace-separated; the first word selects the
// verb. "interactive" and "tui" alias to this loop since no terminal UI
// renderer is implemented.
func doRepl(args []string, stdin io.Reader, stdOut, stdErr io.Writer) int {
	flags, f := registerExecFlags("repl", stdErr)
	if err := flags.Parse(args); err != nil {
		return 2
	}

	var sess *session
	if f.contract != "" {
		s, err := newSession(f.session())
		if err != nil {
			return reportError(stdErr, err, f.jsonOutput)
		}
		sess = s
	}

	fmt.Fprintln(stdOut, "sorodbg repl. Type 'help' for commands, 'quit' to exit.")
	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdOut, "> ")
		if !scanner.Scan() {
			return 0
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := fields[0]
		rest := fields[1:]

		switch cmd {
		case "quit", "exit":
			return 0
		case "help":
			printReplHelp(stdOut)
		case "load":
			if len(rest) < 1 {
				fmt.Fprintln(stdErr, "usage: load <path>")
				continue
			}
			s, err := newSession(sessionConfig{ContractPath: rest[0]})
			if err != nil {
				fmt.Fprintln(stdErr, err)
				continue
			}
			sess = s
			fmt.Fprintf(stdOut, "loaded %s as %s\n", rest[0], sess.handle.Address)
		case "exec":
			if sess == nil {
				fmt.Fprintln(stdErr, "no contract loaded; use 'load <path>' first")
				continue
			}
			if len(rest) < 1 {
				fmt.Fprintln(stdErr, "usage: exec <function> [json-args]")
				continue
			}
			function := rest[0]
			argsText := "[]"
			if len(rest) > 1 {
				argsText = strings.Join(rest[1:], " ")
			}
			_, err := sess.eng.Execute(function, argsText)
			if err != nil {
				fmt.Fprintln(stdErr, err)
				continue
			}
			fmt.Fprintf(stdOut, "=> %s\n", format.Value(sess.eng.LastResult()))
		case "break":
			if sess == nil || len(rest) < 1 {
				fmt.Fprintln(stdErr, "usage: break <function> or break <function[arg:name op value]>")
				continue
			}
			function, cond, err := parseBreakpointSpec(strings.Join(rest, ""))
			if err != nil {
				fmt.Fprintln(stdErr, err)
				continue
			}
			if cond == nil {
				sess.eng.Breakpoints().Set(function)
				fmt.Fprintf(stdOut, "breakpoint set on %s\n", function)
			} else {
				sess.eng.Breakpoints().SetConditional(function, *cond)
				fmt.Fprintf(stdOut, "conditional breakpoint set on %s\n", function)
			}
		case "step":
			if sess == nil {
				fmt.Fprintln(stdErr, "no contract loaded")
				continue
			}
			sess.eng.StartStepping(stepper.StepInto)
			paused := sess.eng.Step()
			fmt.Fprintf(stdOut, "paused=%t\n", paused)
		case "continue":
			if sess == nil {
				fmt.Fprintln(stdErr, "no contract loaded")
				continue
			}
			sess.eng.ContinueExecution()
			fmt.Fprintln(stdOut, "continued")
		case "storage":
			if sess == nil {
				fmt.Fprintln(stdErr, "no contract loaded")
				continue
			}
			for k, v := range sess.host.Storage() {
				fmt.Fprintf(stdOut, "%s = %s\n", k, v)
			}
		case "events":
			if sess == nil {
				fmt.Fprintln(stdErr, "no contract loaded")
				continue
			}
			printEvents(stdOut, sess, "")
		default:
			fmt.Fprintf(stdErr, "unknown command %q; type 'help'\n", cmd)
		}
	}
}

func printReplHelp(w io.Writer) {
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  load <path>                load a contract")
	fmt.Fprintln(w, "  exec <function> [args]     invoke a function")
	fmt.Fprintln(w, "  break <function>           set a breakpoint")
	fmt.Fprintln(w, "  break <fn[arg:n op v]>     set a conditional breakpoint (op: == != > < >= <=)")
	fmt.Fprintln(w, "  step                       single-step")
	fmt.Fprintln(w, "  continue                   run to completion or next breakpoint")
	fmt.Fprintln(w, "  storage                    print current storage")
	fmt.Fprintln(w, "  events                     print captured events")
	fmt.Fprintln(w, "  quit                       exit the loop")
}
