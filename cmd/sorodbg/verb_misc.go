package main

import (
	"flag"
	"fmt"
	"io"
)

// doUpgradeCheck is a thin stub: this distribution has no release feed to
// query against, so it reports that the local build is current.
func doUpgradeCheck(args []string, stdOut, stdErr io.Writer) int {
	flags := flag.NewFlagSet("upgrade-check", flag.ContinueOnError)
	flags.SetOutput(stdErr)
	if err := flags.Parse(args); err != nil {
		return 2
	}
	fmt.Fprintln(stdOut, "sorodbg: no update channel configured; running the locally built version")
	return 0
}

const replCompletion = `# sorodbg shell completion
_sorodbg() {
    local cur commands
    commands="run inspect analyze optimize profile compare replay server remote repl interactive tui symbolic upgrade-check completions"
    cur="${COMP_WORDS[COMP_CWORD]}"
    COMPREPLY=($(compgen -W "$commands" -- "$cur"))
}
complete -F _sorodbg sorodbg
`

// doCompletions prints a bash completion script for the CLI's verbs.
func doCompletions(args []string, stdOut, stdErr io.Writer) int {
	flags := flag.NewFlagSet("completions", flag.ContinueOnError)
	flags.SetOutput(stdErr)
	if err := flags.Parse(args); err != nil {
		return 2
	}
	fmt.Fprint(stdOut, replCompletion)
	return 0
}
