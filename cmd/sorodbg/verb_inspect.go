package main

import (
	"fmt"
	"io"

	"github.com/promisszn/soroban-debugger-sub000/internal/format"
	"github.com/promisszn/soroban-debugger-sub000/internal/introspect"
)

// doInspect loads a contract and prints its static shape plus whatever
// storage/events/auth state is already present, without invoking a
// function.
func doInspect(args []string, stdOut, stdErr io.Writer) int {
	flags, f := registerExecFlags("inspect", stdErr)
	if err := flags.Parse(args); err != nil {
		return 2
	}

	sess, err := newSession(f.session())
	if err != nil {
		return reportError(stdErr, err, f.jsonOutput)
	}

	storage := sess.host.Storage()
	if len(f.storageFilters) > 0 {
		storage = filteredStorage(sess, f.storageFilters)
	}

	if f.jsonOutput {
		payload := map[string]interface{}{
			"contract": sess.handle.Address,
			"storage":  storage,
		}
		if f.showEvents {
			payload["events"] = renderEventsJSON(sess, f.filterTopic)
		}
		if f.showAuth {
			payload["auth"] = renderAuthJSON(sess)
		}
		out, _ := format.JSON(payload)
		fmt.Fprintln(stdOut, out)
		return 0
	}

	fmt.Fprintf(stdOut, "contract: %s\n", sess.handle.Address)
	fmt.Fprintln(stdOut, "storage:")
	for _, k := range introspect.SortedKeys(storage) {
		fmt.Fprintf(stdOut, "  %s = %s\n", k, storage[k])
	}
	if f.showEvents {
		printEvents(stdOut, sess, f.filterTopic)
	}
	if f.showAuth {
		printAuthTree(stdOut, sess)
	}
	return 0
}
