package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/promisszn/soroban-debugger-sub000/internal/format"
	"github.com/promisszn/soroban-debugger-sub000/internal/hostfacade"
	"github.com/promisszn/soroban-debugger-sub000/internal/introspect"
	"github.com/promisszn/soroban-debugger-sub000/internal/trace"
)

func toIntrospectEvents(events []hostfacade.ContractEvent) []introspect.Event {
	out := make([]introspect.Event, len(events))
	for i, e := range events {
		id := e.ContractID
		out[i] = introspect.Event{ContractID: &id, Topics: e.Topics, Data: format.Value(e.Data)}
	}
	return out
}

func printEvents(w io.Writer, sess *session, filterTopic string) {
	events := introspect.FilterByTopic(toIntrospectEvents(sess.host.Events()), filterTopic)
	if len(events) == 0 {
		fmt.Fprintln(w, "(no events)")
		return
	}
	for _, e := range events {
		cid := ""
		if e.ContractID != nil {
			cid = *e.ContractID
		}
		fmt.Fprintf(w, "event %s [%s]: %s\n", cid, strings.Join(e.Topics, ","), e.Data)
	}
}

func renderEventsJSON(sess *session, filterTopic string) []map[string]interface{} {
	events := introspect.FilterByTopic(toIntrospectEvents(sess.host.Events()), filterTopic)
	out := make([]map[string]interface{}, len(events))
	for i, e := range events {
		cid := ""
		if e.ContractID != nil {
			cid = *e.ContractID
		}
		out[i] = map[string]interface{}{"contract_id": cid, "topics": e.Topics, "data": e.Data}
	}
	return out
}

// toAuthNode converts a live AuthEntry tree into the introspect package's
// renderable AuthNode tree. InMemoryHost does not model authorization
// failure, so every converted node is reported Authorized; a real host
// facade would set Missing/Failed per invocation outcome.
func toAuthNode(inv hostfacade.AuthorizedInvocation) *introspect.AuthNode {
	children := make([]*introspect.AuthNode, len(inv.SubCalls))
	for i, c := range inv.SubCalls {
		children[i] = toAuthNode(c)
	}
	return &introspect.AuthNode{
		ContractID:  inv.Function.ContractID,
		FunctionSig: inv.Function.FunctionSig,
		Status:      introspect.AuthStatusAuthorized,
		Children:    children,
	}
}

func printAuthTree(w io.Writer, sess *session) {
	auths := sess.host.Auths()
	if len(auths) == 0 {
		fmt.Fprintln(w, "(no authorizations)")
		return
	}
	nodes := make([]*introspect.AuthNode, len(auths))
	for i, a := range auths {
		root := toAuthNode(a.Invocation)
		root.Address = a.Address
		nodes[i] = root
	}
	_, noColor := os.LookupEnv("NO_COLOR")
	introspect.RenderAuthTree(w, nodes, !noColor)
}

func renderAuthJSON(sess *session) []map[string]interface{} {
	auths := sess.host.Auths()
	out := make([]map[string]interface{}, len(auths))
	for i, a := range auths {
		out[i] = map[string]interface{}{
			"address":      a.Address,
			"function_sig": a.Invocation.Function.FunctionSig,
			"sub_calls":    len(a.Invocation.SubCalls),
		}
	}
	return out
}

func filteredStorage(sess *session, patterns []string) map[string]string {
	filter, err := introspect.NewStorageFilter(patterns)
	if err != nil {
		return nil
	}
	return filter.Apply(sess.host.Storage())
}

func printFilteredStorage(w io.Writer, sess *session, patterns []string) {
	filtered := filteredStorage(sess, patterns)
	if len(filtered) == 0 {
		fmt.Fprintln(w, "(no matching storage keys)")
		return
	}
	for _, k := range introspect.SortedKeys(filtered) {
		fmt.Fprintf(w, "%s = %s\n", k, filtered[k])
	}
}

func writeTrace(path string, tr *trace.ExecutionTrace) error {
	data, err := tr.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readTrace(path string) (*trace.ExecutionTrace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return trace.Unmarshal(data)
}
