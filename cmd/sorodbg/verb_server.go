package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/promisszn/soroban-debugger-sub000/internal/metrics"
	"github.com/promisszn/soroban-debugger-sub000/internal/remoteserver"
)

var rpcJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// doServer serves the remote-debug wire protocol over TCP until interrupted.
func doServer(args []string, stdOut, stdErr io.Writer) int {
	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	flags.SetOutput(stdErr)
	addr := flags.String("addr", ":4455", "Address to listen on.")
	jwtSecret := flags.String("jwt-secret", "", "Secret used to verify Authenticate bearer tokens. Empty auto-authenticates every connection.")
	tlsCert := flags.String("tls-cert", "", "Path to a PEM TLS certificate.")
	tlsKey := flags.String("tls-key", "", "Path to a PKCS#8 TLS private key.")
	quiet := flags.Bool("quiet", false, "Suppress informational logging.")
	verbose := flags.Bool("verbose", false, "Enable debug-level logging.")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	logger := newLogger(*quiet, *verbose)
	reg := metrics.NewRegistry(prometheus.NewRegistry())

	srv := remoteserver.New(remoteserver.Config{
		Addr:        *addr,
		JWTSecret:   []byte(*jwtSecret),
		TLSCertPath: *tlsCert,
		TLSKeyPath:  *tlsKey,
		Metrics:     reg,
		Logger:      logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(stdOut, "serving remote-debug protocol on %s\n", *addr)
	if err := srv.ListenAndServe(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintln(stdErr, err)
		return 1
	}
	return 0
}

// doRemote is a thin line-oriented client: each stdin line is a JSON
// Request object (including its "type"), wrapped in a DebugMessage with id
// "cli" and sent; the response is printed to stdout. With --token it first
// sends an authenticate request. Useful for scripting a remote-debug session
// without a REPL.
func doRemote(args []string, stdin io.Reader, stdOut, stdErr io.Writer) int {
	flags := flag.NewFlagSet("remote", flag.ContinueOnError)
	flags.SetOutput(stdErr)
	addr := flags.String("addr", "localhost:4455", "Remote-debug server address to connect to.")
	token := flags.String("token", "", "Bearer token to authenticate with.")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintln(stdErr, err)
		return 1
	}
	defer conn.Close()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	send := func(id string, req remoteserver.Request) error {
		msg := remoteserver.DebugMessage{ID: id, Request: &req}
		data, err := rpcJSON.Marshal(msg)
		if err != nil {
			return err
		}
		if _, err := writer.Write(data); err != nil {
			return err
		}
		writer.WriteByte('\n')
		return writer.Flush()
	}
	recv := func() (remoteserver.DebugMessage, error) {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return remoteserver.DebugMessage{}, err
		}
		var msg remoteserver.DebugMessage
		err = rpcJSON.Unmarshal(line, &msg)
		return msg, err
	}

	if *token != "" {
		if err := send("auth", remoteserver.Request{Type: remoteserver.ReqAuthenticate, Token: *token}); err != nil {
			fmt.Fprintln(stdErr, err)
			return 1
		}
		resp, err := recv()
		if err != nil {
			fmt.Fprintln(stdErr, err)
			return 1
		}
		fmt.Fprintf(stdOut, "%+v\n", resp.Response)
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var req remoteserver.Request
		if err := rpcJSON.UnmarshalFromString(line, &req); err != nil {
			fmt.Fprintf(stdErr, "invalid request line: %v\n", err)
			continue
		}
		if err := send("cli", req); err != nil {
			fmt.Fprintln(stdErr, err)
			return 1
		}
		resp, err := recv()
		if err != nil {
			fmt.Fprintln(stdErr, err)
			return 1
		}
		fmt.Fprintf(stdOut, "%+v\n", resp.Response)
	}
	return 0
}
