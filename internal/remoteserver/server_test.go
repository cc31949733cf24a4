package remoteserver

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func minimalWasmModule() []byte {
	b := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	typeBody := []byte{0x01, 0x60, 0x01, 0x7F, 0x01, 0x7F}
	b = append(b, 0x01, byte(len(typeBody)))
	b = append(b, typeBody...)
	funcBody := []byte{0x01, 0x00}
	b = append(b, 0x03, byte(len(funcBody)))
	b = append(b, funcBody...)
	exportBody := []byte{0x01, 0x03, 'a', 'd', 'd', 0x00, 0x00}
	b = append(b, 0x07, byte(len(exportBody)))
	b = append(b, exportBody...)
	codeBody := []byte{0x01, 0x02, 0x00, 0x0B}
	b = append(b, 0x0A, byte(len(codeBody)))
	b = append(b, codeBody...)
	return b
}

func startTestServer(t *testing.T, cfg Config) (net.Conn, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	cfg.Addr = ln.Addr().String()
	ln.Close()

	srv := New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.ListenAndServe(ctx)
		close(done)
	}()

	var conn net.Conn
	for i := 0; i < 50; i++ {
		conn, err = net.DialTimeout("tcp", cfg.Addr, 100*time.Millisecond)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)

	return conn, func() {
		conn.Close()
		cancel()
		<-done
	}
}

func exchange(t *testing.T, conn net.Conn, reader *bufio.Reader, msg DebugMessage) DebugMessage {
	t.Helper()
	out, err := json.Marshal(msg)
	require.NoError(t, err)
	_, err = conn.Write(append(out, '\n'))
	require.NoError(t, err)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := reader.ReadBytes('\n')
	require.NoError(t, err)
	var resp DebugMessage
	require.NoError(t, json.Unmarshal(line, &resp))
	return resp
}

func TestPingWithoutAuthenticationSucceeds(t *testing.T) {
	conn, cleanup := startTestServer(t, Config{})
	defer cleanup()
	reader := bufio.NewReader(conn)

	resp := exchange(t, conn, reader, DebugMessage{ID: "1", Request: &Request{Type: ReqPing}})
	require.Equal(t, RespPong, resp.Response.Type)
}

func TestRequestBeforeAuthenticationIsRejectedWhenTokenRequired(t *testing.T) {
	conn, cleanup := startTestServer(t, Config{JWTSecret: []byte("s3cret")})
	defer cleanup()
	reader := bufio.NewReader(conn)

	resp := exchange(t, conn, reader, DebugMessage{ID: "1", Request: &Request{Type: ReqInspect}})
	require.Equal(t, RespError, resp.Response.Type)
}

func TestNoTokenConfiguredAutoAuthenticates(t *testing.T) {
	conn, cleanup := startTestServer(t, Config{})
	defer cleanup()
	reader := bufio.NewReader(conn)

	resp := exchange(t, conn, reader, DebugMessage{ID: "1", Request: &Request{Type: ReqAuthenticate, Token: "anything"}})
	require.True(t, resp.Response.Success)
}

func TestLoadContractExecuteStepAndDisconnect(t *testing.T) {
	conn, cleanup := startTestServer(t, Config{})
	defer cleanup()
	reader := bufio.NewReader(conn)

	dir := t.TempDir()
	path := filepath.Join(dir, "contract.wasm")
	require.NoError(t, os.WriteFile(path, minimalWasmModule(), 0o644))

	loadResp := exchange(t, conn, reader, DebugMessage{ID: "1", Request: &Request{Type: ReqLoadContract, ContractPath: path}})
	require.Equal(t, RespContractLoaded, loadResp.Response.Type)
	require.Greater(t, loadResp.Response.Size, 0)

	execResp := exchange(t, conn, reader, DebugMessage{ID: "2", Request: &Request{Type: ReqExecute, Function: "add"}})
	require.Equal(t, RespExecutionResult, execResp.Response.Type)
	require.True(t, execResp.Response.Success)

	stepResp := exchange(t, conn, reader, DebugMessage{ID: "step", Request: &Request{Type: ReqStep}})
	require.Equal(t, RespStepResult, stepResp.Response.Type)

	stackResp := exchange(t, conn, reader, DebugMessage{ID: "3", Request: &Request{Type: ReqGetStack}})
	require.Equal(t, RespCallStack, stackResp.Response.Type)

	budgetResp := exchange(t, conn, reader, DebugMessage{ID: "4", Request: &Request{Type: ReqGetBudget}})
	require.Equal(t, RespBudgetInfo, budgetResp.Response.Type)

	bpResp := exchange(t, conn, reader, DebugMessage{ID: "5", Request: &Request{Type: ReqSetBreakpoint, Function: "add"}})
	require.Equal(t, RespBreakpointSet, bpResp.Response.Type)

	listResp := exchange(t, conn, reader, DebugMessage{ID: "6", Request: &Request{Type: ReqListBreakpoints}})
	require.Equal(t, RespBreakpointsList, listResp.Response.Type)
	require.Len(t, listResp.Response.Breakpoints, 1)

	discResp := exchange(t, conn, reader, DebugMessage{ID: "7", Request: &Request{Type: ReqDisconnect}})
	require.Equal(t, RespDisconnected, discResp.Response.Type)
}

func TestExecuteWithoutLoadedContractIsError(t *testing.T) {
	conn, cleanup := startTestServer(t, Config{})
	defer cleanup()
	reader := bufio.NewReader(conn)

	resp := exchange(t, conn, reader, DebugMessage{ID: "1", Request: &Request{Type: ReqExecute, Function: "add"}})
	require.Equal(t, RespError, resp.Response.Type)
}
