package remoteserver

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/promisszn/soroban-debugger-sub000/internal/engine"
	"github.com/promisszn/soroban-debugger-sub000/internal/format"
	"github.com/promisszn/soroban-debugger-sub000/internal/metrics"
	"github.com/promisszn/soroban-debugger-sub000/internal/stepper"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config configures a Server.
type Config struct {
	Addr string

	// JWTSecret, when non-empty, requires every connection to Authenticate
	// with a JWT signed by this secret before any request other than Ping
	// succeeds.
	// An empty secret auto-authenticates every connection.
	JWTSecret []byte

	// TLSCertPath/TLSKeyPath, when both set, wrap the listener in TLS using
	// a PEM certificate and a PKCS#8 private key.
	TLSCertPath string
	TLSKeyPath  string

	Metrics *metrics.Registry
	Logger  *zap.SugaredLogger
}

// Server accepts TCP (optionally TLS) connections and runs the
// newline-delimited JSON debug protocol over each one, one independent
// Engine per connection.
type Server struct {
	cfg Config
}

// New constructs a Server from cfg, filling in a no-op logger if none given.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	return &Server{cfg: cfg}
}

// ListenAndServe binds cfg.Addr and serves connections until ctx is
// cancelled or a fatal accept error occurs. Each connection is handled by
// its own goroutine inside an errgroup so a panic recovered in one
// connection's handler cannot take down the others.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := s.listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	s.cfg.Logger.Infow("remote-debug server listening", "addr", s.cfg.Addr, "tls", s.cfg.TLSCertPath != "")

	eg, egCtx := errgroup.WithContext(ctx)
	go func() {
		<-egCtx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return eg.Wait()
			default:
				return err
			}
		}
		eg.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					s.cfg.Logger.Errorw("connection handler panicked", "panic", r)
				}
			}()
			s.handleConnection(conn)
			return nil
		})
	}
}

func (s *Server) listen() (net.Listener, error) {
	if s.cfg.TLSCertPath != "" && s.cfg.TLSKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(s.cfg.TLSCertPath, s.cfg.TLSKeyPath)
		if err != nil {
			return nil, fmt.Errorf("remoteserver: loading TLS cert/key: %w", err)
		}
		return tls.Listen("tcp", s.cfg.Addr, &tls.Config{Certificates: []tls.Certificate{cert}})
	}
	return net.Listen("tcp", s.cfg.Addr)
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.ActiveSessions.Inc()
		defer s.cfg.Metrics.ActiveSessions.Dec()
	}

	connID := uuid.NewString()
	s.cfg.Logger.Infow("connection accepted", "session_id", connID, "remote", conn.RemoteAddr())
	defer s.cfg.Logger.Infow("connection closed", "session_id", connID)

	sess := newSession(len(s.cfg.JWTSecret) == 0)
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	writer := bufio.NewWriter(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg DebugMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			s.cfg.Logger.Warnw("malformed debug message", "error", err)
			continue
		}
		resp := s.dispatch(sess, msg)
		out, err := json.Marshal(resp)
		if err != nil {
			s.cfg.Logger.Warnw("failed to marshal response", "error", err)
			continue
		}
		writer.Write(out)
		writer.WriteByte('\n')
		if err := writer.Flush(); err != nil {
			s.cfg.Logger.Warnw("failed to write response", "error", err)
			return
		}
		if resp.Response != nil && resp.Response.Type == RespDisconnected {
			return
		}
	}
}

func (s *Server) dispatch(sess *session, msg DebugMessage) DebugMessage {
	if msg.Request == nil {
		return errorResponse(msg.ID, "message has no request")
	}
	req := *msg.Request

	sess.mu.Lock()
	authenticated := sess.authenticated
	sess.mu.Unlock()

	if req.Type != ReqAuthenticate && req.Type != ReqPing && !authenticated {
		return errorResponse(msg.ID, "not authenticated: send an authenticate request first")
	}

	switch req.Type {
	case ReqAuthenticate:
		return responseMessage(msg.ID, s.authenticate(sess, req.Token))
	case ReqPing:
		return responseMessage(msg.ID, Response{Type: RespPong})
	case ReqLoadContract:
		size, err := sess.loadContract(req.ContractPath)
		if err != nil {
			return responseMessage(msg.ID, Response{Type: RespError, Error: "failed to load contract: " + err.Error()})
		}
		return responseMessage(msg.ID, Response{Type: RespContractLoaded, Size: size})
	case ReqLoadSnapshot:
		summary, err := sess.loadSnapshot(req.SnapshotPath)
		if err != nil {
			return responseMessage(msg.ID, Response{Type: RespError, Error: "failed to load snapshot: " + err.Error()})
		}
		return responseMessage(msg.ID, Response{Type: RespSnapshotLoaded, Summary: summary})
	case ReqSetStorage:
		return responseMessage(msg.ID, s.setStorage(sess, req.StorageJSON))
	case ReqExecute:
		return responseMessage(msg.ID, s.execute(sess, req.Function, req.Args))
	case ReqStep:
		return responseMessage(msg.ID, s.step(sess))
	case ReqContinue:
		return responseMessage(msg.ID, s.continueExecution(sess))
	case ReqInspect:
		return responseMessage(msg.ID, s.inspect(sess))
	case ReqGetStorage:
		return responseMessage(msg.ID, s.getStorage(sess))
	case ReqGetStack:
		return responseMessage(msg.ID, s.getStack(sess))
	case ReqGetBudget:
		return responseMessage(msg.ID, s.getBudget(sess))
	case ReqSetBreakpoint:
		return responseMessage(msg.ID, s.setBreakpoint(sess, req.Function))
	case ReqClearBreakpoint:
		return responseMessage(msg.ID, s.clearBreakpoint(sess, req.Function))
	case ReqListBreakpoints:
		return responseMessage(msg.ID, s.listBreakpoints(sess))
	case ReqDisconnect:
		return responseMessage(msg.ID, Response{Type: RespDisconnected})
	default:
		return errorResponse(msg.ID, fmt.Sprintf("unknown request type %q", req.Type))
	}
}

func (s *Server) authenticate(sess *session, token string) Response {
	if len(s.cfg.JWTSecret) == 0 {
		sess.mu.Lock()
		sess.authenticated = true
		sess.mu.Unlock()
		return Response{Type: RespAuthenticated, Success: true, Message: "no authentication required"}
	}
	_, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.cfg.JWTSecret, nil
	})
	success := err == nil
	sess.mu.Lock()
	sess.authenticated = success
	sess.mu.Unlock()
	if success {
		return Response{Type: RespAuthenticated, Success: true, Message: "authentication successful"}
	}
	return Response{Type: RespAuthenticated, Success: false, Message: "invalid token"}
}

func (s *Server) requireEngine(sess *session) (*engine.Engine, bool) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.loaded {
		return nil, false
	}
	return sess.eng, true
}

func (s *Server) setStorage(sess *session, storageJSON string) Response {
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(storageJSON), &m); err != nil {
		return Response{Type: RespError, Error: "failed to parse storage: " + err.Error()}
	}
	sess.mu.Lock()
	host := sess.host
	sess.mu.Unlock()
	if host == nil {
		return Response{Type: RespError, Error: "no contract loaded"}
	}
	for k, v := range m {
		b, err := json.Marshal(v)
		if err != nil {
			continue
		}
		host.SetStorage(k, string(b))
	}
	return Response{Type: RespStorageState, StorageJSON: storageJSON}
}

func (s *Server) execute(sess *session, function string, args *string) Response {
	eng, ok := s.requireEngine(sess)
	if !ok {
		return Response{Type: RespError, Error: "no contract loaded"}
	}
	argsText := ""
	if args != nil {
		argsText = *args
	}
	sess.mu.Lock()
	val, err := eng.Execute(function, argsText)
	sess.mu.Unlock()
	if err != nil {
		return Response{Type: RespExecutionResult, Success: false, Error: err.Error()}
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.StepsTotal.Inc()
	}
	return Response{Type: RespExecutionResult, Success: true, Output: format.Value(val)}
}

func (s *Server) step(sess *session) Response {
	eng, ok := s.requireEngine(sess)
	if !ok {
		return Response{Type: RespError, Error: "no contract loaded"}
	}
	sess.mu.Lock()
	paused := eng.Step()
	stack := eng.CallStack()
	sess.mu.Unlock()
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.StepsTotal.Inc()
		if paused {
			s.cfg.Metrics.BreakpointHitsTotal.Inc()
		}
	}
	current := ""
	if len(stack) > 0 {
		current = stack[len(stack)-1].FunctionName
	}
	return Response{Type: RespStepResult, Paused: paused, CurrentFn: current, StepCount: uint64(len(stack))}
}

func (s *Server) continueExecution(sess *session) Response {
	eng, ok := s.requireEngine(sess)
	if !ok {
		return Response{Type: RespError, Error: "no contract loaded"}
	}
	sess.mu.Lock()
	eng.StartStepping(stepper.StepInto)
	eng.ContinueExecution()
	sess.mu.Unlock()
	return Response{Type: RespContinueResult, Completed: true}
}

func (s *Server) inspect(sess *session) Response {
	eng, ok := s.requireEngine(sess)
	if !ok {
		return Response{Type: RespError, Error: "no contract loaded"}
	}
	sess.mu.Lock()
	stack := eng.CallStack()
	paused := eng.Paused()
	sess.mu.Unlock()
	names := make([]string, len(stack))
	current := ""
	for i, f := range stack {
		names[i] = f.FunctionName
		current = f.FunctionName
	}
	return Response{Type: RespInspectionResult, CurrentFn: current, Paused: paused, CallStack: names, StepCount: uint64(len(stack))}
}

func (s *Server) getStorage(sess *session) Response {
	sess.mu.Lock()
	host := sess.host
	sess.mu.Unlock()
	if host == nil {
		return Response{Type: RespError, Error: "no contract loaded"}
	}
	out, err := json.Marshal(host.Storage())
	if err != nil {
		return Response{Type: RespError, Error: err.Error()}
	}
	return Response{Type: RespStorageState, StorageJSON: string(out)}
}

func (s *Server) getStack(sess *session) Response {
	eng, ok := s.requireEngine(sess)
	if !ok {
		return Response{Type: RespError, Error: "no contract loaded"}
	}
	sess.mu.Lock()
	stack := eng.CallStack()
	sess.mu.Unlock()
	names := make([]string, len(stack))
	for i, f := range stack {
		names[i] = f.FunctionName
	}
	return Response{Type: RespCallStack, CallStack: names}
}

func (s *Server) getBudget(sess *session) Response {
	sess.mu.Lock()
	host := sess.host
	sess.mu.Unlock()
	if host == nil {
		return Response{Type: RespError, Error: "no contract loaded"}
	}
	b := host.Budget()
	return Response{Type: RespBudgetInfo, CPUInsns: b.CPUInstructions, MemoryBytes: b.MemoryBytes}
}

func (s *Server) setBreakpoint(sess *session, function string) Response {
	eng, ok := s.requireEngine(sess)
	if !ok {
		return Response{Type: RespError, Error: "no contract loaded"}
	}
	eng.Breakpoints().Set(function)
	return Response{Type: RespBreakpointSet, Function: function}
}

func (s *Server) clearBreakpoint(sess *session, function string) Response {
	eng, ok := s.requireEngine(sess)
	if !ok {
		return Response{Type: RespError, Error: "no contract loaded"}
	}
	eng.Breakpoints().Clear(function)
	return Response{Type: RespBreakpointCleared, Function: function}
}

func (s *Server) listBreakpoints(sess *session) Response {
	eng, ok := s.requireEngine(sess)
	if !ok {
		return Response{Type: RespError, Error: "no contract loaded"}
	}
	bps := eng.Breakpoints().List()
	out := make([]string, len(bps))
	for i, b := range bps {
		out[i] = b.String()
	}
	return Response{Type: RespBreakpointsList, Breakpoints: out}
}
