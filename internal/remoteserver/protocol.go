// Package remoteserver implements the remote-debug wire protocol: a
// newline-delimited JSON exchange of DebugMessage envelopes, one independent
// Engine per accepted TCP connection, grounded on the original debug
// server's per-connection Session and its flat request/response enum (here a
// string-tagged struct, the idiomatic Go rendering of a Rust-style
// internally-tagged enum decoded with json-iterator).
package remoteserver

// RequestType tags the variant carried by a Request.
type RequestType string

const (
	ReqAuthenticate      RequestType = "authenticate"
	ReqPing              RequestType = "ping"
	ReqLoadContract      RequestType = "load_contract"
	ReqLoadSnapshot      RequestType = "load_snapshot"
	ReqSetStorage        RequestType = "set_storage"
	ReqExecute           RequestType = "execute"
	ReqStep              RequestType = "step"
	ReqContinue          RequestType = "continue"
	ReqInspect           RequestType = "inspect"
	ReqGetStorage        RequestType = "get_storage"
	ReqGetStack          RequestType = "get_stack"
	ReqGetBudget         RequestType = "get_budget"
	ReqSetBreakpoint     RequestType = "set_breakpoint"
	ReqClearBreakpoint   RequestType = "clear_breakpoint"
	ReqListBreakpoints   RequestType = "list_breakpoints"
	ReqDisconnect        RequestType = "disconnect"
)

// Request is the flat union of every request variant the protocol accepts.
// Fields irrelevant to Type are left zero; json-iterator omits the
// `omitempty` ones on the wire.
type Request struct {
	Type RequestType `json:"type"`

	Token        string  `json:"token,omitempty"`
	ContractPath string  `json:"contract_path,omitempty"`
	SnapshotPath string  `json:"snapshot_path,omitempty"`
	StorageJSON  string  `json:"storage_json,omitempty"`
	Function     string  `json:"function,omitempty"`
	Args         *string `json:"args,omitempty"`
}

// ResponseType tags the variant carried by a Response.
type ResponseType string

const (
	RespError            ResponseType = "error"
	RespAuthenticated    ResponseType = "authenticated"
	RespPong             ResponseType = "pong"
	RespContractLoaded   ResponseType = "contract_loaded"
	RespSnapshotLoaded   ResponseType = "snapshot_loaded"
	RespStorageState     ResponseType = "storage_state"
	RespExecutionResult  ResponseType = "execution_result"
	RespStepResult       ResponseType = "step_result"
	RespContinueResult   ResponseType = "continue_result"
	RespInspectionResult ResponseType = "inspection_result"
	RespCallStack        ResponseType = "call_stack"
	RespBudgetInfo       ResponseType = "budget_info"
	RespBreakpointSet    ResponseType = "breakpoint_set"
	RespBreakpointCleared ResponseType = "breakpoint_cleared"
	RespBreakpointsList  ResponseType = "breakpoints_list"
	RespDisconnected     ResponseType = "disconnected"
)

// Response is the flat union of every response variant the protocol emits.
type Response struct {
	Type ResponseType `json:"type"`

	Message      string   `json:"message,omitempty"`
	Success      bool     `json:"success,omitempty"`
	Size         int      `json:"size,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	StorageJSON  string   `json:"storage_json,omitempty"`
	Output       string   `json:"output,omitempty"`
	Error        string   `json:"error,omitempty"`
	Paused       bool     `json:"paused,omitempty"`
	CurrentFn    string   `json:"current_function,omitempty"`
	StepCount    uint64   `json:"step_count,omitempty"`
	Completed    bool     `json:"completed,omitempty"`
	Function     string   `json:"function,omitempty"`
	CallStack    []string `json:"call_stack,omitempty"`
	CPUInsns     uint64   `json:"cpu_instructions,omitempty"`
	MemoryBytes  uint64   `json:"memory_bytes,omitempty"`
	Breakpoints  []string `json:"breakpoints,omitempty"`
}

// DebugMessage is the envelope exchanged over the wire: exactly one of
// Request or Response is populated, correlated by Id.
type DebugMessage struct {
	ID       string    `json:"id"`
	Request  *Request  `json:"request,omitempty"`
	Response *Response `json:"response,omitempty"`
}

func responseMessage(id string, resp Response) DebugMessage {
	return DebugMessage{ID: id, Response: &resp}
}

func errorResponse(id, message string) DebugMessage {
	return responseMessage(id, Response{Type: RespError, Error: message})
}
