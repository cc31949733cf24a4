package hostfacade

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promisszn/soroban-debugger-sub000/internal/mockdispatch"
	"github.com/promisszn/soroban-debugger-sub000/internal/transcode"
)

func minimalModule() []byte {
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

func TestRegisterAndInvokeSuccess(t *testing.T) {
	h := NewInMemoryHost()
	handle, err := h.RegisterContract(minimalModule(), true)
	require.NoError(t, err)

	val, invErr := h.Invoke(handle, "add", nil)
	require.Nil(t, invErr)
	require.Equal(t, transcode.KindVoid, val.Kind)
}

func TestInvokeUnknownFunctionIsContractError(t *testing.T) {
	h := NewInMemoryHost()
	handle, err := h.RegisterContract(minimalModule(), false)
	require.NoError(t, err)

	_, invErr := h.Invoke(handle, "missing", nil)
	require.NotNil(t, invErr)
	require.Equal(t, InvokeErrorContract, invErr.Kind)
}

func TestInvokeUnknownHandleIsAbort(t *testing.T) {
	h := NewInMemoryHost()
	_, invErr := h.Invoke(ContractHandle{Address: "nope"}, "add", nil)
	require.NotNil(t, invErr)
	require.Equal(t, InvokeErrorAbort, invErr.Kind)
}

func TestMockDispatcherResolvesCrossContractCall(t *testing.T) {
	h := NewInMemoryHost()
	handle, err := h.RegisterContract(minimalModule(), false)
	require.NoError(t, err)

	reg := mockdispatch.New()
	spec, err := mockdispatch.ParseSpec(handle.Address + ".add=42")
	require.NoError(t, err)
	reg.Register(spec)
	h.RegisterMockDispatcher(handle.Address, reg)

	val, invErr := h.Invoke(handle, "add", nil)
	require.Nil(t, invErr)
	require.Equal(t, transcode.KindI128, val.Kind)
	require.Equal(t, "42", val.Big.String())
}

func TestBudgetEventsAuthsRoundTrip(t *testing.T) {
	h := NewInMemoryHost()
	h.SetBudget(BudgetInfo{CPUInstructions: 10, CPULimit: 100})
	require.Equal(t, uint64(10), h.Budget().CPUInstructions)

	h.EmitEvent(ContractEvent{ContractID: "C1", Topics: []string{"transfer"}})
	require.Len(t, h.Events(), 1)

	h.SetAuths([]AuthEntry{{Address: "GADDR"}})
	require.Len(t, h.Auths(), 1)

	h.SetNow(12345)
	require.Equal(t, uint64(12345), h.Now())

	h.SetStorage("Counter", "0")
	require.Equal(t, "0", h.Storage()["Counter"])
}

func TestPanicToAbortRecoversPanickingHostCall(t *testing.T) {
	_, invErr := PanicToAbort(func() (transcode.TypedValue, *InvokeError) {
		panic("boom")
	})
	require.NotNil(t, invErr)
	require.Equal(t, InvokeErrorAbort, invErr.Kind)
}
