package instrindex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promisszn/soroban-debugger-sub000/internal/wasmmodule"
)

func TestBuildClassifiesCallAndLocal(t *testing.T) {
	img := &wasmmodule.ContractImage{
		Code: []wasmmodule.FunctionBody{
			{
				FuncIndex: 0,
				Code: []byte{
					byte(OpLocalGet), 0x00, // local.get $0
					byte(OpCall), 0x01, // call func_1
					byte(OpEnd),
				},
			},
		},
	}
	idx, err := Build(img)
	require.NoError(t, err)
	require.Len(t, idx.Records, 3)

	require.False(t, idx.Records[0].IsControlFlow())
	require.True(t, idx.Records[1].IsControlFlow())
	require.True(t, idx.Records[1].IsCall())
	require.True(t, idx.Records[2].IsControlFlow())

	require.Equal(t, "local.get $0", idx.Records[0].Display())
	require.Equal(t, "call func_1", idx.Records[1].Display())
}

func TestBuildFailsOnTruncatedOperand(t *testing.T) {
	img := &wasmmodule.ContractImage{
		Code: []wasmmodule.FunctionBody{
			{FuncIndex: 0, Code: []byte{byte(OpCall)}}, // missing LEB128 operand
		},
	}
	_, err := Build(img)
	require.Error(t, err)
}

func TestForFunctionFiltersByIndex(t *testing.T) {
	img := &wasmmodule.ContractImage{
		Code: []wasmmodule.FunctionBody{
			{FuncIndex: 0, Code: []byte{byte(OpNop), byte(OpEnd)}},
			{FuncIndex: 1, Code: []byte{byte(OpNop), byte(OpNop), byte(OpEnd)}},
		},
	}
	idx, err := Build(img)
	require.NoError(t, err)
	require.Len(t, idx.ForFunction(0), 2)
	require.Len(t, idx.ForFunction(1), 3)
}

func TestDisassembleMemoizes(t *testing.T) {
	img := &wasmmodule.ContractImage{
		Code: []wasmmodule.FunctionBody{
			{FuncIndex: 0, Code: []byte{byte(OpNop), byte(OpEnd)}},
		},
	}
	idx, err := Build(img)
	require.NoError(t, err)
	lines1 := idx.Disassemble(0)
	lines2 := idx.Disassemble(0)
	require.Equal(t, lines1, lines2)
	require.Len(t, lines1, 2)
}
