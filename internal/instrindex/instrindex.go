// Package instrindex builds a linear index of WASM instructions from a
// parsed ContractImage's code section, classifying each into control-flow
// and call opcodes for the stepper, and rendering display strings for the
// --instruction-debug CLI surface.
package instrindex

import (
	"fmt"
	"strings"

	"github.com/promisszn/soroban-debugger-sub000/internal/dbgerr"
	"github.com/promisszn/soroban-debugger-sub000/internal/wasmmodule"
)

// Opcode is a WASM opcode byte.
type Opcode byte

const (
	OpUnreachable Opcode = 0x00
	OpNop         Opcode = 0x01
	OpBlock       Opcode = 0x02
	OpLoop        Opcode = 0x03
	OpIf          Opcode = 0x04
	OpElse        Opcode = 0x05
	OpEnd         Opcode = 0x0B
	OpBr          Opcode = 0x0C
	OpBrIf        Opcode = 0x0D
	OpBrTable     Opcode = 0x0E
	OpReturn      Opcode = 0x0F
	OpCall        Opcode = 0x10
	OpCallIndir   Opcode = 0x11
	OpDrop        Opcode = 0x1A
	OpSelect      Opcode = 0x1B
	OpLocalGet    Opcode = 0x20
	OpLocalSet    Opcode = 0x21
	OpLocalTee    Opcode = 0x22
	OpGlobalGet   Opcode = 0x23
	OpGlobalSet   Opcode = 0x24
	OpI32Load     Opcode = 0x28
	OpI32Store    Opcode = 0x36
	OpI32Const    Opcode = 0x41
	OpI64Const    Opcode = 0x42
)

// InstructionRecord is a single decoded instruction with its position in the
// owning function's body and derived classification.
type InstructionRecord struct {
	ByteOffset    int
	Opcode        Opcode
	FunctionIndex uint32
	LocalIndex    uint32 // position within the function body, 0-based
	Operand       int64  // meaning depends on Opcode; see Display
	MemOffset     uint32
	MemAlign      uint32
}

// IsControlFlow reports whether the instruction affects control flow per the
// classification table: Br, BrIf, BrTable, Return, Call, CallIndirect, If,
// Else, End.
func (r InstructionRecord) IsControlFlow() bool {
	switch r.Opcode {
	case OpBr, OpBrIf, OpBrTable, OpReturn, OpCall, OpCallIndir, OpIf, OpElse, OpEnd:
		return true
	default:
		return false
	}
}

// IsCall reports whether the instruction is a call or indirect call.
func (r InstructionRecord) IsCall() bool {
	return r.Opcode == OpCall || r.Opcode == OpCallIndir
}

// Display renders the operand per the opcode's display contract.
func (r InstructionRecord) Display() string {
	name := opcodeName(r.Opcode)
	switch r.Opcode {
	case OpCall:
		return fmt.Sprintf("%s func_%d", name, r.Operand)
	case OpLocalGet, OpLocalSet, OpLocalTee:
		return fmt.Sprintf("%s $%d", name, r.Operand)
	case OpGlobalGet, OpGlobalSet:
		return fmt.Sprintf("%s global_%d", name, r.Operand)
	case OpBr, OpBrIf:
		return fmt.Sprintf("%s %d", name, r.Operand)
	case OpI32Const, OpI64Const:
		return fmt.Sprintf("%s %d", name, r.Operand)
	case OpI32Load, OpI32Store:
		return fmt.Sprintf("%s offset=%d align=%d", name, r.MemOffset, r.MemAlign)
	default:
		return name
	}
}

func opcodeName(o Opcode) string {
	switch o {
	case OpUnreachable:
		return "unreachable"
	case OpNop:
		return "nop"
	case OpBlock:
		return "block"
	case OpLoop:
		return "loop"
	case OpIf:
		return "if"
	case OpElse:
		return "else"
	case OpEnd:
		return "end"
	case OpBr:
		return "br"
	case OpBrIf:
		return "br_if"
	case OpBrTable:
		return "br_table"
	case OpReturn:
		return "return"
	case OpCall:
		return "call"
	case OpCallIndir:
		return "call_indirect"
	case OpDrop:
		return "drop"
	case OpSelect:
		return "select"
	case OpLocalGet:
		return "local.get"
	case OpLocalSet:
		return "local.set"
	case OpLocalTee:
		return "local.tee"
	case OpGlobalGet:
		return "global.get"
	case OpGlobalSet:
		return "global.set"
	case OpI32Load:
		return "i32.load"
	case OpI32Store:
		return "i32.store"
	case OpI32Const:
		return "i32.const"
	case OpI64Const:
		return "i64.const"
	default:
		return fmt.Sprintf("op_%#x", byte(o))
	}
}

// Index is the immutable, once-built instruction index for a contract.
type Index struct {
	Records      []InstructionRecord
	byFunction    map[uint32][]int // function index -> indices into Records
	disassembled  map[uint32][]string
}

// Build parses the code section of img into a flat, ordered instruction
// index. It never mutates img. On a malformed function body it returns a
// *dbgerr.Error without partial index state.
func Build(img *wasmmodule.ContractImage) (*Index, error) {
	idx := &Index{byFunction: map[uint32][]int{}}
	for _, fn := range img.Code {
		local := 0
		pos := 0
		code := fn.Code
		for pos < len(code) {
			startPos := pos
			opByte := code[pos]
			pos++
			op := Opcode(opByte)
			rec := InstructionRecord{
				ByteOffset:    fn.BodyOffset + startPos,
				Opcode:        op,
				FunctionIndex: fn.FuncIndex,
				LocalIndex:    uint32(local),
			}
			var err error
			pos, rec, err = decodeOperand(code, pos, op, rec)
			if err != nil {
				return nil, dbgerr.WasmLoad(
					fmt.Sprintf("malformed instruction in function %d at offset %d", fn.FuncIndex, rec.ByteOffset),
					err,
				)
			}
			idx.byFunction[fn.FuncIndex] = append(idx.byFunction[fn.FuncIndex], len(idx.Records))
			idx.Records = append(idx.Records, rec)
			local++
		}
	}
	return idx, nil
}

// decodeOperand advances pos past any immediate operand bytes for op,
// populating rec's operand fields. Unknown opcodes are treated as
// zero-operand for indexing purposes (the engine delegates real execution to
// the host; this index exists only to classify and display).
func decodeOperand(code []byte, pos int, op Opcode, rec InstructionRecord) (int, InstructionRecord, error) {
	readVaru := func() (uint64, error) {
		var result uint64
		var shift uint
		for {
			if pos >= len(code) {
				return 0, fmt.Errorf("truncated LEB128 operand")
			}
			b := code[pos]
			pos++
			result |= uint64(b&0x7f) << shift
			if b&0x80 == 0 {
				return result, nil
			}
			shift += 7
			if shift >= 70 {
				return 0, fmt.Errorf("LEB128 overflow")
			}
		}
	}
	readVars := func() (int64, error) {
		var result int64
		var shift uint
		var b byte
		for {
			if pos >= len(code) {
				return 0, fmt.Errorf("truncated LEB128 operand")
			}
			b = code[pos]
			pos++
			result |= int64(b&0x7f) << shift
			shift += 7
			if b&0x80 == 0 {
				break
			}
		}
		if shift < 64 && b&0x40 != 0 {
			result |= -1 << shift
		}
		return result, nil
	}

	switch op {
	case OpCall, OpBr, OpBrIf, OpLocalGet, OpLocalSet, OpLocalTee, OpGlobalGet, OpGlobalSet:
		v, err := readVaru()
		if err != nil {
			return pos, rec, err
		}
		rec.Operand = int64(v)
	case OpCallIndir:
		v, err := readVaru()
		if err != nil {
			return pos, rec, err
		}
		rec.Operand = int64(v)
		if _, err := readVaru(); err != nil { // table index
			return pos, rec, err
		}
	case OpBrTable:
		n, err := readVaru()
		if err != nil {
			return pos, rec, err
		}
		for i := uint64(0); i <= n; i++ { // n targets + 1 default
			if _, err := readVaru(); err != nil {
				return pos, rec, err
			}
		}
	case OpBlock, OpLoop, OpIf:
		if pos >= len(code) {
			return pos, rec, fmt.Errorf("truncated block type")
		}
		pos++ // block type byte
	case OpI32Const:
		v, err := readVars()
		if err != nil {
			return pos, rec, err
		}
		rec.Operand = v
	case OpI64Const:
		v, err := readVars()
		if err != nil {
			return pos, rec, err
		}
		rec.Operand = v
	case OpI32Load, OpI32Store:
		align, err := readVaru()
		if err != nil {
			return pos, rec, err
		}
		offset, err := readVaru()
		if err != nil {
			return pos, rec, err
		}
		rec.MemAlign = uint32(align)
		rec.MemOffset = uint32(offset)
	}
	return pos, rec, nil
}

// ForFunction returns the instruction records belonging to functionIndex, in
// order.
func (idx *Index) ForFunction(functionIndex uint32) []InstructionRecord {
	out := make([]InstructionRecord, 0, len(idx.byFunction[functionIndex]))
	for _, i := range idx.byFunction[functionIndex] {
		out = append(out, idx.Records[i])
	}
	return out
}

// Disassemble returns memoized display lines for a function's instructions,
// computed lazily on first request.
func (idx *Index) Disassemble(functionIndex uint32) []string {
	if idx.disassembled == nil {
		idx.disassembled = map[uint32][]string{}
	}
	if cached, ok := idx.disassembled[functionIndex]; ok {
		return cached
	}
	recs := idx.ForFunction(functionIndex)
	lines := make([]string, 0, len(recs))
	for _, r := range recs {
		lines = append(lines, fmt.Sprintf("%6d: %s", r.ByteOffset, r.Display()))
	}
	idx.disassembled[functionIndex] = lines
	return lines
}

// String renders the whole index for debugging output.
func (idx *Index) String() string {
	var b strings.Builder
	for _, r := range idx.Records {
		b.WriteString(fmt.Sprintf("fn=%d %s\n", r.FunctionIndex, r.Display()))
	}
	return b.String()
}
