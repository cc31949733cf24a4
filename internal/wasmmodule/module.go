// Package wasmmodule parses a WebAssembly binary module far enough to build
// a ContractImage: its SHA-256 fingerprint, exported function names, typed
// signatures, and the raw per-function code bodies that internal/instrindex
// walks to build an instruction index. It intentionally stops short of full
// WASM validation or execution, both of which are the host runtime's job
// per the host capability surface this debugger consumes.
package wasmmodule

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/promisszn/soroban-debugger-sub000/internal/dbgerr"
)

// ValueType is a WASM value type tag, as it appears in the binary format.
type ValueType byte

const (
	ValueTypeI32 ValueType = 0x7F
	ValueTypeI64 ValueType = 0x7E
	ValueTypeF32 ValueType = 0x7D
	ValueTypeF64 ValueType = 0x7C
)

func (v ValueType) String() string {
	switch v {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	default:
		return fmt.Sprintf("unknown(%#x)", byte(v))
	}
}

// FuncType is a WASM function type from the type section.
type FuncType struct {
	Params  []ValueType
	Results []ValueType
}

// NamedParam pairs a parameter with a name resolved from the custom "name"
// section, falling back to a positional placeholder when absent.
type NamedParam struct {
	Name string
	Type ValueType
}

// FunctionSig is a single exported function's typed signature.
type FunctionSig struct {
	Name       string
	FuncIndex  uint32
	Params     []NamedParam
	ReturnType *ValueType
}

// FunctionBody is the raw, un-decoded instruction bytes for one function in
// the code section, alongside the byte offset at which the body begins in
// the original module (used to report absolute offsets in InstructionRecord).
type FunctionBody struct {
	FuncIndex   uint32
	LocalsDecl  []LocalsGroup
	Code        []byte
	BodyOffset  int // offset of Code[0] within Bytes
}

// LocalsGroup is one run-length group of declared locals.
type LocalsGroup struct {
	Count uint32
	Type  ValueType
}

// Metadata is optional contract build metadata, conventionally carried in a
// custom "contractmetav0" section as sequential key/value string pairs.
type Metadata struct {
	ContractVersion string
	SDKVersion      string
	BuildDate       string
	Author          string
	Description     string
}

// ContractImage is the immutable parsed form of a contract's WASM bytes.
type ContractImage struct {
	Bytes       []byte
	Fingerprint [32]byte
	Exports     []string
	Signatures  []FunctionSig
	Metadata    *Metadata
	Types       []FuncType
	FuncTypeIdx []uint32 // per locally-defined function index into Types (imports are not parsed)
	Code        []FunctionBody
}

const (
	secCustom   = 0
	secType     = 1
	secImport   = 2
	secFunction = 3
	secTable    = 4
	secMemory   = 5
	secGlobal   = 6
	secExport   = 7
	secStart    = 8
	secElement  = 9
	secCode     = 10
	secData     = 11
)

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}
var wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}

// Parse decodes a WASM binary into a ContractImage. It returns a *dbgerr.Error
// of kind WasmLoad on any structural failure without mutating caller state.
func Parse(data []byte) (*ContractImage, error) {
	if len(data) < 8 {
		return nil, dbgerr.WasmLoad("module too short to contain a header", nil)
	}
	if !bytes.Equal(data[0:4], wasmMagic) {
		return nil, dbgerr.WasmLoad("missing WASM magic number", nil)
	}
	if !bytes.Equal(data[4:8], wasmVersion) {
		return nil, dbgerr.WasmLoad("unsupported WASM binary version", nil)
	}

	img := &ContractImage{
		Bytes:       data,
		Fingerprint: sha256.Sum256(data),
	}

	var (
		types        []FuncType
		funcTypeIdx  []uint32 // only locally-defined functions (imports excluded; contracts rarely import funcs)
		exportNames  = map[uint32]string{}
		names        = map[uint32]string{} // func index -> name, from custom "name" section
		localNames   = map[uint32]map[uint32]string{}
	)

	r := bytes.NewReader(data[8:])
	for r.Len() > 0 {
		idByte, err := r.ReadByte()
		if err != nil {
			return nil, dbgerr.WasmLoad("truncated section header", err)
		}
		size, err := readVarUint32(r)
		if err != nil {
			return nil, dbgerr.WasmLoad("truncated section size", err)
		}
		sectionStart := len(data) - r.Len()
		if uint32(r.Len()) < size {
			return nil, dbgerr.WasmLoad("section size exceeds remaining module bytes", nil)
		}
		body := make([]byte, size)
		if _, err := r.Read(body); err != nil {
			return nil, dbgerr.WasmLoad("failed reading section body", err)
		}
		br := bytes.NewReader(body)

		switch idByte {
		case secType:
			count, err := readVarUint32(br)
			if err != nil {
				return nil, dbgerr.WasmLoad("malformed type section", err)
			}
			for i := uint32(0); i < count; i++ {
				ft, err := parseFuncType(br)
				if err != nil {
					return nil, dbgerr.WasmLoad("malformed function type", err)
				}
				types = append(types, ft)
			}
		case secFunction:
			count, err := readVarUint32(br)
			if err != nil {
				return nil, dbgerr.WasmLoad("malformed function section", err)
			}
			for i := uint32(0); i < count; i++ {
				ti, err := readVarUint32(br)
				if err != nil {
					return nil, dbgerr.WasmLoad("malformed function type index", err)
				}
				funcTypeIdx = append(funcTypeIdx, ti)
			}
		case secExport:
			count, err := readVarUint32(br)
			if err != nil {
				return nil, dbgerr.WasmLoad("malformed export section", err)
			}
			for i := uint32(0); i < count; i++ {
				name, err := readName(br)
				if err != nil {
					return nil, dbgerr.WasmLoad("malformed export name", err)
				}
				kind, err := br.ReadByte()
				if err != nil {
					return nil, dbgerr.WasmLoad("truncated export descriptor", err)
				}
				idx, err := readVarUint32(br)
				if err != nil {
					return nil, dbgerr.WasmLoad("malformed export index", err)
				}
				if kind == 0x00 { // func export
					exportNames[idx] = name
				}
			}
		case secCode:
			count, err := readVarUint32(br)
			if err != nil {
				return nil, dbgerr.WasmLoad("malformed code section", err)
			}
			for i := uint32(0); i < count; i++ {
				bodySize, err := readVarUint32(br)
				if err != nil {
					return nil, dbgerr.WasmLoad("malformed function body size", err)
				}
				bodyStart := len(body) - br.Len()
				fnBody := make([]byte, bodySize)
				if _, err := br.Read(fnBody); err != nil {
					return nil, dbgerr.WasmLoad("truncated function body", err)
				}
				locals, code, err := splitLocalsAndCode(fnBody)
				if err != nil {
					return nil, dbgerr.WasmLoad("malformed function locals", err)
				}
				absoluteOffset := sectionStart + bodyStart + (len(fnBody) - len(code))
				img.Code = append(img.Code, FunctionBody{
					FuncIndex:  i,
					LocalsDecl: locals,
					Code:       code,
					BodyOffset: absoluteOffset,
				})
			}
		case secCustom:
			name, err := readName(br)
			if err == nil && name == "name" {
				parseNameSection(br, names, localNames)
			} else if err == nil && name == "contractmetav0" {
				img.Metadata = parseMetadataSection(br)
			}
		}
	}

	img.Types = types
	img.FuncTypeIdx = funcTypeIdx

	for idx, exportName := range exportNames {
		var sig FunctionSig
		sig.Name = exportName
		sig.FuncIndex = idx
		if int(idx) < len(funcTypeIdx) {
			ti := funcTypeIdx[idx]
			if int(ti) < len(types) {
				ft := types[ti]
				for pi, pt := range ft.Params {
					pname := fmt.Sprintf("arg%d", pi)
					if ln, ok := localNames[idx]; ok {
						if n, ok := ln[uint32(pi)]; ok {
							pname = n
						}
					}
					sig.Params = append(sig.Params, NamedParam{Name: pname, Type: pt})
				}
				if len(ft.Results) > 0 {
					rt := ft.Results[0]
					sig.ReturnType = &rt
				}
			}
		}
		img.Exports = append(img.Exports, exportName)
		img.Signatures = append(img.Signatures, sig)
	}

	return img, nil
}

func parseFuncType(r *bytes.Reader) (FuncType, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return FuncType{}, err
	}
	if tag != 0x60 {
		return FuncType{}, fmt.Errorf("expected func type tag 0x60, got %#x", tag)
	}
	var ft FuncType
	pc, err := readVarUint32(r)
	if err != nil {
		return FuncType{}, err
	}
	for i := uint32(0); i < pc; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return FuncType{}, err
		}
		ft.Params = append(ft.Params, ValueType(b))
	}
	rc, err := readVarUint32(r)
	if err != nil {
		return FuncType{}, err
	}
	for i := uint32(0); i < rc; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return FuncType{}, err
		}
		ft.Results = append(ft.Results, ValueType(b))
	}
	return ft, nil
}

func readName(r *bytes.Reader) (string, error) {
	n, err := readVarUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := r.Read(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func splitLocalsAndCode(fnBody []byte) ([]LocalsGroup, []byte, error) {
	r := bytes.NewReader(fnBody)
	count, err := readVarUint32(r)
	if err != nil {
		return nil, nil, err
	}
	var locals []LocalsGroup
	for i := uint32(0); i < count; i++ {
		n, err := readVarUint32(r)
		if err != nil {
			return nil, nil, err
		}
		t, err := r.ReadByte()
		if err != nil {
			return nil, nil, err
		}
		locals = append(locals, LocalsGroup{Count: n, Type: ValueType(t)})
	}
	code := fnBody[len(fnBody)-r.Len():]
	return locals, code, nil
}

// parseNameSection extracts the function-names and local-names subsections
// (ids 1 and 2) of the custom "name" section, best-effort: malformed
// subsections are skipped rather than failing the whole module load.
func parseNameSection(r *bytes.Reader, names map[uint32]string, localNames map[uint32]map[uint32]string) {
	for r.Len() > 0 {
		subID, err := r.ReadByte()
		if err != nil {
			return
		}
		size, err := readVarUint32(r)
		if err != nil {
			return
		}
		if uint32(r.Len()) < size {
			return
		}
		buf := make([]byte, size)
		if _, err := r.Read(buf); err != nil {
			return
		}
		sr := bytes.NewReader(buf)
		switch subID {
		case 1: // function names
			count, err := readVarUint32(sr)
			if err != nil {
				continue
			}
			for i := uint32(0); i < count; i++ {
				idx, err := readVarUint32(sr)
				if err != nil {
					break
				}
				name, err := readName(sr)
				if err != nil {
					break
				}
				names[idx] = name
			}
		case 2: // local names
			count, err := readVarUint32(sr)
			if err != nil {
				continue
			}
			for i := uint32(0); i < count; i++ {
				fidx, err := readVarUint32(sr)
				if err != nil {
					break
				}
				lcount, err := readVarUint32(sr)
				if err != nil {
					break
				}
				m := map[uint32]string{}
				for j := uint32(0); j < lcount; j++ {
					lidx, err := readVarUint32(sr)
					if err != nil {
						break
					}
					lname, err := readName(sr)
					if err != nil {
						break
					}
					m[lidx] = lname
				}
				localNames[fidx] = m
			}
		}
	}
}

func parseMetadataSection(r *bytes.Reader) *Metadata {
	md := &Metadata{}
	kv := map[string]string{}
	for r.Len() > 0 {
		k, err := readName(r)
		if err != nil {
			break
		}
		v, err := readName(r)
		if err != nil {
			break
		}
		kv[k] = v
	}
	md.ContractVersion = kv["contract_version"]
	md.SDKVersion = kv["sdk_version"]
	md.BuildDate = kv["build_date"]
	md.Author = kv["author"]
	md.Description = kv["description"]
	return md
}

// FingerprintHex returns the lowercase hex encoding of the image's SHA-256
// fingerprint, matching internal/contractcache.Key's canonical form.
func (img *ContractImage) FingerprintHex() string {
	return fmt.Sprintf("%x", img.Fingerprint[:])
}
