// Package transcode converts untyped JSON argument trees into the host's
// typed value model, per the type-annotation and bare-value rules: range
// checking on every numeric conversion, Vec homogeneity enforcement, and a
// precise JSON-path on every failure.
package transcode

import (
	"math/big"
)

// Kind is the TypedValue sum-type tag.
type Kind int

const (
	KindVoid Kind = iota
	KindBool
	KindU32
	KindI32
	KindU64
	KindI64
	KindU128
	KindI128
	KindSymbol
	KindString
	KindBytes
	KindBytesN
	KindAddress
	KindOption
	KindVec
	KindMap
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindU32:
		return "u32"
	case KindI32:
		return "i32"
	case KindU64:
		return "u64"
	case KindI64:
		return "i64"
	case KindU128:
		return "u128"
	case KindI128:
		return "i128"
	case KindSymbol:
		return "symbol"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindBytesN:
		return "bytesn"
	case KindAddress:
		return "address"
	case KindOption:
		return "option"
	case KindVec:
		return "vec"
	case KindMap:
		return "map"
	case KindTuple:
		return "tuple"
	default:
		return "unknown"
	}
}

// MapEntry is one key/value pair of a Map; the parser emits entries in
// ascending key order. TypedValue.Map stores entries rather than a bare Go
// map so structural equality and serialization are order-stable.
type MapEntry struct {
	Key   string
	Value TypedValue
}

// TypedValue is the sum type over the host's value domain.
type TypedValue struct {
	Kind Kind

	Bool    bool
	U32     uint32
	I32     int32
	U64     uint64
	I64     int64
	Big     *big.Int // holds U128/I128 magnitude (I128 may be negative)
	Symbol  string
	Str     string
	Bytes   []byte
	Address string

	Option *TypedValue // nil means Void/None when Kind == KindOption
	Vec    []TypedValue
	Map    []MapEntry
	Tuple  []TypedValue
}

// Equal reports structural equality.
func (v TypedValue) Equal(o TypedValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindVoid:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindU32:
		return v.U32 == o.U32
	case KindI32:
		return v.I32 == o.I32
	case KindU64:
		return v.U64 == o.U64
	case KindI64:
		return v.I64 == o.I64
	case KindU128, KindI128:
		if v.Big == nil || o.Big == nil {
			return v.Big == o.Big
		}
		return v.Big.Cmp(o.Big) == 0
	case KindSymbol:
		return v.Symbol == o.Symbol
	case KindString:
		return v.Str == o.Str
	case KindBytes, KindBytesN:
		if len(v.Bytes) != len(o.Bytes) {
			return false
		}
		for i := range v.Bytes {
			if v.Bytes[i] != o.Bytes[i] {
				return false
			}
		}
		return true
	case KindAddress:
		return v.Address == o.Address
	case KindOption:
		if v.Option == nil || o.Option == nil {
			return v.Option == o.Option
		}
		return v.Option.Equal(*o.Option)
	case KindVec, KindTuple:
		a, b := v.Vec, o.Vec
		if v.Kind == KindTuple {
			a, b = v.Tuple, o.Tuple
		}
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.Map) != len(o.Map) {
			return false
		}
		for i := range v.Map {
			if v.Map[i].Key != o.Map[i].Key || !v.Map[i].Value.Equal(o.Map[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
