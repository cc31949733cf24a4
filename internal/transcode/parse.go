package transcode

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Parse converts a UTF-8 JSON argument tree into zero or more TypedValues,
// per the top-level dispatch rules.
func Parse(text string) ([]TypedValue, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errInvalidArgument("args", "empty arguments")
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, errInvalidArgument("args", fmt.Sprintf("invalid JSON: %v", err))
	}

	switch v := raw.(type) {
	case []interface{}:
		out := make([]TypedValue, 0, len(v))
		for i, elem := range v {
			path := fmt.Sprintf("args[%d]", i)
			tv, err := convertAny(elem, path)
			if err != nil {
				return nil, err
			}
			out = append(out, tv)
		}
		return out, nil
	case map[string]interface{}:
		if isAnnotationObject(v) {
			tv, err := convertAnnotated(v, "args[0]")
			if err != nil {
				return nil, err
			}
			return []TypedValue{tv}, nil
		}
		tv, err := convertMap(v, "args[0]")
		if err != nil {
			return nil, err
		}
		return []TypedValue{tv}, nil
	default:
		tv, err := convertBareScalar(raw, "args[0]")
		if err != nil {
			return nil, err
		}
		return []TypedValue{tv}, nil
	}
}

// convertAny converts a single JSON value at path, applying the "is it an
// annotation object" check recursively (Nested annotations inside an array
// recurse correctly).
func convertAny(raw interface{}, path string) (TypedValue, error) {
	switch v := raw.(type) {
	case map[string]interface{}:
		if isAnnotationObject(v) {
			return convertAnnotated(v, path)
		}
		return convertMap(v, path)
	case []interface{}:
		return convertBareVec(v, path)
	default:
		return convertBareScalar(raw, path)
	}
}

func isAnnotationObject(v map[string]interface{}) bool {
	allowed := map[string]bool{"type": true, "value": true, "arity": true, "length": true, "element_type": true}
	if _, ok := v["type"]; !ok {
		return false
	}
	if _, ok := v["value"]; !ok {
		return false
	}
	if _, ok := v["type"].(string); !ok {
		return false
	}
	for k := range v {
		if !allowed[k] {
			return false
		}
	}
	return true
}

func convertMap(v map[string]interface{}, path string) (TypedValue, error) {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	// deterministic order for reproducible error paths and serialization
	sortStrings(keys)
	entries := make([]MapEntry, 0, len(keys))
	for _, k := range keys {
		tv, err := convertAny(v[k], fmt.Sprintf("%s.%s", path, k))
		if err != nil {
			return TypedValue{}, err
		}
		entries = append(entries, MapEntry{Key: k, Value: tv})
	}
	return TypedValue{Kind: KindMap, Map: entries}, nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func shapeTag(raw interface{}) string {
	switch raw.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return "unknown"
	}
}

func convertBareVec(arr []interface{}, path string) (TypedValue, error) {
	elems := make([]TypedValue, 0, len(arr))
	if len(arr) > 0 {
		firstTag := shapeTag(arr[0])
		for i, raw := range arr {
			if shapeTag(raw) != firstTag {
				return TypedValue{}, errTypeMismatch(fmt.Sprintf("%s[%d]", path, i), firstTag, shapeTag(raw))
			}
		}
	}
	for i, raw := range arr {
		tv, err := convertAny(raw, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return TypedValue{}, err
		}
		elems = append(elems, tv)
	}
	return TypedValue{Kind: KindVec, Vec: elems}, nil
}

func convertBareScalar(raw interface{}, path string) (TypedValue, error) {
	switch v := raw.(type) {
	case nil:
		return TypedValue{Kind: KindVoid}, nil
	case bool:
		return TypedValue{Kind: KindBool, Bool: v}, nil
	case string:
		return TypedValue{Kind: KindSymbol, Symbol: v}, nil
	case json.Number:
		s := v.String()
		if strings.ContainsAny(s, ".eE") {
			return TypedValue{}, errUnsupportedType(path, "floating point")
		}
		bi, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return TypedValue{}, errInvalidArgument(path, "malformed integer literal")
		}
		return TypedValue{Kind: KindI128, Big: bi}, nil
	case []interface{}:
		return convertBareVec(v, path)
	case map[string]interface{}:
		return convertMap(v, path)
	default:
		return TypedValue{}, errUnsupportedType(path, fmt.Sprintf("%T", raw))
	}
}

// convertAnnotated dispatches a type-annotation object to its per-type rule.
func convertAnnotated(obj map[string]interface{}, path string) (TypedValue, error) {
	typeTag, _ := obj["type"].(string)
	value := obj["value"]

	var arity *int
	if a, ok := obj["arity"]; ok {
		if n, ok := jsonNumberToInt(a); ok {
			arity = &n
		}
	}
	var length *int
	if l, ok := obj["length"]; ok {
		if n, ok := jsonNumberToInt(l); ok {
			length = &n
		}
	}
	var elementType *string
	if et, ok := obj["element_type"].(string); ok {
		elementType = &et
	}

	return convertTyped(typeTag, value, arity, length, elementType, path)
}

func jsonNumberToInt(v interface{}) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return int(i), true
}

// convertTyped applies the per-type-tag conversion rule. It is
// also used, with typeTag=element_type, to coerce each Vec element when an
// explicit element_type is given.
func convertTyped(typeTag string, value interface{}, arity, length *int, elementType *string, path string) (TypedValue, error) {
	switch typeTag {
	case "u32", "i32", "u64", "i64", "u128", "i128":
		return convertNumeric(typeTag, value, path)
	case "bool":
		b, ok := value.(bool)
		if !ok {
			return TypedValue{}, errTypeMismatch(path, "bool", shapeTag(value))
		}
		return TypedValue{Kind: KindBool, Bool: b}, nil
	case "symbol":
		s, ok := value.(string)
		if !ok {
			return TypedValue{}, errTypeMismatch(path, "string", shapeTag(value))
		}
		return TypedValue{Kind: KindSymbol, Symbol: s}, nil
	case "string":
		s, ok := value.(string)
		if !ok {
			return TypedValue{}, errTypeMismatch(path, "string", shapeTag(value))
		}
		return TypedValue{Kind: KindString, Str: s}, nil
	case "bytes":
		s, ok := value.(string)
		if !ok {
			return TypedValue{}, errTypeMismatch(path, "string", shapeTag(value))
		}
		b, err := decodeBytes(s, path)
		if err != nil {
			return TypedValue{}, err
		}
		return TypedValue{Kind: KindBytes, Bytes: b}, nil
	case "bytesn":
		s, ok := value.(string)
		if !ok {
			return TypedValue{}, errTypeMismatch(path, "string", shapeTag(value))
		}
		if length == nil {
			return TypedValue{}, errInvalidArgument(path, "bytesn requires a length field")
		}
		b, err := decodeBytes(s, path)
		if err != nil {
			return TypedValue{}, err
		}
		if len(b) != *length {
			return TypedValue{}, errInvalidArgument(path, fmt.Sprintf("decoded length %d does not match declared length %d", len(b), *length))
		}
		return TypedValue{Kind: KindBytesN, Bytes: b}, nil
	case "option":
		if value == nil {
			return TypedValue{Kind: KindOption, Option: nil}, nil
		}
		inner, err := convertAny(value, path+".value")
		if err != nil {
			return TypedValue{}, err
		}
		return TypedValue{Kind: KindOption, Option: &inner}, nil
	case "tuple":
		arr, ok := value.([]interface{})
		if !ok {
			return TypedValue{}, errTypeMismatch(path, "array", shapeTag(value))
		}
		if arity != nil && len(arr) != *arity {
			return TypedValue{}, errInvalidArgument(path, fmt.Sprintf("tuple arity mismatch: expected %d, got %d", *arity, len(arr)))
		}
		elems := make([]TypedValue, 0, len(arr))
		for i, e := range arr {
			tv, err := convertAny(e, fmt.Sprintf("%s.value[%d]", path, i))
			if err != nil {
				return TypedValue{}, err
			}
			elems = append(elems, tv)
		}
		return TypedValue{Kind: KindTuple, Tuple: elems}, nil
	case "vec":
		arr, ok := value.([]interface{})
		if !ok {
			return TypedValue{}, errTypeMismatch(path, "array", shapeTag(value))
		}
		if elementType != nil {
			elems := make([]TypedValue, 0, len(arr))
			for i, e := range arr {
				elemPath := fmt.Sprintf("%s.value[%d] (element %d)", path, i, i)
				tv, err := convertTyped(*elementType, e, nil, nil, nil, elemPath)
				if err != nil {
					return TypedValue{}, err
				}
				elems = append(elems, tv)
			}
			return TypedValue{Kind: KindVec, Vec: elems}, nil
		}
		return convertBareVec(arr, path+".value")
	case "address":
		s, ok := value.(string)
		if !ok {
			return TypedValue{}, errTypeMismatch(path, "string", shapeTag(value))
		}
		if len(s) < 10 || (s[0] != 'G' && s[0] != 'C') {
			return TypedValue{}, errInvalidArgument(path, fmt.Sprintf("not a valid strkey address: %q", s))
		}
		return TypedValue{Kind: KindAddress, Address: s}, nil
	default:
		return TypedValue{}, errUnsupportedType(path, typeTag)
	}
}

func convertNumeric(typeTag string, value interface{}, path string) (TypedValue, error) {
	num, ok := value.(json.Number)
	if !ok {
		return TypedValue{}, errTypeMismatch(path, typeTag, shapeTag(value))
	}
	s := num.String()
	if strings.ContainsAny(s, ".eE") {
		return TypedValue{}, errTypeMismatch(path, typeTag, "floating point")
	}
	bi, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return TypedValue{}, errInvalidArgument(path, "malformed integer literal")
	}
	min, max, _ := boundsFor(typeTag)
	if bi.Cmp(min) < 0 || bi.Cmp(max) > 0 {
		return TypedValue{}, errOutOfRange(path, typeTag, s, min.String(), max.String())
	}
	tv := TypedValue{}
	switch typeTag {
	case "u32":
		tv.Kind = KindU32
		tv.U32 = uint32(bi.Uint64())
	case "i32":
		tv.Kind = KindI32
		tv.I32 = int32(bi.Int64())
	case "u64":
		tv.Kind = KindU64
		tv.U64 = bi.Uint64()
	case "i64":
		tv.Kind = KindI64
		tv.I64 = bi.Int64()
	case "u128":
		tv.Kind = KindU128
		tv.Big = bi
	case "i128":
		tv.Kind = KindI128
		tv.Big = bi
	}
	return tv, nil
}

func decodeBytes(s, path string) ([]byte, error) {
	switch {
	case strings.HasPrefix(s, "0x"):
		b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return nil, errInvalidArgument(path, fmt.Sprintf("invalid hex bytes: %v", err))
		}
		return b, nil
	case strings.HasPrefix(s, "base64:"):
		b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, "base64:"))
		if err != nil {
			return nil, errInvalidArgument(path, fmt.Sprintf("invalid base64 bytes: %v", err))
		}
		return b, nil
	default:
		return nil, errInvalidArgument(path, fmt.Sprintf("bytes value must be prefixed 0x or base64: got %q", s))
	}
}
