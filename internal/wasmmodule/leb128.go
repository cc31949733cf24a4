package wasmmodule

import (
	"errors"
	"io"
)

var errOverflow = errors.New("wasmmodule: leb128 overflow")

// readVarUint32 decodes an unsigned LEB128-encoded uint32 from r.
func readVarUint32(r io.ByteReader) (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift >= 35 {
			return 0, errOverflow
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// readVarUint64 decodes an unsigned LEB128-encoded uint64 from r.
func readVarUint64(r io.ByteReader) (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift >= 70 {
			return 0, errOverflow
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// readVarInt32 decodes a signed LEB128-encoded int32 from r.
func readVarInt32(r io.ByteReader) (int32, error) {
	var result int32
	var shift uint
	var b byte
	var err error
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift >= 35 {
			return 0, errOverflow
		}
		result |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 32 && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, nil
}

// readVarInt64 decodes a signed LEB128-encoded int64 from r.
func readVarInt64(r io.ByteReader) (int64, error) {
	var result int64
	var shift uint
	var b byte
	var err error
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift >= 70 {
			return 0, errOverflow
		}
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
