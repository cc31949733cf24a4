package transcode

import (
	"math"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	maxU32 = big.NewInt(math.MaxUint32)
	minU32 = big.NewInt(0)
	maxI32 = big.NewInt(math.MaxInt32)
	minI32 = big.NewInt(math.MinInt32)
	maxU64 = new(big.Int).SetUint64(math.MaxUint64)
	minU64 = big.NewInt(0)
	maxI64 = big.NewInt(math.MaxInt64)
	minI64 = big.NewInt(math.MinInt64)

	// maxU128/minU128 and maxI128/minI128 are derived via holiman/uint256,
	// the pack's 128/256-bit integer library, rather than hand-rolled
	// big.Int shifts.
	maxU128 = func() *big.Int {
		one := uint256.NewInt(1)
		shifted := new(uint256.Int).Lsh(one, 128)
		shifted.Sub(shifted, uint256.NewInt(1))
		return shifted.ToBig()
	}()
	minU128 = big.NewInt(0)

	maxI128 = func() *big.Int {
		one := uint256.NewInt(1)
		shifted := new(uint256.Int).Lsh(one, 127)
		shifted.Sub(shifted, uint256.NewInt(1))
		return shifted.ToBig()
	}()
	minI128 = func() *big.Int {
		one := uint256.NewInt(1)
		shifted := new(uint256.Int).Lsh(one, 127)
		v := shifted.ToBig()
		return new(big.Int).Neg(v)
	}()
)

func boundsFor(t string) (min, max *big.Int, ok bool) {
	switch t {
	case "u32":
		return minU32, maxU32, true
	case "i32":
		return minI32, maxI32, true
	case "u64":
		return minU64, maxU64, true
	case "i64":
		return minI64, maxI64, true
	case "u128":
		return minU128, maxU128, true
	case "i128":
		return minI128, maxI128, true
	default:
		return nil, nil, false
	}
}
