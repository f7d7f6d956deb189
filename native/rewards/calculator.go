package rewards

import "math/big"

// BpsDenominator is the fixed denominator for all basis-point weights.
const BpsDenominator = 10_000

var bpsDenomBig = big.NewInt(BpsDenominator)

// WeightedReward converts consumed auction shares and a proven condition
// count into a mint amount:
//
//	floor(shares * baseBps / 10000) * (1 + floor(count * extraBps / 10000))
//
// All divisions floor toward zero. The result is non-decreasing in both
// shares and count, and zero whenever shares is zero. The function has no
// side effects and is safe for previews.
func WeightedReward(shares *big.Int, conditionCount uint64, baseBps, extraBps uint64) *big.Int {
	if shares == nil || shares.Sign() <= 0 {
		return big.NewInt(0)
	}
	base := new(big.Int).Mul(shares, new(big.Int).SetUint64(baseBps))
	base.Quo(base, bpsDenomBig)

	multiplier := new(big.Int).SetUint64(conditionCount)
	multiplier.Mul(multiplier, new(big.Int).SetUint64(extraBps))
	multiplier.Quo(multiplier, bpsDenomBig)
	multiplier.Add(multiplier, big.NewInt(1))

	return base.Mul(base, multiplier)
}
