package rewards

import (
	"math/big"
	"testing"
)

func TestWeightedReward(t *testing.T) {
	tests := []struct {
		name     string
		shares   int64
		count    uint64
		baseBps  uint64
		extraBps uint64
		want     int64
	}{
		{name: "zero shares", shares: 0, count: 100, baseBps: 5000, extraBps: 10000, want: 0},
		{name: "nil multiplier path", shares: 4, count: 0, baseBps: 5000, extraBps: 10000, want: 2},
		{name: "half weight", shares: 4, count: 0, baseBps: 5000, extraBps: 0, want: 2},
		{name: "floors base", shares: 3, count: 0, baseBps: 5000, extraBps: 0, want: 1},
		{name: "condition multiplier", shares: 4, count: 3, baseBps: 5000, extraBps: 10000, want: 8},
		{name: "floors multiplier", shares: 10, count: 3, baseBps: 10000, extraBps: 3000, want: 10},
		{name: "multiplier kicks in", shares: 10, count: 4, baseBps: 10000, extraBps: 3000, want: 20},
		{name: "full weights", shares: 100, count: 2, baseBps: 10000, extraBps: 10000, want: 300},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := WeightedReward(big.NewInt(tc.shares), tc.count, tc.baseBps, tc.extraBps)
			if got.Int64() != tc.want {
				t.Fatalf("got %s want %d", got, tc.want)
			}
		})
	}
}

func TestWeightedRewardNilShares(t *testing.T) {
	if got := WeightedReward(nil, 5, 5000, 10000); got.Sign() != 0 {
		t.Fatalf("nil shares must yield zero, got %s", got)
	}
}

func TestWeightedRewardMonotonic(t *testing.T) {
	const baseBps, extraBps = 2500, 4000
	prev := big.NewInt(-1)
	for shares := int64(0); shares <= 50; shares++ {
		got := WeightedReward(big.NewInt(shares), 7, baseBps, extraBps)
		if got.Cmp(prev) < 0 {
			t.Fatalf("reward decreased at shares=%d: %s < %s", shares, got, prev)
		}
		prev = got
	}
	prev = big.NewInt(-1)
	for count := uint64(0); count <= 50; count++ {
		got := WeightedReward(big.NewInt(1000), count, baseBps, extraBps)
		if got.Cmp(prev) < 0 {
			t.Fatalf("reward decreased at count=%d: %s < %s", count, got, prev)
		}
		prev = got
	}
}

func TestWeightedRewardBaseOnlyMatchesFloor(t *testing.T) {
	for shares := int64(0); shares <= 100; shares++ {
		got := WeightedReward(big.NewInt(shares), 0, 5000, 12345)
		want := shares * 5000 / BpsDenominator
		if got.Int64() != want {
			t.Fatalf("shares=%d: got %s want %d", shares, got, want)
		}
	}
}
