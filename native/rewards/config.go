package rewards

import (
	"fmt"
	"math/big"
)

// AuctionConfig controls the auction-participation reward program.
//
// A zero ConditionRoot means the program pays flat base-weight rewards with
// no proof required; any non-zero root demands a valid membership proof for
// the weighted path and closes the convenience path.
type AuctionConfig struct {
	Enabled        bool
	BaseWeightBps  uint64
	ExtraWeightBps uint64
	ConditionRoot  [32]byte
}

// Validate performs static validation of the program parameters.
func (c AuctionConfig) Validate() error {
	if c.Enabled && c.BaseWeightBps == 0 {
		return fmt.Errorf("base weight must be positive when the program is enabled")
	}
	return nil
}

// HoldingConfig controls the time-based holding reward program.
type HoldingConfig struct {
	Enabled       bool
	RatePerDayBps uint64
	StartTime     uint64
}

// Validate performs static validation of the program parameters.
func (c HoldingConfig) Validate() error {
	if c.Enabled && c.RatePerDayBps == 0 {
		return fmt.Errorf("reward rate must be positive when the program is enabled")
	}
	return nil
}

// MintOptions carries the two independent mint locks. MintLocked gates every
// mint; OwnerMintLocked additionally gates the administrative mint.
type MintOptions struct {
	MintLocked      bool
	OwnerMintLocked bool
}

func copyBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
