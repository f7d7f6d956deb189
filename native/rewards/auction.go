package rewards

import (
	"fmt"
	"math/big"

	"mintforge/core/events"
)

// ClaimBaseAuctionReward is the convenience path for callers without a
// condition proof. It forces the condition count to zero and rejects when a
// condition root is configured, so proof-gated programs cannot be bypassed.
func (e *Engine) ClaimBaseAuctionReward(caller [20]byte) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.claimAuction(caller, nil, 0, true)
}

// ClaimWeightedAuctionReward runs the full auction claim: it consumes the
// caller's shares from the source exactly once, verifies the membership
// proof and mints the weighted reward. A failed proof degrades the condition
// count to zero instead of aborting; the shares stay consumed either way.
func (e *Engine) ClaimWeightedAuctionReward(caller [20]byte, proof [][32]byte, conditionCount uint64) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.claimAuction(caller, proof, conditionCount, false)
}

// claimAuction holds the shared orchestration. The shares pull is a committed
// external side effect: any failure past it (cap, lock, ledger) aborts the
// call with the shares already consumed, and the source is never contacted a
// second time within the call.
func (e *Engine) claimAuction(caller [20]byte, proof [][32]byte, conditionCount uint64, basePath bool) (*big.Int, error) {
	if !e.auction.Enabled || e.source == nil {
		return nil, ErrAuctionRewardsNotSet
	}
	if basePath && e.auction.ConditionRoot != zeroRoot {
		return nil, ErrWrongRewardsClaim
	}
	authorized, err := e.source.IsAuthorizedConsumer(e.self)
	if err != nil {
		return nil, fmt.Errorf("rewards: consumer check: %w", err)
	}
	if !authorized {
		return nil, ErrAuctionContractNotConfigured
	}
	if err := e.ensureBelowCap(); err != nil {
		return nil, err
	}

	shares, err := e.source.PullAndClearShares(caller)
	if err != nil {
		return nil, fmt.Errorf("rewards: pull shares: %w", err)
	}

	verified := conditionCount
	if !basePath && !VerifyProof(e.auction.ConditionRoot, proof, LeafHash(caller, conditionCount)) {
		verified = 0
	}

	requested := WeightedReward(shares, verified, e.auction.BaseWeightBps, e.auction.ExtraWeightBps)
	minted, err := e.gatedMint(caller, requested)
	if err != nil {
		return nil, err
	}

	e.emit(events.AuctionRewardClaimed{
		Account:        caller,
		Shares:         copyBigInt(shares),
		ConditionCount: verified,
		Amount:         copyBigInt(minted),
	}.Event())
	return minted, nil
}
