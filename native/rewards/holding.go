package rewards

import (
	"fmt"
	"math/big"

	"mintforge/core/events"
)

const secondsPerDay = 86_400

var secondsPerDayBig = big.NewInt(secondsPerDay)

type holdingUpdate struct {
	assetID uint64
	ts      uint64
}

// ClaimHoldingRewards accrues time-based rewards for a batch of assets owned
// by the caller and mints the total once. The batch is all-or-nothing: a
// single ownership failure aborts the call before any timestamp is written.
// Every referenced asset has its last-claimed timestamp advanced to now even
// when it accrued nothing, so a partial day cannot be resubmitted. Duplicate
// ids in one batch accrue only on their first occurrence. Timestamps are
// persisted before the mint commits: a failed mint can forfeit the accrual
// but can never leave an asset re-claimable.
func (e *Engine) ClaimHoldingRewards(caller [20]byte, assetIDs []uint64) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.holding.Enabled || e.registry == nil {
		return nil, ErrHoldingRewardsNotSet
	}
	if e.holdings == nil {
		return nil, errNilState
	}
	if err := e.ensureBelowCap(); err != nil {
		return nil, err
	}

	now := e.now()
	rate := new(big.Int).SetUint64(e.holding.RatePerDayBps)
	total := big.NewInt(0)
	updates := make([]holdingUpdate, 0, len(assetIDs))
	pending := make(map[uint64]uint64, len(assetIDs))

	for _, id := range assetIDs {
		owner, err := e.registry.OwnerOf(id)
		if err != nil || owner != caller {
			return nil, ErrOwnership
		}
		last, seen := pending[id]
		if !seen {
			last, err = e.holdings.HoldingLastClaimed(id)
			if err != nil {
				return nil, fmt.Errorf("rewards: last claimed for asset %d: %w", id, err)
			}
			updates = append(updates, holdingUpdate{assetID: id, ts: now})
		}
		from := e.holding.StartTime
		if last > from {
			from = last
		}
		if now > from {
			accrual := new(big.Int).SetUint64(now - from)
			accrual.Mul(accrual, rate)
			accrual.Quo(accrual, secondsPerDayBig)
			total.Add(total, accrual)
		}
		pending[id] = now
	}

	if e.opts.MintLocked {
		return nil, ErrMintLocked
	}
	amount, err := e.clampToCap(total)
	if err != nil {
		return nil, err
	}

	for _, u := range updates {
		if err := e.holdings.SetHoldingLastClaimed(u.assetID, u.ts); err != nil {
			return nil, fmt.Errorf("rewards: record claim for asset %d: %w", u.assetID, err)
		}
	}

	if amount.Cmp(total) < 0 {
		e.emit(events.RewardSupplyCapped{
			Account:   caller,
			Requested: copyBigInt(total),
			Minted:    copyBigInt(amount),
		}.Event())
	}
	if amount.Sign() > 0 {
		if e.ledger == nil {
			return nil, errNilLedger
		}
		if err := e.ledger.Mint(caller, amount); err != nil {
			return nil, fmt.Errorf("rewards: mint: %w", err)
		}
	}

	e.emit(events.HoldingRewardClaimed{
		Account: caller,
		Assets:  append([]uint64(nil), assetIDs...),
		Amount:  copyBigInt(amount),
	}.Event())
	return amount, nil
}
