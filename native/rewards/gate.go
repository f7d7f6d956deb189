package rewards

import (
	"fmt"
	"math/big"

	"mintforge/core/events"
)

// ensureBelowCap fails fast when the total supply already sits at or above
// the ceiling. Both reward paths call it at entry, before any reward is
// computed.
func (e *Engine) ensureBelowCap() error {
	if e.ledger == nil {
		return errNilLedger
	}
	total, err := e.ledger.TotalSupply()
	if err != nil {
		return fmt.Errorf("rewards: total supply: %w", err)
	}
	if total.Cmp(e.maxSupply) >= 0 {
		return ErrMaxSupplyExceeded
	}
	return nil
}

// clampToCap replaces the requested amount with the remaining headroom under
// the ceiling when the request overshoots. Remaining is never negative.
func (e *Engine) clampToCap(requested *big.Int) (*big.Int, error) {
	if e.ledger == nil {
		return nil, errNilLedger
	}
	total, err := e.ledger.TotalSupply()
	if err != nil {
		return nil, fmt.Errorf("rewards: total supply: %w", err)
	}
	remaining := new(big.Int).Sub(e.maxSupply, total)
	if remaining.Sign() < 0 {
		remaining = big.NewInt(0)
	}
	if requested == nil || requested.Sign() < 0 {
		return big.NewInt(0), nil
	}
	if requested.Cmp(remaining) > 0 {
		return remaining, nil
	}
	return new(big.Int).Set(requested), nil
}

// gatedMint is the single choke point in front of the ledger mint primitive:
// it enforces the global mint lock, clamps the request to the remaining
// supply headroom and emits a capped event when the clamp bites. A zero
// post-clamp amount commits nothing but is not an error.
func (e *Engine) gatedMint(account [20]byte, requested *big.Int) (*big.Int, error) {
	if e.opts.MintLocked {
		return nil, ErrMintLocked
	}
	amount, err := e.clampToCap(requested)
	if err != nil {
		return nil, err
	}
	if requested != nil && amount.Cmp(requested) < 0 {
		e.emit(events.RewardSupplyCapped{
			Account:   account,
			Requested: copyBigInt(requested),
			Minted:    copyBigInt(amount),
		}.Event())
	}
	if amount.Sign() == 0 {
		return amount, nil
	}
	if e.ledger == nil {
		return nil, errNilLedger
	}
	if err := e.ledger.Mint(account, amount); err != nil {
		return nil, fmt.Errorf("rewards: mint: %w", err)
	}
	return amount, nil
}

// AdminMint lets the configuration authority mint directly. It passes the
// same gate as the reward paths and is additionally blocked by the owner
// mint lock.
func (e *Engine) AdminMint(caller, account [20]byte, amount *big.Int) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.isAuthority(caller) {
		return nil, ErrUnauthorized
	}
	if e.opts.MintLocked {
		return nil, ErrMintLocked
	}
	if e.opts.OwnerMintLocked {
		return nil, ErrOwnerMintLocked
	}
	minted, err := e.gatedMint(account, amount)
	if err != nil {
		return nil, err
	}
	e.emit(events.AdminMinted{Account: account, Amount: copyBigInt(minted)}.Event())
	return minted, nil
}
