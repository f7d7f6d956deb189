package ledger

import (
	"errors"
	"math/big"

	"mintforge/core/state"
)

// Symbol is the ticker of the fungible token managed by this ledger.
const Symbol = "FORGE"

var (
	ErrInvalidAmount       = errors.New("ledger: amount must not be negative")
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	ErrNilState            = errors.New("ledger: state not configured")
)

// Token is the fungible ledger primitive: balance storage, transfer and
// total-supply accounting for a single token. Policy (locks, caps) lives in
// front of it, not inside it.
type Token struct {
	state  *state.Manager
	symbol string
}

// NewToken binds a ledger to the persisted state.
func NewToken(manager *state.Manager) *Token {
	return &Token{state: manager, symbol: Symbol}
}

// Symbol returns the ledger's token ticker.
func (t *Token) Symbol() string {
	if t == nil {
		return Symbol
	}
	return t.symbol
}

// TotalSupply returns the cumulative minted amount.
func (t *Token) TotalSupply() (*big.Int, error) {
	if t == nil || t.state == nil {
		return nil, ErrNilState
	}
	return t.state.TokenSupply(t.symbol)
}

// BalanceOf returns the account balance. Unknown accounts report zero.
func (t *Token) BalanceOf(account [20]byte) (*big.Int, error) {
	if t == nil || t.state == nil {
		return nil, ErrNilState
	}
	return t.state.TokenBalance(t.symbol, account)
}

// Mint credits the account and grows the total supply by the same amount.
// A zero amount is a no-op; negative amounts are rejected.
func (t *Token) Mint(account [20]byte, amount *big.Int) error {
	if t == nil || t.state == nil {
		return ErrNilState
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	balance, err := t.state.TokenBalance(t.symbol, account)
	if err != nil {
		return err
	}
	if err := t.state.SetTokenBalance(t.symbol, account, new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	_, err = t.state.AdjustTokenSupply(t.symbol, amount)
	return err
}

// Transfer moves tokens between accounts without changing the supply.
func (t *Token) Transfer(from, to [20]byte, amount *big.Int) error {
	if t == nil || t.state == nil {
		return ErrNilState
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	fromBalance, err := t.state.TokenBalance(t.symbol, from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	toBalance, err := t.state.TokenBalance(t.symbol, to)
	if err != nil {
		return err
	}
	if err := t.state.SetTokenBalance(t.symbol, from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	return t.state.SetTokenBalance(t.symbol, to, new(big.Int).Add(toBalance, amount))
}
