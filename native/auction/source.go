package auction

import (
	"errors"
	"math/big"
)

var (
	ErrNilState      = errors.New("auction: state not configured")
	ErrInvalidShares = errors.New("auction: shares must be positive")
	ErrUnauthorized  = errors.New("auction: unauthorized")
)

// State is the persistence the shares source needs.
type State interface {
	AuctionShares(addr [20]byte) (*big.Int, error)
	SetAuctionShares(addr [20]byte, amount *big.Int) error
	AuctionConsumer(addr [20]byte) (bool, error)
	SetAuctionConsumer(addr [20]byte, authorized bool) error
}

// Source accumulates per-bidder auction shares and hands them out through a
// destructive read. It stands in for the auction contract the reward engine
// consumes shares from.
type Source struct {
	state    State
	operator [20]byte
}

// NewSource binds the shares source to its state. The operator is the only
// account allowed to credit shares or manage the consumer set.
func NewSource(state State, operator [20]byte) *Source {
	return &Source{state: state, operator: operator}
}

// Credit adds shares to a bidder's balance. Called by auction settlement.
func (s *Source) Credit(caller, bidder [20]byte, shares *big.Int) error {
	if s == nil || s.state == nil {
		return ErrNilState
	}
	if caller != s.operator {
		return ErrUnauthorized
	}
	if shares == nil || shares.Sign() <= 0 {
		return ErrInvalidShares
	}
	current, err := s.state.AuctionShares(bidder)
	if err != nil {
		return err
	}
	return s.state.SetAuctionShares(bidder, new(big.Int).Add(current, shares))
}

// SharesOf returns the accumulated shares without consuming them.
func (s *Source) SharesOf(bidder [20]byte) (*big.Int, error) {
	if s == nil || s.state == nil {
		return nil, ErrNilState
	}
	return s.state.AuctionShares(bidder)
}

// AuthorizeConsumer marks an account as allowed to pull shares.
func (s *Source) AuthorizeConsumer(caller, consumer [20]byte) error {
	if s == nil || s.state == nil {
		return ErrNilState
	}
	if caller != s.operator {
		return ErrUnauthorized
	}
	return s.state.SetAuctionConsumer(consumer, true)
}

// RevokeConsumer removes an account from the consumer set.
func (s *Source) RevokeConsumer(caller, consumer [20]byte) error {
	if s == nil || s.state == nil {
		return ErrNilState
	}
	if caller != s.operator {
		return ErrUnauthorized
	}
	return s.state.SetAuctionConsumer(consumer, false)
}

// IsAuthorizedConsumer reports whether the account may pull shares.
func (s *Source) IsAuthorizedConsumer(consumer [20]byte) (bool, error) {
	if s == nil || s.state == nil {
		return false, ErrNilState
	}
	return s.state.AuctionConsumer(consumer)
}

// PullAndClearShares returns the bidder's accumulated shares and zeroes them
// in the same call. The read is destructive: callers must treat the returned
// amount as consumed even if their own downstream processing fails.
func (s *Source) PullAndClearShares(bidder [20]byte) (*big.Int, error) {
	if s == nil || s.state == nil {
		return nil, ErrNilState
	}
	shares, err := s.state.AuctionShares(bidder)
	if err != nil {
		return nil, err
	}
	if shares.Sign() > 0 {
		if err := s.state.SetAuctionShares(bidder, big.NewInt(0)); err != nil {
			return nil, err
		}
	}
	return shares, nil
}
