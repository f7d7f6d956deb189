package auction

import (
	"errors"
	"math/big"
	"testing"

	"mintforge/core/state"
	"mintforge/storage"
)

var (
	testOperator = [20]byte{0x0A}
	testBidder   = [20]byte{0x0B}
	testConsumer = [20]byte{0x0C}
)

func newTestSource(t *testing.T) *Source {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(func() { _ = db.Close() })
	return NewSource(state.NewManager(db), testOperator)
}

func TestCreditAccumulates(t *testing.T) {
	s := newTestSource(t)
	if err := s.Credit(testOperator, testBidder, big.NewInt(3)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := s.Credit(testOperator, testBidder, big.NewInt(4)); err != nil {
		t.Fatalf("second credit: %v", err)
	}
	shares, err := s.SharesOf(testBidder)
	if err != nil {
		t.Fatalf("shares: %v", err)
	}
	if shares.Int64() != 7 {
		t.Fatalf("unexpected shares: %s", shares)
	}
}

func TestCreditRequiresOperator(t *testing.T) {
	s := newTestSource(t)
	err := s.Credit(testBidder, testBidder, big.NewInt(1))
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	err = s.Credit(testOperator, testBidder, big.NewInt(0))
	if !errors.Is(err, ErrInvalidShares) {
		t.Fatalf("expected ErrInvalidShares, got %v", err)
	}
}

func TestPullAndClearShares(t *testing.T) {
	s := newTestSource(t)
	if err := s.Credit(testOperator, testBidder, big.NewInt(9)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	pulled, err := s.PullAndClearShares(testBidder)
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if pulled.Int64() != 9 {
		t.Fatalf("unexpected pulled amount: %s", pulled)
	}

	// The read is destructive: a second pull yields zero.
	pulled, err = s.PullAndClearShares(testBidder)
	if err != nil {
		t.Fatalf("second pull: %v", err)
	}
	if pulled.Sign() != 0 {
		t.Fatalf("expected zero on second pull, got %s", pulled)
	}
}

func TestConsumerAuthorization(t *testing.T) {
	s := newTestSource(t)
	ok, err := s.IsAuthorizedConsumer(testConsumer)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok {
		t.Fatal("consumer must default to unauthorized")
	}

	if err := s.AuthorizeConsumer(testBidder, testConsumer); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := s.AuthorizeConsumer(testOperator, testConsumer); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	ok, err = s.IsAuthorizedConsumer(testConsumer)
	if err != nil {
		t.Fatalf("recheck: %v", err)
	}
	if !ok {
		t.Fatal("consumer must be authorized")
	}
	if err := s.RevokeConsumer(testOperator, testConsumer); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = s.IsAuthorizedConsumer(testConsumer)
	if err != nil {
		t.Fatalf("final check: %v", err)
	}
	if ok {
		t.Fatal("consumer must be revoked")
	}
}
