package rewards

import "errors"

var (
	// ErrMintLocked rejects every mint, reward and administrative alike,
	// while the global mint lock is set.
	ErrMintLocked = errors.New("rewards: mint locked")
	// ErrOwnerMintLocked rejects administrative mints while the owner mint
	// lock is set.
	ErrOwnerMintLocked = errors.New("rewards: owner mint locked")
	// ErrAuctionRewardsNotSet signals the auction program is disabled or no
	// shares source has been configured.
	ErrAuctionRewardsNotSet = errors.New("rewards: auction rewards not configured")
	// ErrAuctionContractNotConfigured signals the shares source does not
	// recognize this engine as an authorized consumer.
	ErrAuctionContractNotConfigured = errors.New("rewards: engine not authorized by auction source")
	// ErrWrongRewardsClaim rejects the zero-condition convenience path while
	// a condition root is configured.
	ErrWrongRewardsClaim = errors.New("rewards: weighted program requires a proof claim")
	// ErrOwnership aborts a holding batch when the caller does not own one of
	// the referenced assets.
	ErrOwnership = errors.New("rewards: caller does not own asset")
	// ErrMaxSupplyExceeded fails a claim fast when the total supply already
	// sits at or above the ceiling.
	ErrMaxSupplyExceeded = errors.New("rewards: max supply exceeded")
	// ErrHoldingRewardsNotSet signals the holding program is disabled or no
	// ownership registry has been configured.
	ErrHoldingRewardsNotSet = errors.New("rewards: holding rewards not configured")
	// ErrUnauthorized rejects configuration calls from anyone but the
	// authority.
	ErrUnauthorized = errors.New("rewards: unauthorized")

	errNilLedger = errors.New("rewards: ledger not configured")
	errNilState  = errors.New("rewards: holding state not configured")
)
