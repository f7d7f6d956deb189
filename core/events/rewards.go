package events

import (
	"math/big"
	"strconv"
	"strings"

	"mintforge/core/types"
	"mintforge/crypto"
)

const (
	TypeAuctionRewardClaimed = "rewards.auction.claimed"
	TypeHoldingRewardClaimed = "rewards.holding.claimed"
	TypeRewardSupplyCapped   = "rewards.supply.capped"
	TypeAdminMinted          = "rewards.admin.minted"
)

// AuctionRewardClaimed is emitted after a successful auction-program claim,
// including zero-amount claims where the shares were already consumed.
type AuctionRewardClaimed struct {
	Account        [20]byte
	Shares         *big.Int
	ConditionCount uint64
	Amount         *big.Int
}

func (AuctionRewardClaimed) EventType() string { return TypeAuctionRewardClaimed }

func (e AuctionRewardClaimed) Event() *types.Event {
	return &types.Event{
		Type: TypeAuctionRewardClaimed,
		Attributes: map[string]string{
			"account":        crypto.MustNewAddress(crypto.ForgePrefix, e.Account[:]).String(),
			"shares":         formatAmount(e.Shares),
			"conditionCount": strconv.FormatUint(e.ConditionCount, 10),
			"amount":         formatAmount(e.Amount),
		},
	}
}

// HoldingRewardClaimed is emitted after a successful holding-program batch
// claim. Assets carries the claimed asset ids in submission order.
type HoldingRewardClaimed struct {
	Account [20]byte
	Assets  []uint64
	Amount  *big.Int
}

func (HoldingRewardClaimed) EventType() string { return TypeHoldingRewardClaimed }

func (e HoldingRewardClaimed) Event() *types.Event {
	ids := make([]string, 0, len(e.Assets))
	for _, id := range e.Assets {
		ids = append(ids, strconv.FormatUint(id, 10))
	}
	return &types.Event{
		Type: TypeHoldingRewardClaimed,
		Attributes: map[string]string{
			"account": crypto.MustNewAddress(crypto.ForgePrefix, e.Account[:]).String(),
			"assets":  strings.Join(ids, ","),
			"amount":  formatAmount(e.Amount),
		},
	}
}

// RewardSupplyCapped records a mint whose requested amount was reduced to the
// remaining headroom under the supply ceiling.
type RewardSupplyCapped struct {
	Account   [20]byte
	Requested *big.Int
	Minted    *big.Int
}

func (RewardSupplyCapped) EventType() string { return TypeRewardSupplyCapped }

func (e RewardSupplyCapped) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardSupplyCapped,
		Attributes: map[string]string{
			"account":   crypto.MustNewAddress(crypto.ForgePrefix, e.Account[:]).String(),
			"requested": formatAmount(e.Requested),
			"minted":    formatAmount(e.Minted),
		},
	}
}

// AdminMinted is emitted when the configuration authority mints directly.
type AdminMinted struct {
	Account [20]byte
	Amount  *big.Int
}

func (AdminMinted) EventType() string { return TypeAdminMinted }

func (e AdminMinted) Event() *types.Event {
	return &types.Event{
		Type: TypeAdminMinted,
		Attributes: map[string]string{
			"account": crypto.MustNewAddress(crypto.ForgePrefix, e.Account[:]).String(),
			"amount":  formatAmount(e.Amount),
		},
	}
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
