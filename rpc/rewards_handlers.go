package rpc

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"mintforge/crypto"
	"mintforge/native/assets"
	"mintforge/native/rewards"
	"mintforge/observability"
)

type claimBaseParams struct {
	Caller string `json:"caller"`
}

type claimWeightedParams struct {
	Caller         string   `json:"caller"`
	Proof          []string `json:"proof"`
	ConditionCount uint64   `json:"conditionCount"`
}

type claimHoldingParams struct {
	Caller   string   `json:"caller"`
	AssetIDs []uint64 `json:"assetIds"`
}

type previewParams struct {
	Shares         string `json:"shares"`
	ConditionCount uint64 `json:"conditionCount"`
}

type verifyParams struct {
	Claimant       string   `json:"claimant"`
	Proof          []string `json:"proof"`
	ConditionCount uint64   `json:"conditionCount"`
}

type claimResult struct {
	Minted string `json:"minted"`
}

type summaryResult struct {
	TotalSupply    string `json:"totalSupply"`
	MaxSupply      string `json:"maxSupply"`
	AuctionEnabled bool   `json:"auctionEnabled"`
	BaseWeightBps  uint64 `json:"baseWeightBps"`
	ExtraWeightBps uint64 `json:"extraWeightBps"`
	ConditionRoot  string `json:"conditionRoot"`
	HoldingEnabled bool   `json:"holdingEnabled"`
	RatePerDayBps  uint64 `json:"ratePerDayBps"`
	StartTime      uint64 `json:"startTime"`
	MintLocked     bool   `json:"mintLocked"`
	OwnerLocked    bool   `json:"ownerMintLocked"`
}

func decodeParams(params []json.RawMessage, out interface{}) error {
	if len(params) != 1 {
		return fmt.Errorf("expected a single params object")
	}
	decoder := json.NewDecoder(strings.NewReader(string(params[0])))
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func decodeCaller(value string) ([20]byte, error) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(value))
	if err != nil {
		return [20]byte{}, err
	}
	return addr.Array(), nil
}

func decodeProof(encoded []string) ([][32]byte, error) {
	proof := make([][32]byte, 0, len(encoded))
	for i, element := range encoded {
		raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(element), "0x"))
		if err != nil {
			return nil, fmt.Errorf("proof element %d: %w", i, err)
		}
		if len(raw) != 32 {
			return nil, fmt.Errorf("proof element %d: expected 32 bytes", i)
		}
		var node [32]byte
		copy(node[:], raw)
		proof = append(proof, node)
	}
	return proof, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, rewards.ErrMintLocked):
		return "mint_locked"
	case errors.Is(err, rewards.ErrOwnerMintLocked):
		return "owner_mint_locked"
	case errors.Is(err, rewards.ErrAuctionRewardsNotSet):
		return "auction_not_set"
	case errors.Is(err, rewards.ErrAuctionContractNotConfigured):
		return "auction_not_configured"
	case errors.Is(err, rewards.ErrWrongRewardsClaim):
		return "wrong_claim"
	case errors.Is(err, rewards.ErrOwnership):
		return "ownership"
	case errors.Is(err, rewards.ErrHoldingRewardsNotSet):
		return "holding_not_set"
	case errors.Is(err, rewards.ErrMaxSupplyExceeded):
		return "max_supply"
	default:
		return "internal"
	}
}

func (s *Server) handleClaimBaseAuction(params []json.RawMessage) (interface{}, *RPCError) {
	var p claimBaseParams
	if err := decodeParams(params, &p); err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	caller, err := decodeCaller(p.Caller)
	if err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	minted, err := s.engine.ClaimBaseAuctionReward(caller)
	if err != nil {
		observability.Rewards().RecordReject("auction", rejectReason(err))
		return nil, rpcErrorFor(err)
	}
	observability.Rewards().RecordClaim("auction", amountUnits(minted))
	return claimResult{Minted: minted.String()}, nil
}

func (s *Server) handleClaimWeightedAuction(params []json.RawMessage) (interface{}, *RPCError) {
	var p claimWeightedParams
	if err := decodeParams(params, &p); err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	caller, err := decodeCaller(p.Caller)
	if err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	proof, err := decodeProof(p.Proof)
	if err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	minted, err := s.engine.ClaimWeightedAuctionReward(caller, proof, p.ConditionCount)
	if err != nil {
		observability.Rewards().RecordReject("auction", rejectReason(err))
		return nil, rpcErrorFor(err)
	}
	observability.Rewards().RecordClaim("auction", amountUnits(minted))
	return claimResult{Minted: minted.String()}, nil
}

func (s *Server) handleClaimHolding(params []json.RawMessage) (interface{}, *RPCError) {
	var p claimHoldingParams
	if err := decodeParams(params, &p); err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	caller, err := decodeCaller(p.Caller)
	if err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	if len(p.AssetIDs) == 0 {
		return nil, &RPCError{Code: codeInvalidParams, Message: "assetIds must not be empty"}
	}
	minted, err := s.engine.ClaimHoldingRewards(caller, p.AssetIDs)
	if err != nil {
		observability.Rewards().RecordReject("holding", rejectReason(err))
		return nil, rpcErrorFor(err)
	}
	observability.Rewards().RecordClaim("holding", amountUnits(minted))
	return claimResult{Minted: minted.String()}, nil
}

func (s *Server) handlePreviewReward(params []json.RawMessage) (interface{}, *RPCError) {
	var p previewParams
	if err := decodeParams(params, &p); err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	shares, ok := new(big.Int).SetString(strings.TrimSpace(p.Shares), 10)
	if !ok || shares.Sign() < 0 {
		return nil, &RPCError{Code: codeInvalidParams, Message: "shares must be a non-negative decimal string"}
	}
	amount := s.engine.PreviewReward(shares, p.ConditionCount)
	return map[string]string{"amount": amount.String()}, nil
}

func (s *Server) handleVerifyCondition(params []json.RawMessage) (interface{}, *RPCError) {
	var p verifyParams
	if err := decodeParams(params, &p); err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	claimant, err := decodeCaller(p.Claimant)
	if err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	proof, err := decodeProof(p.Proof)
	if err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	return map[string]bool{"valid": s.engine.VerifyCondition(proof, claimant, p.ConditionCount)}, nil
}

func (s *Server) handleGetSummary() (interface{}, *RPCError) {
	total, err := s.engine.TotalSupply()
	if err != nil {
		return nil, rpcErrorFor(err)
	}
	auctionCfg := s.engine.AuctionConfig()
	holdingCfg := s.engine.HoldingConfig()
	opts := s.engine.MintOptions()
	return summaryResult{
		TotalSupply:    total.String(),
		MaxSupply:      s.engine.MaxSupply().String(),
		AuctionEnabled: auctionCfg.Enabled,
		BaseWeightBps:  auctionCfg.BaseWeightBps,
		ExtraWeightBps: auctionCfg.ExtraWeightBps,
		ConditionRoot:  "0x" + hex.EncodeToString(auctionCfg.ConditionRoot[:]),
		HoldingEnabled: holdingCfg.Enabled,
		RatePerDayBps:  holdingCfg.RatePerDayBps,
		StartTime:      holdingCfg.StartTime,
		MintLocked:     opts.MintLocked,
		OwnerLocked:    opts.OwnerMintLocked,
	}, nil
}

type getSharesParams struct {
	Bidder string `json:"bidder"`
}

type getOwnerParams struct {
	AssetID uint64 `json:"assetId"`
}

func (s *Server) handleGetShares(params []json.RawMessage) (interface{}, *RPCError) {
	var p getSharesParams
	if err := decodeParams(params, &p); err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	bidder, err := decodeCaller(p.Bidder)
	if err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	shares, err := s.source.SharesOf(bidder)
	if err != nil {
		return nil, rpcErrorFor(err)
	}
	return map[string]string{"shares": shares.String()}, nil
}

func (s *Server) handleGetOwner(params []json.RawMessage) (interface{}, *RPCError) {
	var p getOwnerParams
	if err := decodeParams(params, &p); err != nil {
		return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
	}
	owner, err := s.registry.OwnerOf(p.AssetID)
	if err != nil {
		if errors.Is(err, assets.ErrAssetNotFound) {
			return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
		}
		return nil, rpcErrorFor(err)
	}
	return map[string]string{"owner": crypto.MustNewAddress(crypto.ForgePrefix, owner[:]).String()}, nil
}

func amountUnits(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
