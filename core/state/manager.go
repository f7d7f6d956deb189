package state

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"

	"mintforge/storage"
)

// Manager exposes the persisted engine state through a prefixed key schema on
// top of a generic key-value database. All values are RLP encoded.
type Manager struct {
	db storage.Database
}

// NewManager wraps the supplied database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

const (
	tokenSupplyPrefix     = "token/supply/"
	tokenBalancePrefix    = "token/balance/"
	holdingLastPrefix     = "rewards/holding/last/"
	auctionSharesPrefix   = "auction/shares/"
	auctionConsumerPrefix = "auction/consumer/"
	assetOwnerPrefix      = "assets/owner/"
)

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func tokenSupplyKey(symbol string) []byte {
	return []byte(tokenSupplyPrefix + normalizeSymbol(symbol))
}

func tokenBalanceKey(symbol string, addr [20]byte) []byte {
	return []byte(tokenBalancePrefix + normalizeSymbol(symbol) + "/" + hex.EncodeToString(addr[:]))
}

func holdingLastKey(assetID uint64) []byte {
	return []byte(holdingLastPrefix + strconv.FormatUint(assetID, 10))
}

func auctionSharesKey(addr [20]byte) []byte {
	return []byte(auctionSharesPrefix + hex.EncodeToString(addr[:]))
}

func auctionConsumerKey(addr [20]byte) []byte {
	return []byte(auctionConsumerPrefix + hex.EncodeToString(addr[:]))
}

func assetOwnerKey(assetID uint64) []byte {
	return []byte(assetOwnerPrefix + strconv.FormatUint(assetID, 10))
}

// get returns the stored value and whether the key exists.
func (m *Manager) get(key []byte) ([]byte, bool, error) {
	if m == nil || m.db == nil {
		return nil, false, fmt.Errorf("state manager unavailable")
	}
	data, err := m.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (m *Manager) getBigInt(key []byte) (*big.Int, error) {
	data, ok, err := m.get(key)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return big.NewInt(0), nil
	}
	value := new(big.Int)
	if err := rlp.DecodeBytes(data, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (m *Manager) putBigInt(key []byte, value *big.Int) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state manager unavailable")
	}
	if value == nil {
		value = big.NewInt(0)
	}
	if value.Sign() < 0 {
		return fmt.Errorf("state: negative value")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(key, encoded)
}

// --- Token supply ---

// TokenSupply returns the persisted total supply for the provided token.
// Missing entries default to zero.
func (m *Manager) TokenSupply(symbol string) (*big.Int, error) {
	if normalizeSymbol(symbol) == "" {
		return nil, fmt.Errorf("token symbol required")
	}
	return m.getBigInt(tokenSupplyKey(symbol))
}

// SetTokenSupply overwrites the stored total supply for the token.
func (m *Manager) SetTokenSupply(symbol string, amount *big.Int) error {
	if normalizeSymbol(symbol) == "" {
		return fmt.Errorf("token symbol required")
	}
	return m.putBigInt(tokenSupplyKey(symbol), amount)
}

// AdjustTokenSupply increments the stored total supply by the supplied delta
// and returns the updated total.
func (m *Manager) AdjustTokenSupply(symbol string, delta *big.Int) (*big.Int, error) {
	current, err := m.TokenSupply(symbol)
	if err != nil {
		return nil, err
	}
	if delta == nil {
		delta = big.NewInt(0)
	}
	updated := new(big.Int).Add(current, delta)
	if updated.Sign() < 0 {
		return nil, fmt.Errorf("token %s supply underflow", normalizeSymbol(symbol))
	}
	if err := m.putBigInt(tokenSupplyKey(symbol), updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// --- Token balances ---

// TokenBalance returns the stored balance for the account. Missing entries
// default to zero.
func (m *Manager) TokenBalance(symbol string, addr [20]byte) (*big.Int, error) {
	if normalizeSymbol(symbol) == "" {
		return nil, fmt.Errorf("token symbol required")
	}
	return m.getBigInt(tokenBalanceKey(symbol, addr))
}

// SetTokenBalance overwrites the stored balance for the account.
func (m *Manager) SetTokenBalance(symbol string, addr [20]byte, amount *big.Int) error {
	if normalizeSymbol(symbol) == "" {
		return fmt.Errorf("token symbol required")
	}
	return m.putBigInt(tokenBalanceKey(symbol, addr), amount)
}

// --- Holding program timestamps ---

// HoldingLastClaimed returns the last claim timestamp recorded for the asset.
// Assets without a prior claim report zero.
func (m *Manager) HoldingLastClaimed(assetID uint64) (uint64, error) {
	data, ok, err := m.get(holdingLastKey(assetID))
	if err != nil {
		return 0, err
	}
	if !ok || len(data) == 0 {
		return 0, nil
	}
	var ts uint64
	if err := rlp.DecodeBytes(data, &ts); err != nil {
		return 0, err
	}
	return ts, nil
}

// SetHoldingLastClaimed records the last claim timestamp for the asset.
func (m *Manager) SetHoldingLastClaimed(assetID uint64, ts uint64) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state manager unavailable")
	}
	encoded, err := rlp.EncodeToBytes(ts)
	if err != nil {
		return err
	}
	return m.db.Put(holdingLastKey(assetID), encoded)
}

// --- Auction shares source ---

// AuctionShares returns the accumulated shares for the bidder.
func (m *Manager) AuctionShares(addr [20]byte) (*big.Int, error) {
	return m.getBigInt(auctionSharesKey(addr))
}

// SetAuctionShares overwrites the accumulated shares for the bidder.
func (m *Manager) SetAuctionShares(addr [20]byte, amount *big.Int) error {
	return m.putBigInt(auctionSharesKey(addr), amount)
}

// AuctionConsumer reports whether the address is an authorized shares
// consumer.
func (m *Manager) AuctionConsumer(addr [20]byte) (bool, error) {
	data, ok, err := m.get(auctionConsumerKey(addr))
	if err != nil {
		return false, err
	}
	return ok && len(data) == 1 && data[0] == 1, nil
}

// SetAuctionConsumer stores the consumer authorization flag for the address.
func (m *Manager) SetAuctionConsumer(addr [20]byte, authorized bool) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state manager unavailable")
	}
	value := []byte{0}
	if authorized {
		value[0] = 1
	}
	return m.db.Put(auctionConsumerKey(addr), value)
}

// --- Asset registry ---

// AssetOwner returns the recorded owner for the asset id and whether the
// asset exists.
func (m *Manager) AssetOwner(assetID uint64) ([20]byte, bool, error) {
	var owner [20]byte
	data, ok, err := m.get(assetOwnerKey(assetID))
	if err != nil || !ok {
		return owner, false, err
	}
	if len(data) != len(owner) {
		return owner, false, fmt.Errorf("state: malformed owner record for asset %d", assetID)
	}
	copy(owner[:], data)
	return owner, true, nil
}

// SetAssetOwner records the owner for the asset id.
func (m *Manager) SetAssetOwner(assetID uint64, owner [20]byte) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state manager unavailable")
	}
	return m.db.Put(assetOwnerKey(assetID), append([]byte(nil), owner[:]...))
}
