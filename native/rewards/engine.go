package rewards

import (
	"math/big"
	"sync"
	"time"

	"mintforge/core/events"
	"mintforge/core/types"
)

// Ledger is the narrow view of the fungible token primitive the engine mints
// against. It is assumed correct; the engine only layers policy on top.
type Ledger interface {
	Mint(account [20]byte, amount *big.Int) error
	TotalSupply() (*big.Int, error)
	BalanceOf(account [20]byte) (*big.Int, error)
}

// SharesSource is the external auction collaborator. PullAndClearShares is a
// destructive read: the source zeroes the balance as it hands it out.
type SharesSource interface {
	IsAuthorizedConsumer(engine [20]byte) (bool, error)
	PullAndClearShares(account [20]byte) (*big.Int, error)
}

// OwnershipRegistry resolves current asset ownership for the holding program.
type OwnershipRegistry interface {
	OwnerOf(assetID uint64) ([20]byte, error)
}

// HoldingState persists the per-asset last-claimed timestamps.
type HoldingState interface {
	HoldingLastClaimed(assetID uint64) (uint64, error)
	SetHoldingLastClaimed(assetID uint64, ts uint64) error
}

type rewardEvent struct {
	evt *types.Event
}

func (e rewardEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e rewardEvent) Event() *types.Event { return e.evt }

// Engine coordinates the two reward programs in front of a single ledger and
// a shared supply ceiling. Claim paths are serialized by an internal mutex so
// the per-asset timestamps and the supply read-modify-write stay exclusive
// for the duration of a claim.
type Engine struct {
	mu sync.Mutex

	ledger   Ledger
	source   SharesSource
	registry OwnershipRegistry
	holdings HoldingState
	emitter  events.Emitter
	nowFn    func() uint64

	// self is the identity this engine presents to the shares source.
	self      [20]byte
	authority [20]byte

	auction   AuctionConfig
	holding   HoldingConfig
	opts      MintOptions
	maxSupply *big.Int
}

// NewEngine constructs an engine with a no-op emitter, wall-clock time and a
// zero supply ceiling. The authority must raise the ceiling before any claim
// can mint.
func NewEngine(authority [20]byte) *Engine {
	return &Engine{
		emitter:   events.NoopEmitter{},
		nowFn:     func() uint64 { return uint64(time.Now().Unix()) },
		authority: authority,
		maxSupply: big.NewInt(0),
	}
}

// SetLedger configures the fungible ledger the engine mints against.
func (e *Engine) SetLedger(ledger Ledger) { e.ledger = ledger }

// SetSharesSource configures the auction collaborator. Passing nil marks the
// auction program as unconfigured.
func (e *Engine) SetSharesSource(source SharesSource) { e.source = source }

// SetOwnershipRegistry configures the asset ownership collaborator.
func (e *Engine) SetOwnershipRegistry(registry OwnershipRegistry) { e.registry = registry }

// SetHoldingState configures the per-asset timestamp store.
func (e *Engine) SetHoldingState(state HoldingState) { e.holdings = state }

// SetIdentity configures the account this engine presents to the shares
// source when asking for consumer authorization.
func (e *Engine) SetIdentity(self [20]byte) { e.self = self }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source. Primarily intended for tests.
func (e *Engine) SetNowFunc(now func() uint64) {
	if now == nil {
		e.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(rewardEvent{evt: event})
}

func (e *Engine) now() uint64 {
	if e == nil || e.nowFn == nil {
		return uint64(time.Now().Unix())
	}
	return e.nowFn()
}

func (e *Engine) isAuthority(caller [20]byte) bool {
	return caller == e.authority
}

// --- Authority-gated configuration surface ---

// UpdateAuctionConfig replaces the auction program parameters.
func (e *Engine) UpdateAuctionConfig(caller [20]byte, cfg AuctionConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.isAuthority(caller) {
		return ErrUnauthorized
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.auction = cfg
	return nil
}

// UpdateHoldingConfig replaces the holding program parameters.
func (e *Engine) UpdateHoldingConfig(caller [20]byte, cfg HoldingConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.isAuthority(caller) {
		return ErrUnauthorized
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.holding = cfg
	return nil
}

// SetMintOptions replaces the mint lock flags.
func (e *Engine) SetMintOptions(caller [20]byte, opts MintOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.isAuthority(caller) {
		return ErrUnauthorized
	}
	e.opts = opts
	return nil
}

// SetMaxSupply replaces the supply ceiling shared by every mint path.
func (e *Engine) SetMaxSupply(caller [20]byte, max *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.isAuthority(caller) {
		return ErrUnauthorized
	}
	e.maxSupply = copyBigInt(max)
	return nil
}

// TransferAuthority hands the configuration authority to a new account.
func (e *Engine) TransferAuthority(caller, next [20]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.isAuthority(caller) {
		return ErrUnauthorized
	}
	e.authority = next
	return nil
}

// --- Read-only views ---

// AuctionConfig returns the current auction program parameters.
func (e *Engine) AuctionConfig() AuctionConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.auction
}

// HoldingConfig returns the current holding program parameters.
func (e *Engine) HoldingConfig() HoldingConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.holding
}

// MintOptions returns the current lock flags.
func (e *Engine) MintOptions() MintOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// MaxSupply returns the configured ceiling.
func (e *Engine) MaxSupply() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyBigInt(e.maxSupply)
}

// TotalSupply reports the ledger's cumulative minted amount.
func (e *Engine) TotalSupply() (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ledger == nil {
		return nil, errNilLedger
	}
	return e.ledger.TotalSupply()
}

// Authority returns the configuration authority account.
func (e *Engine) Authority() [20]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.authority
}

// PreviewReward computes the auction reward for hypothetical inputs using
// the current weights. Read-only; no shares are consumed.
func (e *Engine) PreviewReward(shares *big.Int, conditionCount uint64) *big.Int {
	e.mu.Lock()
	cfg := e.auction
	e.mu.Unlock()
	return WeightedReward(shares, conditionCount, cfg.BaseWeightBps, cfg.ExtraWeightBps)
}

// VerifyCondition checks a membership proof against the configured condition
// root. It returns false, never an error, when the root is zero.
func (e *Engine) VerifyCondition(proof [][32]byte, claimant [20]byte, conditionCount uint64) bool {
	e.mu.Lock()
	root := e.auction.ConditionRoot
	e.mu.Unlock()
	return VerifyProof(root, proof, LeafHash(claimant, conditionCount))
}
