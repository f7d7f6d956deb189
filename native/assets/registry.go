package assets

import "errors"

var (
	ErrNilState      = errors.New("assets: state not configured")
	ErrAssetExists   = errors.New("assets: asset already minted")
	ErrAssetNotFound = errors.New("assets: asset not found")
	ErrNotOwner      = errors.New("assets: caller is not the owner")
)

// State is the persistence the registry needs.
type State interface {
	AssetOwner(assetID uint64) ([20]byte, bool, error)
	SetAssetOwner(assetID uint64, owner [20]byte) error
}

// Registry is a minimal non-fungible asset ownership record: each asset id
// maps to exactly one owner. It backs the holding program's ownership checks.
type Registry struct {
	state State
}

// NewRegistry binds the registry to its state.
func NewRegistry(state State) *Registry {
	return &Registry{state: state}
}

// Mint records a new asset under the given owner.
func (r *Registry) Mint(assetID uint64, owner [20]byte) error {
	if r == nil || r.state == nil {
		return ErrNilState
	}
	if _, exists, err := r.state.AssetOwner(assetID); err != nil {
		return err
	} else if exists {
		return ErrAssetExists
	}
	return r.state.SetAssetOwner(assetID, owner)
}

// Transfer moves the asset to a new owner. Only the current owner may call.
func (r *Registry) Transfer(caller [20]byte, assetID uint64, to [20]byte) error {
	if r == nil || r.state == nil {
		return ErrNilState
	}
	owner, exists, err := r.state.AssetOwner(assetID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAssetNotFound
	}
	if owner != caller {
		return ErrNotOwner
	}
	return r.state.SetAssetOwner(assetID, to)
}

// OwnerOf resolves the current owner of the asset.
func (r *Registry) OwnerOf(assetID uint64) ([20]byte, error) {
	if r == nil || r.state == nil {
		return [20]byte{}, ErrNilState
	}
	owner, exists, err := r.state.AssetOwner(assetID)
	if err != nil {
		return [20]byte{}, err
	}
	if !exists {
		return [20]byte{}, ErrAssetNotFound
	}
	return owner, nil
}
