package rewards

import (
	"bytes"
	"encoding/binary"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// zeroRoot marks a program without a condition tree. Verification against it
// always fails, which callers treat as "condition count zero", not as an
// abort.
var zeroRoot [32]byte

// LeafHash derives the condition leaf for a claimant. The encoding is the
// 20-byte account followed by the big-endian uint64 condition count, hashed
// with keccak256.
func LeafHash(account [20]byte, conditionCount uint64) [32]byte {
	buf := make([]byte, len(account)+8)
	copy(buf, account[:])
	binary.BigEndian.PutUint64(buf[len(account):], conditionCount)
	var leaf [32]byte
	copy(leaf[:], ethcrypto.Keccak256(buf))
	return leaf
}

// hashPair combines two nodes in byte order so proofs do not need to carry
// left/right position flags.
func hashPair(a, b [32]byte) [32]byte {
	var node [32]byte
	if bytes.Compare(a[:], b[:]) <= 0 {
		copy(node[:], ethcrypto.Keccak256(a[:], b[:]))
	} else {
		copy(node[:], ethcrypto.Keccak256(b[:], a[:]))
	}
	return node
}

// VerifyProof reports whether folding the leaf through the ordered sibling
// sequence reproduces the root. A zero root always verifies false. An empty
// proof verifies only a zero-depth tree, i.e. leaf == root.
func VerifyProof(root [32]byte, proof [][32]byte, leaf [32]byte) bool {
	if root == zeroRoot {
		return false
	}
	node := leaf
	for _, sibling := range proof {
		node = hashPair(node, sibling)
	}
	return node == root
}

// Tree is a binary Merkle tree over a fixed leaf set using the same
// order-independent pair hashing the verifier expects. Operators use it to
// publish condition roots; tests use it to construct valid proofs.
type Tree struct {
	levels [][][32]byte
}

// NewTree builds the tree bottom-up. An unpaired node at the end of a level
// is promoted unchanged. At least one leaf is required.
func NewTree(leaves [][32]byte) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("rewards: tree requires at least one leaf")
	}
	levels := [][][32]byte{append([][32]byte(nil), leaves...)}
	for current := levels[0]; len(current) > 1; {
		next := make([][32]byte, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			if i+1 < len(current) {
				next = append(next, hashPair(current[i], current[i+1]))
			} else {
				next = append(next, current[i])
			}
		}
		levels = append(levels, next)
		current = next
	}
	return &Tree{levels: levels}, nil
}

// Root returns the tree root.
func (t *Tree) Root() [32]byte {
	if t == nil || len(t.levels) == 0 {
		return zeroRoot
	}
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Proof returns the ordered sibling sequence for the leaf at the given index.
func (t *Tree) Proof(index int) ([][32]byte, error) {
	if t == nil || len(t.levels) == 0 || index < 0 || index >= len(t.levels[0]) {
		return nil, fmt.Errorf("rewards: leaf index out of range")
	}
	proof := make([][32]byte, 0, len(t.levels)-1)
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := index ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		index /= 2
	}
	return proof, nil
}
