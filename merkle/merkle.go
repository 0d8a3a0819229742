// Package merkle implements the Cryptonote transaction tree: the root of an
// arbitrary number of leaves, authentication branches and root recovery
// from a branch.
//
// The tree is not padded. With n leaves and cnt the largest power of two
// not above n, the first 2*cnt-n leaves move up unchanged and the remaining
// leaves are hashed in pairs, leaving a perfect tree of cnt nodes.
package merkle

import (
	"fmt"
	"math/bits"

	"github.com/bitfsorg/libcryptonote-go/wire"
)

// HashFunc hashes arbitrary data to a 32-byte digest.
type HashFunc func(data []byte) wire.Hash

// MaxDepth is the deepest branch a path bitfield can describe.
const MaxDepth = 8 * wire.HashSize

func hashPair(h HashFunc, left, right *wire.Hash) wire.Hash {
	var buf [2 * wire.HashSize]byte
	copy(buf[:wire.HashSize], left[:])
	copy(buf[wire.HashSize:], right[:])
	return h(buf[:])
}

// Depth returns the branch length for the first leaf of a tree with count
// leaves, floor(log2(count)).
func Depth(count int) int {
	return wire.TreeDepth(uint64(count))
}

func perfectWidth(count int) int {
	return 1 << (bits.Len(uint(count)) - 1)
}

// fold reduces the leaves to a perfect level of cnt nodes.
func fold(hashes []wire.Hash, h HashFunc) []wire.Hash {
	n := len(hashes)
	cnt := perfectWidth(n)
	keep := 2*cnt - n
	level := make([]wire.Hash, cnt)
	copy(level, hashes[:keep])
	for i, j := keep, keep; j < cnt; i, j = i+2, j+1 {
		level[j] = hashPair(h, &hashes[i], &hashes[i+1])
	}
	return level
}

// TreeHash returns the root of hashes. An empty list yields the zero hash
// and a single leaf is its own root.
func TreeHash(hashes []wire.Hash, h HashFunc) wire.Hash {
	switch len(hashes) {
	case 0:
		return wire.ZeroHash
	case 1:
		return hashes[0]
	}
	level := fold(hashes, h)
	for len(level) > 1 {
		for j := 0; j < len(level)/2; j++ {
			level[j] = hashPair(h, &level[2*j], &level[2*j+1])
		}
		level = level[:len(level)/2]
	}
	return level[0]
}

// TreeBranch returns the authentication branch of the leaf at index,
// ordered root first, together with its path bitfield. Bit d of the path
// (byte d/8, bit d%8) is set when the running hash is the right operand at
// branch position d.
func TreeBranch(hashes []wire.Hash, index int, h HashFunc) ([]wire.Hash, []byte, error) {
	n := len(hashes)
	if n == 0 {
		return nil, nil, ErrEmpty
	}
	if index < 0 || index >= n {
		return nil, nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, n)
	}

	cnt := perfectWidth(n)
	keep := 2*cnt - n

	// Bottom-up siblings and whether the running hash was on the right.
	var siblings []wire.Hash
	var right []bool
	pos := index
	if index >= keep {
		pair := index - (index-keep)%2
		sibling := pair + 1
		if index == sibling {
			sibling = pair
		}
		siblings = append(siblings, hashes[sibling])
		right = append(right, index != pair)
		pos = keep + (index-keep)/2
	}

	level := fold(hashes, h)
	for len(level) > 1 {
		siblings = append(siblings, level[pos^1])
		right = append(right, pos&1 == 1)
		for j := 0; j < len(level)/2; j++ {
			level[j] = hashPair(h, &level[2*j], &level[2*j+1])
		}
		level = level[:len(level)/2]
		pos >>= 1
	}

	depth := len(siblings)
	if depth == 0 {
		return nil, nil, nil
	}
	if depth > MaxDepth {
		return nil, nil, fmt.Errorf("%w: %d", ErrBranchTooDeep, depth)
	}
	branch := make([]wire.Hash, depth)
	path := make([]byte, (depth+7)/8)
	for k := range siblings {
		d := depth - 1 - k
		branch[d] = siblings[k]
		if right[k] {
			path[d>>3] |= 1 << (d & 7)
		}
	}
	return branch, path, nil
}

// CoinbaseBranch returns the branch of the first leaf, the miner
// transaction. Its length is Depth(len(hashes)).
func CoinbaseBranch(hashes []wire.Hash, h HashFunc) ([]wire.Hash, error) {
	branch, _, err := TreeBranch(hashes, 0, h)
	return branch, err
}

// TreeHashFromBranch recomputes the root from a root-first branch, the leaf
// and its path bitfield. A nil path addresses the leftmost leaf.
func TreeHashFromBranch(branch []wire.Hash, leaf wire.Hash, path []byte, h HashFunc) (wire.Hash, error) {
	if len(branch) > MaxDepth {
		return wire.Hash{}, fmt.Errorf("%w: %d", ErrBranchTooDeep, len(branch))
	}
	cur := leaf
	for d := len(branch) - 1; d >= 0; d-- {
		if pathBit(path, d) {
			cur = hashPair(h, &branch[d], &cur)
		} else {
			cur = hashPair(h, &cur, &branch[d])
		}
	}
	return cur, nil
}

// VerifyBranch reports whether leaf and branch recompute root.
func VerifyBranch(branch []wire.Hash, leaf wire.Hash, path []byte, root wire.Hash, h HashFunc) bool {
	got, err := TreeHashFromBranch(branch, leaf, path, h)
	return err == nil && got == root
}

func pathBit(path []byte, d int) bool {
	i := d >> 3
	return i < len(path) && path[i]&(1<<(d&7)) != 0
}
