// Package bitvector implements a packed, read-only bit array with O(1)
// rank and nearest-zero queries over 64-bit superblocks.
//
// This is the C1 component: it underlies the kLCP structure (package
// klcp), which needs decrease_k/increase_l to run in O(1) amortised time
// per spec. No compression beyond one bit per position is attempted; the
// index is built once at construction time and never mutated afterward.
package bitvector

import "math/bits"

const (
	wordBits       = 64
	superblockBits = 512
	wordsPerBlock  = superblockBits / wordBits
)

// BitVector is a packed array of bits with precomputed rank blocks.
// Zero value is not usable; construct with New or NewFromWords.
type BitVector struct {
	words     []uint64
	n         uint32
	blockRank []uint32 // blockRank[b] = rank1 of all bits strictly before superblock b
}

// New allocates a zeroed bitvector of n bits. Callers set bits with Set,
// then call Freeze once before querying.
func New(n uint32) *BitVector {
	nw := (int(n) + wordBits - 1) / wordBits
	if nw == 0 {
		nw = 1
	}
	return &BitVector{words: make([]uint64, nw), n: n}
}

// NewFromWords wraps an already-packed little-endian word slice (as read
// from a kLCP file) as a bitvector of n bits and builds its rank index.
func NewFromWords(words []uint64, n uint32) *BitVector {
	b := &BitVector{words: words, n: n}
	b.Freeze()
	return b
}

// Len reports the number of addressable bits.
func (b *BitVector) Len() uint32 { return b.n }

// Words exposes the packed storage, e.g. for serialization.
func (b *BitVector) Words() []uint64 { return b.words }

// Set sets bit i to 1. Must be called before Freeze.
func (b *BitVector) Set(i uint32) {
	b.words[i/wordBits] |= 1 << (i % wordBits)
}

// Freeze computes the superblock rank index. Must be called once after all
// Set calls and before any IsSet/Rank1/IterZero* query.
func (b *BitVector) Freeze() {
	numBlocks := (len(b.words) + wordsPerBlock - 1) / wordsPerBlock
	b.blockRank = make([]uint32, numBlocks+1)
	var running uint32
	for blk := 0; blk < numBlocks; blk++ {
		b.blockRank[blk] = running
		start := blk * wordsPerBlock
		end := start + wordsPerBlock
		if end > len(b.words) {
			end = len(b.words)
		}
		for w := start; w < end; w++ {
			running += uint32(bits.OnesCount64(b.words[w]))
		}
	}
	b.blockRank[numBlocks] = running
}

// IsSet reports whether bit i is 1.
func (b *BitVector) IsSet(i uint32) bool {
	return b.words[i/wordBits]&(1<<(i%wordBits)) != 0
}

// Rank1 returns the number of 1-bits in [0, i], inclusive. O(1) via a
// superblock prefix count plus a masked popcount over the remaining words.
func (b *BitVector) Rank1(i uint32) uint32 {
	wordIdx := i / wordBits
	blk := int(wordIdx) / wordsPerBlock
	count := b.blockRank[blk]
	blockStart := blk * wordsPerBlock
	for w := blockStart; w < int(wordIdx); w++ {
		count += uint32(bits.OnesCount64(b.words[w]))
	}
	bitOff := i % wordBits
	mask := uint64(1)<<(bitOff+1) - 1
	if bitOff == wordBits-1 {
		mask = ^uint64(0)
	}
	count += uint32(bits.OnesCount64(b.words[wordIdx] & mask))
	return count
}

// IterZeroLeftOf returns the position of the nearest 0-bit at or before i.
// If no 0-bit exists in [0, i] it returns 0, the same value a genuine zero
// at bit 0 yields; callers that must tell the two apart check IsSet(0).
func (b *BitVector) IterZeroLeftOf(i uint32) uint32 {
	wordIdx := int(i / wordBits)
	bitOff := i % wordBits
	// mask off bits above bitOff, then look for the highest zero bit that
	// remains after inverting.
	mask := uint64(1)<<(bitOff+1) - 1
	if bitOff == wordBits-1 {
		mask = ^uint64(0)
	}
	w := (^b.words[wordIdx]) & mask
	if w != 0 {
		hi := 63 - bits.LeadingZeros64(w)
		return uint32(wordIdx)*wordBits + uint32(hi)
	}
	for wordIdx--; wordIdx >= 0; wordIdx-- {
		w = ^b.words[wordIdx]
		if w != 0 {
			hi := 63 - bits.LeadingZeros64(w)
			return uint32(wordIdx)*wordBits + uint32(hi)
		}
	}
	return 0
}

// IterZeroRightOf returns the position of the nearest 0-bit at or after i.
func (b *BitVector) IterZeroRightOf(i uint32) uint32 {
	wordIdx := int(i / wordBits)
	bitOff := i % wordBits
	mask := ^(uint64(1)<<bitOff - 1)
	w := (^b.words[wordIdx]) & mask
	if w != 0 {
		return uint32(wordIdx)*wordBits + uint32(bits.TrailingZeros64(w))
	}
	for wordIdx++; wordIdx < len(b.words); wordIdx++ {
		w = ^b.words[wordIdx]
		if w != 0 {
			return uint32(wordIdx)*wordBits + uint32(bits.TrailingZeros64(w))
		}
	}
	return b.n - 1
}
