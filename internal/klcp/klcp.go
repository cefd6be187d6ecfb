// Package klcp implements the kLCP auxiliary structure: a bitvector over
// suffix-array positions plus the two navigation primitives rolling
// extension needs, decrease_k and increase_l.
//
// Grounded on no direct namsyvo-IVC analogue (it never builds an
// auxiliary LCP structure; it re-seeds a fresh backward search per
// position). The navigation contract itself is spec-defined; the storage
// underneath is internal/bitvector (C1).
package klcp

import "github.com/karel-brinda/prophyle/internal/bitvector"

// Table wraps a frozen bitvector B built for a fixed k: B[i] = 1 iff the
// suffixes at suffix-array positions i and i+1 share a common prefix of
// length at least K.
type Table struct {
	B     *bitvector.BitVector
	K     int
	Total uint32 // L_total the table was built against
}

// New wraps an already-built bitvector as a kLCP table for k against a text
// of the given total length.
func New(b *bitvector.BitVector, k int, total uint32) *Table {
	return &Table{B: b, K: k, Total: total}
}

// DecreaseK returns decrease_k(i): the left end of the k-run containing
// suffix-array position i, i.e. the largest j <= i such that B[j-1] = 0 or
// j = 0.
//
// B[j-1] = 0 means position j-1 is not joined to j by a shared k-prefix, so
// the run starts at j: IterZeroLeftOf(i-1) finds the nearest such boundary
// at or before i-1, and the run start is one past it. IterZeroLeftOf
// reports position 0 both when bit 0 is a genuine zero and, as a fallback,
// when no zero exists anywhere in [0, i-1]; IsSet(0) disambiguates the two.
func (t *Table) DecreaseK(i uint32) uint32 {
	if i == 0 {
		return 0
	}
	zero := t.B.IterZeroLeftOf(i - 1)
	if zero == 0 && t.B.IsSet(0) {
		return 0
	}
	return zero + 1
}

// IncreaseL returns increase_l(i): the right end of the k-run containing
// suffix-array position i, i.e. the smallest j >= i such that B[j] = 0.
// Bit Total-1 is zero by convention, so this always terminates within
// range.
func (t *Table) IncreaseL(i uint32) uint32 {
	return t.B.IterZeroRightOf(i)
}
