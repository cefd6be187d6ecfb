// Package fmindex adapts the external, already-built FM-index
// (github.com/vtphan/fmi) to the four-operation surface the k-mer search
// engine needs: rank_c, the paired range_rank used by backward search,
// suffix-array-position lookup, and position-to-reference-id resolution.
//
// The FM-index itself — its BWT, its C/OCC tables, its suffix-array
// sampling — is built entirely by github.com/vtphan/fmi; this package
// never touches BWT construction, matching spec.md's stated non-goal.
//
// Grounded on namsyvo-IVC's search.go (Search.Init, Search.BackwardSearch)
// and share.go (the Index wrapper struct around fmi.Index).
package fmindex

import (
	"bytes"
	"fmt"

	"github.com/vtphan/fmi"
)

// bases maps a 2-bit base code (0=A, 1=C, 2=G, 3=T) to the byte alphabet
// the underlying fmi.Index was built over. Code 4 (ambiguous) is never
// looked up: callers must check for it before calling into this package.
var bases = [4]byte{'A', 'C', 'G', 'T'}

// Code returns the base code (0-3) for a raw sequence byte, or (4, false)
// if the byte is not one of A/C/G/T.
func Code(b byte) (byte, bool) {
	switch b {
	case 'A':
		return 0, true
	case 'C':
		return 1, true
	case 'G':
		return 2, true
	case 'T':
		return 3, true
	default:
		return 4, false
	}
}

// Base returns the ASCII byte for a base code (0-3), or 'N' for the
// ambiguous code (4) and anything else out of range. Inverse of Code.
func Base(code byte) byte {
	if code > 3 {
		return 'N'
	}
	return bases[code]
}

// Index wraps a loaded FM-index (built over the reversed reference text,
// see SPEC_FULL.md §0) together with the reference-name table needed to
// turn a suffix-array position into a reference id.
type Index struct {
	fmi  *fmi.Index
	refs *ReferenceTable
}

// Load reads the FM-index at prefix+".index" (the layout github.com/vtphan/fmi
// writes with Index.Save) and pairs it with refs for position-to-rid
// resolution.
func Load(prefix string, refs *ReferenceTable) (*Index, error) {
	idx := fmi.Load(prefix + ".index")
	if idx == nil {
		return nil, fmt.Errorf("fmindex: failed to load index at %s", prefix)
	}
	return &Index{fmi: idx, refs: refs}, nil
}

// New builds a fresh FM-index over seq (already reversed by the caller,
// see internal/refbuild) and pairs it with refs. Used by the `index`
// subcommand.
func New(seq []byte, refs *ReferenceTable) *Index {
	return &Index{fmi: fmi.New(seq), refs: refs}
}

// Save persists the FM-index to prefix+".index".
func (ix *Index) Save(prefix string) {
	ix.fmi.Save(prefix)
}

// Total returns L_total, the length of the indexed text.
func (ix *Index) Total() uint32 {
	return ix.fmi.LEN
}

// Const returns C[c], the count of symbols lexicographically smaller than
// c in the indexed text.
func (ix *Index) Const(c byte) uint32 {
	return ix.fmi.C[bases[c]]
}

// RankC returns occ(i, c): the number of occurrences of base c in
// bwt[0..i]. Positions below zero have rank zero by convention, matching
// the paired range_rank formula in spec.md §4.4.
func (ix *Index) RankC(i int64, c byte) uint32 {
	if i < 0 {
		return 0
	}
	occ, ok := ix.fmi.OCC[bases[c]]
	if !ok {
		return 0
	}
	return occ[i]
}

// RangeRank performs the paired rank query at the two ends of an interval
// in one call, as spec.md §4.2 requires: range_rank(k, l, c) = (occ(k-1,
// c), occ(l, c)). The bool return reports whether c even occurs in the
// text (mirroring fmi.Index.C's map lookup); when false the interval is
// necessarily empty.
func (ix *Index) RangeRank(k, l uint32, c byte) (ok, ol uint32, present bool) {
	occ, has := ix.fmi.OCC[bases[c]]
	if !has {
		return 0, 0, false
	}
	if k == 0 {
		ok = 0
	} else {
		ok = occ[k-1]
	}
	ol = occ[l]
	return ok, ol, true
}

// SAToPos returns the text position of suffix-array row t.
func (ix *Index) SAToPos(t uint32) uint32 {
	return ix.fmi.SA[t]
}

// PosToRid resolves a suffix-array-sampled text position to a reference
// id. The FM-index is built over the reversed reference text (see
// SPEC_FULL.md §0), so pos is a position in that reversed text; it is
// mirrored back into the reference table's forward coordinate space
// before lookup. Returns (-1, false) if the position falls on the
// terminator byte or in inter-reference padding.
func (ix *Index) PosToRid(pos uint32) (int, bool) {
	total := ix.refs.Total()
	if pos >= total {
		return -1, false
	}
	forwardPos := total - 1 - pos
	return ix.refs.PosToRid(forwardPos)
}

// References exposes the reference-name table paired with this index.
func (ix *Index) References() *ReferenceTable {
	return ix.refs
}

// Ambiguous reports whether byte c is outside {A,C,G,T}.
func Ambiguous(c byte) bool {
	return bytes.IndexByte([]byte("ACGT"), c) < 0
}
