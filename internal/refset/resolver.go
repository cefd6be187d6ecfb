// Package refset implements the reference-set resolver (C5): given a
// non-empty SA interval, produce the deduplicated, order-of-first-
// appearance list of reference ids it intersects.
//
// Grounded on spec.md §4.5's pseudocode directly; namsyvo-IVC has no
// equivalent (it resolves matches straight to genome coordinates for
// variant calling, never to a small reference-id set). The `seen` scratch
// array technique itself mirrors the flag-array idiom namsyvo-IVC uses for
// its own per-run dedup state in callsnp.go (SNP position tracking by an
// indexed bool array rather than a map).
package refset

import (
	"github.com/karel-brinda/prophyle/internal/fmindex"
	"github.com/karel-brinda/prophyle/internal/search"
)

// Resolver owns the seen scratch array so it can be reused across windows
// and, in parallel mode, across the reads handled by one worker, without
// reallocating per call.
type Resolver struct {
	seen []bool
	list []int
}

// New allocates a resolver sized for nRefs reference ids.
func New(nRefs int) *Resolver {
	return &Resolver{seen: make([]bool, nRefs), list: make([]int, 0, 16)}
}

// Resolve returns the deduplicated reference ids intersecting iv, in
// SA-scan order of first appearance. seen is guaranteed zero on entry and
// is restored to zero before returning, regardless of how many cells were
// touched. The returned slice is owned by r and is invalidated by the next
// call; callers must consume it before resolving the next window.
func (r *Resolver) Resolve(idx *fmindex.Index, iv search.Interval) []int {
	r.list = r.list[:0]
	if iv.Empty() {
		return r.list
	}
	for t := iv.K; t <= iv.L; t++ {
		pos := idx.SAToPos(t)
		rid, ok := idx.PosToRid(pos)
		if !ok || r.seen[rid] {
			continue
		}
		r.seen[rid] = true
		r.list = append(r.list, rid)
	}
	for _, rid := range r.list {
		r.seen[rid] = false
	}
	return r.list
}
