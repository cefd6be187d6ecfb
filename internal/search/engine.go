// Package search implements the k-mer search engine (C4): cold-start
// backward search over the FM-index, constant-amortised rolling extension
// via the kLCP table, and the per-read window driver that picks between
// them.
//
// Grounded on namsyvo-IVC's seed.go (ForwardSearchFrom), which already
// scans a pattern left-to-right against a reverse-oriented FM-index — the
// same orientation this engine assumes (see DESIGN.md, Open Question 1).
package search

import "github.com/karel-brinda/prophyle/internal/fmindex"
import "github.com/karel-brinda/prophyle/internal/klcp"

// Interval is an inclusive suffix-array range [K, L]. Empty iff K > L.
type Interval struct {
	K, L uint32
}

// Empty reports whether the interval represents no match.
func (iv Interval) Empty() bool { return iv.K > iv.L }

// EmptyInterval is the canonical empty interval.
var EmptyInterval = Interval{K: 1, L: 0}

// Engine couples an FM-index with an optional kLCP table to serve both
// cold-start and rolling queries over the same index. KLCP is nil when
// rolling is disabled, forcing every window through ColdSearch.
type Engine struct {
	Index *fmindex.Index
	KLCP  *klcp.Table
}

// New builds an engine over idx, optionally accelerated by tbl (pass nil
// to disable rolling extension).
func New(idx *fmindex.Index, tbl *klcp.Table) *Engine {
	return &Engine{Index: idx, KLCP: tbl}
}

// ColdSearch performs the classic FM-index backward search over pattern,
// narrowing [0, L_total-1] one symbol at a time. Returns the resulting
// interval and the number of symbols successfully consumed before either
// running out of pattern or hitting an ambiguous base / empty interval.
func (e *Engine) ColdSearch(pattern []byte) (Interval, int) {
	k := uint32(0)
	l := e.Index.Total() - 1
	for i, c := range pattern {
		if fmindex.Ambiguous(c) {
			return EmptyInterval, i
		}
		code, _ := fmindex.Code(c)
		ok, ol, present := e.Index.RangeRank(k, l, code)
		if !present {
			return EmptyInterval, i
		}
		cConst := e.Index.Const(code)
		k = cConst + ok
		l = cConst + ol - 1
		if k > l {
			return EmptyInterval, i + 1
		}
	}
	return Interval{K: k, L: l}, len(pattern)
}

// RollingExtend advances a non-empty interval for the previous window by
// one symbol, dropping the leftmost base and appending newChar, in O(1)
// amortised time via the kLCP table's decrease_k/increase_l navigators.
// Callers must not invoke this with an empty prev or without a configured
// KLCP table; ScanRead enforces both.
func (e *Engine) RollingExtend(prev Interval, newChar byte) Interval {
	if fmindex.Ambiguous(newChar) {
		return EmptyInterval
	}
	kPrime := e.KLCP.DecreaseK(prev.K)
	lPrime := e.KLCP.IncreaseL(prev.L)
	code, _ := fmindex.Code(newChar)
	ok, ol, present := e.Index.RangeRank(kPrime, lPrime, code)
	if !present {
		return EmptyInterval
	}
	cConst := e.Index.Const(code)
	k := cConst + ok
	l := cConst + ol - 1
	if k > l {
		return EmptyInterval
	}
	return Interval{K: k, L: l}
}

// Window is the result of scanning one length-k substring of a read:
// its start position within the read and the SA interval it resolved to.
type Window struct {
	StartPos int
	Interval Interval
}

// SkipAfterFail configures the optional skip-after-fail heuristic (C4,
// spec.md §4.4): once a hit has been seen, the first miss in a fresh run
// of misses jumps start_pos forward by K-2 positions instead of 1.
type SkipAfterFail struct {
	Enabled bool
}

// ScanRead drives a single read across every length-k window, choosing
// cold-search for the first window (and after any ambiguous base or empty
// interval forces a restart) and rolling extension otherwise. It always
// emits one Window per start_pos in [0, len(read)-k] (decision (a) from
// spec.md §9's open question on skip-after-fail output line count), even
// when the skip heuristic advances internal scanning faster than that.
func (e *Engine) ScanRead(read []byte, k int, skip SkipAfterFail) []Window {
	n := len(read) - k
	if n < 0 {
		return nil
	}
	windows := make([]Window, 0, n+1)

	var prev Interval
	havePrev := false
	hadHit := false
	inMissRun := false

	for start := 0; start <= n; start++ {
		var iv Interval

		if havePrev && e.KLCP != nil && !prev.Empty() && !fmindex.Ambiguous(read[start+k-1]) {
			iv = e.RollingExtend(prev, read[start+k-1])
		} else {
			iv, _ = e.ColdSearch(read[start : start+k])
		}

		windows = append(windows, Window{StartPos: start, Interval: iv})

		if !iv.Empty() {
			hadHit = true
			inMissRun = false
		} else if skip.Enabled && hadHit && !inMissRun {
			inMissRun = true
			// The caller-visible window list still gets one line per
			// start_pos; the internal scan state below is what actually
			// skips ahead, by treating the next K-2 positions as already
			// accounted for via synthetic empty windows.
			for skipped := 0; skipped < k-2 && start+1 <= n; skipped++ {
				start++
				windows = append(windows, Window{StartPos: start, Interval: EmptyInterval})
			}
		}

		prev = iv
		havePrev = true
	}
	return windows
}
