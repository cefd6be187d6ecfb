package search

import (
	"testing"

	"github.com/karel-brinda/prophyle/internal/fmindex"
	"github.com/karel-brinda/prophyle/internal/klcp"
)

// reverseBytes mirrors the orientation the index subcommand builds the
// real FM-index over (see fmindex.Index.PosToRid's doc comment).
func reverseBytes(b []byte) []byte {
	n := len(b)
	out := make([]byte, n)
	for i, c := range b {
		out[n-1-i] = c
	}
	return out
}

func buildEngine(t *testing.T, seq string, refNames []string, refOffsets, refLengths []uint32, k int) *Engine {
	t.Helper()
	refs := fmindex.NewReferenceTable(refNames, refOffsets, refLengths, uint32(len(seq)))
	rev := reverseBytes([]byte(seq))
	idx := fmindex.New(rev, refs)
	b := klcp.Build(rev, idx, k, nil)
	tbl := klcp.New(b, k, idx.Total())
	return New(idx, tbl)
}

// scenario 1 from spec.md §8: reference ACGTACGT (rid 0), k=3, read ACGTAC.
func TestScenario1(t *testing.T) {
	e := buildEngine(t, "ACGTACGT", []string{"ref0"}, []uint32{0}, []uint32{8}, 3)
	windows := e.ScanRead([]byte("ACGTAC"), 3, SkipAfterFail{})
	if len(windows) != 4 {
		t.Fatalf("got %d windows, want 4", len(windows))
	}
	for _, w := range windows {
		if w.Interval.Empty() {
			t.Errorf("window at %d unexpectedly empty", w.StartPos)
		}
	}
}

// scenario 2 from spec.md §8: reference AAAAA (rid 0), k=2, read AAAA: three
// windows, each interval of size 4.
func TestScenario2(t *testing.T) {
	e := buildEngine(t, "AAAAA", []string{"ref0"}, []uint32{0}, []uint32{5}, 2)
	windows := e.ScanRead([]byte("AAAA"), 2, SkipAfterFail{})
	if len(windows) != 3 {
		t.Fatalf("got %d windows, want 3", len(windows))
	}
	for _, w := range windows {
		if w.Interval.Empty() {
			t.Fatalf("window at %d unexpectedly empty", w.StartPos)
		}
		size := w.Interval.L - w.Interval.K + 1
		if size != 4 {
			t.Errorf("window at %d has size %d, want 4", w.StartPos, size)
		}
	}
}

// scenario 4 from spec.md §8: read ACNGT, k=3: every window touching the N
// must be empty.
func TestScenario4AmbiguousBase(t *testing.T) {
	e := buildEngine(t, "ACGTACGT", []string{"ref0"}, []uint32{0}, []uint32{8}, 3)
	windows := e.ScanRead([]byte("ACNGT"), 3, SkipAfterFail{})
	if len(windows) != 3 {
		t.Fatalf("got %d windows, want 3", len(windows))
	}
	for _, w := range windows {
		if !w.Interval.Empty() {
			t.Errorf("window at %d should be empty (touches N), got %v", w.StartPos, w.Interval)
		}
	}
}

func TestReadShorterThanKProducesNoWindows(t *testing.T) {
	e := buildEngine(t, "ACGTACGT", []string{"ref0"}, []uint32{0}, []uint32{8}, 5)
	windows := e.ScanRead([]byte("AC"), 5, SkipAfterFail{})
	if len(windows) != 0 {
		t.Fatalf("got %d windows, want 0", len(windows))
	}
}

func TestAllAmbiguousReadProducesAllEmptyWindows(t *testing.T) {
	e := buildEngine(t, "ACGTACGT", []string{"ref0"}, []uint32{0}, []uint32{8}, 3)
	windows := e.ScanRead([]byte("NNNNN"), 3, SkipAfterFail{})
	if len(windows) != 3 {
		t.Fatalf("got %d windows, want 3", len(windows))
	}
	for _, w := range windows {
		if !w.Interval.Empty() {
			t.Errorf("window at %d should be empty", w.StartPos)
		}
	}
}

// Rolling-equivalence: for every window, RollingExtend from the previous
// window's cold-search interval must agree with ColdSearch on the current
// window. This is the central correctness property from spec.md §8.
func TestRollingMatchesColdSearch(t *testing.T) {
	seq := "ACGTACGTAGCTAGCTACGGTACGTTGCA"
	k := 4
	refs := fmindex.NewReferenceTable([]string{"ref0"}, []uint32{0}, []uint32{uint32(len(seq))}, uint32(len(seq)))
	rev := reverseBytes([]byte(seq))
	idx := fmindex.New(rev, refs)
	b := klcp.Build(rev, idx, k, nil)
	tbl := klcp.New(b, k, idx.Total())
	e := New(idx, tbl)

	read := []byte(seq[2:20])
	n := len(read) - k
	prev, _ := e.ColdSearch(read[0:k])
	for start := 1; start <= n; start++ {
		cold, _ := e.ColdSearch(read[start : start+k])
		var rolled Interval
		if !prev.Empty() {
			rolled = e.RollingExtend(prev, read[start+k-1])
		} else {
			rolled, _ = e.ColdSearch(read[start : start+k])
		}
		if rolled != cold {
			t.Errorf("start=%d: rolling=%v cold=%v mismatch", start, rolled, cold)
		}
		prev = cold
	}
}

func TestSkipAfterFailKeepsOneWindowPerStartPos(t *testing.T) {
	e := buildEngine(t, "ACGTACGT", []string{"ref0"}, []uint32{0}, []uint32{8}, 5)
	// "ACGTA" hits, then four bases of junk that cannot match, per
	// spec.md §8 scenario 5's shape (k=5, so the skip jump is k-2=3).
	read := []byte("ACGTATTTT")
	windows := e.ScanRead(read, 5, SkipAfterFail{Enabled: true})
	wantWindows := len(read) - 5 + 1
	if len(windows) != wantWindows {
		t.Fatalf("got %d windows, want %d (one per start_pos, per decision (a))", len(windows), wantWindows)
	}
}

func TestScenario3TwoReferences(t *testing.T) {
	// scenario 3 from spec.md §8: ACGT|GGGG (two refs), k=2, read CGGG.
	e := buildEngine(t, "ACGTGGGG", []string{"ref0", "ref1"}, []uint32{0, 4}, []uint32{4, 4}, 2)
	windows := e.ScanRead([]byte("CGGG"), 2, SkipAfterFail{})
	if len(windows) != 3 {
		t.Fatalf("got %d windows, want 3", len(windows))
	}
	for _, w := range windows {
		if w.Interval.Empty() {
			t.Errorf("window at %d unexpectedly empty", w.StartPos)
		}
	}
}
