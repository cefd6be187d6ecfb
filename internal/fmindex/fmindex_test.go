package fmindex

import "testing"

func TestCode(t *testing.T) {
	cases := []struct {
		b    byte
		code byte
		ok   bool
	}{
		{'A', 0, true}, {'C', 1, true}, {'G', 2, true}, {'T', 3, true},
		{'N', 4, false}, {'$', 4, false},
	}
	for _, c := range cases {
		code, ok := Code(c.b)
		if code != c.code || ok != c.ok {
			t.Errorf("Code(%q) = (%d, %v), want (%d, %v)", c.b, code, ok, c.code, c.ok)
		}
	}
}

func TestAmbiguous(t *testing.T) {
	for _, b := range []byte{'A', 'C', 'G', 'T'} {
		if Ambiguous(b) {
			t.Errorf("Ambiguous(%q) = true, want false", b)
		}
	}
	for _, b := range []byte{'N', '$', 'x'} {
		if !Ambiguous(b) {
			t.Errorf("Ambiguous(%q) = false, want true", b)
		}
	}
}

// reverseBytes mirrors the orientation the index subcommand builds the
// real FM-index over (see PosToRid's doc comment).
func reverseBytes(b []byte) []byte {
	n := len(b)
	out := make([]byte, n)
	for i, c := range b {
		out[n-1-i] = c
	}
	return out
}

// buildTestIndex builds a small real FM-index over the reverse of seq and
// pairs it with a one-reference table spanning seq's forward coordinates,
// for exercising the adaptor's query surface without needing a
// file-backed index.
func buildTestIndex(t *testing.T, seq string) *Index {
	t.Helper()
	refs := NewReferenceTable([]string{"ref0"}, []uint32{0}, []uint32{uint32(len(seq))}, uint32(len(seq)))
	return New(reverseBytes([]byte(seq)), refs)
}

func TestConstAndTotal(t *testing.T) {
	// "$" terminator is appended internally by github.com/vtphan/fmi; Total
	// reports the length including it.
	ix := buildTestIndex(t, "ACGTACGT")
	if ix.Total() == 0 {
		t.Fatal("Total() = 0, want > 0")
	}
	// C[c] is monotonically non-decreasing across A < C < G < T.
	cA := ix.Const(0)
	cC := ix.Const(1)
	cG := ix.Const(2)
	cT := ix.Const(3)
	if !(cA <= cC && cC <= cG && cG <= cT) {
		t.Errorf("C[] not monotone: A=%d C=%d G=%d T=%d", cA, cC, cG, cT)
	}
}

func TestRangeRankPresence(t *testing.T) {
	ix := buildTestIndex(t, "ACGTACGT")
	_, _, present := ix.RangeRank(0, ix.Total()-1, 0)
	if !present {
		t.Error("RangeRank for base A should be present in ACGTACGT")
	}
}

func TestRankCNegativeIndex(t *testing.T) {
	ix := buildTestIndex(t, "ACGTACGT")
	if got := ix.RankC(-1, 0); got != 0 {
		t.Errorf("RankC(-1, A) = %d, want 0", got)
	}
}

func TestSAToPosAndPosToRid(t *testing.T) {
	ix := buildTestIndex(t, "ACGT")
	for t32 := uint32(0); t32 < ix.Total(); t32++ {
		pos := ix.SAToPos(t32)
		// The terminator byte github.com/vtphan/fmi appends sits outside the
		// reference table's span and correctly resolves to nothing.
		if rid, ok := ix.PosToRid(pos); ok && rid != 0 {
			t.Errorf("PosToRid(%d) = %d, want 0", pos, rid)
		}
	}
}
