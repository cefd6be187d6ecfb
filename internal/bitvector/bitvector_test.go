package bitvector

import "testing"

func fromBits(pattern string) *BitVector {
	b := New(uint32(len(pattern)))
	for i, c := range pattern {
		if c == '1' {
			b.Set(uint32(i))
		}
	}
	b.Freeze()
	return b
}

func TestIsSet(t *testing.T) {
	b := fromBits("101100")
	want := []bool{true, false, true, true, false, false}
	for i, w := range want {
		if got := b.IsSet(uint32(i)); got != w {
			t.Errorf("IsSet(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestRank1(t *testing.T) {
	b := fromBits("101100")
	cases := []struct {
		i    uint32
		want uint32
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 3}, {4, 3}, {5, 3},
	}
	for _, c := range cases {
		if got := b.Rank1(c.i); got != c.want {
			t.Errorf("Rank1(%d) = %d, want %d", c.i, got, c.want)
		}
	}
}

func TestRank1AcrossWords(t *testing.T) {
	n := uint32(200)
	b := New(n)
	for i := uint32(0); i < n; i += 3 {
		b.Set(i)
	}
	b.Freeze()
	var want uint32
	for i := uint32(0); i < n; i++ {
		if i%3 == 0 {
			want++
		}
		if got := b.Rank1(i); got != want {
			t.Fatalf("Rank1(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestIterZeroLeftOf(t *testing.T) {
	// runs of 1s at [1,2], [4,5]; zeros at 0,3,6
	b := fromBits("0110110")
	cases := []struct{ i, want uint32 }{
		{0, 0}, {1, 0}, {2, 0}, {3, 3}, {4, 3}, {5, 3}, {6, 6},
	}
	for _, c := range cases {
		if got := b.IterZeroLeftOf(c.i); got != c.want {
			t.Errorf("IterZeroLeftOf(%d) = %d, want %d", c.i, got, c.want)
		}
	}
}

func TestIterZeroRightOf(t *testing.T) {
	b := fromBits("0110110")
	cases := []struct{ i, want uint32 }{
		{0, 0}, {1, 3}, {2, 3}, {3, 3}, {4, 6}, {5, 6}, {6, 6},
	}
	for _, c := range cases {
		if got := b.IterZeroRightOf(c.i); got != c.want {
			t.Errorf("IterZeroRightOf(%d) = %d, want %d", c.i, got, c.want)
		}
	}
}

func TestIterZeroSpansWordBoundary(t *testing.T) {
	n := uint32(130)
	b := New(n)
	for i := uint32(0); i < n; i++ {
		b.Set(i)
	}
	// leave three isolated zeros
	b.words[0] &^= 1 << 5 // bit 5
	zeroAt := uint32(70)
	b.words[zeroAt/64] &^= 1 << (zeroAt % 64)
	b.words[len(b.words)-1] &^= 1 << ((n - 1) % 64) // bit n-1, convention zero
	b.Freeze()

	if got := b.IterZeroLeftOf(10); got != 5 {
		t.Errorf("IterZeroLeftOf(10) = %d, want 5", got)
	}
	if got := b.IterZeroRightOf(66); got != 70 {
		t.Errorf("IterZeroRightOf(66) = %d, want 70", got)
	}
	if got := b.IterZeroLeftOf(n - 1); got != n-1 {
		t.Errorf("IterZeroLeftOf(n-1) = %d, want %d", got, n-1)
	}
}
