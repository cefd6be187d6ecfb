package klcp

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/karel-brinda/prophyle/internal/bitvector"
	"github.com/karel-brinda/prophyle/internal/fmindex"
)

// magic identifies a kLCP file; version bumps on format change.
const (
	magic   uint32 = 0x4b4c4350 // "KLCP"
	version uint32 = 1
)

// Build performs the direct-LCP-scan construction spec.md §4.7 offers as
// option (a): for each adjacent suffix-array pair, walk both suffixes
// (bounded at k characters) to decide whether their shared prefix reaches
// length k. Chosen over a BWT-only linear construction because the caller
// (the index subcommand) already holds the full text in memory, the same
// premise namsyvo-IVC's index build makes about its package-level SEQ.
//
// progress, if non-nil, is called once per adjacent pair examined
// (total-1 calls), letting the caller drive a bounded-length progress bar
// since L_total is known ahead of the scan; pass nil to skip reporting.
func Build(seq []byte, idx *fmindex.Index, k int, progress func()) *bitvector.BitVector {
	total := idx.Total()
	b := bitvector.New(total)
	for i := uint32(0); i+1 < total; i++ {
		if sharesKPrefix(seq, idx.SAToPos(i), idx.SAToPos(i+1), k) {
			b.Set(i)
		}
		if progress != nil {
			progress()
		}
	}
	// Bit total-1 is left unset (zero), matching the documented convention.
	b.Freeze()
	return b
}

// sharesKPrefix reports whether seq[p..] and seq[q..] agree on their first
// k bytes. Suffixes shorter than k characters from end-of-text cannot
// reach length k and compare unequal at the missing tail.
func sharesKPrefix(seq []byte, p, q uint32, k int) bool {
	if p == q {
		return true
	}
	for i := 0; i < k; i++ {
		pi, qi := p+uint32(i), q+uint32(i)
		if pi >= uint32(len(seq)) || qi >= uint32(len(seq)) {
			return false
		}
		if seq[pi] != seq[qi] {
			return false
		}
	}
	return true
}

// SaveKLCP writes the packed bitvector to <prefix>.<k>.bit.klcp: a header
// of magic, version, k, L_total, followed by the little-endian 64-bit
// words, per the external file-layout contract.
func SaveKLCP(prefix string, k int, total uint32, b *bitvector.BitVector) error {
	path := fmt.Sprintf("%s.%d.bit.klcp", prefix, k)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	header := []uint32{magic, version, uint32(k), total}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	for _, word := range b.Words() {
		if err := binary.Write(w, binary.LittleEndian, word); err != nil {
			return err
		}
	}
	return w.Flush()
}

// LoadKLCP reads back a file written by SaveKLCP, validating its header
// against the runtime k and the loaded FM-index's total length. A mismatch
// on either is the "kLCP-mismatch" fatal error class.
func LoadKLCP(prefix string, k int, expectedTotal uint32) (*Table, error) {
	path := fmt.Sprintf("%s.%d.bit.klcp", prefix, k)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("klcp: failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var gotMagic, gotVersion, gotK, gotTotal uint32
	for _, dst := range []*uint32{&gotMagic, &gotVersion, &gotK, &gotTotal} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, fmt.Errorf("klcp: malformed header in %s: %w", path, err)
		}
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("klcp: %s is not a kLCP file (bad magic)", path)
	}
	if gotVersion != version {
		return nil, fmt.Errorf("klcp: %s has unsupported version %d", path, gotVersion)
	}
	if gotK != uint32(k) {
		return nil, fmt.Errorf("klcp: kLCP-mismatch: %s was built for k=%d, runtime requested k=%d", path, gotK, k)
	}
	if gotTotal != expectedTotal {
		return nil, fmt.Errorf("klcp: kLCP-mismatch: %s covers L_total=%d, loaded index has L_total=%d", path, gotTotal, expectedTotal)
	}

	nWords := (int(gotTotal) + 63) / 64
	if nWords == 0 {
		nWords = 1
	}
	words := make([]uint64, nWords)
	for i := range words {
		if err := binary.Read(r, binary.LittleEndian, &words[i]); err != nil {
			return nil, fmt.Errorf("klcp: truncated bitvector data in %s: %w", path, err)
		}
	}

	bv := bitvector.NewFromWords(words, gotTotal)
	return New(bv, k, gotTotal), nil
}
