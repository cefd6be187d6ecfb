// Package refbuild concatenates a collection of named FASTA sequences
// into the single text the FM-index and kLCP builder operate over,
// together with the offset table internal/fmindex.ReferenceTable needs.
//
// Grounded on namsyvo-IVC's multigenome.go: GetGenome's scanner loop
// (contig-position bookkeeping while appending sequence lines) and
// SaveMultiSeq's name/position file pair, adapted to add an explicit
// separator byte between references (spec.md §3's "plus separators") and
// to drop the SNP/variant-profile concatenation multigenome.go also does,
// which is out of this system's scope.
package refbuild

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/karel-brinda/prophyle/internal/fmindex"
)

// separator delimits references in the concatenated text so no k-mer can
// span two references; it is never a valid base code (fmindex.Code treats
// it as ambiguous, code 4).
const separator = '$'

// Collection is the concatenated reference text plus the table mapping
// text positions back to the reference that owns them.
type Collection struct {
	Seq   []byte
	Refs  *fmindex.ReferenceTable
}

// Build reads a multi-FASTA file and concatenates its records, one
// separator byte between adjacent references, matching GetGenome's
// contig-boundary bookkeeping but recording separator-adjusted offsets.
func Build(path string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("refbuild: failed to open %s: %w", path, err)
	}
	defer f.Close()

	var names []string
	var offsets []uint32
	var lengths []uint32
	seq := make([]byte, 0, 1<<20)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	first := true
	var curLen uint32
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if !first {
				lengths = append(lengths, curLen)
				seq = append(seq, separator)
			}
			first = false
			curLen = 0
			nameField := bytes.SplitN(line[1:], []byte(" "), 2)[0]
			names = append(names, string(nameField))
			offsets = append(offsets, uint32(len(seq)))
		} else {
			seq = append(seq, bytes.ToUpper(line)...)
			curLen += uint32(len(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("refbuild: error reading %s: %w", path, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("refbuild: %s contains no FASTA records", path)
	}
	lengths = append(lengths, curLen)

	refs := fmindex.NewReferenceTable(names, offsets, lengths, uint32(len(seq)))
	return &Collection{Seq: seq, Refs: refs}, nil
}

// Reverse returns seq reversed, the orientation the index subcommand
// builds the FM-index over (see DESIGN.md's scan-direction decision).
// Grounded on search.go's FindLCS, which builds rev_read the same way
// (rev_read[i] = read[read_len-1-i]) before feeding it to a backward
// search over a reverse-oriented index.
func Reverse(seq []byte) []byte {
	n := len(seq)
	out := make([]byte, n)
	for i, b := range seq {
		out[n-1-i] = b
	}
	return out
}
