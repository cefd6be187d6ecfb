package reads

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// BinaryReader reads the binary-packed read container spec.md §6 names as
// an alternative to text input: a sequence of fixed-shape records, each
// [1-byte mate flag][4-byte little-endian name length][name][4-byte
// little-endian sequence length][sequence bytes]. Mirrors the length-
// prefixed encoding/binary style github.com/vtphan/fmi's own Save/Load
// use for the FM-index artifacts, applied here to read records instead.
type BinaryReader struct {
	f         *os.File
	r         *bufio.Reader
	filter    Mate // MateSingle means "no filtering, accept everything"
	malformed int
}

// OpenBinary opens path for binary-packed reads. filter restricts the
// stream to one mate (MateFirst/MateSecond); pass MateSingle to accept
// every record regardless of its stored mate tag.
func OpenBinary(path string, filter Mate) (*BinaryReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reads: failed to open %s: %w", path, err)
	}
	return &BinaryReader{f: f, r: bufio.NewReader(f), filter: filter}, nil
}

// Next returns up to n decoded reads passing the configured mate filter,
// or fewer at end of stream.
func (r *BinaryReader) Next(n int) (Batch, bool) {
	batch := Batch{Reads: make([]Read, 0, n)}
	for len(batch.Reads) < n {
		rd, eof := r.readOne()
		if eof {
			return batch, false
		}
		if rd == nil {
			continue // filtered out or malformed, keep pulling
		}
		batch.Reads = append(batch.Reads, *rd)
	}
	return batch, true
}

// Malformed reports the number of skipped undecodable records.
func (r *BinaryReader) Malformed() int { return r.malformed }

func (r *BinaryReader) readOne() (*Read, bool) {
	var mateByte byte
	if err := binary.Read(r.r, binary.LittleEndian, &mateByte); err != nil {
		return nil, true
	}
	mate := Mate(mateByte)

	name, err := readLengthPrefixed(r.r)
	if err != nil {
		r.malformed++
		return nil, false
	}
	seq, err := readLengthPrefixed(r.r)
	if err != nil {
		r.malformed++
		return nil, false
	}

	if r.filter != MateSingle && mate != r.filter {
		return nil, false
	}
	if len(seq) == 0 || mate > MateSecond {
		r.malformed++
		return nil, false
	}

	bases := bytes.ToUpper(seq)
	codes := make([]byte, len(bases))
	Decode(bases, codes)
	return &Read{ID: string(name), Bases: bases, Codes: codes, Mate: mate}, false
}

func readLengthPrefixed(r *bufio.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close releases the underlying file handle.
func (r *BinaryReader) Close() error {
	return r.f.Close()
}
