package reads

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
)

// TextReader reads plain-text reads, either FASTQ (four lines per record:
// header, sequence, '+' separator, quality) or FASTA (two lines per
// record: header, sequence). Format is sniffed from the first header
// byte ('@' vs '>'), the same distinction namsyvo-IVC's ReadReads assumes
// implicitly by always expecting FASTQ.
//
// Grounded on variantcall.go's ReadReads: a bufio.Scanner pulled line by
// line, decoding straight into caller-visible buffers.
type TextReader struct {
	f         *os.File
	scanner   *bufio.Scanner
	fastq     bool
	mate      Mate
	pending   []byte // header line consumed while sniffing format
	malformed int    // count of skipped malformed records, per spec.md §7
}

// OpenText opens path and detects its format from the first line. mate
// tags every Read produced (MateSingle for unpaired input).
func OpenText(path string, mate Mate) (*TextReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reads: failed to open %s: %w", path, err)
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	r := &TextReader{f: f, scanner: scanner, mate: mate}
	if scanner.Scan() {
		line := scanner.Bytes()
		if len(line) > 0 && line[0] == '@' {
			r.fastq = true
		}
		r.pending = append([]byte(nil), line...)
	}
	return r, nil
}

// Next returns up to n decoded reads, or fewer at end of stream. Malformed
// records (e.g. an empty sequence line) are skipped and counted, per
// spec.md §7, without ending the stream; a truncated final record (file
// ends mid-group) ends the stream.
func (r *TextReader) Next(n int) (Batch, bool) {
	batch := Batch{Reads: make([]Read, 0, n)}
	for len(batch.Reads) < n {
		rd, eof := r.readOne()
		if eof {
			return batch, false
		}
		if rd == nil {
			continue // malformed record, skipped and counted
		}
		batch.Reads = append(batch.Reads, *rd)
	}
	return batch, true
}

// Malformed reports the number of records skipped for being undecodable,
// the counter spec.md §7 requires the driver to log.
func (r *TextReader) Malformed() int { return r.malformed }

// readOne parses one record. It returns (nil, true) at true end-of-stream
// (including a truncated trailing group), and (nil, false) for a
// malformed-but-not-final record so the caller keeps pulling.
func (r *TextReader) readOne() (*Read, bool) {
	header, ok := r.nextLine()
	if !ok {
		return nil, true
	}
	seqLine, ok := r.nextLine()
	if !ok {
		return nil, true
	}
	if r.fastq {
		if _, ok := r.nextLine(); !ok { // '+' separator
			return nil, true
		}
		if _, ok := r.nextLine(); !ok { // quality line, read but unused
			return nil, true
		}
	}

	if len(seqLine) == 0 {
		r.malformed++
		return nil, false
	}

	bases := bytes.ToUpper(seqLine)
	codes := make([]byte, len(bases))
	Decode(bases, codes)
	id := string(bytes.TrimLeft(header, "@>"))
	return &Read{ID: id, Bases: bases, Codes: codes, Mate: r.mate}, false
}

func (r *TextReader) nextLine() ([]byte, bool) {
	if r.pending != nil {
		line := r.pending
		r.pending = nil
		return line, true
	}
	if !r.scanner.Scan() {
		return nil, false
	}
	return append([]byte(nil), r.scanner.Bytes()...), true
}

// Close releases the underlying file handle.
func (r *TextReader) Close() error {
	return r.f.Close()
}
