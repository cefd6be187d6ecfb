package fmindex

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ReferenceTable maps a position in the concatenated reference text to the
// reference sequence (rid) that owns it. Grounded on multigenome.go's
// parallel chr_pos/chr_name slices, adapted into one owned value with a
// binary-search lookup instead of package-level globals.
//
// offsets[rid] is where reference rid's own bases start; lengths[rid] is
// how many of them there are. A position in [offsets[rid],
// offsets[rid]+lengths[rid]) belongs to rid; anything else (a separator
// byte between references, or past the end) belongs to none.
type ReferenceTable struct {
	names   []string
	offsets []uint32
	lengths []uint32
	total   uint32
}

// NewReferenceTable builds a table from parallel names/offsets/lengths
// slices, which must already be sorted by offset (refbuild.Build
// guarantees this).
func NewReferenceTable(names []string, offsets, lengths []uint32, total uint32) *ReferenceTable {
	return &ReferenceTable{names: names, offsets: offsets, lengths: lengths, total: total}
}

// NumRefs reports n_refs.
func (t *ReferenceTable) NumRefs() int { return len(t.names) }

// Total reports L_total, the length of the concatenated text the table
// was built for.
func (t *ReferenceTable) Total() uint32 { return t.total }

// Name returns the name of reference rid.
func (t *ReferenceTable) Name(rid int) string { return t.names[rid] }

// PosToRid resolves a text position to the reference id owning it via
// binary search over the sorted offset table, then a bounds check against
// that reference's length so separator bytes and trailing padding
// correctly resolve to nothing. Returns (-1, false) if pos falls outside
// every known reference.
func (t *ReferenceTable) PosToRid(pos uint32) (int, bool) {
	if len(t.offsets) == 0 || pos >= t.total {
		return -1, false
	}
	// sort.Search finds the first offset strictly greater than pos; the
	// owning reference is the one just before it.
	i := sort.Search(len(t.offsets), func(i int) bool { return t.offsets[i] > pos })
	rid := i - 1
	if rid < 0 {
		return -1, false
	}
	if pos >= t.offsets[rid]+t.lengths[rid] {
		return -1, false
	}
	return rid, true
}

// Save writes the reference table as a small text index file: one header
// line with n_refs and total length, then one "name\toffset\tlength" line
// per reference, matching namsyvo-IVC's multigenome.go SaveMultiSeq
// name/pos header format, extended with an explicit length column so
// separator bytes can be distinguished from reference content on load.
func (t *ReferenceTable) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "%d\t%d\n", len(t.names), t.total); err != nil {
		return err
	}
	for i, name := range t.names {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\n", name, t.offsets[i], t.lengths[i]); err != nil {
			return err
		}
	}
	return w.Flush()
}

// LoadReferenceTable reads back the format Save writes.
func LoadReferenceTable(path string) (*ReferenceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewScanner(f)
	if !r.Scan() {
		return nil, fmt.Errorf("fmindex: empty reference table %s", path)
	}
	header := strings.Fields(r.Text())
	if len(header) != 2 {
		return nil, fmt.Errorf("fmindex: malformed reference table header in %s", path)
	}
	n, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, fmt.Errorf("fmindex: malformed reference count in %s: %w", path, err)
	}
	total, err := strconv.ParseUint(header[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("fmindex: malformed total length in %s: %w", path, err)
	}

	names := make([]string, 0, n)
	offsets := make([]uint32, 0, n)
	lengths := make([]uint32, 0, n)
	for r.Scan() {
		line := r.Text()
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) != 3 {
			return nil, fmt.Errorf("fmindex: malformed reference table line %q in %s", line, path)
		}
		off, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("fmindex: malformed offset in %s: %w", path, err)
		}
		length, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("fmindex: malformed length in %s: %w", path, err)
		}
		names = append(names, parts[0])
		offsets = append(offsets, uint32(off))
		lengths = append(lengths, uint32(length))
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if len(names) != n {
		return nil, fmt.Errorf("fmindex: reference table %s declared %d references, found %d", path, n, len(names))
	}
	return &ReferenceTable{names: names, offsets: offsets, lengths: lengths, total: uint32(total)}, nil
}
