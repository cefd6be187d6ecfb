package driver

import (
	"bufio"
	"strconv"

	"github.com/karel-brinda/prophyle/internal/search"
)

// writeHeader emits the "#<bases>" line that precedes every read's window
// lines, per spec.md §6.
func writeHeader(w *bufio.Writer, bases []byte) error {
	if err := w.WriteByte('#'); err != nil {
		return err
	}
	if _, err := w.Write(bases); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// writeRefSetLine emits "<count> <rid0> <rid1> ..." for one window, or
// just "0" when the interval was empty and rids is nil. Reference-set
// output is the only per-window line this driver ever writes; interval
// tracking with output disabled produces no line at all (spec.md §6).
func writeRefSetLine(w *bufio.Writer, iv search.Interval, rids []int) error {
	if iv.Empty() {
		_, err := w.WriteString("0\n")
		return err
	}
	if _, err := w.WriteString(strconv.Itoa(len(rids))); err != nil {
		return err
	}
	for _, rid := range rids {
		if err := w.WriteByte(' '); err != nil {
			return err
		}
		if _, err := w.WriteString(strconv.Itoa(rid)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}
