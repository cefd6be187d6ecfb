// Package driver runs the read-stream scan: pull batches from a
// reads.Reader, invoke the search engine and reference-set resolver per
// window, and write the result lines. Sequential mode is a plain loop;
// parallel mode fans reads out to worker goroutines over a bounded
// channel, each with a private resolver, and restores input order with a
// reorder buffer before writing.
//
// Grounded on variantcall.go's CallVariants/ReadReads/FindVariants
// (read_data channel + sync.WaitGroup fan-out) and share.go's PrintMemStats
// timing idiom, generalized from paired-end variant calling to independent
// per-read k-mer scanning.
package driver

import (
	"bufio"
	"container/heap"
	"io"
	"log"
	"sync"
	"time"

	"github.com/karel-brinda/prophyle/internal/config"
	"github.com/karel-brinda/prophyle/internal/fmindex"
	"github.com/karel-brinda/prophyle/internal/reads"
	"github.com/karel-brinda/prophyle/internal/refset"
	"github.com/karel-brinda/prophyle/internal/search"
)

// defaultBatchSize is the design-default read batch size from spec.md
// §4.6, subject to memory: 2^18 reads.
const defaultBatchSize = 1 << 18

// progressInterval mirrors variantcall.go's ReadReads, which logs every
// 100000 reads processed.
const progressInterval = 100000

// Stats summarizes one Run: how much work was done and how long it took,
// mirroring main/ivc-index.go's time.Since/log.Printf reporting style.
type Stats struct {
	ReadsProcessed int
	WindowsEmitted int
	Malformed      int
	Elapsed        time.Duration
}

// Driver wires a search engine and a reference-set resolver factory
// (private per worker in parallel mode) around a stream of reads.
type Driver struct {
	Index *fmindex.Index
	Engine *search.Engine
	Opts   config.MatchOptions
}

// New builds a Driver over an already-loaded index and engine.
func New(idx *fmindex.Index, eng *search.Engine, opts config.MatchOptions) *Driver {
	return &Driver{Index: idx, Engine: eng, Opts: opts}
}

// Run pulls every read from reader, scans it, and writes the resulting
// lines to w. It dispatches to the sequential or parallel path based on
// Opts.Workers.
func (d *Driver) Run(reader reads.Reader, w io.Writer) (Stats, error) {
	start := time.Now()
	var stats Stats
	var err error
	if d.Opts.Workers > 1 {
		stats, err = d.runParallel(reader, w)
	} else {
		stats, err = d.runSequential(reader, w)
	}
	stats.Elapsed = time.Since(start)
	stats.Malformed = reader.Malformed()
	log.Printf("driver: processed %d reads, %d windows, %d malformed, in %s",
		stats.ReadsProcessed, stats.WindowsEmitted, stats.Malformed, stats.Elapsed)
	return stats, err
}

func (d *Driver) batchSize() int {
	if d.Opts.BatchSize > 0 {
		return d.Opts.BatchSize
	}
	return defaultBatchSize
}

func (d *Driver) runSequential(reader reads.Reader, w io.Writer) (Stats, error) {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	resolver := refset.New(d.Index.References().NumRefs())
	var stats Stats
	size := d.batchSize()
	for {
		batch, more := reader.Next(size)
		for _, rd := range batch.Reads {
			n, err := d.processRead(rd, resolver, bw)
			if err != nil {
				return stats, err
			}
			stats.ReadsProcessed++
			stats.WindowsEmitted += n
			if stats.ReadsProcessed%progressInterval == 0 {
				log.Printf("driver: processed %d reads", stats.ReadsProcessed)
			}
		}
		if !more {
			break
		}
	}
	if err := bw.Flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

// processRead scans one read (and, if enabled, its reverse complement)
// and writes its header + window lines. It returns the number of windows
// scanned for stats, whether or not a line was written for each.
func (d *Driver) processRead(rd reads.Read, resolver *refset.Resolver, bw *bufio.Writer) (int, error) {
	n, err := d.scanAndWrite(rd.Bases, resolver, bw)
	if err != nil {
		return n, err
	}
	if d.Opts.ReverseComplement {
		revCodes := reads.ReverseComplement(rd.Codes)
		revBases := make([]byte, len(revCodes))
		for i, c := range revCodes {
			revBases[i] = fmindex.Base(c)
		}
		m, err := d.scanAndWrite(revBases, resolver, bw)
		if err != nil {
			return n + m, err
		}
		n += m
	}
	return n, nil
}

func (d *Driver) scanAndWrite(bases []byte, resolver *refset.Resolver, bw *bufio.Writer) (int, error) {
	if err := writeHeader(bw, bases); err != nil {
		return 0, err
	}
	windows := d.Engine.ScanRead(bases, d.Opts.K, search.SkipAfterFail{Enabled: d.Opts.SkipAfterFail})
	if !d.Opts.RefSetOutput {
		return len(windows), nil
	}
	for _, win := range windows {
		var rids []int
		if !win.Interval.Empty() {
			rids = append(rids, resolver.Resolve(d.Index, win.Interval)...)
		}
		if err := writeRefSetLine(bw, win.Interval, rids); err != nil {
			return len(windows), err
		}
	}
	return len(windows), nil
}

// job pairs a read with its position in the input stream, so the reorder
// buffer can restore input order after parallel processing.
type job struct {
	seq int
	rd  reads.Read
}

// result is one worker's rendered output for a job, held until it is the
// next sequence number due for writing.
type result struct {
	seq     int
	data    []byte
	windows int
}

// resultHeap orders pending results by sequence number so the reorder
// buffer can always pop the lowest one, matching spec.md §5's requirement
// that per-read output stay contiguous and, when preserving input order,
// in that order.
type resultHeap []result

func (h resultHeap) Len() int            { return len(h) }
func (h resultHeap) Less(i, j int) bool  { return h[i].seq < h[j].seq }
func (h resultHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x interface{}) { *h = append(*h, x.(result)) }
func (h *resultHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// runParallel partitions the read stream across Opts.Workers goroutines,
// each owning a private refset.Resolver, and restores input order with a
// min-heap reorder buffer before writing to w. Grounded on variantcall.go's
// CallVariants: one goroutine pumps input into a channel, N worker
// goroutines drain it and send results to a collector channel, a
// sync.WaitGroup signals completion.
func (d *Driver) runParallel(reader reads.Reader, w io.Writer) (Stats, error) {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	jobs := make(chan job, d.Opts.Workers*4)
	results := make(chan result, d.Opts.Workers*4)
	errs := make(chan error, d.Opts.Workers+1)

	var wg sync.WaitGroup
	for i := 0; i < d.Opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resolver := refset.New(d.Index.References().NumRefs())
			for jb := range jobs {
				var sb sizedBuffer
				buf := bufio.NewWriter(&sb)
				n, err := d.processRead(jb.rd, resolver, buf)
				if err == nil {
					err = buf.Flush()
				}
				if err != nil {
					select {
					case errs <- err:
					default:
					}
					return
				}
				results <- result{seq: jb.seq, data: sb.data, windows: n}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var stats Stats
	pending := &resultHeap{}
	next := 0
	size := d.batchSize()

	go func() {
		defer close(jobs)
		seq := 0
		for {
			batch, more := reader.Next(size)
			for _, rd := range batch.Reads {
				jobs <- job{seq: seq, rd: rd}
				seq++
			}
			if !more {
				return
			}
		}
	}()

	for r := range results {
		heap.Push(pending, r)
		for pending.Len() > 0 && (*pending)[0].seq == next {
			top := heap.Pop(pending).(result)
			if _, err := bw.Write(top.data); err != nil {
				return stats, err
			}
			stats.ReadsProcessed++
			stats.WindowsEmitted += top.windows
			next++
		}
	}
	select {
	case err := <-errs:
		return stats, err
	default:
	}
	if err := bw.Flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

// sizedBuffer is a minimal io.Writer that owns its backing slice, used as
// each worker's private output scratch before the reorder buffer copies
// it to the shared writer.
type sizedBuffer struct {
	data []byte
}

func (b *sizedBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}
