package main

import (
	"fmt"
	"log"
	"math"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/karel-brinda/prophyle/internal/config"
	"github.com/karel-brinda/prophyle/internal/fmindex"
	"github.com/karel-brinda/prophyle/internal/klcp"
	"github.com/karel-brinda/prophyle/internal/refbuild"
)

func newIndexCmd() *cobra.Command {
	opts := config.IndexOptions{}
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build an FM-index and kLCP bitvector over a reference FASTA collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.FastaFile, "ref-fasta", "R", "", "reference FASTA file (multi-record: one entry per reference)")
	flags.StringVarP(&opts.IndexPrefix, "index-prefix", "I", "", "output prefix for <prefix>.index/ and <prefix>.<k>.bit.klcp")
	flags.IntVarP(&opts.K, "kmer-len", "k", 0, "k-mer length the kLCP bitvector is built for")
	flags.BoolVar(&opts.Debug, "debug", false, "log memstats after each build stage")
	cmd.MarkFlagRequired("ref-fasta")
	cmd.MarkFlagRequired("index-prefix")
	cmd.MarkFlagRequired("kmer-len")
	return cmd
}

// printProcessMem logs the current heap/alloc figures, mirroring
// main/ivc-index.go's PrintProcessMem calls between build stages.
func printProcessMem(debug bool, mesg string) {
	if !debug {
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Printf(mesg+"\t%d\t%d\t%d\t%.3f\t%.3f",
		m.Alloc, m.TotalAlloc, m.Sys,
		float64(m.Alloc)/math.Pow(1024, 3), float64(m.Sys)/math.Pow(1024, 3))
}

func runIndex(opts config.IndexOptions) error {
	log.Printf("kmerscan-index: building index for %s at k=%d", opts.FastaFile, opts.K)

	start := time.Now()
	coll, err := refbuild.Build(opts.FastaFile)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	printProcessMem(opts.Debug, "memstats after reading reference FASTA")
	log.Printf("kmerscan-index: %d references, %d bases (with separators)", coll.Refs.NumRefs(), len(coll.Seq))

	if err := coll.Refs.Save(opts.IndexPrefix + ".refs"); err != nil {
		return fmt.Errorf("index: failed to save reference table: %w", err)
	}

	rev := refbuild.Reverse(coll.Seq)
	idx := fmindex.New(rev, coll.Refs)
	idx.Save(opts.IndexPrefix)
	printProcessMem(opts.Debug, "memstats after building FM-index")
	log.Printf("kmerscan-index: time for FM-index construction: %s", time.Since(start))

	klcpStart := time.Now()
	total := idx.Total()
	var progress func()
	var pbs *mpb.Progress
	if total > 1 {
		pbs = mpb.New(mpb.WithWidth(40))
		bar := pbs.AddBar(int64(total-1),
			mpb.PrependDecorators(
				decor.Name("kLCP build: ", decor.WC{W: len("kLCP build: "), C: decor.DindentRight}),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.Percentage(decor.WC{W: 5}),
				decor.OnComplete(decor.Name(""), " done"),
			),
		)
		progress = func() { bar.Increment() }
	}
	b := klcp.Build(rev, idx, opts.K, progress)
	if pbs != nil {
		pbs.Wait()
	}
	if err := klcp.SaveKLCP(opts.IndexPrefix, opts.K, total, b); err != nil {
		return fmt.Errorf("index: failed to save kLCP table: %w", err)
	}
	printProcessMem(opts.Debug, "memstats after building kLCP bitvector")
	log.Printf("kmerscan-index: time for kLCP construction: %s", time.Since(klcpStart))
	log.Printf("kmerscan-index: total time: %s", time.Since(start))
	return nil
}
