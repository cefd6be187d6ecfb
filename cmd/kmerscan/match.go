package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/karel-brinda/prophyle/internal/config"
	"github.com/karel-brinda/prophyle/internal/driver"
	"github.com/karel-brinda/prophyle/internal/fmindex"
	"github.com/karel-brinda/prophyle/internal/klcp"
	"github.com/karel-brinda/prophyle/internal/reads"
	"github.com/karel-brinda/prophyle/internal/search"
)

func newMatchCmd() *cobra.Command {
	opts := config.MatchOptions{}
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Stream reads against an FM-index, resolving each k-mer window to a reference set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.IndexPrefix, "index-prefix", "I", "", "index prefix produced by `kmerscan index`")
	flags.StringVarP(&opts.ReadsFile, "reads", "r", "", "read file (FASTA/FASTQ, or binary with -b)")
	flags.IntVarP(&opts.K, "kmer-len", "k", 0, "k-mer length; must match the loaded kLCP table when -u is set")
	flags.BoolVarP(&opts.UseKLCP, "use-klcp", "u", false, "enable kLCP-accelerated rolling extension")
	flags.BoolVarP(&opts.RefSetOutput, "refset", "v", false, "print the resolved reference-id set for every window")
	flags.BoolVarP(&opts.SkipAfterFail, "skip-after-fail", "s", false, "advance by k-2 internally after a failed window")
	flags.BoolVarP(&opts.ReverseComplement, "revcomp", "c", false, "also scan the reverse complement of each read")
	flags.StringVarP(&opts.OutputFile, "output", "f", "", "output file (default stdout)")
	flags.BoolVarP(&opts.Binary, "binary", "b", false, "read input is the binary-packed container, not text")
	flags.IntVar(&opts.MateOnly, "mate", 0, "restrict binary input to one mate: 0=all, 1=first, 2=second")
	flags.IntVar(&opts.BatchSize, "batch-size", 0, "reads pulled per batch (0 = default)")
	flags.IntVarP(&opts.Workers, "threads", "t", 1, "parallel worker count (1 = sequential)")
	cmd.MarkFlagRequired("index-prefix")
	cmd.MarkFlagRequired("reads")
	cmd.MarkFlagRequired("kmer-len")
	return cmd
}

func runMatch(opts config.MatchOptions) error {
	refs, err := fmindex.LoadReferenceTable(opts.IndexPrefix + ".refs")
	if err != nil {
		return fmt.Errorf("match: failed to load reference table: %w", err)
	}
	idx, err := fmindex.Load(opts.IndexPrefix, refs)
	if err != nil {
		return fmt.Errorf("match: failed to load FM-index: %w", err)
	}

	var tbl *klcp.Table
	if opts.UseKLCP {
		tbl, err = klcp.LoadKLCP(opts.IndexPrefix, opts.K, idx.Total())
		if err != nil {
			// kLCP-mismatch is a fatal error per the file-layout contract.
			return fmt.Errorf("match: %w", err)
		}
	}
	engine := search.New(idx, tbl)

	reader, err := openReader(opts)
	if err != nil {
		return fmt.Errorf("match: %w", err)
	}
	defer reader.Close()

	w := os.Stdout
	if opts.OutputFile != "" {
		f, err := os.Create(opts.OutputFile)
		if err != nil {
			return fmt.Errorf("match: failed to create %s: %w", opts.OutputFile, err)
		}
		defer f.Close()
		w = f
	}

	d := driver.New(idx, engine, opts)
	stats, err := d.Run(reader, w)
	if err != nil {
		return fmt.Errorf("match: %w", err)
	}
	log.Printf("kmerscan-match: %d reads, %d windows, %d malformed, elapsed %s",
		stats.ReadsProcessed, stats.WindowsEmitted, stats.Malformed, stats.Elapsed)
	return nil
}

func openReader(opts config.MatchOptions) (reads.Reader, error) {
	mate := reads.Mate(opts.MateOnly)
	if opts.Binary {
		return reads.OpenBinary(opts.ReadsFile, mate)
	}
	return reads.OpenText(opts.ReadsFile, mate)
}
