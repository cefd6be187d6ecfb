// Command kmerscan builds an FM-index/kLCP pair over a reference FASTA
// collection (the `index` subcommand) and streams reads against it,
// resolving each k-mer window's suffix-array interval to a reference-id
// set (the `match` subcommand).
//
// Grounded on namsyvo-IVC's main/ivc.go and main/ivc-index.go: one binary
// per job under flag.Parse, generalized here into two cobra subcommands
// under a single binary, the shape davidebolo1993-kfilt and
// shenwei356-kmcp/LexicMap use for their own build/search command pairs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "kmerscan",
		Short: "Streaming k-mer matcher over a compressed FM-index reference collection",
	}
	root.AddCommand(newIndexCmd())
	root.AddCommand(newMatchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
