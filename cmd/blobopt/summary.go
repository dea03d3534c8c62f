//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/weaviate/blobopt/usecases/compaction"
	"github.com/weaviate/blobopt/usecases/config"
)

func printHeader(w io.Writer, cfg config.Config) {
	budget := "auto"
	if cfg.MemoryBudget > 0 {
		budget = humanize.IBytes(uint64(cfg.MemoryBudget))
	}

	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "BLOB Optimizer")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Index directory: %s\n", cfg.InputDir)
	fmt.Fprintf(w, "Pattern:         %s\n", cfg.Pattern)
	fmt.Fprintf(w, "Output:          %s\n", cfg.OutputDir)
	fmt.Fprintf(w, "Max file size:   %s\n", humanize.IBytes(uint64(cfg.MaxShardSize)))
	fmt.Fprintf(w, "Memory budget:   %s\n", budget)
	fmt.Fprintf(w, "Digest:          %s\n", cfg.Digest)
	fmt.Fprintf(w, "Threads:         %d\n", cfg.Threads)
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, r compaction.Result) {
	freed := r.InputBytes - r.OutputBytes
	reduction, ratio := 0.0, 0.0
	if r.InputBytes > 0 {
		reduction = 100 * float64(freed) / float64(r.InputBytes)
	}
	if r.OutputBytes > 0 {
		ratio = float64(r.InputBytes) / float64(r.OutputBytes)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "Optimization complete")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Original size:   %s (%d files)\n", humanize.IBytes(uint64(r.InputBytes)), len(r.Inputs))
	fmt.Fprintf(w, "Optimized size:  %s (%d files)\n", humanize.IBytes(uint64(r.OutputBytes)), len(r.Shards))
	fmt.Fprintf(w, "Space freed:     %s\n", signedBytes(freed))
	fmt.Fprintf(w, "Reduction:       %.1f%%\n", reduction)
	fmt.Fprintf(w, "Ratio:           %.2f:1\n", ratio)
	fmt.Fprintf(w, "Records:         %s kept, %s duplicates removed\n",
		humanize.Comma(r.Records), humanize.Comma(r.DuplicatesDropped))
	fmt.Fprintf(w, "Elapsed:         %s\n", r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "Throughput:      %s/s\n", humanize.IBytes(throughput(r.InputBytes, r.Elapsed)))
	if r.Manifest != "" {
		fmt.Fprintf(w, "Manifest:        %s\n", r.Manifest)
	}
}

func signedBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

func throughput(bytes int64, elapsed time.Duration) uint64 {
	if elapsed <= 0 {
		return 0
	}
	return uint64(float64(bytes) / elapsed.Seconds())
}
