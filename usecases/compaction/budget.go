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

package compaction

import (
	"math"
	"runtime/debug"

	"github.com/pbnjay/memory"

	"github.com/weaviate/blobopt/usecases/config"
)

const (
	// BudgetFraction is the share of available memory a chunk may occupy.
	BudgetFraction  = 0.30
	MinMemoryBudget = int64(config.MinMemoryBudget)
)

// AvailableMemory returns the Go memory limit when one is set, otherwise the
// free system memory, otherwise the total system memory.
func AvailableMemory() uint64 {
	if limit := debug.SetMemoryLimit(-1); limit > 0 && limit != math.MaxInt64 {
		return uint64(limit)
	}
	if free := memory.FreeMemory(); free > 0 {
		return free
	}
	return memory.TotalMemory()
}

// MemoryBudget returns the number of record bytes the ChunkSorter may hold
// in memory before it spills a run. A positive explicit value is returned
// as is, config.Validate keeps it at or above MinMemoryBudget.
func MemoryBudget(explicit int64) int64 {
	if explicit > 0 {
		return explicit
	}
	return budgetFrom(AvailableMemory())
}

func budgetFrom(available uint64) int64 {
	budget := float64(available) * BudgetFraction
	if budget < float64(MinMemoryBudget) {
		return MinMemoryBudget
	}
	if budget > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(budget)
}
