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
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryBudget(t *testing.T) {
	assert.Equal(t, int64(12345), MemoryBudget(12345))
	assert.Equal(t, int64(MinMemoryBudget), budgetFrom(0))
	assert.Equal(t, int64(MinMemoryBudget), budgetFrom(100<<20))
	available := uint64(1000 << 20)
	assert.Equal(t, int64(float64(available)*BudgetFraction), budgetFrom(available))
	assert.GreaterOrEqual(t, MemoryBudget(0), int64(MinMemoryBudget))
}

func TestAvailableMemoryHonoursGoMemLimit(t *testing.T) {
	previous := debug.SetMemoryLimit(2 << 30)
	defer debug.SetMemoryLimit(previous)

	limit := uint64(2 << 30)
	assert.Equal(t, limit, AvailableMemory())
	assert.Equal(t, int64(float64(limit)*BudgetFraction), MemoryBudget(0))
}
