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
	"github.com/weaviate/blobopt/entities/digest"
)

// mergeItem is the head record of one run during the k-way merge.
type mergeItem struct {
	key    digest.Key
	record []byte
	run    int
}

// before orders items by key. Equal keys put the higher run index first, so
// the record from the most recent batch wins.
func (a mergeItem) before(b mergeItem) bool {
	if c := a.key.Compare(b.key); c != 0 {
		return c < 0
	}
	return a.run > b.run
}

// mergeQueue is a min-heap with one entry per non-exhausted run.
type mergeQueue struct {
	items []mergeItem
}

func newMergeQueue(capacity int) *mergeQueue {
	return &mergeQueue{
		items: make([]mergeItem, 0, capacity),
	}
}

// Pop removes the smallest item from the queue and returns it.
func (q *mergeQueue) Pop() mergeItem {
	if len(q.items) == 0 {
		panic("merge queue is empty")
	}
	out := q.items[0]
	last := len(q.items) - 1
	q.items[0] = q.items[last]
	q.items[last] = mergeItem{}
	q.items = q.items[:last]
	q.heapify(0)
	return out
}

func (q *mergeQueue) Len() int {
	return len(q.items)
}

func (q *mergeQueue) Insert(item mergeItem) {
	q.items = append(q.items, item)
	i := len(q.items) - 1
	for i != 0 && q.items[i].before(q.items[q.parent(i)]) {
		q.swap(i, q.parent(i))
		i = q.parent(i)
	}
}

func (q *mergeQueue) left(i int) int { return 2*i + 1 }

func (q *mergeQueue) right(i int) int { return 2*i + 2 }

func (q *mergeQueue) parent(i int) int { return (i - 1) / 2 }

func (q *mergeQueue) swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
}

func (q *mergeQueue) heapify(i int) {
	for {
		left := q.left(i)
		right := q.right(i)
		smallest := i
		if left < len(q.items) && q.items[left].before(q.items[smallest]) {
			smallest = left
		}
		if right < len(q.items) && q.items[right].before(q.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}
		q.swap(i, smallest)
		i = smallest
	}
}
