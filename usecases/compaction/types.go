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

// Package compaction turns a set of append-only BLOB files full of duplicate
// and superseded records into a minimal, sorted, deduplicated and
// size-bounded set of shards, without ever holding the whole dataset in
// memory.
//
// The pipeline runs four stages strictly one after the other, and they talk
// to each other only through files on disk:
//
//	Scanner -> ChunkSorter -> ShardMerger -> Validator
//
// The ChunkSorter sorts and dedups memory-sized batches into run files. The
// ShardMerger k-way merges the runs by digest key and packs the result into
// shards. The Validator re-reads every shard.
package compaction

import (
	"github.com/weaviate/blobopt/entities/digest"
)

// InputFile is a BLOB matched by the Scanner. Inputs are never modified.
type InputFile struct {
	Path string
	Name string
	Size int64
}

func TotalSize(files []InputFile) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}

// RunFile is a sorted, internally deduplicated batch written by the
// ChunkSorter and consumed once by the ShardMerger.
type RunFile struct {
	Path  string
	Index int
	// Records is the number of records in the file, RawRecords the number of
	// records of the batch before dedup.
	Records    int64
	RawRecords int64
	Size       int64
}

// Shard is a closed output file. Keys across shards increase strictly in
// the order the shards were produced.
type Shard struct {
	Path     string
	Name     string
	Size     int64
	Records  int64
	FirstKey digest.Key
	LastKey  digest.Key
}

// MergeResult is the outcome of ShardMerger.Merge.
type MergeResult struct {
	Shards            []Shard
	Records           int64
	DuplicatesDropped int64
	Bytes             int64
}

func ShardPaths(shards []Shard) []string {
	paths := make([]string, len(shards))
	for i, s := range shards {
		paths[i] = s.Path
	}
	return paths
}
