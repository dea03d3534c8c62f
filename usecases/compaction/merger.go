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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/blobopt/entities/blob"
	"github.com/weaviate/blobopt/entities/digest"
	"github.com/weaviate/blobopt/entities/diskio"
	"github.com/weaviate/blobopt/usecases/monitoring"
	"github.com/weaviate/blobopt/usecases/progress"
)

// ShardMerger k-way merges sorted runs into shards of at most maxShardSize
// bytes. A record larger than the limit gets a shard of its own.
type ShardMerger struct {
	logger       logrus.FieldLogger
	sink         progress.Sink
	digester     digest.Digester
	maxShardSize int64
	dir          string
	prefix       string
	names        *SuffixGenerator
	metrics      *monitoring.PrometheusMetrics
}

func NewShardMerger(logger logrus.FieldLogger, sink progress.Sink, digester digest.Digester,
	maxShardSize int64, dir, prefix string, names *SuffixGenerator,
) *ShardMerger {
	if names == nil {
		names = NewSuffixGenerator(dir)
	}
	return &ShardMerger{
		logger:       logger,
		sink:         sink,
		digester:     digester,
		maxShardSize: maxShardSize,
		dir:          dir,
		prefix:       prefix,
		names:        names,
		metrics:      monitoring.GetMetrics(),
	}
}

type runReader struct {
	run  RunFile
	f    *os.File
	r    *blob.Reader
	done bool
}

func (m *ShardMerger) openRun(run RunFile) (*runReader, error) {
	f, err := diskio.OpenFile(run.Path, mergeSource)
	if err != nil {
		return nil, errors.Wrapf(err, "open run %d", run.Index)
	}
	return &runReader{
		run: run,
		f:   f,
		r:   blob.NewReader(diskio.NewMeteredReader(f, m.metrics.ReadCallback("merge"))),
	}, nil
}

// advance queues the next record of rr. An exhausted run is closed and its
// file removed.
func (m *ShardMerger) advance(q *mergeQueue, rr *runReader, pos int) error {
	if rr.done {
		return nil
	}

	record, err := rr.r.Next()
	if err == nil {
		q.Insert(mergeItem{key: m.digester.Sum(record), record: record, run: pos})
		return nil
	}
	if err != io.EOF {
		return errors.Wrapf(err, "read run %d", rr.run.Index)
	}

	if rr.r.Truncated() {
		m.logger.WithField("action", "blob_merge").
			WithField("run", rr.run.Index).
			WithField("offset", rr.r.Offset()).
			Warn("run file ends in a malformed frame")
	}

	rr.done = true
	if err := rr.f.Close(); err != nil {
		return errors.Wrapf(err, "close run %d", rr.run.Index)
	}
	if err := diskio.RemoveFile(rr.run.Path, mergeSource); err != nil {
		return errors.Wrapf(err, "remove run %d", rr.run.Index)
	}
	return nil
}

func (m *ShardMerger) openShard() (*shardWriter, error) {
	suffix, err := m.names.Next(m.prefix, ShardExtension)
	if err != nil {
		return nil, errors.Wrap(err, "pick shard name")
	}
	return newShardWriter(m.dir, m.prefix+"."+suffix+ShardExtension, m.metrics)
}

// Merge consumes runs, which must be in the order the ChunkSorter wrote
// them. Of several records with the same key the one from the latest run is
// kept. Run files are deleted as soon as they are exhausted.
func (m *ShardMerger) Merge(ctx context.Context, runs []RunFile) (MergeResult, error) {
	var total int64
	for _, run := range runs {
		total += run.Size
	}

	readers := make([]*runReader, len(runs))
	defer func() {
		for _, rr := range readers {
			if rr != nil && !rr.done {
				rr.f.Close()
			}
		}
	}()

	queue := newMergeQueue(len(runs))
	for i, run := range runs {
		rr, err := m.openRun(run)
		if err != nil {
			return MergeResult{}, err
		}
		readers[i] = rr
		if err := m.advance(queue, rr, i); err != nil {
			return MergeResult{}, err
		}
	}

	var (
		result   MergeResult
		current  *shardWriter
		last     digest.Key
		emitted  bool
		consumed int64
		popped   int64
	)
	defer func() {
		if current != nil {
			current.abort()
		}
	}()

	closeCurrent := func() error {
		shard, err := current.close()
		current = nil
		if err != nil {
			return err
		}
		result.Shards = append(result.Shards, shard)
		result.Bytes += shard.Size
		m.logger.WithField("action", "blob_merge").
			WithField("shard", shard.Name).
			WithField("records", shard.Records).
			WithField("bytes", shard.Size).
			Debug("closed shard")
		return nil
	}

	for queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return MergeResult{}, err
		}

		item := queue.Pop()
		framed := blob.FramedSize(len(item.record))
		consumed += framed
		popped++
		if err := m.advance(queue, readers[item.run], item.run); err != nil {
			return MergeResult{}, err
		}

		if emitted && item.key == last {
			result.DuplicatesDropped++
			continue
		}

		if current != nil && !current.empty() && current.size()+framed > m.maxShardSize {
			if err := closeCurrent(); err != nil {
				return MergeResult{}, err
			}
		}
		if current == nil {
			w, err := m.openShard()
			if err != nil {
				return MergeResult{}, err
			}
			current = w
		}

		if err := current.write(item.key, item.record); err != nil {
			return MergeResult{}, err
		}
		last, emitted = item.key, true
		result.Records++

		if popped%progressInterval == 0 {
			m.report(consumed, total, len(result.Shards)+1)
		}
	}

	if current != nil {
		if err := closeCurrent(); err != nil {
			return MergeResult{}, err
		}
	}
	m.report(total, total, len(result.Shards))

	m.metrics.DropDuplicates("merge", result.DuplicatesDropped)
	m.logger.WithField("action", "blob_merge").
		WithField("runs", len(runs)).
		WithField("shards", len(result.Shards)).
		WithField("records", result.Records).
		WithField("duplicates", result.DuplicatesDropped).
		Info("merged runs into shards")
	m.sink.PhaseCompleted(fmt.Sprintf("Created %d shards with %s records (%s duplicates removed across runs)",
		len(result.Shards), humanize.Comma(result.Records), humanize.Comma(result.DuplicatesDropped)))

	return result, nil
}

func (m *ShardMerger) report(consumed, total int64, shards int) {
	fraction := 1.0
	if total > 0 {
		fraction = float64(consumed) / float64(total)
	}
	m.sink.Progress(fraction, fmt.Sprintf("Merged %s / %s, %d shards",
		humanize.IBytes(uint64(consumed)), humanize.IBytes(uint64(total)), shards))
}
