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
	"path/filepath"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/blobopt/entities/blob"
	"github.com/weaviate/blobopt/entities/digest"
	"github.com/weaviate/blobopt/entities/diskio"
	"github.com/weaviate/blobopt/usecases/monitoring"
	"github.com/weaviate/blobopt/usecases/progress"
)

const (
	chunkSource = "chunk_sorter"

	// records between two progress events of a long input
	progressInterval = 1 << 16
)

// ChunkSorter reads all inputs as one stream and cuts it into batches of at
// most budget framed bytes. Every batch is sorted by digest key, collapsed to
// the last record per key and written to its own run file in dir.
type ChunkSorter struct {
	logger   logrus.FieldLogger
	sink     progress.Sink
	digester digest.Digester
	budget   int64
	dir      string
	metrics  *monitoring.PrometheusMetrics
}

func NewChunkSorter(logger logrus.FieldLogger, sink progress.Sink, digester digest.Digester,
	budget int64, dir string,
) *ChunkSorter {
	return &ChunkSorter{
		logger:   logger,
		sink:     sink,
		digester: digester,
		budget:   budget,
		dir:      dir,
		metrics:  monitoring.GetMetrics(),
	}
}

type chunkEntry struct {
	key    digest.Key
	record []byte
}

type sortState struct {
	batch     [][]byte
	batchSize int64
	runs      []RunFile
	// bytes of fully read inputs and of the whole stream
	done, total int64
	records     int64
}

// Sort returns the run files in the order they were written. The index of a
// run grows with the position of its records in the input stream.
func (c *ChunkSorter) Sort(ctx context.Context, inputs []InputFile) ([]RunFile, error) {
	s := &sortState{total: TotalSize(inputs)}

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.readInput(ctx, s, in); err != nil {
			return nil, err
		}
		s.done += in.Size
		c.report(s, 0)
	}

	if err := c.flush(s); err != nil {
		return nil, err
	}

	var kept int64
	for _, run := range s.runs {
		kept += run.Records
	}
	c.logger.WithField("action", "blob_chunk_sort").
		WithField("runs", len(s.runs)).
		WithField("records", s.records).
		WithField("kept", kept).
		Info("sorted input into runs")
	c.sink.PhaseCompleted(fmt.Sprintf("Created %d sorted runs from %s records (%s duplicates removed within runs)",
		len(s.runs), humanize.Comma(s.records), humanize.Comma(s.records-kept)))

	return s.runs, nil
}

func (c *ChunkSorter) readInput(ctx context.Context, s *sortState, in InputFile) error {
	f, err := diskio.OpenFile(in.Path, chunkSource)
	if err != nil {
		return errors.Wrapf(err, "open input %q", in.Path)
	}
	defer f.Close()

	r := blob.NewReader(diskio.NewMeteredReader(f, c.metrics.ReadCallback("chunk")))
	var records int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "read input %q", in.Path)
		}

		records++
		s.records++
		s.batch = append(s.batch, record)
		s.batchSize += blob.FramedSize(len(record))
		if s.batchSize >= c.budget {
			if err := c.flush(s); err != nil {
				return err
			}
		}

		if records%progressInterval == 0 {
			c.report(s, r.Offset())
		}
	}

	c.metrics.RecordsRead.Add(float64(records))
	if r.Truncated() {
		c.logger.WithField("action", "blob_chunk_sort").
			WithField("path", in.Path).
			WithField("offset", r.Offset()).
			WithField("discarded_bytes", in.Size-r.Offset()).
			Warn("input ends in a malformed frame, ignoring the rest of the file")
	}
	return nil
}

func (c *ChunkSorter) report(s *sortState, current int64) {
	processed := s.done + current
	fraction := 1.0
	if s.total > 0 {
		fraction = float64(processed) / float64(s.total)
	}
	c.sink.Progress(fraction, fmt.Sprintf("Processed %s / %s, %d runs",
		humanize.IBytes(uint64(processed)), humanize.IBytes(uint64(s.total)), len(s.runs)))
}

func (c *ChunkSorter) flush(s *sortState) error {
	if len(s.batch) == 0 {
		return nil
	}

	entries := make([]chunkEntry, len(s.batch))
	for i, record := range s.batch {
		entries[i] = chunkEntry{key: c.digester.Sum(record), record: record}
	}
	slices.SortStableFunc(entries, func(a, b chunkEntry) int {
		return a.key.Compare(b.key)
	})

	index := len(s.runs)
	path := filepath.Join(c.dir, fmt.Sprintf("chunk_%03d%s", index, ShardExtension))
	run, err := c.writeRun(path, entries)
	if err != nil {
		return errors.Wrapf(err, "write run %d", index)
	}
	run.Index = index
	s.runs = append(s.runs, run)

	clear(s.batch)
	s.batch = s.batch[:0]
	s.batchSize = 0

	c.metrics.RunsWritten.Inc()
	c.metrics.DropDuplicates("chunk", run.RawRecords-run.Records)
	c.logger.WithField("action", "blob_chunk_sort").
		WithField("run", index).
		WithField("path", path).
		WithField("records", run.Records).
		WithField("raw_records", run.RawRecords).
		WithField("bytes", run.Size).
		Debug("wrote sorted run")
	return nil
}

// writeRun writes entries sorted by key. Of several entries with the same
// key only the last one is written.
func (c *ChunkSorter) writeRun(path string, entries []chunkEntry) (RunFile, error) {
	f, err := diskio.CreateFile(path, chunkSource)
	if err != nil {
		return RunFile{}, err
	}

	w := blob.NewWriter(diskio.NewMeteredWriter(f, c.metrics.WriteCallback("chunk")))
	for i, e := range entries {
		if i+1 < len(entries) && entries[i+1].key == e.key {
			continue
		}
		if _, err := w.Write(e.record); err != nil {
			f.Close()
			return RunFile{}, err
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return RunFile{}, err
	}
	if err := f.Close(); err != nil {
		return RunFile{}, errors.Wrap(err, "close run file")
	}

	return RunFile{
		Path:       path,
		Records:    w.Records(),
		RawRecords: int64(len(entries)),
		Size:       w.Size(),
	}, nil
}
