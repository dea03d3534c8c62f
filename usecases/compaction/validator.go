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
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/blobopt/entities/blob"
	"github.com/weaviate/blobopt/entities/diskio"
	enterrors "github.com/weaviate/blobopt/entities/errors"
	"github.com/weaviate/blobopt/usecases/mmap"
	"github.com/weaviate/blobopt/usecases/monitoring"
	"github.com/weaviate/blobopt/usecases/progress"
)

const validateSource = "validator"

// ShardReport is the outcome of scanning one shard.
type ShardReport struct {
	Path    string
	Name    string
	Size    int64
	Records int64
	// TrailingBytes follow the last well-formed frame.
	TrailingBytes int64
	Err           error

	scanned bool
}

func (r ShardReport) OK() bool {
	return r.Err == nil
}

type ValidationReport struct {
	Shards  []ShardReport
	Records int64
	Bytes   int64
	Valid   int
}

func (r ValidationReport) OK() bool {
	return r.Valid == len(r.Shards)
}

// Err merges the errors of all failed shards, nil if there are none.
func (r ValidationReport) Err() error {
	var result *multierror.Error
	for _, s := range r.Shards {
		if s.Err != nil {
			result = multierror.Append(result, errors.Wrapf(s.Err, "shard %q", s.Name))
		}
	}
	return result.ErrorOrNil()
}

// Validator re-reads shards and counts their frames. A shard fails when it
// cannot be read. With strict set, bytes after the last well-formed frame
// fail it too.
type Validator struct {
	logger  logrus.FieldLogger
	sink    progress.Sink
	threads int
	strict  bool
	metrics *monitoring.PrometheusMetrics
}

func NewValidator(logger logrus.FieldLogger, sink progress.Sink, threads int, strict bool) *Validator {
	return &Validator{
		logger:  logger,
		sink:    sink,
		threads: threads,
		strict:  strict,
		metrics: monitoring.GetMetrics(),
	}
}

// Validate scans the shards, up to threads of them at a time. The report
// lists them in the given order.
func (v *Validator) Validate(ctx context.Context, shards []string) (ValidationReport, bool) {
	reports := make([]ShardReport, len(shards))

	eg := enterrors.NewErrorGroupWrapper(v.logger, v.threads)
	for i, path := range shards {
		i, path := i, path
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				reports[i] = ShardReport{Path: path, Name: filepath.Base(path), Err: err, scanned: true}
				return nil
			}
			reports[i] = v.scan(path)
			return nil
		}, path)
	}
	waitErr := eg.Wait()

	report := ValidationReport{Shards: reports}
	for i := range reports {
		r := &reports[i]
		if !r.scanned {
			r.Path, r.Name = shards[i], filepath.Base(shards[i])
			r.Err = waitErr
			if r.Err == nil {
				r.Err = errors.New("shard was not scanned")
			}
		}

		v.sink.Progress(float64(i+1)/float64(len(reports)), "Validating: "+r.Name)
		v.metrics.ShardValidated(r.OK())
		if r.OK() {
			report.Valid++
			report.Records += r.Records
			report.Bytes += r.Size
			v.sink.Info(fmt.Sprintf("✓ %s: %s records, %s", r.Name,
				humanize.Comma(r.Records), humanize.IBytes(uint64(r.Size))))
		} else {
			v.logger.WithField("action", "blob_validate").
				WithField("shard", r.Name).
				WithError(r.Err).
				Error("shard failed validation")
			v.sink.Error(fmt.Sprintf("✗ %s: %v", r.Name, r.Err))
		}
	}

	v.sink.PhaseCompleted(fmt.Sprintf("Validated %d/%d files, %s records, %s", report.Valid, len(reports),
		humanize.Comma(report.Records), humanize.IBytes(uint64(report.Bytes))))
	return report, report.OK()
}

func (v *Validator) scan(path string) ShardReport {
	r := ShardReport{Path: path, Name: filepath.Base(path), scanned: true}

	f, err := diskio.OpenFile(path, validateSource)
	if err != nil {
		r.Err = errors.Wrap(err, "open")
		return r
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		r.Err = errors.Wrap(err, "stat")
		return r
	}
	r.Size = info.Size()

	var consumed int64
	if r.Size == 0 {
		r.Records, consumed, err = countBuffered(f)
	} else {
		r.Records, consumed, err = countMapped(f, r.Size)
	}
	if err != nil {
		r.Err = err
		return r
	}
	v.metrics.FileIOReads.WithLabelValues("validate").Add(float64(r.Size))

	r.TrailingBytes = r.Size - consumed
	if r.TrailingBytes > 0 {
		v.logger.WithField("action", "blob_validate").
			WithField("shard", r.Name).
			WithField("trailing_bytes", r.TrailingBytes).
			Warn("shard has bytes after its last frame")
		if v.strict {
			r.Err = errors.Errorf("%d trailing bytes after the last frame", r.TrailingBytes)
		}
	}
	return r
}

func countMapped(f *os.File, size int64) (int64, int64, error) {
	m, err := mmap.MapFile(f, int(size))
	if err != nil {
		return 0, 0, errors.Wrap(err, "map")
	}
	records, consumed := blob.CountFrames(m)
	if err := m.Unmap(); err != nil {
		return 0, 0, errors.Wrap(err, "unmap")
	}
	return records, consumed, nil
}

func countBuffered(f io.Reader) (int64, int64, error) {
	r := blob.NewReader(f)
	var records int64
	for {
		_, err := r.Next()
		if err == io.EOF {
			return records, r.Offset(), nil
		}
		if err != nil {
			return 0, 0, err
		}
		records++
	}
}
