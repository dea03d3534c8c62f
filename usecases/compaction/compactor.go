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
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/blobopt/entities/digest"
	"github.com/weaviate/blobopt/entities/diskio"
	enterrors "github.com/weaviate/blobopt/entities/errors"
	"github.com/weaviate/blobopt/usecases/config"
	"github.com/weaviate/blobopt/usecases/monitoring"
	"github.com/weaviate/blobopt/usecases/progress"
)

// Phases is the number of phases a Run reports to its sink.
const Phases = 4

var phases = [Phases]struct{ name, title string }{
	{"scan", "Scan BLOB Files"},
	{"chunk", "Optimize & Deduplicate"},
	{"merge", "Merge & Split Shards"},
	{"validate", "Validate BLOB Files"},
}

type Result struct {
	RunID             string
	StartedAt         time.Time
	Inputs            []InputFile
	InputBytes        int64
	Shards            []Shard
	Records           int64
	RecordsRead       int64
	DuplicatesDropped int64
	OutputBytes       int64
	Valid             bool
	Validation        ValidationReport
	// Manifest is the path of the written manifest, if any.
	Manifest string
	Elapsed  time.Duration
}

// Compactor runs the scan, chunk, merge and validate stages over the inputs
// selected by its config.
type Compactor struct {
	cfg      config.Config
	logger   logrus.FieldLogger
	sink     progress.Sink
	digester digest.Digester
	metrics  *monitoring.PrometheusMetrics
	now      func() time.Time
}

func New(cfg config.Config, logger logrus.FieldLogger, sink progress.Sink) (*Compactor, error) {
	d, err := digest.New(cfg.Digest)
	if err != nil {
		return nil, &config.Error{Err: err}
	}
	if sink == nil {
		sink = progress.Noop
	}
	return &Compactor{
		cfg:      cfg,
		logger:   logger,
		sink:     sink,
		digester: d,
		metrics:  monitoring.GetMetrics(),
		now:      time.Now,
	}, nil
}

func (c *Compactor) phase(ctx context.Context, index int, f func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p := phases[index-1]
	c.sink.PhaseStarted(index, p.title)
	start := c.now()
	err := f()
	c.metrics.ObservePhase(p.name, c.now().Sub(start).Seconds())
	if err != nil {
		c.sink.Error(fmt.Sprintf("%s failed: %v", p.title, err))
	}
	return err
}

// Run compacts the inputs into shards in the output directory. Inputs are
// never modified. When a shard fails validation the result is returned
// together with ErrValidationFailed.
func (c *Compactor) Run(ctx context.Context) (Result, error) {
	result := Result{RunID: uuid.New().String(), StartedAt: c.now()}
	logger := c.logger.WithField("run_id", result.RunID)

	logger.WithField("action", "blob_compaction").
		WithField("path", c.cfg.InputDir).
		WithField("pattern", c.cfg.Pattern).
		WithField("output", c.cfg.OutputDir).
		WithField("digest", c.digester.Name()).
		Info("starting compaction")

	if err := c.phase(ctx, 1, func() (err error) {
		result.Inputs, err = NewScanner(logger, c.sink).Scan(c.cfg.InputDir, c.cfg.Pattern)
		return err
	}); err != nil {
		return result, err
	}
	result.InputBytes = TotalSize(result.Inputs)
	prefix := ShardPrefix(c.cfg.Pattern, result.Inputs)

	budget := MemoryBudget(int64(c.cfg.MemoryBudget))
	tempDir, err := c.createTempDir()
	if err != nil {
		return result, err
	}
	logger.WithField("action", "blob_compaction").
		WithField("temp_dir", tempDir).
		WithField("budget", budget).
		WithField("prefix", prefix).
		Debug("prepared chunking")

	result, err = c.compact(ctx, logger, result, prefix, budget, tempDir)
	c.cleanup(logger, tempDir, err)
	result.Elapsed = c.now().Sub(result.StartedAt)
	if err != nil {
		return result, err
	}

	logger.WithField("action", "blob_compaction").
		WithField("shards", len(result.Shards)).
		WithField("records", result.Records).
		WithField("duplicates", result.DuplicatesDropped).
		WithField("input_bytes", result.InputBytes).
		WithField("output_bytes", result.OutputBytes).
		WithField("took", result.Elapsed).
		Info("compaction finished")
	return result, nil
}

func (c *Compactor) compact(ctx context.Context, logger logrus.FieldLogger, result Result,
	prefix string, budget int64, tempDir string,
) (Result, error) {
	var runs []RunFile
	if err := c.phase(ctx, 2, func() (err error) {
		runs, err = NewChunkSorter(logger, c.sink, c.digester, budget, tempDir).Sort(ctx, result.Inputs)
		return err
	}); err != nil {
		return result, err
	}
	for _, run := range runs {
		result.RecordsRead += run.RawRecords
		result.DuplicatesDropped += run.RawRecords - run.Records
	}

	names := NewSuffixGenerator(c.cfg.OutputDir)
	var merged MergeResult
	if err := c.phase(ctx, 3, func() (err error) {
		merger := NewShardMerger(logger, c.sink, c.digester, int64(c.cfg.MaxShardSize),
			c.cfg.OutputDir, prefix, names)
		merged, err = merger.Merge(ctx, runs)
		return err
	}); err != nil {
		return result, err
	}
	result.Shards = merged.Shards
	result.Records = merged.Records
	result.OutputBytes = merged.Bytes
	result.DuplicatesDropped += merged.DuplicatesDropped

	if err := c.phase(ctx, 4, func() error {
		v := NewValidator(logger, c.sink, c.cfg.Threads, c.cfg.StrictValidation)
		result.Validation, result.Valid = v.Validate(ctx, ShardPaths(result.Shards))
		return nil
	}); err != nil {
		return result, err
	}
	if !result.Valid {
		logger.WithField("action", "blob_compaction").
			WithError(result.Validation.Err()).
			Error("output failed validation")
		return result, errors.WithMessagef(enterrors.ErrValidationFailed, "%d of %d shards",
			len(result.Shards)-result.Validation.Valid, len(result.Shards))
	}

	if c.cfg.WriteManifest {
		path, err := c.writeManifest(names, prefix, result)
		if err != nil {
			return result, err
		}
		result.Manifest = path
	}
	return result, nil
}

func (c *Compactor) createTempDir() (string, error) {
	if err := os.MkdirAll(c.cfg.TempDir, os.ModePerm); err != nil {
		return "", errors.Wrapf(err, "create temp directory %q", c.cfg.TempDir)
	}
	dir, err := os.MkdirTemp(c.cfg.TempDir, ".blobopt-runs-")
	if err != nil {
		return "", errors.Wrapf(err, "create temp directory in %q", c.cfg.TempDir)
	}
	return dir, nil
}

// cleanup removes the temp directory. After a failed run leftover run files
// go with it.
func (c *Compactor) cleanup(logger logrus.FieldLogger, dir string, runErr error) {
	if runErr != nil {
		if err := os.RemoveAll(dir); err != nil {
			logger.WithField("action", "blob_compaction").
				WithField("temp_dir", dir).
				WithError(err).
				Warn("could not remove temp directory")
		}
		return
	}

	removed, err := diskio.RemoveDirIfEmpty(dir)
	if err != nil || !removed {
		logger.WithField("action", "blob_compaction").
			WithField("temp_dir", dir).
			WithError(err).
			Warn("temp directory was not removed")
	}
}

func (c *Compactor) writeManifest(names *SuffixGenerator, prefix string, result Result) (string, error) {
	suffix, err := names.Next(prefix, ManifestExtension)
	if err != nil {
		return "", errors.Wrap(err, "pick manifest name")
	}
	path := filepath.Join(c.cfg.OutputDir, prefix+"."+suffix+ManifestExtension)

	m := Manifest{
		RunID:             result.RunID,
		StartedAt:         result.StartedAt,
		FinishedAt:        c.now(),
		Digest:            c.digester.Name(),
		Inputs:            manifestInputs(result.Inputs),
		Shards:            manifestShards(result.Shards),
		RecordsRead:       result.RecordsRead,
		Records:           result.Records,
		DuplicatesDropped: result.DuplicatesDropped,
		InputBytes:        result.InputBytes,
		OutputBytes:       result.OutputBytes,
	}
	if err := WriteManifest(path, m); err != nil {
		return "", err
	}
	return path, nil
}
