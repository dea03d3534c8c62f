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
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/weaviate/blobopt/entities/blob"
	"github.com/weaviate/blobopt/entities/digest"
	"github.com/weaviate/blobopt/entities/diskio"
	"github.com/weaviate/blobopt/usecases/monitoring"
)

const mergeSource = "shard_merger"

// shardWriter writes one shard under a .tmp name and moves it to its final
// name on close, so a shard without the .tmp extension is always complete.
type shardWriter struct {
	name     string
	path     string
	f        *os.File
	w        *blob.Writer
	firstKey digest.Key
	lastKey  digest.Key
	metrics  *monitoring.PrometheusMetrics
}

func newShardWriter(dir, name string, metrics *monitoring.PrometheusMetrics) (*shardWriter, error) {
	path := filepath.Join(dir, name)
	f, err := diskio.CreateFile(path+TmpExtension, mergeSource)
	if err != nil {
		return nil, errors.Wrapf(err, "create shard %q", name)
	}

	return &shardWriter{
		name:    name,
		path:    path,
		f:       f,
		w:       blob.NewWriter(diskio.NewMeteredWriter(f, metrics.WriteCallback("merge"))),
		metrics: metrics,
	}, nil
}

func (s *shardWriter) write(key digest.Key, record []byte) error {
	if _, err := s.w.Write(record); err != nil {
		return errors.Wrapf(err, "write shard %q", s.name)
	}
	if s.w.Records() == 1 {
		s.firstKey = key
	}
	s.lastKey = key
	return nil
}

func (s *shardWriter) size() int64 {
	return s.w.Size()
}

func (s *shardWriter) empty() bool {
	return s.w.Records() == 0
}

// close syncs the shard and renames it to its final name.
func (s *shardWriter) close() (Shard, error) {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return Shard{}, errors.Wrapf(err, "flush shard %q", s.name)
	}
	if err := s.f.Sync(); err != nil {
		s.f.Close()
		return Shard{}, errors.Wrapf(err, "sync shard %q", s.name)
	}
	if err := s.f.Close(); err != nil {
		return Shard{}, errors.Wrapf(err, "close shard %q", s.name)
	}
	if err := os.Rename(s.path+TmpExtension, s.path); err != nil {
		return Shard{}, errors.Wrapf(err, "rename shard %q", s.name)
	}
	if err := diskio.Fsync(filepath.Dir(s.path)); err != nil {
		return Shard{}, errors.Wrapf(err, "sync directory of shard %q", s.name)
	}

	s.metrics.ShardClosed(s.w.Size(), s.w.Records())
	return Shard{
		Path:     s.path,
		Name:     s.name,
		Size:     s.w.Size(),
		Records:  s.w.Records(),
		FirstKey: s.firstKey,
		LastKey:  s.lastKey,
	}, nil
}

// abort closes the file and leaves the .tmp file behind.
func (s *shardWriter) abort() {
	s.w.Flush()
	s.f.Close()
}
