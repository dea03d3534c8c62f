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
	"bufio"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/weaviate/blobopt/entities/diskio"
)

const manifestSource = "manifest"

// Manifest describes one finished compaction. It is written next to the
// shards it lists.
type Manifest struct {
	RunID      string    `msgpack:"run_id"`
	StartedAt  time.Time `msgpack:"started_at"`
	FinishedAt time.Time `msgpack:"finished_at"`
	Digest     string    `msgpack:"digest"`

	Inputs []ManifestInput `msgpack:"inputs"`
	Shards []ManifestShard `msgpack:"shards"`

	RecordsRead       int64 `msgpack:"records_read"`
	Records           int64 `msgpack:"records"`
	DuplicatesDropped int64 `msgpack:"duplicates_dropped"`
	InputBytes        int64 `msgpack:"input_bytes"`
	OutputBytes       int64 `msgpack:"output_bytes"`
}

type ManifestInput struct {
	Name string `msgpack:"name"`
	Size int64  `msgpack:"size"`
}

type ManifestShard struct {
	Name     string `msgpack:"name"`
	Size     int64  `msgpack:"size"`
	Records  int64  `msgpack:"records"`
	FirstKey string `msgpack:"first_key"`
	LastKey  string `msgpack:"last_key"`
}

func manifestShards(shards []Shard) []ManifestShard {
	out := make([]ManifestShard, len(shards))
	for i, s := range shards {
		out[i] = ManifestShard{
			Name:     s.Name,
			Size:     s.Size,
			Records:  s.Records,
			FirstKey: s.FirstKey.String(),
			LastKey:  s.LastKey.String(),
		}
	}
	return out
}

func manifestInputs(inputs []InputFile) []ManifestInput {
	out := make([]ManifestInput, len(inputs))
	for i, in := range inputs {
		out[i] = ManifestInput{Name: in.Name, Size: in.Size}
	}
	return out
}

// WriteManifest encodes m to path through a temporary file.
func WriteManifest(path string, m Manifest) error {
	tmp := path + TmpExtension
	f, err := diskio.CreateFile(tmp, manifestSource)
	if err != nil {
		return errors.Wrap(err, "create manifest")
	}

	w := bufio.NewWriter(f)
	if err := msgpack.NewEncoder(w).Encode(m); err != nil {
		f.Close()
		return errors.Wrap(err, "encode manifest")
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrap(err, "flush manifest")
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Wrap(err, "sync manifest")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close manifest")
	}
	return errors.Wrap(os.Rename(tmp, path), "rename manifest")
}

func ReadManifest(path string) (Manifest, error) {
	f, err := diskio.OpenFile(path, manifestSource)
	if err != nil {
		return Manifest{}, errors.Wrap(err, "open manifest")
	}
	defer f.Close()

	var m Manifest
	if err := msgpack.NewDecoder(bufio.NewReader(f)).Decode(&m); err != nil {
		return Manifest{}, errors.Wrap(err, "decode manifest")
	}
	return m, nil
}
