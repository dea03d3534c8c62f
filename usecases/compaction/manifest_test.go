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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/blobopt/entities/digest"
)

func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.20240101000000000.manifest")
	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m := Manifest{
		RunID:      "3c0a3c0e-8f6d-4a3e-9d0c-0d1f6a1b2c3d",
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		Digest:     digest.Murmur3,
		Inputs:     manifestInputs([]InputFile{{Name: "a.blob", Size: 10}}),
		Shards: manifestShards([]Shard{{
			Name: "p.20240101000000001.blob", Size: 8, Records: 1,
			FirstKey: digest.Key{Lo: 1}, LastKey: digest.Key{Lo: 1},
		}}),
		RecordsRead: 2,
		Records:     1,
		InputBytes:  10,
		OutputBytes: 8,
	}
	require.Nil(t, WriteManifest(path, m))

	got, err := ReadManifest(path)
	require.Nil(t, err)
	assert.True(t, m.StartedAt.Equal(got.StartedAt))
	assert.True(t, m.FinishedAt.Equal(got.FinishedAt))
	got.StartedAt, got.FinishedAt = m.StartedAt, m.FinishedAt
	assert.Equal(t, m, got)
	assert.Equal(t, "00000000000000000000000000000001", got.Shards[0].FirstKey)

	_, err = ReadManifest(path + ".missing")
	assert.NotNil(t, err)
}
