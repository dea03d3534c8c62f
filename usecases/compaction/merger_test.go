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
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/blobopt/entities/blob"
)

func newTestMerger(t *testing.T, maxShardSize int64, out string) *ShardMerger {
	logger, _ := test.NewNullLogger()
	return NewShardMerger(logger, &recorder{}, keyDigester{}, maxShardSize, out, "shard", nil)
}

func TestMergerPrefersLatestRun(t *testing.T) {
	tmp, out := t.TempDir(), t.TempDir()
	runs := []RunFile{
		writeRunFile(t, tmp, 0, "a:old", "b:x"),
		writeRunFile(t, tmp, 1, "a:mid", "c:x"),
		writeRunFile(t, tmp, 2, "a:new"),
	}

	result, err := newTestMerger(t, 1<<20, out).Merge(context.Background(), runs)
	require.Nil(t, err)

	assert.Equal(t, []string{"a:new", "b:x", "c:x"}, readShards(t, result.Shards))
	assert.Equal(t, int64(3), result.Records)
	assert.Equal(t, int64(2), result.DuplicatesDropped)

	for _, run := range runs {
		_, err := os.Stat(run.Path)
		assert.True(t, os.IsNotExist(err), "run %d was not removed", run.Index)
	}
}

func TestMergerRespectsShardSize(t *testing.T) {
	tmp, out := t.TempDir(), t.TempDir()

	var records []string
	for i := 0; i < 20; i++ {
		records = append(records, fmt.Sprintf("k%02d:payload", i))
	}
	framed := blob.FramedSize(len(records[0]))
	max := 3 * framed

	runs := []RunFile{
		writeRunFile(t, tmp, 0, records[:10]...),
		writeRunFile(t, tmp, 1, records[10:]...),
	}
	result, err := newTestMerger(t, max, out).Merge(context.Background(), runs)
	require.Nil(t, err)

	require.Len(t, result.Shards, 7)
	var total int64
	for i, s := range result.Shards {
		assert.LessOrEqual(t, s.Size, max)
		info, err := os.Stat(s.Path)
		require.Nil(t, err)
		assert.Equal(t, info.Size(), s.Size)
		total += s.Records

		assert.True(t, s.FirstKey.Compare(s.LastKey) <= 0)
		if i > 0 {
			assert.True(t, result.Shards[i-1].LastKey.Less(s.FirstKey))
			assert.Greater(t, s.Name, result.Shards[i-1].Name)
		}
		assert.True(t, strings.HasPrefix(s.Name, "shard."))
		assert.True(t, strings.HasSuffix(s.Name, ShardExtension))
	}
	assert.Equal(t, int64(20), total)
	assert.Equal(t, records, readShards(t, result.Shards))

	tmps, err := filepath.Glob(filepath.Join(out, "*"+TmpExtension))
	require.Nil(t, err)
	assert.Empty(t, tmps)
}

func TestMergerGivesOversizedRecordItsOwnShard(t *testing.T) {
	tmp, out := t.TempDir(), t.TempDir()
	big := "b:" + strings.Repeat("x", 200)
	runs := []RunFile{writeRunFile(t, tmp, 0, "a:1", big, "c:1")}

	result, err := newTestMerger(t, 64, out).Merge(context.Background(), runs)
	require.Nil(t, err)

	require.Len(t, result.Shards, 3)
	assert.Equal(t, []string{big}, readBlob(t, result.Shards[1].Path))
	assert.Equal(t, blob.FramedSize(len(big)), result.Shards[1].Size)
	assert.Equal(t, int64(1), result.Shards[1].Records)
}

func TestMergerWithoutRuns(t *testing.T) {
	result, err := newTestMerger(t, 1<<20, t.TempDir()).Merge(context.Background(), nil)
	require.Nil(t, err)
	assert.Empty(t, result.Shards)
	assert.Zero(t, result.Records)
}

func TestMergerStopsOnCancel(t *testing.T) {
	tmp, out := t.TempDir(), t.TempDir()
	runs := []RunFile{writeRunFile(t, tmp, 0, "a:1", "b:1")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestMerger(t, 1<<20, out).Merge(ctx, runs)
	assert.ErrorIs(t, err, context.Canceled)

	shards, err := filepath.Glob(filepath.Join(out, "*"+ShardExtension))
	require.Nil(t, err)
	assert.Empty(t, shards)
}
