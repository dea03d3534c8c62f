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
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/blobopt/entities/blob"
)

func inputsOf(t *testing.T, paths ...string) []InputFile {
	out := make([]InputFile, len(paths))
	for i, p := range paths {
		info, err := os.Stat(p)
		require.Nil(t, err)
		out[i] = InputFile{Path: p, Name: info.Name(), Size: info.Size()}
	}
	return out
}

func TestChunkSorterKeepsLastRecordPerKey(t *testing.T) {
	in, tmp := t.TempDir(), t.TempDir()
	p := writeBlob(t, in, "a.blob", "b:1", "a:1", "c:1", "a:2", "b:2")

	logger, _ := test.NewNullLogger()
	runs, err := NewChunkSorter(logger, &recorder{}, keyDigester{}, 1<<20, tmp).
		Sort(context.Background(), inputsOf(t, p))
	require.Nil(t, err)
	require.Len(t, runs, 1)

	assert.Equal(t, 0, runs[0].Index)
	assert.Equal(t, int64(3), runs[0].Records)
	assert.Equal(t, int64(5), runs[0].RawRecords)
	assert.Equal(t, []string{"a:2", "b:2", "c:1"}, readBlob(t, runs[0].Path))

	info, err := os.Stat(runs[0].Path)
	require.Nil(t, err)
	assert.Equal(t, info.Size(), runs[0].Size)
}

func TestChunkSorterSpillsAtBudget(t *testing.T) {
	in, tmp := t.TempDir(), t.TempDir()
	first := writeBlob(t, in, "1.blob", "A:v1", "B:v1")
	second := writeBlob(t, in, "2.blob", "A:v2")
	third := writeBlob(t, in, "3.blob", "C:v1")

	logger, _ := test.NewNullLogger()
	sink := &recorder{}
	budget := 2 * blob.FramedSize(4)
	runs, err := NewChunkSorter(logger, sink, keyDigester{}, budget, tmp).
		Sort(context.Background(), inputsOf(t, first, second, third))
	require.Nil(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, []string{"A:v1", "B:v1"}, readBlob(t, runs[0].Path))
	assert.Equal(t, []string{"A:v2", "C:v1"}, readBlob(t, runs[1].Path))
	assert.Equal(t, 1, runs[1].Index)
	assert.Contains(t, sink.last(), "Created 2 sorted runs from 4 records")
}

func TestChunkSorterIgnoresTruncatedTail(t *testing.T) {
	in, tmp := t.TempDir(), t.TempDir()
	p := writeBlob(t, in, "a.blob", "x:1", "y:1")

	f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o644)
	require.Nil(t, err)
	_, err = f.Write([]byte{0, 0, 0, 100, 'z'})
	require.Nil(t, err)
	require.Nil(t, f.Close())

	logger, hook := test.NewNullLogger()
	runs, err := NewChunkSorter(logger, &recorder{}, keyDigester{}, 1<<20, tmp).
		Sort(context.Background(), inputsOf(t, p))
	require.Nil(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{"x:1", "y:1"}, readBlob(t, runs[0].Path))

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
			assert.Equal(t, int64(5), e.Data["discarded_bytes"])
		}
	}
	assert.True(t, warned)
}

func TestChunkSorterWithoutRecords(t *testing.T) {
	in, tmp := t.TempDir(), t.TempDir()
	p := writeBlob(t, in, "empty.blob")

	logger, _ := test.NewNullLogger()
	runs, err := NewChunkSorter(logger, &recorder{}, keyDigester{}, 1<<20, tmp).
		Sort(context.Background(), inputsOf(t, p))
	require.Nil(t, err)
	assert.Empty(t, runs)
}

func TestChunkSorterStopsOnCancel(t *testing.T) {
	in, tmp := t.TempDir(), t.TempDir()
	p := writeBlob(t, in, "a.blob", "a:1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger, _ := test.NewNullLogger()
	_, err := NewChunkSorter(logger, &recorder{}, keyDigester{}, 1<<20, tmp).
		Sort(ctx, inputsOf(t, p))
	assert.ErrorIs(t, err, context.Canceled)
}
