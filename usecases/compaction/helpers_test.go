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
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weaviate/blobopt/entities/blob"
	"github.com/weaviate/blobopt/entities/digest"
)

// keyDigester keys a record on the text before its first ':', so "A:v1"
// and "A:v2" count as the same record. Keys sort like the text.
type keyDigester struct{}

func (keyDigester) Name() string { return "test-key" }

func (keyDigester) Sum(record []byte) digest.Key {
	key, _, _ := bytes.Cut(record, []byte(":"))
	var lo uint64
	for i := 0; i < len(key) && i < 8; i++ {
		lo |= uint64(key[i]) << (56 - 8*i)
	}
	return digest.Key{Lo: lo}
}

func writeBlob(t *testing.T, dir, name string, records ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.Nil(t, err)
	defer f.Close()

	w := blob.NewWriter(f)
	for _, r := range records {
		_, err := w.Write([]byte(r))
		require.Nil(t, err)
	}
	require.Nil(t, w.Flush())
	return path
}

func readBlob(t *testing.T, path string) []string {
	t.Helper()

	f, err := os.Open(path)
	require.Nil(t, err)
	defer f.Close()

	r := blob.NewReader(f)
	var out []string
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out
		}
		require.Nil(t, err)
		out = append(out, string(rec))
	}
}

func readShards(t *testing.T, shards []Shard) []string {
	var out []string
	for _, s := range shards {
		out = append(out, readBlob(t, s.Path)...)
	}
	return out
}

func writeRunFile(t *testing.T, dir string, index int, records ...string) RunFile {
	path := writeBlob(t, dir, fmt.Sprintf("chunk_%03d.blob", index), records...)
	info, err := os.Stat(path)
	require.Nil(t, err)
	return RunFile{
		Path:       path,
		Index:      index,
		Records:    int64(len(records)),
		RawRecords: int64(len(records)),
		Size:       info.Size(),
	}
}

type recorder struct {
	sync.Mutex
	events []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.Lock()
	defer r.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) PhaseStarted(index int, title string) { r.add("start %d %s", index, title) }
func (r *recorder) Progress(f float64, msg string)       { r.add("progress %.2f %s", f, msg) }
func (r *recorder) PhaseCompleted(msg string)            { r.add("done %s", msg) }
func (r *recorder) Info(msg string)                      { r.add("info %s", msg) }
func (r *recorder) Error(msg string)                     { r.add("error %s", msg) }

func (r *recorder) count(prefix string) int {
	r.Lock()
	defer r.Unlock()
	n := 0
	for _, e := range r.events {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (r *recorder) last() string {
	r.Lock()
	defer r.Unlock()
	if len(r.events) == 0 {
		return ""
	}
	return r.events[len(r.events)-1]
}
