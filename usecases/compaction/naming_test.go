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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardPrefix(t *testing.T) {
	inputs := func(names ...string) []InputFile {
		out := make([]InputFile, len(names))
		for i, n := range names {
			out[i] = InputFile{Name: n}
		}
		return out
	}

	tests := []struct {
		name     string
		pattern  string
		inputs   []InputFile
		expected string
	}{
		{"text before wildcard", "text.index*.blob", nil, "text.index"},
		{"trailing dot trimmed", "text.index.*.blob", nil, "text.index"},
		{"literal blob name", "archive.blob", nil, "archive"},
		{"leading wildcard falls back to input", "*.blob", inputs("text.index.20240101.blob"), "text.index"},
		{"two segment input", "*.blob", inputs("segment.blob"), "segment"},
		{"single segment input", "*", inputs("data"), "data"},
		{"nothing usable", "*.blob", nil, DefaultPrefix},
		{"question mark is not a prefix", "?x*.blob", inputs("ax.blob"), "ax"},
		{"brackets are literal", "idx[1]*.blob", nil, "idx[1]"},
		{"path separators are not a prefix", "sub/idx*.blob", inputs("idx.blob"), "idx"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, ShardPrefix(test.pattern, test.inputs))
		})
	}
}

func TestFormatSuffix(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 4, 42*int(time.Millisecond), time.UTC)
	assert.Equal(t, "20240309070504042", FormatSuffix(ts))
	assert.Len(t, FormatSuffix(ts), 17)
}

func TestSuffixGeneratorIsMonotonic(t *testing.T) {
	dir := t.TempDir()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	g := NewSuffixGenerator(dir)
	g.now = func() time.Time { return fixed }

	first, err := g.Next("p", ShardExtension)
	require.Nil(t, err)
	second, err := g.Next("p", ShardExtension)
	require.Nil(t, err)

	assert.Equal(t, "20240101000000000", first)
	assert.Equal(t, "20240101000000001", second)
}

func TestSuffixGeneratorSkipsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Nil(t, os.WriteFile(filepath.Join(dir, "p.20240101000000000.blob"), nil, 0o644))
	require.Nil(t, os.WriteFile(filepath.Join(dir, "p.20240101000000001.blob.tmp"), nil, 0o644))

	g := NewSuffixGenerator(dir)
	g.now = func() time.Time { return fixed }

	suffix, err := g.Next("p", ShardExtension)
	require.Nil(t, err)
	assert.Equal(t, "20240101000000002", suffix)

	// another extension does not collide with the shard names
	suffix, err = g.Next("p", ManifestExtension)
	require.Nil(t, err)
	assert.Equal(t, "20240101000000003", suffix)
}
