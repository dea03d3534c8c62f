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
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enterrors "github.com/weaviate/blobopt/entities/errors"
)

func TestScannerMatchesPattern(t *testing.T) {
	dir := t.TempDir()
	writeBlob(t, dir, "text.index01.blob", "a", "b")
	writeBlob(t, dir, "text.index02.blob", "c")
	writeBlob(t, dir, "text.indexXblob", "d")
	writeBlob(t, dir, "other.blob", "e")
	require.Nil(t, os.Mkdir(filepath.Join(dir, "text.index03.blob"), 0o755))

	logger, _ := test.NewNullLogger()
	sink := &recorder{}
	inputs, err := NewScanner(logger, sink).Scan(dir, "text.index*.blob")
	require.Nil(t, err)

	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Name
		assert.Equal(t, filepath.Join(dir, in.Name), in.Path)
	}
	assert.ElementsMatch(t, []string{"text.index01.blob", "text.index02.blob"}, names)
	assert.Equal(t, int64(4+1+4+1+4+1), TotalSize(inputs))

	assert.Equal(t, 2, sink.count("progress"))
	assert.Contains(t, sink.last(), "Found 2 files")
}

func TestScannerNoMatches(t *testing.T) {
	dir := t.TempDir()
	writeBlob(t, dir, "other.dat", "a")

	logger, _ := test.NewNullLogger()
	_, err := NewScanner(logger, &recorder{}).Scan(dir, "*.blob")
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, enterrors.ErrNoInputFiles))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestScannerTreatsBracketsLiterally(t *testing.T) {
	dir := t.TempDir()
	writeBlob(t, dir, "idx[1].blob", "a")
	writeBlob(t, dir, "idx1.blob", "b")
	writeBlob(t, dir, "{a,b}.blob", "c")
	writeBlob(t, dir, "a.blob", "d")
	writeBlob(t, dir, `back\slash.blob`, "e")

	tests := []struct {
		pattern  string
		expected []string
	}{
		{"idx[1].blob", []string{"idx[1].blob"}},
		{"idx[1]*", []string{"idx[1].blob"}},
		{"idx?.blob", []string{"idx1.blob"}},
		{"{a,b}.blob", []string{"{a,b}.blob"}},
		{`back\*`, []string{`back\slash.blob`}},
	}

	logger, _ := test.NewNullLogger()
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			inputs, err := NewScanner(logger, &recorder{}).Scan(dir, tt.pattern)
			require.Nil(t, err)

			names := make([]string, len(inputs))
			for i, in := range inputs {
				names[i] = in.Name
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestScannerListDoesNotReport(t *testing.T) {
	dir := t.TempDir()
	writeBlob(t, dir, "a.blob", "a")

	logger, hook := test.NewNullLogger()
	sink := &recorder{}
	inputs, err := NewScanner(logger, sink).List(dir, "*.blob")
	require.Nil(t, err)
	assert.Len(t, inputs, 1)
	assert.Empty(t, sink.events)
	assert.Empty(t, hook.AllEntries())

	_, err = NewScanner(logger, sink).List(dir, "*.dat")
	assert.True(t, errors.Is(err, enterrors.ErrNoInputFiles))
}

func TestScannerMissingDirectory(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := NewScanner(logger, &recorder{}).Scan(filepath.Join(t.TempDir(), "missing"), "*.blob")
	assert.NotNil(t, err)
}
