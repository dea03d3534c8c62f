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

package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	require.Nil(t, os.WriteFile(path, []byte("mapped bytes"), 0o644))

	f, err := os.Open(path)
	require.Nil(t, err)
	defer f.Close()

	m, err := MapFile(f, 12)
	require.Nil(t, err)
	assert.Equal(t, []byte("mapped bytes"), []byte(m))
	require.Nil(t, m.Unmap())
}
