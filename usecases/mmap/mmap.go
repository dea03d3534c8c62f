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

// Package mmap maps files read-only into memory.
package mmap

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

type MMap = mmap.MMap

// MapFile maps the first length bytes of f read-only. The mapping may not be
// empty.
func MapFile(f *os.File, length int) (MMap, error) {
	return mmap.MapRegion(f, length, mmap.RDONLY, 0, 0)
}
