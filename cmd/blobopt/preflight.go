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

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/blobopt/entities/diskio"
)

// spaceFactor covers the run files and the shards, which exist next to the
// untouched inputs at the same time, plus headroom.
const spaceFactor = 2.05

type freeSpaceFunc func(path string) (uint64, error)

// checkDiskSpace fails if the file system of dir has less than spaceFactor
// times inputBytes available.
func checkDiskSpace(dir string, inputBytes int64, free freeSpaceFunc, logger logrus.FieldLogger) error {
	required := uint64(float64(inputBytes) * spaceFactor)

	available, err := free(dir)
	if errors.Is(err, diskio.ErrFreeSpaceUnsupported) {
		logger.WithField("action", "disk_preflight").
			Warn("cannot determine free disk space on this platform, skipping check")
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "check free space of %q", dir)
	}

	logger.WithField("action", "disk_preflight").
		WithField("path", dir).
		WithField("available", available).
		WithField("required", required).
		Debug("checked free disk space")

	if available < required {
		return fmt.Errorf("insufficient disk space in %q: need %s, have %s",
			dir, humanize.IBytes(required), humanize.IBytes(available))
	}
	return nil
}
