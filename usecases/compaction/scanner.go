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
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/blobopt/entities/diskio"
	enterrors "github.com/weaviate/blobopt/entities/errors"
	"github.com/weaviate/blobopt/usecases/progress"
)

// Scanner finds the input BLOBs of a compaction.
type Scanner struct {
	logger logrus.FieldLogger
	sink   progress.Sink
}

func NewScanner(logger logrus.FieldLogger, sink progress.Sink) *Scanner {
	return &Scanner{logger: logger, sink: sink}
}

// List returns the regular files in dir whose name matches pattern, in
// directory enumeration order, without reporting them. "*" matches any run
// of characters, "?" a single character, every other character matches
// literally.
func (s *Scanner) List(dir, pattern string) ([]InputFile, error) {
	glob := literalPattern(pattern)

	var patternErr error
	found, err := diskio.ListFiles(dir, func(name string) bool {
		ok, err := doublestar.Match(glob, name)
		if err != nil && patternErr == nil {
			patternErr = err
		}
		return ok
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list index directory %q", dir)
	}
	if patternErr != nil {
		return nil, errors.Wrapf(patternErr, "blob pattern %q", pattern)
	}
	if len(found) == 0 {
		return nil, errors.Wrapf(enterrors.ErrNoInputFiles, "pattern %q in %q", pattern, dir)
	}

	inputs := make([]InputFile, len(found))
	for i, f := range found {
		inputs[i] = InputFile{Path: f.Path, Name: f.Name, Size: f.Size}
	}
	return inputs, nil
}

// Scan lists the inputs like List and reports every file and the total to
// the sink.
func (s *Scanner) Scan(dir, pattern string) ([]InputFile, error) {
	inputs, err := s.List(dir, pattern)
	if err != nil {
		return nil, err
	}

	for i, in := range inputs {
		s.sink.Progress(float64(i+1)/float64(len(inputs)), "Found: "+in.Name)
	}

	total := TotalSize(inputs)
	s.logger.WithField("action", "blob_scan").
		WithField("path", dir).
		WithField("pattern", pattern).
		WithField("files", len(inputs)).
		WithField("bytes", total).
		Info("found input blobs")
	s.sink.PhaseCompleted(fmt.Sprintf("Found %d files (%s)", len(inputs), humanize.IBytes(uint64(total))))

	return inputs, nil
}

// literalPattern escapes everything doublestar treats as special except
// "*" and "?".
func literalPattern(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))
	for _, r := range pattern {
		if strings.ContainsRune(`[]{}\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
