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

package errors

import (
	"errors"
	"io/fs"
)

var (
	// ErrNoInputFiles is returned when no input matches the configured
	// pattern. It matches fs.ErrNotExist under errors.Is.
	ErrNoInputFiles = notFound("no BLOB files found")

	// ErrValidationFailed is returned when a produced shard could not be
	// scanned completely.
	ErrValidationFailed = errors.New("validation failed, output blobs are corrupted")
)

type notFoundError struct {
	msg string
}

func notFound(msg string) error {
	return &notFoundError{msg: msg}
}

func (e *notFoundError) Error() string {
	return e.msg
}

func (e *notFoundError) Is(target error) bool {
	return target == fs.ErrNotExist
}
