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
	"github.com/weaviate/blobopt/usecases/config"
)

// Options represents Command line options
type Options struct {
	config.Flags

	NoProgress bool `long:"no-progress" description:"log progress instead of drawing progress bars"`
}

const (
	exitOK      = 0
	exitFailure = 1
	exitConfig  = 2
)
