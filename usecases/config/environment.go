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

package config

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// FromEnv takes a *Config as it will respect initial config that has been
// provided by other means (e.g. a config file) and will only extend those
// that are set
func FromEnv(config *Config) error {
	if v := os.Getenv("BLOBOPT_INDEX_DIR"); v != "" {
		config.InputDir = v
	}

	if v := os.Getenv("BLOBOPT_BLOB_PATTERN"); v != "" {
		config.Pattern = v
	}

	if v := os.Getenv("BLOBOPT_MAX_FILE_SIZE"); v != "" {
		size, err := ParseByteSize(v)
		if err != nil {
			return errors.Wrapf(err, "parse BLOBOPT_MAX_FILE_SIZE")
		}
		config.MaxShardSize = size
	}

	if v := os.Getenv("BLOBOPT_THREADS"); v != "" {
		asInt, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "parse BLOBOPT_THREADS as int")
		}
		config.Threads = asInt
	}

	if v := os.Getenv("BLOBOPT_OUTPUT_DIR"); v != "" {
		config.OutputDir = v
	}

	if v := os.Getenv("BLOBOPT_TEMP_DIR"); v != "" {
		config.TempDir = v
	}

	if v := os.Getenv("BLOBOPT_MEMORY_BUDGET"); v != "" {
		size, err := ParseByteSize(v)
		if err != nil {
			return errors.Wrapf(err, "parse BLOBOPT_MEMORY_BUDGET")
		}
		config.MemoryBudget = size
	}

	if v := os.Getenv("BLOBOPT_DIGEST"); v != "" {
		config.Digest = v
	}

	if enabled(os.Getenv("BLOBOPT_WRITE_MANIFEST")) {
		config.WriteManifest = true
	}

	if enabled(os.Getenv("BLOBOPT_STRICT_VALIDATION")) {
		config.StrictValidation = true
	}

	if enabled(os.Getenv("BLOBOPT_SKIP_DISK_CHECK")) {
		config.SkipDiskCheck = true
	}

	if v := os.Getenv("BLOBOPT_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}

	if v := os.Getenv("BLOBOPT_LOG_FORMAT"); v != "" {
		config.LogFormat = v
	}

	if v := os.Getenv("BLOBOPT_METRICS_LISTEN"); v != "" {
		config.MetricsListen = v
	}

	return nil
}

func enabled(value string) bool {
	switch value {
	case "on", "enabled", "1", "true":
		return true
	default:
		return false
	}
}
