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
	"io"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/blobopt/usecases/config"
)

const memLimitRatio = 0.9

func newLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}

func configureLogger(logger *logrus.Logger, cfg config.Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return nil
}

// limitMemory derives GOMEMLIMIT from the cgroup limit unless the
// environment already sets one. The chunk budget is derived from it.
func limitMemory(logger logrus.FieldLogger) {
	limit, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(memLimitRatio),
		memlimit.WithProvider(memlimit.FromCgroup),
	)
	if err != nil {
		logger.WithField("action", "startup").
			WithError(err).
			Debug("no cgroup memory limit applied")
		return
	}
	if limit > 0 {
		logger.WithField("action", "startup").
			WithField("limit", limit).
			Debug("set go memory limit from cgroup")
	}
}
