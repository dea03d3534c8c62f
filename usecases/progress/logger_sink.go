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

package progress

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// LogSink writes progress events as structured log lines.
type LogSink struct {
	logger logrus.FieldLogger

	mu    sync.Mutex
	phase int
	title string
}

func NewLogSink(logger logrus.FieldLogger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) entry() *logrus.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.logger.WithField("action", "blob_compaction").
		WithField("phase", s.phase).
		WithField("phase_title", s.title)
}

func (s *LogSink) PhaseStarted(index int, title string) {
	s.mu.Lock()
	s.phase, s.title = index, title
	s.mu.Unlock()

	s.entry().Info("phase started")
}

func (s *LogSink) Progress(fraction float64, msg string) {
	s.entry().WithField("percent", int(clamp(fraction)*100)).Info(msg)
}

func (s *LogSink) PhaseCompleted(msg string) {
	s.entry().WithField("percent", 100).Info(msg)
}

func (s *LogSink) Info(msg string) {
	s.entry().Info(msg)
}

func (s *LogSink) Error(msg string) {
	s.entry().Error(msg)
}
