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

// Package progress carries human-readable progress events out of the
// compaction pipeline. Stages only ever emit events, they never read state
// back from a sink.
package progress

// Sink receives pipeline progress events. Implementations must not block
// for longer than regular call latency.
type Sink interface {
	PhaseStarted(index int, title string)
	// Progress reports the fraction of the current phase done, in [0, 1].
	Progress(fraction float64, msg string)
	PhaseCompleted(msg string)
	Info(msg string)
	Error(msg string)
}

type noop struct{}

// Noop discards every event.
var Noop Sink = noop{}

func (noop) PhaseStarted(int, string)  {}
func (noop) Progress(float64, string)  {}
func (noop) PhaseCompleted(msg string) {}
func (noop) Info(string)               {}
func (noop) Error(string)              {}

// Multi fans every event out to all sinks in order.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

type multi []Sink

func (m multi) PhaseStarted(index int, title string) {
	for _, s := range m {
		s.PhaseStarted(index, title)
	}
}

func (m multi) Progress(fraction float64, msg string) {
	for _, s := range m {
		s.Progress(fraction, msg)
	}
}

func (m multi) PhaseCompleted(msg string) {
	for _, s := range m {
		s.PhaseCompleted(msg)
	}
}

func (m multi) Info(msg string) {
	for _, s := range m {
		s.Info(msg)
	}
}

func (m multi) Error(msg string) {
	for _, s := range m {
		s.Error(msg)
	}
}

func clamp(fraction float64) float64 {
	if fraction < 0 {
		return 0
	}
	if fraction > 1 {
		return 1
	}
	return fraction
}
