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
	"time"

	"golang.org/x/time/rate"
)

// Throttled forwards Progress events at most once per interval within a
// phase. The first event of a phase and every other kind of event always
// pass through.
type Throttled struct {
	next     Sink
	interval time.Duration

	mu        sync.Mutex
	sometimes *rate.Sometimes
}

func NewThrottled(next Sink, interval time.Duration) *Throttled {
	return &Throttled{
		next:      next,
		interval:  interval,
		sometimes: &rate.Sometimes{First: 1, Interval: interval},
	}
}

func (t *Throttled) PhaseStarted(index int, title string) {
	t.mu.Lock()
	t.sometimes = &rate.Sometimes{First: 1, Interval: t.interval}
	t.mu.Unlock()

	t.next.PhaseStarted(index, title)
}

func (t *Throttled) Progress(fraction float64, msg string) {
	t.mu.Lock()
	sometimes := t.sometimes
	t.mu.Unlock()

	sometimes.Do(func() {
		t.next.Progress(fraction, msg)
	})
}

func (t *Throttled) PhaseCompleted(msg string) {
	t.next.PhaseCompleted(msg)
}

func (t *Throttled) Info(msg string) {
	t.next.Info(msg)
}

func (t *Throttled) Error(msg string) {
	t.next.Error(msg)
}
