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
	"fmt"
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"
)

const (
	barTotal    = 1000
	barTemplate = `      {{bar . "[" "█" "█" "░" "]"}} {{percent .}} {{etime .}} {{rtime . "| %s remaining"}} {{string . "msg"}}`
)

// BarSink draws one terminal progress bar per phase, with elapsed time and
// an estimate of the time remaining.
type BarSink struct {
	out    io.Writer
	phases int

	mu  sync.Mutex
	bar *pb.ProgressBar
}

// NewBarSink writes to out. phases is the number of phases shown in the
// "[i/n]" heading.
func NewBarSink(out io.Writer, phases int) *BarSink {
	return &BarSink{out: &lockedWriter{w: out}, phases: phases}
}

// lockedWriter serializes writes from the bar refresh goroutine and the sink.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func (s *BarSink) PhaseStarted(index int, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finishLocked()
	fmt.Fprintf(s.out, "\n[%d/%d] %s\n", index, s.phases, title)

	s.bar = pb.ProgressBarTemplate(barTemplate).New(barTotal)
	s.bar.SetWriter(s.out)
	s.bar.Start()
}

func (s *BarSink) Progress(fraction float64, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar == nil {
		return
	}
	s.bar.SetCurrent(int64(clamp(fraction) * barTotal))
	s.bar.Set("msg", msg)
}

func (s *BarSink) PhaseCompleted(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar != nil {
		s.bar.SetCurrent(barTotal)
		s.bar.Set("msg", "")
	}
	s.finishLocked()
	fmt.Fprintf(s.out, "      %s\n", msg)
}

func (s *BarSink) Info(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(s.out, "\n      ℹ %s\n", msg)
}

func (s *BarSink) Error(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finishLocked()
	fmt.Fprintf(s.out, "\n      ✗ ERROR: %s\n", msg)
}

// Close stops the bar of an unfinished phase.
func (s *BarSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finishLocked()
}

func (s *BarSink) finishLocked() {
	if s.bar == nil {
		return
	}
	s.bar.Finish()
	s.bar = nil
}
