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
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrorGroupWrapper is an errgroup.Group that turns panics in its goroutines
// into errors instead of crashing the process.
type ErrorGroupWrapper struct {
	*errgroup.Group
	logger logrus.FieldLogger

	mu          sync.Mutex
	returnError error
}

// NewErrorGroupWrapper creates a group. A limit above zero bounds how many
// goroutines run at once.
func NewErrorGroupWrapper(logger logrus.FieldLogger, limit int) *ErrorGroupWrapper {
	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}
	return &ErrorGroupWrapper{
		Group:  g,
		logger: logger,
	}
}

// Go runs f in the group. localVars are logged if f panics.
func (egw *ErrorGroupWrapper) Go(f func() error, localVars ...interface{}) {
	egw.Group.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				egw.logger.WithField("action", "error_group_recover").
					WithField("local_vars", localVars).
					Errorf("recovered from panic: %v", r)
				debug.PrintStack()

				egw.mu.Lock()
				if egw.returnError == nil {
					egw.returnError = fmt.Errorf("panic occurred: %v", r)
				}
				egw.mu.Unlock()
			}
		}()
		return f()
	})
}

// Wait waits for all goroutines to finish and returns the first non-nil
// error, or the first recovered panic.
func (egw *ErrorGroupWrapper) Wait() error {
	if err := egw.Group.Wait(); err != nil {
		return err
	}

	egw.mu.Lock()
	defer egw.mu.Unlock()
	return egw.returnError
}
