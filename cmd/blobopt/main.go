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
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/blobopt/entities/diskio"
	"github.com/weaviate/blobopt/usecases/compaction"
	"github.com/weaviate/blobopt/usecases/config"
	"github.com/weaviate/blobopt/usecases/progress"
)

const logProgressInterval = 5 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts Options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "blobopt"
	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			fmt.Fprintln(stdout, err)
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitConfig
	}

	logger := newLogger(stderr)
	log := logger.WithField("app", "blobopt")

	cfg, err := config.Load(opts.Flags, log)
	if err == nil {
		err = configureLogger(logger, cfg)
	}
	if err != nil {
		log.WithError(err).Error("invalid configuration")
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConfig
	}
	limitMemory(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsListen != "" {
		shutdown := serveMetrics(cfg.MetricsListen, log)
		defer shutdown()
	}

	printHeader(stdout, cfg)

	if !cfg.SkipDiskCheck {
		if err := preflight(cfg, log); err != nil {
			return fail(stderr, logger, err)
		}
	}

	sink, closeSink := newSink(opts, cfg, logger, stderr)
	c, err := compaction.New(cfg, log, sink)
	if err != nil {
		closeSink()
		return fail(stderr, logger, err)
	}

	result, err := c.Run(ctx)
	closeSink()
	if err != nil {
		if report := result.Validation.Err(); report != nil {
			fmt.Fprintf(stderr, "%v\n", report)
		}
		return fail(stderr, logger, err)
	}

	printSummary(stdout, result)
	return exitOK
}

func preflight(cfg config.Config, logger logrus.FieldLogger) error {
	inputs, err := compaction.NewScanner(logger, progress.Noop).List(cfg.InputDir, cfg.Pattern)
	if err != nil {
		return err
	}
	return checkDiskSpace(cfg.OutputDir, compaction.TotalSize(inputs), diskio.FreeSpace, logger)
}

// newSink draws progress bars on a terminal and logs progress otherwise.
func newSink(opts Options, cfg config.Config, logger *logrus.Logger, out io.Writer) (progress.Sink, func()) {
	logSink := progress.NewThrottled(progress.NewLogSink(logger), logProgressInterval)

	f, ok := out.(*os.File)
	if opts.NoProgress || cfg.LogFormat == "json" || !ok || !isatty.IsTerminal(f.Fd()) {
		return logSink, func() {}
	}

	bar := progress.NewBarSink(out, compaction.Phases)
	return bar, bar.Close
}

func fail(stderr io.Writer, logger *logrus.Logger, err error) int {
	if errors.Is(err, context.Canceled) {
		logger.WithField("action", "blob_compaction").Warn("interrupted")
	}
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitConfig
	}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		fmt.Fprintf(stderr, "Error: %+v\n", err)
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return exitFailure
}
