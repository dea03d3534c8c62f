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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/weaviate/blobopt/entities/digest"
)

const (
	DefaultPattern      = "*.blob"
	DefaultMaxShardSize = ByteSize(2 << 30)
	MinMaxShardSize     = ByteSize(1 << 20)
	MinMemoryBudget     = ByteSize(64 << 20)
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Flags are input options
type Flags struct {
	ConfigFile    string `long:"config-file" description:"path to a .yaml or .json config file"`
	IndexDir      string `long:"index-dir" description:"(required) where BLOB files are located"`
	BlobPattern   string `long:"blob-pattern" description:"BLOB filename pattern (default: *.blob)"`
	MaxFileSize   string `long:"max-file-size" description:"max output file size, e.g. 2147483648 or 2GiB (default: 2GiB)"`
	Threads       int    `long:"threads" description:"number of parallel validation threads (default: CPU cores)"`
	OutputDir     string `long:"output-dir" description:"where to write optimized BLOBs (default: index-dir)"`
	TempDir       string `long:"temp-dir" description:"where to keep intermediate run files (default: output-dir)"`
	MemoryBudget  string `long:"memory-budget" description:"in-memory batch size, e.g. 512MiB (default: 30% of available memory)"`
	Digest        string `long:"digest" description:"record digest: murmur3-128, xxhash64 or legacy31 (default: murmur3-128)"`
	Manifest      bool   `long:"manifest" description:"write a manifest describing the produced shards"`
	Strict        bool   `long:"strict" description:"fail validation on trailing bytes after the last frame"`
	SkipDiskCheck bool   `long:"skip-disk-check" description:"do not check free disk space before starting"`
	LogLevel      string `long:"log-level" description:"log level: trace, debug, info, warn, error (default: info)"`
	LogFormat     string `long:"log-format" description:"log format: text or json (default: text)"`
	MetricsListen string `long:"metrics-listen" description:"serve prometheus metrics on this address while running, e.g. :2112"`
}

// Config is the validated, read-only configuration of one compaction run.
type Config struct {
	InputDir         string   `json:"index_dir" yaml:"index_dir"`
	Pattern          string   `json:"blob_pattern" yaml:"blob_pattern"`
	MaxShardSize     ByteSize `json:"max_file_size" yaml:"max_file_size"`
	Threads          int      `json:"threads" yaml:"threads"`
	OutputDir        string   `json:"output_dir" yaml:"output_dir"`
	TempDir          string   `json:"temp_dir" yaml:"temp_dir"`
	MemoryBudget     ByteSize `json:"memory_budget" yaml:"memory_budget"`
	Digest           string   `json:"digest" yaml:"digest"`
	WriteManifest    bool     `json:"write_manifest" yaml:"write_manifest"`
	StrictValidation bool     `json:"strict_validation" yaml:"strict_validation"`
	SkipDiskCheck    bool     `json:"skip_disk_check" yaml:"skip_disk_check"`
	LogLevel         string   `json:"log_level" yaml:"log_level"`
	LogFormat        string   `json:"log_format" yaml:"log_format"`
	MetricsListen    string   `json:"metrics_listen" yaml:"metrics_listen"`
}

// Error marks configuration problems, which are detected before any work
// is done.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid config: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func configErr(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Err: err}
}

func Defaults() Config {
	return Config{
		Pattern:      DefaultPattern,
		MaxShardSize: DefaultMaxShardSize,
		Threads:      runtime.NumCPU(),
		Digest:       digest.Default,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
	}
}

// Load builds the configuration from defaults, the optional config file, the
// environment and the command line, in increasing precedence. The output
// directory is created if it does not exist yet.
func Load(flags Flags, logger logrus.FieldLogger) (Config, error) {
	cfg := Defaults()

	if flags.ConfigFile != "" {
		file, err := os.ReadFile(flags.ConfigFile)
		if err != nil {
			return cfg, configErr(errors.Wrap(err, "read config file"))
		}
		logger.WithField("action", "config_load").
			WithField("config_file_path", flags.ConfigFile).
			Debug("loading config file")
		if err := parseConfigFile(&cfg, file, flags.ConfigFile); err != nil {
			return cfg, configErr(err)
		}
	}

	if err := FromEnv(&cfg); err != nil {
		return cfg, configErr(err)
	}

	if err := cfg.fromFlags(flags); err != nil {
		return cfg, configErr(err)
	}

	cfg.applyDirDefaults()

	if err := cfg.Validate(); err != nil {
		return cfg, configErr(err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return cfg, configErr(errors.Wrapf(err, "create output directory %q", cfg.OutputDir))
	}

	return cfg, nil
}

func parseConfigFile(cfg *Config, file []byte, name string) error {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		if err := json.Unmarshal(file, cfg); err != nil {
			return fmt.Errorf("error unmarshalling the json config file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return fmt.Errorf("error unmarshalling the yaml config file: %w", err)
		}
	case "":
		return fmt.Errorf("config file does not have a file ending, got '%s'", name)
	default:
		return fmt.Errorf("unsupported config file extension '%s', use .yaml or .json", ext)
	}
	return nil
}

func (c *Config) fromFlags(flags Flags) error {
	if flags.IndexDir != "" {
		c.InputDir = flags.IndexDir
	}
	if flags.BlobPattern != "" {
		c.Pattern = flags.BlobPattern
	}
	if flags.MaxFileSize != "" {
		size, err := ParseByteSize(flags.MaxFileSize)
		if err != nil {
			return errors.Wrap(err, "--max-file-size")
		}
		c.MaxShardSize = size
	}
	if flags.Threads != 0 {
		c.Threads = flags.Threads
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.TempDir != "" {
		c.TempDir = flags.TempDir
	}
	if flags.MemoryBudget != "" {
		size, err := ParseByteSize(flags.MemoryBudget)
		if err != nil {
			return errors.Wrap(err, "--memory-budget")
		}
		c.MemoryBudget = size
	}
	if flags.Digest != "" {
		c.Digest = flags.Digest
	}
	if flags.Manifest {
		c.WriteManifest = true
	}
	if flags.Strict {
		c.StrictValidation = true
	}
	if flags.SkipDiskCheck {
		c.SkipDiskCheck = true
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.LogFormat != "" {
		c.LogFormat = flags.LogFormat
	}
	if flags.MetricsListen != "" {
		c.MetricsListen = flags.MetricsListen
	}
	return nil
}

func (c *Config) applyDirDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = c.InputDir
	}
	if c.TempDir == "" {
		c.TempDir = c.OutputDir
	}
}

func (c Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("--index-dir is required")
	}

	info, err := os.Stat(c.InputDir)
	if os.IsNotExist(err) {
		return errors.Errorf("index directory does not exist: %s", c.InputDir)
	}
	if err != nil {
		return errors.Wrapf(err, "stat index directory %q", c.InputDir)
	}
	if !info.IsDir() {
		return errors.Errorf("index path is not a directory: %s", c.InputDir)
	}

	if c.Pattern == "" {
		return errors.New("blob pattern must not be empty")
	}

	if c.MaxShardSize < MinMaxShardSize {
		return errors.Errorf("max-file-size must be at least 1MB, got %d", c.MaxShardSize)
	}

	if c.Threads < 1 {
		return errors.Errorf("threads must be at least 1, got %d", c.Threads)
	}

	if c.MemoryBudget < 0 {
		return errors.Errorf("memory budget must not be negative, got %d", c.MemoryBudget)
	}
	if c.MemoryBudget > 0 && c.MemoryBudget < MinMemoryBudget {
		return errors.Errorf("memory budget must be 0 (derive) or at least %s, got %d",
			MinMemoryBudget, c.MemoryBudget)
	}

	if _, err := digest.New(c.Digest); err != nil {
		return err
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.Errorf("unsupported log format %q, use text or json", c.LogFormat)
	}

	return nil
}
