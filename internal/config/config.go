// Package config holds the tunables for a single feature pipeline:
// file/directory limits, the adaptive upload delay preset, and the
// on-disk batch framing.
package config

import (
	"fmt"
	"time"

	"github.com/segment-telemetry/sdk-core/internal/delay"
	"github.com/segment-telemetry/sdk-core/internal/telemetry"
)

// DataFormat describes how a batch of events is framed for transport.
// The separator is injected by the Writer between appends; prefix and
// suffix are applied only at read time and are never written to disk.
type DataFormat struct {
	Prefix    string `yaml:"prefix"`
	Suffix    string `yaml:"suffix"`
	Separator string `yaml:"separator"`
}

// DefaultDataFormat frames a batch as a JSON array: "[" + events + "]".
func DefaultDataFormat() DataFormat {
	return DataFormat{Prefix: "[", Suffix: "]", Separator: ","}
}

// NDJSONDataFormat frames a batch as newline-delimited JSON, used by
// features (e.g. traces) whose ingestion endpoint expects NDJSON.
func NDJSONDataFormat() DataFormat {
	return DataFormat{Prefix: "", Suffix: "", Separator: "\n"}
}

// Config holds every recognized option from the pipeline specification.
type Config struct {
	// FeatureName is used for diagnostic logging and telemetry attribution.
	FeatureName string `yaml:"feature_name"`

	// MaxObjectSize is the per-event byte cap; larger events are rejected.
	MaxObjectSize int `yaml:"max_object_size"`
	// MaxFileSize is the per-file byte cap.
	MaxFileSize int64 `yaml:"max_file_size"`
	// MaxFileAgeForWrite: newer than this means a file may still be appended.
	MaxFileAgeForWrite time.Duration `yaml:"max_file_age_for_write"`
	// MinFileAgeForRead: older than this means a file is eligible to read.
	MinFileAgeForRead time.Duration `yaml:"min_file_age_for_read"`
	// MaxFileAgeForRead: older than this means the file is evicted unread.
	MaxFileAgeForRead time.Duration `yaml:"max_file_age_for_read"`
	// MaxObjectsInFile is the per-file append count cap.
	MaxObjectsInFile int `yaml:"max_objects_in_file"`
	// MaxDirectorySize is the aggregate byte cap for the feature directory.
	MaxDirectorySize int64 `yaml:"max_directory_size"`

	// UploadDelay bounds the adaptive inter-upload timer.
	UploadDelay delay.Preset `yaml:"upload_delay"`
	// DataFormat controls batch framing.
	DataFormat DataFormat `yaml:"data_format"`

	// Telemetry configures the OTLP sink that InternalError/IOError and
	// upload-error-taxonomy events are reported through. A zero value
	// (empty Endpoint) leaves telemetry disabled for this feature.
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// Default byte/time/count caps, sized for a few MB of on-device
// storage per feature, with files aged out well inside a day.
const (
	DefaultMaxObjectSize      = 512 * 1024      // 512 KiB
	DefaultMaxFileSize        = 4 * 1024 * 1024 // 4 MiB
	DefaultMaxObjectsInFile   = 500
	DefaultMaxDirectorySize   = 16 * 1024 * 1024 // 16 MiB
	DefaultMaxFileAgeForWrite = 4500 * time.Millisecond
	DefaultMinFileAgeForRead  = 5 * time.Second
	DefaultMaxFileAgeForRead  = 18 * time.Hour
)

// New applies defaults to the zero values of cfg and validates the
// result, mirroring the zero-value-fills-defaults constructors used
// throughout the storage and upload layers.
func New(cfg Config) (*Config, error) {
	if cfg.FeatureName == "" {
		return nil, fmt.Errorf("config: feature_name is required")
	}
	if cfg.MaxObjectSize <= 0 {
		cfg.MaxObjectSize = DefaultMaxObjectSize
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.MaxObjectsInFile <= 0 {
		cfg.MaxObjectsInFile = DefaultMaxObjectsInFile
	}
	if cfg.MaxDirectorySize <= 0 {
		cfg.MaxDirectorySize = DefaultMaxDirectorySize
	}
	if cfg.MaxFileAgeForWrite <= 0 {
		cfg.MaxFileAgeForWrite = DefaultMaxFileAgeForWrite
	}
	if cfg.MinFileAgeForRead <= 0 {
		cfg.MinFileAgeForRead = DefaultMinFileAgeForRead
	}
	if cfg.MaxFileAgeForRead <= 0 {
		cfg.MaxFileAgeForRead = DefaultMaxFileAgeForRead
	}
	if (cfg.UploadDelay == delay.Preset{}) {
		cfg.UploadDelay = delay.PresetRegular
	}
	if (cfg.DataFormat == DataFormat{}) {
		cfg.DataFormat = DefaultDataFormat()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the cross-field invariant that makes the Writer and
// Reader's filesystem race impossible: a file cannot be simultaneously
// writable and readable. See the concurrency notes on FilesOrchestrator.
func (cfg Config) Validate() error {
	if cfg.MinFileAgeForRead <= cfg.MaxFileAgeForWrite {
		return fmt.Errorf("config: min_file_age_for_read (%s) must exceed max_file_age_for_write (%s), "+
			"otherwise the reader can race the writer on the same file", cfg.MinFileAgeForRead, cfg.MaxFileAgeForWrite)
	}
	if cfg.MaxFileAgeForRead < cfg.MinFileAgeForRead {
		return fmt.Errorf("config: max_file_age_for_read (%s) must be >= min_file_age_for_read (%s)",
			cfg.MaxFileAgeForRead, cfg.MinFileAgeForRead)
	}
	if err := cfg.UploadDelay.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
