package config

import (
	"testing"
	"time"

	"github.com/segment-telemetry/sdk-core/internal/delay"
)

func TestNewRequiresFeatureName(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty feature name")
	}
}

func TestNewFillsDefaults(t *testing.T) {
	cfg, err := New(Config{FeatureName: "logs"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.MaxObjectSize != DefaultMaxObjectSize {
		t.Errorf("MaxObjectSize = %v, want %v", cfg.MaxObjectSize, DefaultMaxObjectSize)
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("MaxFileSize = %v, want %v", cfg.MaxFileSize, DefaultMaxFileSize)
	}
	if cfg.MaxObjectsInFile != DefaultMaxObjectsInFile {
		t.Errorf("MaxObjectsInFile = %v, want %v", cfg.MaxObjectsInFile, DefaultMaxObjectsInFile)
	}
	if cfg.MaxDirectorySize != DefaultMaxDirectorySize {
		t.Errorf("MaxDirectorySize = %v, want %v", cfg.MaxDirectorySize, DefaultMaxDirectorySize)
	}
	if cfg.MaxFileAgeForWrite != DefaultMaxFileAgeForWrite {
		t.Errorf("MaxFileAgeForWrite = %v, want %v", cfg.MaxFileAgeForWrite, DefaultMaxFileAgeForWrite)
	}
	if cfg.MinFileAgeForRead != DefaultMinFileAgeForRead {
		t.Errorf("MinFileAgeForRead = %v, want %v", cfg.MinFileAgeForRead, DefaultMinFileAgeForRead)
	}
	if cfg.MaxFileAgeForRead != DefaultMaxFileAgeForRead {
		t.Errorf("MaxFileAgeForRead = %v, want %v", cfg.MaxFileAgeForRead, DefaultMaxFileAgeForRead)
	}
	if cfg.UploadDelay != delay.PresetRegular {
		t.Errorf("UploadDelay = %+v, want %+v", cfg.UploadDelay, delay.PresetRegular)
	}
	if cfg.DataFormat != DefaultDataFormat() {
		t.Errorf("DataFormat = %+v, want %+v", cfg.DataFormat, DefaultDataFormat())
	}
}

func TestNewPreservesExplicitValues(t *testing.T) {
	cfg, err := New(Config{
		FeatureName:        "traces",
		MaxObjectSize:      1024,
		MaxFileAgeForWrite: time.Second,
		MinFileAgeForRead:  2 * time.Second,
		MaxFileAgeForRead:  time.Hour,
		UploadDelay:        delay.PresetInstant,
		DataFormat:         NDJSONDataFormat(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.MaxObjectSize != 1024 {
		t.Errorf("MaxObjectSize overridden by default: got %v", cfg.MaxObjectSize)
	}
	if cfg.UploadDelay != delay.PresetInstant {
		t.Errorf("UploadDelay overridden by default: got %+v", cfg.UploadDelay)
	}
	if cfg.DataFormat != NDJSONDataFormat() {
		t.Errorf("DataFormat overridden by default: got %+v", cfg.DataFormat)
	}
}

func TestValidateRejectsReadWriteAgeOverlap(t *testing.T) {
	_, err := New(Config{
		FeatureName:        "logs",
		MaxFileAgeForWrite: 5 * time.Second,
		MinFileAgeForRead:  5 * time.Second,
	})
	if err == nil {
		t.Fatal("expected error when min_file_age_for_read <= max_file_age_for_write")
	}
}

func TestValidateRejectsInvertedReadWindow(t *testing.T) {
	_, err := New(Config{
		FeatureName:        "logs",
		MaxFileAgeForWrite: time.Second,
		MinFileAgeForRead:  10 * time.Second,
		MaxFileAgeForRead:  5 * time.Second,
	})
	if err == nil {
		t.Fatal("expected error when max_file_age_for_read < min_file_age_for_read")
	}
}

func TestValidateRejectsInvalidDelayPreset(t *testing.T) {
	_, err := New(Config{
		FeatureName: "logs",
		UploadDelay: delay.Preset{Initial: time.Second, Min: 2 * time.Second, Max: time.Second, ChangeRate: 0.1},
	})
	if err == nil {
		t.Fatal("expected error for invalid delay preset")
	}
}
