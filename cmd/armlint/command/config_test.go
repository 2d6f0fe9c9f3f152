// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package command

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Azure/armlint/rules"
)

func TestLoadFilterConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `exclusions:
  severity:
    - 4
  ids:
    - TA-000027
severityOverrides:
  TA-000001: 1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadFilterConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Exclusions == nil {
		t.Fatal("expected exclusions to be set")
	}
	if len(cfg.Exclusions.Severities) != 1 || cfg.Exclusions.Severities[0] != rules.SeverityInformational {
		t.Errorf("unexpected severities: %v", cfg.Exclusions.Severities)
	}
	if len(cfg.Exclusions.IDs) != 1 || cfg.Exclusions.IDs[0] != "TA-000027" {
		t.Errorf("unexpected ids: %v", cfg.Exclusions.IDs)
	}
	// Viper folds map keys to lower case. The filter matches ids
	// case-insensitively, so the lowercased key still applies.
	if got := cfg.SeverityOverrides["ta-000001"]; got != rules.SeverityHigh {
		t.Errorf("expected override severity %v, but got %v", rules.SeverityHigh, got)
	}
}

func TestLoadFilterConfigJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"inclusions": {"ids": ["TA-000004"]}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadFilterConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Inclusions == nil || len(cfg.Inclusions.IDs) != 1 || cfg.Inclusions.IDs[0] != "TA-000004" {
		t.Errorf("unexpected inclusions: %+v", cfg.Inclusions)
	}
	if cfg.Exclusions != nil {
		t.Errorf("expected no exclusions, got %+v", cfg.Exclusions)
	}
}

func TestLoadFilterConfigMissingFile(t *testing.T) {
	if _, err := loadFilterConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected an error for a missing config file")
	}
}
