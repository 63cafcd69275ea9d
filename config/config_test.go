package config

import (
	"strings"
	"testing"
)

func TestLoadFromReader(t *testing.T) {
	yaml := `
tokens_path: /opt/tokens.txt
skip_sections: [wars, armies]
ref_encoding: id
log_level: debug
`
	cfg, err := LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if cfg.TokensPath != "/opt/tokens.txt" {
		t.Errorf("tokens_path: got %q", cfg.TokensPath)
	}
	if !cfg.ShouldSkip("wars") || cfg.ShouldSkip("living") {
		t.Error("skip_sections wrong")
	}
	if cfg.RefEncoding != "id" || cfg.LogLevel != "debug" {
		t.Errorf("got %q/%q", cfg.RefEncoding, cfg.LogLevel)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.RefEncoding != "descriptor" || cfg.LogLevel != "info" {
		t.Errorf("defaults wrong: %q/%q", cfg.RefEncoding, cfg.LogLevel)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("ANNALIST_LOG_LEVEL", "warn")
	t.Setenv("ANNALIST_SKIP_SECTIONS", "wars,armies")

	cfg, err := LoadFromReader(strings.NewReader("log_level: debug"))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("env should override yaml, got %q", cfg.LogLevel)
	}
	if len(cfg.SkipSections) != 2 {
		t.Errorf("skip_sections: got %v", cfg.SkipSections)
	}
}

func TestValidate(t *testing.T) {
	if _, err := LoadFromReader(strings.NewReader("ref_encoding: sideways")); err == nil {
		t.Error("expected invalid ref_encoding to fail")
	}
	if _, err := LoadFromReader(strings.NewReader("log_level: loud")); err == nil {
		t.Error("expected invalid log_level to fail")
	}
	if _, err := LoadFromReader(strings.NewReader("unknown_key: 1")); err == nil {
		t.Error("expected unknown key to fail")
	}
}
