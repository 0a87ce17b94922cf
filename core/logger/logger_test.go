package logger

import (
	"log/slog"
	"path/filepath"
	"testing"

	coreconfig "github.com/m3rciful/paybot/core/config"
)

func TestResolveSettingsDefaults(t *testing.T) {
	s := resolveSettings(nil)
	if s.format != formatJSON || s.level != slog.LevelInfo || s.profile != "prod" {
		t.Fatalf("defaults = %+v", s)
	}
	if s.sample != [2]int{1, 50} || s.file != "" {
		t.Fatalf("defaults = %+v", s)
	}
}

func TestResolveSettingsFromConfig(t *testing.T) {
	cfg := &coreconfig.Config{Logging: coreconfig.LoggingConfig{
		Level:       "WARNING",
		Profile:     "Dev",
		KeysOrder:   "ts, event ,,level",
		DebugSample: "0",
		Dir:         "/var/log/paybot",
		BotFile:     "bot.log",
	}}
	s := resolveSettings(cfg)
	if s.format != formatKV {
		t.Fatalf("dev profile should default to kv, got %s", s.format)
	}
	if s.level != slog.LevelWarn {
		t.Fatalf("level = %v", s.level)
	}
	if len(s.keyOrder) != 3 || s.keyOrder[1] != "event" {
		t.Fatalf("key order = %v", s.keyOrder)
	}
	if s.sample != [2]int{0, 0} {
		t.Fatalf("sample = %v", s.sample)
	}
	if s.file != filepath.Join("/var/log/paybot", "bot.log") {
		t.Fatalf("file = %q", s.file)
	}

	cfg.Logging.Format = "json"
	cfg.Logging.DebugSample = "garbage/x"
	s = resolveSettings(cfg)
	if s.format != formatJSON || s.sample != [2]int{0, 0} {
		t.Fatalf("explicit json = %+v", s)
	}
}

func TestNormalizeEnums(t *testing.T) {
	if normalizeLevel("warning") != "WARN" || normalizeLevel("") != "INFO" || normalizeLevel("debug") != "DEBUG" {
		t.Fatal("level normalization")
	}
	if s, ok := normalizeStatus(" Rate_Limited "); !ok || s != "rate_limited" {
		t.Fatalf("status = %q %v", s, ok)
	}
	if _, ok := normalizeOutcome("skip"); ok {
		t.Fatal("skip is not an outcome")
	}
}
