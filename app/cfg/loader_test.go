package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:            "./test.db",
		NewsAPIKey:        "news-key",
		GNewsKey:          "gnews-key",
		SummarizerURL:     "http://localhost:9090",
		GeoURL:            "https://ipapi.co",
		Port:              "8080",
		FeedsFile:         "./feeds.yml",
		JWTSecret:         "secret",
		FallbackCountry:   "us",
		WorkerCount:       5,
		SchedulerInterval: 30,
		UserAgent:         "Test Agent",
		Timezone:          "UTC",
		Debug:             true,
		Version:           "test-version",
	}

	if cfg.DBPath != "./test.db" {
		t.Errorf("Expected DB path './test.db', got '%s'", cfg.DBPath)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.FallbackCountry != "us" {
		t.Errorf("Expected fallback country 'us', got '%s'", cfg.FallbackCountry)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if cfg.SchedulerInterval != 30 {
		t.Errorf("Expected scheduler interval 30, got %d", cfg.SchedulerInterval)
	}
	if cfg.EnableDebugAPI {
		t.Error("Debug API should be disabled by default")
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestApplyTimezone(t *testing.T) {
	if err := applyTimezone("UTC"); err != nil {
		t.Errorf("UTC should be a valid timezone: %v", err)
	}
	if err := applyTimezone("Not/AZone"); err == nil {
		t.Error("Expected error for invalid timezone")
	}
}
