package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Env:                "dev",
		Port:               "8080",
		RequestTimeout:     30 * time.Second,
		HandlerTimeout:     time.Minute,
		TelegramToken:      "123:abc",
		OperatorIDs:        "900, 901",
		StoreDriver:        StoreMemory,
		CatalogDriver:      CatalogSheets,
		CatalogSheetID:     "sheet",
		CatalogPageSize:    5,
		BrowsingSessionTTL: 30 * time.Minute,
		PendingReplyTTL:    24 * time.Hour,
		ListLimit:          10,
		MaxAttachmentMB:    20,
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "dev" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.HandlerTimeout != 60*time.Second || cfg.PendingReplyTTL != 24*time.Hour || cfg.BrowsingSessionTTL != 30*time.Minute {
		t.Fatalf("unexpected durations %v %v %v", cfg.HandlerTimeout, cfg.PendingReplyTTL, cfg.BrowsingSessionTTL)
	}
	if cfg.CatalogPageSize != 5 || cfg.ListLimit != 10 || cfg.StoreDriver != StoreMemory || cfg.CatalogDriver != CatalogSheets {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.ReplyRetainOnFailure {
		t.Fatal("retain on failure must default to false")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("OPERATOR_IDS", "900,901")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("REPLY_RETAIN_ON_FAILURE", "true")
	t.Setenv("CATALOG_PAGE_SIZE", "8")
	t.Setenv("DATABASE_URL", "postgres://localhost/bot")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TelegramToken != "123:abc" || cfg.OperatorIDs != "900,901" || cfg.DatabaseURL != "postgres://localhost/bot" {
		t.Fatalf("env values not loaded: %+v", cfg)
	}
	if cfg.StoreDriver != StoreSQLite {
		t.Fatalf("expected normalised driver, got %q", cfg.StoreDriver)
	}
	if !cfg.ReplyRetainOnFailure || cfg.CatalogPageSize != 8 {
		t.Fatalf("unexpected typed values %+v", cfg)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "TELEGRAM_TOKEN=from-file\nOPERATOR_IDS=42\nLIST_LIMIT=3\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TelegramToken != "from-file" || cfg.ListLimit != 3 {
		t.Fatalf("file values not loaded: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(*Config){
		"missing token":         func(c *Config) { c.TelegramToken = "" },
		"missing operators":     func(c *Config) { c.OperatorIDs = "" },
		"bad operator id":       func(c *Config) { c.OperatorIDs = "900,abc" },
		"unknown store":         func(c *Config) { c.StoreDriver = "s3" },
		"postgres without url":  func(c *Config) { c.StoreDriver = StorePostgres },
		"drive without root":    func(c *Config) { c.StoreDriver = StoreDrive },
		"sheets without id":     func(c *Config) { c.CatalogSheetID = "" },
		"csv without url":       func(c *Config) { c.CatalogDriver = CatalogCSV },
		"page size zero":        func(c *Config) { c.CatalogPageSize = 0 },
		"prod without adminkey": func(c *Config) { c.Env = "prod" },
		"amqp without exchange": func(c *Config) { c.AMQPURL = "amqp://localhost" },
		"bad webhook url":       func(c *Config) { c.WebhookURL = "not a url" },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestOperators(t *testing.T) {
	cfg := Config{OperatorIDs: "900, 901;902"}
	ids, err := cfg.Operators()
	if err != nil {
		t.Fatalf("operators: %v", err)
	}
	if len(ids) != 3 || ids[0] != 900 || ids[2] != 902 {
		t.Fatalf("unexpected ids %v", ids)
	}
}
