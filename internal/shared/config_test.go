package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("valid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		content := `[credentials.oauth]
client_id = "client-abc"
client_secret = "secret-xyz"

[auth]
bundle_path = "/tmp/bundle.json"

[database]
path = "test.db"
max_open_conns = 10
max_idle_conns = 3

[resolver]
candidates_per_query = 8
num_workers = 2
rate_limit = 2.5
timeout_seconds = 30
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}

		if config.Credentials.OAuth.ClientID != "client-abc" {
			t.Errorf("ClientID = %v, want client-abc", config.Credentials.OAuth.ClientID)
		}
		if config.Auth.BundlePath != "/tmp/bundle.json" {
			t.Errorf("BundlePath = %v, want /tmp/bundle.json", config.Auth.BundlePath)
		}
		if config.Database.MaxOpenConns != 10 {
			t.Errorf("MaxOpenConns = %v, want 10", config.Database.MaxOpenConns)
		}
		if config.Resolver.CandidatesPerQuery != 8 {
			t.Errorf("CandidatesPerQuery = %v, want 8", config.Resolver.CandidatesPerQuery)
		}
		if config.Resolver.RateLimit != 2.5 {
			t.Errorf("RateLimit = %v, want 2.5", config.Resolver.RateLimit)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/config.toml")
		if err == nil {
			t.Error("LoadConfig() expected error for missing file")
		}
	})

	t.Run("malformed toml", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "bad.toml")

		if err := os.WriteFile(configPath, []byte("[database\npath ="), 0644); err != nil {
			t.Fatalf("Failed to create test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("LoadConfig() expected error for malformed toml")
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Auth.BundlePath != "~/.trackset/bundle.json" {
		t.Errorf("BundlePath = %v, want ~/.trackset/bundle.json", config.Auth.BundlePath)
	}
	if config.Database.Path != "trackset.db" {
		t.Errorf("Database.Path = %v, want trackset.db", config.Database.Path)
	}
	if config.Resolver.CandidatesPerQuery != 5 {
		t.Errorf("CandidatesPerQuery = %v, want 5", config.Resolver.CandidatesPerQuery)
	}
	if config.Resolver.NumWorkers != 4 {
		t.Errorf("NumWorkers = %v, want 4", config.Resolver.NumWorkers)
	}
	if config.Resolver.RateLimit != 5.0 {
		t.Errorf("RateLimit = %v, want 5.0", config.Resolver.RateLimit)
	}
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("creates file from embedded example", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("CreateConfigFile() error = %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}

		if config.Database.Path != "trackset.db" {
			t.Errorf("Database.Path = %v, want trackset.db", config.Database.Path)
		}
	})

	t.Run("refuses to overwrite existing file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := os.WriteFile(configPath, []byte("# custom"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("CreateConfigFile() expected error for existing file")
		}

		data, err := os.ReadFile(configPath)
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		if string(data) != "# custom" {
			t.Error("existing config was overwritten")
		}
	})
}
