package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// 本包测试会修改进程环境变量，统一通过 saveEnv 保存并恢复
var gatewayEnvKeys = []string{
	"CONFIG_FILE", "ENV", "PORT",
	"MEETINGS_API_BASE_URL", "MEETINGS_API_KEY",
	"MEETINGS_FILTER_DOMAINS", "MEETINGS_FILTER_RECORDED_BY", "MEETINGS_FILTER_TEAMS",
	"CACHE_TTL", "UPSTREAM_TIMEOUT", "PAGE_DELAY", "UPSTREAM_MAX_CONCURRENT", "MAX_RETRIES",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
}

func saveEnv(t *testing.T) {
	t.Helper()
	saved := make(map[string]string, len(gatewayEnvKeys))
	for _, key := range gatewayEnvKeys {
		saved[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	t.Cleanup(func() {
		for key, val := range saved {
			if val == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, val)
			}
		}
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	saveEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Server.Port != "8000" {
		t.Errorf("Port = %s, want 8000", cfg.Server.Port)
	}
	if cfg.Server.Env != "dev" {
		t.Errorf("Env = %s, want dev", cfg.Server.Env)
	}
	if cfg.Upstream.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %s, want %s", cfg.Upstream.BaseURL, DefaultBaseURL)
	}
	if cfg.Upstream.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.PageDelay != 500*time.Millisecond {
		t.Errorf("PageDelay = %s, want 500ms", cfg.Upstream.PageDelay)
	}
	if cfg.Upstream.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.Upstream.MaxRetries)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("TTL = %s, want 5m", cfg.Cache.TTL)
	}
	if cfg.HasCredential() {
		t.Errorf("HasCredential() = true for empty MEETINGS_API_KEY")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	saveEnv(t)

	os.Setenv("PORT", "9090")
	os.Setenv("MEETINGS_API_KEY", "sk-test-1234567890")
	os.Setenv("MEETINGS_API_BASE_URL", "https://upstream.test/v2")
	os.Setenv("MEETINGS_FILTER_DOMAINS", "acme.com, example.org ,,")
	os.Setenv("MEETINGS_FILTER_RECORDED_BY", "a@acme.com,b@acme.com")
	os.Setenv("CACHE_TTL", "90s")
	os.Setenv("UPSTREAM_MAX_CONCURRENT", "8")
	os.Setenv("MAX_RETRIES", "2")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Server.Port)
	}
	if !cfg.HasCredential() {
		t.Errorf("HasCredential() = false with MEETINGS_API_KEY set")
	}
	if cfg.Upstream.BaseURL != "https://upstream.test/v2" {
		t.Errorf("BaseURL = %s, want https://upstream.test/v2", cfg.Upstream.BaseURL)
	}

	wantDomains := []string{"acme.com", "example.org"}
	if len(cfg.Filters.InviteeDomains) != len(wantDomains) {
		t.Fatalf("InviteeDomains = %v, want %v", cfg.Filters.InviteeDomains, wantDomains)
	}
	for i, d := range wantDomains {
		if cfg.Filters.InviteeDomains[i] != d {
			t.Errorf("InviteeDomains[%d] = %s, want %s", i, cfg.Filters.InviteeDomains[i], d)
		}
	}
	if len(cfg.Filters.RecordedBy) != 2 {
		t.Errorf("RecordedBy = %v, want 2 entries", cfg.Filters.RecordedBy)
	}

	if cfg.Cache.TTL != 90*time.Second {
		t.Errorf("TTL = %s, want 90s", cfg.Cache.TTL)
	}
	if cfg.Upstream.MaxConcurrent != 8 {
		t.Errorf("MaxConcurrent = %d, want 8", cfg.Upstream.MaxConcurrent)
	}
	if cfg.Upstream.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", cfg.Upstream.MaxRetries)
	}
}

func TestLoadConfigFromFileWithEnvPrecedence(t *testing.T) {
	saveEnv(t)

	fileConfig := `
server:
  env: production
  port: "8443"
upstream:
  base_url: https://file.upstream.test/v1
  api_key: file-key-000011112222
  timeout: 10s
  max_retries: 3
filters:
  invitee_domains:
    - file.com
cache:
  ttl: 2m
log:
  level: warn
  format: json
`
	configPath := filepath.Join(t.TempDir(), "gateway.yaml")
	if err := os.WriteFile(configPath, []byte(fileConfig), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	os.Setenv("CONFIG_FILE", configPath)
	// 环境变量优先于文件
	os.Setenv("PORT", "8555")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Server.Port != "8555" {
		t.Errorf("Port = %s, want env override 8555", cfg.Server.Port)
	}
	if cfg.Server.Env != "production" {
		t.Errorf("Env = %s, want production", cfg.Server.Env)
	}
	if cfg.Upstream.BaseURL != "https://file.upstream.test/v1" {
		t.Errorf("BaseURL = %s, want file value", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Timeout != 10*time.Second {
		t.Errorf("Timeout = %s, want 10s", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.Upstream.MaxRetries)
	}
	if cfg.Cache.TTL != 2*time.Minute {
		t.Errorf("TTL = %s, want 2m", cfg.Cache.TTL)
	}
	if len(cfg.Filters.InviteeDomains) != 1 || cfg.Filters.InviteeDomains[0] != "file.com" {
		t.Errorf("InviteeDomains = %v, want [file.com]", cfg.Filters.InviteeDomains)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want warn/json", cfg.Log)
	}
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	saveEnv(t)

	os.Setenv("CACHE_TTL", "five minutes")

	_, err := LoadConfig()
	if err == nil {
		t.Fatalf("expected error for invalid CACHE_TTL")
	}
	if !strings.Contains(err.Error(), "CACHE_TTL") {
		t.Errorf("error should mention CACHE_TTL: %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = "99999" },
			wantErr: "invalid PORT",
		},
		{
			name:    "bad env",
			mutate:  func(c *Config) { c.Server.Env = "qa" },
			wantErr: "invalid ENV",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "invalid LOG_LEVEL",
		},
		{
			name:    "bad base url",
			mutate:  func(c *Config) { c.Upstream.BaseURL = "ftp://nope" },
			wantErr: "invalid MEETINGS_API_BASE_URL",
		},
		{
			name:    "bad max concurrent",
			mutate:  func(c *Config) { c.Upstream.MaxConcurrent = 0 },
			wantErr: "invalid UPSTREAM_MAX_CONCURRENT",
		},
		{
			name:    "bad ttl",
			mutate:  func(c *Config) { c.Cache.TTL = 0 },
			wantErr: "invalid CACHE_TTL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateConfig() failed: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected validation error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestPrintConfigMasksSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.Upstream.APIKey = "sk-live-abcdef123456"

	out := cfg.PrintConfig()
	if strings.Contains(out, "sk-live-abcdef123456") {
		t.Fatalf("PrintConfig leaked the API key: %s", out)
	}
	if !strings.Contains(out, "sk-l***3456") {
		t.Errorf("PrintConfig should show masked key, got: %s", out)
	}
}
