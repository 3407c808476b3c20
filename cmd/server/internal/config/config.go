package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL 上游会议录制 API 的占位默认地址，部署时通过
// MEETINGS_API_BASE_URL 指向真实的供应商端点
const DefaultBaseURL = "https://api.meetings.example.com/v1"

// Config 统一配置结构
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Filters  FilterConfig   `yaml:"filters"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Env  string `yaml:"env"` // dev, production
	Port string `yaml:"port"`
}

// UpstreamConfig 上游 API 配置
// APIKey 为空不在加载阶段报错：凭证缺失按请求时错误处理，绝不静默降级
type UpstreamConfig struct {
	BaseURL       string        `yaml:"base_url"`
	APIKey        string        `yaml:"api_key"`
	Timeout       time.Duration `yaml:"-"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	PageDelay     time.Duration `yaml:"-"`
	MaxRetries    int           `yaml:"max_retries"`

	// YAML 文件中的时长字段以字符串形式出现（如 "30s"），加载后解析
	TimeoutRaw   string `yaml:"timeout"`
	PageDelayRaw string `yaml:"page_delay"`
}

// FilterConfig 抓取过滤条件，进程生命周期内固定
type FilterConfig struct {
	InviteeDomains []string `yaml:"invitee_domains"`
	RecordedBy     []string `yaml:"recorded_by"`
	Teams          []string `yaml:"teams"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	TTL    time.Duration `yaml:"-"`
	TTLRaw string        `yaml:"ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
	File   string `yaml:"file"`   // 可选，设置后启用轮转文件输出
}

// LoadConfig 加载配置：默认值 → 可选 YAML 文件（CONFIG_FILE）→ 环境变量覆盖
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := resolveDurations(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Env:  "dev",
			Port: "8000",
		},
		Upstream: UpstreamConfig{
			BaseURL:       DefaultBaseURL,
			Timeout:       30 * time.Second,
			MaxConcurrent: 4,
			PageDelay:     500 * time.Millisecond,
			MaxRetries:    5,
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// applyFile 从 YAML 文件合并配置，文件缺失或格式错误直接报错
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv 用环境变量覆盖已有值，环境变量始终优先于文件
func applyEnv(cfg *Config) {
	cfg.Server.Env = getEnv("ENV", cfg.Server.Env)
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)

	cfg.Upstream.BaseURL = getEnv("MEETINGS_API_BASE_URL", cfg.Upstream.BaseURL)
	cfg.Upstream.APIKey = getEnv("MEETINGS_API_KEY", cfg.Upstream.APIKey)
	cfg.Upstream.TimeoutRaw = getEnv("UPSTREAM_TIMEOUT", cfg.Upstream.TimeoutRaw)
	cfg.Upstream.PageDelayRaw = getEnv("PAGE_DELAY", cfg.Upstream.PageDelayRaw)
	if v := os.Getenv("UPSTREAM_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Upstream.MaxConcurrent = n
		}
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Upstream.MaxRetries = n
		}
	}

	if v := os.Getenv("MEETINGS_FILTER_DOMAINS"); v != "" {
		cfg.Filters.InviteeDomains = parseStringList(v)
	}
	if v := os.Getenv("MEETINGS_FILTER_RECORDED_BY"); v != "" {
		cfg.Filters.RecordedBy = parseStringList(v)
	}
	if v := os.Getenv("MEETINGS_FILTER_TEAMS"); v != "" {
		cfg.Filters.Teams = parseStringList(v)
	}

	cfg.Cache.TTLRaw = getEnv("CACHE_TTL", cfg.Cache.TTLRaw)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
}

// resolveDurations 解析字符串形式的时长字段
func resolveDurations(cfg *Config) error {
	if cfg.Upstream.TimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.Upstream.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("invalid UPSTREAM_TIMEOUT %q: %w", cfg.Upstream.TimeoutRaw, err)
		}
		cfg.Upstream.Timeout = d
	}
	if cfg.Upstream.PageDelayRaw != "" {
		d, err := time.ParseDuration(cfg.Upstream.PageDelayRaw)
		if err != nil {
			return fmt.Errorf("invalid PAGE_DELAY %q: %w", cfg.Upstream.PageDelayRaw, err)
		}
		cfg.Upstream.PageDelay = d
	}
	if cfg.Cache.TTLRaw != "" {
		d, err := time.ParseDuration(cfg.Cache.TTLRaw)
		if err != nil {
			return fmt.Errorf("invalid CACHE_TTL %q: %w", cfg.Cache.TTLRaw, err)
		}
		cfg.Cache.TTL = d
	}
	return nil
}

// ValidateConfig 验证配置的有效性
func ValidateConfig(cfg *Config) error {
	var errors []string

	// 1. 端口验证
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid PORT value: %s (must be 1-65535)", cfg.Server.Port))
	}

	// 2. 环境验证
	validEnvs := map[string]bool{"dev": true, "development": true, "staging": true, "production": true}
	if !validEnvs[cfg.Server.Env] {
		errors = append(errors, fmt.Sprintf("invalid ENV: %s (must be: dev, development, staging, production)", cfg.Server.Env))
	}

	// 3. 日志级别验证
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Log.Level] {
		errors = append(errors, fmt.Sprintf("invalid LOG_LEVEL: %s (must be: debug, info, warn, error)", cfg.Log.Level))
	}

	// 4. 日志格式验证
	validLogFormats := map[string]bool{"console": true, "json": true}
	if !validLogFormats[cfg.Log.Format] {
		errors = append(errors, fmt.Sprintf("invalid LOG_FORMAT: %s (must be: console, json)", cfg.Log.Format))
	}

	// 5. 上游地址验证
	if !strings.HasPrefix(cfg.Upstream.BaseURL, "http://") && !strings.HasPrefix(cfg.Upstream.BaseURL, "https://") {
		errors = append(errors, fmt.Sprintf("invalid MEETINGS_API_BASE_URL: %s (must start with http:// or https://)", cfg.Upstream.BaseURL))
	}

	// 6. 数值范围验证
	if cfg.Upstream.MaxConcurrent < 1 {
		errors = append(errors, fmt.Sprintf("invalid UPSTREAM_MAX_CONCURRENT: %d (must be >= 1)", cfg.Upstream.MaxConcurrent))
	}
	if cfg.Upstream.MaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("invalid MAX_RETRIES: %d (must be >= 0)", cfg.Upstream.MaxRetries))
	}
	if cfg.Cache.TTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid CACHE_TTL: %s (must be positive)", cfg.Cache.TTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// IsProduction 判断是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// IsDevelopment 判断是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "dev" || c.Server.Env == "development"
}

// GetServerAddr 获取服务器监听地址
func (c *Config) GetServerAddr() string {
	return ":" + c.Server.Port
}

// HasCredential 判断上游凭证是否已配置
func (c *Config) HasCredential() bool {
	return c.Upstream.APIKey != ""
}

// PrintConfig 打印配置（脱敏）
func (c *Config) PrintConfig() string {
	return fmt.Sprintf(`Configuration Loaded:
  Environment: %s
  Server Port: %s
  Upstream:
    - Base URL: %s
    - API Key: %s
    - Timeout: %s
    - Max Concurrent: %d
    - Page Delay: %s
    - Max Retries: %d
  Filters:
    - Invitee Domains: %v
    - Recorded By: %v
    - Teams: %v
  Cache:
    - TTL: %s
  Logging:
    - Level: %s
    - Format: %s
    - File: %s`,
		c.Server.Env,
		c.Server.Port,
		c.Upstream.BaseURL,
		maskSecret(c.Upstream.APIKey),
		c.Upstream.Timeout,
		c.Upstream.MaxConcurrent,
		c.Upstream.PageDelay,
		c.Upstream.MaxRetries,
		c.Filters.InviteeDomains,
		c.Filters.RecordedBy,
		c.Filters.Teams,
		c.Cache.TTL,
		c.Log.Level,
		c.Log.Format,
		c.Log.File,
	)
}

// 辅助函数

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseStringList 解析逗号分隔的字符串列表
func parseStringList(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// maskSecret 对敏感信息进行脱敏
func maskSecret(secret string) string {
	if secret == "" {
		return "<not set>"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "***" + secret[len(secret)-4:]
}
