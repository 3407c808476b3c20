package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config 定义日志初始化配置
// Level 支持 debug/info/warn/error，Environment 支持 prod/dev 等
// Format 可显式指定 json/console，留空时按 Environment 选择
// WithSource 控制是否记录源码位置
// File 非空时日志写入该文件并按大小/份数/天数轮转，否则输出到 stdout
type Config struct {
	Level       string
	Environment string
	Format      string
	WithSource  bool
	File        string
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
}

var (
	global *slog.Logger
	once   sync.Once
)

func levelFromString(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.New("invalid log level: " + level)
	}
}

// writerFromConfig 根据配置选择日志输出目标
// File 设置时使用 lumberjack 轮转（默认 100MB/10 份/30 天）
func writerFromConfig(cfg Config) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}
	maxBackups := cfg.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 10
	}
	maxAge := cfg.MaxAgeDays
	if maxAge <= 0 {
		maxAge = 30
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		Compress:   true,
	}
}

// New 根据配置创建新的 slog.Logger，不设置全局实例
func New(cfg Config) (*slog.Logger, error) {
	lvl, err := levelFromString(cfg.Level)
	if err != nil {
		return nil, err
	}

	out := writerFromConfig(cfg)
	handlerOpts := &slog.HandlerOptions{Level: lvl, AddSource: cfg.WithSource}

	format := strings.ToLower(cfg.Format)
	if format == "" {
		switch strings.ToLower(cfg.Environment) {
		case "prod", "production":
			format = "json"
		default:
			format = "console"
		}
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return slog.New(handler), nil
}

// Init 初始化全局日志实例，重复调用将返回首次创建的 logger
func Init(cfg Config) (*slog.Logger, error) {
	var initErr error
	once.Do(func() {
		global, initErr = New(cfg)
	})
	return global, initErr
}

// L 返回已初始化的全局 logger，未初始化时 panic
func L() *slog.Logger {
	if global == nil {
		panic("logger.Init must be called before logger.L")
	}
	return global
}

// LogDrainOutcome 记录一次上游分页抓取的结构化日志
// state: complete/partial/aborted
// pages: 成功拉取的页数
// records: 累计记录条数
// durationMs: 抓取耗时（毫秒）
// errMsg: 错误信息（可选）
func LogDrainOutcome(logger *slog.Logger, state string, pages, records int, durationMs int64, errMsg string) {
	attrs := []slog.Attr{
		slog.String("state", state),
		slog.Int("pages", pages),
		slog.Int("records", records),
		slog.Int64("duration_ms", durationMs),
	}

	if errMsg != "" {
		attrs = append(attrs, slog.String("error", errMsg))
		logger.LogAttrs(nil, slog.LevelWarn, "Upstream drain finished with issues", attrs...)
	} else {
		logger.LogAttrs(nil, slog.LevelInfo, "Upstream drain finished", attrs...)
	}
}
