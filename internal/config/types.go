package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// GlobalConfig 描述进程级行为：监听、日志、产物目录与压缩并发。
type GlobalConfig struct {
	ListenPort      int      `mapstructure:"ListenPort"`
	LogLevel        string   `mapstructure:"LogLevel"`
	LogFilePath     string   `mapstructure:"LogFilePath"`
	LogMaxSize      int      `mapstructure:"LogMaxSize"`
	LogMaxBackups   int      `mapstructure:"LogMaxBackups"`
	LogCompress     bool     `mapstructure:"LogCompress"`
	ReadTimeout     Duration `mapstructure:"ReadTimeout"`
	WriteTimeout    Duration `mapstructure:"WriteTimeout"`
	DistPath        string   `mapstructure:"DistPath"`
	DistPrefix      string   `mapstructure:"DistPrefix"`
	PublicPath      string   `mapstructure:"PublicPath"`
	PublicPrefix    string   `mapstructure:"PublicPrefix"`
	FetchTimeout    Duration `mapstructure:"FetchTimeout"`
	CompressWorkers int      `mapstructure:"CompressWorkers"`
}

// BuildConfig 决定启动阶段如何生成 dist 目录。留空 ScriptURL 或 StyleCompiler
// 即跳过对应步骤。
type BuildConfig struct {
	ScriptURL      string `mapstructure:"ScriptURL"`
	ScriptTarget   string `mapstructure:"ScriptTarget"`
	StyleCompiler  string `mapstructure:"StyleCompiler"`
	StyleSource    string `mapstructure:"StyleSource"`
	StyleTarget    string `mapstructure:"StyleTarget"`
	StyleMinTarget string `mapstructure:"StyleMinTarget"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
	Build  BuildConfig  `mapstructure:"Build"`
}

// BuildEnabled 表示启动阶段是否需要重建 dist 目录。
func (b BuildConfig) BuildEnabled() bool {
	return b.ScriptURL != "" || b.StyleCompiler != ""
}

// Stages 返回启用的构建步骤名称，供日志字段使用。
func (b BuildConfig) Stages() []string {
	var stages []string
	if b.ScriptURL != "" {
		stages = append(stages, "script")
	}
	if b.StyleCompiler != "" {
		stages = append(stages, "style")
	}
	return stages
}
