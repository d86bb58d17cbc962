package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	// DefaultScriptURL 是启动时拉取的前端脚本包。
	DefaultScriptURL = "https://unpkg.com/htmx.org@1.9.4/dist/htmx.min.js"
	// DefaultStyleCompiler 是 tailwindcss 在 node_modules 中的默认位置。
	DefaultStyleCompiler = "node_modules/.bin/tailwindcss"
)

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	applyBuildDefaults(&cfg.Build)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absDist, err := filepath.Abs(cfg.Global.DistPath)
	if err != nil {
		return nil, fmt.Errorf("无法解析产物目录: %w", err)
	}
	cfg.Global.DistPath = absDist

	if cfg.Global.PublicPath != "" {
		absPublic, err := filepath.Abs(cfg.Global.PublicPath)
		if err != nil {
			return nil, fmt.Errorf("无法解析静态目录: %w", err)
		}
		cfg.Global.PublicPath = absPublic
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 8080)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("ReadTimeout", "15s")
	v.SetDefault("WriteTimeout", "15s")
	v.SetDefault("DistPath", "./dist")
	v.SetDefault("DistPrefix", "/dist")
	v.SetDefault("PublicPath", "./public")
	v.SetDefault("PublicPrefix", "/public")
	v.SetDefault("FetchTimeout", "30s")
	v.SetDefault("CompressWorkers", 0)

	v.SetDefault("Build.ScriptURL", DefaultScriptURL)
	v.SetDefault("Build.ScriptTarget", "js/htmx.min.js")
	v.SetDefault("Build.StyleCompiler", DefaultStyleCompiler)
	v.SetDefault("Build.StyleSource", "./src/main.css")
	v.SetDefault("Build.StyleTarget", "css/main.css")
	v.SetDefault("Build.StyleMinTarget", "css/main.min.css")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 8080
	}
	if g.ReadTimeout.DurationValue() == 0 {
		g.ReadTimeout = Duration(15 * time.Second)
	}
	if g.WriteTimeout.DurationValue() == 0 {
		g.WriteTimeout = Duration(15 * time.Second)
	}
	if g.FetchTimeout.DurationValue() == 0 {
		g.FetchTimeout = Duration(30 * time.Second)
	}
	g.DistPrefix = normalizePrefix(g.DistPrefix, "/dist")
	g.PublicPrefix = normalizePrefix(g.PublicPrefix, "/public")
}

func applyBuildDefaults(b *BuildConfig) {
	b.ScriptURL = strings.TrimSpace(b.ScriptURL)
	b.StyleCompiler = strings.TrimSpace(b.StyleCompiler)
	b.ScriptTarget = filepath.ToSlash(strings.TrimSpace(b.ScriptTarget))
	b.StyleTarget = filepath.ToSlash(strings.TrimSpace(b.StyleTarget))
	b.StyleMinTarget = filepath.ToSlash(strings.TrimSpace(b.StyleMinTarget))
}

// normalizePrefix 去掉结尾的斜杠；空值回退到 fallback。
func normalizePrefix(prefix, fallback string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return fallback
	}
	if len(prefix) > 1 {
		prefix = strings.TrimRight(prefix, "/")
	}
	return prefix
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
