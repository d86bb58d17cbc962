package config

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if strings.TrimSpace(g.DistPath) == "" {
		return newFieldError("Global.DistPath", "不能为空")
	}
	if !strings.HasPrefix(g.DistPrefix, "/") {
		return newFieldError("Global.DistPrefix", "必须以 / 开头")
	}
	if !strings.HasPrefix(g.PublicPrefix, "/") {
		return newFieldError("Global.PublicPrefix", "必须以 / 开头")
	}
	if g.PublicPath != "" && g.PublicPrefix == g.DistPrefix {
		return newFieldError("Global.PublicPrefix", "不能与 DistPrefix 相同")
	}
	if g.ReadTimeout.DurationValue() <= 0 {
		return newFieldError("Global.ReadTimeout", "必须大于 0")
	}
	if g.WriteTimeout.DurationValue() <= 0 {
		return newFieldError("Global.WriteTimeout", "必须大于 0")
	}
	if g.FetchTimeout.DurationValue() <= 0 {
		return newFieldError("Global.FetchTimeout", "必须大于 0")
	}
	if g.CompressWorkers < 0 {
		return newFieldError("Global.CompressWorkers", "不能为负数")
	}

	return c.Build.validate()
}

func (b BuildConfig) validate() error {
	if b.ScriptURL != "" {
		if err := validateScriptURL(b.ScriptURL); err != nil {
			return fmt.Errorf("%s: %w", buildField("ScriptURL"), err)
		}
		if err := validateTarget(b.ScriptTarget); err != nil {
			return fmt.Errorf("%s: %w", buildField("ScriptTarget"), err)
		}
	}

	if b.StyleCompiler != "" {
		if strings.TrimSpace(b.StyleSource) == "" {
			return newFieldError(buildField("StyleSource"), "启用 StyleCompiler 时不能为空")
		}
		if err := validateTarget(b.StyleTarget); err != nil {
			return fmt.Errorf("%s: %w", buildField("StyleTarget"), err)
		}
		if err := validateTarget(b.StyleMinTarget); err != nil {
			return fmt.Errorf("%s: %w", buildField("StyleMinTarget"), err)
		}
		if path.Clean(b.StyleTarget) == path.Clean(b.StyleMinTarget) {
			return newFieldError(buildField("StyleMinTarget"), "不能与 StyleTarget 相同")
		}
	}

	// 脚本与样式阶段并发写入，产物路径不能重叠。
	if b.ScriptURL != "" && b.StyleCompiler != "" {
		script := path.Clean(b.ScriptTarget)
		if script == path.Clean(b.StyleTarget) {
			return newFieldError(buildField("ScriptTarget"), "不能与 StyleTarget 相同")
		}
		if script == path.Clean(b.StyleMinTarget) {
			return newFieldError(buildField("ScriptTarget"), "不能与 StyleMinTarget 相同")
		}
	}

	return nil
}

func validateScriptURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("无效 URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("仅支持 http/https")
	}
	if parsed.Host == "" {
		return errors.New("缺少主机名")
	}
	return nil
}

// validateTarget 要求产物路径为相对路径，且不能逃逸出 dist 目录。
func validateTarget(target string) error {
	if target == "" {
		return errors.New("不能为空")
	}
	if strings.HasPrefix(target, "/") {
		return errors.New("必须是相对路径")
	}
	cleaned := path.Clean(target)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return errors.New("不能逃逸出产物目录")
	}
	if strings.HasSuffix(cleaned, ".br") || strings.HasSuffix(cleaned, ".gz") {
		return errors.New("不能使用压缩变体后缀")
	}
	return nil
}
