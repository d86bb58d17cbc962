package config

import "testing"

func TestLoadFailsWithInvalidFields(t *testing.T) {
	if _, err := Load(testConfigPath(t, "invalid.toml")); err == nil {
		t.Fatalf("非法字段的配置应返回错误")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	cfg := `
LogLevel = "info"
DistPath = "./dist"
FetchTimeout = "boom"
`
	path := writeTempConfig(t, cfg)
	if _, err := Load(path); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func TestLoadAllowsDisablingBuildStages(t *testing.T) {
	cfg := `
DistPath = "./dist"
DistPrefix = "/assets/"

[Build]
ScriptURL = ""
StyleCompiler = ""
`
	path := writeTempConfig(t, cfg)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if loaded.Build.BuildEnabled() {
		t.Fatalf("显式留空后不应启用构建")
	}
	if loaded.Global.DistPrefix != "/assets" {
		t.Fatalf("DistPrefix 应去掉结尾斜杠，得到 %s", loaded.Global.DistPrefix)
	}
}

func TestLoadParsesNumericDuration(t *testing.T) {
	cfg := `
DistPath = "./dist"
ReadTimeout = 5
`
	path := writeTempConfig(t, cfg)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if got := loaded.Global.ReadTimeout.DurationValue().Seconds(); got != 5 {
		t.Fatalf("纯数字应按秒解析，得到 %v", got)
	}
}
