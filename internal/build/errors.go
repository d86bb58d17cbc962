package build

import "fmt"

// Stage 标识构建流程中的步骤，出现在错误与日志字段中。
type Stage string

const (
	StageReset        Stage = "reset"
	StageFetchScript  Stage = "fetch_script"
	StageCompileStyle Stage = "compile_style"
	StageMinifyStyle  Stage = "minify_style"
	StageWrite        Stage = "write"
)

// Error 包装构建失败的步骤与原因。构建失败总是致命的，调用方不应继续启动服务。
type Error struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("build %s (%s): %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("build %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// SyntaxError 描述样式表无法被分词的位置。
type SyntaxError struct {
	Line   int
	Column int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("css syntax error at %d:%d: %s", e.Line, e.Column, e.Reason)
}
