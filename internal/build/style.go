package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// StyleCompiler 把样式源文件编译为样式表字节。构建流程只依赖这一接口，
// 外部工具或进程内实现均可替换。
type StyleCompiler interface {
	Compile(ctx context.Context, sourcePath string) ([]byte, error)
}

// StyleCompilerFunc adapts a function to the StyleCompiler interface.
type StyleCompilerFunc func(ctx context.Context, sourcePath string) ([]byte, error)

// Compile makes StyleCompilerFunc satisfy StyleCompiler.
func (f StyleCompilerFunc) Compile(ctx context.Context, sourcePath string) ([]byte, error) {
	return f(ctx, sourcePath)
}

// ExecCompiler 以子进程方式调用 `<Path> -i <source> -o <output>`（tailwindcss 约定），
// 输出写入临时目录后读回。
type ExecCompiler struct {
	Path string
	// Dir 是子进程工作目录，留空继承当前进程。
	Dir string
}

// Compile 同步运行外部编译器；非零退出码视为失败并附带 stderr。
func (c ExecCompiler) Compile(ctx context.Context, sourcePath string) ([]byte, error) {
	if c.Path == "" {
		return nil, errors.New("style compiler path required")
	}

	tmpDir, err := os.MkdirTemp("", "assetd-style-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	output := filepath.Join(tmpDir, "out.css")
	cmd := exec.CommandContext(ctx, c.Path, "-i", sourcePath, "-o", output)
	cmd.Dir = c.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", filepath.Base(c.Path), err, msg)
		}
		return nil, fmt.Errorf("%s: %w", filepath.Base(c.Path), err)
	}

	compiled, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("read compiler output: %w", err)
	}
	return compiled, nil
}
