package assetstore

import (
	"context"
	"errors"
	"io"
	"time"
)

// Store 负责管理产物目录的读写。磁盘布局遵循：
//
//	<root>/<path>       # 原始文件
//	<root>/<path>.br    # brotli 变体（可选）
//	<root>/<path>.gz    # gzip 变体（可选）
//
// 所有 path 均为 URL 风格的相对路径，例如 css/main.min.css。
type Store interface {
	// Root 返回产物目录的绝对路径。
	Root() string

	// Reset 递归删除整个产物目录后重新创建，用于每次启动时的干净构建。
	Reset(ctx context.Context) error

	// Stat 返回条目信息；不存在、是目录或越界路径均返回 ErrNotFound。
	Stat(ctx context.Context, assetPath string) (*Entry, error)

	// Get 返回一个可流式读取的条目。若不存在则返回 ErrNotFound。
	Get(ctx context.Context, assetPath string) (*ReadResult, error)

	// Put 通过临时文件 + rename 原子写入条目，失败时清理临时文件。
	Put(ctx context.Context, assetPath string, body io.Reader, opts PutOptions) (*Entry, error)

	// Remove 删除条目，不存在时视为成功。
	Remove(ctx context.Context, assetPath string) error

	// Walk 遍历目录下所有常规文件（不含写入中的临时文件），顺序不保证。
	Walk(ctx context.Context, fn func(Entry) error) error
}

// PutOptions 控制写入过程中的可选属性。
type PutOptions struct {
	ModTime time.Time
}

// Entry 描述产物目录中的一个文件。
type Entry struct {
	Path      string    `json:"path"`
	FilePath  string    `json:"file_path"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

// ReadResult 组合 Entry 与正文 Reader。
type ReadResult struct {
	Entry  Entry
	Reader io.ReadSeekCloser
}

// ErrNotFound 表示条目不存在。
var ErrNotFound = errors.New("asset not found")

// ReadAll 读取条目全部内容，供一次性返回字节的调用方使用。
func ReadAll(ctx context.Context, store Store, assetPath string) ([]byte, *Entry, error) {
	result, err := store.Get(ctx, assetPath)
	if err != nil {
		return nil, nil, err
	}
	defer result.Reader.Close()

	body, err := io.ReadAll(result.Reader)
	if err != nil {
		return nil, nil, err
	}
	return body, &result.Entry, nil
}
