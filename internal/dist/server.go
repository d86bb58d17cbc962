package dist

import (
	"context"
	"errors"
	"fmt"

	"github.com/any-hub/assetd/internal/assetstore"
	"github.com/any-hub/assetd/internal/compress"
)

var (
	// ErrNotAcceptable 表示请求完全没有携带 Accept-Encoding 头。
	ErrNotAcceptable = errors.New("accept-encoding header required")
	// ErrNotFound 表示请求路径在产物目录中不存在。
	ErrNotFound = errors.New("asset not found")
)

// ReadError 表示原始文件通过存在性检查后读取失败（例如被外部删除）。
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read asset %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Response 是协商结果：正文、类型与可选的 Content-Encoding。
type Response struct {
	Path            string
	Body            []byte
	ContentType     string
	ContentEncoding Encoding
}

// Server 基于只读的产物目录做内容协商，无共享可变状态，可被并发调用。
type Server struct {
	store assetstore.Store
}

// NewServer 构造 Server。
func NewServer(store assetstore.Store) *Server {
	return &Server{store: store}
}

// Serve 按以下顺序协商：
//  1. acceptEncoding 为 nil（请求未携带该头）→ ErrNotAcceptable
//  2. 原始文件不存在 → ErrNotFound
//  3. 接受 br 且 .br 可读 → br 变体
//  4. 接受 gzip 家族且 .gz 可读 → gz 变体
//  5. 原始文件；读取失败 → *ReadError
//
// Content-Type 始终由原始路径的扩展名决定。
func (s *Server) Serve(ctx context.Context, requestPath string, acceptEncoding *string) (*Response, error) {
	if acceptEncoding == nil {
		return nil, ErrNotAcceptable
	}

	entry, err := s.store.Stat(ctx, requestPath)
	if err != nil {
		if errors.Is(err, assetstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &ReadError{Path: requestPath, Err: err}
	}

	pref := ParseAcceptEncoding(*acceptEncoding)
	contentType := ContentType(entry.Path)

	for _, candidate := range []struct {
		encoding Encoding
		codec    compress.Codec
	}{
		{EncodingBrotli, compress.CodecBrotli},
		{EncodingGzip, compress.CodecGzip},
	} {
		if !pref.Accepts(candidate.encoding) {
			continue
		}
		body, _, err := assetstore.ReadAll(ctx, s.store, compress.VariantPath(entry.Path, candidate.codec))
		if err != nil {
			// 变体缺失或不可读时降级到下一个候选。
			continue
		}
		return &Response{
			Path:            entry.Path,
			Body:            body,
			ContentType:     contentType,
			ContentEncoding: candidate.encoding,
		}, nil
	}

	body, _, err := assetstore.ReadAll(ctx, s.store, entry.Path)
	if err != nil {
		return nil, &ReadError{Path: entry.Path, Err: err}
	}
	return &Response{
		Path:        entry.Path,
		Body:        body,
		ContentType: contentType,
	}, nil
}
