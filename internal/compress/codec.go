package compress

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// Codec 标识一种预压缩变体，取值即文件后缀（不含点）。
type Codec string

const (
	CodecBrotli Codec = "br"
	CodecGzip   Codec = "gz"
)

// Codecs 是每个文件都要生成的变体集合。
var Codecs = []Codec{CodecBrotli, CodecGzip}

// Suffix 返回变体文件后缀，例如 ".br"。
func (c Codec) Suffix() string {
	return "." + string(c)
}

// VariantPath 返回 assetPath 对应的变体路径。
func VariantPath(assetPath string, codec Codec) string {
	return assetPath + codec.Suffix()
}

// IsVariant 判断路径是否已经是某个变体，避免重复压缩出 .br.gz。
func IsVariant(assetPath string) bool {
	for _, codec := range Codecs {
		if strings.HasSuffix(assetPath, codec.Suffix()) {
			return true
		}
	}
	return false
}

// Compress 以库默认参数压缩 data。
func Compress(codec Codec, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := newWriter(codec, &buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("%s write: %w", codec, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s close: %w", codec, err)
	}
	return buf.Bytes(), nil
}

// Decompress 还原 Compress 的输出。
func Decompress(codec Codec, data []byte) ([]byte, error) {
	var r io.Reader
	switch codec {
	case CodecBrotli:
		r = brotli.NewReader(bytes.NewReader(data))
	case CodecGzip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gz reader: %w", err)
		}
		defer gr.Close()
		r = gr
	default:
		return nil, fmt.Errorf("unsupported codec: %q", codec)
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s read: %w", codec, err)
	}
	return out, nil
}

func newWriter(codec Codec, w io.Writer) (io.WriteCloser, error) {
	switch codec {
	case CodecBrotli:
		return brotli.NewWriterLevel(w, brotli.DefaultCompression), nil
	case CodecGzip:
		return gzip.NewWriterLevel(w, gzip.DefaultCompression)
	default:
		return nil, fmt.Errorf("unsupported codec: %q", codec)
	}
}
