package compress

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/any-hub/assetd/internal/assetstore"
	"github.com/any-hub/assetd/internal/logging"
)

func TestCompressAllWritesVariants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	files := map[string]string{
		"css/main.css":     strings.Repeat("body { color: red; }\n", 50),
		"css/main.min.css": "body{color:red}",
		"js/htmx.min.js":   strings.Repeat("var a=1;", 100),
	}
	putFiles(t, store, files)

	report := New(store, logging.Discard(), 0).CompressAll(ctx)
	if report.Files != len(files) {
		t.Fatalf("expected %d files, got %d", len(files), report.Files)
	}
	if report.Written != len(files)*len(Codecs) || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	for name, content := range files {
		for _, codec := range Codecs {
			compressed, _, err := assetstore.ReadAll(ctx, store, VariantPath(name, codec))
			if err != nil {
				t.Fatalf("missing %s variant for %s: %v", codec, name, err)
			}
			decoded, err := Decompress(codec, compressed)
			if err != nil {
				t.Fatalf("decompress %s: %v", name, err)
			}
			if string(decoded) != content {
				t.Fatalf("%s variant of %s does not round trip", codec, name)
			}
		}
	}
}

func TestCompressAllSkipsExistingVariants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	putFiles(t, store, map[string]string{"js/lib.js": "console.log(1)"})

	compressor := New(store, logging.Discard(), 2)
	compressor.CompressAll(ctx)
	report := compressor.CompressAll(ctx)
	if report.Files != 1 {
		t.Fatalf("variants should not be compressed again, got %d files", report.Files)
	}
	if _, err := store.Stat(ctx, "js/lib.js.br.gz"); !errors.Is(err, assetstore.ErrNotFound) {
		t.Fatalf("unexpected nested variant: %v", err)
	}
}

func TestCompressAllSoftFailsOnUnwritableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	store := newTestStore(t)
	ctx := context.Background()
	putFiles(t, store, map[string]string{
		"ok/a.css":     "a{}",
		"locked/b.css": "b{}",
	})
	locked := filepath.Join(store.Root(), "locked")
	if err := os.Chmod(locked, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	report := New(store, logging.Discard(), 0).CompressAll(ctx)
	if report.Failed != len(Codecs) {
		t.Fatalf("expected %d failures, got %+v", len(Codecs), report)
	}
	if report.Written != len(Codecs) {
		t.Fatalf("healthy file should still be compressed, got %+v", report)
	}
	if _, err := store.Stat(ctx, "locked/b.css.br"); !errors.Is(err, assetstore.ErrNotFound) {
		t.Fatalf("failed variant must not be visible: %v", err)
	}
}

func TestCompressAllSoftFailsOnWriteError(t *testing.T) {
	base := newTestStore(t)
	ctx := context.Background()
	putFiles(t, base, map[string]string{
		"ok/a.css":        "a{}",
		"locked/b.css":    "b{}",
		"locked/b.css.br": "stale",
	})
	store := &rejectingStore{Store: base, prefix: "locked/"}

	report := New(store, logging.Discard(), 2).CompressAll(ctx)
	if report.Failed != len(Codecs) {
		t.Fatalf("expected %d failures, got %+v", len(Codecs), report)
	}
	if report.Written != len(Codecs) {
		t.Fatalf("healthy file should still be compressed, got %+v", report)
	}
	for _, codec := range Codecs {
		if _, err := base.Stat(ctx, VariantPath("locked/b.css", codec)); !errors.Is(err, assetstore.ErrNotFound) {
			t.Fatalf("failed %s variant must not be visible: %v", codec, err)
		}
		if _, err := base.Stat(ctx, VariantPath("ok/a.css", codec)); err != nil {
			t.Fatalf("expected %s variant for healthy file: %v", codec, err)
		}
	}
}

func TestVerifyRemovesStaleVariants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	putFiles(t, store, map[string]string{"css/main.min.css": "body{color:red}"})

	compressor := New(store, logging.Discard(), 0)
	compressor.CompressAll(ctx)

	// 原始文件被重建但未重新压缩，变体过期。
	putFiles(t, store, map[string]string{"css/main.min.css": "body{color:blue}"})

	report, err := compressor.Verify(ctx)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if report.Checked != 2 || report.Removed != 2 {
		t.Fatalf("unexpected verify report: %+v", report)
	}
	for _, codec := range Codecs {
		if _, err := store.Stat(ctx, VariantPath("css/main.min.css", codec)); !errors.Is(err, assetstore.ErrNotFound) {
			t.Fatalf("stale %s variant should be removed: %v", codec, err)
		}
	}
}

func TestVerifyKeepsFreshVariants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	putFiles(t, store, map[string]string{"js/htmx.min.js": strings.Repeat("x", 1000)})

	compressor := New(store, logging.Discard(), 0)
	compressor.CompressAll(ctx)
	report, err := compressor.Verify(ctx)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if report.Checked != 2 || report.Removed != 0 {
		t.Fatalf("unexpected verify report: %+v", report)
	}
}

func putFiles(t *testing.T, store assetstore.Store, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if _, err := store.Put(context.Background(), name, bytes.NewReader([]byte(content)), assetstore.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", name, err)
		}
	}
}

var errWriteRejected = errors.New("write rejected")

// rejectingStore 拒绝写入 prefix 下的任何条目。
type rejectingStore struct {
	assetstore.Store
	prefix string
}

func (s *rejectingStore) Put(ctx context.Context, assetPath string, body io.Reader, opts assetstore.PutOptions) (*assetstore.Entry, error) {
	if strings.HasPrefix(assetPath, s.prefix) {
		return nil, errWriteRejected
	}
	return s.Store.Put(ctx, assetPath, body, opts)
}

func newTestStore(t *testing.T) assetstore.Store {
	t.Helper()
	store, err := assetstore.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}
