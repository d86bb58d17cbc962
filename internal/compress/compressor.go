package compress

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"

	"github.com/any-hub/assetd/internal/assetstore"
	"github.com/any-hub/assetd/internal/logging"
)

// Report 汇总一次压缩阶段的结果，仅用于日志与测试。
type Report struct {
	Files   int
	Written int
	Failed  int
	Elapsed time.Duration
}

// Compressor 为产物目录中的每个文件生成 .br/.gz 变体。
type Compressor struct {
	store      assetstore.Store
	logger     *logrus.Logger
	maxWorkers int
}

// New 构造 Compressor。maxWorkers <= 0 表示不限制并发，每个任务一个 goroutine。
func New(store assetstore.Store, logger *logrus.Logger, maxWorkers int) *Compressor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Compressor{
		store:      store,
		logger:     logger,
		maxWorkers: maxWorkers,
	}
}

// CompressAll 遍历产物目录并为每个文件的每种 codec 提交一个独立任务，
// 所有任务结束后才返回。单个任务失败只记录日志，不影响其它任务，也不返回错误。
func (c *Compressor) CompressAll(ctx context.Context) Report {
	started := time.Now()
	log := logging.Phase(c.logger, "compress")

	var sources []string
	err := c.store.Walk(ctx, func(entry assetstore.Entry) error {
		if IsVariant(entry.Path) {
			return nil
		}
		sources = append(sources, entry.Path)
		return nil
	})
	if err != nil {
		// 遍历失败同样按软失败处理：已收集到的文件照常压缩。
		log.WithError(err).Warn("compress_walk_failed")
	}

	var written, failed atomic.Int64
	p := pool.New()
	if c.maxWorkers > 0 {
		p = p.WithMaxGoroutines(c.maxWorkers)
	}

	for _, source := range sources {
		for _, codec := range Codecs {
			source, codec := source, codec
			p.Go(func() {
				if err := c.runTask(ctx, source, codec); err != nil {
					failed.Add(1)
					log.WithFields(logrus.Fields{
						"path":  source,
						"codec": string(codec),
					}).WithError(err).Warn("compress_failed")
					return
				}
				written.Add(1)
			})
		}
	}
	p.Wait()

	report := Report{
		Files:   len(sources),
		Written: int(written.Load()),
		Failed:  int(failed.Load()),
		Elapsed: time.Since(started),
	}
	log.WithFields(logrus.Fields{
		"files":      report.Files,
		"written":    report.Written,
		"failed":     report.Failed,
		"elapsed_ms": report.Elapsed.Milliseconds(),
	}).Info("compress_complete")
	return report
}

// runTask 执行单个 (文件, codec) 任务，panic 也被转换为错误。
func (c *Compressor) runTask(ctx context.Context, source string, codec Codec) (err error) {
	var catcher panics.Catcher
	catcher.Try(func() {
		err = c.compressOne(ctx, source, codec)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		err = recovered.AsError()
	}
	if err != nil {
		// 失败时撤掉可能残留的旧变体，让请求回退到原始文件。
		_ = c.store.Remove(context.Background(), VariantPath(source, codec))
	}
	return err
}

func (c *Compressor) compressOne(ctx context.Context, source string, codec Codec) error {
	data, entry, err := assetstore.ReadAll(ctx, c.store, source)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	compressed, err := Compress(codec, data)
	if err != nil {
		return err
	}

	_, err = c.store.Put(ctx, VariantPath(source, codec), bytes.NewReader(compressed), assetstore.PutOptions{
		ModTime: entry.ModTime,
	})
	if err != nil {
		return fmt.Errorf("write variant: %w", err)
	}
	return nil
}

// VerifyReport 汇总变体校验结果。
type VerifyReport struct {
	Checked int
	Removed int
}

// ErrVariantMismatch 表示变体解压后与原始文件不一致。
var ErrVariantMismatch = errors.New("variant does not match canonical content")

// Verify 逐个解压已存在的变体并与原始文件比较，不一致或无法解压的变体会被删除，
// 之后的请求自动回退到原始文件。
func (c *Compressor) Verify(ctx context.Context) (VerifyReport, error) {
	log := logging.Phase(c.logger, "verify")

	var sources []string
	err := c.store.Walk(ctx, func(entry assetstore.Entry) error {
		if !IsVariant(entry.Path) {
			sources = append(sources, entry.Path)
		}
		return nil
	})
	if err != nil {
		return VerifyReport{}, fmt.Errorf("walk asset tree: %w", err)
	}

	var report VerifyReport
	for _, source := range sources {
		canonical, _, err := assetstore.ReadAll(ctx, c.store, source)
		if err != nil {
			return report, fmt.Errorf("read %s: %w", source, err)
		}
		for _, codec := range Codecs {
			variant := VariantPath(source, codec)
			compressed, _, err := assetstore.ReadAll(ctx, c.store, variant)
			if errors.Is(err, assetstore.ErrNotFound) {
				continue
			}
			if err != nil {
				return report, fmt.Errorf("read %s: %w", variant, err)
			}
			report.Checked++

			if checkErr := roundTrip(codec, compressed, canonical); checkErr != nil {
				log.WithFields(logrus.Fields{
					"path":  variant,
					"codec": string(codec),
				}).WithError(checkErr).Warn("variant_removed")
				if err := c.store.Remove(ctx, variant); err != nil {
					return report, fmt.Errorf("remove %s: %w", variant, err)
				}
				report.Removed++
			}
		}
	}

	log.WithFields(logrus.Fields{
		"checked": report.Checked,
		"removed": report.Removed,
	}).Info("verify_complete")
	return report, nil
}

func roundTrip(codec Codec, compressed, canonical []byte) error {
	decoded, err := Decompress(codec, compressed)
	if err != nil {
		return err
	}
	if !bytes.Equal(decoded, canonical) {
		return ErrVariantMismatch
	}
	return nil
}
