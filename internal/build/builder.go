package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/any-hub/assetd/internal/assetstore"
	"github.com/any-hub/assetd/internal/config"
	"github.com/any-hub/assetd/internal/logging"
	"github.com/any-hub/assetd/internal/version"
)

// Options 汇总 Builder 的依赖，便于在测试中注入假的上游与编译器。
type Options struct {
	Store  assetstore.Store
	Client *http.Client
	// Compiler 为空且配置了 StyleCompiler 时使用 ExecCompiler。
	Compiler StyleCompiler
	Logger   *logrus.Logger
	Config   config.BuildConfig
}

// Builder 生成规范（未压缩）的产物目录。
type Builder struct {
	store    assetstore.Store
	client   *http.Client
	compiler StyleCompiler
	logger   *logrus.Logger
	cfg      config.BuildConfig
}

// New 校验依赖并构造 Builder。
func New(opts Options) (*Builder, error) {
	if opts.Store == nil {
		return nil, errors.New("asset store is required")
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Compiler == nil && opts.Config.StyleCompiler != "" {
		opts.Compiler = ExecCompiler{Path: opts.Config.StyleCompiler}
	}

	return &Builder{
		store:    opts.Store,
		client:   opts.Client,
		compiler: opts.Compiler,
		logger:   opts.Logger,
		cfg:      opts.Config,
	}, nil
}

// Build 清空产物目录后并行执行脚本下载与样式编译，任一步骤失败即返回 *Error。
// 未启用任何步骤时保留现有目录不动。
func (b *Builder) Build(ctx context.Context) error {
	log := logging.Phase(b.logger, "build")
	if !b.cfg.BuildEnabled() {
		log.WithField("root", b.store.Root()).Info("build_skipped")
		return nil
	}

	started := time.Now()
	if err := b.store.Reset(ctx); err != nil {
		return &Error{Stage: StageReset, Path: b.store.Root(), Err: err}
	}

	g, gctx := errgroup.WithContext(ctx)
	if b.cfg.ScriptURL != "" {
		g.Go(func() error {
			return b.buildScript(gctx)
		})
	}
	if b.cfg.StyleCompiler != "" {
		g.Go(func() error {
			return b.buildStyle(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("build_failed")
		return err
	}

	log.WithFields(logrus.Fields{
		"root":       b.store.Root(),
		"stages":     b.cfg.Stages(),
		"elapsed_ms": time.Since(started).Milliseconds(),
	}).Info("build_complete")
	return nil
}

func (b *Builder) buildScript(ctx context.Context) error {
	b.logger.WithFields(logrus.Fields{
		"action": "build",
		"stage":  string(StageFetchScript),
		"url":    b.cfg.ScriptURL,
	}).Info("script_fetch")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.ScriptURL, nil)
	if err != nil {
		return &Error{Stage: StageFetchScript, Path: b.cfg.ScriptURL, Err: err}
	}
	req.Header.Set("User-Agent", version.Full())

	resp, err := b.client.Do(req)
	if err != nil {
		return &Error{Stage: StageFetchScript, Path: b.cfg.ScriptURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &Error{
			Stage: StageFetchScript,
			Path:  b.cfg.ScriptURL,
			Err:   fmt.Errorf("unexpected upstream status %d", resp.StatusCode),
		}
	}

	if _, err := b.store.Put(ctx, b.cfg.ScriptTarget, resp.Body, assetstore.PutOptions{}); err != nil {
		return &Error{Stage: StageWrite, Path: b.cfg.ScriptTarget, Err: err}
	}
	return nil
}

func (b *Builder) buildStyle(ctx context.Context) error {
	b.logger.WithFields(logrus.Fields{
		"action": "build",
		"stage":  string(StageCompileStyle),
		"source": b.cfg.StyleSource,
	}).Info("style_compile")

	if b.compiler == nil {
		return &Error{Stage: StageCompileStyle, Path: b.cfg.StyleSource, Err: errors.New("no style compiler configured")}
	}

	compiled, err := b.compiler.Compile(ctx, b.cfg.StyleSource)
	if err != nil {
		return &Error{Stage: StageCompileStyle, Path: b.cfg.StyleSource, Err: err}
	}

	if _, err := b.store.Put(ctx, b.cfg.StyleTarget, bytes.NewReader(compiled), assetstore.PutOptions{}); err != nil {
		return &Error{Stage: StageWrite, Path: b.cfg.StyleTarget, Err: err}
	}

	minified, err := MinifyCSS(string(compiled))
	if err != nil {
		return &Error{Stage: StageMinifyStyle, Path: b.cfg.StyleTarget, Err: err}
	}

	if _, err := b.store.Put(ctx, b.cfg.StyleMinTarget, bytes.NewReader([]byte(minified)), assetstore.PutOptions{}); err != nil {
		return &Error{Stage: StageWrite, Path: b.cfg.StyleMinTarget, Err: err}
	}
	return nil
}
