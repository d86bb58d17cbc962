package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/assetd/internal/assetstore"
	"github.com/any-hub/assetd/internal/build"
	"github.com/any-hub/assetd/internal/compress"
	"github.com/any-hub/assetd/internal/config"
	"github.com/any-hub/assetd/internal/dist"
	"github.com/any-hub/assetd/internal/logging"
	"github.com/any-hub/assetd/internal/server"
	"github.com/any-hub/assetd/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
	verify      bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["dist_path"] = cfg.Global.DistPath
		fields["build_stages"] = cfg.Build.Stages()
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	store, err := prepareAssets(context.Background(), cfg, logger, opts.verify)
	if err != nil {
		fmt.Fprintf(stdErr, "构建静态资源失败: %v\n", err)
		return 1
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["dist_path"] = store.Root()
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("静态资源就绪")

	if err := startHTTPServer(cfg, store, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// prepareAssets 依次执行构建与压缩，两者都完成后才允许监听端口。
// 构建失败是致命的；压缩失败只会让对应路径回退到原始文件。
func prepareAssets(ctx context.Context, cfg *config.Config, logger *logrus.Logger, verify bool) (assetstore.Store, error) {
	store, err := assetstore.NewStore(cfg.Global.DistPath)
	if err != nil {
		return nil, err
	}

	builder, err := build.New(build.Options{
		Store:  store,
		Client: server.NewUpstreamClient(cfg),
		Logger: logger,
		Config: cfg.Build,
	})
	if err != nil {
		return nil, err
	}
	if err := builder.Build(ctx); err != nil {
		return nil, err
	}

	compressor := compress.New(store, logger, cfg.Global.CompressWorkers)
	compressor.CompressAll(ctx)

	if verify {
		if _, err := compressor.Verify(ctx); err != nil {
			return nil, fmt.Errorf("校验压缩变体失败: %w", err)
		}
	}
	return store, nil
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("assetd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
		verify     bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 ASSETD_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")
	fs.BoolVar(&verify, "verify", false, "压缩完成后逐个校验变体能否还原为原始文件")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("ASSETD_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
		verify:      verify,
	}, nil
}

func startHTTPServer(cfg *config.Config, store assetstore.Store, logger *logrus.Logger) error {
	port := cfg.Global.ListenPort
	app, err := server.NewApp(server.AppOptions{
		Logger:       logger,
		Assets:       dist.NewServer(store),
		DistPrefix:   cfg.Global.DistPrefix,
		PublicPath:   cfg.Global.PublicPath,
		PublicPrefix: cfg.Global.PublicPrefix,
		ReadTimeout:  cfg.Global.ReadTimeout.DurationValue(),
		WriteTimeout: cfg.Global.WriteTimeout.DurationValue(),
	})
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
		"prefix": cfg.Global.DistPrefix,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", port))
}
