package server

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/assetd/internal/dist"
	"github.com/any-hub/assetd/internal/logging"
	"github.com/any-hub/assetd/internal/version"
)

// AssetServer describes the component that negotiates a built asset for a
// request. It allows injecting fake servers during tests.
type AssetServer interface {
	Serve(ctx context.Context, requestPath string, acceptEncoding *string) (*dist.Response, error)
}

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger *logrus.Logger
	Assets AssetServer
	// DistPrefix 是协商路由的前缀，例如 /dist。
	DistPrefix string
	// PublicPath 非空且目录存在时，以 PublicPrefix 原样暴露该目录。
	PublicPath   string
	PublicPrefix string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

const contextKeyRequestID = "_assetd_request_id"

// NewApp builds a Fiber application with request-id middleware, the
// negotiating asset route and structured error handling.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Assets == nil {
		return nil, errors.New("asset server is required")
	}
	if !strings.HasPrefix(opts.DistPrefix, "/") {
		return nil, errors.New("dist prefix must start with /")
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		ReadTimeout:   opts.ReadTimeout,
		WriteTimeout:  opts.WriteTimeout,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware())

	app.Get("/-/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": version.Full(),
		})
	})

	app.Add([]string{fiber.MethodGet, fiber.MethodHead},
		strings.TrimRight(opts.DistPrefix, "/")+"/*", assetHandler(opts.Assets, opts.Logger))

	if opts.PublicPath != "" && opts.PublicPrefix != "" {
		if info, err := os.Stat(opts.PublicPath); err == nil && info.IsDir() {
			app.Use(opts.PublicPrefix, static.New(opts.PublicPath))
		} else {
			opts.Logger.WithFields(logrus.Fields{
				"action": "public_mount",
				"path":   opts.PublicPath,
			}).Warn("public directory unavailable, skipping")
		}
	}

	return app, nil
}

// requestContextMiddleware 为每个请求生成请求 ID，并回写到响应头。
func requestContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

// logResult 记录一次资源请求的协商结果。
func logResult(logger *logrus.Logger, c fiber.Ctx, assetPath string, encoding dist.Encoding, status int, started time.Time, err error) {
	fields := logging.RequestFields(assetPath, string(encoding), status)
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if reqID := RequestID(c); reqID != "" {
		fields["request_id"] = reqID
	}
	if err != nil {
		fields["error"] = err.Error()
		if status >= fiber.StatusInternalServerError {
			logger.WithFields(fields).Error("serve_failed")
			return
		}
		logger.WithFields(fields).Warn("serve_rejected")
		return
	}
	logger.WithFields(fields).Info("serve_complete")
}
