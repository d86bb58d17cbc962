package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/assetd/internal/dist"
)

// assetHandler 把 <prefix>/* 请求交给协商核心，并把结构化错误映射为 HTTP 状态。
func assetHandler(assets AssetServer, logger *logrus.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		started := time.Now()
		assetPath := c.Params("*")
		acceptEncoding := acceptEncodingHeader(c)

		resp, err := assets.Serve(c.Context(), assetPath, acceptEncoding)
		if err != nil {
			status, code := errorStatus(err)
			logResult(logger, c, assetPath, dist.EncodingIdentity, status, started, err)
			return c.Status(status).JSON(fiber.Map{"error": code})
		}

		c.Set(fiber.HeaderContentType, resp.ContentType)
		if resp.ContentEncoding != dist.EncodingIdentity {
			c.Set(fiber.HeaderContentEncoding, string(resp.ContentEncoding))
		}
		c.Set(fiber.HeaderVary, fiber.HeaderAcceptEncoding)

		logResult(logger, c, resp.Path, resp.ContentEncoding, fiber.StatusOK, started, nil)
		return c.Status(fiber.StatusOK).Send(resp.Body)
	}
}

// acceptEncodingHeader 区分“未携带”与“携带空值”：前者返回 nil。
// 同名头出现多次时按逗号拼接。
func acceptEncodingHeader(c fiber.Ctx) *string {
	values, ok := c.GetReqHeaders()[fiber.HeaderAcceptEncoding]
	if !ok {
		return nil
	}
	joined := strings.Join(values, ", ")
	return &joined
}

func errorStatus(err error) (int, string) {
	var readErr *dist.ReadError
	switch {
	case errors.Is(err, dist.ErrNotAcceptable):
		return fiber.StatusNotAcceptable, "not_acceptable"
	case errors.Is(err, dist.ErrNotFound):
		return fiber.StatusNotFound, "not_found"
	case errors.As(err, &readErr):
		return fiber.StatusInternalServerError, "read_failed"
	default:
		return fiber.StatusInternalServerError, "internal_error"
	}
}
