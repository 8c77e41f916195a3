package web

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Spok95/school-records/internal/apierr"
	"github.com/Spok95/school-records/internal/ctxutil"
	"github.com/Spok95/school-records/internal/metrics"
	"github.com/Spok95/school-records/internal/observability"
)

const (
	headerRequestID = "X-Request-ID"
	localRequestID  = "request_id"
)

// requestID принимает X-Request-ID клиента или выдаёт новый и кладёт его в user context.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(headerRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(headerRequestID, id)
		c.Locals(localRequestID, id)
		c.SetUserContext(ctxutil.WithRequestID(c.UserContext(), id))
		return c.Next()
	}
}

func requestIDOf(c *fiber.Ctx) string {
	id, _ := c.Locals(localRequestID).(string)
	return id
}

// accessLog пишет строку на запрос и метрики. Ошибку цепочки отдаём
// в ErrorHandler сразу, чтобы в лог попал итоговый статус.
func accessLog(log *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		dur := time.Since(start)
		status := c.Response().StatusCode()

		route := c.Route().Path
		if status == fiber.StatusNotFound && route == "/" && c.Path() != "/" {
			route = "unmatched"
		}
		metrics.ObserveRequest(c.Method(), route, status, dur)

		fields := []interface{}{
			"request_id", requestIDOf(c),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"dur", dur,
		}
		switch {
		case status >= 500:
			log.Errorw("request", fields...)
		case status >= 400:
			log.Warnw("request", fields...)
		default:
			log.Infow("request", fields...)
		}
		return nil
	}
}

func errorHandler(log *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		body := apierr.Body{Error: "internal server error"}

		var ae *apierr.Error
		var fe *fiber.Error
		switch {
		case errors.As(err, &ae):
			code = ae.Code
			body = ae.Body()
		case errors.As(err, &fe):
			code = fe.Code
			body.Error = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Errorw("handler failed", "request_id", requestIDOf(c), "path", c.Path(), "err", err)
			observability.CaptureRequestErr(err, c.Method(), c.Route().Path, requestIDOf(c))
		}

		if strings.HasPrefix(c.Path(), AdminPrefix) {
			return c.Status(code).JSON(body)
		}
		if rerr := c.Status(code).Render("error", fiber.Map{
			"Title":     "Error",
			"Code":      code,
			"Message":   body.Error,
			"RequestID": requestIDOf(c),
		}); rerr != nil {
			log.Errorw("render error page", "err", rerr)
			return c.Status(code).SendString(body.Error)
		}
		return nil
	}
}
