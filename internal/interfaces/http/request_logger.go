package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/devis-api/pkg/logger"
)

const localRequestID = "requestid"

// RequestLogger registra una línea por petición y deja en el UserContext un logger con request_id.
// Debe ir detrás de requestid.New().
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID, _ := c.Locals(localRequestID).(string)

		reqLog := log.With("request_id", reqID)
		c.SetUserContext(reqLog.WithContext(c.UserContext()))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		ev := reqLog.ForStatus(status).
			Str("method", c.Method()).
			Str("route", c.Route().Path).
			Str("path", c.Path()).
			Int("status", status).
			Int64("duration_ms", time.Since(start).Milliseconds())
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("http request")
		return err
	}
}

func requestIDMiddleware() fiber.Handler {
	return requestid.New(requestid.Config{ContextKey: localRequestID})
}
