package loggingmw

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rahmatfadhil/gostore/internal/logging"
)

// RequestLogger attaches a request-scoped slog logger to the context and
// logs one line per request, leveled by response status.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With(
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"remote_ip", c.RealIP(),
			)
			if rid != "" {
				l = l.With("request_id", rid)
			}

			req := c.Request().WithContext(logging.IntoContext(c.Request().Context(), l))
			c.SetRequest(req)

			start := time.Now()
			err := next(c)
			elapsed := time.Since(start)
			status := c.Response().Status

			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
				status = c.Response().Status
			}

			if uid, ok := c.Get("userID").(uint); ok {
				l = l.With("user_id", uid)
			}

			switch {
			case err != nil || status >= 500:
				l.Error("request completed", "status", status, "elapsed", elapsed.String(), "error", errStr(err))
			case status >= 400:
				l.Warn("request completed", "status", status, "elapsed", elapsed.String())
			default:
				l.Info("request completed", "status", status, "elapsed", elapsed.String(), "bytes", c.Response().Size)
			}
			return nil
		}
	}
}

func errStr(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%v", err)
}
