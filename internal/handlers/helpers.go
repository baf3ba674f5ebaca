package handlers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rahmatfadhil/gostore/internal/apperr"
	"github.com/rahmatfadhil/gostore/internal/logging"
	"github.com/rahmatfadhil/gostore/internal/mykafka"
)

// respondError maps taxonomy errors to their HTTP status and surfaces the
// message; anything unexpected is logged with context and returned as a
// generic 500.
func respondError(c echo.Context, err error) error {
	if apperr.IsExpected(err) {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	logging.FromContext(c.Request().Context()).Error("internal error",
		"method", c.Request().Method,
		"path", c.Path(),
		"error", err,
	)
	return echo.NewHTTPError(apperr.HTTPStatus(err), "internal error")
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(400, "invalid id")
	}
	return uint(id), nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func publish(c echo.Context, producer *mykafka.Producer, topic string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := producer.PublishEvent(ctx, topic, fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
