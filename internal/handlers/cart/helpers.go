package cart

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rahmatfadhil/gostore/internal/apperr"
	"github.com/rahmatfadhil/gostore/internal/logging"
)

func (h *CartHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

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
