package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	mwauth "github.com/rahmatfadhil/gostore/internal/middleware/auth"
	"github.com/rahmatfadhil/gostore/internal/models"
	"github.com/rahmatfadhil/gostore/internal/redis"
)

type NotificationHandler struct {
	DB    *gorm.DB
	Cache *redis.Client
}

// scopeQuery limits rows to what the caller may see: personal rows always,
// broadcast rows only for staff.
func (h *NotificationHandler) scopeQuery(userID uint, role string) *gorm.DB {
	q := h.DB.Model(&models.Notification{})
	if mwauth.IsStaff(role) {
		return q.Where("scope = ? OR user_id = ?", models.NotificationScopeBroadcast, userID)
	}
	return q.Where("scope = ? AND user_id = ?", models.NotificationScopePersonal, userID)
}

func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}

	var items []models.Notification
	if err := h.scopeQuery(userID, mwauth.Role(c)).
		Order("created_at DESC").
		Limit(100).
		Find(&items).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if count, ok := h.Cache.GetUnreadCount(ctx, userID); ok {
		return c.JSON(http.StatusOK, echo.Map{"unread": count})
	}

	var count int64
	if err := h.scopeQuery(userID, mwauth.Role(c)).
		Where("read = ?", false).
		Count(&count).Error; err != nil {
		return respondError(c, err)
	}
	h.Cache.SetUnreadCount(ctx, userID, count)

	return c.JSON(http.StatusOK, echo.Map{"unread": count})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	res := h.scopeQuery(userID, mwauth.Role(c)).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		return respondError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}

	h.Cache.InvalidateUnread(c.Request().Context(), userID)
	return c.JSON(http.StatusOK, echo.Map{"read": true})
}
