package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/rahmatfadhil/gostore/internal/hash"
	"github.com/rahmatfadhil/gostore/internal/models"
	"github.com/rahmatfadhil/gostore/internal/mykafka"
	"github.com/rahmatfadhil/gostore/internal/service/token"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *token.TokenService
	Producer *mykafka.Producer
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password required")
	}

	var existing models.User
	if err := h.DB.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "user already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, err)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return respondError(c, err)
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, "user_events", map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	accessToken, err := h.Tokens.SignAccessToken(user.ID, user.Role)
	if err != nil {
		return respondError(c, err)
	}
	refreshToken, err := h.Tokens.SignRefreshToken(user.ID, user.Role)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Tokens.SaveRefreshToken(refreshToken, user.ID); err != nil {
		return respondError(c, err)
	}

	publish(c, h.Producer, "user_events", map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"role":          user.Role,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh_token required")
	}

	access, refresh, err := h.Tokens.Rotate(req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "cannot rotate token")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh_token required")
	}

	if err := h.Tokens.Revoke(req.RefreshToken); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
