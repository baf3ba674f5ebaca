package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahmatfadhil/gostore/internal/models"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

type TokenService struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

func (t *TokenService) SignAccessToken(userID uint, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(AccessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.JWTSecret)
}

func (t *TokenService) SignRefreshToken(userID uint, role string) (string, error) {
	// jti keeps every issued token distinct, the unique index on the stored
	// row depends on that.
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(RefreshTTL).Unix(),
		"typ":  "refresh",
		"jti":  uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.RefreshSecret)
}

func (t *TokenService) SaveRefreshToken(token string, userID uint) error {
	row := models.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(RefreshTTL).Unix(),
		Revoked:   false,
	}
	if err := t.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (t *TokenService) ValidateRefresh(rawToken string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(rawToken, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", tok.Header["alg"])
		}
		return t.RefreshSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("cannot parse claims")
	}
	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return nil, errors.New("not a refresh token")
	}

	var stored models.RefreshToken
	if err := t.DB.Where("token = ?", rawToken).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("refresh token not found")
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if stored.Revoked {
		return nil, errors.New("refresh token revoked")
	}
	if time.Now().Unix() > stored.ExpiresAt {
		return nil, errors.New("refresh token expired")
	}

	return claims, nil
}

// Rotate exchanges a valid refresh token for a fresh access/refresh pair.
// The old token is revoked so it cannot be replayed.
func (t *TokenService) Rotate(rawToken string) (string, string, error) {
	claims, err := t.ValidateRefresh(rawToken)
	if err != nil {
		return "", "", err
	}

	userID := uint(claims["sub"].(float64))
	role, _ := claims["role"].(string)

	newAccess, err := t.SignAccessToken(userID, role)
	if err != nil {
		return "", "", err
	}
	newRefresh, err := t.SignRefreshToken(userID, role)
	if err != nil {
		return "", "", err
	}

	if err := t.Revoke(rawToken); err != nil {
		return "", "", err
	}
	if err := t.SaveRefreshToken(newRefresh, userID); err != nil {
		return "", "", err
	}

	return newAccess, newRefresh, nil
}

func (t *TokenService) Revoke(rawToken string) error {
	if err := t.DB.Model(&models.RefreshToken{}).
		Where("token = ?", rawToken).
		Update("revoked", true).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
