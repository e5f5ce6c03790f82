package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/diamond-electronics/storefront-api/internal/config"
	"github.com/diamond-electronics/storefront-api/internal/dto"
	"github.com/diamond-electronics/storefront-api/internal/middleware"
	"github.com/diamond-electronics/storefront-api/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
	jwt config.JWTConfig
}

func NewAuthHandler(svc *service.AuthService, jwt config.JWTConfig) *AuthHandler {
	return &AuthHandler{svc: svc, jwt: jwt}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusCreated, dto.AuthResponse{
		AccessToken: result.AccessToken,
		User:        dto.ToUserResponse(result.User),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusOK, dto.AuthResponse{
		AccessToken: result.AccessToken,
		User:        dto.ToUserResponse(result.User),
	})
}

// Refresh rotates the refresh cookie. A used, revoked, or malformed token
// is rejected identically: the client must log in again.
func (h *AuthHandler) Refresh(c *gin.Context) {
	cookie, err := c.Cookie(h.jwt.CookieName)
	if err != nil || cookie == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.svc.Rotate(c.Request.Context(), cookie)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken),
			errors.Is(err, service.ErrTokenRevoked),
			errors.Is(err, service.ErrUserNotFound):
			h.clearRefreshCookie(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusOK, dto.AuthResponse{
		AccessToken: result.AccessToken,
		User:        dto.ToUserResponse(result.User),
	})
}

// Logout always clears the cookie; revocation is best-effort.
func (h *AuthHandler) Logout(c *gin.Context) {
	if cookie, err := c.Cookie(h.jwt.CookieName); err == nil && cookie != "" {
		if err := h.svc.Revoke(c.Request.Context(), cookie); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
	}
	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":   middleware.GetUserID(c),
		"role": middleware.GetUserRole(c),
	})
}

// UpdateUserRole promotes or demotes a user. Admin-gated in the router.
func (h *AuthHandler) UpdateUserRole(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}
	var req dto.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.svc.UpdateRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

const refreshCookiePath = "/api/auth"

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.jwt.CookieName, token, int(h.jwt.RefreshTTL.Seconds()), refreshCookiePath, "", h.jwt.CookieSecure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.jwt.CookieName, "", -1, refreshCookiePath, "", h.jwt.CookieSecure, true)
}
