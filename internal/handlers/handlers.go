package handlers

import (
	"net/http"

	"github.com/fevilela/GymFeedback/internal/common"
	"github.com/fevilela/GymFeedback/internal/config"
	"github.com/fevilela/GymFeedback/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type AuthHandler struct {
	common.ServerState
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, jwt common.JWTIssuer, redis *redis.Client) *AuthHandler {
	return &AuthHandler{
		ServerState: common.ServerState{
			DB:        db,
			Config:    cfg,
			JwtIssuer: jwt,
			Redis:     redis,
		},
	}
}

func (h *AuthHandler) Login(c echo.Context) error {
	c.Logger().Info("Received staff login request")
	req := &LoginRequest{}

	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u, err := models.GetUserByUsername(h.DB, req.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	}

	if !u.CheckPassword(req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	}

	token, err := h.JwtIssuer.GenerateToken(u.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

// User returns the authenticated staff account, for the dashboard header.
func (h *AuthHandler) User(c echo.Context) error {
	username, err := h.JwtIssuer.GetUsername(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	u, err := models.GetUserByUsername(h.DB, username)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unknown user")
	}

	return c.JSON(http.StatusOK, u)
}
