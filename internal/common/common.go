package common

import (
	"context"

	"github.com/fevilela/GymFeedback/internal/config"
	"github.com/fevilela/GymFeedback/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type JwtCustomClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type JWTIssuer interface {
	GenerateToken(username string) (string, error)
	Middleware() echo.MiddlewareFunc
	GetUsername(c echo.Context) (string, error)
}

// ChangeNotifier broadcasts a refresh hint after store mutations so open
// dashboards can re-fetch. No data rides on the notification.
type ChangeNotifier interface {
	Broadcast(event string)
}

// DashboardCache holds rendered dashboard payloads between store mutations.
// Implementations must drop every entry on Invalidate so a payload computed
// before a mutation is never served after it.
type DashboardCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte)
	Invalidate(ctx context.Context)
}

type ServerState struct {
	Echo      *echo.Echo
	Config    *config.Config
	DB        *gorm.DB
	Store     store.Store
	JwtIssuer JWTIssuer
	Redis     *redis.Client
	Cache     DashboardCache
	Notifier  ChangeNotifier
}
