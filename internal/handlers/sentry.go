package handlers

import (
	"time"

	"github.com/fevilela/GymFeedback/internal/config"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

// SetupSentry wires error capture into the echo instance. A missing DSN
// disables it, which is the normal state in development and tests.
func SetupSentry(e *echo.Echo, cfg *config.Config) {
	if cfg.Sentry.DSN == "" {
		return
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn: cfg.Sentry.DSN,
	}); err != nil {
		e.Logger.Warnf("Sentry initialization failed: %v", err)
		return
	}

	e.Use(sentryecho.New(sentryecho.Options{
		Repanic: true,
	}))
}

func CaptureError(err error) {
	sentry.CaptureException(err)
	sentry.Flush(2 * time.Second)
}
