// Package httpserver assembles the echo application: global middleware,
// the REST API under /api, the signaling WebSocket and the
// observability endpoints.
package httpserver

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/accounts"
	"github.com/telecare/telecare/internal/appointments"
	"github.com/telecare/telecare/internal/auth"
	"github.com/telecare/telecare/internal/config"
	"github.com/telecare/telecare/internal/drugs"
	"github.com/telecare/telecare/internal/metrics"
	"github.com/telecare/telecare/internal/otp"
	"github.com/telecare/telecare/internal/platform/db"
	"github.com/telecare/telecare/internal/platform/middleware"
	"github.com/telecare/telecare/internal/prediction"
	"github.com/telecare/telecare/internal/prescriptions"
	"github.com/telecare/telecare/internal/signaling"
)

// Deps carries everything the HTTP layer mounts. All fields are
// required; tests may pass a nil Pool when they never hit /health.
type Deps struct {
	Config *config.Config
	Logger zerolog.Logger
	Pool   *pgxpool.Pool

	TokenIssuer *auth.TokenIssuer
	Metrics     *metrics.Metrics
	Signaling   *signaling.Server

	Accounts      *accounts.Handler
	Appointments  *appointments.Handler
	Prescriptions *prescriptions.Handler
	OTP           *otp.Handler
	Drugs         *drugs.Handler
	Prediction    *prediction.Handler
}

type Server struct {
	echo *echo.Echo
	cfg  *config.Config
}

func New(d Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(d.Logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(d.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.Config.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(auth.Middleware(d.TokenIssuer))

	e.GET("/health", db.HealthHandler(d.Pool))
	e.GET("/metrics", echo.WrapHandler(metrics.PrometheusHandler(d.Metrics)))

	// The browser WebSocket API cannot set headers, so the signaling
	// endpoint authenticates via ?token= instead of the auth middleware.
	e.GET("/ws/video/:room", d.Signaling.HandleVideo)

	api := e.Group("/api")
	d.Accounts.RegisterRoutes(api)
	d.Appointments.RegisterRoutes(api)
	d.Prescriptions.RegisterRoutes(api)
	d.OTP.RegisterRoutes(api)
	d.Drugs.RegisterRoutes(api)
	d.Prediction.RegisterRoutes(api)

	api.GET("/webrtc/config", webrtcConfig(d.Config), auth.RequireAuth())

	return &Server{echo: e, cfg: d.Config}
}

// webrtcConfig hands authenticated clients the ICE server list they
// should use when opening the call's PeerConnection.
func webrtcConfig(cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		servers, err := cfg.ICEServers()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "ice configuration invalid")
		}
		return c.JSON(http.StatusOK, map[string]any{"iceServers": servers})
	}
}

// Echo exposes the assembled application, mainly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Start() error {
	return s.echo.Start(":" + s.cfg.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
