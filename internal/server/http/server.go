package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/identity"
	"github.com/Additional-Code/orderdesk/internal/observability"
	"github.com/Additional-Code/orderdesk/internal/presentation/http/response"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

const healthTimeout = 2 * time.Second

// Module exposes the HTTP server lifecycle to Fx.
var Module = fx.Module("http_server",
	fx.Provide(NewEcho),
	fx.Invoke(Run),
)

// Params collects the router dependencies.
type Params struct {
	fx.In

	Config        config.Config
	Logger        *zap.Logger
	Observability *observability.Manager `optional:"true"`
	Identity      identity.Middleware
	Database      *database.Connections `optional:"true"`
}

// NewEcho configures the Echo router with request ids, panic recovery, the
// request timeout, tracing and caller identity.
func NewEcho(p Params) *echo.Echo {
	cfg, obs, logger := p.Config, p.Observability, p.Logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	if cfg.HTTP.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeout(cfg.HTTP.RequestTimeout))
	}
	if obs != nil && obs.TracingEnabled() {
		e.Use(otelecho.Middleware(cfg.Observability.ServiceName))
	}
	if p.Identity != nil {
		e.Use(echo.MiddlewareFunc(p.Identity))
	}

	e.GET("/health", func(c echo.Context) error {
		status := map[string]string{"status": "ok"}
		if p.Database != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
			defer cancel()
			if err := p.Database.Ping(ctx); err != nil {
				logger.Warn("health check database ping failed", zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
			}
			status["database"] = "ok"
		}
		return c.JSON(http.StatusOK, status)
	})

	if obs != nil && obs.MetricsEnabled() && obs.MetricsHandler() != nil {
		e.GET(cfg.Observability.PrometheusPath, echo.WrapHandler(obs.MetricsHandler()))
	}

	return e
}

// errorHandler renders router level failures (unknown routes, panics,
// timeouts) with the same envelope as handler errors.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *errorbank.AppError
		var httpErr *echo.HTTPError
		status := 0
		switch {
		case errors.As(err, &appErr):
		case errors.As(err, &httpErr):
			status = httpErr.Code
			appErr = fromHTTPError(httpErr)
		default:
			appErr = errorbank.From(err)
		}

		if appErr.StatusCode() >= http.StatusInternalServerError || status >= http.StatusInternalServerError {
			logger.Error("http request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		if buildErr := response.New(c).WithStatus(status).WithError(appErr).Build(); buildErr != nil {
			logger.Error("render error response", zap.Error(buildErr))
		}
	}
}

func fromHTTPError(he *echo.HTTPError) *errorbank.AppError {
	message := http.StatusText(he.Code)
	if m, ok := he.Message.(string); ok && m != "" {
		message = m
	}
	switch he.Code {
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusUnsupportedMediaType:
		return errorbank.BadRequest(message)
	case http.StatusForbidden, http.StatusUnauthorized:
		return errorbank.Forbidden(message)
	case http.StatusNotFound:
		return errorbank.NotFound(message)
	default:
		return errorbank.Internal(message, errorbank.WithCause(he))
	}
}

// Run starts the HTTP server and ties it to the Fx lifecycle.
func Run(lc fx.Lifecycle, cfg config.Config, e *echo.Echo, logger *zap.Logger) {
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting HTTP server", zap.String("addr", addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return server.Shutdown(ctx)
		},
	})
}
