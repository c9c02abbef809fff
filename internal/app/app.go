package app

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/cache"
	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/identity"
	"github.com/Additional-Code/orderdesk/internal/logger"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	"github.com/Additional-Code/orderdesk/internal/observability"
	repositorycatalog "github.com/Additional-Code/orderdesk/internal/repository/catalog"
	repositorytransaction "github.com/Additional-Code/orderdesk/internal/repository/transaction"
	grpcserver "github.com/Additional-Code/orderdesk/internal/server/grpc"
	httpserver "github.com/Additional-Code/orderdesk/internal/server/http"
	servicetransaction "github.com/Additional-Code/orderdesk/internal/service/transaction"
	transporthttp "github.com/Additional-Code/orderdesk/internal/transport/http"
	"github.com/Additional-Code/orderdesk/internal/worker"
	workertransaction "github.com/Additional-Code/orderdesk/internal/worker/transaction"
)

// Storage is the minimum needed to talk to the database (migrations).
var Storage = fx.Options(
	config.Module,
	logger.Module,
	database.Module,
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	Storage,
	cache.Module,
	messaging.Module,
	observability.Module,
	repositorycatalog.Module,
	repositorytransaction.Module,
	servicetransaction.Module,
)

// HTTP wires the HTTP transport and the gRPC health server on top of the core
// modules.
var HTTP = fx.Options(
	Core,
	identity.Module,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workertransaction.Module,
)

// All runs the servers and the worker in one process; required for the
// in-process memory messaging driver.
var All = fx.Options(
	HTTP,
	worker.Module,
	workertransaction.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP

// FxLogger routes Fx lifecycle events through the application logger.
var FxLogger = fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: logger.Named("fx")}
})
