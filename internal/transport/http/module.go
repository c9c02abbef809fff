package http

import (
	"go.uber.org/fx"

	transactiontransport "github.com/Additional-Code/orderdesk/internal/transport/http/transaction"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	transactiontransport.Module,
)
