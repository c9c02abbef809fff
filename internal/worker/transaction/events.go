package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/cache"
	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	"github.com/Additional-Code/orderdesk/internal/observability"
	transactionsvc "github.com/Additional-Code/orderdesk/internal/service/transaction"
	"github.com/Additional-Code/orderdesk/internal/worker"
)

const instrumentation = "github.com/Additional-Code/orderdesk/worker/transaction"

var workerTracer = otel.Tracer(instrumentation)

// Module registers transaction event handlers.
var Module = fx.Module("worker_transaction",
	fx.Provide(
		fx.Annotate(
			NewEventHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// Params collects handler dependencies.
type Params struct {
	fx.In

	Logger        *zap.Logger
	Config        config.Config
	Cache         cache.Store
	Observability *observability.Manager `optional:"true"`
}

// NewEventHandler consumes transaction lifecycle events: it drops the cached
// copy of the record and counts the event by type.
func NewEventHandler(p Params) (worker.HandlerRegistration, error) {
	events, err := p.Observability.Meter(instrumentation).Int64Counter(
		"orderdesk.transactions.events",
		metric.WithDescription("Transaction lifecycle events consumed by type."),
	)
	if err != nil {
		return worker.HandlerRegistration{}, fmt.Errorf("create events counter: %w", err)
	}
	logger := p.Logger

	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.transactions.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
			attribute.Int64("messaging.offset", msg.Offset),
		))
		defer span.End()

		var event transactionsvc.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode transaction event", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			// Poison messages are acknowledged, never retried.
			return nil
		}
		if event.ID <= 0 || event.Type == "" {
			logger.Warn("ignoring malformed transaction event", zap.ByteString("payload", msg.Value))

			return nil
		}
		span.SetAttributes(
			attribute.String("transaction.event", string(event.Type)),
			attribute.Int64("transaction.id", event.ID),
		)

		if err := p.Cache.Delete(ctx, cache.TransactionKey(event.ID)); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "cache invalidation failed")
			return fmt.Errorf("invalidate transaction %d: %w", event.ID, err)
		}

		events.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(event.Type))))

		logger.Info("transaction event processed",
			zap.String("type", string(event.Type)),
			zap.Int64("id", event.ID),
			zap.String("status", event.Status),
			zap.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}

	return worker.HandlerRegistration{
		Name:    "transaction-events",
		Topic:   p.Config.Messaging.Kafka.Topic,
		Handler: handler,
	}, nil
}
