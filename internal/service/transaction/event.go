package transaction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// EventType names a transaction lifecycle change.
type EventType string

const (
	EventCreated      EventType = "transaction.created"
	EventUpdated      EventType = "transaction.updated"
	EventDeleted      EventType = "transaction.deleted"
	EventRestored     EventType = "transaction.restored"
	EventForceDeleted EventType = "transaction.force_deleted"
)

// Event is published on the messaging topic after every successful write.
type Event struct {
	Type       EventType `json:"type"`
	ID         int64     `json:"id"`
	UserID     *int64    `json:"user_id,omitempty"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

func eventFor(action Action) EventType {
	switch action {
	case ActionDelete:
		return EventDeleted
	case ActionRestore:
		return EventRestored
	case ActionForceDelete:
		return EventForceDeleted
	default:
		return EventUpdated
	}
}

func (s *Service) publish(ctx context.Context, kind EventType, txn *entity.Transaction) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := Event{
		Type:       kind,
		ID:         txn.ID,
		UserID:     txn.UserID,
		Status:     txn.Status.String(),
		OccurredAt: s.now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal transaction event", zap.String("type", string(kind)), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("transaction-%d", txn.ID)), payload); err != nil {
		s.logger.Error("publish transaction event", zap.String("type", string(kind)), zap.Int64("id", txn.ID), zap.Error(err))
	}
}
