package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/identity"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

// Outcome classifies a bulk run.
type Outcome string

const (
	OutcomeAll     Outcome = "all"
	OutcomePartial Outcome = "partial"
	OutcomeNone    Outcome = "none"
)

// BulkResult reports each id of a bulk request. Authorization denials, missing
// records and processing failures are kept apart.
type BulkResult struct {
	Action    Action
	Requested int
	Succeeded []int64
	Denied    []dto.BulkFailure
	Missing   []int64
	Failed    []dto.BulkFailure
}

// Outcome reports whether every, some or none of the requested ids succeeded.
func (r BulkResult) Outcome() Outcome {
	switch {
	case len(r.Succeeded) == 0:
		return OutcomeNone
	case len(r.Succeeded) == r.Requested:
		return OutcomeAll
	default:
		return OutcomePartial
	}
}

// Message summarises the result for display.
func (r BulkResult) Message() string {
	msg := fmt.Sprintf("%d of %d transactions %s", len(r.Succeeded), r.Requested, pastTense(r.Action))
	if n := len(r.Denied); n > 0 {
		msg += fmt.Sprintf("; %d not authorized", n)
	}
	if n := len(r.Missing); n > 0 {
		msg += fmt.Sprintf("; %d not found", n)
	}
	if n := len(r.Failed); n > 0 {
		msg += fmt.Sprintf("; %d failed", n)
	}
	return msg
}

// Response converts the result into its transport shape.
func (r BulkResult) Response() dto.BulkResponse {
	return dto.BulkResponse{
		Action:    string(r.Action),
		Outcome:   string(r.Outcome()),
		Requested: r.Requested,
		Succeeded: nonNil(r.Succeeded),
		Denied:    nonNil(r.Denied),
		Missing:   nonNil(r.Missing),
		Failed:    nonNil(r.Failed),
		Message:   r.Message(),
	}
}

// Bulk applies action to every id independently. Duplicate ids are processed
// once and ids below one are reported missing. A failure on one id never stops
// the others.
func (s *Service) Bulk(ctx context.Context, caller *identity.Identity, action Action, ids []int64) (BulkResult, error) {
	switch action {
	case ActionDelete, ActionRestore, ActionForceDelete:
	default:
		return BulkResult{}, errorbank.BadRequest(fmt.Sprintf("unsupported bulk action %q", action))
	}
	unique := dedupe(ids)
	if len(unique) == 0 {
		return BulkResult{}, errorbank.Invalid(map[string]string{"ids": "is required"})
	}

	ctx, span := serviceTracer.Start(ctx, "TransactionService.Bulk")
	defer span.End()

	result := BulkResult{Action: action, Requested: len(unique)}
	for _, id := range unique {
		if id <= 0 {
			result.Missing = append(result.Missing, id)
			continue
		}
		err := s.transition(ctx, caller, action, id)
		var appErr *errorbank.AppError
		switch {
		case err == nil:
			result.Succeeded = append(result.Succeeded, id)
		case errorbank.Is(err, errorbank.KindForbidden):
			result.Denied = append(result.Denied, dto.BulkFailure{ID: id, Reason: err.Error()})
		case errorbank.Is(err, errorbank.KindNotFound):
			result.Missing = append(result.Missing, id)
		case errors.As(err, &appErr):
			result.Failed = append(result.Failed, dto.BulkFailure{ID: id, Reason: appErr.Message()})
		default:
			result.Failed = append(result.Failed, dto.BulkFailure{ID: id, Reason: err.Error()})
		}
	}
	return result, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func pastTense(action Action) string {
	switch action {
	case ActionDelete:
		return "deleted"
	case ActionRestore:
		return "restored"
	case ActionForceDelete:
		return "permanently deleted"
	default:
		return string(action)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
