package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/cache"
	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/identity"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	presenter "github.com/Additional-Code/orderdesk/internal/presentation/transaction"
	"github.com/Additional-Code/orderdesk/internal/repository/catalog"
	repo "github.com/Additional-Code/orderdesk/internal/repository/transaction"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

const instrumentation = "github.com/Additional-Code/orderdesk/service/transaction"

var serviceTracer = otel.Tracer(instrumentation)

// Service encapsulates business logic around transactions.
type Service struct {
	repo      *repo.Repository
	catalog   *catalog.Repository
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
	policy    Policy
	mapper    presenter.Mapper
	listing   config.Listing
	validate  *validator.Validate
	mutations metric.Int64Counter
	now       func() time.Time
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Catalog    *catalog.Repository
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
	// Clock overrides time.Now, mainly for tests.
	Clock func() time.Time `optional:"true"`
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	var policy Policy = AllowAll{}
	if p.Config.Auth.EnforceOwnership {
		policy = OwnerPolicy{}
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := p.Cache
	if store == nil {
		store = cache.Noop()
	}
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}

	mutations, err := otel.Meter(instrumentation).Int64Counter(
		"orderdesk.transactions.mutations",
		metric.WithDescription("Transaction write operations by action and result."),
	)
	if err != nil {
		logger.Warn("create mutation counter", zap.Error(err))
	}

	return &Service{
		repo:      p.Repository,
		catalog:   p.Catalog,
		cache:     store,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
		policy:    policy,
		mapper:    presenter.NewMapper(p.Config.Presentation.Currency),
		listing:   p.Config.Listing,
		validate:  newValidator(),
		mutations: mutations,
		now:       func() time.Time { return clock().UTC() },
	}
}

// Present maps a transaction through the presentation rules.
func (s *Service) Present(txn *entity.Transaction) dto.TransactionView {
	return s.mapper.Present(txn)
}

// Draft returns the defaults a new transaction form opens with.
func (s *Service) Draft() entity.Transaction {
	return entity.NewDraft(s.now())
}

// Create validates input, attributes ownership and persists a new transaction.
// caller is nil for anonymous requests; ownership is then left unset unless
// input names one.
func (s *Service) Create(ctx context.Context, caller *identity.Identity, in CreateInput) (*entity.Transaction, error) {
	ctx, span := serviceTracer.Start(ctx, "TransactionService.Create")
	defer span.End()

	problems := map[string]string{}
	fieldErrors(s.validate, in, problems)
	if len(problems) > 0 {
		return nil, errorbank.Invalid(problems)
	}

	now := s.now()
	txn := &entity.Transaction{
		UserID:        in.UserID,
		CategoryID:    *in.CategoryID,
		ColorID:       *in.ColorID,
		Status:        entity.StatusPending,
		BuyerName:     strings.TrimSpace(*in.BuyerName),
		BuyerPhone:    strings.TrimSpace(*in.BuyerPhone),
		ProductAmount: *in.ProductAmount,
		ProductCount:  *in.ProductCount,
		AcrylicMM:     *in.AcrylicMM,
		Notes:         strings.TrimSpace(*in.Notes),
		OrderDate:     dateOnly(*in.OrderDate),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		txn.Status = entity.Status(strings.TrimSpace(*in.Status))
	}
	if txn.UserID == nil && caller != nil {
		owner := caller.UserID
		txn.UserID = &owner
	}

	fieldErrors(s.validate, toRecord(txn), problems)
	if err := s.references(ctx, in.CategoryID, in.ColorID, problems); err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		return nil, errorbank.Invalid(problems)
	}

	span.SetAttributes(attribute.String("transaction.status", txn.Status.String()))
	if err := s.repo.Create(ctx, txn); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		s.record(ctx, "create", false)
		return nil, errorbank.Internal("failed to create transaction", errorbank.WithCause(err))
	}
	s.record(ctx, "create", true)

	created, err := s.repo.GetByID(ctx, txn.ID, repo.WithTrashed)
	if err != nil {
		s.logger.Warn("reload created transaction", zap.Int64("id", txn.ID), zap.Error(err))
		created = txn
	}

	s.storeInCache(ctx, created)
	s.publish(ctx, EventCreated, created)
	return created, nil
}

// Get retrieves a transaction by id within the trashed scope, consulting cache
// when available.
func (s *Service) Get(ctx context.Context, id int64, trashed repo.Trashed) (*entity.Transaction, error) {
	ctx, span := serviceTracer.Start(ctx, "TransactionService.Get", trace.WithAttributes(attribute.Int64("transaction.id", id)))
	defer span.End()

	if txn, err := s.getFromCache(ctx, id); err == nil {
		if !visible(txn, trashed) {
			return nil, notFound(id)
		}
		return txn, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("transactions cache read failed", zap.Int64("id", id), zap.Error(err))
	}

	txn, err := s.repo.GetByID(ctx, id, repo.WithTrashed)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound(id)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load transaction", errorbank.WithCause(err))
	}

	s.storeInCache(ctx, txn)

	if !visible(txn, trashed) {
		return nil, notFound(id)
	}
	return txn, nil
}

// Update applies the non-nil fields of in. The owner and creation stamp never
// change; updated_at always advances.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*entity.Transaction, error) {
	ctx, span := serviceTracer.Start(ctx, "TransactionService.Update", trace.WithAttributes(attribute.Int64("transaction.id", id)))
	defer span.End()

	problems := map[string]string{}
	if err := s.references(ctx, in.CategoryID, in.ColorID, problems); err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		return nil, errorbank.Invalid(problems)
	}

	scope := repo.WithoutTrashed
	if in.IncludeTrashed {
		scope = repo.WithTrashed
	}

	updated, err := s.repo.Update(ctx, id, scope, func(cur *entity.Transaction) error {
		apply(cur, in)
		cur.UpdatedAt = s.now()
		fields := map[string]string{}
		fieldErrors(s.validate, toRecord(cur), fields)
		if len(fields) > 0 {
			return errorbank.Invalid(fields)
		}
		return nil
	})
	if err != nil {
		s.record(ctx, "update", false)
		return nil, s.translate(span, id, err, "failed to update transaction")
	}
	s.record(ctx, "update", true)

	s.storeInCache(ctx, updated)
	s.publish(ctx, EventUpdated, updated)
	return updated, nil
}

// SoftDelete moves a transaction to the trash. Trashing it twice is not an error.
func (s *Service) SoftDelete(ctx context.Context, caller *identity.Identity, id int64) error {
	return s.transition(ctx, caller, ActionDelete, id)
}

// Restore brings a trashed transaction back.
func (s *Service) Restore(ctx context.Context, caller *identity.Identity, id int64) error {
	return s.transition(ctx, caller, ActionRestore, id)
}

// ForceDelete irreversibly removes a trashed transaction.
func (s *Service) ForceDelete(ctx context.Context, caller *identity.Identity, id int64) error {
	return s.transition(ctx, caller, ActionForceDelete, id)
}

func (s *Service) transition(ctx context.Context, caller *identity.Identity, action Action, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "TransactionService."+string(action), trace.WithAttributes(attribute.Int64("transaction.id", id)))
	defer span.End()

	scope := repo.WithTrashed
	if action == ActionForceDelete {
		scope = repo.OnlyTrashed
	}
	current, err := s.repo.GetByID(ctx, id, scope)
	if err != nil {
		return s.translate(span, id, err, "failed to load transaction")
	}
	if !s.policy.Allow(caller, action, current) {
		span.SetStatus(codes.Error, "forbidden")
		s.record(ctx, string(action), false)
		return errorbank.Forbidden(fmt.Sprintf("not allowed to %s transaction", strings.ReplaceAll(string(action), "_", " ")),
			errorbank.WithDetail("id", id))
	}

	now := s.now()
	switch action {
	case ActionDelete:
		err = s.repo.SoftDelete(ctx, id, now)
	case ActionRestore:
		err = s.repo.Restore(ctx, id, now)
	case ActionForceDelete:
		err = s.repo.ForceDelete(ctx, id)
	default:
		err = fmt.Errorf("unknown action %q", action)
	}
	if err != nil {
		s.record(ctx, string(action), false)
		return s.translate(span, id, err, "failed to "+strings.ReplaceAll(string(action), "_", " ")+" transaction")
	}
	s.record(ctx, string(action), true)

	s.invalidate(ctx, id)
	s.publish(ctx, eventFor(action), current)
	return nil
}

// List returns one page of presented transactions.
func (s *Service) List(ctx context.Context, q ListQuery) (dto.Page[dto.TransactionView], error) {
	ctx, span := serviceTracer.Start(ctx, "TransactionService.List")
	defer span.End()

	query, err := q.resolve(s.listing)
	if err != nil {
		return dto.Page[dto.TransactionView]{}, err
	}

	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return dto.Page[dto.TransactionView]{}, errorbank.Internal("failed to list transactions", errorbank.WithCause(err))
	}
	return dto.NewPage(s.mapper.PresentAll(rows), total, query.Page, query.PerPage), nil
}

// Schema describes the transaction fields together with select options.
func (s *Service) Schema(ctx context.Context) (dto.Schema, error) {
	cats, err := s.catalog.Categories(ctx)
	if err != nil {
		return dto.Schema{}, errorbank.Internal("failed to load categories", errorbank.WithCause(err))
	}
	colors, err := s.catalog.Colors(ctx)
	if err != nil {
		return dto.Schema{}, errorbank.Internal("failed to load colors", errorbank.WithCause(err))
	}
	return dto.Schema{Fields: entity.TransactionSchema, Categories: cats, Colors: colors}, nil
}

// PurgeTrash force deletes transactions trashed longer than retention. Each
// purged record is evicted from cache and announced like a force delete.
func (s *Service) PurgeTrash(ctx context.Context, retention time.Duration) (int64, error) {
	ctx, span := serviceTracer.Start(ctx, "TransactionService.PurgeTrash")
	defer span.End()

	purged, err := s.repo.PurgeTrashed(ctx, s.now().Add(-retention))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		s.record(ctx, "purge", false)
		return 0, errorbank.Internal("failed to purge trash", errorbank.WithCause(err))
	}
	if len(purged) == 0 {
		return 0, nil
	}
	s.record(ctx, "purge", true)

	ids := make([]int64, len(purged))
	for i := range purged {
		ids[i] = purged[i].ID
	}
	s.invalidate(ctx, ids...)
	for i := range purged {
		s.publish(ctx, EventForceDeleted, &purged[i])
	}

	s.logger.Info("purged trashed transactions", zap.Int("count", len(purged)), zap.Duration("retention", retention))
	return int64(len(purged)), nil
}

// references records a field error for every supplied category or color id
// that does not exist. Ids below one never exist.
func (s *Service) references(ctx context.Context, categoryID, colorID *int64, problems map[string]string) error {
	checks := []struct {
		field  string
		kind   string
		id     *int64
		lookup func(context.Context, int64) (bool, error)
	}{
		{"category_id", cache.KindCategory, categoryID, s.catalog.CategoryExists},
		{"color_id", cache.KindColor, colorID, s.catalog.ColorExists},
	}
	for _, c := range checks {
		if c.id == nil {
			continue
		}
		ok := false
		if *c.id > 0 {
			var err error
			ok, err = s.referenceExists(ctx, c.kind, *c.id, c.lookup)
			if err != nil {
				return errorbank.Internal("failed to check "+c.kind, errorbank.WithCause(err))
			}
		}
		if _, reported := problems[c.field]; !ok && !reported {
			problems[c.field] = "does not exist"
		}
	}
	return nil
}

func (s *Service) referenceExists(ctx context.Context, kind string, id int64, lookup func(context.Context, int64) (bool, error)) (bool, error) {
	key := cache.CatalogKey(kind, id)
	if _, err := s.cache.Get(ctx, key); err == nil {
		return true, nil
	}
	ok, err := lookup(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	if err := s.cache.Set(ctx, key, []byte("1"), s.cacheTTL); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
	return true, nil
}

func (s *Service) translate(span trace.Span, id int64, err error, message string) error {
	if errors.Is(err, repo.ErrNotFound) {
		span.SetStatus(codes.Error, "not found")
		return notFound(id)
	}
	var appErr *errorbank.AppError
	if errors.As(err, &appErr) {
		span.SetStatus(codes.Error, string(appErr.Kind()))
		return appErr
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "repository error")
	return errorbank.Internal(message, errorbank.WithCause(err))
}

func (s *Service) record(ctx context.Context, action string, ok bool) {
	if s.mutations == nil {
		return
	}
	s.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.Bool("success", ok),
	))
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Transaction, error) {
	var txn entity.Transaction
	if err := cache.GetJSON(ctx, s.cache, cache.TransactionKey(id), &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (s *Service) storeInCache(ctx context.Context, txn *entity.Transaction) {
	if txn == nil {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, cache.TransactionKey(txn.ID), txn, s.cacheTTL); err != nil {
		s.logger.Warn("transactions cache write failed", zap.Int64("id", txn.ID), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, ids ...int64) {
	if err := s.cache.Delete(ctx, cache.TransactionKeys(ids)...); err != nil {
		s.logger.Warn("transactions cache delete failed", zap.Int64s("ids", ids), zap.Error(err))
	}
}

func apply(cur *entity.Transaction, in UpdateInput) {
	if in.CategoryID != nil {
		cur.CategoryID = *in.CategoryID
		cur.Category = nil
	}
	if in.ColorID != nil {
		cur.ColorID = *in.ColorID
		cur.Color = nil
	}
	if in.Status != nil {
		cur.Status = entity.Status(strings.TrimSpace(*in.Status))
	}
	if in.BuyerName != nil {
		cur.BuyerName = strings.TrimSpace(*in.BuyerName)
	}
	if in.BuyerPhone != nil {
		cur.BuyerPhone = strings.TrimSpace(*in.BuyerPhone)
	}
	if in.ProductAmount != nil {
		cur.ProductAmount = *in.ProductAmount
	}
	if in.ProductCount != nil {
		cur.ProductCount = *in.ProductCount
	}
	if in.AcrylicMM != nil {
		cur.AcrylicMM = *in.AcrylicMM
	}
	if in.Notes != nil {
		cur.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.OrderDate != nil {
		cur.OrderDate = dateOnly(*in.OrderDate)
	}
}

func visible(txn *entity.Transaction, trashed repo.Trashed) bool {
	switch trashed {
	case repo.OnlyTrashed:
		return txn.Trashed()
	case repo.WithTrashed:
		return true
	default:
		return !txn.Trashed()
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func notFound(id int64) error {
	return errorbank.NotFound("transaction not found", errorbank.WithDetail("id", id))
}
