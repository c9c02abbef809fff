package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/repository/catalog"
	repo "github.com/Additional-Code/orderdesk/internal/repository/transaction"
	service "github.com/Additional-Code/orderdesk/internal/service/transaction"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Categories and Colors are the lookup values every environment starts with.
var (
	Categories = []string{"Signage", "Keychain", "Display Stand", "Name Plate"}
	Colors     = []string{"Clear", "Black", "White", "Red", "Blue"}
)

type sample struct {
	category string
	color    string
	status   entity.Status
	buyer    string
	phone    string
	amount   string
	count    int
	mm       int64
	notes    string
	daysAgo  int
}

var samples = []sample{
	{"Signage", "Clear", entity.StatusPending, "Alice", "081234567890", "50000", 3, 5, "rush order", 0},
	{"Keychain", "Red", entity.StatusProgress, "Budi", "081298765432", "12500.50", 40, 3, "logo on both sides", 2},
	{"Display Stand", "Black", entity.StatusDone, "Citra", "085611112222", "175000", 1, 8, "pick up at store", 7},
	{"Name Plate", "White", entity.StatusCancel, "Dewi", "087733334444", "90000", 2, 5, "customer cancelled", 14},
}

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	catalog *catalog.Repository
	svc     *service.Service
	logger  *zap.Logger
}

// New constructs a Seeder.
func New(catalogRepo *catalog.Repository, svc *service.Service, logger *zap.Logger) *Seeder {
	return &Seeder{catalog: catalogRepo, svc: svc, logger: logger}
}

// Catalog ensures every default category and color exists.
func (s *Seeder) Catalog(ctx context.Context) (map[string]int64, map[string]int64, error) {
	categories := make(map[string]int64, len(Categories))
	for _, name := range Categories {
		cat, err := s.catalog.EnsureCategory(ctx, name)
		if err != nil {
			return nil, nil, fmt.Errorf("seed category %q: %w", name, err)
		}
		categories[name] = cat.ID
	}
	colors := make(map[string]int64, len(Colors))
	for _, name := range Colors {
		col, err := s.catalog.EnsureColor(ctx, name)
		if err != nil {
			return nil, nil, fmt.Errorf("seed color %q: %w", name, err)
		}
		colors[name] = col.ID
	}

	if s.logger != nil {
		s.logger.Info("seeded catalog", zap.Int("categories", len(categories)), zap.Int("colors", len(colors)))
	}
	return categories, colors, nil
}

// Transactions seeds the catalog and, when no transactions exist yet, a few
// example orders. It returns the number of orders created.
func (s *Seeder) Transactions(ctx context.Context) (int, error) {
	categories, colors, err := s.Catalog(ctx)
	if err != nil {
		return 0, err
	}

	existing, err := s.svc.List(ctx, service.ListQuery{Trashed: repo.WithTrashed, PerPage: 1})
	if err != nil {
		return 0, err
	}
	if existing.Total > 0 {
		if s.logger != nil {
			s.logger.Info("transactions already present; skipping samples", zap.Int("count", existing.Total))
		}
		return 0, nil
	}

	today := time.Now().UTC()
	for _, smp := range samples {
		in := service.CreateInput{
			CategoryID:    ptr(categories[smp.category]),
			ColorID:       ptr(colors[smp.color]),
			Status:        ptr(string(smp.status)),
			BuyerName:     ptr(smp.buyer),
			BuyerPhone:    ptr(smp.phone),
			ProductAmount: ptr(decimal.RequireFromString(smp.amount)),
			ProductCount:  ptr(smp.count),
			AcrylicMM:     ptr(decimal.NewFromInt(smp.mm)),
			Notes:         ptr(smp.notes),
			OrderDate:     ptr(today.AddDate(0, 0, -smp.daysAgo)),
		}
		if _, err := s.svc.Create(ctx, nil, in); err != nil {
			return 0, fmt.Errorf("seed transaction for %s: %w", smp.buyer, err)
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded transactions", zap.Int("count", len(samples)))
	}
	return len(samples), nil
}

func ptr[T any](v T) *T { return &v }
