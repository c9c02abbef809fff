package seeder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/cache"
	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database/dbtest"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	"github.com/Additional-Code/orderdesk/internal/repository/catalog"
	repo "github.com/Additional-Code/orderdesk/internal/repository/transaction"
	service "github.com/Additional-Code/orderdesk/internal/service/transaction"
)

func TestSeeder_IsIdempotent(t *testing.T) {
	conns := dbtest.New(t)
	catalogRepo := catalog.NewRepository(conns)
	svc := service.NewService(service.Params{
		Repository: repo.NewRepository(conns),
		Catalog:    catalogRepo,
		Cache:      cache.Noop(),
		Config:     config.Config{Listing: config.Listing{DefaultPerPage: 10, MaxPerPage: 100}},
		Logger:     zap.NewNop(),
		Publisher:  messaging.NewMemoryClient("transactions.events", 16),
	})
	seed := New(catalogRepo, svc, zap.NewNop())
	ctx := context.Background()

	n, err := seed.Transactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(samples), n)

	n, err = seed.Transactions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	cats, err := catalogRepo.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(Categories))
	colors, err := catalogRepo.Colors(ctx)
	require.NoError(t, err)
	assert.Len(t, colors, len(Colors))

	page, err := svc.List(ctx, service.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, len(samples), page.Total)
}
