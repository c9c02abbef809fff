// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/migration"
)

var seq atomic.Int64

// New returns connections to a fresh, fully migrated in-memory database.
func New(t *testing.T) *database.Connections {
	t.Helper()

	dsn := fmt.Sprintf("file:orderdesk_%d?mode=memory&cache=shared&_foreign_keys=on", seq.Add(1))
	cfg := config.Config{Database: config.Database{
		Driver:       "sqlite",
		WriterDSN:    dsn,
		ReaderDSN:    dsn,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}}

	conns, err := database.Open(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conns.Close() })

	mig, err := migration.New(cfg, conns, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, mig.Up(context.Background()))

	return conns
}

// Catalog inserts a category and a color and returns them.
func Catalog(t *testing.T, conns *database.Connections, category, color string) (*entity.Category, *entity.Color) {
	t.Helper()
	ctx := context.Background()

	cat := &entity.Category{Name: category}
	_, err := conns.Writer.NewInsert().Model(cat).Exec(ctx)
	require.NoError(t, err)

	col := &entity.Color{Name: color}
	_, err = conns.Writer.NewInsert().Model(col).Exec(ctx)
	require.NoError(t, err)

	return cat, col
}
