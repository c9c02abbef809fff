package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

// Repository reads the category and color lookup tables.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a catalog repository.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// CategoryExists reports whether a category with id exists.
func (r *Repository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	return r.reader.NewSelect().Model((*entity.Category)(nil)).Where("id = ?", id).Exists(ctx)
}

// ColorExists reports whether a color with id exists.
func (r *Repository) ColorExists(ctx context.Context, id int64) (bool, error) {
	return r.reader.NewSelect().Model((*entity.Color)(nil)).Where("id = ?", id).Exists(ctx)
}

// Categories lists categories by name.
func (r *Repository) Categories(ctx context.Context) ([]entity.Category, error) {
	var out []entity.Category
	err := r.reader.NewSelect().Model(&out).Order("name ASC").Scan(ctx)
	return out, err
}

// Colors lists colors by name.
func (r *Repository) Colors(ctx context.Context) ([]entity.Color, error) {
	var out []entity.Color
	err := r.reader.NewSelect().Model(&out).Order("name ASC").Scan(ctx)
	return out, err
}

// EnsureCategory returns the category named name, creating it when missing.
func (r *Repository) EnsureCategory(ctx context.Context, name string) (*entity.Category, error) {
	cat := new(entity.Category)
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(cat).Where("name = ?", name).Limit(1).Scan(ctx)
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		cat.Name = name
		_, err = tx.NewInsert().Model(cat).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// EnsureColor returns the color named name, creating it when missing.
func (r *Repository) EnsureColor(ctx context.Context, name string) (*entity.Color, error) {
	col := new(entity.Color)
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(col).Where("name = ?", name).Limit(1).Scan(ctx)
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		col.Name = name
		_, err = tx.NewInsert().Model(col).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return col, nil
}
