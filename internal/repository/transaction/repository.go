package transaction

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/orderdesk/repository/transaction")

// ErrNotFound is returned when a transaction is missing from the requested scope.
var ErrNotFound = errors.New("transaction not found")

// mutableColumns are written on update; owner, creation and trash stamps are not.
var mutableColumns = []string{
	"category_id",
	"color_id",
	"status",
	"buyer_name",
	"buyer_phone",
	"product_amount",
	"product_count",
	"acrylic_mm",
	"notes",
	"order_date",
	"updated_at",
}

// Query describes a paged list request.
type Query struct {
	Trashed Trashed
	Search  string
	SortBy  string
	Desc    bool
	Page    int
	PerPage int
}

// Repository encapsulates read/write access for transactions.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create persists a new transaction using the write connection.
func (r *Repository) Create(ctx context.Context, txn *entity.Transaction) error {
	if txn == nil {
		return errors.New("nil transaction")
	}
	ctx, span := repoTracer.Start(ctx, "TransactionRepository.Create", trace.WithAttributes(attribute.String("transaction.status", txn.Status.String())))
	defer span.End()

	_, err := r.writer.NewInsert().Model(txn).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a transaction with its category and color within the given scope.
func (r *Repository) GetByID(ctx context.Context, id int64, trashed Trashed) (*entity.Transaction, error) {
	ctx, span := repoTracer.Start(ctx, "TransactionRepository.GetByID", trace.WithAttributes(
		attribute.Int64("transaction.id", id),
		attribute.String("transaction.trashed", string(trashed)),
	))
	defer span.End()

	txn, err := r.get(ctx, r.reader, id, trashed)
	if errors.Is(err, ErrNotFound) {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return txn, nil
}

// Update loads the transaction, applies mutate and writes the mutable columns
// back, all inside one database transaction. mutate must not touch the owner.
func (r *Repository) Update(ctx context.Context, id int64, trashed Trashed, mutate func(*entity.Transaction) error) (*entity.Transaction, error) {
	ctx, span := repoTracer.Start(ctx, "TransactionRepository.Update", trace.WithAttributes(attribute.Int64("transaction.id", id)))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := r.get(ctx, tx, id, trashed)
		if err != nil {
			return err
		}
		if err := mutate(current); err != nil {
			return err
		}
		_, err = tx.NewUpdate().
			Model(current).
			Column(mutableColumns...).
			WherePK().
			WhereAllWithDeleted().
			Exec(ctx)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}

	return r.get(ctx, r.writer, id, WithTrashed)
}

// SoftDelete marks an active transaction as trashed. Trashing an already trashed
// transaction is a no-op.
func (r *Repository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	ctx, span := repoTracer.Start(ctx, "TransactionRepository.SoftDelete", trace.WithAttributes(attribute.Int64("transaction.id", id)))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model((*entity.Transaction)(nil)).
		Set("deleted_at = ?", at).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		WhereAllWithDeleted().
		Exec(ctx)
	return r.finishStateChange(ctx, span, res, err, id)
}

// Restore clears the trash marker. Restoring an active transaction is a no-op.
func (r *Repository) Restore(ctx context.Context, id int64, at time.Time) error {
	ctx, span := repoTracer.Start(ctx, "TransactionRepository.Restore", trace.WithAttributes(attribute.Int64("transaction.id", id)))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model((*entity.Transaction)(nil)).
		Set("deleted_at = NULL").
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("deleted_at IS NOT NULL").
		WhereAllWithDeleted().
		Exec(ctx)
	return r.finishStateChange(ctx, span, res, err, id)
}

// ForceDelete physically removes a trashed row. Active rows are not reachable
// and report ErrNotFound.
func (r *Repository) ForceDelete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "TransactionRepository.ForceDelete", trace.WithAttributes(attribute.Int64("transaction.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().
		Model((*entity.Transaction)(nil)).
		Where("id = ?", id).
		Where("deleted_at IS NOT NULL").
		WhereAllWithDeleted().
		ForceDelete().
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}

// PurgeTrashed force deletes every transaction trashed before the cutoff and
// returns the rows it removed.
func (r *Repository) PurgeTrashed(ctx context.Context, before time.Time) ([]entity.Transaction, error) {
	ctx, span := repoTracer.Start(ctx, "TransactionRepository.PurgeTrashed")
	defer span.End()

	purged := make([]entity.Transaction, 0)
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().
			Model(&purged).
			WhereAllWithDeleted().
			Where("t.deleted_at IS NOT NULL").
			Where("t.deleted_at < ?", before).
			OrderExpr("t.id ASC").
			Scan(ctx); err != nil {
			return err
		}
		if len(purged) == 0 {
			return nil
		}
		ids := make([]int64, len(purged))
		for i := range purged {
			ids[i] = purged[i].ID
		}
		_, err := tx.NewDelete().
			Model((*entity.Transaction)(nil)).
			Where("id IN (?)", bun.In(ids)).
			WhereAllWithDeleted().
			ForceDelete().
			Exec(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "purge failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("transaction.purged", len(purged)))
	return purged, nil
}

// List returns one page of transactions and the total matching count.
func (r *Repository) List(ctx context.Context, query Query) ([]entity.Transaction, int, error) {
	ctx, span := repoTracer.Start(ctx, "TransactionRepository.List", trace.WithAttributes(
		attribute.String("transaction.trashed", string(query.Trashed)),
		attribute.String("transaction.sort", query.SortBy),
	))
	defer span.End()

	rows := make([]entity.Transaction, 0)
	q := r.reader.NewSelect().
		Model(&rows).
		Relation("Category").
		Relation("Color")
	q = query.Trashed.apply(q)

	if term := strings.ToLower(strings.TrimSpace(query.Search)); term != "" {
		pattern := "%" + term + "%"
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			for _, col := range entity.SearchColumns() {
				sq = sq.WhereOr("LOWER(?) LIKE ?", bun.Safe(col), pattern)
			}
			return sq
		})
	}

	direction := "ASC"
	if query.Desc {
		direction = "DESC"
	}
	if col, ok := entity.SortColumn(query.SortBy); ok {
		q = q.OrderExpr("? "+direction, bun.Safe(col))
	} else {
		q = q.OrderExpr("t.created_at DESC")
	}
	q = q.OrderExpr("t.id " + direction)

	if query.PerPage > 0 {
		page := query.Page
		if page < 1 {
			page = 1
		}
		q = q.Limit(query.PerPage).Offset((page - 1) * query.PerPage)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) get(ctx context.Context, db bun.IDB, id int64, trashed Trashed) (*entity.Transaction, error) {
	txn := new(entity.Transaction)
	q := db.NewSelect().
		Model(txn).
		Relation("Category").
		Relation("Color").
		Where("t.id = ?", id)
	err := trashed.apply(q).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// finishStateChange maps a zero-row trash/restore update onto either a no-op or
// ErrNotFound depending on whether the row exists at all.
func (r *Repository) finishStateChange(ctx context.Context, span trace.Span, res sql.Result, err error, id int64) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}
	exists, err := r.writer.NewSelect().
		Model((*entity.Transaction)(nil)).
		Where("t.id = ?", id).
		WhereAllWithDeleted().
		Exists(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !exists {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	span.SetAttributes(attribute.Bool("transaction.noop", true))
	return nil
}
