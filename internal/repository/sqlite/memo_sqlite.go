package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/maxviazov/memo-service/internal/model"
	"github.com/maxviazov/memo-service/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// memoRow is the gorm mapping of the memos table.
type memoRow struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Text      string    `gorm:"column:memo_text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (memoRow) TableName() string { return "memos" }

func (r memoRow) toModel() model.Memo {
	return model.Memo{ID: r.ID, Text: r.Text, CreatedAt: r.CreatedAt}
}

const rawScanSQL = `SELECT id, memo_text, created_at, CURRENT_DATE FROM memos`

type memoRepository struct{ db *gorm.DB }

func NewMemoRepository(db *gorm.DB) repository.MemoRepository {
	return &memoRepository{db: db}
}

func (r *memoRepository) Create(ctx context.Context, m model.Memo) (model.Memo, error) {
	if err := ensureDB(r.db); err != nil {
		return model.Memo{}, err
	}
	// microseconds, same resolution as the Postgres timestamptz column
	row := memoRow{Text: m.Text, CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}
	if err := conn(ctx, r.db).Create(&row).Error; err != nil {
		return model.Memo{}, mapSQLiteError(err)
	}
	return row.toModel(), nil
}

func (r *memoRepository) GetByID(ctx context.Context, id int64) (model.Memo, error) {
	if err := ensureDB(r.db); err != nil {
		return model.Memo{}, err
	}
	var row memoRow
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Memo{}, repository.ErrNotFound
		}
		return model.Memo{}, mapSQLiteError(err)
	}
	return row.toModel(), nil
}

func (r *memoRepository) FindRange(ctx context.Context, from, to int64, p repository.PageRequest) (repository.Page[model.Memo], error) {
	if err := repository.CheckRange(from, to); err != nil {
		return repository.Page[model.Memo]{}, err
	}
	return r.findWhere(ctx, p, "id BETWEEN ? AND ?", from, to)
}

func (r *memoRepository) FindAll(ctx context.Context, p repository.PageRequest) (repository.Page[model.Memo], error) {
	return r.findWhere(ctx, p, "")
}

func (r *memoRepository) FindAfter(ctx context.Context, after int64, p repository.PageRequest) (repository.Page[model.Memo], error) {
	return r.findWhere(ctx, p, "id > ?", after)
}

// scoped applies an optional where clause to a fresh session on the memo table.
func (r *memoRepository) scoped(ctx context.Context, where string, args ...any) *gorm.DB {
	tx := conn(ctx, r.db).Model(&memoRow{})
	if where != "" {
		tx = tx.Where(where, args...)
	}
	return tx
}

func (r *memoRepository) findWhere(ctx context.Context, p repository.PageRequest, where string, args ...any) (repository.Page[model.Memo], error) {
	if err := ensureDB(r.db); err != nil {
		return repository.Page[model.Memo]{}, err
	}
	order, err := orderBy(p.Sort())
	if err != nil {
		return repository.Page[model.Memo]{}, err
	}
	var rows []memoRow
	err = r.scoped(ctx, where, args...).
		Order(order).
		Limit(p.Size()).
		Offset(p.Offset()).
		Find(&rows).Error
	if err != nil {
		return repository.Page[model.Memo]{}, mapSQLiteError(err)
	}
	items := make([]model.Memo, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toModel())
	}
	return repository.BuildPage(items, p, func() (int64, error) {
		return r.count(ctx, where, args...)
	})
}

func (r *memoRepository) count(ctx context.Context, where string, args ...any) (int64, error) {
	var total int64
	if err := r.scoped(ctx, where, args...).Count(&total).Error; err != nil {
		return 0, mapSQLiteError(err)
	}
	return total, nil
}

// orderBy turns a repository sort into a gorm ORDER BY clause. Columns come
// from the sortable whitelist, never from raw input.
func orderBy(s repository.Sort) (clause.OrderBy, error) {
	if s.IsUnsorted() {
		return clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "id"}}}}, nil
	}
	orders := s.Orders()
	cols := make([]clause.OrderByColumn, 0, len(orders))
	for _, o := range orders {
		name, err := o.Column()
		if err != nil {
			return clause.OrderBy{}, err
		}
		cols = append(cols, clause.OrderByColumn{
			Column: clause.Column{Name: name},
			Desc:   o.Direction == repository.Descending,
		})
	}
	return clause.OrderBy{Columns: cols}, nil
}

func (r *memoRepository) UpdateText(ctx context.Context, id int64, text string) (int64, error) {
	if err := ensureDB(r.db); err != nil {
		return 0, err
	}
	res := r.scoped(ctx, "id = ?", id).Update("memo_text", text)
	if res.Error != nil {
		return 0, mapSQLiteError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *memoRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := ensureDB(r.db); err != nil {
		return err
	}
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&memoRow{})
	if res.Error != nil {
		return mapSQLiteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteLessThan plucks the matching ids and removes them one by one.
func (r *memoRepository) DeleteLessThan(ctx context.Context, threshold int64) (int, error) {
	if err := ensureDB(r.db); err != nil {
		return 0, err
	}
	var ids []int64
	if err := r.scoped(ctx, "id < ?", threshold).Order("id").Pluck("id", &ids).Error; err != nil {
		return 0, mapSQLiteError(err)
	}
	deleted := 0
	for _, id := range ids {
		res := conn(ctx, r.db).Where("id = ?", id).Delete(&memoRow{})
		if res.Error != nil {
			return deleted, mapSQLiteError(res.Error)
		}
		deleted += int(res.RowsAffected)
	}
	return deleted, nil
}

func (r *memoRepository) RawScan(ctx context.Context) ([]repository.Row, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	return r.raw(ctx, rawScanSQL+` WHERE id > 0 ORDER BY id`)
}

func (r *memoRepository) ScanAfter(ctx context.Context, after int64, p repository.PageRequest) (repository.Page[repository.Row], error) {
	if err := ensureDB(r.db); err != nil {
		return repository.Page[repository.Row]{}, err
	}
	order, err := p.Sort().SQL()
	if err != nil {
		return repository.Page[repository.Row]{}, err
	}
	items, err := r.raw(ctx, rawScanSQL+` WHERE id > ? ORDER BY `+order+` LIMIT ? OFFSET ?`, after, p.Size(), p.Offset())
	if err != nil {
		return repository.Page[repository.Row]{}, err
	}
	return repository.BuildPage(items, p, func() (int64, error) {
		return r.count(ctx, "id > ?", after)
	})
}

func (r *memoRepository) raw(ctx context.Context, query string, args ...any) ([]repository.Row, error) {
	rows, err := conn(ctx, r.db).Raw(query, args...).Rows()
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	out := make([]repository.Row, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, mapSQLiteError(err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = append([]byte(nil), b...)
			}
		}
		out = append(out, repository.Row(values))
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return out, nil
}

var _ repository.MemoRepository = (*memoRepository)(nil)
