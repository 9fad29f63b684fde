package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/memo-service/internal/model"
	"github.com/maxviazov/memo-service/internal/repository"
)

const memoColumns = `id, memo_text, created_at`

// rawScanSQL bypasses the memo mapping entirely; callers get driver values.
const rawScanSQL = `SELECT id, memo_text, created_at, CURRENT_DATE FROM memos`

type memoRepository struct{ pool *pgxpool.Pool }

func NewMemoRepository(pool *pgxpool.Pool) repository.MemoRepository {
	return &memoRepository{pool: pool}
}

func (r *memoRepository) Create(ctx context.Context, m model.Memo) (model.Memo, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Memo{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO memos (memo_text) VALUES ($1)
		 RETURNING `+memoColumns,
		m.Text,
	)
	var out model.Memo
	if err := row.Scan(&out.ID, &out.Text, &out.CreatedAt); err != nil {
		return model.Memo{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *memoRepository) GetByID(ctx context.Context, id int64) (model.Memo, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Memo{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+memoColumns+` FROM memos WHERE id = $1`, id)
	var out model.Memo
	if err := row.Scan(&out.ID, &out.Text, &out.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Memo{}, repository.ErrNotFound
		}
		return model.Memo{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *memoRepository) FindRange(ctx context.Context, from, to int64, p repository.PageRequest) (repository.Page[model.Memo], error) {
	if err := repository.CheckRange(from, to); err != nil {
		return repository.Page[model.Memo]{}, err
	}
	return r.findWhere(ctx, `id BETWEEN $1 AND $2`, p, from, to)
}

func (r *memoRepository) FindAll(ctx context.Context, p repository.PageRequest) (repository.Page[model.Memo], error) {
	return r.findWhere(ctx, `TRUE`, p)
}

func (r *memoRepository) FindAfter(ctx context.Context, after int64, p repository.PageRequest) (repository.Page[model.Memo], error) {
	return r.findWhere(ctx, `id > $1`, p, after)
}

// findWhere runs a paged select over memos. where may reference $1..$n bound
// to args; LIMIT and OFFSET take the next two placeholders.
func (r *memoRepository) findWhere(ctx context.Context, where string, p repository.PageRequest, args ...any) (repository.Page[model.Memo], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.Page[model.Memo]{}, err
	}
	orderBy, err := p.Sort().SQL()
	if err != nil {
		return repository.Page[model.Memo]{}, err
	}
	exec := getQ(ctx, r.pool)
	query := fmt.Sprintf(`SELECT %s FROM memos WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		memoColumns, where, orderBy, len(args)+1, len(args)+2)
	rows, err := exec.Query(ctx, query, append(args, p.Size(), p.Offset())...)
	if err != nil {
		return repository.Page[model.Memo]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	items := make([]model.Memo, 0, p.Size())
	for rows.Next() {
		var it model.Memo
		if err := rows.Scan(&it.ID, &it.Text, &it.CreatedAt); err != nil {
			return repository.Page[model.Memo]{}, repository.MapPgError(err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return repository.Page[model.Memo]{}, repository.MapPgError(err)
	}
	rows.Close()

	return repository.BuildPage(items, p, func() (int64, error) {
		return r.count(ctx, where, args...)
	})
}

func (r *memoRepository) count(ctx context.Context, where string, args ...any) (int64, error) {
	var total int64
	exec := getQ(ctx, r.pool)
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM memos WHERE `+where, args...).Scan(&total); err != nil {
		return 0, repository.MapPgError(err)
	}
	return total, nil
}

func (r *memoRepository) UpdateText(ctx context.Context, id int64, text string) (int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx, `UPDATE memos SET memo_text = $1 WHERE id = $2`, text, id)
	if err != nil {
		return 0, repository.MapPgError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *memoRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM memos WHERE id = $1`, id)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteLessThan loads the matching ids first and then deletes row by row, so
// anything hooked on single-row deletes (triggers, cascades) fires per memo.
func (r *memoRepository) DeleteLessThan(ctx context.Context, threshold int64) (int, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT id FROM memos WHERE id < $1 ORDER BY id`, threshold)
	if err != nil {
		return 0, repository.MapPgError(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return 0, repository.MapPgError(err)
	}

	deleted := 0
	for _, id := range ids {
		tag, err := exec.Exec(ctx, `DELETE FROM memos WHERE id = $1`, id)
		if err != nil {
			return deleted, repository.MapPgError(err)
		}
		deleted += int(tag.RowsAffected())
	}
	return deleted, nil
}

func (r *memoRepository) RawScan(ctx context.Context) ([]repository.Row, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx, rawScanSQL+` WHERE id > 0 ORDER BY id`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return collectRaw(rows, 0)
}

func (r *memoRepository) ScanAfter(ctx context.Context, after int64, p repository.PageRequest) (repository.Page[repository.Row], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.Page[repository.Row]{}, err
	}
	orderBy, err := p.Sort().SQL()
	if err != nil {
		return repository.Page[repository.Row]{}, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		rawScanSQL+` WHERE id > $1 ORDER BY `+orderBy+` LIMIT $2 OFFSET $3`,
		after, p.Size(), p.Offset(),
	)
	if err != nil {
		return repository.Page[repository.Row]{}, repository.MapPgError(err)
	}
	items, err := collectRaw(rows, p.Size())
	if err != nil {
		return repository.Page[repository.Row]{}, err
	}
	return repository.BuildPage(items, p, func() (int64, error) {
		return r.count(ctx, `id > $1`, after)
	})
}

func collectRaw(rows pgx.Rows, capacity int) ([]repository.Row, error) {
	defer rows.Close()
	out := make([]repository.Row, 0, capacity)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		out = append(out, repository.Row(values))
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapPgError(err)
	}
	return out, nil
}

var _ repository.MemoRepository = (*memoRepository)(nil)
