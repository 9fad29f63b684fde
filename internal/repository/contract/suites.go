package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/maxviazov/memo-service/internal/model"
	"github.com/maxviazov/memo-service/internal/repository"
)

// MemoFactory returns a repository over an empty memo table and its cleanup.
type MemoFactory func(t *testing.T) (repository.MemoRepository, func())

type TxFactory func(t *testing.T) (tx repository.TxManager, memos repository.MemoRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

// seed inserts n memos "Sample...1".."Sample...n" and returns them in insert order.
func seed(t *testing.T, repo repository.MemoRepository, n int) []model.Memo {
	t.Helper()
	ctx := context.Background()
	out := make([]model.Memo, 0, n)
	for i := 1; i <= n; i++ {
		m, err := repo.Create(ctx, model.NewMemo(fmt.Sprintf("Sample...%d", i)))
		if err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
		out = append(out, m)
	}
	return out
}

func page(t *testing.T, number, size int, orders ...repository.Order) repository.PageRequest {
	t.Helper()
	p, err := repository.NewPageRequest(number, size, repository.By(orders...))
	if err != nil {
		t.Fatalf("page request: %v", err)
	}
	return p
}

func ids(items []model.Memo) []int64 {
	out := make([]int64, 0, len(items))
	for _, m := range items {
		out = append(out, m.ID)
	}
	return out
}

func descending(from, to int64) []int64 {
	out := make([]int64, 0, from-to+1)
	for id := from; id >= to; id-- {
		out = append(out, id)
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	}
	return 0, false
}

func RunMemoRepositoryContract(t *testing.T, makeRepo MemoFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, model.NewMemo("hello"))
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if !created.IsPersisted() || created.CreatedAt.IsZero() {
			t.Fatalf("store did not assign identity: %+v", created)
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.ID != created.ID || got.Text != "hello" {
			t.Fatalf("mismatch: %+v", got)
		}
	})

	t.Run("ids_increase", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		memos := seed(t, repo, 5)
		for i := 1; i < len(memos); i++ {
			if memos[i].ID <= memos[i-1].ID {
				t.Fatalf("ids not increasing: %v", ids(memos))
			}
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), 999999)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("text_too_long_constraint", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.Create(context.Background(), model.NewMemo(strings.Repeat("x", model.MaxMemoTextLength+1)))
		if !errors.Is(err, repository.ErrConstraint) {
			t.Fatalf("expected ErrConstraint, got %v", err)
		}
	})

	t.Run("find_range_desc", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		memos := seed(t, repo, 100)
		base := memos[0].ID - 1

		res, err := repo.FindRange(ctx, base+70, base+80, page(t, 0, 20, repository.Desc("id")))
		if err != nil {
			t.Fatalf("find range: %v", err)
		}
		if want := descending(base+80, base+70); !equalIDs(ids(res.Items), want) {
			t.Fatalf("unexpected ids: got %v want %v", ids(res.Items), want)
		}
		if res.Total != 11 || res.HasNext() || !res.IsFirst() {
			t.Fatalf("unexpected metadata: total=%d hasNext=%v isFirst=%v", res.Total, res.HasNext(), res.IsFirst())
		}

		first, err := repo.FindRange(ctx, base+70, base+80, page(t, 0, 10, repository.Desc("id")))
		if err != nil {
			t.Fatalf("find range page 0: %v", err)
		}
		if want := descending(base+80, base+71); !equalIDs(ids(first.Items), want) {
			t.Fatalf("unexpected page 0: got %v want %v", ids(first.Items), want)
		}
		if first.Total != 11 || !first.HasNext() || first.TotalPages() != 2 {
			t.Fatalf("unexpected page 0 metadata: total=%d hasNext=%v pages=%d", first.Total, first.HasNext(), first.TotalPages())
		}

		second, err := repo.FindRange(ctx, base+70, base+80, page(t, 1, 10, repository.Desc("id")))
		if err != nil {
			t.Fatalf("find range page 1: %v", err)
		}
		if len(second.Items) != 1 || second.Items[0].ID != base+70 || second.Total != 11 || !second.IsLast() {
			t.Fatalf("unexpected page 1: ids=%v total=%d", ids(second.Items), second.Total)
		}
	})

	t.Run("find_range_within_bounds", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		memos := seed(t, repo, 30)
		base := memos[0].ID - 1
		cases := []struct{ from, to int64 }{{1, 1}, {5, 12}, {25, 40}, {31, 50}, {-10, 3}}
		for _, tc := range cases {
			for _, size := range []int{1, 4, 50} {
				from, to := base+tc.from, base+tc.to
				res, err := repo.FindRange(ctx, from, to, page(t, 0, size))
				if err != nil {
					t.Fatalf("find range [%d,%d]: %v", from, to, err)
				}
				if len(res.Items) > size {
					t.Fatalf("page larger than size: %d > %d", len(res.Items), size)
				}
				for _, m := range res.Items {
					if m.ID < from || m.ID > to {
						t.Fatalf("id %d outside [%d,%d]", m.ID, from, to)
					}
				}
			}
		}
	})

	t.Run("find_range_invalid", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.FindRange(context.Background(), 10, 9, page(t, 0, 10))
		if !errors.Is(err, repository.ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("composite_sort", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var created []model.Memo
		for _, text := range []string{"b", "a", "b", "a"} {
			m, err := repo.Create(ctx, model.NewMemo(text))
			if err != nil {
				t.Fatalf("seed: %v", err)
			}
			created = append(created, m)
		}
		res, err := repo.FindAll(ctx, page(t, 0, 10, repository.Asc("text"), repository.Desc("id")))
		if err != nil {
			t.Fatalf("find all: %v", err)
		}
		want := []int64{created[3].ID, created[1].ID, created[2].ID, created[0].ID}
		if !equalIDs(ids(res.Items), want) {
			t.Fatalf("unexpected order: got %v want %v", ids(res.Items), want)
		}
	})

	t.Run("find_all_paged_totals", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seed(t, repo, 25)
		res, err := repo.FindAll(ctx, page(t, 0, 10))
		if err != nil {
			t.Fatalf("find all: %v", err)
		}
		if len(res.Items) != 10 || res.Total != 25 || res.TotalPages() != 3 || !res.HasNext() {
			t.Fatalf("unexpected page: len=%d total=%d pages=%d", len(res.Items), res.Total, res.TotalPages())
		}
		last, err := repo.FindAll(ctx, page(t, 2, 10))
		if err != nil {
			t.Fatalf("find all last: %v", err)
		}
		if len(last.Items) != 5 || last.Total != 25 || last.HasNext() {
			t.Fatalf("unexpected last page: len=%d total=%d", len(last.Items), last.Total)
		}
		beyond, err := repo.FindAll(ctx, page(t, 5, 10))
		if err != nil {
			t.Fatalf("find all beyond: %v", err)
		}
		if len(beyond.Items) != 0 || beyond.Total != 25 {
			t.Fatalf("unexpected page beyond the end: len=%d total=%d", len(beyond.Items), beyond.Total)
		}
	})

	t.Run("find_after", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		memos := seed(t, repo, 100)
		base := memos[0].ID - 1
		res, err := repo.FindAfter(context.Background(), base+90, page(t, 0, 10, repository.Desc("id")))
		if err != nil {
			t.Fatalf("find after: %v", err)
		}
		if want := descending(base+100, base+91); !equalIDs(ids(res.Items), want) || res.Total != 10 {
			t.Fatalf("unexpected page: ids=%v total=%d", ids(res.Items), res.Total)
		}
	})

	t.Run("update_text", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		memos := seed(t, repo, 3)
		target := memos[1]
		for i := 0; i < 2; i++ {
			n, err := repo.UpdateText(ctx, target.ID, "Update Text")
			if err != nil {
				t.Fatalf("update %d: %v", i, err)
			}
			if n != 1 {
				t.Fatalf("update %d: expected 1 row affected, got %d", i, n)
			}
		}
		got, err := repo.GetByID(ctx, target.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Text != "Update Text" || !got.CreatedAt.Equal(target.CreatedAt) {
			t.Fatalf("unexpected memo after update: %+v", got)
		}
		other, err := repo.GetByID(ctx, memos[0].ID)
		if err != nil || other.Text != memos[0].Text {
			t.Fatalf("neighbour changed: %+v err=%v", other, err)
		}
	})

	t.Run("update_text_missing", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		memos := seed(t, repo, 2)
		n, err := repo.UpdateText(ctx, memos[1].ID+1000, "nope")
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if n != 0 {
			t.Fatalf("expected 0 rows affected, got %d", n)
		}
		all, err := repo.FindAll(ctx, page(t, 0, 10))
		if err != nil {
			t.Fatalf("find all: %v", err)
		}
		for i, m := range all.Items {
			if m.Text != memos[i].Text {
				t.Fatalf("store changed: %+v", all.Items)
			}
		}
	})

	t.Run("delete_less_than", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		memos := seed(t, repo, 100)
		base := memos[0].ID - 1
		deleted, err := repo.DeleteLessThan(ctx, base+10)
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		if deleted != 9 {
			t.Fatalf("expected 9 deleted, got %d", deleted)
		}
		all, err := repo.FindAll(ctx, page(t, 0, 100))
		if err != nil {
			t.Fatalf("find all: %v", err)
		}
		if all.Total != 91 || len(all.Items) != 91 {
			t.Fatalf("unexpected remainder: total=%d len=%d", all.Total, len(all.Items))
		}
		if all.Items[0].ID != base+10 || all.Items[90].ID != base+100 {
			t.Fatalf("unexpected remainder bounds: first=%d last=%d", all.Items[0].ID, all.Items[90].ID)
		}
		left, err := repo.FindRange(ctx, base-100, base+100, page(t, 0, 200))
		if err != nil {
			t.Fatalf("find range: %v", err)
		}
		for _, m := range left.Items {
			if m.ID < base+10 {
				t.Fatalf("memo %d survived delete", m.ID)
			}
		}
	})

	t.Run("delete_by_id", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		memos := seed(t, repo, 2)
		if err := repo.DeleteByID(ctx, memos[0].ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := repo.GetByID(ctx, memos[0].ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.DeleteByID(ctx, memos[0].ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("raw_scan", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		memos := seed(t, repo, 3)
		rows, err := repo.RawScan(context.Background())
		if err != nil {
			t.Fatalf("raw scan: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(rows))
		}
		for i, row := range rows {
			if len(row) != 4 {
				t.Fatalf("expected 4 columns, got %d", len(row))
			}
			if id, ok := asInt64(row[0]); !ok || id != memos[i].ID {
				t.Fatalf("row %d: unexpected id %#v", i, row[0])
			}
		}
	})

	t.Run("scan_after_paged", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		memos := seed(t, repo, 100)
		base := memos[0].ID - 1
		res, err := repo.ScanAfter(context.Background(), base+95, page(t, 0, 10, repository.Desc("id")))
		if err != nil {
			t.Fatalf("scan after: %v", err)
		}
		if len(res.Items) != 5 || res.Total != 5 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		if id, ok := asInt64(res.Items[0][0]); !ok || id != base+100 {
			t.Fatalf("unexpected first id %#v", res.Items[0][0])
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, memos, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := memos.Create(ctx, model.NewMemo("TxCommit"))
			if err != nil {
				return err
			}
			createdID = out.ID
			return nil
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := memos.GetByID(ctx, createdID); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, memos, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		errMarker := assertErr("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := memos.Create(ctx, model.NewMemo("TxRollback"))
			if err != nil {
				return err
			}
			createdID = out.ID
			return errMarker
		})
		if err == nil || err.Error() != errMarker.Error() {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := memos.GetByID(ctx, createdID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})

	t.Run("bulk_delete_rolls_back_with_ambient_tx", func(t *testing.T) {
		tx, memos, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seeded := seed(t, memos, 20)
		base := seeded[0].ID - 1
		errMarker := assertErr("abort")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			n, err := memos.DeleteLessThan(ctx, base+10)
			if err != nil {
				return err
			}
			if n != 9 {
				return fmt.Errorf("expected 9 deleted inside tx, got %d", n)
			}
			return errMarker
		})
		if err == nil || err.Error() != errMarker.Error() {
			t.Fatalf("expected marker error, got %v", err)
		}
		all, err := memos.FindAll(ctx, page(t, 0, 50))
		if err != nil {
			t.Fatalf("find all: %v", err)
		}
		if all.Total != 20 {
			t.Fatalf("expected rollback to restore 20 memos, got %d", all.Total)
		}
	})

	t.Run("nested_joins_outer", func(t *testing.T) {
		tx, memos, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := tx.WithinTx(ctx, func(ctx context.Context) error {
				out, err := memos.Create(ctx, model.NewMemo("inner"))
				createdID = out.ID
				return err
			}); err != nil {
				return err
			}
			return assertErr("outer failed")
		})
		if err == nil {
			t.Fatalf("expected outer error")
		}
		if _, err := memos.GetByID(ctx, createdID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected inner write rolled back with outer tx, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}

// assertErr builds a marker error no repository would return on its own.
func assertErr(msg string) error { return &sentinel{msg} }

type sentinel struct{ s string }

func (e *sentinel) Error() string { return e.s }
