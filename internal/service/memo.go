package service

import (
	"context"
	"time"

	"github.com/maxviazov/memo-service/internal/model"
	"github.com/maxviazov/memo-service/internal/repository"
	"github.com/rs/zerolog"
)

// memoService holds memo use-case logic: validation + orchestration, no transport / SQL details.
type memoService struct {
	repo repository.MemoRepository
	tx   repository.TxManager
	log  zerolog.Logger
}

func NewMemoService(repo repository.MemoRepository, tx repository.TxManager, logger zerolog.Logger) MemoService {
	l := logger.With().Str("module", "service").Str("component", "memo").Logger()
	return &memoService{repo: repo, tx: tx, log: l}
}

func (s *memoService) CreateMemo(ctx context.Context, text string) (model.Memo, error) {
	start := time.Now()
	normalized, ferrs := normalizeText(text)
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Int("text_len", len(text)).Interface("field_errors", ferrs).Msg("memo validation failed")
		return model.Memo{}, err
	}

	out, err := s.repo.Create(ctx, model.NewMemo(normalized))
	if err != nil {
		// Repository surfaces domain-level errors already, do not wrap.
		s.log.Error().Err(err).Msg("create memo failed")
		return model.Memo{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("memo_id", out.ID).Msg("memo created")
	return out, nil
}

func (s *memoService) GetMemo(ctx context.Context, id int64) (model.Memo, error) {
	if err := newInvalidInput(checkID("id", id)); err != nil {
		return model.Memo{}, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *memoService) ListMemos(ctx context.Context, p repository.PageRequest) (repository.Page[model.Memo], error) {
	res, err := s.repo.FindAll(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("page", p.Number()).Int("size", p.Size()).Msg("list memos failed")
		return repository.Page[model.Memo]{}, err
	}
	return res, nil
}

func (s *memoService) FindRange(ctx context.Context, from, to int64, p repository.PageRequest) (repository.Page[model.Memo], error) {
	res, err := s.repo.FindRange(ctx, from, to, p)
	if err != nil {
		s.log.Debug().Err(err).Int64("from", from).Int64("to", to).Msg("find range failed")
		return repository.Page[model.Memo]{}, err
	}
	return res, nil
}

func (s *memoService) FindAfter(ctx context.Context, after int64, p repository.PageRequest) (repository.Page[model.Memo], error) {
	return s.repo.FindAfter(ctx, after, p)
}

func (s *memoService) UpdateText(ctx context.Context, id int64, text string) (int64, error) {
	ferrs := checkID("id", id)
	normalized, textErrs := normalizeText(text)
	ferrs = append(ferrs, textErrs...)
	if err := newInvalidInput(ferrs); err != nil {
		return 0, err
	}

	n, err := s.repo.UpdateText(ctx, id, normalized)
	if err != nil {
		s.log.Error().Err(err).Int64("memo_id", id).Msg("update memo failed")
		return 0, err
	}
	if n == 0 {
		s.log.Debug().Int64("memo_id", id).Msg("update matched no memo")
	}
	return n, nil
}

func (s *memoService) ReviseMemo(ctx context.Context, m model.Memo) (int64, error) {
	if !m.IsPersisted() {
		return 0, newInvalidInput([]FieldError{{Field: "id", Message: "memo has not been stored yet"}})
	}
	return s.UpdateText(ctx, m.ID, m.Text)
}

func (s *memoService) DeleteMemo(ctx context.Context, id int64) error {
	if err := newInvalidInput(checkID("id", id)); err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("memo_id", id).Msg("memo deleted")
	return nil
}

// DeleteLessThan is not atomic on its own. Callers that need all-or-nothing
// semantics wrap it in TxManager.WithinTx.
func (s *memoService) DeleteLessThan(ctx context.Context, threshold int64) (int, error) {
	start := time.Now()
	n, err := s.repo.DeleteLessThan(ctx, threshold)
	if err != nil {
		s.log.Error().Err(err).Int64("threshold", threshold).Int("deleted", n).Msg("bulk delete stopped")
		return n, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("threshold", threshold).Int("deleted", n).Msg("bulk delete done")
	return n, nil
}

func (s *memoService) RawScan(ctx context.Context) ([]repository.Row, error) {
	return s.repo.RawScan(ctx)
}

func (s *memoService) ScanAfter(ctx context.Context, after int64, p repository.PageRequest) (repository.Page[repository.Row], error) {
	return s.repo.ScanAfter(ctx, after, p)
}

func (s *memoService) SeedDummies(ctx context.Context, n int) ([]model.Memo, error) {
	if err := newInvalidInput(checkSeedCount(n)); err != nil {
		return nil, err
	}

	start := time.Now()
	out := make([]model.Memo, 0, n)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for i := 1; i <= n; i++ {
			m, err := s.repo.Create(ctx, model.NewMemo(dummyText(i)))
			if err != nil {
				return err
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Int("count", n).Msg("seed failed, rolled back")
		return nil, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int("count", n).Msg("dummy memos seeded")
	return out, nil
}

var _ MemoService = (*memoService)(nil)
