package sqlite

import (
	"context"
	"errors"

	"github.com/maxviazov/memo-service/internal/repository"
	"gorm.io/gorm"
)

type txKey struct{}

func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// conn returns the transaction carried by ctx, or a fresh session on db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func ensureDB(db *gorm.DB) error {
	if db == nil {
		return errors.New("gorm db is nil")
	}
	return nil
}

type txManager struct{ db *gorm.DB }

func NewTxManager(db *gorm.DB) repository.TxManager { return &txManager{db: db} }

func (m *txManager) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if err := ensureDB(m.db); err != nil {
		return err
	}
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
	return mapSQLiteError(err)
}

type pinger struct{ db *gorm.DB }

// NewPinger adapts the gorm connection pool to repository.Pinger.
func NewPinger(db *gorm.DB) repository.Pinger { return &pinger{db: db} }

func (p *pinger) Ping(ctx context.Context) error {
	if err := ensureDB(p.db); err != nil {
		return err
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return mapSQLiteError(sqlDB.PingContext(ctx))
}

var (
	_ repository.TxManager = (*txManager)(nil)
	_ repository.Pinger    = (*pinger)(nil)
)
