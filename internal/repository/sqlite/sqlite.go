// Package sqlite is the embedded-store adapter for the repository contracts:
// gorm over the pure-Go glebarez SQLite driver. It needs no external service,
// which makes it the default for local runs and the always-on contract tests.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS memos (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	memo_text  TEXT     NOT NULL CHECK (length(memo_text) <= 200),
	created_at DATETIME NOT NULL
)`

// Open connects to the SQLite database at path and makes sure the memo
// schema exists.
func Open(path string, logger zerolog.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: newGormLogger(logger),
	})
	if err != nil {
		return nil, mapSQLiteError(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// one writer at a time; transactions hold the only connection
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec(`PRAGMA foreign_keys = ON`).Error; err != nil {
		return nil, mapSQLiteError(err)
	}
	if err := db.Exec(schemaSQL).Error; err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", mapSQLiteError(err))
	}

	logger.Info().Str("path", path).Msg("sqlite database initialized")
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// gormLogger adapts zerolog to gorm's logger interface, mirroring what the
// pgx bridge does for Postgres.
type gormLogger struct {
	logger        zerolog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(logger zerolog.Logger) *gormLogger {
	level := gormlogger.Warn
	switch {
	case logger.GetLevel() <= zerolog.DebugLevel:
		level = gormlogger.Info
	case logger.GetLevel() >= zerolog.ErrorLevel:
		level = gormlogger.Error
	}
	return &gormLogger{
		logger:        logger.With().Str("component", "gorm").Logger(),
		level:         level,
		slowThreshold: 200 * time.Millisecond,
	}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.logger.Info().Msgf(msg, args...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.logger.Warn().Msgf(msg, args...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.logger.Error().Msgf(msg, args...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	took := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.logger.Error().Err(err).Str("sql", sql).Int64("rows", rows).Dur("took", took).Msg("query failed")
	case took > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.logger.Warn().Str("sql", sql).Int64("rows", rows).Dur("took", took).Msg("slow query")
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.logger.Trace().Str("sql", sql).Int64("rows", rows).Dur("took", took).Msg("query")
	}
}

var _ gormlogger.Interface = (*gormLogger)(nil)
