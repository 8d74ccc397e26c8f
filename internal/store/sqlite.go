package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"WaveSentinel/internal/model"
)

// SQLiteKlineStore persists the bar cache to a SQLite database.
type SQLiteKlineStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
	now func() time.Time
}

// NewSQLiteKlineStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteKlineStore(dbPath string, logger zerolog.Logger) (*SQLiteKlineStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets API readers proceed while a scan writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteKlineStore{db: db, log: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.log.Info().Str("path", dbPath).Msg("sqlite kline store opened")
	return s, nil
}

func (s *SQLiteKlineStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS series (
			series_key TEXT PRIMARY KEY,
			symbol     TEXT NOT NULL,
			interval   TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS klines (
			series_key TEXT NOT NULL,
			seq        INTEGER NOT NULL,
			open_time  INTEGER NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL,
			volume     REAL,
			PRIMARY KEY (series_key, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_klines_time ON klines(series_key, open_time)`,
	}

	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", st[:40], err)
		}
	}
	return nil
}

// Put replaces the cached series for symbol and interval in one transaction.
func (s *SQLiteKlineStore) Put(ctx context.Context, symbol, interval string, bars []model.PriceBar) error {
	if symbol == "" || interval == "" {
		return errors.New("symbol and interval are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(symbol, interval)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM klines WHERE series_key = ?`, k); err != nil {
		return fmt.Errorf("clear klines: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO klines
		(series_key, seq, open_time, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, b := range bars {
		if _, err := stmt.ExecContext(ctx, k, i, b.Time.UnixMilli(), b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return fmt.Errorf("insert kline %d: %w", i, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO series (series_key, symbol, interval, fetched_at)
		VALUES (?,?,?,?)
		ON CONFLICT(series_key) DO UPDATE SET fetched_at = excluded.fetched_at`,
		k, symbol, interval, s.now().UnixMilli()); err != nil {
		return fmt.Errorf("upsert series: %w", err)
	}
	return tx.Commit()
}

// Get loads the cached series in bar order.
func (s *SQLiteKlineStore) Get(ctx context.Context, symbol, interval string) (Series, error) {
	k := key(symbol, interval)

	var fetchedAt int64
	err := s.db.QueryRowContext(ctx, `SELECT fetched_at FROM series WHERE series_key = ?`, k).Scan(&fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Series{}, ErrNotFound
	}
	if err != nil {
		return Series{}, fmt.Errorf("query series: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT open_time, open, high, low, close, volume
		FROM klines WHERE series_key = ? ORDER BY seq`, k)
	if err != nil {
		return Series{}, fmt.Errorf("query klines: %w", err)
	}
	defer rows.Close()

	var bars []model.PriceBar
	for rows.Next() {
		var (
			openTime int64
			b        model.PriceBar
		)
		if err := rows.Scan(&openTime, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return Series{}, fmt.Errorf("scan kline: %w", err)
		}
		b.Time = time.UnixMilli(openTime).UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return Series{}, fmt.Errorf("iterate klines: %w", err)
	}
	return Series{Bars: bars, FetchedAt: time.UnixMilli(fetchedAt)}, nil
}

func (s *SQLiteKlineStore) Close() error {
	s.log.Info().Msg("closing sqlite kline store")
	return s.db.Close()
}
