package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"SVMonit/internal/model"
)

// SQLiteRecorder persists ingested price histories to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *logrus.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *logrus.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_history (
			source      TEXT    NOT NULL,
			day         TEXT    NOT NULL,
			price       REAL    NOT NULL,
			recorded_at INTEGER NOT NULL,
			PRIMARY KEY (source, day)
		)`,

		`CREATE TABLE IF NOT EXISTS ingestions (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			source    TEXT    NOT NULL,
			points    INTEGER NOT NULL,
			first_day TEXT,
			last_day  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ingestions_ts ON ingestions(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordPrices replaces the stored history of source with points.
func (r *SQLiteRecorder) RecordPrices(source string, points []model.PricePoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM price_history WHERE source = ?`, source); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO price_history (source, day, price, recorded_at) VALUES (?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, p := range points {
		if _, err := stmt.Exec(source, p.Date.Format(time.DateOnly), p.Price, now); err != nil {
			return fmt.Errorf("insert %s: %w", p.Date.Format(time.DateOnly), err)
		}
	}

	var first, last string
	if len(points) > 0 {
		first = points[0].Date.Format(time.DateOnly)
		last = points[len(points)-1].Date.Format(time.DateOnly)
	}
	if _, err := tx.Exec(`INSERT INTO ingestions (timestamp, source, points, first_day, last_day) VALUES (?,?,?,?,?)`,
		now, source, len(points), first, last); err != nil {
		return fmt.Errorf("record ingestion: %w", err)
	}
	return tx.Commit()
}

// LoadPrices returns the stored history of source in date order.
func (r *SQLiteRecorder) LoadPrices(source string) ([]model.PricePoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT day, price FROM price_history WHERE source = ? ORDER BY day`, source)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		var day string
		var price float64
		if err := rows.Scan(&day, &price); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		d, err := time.Parse(time.DateOnly, day)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		points = append(points, model.PricePoint{Date: d, Price: price})
	}
	return points, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
