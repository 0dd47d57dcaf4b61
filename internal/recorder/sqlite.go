package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"TickerSentinel/internal/model"
)

// SQLiteRecorder persists all state to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs
// migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers don't block the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_bars (
			ticker   TEXT NOT NULL,
			interval TEXT NOT NULL,
			ts       INTEGER NOT NULL,
			open     REAL,
			high     REAL,
			low      REAL,
			close    REAL,
			volume   REAL,
			PRIMARY KEY (ticker, interval, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bars_ts ON price_bars(interval, ts)`,

		`CREATE TABLE IF NOT EXISTS daily_log (
			id             INTEGER PRIMARY KEY CHECK (id = 1),
			last_update_ts INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS executions (
			id         TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			created_ts INTEGER NOT NULL,
			notified   INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exec_ts ON executions(created_ts)`,

		`CREATE TABLE IF NOT EXISTS execution_signals (
			execution_id  TEXT NOT NULL,
			window_label  TEXT NOT NULL,
			ticker        TEXT NOT NULL,
			current_price REAL,
			compare_value REAL,
			amount        INTEGER,
			FOREIGN KEY (execution_id) REFERENCES executions(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_exec ON execution_signals(execution_id)`,

		`CREATE TABLE IF NOT EXISTS notify_emails (
			email TEXT PRIMARY KEY
		)`,

		`CREATE TABLE IF NOT EXISTS email_log (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			created_ts   INTEGER NOT NULL,
			subject      TEXT,
			recipients   TEXT,
			row_count    INTEGER,
			execution_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_email_ts ON email_log(created_ts)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) UpsertBars(ticker, interval string, bars []model.Bar) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO price_bars
		(ticker, interval, ts, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(ticker, interval, ts) DO UPDATE SET
		open=excluded.open, high=excluded.high, low=excluded.low,
		close=excluded.close, volume=excluded.volume`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, b := range bars {
		if _, err := stmt.Exec(ticker, interval, b.Time.UTC().Unix(), b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("upsert bar: %w", err)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}
	return count, nil
}

func (r *SQLiteRecorder) LoadBars(ticker, interval string, since time.Time) ([]model.Bar, error) {
	rows, err := r.db.Query(`SELECT ts, open, high, low, close, volume
		FROM price_bars WHERE ticker = ? AND interval = ? AND ts >= ?
		ORDER BY ts ASC`, ticker, interval, since.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var ts int64
		var b model.Bar
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Time = time.Unix(ts, 0).UTC()
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

func (r *SQLiteRecorder) LastUpdate() (time.Time, bool, error) {
	var ts int64
	err := r.db.QueryRow(`SELECT last_update_ts FROM daily_log WHERE id = 1`).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("load last update: %w", err)
	}
	return time.Unix(ts, 0).UTC(), true, nil
}

func (r *SQLiteRecorder) SetLastUpdate(t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.Exec(`INSERT INTO daily_log (id, last_update_ts) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET last_update_ts=excluded.last_update_ts`, t.UTC().Unix())
	if err != nil {
		return fmt.Errorf("set last update: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) SaveExecution(exec *model.Execution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save execution: %w", err)
	}
	notified := 0
	if exec.Notified {
		notified = 1
	}
	if _, err := tx.Exec(`INSERT INTO executions (id, kind, created_ts, notified) VALUES (?,?,?,?)`,
		exec.ID, string(exec.Kind), exec.CreatedAt.UTC().Unix(), notified); err != nil {
		tx.Rollback()
		return fmt.Errorf("insert execution: %w", err)
	}
	for label, sigs := range exec.Signals {
		for _, s := range sigs {
			if _, err := tx.Exec(`INSERT INTO execution_signals
				(execution_id, window_label, ticker, current_price, compare_value, amount)
				VALUES (?,?,?,?,?,?)`,
				exec.ID, label, s.Ticker, s.CurrentPrice, s.CompareValue, s.Amount); err != nil {
				tx.Rollback()
				return fmt.Errorf("insert execution signal: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit execution: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) TodayNotifiedPairs(start, end time.Time) (map[model.ReportedPair]struct{}, error) {
	rows, err := r.db.Query(`SELECT s.ticker, s.window_label
		FROM execution_signals s
		JOIN executions e ON e.id = s.execution_id
		WHERE e.notified = 1 AND e.created_ts >= ? AND e.created_ts < ?`,
		start.UTC().Unix(), end.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("query notified pairs: %w", err)
	}
	defer rows.Close()

	pairs := map[model.ReportedPair]struct{}{}
	for rows.Next() {
		var p model.ReportedPair
		if err := rows.Scan(&p.Ticker, &p.WindowLabel); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		pairs[p] = struct{}{}
	}
	return pairs, rows.Err()
}

func (r *SQLiteRecorder) Recipients() ([]string, error) {
	rows, err := r.db.Query(`SELECT email FROM notify_emails ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("query recipients: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

func (r *SQLiteRecorder) AddRecipients(emails []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range emails {
		if _, err := r.db.Exec(`INSERT OR IGNORE INTO notify_emails (email) VALUES (?)`, e); err != nil {
			return fmt.Errorf("add recipient: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) LogEmail(executionID, subject string, recipients []string, rowCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.Exec(`INSERT INTO email_log
		(created_ts, subject, recipients, row_count, execution_id)
		VALUES (?,?,?,?,?)`,
		time.Now().UTC().Unix(), subject, strings.Join(recipients, ", "), rowCount, executionID)
	if err != nil {
		return fmt.Errorf("log email: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
