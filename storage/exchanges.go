package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"paradox/model"
)

// ExchangeLog records one row per finished exchange in a sqlite database.
// It satisfies chat.Recorder.
type ExchangeLog struct {
	db *sql.DB
}

// ProviderStats aggregates the exchange log for one provider.
type ProviderStats struct {
	Provider    string
	Exchanges   int
	Failed      int
	Tokens      int
	AvgDuration time.Duration
}

// NewExchangeLog opens or creates the log at dbPath.
func NewExchangeLog(dbPath string) (*ExchangeLog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log := &ExchangeLog{db: db}

	if err := log.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return log, nil
}

// exchangeSchema is the current layout. Columns added here must also be
// listed in migrateSchema for logs created before them.
const exchangeSchema = `
	CREATE TABLE IF NOT EXISTS exchanges (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL DEFAULT '',
		route TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		status TEXT NOT NULL,
		tokens INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		thinking INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_started ON exchanges(started_at);
	`

func (l *ExchangeLog) initialize() error {
	if _, err := l.db.Exec(exchangeSchema); err != nil {
		return err
	}

	if err := l.migrateSchema(); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	return nil
}

// migrateSchema adds columns missing from logs created by older versions.
func (l *ExchangeLog) migrateSchema() error {
	added := []struct {
		name string
		ddl  string
	}{
		{"thinking", `ALTER TABLE exchanges ADD COLUMN thinking INTEGER NOT NULL DEFAULT 0`},
	}

	for _, col := range added {
		exists, err := l.columnExists("exchanges", col.name)
		if err != nil {
			return fmt.Errorf("failed to check for %s column: %w", col.name, err)
		}
		if exists {
			continue
		}
		if _, err := l.db.Exec(col.ddl); err != nil {
			return fmt.Errorf("failed to add %s column: %w", col.name, err)
		}
	}

	return nil
}

// columnExists checks if a column exists in a table using PRAGMA table_info
func (l *ExchangeLog) columnExists(tableName, columnName string) (bool, error) {
	rows, err := l.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid          int
			name         string
			dataType     string
			notNull      int
			defaultValue any
			pk           int
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			return true, nil
		}
	}

	return false, rows.Err()
}

// Record inserts ex. Recording the same exchange twice keeps the latest.
func (l *ExchangeLog) Record(ctx context.Context, ex model.Exchange) error {
	query := `
	INSERT OR REPLACE INTO exchanges (id, session_id, route, provider, model, status, tokens, thinking, started_at, duration_ms, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := l.db.ExecContext(ctx, query,
		string(ex.ID),
		ex.SessionID,
		ex.Route,
		ex.Provider,
		ex.Model,
		string(ex.Status),
		ex.Tokens,
		ex.Thinking,
		ex.StartedAt.UTC(),
		ex.Duration.Milliseconds(),
		ex.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record exchange: %w", err)
	}
	return nil
}

// Recent returns up to limit exchanges, newest first.
func (l *ExchangeLog) Recent(ctx context.Context, limit int) ([]model.Exchange, error) {
	query := `
	SELECT id, session_id, route, provider, model, status, tokens, thinking, started_at, duration_ms, error
	FROM exchanges
	ORDER BY started_at DESC
	LIMIT ?
	`

	rows, err := l.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Exchange
	for rows.Next() {
		var (
			ex       model.Exchange
			id       string
			status   string
			duration int64
		)
		err := rows.Scan(
			&id,
			&ex.SessionID,
			&ex.Route,
			&ex.Provider,
			&ex.Model,
			&status,
			&ex.Tokens,
			&ex.Thinking,
			&ex.StartedAt,
			&duration,
			&ex.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		ex.ID = model.MessageID(id)
		ex.Status = model.ExchangeStatus(status)
		ex.Duration = time.Duration(duration) * time.Millisecond
		out = append(out, ex)
	}

	return out, rows.Err()
}

// Stats aggregates the log per provider, most used first.
func (l *ExchangeLog) Stats(ctx context.Context) ([]ProviderStats, error) {
	query := `
	SELECT provider,
		COUNT(*),
		SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
		SUM(tokens),
		CAST(AVG(duration_ms) AS INTEGER)
	FROM exchanges
	GROUP BY provider
	ORDER BY COUNT(*) DESC, provider
	`

	rows, err := l.db.QueryContext(ctx, query, string(model.ExchangeFailed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProviderStats
	for rows.Next() {
		var (
			s     ProviderStats
			avgMS int64
		)
		if err := rows.Scan(&s.Provider, &s.Exchanges, &s.Failed, &s.Tokens, &avgMS); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		s.AvgDuration = time.Duration(avgMS) * time.Millisecond
		out = append(out, s)
	}

	return out, rows.Err()
}

func (l *ExchangeLog) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}
