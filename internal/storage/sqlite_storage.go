package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStorage persists the analysis history in a SQLite file.
// Request and result are kept as JSON columns; the summary counters are
// denormalised so listings never decode results.
type SQLiteStorage struct {
	db         *sql.DB
	maxHistory int
}

// NewSQLiteStorage opens (or creates) the database at path.
// Use ":memory:" for an in-memory database.
func NewSQLiteStorage(path string, maxHistory int) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &SQLiteStorage{db: db, maxHistory: maxHistory}, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id               TEXT PRIMARY KEY,
			created_at       INTEGER NOT NULL,
			user_id          TEXT NOT NULL DEFAULT '',
			premium          INTEGER NOT NULL DEFAULT 0,
			findings_count   INTEGER NOT NULL DEFAULT 0,
			vulnerable_count INTEGER NOT NULL DEFAULT 0,
			has_error        INTEGER NOT NULL DEFAULT 0,
			request          TEXT NOT NULL,
			result           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_user ON analyses (user_id, created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) Save(ctx context.Context, rec *models.AnalysisRecordDTO) (string, error) {
	stored := prepare(rec)
	summary := stored.Summary()

	request, err := json.Marshal(stored.Request)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	var result []byte
	if stored.Result != nil {
		if result, err = json.Marshal(stored.Result); err != nil {
			return "", fmt.Errorf("encode result: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO analyses
		 (id, created_at, user_id, premium, findings_count, vulnerable_count, has_error, request, result)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.CreatedAt.UnixNano(), stored.UserID, stored.Premium,
		summary.FindingsCount, summary.VulnerableCount, summary.HasError,
		string(request), nullable(result),
	)
	if err != nil {
		return "", fmt.Errorf("save analysis: %w", err)
	}

	if s.maxHistory > 0 {
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM analyses WHERE id NOT IN (
				SELECT id FROM analyses ORDER BY created_at DESC LIMIT ?
			)`, s.maxHistory)
		if err != nil {
			return "", fmt.Errorf("prune history: %w", err)
		}
	}
	return stored.ID, nil
}

func nullable(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

func (s *SQLiteStorage) Get(ctx context.Context, userID, id string) (*models.AnalysisRecordDTO, error) {
	if userID == "" {
		return nil, ErrNotFound
	}

	var (
		rec     models.AnalysisRecordDTO
		created int64
		request string
		result  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, user_id, premium, request, result
		 FROM analyses WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&rec.ID, &created, &rec.UserID, &rec.Premium, &request, &result)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}

	rec.CreatedAt = time.Unix(0, created).UTC()
	if err := json.Unmarshal([]byte(request), &rec.Request); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if result.Valid {
		var r models.AnalysisResult
		if err := json.Unmarshal([]byte(result.String), &r); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		rec.Result = &r
	}
	return &rec, nil
}

// List returns the user's summaries, newest first
func (s *SQLiteStorage) List(ctx context.Context, userID string, limit int) ([]models.AnalysisSummaryDTO, error) {
	summaries := []models.AnalysisSummaryDTO{}
	if userID == "" {
		return summaries, nil
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, premium, findings_count, vulnerable_count, has_error
		 FROM analyses WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s       models.AnalysisSummaryDTO
			created int64
		)
		if err := rows.Scan(&s.ID, &created, &s.Premium, &s.FindingsCount, &s.VulnerableCount, &s.HasError); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		s.CreatedAt = time.Unix(0, created).UTC()
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
