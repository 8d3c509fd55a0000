package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/leadlens-ai/leadlens/internal/interview"
)

// ErrRecordNotFound indicates no archived interview exists for the session.
var ErrRecordNotFound = errors.New("archive: record not found")

type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists finished interviews to the interview_archive table.
// Both *pgxpool.Pool and pgxmock satisfy the connection interface.
type PostgresStore struct {
	db pgxConn
}

func NewPostgresStore(db pgxConn) *PostgresStore {
	if db == nil {
		panic("archive: pgx connection required")
	}
	return &PostgresStore{db: db}
}

// Insert writes one archived interview. Re-archiving a session id replaces
// the earlier row so finish-hook retries stay safe.
func (s *PostgresStore) Insert(ctx context.Context, record InterviewRecord) error {
	payload, err := json.Marshal(record.Context)
	if err != nil {
		return fmt.Errorf("archive: marshal context: %w", err)
	}
	query := `
		INSERT INTO interview_archive (session_id, persona, finish_reason, score, questions_asked, started_at, finished_at, context)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id) DO UPDATE
		SET persona = EXCLUDED.persona,
		    finish_reason = EXCLUDED.finish_reason,
		    score = EXCLUDED.score,
		    questions_asked = EXCLUDED.questions_asked,
		    finished_at = EXCLUDED.finished_at,
		    context = EXCLUDED.context
	`
	if _, err := s.db.Exec(ctx, query,
		record.SessionID, record.Persona, record.FinishReason, record.Score,
		record.QuestionsAsked, record.StartedAt, record.FinishedAt, payload,
	); err != nil {
		return fmt.Errorf("archive: insert record: %w", err)
	}
	return nil
}

// Get loads one archived interview by session id.
func (s *PostgresStore) Get(ctx context.Context, sessionID string) (InterviewRecord, error) {
	query := `
		SELECT session_id, persona, finish_reason, score, questions_asked, started_at, finished_at, context
		FROM interview_archive
		WHERE session_id = $1
	`
	var record InterviewRecord
	var payload []byte
	err := s.db.QueryRow(ctx, query, sessionID).Scan(
		&record.SessionID, &record.Persona, &record.FinishReason, &record.Score,
		&record.QuestionsAsked, &record.StartedAt, &record.FinishedAt, &payload,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return InterviewRecord{}, ErrRecordNotFound
		}
		return InterviewRecord{}, fmt.Errorf("archive: load record: %w", err)
	}
	if err := json.Unmarshal(payload, &record.Context); err != nil {
		return InterviewRecord{}, fmt.Errorf("archive: decode context: %w", err)
	}
	return record, nil
}

// ListRecent returns the newest archived interviews, most recent first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int32) ([]InterviewRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT session_id, persona, finish_reason, score, questions_asked, started_at, finished_at
		FROM interview_archive
		ORDER BY finished_at DESC
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: list recent: %w", err)
	}
	defer rows.Close()

	var records []InterviewRecord
	for rows.Next() {
		var record InterviewRecord
		if err := rows.Scan(
			&record.SessionID, &record.Persona, &record.FinishReason, &record.Score,
			&record.QuestionsAsked, &record.StartedAt, &record.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("archive: scan record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// PostgresHook adapts the store to the engine's finish boundary.
type PostgresHook struct {
	store *PostgresStore
	now   func() time.Time
}

func NewPostgresHook(store *PostgresStore) *PostgresHook {
	if store == nil {
		panic("archive: store required")
	}
	return &PostgresHook{store: store, now: time.Now}
}

func (h *PostgresHook) OnFinish(ctx context.Context, c interview.Context) error {
	return h.store.Insert(ctx, NewRecord(c, h.now()))
}
