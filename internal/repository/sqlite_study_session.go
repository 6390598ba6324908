package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tutor/internal/db"
	"github.com/alexanderramin/tutor/internal/domain"
)

// SQLiteStudySessionRepo implements StudySessionRepo using a SQLite database.
type SQLiteStudySessionRepo struct {
	db db.DBTX
}

// NewSQLiteStudySessionRepo creates a new SQLiteStudySessionRepo.
func NewSQLiteStudySessionRepo(conn db.DBTX) *SQLiteStudySessionRepo {
	return &SQLiteStudySessionRepo{db: conn}
}

func (r *SQLiteStudySessionRepo) Create(ctx context.Context, s *domain.StudySession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO study_sessions (id, plan_id, started_at, ended_at) VALUES (?, ?, ?, ?)`,
		s.ID, s.PlanID, formatTimestamp(s.StartedAt), nullableTimeToString(s.EndedAt, timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting study session: %w", err)
	}
	return nil
}

func (r *SQLiteStudySessionRepo) GetByID(ctx context.Context, id string) (*domain.StudySession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, plan_id, started_at, ended_at FROM study_sessions WHERE id = ?`, id)
	return r.scanSession(row, fmt.Sprintf("study session %s", id))
}

func (r *SQLiteStudySessionRepo) GetActive(ctx context.Context, planID int64) (*domain.StudySession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, plan_id, started_at, ended_at FROM study_sessions
		WHERE plan_id = ? AND ended_at IS NULL
		ORDER BY started_at DESC LIMIT 1`, planID)
	return r.scanSession(row, fmt.Sprintf("active session for plan %d", planID))
}

func (r *SQLiteStudySessionRepo) End(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE study_sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL`,
		formatTimestamp(at), id)
	if err != nil {
		return fmt.Errorf("ending study session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking ended session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("active study session %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteStudySessionRepo) scanSession(row *sql.Row, what string) (*domain.StudySession, error) {
	var s domain.StudySession
	var startedAt string
	var endedAt sql.NullString
	if err := row.Scan(&s.ID, &s.PlanID, &startedAt, &endedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning study session: %w", err)
	}

	var err error
	if s.StartedAt, err = parseTimestamp(startedAt); err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	s.EndedAt = parseNullableTime(endedAt, timestampLayout)
	return &s, nil
}
