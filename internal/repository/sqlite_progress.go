package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/tutor/internal/db"
	"github.com/alexanderramin/tutor/internal/domain"
)

// SQLiteProgressRepo implements ProgressRepo using a SQLite database.
type SQLiteProgressRepo struct {
	db db.DBTX
}

// NewSQLiteProgressRepo creates a new SQLiteProgressRepo.
func NewSQLiteProgressRepo(conn db.DBTX) *SQLiteProgressRepo {
	return &SQLiteProgressRepo{db: conn}
}

func (r *SQLiteProgressRepo) Create(ctx context.Context, p *domain.TaskProgress) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO task_progress (task_id, outcome, notes, rating, session_id, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.TaskID,
		string(p.Outcome),
		p.Notes,
		nullableIntToValue(p.Rating),
		nullableStringToValue(p.SessionID),
		formatTimestamp(p.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting task progress: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("reading task progress id: %w", err)
	}
	return nil
}

func (r *SQLiteProgressRepo) ListByTask(ctx context.Context, taskID int64) ([]domain.TaskProgress, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, task_id, outcome, notes, rating, session_id, finished_at
		FROM task_progress WHERE task_id = ? ORDER BY finished_at, id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing progress by task: %w", err)
	}
	defer rows.Close()

	var out []domain.TaskProgress
	for rows.Next() {
		var p domain.TaskProgress
		var outcome, finishedAt string
		var rating sql.NullInt64
		var sessionID sql.NullString
		if err := rows.Scan(&p.ID, &p.TaskID, &outcome, &p.Notes, &rating, &sessionID, &finishedAt); err != nil {
			return nil, fmt.Errorf("scanning progress row: %w", err)
		}
		p.Outcome = domain.Outcome(outcome)
		p.Rating = nullableInt(rating)
		p.SessionID = nullableString(sessionID)
		if p.FinishedAt, err = parseTimestamp(finishedAt); err != nil {
			return nil, fmt.Errorf("parsing finished_at: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating progress: %w", err)
	}
	return out, nil
}

func (r *SQLiteProgressRepo) RecentOutcomes(ctx context.Context, planID int64, limit int) ([]domain.Outcome, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tp.outcome FROM task_progress tp
		JOIN plan_tasks t ON tp.task_id = t.id
		WHERE t.plan_id = ?
		ORDER BY tp.finished_at DESC, tp.id DESC
		LIMIT ?`, planID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent outcomes: %w", err)
	}
	defer rows.Close()

	var newestFirst []domain.Outcome
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, fmt.Errorf("scanning outcome row: %w", err)
		}
		newestFirst = append(newestFirst, domain.Outcome(o))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outcomes: %w", err)
	}

	out := make([]domain.Outcome, len(newestFirst))
	for i, o := range newestFirst {
		out[len(newestFirst)-1-i] = o
	}
	return out, nil
}

func (r *SQLiteProgressRepo) CountDoneTasks(ctx context.Context, planID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM plan_tasks WHERE plan_id = ? AND id IN (`+doneTaskIDs+`)`, planID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting done tasks: %w", err)
	}
	return n, nil
}

func (r *SQLiteProgressRepo) DoneTimes(ctx context.Context, planID int64, since time.Time) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tp.finished_at FROM task_progress tp
		JOIN plan_tasks t ON tp.task_id = t.id
		WHERE t.plan_id = ? AND tp.outcome = 'done' AND tp.finished_at >= ?
		ORDER BY tp.finished_at DESC`, planID, formatTimestamp(since))
	if err != nil {
		return nil, fmt.Errorf("listing done times: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning done time: %w", err)
		}
		t, err := parseTimestamp(s)
		if err != nil {
			return nil, fmt.Errorf("parsing finished_at: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating done times: %w", err)
	}
	return out, nil
}
