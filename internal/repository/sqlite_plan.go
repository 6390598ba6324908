package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/tutor/internal/db"
	"github.com/alexanderramin/tutor/internal/domain"
)

// SQLitePlanRepo implements PlanRepo. Create issues several statements, so
// callers wanting atomicity pass a transaction-scoped DBTX.
type SQLitePlanRepo struct {
	db db.DBTX
}

// NewSQLitePlanRepo creates a new SQLitePlanRepo.
func NewSQLitePlanRepo(conn db.DBTX) *SQLitePlanRepo {
	return &SQLitePlanRepo{db: conn}
}

func (r *SQLitePlanRepo) Create(ctx context.Context, p *domain.StoredPlan) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO plans (name, goal, level, minutes, deadline, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Goal, p.Level, p.Minutes, p.Deadline, formatTimestamp(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting plan: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading plan id: %w", err)
	}

	for i := range p.Milestones {
		m := &p.Milestones[i]
		m.PlanID = p.ID
		m.OrderIndex = i + 1
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO plan_milestones (plan_id, order_index, text) VALUES (?, ?, ?)`,
			m.PlanID, m.OrderIndex, m.Text,
		)
		if err != nil {
			return fmt.Errorf("inserting milestone %d: %w", i+1, err)
		}
		if m.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading milestone id: %w", err)
		}
	}

	for i := range p.Tasks {
		t := &p.Tasks[i]
		t.PlanID = p.ID
		t.OrderIndex = i + 1
		if err := insertTask(ctx, r.db, t); err != nil {
			return fmt.Errorf("inserting task %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *SQLitePlanRepo) GetByID(ctx context.Context, id int64) (*domain.StoredPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, goal, level, minutes, deadline, created_at FROM plans WHERE id = ?`, id)

	var p domain.StoredPlan
	var createdAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Goal, &p.Level, &p.Minutes, &p.Deadline, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plan %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning plan: %w", err)
	}
	var err error
	if p.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("parsing plan created_at: %w", err)
	}

	if p.Milestones, err = r.listMilestones(ctx, id); err != nil {
		return nil, err
	}
	if p.Tasks, err = r.listTasksInOrder(ctx, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SQLitePlanRepo) listMilestones(ctx context.Context, planID int64) ([]domain.Milestone, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, plan_id, order_index, text FROM plan_milestones WHERE plan_id = ? ORDER BY order_index`, planID)
	if err != nil {
		return nil, fmt.Errorf("listing milestones: %w", err)
	}
	defer rows.Close()

	var out []domain.Milestone
	for rows.Next() {
		var m domain.Milestone
		if err := rows.Scan(&m.ID, &m.PlanID, &m.OrderIndex, &m.Text); err != nil {
			return nil, fmt.Errorf("scanning milestone row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating milestones: %w", err)
	}
	return out, nil
}

func (r *SQLitePlanRepo) listTasksInOrder(ctx context.Context, planID int64) ([]domain.StoredTask, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM plan_tasks WHERE plan_id = ? ORDER BY order_index, id`, planID)
	if err != nil {
		return nil, fmt.Errorf("listing plan tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *SQLitePlanRepo) List(ctx context.Context) ([]PlanSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, goal, created_at FROM plans ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer rows.Close()

	var out []PlanSummary
	for rows.Next() {
		var s PlanSummary
		var createdAt string
		if err := rows.Scan(&s.ID, &s.Name, &s.Goal, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning plan row: %w", err)
		}
		if s.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("parsing plan created_at: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plans: %w", err)
	}
	return out, nil
}

func (r *SQLitePlanRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted plan: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("plan %d: %w", id, ErrNotFound)
	}
	return nil
}
