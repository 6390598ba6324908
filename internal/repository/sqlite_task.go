package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tutor/internal/db"
	"github.com/alexanderramin/tutor/internal/domain"
)

const taskColumns = `id, plan_id, order_index, title, type, est_minutes, due_date, resource_ref`

// doneTaskIDs selects every task with at least one "done" progress record.
const doneTaskIDs = `SELECT task_id FROM task_progress WHERE outcome = 'done'`

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

func insertTask(ctx context.Context, conn db.DBTX, t *domain.StoredTask) error {
	res, err := conn.ExecContext(ctx,
		`INSERT INTO plan_tasks (plan_id, order_index, title, type, est_minutes, due_date, resource_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.PlanID, t.OrderIndex, t.Title, string(t.Type), t.EstMinutes,
		formatDate(t.DueDate), nullableStringToValue(t.ResourceRef),
	)
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id int64) (*domain.StoredTask, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM plan_tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	return t, nil
}

func (r *SQLiteTaskRepo) ListByPlan(ctx context.Context, planID int64, f TaskFilter) ([]domain.StoredTask, error) {
	var where []string
	args := []any{planID}
	where = append(where, "plan_id = ?")
	if f.ExcludeDone {
		where = append(where, "id NOT IN ("+doneTaskIDs+")")
	}
	if f.DueOnOrBefore != nil {
		where = append(where, "due_date <= ?")
		args = append(args, formatDate(*f.DueOnOrBefore))
	}
	if f.DueAfter != nil {
		where = append(where, "due_date > ?")
		args = append(args, formatDate(*f.DueAfter))
	}

	query := `SELECT ` + taskColumns + ` FROM plan_tasks WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY due_date, id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks by plan: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *SQLiteTaskRepo) Append(ctx context.Context, t *domain.StoredTask) error {
	var maxOrder int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(order_index), 0) FROM plan_tasks WHERE plan_id = ?`, t.PlanID).Scan(&maxOrder)
	if err != nil {
		return fmt.Errorf("reading task order: %w", err)
	}
	t.OrderIndex = maxOrder + 1
	if err := insertTask(ctx, r.db, t); err != nil {
		return fmt.Errorf("appending task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) PushDueDate(ctx context.Context, id int64, days int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE plan_tasks SET due_date = date(due_date, ?) WHERE id = ?`, dayModifier(days), id)
	if err != nil {
		return fmt.Errorf("pushing task due date: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking pushed task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteTaskRepo) PushPendingFrom(ctx context.Context, planID int64, from time.Time, days int) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE plan_tasks SET due_date = date(due_date, ?)
		WHERE plan_id = ? AND due_date >= ? AND id NOT IN (`+doneTaskIDs+`)`,
		dayModifier(days), planID, formatDate(from))
	if err != nil {
		return 0, fmt.Errorf("pushing pending tasks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking pushed tasks: %w", err)
	}
	return int(n), nil
}

// dayModifier renders an SQLite date() modifier such as "+3 days".
func dayModifier(days int) string {
	return fmt.Sprintf("%+d days", days)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.StoredTask, error) {
	var t domain.StoredTask
	var taskType, due string
	var ref sql.NullString
	if err := row.Scan(&t.ID, &t.PlanID, &t.OrderIndex, &t.Title, &taskType, &t.EstMinutes, &due, &ref); err != nil {
		return nil, err
	}
	t.Type = domain.TaskType(taskType)
	t.ResourceRef = nullableString(ref)

	d, err := time.Parse(dateLayout, due)
	if err != nil {
		return nil, fmt.Errorf("parsing due_date %q: %w", due, err)
	}
	t.DueDate = d
	return &t, nil
}

func scanTasks(rows *sql.Rows) ([]domain.StoredTask, error) {
	var tasks []domain.StoredTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}
