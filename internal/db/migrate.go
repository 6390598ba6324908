package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS plans (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL DEFAULT '',
		goal       TEXT NOT NULL,
		level      TEXT NOT NULL DEFAULT '',
		minutes    INTEGER NOT NULL CHECK(minutes BETWEEN 10 AND 240),
		deadline   TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS plan_milestones (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		plan_id     INTEGER NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		order_index INTEGER NOT NULL,
		text        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_plan_milestones_plan ON plan_milestones(plan_id, order_index)`,

	`CREATE TABLE IF NOT EXISTS plan_tasks (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		plan_id      INTEGER NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		order_index  INTEGER NOT NULL,
		title        TEXT NOT NULL,
		type         TEXT NOT NULL
		             CHECK(type IN ('lesson','video','reading','practice','project','quiz')),
		est_minutes  INTEGER NOT NULL CHECK(est_minutes BETWEEN 5 AND 240),
		due_date     TEXT NOT NULL,
		resource_ref TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_plan_tasks_plan ON plan_tasks(plan_id, order_index)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_tasks_due ON plan_tasks(plan_id, due_date)`,

	`CREATE TABLE IF NOT EXISTS study_sessions (
		id         TEXT PRIMARY KEY,
		plan_id    INTEGER NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		started_at TEXT NOT NULL,
		ended_at   TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_study_sessions_plan ON study_sessions(plan_id)`,

	`CREATE TABLE IF NOT EXISTS task_progress (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id     INTEGER NOT NULL REFERENCES plan_tasks(id) ON DELETE CASCADE,
		outcome     TEXT NOT NULL CHECK(outcome IN ('done','partial','skipped')),
		notes       TEXT NOT NULL DEFAULT '',
		rating      INTEGER,
		session_id  TEXT REFERENCES study_sessions(id) ON DELETE SET NULL,
		finished_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_task_progress_task ON task_progress(task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_task_progress_finished ON task_progress(finished_at)`,
}
