package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/julianstephens/crewplan/internal/errors"
	"github.com/julianstephens/crewplan/internal/models"
)

const taskColumns = `id, title, description, location, type, status, start_time, end_time, estimated_hours,
	employee_id, event_id, weather_dependent, priority, created_at, updated_at`

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var taskType, status string
	var start, end time.Time
	var employeeID sql.NullString

	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Location, &taskType, &status, &start, &end,
		&t.EstimatedHours, &employeeID, &t.EventID, &t.WeatherDependent, &t.Priority, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	t.Type = models.TaskType(taskType)
	t.Status = models.TaskStatus(status)
	t.EmployeeID = employeeID.String
	t.SetSchedule(start.UTC(), t.EstimatedHours)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func (s *Store) GetTask(id string) (models.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, apperrors.NotFoundf("task %s", id)
		}
		return models.Task{}, err
	}
	return t, nil
}

// ListTasks returns tasks matching the filter ordered by start time, then creation.
func (s *Store) ListTasks(filter models.TaskFilter) ([]models.Task, error) {
	var where []string
	var args []any
	bind := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.EmployeeID != "" {
		where = append(where, "employee_id = "+bind(filter.EmployeeID))
	}
	if filter.Unassigned {
		where = append(where, "employee_id IS NULL")
	}
	if filter.Type != "" {
		where = append(where, "type = "+bind(string(filter.Type)))
	}
	if len(filter.Statuses) > 0 {
		marks := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			marks[i] = bind(string(st))
		}
		where = append(where, "status IN ("+strings.Join(marks, ", ")+")")
	}
	if !filter.StartFrom.IsZero() {
		where = append(where, "start_time >= "+bind(filter.StartFrom.UTC()))
	}
	if !filter.StartBefore.IsZero() {
		where = append(where, "start_time < "+bind(filter.StartBefore.UTC()))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_time, created_at, id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CommitTasks writes tasks in one transaction after checking and bumping every
// version stamp. A stale stamp aborts the whole commit with ErrConflict.
func (s *Store) CommitTasks(tasks []models.Task, stamps []models.VersionStamp) (err error) {
	for _, t := range tasks {
		if verr := t.Validate(); verr != nil {
			return apperrors.Invalidf("task %s: %v", t.ID, verr)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if err = bumpVersions(tx, stamps, now); err != nil {
		return err
	}

	for _, t := range tasks {
		var employeeID sql.NullString
		if t.EmployeeID != "" {
			employeeID = sql.NullString{String: t.EmployeeID, Valid: true}
		}
		createdAt := now
		if !t.CreatedAt.IsZero() {
			createdAt = t.CreatedAt.UTC()
		}

		_, err = tx.Exec(`
			INSERT INTO tasks (`+taskColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				location = EXCLUDED.location,
				type = EXCLUDED.type,
				status = EXCLUDED.status,
				start_time = EXCLUDED.start_time,
				end_time = EXCLUDED.end_time,
				estimated_hours = EXCLUDED.estimated_hours,
				employee_id = EXCLUDED.employee_id,
				event_id = EXCLUDED.event_id,
				weather_dependent = EXCLUDED.weather_dependent,
				priority = EXCLUDED.priority,
				updated_at = EXCLUDED.updated_at`,
			t.ID, t.Title, t.Description, t.Location, string(t.Type), string(t.Status),
			t.StartTime.UTC(), t.EndTime.UTC(), t.EstimatedHours,
			employeeID, t.EventID, t.WeatherDependent, t.Priority, createdAt, now,
		)
		if err != nil {
			return fmt.Errorf("failed to write task %s: %w", t.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tasks: %w", err)
	}
	return nil
}

// AssignTasks writes only the assignee of planned, unassigned tasks. A task
// changed since it was read aborts the batch with ErrConflict.
func (s *Store) AssignTasks(assignments []models.Assignment, stamps []models.VersionStamp) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if err = bumpVersions(tx, stamps, now); err != nil {
		return err
	}
	for _, a := range assignments {
		res, err := tx.Exec(`
			UPDATE tasks SET employee_id = $1, updated_at = $2
			WHERE id = $3 AND employee_id IS NULL AND status = $4`,
			a.EmployeeID, now, a.TaskID, string(models.TaskStatusPlanned))
		if err != nil {
			return fmt.Errorf("failed to assign task %s: %w", a.TaskID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperrors.Conflictf("task %s is no longer planned and unassigned", a.TaskID)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignments: %w", err)
	}
	return nil
}

func bumpVersions(tx *sql.Tx, stamps []models.VersionStamp, now time.Time) error {
	seen := make(map[string]bool, len(stamps))
	for _, st := range stamps {
		if seen[st.EmployeeID] {
			continue
		}
		seen[st.EmployeeID] = true

		res, err := tx.Exec(`
			UPDATE employees SET task_version = task_version + 1, updated_at = $1
			WHERE id = $2 AND task_version = $3`, now, st.EmployeeID, st.Version)
		if err != nil {
			return fmt.Errorf("failed to bump version for employee %s: %w", st.EmployeeID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			var exists bool
			if qerr := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`, st.EmployeeID).Scan(&exists); qerr != nil {
				return qerr
			}
			if !exists {
				return apperrors.NotFoundf("employee %s", st.EmployeeID)
			}
			return fmt.Errorf("employee %s tasks changed since version %d: %w", st.EmployeeID, st.Version, apperrors.ErrConflict)
		}
	}
	return nil
}

func (s *Store) SetTaskEvent(taskID, eventID string) error {
	res, err := s.db.Exec(`UPDATE tasks SET event_id = $1, updated_at = $2 WHERE id = $3`, eventID, time.Now().UTC(), taskID)
	if err != nil {
		return fmt.Errorf("failed to set task event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("task %s", taskID)
	}
	return nil
}

func (s *Store) DeleteTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("task %s", id)
	}
	return nil
}
