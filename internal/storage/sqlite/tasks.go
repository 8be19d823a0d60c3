package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/julianstephens/crewplan/internal/errors"
	"github.com/julianstephens/crewplan/internal/models"
)

const taskColumns = `id, title, description, location, type, status, start_time, end_time, estimated_hours,
	employee_id, event_id, weather_dependent, priority, created_at, updated_at`

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var taskType, status, start, end, createdAt, updatedAt string
	var employeeID sql.NullString

	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Location, &taskType, &status, &start, &end,
		&t.EstimatedHours, &employeeID, &t.EventID, &t.WeatherDependent, &t.Priority, &createdAt, &updatedAt)
	if err != nil {
		return models.Task{}, err
	}

	t.Type = models.TaskType(taskType)
	t.Status = models.TaskStatus(status)
	if employeeID.Valid {
		t.EmployeeID = employeeID.String
	}

	startTime, err := parseTime(start)
	if err != nil {
		return models.Task{}, err
	}
	// end_time is kept for range queries; the model always derives it
	t.SetSchedule(startTime, t.EstimatedHours)

	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Task{}, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func (s *Store) GetTask(id string) (models.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
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

	if filter.EmployeeID != "" {
		where = append(where, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.Unassigned {
		where = append(where, "employee_id IS NULL")
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}
	if len(filter.Statuses) > 0 {
		marks := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			marks[i] = "?"
			args = append(args, st)
		}
		where = append(where, "status IN ("+strings.Join(marks, ", ")+")")
	}
	if !filter.StartFrom.IsZero() {
		where = append(where, "start_time >= ?")
		args = append(args, formatTime(filter.StartFrom))
	}
	if !filter.StartBefore.IsZero() {
		where = append(where, "start_time < ?")
		args = append(args, formatTime(filter.StartBefore))
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

	now := nowString()
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
			createdAt = formatTime(t.CreatedAt)
		}

		_, err = tx.Exec(`
			INSERT INTO tasks (`+taskColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				location = excluded.location,
				type = excluded.type,
				status = excluded.status,
				start_time = excluded.start_time,
				end_time = excluded.end_time,
				estimated_hours = excluded.estimated_hours,
				employee_id = excluded.employee_id,
				event_id = excluded.event_id,
				weather_dependent = excluded.weather_dependent,
				priority = excluded.priority,
				updated_at = excluded.updated_at`,
			t.ID, t.Title, t.Description, t.Location, t.Type, t.Status,
			formatTime(t.StartTime), formatTime(t.EndTime), t.EstimatedHours,
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

// AssignTasks gives planned, unassigned tasks their employees in one
// transaction, checking and bumping every version stamp like CommitTasks. Only
// the assignee column is written; a task that was deleted, assigned or moved
// out of planned since it was read aborts the whole batch with ErrConflict.
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

	now := nowString()
	if err = bumpVersions(tx, stamps, now); err != nil {
		return err
	}
	for _, a := range assignments {
		res, err := tx.Exec(`
			UPDATE tasks SET employee_id = ?, updated_at = ?
			WHERE id = ? AND employee_id IS NULL AND status = ?`,
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

// bumpVersions checks and increments each employee's task version once.
func bumpVersions(tx *sql.Tx, stamps []models.VersionStamp, now string) error {
	seen := make(map[string]bool, len(stamps))
	for _, st := range stamps {
		if seen[st.EmployeeID] {
			continue
		}
		seen[st.EmployeeID] = true

		res, err := tx.Exec(`
			UPDATE employees SET task_version = task_version + 1, updated_at = ?
			WHERE id = ? AND task_version = ?`, now, st.EmployeeID, st.Version)
		if err != nil {
			return fmt.Errorf("failed to bump version for employee %s: %w", st.EmployeeID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			var exists int
			if qerr := tx.QueryRow(`SELECT count(*) FROM employees WHERE id = ?`, st.EmployeeID).Scan(&exists); qerr != nil {
				return qerr
			}
			if exists == 0 {
				return apperrors.NotFoundf("employee %s", st.EmployeeID)
			}
			return fmt.Errorf("employee %s tasks changed since version %d: %w", st.EmployeeID, st.Version, apperrors.ErrConflict)
		}
	}
	return nil
}

// SetTaskEvent records the external calendar handle of a task.
func (s *Store) SetTaskEvent(taskID, eventID string) error {
	res, err := s.db.Exec(`UPDATE tasks SET event_id = ?, updated_at = ? WHERE id = ?`, eventID, nowString(), taskID)
	if err != nil {
		return fmt.Errorf("failed to set task event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("task %s", taskID)
	}
	return nil
}

// DeleteTask removes a task permanently. Callers remove its calendar event first.
func (s *Store) DeleteTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("task %s", id)
	}
	return nil
}
