package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/crewplan/internal/errors"
	"github.com/julianstephens/crewplan/internal/models"
)

const employeeColumns = `id, name, email, class, weekly_hour_cap, active, calendar_id, task_version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (models.Employee, error) {
	var e models.Employee
	var class, createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.Name, &e.Email, &class, &e.WeeklyHourCap, &e.Active,
		&e.CalendarID, &e.TaskVersion, &createdAt, &updatedAt)
	if err != nil {
		return models.Employee{}, err
	}
	e.Class = models.EmployeeClass(class)
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Employee{}, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Employee{}, err
	}
	return e, nil
}

func (s *Store) AddEmployee(e models.Employee) error {
	if err := e.Validate(); err != nil {
		return apperrors.Invalidf("%v", err)
	}
	now := nowString()
	_, err := s.db.Exec(`
		INSERT INTO employees (`+employeeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		e.ID, e.Name, e.Email, e.Class, e.WeeklyHourCap, e.Active, e.CalendarID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to add employee: %w", err)
	}
	return nil
}

func (s *Store) GetEmployee(id string) (models.Employee, error) {
	row := s.db.QueryRow(`SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Employee{}, apperrors.NotFoundf("employee %s", id)
		}
		return models.Employee{}, err
	}
	return e, nil
}

func (s *Store) GetEmployees(includeInactive bool) ([]models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees`
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name, id`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// UpdateEmployee updates profile fields. The task version is owned by CommitTasks.
func (s *Store) UpdateEmployee(e models.Employee) error {
	if err := e.Validate(); err != nil {
		return apperrors.Invalidf("%v", err)
	}
	res, err := s.db.Exec(`
		UPDATE employees
		SET name = ?, email = ?, class = ?, weekly_hour_cap = ?, active = ?, calendar_id = ?, updated_at = ?
		WHERE id = ?`,
		e.Name, e.Email, e.Class, e.WeeklyHourCap, e.Active, e.CalendarID, nowString(), e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("employee %s", e.ID)
	}
	return nil
}

func (s *Store) DeactivateEmployee(id string) error {
	e, err := s.GetEmployee(id)
	if err != nil {
		return err
	}
	if !e.Active {
		return fmt.Errorf("employee %s is already inactive", id)
	}
	_, err = s.db.Exec(`UPDATE employees SET active = 0, updated_at = ? WHERE id = ?`, nowString(), id)
	return err
}
