package models

import "time"

// WorkloadSnapshot is an employee's committed hours over a range. Derived, never persisted.
type WorkloadSnapshot struct {
	EmployeeID         string    `json:"employee_id"`
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	CommittedHours     float64   `json:"committed_hours"`
	Capacity           float64   `json:"capacity"`
	AvailableHours     float64   `json:"available_hours"`
	UtilizationPercent float64   `json:"utilization_percent"`
	Tasks              []Task    `json:"tasks,omitempty"`
}

// Overloaded reports whether committed hours exceed capacity.
func (w WorkloadSnapshot) Overloaded() bool {
	return w.AvailableHours < 0
}

// EmployeeAvailability is one employee's free time on a day plus weekly slack.
type EmployeeAvailability struct {
	Employee           Employee   `json:"employee"`
	FreeSlots          []TimeSlot `json:"free_slots"`
	CalendarChecked    bool       `json:"calendar_checked"`
	AvailableHours     float64    `json:"available_hours"`
	UtilizationPercent float64    `json:"utilization_percent"`
}
