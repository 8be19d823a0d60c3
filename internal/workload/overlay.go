package workload

import (
	"sort"

	"github.com/julianstephens/crewplan/internal/models"
)

// Overlay layers uncommitted task changes over a TaskSource so a batch can
// see its own pending assignments before they are written.
type Overlay struct {
	base    TaskSource
	pending map[string]models.Task
}

func NewOverlay(base TaskSource) *Overlay {
	return &Overlay{base: base, pending: make(map[string]models.Task)}
}

// Put records a pending version of t, replacing any stored version.
func (o *Overlay) Put(t models.Task) {
	o.pending[t.ID] = t
}

func (o *Overlay) ListTasks(filter models.TaskFilter) ([]models.Task, error) {
	// a pending change can move a task out of the filter, so ask the base for
	// everything the filter would match without the employee constraint
	baseFilter := filter
	baseFilter.EmployeeID = ""
	baseFilter.Unassigned = false
	stored, err := o.base.ListTasks(baseFilter)
	if err != nil {
		return nil, err
	}

	var out []models.Task
	for _, t := range stored {
		if p, ok := o.pending[t.ID]; ok {
			t = p
		}
		if filter.Match(t) {
			out = append(out, t)
		}
	}
	for id, p := range o.pending {
		if !containsID(stored, id) && filter.Match(p) {
			out = append(out, p)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func containsID(tasks []models.Task, id string) bool {
	for _, t := range tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}
