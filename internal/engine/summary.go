package engine

import "github.com/evertsen/kidschores/internal/model"

// ChildSummary is the per-child projection shown on dashboards.
type ChildSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Points int    `json:"points"`
}

// Summary is the read model for UI projections: point totals per child and
// task counts per status.
type Summary struct {
	Children   []ChildSummary `json:"children"`
	TaskCounts map[string]int `json:"task_counts"`
}

func (e *Engine) Summary() (*Summary, error) {
	children, err := e.children.List()
	if err != nil {
		return nil, err
	}
	counts, err := e.tasks.CountByStatus()
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Children: make([]ChildSummary, 0, len(children)),
		TaskCounts: map[string]int{
			model.StatusAssigned:         0,
			model.StatusInProgress:       0,
			model.StatusAwaitingApproval: 0,
			model.StatusApproved:         0,
			model.StatusRejected:         0,
		},
	}
	for _, c := range children {
		s.Children = append(s.Children, ChildSummary{ID: c.ID, Name: c.Name, Slug: c.Slug, Points: c.Points})
	}
	for status, n := range counts {
		s.TaskCounts[status] = n
	}
	return s, nil
}
