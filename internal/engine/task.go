package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evertsen/kidschores/internal/model"
	"github.com/evertsen/kidschores/internal/store"
)

// TaskParams carries the fields of an add_task call. RepeatDays tokens may
// be weekday numbers or "mon".."sun" abbreviations.
type TaskParams struct {
	Title         string
	Description   string
	Points        int
	Due           *time.Time
	ChildID       *string
	RepeatDays    []any
	RepeatChildID *string
	Icon          string
}

// TaskUpdate carries a partial edit; nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Points      *int
	Due         *time.Time
	Icon        *string
}

func (e *Engine) AddTask(p TaskParams) (*model.Task, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, fmt.Errorf("task title is required: %w", ErrInvalidArgument)
	}
	if p.Points < 0 {
		return nil, fmt.Errorf("task points must be >= 0: %w", ErrInvalidArgument)
	}

	days, err := ParseRepeatDays(p.RepeatDays)
	if err != nil {
		return nil, err
	}

	t := &model.Task{
		Title:       title,
		Description: strings.TrimSpace(p.Description),
		Points:      p.Points,
		Status:      model.StatusAssigned,
		Due:         p.Due,
		Icon:        strings.TrimSpace(p.Icon),
		RepeatDays:  days,
		CreatedAt:   e.now(),
	}

	if p.ChildID != nil && *p.ChildID != "" {
		if _, err := e.GetChild(*p.ChildID); err != nil {
			return nil, err
		}
		t.AssignedTo = p.ChildID
	}
	if p.RepeatChildID != nil && *p.RepeatChildID != "" {
		if _, err := e.GetChild(*p.RepeatChildID); err != nil {
			return nil, err
		}
		t.RepeatChildID = p.RepeatChildID
	}

	return e.tasks.Create(t)
}

func (e *Engine) UpdateTask(taskID string, u TaskUpdate) (*model.Task, error) {
	t, err := e.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return nil, fmt.Errorf("task title is required: %w", ErrInvalidArgument)
		}
		t.Title = title
	}
	if u.Description != nil {
		t.Description = strings.TrimSpace(*u.Description)
	}
	if u.Points != nil {
		if *u.Points < 0 {
			return nil, fmt.Errorf("task points must be >= 0: %w", ErrInvalidArgument)
		}
		t.Points = *u.Points
	}
	if u.Due != nil {
		t.Due = u.Due
	}
	if u.Icon != nil {
		t.Icon = strings.TrimSpace(*u.Icon)
	}

	return e.updateTask(t)
}

// AssignTask sets or clears assigned_to. It never touches status; the
// caller encodes the intended flow through set_task_status.
func (e *Engine) AssignTask(taskID string, childID *string) (*model.Task, error) {
	t, err := e.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	if childID == nil || *childID == "" {
		t.AssignedTo = nil
	} else {
		if _, err := e.GetChild(*childID); err != nil {
			return nil, err
		}
		t.AssignedTo = childID
	}

	return e.updateTask(t)
}

// SetTaskStatus sets any of the five statuses; there is no transition table.
func (e *Engine) SetTaskStatus(taskID, status string) (*model.Task, error) {
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("status %q: %w", status, ErrInvalidArgument)
	}

	t, err := e.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	t.Status = status

	t, err = e.updateTask(t)
	if err != nil {
		return nil, err
	}

	if status == model.StatusAwaitingApproval && e.notifier != nil {
		var child *model.Child
		if t.AssignedTo != nil {
			child, _ = e.children.GetByID(*t.AssignedTo)
		}
		go e.notifier.TaskAwaitingApproval(t, child)
	}

	return t, nil
}

// ApproveTask sets the task approved and credits its points to the assignee
// in one transaction. An unassigned task only changes status.
func (e *Engine) ApproveTask(taskID string) (*model.Task, error) {
	approved, err := e.tasks.Approve(taskID, e.now())
	if errors.Is(err, store.ErrAssigneeMissing) {
		return nil, fmt.Errorf("approve task %s: %w", taskID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if approved == nil {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}

	e.logger.Info("task approved", "task_id", taskID, "points", approved.Points)
	return approved, nil
}

// SetTaskRepeat installs or replaces the repeat rule. An empty day set
// clears the rule. Invalid tokens reject the call with no partial install.
func (e *Engine) SetTaskRepeat(taskID string, days []any, repeatChildID *string) (*model.Task, error) {
	parsed, err := ParseRepeatDays(days)
	if err != nil {
		return nil, err
	}

	t, err := e.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	if repeatChildID != nil && *repeatChildID != "" {
		if _, err := e.GetChild(*repeatChildID); err != nil {
			return nil, err
		}
		t.RepeatChildID = repeatChildID
	} else {
		t.RepeatChildID = nil
	}
	t.RepeatDays = parsed

	return e.updateTask(t)
}

func (e *Engine) SetTaskIcon(taskID, icon string) (*model.Task, error) {
	t, err := e.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	t.Icon = strings.TrimSpace(icon)
	return e.updateTask(t)
}

// DeleteTask removes the task unconditionally; points and purchases are
// independent entities and are not cascaded.
func (e *Engine) DeleteTask(taskID string) error {
	if _, err := e.GetTask(taskID); err != nil {
		return err
	}
	return e.tasks.Delete(taskID)
}

// SpawnTaskInstance creates today's one-off instance of a repeat template.
// Returns (nil, nil) when an instance for today already exists, which makes
// re-running a rollover on the same day a no-op.
func (e *Engine) SpawnTaskInstance(templateID string, now time.Time) (*model.Task, error) {
	tpl, err := e.GetTask(templateID)
	if err != nil {
		return nil, err
	}
	if !tpl.IsTemplate() {
		return nil, fmt.Errorf("task %s has no repeat rule: %w", templateID, ErrInvalidArgument)
	}

	dayStart := startOfDay(now)
	exists, err := e.tasks.HasInstanceOn(templateID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	// The repeat target wins; the template's own assignment is only the
	// fallback.
	target := tpl.RepeatChildID
	if target == nil {
		target = tpl.AssignedTo
	}
	if target != nil {
		if _, err := e.GetChild(*target); err != nil {
			return nil, err
		}
	}

	due := dayStart
	if tpl.Due != nil {
		d := *tpl.Due
		due = time.Date(now.Year(), now.Month(), now.Day(), d.Hour(), d.Minute(), d.Second(), 0, now.Location())
	}

	instance := &model.Task{
		Title:       tpl.Title,
		Description: tpl.Description,
		Points:      tpl.Points,
		Status:      model.StatusAssigned,
		AssignedTo:  target,
		Due:         &due,
		Icon:        tpl.Icon,
		TemplateID:  &tpl.ID,
		CreatedAt:   now,
	}
	return e.tasks.Create(instance)
}

func (e *Engine) GetTask(id string) (*model.Task, error) {
	t, err := e.tasks.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t, nil
}

func (e *Engine) ListTasks() ([]model.Task, error) {
	return e.tasks.List()
}

// updateTask writes the task back and re-checks existence at the point of
// mutation.
func (e *Engine) updateTask(t *model.Task) (*model.Task, error) {
	updated, err := e.tasks.Update(t)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, ErrNotFound)
	}
	return updated, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
