package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evertsen/kidschores/internal/model"
)

// ErrAssigneeMissing is returned by Approve when the task's assignee row no
// longer exists at commit time.
var ErrAssigneeMissing = errors.New("assignee missing")

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, title, description, points, status, assigned_to, due, icon, repeat_days, repeat_child_id, template_id, approved_at, created_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var assignedTo, repeatChild, templateID sql.NullString
	var due, approvedAt sql.NullTime
	var repeatDays string

	err := scanner.Scan(
		&t.ID, &t.Title, &t.Description, &t.Points, &t.Status,
		&assignedTo, &due, &t.Icon, &repeatDays, &repeatChild,
		&templateID, &approvedAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.String
	}
	if repeatChild.Valid {
		t.RepeatChildID = &repeatChild.String
	}
	if templateID.Valid {
		t.TemplateID = &templateID.String
	}
	if due.Valid {
		d := due.Time
		t.Due = &d
	}
	if approvedAt.Valid {
		a := approvedAt.Time
		t.ApprovedAt = &a
	}
	t.RepeatDays = decodeRepeatDays(repeatDays)
	return &t, nil
}

// encodeRepeatDays packs weekday numbers into the comma-separated column
// form, e.g. []int{0, 2} -> "0,2". An empty set encodes as "".
func encodeRepeatDays(days []int) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func decodeRepeatDays(s string) []int {
	if s == "" {
		return nil
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		d, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	return days
}

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Create inserts the task, assigning a fresh id and created timestamp
// unless the caller provided them.
func (s *TaskStore) Create(t *model.Task) (*model.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.Status == "" {
		t.Status = model.StatusAssigned
	}

	_, err := s.db.Exec(
		`INSERT INTO tasks (`+taskCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, t.Points, t.Status,
		nullStr(t.AssignedTo), nullTime(t.Due), t.Icon,
		encodeRepeatDays(t.RepeatDays), nullStr(t.RepeatChildID),
		nullStr(t.TemplateID), nullTime(t.ApprovedAt), t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetByID(t.ID)
}

func (s *TaskStore) GetByID(id string) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns all tasks in insertion order.
func (s *TaskStore) List() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskCols + ` FROM tasks ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Update writes the full mutable row back. Returns (nil, nil) if the task
// no longer exists.
func (s *TaskStore) Update(t *model.Task) (*model.Task, error) {
	res, err := s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, points = ?, status = ?, assigned_to = ?, due = ?, icon = ?, repeat_days = ?, repeat_child_id = ?, approved_at = ? WHERE id = ?`,
		t.Title, t.Description, t.Points, t.Status,
		nullStr(t.AssignedTo), nullTime(t.Due), t.Icon,
		encodeRepeatDays(t.RepeatDays), nullStr(t.RepeatChildID),
		nullTime(t.ApprovedAt), t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetByID(t.ID)
}

func (s *TaskStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *TaskStore) DeleteAll() error {
	_, err := s.db.Exec(`DELETE FROM tasks`)
	if err != nil {
		return fmt.Errorf("delete all tasks: %w", err)
	}
	return nil
}

// Approve sets the task approved in the same transaction that credits the
// assignee, so a failure leaves both untouched. An unassigned task only
// changes status. Returns (nil, nil) if the task does not exist.
func (s *TaskStore) Approve(id string, approvedAt time.Time) (*model.Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task for approval: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE tasks SET status = ?, approved_at = ? WHERE id = ?`,
		model.StatusApproved, approvedAt, id,
	); err != nil {
		return nil, fmt.Errorf("approve task: %w", err)
	}

	if t.AssignedTo != nil {
		res, err := tx.Exec(
			`UPDATE children SET points = points + ?, updated_at = ? WHERE id = ?`,
			t.Points, approvedAt, *t.AssignedTo,
		)
		if err != nil {
			return nil, fmt.Errorf("credit points: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, fmt.Errorf("credit points to %s: %w", *t.AssignedTo, ErrAssigneeMissing)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit approval: %w", err)
	}
	return s.GetByID(id)
}

// ClearOrphanRefs nulls out task references to children that no longer
// exist and returns how many rows were touched.
func (s *TaskStore) ClearOrphanRefs() (int64, error) {
	res1, err := s.db.Exec(
		`UPDATE tasks SET assigned_to = NULL WHERE assigned_to IS NOT NULL AND assigned_to NOT IN (SELECT id FROM children)`,
	)
	if err != nil {
		return 0, fmt.Errorf("clear orphan assignments: %w", err)
	}
	res2, err := s.db.Exec(
		`UPDATE tasks SET repeat_child_id = NULL WHERE repeat_child_id IS NOT NULL AND repeat_child_id NOT IN (SELECT id FROM children)`,
	)
	if err != nil {
		return 0, fmt.Errorf("clear orphan repeat targets: %w", err)
	}

	n1, _ := res1.RowsAffected()
	n2, _ := res2.RowsAffected()
	return n1 + n2, nil
}

// HasInstanceOn reports whether an instance spawned from the template was
// created within [dayStart, dayEnd). Rollover uses this to stay idempotent.
func (s *TaskStore) HasInstanceOn(templateID string, dayStart, dayEnd time.Time) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE template_id = ? AND created_at >= ? AND created_at < ?`,
		templateID, dayStart, dayEnd,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count template instances: %w", err)
	}
	return count > 0, nil
}

// CountByStatus returns task counts keyed by status.
func (s *TaskStore) CountByStatus() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
