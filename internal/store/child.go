package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evertsen/kidschores/internal/model"
)

type ChildStore struct {
	db *sql.DB
}

func NewChildStore(db *sql.DB) *ChildStore {
	return &ChildStore{db: db}
}

func scanChild(scanner interface{ Scan(...any) error }) (*model.Child, error) {
	var c model.Child
	err := scanner.Scan(&c.ID, &c.Name, &c.Slug, &c.Points, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const childCols = `id, name, slug, points, created_at, updated_at`

func (s *ChildStore) Create(name string) (*model.Child, error) {
	id := uuid.NewString()
	now := time.Now()

	_, err := s.db.Exec(
		`INSERT INTO children (id, name, slug, points, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)`,
		id, name, model.Slugify(name), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}
	return s.GetByID(id)
}

// Insert writes a fully populated child row verbatim, for snapshot restore.
func (s *ChildStore) Insert(c *model.Child) error {
	_, err := s.db.Exec(
		`INSERT INTO children (`+childCols+`) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.Points, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert child: %w", err)
	}
	return nil
}

func (s *ChildStore) GetByID(id string) (*model.Child, error) {
	row := s.db.QueryRow(`SELECT `+childCols+` FROM children WHERE id = ?`, id)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

// List returns all children in insertion order.
func (s *ChildStore) List() ([]model.Child, error) {
	rows, err := s.db.Query(`SELECT ` + childCols + ` FROM children ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []model.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

// Rename updates the child's name and re-derives the slug.
// Returns (nil, nil) if the child does not exist.
func (s *ChildStore) Rename(id, newName string) (*model.Child, error) {
	res, err := s.db.Exec(
		`UPDATE children SET name = ?, slug = ?, updated_at = ? WHERE id = ?`,
		newName, model.Slugify(newName), time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("rename child: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}

func (s *ChildStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM children WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	return nil
}

// DeleteCascade removes the child and unassigns its tasks in one
// transaction. Repeat targets are left dangling for the orphan sweep.
func (s *ChildStore) DeleteCascade(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM children WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	if _, err := tx.Exec(`UPDATE tasks SET assigned_to = NULL WHERE assigned_to = ?`, id); err != nil {
		return fmt.Errorf("unassign child tasks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit child removal: %w", err)
	}
	return nil
}

// AddPoints adjusts the child's balance by delta. Negative balances are
// allowed; insufficient-funds checks belong to the shop, not the ledger.
// Returns (nil, nil) if the child does not exist.
func (s *ChildStore) AddPoints(id string, delta int) (*model.Child, error) {
	res, err := s.db.Exec(
		`UPDATE children SET points = points + ?, updated_at = ? WHERE id = ?`,
		delta, time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("add points: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}

// ResetPoints zeroes one child's balance. Returns (nil, nil) if absent.
func (s *ChildStore) ResetPoints(id string) (*model.Child, error) {
	res, err := s.db.Exec(
		`UPDATE children SET points = 0, updated_at = ? WHERE id = ?`,
		time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("reset points: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}

func (s *ChildStore) DeleteAll() error {
	_, err := s.db.Exec(`DELETE FROM children`)
	if err != nil {
		return fmt.Errorf("delete all children: %w", err)
	}
	return nil
}

// ResetAllPoints zeroes every child's balance.
func (s *ChildStore) ResetAllPoints() error {
	_, err := s.db.Exec(`UPDATE children SET points = 0, updated_at = ?`, time.Now())
	if err != nil {
		return fmt.Errorf("reset all points: %w", err)
	}
	return nil
}
