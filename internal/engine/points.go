package engine

import (
	"fmt"

	"github.com/evertsen/kidschores/internal/model"
)

// AddPoints adjusts a child's balance by delta. There is no floor: the
// ledger permits negative balances; only the shop cares about funds.
func (e *Engine) AddPoints(childID string, delta int) (*model.Child, error) {
	c, err := e.children.AddPoints(childID, delta)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("child %s: %w", childID, ErrNotFound)
	}
	return c, nil
}

// ResetPoints zeroes one child's balance, or every child's when childID
// is nil.
func (e *Engine) ResetPoints(childID *string) error {
	if childID == nil || *childID == "" {
		return e.children.ResetAllPoints()
	}

	c, err := e.children.ResetPoints(*childID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("child %s: %w", *childID, ErrNotFound)
	}
	return nil
}
