package engine

import (
	"fmt"
	"strings"

	"github.com/evertsen/kidschores/internal/model"
)

func (e *Engine) AddChild(name string) (*model.Child, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("child name is required: %w", ErrInvalidArgument)
	}
	return e.children.Create(name)
}

func (e *Engine) RenameChild(id, newName string) (*model.Child, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("child name is required: %w", ErrInvalidArgument)
	}

	c, err := e.children.Rename(id, newName)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("child %s: %w", id, ErrNotFound)
	}
	return c, nil
}

// RemoveChild deletes the child and unassigns any tasks pointing at it,
// atomically. Purchase history keeps its child_id snapshot; a template's
// repeat target is left to dangle until the next orphan sweep, matching
// the rollover failure policy.
func (e *Engine) RemoveChild(id string) error {
	c, err := e.children.GetByID(id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("child %s: %w", id, ErrNotFound)
	}

	if err := e.children.DeleteCascade(id); err != nil {
		return err
	}

	e.logger.Info("child removed", "child_id", id, "name", c.Name)
	return nil
}

func (e *Engine) GetChild(id string) (*model.Child, error) {
	c, err := e.children.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("child %s: %w", id, ErrNotFound)
	}
	return c, nil
}

func (e *Engine) ListChildren() ([]model.Child, error) {
	return e.children.List()
}
