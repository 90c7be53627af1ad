// Package engine implements the household task/points/shop core: the task
// status machine, the points ledger, and the shop purchase pipeline. It sits
// on top of the stores and owns all domain validation; the HTTP layer and
// the rollover scheduler both drive the same operations.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/evertsen/kidschores/internal/model"
	"github.com/evertsen/kidschores/internal/store"
)

// Executor carries service-call steps out of process. Dispatch is
// fire-and-forget: it must hand the action off without waiting for the
// side effect to complete.
type Executor interface {
	Dispatch(ctx context.Context, action model.Action) error
}

// Notifier is told when a task lands in awaiting_approval. child is nil for
// unassigned tasks.
type Notifier interface {
	TaskAwaitingApproval(task *model.Task, child *model.Child)
}

type Engine struct {
	children *store.ChildStore
	tasks    *store.TaskStore
	shop     *store.ShopStore
	executor Executor
	notifier Notifier
	logger   *slog.Logger

	// Injectable for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates the engine. executor and notifier may be nil, in which case
// purchase actions and approval notifications are skipped.
func New(children *store.ChildStore, tasks *store.TaskStore, shop *store.ShopStore, executor Executor, notifier Notifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		children: children,
		tasks:    tasks,
		shop:     shop,
		executor: executor,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}
