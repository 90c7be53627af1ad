package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/evertsen/kidschores/internal/database"
	"github.com/evertsen/kidschores/internal/model"
	"github.com/evertsen/kidschores/internal/store"
)

type fakeExecutor struct {
	mu    sync.Mutex
	calls []model.Action
}

func (f *fakeExecutor) Dispatch(ctx context.Context, a model.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, a)
	return nil
}

func (f *fakeExecutor) dispatched() []model.Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Action(nil), f.calls...)
}

type fakeNotifier struct {
	notified chan string
}

func (f *fakeNotifier) TaskAwaitingApproval(task *model.Task, child *model.Child) {
	f.notified <- task.ID
}

// newTestEngine builds an engine on an in-memory database with a recording
// executor and a no-op sleep.
func newTestEngine(t *testing.T) (*Engine, *fakeExecutor) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	exec := &fakeExecutor{}
	e := New(
		store.NewChildStore(db),
		store.NewTaskStore(db),
		store.NewShopStore(db),
		exec, nil, nil,
	)
	e.sleep = func(time.Duration) {}
	return e, exec
}
