package store

import (
	"testing"

	"github.com/evertsen/kidschores/internal/database"
)

// testStores opens an in-memory database with migrations applied.
func testStores(t *testing.T) (*ChildStore, *TaskStore, *ShopStore) {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewChildStore(db), NewTaskStore(db), NewShopStore(db)
}
