// Package backup exports the full household state as a JSON snapshot and
// restores it, optionally encrypting snapshots and shipping them to
// S3-compatible storage.
package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/evertsen/kidschores/internal/model"
	"github.com/evertsen/kidschores/internal/store"
)

const snapshotVersion = 1

// Snapshot is a complete, self-contained export of household state.
// Restoring a snapshot reproduces every child, task, shop item, and
// purchase exactly, ids included.
type Snapshot struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Children   []model.Child     `json:"children"`
	Tasks      []model.Task      `json:"tasks"`
	ShopItems  []model.ShopItem  `json:"shop_items"`
	Purchases  []model.Purchase  `json:"purchases"`
}

// Stores bundles the stores a snapshot reads from and writes to.
type Stores struct {
	Children *store.ChildStore
	Tasks    *store.TaskStore
	Shop     *store.ShopStore
}

// Export reads the full state into a Snapshot.
func Export(st Stores) (*Snapshot, error) {
	children, err := st.Children.List()
	if err != nil {
		return nil, fmt.Errorf("export children: %w", err)
	}
	tasks, err := st.Tasks.List()
	if err != nil {
		return nil, fmt.Errorf("export tasks: %w", err)
	}
	items, err := st.Shop.ListItems()
	if err != nil {
		return nil, fmt.Errorf("export shop items: %w", err)
	}
	purchases, err := st.Shop.ListPurchases()
	if err != nil {
		return nil, fmt.Errorf("export purchases: %w", err)
	}

	return &Snapshot{
		Version:    snapshotVersion,
		ExportedAt: time.Now().UTC(),
		Children:   children,
		Tasks:      tasks,
		ShopItems:  items,
		Purchases:  purchases,
	}, nil
}

// Import replaces the full state with the snapshot's contents. Children go
// in first so the task and purchase rows they reference land on a populated
// table.
func Import(st Stores, snap *Snapshot) error {
	if snap.Version > snapshotVersion {
		return fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, snapshotVersion)
	}

	if err := st.Shop.ClearAllHistory(); err != nil {
		return err
	}
	if err := st.Shop.DeleteAllItems(); err != nil {
		return err
	}
	if err := st.Tasks.DeleteAll(); err != nil {
		return err
	}
	if err := st.Children.DeleteAll(); err != nil {
		return err
	}

	for i := range snap.Children {
		if err := st.Children.Insert(&snap.Children[i]); err != nil {
			return err
		}
	}
	for i := range snap.Tasks {
		if _, err := st.Tasks.Create(&snap.Tasks[i]); err != nil {
			return err
		}
	}
	for i := range snap.ShopItems {
		if _, err := st.Shop.CreateItem(&snap.ShopItems[i]); err != nil {
			return err
		}
	}
	for i := range snap.Purchases {
		if err := st.Shop.CreatePurchase(&snap.Purchases[i]); err != nil {
			return err
		}
	}
	return nil
}

// Encode marshals a snapshot to its stored JSON form.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a stored snapshot.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}
