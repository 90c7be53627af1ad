package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evertsen/kidschores/internal/model"
)

type ShopStore struct {
	db *sql.DB
}

func NewShopStore(db *sql.DB) *ShopStore {
	return &ShopStore{db: db}
}

// --- Item methods ---

const itemCols = `id, title, price, icon, image, active, actions, created_at`

func scanItem(scanner interface{ Scan(...any) error }) (*model.ShopItem, error) {
	var it model.ShopItem
	var active int
	var actions string

	err := scanner.Scan(&it.ID, &it.Title, &it.Price, &it.Icon, &it.Image, &active, &actions, &it.CreatedAt)
	if err != nil {
		return nil, err
	}

	it.Active = active != 0
	if actions != "" && actions != "[]" {
		if err := json.Unmarshal([]byte(actions), &it.Actions); err != nil {
			return nil, fmt.Errorf("decode actions: %w", err)
		}
	}
	return &it, nil
}

func encodeActions(actions []model.Action) (string, error) {
	if len(actions) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(actions)
	if err != nil {
		return "", fmt.Errorf("encode actions: %w", err)
	}
	return string(data), nil
}

func (s *ShopStore) CreateItem(it *model.ShopItem) (*model.ShopItem, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now()
	}

	actions, err := encodeActions(it.Actions)
	if err != nil {
		return nil, err
	}

	var active int
	if it.Active {
		active = 1
	}

	_, err = s.db.Exec(
		`INSERT INTO shop_items (`+itemCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.Title, it.Price, it.Icon, it.Image, active, actions, it.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert shop item: %w", err)
	}
	return s.GetItemByID(it.ID)
}

func (s *ShopStore) GetItemByID(id string) (*model.ShopItem, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM shop_items WHERE id = ?`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shop item: %w", err)
	}
	return it, nil
}

// ListItems returns all shop items in insertion order.
func (s *ShopStore) ListItems() ([]model.ShopItem, error) {
	rows, err := s.db.Query(`SELECT ` + itemCols + ` FROM shop_items ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list shop items: %w", err)
	}
	defer rows.Close()

	var items []model.ShopItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shop item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// UpdateItem writes the item row back. Returns (nil, nil) if absent.
func (s *ShopStore) UpdateItem(it *model.ShopItem) (*model.ShopItem, error) {
	actions, err := encodeActions(it.Actions)
	if err != nil {
		return nil, err
	}

	var active int
	if it.Active {
		active = 1
	}

	res, err := s.db.Exec(
		`UPDATE shop_items SET title = ?, price = ?, icon = ?, image = ?, active = ?, actions = ? WHERE id = ?`,
		it.Title, it.Price, it.Icon, it.Image, active, actions, it.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update shop item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetItemByID(it.ID)
}

func (s *ShopStore) DeleteItem(id string) error {
	_, err := s.db.Exec(`DELETE FROM shop_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shop item: %w", err)
	}
	return nil
}

func (s *ShopStore) DeleteAllItems() error {
	_, err := s.db.Exec(`DELETE FROM shop_items`)
	if err != nil {
		return fmt.Errorf("delete all shop items: %w", err)
	}
	return nil
}

// --- Purchase methods ---

const purchaseCols = `id, child_id, child_name, item_id, title, price, icon, image, ts`

func scanPurchase(scanner interface{ Scan(...any) error }) (*model.Purchase, error) {
	var p model.Purchase
	err := scanner.Scan(&p.ID, &p.ChildID, &p.ChildName, &p.ItemID, &p.Title, &p.Price, &p.Icon, &p.Image, &p.Timestamp)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RecordPurchase deducts the item price from the child and appends the
// purchase snapshot, all in one transaction. The deduction is guarded by a
// balance check inside the UPDATE, so a concurrent spend can never push the
// row below the price. Returns (nil, nil) when the guard rejects the spend.
func (s *ShopStore) RecordPurchase(child *model.Child, item *model.ShopItem, at time.Time) (*model.Purchase, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE children SET points = points - ?, updated_at = ? WHERE id = ? AND points >= ?`,
		item.Price, at, child.ID, item.Price,
	)
	if err != nil {
		return nil, fmt.Errorf("deduct points: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}

	id := uuid.NewString()
	_, err = tx.Exec(
		`INSERT INTO purchases (`+purchaseCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, child.ID, child.Name, item.ID, item.Title, item.Price, item.Icon, item.Image, at,
	)
	if err != nil {
		return nil, fmt.Errorf("insert purchase: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+purchaseCols+` FROM purchases WHERE id = ?`, id)
	p, err := scanPurchase(row)
	if err != nil {
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

// CreatePurchase inserts a purchase row verbatim (snapshot restore path).
func (s *ShopStore) CreatePurchase(p *model.Purchase) error {
	_, err := s.db.Exec(
		`INSERT INTO purchases (`+purchaseCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ChildID, p.ChildName, p.ItemID, p.Title, p.Price, p.Icon, p.Image, p.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// ListPurchases returns the full purchase history in insertion order.
func (s *ShopStore) ListPurchases() ([]model.Purchase, error) {
	rows, err := s.db.Query(`SELECT ` + purchaseCols + ` FROM purchases ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []model.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, *p)
	}
	return purchases, rows.Err()
}

func (s *ShopStore) ListPurchasesByChild(childID string) ([]model.Purchase, error) {
	rows, err := s.db.Query(
		`SELECT `+purchaseCols+` FROM purchases WHERE child_id = ? ORDER BY rowid ASC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchases by child: %w", err)
	}
	defer rows.Close()

	var purchases []model.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, *p)
	}
	return purchases, rows.Err()
}

// ClearHistory deletes purchase rows for one child.
func (s *ShopStore) ClearHistory(childID string) error {
	_, err := s.db.Exec(`DELETE FROM purchases WHERE child_id = ?`, childID)
	if err != nil {
		return fmt.Errorf("clear purchase history: %w", err)
	}
	return nil
}

// ClearAllHistory deletes the entire purchase history.
func (s *ShopStore) ClearAllHistory() error {
	_, err := s.db.Exec(`DELETE FROM purchases`)
	if err != nil {
		return fmt.Errorf("clear all purchase history: %w", err)
	}
	return nil
}
