package store

import (
	"testing"
	"time"

	"github.com/evertsen/kidschores/internal/model"
)

func TestShopItemCreateAndGet(t *testing.T) {
	_, _, shop := testStores(t)

	item, err := shop.CreateItem(&model.ShopItem{
		Title:  "Ice cream",
		Price:  15,
		Active: true,
		Actions: []model.Action{
			{Type: model.ActionService, Domain: "light", Service: "turn_on", EntityID: "light.kitchen"},
			{Type: model.ActionDelay, Seconds: 30},
		},
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.ID == "" {
		t.Error("expected generated id")
	}

	got, err := shop.GetItemByID(item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got == nil || got.Title != "Ice cream" || !got.Active {
		t.Errorf("got %+v", got)
	}
	if len(got.Actions) != 2 || got.Actions[1].Seconds != 30 {
		t.Errorf("actions lost on round trip: %+v", got.Actions)
	}
}

func TestShopItemUpdateMissing(t *testing.T) {
	_, _, shop := testStores(t)

	got, err := shop.UpdateItem(&model.ShopItem{ID: "nope", Title: "x"})
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if got != nil {
		t.Error("expected nil updating a missing item")
	}
}

func TestRecordPurchaseDeductsAndSnapshots(t *testing.T) {
	children, _, shop := testStores(t)

	child, _ := children.Create("Emma")
	children.AddPoints(child.ID, 20)
	child, _ = children.GetByID(child.ID)

	item, _ := shop.CreateItem(&model.ShopItem{Title: "Movie", Price: 15, Active: true})

	p, err := shop.RecordPurchase(child, item, time.Now())
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}
	if p == nil {
		t.Fatal("expected purchase, got nil")
	}
	if p.ChildName != "Emma" || p.Title != "Movie" || p.Price != 15 {
		t.Errorf("purchase snapshot = %+v", p)
	}

	got, _ := children.GetByID(child.ID)
	if got.Points != 5 {
		t.Errorf("points = %d, want 5", got.Points)
	}
}

func TestRecordPurchaseGuardRejectsOverdraft(t *testing.T) {
	children, _, shop := testStores(t)

	child, _ := children.Create("Emma")
	children.AddPoints(child.ID, 10)
	child, _ = children.GetByID(child.ID)

	item, _ := shop.CreateItem(&model.ShopItem{Title: "Movie", Price: 15, Active: true})

	p, err := shop.RecordPurchase(child, item, time.Now())
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}
	if p != nil {
		t.Fatal("expected guard to reject the spend")
	}

	// Balance and history untouched
	got, _ := children.GetByID(child.ID)
	if got.Points != 10 {
		t.Errorf("points = %d, want 10", got.Points)
	}
	purchases, _ := shop.ListPurchases()
	if len(purchases) != 0 {
		t.Errorf("expected no purchases, got %d", len(purchases))
	}
}

func TestPurchaseSnapshotSurvivesItemChanges(t *testing.T) {
	children, _, shop := testStores(t)

	child, _ := children.Create("Emma")
	children.AddPoints(child.ID, 50)
	child, _ = children.GetByID(child.ID)

	item, _ := shop.CreateItem(&model.ShopItem{Title: "Movie", Price: 15, Icon: "mdi:movie", Active: true})
	p, _ := shop.RecordPurchase(child, item, time.Now())

	item.Title = "Movie night deluxe"
	item.Price = 99
	shop.UpdateItem(item)
	children.Rename(child.ID, "Emmaline")

	purchases, err := shop.ListPurchasesByChild(child.ID)
	if err != nil {
		t.Fatalf("list purchases: %v", err)
	}
	if len(purchases) != 1 {
		t.Fatalf("expected 1 purchase, got %d", len(purchases))
	}
	if purchases[0].Title != "Movie" || purchases[0].Price != 15 || purchases[0].ChildName != "Emma" {
		t.Errorf("snapshot mutated: %+v", purchases[0])
	}
	if purchases[0].ID != p.ID {
		t.Errorf("purchase id changed: %s != %s", purchases[0].ID, p.ID)
	}
}

func TestClearHistory(t *testing.T) {
	children, _, shop := testStores(t)

	a, _ := children.Create("Emma")
	b, _ := children.Create("Liam")
	children.AddPoints(a.ID, 100)
	children.AddPoints(b.ID, 100)
	a, _ = children.GetByID(a.ID)
	b, _ = children.GetByID(b.ID)

	item, _ := shop.CreateItem(&model.ShopItem{Title: "Candy", Price: 5, Active: true})
	shop.RecordPurchase(a, item, time.Now())
	shop.RecordPurchase(b, item, time.Now())

	if err := shop.ClearHistory(a.ID); err != nil {
		t.Fatalf("clear history: %v", err)
	}

	all, _ := shop.ListPurchases()
	if len(all) != 1 || all[0].ChildID != b.ID {
		t.Errorf("expected only Liam's purchase left, got %+v", all)
	}

	if err := shop.ClearAllHistory(); err != nil {
		t.Fatalf("clear all history: %v", err)
	}
	all, _ = shop.ListPurchases()
	if len(all) != 0 {
		t.Errorf("expected empty history, got %d", len(all))
	}
}
