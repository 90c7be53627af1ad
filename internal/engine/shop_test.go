package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/evertsen/kidschores/internal/model"
)

func TestBuyShopItem(t *testing.T) {
	e, _ := newTestEngine(t)

	child, _ := e.AddChild("Emma")
	e.AddPoints(child.ID, 20)
	item, err := e.AddShopItem(ItemParams{Title: "Movie night", Price: 15})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	p, err := e.BuyShopItem(child.ID, item.ID)
	if err != nil {
		t.Fatalf("buy item: %v", err)
	}
	if p.Price != 15 || p.ChildName != "Emma" || p.Title != "Movie night" {
		t.Errorf("purchase = %+v", p)
	}

	got, _ := e.GetChild(child.ID)
	if got.Points != 5 {
		t.Errorf("points = %d, want 5", got.Points)
	}
}

func TestBuyShopItemErrors(t *testing.T) {
	e, _ := newTestEngine(t)

	child, _ := e.AddChild("Emma")
	e.AddPoints(child.ID, 5)

	inactive := false
	dark, _ := e.AddShopItem(ItemParams{Title: "Hidden", Price: 1, Active: &inactive})
	pricey, _ := e.AddShopItem(ItemParams{Title: "Bike", Price: 500})

	if _, err := e.BuyShopItem("nope", pricey.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown child: got %v", err)
	}
	if _, err := e.BuyShopItem(child.ID, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown item: got %v", err)
	}
	if _, err := e.BuyShopItem(child.ID, dark.ID); !errors.Is(err, ErrInactive) {
		t.Errorf("inactive item: got %v", err)
	}
	if _, err := e.BuyShopItem(child.ID, pricey.ID); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("insufficient funds: got %v", err)
	}

	// Nothing was spent or recorded
	got, _ := e.GetChild(child.ID)
	if got.Points != 5 {
		t.Errorf("points = %d, want 5", got.Points)
	}
	purchases, _ := e.ListPurchases()
	if len(purchases) != 0 {
		t.Errorf("expected no purchases, got %d", len(purchases))
	}
}

func TestRunActionsDispatchesInOrder(t *testing.T) {
	e, exec := newTestEngine(t)

	var slept []time.Duration
	e.sleep = func(d time.Duration) { slept = append(slept, d) }

	child, _ := e.AddChild("Emma")
	item, _ := e.AddShopItem(ItemParams{Title: "Disco", Price: 0, Actions: []model.Action{
		{Type: model.ActionService, EntityID: "light.bedroom"},
		{Type: model.ActionDelay, Seconds: 30},
		{Type: model.ActionService, Domain: "switch", Service: "turn_off", EntityID: "switch.fan"},
	}})

	e.runActions(context.Background(), "p1", child.ID, item.ID, item.Actions)

	calls := exec.dispatched()
	if len(calls) != 2 {
		t.Fatalf("expected 2 dispatches, got %d", len(calls))
	}
	if calls[0].EntityID != "light.bedroom" || calls[1].EntityID != "switch.fan" {
		t.Errorf("dispatch order wrong: %+v", calls)
	}
	if len(slept) != 1 || slept[0] != 30*time.Second {
		t.Errorf("slept = %v, want [30s]", slept)
	}
}

func TestRunActionsHaltsWhenChildDeleted(t *testing.T) {
	e, exec := newTestEngine(t)

	child, _ := e.AddChild("Emma")
	item, _ := e.AddShopItem(ItemParams{Title: "Disco", Price: 0, Actions: []model.Action{
		{Type: model.ActionService, EntityID: "light.a"},
		{Type: model.ActionDelay, Seconds: 1},
		{Type: model.ActionService, EntityID: "light.b"},
	}})

	// Delete the child during the delay step
	e.sleep = func(time.Duration) {
		e.children.Delete(child.ID)
	}

	e.runActions(context.Background(), "p1", child.ID, item.ID, item.Actions)

	calls := exec.dispatched()
	if len(calls) != 1 || calls[0].EntityID != "light.a" {
		t.Errorf("expected pipeline to halt after first step, got %+v", calls)
	}
}

func TestRunActionsHaltsWhenItemDeleted(t *testing.T) {
	e, exec := newTestEngine(t)

	child, _ := e.AddChild("Emma")
	item, _ := e.AddShopItem(ItemParams{Title: "Disco", Price: 0, Actions: []model.Action{
		{Type: model.ActionService, EntityID: "light.a"},
		{Type: model.ActionDelay, Seconds: 1},
		{Type: model.ActionService, EntityID: "light.b"},
	}})

	e.sleep = func(time.Duration) {
		e.DeleteShopItem(item.ID)
	}

	e.runActions(context.Background(), "p1", child.ID, item.ID, item.Actions)

	calls := exec.dispatched()
	if len(calls) != 1 {
		t.Errorf("expected pipeline to halt after first step, got %+v", calls)
	}
}

func TestNormalizeActions(t *testing.T) {
	in := []model.Action{
		{Type: "service", EntityID: "light.kitchen"},
		{Type: "delay", Seconds: 10},
		{Type: "delay", Seconds: 0},
		{Type: "service", EntityID: ""},
		{Type: "service", Domain: "media_player", Service: "play", EntityID: "media_player.tv"},
		{Type: "teleport", EntityID: "light.kitchen"},
	}

	got := NormalizeActions(in)
	want := []model.Action{
		{Type: model.ActionService, Domain: "light", Service: "turn_on", EntityID: "light.kitchen"},
		{Type: model.ActionDelay, Seconds: 10},
		{Type: model.ActionService, Domain: "media_player", Service: "play", EntityID: "media_player.tv"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestUpdateShopItemPartial(t *testing.T) {
	e, _ := newTestEngine(t)

	item, _ := e.AddShopItem(ItemParams{Title: "Candy", Price: 5, Icon: "mdi:candy"})

	newPrice := 8
	got, err := e.UpdateShopItem(item.ID, ItemUpdate{Price: &newPrice})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if got.Price != 8 || got.Title != "Candy" || got.Icon != "mdi:candy" {
		t.Errorf("partial update clobbered fields: %+v", got)
	}

	bad := -1
	if _, err := e.UpdateShopItem(item.ID, ItemUpdate{Price: &bad}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestPurchaseSnapshotIgnoresLaterEdits(t *testing.T) {
	e, _ := newTestEngine(t)

	child, _ := e.AddChild("Emma")
	e.AddPoints(child.ID, 50)
	item, _ := e.AddShopItem(ItemParams{Title: "Candy", Price: 5, Icon: "mdi:candy"})

	p, err := e.BuyShopItem(child.ID, item.ID)
	if err != nil {
		t.Fatalf("buy item: %v", err)
	}

	newTitle := "Chocolate"
	newPrice := 9
	if _, err := e.UpdateShopItem(item.ID, ItemUpdate{Title: &newTitle, Price: &newPrice}); err != nil {
		t.Fatalf("update item: %v", err)
	}

	purchases, _ := e.ListPurchases()
	if len(purchases) != 1 {
		t.Fatalf("expected 1 purchase, got %d", len(purchases))
	}
	got := purchases[0]
	if got.ID != p.ID || got.Title != "Candy" || got.Price != 5 || got.Icon != "mdi:candy" {
		t.Errorf("purchase snapshot changed after item edit: %+v", got)
	}
}

func TestClearShopHistory(t *testing.T) {
	e, _ := newTestEngine(t)

	child, _ := e.AddChild("Emma")
	e.AddPoints(child.ID, 100)
	item, _ := e.AddShopItem(ItemParams{Title: "Candy", Price: 5})
	e.BuyShopItem(child.ID, item.ID)

	unknown := "nope"
	if err := e.ClearShopHistory(&unknown); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := e.ClearShopHistory(&child.ID); err != nil {
		t.Fatalf("clear history: %v", err)
	}
	purchases, _ := e.ListPurchases()
	if len(purchases) != 0 {
		t.Errorf("expected empty history, got %d", len(purchases))
	}
}
