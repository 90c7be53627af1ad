package store

import (
	"testing"
)

func TestChildCreateAndGet(t *testing.T) {
	children, _, _ := testStores(t)

	c, err := children.Create("Emma Rose")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if c.ID == "" {
		t.Error("expected generated id")
	}
	if c.Slug != "emma_rose" {
		t.Errorf("slug = %q, want emma_rose", c.Slug)
	}
	if c.Points != 0 {
		t.Errorf("points = %d, want 0", c.Points)
	}

	got, err := children.GetByID(c.ID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if got == nil || got.Name != "Emma Rose" {
		t.Errorf("got %+v, want Emma Rose", got)
	}
}

func TestChildGetMissing(t *testing.T) {
	children, _, _ := testStores(t)

	got, err := children.GetByID("nope")
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing child, got %+v", got)
	}
}

func TestChildListInsertionOrder(t *testing.T) {
	children, _, _ := testStores(t)

	for _, name := range []string{"Zoe", "Adam", "Mia"} {
		if _, err := children.Create(name); err != nil {
			t.Fatalf("create child: %v", err)
		}
	}

	list, err := children.List()
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 children, got %d", len(list))
	}
	want := []string{"Zoe", "Adam", "Mia"}
	for i, name := range want {
		if list[i].Name != name {
			t.Errorf("list[%d] = %s, want %s", i, list[i].Name, name)
		}
	}
}

func TestChildRename(t *testing.T) {
	children, _, _ := testStores(t)

	c, _ := children.Create("Emma")
	renamed, err := children.Rename(c.ID, "Emma Lou")
	if err != nil {
		t.Fatalf("rename child: %v", err)
	}
	if renamed.Name != "Emma Lou" || renamed.Slug != "emma_lou" {
		t.Errorf("renamed = %s/%s, want Emma Lou/emma_lou", renamed.Name, renamed.Slug)
	}

	missing, err := children.Rename("nope", "x")
	if err != nil {
		t.Fatalf("rename missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil renaming a missing child")
	}
}

func TestChildAddPoints(t *testing.T) {
	children, _, _ := testStores(t)

	c, _ := children.Create("Emma")

	c, err := children.AddPoints(c.ID, 10)
	if err != nil {
		t.Fatalf("add points: %v", err)
	}
	if c.Points != 10 {
		t.Errorf("points = %d, want 10", c.Points)
	}

	// Negative deltas can push the balance below zero
	c, err = children.AddPoints(c.ID, -15)
	if err != nil {
		t.Fatalf("add points: %v", err)
	}
	if c.Points != -5 {
		t.Errorf("points = %d, want -5", c.Points)
	}
}

func TestChildResetPoints(t *testing.T) {
	children, _, _ := testStores(t)

	a, _ := children.Create("Emma")
	b, _ := children.Create("Liam")
	children.AddPoints(a.ID, 10)
	children.AddPoints(b.ID, 20)

	if _, err := children.ResetPoints(a.ID); err != nil {
		t.Fatalf("reset points: %v", err)
	}

	gotA, _ := children.GetByID(a.ID)
	gotB, _ := children.GetByID(b.ID)
	if gotA.Points != 0 {
		t.Errorf("a points = %d, want 0", gotA.Points)
	}
	if gotB.Points != 20 {
		t.Errorf("b points = %d, want 20 (untouched)", gotB.Points)
	}

	if err := children.ResetAllPoints(); err != nil {
		t.Fatalf("reset all points: %v", err)
	}
	gotB, _ = children.GetByID(b.ID)
	if gotB.Points != 0 {
		t.Errorf("b points = %d, want 0 after reset all", gotB.Points)
	}
}

func TestChildDelete(t *testing.T) {
	children, _, _ := testStores(t)

	c, _ := children.Create("Emma")
	if err := children.Delete(c.ID); err != nil {
		t.Fatalf("delete child: %v", err)
	}

	got, _ := children.GetByID(c.ID)
	if got != nil {
		t.Error("expected child gone after delete")
	}
}
