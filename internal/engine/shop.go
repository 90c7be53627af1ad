package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/evertsen/kidschores/internal/model"
)

// ItemParams carries the fields of an add_shop_item call.
type ItemParams struct {
	Title   string
	Price   int
	Icon    string
	Image   string
	Active  *bool
	Actions []model.Action
}

// ItemUpdate carries a partial edit; nil fields are left unchanged.
type ItemUpdate struct {
	Title   *string
	Price   *int
	Icon    *string
	Image   *string
	Active  *bool
	Actions []model.Action
}

func (e *Engine) AddShopItem(p ItemParams) (*model.ShopItem, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, fmt.Errorf("item title is required: %w", ErrInvalidArgument)
	}
	if p.Price < 0 {
		return nil, fmt.Errorf("item price must be >= 0: %w", ErrInvalidArgument)
	}

	active := true
	if p.Active != nil {
		active = *p.Active
	}

	it := &model.ShopItem{
		Title:   title,
		Price:   p.Price,
		Icon:    strings.TrimSpace(p.Icon),
		Image:   strings.TrimSpace(p.Image),
		Active:  active,
		Actions: NormalizeActions(p.Actions),
	}
	return e.shop.CreateItem(it)
}

func (e *Engine) UpdateShopItem(itemID string, u ItemUpdate) (*model.ShopItem, error) {
	it, err := e.GetShopItem(itemID)
	if err != nil {
		return nil, err
	}

	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return nil, fmt.Errorf("item title is required: %w", ErrInvalidArgument)
		}
		it.Title = title
	}
	if u.Price != nil {
		if *u.Price < 0 {
			return nil, fmt.Errorf("item price must be >= 0: %w", ErrInvalidArgument)
		}
		it.Price = *u.Price
	}
	if u.Icon != nil {
		it.Icon = strings.TrimSpace(*u.Icon)
	}
	if u.Image != nil {
		it.Image = strings.TrimSpace(*u.Image)
	}
	if u.Active != nil {
		it.Active = *u.Active
	}
	if u.Actions != nil {
		it.Actions = NormalizeActions(u.Actions)
	}

	updated, err := e.shop.UpdateItem(it)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("shop item %s: %w", itemID, ErrNotFound)
	}
	return updated, nil
}

func (e *Engine) DeleteShopItem(itemID string) error {
	if _, err := e.GetShopItem(itemID); err != nil {
		return err
	}
	return e.shop.DeleteItem(itemID)
}

// BuyShopItem spends a child's points on an item. On success the purchase
// snapshot is recorded and the item's action sequence starts on its own
// goroutine; the call returns without waiting for it.
func (e *Engine) BuyShopItem(childID, itemID string) (*model.Purchase, error) {
	child, err := e.GetChild(childID)
	if err != nil {
		return nil, err
	}
	item, err := e.GetShopItem(itemID)
	if err != nil {
		return nil, err
	}
	if !item.Active {
		return nil, fmt.Errorf("shop item %s: %w", itemID, ErrInactive)
	}
	if child.Points < item.Price {
		return nil, fmt.Errorf("child %s has %d points, item costs %d: %w",
			childID, child.Points, item.Price, ErrInsufficientFunds)
	}

	p, err := e.shop.RecordPurchase(child, item, e.now())
	if err != nil {
		return nil, err
	}
	if p == nil {
		// The guarded UPDATE rejected the spend: another purchase won the
		// balance in between.
		return nil, fmt.Errorf("child %s: %w", childID, ErrInsufficientFunds)
	}

	e.logger.Info("shop item purchased",
		"purchase_id", p.ID, "child_id", childID, "item_id", itemID, "price", item.Price)

	if len(item.Actions) > 0 && e.executor != nil {
		go e.runActions(context.Background(), p.ID, childID, itemID, item.Actions)
	}

	return p, nil
}

// ClearShopHistory deletes purchase history, for one child or for all.
func (e *Engine) ClearShopHistory(childID *string) error {
	if childID == nil || *childID == "" {
		return e.shop.ClearAllHistory()
	}
	if _, err := e.GetChild(*childID); err != nil {
		return err
	}
	return e.shop.ClearHistory(*childID)
}

func (e *Engine) GetShopItem(id string) (*model.ShopItem, error) {
	it, err := e.shop.GetItemByID(id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, fmt.Errorf("shop item %s: %w", id, ErrNotFound)
	}
	return it, nil
}

func (e *Engine) ListShopItems() ([]model.ShopItem, error) {
	return e.shop.ListItems()
}

func (e *Engine) ListPurchases() ([]model.Purchase, error) {
	return e.shop.ListPurchases()
}

func (e *Engine) ListPurchasesByChild(childID string) ([]model.Purchase, error) {
	return e.shop.ListPurchasesByChild(childID)
}

// NormalizeActions compacts an incoming action list: delays need a positive
// duration, service calls need an entity id. The domain defaults to the
// entity id prefix and the service op to turn_on. Unknown step types are
// dropped rather than rejected, so a partially bad sequence still yields a
// usable item.
func NormalizeActions(in []model.Action) []model.Action {
	var out []model.Action
	for _, a := range in {
		switch strings.ToLower(strings.TrimSpace(a.Type)) {
		case model.ActionDelay:
			if a.Seconds > 0 {
				out = append(out, model.Action{Type: model.ActionDelay, Seconds: a.Seconds})
			}
		case model.ActionService, "entity_service", "call_service":
			entity := strings.TrimSpace(a.EntityID)
			if entity == "" {
				continue
			}
			domain := strings.TrimSpace(a.Domain)
			if domain == "" {
				domain, _, _ = strings.Cut(entity, ".")
			}
			svc := strings.TrimSpace(a.Service)
			if svc == "" {
				svc = "turn_on"
			}
			out = append(out, model.Action{
				Type:     model.ActionService,
				Domain:   domain,
				Service:  svc,
				EntityID: entity,
			})
		}
	}
	return out
}
