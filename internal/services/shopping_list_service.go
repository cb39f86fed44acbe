package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/medicaments-api/gate"
	"github.com/diewo77/medicaments-api/internal/models"
	"github.com/diewo77/medicaments-api/internal/policy"
	"github.com/diewo77/medicaments-api/validation"
)

// ShoppingListService is the shopping list engine. Every operation is scoped
// to the owner: a list that belongs to someone else behaves as if it did not exist.
type ShoppingListService struct {
	db   *gorm.DB
	gate *policy.Gate
	// unchecked lets any known status replace any other.
	unchecked bool
	now       func() time.Time
}

type ShoppingListOption func(*ShoppingListService)

// WithUncheckedTransitions disables the status transition table.
func WithUncheckedTransitions(unchecked bool) ShoppingListOption {
	return func(s *ShoppingListService) { s.unchecked = unchecked }
}

func NewShoppingListService(db *gorm.DB, g *policy.Gate, opts ...ShoppingListOption) *ShoppingListService {
	s := &ShoppingListService{db: db, gate: g, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateList opens an empty draft list for ownerID.
func (s *ShoppingListService) CreateList(ctx context.Context, ownerID uint) (*models.ShoppingList, error) {
	if err := s.gate.Authorize(ctx, policy.Subject{ClientID: ownerID}, gate.ActionCreate, policy.ResourceShoppingList, nil); err != nil {
		return nil, denied("create list", err)
	}
	list := models.ShoppingList{
		ClientID: ownerID,
		Status:   models.ListStatusDraft,
		Items:    []models.ShoppingListItem{},
	}
	if err := s.db.WithContext(ctx).Create(&list).Error; err != nil {
		return nil, storageErr("create list", err)
	}
	return &list, nil
}

// ListForOwner returns the owner's lists, newest first, with items and products.
func (s *ShoppingListService) ListForOwner(ctx context.Context, ownerID uint) ([]models.ShoppingList, error) {
	lists := []models.ShoppingList{}
	err := withItems(s.db.WithContext(ctx)).
		Where("client_id = ?", ownerID).
		Order("created_at DESC").Order("id DESC").
		Find(&lists).Error
	if err != nil {
		return nil, storageErr("list shopping lists", err)
	}
	for i := range lists {
		if lists[i].Items == nil {
			lists[i].Items = []models.ShoppingListItem{}
		}
	}
	return lists, nil
}

// Get returns one list with its items and their products.
func (s *ShoppingListService) Get(ctx context.Context, listID, ownerID uint) (*models.ShoppingList, error) {
	return s.loadOwned(ctx, withItems(s.db.WithContext(ctx)), listID, ownerID, gate.ActionView)
}

// AddItem adds quantity of a product to the list. A product already on the
// list has its quantity increased and keeps the unit price it was added at.
// The increment-or-insert is a single upsert on the (list, product) unique
// index, so concurrent additions never produce two lines for one product.
func (s *ShoppingListService) AddItem(ctx context.Context, listID, ownerID, productID uint, quantity int) (*models.ShoppingList, error) {
	v := validation.Violations{}
	if productID == 0 {
		v.Add("productId", "required")
	}
	validation.PositiveInt("quantity", quantity, v)
	if !v.Empty() {
		return nil, invalid(v)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := s.loadOwned(ctx, tx, listID, ownerID, gate.ActionUpdate)
		if err != nil {
			return err
		}
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			return storageErr(fmt.Sprintf("find product %d", productID), err)
		}

		now := s.now()
		item := models.ShoppingListItem{
			ShoppingListID: list.ID,
			ProductID:      product.ID,
			Quantity:       quantity,
			UnitPrice:      product.UnitPrice,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "shopping_list_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("shopping_list_items.quantity + ?", quantity),
				"updated_at": now,
			}),
		}).Create(&item).Error
		if err != nil {
			return storageErr("upsert list item", err)
		}
		return touch(tx, list.ID, now)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, listID, ownerID)
}

// RemoveItem deletes a line from the list. Removing a line that is not there
// is not an error; the list is returned unchanged.
func (s *ShoppingListService) RemoveItem(ctx context.Context, listID, ownerID, itemID uint) (*models.ShoppingList, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := s.loadOwned(ctx, tx, listID, ownerID, gate.ActionUpdate)
		if err != nil {
			return err
		}
		res := tx.Where("id = ? AND shopping_list_id = ?", itemID, list.ID).Delete(&models.ShoppingListItem{})
		if res.Error != nil {
			return storageErr("remove list item", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return touch(tx, list.ID, s.now())
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, listID, ownerID)
}

// SetStatus moves the list to status. Unless transitions are unchecked the
// move must be allowed by models.ListStatus.CanTransitionTo.
func (s *ShoppingListService) SetStatus(ctx context.Context, listID, ownerID uint, status models.ListStatus) (*models.ShoppingList, error) {
	if status == "" {
		return nil, invalidField("status", "required")
	}
	if !status.Valid() {
		return nil, invalidField("status", "invalid_value")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := s.loadOwned(ctx, tx, listID, ownerID, gate.ActionUpdate)
		if err != nil {
			return err
		}
		q := tx.Model(&models.ShoppingList{}).Where("id = ?", list.ID)
		if !s.unchecked {
			if !list.Status.CanTransitionTo(status) {
				return fmt.Errorf("%s to %s: %w", list.Status, status, ErrInvalidTransition)
			}
			// guards against a concurrent change between load and update
			q = q.Where("status = ?", list.Status)
		}
		res := q.Updates(map[string]any{"status": status, "updated_at": s.now()})
		if res.Error != nil {
			return storageErr("update list status", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("list %d changed concurrently: %w", list.ID, ErrConflict)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, listID, ownerID)
}

// DeleteList removes the list and its lines.
func (s *ShoppingListService) DeleteList(ctx context.Context, listID, ownerID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := s.loadOwned(ctx, tx, listID, ownerID, gate.ActionDelete)
		if err != nil {
			return err
		}
		if err := tx.Where("shopping_list_id = ?", list.ID).Delete(&models.ShoppingListItem{}).Error; err != nil {
			return storageErr("delete list items", err)
		}
		if err := tx.Delete(list).Error; err != nil {
			return storageErr("delete list", err)
		}
		return nil
	})
}

// ComputeTotal returns Σ quantity × unit price of the list.
func (s *ShoppingListService) ComputeTotal(list *models.ShoppingList) float64 {
	return models.ComputeTotal(list)
}

// loadOwned fetches a list through q and checks it against the ownership
// policy. A list owned by someone else is reported as ErrNotFound.
func (s *ShoppingListService) loadOwned(ctx context.Context, q *gorm.DB, listID, ownerID uint, action gate.Action) (*models.ShoppingList, error) {
	var list models.ShoppingList
	if err := q.First(&list, listID).Error; err != nil {
		return nil, storageErr(fmt.Sprintf("list %d", listID), err)
	}
	err := s.gate.Authorize(ctx, policy.Subject{ClientID: ownerID}, action, policy.ResourceShoppingList, &list)
	if err != nil {
		return nil, denied(fmt.Sprintf("list %d", listID), err)
	}
	if list.Items == nil {
		list.Items = []models.ShoppingListItem{}
	}
	return &list, nil
}

// denied translates a gate refusal. Forbidden becomes ErrNotFound so that
// the existence of other clients' lists is not revealed.
func denied(op string, err error) error {
	switch {
	case errors.Is(err, gate.ErrUnauthorized):
		return fmt.Errorf("%s: %w", op, ErrInvalidSession)
	case errors.Is(err, gate.ErrForbidden):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrStorage, err)
	}
}

func withItems(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("shopping_list_items.id ASC") }).
		Preload("Items.Product")
}

func touch(tx *gorm.DB, listID uint, now time.Time) error {
	err := tx.Model(&models.ShoppingList{}).Where("id = ?", listID).UpdateColumn("updated_at", now).Error
	if err != nil {
		return storageErr("touch list", err)
	}
	return nil
}
