package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/diewo77/medicaments-api/internal/models"
	"github.com/diewo77/medicaments-api/internal/policy"
	"github.com/diewo77/medicaments-api/internal/services"
)

type listFixture struct {
	db      *gorm.DB
	lists   *services.ShoppingListService
	catalog *services.CatalogService
	alice   *models.Client
	bob     *models.Client
}

func newListFixture(t *testing.T, opts ...services.ShoppingListOption) listFixture {
	t.Helper()
	db := setupTestDB(t)
	clients := services.NewClientService(db, testHasher)
	return listFixture{
		db:      db,
		lists:   services.NewShoppingListService(db, policy.NewGate(nil), opts...),
		catalog: services.NewCatalogService(db),
		alice:   createClient(t, clients, "alice", "alice@example.com"),
		bob:     createClient(t, clients, "bob", "bob@example.com"),
	}
}

func TestShoppingList_CreateList(t *testing.T) {
	f := newListFixture(t)

	list, err := f.lists.CreateList(context.Background(), f.alice.ID)
	require.NoError(t, err)
	assert.NotZero(t, list.ID)
	assert.Equal(t, f.alice.ID, list.ClientID)
	assert.Equal(t, models.ListStatusDraft, list.Status)
	assert.Empty(t, list.Items)
	assert.Zero(t, f.lists.ComputeTotal(list))

	_, err = f.lists.CreateList(context.Background(), 0)
	assert.ErrorIs(t, err, services.ErrAuth)
	assert.ErrorIs(t, err, services.ErrInvalidSession)
}

func TestShoppingList_AddSameProductMerges(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()
	para := createProduct(t, f.catalog, "PARA001", 3.5)
	list, err := f.lists.CreateList(ctx, f.alice.ID)
	require.NoError(t, err)

	list, err = f.lists.AddItem(ctx, list.ID, f.alice.ID, para.ID, 2)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 7.0, f.lists.ComputeTotal(list))

	list, err = f.lists.AddItem(ctx, list.ID, f.alice.ID, para.ID, 3)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 5, list.Items[0].Quantity)
	assert.Equal(t, para.ID, list.Items[0].ProductID)
	require.NotNil(t, list.Items[0].Product)
	assert.Equal(t, "PARA001", list.Items[0].Product.Code)
	assert.Equal(t, 17.5, list.Total())

	var rows int64
	require.NoError(t, f.db.Model(&models.ShoppingListItem{}).Where("shopping_list_id = ?", list.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestShoppingList_AddItemConcurrent(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()
	para := createProduct(t, f.catalog, "PARA001", 3.5)
	list, err := f.lists.CreateList(ctx, f.alice.ID)
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.lists.AddItem(ctx, list.ID, f.alice.ID, para.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var items []models.ShoppingListItem
	require.NoError(t, f.db.Where("shopping_list_id = ?", list.ID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, workers, items[0].Quantity)

	list, err = f.lists.Get(ctx, list.ID, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 70.0, list.Total())
}

func TestShoppingList_AddItemCapturesPrice(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()
	ibu := createProduct(t, f.catalog, "IBU001", 5.9)
	vit := createProduct(t, f.catalog, "VIT001", 8.5)
	list, err := f.lists.CreateList(ctx, f.alice.ID)
	require.NoError(t, err)

	_, err = f.lists.AddItem(ctx, list.ID, f.alice.ID, ibu.ID, 2)
	require.NoError(t, err)

	price := 7.0
	_, err = f.catalog.Update(ctx, ibu.ID, services.ProductPatch{UnitPrice: &price})
	require.NoError(t, err)

	list, err = f.lists.AddItem(ctx, list.ID, f.alice.ID, ibu.ID, 1)
	require.NoError(t, err)
	list, err = f.lists.AddItem(ctx, list.ID, f.alice.ID, vit.ID, 1)
	require.NoError(t, err)

	require.Len(t, list.Items, 2)
	assert.Equal(t, ibu.ID, list.Items[0].ProductID)
	assert.Equal(t, 5.9, list.Items[0].UnitPrice)
	assert.Equal(t, 3, list.Items[0].Quantity)
	assert.InDelta(t, 17.7, list.Items[0].LineTotal(), 1e-9)
	assert.InDelta(t, 26.2, list.Total(), 1e-9)
}

func TestShoppingList_AddItemErrors(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()
	para := createProduct(t, f.catalog, "PARA001", 3.5)
	list, err := f.lists.CreateList(ctx, f.alice.ID)
	require.NoError(t, err)

	_, err = f.lists.AddItem(ctx, list.ID, f.alice.ID, para.ID, 0)
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = f.lists.AddItem(ctx, list.ID, f.alice.ID, para.ID, -1)
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = f.lists.AddItem(ctx, list.ID, f.alice.ID, 0, 1)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = f.lists.AddItem(ctx, list.ID, f.alice.ID, 999, 1)
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = f.lists.AddItem(ctx, 999, f.alice.ID, para.ID, 1)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestShoppingList_RemoveItem(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()
	para := createProduct(t, f.catalog, "PARA001", 3.5)
	asp := createProduct(t, f.catalog, "ASP001", 4.2)
	list, err := f.lists.CreateList(ctx, f.alice.ID)
	require.NoError(t, err)
	_, err = f.lists.AddItem(ctx, list.ID, f.alice.ID, para.ID, 1)
	require.NoError(t, err)
	list, err = f.lists.AddItem(ctx, list.ID, f.alice.ID, asp.ID, 1)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)

	list, err = f.lists.RemoveItem(ctx, list.ID, f.alice.ID, list.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, asp.ID, list.Items[0].ProductID)

	unchanged, err := f.lists.RemoveItem(ctx, list.ID, f.alice.ID, 12345)
	require.NoError(t, err)
	assert.Equal(t, list.Items, unchanged.Items)
}

func TestShoppingList_OtherOwnerSeesNotFound(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()
	para := createProduct(t, f.catalog, "PARA001", 3.5)
	list, err := f.lists.CreateList(ctx, f.alice.ID)
	require.NoError(t, err)
	list, err = f.lists.AddItem(ctx, list.ID, f.alice.ID, para.ID, 1)
	require.NoError(t, err)

	_, err = f.lists.Get(ctx, list.ID, f.bob.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = f.lists.AddItem(ctx, list.ID, f.bob.ID, para.ID, 1)
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = f.lists.RemoveItem(ctx, list.ID, f.bob.ID, list.Items[0].ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = f.lists.SetStatus(ctx, list.ID, f.bob.ID, models.ListStatusCancelled)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.ErrorIs(t, f.lists.DeleteList(ctx, list.ID, f.bob.ID), services.ErrNotFound)

	bobs, err := f.lists.ListForOwner(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobs)

	got, err := f.lists.Get(ctx, list.ID, f.alice.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
	assert.Equal(t, models.ListStatusDraft, got.Status)
}

func TestShoppingList_ListForOwnerNewestFirst(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()
	first, err := f.lists.CreateList(ctx, f.alice.ID)
	require.NoError(t, err)
	second, err := f.lists.CreateList(ctx, f.alice.ID)
	require.NoError(t, err)
	_, err = f.lists.CreateList(ctx, f.bob.ID)
	require.NoError(t, err)

	lists, err := f.lists.ListForOwner(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, second.ID, lists[0].ID)
	assert.Equal(t, first.ID, lists[1].ID)
	assert.NotNil(t, lists[0].Items)
}

func TestShoppingList_SetStatusTransitions(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()
	list, err := f.lists.CreateList(ctx, f.alice.ID)
	require.NoError(t, err)

	_, err = f.lists.SetStatus(ctx, list.ID, f.alice.ID, "shipped")
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = f.lists.SetStatus(ctx, list.ID, f.alice.ID, "")
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = f.lists.SetStatus(ctx, list.ID, f.alice.ID, models.ListStatusDelivered)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
	assert.ErrorIs(t, err, services.ErrConflict)

	for _, next := range []models.ListStatus{
		models.ListStatusPending,
		models.ListStatusPending,
		models.ListStatusConfirmed,
		models.ListStatusDelivered,
	} {
		list, err = f.lists.SetStatus(ctx, list.ID, f.alice.ID, next)
		require.NoError(t, err, next)
		assert.Equal(t, next, list.Status)
	}

	_, err = f.lists.SetStatus(ctx, list.ID, f.alice.ID, models.ListStatusCancelled)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	got, err := f.lists.Get(ctx, list.ID, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListStatusDelivered, got.Status)
}

func TestShoppingList_SetStatusUnchecked(t *testing.T) {
	f := newListFixture(t, services.WithUncheckedTransitions(true))
	ctx := context.Background()
	list, err := f.lists.CreateList(ctx, f.alice.ID)
	require.NoError(t, err)

	for _, next := range []models.ListStatus{
		models.ListStatusDelivered,
		models.ListStatusDraft,
		models.ListStatusCancelled,
		models.ListStatusConfirmed,
	} {
		list, err = f.lists.SetStatus(ctx, list.ID, f.alice.ID, next)
		require.NoError(t, err, next)
		assert.Equal(t, next, list.Status)
	}

	_, err = f.lists.SetStatus(ctx, list.ID, f.alice.ID, "unknown")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestShoppingList_DeleteList(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()
	para := createProduct(t, f.catalog, "PARA001", 3.5)
	list, err := f.lists.CreateList(ctx, f.alice.ID)
	require.NoError(t, err)
	_, err = f.lists.AddItem(ctx, list.ID, f.alice.ID, para.ID, 4)
	require.NoError(t, err)

	require.NoError(t, f.lists.DeleteList(ctx, list.ID, f.alice.ID))

	_, err = f.lists.Get(ctx, list.ID, f.alice.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.ErrorIs(t, f.lists.DeleteList(ctx, list.ID, f.alice.ID), services.ErrNotFound)

	var rows int64
	require.NoError(t, f.db.Model(&models.ShoppingListItem{}).Count(&rows).Error)
	assert.Zero(t, rows)

	// the product itself is untouched
	_, err = f.catalog.Get(ctx, para.ID)
	assert.NoError(t, err)
}
