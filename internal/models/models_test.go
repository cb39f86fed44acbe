package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []ShoppingListItem
		want  float64
	}{
		{"empty", nil, 0},
		{"two lines", []ShoppingListItem{{Quantity: 2, UnitPrice: 3.5}, {Quantity: 1, UnitPrice: 5.9}}, 12.9},
		{"cents do not drift", []ShoppingListItem{{Quantity: 3, UnitPrice: 0.1}, {Quantity: 1, UnitPrice: 0.2}}, 0.5},
		{"single line", []ShoppingListItem{{Quantity: 3, UnitPrice: 3.5}}, 10.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &ShoppingList{Items: tt.items}
			assert.Equal(t, tt.want, ComputeTotal(l))
			assert.Equal(t, tt.want, l.Total())
		})
	}
}

func TestComputeTotal_NilList(t *testing.T) {
	assert.Zero(t, ComputeTotal(nil))
}

func TestComputeTotal_DoesNotMutate(t *testing.T) {
	l := &ShoppingList{Items: []ShoppingListItem{{Quantity: 2, UnitPrice: 3.5}}}
	first := ComputeTotal(l)
	second := ComputeTotal(l)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, l.Items[0].Quantity)
}

func TestShoppingListItem_LineTotal(t *testing.T) {
	item := &ShoppingListItem{Quantity: 4, UnitPrice: 12.5}
	assert.Equal(t, 50.0, item.LineTotal())
}

func TestShoppingList_GetClientID(t *testing.T) {
	l := &ShoppingList{ClientID: 42}
	assert.Equal(t, uint(42), l.GetClientID())
}

func TestListStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to ListStatus
		ok       bool
	}{
		{ListStatusDraft, ListStatusPending, true},
		{ListStatusDraft, ListStatusConfirmed, true},
		{ListStatusDraft, ListStatusCancelled, true},
		{ListStatusDraft, ListStatusDelivered, false},
		{ListStatusPending, ListStatusConfirmed, true},
		{ListStatusPending, ListStatusDraft, true},
		{ListStatusConfirmed, ListStatusDelivered, true},
		{ListStatusConfirmed, ListStatusCancelled, true},
		{ListStatusConfirmed, ListStatusDraft, false},
		{ListStatusDelivered, ListStatusCancelled, false},
		{ListStatusCancelled, ListStatusDraft, false},
		{ListStatusCancelled, ListStatusCancelled, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestListStatus_ValidAndTerminal(t *testing.T) {
	for _, s := range ListStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, ListStatus("shipped").Valid())
	assert.True(t, ListStatusDelivered.Terminal())
	assert.True(t, ListStatusCancelled.Terminal())
	assert.False(t, ListStatusPending.Terminal())

	for _, from := range ListStatuses {
		if !from.Terminal() {
			continue
		}
		for _, to := range ListStatuses {
			assert.Equal(t, from == to, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestRole(t *testing.T) {
	assert.True(t, RoleHospital.Valid())
	assert.False(t, Role("Admin").Valid())
	assert.Equal(t, []string{"Hospital", "Pharmacy", "Client"}, RoleNames())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "jean@example.com", NormalizeEmail("  Jean@Example.COM "))
	assert.Equal(t, "PARA001", NormalizeCode(" para001 "))
}
