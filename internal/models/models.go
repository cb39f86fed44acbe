// Package models holds the GORM models of the ordering backend.
package models

// All returns every model managed by AutoMigrate, in dependency order.
func All() []any {
	return []any{&Client{}, &Product{}, &ShoppingList{}, &ShoppingListItem{}, &RevokedToken{}}
}
