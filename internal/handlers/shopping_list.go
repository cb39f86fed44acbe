package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/medicaments-api/httpx"
	"github.com/diewo77/medicaments-api/internal/models"
	"github.com/diewo77/medicaments-api/internal/services"
)

type ShoppingListHandler struct {
	lists *services.ShoppingListService
	log   *zap.Logger
}

func NewShoppingListHandler(lists *services.ShoppingListService, log *zap.Logger) *ShoppingListHandler {
	return &ShoppingListHandler{lists: lists, log: log}
}

// listResponse is the usual shape of a single-list answer.
func listResponse(message string, list *models.ShoppingList) map[string]any {
	body := map[string]any{
		"list":  list,
		"total": models.ComputeTotal(list),
	}
	if message != "" {
		body["message"] = message
	}
	return body
}

// Create handles POST /api/shopping-lists.
func (h *ShoppingListHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	list, err := h.lists.CreateList(r.Context(), owner)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, listResponse("Liste d'achat créée", list))
}

type listSummary struct {
	models.ShoppingList
	Total float64 `json:"total"`
}

// List handles GET /api/shopping-lists.
func (h *ShoppingListHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	lists, err := h.lists.ListForOwner(r.Context(), owner)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	out := make([]listSummary, len(lists))
	for i := range lists {
		out[i] = listSummary{ShoppingList: lists[i], Total: lists[i].Total()}
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Get handles GET /api/shopping-lists/{id}.
func (h *ShoppingListHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeInvalidID(w, "id")
		return
	}
	list, err := h.lists.Get(r.Context(), id, owner)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse("", list))
}

type addItemRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// AddItem handles POST /api/shopping-lists/{id}/items.
func (h *ShoppingListHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeInvalidID(w, "id")
		return
	}
	var req addItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	list, err := h.lists.AddItem(r.Context(), id, owner, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse("Médicament ajouté à la liste", list))
}

// RemoveItem handles DELETE /api/shopping-lists/{id}/items/{itemId}.
func (h *ShoppingListHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeInvalidID(w, "id")
		return
	}
	itemID, ok := pathID(r, "itemId")
	if !ok {
		writeInvalidID(w, "itemId")
		return
	}
	list, err := h.lists.RemoveItem(r.Context(), id, owner, itemID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse("Médicament retiré de la liste", list))
}

type statusRequest struct {
	Status models.ListStatus `json:"status"`
}

// SetStatus handles PATCH /api/shopping-lists/{id}/status.
func (h *ShoppingListHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeInvalidID(w, "id")
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	list, err := h.lists.SetStatus(r.Context(), id, owner, req.Status)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse("Statut mis à jour", list))
}

// Delete handles DELETE /api/shopping-lists/{id}.
func (h *ShoppingListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeInvalidID(w, "id")
		return
	}
	if err := h.lists.DeleteList(r.Context(), id, owner); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Liste supprimée avec succès"})
}
