package handler

import (
	"net/http"

	"github.com/hydrangea-games/fishpond/internal/game"
	"github.com/hydrangea-games/fishpond/internal/logger"
)

// UseItemRequest represents applying a consumable or toggling equipment.
// Args carries operation specific parameters, e.g. the talent id for a
// talent book or the accessory instance id for a dissolver.
type UseItemRequest struct {
	GroupID  string `json:"group_id" validate:"required,max=100"`
	PlayerID string `json:"player_id" validate:"required,max=100"`
	ItemID   int    `json:"item_id" validate:"required,gt=0"`
	Args     []int  `json:"args" validate:"omitempty,max=4"`
	Force    bool   `json:"force"`
}

// CraftRequest represents combining materials into an item
type CraftRequest struct {
	GroupID  string `json:"group_id" validate:"required,max=100"`
	PlayerID string `json:"player_id" validate:"required,max=100"`
	ItemID   int    `json:"item_id" validate:"required,gt=0"`
	Count    int    `json:"count" validate:"omitempty,gt=0"`
}

// ItemHandler handles item usage and crafting HTTP requests
type ItemHandler struct {
	svc game.Service
}

// NewItemHandler creates a new item handler
func NewItemHandler(svc game.Service) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// HandleUseItem applies a consumable, converts materials or toggles equipment
func (h *ItemHandler) HandleUseItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req UseItemRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Use item"); err != nil {
		return
	}

	log.Info("Use item request received", "group_id", req.GroupID, "player_id", req.PlayerID, "item_id", req.ItemID)

	res, err := h.svc.UseItem(r.Context(), req.GroupID, req.PlayerID, req.ItemID, req.Args, req.Force)
	respondCommand(w, r, "Use item", res, err)
}

// HandleCraft combines materials into an item
func (h *ItemHandler) HandleCraft(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req CraftRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Craft"); err != nil {
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	log.Info("Craft request received", "group_id", req.GroupID, "player_id", req.PlayerID, "item_id", req.ItemID, "count", req.Count)

	res, err := h.svc.Craft(r.Context(), req.GroupID, req.PlayerID, req.ItemID, req.Count)
	respondCommand(w, r, "Craft", res, err)
}
