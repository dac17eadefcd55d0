package handler

import (
	"net/http"
	"strings"

	"github.com/hydrangea-games/fishpond/internal/gacha"
	"github.com/hydrangea-games/fishpond/internal/game"
	"github.com/hydrangea-games/fishpond/internal/logger"
)

// GachaRequest represents a draw from a gacha table
type GachaRequest struct {
	GroupID  string `json:"group_id" validate:"required,max=100"`
	PlayerID string `json:"player_id" validate:"required,max=100"`
	Tier     string `json:"tier" validate:"omitempty,tier"`
}

// BuyRequest represents a shop purchase
type BuyRequest struct {
	GroupID  string `json:"group_id" validate:"required,max=100"`
	PlayerID string `json:"player_id" validate:"required,max=100"`
	ItemID   int    `json:"item_id" validate:"required,gt=0"`
	Count    int    `json:"count" validate:"omitempty,gt=0"`
}

// GiftRequest represents an item transfer between players
type GiftRequest struct {
	GroupID  string `json:"group_id" validate:"required,max=100"`
	FromID   string `json:"from_id" validate:"required,max=100"`
	ToID     string `json:"to_id" validate:"required,max=100,nefield=FromID"`
	ItemID   int    `json:"item_id" validate:"required,gt=0"`
	Count    int    `json:"count" validate:"omitempty,gt=0"`
}

// ShopHandler handles gacha and shop HTTP requests
type ShopHandler struct {
	svc game.Service
}

// NewShopHandler creates a new shop handler
func NewShopHandler(svc game.Service) *ShopHandler {
	return &ShopHandler{svc: svc}
}

func parseTier(name string) gacha.Tier {
	switch strings.ToLower(name) {
	case "thousand":
		return gacha.TierThousand
	case "hundred":
		return gacha.TierHundred
	case "ten":
		return gacha.TierTen
	default:
		return gacha.TierSingle
	}
}

// HandleGacha draws from the standard gold table
func (h *ShopHandler) HandleGacha(w http.ResponseWriter, r *http.Request) {
	var req GachaRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Gacha"); err != nil {
		return
	}

	res, err := h.svc.Gacha(r.Context(), req.GroupID, req.PlayerID, parseTier(req.Tier))
	respondCommand(w, r, "Gacha", res, err)
}

// HandleMysteryGacha draws from the mystic shop table
func (h *ShopHandler) HandleMysteryGacha(w http.ResponseWriter, r *http.Request) {
	var req GachaRequest
	if err := DecodeAndValidateRequest(r, w, &req, "MysteryGacha"); err != nil {
		return
	}

	res, err := h.svc.MysteryGacha(r.Context(), req.GroupID, req.PlayerID, parseTier(req.Tier))
	respondCommand(w, r, "MysteryGacha", res, err)
}

// HandleBuy purchases a shop item
func (h *ShopHandler) HandleBuy(w http.ResponseWriter, r *http.Request) {
	var req BuyRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Buy"); err != nil {
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	res, err := h.svc.Buy(r.Context(), req.GroupID, req.PlayerID, req.ItemID, req.Count)
	respondCommand(w, r, "Buy", res, err)
}

// HandleGift transfers an item to another player
func (h *ShopHandler) HandleGift(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req GiftRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Gift"); err != nil {
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	log.Info("Gift request received", "group_id", req.GroupID, "from", req.FromID, "to", req.ToID, "item_id", req.ItemID)

	res, err := h.svc.Gift(r.Context(), req.GroupID, req.FromID, req.ToID, req.ItemID, req.Count)
	respondCommand(w, r, "Gift", res, err)
}
