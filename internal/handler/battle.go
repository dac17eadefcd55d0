package handler

import (
	"net/http"

	"github.com/hydrangea-games/fishpond/internal/game"
	"github.com/hydrangea-games/fishpond/internal/logger"
)

// BattlePartyRequest joins, leaves or starts a raid
type BattlePartyRequest struct {
	GroupID  string `json:"group_id" validate:"required,max=100"`
	PlayerID string `json:"player_id" validate:"required,max=100"`
}

// BattleEquipRequest commits a harpoon or the fin for the raid
type BattleEquipRequest struct {
	GroupID  string `json:"group_id" validate:"required,max=100"`
	PlayerID string `json:"player_id" validate:"required,max=100"`
	ItemID   int    `json:"item_id" validate:"required,gt=0"`
}

// BattleHandler handles sea raid HTTP requests
type BattleHandler struct {
	svc game.Service
}

// NewBattleHandler creates a new battle handler
func NewBattleHandler(svc game.Service) *BattleHandler {
	return &BattleHandler{svc: svc}
}

// HandleJoin adds the player to the raid party
func (h *BattleHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var req BattlePartyRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Battle join"); err != nil {
		return
	}

	res, err := h.svc.BattleJoin(r.Context(), req.GroupID, req.PlayerID)
	respondCommand(w, r, "Battle join", res, err)
}

// HandleLeave removes the player from a not yet started raid
func (h *BattleHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	var req BattlePartyRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Battle leave"); err != nil {
		return
	}

	res, err := h.svc.BattleLeave(r.Context(), req.GroupID, req.PlayerID)
	respondCommand(w, r, "Battle leave", res, err)
}

// HandleEquip commits a harpoon or the fin for the raid
func (h *BattleHandler) HandleEquip(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req BattleEquipRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Battle equip"); err != nil {
		return
	}

	log.Info("Battle equip request received", "group_id", req.GroupID, "player_id", req.PlayerID, "item_id", req.ItemID)

	res, err := h.svc.BattleEquip(r.Context(), req.GroupID, req.PlayerID, req.ItemID)
	respondCommand(w, r, "Battle equip", res, err)
}

// HandleStart launches the raid with the current party
func (h *BattleHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req BattlePartyRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Battle start"); err != nil {
		return
	}

	log.Info("Battle start request received", "group_id", req.GroupID, "player_id", req.PlayerID)

	res, err := h.svc.BattleStart(r.Context(), req.GroupID, req.PlayerID)
	respondCommand(w, r, "Battle start", res, err)
}

// HandleStatus reports the current raid
func (h *BattleHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	groupID, ok := GetQueryParam(r, w, "group_id")
	if !ok {
		return
	}

	res, err := h.svc.BattleStatus(r.Context(), groupID)
	respondCommand(w, r, "Battle status", res, err)
}
