package handler

import (
	"net/http"

	"github.com/hydrangea-games/fishpond/internal/game"
	"github.com/hydrangea-games/fishpond/internal/logger"
)

// CatchRequest represents one capture attempt against the current fish
type CatchRequest struct {
	GroupID    string `json:"group_id" validate:"required,max=100"`
	PlayerID   string `json:"player_id" validate:"required,max=100"`
	MasterBall bool   `json:"master_ball"`
}

// FishingHandler handles pond and capture HTTP requests
type FishingHandler struct {
	svc game.Service
}

// NewFishingHandler creates a new fishing handler
func NewFishingHandler(svc game.Service) *FishingHandler {
	return &FishingHandler{svc: svc}
}

// HandleStatus reports the player's sheet and the pond state
func (h *FishingHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	groupID, ok := GetQueryParam(r, w, "group_id")
	if !ok {
		return
	}
	playerID, ok := GetQueryParam(r, w, "player_id")
	if !ok {
		return
	}

	res, err := h.svc.Status(r.Context(), groupID, playerID)
	respondCommand(w, r, "Status", res, err)
}

// HandleSimulateSpawn reports the display spawn distribution for the pond
func (h *FishingHandler) HandleSimulateSpawn(w http.ResponseWriter, r *http.Request) {
	groupID, ok := GetQueryParam(r, w, "group_id")
	if !ok {
		return
	}

	res, err := h.svc.SimulateSpawn(r.Context(), groupID)
	respondCommand(w, r, "SimulateSpawn", res, err)
}

// HandleCatch resolves one capture attempt
func (h *FishingHandler) HandleCatch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req CatchRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Catch"); err != nil {
		return
	}

	log.Info("Catch request received", "group_id", req.GroupID, "player_id", req.PlayerID, "master_ball", req.MasterBall)

	res, err := h.svc.Catch(r.Context(), req.GroupID, req.PlayerID, req.MasterBall)
	respondCommand(w, r, "Catch", res, err)
}
