package handler

import (
	"net/http"

	"github.com/hydrangea-games/fishpond/internal/game"
	"github.com/hydrangea-games/fishpond/internal/logger"
)

// AddMaterialRequest banks materials toward a building's next level
type AddMaterialRequest struct {
	GroupID    string `json:"group_id" validate:"required,max=100"`
	PlayerID   string `json:"player_id" validate:"required,max=100"`
	BuildingID string `json:"building_id" validate:"required,max=50"`
	ItemID     int    `json:"item_id" validate:"required,gt=0"`
	Count      int    `json:"count" validate:"omitempty,gt=0"`
}

// UpgradeBuildingRequest advances a building once its materials are banked
type UpgradeBuildingRequest struct {
	GroupID    string `json:"group_id" validate:"required,max=100"`
	PlayerID   string `json:"player_id" validate:"required,max=100"`
	BuildingID string `json:"building_id" validate:"required,max=50"`
}

// PotAddRequest fuels the big pot with fish materials
type PotAddRequest struct {
	GroupID  string `json:"group_id" validate:"required,max=100"`
	PlayerID string `json:"player_id" validate:"required,max=100"`
	ItemID   int    `json:"item_id" validate:"required,gt=0"`
	Count    int    `json:"count" validate:"omitempty,gt=0"`
}

// SignInRequest claims the daily statue hand-out
type SignInRequest struct {
	GroupID  string `json:"group_id" validate:"required,max=100"`
	PlayerID string `json:"player_id" validate:"required,max=100"`
}

// TownHandler handles building, pot and sign-in HTTP requests
type TownHandler struct {
	svc game.Service
}

// NewTownHandler creates a new town handler
func NewTownHandler(svc game.Service) *TownHandler {
	return &TownHandler{svc: svc}
}

// HandleBuildingStatus reports every building's level and upgrade progress
func (h *TownHandler) HandleBuildingStatus(w http.ResponseWriter, r *http.Request) {
	groupID, ok := GetQueryParam(r, w, "group_id")
	if !ok {
		return
	}

	res, err := h.svc.BuildingStatus(r.Context(), groupID)
	respondCommand(w, r, "Building status", res, err)
}

// HandleAddMaterial banks materials toward a building's next level
func (h *TownHandler) HandleAddMaterial(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req AddMaterialRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Add building material"); err != nil {
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	log.Info("Add building material request received",
		"group_id", req.GroupID, "player_id", req.PlayerID,
		"building_id", req.BuildingID, "item_id", req.ItemID, "count", req.Count)

	res, err := h.svc.AddBuildingMaterial(r.Context(), req.GroupID, req.PlayerID, req.BuildingID, req.ItemID, req.Count)
	respondCommand(w, r, "Add building material", res, err)
}

// HandleUpgradeBuilding advances a building once its materials are banked
func (h *TownHandler) HandleUpgradeBuilding(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req UpgradeBuildingRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Upgrade building"); err != nil {
		return
	}

	log.Info("Upgrade building request received",
		"group_id", req.GroupID, "player_id", req.PlayerID, "building_id", req.BuildingID)

	res, err := h.svc.UpgradeBuilding(r.Context(), req.GroupID, req.PlayerID, req.BuildingID)
	respondCommand(w, r, "Upgrade building", res, err)
}

// HandlePotAdd fuels the big pot
func (h *TownHandler) HandlePotAdd(w http.ResponseWriter, r *http.Request) {
	var req PotAddRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Pot add"); err != nil {
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	res, err := h.svc.PotAdd(r.Context(), req.GroupID, req.PlayerID, req.ItemID, req.Count)
	respondCommand(w, r, "Pot add", res, err)
}

// HandlePotStatus reports the big pot's fuel and boosts
func (h *TownHandler) HandlePotStatus(w http.ResponseWriter, r *http.Request) {
	groupID, ok := GetQueryParam(r, w, "group_id")
	if !ok {
		return
	}

	res, err := h.svc.PotStatus(r.Context(), groupID)
	respondCommand(w, r, "Pot status", res, err)
}

// HandleSignIn claims the daily statue hand-out
func (h *TownHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Sign in"); err != nil {
		return
	}

	res, err := h.svc.SignIn(r.Context(), req.GroupID, req.PlayerID)
	respondCommand(w, r, "Sign in", res, err)
}
