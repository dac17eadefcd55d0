// Package repository maps domain aggregates onto the document store.
// Keys follow the patterns player:<id>, group:<id> and
// battle:<group>:<seq>.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hydrangea-games/fishpond/internal/domain"
	"github.com/hydrangea-games/fishpond/internal/store"
)

const (
	playerKeyPrefix = "player:"
	groupKeyPrefix  = "group:"
	battleKeyPrefix = "battle:"
)

// Repository reads and writes player, group and battle documents.
type Repository struct {
	store store.Store
}

// New wraps the document store.
func New(s store.Store) *Repository {
	return &Repository{store: s}
}

func playerKey(id string) string { return playerKeyPrefix + id }
func groupKey(id string) string  { return groupKeyPrefix + id }
func battleKey(groupID string, seq int) string {
	return battleKeyPrefix + groupID + ":" + strconv.Itoa(seq)
}

// GetPlayer loads the player, creating a fresh one for unknown ids.
func (r *Repository) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	data, err := r.store.Get(ctx, playerKey(id))
	if store.IsNotFound(err) {
		return domain.NewPlayer(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", id, err)
	}
	var p domain.Player
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%s (player %s): %w", domain.ErrMsgCorruptEntity, id, err)
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.Inventory == nil {
		p.Inventory = map[int]int{}
	}
	return &p, nil
}

// SavePlayer persists the player document.
func (r *Repository) SavePlayer(ctx context.Context, p *domain.Player) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal player %s: %w", p.ID, err)
	}
	return r.store.Set(ctx, playerKey(p.ID), data)
}

// GetGroup loads the group session, creating an empty pond for unknown ids.
func (r *Repository) GetGroup(ctx context.Context, id string) (*domain.GroupSession, error) {
	data, err := r.store.Get(ctx, groupKey(id))
	if store.IsNotFound(err) {
		return domain.NewGroupSession(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load group %s: %w", id, err)
	}
	var g domain.GroupSession
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%s (group %s): %w", domain.ErrMsgCorruptEntity, id, err)
	}
	if g.Buildings == nil {
		g.Buildings = map[string]*domain.BuildingState{}
	}
	return &g, nil
}

// SaveGroup persists the group session document.
func (r *Repository) SaveGroup(ctx context.Context, g *domain.GroupSession) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal group %s: %w", g.ID, err)
	}
	return r.store.Set(ctx, groupKey(g.ID), data)
}

// NextBattleSeq allocates the next battle sequence number for the group.
func (r *Repository) NextBattleSeq(ctx context.Context, groupID string) (int, error) {
	seq, err := r.store.Incr(ctx, "battle_seq:"+groupID, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate battle seq for %s: %w", groupID, err)
	}
	return int(seq), nil
}

// GetBattle loads a battle by group and sequence number.
func (r *Repository) GetBattle(ctx context.Context, groupID string, seq int) (*domain.Battle, error) {
	data, err := r.store.Get(ctx, battleKey(groupID, seq))
	if store.IsNotFound(err) {
		return nil, domain.ErrBattleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load battle %s:%d: %w", groupID, seq, err)
	}
	var b domain.Battle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("%s (battle %s:%d): %w", domain.ErrMsgCorruptEntity, groupID, seq, err)
	}
	return &b, nil
}

// SaveBattle persists the battle document.
func (r *Repository) SaveBattle(ctx context.Context, b *domain.Battle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal battle %s:%d: %w", b.GroupID, b.Seq, err)
	}
	return r.store.Set(ctx, battleKey(b.GroupID, b.Seq), data)
}

// ListGroupIDs returns every group id with a persisted pond, for the
// spawn scheduler sweep.
func (r *Repository) ListGroupIDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, groupKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to scan groups: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, groupKeyPrefix))
	}
	return ids, nil
}
