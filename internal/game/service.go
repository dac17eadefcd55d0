// Package game wires the catalog, the engines and the repository into the
// command surface the HTTP handlers and the scheduler call. Commands
// serialize through the lock manager on their group key plus a key per
// player document they mutate. Expected gameplay rejections come back as
// CommandResult codes; errors are reserved for catalog and store trouble.
package game

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/hydrangea-games/fishpond/internal/buildings"
	"github.com/hydrangea-games/fishpond/internal/catalog"
	"github.com/hydrangea-games/fishpond/internal/catch"
	"github.com/hydrangea-games/fishpond/internal/concurrency"
	"github.com/hydrangea-games/fishpond/internal/domain"
	"github.com/hydrangea-games/fishpond/internal/effects"
	"github.com/hydrangea-games/fishpond/internal/gacha"
	"github.com/hydrangea-games/fishpond/internal/oversea"
	"github.com/hydrangea-games/fishpond/internal/repository"
	"github.com/hydrangea-games/fishpond/internal/spawn"
)

// Service defines the fishpond business logic.
type Service interface {
	// Status reports the player's sheet and the pond state.
	Status(ctx context.Context, groupID, playerID string) (domain.CommandResult, error)
	// SimulateSpawn reports the display spawn distribution for the pond.
	SimulateSpawn(ctx context.Context, groupID string) (domain.CommandResult, error)
	// Catch resolves one capture attempt against the current fish.
	Catch(ctx context.Context, groupID, playerID string, masterBall bool) (domain.CommandResult, error)

	// Gacha draws from the standard gold table.
	Gacha(ctx context.Context, groupID, playerID string, tier gacha.Tier) (domain.CommandResult, error)
	// MysteryGacha draws from the mystic shop table.
	MysteryGacha(ctx context.Context, groupID, playerID string, tier gacha.Tier) (domain.CommandResult, error)
	// Buy purchases a shop item.
	Buy(ctx context.Context, groupID, playerID string, itemID, count int) (domain.CommandResult, error)
	// Gift transfers an item to another player.
	Gift(ctx context.Context, groupID, fromID, toID string, itemID, count int) (domain.CommandResult, error)
	// UseItem applies a consumable, converts materials or toggles equipment.
	UseItem(ctx context.Context, groupID, playerID string, itemID int, args []int, force bool) (domain.CommandResult, error)
	// Craft combines materials into an item.
	Craft(ctx context.Context, groupID, playerID string, itemID, count int) (domain.CommandResult, error)

	// BuildingStatus reports every building's level and upgrade progress.
	BuildingStatus(ctx context.Context, groupID string) (domain.CommandResult, error)
	// AddBuildingMaterial banks materials toward a building's next level.
	AddBuildingMaterial(ctx context.Context, groupID, playerID, buildingID string, itemID, count int) (domain.CommandResult, error)
	// UpgradeBuilding advances a building once its materials are banked.
	UpgradeBuilding(ctx context.Context, groupID, playerID, buildingID string) (domain.CommandResult, error)
	// PotAdd fuels the big pot with fish materials.
	PotAdd(ctx context.Context, groupID, playerID string, itemID, count int) (domain.CommandResult, error)
	// PotStatus reports the big pot's fuel and boosts.
	PotStatus(ctx context.Context, groupID string) (domain.CommandResult, error)
	// SignIn claims the daily statue hand-out.
	SignIn(ctx context.Context, groupID, playerID string) (domain.CommandResult, error)

	// BattleJoin adds the player to the raid party.
	BattleJoin(ctx context.Context, groupID, playerID string) (domain.CommandResult, error)
	// BattleLeave removes the player from a not yet started raid.
	BattleLeave(ctx context.Context, groupID, playerID string) (domain.CommandResult, error)
	// BattleEquip commits a harpoon or the fin for the raid.
	BattleEquip(ctx context.Context, groupID, playerID string, itemID int) (domain.CommandResult, error)
	// BattleStart launches the raid with the current party.
	BattleStart(ctx context.Context, groupID, playerID string) (domain.CommandResult, error)
	// BattleStatus reports the current raid.
	BattleStatus(ctx context.Context, groupID string) (domain.CommandResult, error)

	// SpawnTick advances every pond one scheduler tick.
	SpawnTick(ctx context.Context) error
	// FeverCheck rolls the evening fever for every pond.
	FeverCheck(ctx context.Context) error
	// BattleSpawnCheck rolls the hourly sea monster for every port.
	BattleSpawnCheck(ctx context.Context) error
	// BattleTick advances every fighting raid one round.
	BattleTick(ctx context.Context) error
}

type service struct {
	repo  *repository.Repository
	cat   *catalog.Catalog
	locks *concurrency.LockManager

	// The engines share one random stream; rngMu serializes rolls across
	// command goroutines.
	rngMu   sync.Mutex
	rng     *rand.Rand
	spawner *spawn.Engine
	drawer  *gacha.Engine
	raids   *oversea.Engine

	now func() time.Time
}

// NewService creates a new game service seeded for randomness.
func NewService(repo *repository.Repository, cat *catalog.Catalog, locks *concurrency.LockManager, seed int64) Service {
	return NewServiceAt(repo, cat, locks, seed, time.Now)
}

// NewServiceAt pins the service clock. Tests use it to step time.
func NewServiceAt(repo *repository.Repository, cat *catalog.Catalog, locks *concurrency.LockManager, seed int64, now func() time.Time) Service {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // game randomness, not crypto
	return &service{
		repo:    repo,
		cat:     cat,
		locks:   locks,
		rng:     rng,
		spawner: spawn.NewEngineFrom(rng),
		drawer:  gacha.NewEngineFrom(rng),
		raids:   oversea.NewEngineFrom(rng),
		now:     now,
	}
}

func dateOf(t time.Time) string { return t.Format("2006-01-02") }
func hourKey(t time.Time) string { return t.Format("2006-01-02-15") }

// lockCommand serializes a command on its group and on the player documents
// it touches. Player documents are keyed by player id alone and shared
// across ponds, so the group lock by itself cannot stop two ponds from
// racing a load-modify-save on the same sheet. The group lock is always
// taken first and player locks follow in sorted id order; no code path
// takes a group lock while holding a player lock, so the order is
// deadlock-free. Returns the matching unlock.
func (s *service) lockCommand(groupID string, playerIDs ...string) func() {
	group := s.locks.GetLock("group:" + groupID)
	group.Lock()
	players := s.lockPlayers(playerIDs...)
	return func() {
		players()
		group.Unlock()
	}
}

// lockPlayers takes one lock per distinct player id, in sorted order.
// Commands that only learn the affected players after loading state (a raid
// party, for one) call this while already holding the group lock.
func (s *service) lockPlayers(playerIDs ...string) func() {
	ids := append([]string(nil), playerIDs...)
	sort.Strings(ids)
	held := make([]*sync.Mutex, 0, len(ids))
	prev := ""
	for _, id := range ids {
		if id == "" || id == prev {
			continue
		}
		prev = id
		l := s.locks.GetLock("player:" + id)
		l.Lock()
		held = append(held, l)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

// refreshGroup applies lazy time-driven state: the daily feed reset and the
// big pot's fuel burn. Buff expiry is filtered where buffs are read.
func (s *service) refreshGroup(g *domain.GroupSession, now time.Time) {
	if g.FeedDay != now.Day() {
		g.FeedDay = now.Day()
		g.FeedTime = 0
	}
	if !g.InFever(now.Unix()) && len(g.FeverFishIDs) > 0 {
		g.FeverFishIDs = nil
	}
	if g.BuildingLevel(domain.BuildingBigPot) > 0 {
		if g.PotConsumeAt == 0 {
			g.PotConsumeAt = now.Unix() + buildings.PotConsumeInterval
		}
		for g.PotConsumeAt < now.Unix() {
			g.PotConsumeAt += buildings.PotConsumeInterval
			burn := buildings.PotConsumeSpeed(g.PotFuel)
			if burn > g.PotFuel {
				burn = g.PotFuel
			}
			g.PotFuel -= burn
		}
	}
}

// raidsLeft returns the player's remaining raid joins today, resetting the
// daily window on first touch.
func raidsLeft(p *domain.Player, today string, portLevel int) int {
	if p.RaidDate != today {
		p.RaidDate = today
		p.RaidCount = 0
	}
	return buildings.PortDailyRaids(portLevel) - p.RaidCount
}

// renewFailRate returns the accessory dissolve fail chance, resetting the
// daily window on first touch.
func renewFailRate(p *domain.Player, today string) float64 {
	if p.RenewDate != today {
		p.RenewDate = today
		p.RenewCount = 0
	}
	return float64(p.RenewCount) * 0.05
}

// talentLevelFn builds the talent level lookup the catch math uses.
func (s *service) talentLevelFn(p *domain.Player) func(id int) int {
	return func(id int) int {
		t, ok := s.cat.Talent(id)
		if !ok {
			return 0
		}
		return t.LevelAt(p.TalentExp[id])
	}
}

// averagePower resolves the pond's average power: the mean member power
// (fever power during fever) plus pot boosts and glow stick buffs.
func (s *service) averagePower(ctx context.Context, g *domain.GroupSession, now time.Time) (float64, error) {
	total := 0.0
	for _, id := range g.Members {
		p, err := s.repo.GetPlayer(ctx, id)
		if err != nil {
			return 0, err
		}
		ectx := effects.Aggregate(s.cat, p)
		if g.InFever(now.Unix()) {
			total += float64(catch.FeverPower(s.cat, p, ectx, now.Unix()))
		} else {
			total += float64(catch.PlayerPower(s.cat, p, ectx, now.Unix()))
		}
	}
	avg := 0.0
	if len(g.Members) > 0 {
		avg = total / float64(len(g.Members))
	}
	if g.BuildingLevel(domain.BuildingBigPot) > 0 {
		avg += float64(buildings.PotPowerBoost(g.PotFuel))
		avg += float64(buildings.PotAvgPowerBoost(g.BuildingLevel(domain.BuildingBigPot)))
	}
	for _, b := range g.ActiveAvgPowerBuffs(now.Unix()) {
		avg += float64(b.Power)
	}
	return avg, nil
}

// StatusPayload is the player and pond snapshot Status returns.
type StatusPayload struct {
	PlayerID   string `json:"player_id"`
	Level      int    `json:"level"`
	Exp        int64  `json:"exp"`
	ExpToNext  int64  `json:"exp_to_next"`
	Gold       int64  `json:"gold"`
	Score      int64  `json:"score"`
	Power      int    `json:"power"`
	FeverPower int    `json:"fever_power"`

	Rod       int `json:"rod,omitempty"`
	Tool      int `json:"tool,omitempty"`
	Accessory int `json:"accessory,omitempty"`

	CaughtSpecies int `json:"caught_species"`
	TotalSpecies  int `json:"total_species"`

	CurrentFish *FishInfo `json:"current_fish,omitempty"`
	InFever     bool      `json:"in_fever"`
	FeverLeft   int64     `json:"fever_left_seconds,omitempty"`
	FeedsLeft   int       `json:"feeds_left_today"`
}

// FishInfo is the public view of a spawned fish.
type FishInfo struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Rarity   domain.Rarity `json:"rarity"`
	StdPower int           `json:"std_power"`
}

func (s *service) Status(ctx context.Context, groupID, playerID string) (domain.CommandResult, error) {
	defer s.lockCommand(groupID, playerID)()

	now := s.now()
	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	p, err := s.repo.GetPlayer(ctx, playerID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	s.refreshGroup(g, now)
	g.EnsureMember(playerID)

	ectx := effects.Aggregate(s.cat, p)
	payload := StatusPayload{
		PlayerID:      p.ID,
		Level:         p.Level,
		Exp:           p.Exp,
		ExpToNext:     p.ExpToNext(),
		Gold:          p.Gold,
		Score:         p.Score,
		Power:         catch.PlayerPower(s.cat, p, ectx, now.Unix()),
		FeverPower:    catch.FeverPower(s.cat, p, ectx, now.Unix()),
		Rod:           p.Equipment.Rod,
		Tool:          p.Equipment.Tool,
		Accessory:     p.Equipment.Accessory,
		CaughtSpecies: len(p.CaptureLog),
		TotalSpecies:  s.cat.FishCount(),
		InFever:       g.InFever(now.Unix()),
		FeedsLeft:     max(0, dailyFeedCap-g.FeedTime),
	}
	if payload.InFever {
		payload.FeverLeft = g.FeverExpiresAt - now.Unix()
	}
	if g.CurrentFishID != 0 {
		if fish, ok := s.cat.Fish(g.CurrentFishID); ok {
			payload.CurrentFish = &FishInfo{ID: fish.ID, Name: fish.Name, Rarity: fish.Rarity, StdPower: fish.StdPower}
		}
	}

	if err := s.repo.SaveGroup(ctx, g); err != nil {
		return domain.CommandResult{}, err
	}
	if err := s.repo.SavePlayer(ctx, p); err != nil {
		return domain.CommandResult{}, err
	}
	return domain.OKPayload(fmt.Sprintf("%s Lv.%d", p.ID, p.Level), payload), nil
}
