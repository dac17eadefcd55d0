package domain

// Building ids. Stored as map keys in GroupSession.Buildings.
const (
	BuildingBigPot         = "big_pot"
	BuildingFishFactory    = "fish_factory"
	BuildingBuildingCenter = "building_center"
	BuildingFishLab        = "fish_lab"
	BuildingIceHole        = "ice_hole"
	BuildingMysticShop     = "mystic_shop"
	BuildingSevenStatue    = "seven_statue"
	BuildingForgeShop      = "forge_shop"
	BuildingPort           = "port"
)

// BuildingState is a single building's level and the materials banked
// toward the next upgrade.
type BuildingState struct {
	Level     int         `json:"level"`
	Materials map[int]int `json:"materials,omitempty"` // item id -> banked count
}

// FeedBuff is a rarity spawn-weight bonus from feeding the pond.
type FeedBuff struct {
	Rarity    Rarity `json:"rarity"`
	Bonus     int    `json:"bonus"`
	ExpiresAt int64  `json:"expires_at"`
}

// AvgPowerBuff raises the pond's average power, used by spawn decay. Keyed
// buffs replace earlier buffs with the same key.
type AvgPowerBuff struct {
	Key       string `json:"key,omitempty"`
	Power     int    `json:"power"`
	ExpiresAt int64  `json:"expires_at"`
}

// SignInState tracks the daily sign-in sheet.
type SignInState struct {
	Date    string   `json:"date,omitempty"` // YYYY-MM-DD
	Players []string `json:"players,omitempty"`
}

// GroupSession is the persisted per-group aggregate: the pond, its
// buildings, and the battle bookkeeping. It is stored as a single JSON
// document keyed by group id.
type GroupSession struct {
	ID string `json:"id"`

	// Members lists every player who has fished in this pond. The spawn
	// scheduler averages their power for the decay curve.
	Members []string `json:"members,omitempty"`

	CurrentFishID  int      `json:"current_fish_id,omitempty"`
	LeaveCountdown int      `json:"leave_countdown,omitempty"`
	Attempted      []string `json:"attempted,omitempty"` // player ids this spawn

	FeedBuffs     []FeedBuff     `json:"feed_buffs,omitempty"`
	AvgPowerBuffs []AvgPowerBuff `json:"avg_power_buffs,omitempty"`

	FeverExpiresAt int64 `json:"fever_expires_at,omitempty"`
	FeverFishIDs   []int `json:"fever_fish_ids,omitempty"`
	FeedTime       int   `json:"feed_time,omitempty"` // feeds today, drives fever odds
	FeedDay        int   `json:"feed_day,omitempty"`  // day-of-month marker for the daily reset

	Buildings map[string]*BuildingState `json:"buildings,omitempty"`

	PotFuel      int   `json:"pot_fuel,omitempty"`
	PotConsumeAt int64 `json:"pot_consume_at,omitempty"`

	// CaptureLog records every fish caught in this pond, oldest first.
	CaptureLog []int `json:"capture_log,omitempty"`

	CurrentBattleID int    `json:"current_battle_id,omitempty"`
	BattleCount     int    `json:"battle_count,omitempty"`
	LastBattleHour  string `json:"last_battle_hour,omitempty"` // YYYY-MM-DD-HH

	SignIn SignInState `json:"sign_in"`
}

// NewGroupSession returns an empty pond for the group.
func NewGroupSession(id string) *GroupSession {
	return &GroupSession{
		ID:        id,
		Buildings: map[string]*BuildingState{},
	}
}

// EnsureMember records the player as a pond member.
func (g *GroupSession) EnsureMember(playerID string) {
	for _, id := range g.Members {
		if id == playerID {
			return
		}
	}
	g.Members = append(g.Members, playerID)
}

// Building returns the state for the building id, creating a level 0 entry
// on first access.
func (g *GroupSession) Building(id string) *BuildingState {
	if g.Buildings == nil {
		g.Buildings = map[string]*BuildingState{}
	}
	b, ok := g.Buildings[id]
	if !ok {
		b = &BuildingState{}
		g.Buildings[id] = b
	}
	return b
}

// BuildingLevel returns the building's level without creating state.
func (g *GroupSession) BuildingLevel(id string) int {
	if b, ok := g.Buildings[id]; ok {
		return b.Level
	}
	return 0
}

// InFever reports whether fever is active at the given unix time.
func (g *GroupSession) InFever(now int64) bool {
	return g.FeverExpiresAt != 0 && now < g.FeverExpiresAt
}

// HasAttempted reports whether the player already tried the current fish.
func (g *GroupSession) HasAttempted(playerID string) bool {
	for _, id := range g.Attempted {
		if id == playerID {
			return true
		}
	}
	return false
}

// HasLogged reports whether the fish has ever been caught in this pond.
func (g *GroupSession) HasLogged(fishID int) bool {
	for _, id := range g.CaptureLog {
		if id == fishID {
			return true
		}
	}
	return false
}

// ClearFish resets the current spawn and attempt list.
func (g *GroupSession) ClearFish() {
	g.CurrentFishID = 0
	g.LeaveCountdown = 0
	g.Attempted = nil
}

// ActiveFeedBuffs drops expired feed buffs in place and returns the rest.
func (g *GroupSession) ActiveFeedBuffs(now int64) []FeedBuff {
	kept := g.FeedBuffs[:0]
	for _, b := range g.FeedBuffs {
		if now < b.ExpiresAt {
			kept = append(kept, b)
		}
	}
	g.FeedBuffs = kept
	return kept
}

// ActiveAvgPowerBuffs drops expired average-power buffs in place and
// returns the rest.
func (g *GroupSession) ActiveAvgPowerBuffs(now int64) []AvgPowerBuff {
	kept := g.AvgPowerBuffs[:0]
	for _, b := range g.AvgPowerBuffs {
		if now < b.ExpiresAt {
			kept = append(kept, b)
		}
	}
	g.AvgPowerBuffs = kept
	return kept
}

// AddAvgPowerBuff appends the buff, replacing any existing buff with the
// same non-empty key.
func (g *GroupSession) AddAvgPowerBuff(buff AvgPowerBuff) {
	if buff.Key != "" {
		for i, b := range g.AvgPowerBuffs {
			if b.Key == buff.Key {
				g.AvgPowerBuffs[i] = buff
				return
			}
		}
	}
	g.AvgPowerBuffs = append(g.AvgPowerBuffs, buff)
}
