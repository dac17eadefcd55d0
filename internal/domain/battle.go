package domain

// BattleStatus is the lifecycle state of an oversea battle.
type BattleStatus string

const (
	BattleIdle     BattleStatus = "idle"     // party forming, not started
	BattleFighting BattleStatus = "fighting" // rounds in progress
	BattleSuccess  BattleStatus = "success"
	BattleFailed   BattleStatus = "failed"
)

// MonsterBuff is a modifier rolled onto the boss at spawn time.
type MonsterBuff struct {
	ID    int `json:"id"`
	Level int `json:"level"`
}

// RoundEvent is one line of the battle log.
type RoundEvent struct {
	Round    int    `json:"round"`
	PlayerID string `json:"player_id,omitempty"`
	Kind     string `json:"kind"` // attack, crit, counter, heal, revive, thorns
	Value    int64  `json:"value"`
}

// Battle is the persisted state of one oversea raid. It is stored keyed by
// group id and battle sequence number.
type Battle struct {
	GroupID string       `json:"group_id"`
	Seq     int          `json:"seq"`
	Status  BattleStatus `json:"status"`

	FishID     int           `json:"fish_id"`
	Difficulty int           `json:"difficulty"`
	PortLevel  int           `json:"port_level"`
	EnvBuff    int           `json:"env_buff"`
	Buffs      []MonsterBuff `json:"buffs,omitempty"`
	BonusBuffs []int         `json:"bonus_buffs,omitempty"`

	// Party order matters: the first member is the captain. Loadouts map
	// member id to the committed item id (a harpoon or the fin), 0 for
	// bare hands.
	Party    []string       `json:"party"`
	Loadouts map[string]int `json:"loadouts,omitempty"`

	// MonsterBaseHP is the solo-party HP rolled at spawn; MonsterMaxHP
	// applies the party size multiplier at battle start.
	MonsterBaseHP int64   `json:"monster_base_hp"`
	MonsterHP     int64   `json:"monster_hp"`
	MonsterMaxHP  int64   `json:"monster_max_hp"`
	MonsterAtk    float64 `json:"monster_atk"`

	ShipHP    int64 `json:"ship_hp"`
	ShipMaxHP int64 `json:"ship_max_hp"`

	Round      int  `json:"round"`
	MaxRounds  int  `json:"max_rounds"`
	ReviveUsed bool `json:"revive_used,omitempty"`
	Settled    bool `json:"settled,omitempty"`

	Log []RoundEvent `json:"log,omitempty"`
}

// BuffLevel returns the level of the monster buff with the given id, or 0.
func (b *Battle) BuffLevel(id int) int {
	for _, mb := range b.Buffs {
		if mb.ID == id {
			return mb.Level
		}
	}
	return 0
}

// HasBonusBuff reports whether the reward buff was rolled.
func (b *Battle) HasBonusBuff(id int) bool {
	for _, bid := range b.BonusBuffs {
		if bid == id {
			return true
		}
	}
	return false
}

// Captain returns the first party member, who leads the raid.
func (b *Battle) Captain() string {
	if len(b.Party) == 0 {
		return ""
	}
	return b.Party[0]
}

// InParty reports whether the player has joined.
func (b *Battle) InParty(playerID string) bool {
	for _, id := range b.Party {
		if id == playerID {
			return true
		}
	}
	return false
}

// Terminal reports whether the battle has concluded either way.
func (b *Battle) Terminal() bool {
	return b.Status == BattleSuccess || b.Status == BattleFailed
}

// DamageProgress is the fraction of the monster's HP the party burned
// down, used to scale failure rewards.
func (b *Battle) DamageProgress() float64 {
	if b.MonsterMaxHP <= 0 {
		return 0
	}
	done := b.MonsterMaxHP - b.MonsterHP
	if done < 0 {
		done = 0
	}
	return float64(done) / float64(b.MonsterMaxHP)
}
