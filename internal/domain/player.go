package domain

import "math"

// Equipment holds the item ids equipped in each slot. Zero means empty.
type Equipment struct {
	Rod       int `json:"rod,omitempty"`
	Tool      int `json:"tool,omitempty"`
	Accessory int `json:"accessory,omitempty"`
}

// Slots returns the equipped item ids in slot order, skipping empty slots.
func (e Equipment) Slots() []int {
	out := make([]int, 0, 3)
	for _, id := range []int{e.Rod, e.Tool, e.Accessory} {
		if id != 0 {
			out = append(out, id)
		}
	}
	return out
}

// Player is the persisted per-player aggregate. It is stored as a single
// JSON document keyed by player id.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Level int    `json:"level"`
	Exp   int64  `json:"exp"`
	Gold  int64  `json:"gold"`
	Score int64  `json:"score"`

	Inventory     map[int]int               `json:"inventory,omitempty"`
	Equipment     Equipment                 `json:"equipment"`
	AccessoryMeta map[int]AccessoryInstance `json:"accessory_meta,omitempty"`

	// CaptureLog records each distinct fish id the player has ever caught.
	CaptureLog []int `json:"capture_log,omitempty"`

	Buffs []Buff `json:"buffs,omitempty"`

	TalentExp map[int]int64 `json:"talent_exp,omitempty"`

	MasterBallCrafts int `json:"master_ball_crafts,omitempty"`

	LastGiftAt  int64 `json:"last_gift_at,omitempty"`
	LastRetryAt int64 `json:"last_retry_at,omitempty"`
	LastBuildAt int64 `json:"last_build_at,omitempty"`

	RenewDate  string `json:"renew_date,omitempty"` // accessory dissolve window, YYYY-MM-DD
	RenewCount int    `json:"renew_count,omitempty"`

	RaidDate  string `json:"raid_date,omitempty"`
	RaidCount int    `json:"raid_count,omitempty"`
}

// NewPlayer returns a level 1 player with an empty inventory.
func NewPlayer(id string) *Player {
	return &Player{
		ID:        id,
		Level:     1,
		Inventory: map[int]int{},
	}
}

// ItemCount returns how many of the item the player holds.
func (p *Player) ItemCount(itemID int) int {
	return p.Inventory[itemID]
}

// AddItem adjusts the held count of an item, deleting the entry at zero.
// Counts never go negative.
func (p *Player) AddItem(itemID, delta int) {
	if p.Inventory == nil {
		p.Inventory = map[int]int{}
	}
	n := p.Inventory[itemID] + delta
	if n <= 0 {
		delete(p.Inventory, itemID)
		return
	}
	p.Inventory[itemID] = n
}

// HasCaught reports whether the player has caught the fish before.
func (p *Player) HasCaught(fishID int) bool {
	for _, id := range p.CaptureLog {
		if id == fishID {
			return true
		}
	}
	return false
}

// RecordCatch adds the fish to the capture log if not already present and
// reports whether it was a first catch.
func (p *Player) RecordCatch(fishID int) bool {
	if p.HasCaught(fishID) {
		return false
	}
	p.CaptureLog = append(p.CaptureLog, fishID)
	return true
}

// ExpToNext returns the exp required to advance from the current level.
func (p *Player) ExpToNext() int64 {
	return int64(float64(p.Level+19) * math.Pow(1.1, float64(p.Level/10)))
}

// AddExp credits exp and applies any level ups. It returns the number of
// levels gained.
func (p *Player) AddExp(exp int64) int {
	p.Exp += exp
	gained := 0
	for p.Exp >= p.ExpToNext() {
		p.Exp -= p.ExpToNext()
		p.Level++
		gained++
	}
	return gained
}

// Equipped reports whether the item occupies any equipment slot.
func (p *Player) Equipped(itemID int) bool {
	return p.Equipment.Rod == itemID || p.Equipment.Tool == itemID || p.Equipment.Accessory == itemID
}

// SpendableCount returns the held count minus equipped copies, for crafting
// material checks.
func (p *Player) SpendableCount(itemID int) int {
	n := p.ItemCount(itemID)
	if p.Equipped(itemID) {
		n--
	}
	if n < 0 {
		return 0
	}
	return n
}
