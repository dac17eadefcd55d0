package domain

// BuffKind discriminates the buff variants. Power buffs are charge-counted
// and tick down once per catch attempt; every other kind carries a wall-clock
// expiry and is filtered lazily on read.
type BuffKind string

const (
	BuffPower        BuffKind = "power"         // flat player power, consumable charges
	BuffFishingBonus BuffKind = "fishing_bonus" // percentage loot bonus, timed
	BuffFeed         BuffKind = "feed"          // group rarity spawn bonus, timed
	BuffAvgPower     BuffKind = "avg_power"     // group average-power bonus, timed
)

// Buff is a single active effect on a player or group session.
type Buff struct {
	Kind      BuffKind `json:"kind"`
	Power     int      `json:"power,omitempty"`
	Charges   int      `json:"charges,omitempty"`
	Percent   float64  `json:"percent,omitempty"` // fishing bonus fraction, or feed rarity bonus
	Rarity    Rarity   `json:"rarity,omitempty"`  // feed buffs only
	Key       string   `json:"key,omitempty"`     // avg-power buffs are keyed so re-use replaces
	ExpiresAt int64    `json:"expires_at,omitempty"`
}

// Active reports whether the buff still applies at the given unix time.
func (b Buff) Active(now int64) bool {
	if b.Kind == BuffPower {
		return b.Charges > 0
	}
	return b.ExpiresAt == 0 || now < b.ExpiresAt
}

// FilterActive drops expired and exhausted buffs. Buffs are never removed
// eagerly; every read path passes through here first.
func FilterActive(buffs []Buff, now int64) []Buff {
	out := buffs[:0]
	for _, b := range buffs {
		if b.Active(now) {
			out = append(out, b)
		}
	}
	return out
}
