package domain

// Rarity is the fish rarity tier.
type Rarity string

const (
	RarityR   Rarity = "R"
	RaritySR  Rarity = "SR"
	RaritySSR Rarity = "SSR"
	RarityUR  Rarity = "UR"
)

// TopicCommon is the spawn tag shared by the everyday fish pool; every other
// tag is a weekday theme (desert, forest, volcano, ...).
const TopicCommon = "common"

// Drop is one entry of a fish's drop table.
type Drop struct {
	ItemID      int     `json:"item_id"`
	Probability float64 `json:"probability"`
}

// Fish is an immutable catalog species.
type Fish struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Detail          string   `json:"detail"`
	Rarity          Rarity   `json:"rarity"`
	StdPower        int      `json:"std_power"`
	BaseProbability float64  `json:"base_probability"`
	Exp             int      `json:"exp"`
	SpawnAt         []string `json:"spawn_at"`
	Weakness        []string `json:"weakness"`
	Drops           []Drop   `json:"drops"`
}

// SpawnsAt reports whether the fish carries the given spawn tag.
func (f Fish) SpawnsAt(topic string) bool {
	for _, t := range f.SpawnAt {
		if t == topic {
			return true
		}
	}
	return false
}

// WeakTo reports whether the fish has the given type weakness.
func (f Fish) WeakTo(kind string) bool {
	for _, w := range f.Weakness {
		if w == kind {
			return true
		}
	}
	return false
}
