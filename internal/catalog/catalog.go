// Package catalog loads the static game data (fish, items, skills,
// talents, gacha tables) from JSON files at startup and serves lookups.
// The catalog is immutable after Load.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hydrangea-games/fishpond/internal/domain"
)

// GachaEntry is one weighted row of a gacha table. Type is either "score"
// or "item"; Value is the score amount or the item id.
type GachaEntry struct {
	Type   string  `json:"type"`
	Value  int     `json:"value"`
	Weight float64 `json:"weight"`
}

// JewelRule converts one source item into a weighted choice of outputs.
type JewelRule struct {
	SourceID int            `json:"source_id"`
	Outputs  map[string]int `json:"outputs"` // output item id (string key) -> weight
}

// ForgeRule maps an SSR drop item id range onto a harpoon item id.
type ForgeRule struct {
	MinID     int `json:"min_id"`
	MaxID     int `json:"max_id"`
	HarpoonID int `json:"harpoon_id"`
}

// Catalog holds every static table. Lookups return a zero value and false
// for unknown ids.
type Catalog struct {
	fish    map[int]domain.Fish
	items   map[int]domain.Item
	skills  map[int]domain.Skill
	talents map[int]domain.Talent

	fishOrder []int // catalog order, used by spawn distributions

	Gacha      []GachaEntry `json:"-"`
	Mystery    []GachaEntry `json:"-"`
	JewelRules []JewelRule  `json:"-"`
	ForgeRules []ForgeRule  `json:"-"`

	// topics maps weekday (0 = Monday) to the limited spawn topic.
	topics [7]string
}

type catalogFiles struct {
	Fish    []domain.Fish   `json:"fish"`
	Items   []domain.Item   `json:"items"`
	Skills  []domain.Skill  `json:"skills"`
	Talents []domain.Talent `json:"talents"`
	Gacha   []GachaEntry    `json:"gacha"`
	Mystery []GachaEntry    `json:"mystery"`
	Jewels  []JewelRule     `json:"jewels"`
	Forge   []ForgeRule     `json:"forge"`
	Topics  []string        `json:"topics"`
}

// Load reads every catalog file under dir and validates cross references.
func Load(dir string) (*Catalog, error) {
	var files catalogFiles
	for _, f := range []struct {
		name   string
		target any
	}{
		{"fish.json", &files.Fish},
		{"items.json", &files.Items},
		{"skills.json", &files.Skills},
		{"talents.json", &files.Talents},
		{"gacha.json", &files.Gacha},
		{"mystery.json", &files.Mystery},
		{"jewels.json", &files.Jewels},
		{"forge.json", &files.Forge},
		{"topics.json", &files.Topics},
	} {
		if err := loadJSON(filepath.Join(dir, f.name), f.target); err != nil {
			return nil, err
		}
	}

	c := &Catalog{
		fish:       make(map[int]domain.Fish, len(files.Fish)),
		items:      make(map[int]domain.Item, len(files.Items)),
		skills:     make(map[int]domain.Skill, len(files.Skills)),
		talents:    make(map[int]domain.Talent, len(files.Talents)),
		Gacha:      files.Gacha,
		Mystery:    files.Mystery,
		JewelRules: files.Jewels,
		ForgeRules: files.Forge,
	}
	for _, f := range files.Fish {
		if _, dup := c.fish[f.ID]; dup {
			return nil, fmt.Errorf("duplicate fish id %d", f.ID)
		}
		c.fish[f.ID] = f
		c.fishOrder = append(c.fishOrder, f.ID)
	}
	for _, it := range files.Items {
		if _, dup := c.items[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %d", it.ID)
		}
		c.items[it.ID] = it
	}
	for _, s := range files.Skills {
		c.skills[s.ID] = s
	}
	for _, t := range files.Talents {
		c.talents[t.ID] = t
	}

	if len(files.Topics) != 7 {
		return nil, fmt.Errorf("topics must list 7 weekdays, got %d", len(files.Topics))
	}
	copy(c.topics[:], files.Topics)

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// TopicForWeekday returns the limited spawn topic for the weekday,
// where 0 is Monday.
func (c *Catalog) TopicForWeekday(weekday int) string {
	if weekday < 0 || weekday >= len(c.topics) {
		return ""
	}
	return c.topics[weekday]
}

func loadJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return nil
}

func (c *Catalog) validate() error {
	if len(c.fish) == 0 {
		return fmt.Errorf("no fish defined")
	}
	if len(c.items) == 0 {
		return fmt.Errorf("no items defined")
	}
	for id, f := range c.fish {
		if f.BaseProbability <= 0 {
			return fmt.Errorf("fish %d has non-positive base probability", id)
		}
		for _, d := range f.Drops {
			if _, ok := c.items[d.ItemID]; !ok {
				return fmt.Errorf("fish %d drops unknown item %d", id, d.ItemID)
			}
		}
	}
	for id, it := range c.items {
		for _, mat := range it.CraftBy {
			if _, ok := c.items[mat]; !ok {
				return fmt.Errorf("item %d crafts from unknown item %d", id, mat)
			}
		}
		for _, ref := range it.Skills {
			if _, ok := c.skills[ref.ID]; !ok {
				return fmt.Errorf("item %d carries unknown skill %d", id, ref.ID)
			}
		}
	}
	for _, table := range [][]GachaEntry{c.Gacha, c.Mystery} {
		for _, e := range table {
			if e.Type != "score" && e.Type != "item" {
				return fmt.Errorf("gacha entry has unknown type %q", e.Type)
			}
			if e.Type == "item" {
				if _, ok := c.items[e.Value]; !ok {
					return fmt.Errorf("gacha entry references unknown item %d", e.Value)
				}
			}
			if e.Weight <= 0 {
				return fmt.Errorf("gacha entry has non-positive weight")
			}
		}
	}
	return nil
}

// Fish returns the fish definition for the id.
func (c *Catalog) Fish(id int) (domain.Fish, bool) {
	f, ok := c.fish[id]
	return f, ok
}

// Item returns the item definition for the id. Instanced accessory ids
// resolve to their template via id ranges.
func (c *Catalog) Item(id int) (domain.Item, bool) {
	if it, ok := c.items[id]; ok {
		return it, true
	}
	for _, it := range c.items {
		if it.IDRangeEnd > 0 && id > it.ID && id <= it.IDRangeEnd {
			return it, true
		}
	}
	return domain.Item{}, false
}

// Skill returns the skill definition for the id.
func (c *Catalog) Skill(id int) (domain.Skill, bool) {
	s, ok := c.skills[id]
	return s, ok
}

// Talent returns the talent definition for the id.
func (c *Catalog) Talent(id int) (domain.Talent, bool) {
	t, ok := c.talents[id]
	return t, ok
}

// AllFish returns every fish in catalog order.
func (c *Catalog) AllFish() []domain.Fish {
	out := make([]domain.Fish, 0, len(c.fishOrder))
	for _, id := range c.fishOrder {
		out = append(out, c.fish[id])
	}
	return out
}

// AllSkills returns every skill sorted by id.
func (c *Catalog) AllSkills() []domain.Skill {
	out := make([]domain.Skill, 0, len(c.skills))
	for _, s := range c.skills {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllTalents returns every talent sorted by id.
func (c *Catalog) AllTalents() []domain.Talent {
	out := make([]domain.Talent, 0, len(c.talents))
	for _, t := range c.talents {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Bosses returns every fish with the boss standard power, used to pick
// oversea battle monsters.
func (c *Catalog) Bosses() []domain.Fish {
	const bossStdPower = 333
	var out []domain.Fish
	for _, id := range c.fishOrder {
		if f := c.fish[id]; f.StdPower == bossStdPower {
			out = append(out, f)
		}
	}
	return out
}

// FishCount returns the number of catchable fish, for pokedex checks.
func (c *Catalog) FishCount() int { return len(c.fish) }
