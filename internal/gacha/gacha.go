// Package gacha runs the weighted draw tables: the standard gold gacha,
// the mystic shop's mystery gacha and the jewel conversion rules.
package gacha

import (
	"math/rand"
	"sort"
	"strconv"

	"github.com/hydrangea-games/fishpond/internal/catalog"
	"github.com/hydrangea-games/fishpond/internal/domain"
)

// Tier selects the draw batch size.
type Tier int

const (
	TierSingle   Tier = iota // 1 draw
	TierTen                  // 11 draws
	TierHundred              // 110 draws, stacked result
	TierThousand             // 1100 draws, stacked result
)

// Cost returns the gold cost and draw count for the tier. Mystery draws
// cost ten times as much.
func (t Tier) Cost(mystery bool) (gold int64, draws int) {
	switch t {
	case TierThousand:
		gold, draws = 10000, 1100
	case TierHundred:
		gold, draws = 1000, 110
	case TierTen:
		gold, draws = 100, 11
	default:
		gold, draws = 10, 1
	}
	if mystery {
		gold *= 10
	}
	return gold, draws
}

// Stacked reports whether results collapse into per-item counts.
func (t Tier) Stacked() bool { return t == TierHundred || t == TierThousand }

// Result is one line of a draw outcome. Score lines aggregate when the
// tier stacks.
type Result struct {
	ItemID int   `json:"item_id,omitempty"`
	Score  int64 `json:"score,omitempty"`
	Count  int   `json:"count"`
}

// Engine draws from a seeded random source.
type Engine struct {
	rng *rand.Rand
}

// NewEngine creates a gacha engine with the given seed.
func NewEngine(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // game randomness, not crypto
}

// NewEngineFrom shares an existing random stream.
func NewEngineFrom(rng *rand.Rand) *Engine { return &Engine{rng: rng} }

// Pick draws one entry from the table with a single weighted roll.
func (e *Engine) Pick(table []catalog.GachaEntry) (catalog.GachaEntry, bool) {
	total := 0.0
	for _, entry := range table {
		total += entry.Weight
	}
	if total <= 0 {
		return catalog.GachaEntry{}, false
	}
	r := e.rng.Float64() * total
	for _, entry := range table {
		if r < entry.Weight {
			return entry, true
		}
		r -= entry.Weight
	}
	return catalog.GachaEntry{}, false
}

// Draw runs the full batch against the table, crediting score and items
// to the player. Stacked tiers return one line per distinct item sorted
// by id, plus a single aggregated score line.
func (e *Engine) Draw(table []catalog.GachaEntry, tier Tier, p *domain.Player) []Result {
	_, draws := tier.Cost(false)

	if tier.Stacked() {
		itemCounts := map[int]int{}
		var scoreTotal int64
		for i := 0; i < draws; i++ {
			entry, ok := e.Pick(table)
			if !ok {
				continue
			}
			if entry.Type == "score" {
				p.Score += int64(entry.Value)
				scoreTotal += int64(entry.Value)
			} else {
				p.AddItem(entry.Value, 1)
				itemCounts[entry.Value]++
			}
		}
		var results []Result
		if scoreTotal > 0 {
			results = append(results, Result{Score: scoreTotal, Count: 1})
		}
		ids := make([]int, 0, len(itemCounts))
		for id := range itemCounts {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			results = append(results, Result{ItemID: id, Count: itemCounts[id]})
		}
		return results
	}

	var results []Result
	for i := 0; i < draws; i++ {
		entry, ok := e.Pick(table)
		if !ok {
			continue
		}
		if entry.Type == "score" {
			p.Score += int64(entry.Value)
			results = append(results, Result{Score: int64(entry.Value), Count: 1})
		} else {
			p.AddItem(entry.Value, 1)
			results = append(results, Result{ItemID: entry.Value, Count: 1})
		}
	}
	return results
}

// ConvertJewel rolls one output item for the source item under the jewel
// rules. Returns false when no rule covers the source.
func (e *Engine) ConvertJewel(rules []catalog.JewelRule, sourceID int) (int, bool) {
	for _, rule := range rules {
		if rule.SourceID != sourceID {
			continue
		}
		type weighted struct {
			id     int
			weight int
		}
		var outs []weighted
		total := 0
		for idStr, w := range rule.Outputs {
			id, err := strconv.Atoi(idStr)
			if err != nil || w <= 0 {
				continue
			}
			outs = append(outs, weighted{id: id, weight: w})
			total += w
		}
		if total == 0 {
			return 0, false
		}
		sort.Slice(outs, func(i, j int) bool { return outs[i].id < outs[j].id })
		r := e.rng.Intn(total)
		for _, o := range outs {
			if r < o.weight {
				return o.id, true
			}
			r -= o.weight
		}
	}
	return 0, false
}
