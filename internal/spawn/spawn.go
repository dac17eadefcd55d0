// Package spawn implements the weighted fish spawn distribution: rarity
// feed buffs, fever pool adjustments and the power decay that suppresses
// fish far above the pond's average power.
package spawn

import (
	"math"
	"math/rand"
	"sort"

	"github.com/hydrangea-games/fishpond/internal/domain"
)

// Power decay divisors. The simulated distribution shown to players uses
// a steeper curve than the real draw.
const (
	DisplayDecayDivisor = 5
	DrawDecayDivisor    = 15
)

// Spawn countdown in scheduler ticks before an ignored fish leaves.
const (
	LeaveCountdown      = 5
	LeaveCountdownFever = 2
)

// Fever always grants the top feed buff tier regardless of what was fed.
var feverRarityBuff = map[domain.Rarity]int{
	domain.RaritySSR: 200,
	domain.RaritySR:  120,
	domain.RarityR:   60,
}

// Engine draws spawns from a seeded random source. Not safe for
// concurrent use; the game service serializes access per group.
type Engine struct {
	rng *rand.Rand
}

// NewEngine creates a spawn engine with the given seed.
func NewEngine(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // game randomness, not crypto
}

// NewEngineFrom shares an existing random stream.
func NewEngineFrom(rng *rand.Rand) *Engine { return &Engine{rng: rng} }

// RarityBuff returns the spawn weight bonus for a rarity: the fixed fever
// tier during fever, otherwise the sum of active feed buffs.
func RarityBuff(g *domain.GroupSession, rarity domain.Rarity, now int64) int {
	if g.InFever(now) {
		return feverRarityBuff[rarity]
	}
	total := 0
	for _, b := range g.ActiveFeedBuffs(now) {
		if b.Rarity == rarity {
			total += b.Bonus
		}
	}
	return total
}

// Weights computes the spawn weight of every pool entry. The power decay
// multiplies each weight by 0.9 per divisor points the fish's standard
// power exceeds the pond average, then the list is renormalized back to
// the pre-decay total so decay shifts probability rather than shrinking
// the spawn chance itself.
func Weights(pool []domain.Fish, g *domain.GroupSession, avgPower float64, divisor float64, now int64) []float64 {
	weights := make([]float64, len(pool))
	fever := g.InFever(now)
	iceHole := g.BuildingLevel(domain.BuildingIceHole)
	for i, fish := range pool {
		w := fish.BaseProbability * float64(1+RarityBuff(g, fish.Rarity, now))
		if fever {
			if fish.SpawnsAt(domain.TopicCommon) {
				w *= 1 - float64(iceHole)*0.1
			} else {
				w *= 1 + float64(iceHole)*0.3
			}
		}
		weights[i] = w
	}

	before := sum(weights)
	for i, fish := range pool {
		over := math.Max(0, (float64(fish.StdPower)-avgPower)/divisor)
		weights[i] *= math.Pow(0.9, over)
	}
	after := sum(weights)
	if after > 0 {
		scale := before / after
		for i := range weights {
			weights[i] *= scale
		}
	}
	return weights
}

// Draw picks a fish from the pool with one uniform roll over the weights.
// A roll past the total weight means no spawn this tick.
func (e *Engine) Draw(pool []domain.Fish, weights []float64) (domain.Fish, bool) {
	r := e.rng.Float64()
	for i, w := range weights {
		if r < w {
			return pool[i], true
		}
		r -= w
	}
	return domain.Fish{}, false
}

// FeverPool samples the fever fish list: half of the common R fish, half
// of the common and topic SR fish, and half of the common and topic SSR
// fish, sorted by rarity then standard power.
func (e *Engine) FeverPool(all []domain.Fish, topic string) []int {
	var rCommon, srCommon, ssrCommon, srTopic, ssrTopic []int
	for _, f := range all {
		common := f.SpawnsAt(domain.TopicCommon)
		topical := topic != "" && f.SpawnsAt(topic)
		switch f.Rarity {
		case domain.RarityR:
			if common {
				rCommon = append(rCommon, f.ID)
			}
		case domain.RaritySR:
			if common {
				srCommon = append(srCommon, f.ID)
			}
			if topical {
				srTopic = append(srTopic, f.ID)
			}
		case domain.RaritySSR:
			if common {
				ssrCommon = append(ssrCommon, f.ID)
			}
			if topical {
				ssrTopic = append(ssrTopic, f.ID)
			}
		}
	}

	ids := e.sampleHalf(rCommon)
	ids = append(ids, e.sampleHalf(srCommon)...)
	ids = append(ids, e.sampleHalf(srTopic)...)
	ids = append(ids, e.sampleHalf(ssrCommon)...)
	ids = append(ids, e.sampleHalf(ssrTopic)...)

	rank := func(id int, all []domain.Fish) int {
		for _, f := range all {
			if f.ID == id {
				base := map[domain.Rarity]int{domain.RarityR: 1000, domain.RaritySR: 2000, domain.RaritySSR: 3000}[f.Rarity]
				return base + f.StdPower
			}
		}
		return 0
	}
	sort.Slice(ids, func(i, j int) bool { return rank(ids[i], all) < rank(ids[j], all) })
	return ids
}

func (e *Engine) sampleHalf(ids []int) []int {
	n := len(ids) / 2
	shuffled := make([]int, len(ids))
	copy(shuffled, ids)
	e.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

// Float64 exposes a uniform roll for callers that share the engine's
// random stream.
func (e *Engine) Float64() float64 { return e.rng.Float64() }

// Intn exposes a uniform integer roll in [0, n).
func (e *Engine) Intn(n int) int { return e.rng.Intn(n) }

func sum(vals []float64) float64 {
	total := 0.0
	for _, v := range vals {
		total += v
	}
	return total
}
