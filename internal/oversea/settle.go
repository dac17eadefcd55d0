package oversea

import (
	"github.com/hydrangea-games/fishpond/internal/domain"
)

// Token item ids by difficulty: proof of the sea, storm, strongest.
const tokenBaseID = 30

// gemPool is every rare regional jewel the gem hoard buff can roll.
var gemPool = []int{314, 319, 324, 329, 334, 339, 344, 349}

// Reward is one party member's settlement. Drops maps item id to count.
type Reward struct {
	Exp         int64
	Gold        int64
	Drops       map[int]int
	TokenID     int
	TokenCount  int
	KeepLoadout bool
	LoadoutID   int
	LoadoutCost int
}

// Settle computes per-member rewards once the battle reaches a terminal
// state. Success pays the difficulty's base exp, gold, drops and token;
// failure pays exp scaled by damage progress. Loadouts are deducted
// unless the blessed buff rolled. The caller applies the rewards and
// marks the battle settled.
func (e *Engine) Settle(b *domain.Battle, boss domain.Fish, success bool) map[string]Reward {
	diff := b.Difficulty
	baseExp := []int64{20000, 40000, 60000}[diff-1]
	baseGold := []int64{20000, 40000, 60000}[diff-1]
	baseDrops := []int{6, 12, 20}[diff-1]

	var goldPct, expPct, dropPct float64
	bonusToken := 0
	for _, id := range b.BonusBuffs {
		switch id {
		case BonusRareGold:
			goldPct += 0.2
		case BonusSuperRareGold:
			goldPct += 0.5
		case BonusStrong:
			bonusToken++
		case BonusBigBody:
			dropPct += 0.5
		case BonusBlessed:
			expPct += 0.2
		}
	}
	keepLoadout := b.HasBonusBuff(BonusBlessed)

	rewards := make(map[string]Reward, len(b.Party))
	for _, playerID := range b.Party {
		variance := e.uniform(0.9, 1.1)
		loadoutID := b.Loadouts[playerID]
		r := Reward{
			Drops:       map[int]int{},
			KeepLoadout: keepLoadout,
			LoadoutID:   loadoutID,
			LoadoutCost: LoadoutCost(loadoutID),
		}

		if !success {
			r.Exp = int64(float64(baseExp) * b.DamageProgress() * variance)
			rewards[playerID] = r
			continue
		}

		r.Exp = int64(float64(baseExp) * (1 + expPct) * variance)
		r.Gold = int64(float64(baseGold) * (1 + goldPct) * variance)

		dropCount := int(float64(baseDrops) * (1 + dropPct) * variance)
		if len(boss.Drops) > 0 {
			for i := 0; i < dropCount; i++ {
				r.Drops[e.weightedDrop(boss.Drops)]++
			}
		}

		if b.HasBonusBuff(BonusGemHoard) {
			ownGem := 0
			if len(boss.Drops) > 0 {
				ownGem = boss.Drops[len(boss.Drops)-1].ItemID
			}
			var gems []int
			for _, gem := range gemPool {
				if gem != ownGem {
					gems = append(gems, gem)
				}
			}
			if len(gems) > 0 {
				r.Drops[gems[e.rng.Intn(len(gems))]] += diff
			}
		}

		r.TokenID = tokenBaseID + (diff - 1)
		r.TokenCount = 1 + bonusToken
		rewards[playerID] = r
	}
	return rewards
}

// weightedDrop draws one drop item id by probability weight.
func (e *Engine) weightedDrop(drops []domain.Drop) int {
	total := 0.0
	for _, d := range drops {
		total += d.Probability
	}
	r := e.rng.Float64() * total
	for _, d := range drops {
		if r < d.Probability {
			return d.ItemID
		}
		r -= d.Probability
	}
	return drops[len(drops)-1].ItemID
}
