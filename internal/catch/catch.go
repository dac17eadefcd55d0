// Package catch resolves capture attempts: player power, success rate,
// crit chance, rewards, drops, flee and retry behavior.
package catch

import (
	"math"
	"math/rand"

	"github.com/hydrangea-games/fishpond/internal/buildings"
	"github.com/hydrangea-games/fishpond/internal/catalog"
	"github.com/hydrangea-games/fishpond/internal/domain"
	"github.com/hydrangea-games/fishpond/internal/effects"
)

const baseSuccessRate = 60

// Item ids with hardcoded behavior in the power formulas.
const (
	itemExpAmulet     = 402
	itemFeverCharm    = 406
	skillFreezedry    = 21
	talentIceID       = 4
	talentDiffScaleID = 8
)

// Flee chance by rarity when a catch fails outside fever. Each prior
// attempt on the same fish adds 10%.
var fleeRate = map[domain.Rarity]float64{
	domain.RarityR:   0.2,
	domain.RaritySR:  0.5,
	domain.RaritySSR: 0.8,
	domain.RarityUR:  0,
}

// PlayerPower is the out-of-fever fishing power: level, equipped item
// powers, active power buffs and flat skill power.
func PlayerPower(cat *catalog.Catalog, p *domain.Player, ectx *effects.Context, now int64) int {
	power := p.Level
	for _, id := range p.Equipment.Slots() {
		if item, ok := cat.Item(id); ok {
			power += item.Power
		}
	}
	p.Buffs = domain.FilterActive(p.Buffs, now)
	for _, b := range p.Buffs {
		power += b.Power
	}
	power += int(ectx.FlatPower)
	return power
}

// FeverPower is the reduced fishing power used during fever. Rods lose
// half their power unless flagged fever-proof, and the fever charm gains
// a flat bonus instead.
func FeverPower(cat *catalog.Catalog, p *domain.Player, ectx *effects.Context, now int64) int {
	power := p.Level / 5
	for _, id := range p.Equipment.Slots() {
		item, ok := cat.Item(id)
		if !ok {
			continue
		}
		switch {
		case item.Slot == domain.SlotRod && !item.IgnoreFever:
			power += item.Power / 2
		case item.ID == itemFeverCharm:
			power += item.Power + 25
		default:
			power += item.Power
		}
	}
	p.Buffs = domain.FilterActive(p.Buffs, now)
	for _, b := range p.Buffs {
		power += b.Power
	}
	power += int(ectx.FlatPower + ectx.FeverPower)
	return power
}

// EquipExpBonus is the exp multiplier bonus from equipped amulets.
func EquipExpBonus(p *domain.Player) float64 {
	bonus := 0.0
	for _, id := range []int{p.Equipment.Rod, p.Equipment.Tool} {
		if id == itemExpAmulet {
			bonus += 0.1
		}
	}
	return bonus
}

// SuccessRate computes the capture chance in percent for the given power
// difference. A positive diff closes toward 100 asymptotically; a
// negative diff decays the base rate.
func SuccessRate(diff float64, ectx *effects.Context) float64 {
	rate := float64(baseSuccessRate)
	if diff > 0 {
		rate += 40 - 40*math.Pow(0.9, diff/5)
	} else {
		rate *= math.Pow(0.9, -diff/5)
	}
	if ectx.SuccessRate > 0 {
		rate = math.Min(100, rate*(1+ectx.SuccessRate/100))
	}
	return rate
}

// CritPercent is the crit chance against the fish: skill crit, the
// old-fish bonus, 5% per matching weakness talent level, and the
// diff-scaling talent. The ice talent only triggers on freezedry
// weakness when the freezedry skill is equipped.
func CritPercent(p *domain.Player, ectx *effects.Context, fish domain.Fish, diff float64, talentLevel func(id int) int) float64 {
	crit := ectx.CritPercent
	if p.HasCaught(fish.ID) {
		crit += ectx.OldFishCrit
	}
	for _, weak := range fish.Weakness {
		if weak == "ice" {
			continue
		}
		for i, kind := range domain.TalentKinds {
			if weak == kind {
				if lvl := talentLevel(i + 1); lvl > 0 {
					crit += 5 * float64(lvl)
				}
			}
		}
	}
	iceLevel := 0
	if fish.WeakTo("freezedry") && ectx.HasSkill(skillFreezedry) {
		iceLevel = talentLevel(talentIceID)
	} else if fish.WeakTo("ice") {
		iceLevel = talentLevel(talentIceID)
	}
	if iceLevel > 0 {
		crit += 5 * float64(iceLevel)
	}
	if lvl := talentLevel(talentDiffScaleID); lvl > 0 {
		crit += 0.01 * float64(lvl) * math.Max(0, diff)
	}
	return crit
}

// Params carries everything a capture attempt needs.
type Params struct {
	Catalog     *catalog.Catalog
	RNG         *rand.Rand
	Group       *domain.GroupSession
	Player      *domain.Player
	Effects     *effects.Context
	TalentLevel func(id int) int
	Fish        domain.Fish
	MasterBall  bool
	Now         int64
}

// Outcome is the resolved result of one capture attempt. Resolve mutates
// the player and group state; the caller persists both.
type Outcome struct {
	Success      bool
	SuccessRate  float64
	Crit         bool
	CritPercent  float64
	CritRate     float64
	Exp          int64
	Gold         int64
	DropItemID   int
	FirstCatch   bool
	LevelsGained int
	Regenerated  bool
	RetryGranted bool
	Fled         bool
	FishCleared  bool
}

// Resolve runs one capture attempt against the current fish. The caller
// has already validated that the fish exists, the player has not
// attempted it, and the master ball (if any) was consumed.
func Resolve(p Params) Outcome {
	fish := p.Fish
	ectx := p.Effects
	fever := p.Group.InFever(p.Now)

	topicBonus := 0.0
	for _, topic := range fish.SpawnAt {
		topicBonus += ectx.TopicPower[topic]
	}
	if !p.Player.HasCaught(fish.ID) {
		topicBonus += ectx.NewFishPower
	}

	var power int
	if fever {
		power = FeverPower(p.Catalog, p.Player, ectx, p.Now)
	} else {
		power = PlayerPower(p.Catalog, p.Player, ectx, p.Now)
	}
	potBoost := 0
	if p.Group.BuildingLevel(domain.BuildingBigPot) > 0 {
		potBoost = buildings.PotPowerBoost(p.Group.PotFuel)
	}
	totalPower := float64(power+potBoost) + topicBonus
	diff := totalPower - float64(fish.StdPower)

	rate := 100.0
	if !p.MasterBall {
		rate = SuccessRate(diff, ectx)
	}

	// Power boosters burn a charge per attempt, success or not.
	for i := range p.Player.Buffs {
		if p.Player.Buffs[i].Kind == domain.BuffPower && p.Player.Buffs[i].Charges > 0 {
			p.Player.Buffs[i].Charges--
		}
	}

	out := Outcome{SuccessRate: rate}
	if p.RNG.Float64() < rate/100 {
		resolveSuccess(p, diff, &out)
	} else {
		resolveFailure(p, &out)
	}
	return out
}

func resolveSuccess(p Params, diff float64, out *Outcome) {
	fish := p.Fish
	ectx := p.Effects
	fever := p.Group.InFever(p.Now)
	out.Success = true
	out.FirstCatch = p.Player.RecordCatch(fish.ID)
	p.Group.CaptureLog = append(p.Group.CaptureLog, fish.ID)

	fishingBonus := 1.0
	for _, b := range p.Player.Buffs {
		if b.Kind == domain.BuffFishingBonus {
			fishingBonus += b.Percent
		}
	}
	fishingBonus *= 1 + buildings.FactoryFishingBonus(p.Group.BuildingLevel(domain.BuildingFishFactory))
	if fever {
		fishingBonus *= 1 + buildings.IceHoleFeverBonus(p.Group.BuildingLevel(domain.BuildingIceHole))
	}
	value := int64(float64(fish.Exp) * fishingBonus)

	expMult := 1 + EquipExpBonus(p.Player) + ectx.ExpRate/100
	goldMult := 1 + ectx.GoldRate/100
	exp := int64(float64(value) * expMult)
	gold := int64(float64(value) * goldMult)

	out.CritPercent = CritPercent(p.Player, ectx, fish, diff, p.TalentLevel)
	if p.RNG.Float64() < math.Min(out.CritPercent, 100)/100 {
		out.Crit = true
		out.CritRate = math.Max(ectx.CritRate, 150)
		extra := int64(float64(value) * (out.CritRate/100 - 1))
		exp += int64(float64(extra) * expMult)
		gold += int64(float64(extra) * goldMult)
	}

	p.Player.Exp += exp
	p.Player.Gold += gold
	out.Exp = exp
	out.Gold = gold

	if len(fish.Drops) > 0 {
		out.DropItemID = rollDrop(p.RNG, fish.Drops, out.Crit)
		p.Player.AddItem(out.DropItemID, 1)
	}
	out.LevelsGained = levelUp(p.Player)

	if !fever {
		if p.RNG.Float64() < ectx.RegeneratePercent/100 {
			out.Regenerated = true
		} else {
			p.Group.ClearFish()
			out.FishCleared = true
		}
	}
}

func resolveFailure(p Params, out *Outcome) {
	fish := p.Fish
	ectx := p.Effects
	fever := p.Group.InFever(p.Now)

	exp, gold := int64(1), int64(0)
	if ectx.FailReward > 0 {
		reward := int64(float64(fish.Exp) * ectx.FailReward / 100)
		exp = max(exp, reward)
		gold = max(gold, reward)
	}
	p.Player.Exp += exp
	p.Player.Gold += gold
	out.Exp = exp
	out.Gold = gold

	if ectx.FailItemPercent > 0 && p.RNG.Float64() < ectx.FailItemPercent/100 && len(fish.Drops) > 0 {
		out.DropItemID = rollDrop(p.RNG, fish.Drops, false)
		p.Player.AddItem(out.DropItemID, 1)
	}
	out.LevelsGained = levelUp(p.Player)

	if ectx.HasRetry {
		if float64(p.Now-p.Player.LastRetryAt) > ectx.RetryCooldownMin*60 {
			p.Player.LastRetryAt = p.Now
			out.RetryGranted = true
			removeAttempt(p.Group, p.Player.ID)
		}
	}

	if !fever {
		chance := fleeRate[fish.Rarity] + float64(len(p.Group.Attempted))*0.1
		if p.RNG.Float64() < chance {
			p.Group.ClearFish()
			out.Fled = true
			out.FishCleared = true
		}
	}
}

// rollDrop walks the drop table with one uniform roll. Crits shift weight
// toward the rarer tail entries. A roll past the table takes the last
// entry, so a fish with drops always yields one.
func rollDrop(rng *rand.Rand, drops []domain.Drop, crit bool) int {
	rd := rng.Float64()
	factor := 1.0
	if crit {
		factor = 0.75
	}
	for _, d := range drops {
		rd -= d.Probability * factor
		if rd < 0 {
			return d.ItemID
		}
	}
	return drops[len(drops)-1].ItemID
}

func levelUp(p *domain.Player) int {
	return p.AddExp(0)
}

func removeAttempt(g *domain.GroupSession, playerID string) {
	for i, id := range g.Attempted {
		if id == playerID {
			g.Attempted = append(g.Attempted[:i], g.Attempted[i+1:]...)
			return
		}
	}
}
