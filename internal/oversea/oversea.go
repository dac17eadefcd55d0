// Package oversea implements the port raid battles: monster generation
// with its buff rolls, the ship, and the round-by-round combat engine.
// The engine works on precomputed combatant snapshots so combat math
// stays independent of storage.
package oversea

import (
	"math"
	"math/rand"

	"github.com/hydrangea-games/fishpond/internal/domain"
	"github.com/hydrangea-games/fishpond/internal/effects"
)

// Monster buff ids. All negative for the party.
const (
	BuffHaste     = 101 // fewer rounds
	BuffTough     = 102 // damage reduction
	BuffFrenzy    = 103 // stronger counters
	BuffRegen     = 104 // heals per round
	BuffGigantic  = 105 // more HP and attack
	BuffAnticrit  = 106 // suppresses player crits
	BuffThorns    = 107 // reflects damage to the ship
)

// Reward buff ids. All positive for the party.
const (
	BonusRareGold      = 201 // +20% gold
	BonusSuperRareGold = 202 // +50% gold
	BonusStrong        = 203 // +1 token
	BonusBigBody       = 204 // +50% drops
	BonusBlessed       = 205 // +20% exp, loadout kept
	BonusGemHoard      = 206 // extra jewels
)

// Loadout item ids.
const (
	ItemFin         = 41
	harpoonFirst    = 33
	harpoonLast     = 40
	harpoonSnowpeak = 38
	harpoonSteel    = 39
	harpoonMystic   = 40
	FinCost         = 1
	HarpoonCost     = 10
)

// harpoonTopic maps themed harpoons to their affinity topic.
var harpoonTopic = map[int]string{
	34: "desert",
	35: "forest",
	36: "volcano",
	37: "sky",
	38: "snowpeak",
	39: "steel",
	40: "mystic",
}

// IsHarpoon reports whether the item id is a raid harpoon.
func IsHarpoon(id int) bool { return id >= harpoonFirst && id <= harpoonLast }

// LoadoutCost returns how many copies committing the item consumes.
func LoadoutCost(id int) int {
	switch {
	case id == ItemFin:
		return FinCost
	case IsHarpoon(id):
		return HarpoonCost
	default:
		return 0
	}
}

// harpoonBonus is the flat damage bonus of each harpoon tier.
func harpoonBonus(id int) float64 {
	switch {
	case id == harpoonFirst:
		return 0.3
	case id == harpoonSteel:
		return 0.7
	case IsHarpoon(id):
		return 0.5
	default:
		return 0
	}
}

// Engine rolls monsters and resolves rounds from a seeded random source.
type Engine struct {
	rng *rand.Rand
}

// NewEngine creates a battle engine with the given seed.
func NewEngine(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // game randomness, not crypto
}

// NewEngineFrom shares an existing random stream.
func NewEngineFrom(rng *rand.Rand) *Engine { return &Engine{rng: rng} }

var monsterBuffPool = []int{101, 102, 103, 104, 105, 106, 107}

// 201 and 202 are mutually exclusive; sampling drops the later one.
var bonusBuffPool = []int{201, 202, 203, 204, 205, 206}

// SpawnMonster rolls a new battle against a random boss at the given
// difficulty. The battle starts idle; members join before Start.
func (e *Engine) SpawnMonster(bosses []domain.Fish, groupID string, seq, difficulty, portLevel int) *domain.Battle {
	boss := bosses[e.rng.Intn(len(bosses))]

	b := &domain.Battle{
		GroupID:    groupID,
		Seq:        seq,
		Status:     domain.BattleIdle,
		FishID:     boss.ID,
		Difficulty: difficulty,
		PortLevel:  portLevel,
		EnvBuff:    e.rng.Intn(7) + 1,
		Loadouts:   map[string]int{},
		MaxRounds:  10,
	}

	// Monster buffs: one per difficulty level, levels skewed up with
	// difficulty.
	for _, id := range e.sample(monsterBuffPool, difficulty) {
		level := 1
		r := e.rng.Float64()
		switch difficulty {
		case 2:
			if r >= 0.7 {
				level = 2
			}
		case 3:
			switch {
			case r < 0.5:
				level = 1
			case r < 0.8:
				level = 2
			default:
				level = 3
			}
		}
		b.Buffs = append(b.Buffs, domain.MonsterBuff{ID: id, Level: level})
	}

	// Reward buffs.
	bonusCount := 0
	r := e.rng.Float64()
	switch difficulty {
	case 1:
		if r < 0.5 {
			bonusCount = 1
		}
	case 2:
		switch {
		case r < 0.5:
			bonusCount = 1
		case r < 0.7:
			bonusCount = 2
		}
	case 3:
		switch {
		case r < 0.5:
			bonusCount = 1
		case r < 0.7:
			bonusCount = 2
		case r < 0.8:
			bonusCount = 3
		}
	}
	for _, id := range e.sample(bonusBuffPool, bonusCount) {
		if id == BonusRareGold && b.HasBonusBuff(BonusSuperRareGold) {
			continue
		}
		if id == BonusSuperRareGold && b.HasBonusBuff(BonusRareGold) {
			continue
		}
		b.BonusBuffs = append(b.BonusBuffs, id)
	}

	hpBonus, atkBonus := 0.0, 0.0
	for _, buff := range b.Buffs {
		switch buff.ID {
		case BuffHaste:
			b.MaxRounds -= buff.Level
		case BuffGigantic:
			hpBonus += float64(buff.Level) * 0.05
			atkBonus += float64(buff.Level) * 0.05
		}
	}
	if b.MaxRounds < 1 {
		b.MaxRounds = 1
	}

	hpScale := []float64{1, 1.5, 2}[difficulty-1]
	atkBase := []float64{333, 500, 666}[difficulty-1]
	b.MonsterBaseHP = int64(10000 * hpScale * e.uniform(0.85, 1.15) * (1 + hpBonus))
	b.MonsterAtk = atkBase * e.uniform(0.85, 1.15) * (1 + atkBonus)
	return b
}

// Combatant is a party member's combat snapshot taken at round time.
type Combatant struct {
	ID          string
	Power       int
	CritPercent float64 // against this monster, before the anticrit buff
	Effects     *effects.Context
	LoadoutID   int
}

// Start moves the battle to fighting: applies the party HP multiplier,
// rigs the ship and grants skill extra rounds. Loadouts must already be
// validated against inventories.
func (e *Engine) Start(b *domain.Battle, party []Combatant) bool {
	if b.Status != domain.BattleIdle || len(party) == 0 {
		return false
	}

	hpMult := map[int]float64{1: 1.0, 2: 1.7, 3: 2.4, 4: 3.0}
	mult, ok := hpMult[len(party)]
	if !ok {
		mult = 3.0
	}
	b.MonsterMaxHP = int64(float64(b.MonsterBaseHP) * mult)
	b.MonsterHP = b.MonsterMaxHP

	shipBase := 3000 * []float64{1, 1.25, 1.5}[b.PortLevel-1]
	finBonus := 0.0
	for _, itemID := range b.Loadouts {
		if itemID == ItemFin {
			finBonus += 0.5
		}
	}
	b.ShipMaxHP = int64(shipBase * (1 + finBonus))
	b.ShipHP = b.ShipMaxHP

	for _, c := range party {
		b.MaxRounds += int(c.Effects.OverseaExtraRound)
	}

	b.Round = 0
	b.Status = domain.BattleFighting
	b.Log = nil
	return true
}

// ProcessRound resolves one combat round: every member attacks, the
// monster counters, regen and ship heal apply, then terminal conditions
// are checked. The battle status reflects the outcome afterwards.
func (e *Engine) ProcessRound(b *domain.Battle, party []Combatant) {
	if b.Status != domain.BattleFighting {
		return
	}
	b.Round++

	var maxDefeatistReduce, memberReduce, maxHealPercent, maxRevivePercent, maxHealReduce float64
	captainBoost := 0.0
	if len(party) > 0 {
		captainBoost = party[0].Effects.OverseaCaptainBoost / 100
	}

	var totalDamage int64
	for i, c := range party {
		ectx := c.Effects
		maxDefeatistReduce = math.Max(maxDefeatistReduce, ectx.OverseaDamageReduce)
		maxHealPercent = math.Max(maxHealPercent, ectx.OverseaHealPercent)
		maxRevivePercent = math.Max(maxRevivePercent, ectx.OverseaRevivePercent)
		healReduce := ectx.OverseaHealReduce
		if c.LoadoutID == harpoonSnowpeak {
			healReduce *= 2
		}
		maxHealReduce = math.Max(maxHealReduce, healReduce)
		if i != 0 {
			memberReduce += ectx.OverseaMemberReduce
		}

		bonus := harpoonBonus(c.LoadoutID)
		if topic, ok := harpoonTopic[c.LoadoutID]; ok {
			bonus += ectx.OverseaAffinity[topic] / 100
		}
		bonus += captainBoost

		envBonus := 0.0
		switch b.EnvBuff {
		case 1:
			envBonus += 0.1
		case 7:
			envBonus -= 0.1
		}
		if c.LoadoutID != 0 {
			switch {
			case b.EnvBuff >= 2 && b.EnvBuff <= 6 && c.LoadoutID == b.EnvBuff+32:
				envBonus += 0.5
			case b.EnvBuff == 7 && c.LoadoutID == harpoonMystic:
				envBonus += 1.0
			}
		}

		crit := c.CritPercent
		crit -= float64(b.BuffLevel(BuffAnticrit)) * 20

		isCrit := false
		critMult := 1.0
		if e.rng.Float64() < math.Min(crit, 100)/100 {
			isCrit = true
			critMult = math.Max(ectx.CritRate, 150) / 100
		}

		damage := int64(float64(c.Power) * (1 + bonus + envBonus) * e.uniform(0.9, 1.1))
		if isCrit {
			damage = int64(float64(damage) * critMult)
		}
		damage = int64(float64(damage) * (1 + ectx.OverseaDamageBoost/100))
		damage = int64(float64(damage) * (1 - float64(b.BuffLevel(BuffTough))*0.1))
		if damage < 1 {
			damage = 1
		}
		totalDamage += damage

		kind := "attack"
		if isCrit {
			kind = "crit"
		}
		b.Log = append(b.Log, domain.RoundEvent{Round: b.Round, PlayerID: c.ID, Kind: kind, Value: damage})

		if lvl := b.BuffLevel(BuffThorns); lvl > 0 {
			thorns := int64(float64(damage) * float64(lvl) * 0.1)
			if thorns > 0 {
				b.ShipHP -= thorns
				b.Log = append(b.Log, domain.RoundEvent{Round: b.Round, PlayerID: c.ID, Kind: "thorns", Value: thorns})
			}
		}
	}

	b.MonsterHP -= totalDamage
	if b.MonsterHP <= 0 {
		b.MonsterHP = 0
		b.Status = domain.BattleSuccess
		return
	}

	counter := int64(b.MonsterAtk * (1 + float64(b.BuffLevel(BuffFrenzy))*0.1) * e.uniform(0.9, 1.1))
	reducePct := math.Min(100, maxDefeatistReduce+memberReduce) / 100
	if reducePct > 0 {
		counter -= int64(float64(counter) * reducePct)
	}
	b.ShipHP -= counter
	b.Log = append(b.Log, domain.RoundEvent{Round: b.Round, Kind: "counter", Value: counter})

	if lvl := b.BuffLevel(BuffRegen); lvl > 0 {
		heal := int64(float64(b.MonsterMaxHP) * float64(lvl) * 0.05)
		if heal > 0 {
			healReduced := int64(float64(heal) * (1 - math.Min(maxHealReduce, 100)/100))
			b.MonsterHP = min(b.MonsterMaxHP, b.MonsterHP+healReduced)
			b.Log = append(b.Log, domain.RoundEvent{Round: b.Round, Kind: "heal", Value: healReduced})
		}
	}

	if b.ShipHP <= 0 {
		if !b.ReviveUsed && maxRevivePercent > 0 {
			b.ReviveUsed = true
			b.ShipHP = int64(float64(b.ShipMaxHP) * maxRevivePercent / 100)
			b.Log = append(b.Log, domain.RoundEvent{Round: b.Round, Kind: "revive", Value: b.ShipHP})
		} else {
			b.ShipHP = 0
			b.Status = domain.BattleFailed
			return
		}
	}

	if maxHealPercent > 0 && b.ShipHP > 0 {
		regen := int64(float64(b.ShipMaxHP) * maxHealPercent / 100)
		if regen > 0 {
			b.ShipHP = min(b.ShipMaxHP, b.ShipHP+regen)
			b.Log = append(b.Log, domain.RoundEvent{Round: b.Round, Kind: "repair", Value: regen})
		}
	}

	if b.Round >= b.MaxRounds {
		b.Status = domain.BattleFailed
	}
}

// sample picks n distinct entries from pool.
func (e *Engine) sample(pool []int, n int) []int {
	if n <= 0 {
		return nil
	}
	shuffled := make([]int, len(pool))
	copy(shuffled, pool)
	e.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

func (e *Engine) uniform(lo, hi float64) float64 {
	return lo + e.rng.Float64()*(hi-lo)
}
