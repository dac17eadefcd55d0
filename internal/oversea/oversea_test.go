package oversea

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrangea-games/fishpond/internal/domain"
	"github.com/hydrangea-games/fishpond/internal/effects"
)

var testBosses = []domain.Fish{
	{ID: 61, Name: "Sea Emperor", Rarity: domain.RarityUR, StdPower: 333,
		Drops: []domain.Drop{{ItemID: 301, Probability: 0.9}, {ItemID: 314, Probability: 0.1}}},
	{ID: 62, Name: "Dune Wyrm", Rarity: domain.RarityUR, StdPower: 333,
		Drops: []domain.Drop{{ItemID: 315, Probability: 0.9}, {ItemID: 319, Probability: 0.1}}},
}

func noEffects() *effects.Context {
	return &effects.Context{TopicPower: map[string]float64{}, OverseaAffinity: map[string]float64{}}
}

func TestIsHarpoonAndLoadoutCost(t *testing.T) {
	assert.True(t, IsHarpoon(33))
	assert.True(t, IsHarpoon(40))
	assert.False(t, IsHarpoon(41))
	assert.False(t, IsHarpoon(32))

	assert.Equal(t, HarpoonCost, LoadoutCost(35))
	assert.Equal(t, FinCost, LoadoutCost(ItemFin))
	assert.Equal(t, 0, LoadoutCost(0))
	assert.Equal(t, 0, LoadoutCost(101))
}

func TestSpawnMonster_Ranges(t *testing.T) {
	e := NewEngine(5)

	for i := 0; i < 200; i++ {
		diff := i%3 + 1
		b := e.SpawnMonster(testBosses, "g1", i, diff, 2)

		assert.Equal(t, domain.BattleIdle, b.Status)
		assert.Equal(t, diff, b.Difficulty)
		assert.Contains(t, []int{61, 62}, b.FishID)
		assert.GreaterOrEqual(t, b.EnvBuff, 1)
		assert.LessOrEqual(t, b.EnvBuff, 7)
		assert.Len(t, b.Buffs, diff)
		assert.GreaterOrEqual(t, b.MaxRounds, 1)
		assert.LessOrEqual(t, b.MaxRounds, 10)

		// HP scales with difficulty and the roll variance; gigantic can
		// push it a further 15% up.
		hpScale := []float64{1, 1.5, 2}[diff-1]
		assert.GreaterOrEqual(t, b.MonsterBaseHP, int64(10000*hpScale*0.85))
		assert.LessOrEqual(t, b.MonsterBaseHP, int64(10000*hpScale*1.15*1.15)+1)

		atkBase := []float64{333, 500, 666}[diff-1]
		assert.GreaterOrEqual(t, b.MonsterAtk, atkBase*0.85)
		assert.LessOrEqual(t, b.MonsterAtk, atkBase*1.15*1.15+1)

		// Monster buffs are distinct; the two gold bonuses never stack.
		seen := map[int]bool{}
		for _, mb := range b.Buffs {
			assert.False(t, seen[mb.ID])
			seen[mb.ID] = true
			assert.GreaterOrEqual(t, mb.Level, 1)
			assert.LessOrEqual(t, mb.Level, diff)
		}
		if b.HasBonusBuff(BonusRareGold) {
			assert.False(t, b.HasBonusBuff(BonusSuperRareGold))
		}
	}
}

func TestSpawnMonster_HasteCutsRounds(t *testing.T) {
	e := NewEngine(1)
	found := false
	for i := 0; i < 100 && !found; i++ {
		b := e.SpawnMonster(testBosses, "g1", i, 3, 2)
		if lvl := b.BuffLevel(BuffHaste); lvl > 0 {
			assert.Equal(t, 10-lvl, b.MaxRounds)
			found = true
		}
	}
	assert.True(t, found, "haste never rolled in 100 spawns")
}

func TestStart_PartyScalesMonsterAndShip(t *testing.T) {
	e := NewEngine(1)
	b := &domain.Battle{Status: domain.BattleIdle, MonsterBaseHP: 10000, PortLevel: 2,
		Loadouts: map[string]int{}, MaxRounds: 10}

	party := []Combatant{
		{ID: "u1", Power: 100, Effects: noEffects()},
		{ID: "u2", Power: 100, Effects: noEffects()},
		{ID: "u3", Power: 100, Effects: noEffects()},
	}
	require.True(t, e.Start(b, party))

	assert.Equal(t, domain.BattleFighting, b.Status)
	assert.Equal(t, int64(24000), b.MonsterMaxHP) // 10000 * 2.4 for three members
	assert.Equal(t, b.MonsterMaxHP, b.MonsterHP)
	assert.Equal(t, int64(3750), b.ShipMaxHP) // 3000 * 1.25 at port 2
	assert.Equal(t, b.ShipMaxHP, b.ShipHP)

	assert.False(t, e.Start(b, party), "a fighting battle cannot start again")
}

func TestStart_FinRaisesShipHP(t *testing.T) {
	e := NewEngine(1)
	b := &domain.Battle{Status: domain.BattleIdle, MonsterBaseHP: 10000, PortLevel: 1,
		Loadouts: map[string]int{"u1": ItemFin, "u2": ItemFin}, MaxRounds: 10}

	require.True(t, e.Start(b, []Combatant{
		{ID: "u1", Power: 100, Effects: noEffects(), LoadoutID: ItemFin},
		{ID: "u2", Power: 100, Effects: noEffects(), LoadoutID: ItemFin},
	}))

	// Each fin adds half the base ship again.
	assert.Equal(t, int64(6000), b.ShipMaxHP)
}

func TestStart_ExtraRoundSkills(t *testing.T) {
	e := NewEngine(1)
	b := &domain.Battle{Status: domain.BattleIdle, MonsterBaseHP: 10000, PortLevel: 1,
		Loadouts: map[string]int{}, MaxRounds: 9}

	ectx := noEffects()
	ectx.OverseaExtraRound = 2
	require.True(t, e.Start(b, []Combatant{{ID: "u1", Power: 100, Effects: ectx}}))
	assert.Equal(t, 11, b.MaxRounds)
}

func TestStart_EmptyParty(t *testing.T) {
	e := NewEngine(1)
	b := &domain.Battle{Status: domain.BattleIdle, MonsterBaseHP: 10000, PortLevel: 1, MaxRounds: 10}
	assert.False(t, e.Start(b, nil))
	assert.Equal(t, domain.BattleIdle, b.Status)
}

func TestProcessRound_PartyWins(t *testing.T) {
	e := NewEngine(3)
	b := &domain.Battle{Status: domain.BattleFighting, MonsterHP: 500, MonsterMaxHP: 500,
		MonsterAtk: 100, ShipHP: 3000, ShipMaxHP: 3000, MaxRounds: 10}

	e.ProcessRound(b, []Combatant{{ID: "u1", Power: 1000, Effects: noEffects()}})

	assert.Equal(t, domain.BattleSuccess, b.Status)
	assert.Equal(t, int64(0), b.MonsterHP)
	assert.Equal(t, 1, b.Round)
	require.NotEmpty(t, b.Log)
	assert.Equal(t, "u1", b.Log[0].PlayerID)

	// No counter lands after the killing blow.
	for _, ev := range b.Log {
		assert.NotEqual(t, "counter", ev.Kind)
	}
}

func TestProcessRound_CounterSinksShip(t *testing.T) {
	e := NewEngine(3)
	b := &domain.Battle{Status: domain.BattleFighting, MonsterHP: 1000000, MonsterMaxHP: 1000000,
		MonsterAtk: 50000, ShipHP: 3000, ShipMaxHP: 3000, MaxRounds: 10}

	e.ProcessRound(b, []Combatant{{ID: "u1", Power: 10, Effects: noEffects()}})

	assert.Equal(t, domain.BattleFailed, b.Status)
	assert.Equal(t, int64(0), b.ShipHP)
}

func TestProcessRound_ReviveSavesTheShipOnce(t *testing.T) {
	e := NewEngine(3)
	b := &domain.Battle{Status: domain.BattleFighting, MonsterHP: 1000000, MonsterMaxHP: 1000000,
		MonsterAtk: 50000, ShipHP: 3000, ShipMaxHP: 3000, MaxRounds: 10}

	ectx := noEffects()
	ectx.OverseaRevivePercent = 50
	party := []Combatant{{ID: "u1", Power: 10, Effects: ectx}}

	e.ProcessRound(b, party)
	assert.Equal(t, domain.BattleFighting, b.Status)
	assert.True(t, b.ReviveUsed)
	assert.Greater(t, b.ShipHP, int64(0))

	e.ProcessRound(b, party)
	assert.Equal(t, domain.BattleFailed, b.Status)
}

func TestProcessRound_RegenHealsMonster(t *testing.T) {
	e := NewEngine(3)
	b := &domain.Battle{Status: domain.BattleFighting, MonsterHP: 500000, MonsterMaxHP: 1000000,
		MonsterAtk: 1, ShipHP: 100000, ShipMaxHP: 100000, MaxRounds: 10,
		Buffs: []domain.MonsterBuff{{ID: BuffRegen, Level: 2}}}

	e.ProcessRound(b, []Combatant{{ID: "u1", Power: 10, Effects: noEffects()}})

	// Regen restores 10% of max HP, far above the scratch damage dealt.
	assert.Greater(t, b.MonsterHP, int64(500000))

	// Full heal reduction cancels the regen outright.
	b2 := &domain.Battle{Status: domain.BattleFighting, MonsterHP: 500000, MonsterMaxHP: 1000000,
		MonsterAtk: 1, ShipHP: 100000, ShipMaxHP: 100000, MaxRounds: 10,
		Buffs: []domain.MonsterBuff{{ID: BuffRegen, Level: 2}}}
	ectx := noEffects()
	ectx.OverseaHealReduce = 100
	e.ProcessRound(b2, []Combatant{{ID: "u1", Power: 10, Effects: ectx}})
	assert.Less(t, b2.MonsterHP, int64(500000))
}

func TestProcessRound_SnowpeakHarpoonDoublesHealReduce(t *testing.T) {
	e := NewEngine(3)
	b := &domain.Battle{Status: domain.BattleFighting, MonsterHP: 900000, MonsterMaxHP: 1000000,
		MonsterAtk: 1, ShipHP: 100000, ShipMaxHP: 100000, MaxRounds: 10,
		Buffs: []domain.MonsterBuff{{ID: BuffRegen, Level: 1}}}

	ectx := noEffects()
	ectx.OverseaHealReduce = 50
	e.ProcessRound(b, []Combatant{{ID: "u1", Power: 10, Effects: ectx, LoadoutID: harpoonSnowpeak}})

	// 50 doubled to 100 silences the regen completely.
	for _, ev := range b.Log {
		if ev.Kind == "heal" {
			assert.Equal(t, int64(0), ev.Value)
		}
	}
}

func TestProcessRound_ThornsChipTheShip(t *testing.T) {
	e := NewEngine(3)
	b := &domain.Battle{Status: domain.BattleFighting, MonsterHP: 1000000, MonsterMaxHP: 1000000,
		MonsterAtk: 1, ShipHP: 100000, ShipMaxHP: 100000, MaxRounds: 10,
		Buffs: []domain.MonsterBuff{{ID: BuffThorns, Level: 2}}}

	e.ProcessRound(b, []Combatant{{ID: "u1", Power: 1000, Effects: noEffects()}})

	thorns := false
	for _, ev := range b.Log {
		if ev.Kind == "thorns" {
			thorns = true
			assert.Greater(t, ev.Value, int64(0))
		}
	}
	assert.True(t, thorns)
}

func TestProcessRound_RoundCapFails(t *testing.T) {
	e := NewEngine(3)
	b := &domain.Battle{Status: domain.BattleFighting, MonsterHP: 100000000, MonsterMaxHP: 100000000,
		MonsterAtk: 1, ShipHP: 100000, ShipMaxHP: 100000, MaxRounds: 2}

	party := []Combatant{{ID: "u1", Power: 10, Effects: noEffects()}}
	e.ProcessRound(b, party)
	assert.Equal(t, domain.BattleFighting, b.Status)
	e.ProcessRound(b, party)
	assert.Equal(t, domain.BattleFailed, b.Status)
	assert.Equal(t, 2, b.Round)

	// A terminal battle ignores further rounds.
	e.ProcessRound(b, party)
	assert.Equal(t, 2, b.Round)
}

func TestProcessRound_HarpoonAndEnvBonusRaiseDamage(t *testing.T) {
	baseline := func(loadout, envBuff int) int64 {
		e := NewEngine(9)
		b := &domain.Battle{Status: domain.BattleFighting, MonsterHP: 100000000, MonsterMaxHP: 100000000,
			MonsterAtk: 1, ShipHP: 100000, ShipMaxHP: 100000, MaxRounds: 99, EnvBuff: envBuff}
		var total int64
		for i := 0; i < 50; i++ {
			e.ProcessRound(b, []Combatant{{ID: "u1", Power: 1000, Effects: noEffects(), LoadoutID: loadout}})
		}
		for _, ev := range b.Log {
			if ev.Kind == "attack" || ev.Kind == "crit" {
				total += ev.Value
			}
		}
		return total
	}

	bare := baseline(0, 3)
	harpoon := baseline(36, 3) // off-theme harpoon, flat bonus only
	matched := baseline(35, 3) // matches environment 3
	assert.Greater(t, harpoon, bare)
	assert.Greater(t, matched, harpoon)

	// The mystic harpoon turns the hostile environment around.
	hostileBare := baseline(0, 7)
	hostileMystic := baseline(40, 7)
	assert.Greater(t, hostileMystic, hostileBare)
}

func TestSettle_SuccessPaysTheTable(t *testing.T) {
	e := NewEngine(1)
	b := &domain.Battle{
		Status: domain.BattleSuccess, Difficulty: 2,
		Party:    []string{"u1", "u2"},
		Loadouts: map[string]int{"u1": 35},
	}

	rewards := e.Settle(b, testBosses[1], true)
	require.Len(t, rewards, 2)

	r1 := rewards["u1"]
	assert.InDelta(t, 40000, r1.Exp, 4000)
	assert.InDelta(t, 40000, r1.Gold, 4000)
	assert.Equal(t, 31, r1.TokenID, "difficulty 2 pays the storm token")
	assert.Equal(t, 1, r1.TokenCount)
	assert.Equal(t, 35, r1.LoadoutID)
	assert.Equal(t, HarpoonCost, r1.LoadoutCost)
	assert.False(t, r1.KeepLoadout)

	total := 0
	for _, n := range r1.Drops {
		total += n
	}
	assert.InDelta(t, 12, total, 2)

	r2 := rewards["u2"]
	assert.Equal(t, 0, r2.LoadoutID)
	assert.Equal(t, 0, r2.LoadoutCost)
}

func TestSettle_BonusBuffs(t *testing.T) {
	e := NewEngine(1)
	b := &domain.Battle{
		Status: domain.BattleSuccess, Difficulty: 1,
		Party:      []string{"u1"},
		Loadouts:   map[string]int{"u1": 33},
		BonusBuffs: []int{BonusSuperRareGold, BonusStrong, BonusBlessed},
	}

	rewards := e.Settle(b, testBosses[0], true)
	r := rewards["u1"]

	assert.InDelta(t, 20000*1.5, r.Gold, 3500)
	assert.InDelta(t, 20000*1.2, r.Exp, 3000)
	assert.Equal(t, 2, r.TokenCount)
	assert.True(t, r.KeepLoadout, "blessed raids return the harpoon")
}

func TestSettle_GemHoardAvoidsOwnGem(t *testing.T) {
	e := NewEngine(1)
	b := &domain.Battle{
		Status: domain.BattleSuccess, Difficulty: 3,
		Party:      []string{"u1"},
		BonusBuffs: []int{BonusGemHoard},
	}

	// The boss's own gem is its last drop (314); the hoard always pays a
	// foreign one. Foreign gems appear in no drop table here, so any count
	// on them comes from the hoard alone.
	for i := 0; i < 50; i++ {
		r := e.Settle(b, testBosses[0], true)["u1"]
		hoard := 0
		for _, gem := range []int{319, 324, 329, 334, 339, 344, 349} {
			if n := r.Drops[gem]; n > 0 {
				assert.Equal(t, 3, n, "hoard size matches the difficulty")
				hoard = gem
			}
		}
		assert.NotZero(t, hoard, "gem hoard pays a foreign gem")
	}
}

func TestSettle_FailureScalesByDamage(t *testing.T) {
	e := NewEngine(1)
	b := &domain.Battle{
		Status: domain.BattleFailed, Difficulty: 3,
		Party:        []string{"u1"},
		Loadouts:     map[string]int{"u1": ItemFin},
		MonsterMaxHP: 100000, MonsterHP: 50000,
	}

	r := e.Settle(b, testBosses[0], false)["u1"]

	assert.InDelta(t, 30000, r.Exp, 3500) // 60000 * 50% progress
	assert.Zero(t, r.Gold)
	assert.Empty(t, r.Drops)
	assert.Zero(t, r.TokenCount)
	assert.Equal(t, FinCost, r.LoadoutCost, "the fin is lost even on failure")
}
