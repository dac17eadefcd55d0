package game_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrangea-games/fishpond/internal/catalog"
	"github.com/hydrangea-games/fishpond/internal/catch"
	"github.com/hydrangea-games/fishpond/internal/concurrency"
	"github.com/hydrangea-games/fishpond/internal/domain"
	"github.com/hydrangea-games/fishpond/internal/gacha"
	"github.com/hydrangea-games/fishpond/internal/game"
	"github.com/hydrangea-games/fishpond/internal/repository"
	"github.com/hydrangea-games/fishpond/internal/store"
)

// A Wednesday at noon: outside the quiet hours, past the battle spawn hour.
var baseTime = time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc  game.Service
	repo *repository.Repository
	cat  *catalog.Catalog

	// clock is the frozen service time; tests move it forward directly.
	clock time.Time
}

func newFixture(t *testing.T, seed int64) *fixture {
	t.Helper()
	cat, err := catalog.Load("../../data/catalog")
	require.NoError(t, err)
	f := &fixture{
		repo:  repository.New(store.NewMemoryStore()),
		cat:   cat,
		clock: baseTime,
	}
	f.svc = game.NewServiceAt(f.repo, cat, concurrency.NewLockManager(), seed, func() time.Time { return f.clock })
	return f
}

func (f *fixture) player(t *testing.T, id string, mut func(p *domain.Player)) {
	t.Helper()
	ctx := context.Background()
	p, err := f.repo.GetPlayer(ctx, id)
	require.NoError(t, err)
	mut(p)
	require.NoError(t, f.repo.SavePlayer(ctx, p))
}

func (f *fixture) group(t *testing.T, id string, mut func(g *domain.GroupSession)) {
	t.Helper()
	ctx := context.Background()
	g, err := f.repo.GetGroup(ctx, id)
	require.NoError(t, err)
	mut(g)
	require.NoError(t, f.repo.SaveGroup(ctx, g))
}

func (f *fixture) mustPlayer(t *testing.T, id string) *domain.Player {
	t.Helper()
	p, err := f.repo.GetPlayer(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (f *fixture) mustGroup(t *testing.T, id string) *domain.GroupSession {
	t.Helper()
	g, err := f.repo.GetGroup(context.Background(), id)
	require.NoError(t, err)
	return g
}

func TestStatus_NewPlayerSnapshot(t *testing.T) {
	f := newFixture(t, 1)
	res, err := f.svc.Status(context.Background(), "g1", "u1")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	payload, ok := res.Payload.(game.StatusPayload)
	require.True(t, ok)
	assert.Equal(t, "u1", payload.PlayerID)
	assert.Equal(t, 1, payload.Level)
	assert.Equal(t, int64(0), payload.Gold)
	assert.Equal(t, 5, payload.FeedsLeft)
	assert.Equal(t, f.cat.FishCount(), payload.TotalSpecies)
	assert.Zero(t, payload.CaughtSpecies)
	assert.False(t, payload.InFever)
	assert.Nil(t, payload.CurrentFish)
}

func TestStatus_RecordsMembership(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	_, err := f.svc.Status(ctx, "g1", "u1")
	require.NoError(t, err)
	_, err = f.svc.Status(ctx, "g1", "u2")
	require.NoError(t, err)
	_, err = f.svc.Status(ctx, "g1", "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{"u1", "u2"}, f.mustGroup(t, "g1").Members)
}

func TestCatch_EmptyPond(t *testing.T) {
	f := newFixture(t, 1)
	res, err := f.svc.Catch(context.Background(), "g1", "u1", false)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeNoTarget, res.Code)
}

func TestCatch_SecondAttemptRejected(t *testing.T) {
	f := newFixture(t, 1)
	f.group(t, "g1", func(g *domain.GroupSession) {
		g.CurrentFishID = 1
		g.LeaveCountdown = 5
		g.Attempted = []string{"u1"}
	})
	res, err := f.svc.Catch(context.Background(), "g1", "u1", false)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeAlreadyAttempted, res.Code)
}

func TestCatch_MasterBallNeedsItem(t *testing.T) {
	f := newFixture(t, 1)
	f.group(t, "g1", func(g *domain.GroupSession) {
		g.CurrentFishID = 1
		g.LeaveCountdown = 5
	})
	res, err := f.svc.Catch(context.Background(), "g1", "u1", true)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeMissingItem, res.Code)
}

func TestCatch_MasterBallAlwaysLands(t *testing.T) {
	f := newFixture(t, 7)
	f.group(t, "g1", func(g *domain.GroupSession) {
		g.CurrentFishID = 1
		g.LeaveCountdown = 5
	})
	f.player(t, "u1", func(p *domain.Player) { p.AddItem(14, 1) })

	res, err := f.svc.Catch(context.Background(), "g1", "u1", true)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	out, ok := res.Payload.(catch.Outcome)
	require.True(t, ok)
	assert.True(t, out.Success)
	assert.True(t, out.FirstCatch)
	assert.True(t, out.FishCleared)

	p := f.mustPlayer(t, "u1")
	assert.Zero(t, p.ItemCount(14), "the master ball is spent")
	assert.Contains(t, p.CaptureLog, 1)
	assert.Positive(t, p.Gold)

	g := f.mustGroup(t, "g1")
	assert.Zero(t, g.CurrentFishID)
	assert.Contains(t, g.CaptureLog, 1)
}

func TestGacha_InsufficientGold(t *testing.T) {
	f := newFixture(t, 1)
	f.player(t, "u1", func(p *domain.Player) { p.Gold = 9 })
	res, err := f.svc.Gacha(context.Background(), "g1", "u1", gacha.TierSingle)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInsufficientGold, res.Code)
}

func TestGacha_SingleDraw(t *testing.T) {
	f := newFixture(t, 2)
	f.player(t, "u1", func(p *domain.Player) { p.Gold = 10 })

	res, err := f.svc.Gacha(context.Background(), "g1", "u1", gacha.TierSingle)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	results, ok := res.Payload.([]gacha.Result)
	require.True(t, ok)
	assert.Len(t, results, 1)
	assert.Equal(t, int64(0), f.mustPlayer(t, "u1").Gold)
}

func TestMysteryGacha_RequiresMysticShop(t *testing.T) {
	f := newFixture(t, 1)
	f.player(t, "u1", func(p *domain.Player) { p.Gold = 1000 })
	res, err := f.svc.MysteryGacha(context.Background(), "g1", "u1", gacha.TierSingle)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLocked, res.Code)
}

func TestMysteryGacha_Draws(t *testing.T) {
	f := newFixture(t, 3)
	f.group(t, "g1", func(g *domain.GroupSession) { g.Building(domain.BuildingMysticShop).Level = 1 })
	f.player(t, "u1", func(p *domain.Player) { p.Gold = 100 })

	res, err := f.svc.MysteryGacha(context.Background(), "g1", "u1", gacha.TierSingle)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	assert.Equal(t, int64(0), f.mustPlayer(t, "u1").Gold, "mystery draws cost ten times the gold")
}

func TestBuy_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		itemID int
		count  int
		gold   int64
		want   int
	}{
		{"unknown item", 9999, 1, 1000, domain.CodeNoTarget},
		{"zero count", 1, 0, 1000, domain.CodeInvalidArgs},
		{"not for sale", 22, 1, 1000, domain.CodeInvalidArgs},
		{"building gate", 208, 1, 100000, domain.CodeLocked},
		{"not enough gold", 1, 1, 50, domain.CodeInsufficientGold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 1)
			f.player(t, "u1", func(p *domain.Player) { p.Gold = tt.gold })
			res, err := f.svc.Buy(context.Background(), "g1", "u1", tt.itemID, tt.count)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Code)
		})
	}
}

func TestBuy_TrophyRodGates(t *testing.T) {
	f := newFixture(t, 1)
	f.group(t, "g1", func(g *domain.GroupSession) { g.Building(domain.BuildingFishLab).Level = 3 })
	f.player(t, "u1", func(p *domain.Player) {
		p.Gold = 500000
		p.CaptureLog = []int{1, 2, 3}
	})

	res, err := f.svc.Buy(context.Background(), "g1", "u1", 209, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLocked, res.Code, "collector rod wants a hundred species")

	res, err = f.svc.Buy(context.Background(), "g1", "u1", 210, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLocked, res.Code, "champion rod wants the whole log")
}

func TestBuy_Success(t *testing.T) {
	f := newFixture(t, 1)
	f.player(t, "u1", func(p *domain.Player) { p.Gold = 500 })

	res, err := f.svc.Buy(context.Background(), "g1", "u1", 1, 3)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	p := f.mustPlayer(t, "u1")
	assert.Equal(t, int64(200), p.Gold)
	assert.Equal(t, 3, p.ItemCount(1))
}

func TestGift_Rejections(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	res, err := f.svc.Gift(ctx, "g1", "u1", "u2", 25, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInvalidArgs, res.Code)

	res, err = f.svc.Gift(ctx, "g1", "u1", "u1", 25, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInvalidArgs, res.Code)

	res, err = f.svc.Gift(ctx, "g1", "u1", "u2", 208, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInvalidArgs, res.Code, "the dissolver is not giftable")

	res, err = f.svc.Gift(ctx, "g1", "u1", "u2", 25, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeMissingItem, res.Code)
}

func TestGift_TransferAndCooldown(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.player(t, "u1", func(p *domain.Player) { p.AddItem(25, 3) })

	res, err := f.svc.Gift(ctx, "g1", "u1", "u2", 25, 2)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	assert.Equal(t, 1, f.mustPlayer(t, "u1").ItemCount(25))
	assert.Equal(t, 2, f.mustPlayer(t, "u2").ItemCount(25))

	res, err = f.svc.Gift(ctx, "g1", "u1", "u2", 25, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeCooldown, res.Code)

	f.clock = f.clock.Add(25 * time.Hour)
	res, err = f.svc.Gift(ctx, "g1", "u1", "u2", 25, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeOK, res.Code)
}

func TestUseItem_EquipToggle(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.player(t, "u1", func(p *domain.Player) { p.AddItem(209, 1) })

	res, err := f.svc.UseItem(ctx, "g1", "u1", 209, nil, false)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	assert.Equal(t, 209, f.mustPlayer(t, "u1").Equipment.Rod)

	res, err = f.svc.UseItem(ctx, "g1", "u1", 209, nil, false)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	assert.Zero(t, f.mustPlayer(t, "u1").Equipment.Rod)
}

func TestUseItem_AccessoryNeedsInstance(t *testing.T) {
	f := newFixture(t, 1)
	f.player(t, "u1", func(p *domain.Player) { p.AddItem(500, 1) })

	res, err := f.svc.UseItem(context.Background(), "g1", "u1", 500, nil, false)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeMissingItem, res.Code)
}

func TestUseItem_Feed(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.player(t, "u1", func(p *domain.Player) { p.AddItem(1, 3) })

	res, err := f.svc.UseItem(ctx, "g1", "u1", 1, nil, false)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	g := f.mustGroup(t, "g1")
	assert.Equal(t, 1, g.FeedTime)
	require.Len(t, g.FeedBuffs, 1)
	assert.Equal(t, domain.RarityR, g.FeedBuffs[0].Rarity)
	assert.Equal(t, 40, g.FeedBuffs[0].Bonus)
	assert.Equal(t, f.clock.Unix()+1800, g.FeedBuffs[0].ExpiresAt)

	res, err = f.svc.UseItem(ctx, "g1", "u1", 1, nil, false)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeWrongState, res.Code, "a feed effect is still running")

	res, err = f.svc.UseItem(ctx, "g1", "u1", 1, nil, true)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeOK, res.Code, "force overwrites the running effect")
	assert.Equal(t, 2, f.mustGroup(t, "g1").FeedTime)
}

func TestUseItem_FeedCapAndFever(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.player(t, "u1", func(p *domain.Player) { p.AddItem(1, 2) })

	f.group(t, "g1", func(g *domain.GroupSession) {
		g.FeedDay = f.clock.Day()
		g.FeedTime = 5
	})
	res, err := f.svc.UseItem(ctx, "g1", "u1", 1, nil, true)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLimitReached, res.Code)

	f.group(t, "g1", func(g *domain.GroupSession) {
		g.FeedTime = 0
		g.FeverExpiresAt = f.clock.Unix() + 600
	})
	res, err = f.svc.UseItem(ctx, "g1", "u1", 1, nil, true)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeWrongState, res.Code)
}

func TestUseItem_BoosterReplacesAndLabCharges(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.player(t, "u1", func(p *domain.Player) {
		p.AddItem(4, 1)
		p.AddItem(5, 1)
	})

	res, err := f.svc.UseItem(ctx, "g1", "u1", 4, nil, false)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	p := f.mustPlayer(t, "u1")
	require.Len(t, p.Buffs, 1)
	assert.Equal(t, domain.BuffPower, p.Buffs[0].Kind)
	assert.Equal(t, 10, p.Buffs[0].Power)
	assert.Equal(t, 1, p.Buffs[0].Charges)

	// A second booster replaces the first rather than stacking.
	f.group(t, "g1", func(g *domain.GroupSession) { g.Building(domain.BuildingFishLab).Level = 2 })
	res, err = f.svc.UseItem(ctx, "g1", "u1", 5, nil, false)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	p = f.mustPlayer(t, "u1")
	require.Len(t, p.Buffs, 1)
	assert.Equal(t, 20, p.Buffs[0].Power)
	assert.Equal(t, 4, p.Buffs[0].Charges, "the lab adds a charge per level")
}

func TestUseItem_FortuneCard(t *testing.T) {
	f := newFixture(t, 1)
	f.player(t, "u1", func(p *domain.Player) { p.AddItem(7, 1) })

	res, err := f.svc.UseItem(context.Background(), "g1", "u1", 7, nil, false)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	p := f.mustPlayer(t, "u1")
	require.Len(t, p.Buffs, 1)
	assert.Equal(t, domain.BuffFishingBonus, p.Buffs[0].Kind)
	assert.Equal(t, 0.25, p.Buffs[0].Percent)
	assert.Equal(t, f.clock.Unix()+1200, p.Buffs[0].ExpiresAt)
}

func TestUseItem_GlowSticksShareKey(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.player(t, "u1", func(p *domain.Player) {
		p.AddItem(10, 1)
		p.AddItem(11, 1)
		p.AddItem(407, 1)
	})

	for _, id := range []int{10, 11} {
		res, err := f.svc.UseItem(ctx, "g1", "u1", id, nil, false)
		require.NoError(t, err)
		require.Equal(t, domain.CodeOK, res.Code)
	}
	g := f.mustGroup(t, "g1")
	require.Len(t, g.AvgPowerBuffs, 1, "normal sticks replace each other")
	assert.Equal(t, 30, g.AvgPowerBuffs[0].Power)

	res, err := f.svc.UseItem(ctx, "g1", "u1", 407, nil, false)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	assert.Len(t, f.mustGroup(t, "g1").AvgPowerBuffs, 2, "the starlight stick stacks on its own key")
}

func TestUseItem_TalentBooks(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.player(t, "u1", func(p *domain.Player) {
		p.AddItem(25, 2)
		p.AddItem(29, 2)
	})

	res, err := f.svc.UseItem(ctx, "g1", "u1", 25, []int{1}, false)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLocked, res.Code, "books need the seven statue")

	f.group(t, "g1", func(g *domain.GroupSession) { g.Building(domain.BuildingSevenStatue).Level = 1 })

	res, err = f.svc.UseItem(ctx, "g1", "u1", 25, nil, false)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInvalidArgs, res.Code, "a talent must be named")

	res, err = f.svc.UseItem(ctx, "g1", "u1", 25, []int{1}, false)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	p := f.mustPlayer(t, "u1")
	assert.Equal(t, int64(10), p.TalentExp[1])
	assert.Equal(t, 1, p.ItemCount(25))

	// The custom book charges gold per exp point and caps the amount.
	res, err = f.svc.UseItem(ctx, "g1", "u1", 29, []int{1, 300}, false)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInsufficientGold, res.Code)

	f.player(t, "u1", func(p *domain.Player) { p.Gold = 50000 })
	res, err = f.svc.UseItem(ctx, "g1", "u1", 29, []int{1, 300}, false)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	p = f.mustPlayer(t, "u1")
	assert.Equal(t, int64(310), p.TalentExp[1])
	assert.Equal(t, int64(47000), p.Gold)

	res, err = f.svc.UseItem(ctx, "g1", "u1", 29, []int{1, 99999}, false)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	p = f.mustPlayer(t, "u1")
	assert.Equal(t, int64(2310), p.TalentExp[1], "custom study caps at 2000 exp")
	assert.Equal(t, int64(27000), p.Gold)
}

func TestUseItem_Dissolver(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.player(t, "u1", func(p *domain.Player) {
		p.AddItem(208, 2)
		p.AddItem(550, 1)
		p.AccessoryMeta = map[int]domain.AccessoryInstance{550: {TemplateID: 500}}
		p.Equipment.Accessory = 550
	})

	res, err := f.svc.UseItem(ctx, "g1", "u1", 208, []int{550}, false)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeWrongState, res.Code, "equipped accessories stay put")

	f.player(t, "u1", func(p *domain.Player) { p.Equipment.Accessory = 0 })
	res, err = f.svc.UseItem(ctx, "g1", "u1", 208, []int{550}, false)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeMissingItem, res.Code, "a small talent book is the catalyst")

	f.player(t, "u1", func(p *domain.Player) { p.AddItem(25, 1) })
	res, err = f.svc.UseItem(ctx, "g1", "u1", 208, []int{550}, false)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	// First dissolve of the day never fails, so the template's gem comes back.
	p := f.mustPlayer(t, "u1")
	assert.Equal(t, 1, p.ItemCount(22))
	assert.Zero(t, p.ItemCount(550))
	assert.Zero(t, p.ItemCount(25))
	assert.NotContains(t, p.AccessoryMeta, 550)
	assert.Equal(t, 1, p.RenewCount)
}

func TestUseItem_GoldPouch(t *testing.T) {
	f := newFixture(t, 1)
	f.player(t, "u1", func(p *domain.Player) { p.AddItem(299, 1) })

	res, err := f.svc.UseItem(context.Background(), "g1", "u1", 299, nil, false)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	p := f.mustPlayer(t, "u1")
	assert.Equal(t, int64(1000), p.Gold)
	assert.Zero(t, p.ItemCount(299))
}

func TestUseItem_FeverTicket(t *testing.T) {
	f := newFixture(t, 5)
	f.player(t, "u1", func(p *domain.Player) { p.AddItem(408, 1) })

	res, err := f.svc.UseItem(context.Background(), "g1", "u1", 408, nil, false)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	g := f.mustGroup(t, "g1")
	assert.True(t, g.InFever(f.clock.Unix()))
	assert.GreaterOrEqual(t, g.FeverExpiresAt, f.clock.Unix()+3600)
	assert.LessOrEqual(t, g.FeverExpiresAt, f.clock.Unix()+7200)
	assert.NotEmpty(t, g.FeverFishIDs)
}

func TestUseItem_JewelConversion(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.player(t, "u1", func(p *domain.Player) { p.AddItem(314, 1) })

	res, err := f.svc.UseItem(ctx, "g1", "u1", 314, nil, false)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLocked, res.Code)

	f.group(t, "g1", func(g *domain.GroupSession) { g.Building(domain.BuildingMysticShop).Level = 1 })
	res, err = f.svc.UseItem(ctx, "g1", "u1", 314, nil, false)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	p := f.mustPlayer(t, "u1")
	assert.Zero(t, p.ItemCount(314))
	jewels := p.ItemCount(20) + p.ItemCount(21) + p.ItemCount(22)
	assert.Equal(t, 1, jewels)
}

func TestUseItem_ForgeHarpoon(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.player(t, "u1", func(p *domain.Player) { p.AddItem(301, 1) })

	res, err := f.svc.UseItem(ctx, "g1", "u1", 301, nil, false)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLocked, res.Code)

	f.group(t, "g1", func(g *domain.GroupSession) { g.Building(domain.BuildingForgeShop).Level = 1 })
	res, err = f.svc.UseItem(ctx, "g1", "u1", 301, nil, false)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	p := f.mustPlayer(t, "u1")
	assert.Zero(t, p.ItemCount(301))
	assert.Equal(t, 1, p.ItemCount(33))
}

func TestUseItem_Unusable(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.player(t, "u1", func(p *domain.Player) {
		p.AddItem(14, 1)
		p.AddItem(33, 1)
		p.AddItem(20, 1)
	})

	res, err := f.svc.UseItem(ctx, "g1", "u1", 14, nil, false)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInvalidArgs, res.Code, "master balls are thrown while catching")

	res, err = f.svc.UseItem(ctx, "g1", "u1", 33, nil, false)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInvalidArgs, res.Code, "harpoons belong to the raid loadout")

	res, err = f.svc.UseItem(ctx, "g1", "u1", 20, nil, false)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInvalidArgs, res.Code)
}

func TestCraft_Rejections(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	res, err := f.svc.Craft(ctx, "g1", "u1", 9999, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeNoTarget, res.Code)

	res, err = f.svc.Craft(ctx, "g1", "u1", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInvalidArgs, res.Code, "feed has no recipe")

	f.player(t, "u1", func(p *domain.Player) { p.AddItem(22, 2) })
	res, err = f.svc.Craft(ctx, "g1", "u1", 14, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLocked, res.Code, "the master ball wants the mystic shop")

	f.player(t, "u1", func(p *domain.Player) { p.AddItem(25, 2) })
	res, err = f.svc.Craft(ctx, "g1", "u1", 26, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInsufficientMats, res.Code)
}

func TestCraft_BatchTalentBooks(t *testing.T) {
	f := newFixture(t, 1)
	f.player(t, "u1", func(p *domain.Player) { p.AddItem(25, 6) })

	res, err := f.svc.Craft(context.Background(), "g1", "u1", 26, 2)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	p := f.mustPlayer(t, "u1")
	assert.Equal(t, 2, p.ItemCount(26))
	assert.Zero(t, p.ItemCount(25))
}

func TestCraft_NonBatchForcesSingle(t *testing.T) {
	f := newFixture(t, 1)
	f.player(t, "u1", func(p *domain.Player) {
		p.AddItem(3, 2)
		p.AddItem(104, 1)
	})

	// Golden feed is not batchable: a count of 5 still crafts one.
	res, err := f.svc.Craft(context.Background(), "g1", "u1", 404, 5)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	p := f.mustPlayer(t, "u1")
	assert.Equal(t, 1, p.ItemCount(404))
	assert.Zero(t, p.ItemCount(3))
	assert.Zero(t, p.ItemCount(104))
}

func TestCraft_MasterBallPriceDoubles(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.group(t, "g1", func(g *domain.GroupSession) { g.Building(domain.BuildingMysticShop).Level = 2 })
	f.player(t, "u1", func(p *domain.Player) {
		p.AddItem(22, 4)
		p.Score = 1500
	})

	res, err := f.svc.Craft(ctx, "g1", "u1", 14, 1)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	p := f.mustPlayer(t, "u1")
	assert.Equal(t, 1, p.ItemCount(14))
	assert.Equal(t, int64(500), p.Score)
	assert.Equal(t, 1, p.MasterBallCrafts)

	// The next ball costs 2000 score, and 500 is not enough.
	res, err = f.svc.Craft(ctx, "g1", "u1", 14, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInsufficientGold, res.Code)
}

func TestCraft_AccessoryInstancing(t *testing.T) {
	f := newFixture(t, 11)
	f.group(t, "g1", func(g *domain.GroupSession) { g.Building(domain.BuildingMysticShop).Level = 3 })
	f.player(t, "u1", func(p *domain.Player) {
		p.AddItem(22, 1)
		p.AddItem(21, 2)
		p.Score = 300
	})

	res, err := f.svc.Craft(context.Background(), "g1", "u1", 500, 1)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	p := f.mustPlayer(t, "u1")
	require.Contains(t, p.AccessoryMeta, 500, "the first instance takes the lowest free id")
	meta := p.AccessoryMeta[500]
	assert.Equal(t, 500, meta.TemplateID)
	assert.NotEmpty(t, meta.Skills)
	for _, ref := range meta.Skills {
		assert.Positive(t, ref.Level)
	}
	assert.Equal(t, 1, p.ItemCount(500))
	assert.Equal(t, int64(100), p.Score)
	assert.Zero(t, p.ItemCount(22))
	assert.Zero(t, p.ItemCount(21))
}

func TestBuildingStatus_ListsAll(t *testing.T) {
	f := newFixture(t, 1)
	res, err := f.svc.BuildingStatus(context.Background(), "g1")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	reports, ok := res.Payload.([]game.BuildingReport)
	require.True(t, ok)
	require.Len(t, reports, 9)
	assert.Equal(t, "big_pot", reports[0].ID)
	assert.Equal(t, 5, reports[0].MaxLevel)
	assert.Zero(t, reports[0].Level)
	assert.NotEmpty(t, reports[0].Materials)
}

func TestAddBuildingMaterial(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	res, err := f.svc.AddBuildingMaterial(ctx, "g1", "u1", "lighthouse", 299, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeNoTarget, res.Code)

	res, err = f.svc.AddBuildingMaterial(ctx, "g1", "u1", "big_pot", 299, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeMissingItem, res.Code)

	f.player(t, "u1", func(p *domain.Player) { p.AddItem(1, 1) })
	res, err = f.svc.AddBuildingMaterial(ctx, "g1", "u1", "big_pot", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInvalidArgs, res.Code, "feed is not a pot material")

	f.player(t, "u1", func(p *domain.Player) { p.AddItem(299, 12) })
	res, err = f.svc.AddBuildingMaterial(ctx, "g1", "u1", "big_pot", 299, 5)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	assert.Equal(t, 7, f.mustPlayer(t, "u1").ItemCount(299))
	assert.Equal(t, 5, f.mustGroup(t, "g1").Building("big_pot").Materials[299])

	// Without a building center the next contribution waits a full day.
	res, err = f.svc.AddBuildingMaterial(ctx, "g1", "u1", "big_pot", 299, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeCooldown, res.Code)

	f.clock = f.clock.Add(25 * time.Hour)
	res, err = f.svc.AddBuildingMaterial(ctx, "g1", "u1", "big_pot", 299, 7)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	assert.Equal(t, 10, f.mustGroup(t, "g1").Building("big_pot").Materials[299],
		"the line refuses materials past its requirement")
	assert.Equal(t, 2, f.mustPlayer(t, "u1").ItemCount(299))
}

func TestUpgradeBuilding(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	f.group(t, "g1", func(g *domain.GroupSession) { g.Building(domain.BuildingBigPot).Level = 5 })
	res, err := f.svc.UpgradeBuilding(ctx, "g1", "u1", "big_pot")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLimitReached, res.Code)

	f.group(t, "g1", func(g *domain.GroupSession) { g.Building(domain.BuildingBigPot).Level = 0 })
	res, err = f.svc.UpgradeBuilding(ctx, "g1", "u1", "fish_factory")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLocked, res.Code, "the factory trails the pot")

	res, err = f.svc.UpgradeBuilding(ctx, "g1", "u1", "big_pot")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInsufficientMats, res.Code)

	f.group(t, "g1", func(g *domain.GroupSession) {
		g.Building(domain.BuildingBigPot).Materials = map[int]int{299: 10, 301: 5, 302: 2}
	})
	res, err = f.svc.UpgradeBuilding(ctx, "g1", "u1", "big_pot")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	state := f.mustGroup(t, "g1").Building("big_pot")
	assert.Equal(t, 1, state.Level)
	assert.Nil(t, state.Materials)
}

func TestPotAdd(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.player(t, "u1", func(p *domain.Player) {
		p.AddItem(1, 10)
		p.AddItem(104, 3)
	})

	res, err := f.svc.PotAdd(ctx, "g1", "u1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLocked, res.Code)

	f.group(t, "g1", func(g *domain.GroupSession) { g.Building(domain.BuildingBigPot).Level = 1 })
	res, err = f.svc.PotAdd(ctx, "g1", "u1", 1, 10)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	assert.Equal(t, 10, f.mustGroup(t, "g1").PotFuel)
	assert.Zero(t, f.mustPlayer(t, "u1").ItemCount(1))

	// Near capacity the consume count is clamped, nothing is wasted.
	f.group(t, "g1", func(g *domain.GroupSession) { g.PotFuel = 95 })
	res, err = f.svc.PotAdd(ctx, "g1", "u1", 104, 3)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	assert.Equal(t, 100, f.mustGroup(t, "g1").PotFuel)
	assert.Equal(t, 2, f.mustPlayer(t, "u1").ItemCount(104), "one nugget fills the pot")

	res, err = f.svc.PotAdd(ctx, "g1", "u1", 104, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLimitReached, res.Code)
}

func TestPotStatus(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	res, err := f.svc.PotStatus(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLocked, res.Code)

	f.group(t, "g1", func(g *domain.GroupSession) {
		g.Building(domain.BuildingBigPot).Level = 2
		g.PotFuel = 50
		g.PotConsumeAt = f.clock.Unix() + 600
	})
	res, err = f.svc.PotStatus(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	payload, ok := res.Payload.(game.PotPayload)
	require.True(t, ok)
	assert.Equal(t, 2, payload.Level)
	assert.Equal(t, 50, payload.Fuel)
	assert.Equal(t, 200, payload.Capacity)
	assert.Equal(t, 10, payload.ConsumeSpeed)
	assert.Equal(t, 20, payload.AvgPowerBoost)
	assert.Equal(t, 5, payload.PowerBoost)
}

func TestPot_BurnsFuelOverTime(t *testing.T) {
	f := newFixture(t, 1)
	f.group(t, "g1", func(g *domain.GroupSession) {
		g.Building(domain.BuildingBigPot).Level = 1
		g.PotFuel = 40
		g.PotConsumeAt = f.clock.Unix() + 600
	})

	f.clock = f.clock.Add(21 * time.Minute)
	res, err := f.svc.PotStatus(context.Background(), "g1")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	assert.Equal(t, 20, res.Payload.(game.PotPayload).Fuel, "two consume ticks at 10 fuel each")
}

func TestSignIn(t *testing.T) {
	f := newFixture(t, 9)
	ctx := context.Background()

	res, err := f.svc.SignIn(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLocked, res.Code)

	f.group(t, "g1", func(g *domain.GroupSession) { g.Building(domain.BuildingSevenStatue).Level = 1 })

	res, err = f.svc.SignIn(ctx, "g1", "u1")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	assert.Contains(t, res.Message, "first of the day")

	p := f.mustPlayer(t, "u1")
	assert.Equal(t, 1, p.ItemCount(408), "the first sign-in earns fever bait")
	rewards := 0
	for id := range p.Inventory {
		if id == 408 {
			continue
		}
		rewards++
		inCommon := id >= 301 && id <= 313
		inTheme := id >= 325 && id <= 328
		assert.True(t, inCommon || inTheme, "reward %d outside the statue pool", id)
	}
	assert.Equal(t, 1, rewards)

	res, err = f.svc.SignIn(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeAlreadyAttempted, res.Code)

	res, err = f.svc.SignIn(ctx, "g1", "u2")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	assert.Zero(t, f.mustPlayer(t, "u2").ItemCount(408), "only the first signer gets bait")
}

func TestSpawnTick_QuietHours(t *testing.T) {
	f := newFixture(t, 1)
	f.group(t, "g1", func(g *domain.GroupSession) {
		g.CurrentFishID = 1
		g.LeaveCountdown = 3
	})

	f.clock = time.Date(2026, 3, 18, 3, 0, 0, 0, time.UTC)
	require.NoError(t, f.svc.SpawnTick(context.Background()))

	g := f.mustGroup(t, "g1")
	assert.Equal(t, 1, g.CurrentFishID)
	assert.Equal(t, 3, g.LeaveCountdown, "the pond sleeps through the small hours")
}

func TestSpawnTick_CountdownAndSpawn(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	f.group(t, "g1", func(g *domain.GroupSession) {
		g.EnsureMember("u1")
		g.CurrentFishID = 1
		g.LeaveCountdown = 5
		g.Attempted = []string{"u1"}
	})

	require.NoError(t, f.svc.SpawnTick(ctx))
	assert.Equal(t, 4, f.mustGroup(t, "g1").LeaveCountdown)

	f.group(t, "g1", func(g *domain.GroupSession) { g.ClearFish() })
	spawned := false
	for i := 0; i < 500 && !spawned; i++ {
		require.NoError(t, f.svc.SpawnTick(ctx))
		spawned = f.mustGroup(t, "g1").CurrentFishID != 0
	}
	require.True(t, spawned, "a fish shows up within a few hundred ticks")

	g := f.mustGroup(t, "g1")
	assert.Empty(t, g.Attempted, "a fresh spawn clears the attempt list")
	assert.Equal(t, 5, g.LeaveCountdown)
	_, ok := f.cat.Fish(g.CurrentFishID)
	assert.True(t, ok)
}

func TestFeverCheck_FullFeedsGuaranteeFever(t *testing.T) {
	f := newFixture(t, 6)
	f.group(t, "g1", func(g *domain.GroupSession) {
		g.FeedDay = f.clock.Day()
		g.FeedTime = 5
	})

	require.NoError(t, f.svc.FeverCheck(context.Background()))

	g := f.mustGroup(t, "g1")
	assert.True(t, g.InFever(f.clock.Unix()))
	assert.NotEmpty(t, g.FeverFishIDs)
}

func TestFeverCheck_NoFeedsNoFever(t *testing.T) {
	f := newFixture(t, 6)
	f.group(t, "g1", func(g *domain.GroupSession) { g.EnsureMember("u1") })

	require.NoError(t, f.svc.FeverCheck(context.Background()))
	assert.False(t, f.mustGroup(t, "g1").InFever(f.clock.Unix()))
}

func TestSimulateSpawn(t *testing.T) {
	f := newFixture(t, 1)
	res, err := f.svc.SimulateSpawn(context.Background(), "g1")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	chances, ok := res.Payload.([]game.SpawnChance)
	require.True(t, ok)
	require.NotEmpty(t, chances)
	total := 0.0
	for _, c := range chances {
		assert.Positive(t, c.Percent)
		total += c.Percent
	}
	assert.Less(t, total, 100.0, "spawnless ticks keep the total under 100")
}

func TestSimulateSpawn_MasksUnknownFish(t *testing.T) {
	f := newFixture(t, 1)
	f.group(t, "g1", func(g *domain.GroupSession) { g.CaptureLog = []int{1} })

	res, err := f.svc.SimulateSpawn(context.Background(), "g1")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	chances, ok := res.Payload.([]game.SpawnChance)
	require.True(t, ok)

	var known, hidden bool
	for _, c := range chances {
		if c.Name == "Mudskipper" {
			known = true
			assert.Equal(t, 1, c.ID)
			continue
		}
		hidden = true
		assert.Zero(t, c.ID)
		assert.Equal(t, "??????", c.Name)
		assert.Positive(t, c.Percent)
	}
	assert.True(t, known, "a logged fish shows its name")
	assert.True(t, hidden, "unlogged fish stay masked")
}

func TestUseItem_ConcurrentSameGroup(t *testing.T) {
	f := newFixture(t, 1)
	const workers, each = 4, 50
	f.player(t, "u1", func(p *domain.Player) { p.AddItem(299, workers*each) })

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				_, err := f.svc.UseItem(context.Background(), "g1", "u1", 299, nil, false)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	p := f.mustPlayer(t, "u1")
	assert.Equal(t, int64(1000*workers*each), p.Gold)
	assert.Zero(t, p.ItemCount(299))
}

// One player fishing in several ponds at once must not lose pouch
// consumptions or gold credits between them.
func TestUseItem_ConcurrentAcrossGroups(t *testing.T) {
	f := newFixture(t, 1)
	const groups, each = 8, 25
	f.player(t, "u1", func(p *domain.Player) { p.AddItem(299, groups*each) })

	var wg sync.WaitGroup
	for i := 0; i < groups; i++ {
		groupID := fmt.Sprintf("g%d", i+1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				_, err := f.svc.UseItem(context.Background(), groupID, "u1", 299, nil, false)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	p := f.mustPlayer(t, "u1")
	assert.Equal(t, int64(1000*groups*each), p.Gold)
	assert.Zero(t, p.ItemCount(299))
}

func TestGift_ConcurrentRecipientAcrossGroups(t *testing.T) {
	f := newFixture(t, 1)
	const groups = 6
	for i := 0; i < groups; i++ {
		f.player(t, fmt.Sprintf("sender%d", i), func(p *domain.Player) { p.AddItem(1, 3) })
	}

	var wg sync.WaitGroup
	for i := 0; i < groups; i++ {
		fromID := fmt.Sprintf("sender%d", i)
		groupID := fmt.Sprintf("g%d", i+1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.Gift(context.Background(), groupID, fromID, "hoarder", 1, 3)
			assert.NoError(t, err)
			assert.Equal(t, domain.CodeOK, res.Code)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3*groups, f.mustPlayer(t, "hoarder").ItemCount(1))
}

func TestBattleSpawnCheck_Gates(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	// No port, no monster.
	f.group(t, "g1", func(g *domain.GroupSession) { g.EnsureMember("u1") })
	require.NoError(t, f.svc.BattleSpawnCheck(ctx))
	assert.Zero(t, f.mustGroup(t, "g1").CurrentBattleID)

	// Too early in the morning.
	f.group(t, "g1", func(g *domain.GroupSession) { g.Building(domain.BuildingPort).Level = 1 })
	f.clock = time.Date(2026, 3, 18, 6, 0, 0, 0, time.UTC)
	require.NoError(t, f.svc.BattleSpawnCheck(ctx))
	assert.Zero(t, f.mustGroup(t, "g1").CurrentBattleID)

	f.clock = baseTime
	require.NoError(t, f.svc.BattleSpawnCheck(ctx))
	g := f.mustGroup(t, "g1")
	require.Equal(t, 1, g.CurrentBattleID)
	assert.Equal(t, 1, g.BattleCount)

	// The same hour never spawns twice.
	require.NoError(t, f.svc.BattleSpawnCheck(ctx))
	assert.Equal(t, 1, f.mustGroup(t, "g1").BattleCount)
}

func TestBattleLifecycle(t *testing.T) {
	f := newFixture(t, 8)
	ctx := context.Background()
	f.group(t, "g1", func(g *domain.GroupSession) { g.Building(domain.BuildingPort).Level = 1 })
	f.player(t, "u1", func(p *domain.Player) { p.AddItem(33, 10) })

	require.NoError(t, f.svc.BattleSpawnCheck(ctx))
	require.Equal(t, 1, f.mustGroup(t, "g1").CurrentBattleID)

	res, err := f.svc.BattleStatus(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	payload := res.Payload.(game.BattlePayload)
	assert.Equal(t, domain.BattleIdle, payload.Status)
	assert.Equal(t, 1, payload.Difficulty, "a level one port only spawns difficulty one")
	assert.Equal(t, 10, payload.MaxRounds)

	res, err = f.svc.BattleJoin(ctx, "g1", "u1")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	res, err = f.svc.BattleJoin(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeAlreadyAttempted, res.Code)

	res, err = f.svc.BattleJoin(ctx, "g1", "u2")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	res, err = f.svc.BattleJoin(ctx, "g1", "u3")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLimitReached, res.Code, "a level one port carries two")

	res, err = f.svc.BattleEquip(ctx, "g1", "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInvalidArgs, res.Code, "feed is no raid gear")
	res, err = f.svc.BattleEquip(ctx, "g1", "u2", 33)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeMissingItem, res.Code, "a harpoon loadout needs ten copies")
	res, err = f.svc.BattleEquip(ctx, "g1", "u1", 33)
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	res, err = f.svc.BattleLeave(ctx, "g1", "u3")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInvalidArgs, res.Code)
	res, err = f.svc.BattleLeave(ctx, "g1", "u2")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)
	res, err = f.svc.BattleJoin(ctx, "g1", "u2")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	res, err = f.svc.BattleStart(ctx, "g1", "u3")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeInvalidArgs, res.Code, "only party members launch the raid")
	res, err = f.svc.BattleStart(ctx, "g1", "u1")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, res.Code)

	b, err := f.repo.GetBattle(ctx, "g1", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BattleFighting, b.Status)
	assert.Equal(t, []string{"u1", "u2"}, b.Party)
	assert.Positive(t, b.MaxRounds)
	assert.Equal(t, 1, f.mustPlayer(t, "u1").RaidCount)
	assert.Equal(t, 1, f.mustPlayer(t, "u2").RaidCount)

	res, err = f.svc.BattleLeave(ctx, "g1", "u2")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeWrongState, res.Code)
	res, err = f.svc.BattleJoin(ctx, "g1", "u3")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeWrongState, res.Code)

	// A fighting raid blocks the hourly spawn.
	f.clock = f.clock.Add(time.Hour)
	require.NoError(t, f.svc.BattleSpawnCheck(ctx))
	assert.Equal(t, 1, f.mustGroup(t, "g1").CurrentBattleID)

	for i := 0; i < b.MaxRounds+2; i++ {
		require.NoError(t, f.svc.BattleTick(ctx))
	}
	b, err = f.repo.GetBattle(ctx, "g1", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BattleFailed, b.Status, "two rookies cannot sink a sea monster")
	assert.True(t, b.Settled)

	// Settlement happens exactly once.
	round := b.Round
	require.NoError(t, f.svc.BattleTick(ctx))
	b, err = f.repo.GetBattle(ctx, "g1", 1)
	require.NoError(t, err)
	assert.Equal(t, round, b.Round)

	// A finished raid frees the hourly spawn, but the daily cap holds.
	f.clock = f.clock.Add(time.Hour)
	require.NoError(t, f.svc.BattleSpawnCheck(ctx))
	require.Equal(t, 2, f.mustGroup(t, "g1").CurrentBattleID)
	res, err = f.svc.BattleJoin(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeLimitReached, res.Code)

	// A level one port resets the cap the next day.
	f.clock = f.clock.Add(24 * time.Hour)
	res, err = f.svc.BattleJoin(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeOK, res.Code)
}

func TestBattleCommands_NoMonster(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	for name, call := range map[string]func() (domain.CommandResult, error){
		"join":   func() (domain.CommandResult, error) { return f.svc.BattleJoin(ctx, "g1", "u1") },
		"leave":  func() (domain.CommandResult, error) { return f.svc.BattleLeave(ctx, "g1", "u1") },
		"equip":  func() (domain.CommandResult, error) { return f.svc.BattleEquip(ctx, "g1", "u1", 33) },
		"start":  func() (domain.CommandResult, error) { return f.svc.BattleStart(ctx, "g1", "u1") },
		"status": func() (domain.CommandResult, error) { return f.svc.BattleStatus(ctx, "g1") },
	} {
		t.Run(name, func(t *testing.T) {
			res, err := call()
			require.NoError(t, err)
			assert.Equal(t, domain.CodeNoTarget, res.Code)
		})
	}
}
