package game

import (
	"context"
	"fmt"
	"time"

	"github.com/hydrangea-games/fishpond/internal/buildings"
	"github.com/hydrangea-games/fishpond/internal/domain"
	"github.com/hydrangea-games/fishpond/internal/metrics"
	"github.com/hydrangea-games/fishpond/internal/oversea"
)

// feedEffect describes what one feed item does to the pond.
type feedEffect struct {
	buffs   []domain.FeedBuff // expiry filled at use time
	seconds int64
}

var feedEffects = map[int]feedEffect{
	itemFeedBasic: {seconds: 1800, buffs: []domain.FeedBuff{
		{Rarity: domain.RarityR, Bonus: 40},
	}},
	itemFeedRich: {seconds: 3600, buffs: []domain.FeedBuff{
		{Rarity: domain.RaritySR, Bonus: 100},
		{Rarity: domain.RarityR, Bonus: 60},
	}},
	itemFeedDeluxe: {seconds: 7200, buffs: []domain.FeedBuff{
		{Rarity: domain.RaritySSR, Bonus: 200},
		{Rarity: domain.RaritySR, Bonus: 120},
		{Rarity: domain.RarityR, Bonus: 60},
	}},
	itemFeedGolden: {seconds: 7200, buffs: []domain.FeedBuff{
		{Rarity: domain.RaritySSR, Bonus: 600},
	}},
}

// power boosters: flat power with per-attempt charges
var boosterEffects = map[int]struct {
	power   int
	charges int
}{
	itemBoosterSmall:   {10, 1},
	itemBoosterMedium:  {20, 2},
	itemBoosterLarge:   {40, 4},
	itemBoosterDiamond: {60, 6},
}

// loot cards: timed fishing bonus
var cardEffects = map[int]float64{
	itemCardSmall:   0.25,
	itemCardMedium:  0.5,
	itemCardLarge:   1,
	itemCardDiamond: 1.5,
}

// glow sticks: keyed average-power buffs
var glowEffects = map[int]struct {
	key     string
	power   int
	seconds int64
}{
	itemGlowSmall:   {glowKeyNormal, 15, 1800},
	itemGlowMedium:  {glowKeyNormal, 30, 1800},
	itemGlowLarge:   {glowKeyNormal, 60, 1800},
	itemGlowSpecial: {glowKeySpecial, 100, 3600},
}

var bookExp = map[int]int64{
	itemBookSmall:  10,
	itemBookMedium: 100,
	itemBookLarge:  400,
	itemBookHuge:   1000,
}

func (s *service) UseItem(ctx context.Context, groupID, playerID string, itemID int, args []int, force bool) (domain.CommandResult, error) {
	defer s.lockCommand(groupID, playerID)()

	now := s.now()
	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	p, err := s.repo.GetPlayer(ctx, playerID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	s.refreshGroup(g, now)
	g.EnsureMember(playerID)

	item, ok := s.cat.Item(itemID)
	if !ok {
		return domain.Reject(domain.CodeNoTarget, "no such item"), nil
	}
	if p.ItemCount(itemID) < 1 {
		return domain.Reject(domain.CodeMissingItem, fmt.Sprintf("no %s in your bag", item.Name)), nil
	}

	res, err := s.applyItem(g, p, item, itemID, args, force, now)
	if err != nil {
		return domain.CommandResult{}, err
	}
	if res.Code != domain.CodeOK {
		return res, nil
	}
	metrics.ItemsUsed.WithLabelValues(item.Name).Inc()

	if err := s.repo.SaveGroup(ctx, g); err != nil {
		return domain.CommandResult{}, err
	}
	if err := s.repo.SavePlayer(ctx, p); err != nil {
		return domain.CommandResult{}, err
	}
	return res, nil
}

// applyItem dispatches one item use. itemID may be an instanced accessory
// id, so it is passed alongside the resolved template.
func (s *service) applyItem(g *domain.GroupSession, p *domain.Player, item domain.Item, itemID int, args []int, force bool, now time.Time) (domain.CommandResult, error) {
	if item.Equipable() {
		return s.toggleEquip(p, item, itemID), nil
	}
	if item.Feed {
		return s.applyFeed(g, p, item, itemID, force, now), nil
	}

	switch itemID {
	case itemBoosterSmall, itemBoosterMedium, itemBoosterLarge, itemBoosterDiamond:
		eff := boosterEffects[itemID]
		p.AddItem(itemID, -1)
		p.Buffs = dropBuffKind(p.Buffs, domain.BuffPower)
		p.Buffs = append(p.Buffs, domain.Buff{
			Kind:    domain.BuffPower,
			Power:   eff.power,
			Charges: eff.charges + buildings.LabExtraCharges(g.BuildingLevel(domain.BuildingFishLab)),
		})
		return domain.OK(fmt.Sprintf("power +%d for your next attempts", eff.power)), nil

	case itemCardSmall, itemCardMedium, itemCardLarge, itemCardDiamond:
		bonus := cardEffects[itemID]
		p.AddItem(itemID, -1)
		p.Buffs = dropBuffKind(p.Buffs, domain.BuffFishingBonus)
		p.Buffs = append(p.Buffs, domain.Buff{
			Kind:      domain.BuffFishingBonus,
			Percent:   bonus,
			ExpiresAt: now.Unix() + cardBaseSeconds + buildings.LabExtraCardSeconds(g.BuildingLevel(domain.BuildingFishLab)),
		})
		return domain.OK(fmt.Sprintf("catch rewards +%.0f%% for a while", bonus*100)), nil

	case itemGlowSmall, itemGlowMedium, itemGlowLarge, itemGlowSpecial:
		eff := glowEffects[itemID]
		p.AddItem(itemID, -1)
		g.AddAvgPowerBuff(domain.AvgPowerBuff{
			Key:       eff.key,
			Power:     eff.power,
			ExpiresAt: now.Unix() + eff.seconds,
		})
		return domain.OK(fmt.Sprintf("the pond glows, average power +%d", eff.power)), nil

	case itemMasterBall:
		return domain.Reject(domain.CodeInvalidArgs, "throw it while catching instead"), nil

	case itemBookSmall, itemBookMedium, itemBookLarge, itemBookHuge, itemBookCustom:
		return s.applyBook(g, p, itemID, args), nil

	case itemDissolver:
		return s.applyDissolver(p, args, now), nil

	case itemGoldPouch:
		p.AddItem(itemID, -1)
		p.Gold += goldPouchAmount
		metrics.GoldEarned.Add(float64(goldPouchAmount))
		return domain.OK(fmt.Sprintf("the pouch held %d gold", goldPouchAmount)), nil

	case itemFeverTicket:
		p.AddItem(itemID, -1)
		s.rngMu.Lock()
		s.triggerFever(g, now)
		s.rngMu.Unlock()
		minutes := (g.FeverExpiresAt - now.Unix()) / 60
		return domain.OK(fmt.Sprintf("the fish swarm for the next %d minutes", minutes)), nil
	}

	// Jewel conversion through the mystic shop.
	for _, rule := range s.cat.JewelRules {
		if rule.SourceID != itemID {
			continue
		}
		if g.BuildingLevel(domain.BuildingMysticShop) < 1 {
			return domain.Reject(domain.CodeLocked, "the mystic shop is not built yet"), nil
		}
		s.rngMu.Lock()
		picked, ok := s.drawer.ConvertJewel(s.cat.JewelRules, itemID)
		s.rngMu.Unlock()
		if !ok {
			return domain.Reject(domain.CodeInvalidArgs, "nothing happened"), nil
		}
		p.AddItem(itemID, -1)
		p.AddItem(picked, 1)
		pickedName := fmt.Sprintf("item %d", picked)
		if it, ok := s.cat.Item(picked); ok {
			pickedName = it.Name
		}
		return domain.OK(fmt.Sprintf("%s shimmered and became %s", item.Name, pickedName)), nil
	}

	// Forge shop turns raid drops into harpoons.
	for _, rule := range s.cat.ForgeRules {
		if itemID < rule.MinID || itemID > rule.MaxID {
			continue
		}
		if g.BuildingLevel(domain.BuildingForgeShop) < 1 {
			return domain.Reject(domain.CodeLocked, "the forge shop is not built yet"), nil
		}
		p.AddItem(itemID, -1)
		p.AddItem(rule.HarpoonID, 1)
		harpoonName := fmt.Sprintf("item %d", rule.HarpoonID)
		if it, ok := s.cat.Item(rule.HarpoonID); ok {
			harpoonName = it.Name
		}
		return domain.OK(fmt.Sprintf("forged %s into %s", item.Name, harpoonName)), nil
	}

	if itemID == oversea.ItemFin || oversea.IsHarpoon(itemID) {
		return domain.Reject(domain.CodeInvalidArgs, "equip it for the port raid instead"), nil
	}
	return domain.Reject(domain.CodeInvalidArgs, "this item cannot be used"), nil
}

func (s *service) toggleEquip(p *domain.Player, item domain.Item, itemID int) domain.CommandResult {
	slot := map[domain.EquipSlot]*int{
		domain.SlotRod:       &p.Equipment.Rod,
		domain.SlotTool:      &p.Equipment.Tool,
		domain.SlotAccessory: &p.Equipment.Accessory,
	}[item.Slot]
	if slot == nil {
		return domain.Reject(domain.CodeInvalidArgs, "this item cannot be equipped")
	}
	if item.Slot == domain.SlotAccessory {
		if _, ok := p.AccessoryMeta[itemID]; !ok {
			return domain.Reject(domain.CodeMissingItem, "you do not own this accessory")
		}
	}
	if *slot == itemID {
		*slot = 0
		return domain.OK(fmt.Sprintf("unequipped %s", item.Name))
	}
	*slot = itemID
	return domain.OK(fmt.Sprintf("equipped %s", item.Name))
}

func (s *service) applyFeed(g *domain.GroupSession, p *domain.Player, item domain.Item, itemID int, force bool, now time.Time) domain.CommandResult {
	if g.InFever(now.Unix()) {
		return domain.Reject(domain.CodeWrongState, "no feeding during the fever")
	}
	if g.FeedTime >= dailyFeedCap {
		return domain.Reject(domain.CodeLimitReached, "the fish are full, feed them again tomorrow")
	}
	if !force && len(g.ActiveFeedBuffs(now.Unix())) > 0 {
		return domain.Reject(domain.CodeWrongState, "a feed effect is already active, use force to overwrite")
	}
	eff, ok := feedEffects[itemID]
	if !ok {
		return domain.Reject(domain.CodeInvalidArgs, "this feed has no effect table")
	}
	p.AddItem(itemID, -1)
	feedBuffs := make([]domain.FeedBuff, len(eff.buffs))
	for i, b := range eff.buffs {
		b.ExpiresAt = now.Unix() + eff.seconds
		feedBuffs[i] = b
	}
	g.FeedBuffs = feedBuffs
	g.FeedTime++
	return domain.OK(fmt.Sprintf("fed the pond with %s, %d feeds left today", item.Name, dailyFeedCap-g.FeedTime))
}

func (s *service) applyBook(g *domain.GroupSession, p *domain.Player, itemID int, args []int) domain.CommandResult {
	if g.BuildingLevel(domain.BuildingSevenStatue) < 1 {
		return domain.Reject(domain.CodeLocked, "the seven statue must be built before studying talents")
	}
	if len(args) < 1 {
		return domain.Reject(domain.CodeInvalidArgs, "name the talent to study")
	}
	talentID := args[0]
	talent, ok := s.cat.Talent(talentID)
	if !ok {
		return domain.Reject(domain.CodeInvalidArgs, "no such talent")
	}

	gain := bookExp[itemID]
	var cost int64
	if itemID == itemBookCustom {
		if len(args) < 2 || args[1] <= 0 {
			return domain.Reject(domain.CodeInvalidArgs, "name the exp amount to study")
		}
		gain = min(int64(args[1]), customBookExpCap)
		cost = gain * customBookGoldRate
		if p.Gold < cost {
			return domain.Reject(domain.CodeInsufficientGold, fmt.Sprintf("need %d gold", cost))
		}
	}

	if p.TalentExp == nil {
		p.TalentExp = map[int]int64{}
	}
	oldLevel := talent.LevelAt(p.TalentExp[talentID])
	p.TalentExp[talentID] += gain
	newLevel := talent.LevelAt(p.TalentExp[talentID])

	p.AddItem(itemID, -1)
	p.Gold -= cost

	msg := fmt.Sprintf("%s gained %d exp, Lv.%d -> Lv.%d", talent.Name, gain, oldLevel, newLevel)
	if cost > 0 {
		msg += fmt.Sprintf(", spent %d gold", cost)
	}
	return domain.OK(msg)
}

func (s *service) applyDissolver(p *domain.Player, args []int, now time.Time) domain.CommandResult {
	if len(args) < 1 {
		return domain.Reject(domain.CodeInvalidArgs, "name the accessory to dissolve")
	}
	accessoryID := args[0]
	meta, ok := p.AccessoryMeta[accessoryID]
	if !ok {
		return domain.Reject(domain.CodeMissingItem, "you do not own this accessory")
	}
	if p.Equipment.Accessory == accessoryID {
		return domain.Reject(domain.CodeWrongState, "unequip the accessory first")
	}
	if p.ItemCount(itemBookSmall) < 1 {
		return domain.Reject(domain.CodeMissingItem, "dissolving needs a small talent book as catalyst")
	}
	template, ok := s.cat.Item(meta.TemplateID)
	if !ok || len(template.CraftBy) == 0 {
		return domain.Reject(domain.CodeInvalidArgs, "this accessory cannot be dissolved")
	}
	gem := template.CraftBy[0]
	subGem := max(gem-1, 20)
	failRate := renewFailRate(p, dateOf(now))

	p.AddItem(itemDissolver, -1)
	p.AddItem(itemBookSmall, -1)
	p.AddItem(accessoryID, -1)
	delete(p.AccessoryMeta, accessoryID)
	p.RenewCount++

	s.rngMu.Lock()
	r := s.rng.Float64()
	s.rngMu.Unlock()
	switch {
	case r < failRate:
		return domain.OK("the dissolve failed, accessory and gem both lost")
	case r < failRate*3:
		p.AddItem(subGem, 1)
		return domain.OK(fmt.Sprintf("dissolved, but only a lesser gem (item %d) came back", subGem))
	default:
		p.AddItem(gem, 1)
		return domain.OK(fmt.Sprintf("dissolved and recovered the gem (item %d)", gem))
	}
}

// dropBuffKind removes every buff of the kind, keeping the rest in order.
func dropBuffKind(buffs []domain.Buff, kind domain.BuffKind) []domain.Buff {
	out := buffs[:0]
	for _, b := range buffs {
		if b.Kind != kind {
			out = append(out, b)
		}
	}
	return out
}
