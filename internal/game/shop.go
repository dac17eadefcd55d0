package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/hydrangea-games/fishpond/internal/catalog"
	"github.com/hydrangea-games/fishpond/internal/domain"
	"github.com/hydrangea-games/fishpond/internal/gacha"
	"github.com/hydrangea-games/fishpond/internal/metrics"
)

func (s *service) Gacha(ctx context.Context, groupID, playerID string, tier gacha.Tier) (domain.CommandResult, error) {
	defer s.lockCommand(groupID, playerID)()
	return s.drawGacha(ctx, playerID, tier, s.cat.Gacha, "gacha")
}

func (s *service) MysteryGacha(ctx context.Context, groupID, playerID string, tier gacha.Tier) (domain.CommandResult, error) {
	defer s.lockCommand(groupID, playerID)()

	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	if g.BuildingLevel(domain.BuildingMysticShop) < 1 {
		return domain.Reject(domain.CodeLocked, "the mystic shop is not built yet"), nil
	}
	return s.drawGacha(ctx, playerID, tier, s.cat.Mystery, "mystery")
}

func (s *service) drawGacha(ctx context.Context, playerID string, tier gacha.Tier, table []catalog.GachaEntry, name string) (domain.CommandResult, error) {
	p, err := s.repo.GetPlayer(ctx, playerID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	gold, draws := tier.Cost(name == "mystery")
	if p.Gold < gold {
		return domain.Reject(domain.CodeInsufficientGold, fmt.Sprintf("need %d gold for this draw", gold)), nil
	}
	p.Gold -= gold

	s.rngMu.Lock()
	results := s.drawer.Draw(table, tier, p)
	s.rngMu.Unlock()

	metrics.GoldSpent.Add(float64(gold))
	metrics.GachaDrawsTotal.WithLabelValues(name).Add(float64(draws))

	if err := s.repo.SavePlayer(ctx, p); err != nil {
		return domain.CommandResult{}, err
	}
	return domain.OKPayload(s.drawMessage(results, draws), results), nil
}

func (s *service) drawMessage(results []gacha.Result, draws int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d draws:", draws)
	for _, r := range results {
		if r.ItemID == 0 {
			fmt.Fprintf(&b, " +%d score", r.Score)
			continue
		}
		name := fmt.Sprintf("item %d", r.ItemID)
		if item, ok := s.cat.Item(r.ItemID); ok {
			name = item.Name
		}
		fmt.Fprintf(&b, " %s x%d", name, r.Count)
	}
	return b.String()
}

func (s *service) Buy(ctx context.Context, groupID, playerID string, itemID, count int) (domain.CommandResult, error) {
	defer s.lockCommand(groupID, playerID)()

	if count < 1 {
		return domain.Reject(domain.CodeInvalidArgs, "count must be at least 1"), nil
	}
	item, ok := s.cat.Item(itemID)
	if !ok {
		return domain.Reject(domain.CodeNoTarget, "no such item"), nil
	}
	if !item.Buyable || item.Price <= 0 {
		return domain.Reject(domain.CodeInvalidArgs, fmt.Sprintf("%s is not for sale", item.Name)), nil
	}

	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	p, err := s.repo.GetPlayer(ctx, playerID)
	if err != nil {
		return domain.CommandResult{}, err
	}

	for buildingID, level := range item.Require {
		if g.BuildingLevel(buildingID) < level {
			return domain.Reject(domain.CodeLocked, fmt.Sprintf("requires %s level %d", buildingID, level)), nil
		}
	}
	// Trophy rods gate on the pokedex rather than gold alone.
	switch itemID {
	case itemCollectorRod:
		if len(p.CaptureLog) < collectorRodSpecies {
			return domain.Reject(domain.CodeLocked, fmt.Sprintf("catch %d species first", collectorRodSpecies)), nil
		}
	case itemChampionRod:
		if len(p.CaptureLog) < s.cat.FishCount() {
			return domain.Reject(domain.CodeLocked, "complete the fish log first"), nil
		}
	}

	cost := item.Price * int64(count)
	if p.Gold < cost {
		return domain.Reject(domain.CodeInsufficientGold, fmt.Sprintf("need %d gold", cost)), nil
	}
	p.Gold -= cost
	p.AddItem(itemID, count)
	metrics.GoldSpent.Add(float64(cost))

	if err := s.repo.SavePlayer(ctx, p); err != nil {
		return domain.CommandResult{}, err
	}
	return domain.OK(fmt.Sprintf("bought %s x%d for %d gold", item.Name, count, cost)), nil
}

func (s *service) Gift(ctx context.Context, groupID, fromID, toID string, itemID, count int) (domain.CommandResult, error) {
	defer s.lockCommand(groupID, fromID, toID)()

	if count < 1 {
		return domain.Reject(domain.CodeInvalidArgs, "count must be at least 1"), nil
	}
	if fromID == toID {
		return domain.Reject(domain.CodeInvalidArgs, "gifting yourself does nothing"), nil
	}
	item, ok := s.cat.Item(itemID)
	if !ok {
		return domain.Reject(domain.CodeNoTarget, "no such item"), nil
	}
	if !item.Giftable {
		return domain.Reject(domain.CodeInvalidArgs, fmt.Sprintf("%s cannot be gifted", item.Name)), nil
	}

	now := s.now().Unix()
	from, err := s.repo.GetPlayer(ctx, fromID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	if from.LastGiftAt != 0 && now-from.LastGiftAt < giftCooldownSeconds {
		left := (giftCooldownSeconds - (now - from.LastGiftAt)) / 3600
		return domain.Reject(domain.CodeCooldown, fmt.Sprintf("you can gift again in about %d hours", left+1)), nil
	}
	if from.SpendableCount(itemID) < count {
		return domain.Reject(domain.CodeMissingItem, fmt.Sprintf("not enough %s to give away", item.Name)), nil
	}

	to, err := s.repo.GetPlayer(ctx, toID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	from.AddItem(itemID, -count)
	to.AddItem(itemID, count)
	from.LastGiftAt = now

	if err := s.repo.SavePlayer(ctx, from); err != nil {
		return domain.CommandResult{}, err
	}
	if err := s.repo.SavePlayer(ctx, to); err != nil {
		return domain.CommandResult{}, err
	}
	return domain.OK(fmt.Sprintf("gave %s x%d to %s", item.Name, count, toID)), nil
}
