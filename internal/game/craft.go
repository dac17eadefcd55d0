package game

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hydrangea-games/fishpond/internal/domain"
	"github.com/hydrangea-games/fishpond/internal/metrics"
)

func (s *service) Craft(ctx context.Context, groupID, playerID string, itemID, count int) (domain.CommandResult, error) {
	defer s.lockCommand(groupID, playerID)()

	if count < 1 {
		count = 1
	}
	item, ok := s.cat.Item(itemID)
	if !ok {
		return domain.Reject(domain.CodeNoTarget, "no such item"), nil
	}
	if !item.Craftable() {
		return domain.Reject(domain.CodeInvalidArgs, fmt.Sprintf("%s cannot be crafted", item.Name)), nil
	}
	if !item.BatchCraft {
		count = 1
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

	// The recipe is a multiset of material ids.
	needs := map[int]int{}
	for _, materialID := range item.CraftBy {
		needs[materialID] += count
	}
	materialIDs := make([]int, 0, len(needs))
	for id := range needs {
		materialIDs = append(materialIDs, id)
	}
	sort.Ints(materialIDs)
	for _, materialID := range materialIDs {
		if have := p.SpendableCount(materialID); have < needs[materialID] {
			name := fmt.Sprintf("item %d", materialID)
			if mat, ok := s.cat.Item(materialID); ok {
				name = mat.Name
			}
			return domain.Reject(domain.CodeInsufficientMats,
				fmt.Sprintf("missing materials: %s %d/%d", name, have, needs[materialID])), nil
		}
	}

	scoreCost := item.CraftScore * int64(count)
	if itemID == itemMasterBall {
		// Master balls double in price with every craft.
		scoreCost = item.CraftScore << p.MasterBallCrafts
	}
	if scoreCost > 0 && p.Score < scoreCost {
		return domain.Reject(domain.CodeInsufficientGold,
			fmt.Sprintf("need %d score, you have %d", scoreCost, p.Score)), nil
	}

	var crafted domain.CommandResult
	if item.Slot == domain.SlotAccessory {
		crafted = s.craftAccessory(p, item, itemID)
		if crafted.Code != domain.CodeOK {
			return crafted, nil
		}
	}

	for _, materialID := range materialIDs {
		p.AddItem(materialID, -needs[materialID])
	}
	p.Score -= scoreCost
	if itemID == itemMasterBall {
		p.MasterBallCrafts++
	}
	if item.Slot != domain.SlotAccessory {
		p.AddItem(itemID, count)
		crafted = domain.OK(fmt.Sprintf("crafted %s x%d", item.Name, count))
	}
	if scoreCost > 0 {
		crafted.Message += fmt.Sprintf(", spent %d score", scoreCost)
	}
	metrics.ItemsCrafted.WithLabelValues(item.Name).Add(float64(count))

	if err := s.repo.SavePlayer(ctx, p); err != nil {
		return domain.CommandResult{}, err
	}
	return crafted, nil
}

// craftAccessory allocates an instance id in the template's range and rolls
// its skills from the skill-point budget. The roll walks a shuffled skill
// pool, buys level 1 of each affordable skill and coin-flips extra levels
// while the budget lasts.
func (s *service) craftAccessory(p *domain.Player, item domain.Item, itemID int) domain.CommandResult {
	if p.AccessoryMeta == nil {
		p.AccessoryMeta = map[int]domain.AccessoryInstance{}
	}
	owned := 0
	for _, meta := range p.AccessoryMeta {
		if meta.TemplateID == itemID {
			owned++
		}
	}
	if owned >= accessoryCopyCap {
		return domain.Reject(domain.CodeLimitReached,
			fmt.Sprintf("you already own %d copies of %s", accessoryCopyCap, item.Name))
	}
	allocated := 0
	for cand := item.ID; cand <= item.IDRangeEnd; cand++ {
		if _, taken := p.AccessoryMeta[cand]; !taken {
			allocated = cand
			break
		}
	}
	if allocated == 0 {
		return domain.Reject(domain.CodeLimitReached, "no free accessory instance ids left")
	}

	pool := make([]domain.Skill, 0)
	for _, skill := range s.cat.AllSkills() {
		if skill.Score > 0 {
			pool = append(pool, skill)
		}
	}

	s.rngMu.Lock()
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	remaining := int64(item.SkillPoint)
	var skills []domain.SkillRef
	for _, skill := range pool {
		cost := skill.Score
		if cost > remaining {
			continue
		}
		level := 1
		remaining -= cost
		for level < skill.MaxLevel && remaining >= cost && s.rng.Float64() < 0.5 {
			remaining -= cost
			level++
		}
		skills = append(skills, domain.SkillRef{ID: skill.ID, Level: level})
		if remaining <= 0 {
			break
		}
	}
	s.rngMu.Unlock()

	p.AccessoryMeta[allocated] = domain.AccessoryInstance{TemplateID: itemID, Skills: skills}
	p.AddItem(allocated, 1)

	var b strings.Builder
	fmt.Fprintf(&b, "crafted %s (instance %d) with skills:", item.Name, allocated)
	for _, ref := range skills {
		name := fmt.Sprintf("skill %d", ref.ID)
		if skill, ok := s.cat.Skill(ref.ID); ok {
			name = skill.Name
		}
		fmt.Fprintf(&b, " %s Lv.%d,", name, ref.Level)
	}
	return domain.OK(strings.TrimSuffix(b.String(), ","))
}
