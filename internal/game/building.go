package game

import (
	"context"
	"fmt"

	"github.com/hydrangea-games/fishpond/internal/buildings"
	"github.com/hydrangea-games/fishpond/internal/domain"
)

// BuildingReport is one building's line in the overview.
type BuildingReport struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Level     int              `json:"level"`
	MaxLevel  int              `json:"max_level"`
	Materials []MaterialReport `json:"materials,omitempty"`
}

// MaterialReport is the banked progress of one requirement line.
type MaterialReport struct {
	Label  string `json:"label"`
	Banked int    `json:"banked"`
	Needed int    `json:"needed"`
}

func (s *service) BuildingStatus(ctx context.Context, groupID string) (domain.CommandResult, error) {
	defer s.lockCommand(groupID)()

	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return domain.CommandResult{}, err
	}

	reports := make([]BuildingReport, 0, len(buildings.Order))
	for _, id := range buildings.Order {
		def := buildings.Definitions[id]
		state := g.Building(id)
		report := BuildingReport{ID: id, Name: def.Name, Level: state.Level, MaxLevel: def.MaxLevel}
		for _, st := range buildings.Status(def, state) {
			report.Materials = append(report.Materials, MaterialReport{
				Label:  st.Requirement.Label,
				Banked: st.Banked,
				Needed: st.Requirement.Count,
			})
		}
		reports = append(reports, report)
	}
	return domain.OKPayload("village overview", reports), nil
}

func (s *service) AddBuildingMaterial(ctx context.Context, groupID, playerID, buildingID string, itemID, count int) (domain.CommandResult, error) {
	defer s.lockCommand(groupID, playerID)()

	if count < 1 {
		count = 1
	}
	def, ok := buildings.Definitions[buildingID]
	if !ok {
		return domain.Reject(domain.CodeNoTarget, "no such building"), nil
	}

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

	cooldown := int64(buildings.CenterCooldownHours(g.BuildingLevel(domain.BuildingBuildingCenter))) * 3600
	if readyAt := p.LastBuildAt + cooldown; now.Unix() < readyAt {
		minutes := (readyAt - now.Unix()) / 60
		return domain.Reject(domain.CodeCooldown, fmt.Sprintf("you can build again in %d minutes", minutes)), nil
	}

	have := p.SpendableCount(itemID)
	if have < 1 {
		return domain.Reject(domain.CodeMissingItem, "you do not have that material"), nil
	}
	if have < count {
		count = have
	}
	consumed := buildings.AddMaterials(def, g.Building(buildingID), itemID, count)
	if consumed == 0 {
		return domain.Reject(domain.CodeInvalidArgs, fmt.Sprintf("%s has no use for that material right now", def.Name)), nil
	}
	p.AddItem(itemID, -consumed)
	p.LastBuildAt = now.Unix()

	if err := s.repo.SaveGroup(ctx, g); err != nil {
		return domain.CommandResult{}, err
	}
	if err := s.repo.SavePlayer(ctx, p); err != nil {
		return domain.CommandResult{}, err
	}
	return domain.OK(fmt.Sprintf("added %d materials to %s", consumed, def.Name)), nil
}

func (s *service) UpgradeBuilding(ctx context.Context, groupID, playerID, buildingID string) (domain.CommandResult, error) {
	defer s.lockCommand(groupID)()

	def, ok := buildings.Definitions[buildingID]
	if !ok {
		return domain.Reject(domain.CodeNoTarget, "no such building"), nil
	}
	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	state := g.Building(buildingID)
	if state.Level >= def.MaxLevel {
		return domain.Reject(domain.CodeLimitReached, fmt.Sprintf("%s is already at its highest level", def.Name)), nil
	}
	if missingID, needed, ok := buildings.PrereqsMet(def, state, g); !ok {
		missingName := missingID
		if missing, found := buildings.Definitions[missingID]; found {
			missingName = missing.Name
		}
		return domain.Reject(domain.CodeLocked,
			fmt.Sprintf("needs %s at level %d first (now %d)", missingName, needed, g.BuildingLevel(missingID))), nil
	}
	if !buildings.CanUpgrade(def, state) {
		var lacking string
		for _, st := range buildings.Status(def, state) {
			if st.Banked < st.Requirement.Count {
				lacking += fmt.Sprintf(" %s %d/%d,", st.Requirement.Label, st.Banked, st.Requirement.Count)
			}
		}
		return domain.Reject(domain.CodeInsufficientMats, "missing materials:"+lacking), nil
	}
	buildings.Upgrade(def, state)

	if err := s.repo.SaveGroup(ctx, g); err != nil {
		return domain.CommandResult{}, err
	}
	return domain.OK(fmt.Sprintf("%s upgraded to Lv.%d", def.Name, state.Level)), nil
}

// Pot volume per rarity tier; raid materials and the golden fish count
// five-fold.
var potVolume = [...]int{1, 2, 5, 10}

const potRichItemID = 104

func potItemVolume(item domain.Item) int {
	vol := 10
	if item.Rarity >= 1 && item.Rarity <= len(potVolume) {
		vol = potVolume[item.Rarity-1]
	}
	if (item.ID > 300 && item.ID <= 400) || item.ID == potRichItemID {
		vol *= 5
	}
	return vol
}

func (s *service) PotAdd(ctx context.Context, groupID, playerID string, itemID, count int) (domain.CommandResult, error) {
	defer s.lockCommand(groupID, playerID)()

	if count < 1 {
		return domain.Reject(domain.CodeInvalidArgs, "count must be at least 1"), nil
	}
	item, ok := s.cat.Item(itemID)
	if !ok {
		return domain.Reject(domain.CodeNoTarget, "no such item"), nil
	}

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

	level := g.BuildingLevel(domain.BuildingBigPot)
	if level < 1 {
		return domain.Reject(domain.CodeLocked, "the big pot is not built yet"), nil
	}
	capacity := buildings.PotCapacity(level)
	remain := capacity - g.PotFuel
	if remain <= 0 {
		return domain.Reject(domain.CodeLimitReached, "the big pot is full"), nil
	}

	volume := potItemVolume(item)
	wanted := min(count, (remain-1)/volume+1)
	have := p.SpendableCount(itemID)
	consume := min(have, wanted)
	if consume == 0 {
		return domain.Reject(domain.CodeMissingItem, fmt.Sprintf("no %s to throw in", item.Name)), nil
	}
	p.AddItem(itemID, -consume)
	added := consume * volume
	g.PotFuel = min(g.PotFuel+added, capacity)

	if err := s.repo.SaveGroup(ctx, g); err != nil {
		return domain.CommandResult{}, err
	}
	if err := s.repo.SavePlayer(ctx, p); err != nil {
		return domain.CommandResult{}, err
	}
	msg := fmt.Sprintf("threw %d x %s into the pot, fuel +%d (%d/%d, burning %d per 10min)",
		consume, item.Name, added, g.PotFuel, capacity, buildings.PotConsumeSpeed(g.PotFuel))
	if consume < wanted {
		msg += ", you ran out before the pot did"
	}
	return domain.OK(msg), nil
}

// PotPayload is the big pot snapshot.
type PotPayload struct {
	Level         int `json:"level"`
	Fuel          int `json:"fuel"`
	Capacity      int `json:"capacity"`
	ConsumeSpeed  int `json:"consume_speed"`
	AvgPowerBoost int `json:"avg_power_boost"`
	PowerBoost    int `json:"power_boost"`
}

func (s *service) PotStatus(ctx context.Context, groupID string) (domain.CommandResult, error) {
	defer s.lockCommand(groupID)()

	now := s.now()
	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	s.refreshGroup(g, now)

	level := g.BuildingLevel(domain.BuildingBigPot)
	if level < 1 {
		return domain.Reject(domain.CodeLocked, "the big pot is not built yet"), nil
	}
	payload := PotPayload{
		Level:         level,
		Fuel:          g.PotFuel,
		Capacity:      buildings.PotCapacity(level),
		ConsumeSpeed:  buildings.PotConsumeSpeed(g.PotFuel),
		AvgPowerBoost: buildings.PotAvgPowerBoost(level),
		PowerBoost:    buildings.PotPowerBoost(g.PotFuel),
	}
	if err := s.repo.SaveGroup(ctx, g); err != nil {
		return domain.CommandResult{}, err
	}
	return domain.OKPayload(fmt.Sprintf("big pot Lv.%d, %d/%d", level, payload.Fuel, payload.Capacity), payload), nil
}

// themeRangeStart maps each weekday topic onto its regional material range.
// Each range holds five ids: four common drops then the regional gem.
var themeRangeStart = map[string]int{
	"desert":   315,
	"forest":   320,
	"volcano":  325,
	"sky":      330,
	"snowpeak": 335,
	"steel":    340,
	"mystic":   345,
}

func (s *service) SignIn(ctx context.Context, groupID, playerID string) (domain.CommandResult, error) {
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

	statue := g.BuildingLevel(domain.BuildingSevenStatue)
	if statue < 1 {
		return domain.Reject(domain.CodeLocked, "build the seven statue to sign in"), nil
	}
	today := dateOf(now)
	if g.SignIn.Date != today {
		g.SignIn = domain.SignInState{Date: today}
	}
	for _, id := range g.SignIn.Players {
		if id == playerID {
			return domain.Reject(domain.CodeAlreadyAttempted, "you already signed in today"), nil
		}
	}
	g.SignIn.Players = append(g.SignIn.Players, playerID)

	msg := "signed in!"
	if len(g.SignIn.Players) == 1 {
		p.AddItem(itemFeverTicket, 1)
		msg += " first of the day, fever bait granted,"
	}

	var themeR3, themeR4 []int
	if start, ok := themeRangeStart[s.cat.TopicForWeekday(weekdayIndex(now))]; ok {
		for id := start; id < start+4; id++ {
			themeR3 = append(themeR3, id)
		}
		themeR4 = append(themeR4, start+4)
	}
	var pool []int
	switch {
	case statue == 1:
		for id := 301; id <= 313; id++ {
			pool = append(pool, id)
		}
		pool = append(pool, themeR3...)
	case statue == 2:
		for id := 301; id <= 314; id++ {
			pool = append(pool, id)
		}
		pool = append(pool, themeR3...)
	default:
		for id := 301; id <= 314; id++ {
			pool = append(pool, id)
		}
		pool = append(pool, themeR3...)
		pool = append(pool, themeR4...)
	}

	if len(pool) > 0 {
		s.rngMu.Lock()
		rewardID := pool[s.rng.Intn(len(pool))]
		s.rngMu.Unlock()
		p.AddItem(rewardID, 1)
		rewardName := fmt.Sprintf("item %d", rewardID)
		if item, ok := s.cat.Item(rewardID); ok {
			rewardName = item.Name
		}
		msg += fmt.Sprintf(" received %s", rewardName)
	}

	if err := s.repo.SaveGroup(ctx, g); err != nil {
		return domain.CommandResult{}, err
	}
	if err := s.repo.SavePlayer(ctx, p); err != nil {
		return domain.CommandResult{}, err
	}
	return domain.OK(msg), nil
}
