package game

import (
	"context"
	"fmt"
	"time"

	"github.com/hydrangea-games/fishpond/internal/buildings"
	"github.com/hydrangea-games/fishpond/internal/catch"
	"github.com/hydrangea-games/fishpond/internal/domain"
	"github.com/hydrangea-games/fishpond/internal/effects"
	"github.com/hydrangea-games/fishpond/internal/logger"
	"github.com/hydrangea-games/fishpond/internal/metrics"
	"github.com/hydrangea-games/fishpond/internal/oversea"
)

// Sea monsters only show up during waking hours.
const battleSpawnHour = 8

func (s *service) BattleSpawnCheck(ctx context.Context) error {
	now := s.now()
	if now.Hour() < battleSpawnHour {
		return nil
	}
	ids, err := s.repo.ListGroupIDs(ctx)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	for _, groupID := range ids {
		if err := s.battleSpawnGroup(ctx, groupID, now); err != nil {
			log.Error("battle spawn check failed", "group", groupID, "error", err)
		}
	}
	return nil
}

func (s *service) battleSpawnGroup(ctx context.Context, groupID string, now time.Time) error {
	defer s.lockCommand(groupID)()

	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	portLevel := g.BuildingLevel(domain.BuildingPort)
	if portLevel < 1 {
		return nil
	}
	if g.LastBattleHour == hourKey(now) {
		return nil
	}
	if g.CurrentBattleID != 0 {
		current, err := s.repo.GetBattle(ctx, groupID, g.CurrentBattleID)
		if err != nil {
			return err
		}
		if current.Status == domain.BattleFighting {
			return nil
		}
	}
	bosses := s.cat.Bosses()
	if len(bosses) == 0 {
		return nil
	}

	seq, err := s.repo.NextBattleSeq(ctx, groupID)
	if err != nil {
		return err
	}
	s.rngMu.Lock()
	difficulty := 1 + s.rng.Intn(portLevel)
	b := s.raids.SpawnMonster(bosses, groupID, seq, difficulty, portLevel)
	s.rngMu.Unlock()

	g.CurrentBattleID = seq
	g.BattleCount++
	g.LastBattleHour = hourKey(now)

	if err := s.repo.SaveBattle(ctx, b); err != nil {
		return err
	}
	if err := s.repo.SaveGroup(ctx, g); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("sea monster spawned",
		"group", groupID, "seq", seq, "difficulty", difficulty, "fish", b.FishID)
	return nil
}

// currentBattle loads the group's active battle, or nil when none exists.
func (s *service) currentBattle(ctx context.Context, g *domain.GroupSession) (*domain.Battle, error) {
	if g.CurrentBattleID == 0 {
		return nil, nil
	}
	return s.repo.GetBattle(ctx, g.ID, g.CurrentBattleID)
}

func (s *service) BattleJoin(ctx context.Context, groupID, playerID string) (domain.CommandResult, error) {
	defer s.lockCommand(groupID, playerID)()

	now := s.now()
	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	b, err := s.currentBattle(ctx, g)
	if err != nil {
		return domain.CommandResult{}, err
	}
	if b == nil {
		return domain.Reject(domain.CodeNoTarget, "no sea monster right now"), nil
	}
	if b.Status != domain.BattleIdle {
		return domain.Reject(domain.CodeWrongState, "the battle has already started or ended"), nil
	}
	p, err := s.repo.GetPlayer(ctx, playerID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	if left := raidsLeft(p, dateOf(now), b.PortLevel); left <= 0 {
		return domain.Reject(domain.CodeLimitReached,
			fmt.Sprintf("no raids left today (cap %d)", buildings.PortDailyRaids(b.PortLevel))), nil
	}
	if b.InParty(playerID) {
		return domain.Reject(domain.CodeAlreadyAttempted, "you already joined the party"), nil
	}
	if len(b.Party) >= buildings.PortPartyCap(b.PortLevel) {
		return domain.Reject(domain.CodeLimitReached, "the party is full"), nil
	}
	b.Party = append(b.Party, playerID)

	if err := s.repo.SaveBattle(ctx, b); err != nil {
		return domain.CommandResult{}, err
	}
	if err := s.repo.SavePlayer(ctx, p); err != nil {
		return domain.CommandResult{}, err
	}
	return domain.OK("joined the raid party"), nil
}

func (s *service) BattleLeave(ctx context.Context, groupID, playerID string) (domain.CommandResult, error) {
	defer s.lockCommand(groupID)()

	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	b, err := s.currentBattle(ctx, g)
	if err != nil {
		return domain.CommandResult{}, err
	}
	if b == nil {
		return domain.Reject(domain.CodeNoTarget, "no sea monster right now"), nil
	}
	if b.Status != domain.BattleIdle {
		return domain.Reject(domain.CodeWrongState, "the battle has already started"), nil
	}
	if !b.InParty(playerID) {
		return domain.Reject(domain.CodeInvalidArgs, "you are not in the party"), nil
	}
	for i, id := range b.Party {
		if id == playerID {
			b.Party = append(b.Party[:i], b.Party[i+1:]...)
			break
		}
	}
	delete(b.Loadouts, playerID)

	if err := s.repo.SaveBattle(ctx, b); err != nil {
		return domain.CommandResult{}, err
	}
	return domain.OK("left the raid party"), nil
}

func (s *service) BattleEquip(ctx context.Context, groupID, playerID string, itemID int) (domain.CommandResult, error) {
	defer s.lockCommand(groupID)()

	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	b, err := s.currentBattle(ctx, g)
	if err != nil {
		return domain.CommandResult{}, err
	}
	if b == nil {
		return domain.Reject(domain.CodeNoTarget, "no sea monster right now"), nil
	}
	if b.Status != domain.BattleIdle {
		return domain.Reject(domain.CodeWrongState, "the battle has already started"), nil
	}
	if !b.InParty(playerID) {
		return domain.Reject(domain.CodeInvalidArgs, "join the party first"), nil
	}
	cost := oversea.LoadoutCost(itemID)
	if cost == 0 {
		return domain.Reject(domain.CodeInvalidArgs, "that cannot be taken on a raid"), nil
	}
	item, ok := s.cat.Item(itemID)
	if !ok {
		return domain.Reject(domain.CodeNoTarget, "no such item"), nil
	}
	p, err := s.repo.GetPlayer(ctx, playerID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	if p.ItemCount(itemID) < cost {
		return domain.Reject(domain.CodeMissingItem, fmt.Sprintf("you need %d of %s", cost, item.Name)), nil
	}
	if b.Loadouts == nil {
		b.Loadouts = map[string]int{}
	}
	b.Loadouts[playerID] = itemID

	if err := s.repo.SaveBattle(ctx, b); err != nil {
		return domain.CommandResult{}, err
	}
	return domain.OK(fmt.Sprintf("equipped %s for the raid", item.Name)), nil
}

func (s *service) BattleStart(ctx context.Context, groupID, playerID string) (domain.CommandResult, error) {
	defer s.lockCommand(groupID)()

	now := s.now()
	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	b, err := s.currentBattle(ctx, g)
	if err != nil {
		return domain.CommandResult{}, err
	}
	if b == nil {
		return domain.Reject(domain.CodeNoTarget, "no sea monster right now"), nil
	}
	if b.Status != domain.BattleIdle {
		return domain.Reject(domain.CodeWrongState, "the battle has already started or ended"), nil
	}
	if len(b.Party) == 0 {
		return domain.Reject(domain.CodeInvalidArgs, "nobody has joined the party"), nil
	}
	if !b.InParty(playerID) {
		return domain.Reject(domain.CodeInvalidArgs, "join the party first"), nil
	}

	boss, ok := s.cat.Fish(b.FishID)
	if !ok {
		return domain.CommandResult{}, fmt.Errorf("%w: id %d", domain.ErrFishNotFound, b.FishID)
	}

	// The party is only known now that the battle is loaded; every member's
	// sheet is about to be charged a raid attempt.
	defer s.lockPlayers(b.Party...)()

	party := make([]oversea.Combatant, 0, len(b.Party))
	players := make([]*domain.Player, 0, len(b.Party))
	for _, memberID := range b.Party {
		p, err := s.repo.GetPlayer(ctx, memberID)
		if err != nil {
			return domain.CommandResult{}, err
		}
		raidsLeft(p, dateOf(now), b.PortLevel)
		p.RaidCount++

		// A loadout the member no longer owns enough of is dropped.
		if loadoutID := b.Loadouts[memberID]; loadoutID != 0 {
			if p.ItemCount(loadoutID) < oversea.LoadoutCost(loadoutID) {
				delete(b.Loadouts, memberID)
			}
		}
		party = append(party, s.combatant(p, b, boss, now))
		players = append(players, p)
	}

	s.rngMu.Lock()
	started := s.raids.Start(b, party)
	s.rngMu.Unlock()
	if !started {
		return domain.Reject(domain.CodeWrongState, "the battle could not start"), nil
	}

	for _, p := range players {
		if err := s.repo.SavePlayer(ctx, p); err != nil {
			return domain.CommandResult{}, err
		}
	}
	if err := s.repo.SaveBattle(ctx, b); err != nil {
		return domain.CommandResult{}, err
	}
	return domain.OK(fmt.Sprintf("the battle against %s begins, %d rounds at most", boss.Name, b.MaxRounds)), nil
}

// combatant snapshots one member's combat numbers against the boss.
func (s *service) combatant(p *domain.Player, b *domain.Battle, boss domain.Fish, now time.Time) oversea.Combatant {
	ectx := effects.Aggregate(s.cat, p)
	power := catch.PlayerPower(s.cat, p, ectx, now.Unix())
	diff := float64(power - boss.StdPower)
	return oversea.Combatant{
		ID:          p.ID,
		Power:       power,
		CritPercent: catch.CritPercent(p, ectx, boss, diff, s.talentLevelFn(p)),
		Effects:     ectx,
		LoadoutID:   b.Loadouts[p.ID],
	}
}

func (s *service) BattleTick(ctx context.Context) error {
	now := s.now()
	ids, err := s.repo.ListGroupIDs(ctx)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	for _, groupID := range ids {
		if err := s.battleTickGroup(ctx, groupID, now); err != nil {
			log.Error("battle tick failed", "group", groupID, "error", err)
		}
	}
	return nil
}

func (s *service) battleTickGroup(ctx context.Context, groupID string, now time.Time) error {
	defer s.lockCommand(groupID)()

	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	b, err := s.currentBattle(ctx, g)
	if err != nil {
		return err
	}
	if b == nil || b.Status != domain.BattleFighting {
		return nil
	}
	boss, ok := s.cat.Fish(b.FishID)
	if !ok {
		return fmt.Errorf("%w: id %d", domain.ErrFishNotFound, b.FishID)
	}

	// Settling pays out to every member's sheet.
	defer s.lockPlayers(b.Party...)()

	party := make([]oversea.Combatant, 0, len(b.Party))
	players := map[string]*domain.Player{}
	for _, memberID := range b.Party {
		p, err := s.repo.GetPlayer(ctx, memberID)
		if err != nil {
			return err
		}
		players[memberID] = p
		party = append(party, s.combatant(p, b, boss, now))
	}

	s.rngMu.Lock()
	s.raids.ProcessRound(b, party)
	var rewards map[string]oversea.Reward
	if b.Terminal() && !b.Settled {
		rewards = s.raids.Settle(b, boss, b.Status == domain.BattleSuccess)
		b.Settled = true
	}
	s.rngMu.Unlock()

	if rewards != nil {
		metrics.BattlesTotal.WithLabelValues(string(b.Status)).Inc()
		for memberID, r := range rewards {
			p := players[memberID]
			if p == nil {
				continue
			}
			p.AddExp(r.Exp)
			p.Gold += r.Gold
			metrics.GoldEarned.Add(float64(r.Gold))
			for itemID, count := range r.Drops {
				p.AddItem(itemID, count)
			}
			if r.TokenID != 0 {
				p.AddItem(r.TokenID, r.TokenCount)
			}
			if r.LoadoutID != 0 && !r.KeepLoadout {
				p.AddItem(r.LoadoutID, -r.LoadoutCost)
			}
		}
		for _, p := range players {
			if err := s.repo.SavePlayer(ctx, p); err != nil {
				return err
			}
		}
		logger.FromContext(ctx).Info("battle settled",
			"group", groupID, "seq", b.Seq, "outcome", string(b.Status), "rounds", b.Round)
	}
	return s.repo.SaveBattle(ctx, b)
}

// BattlePayload is the raid snapshot BattleStatus returns.
type BattlePayload struct {
	Seq        int                  `json:"seq"`
	Status     domain.BattleStatus  `json:"status"`
	BossName   string               `json:"boss_name"`
	Difficulty int                  `json:"difficulty"`
	EnvBuff    int                  `json:"env_buff"`
	Buffs      []domain.MonsterBuff `json:"buffs,omitempty"`
	BonusBuffs []int                `json:"bonus_buffs,omitempty"`
	Party      []string             `json:"party"`
	MonsterHP  int64                `json:"monster_hp"`
	MonsterMax int64                `json:"monster_max_hp"`
	ShipHP     int64                `json:"ship_hp"`
	ShipMax    int64                `json:"ship_max_hp"`
	Round      int                  `json:"round"`
	MaxRounds  int                  `json:"max_rounds"`
	Log        []domain.RoundEvent  `json:"log,omitempty"`
}

func (s *service) BattleStatus(ctx context.Context, groupID string) (domain.CommandResult, error) {
	defer s.lockCommand(groupID)()

	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	b, err := s.currentBattle(ctx, g)
	if err != nil {
		return domain.CommandResult{}, err
	}
	if b == nil {
		return domain.Reject(domain.CodeNoTarget, "no sea monster right now"), nil
	}
	bossName := fmt.Sprintf("fish %d", b.FishID)
	if boss, ok := s.cat.Fish(b.FishID); ok {
		bossName = boss.Name
	}
	payload := BattlePayload{
		Seq:        b.Seq,
		Status:     b.Status,
		BossName:   bossName,
		Difficulty: b.Difficulty,
		EnvBuff:    b.EnvBuff,
		Buffs:      b.Buffs,
		BonusBuffs: b.BonusBuffs,
		Party:      b.Party,
		MonsterHP:  b.MonsterHP,
		MonsterMax: b.MonsterMaxHP,
		ShipHP:     b.ShipHP,
		ShipMax:    b.ShipMaxHP,
		Round:      b.Round,
		MaxRounds:  b.MaxRounds,
		Log:        b.Log,
	}
	return domain.OKPayload(fmt.Sprintf("%s raid, %s", bossName, b.Status), payload), nil
}
