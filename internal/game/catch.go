package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/hydrangea-games/fishpond/internal/catch"
	"github.com/hydrangea-games/fishpond/internal/domain"
	"github.com/hydrangea-games/fishpond/internal/effects"
	"github.com/hydrangea-games/fishpond/internal/metrics"
)

func (s *service) Catch(ctx context.Context, groupID, playerID string, masterBall bool) (domain.CommandResult, error) {
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

	if g.CurrentFishID == 0 {
		return domain.Reject(domain.CodeNoTarget, "the pond is quiet, nothing to catch"), nil
	}
	fish, ok := s.cat.Fish(g.CurrentFishID)
	if !ok {
		return domain.CommandResult{}, fmt.Errorf("%w: id %d", domain.ErrFishNotFound, g.CurrentFishID)
	}
	if g.HasAttempted(playerID) {
		return domain.Reject(domain.CodeAlreadyAttempted, "you already tried this fish, wait for the next one"), nil
	}
	if masterBall {
		if p.ItemCount(itemMasterBall) < 1 {
			return domain.Reject(domain.CodeMissingItem, "no master ball in your bag"), nil
		}
		p.AddItem(itemMasterBall, -1)
	}
	g.Attempted = append(g.Attempted, playerID)

	ectx := effects.Aggregate(s.cat, p)
	s.rngMu.Lock()
	out := catch.Resolve(catch.Params{
		Catalog:     s.cat,
		RNG:         s.rng,
		Group:       g,
		Player:      p,
		Effects:     ectx,
		TalentLevel: s.talentLevelFn(p),
		Fish:        fish,
		MasterBall:  masterBall,
		Now:         now.Unix(),
	})
	s.rngMu.Unlock()

	if out.Success {
		metrics.CatchesTotal.WithLabelValues("success").Inc()
		metrics.GoldEarned.Add(float64(out.Gold))
		if out.Crit {
			metrics.CritsTotal.Inc()
		}
	} else {
		metrics.CatchesTotal.WithLabelValues("fail").Inc()
	}

	if err := s.repo.SavePlayer(ctx, p); err != nil {
		return domain.CommandResult{}, err
	}
	if err := s.repo.SaveGroup(ctx, g); err != nil {
		return domain.CommandResult{}, err
	}
	return domain.OKPayload(catchMessage(fish, out), out), nil
}

func catchMessage(fish domain.Fish, out catch.Outcome) string {
	var b strings.Builder
	if out.Success {
		fmt.Fprintf(&b, "caught %s! +%d exp, +%d gold", fish.Name, out.Exp, out.Gold)
		if out.Crit {
			fmt.Fprintf(&b, " (crit x%.1f)", out.CritRate/100)
		}
		if out.FirstCatch {
			b.WriteString(", new species recorded")
		}
	} else {
		fmt.Fprintf(&b, "%s slipped the hook (+%d exp)", fish.Name, out.Exp)
		if out.RetryGranted {
			b.WriteString(", steady hands grant another try")
		}
		if out.Fled {
			b.WriteString(", and it swam away")
		}
	}
	if out.DropItemID != 0 {
		fmt.Fprintf(&b, ", dropped item %d", out.DropItemID)
	}
	if out.LevelsGained > 0 {
		fmt.Fprintf(&b, ", level up x%d", out.LevelsGained)
	}
	return b.String()
}
