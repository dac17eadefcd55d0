package game

import (
	"context"
	"fmt"
	"time"

	"github.com/hydrangea-games/fishpond/internal/domain"
	"github.com/hydrangea-games/fishpond/internal/logger"
	"github.com/hydrangea-games/fishpond/internal/metrics"
	"github.com/hydrangea-games/fishpond/internal/spawn"
)

// Spawning pauses during the small hours.
const (
	quietHourStart = 1
	quietHourEnd   = 8
)

// weekdayIndex maps Go weekdays onto the catalog topic table (0 = Monday).
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// spawnPool is the fish eligible to spawn right now: the fever sample
// during fever, otherwise the common pool plus today's topic.
func (s *service) spawnPool(g *domain.GroupSession, now time.Time) []domain.Fish {
	if g.InFever(now.Unix()) {
		pool := make([]domain.Fish, 0, len(g.FeverFishIDs))
		for _, id := range g.FeverFishIDs {
			if f, ok := s.cat.Fish(id); ok {
				pool = append(pool, f)
			}
		}
		return pool
	}
	topic := s.cat.TopicForWeekday(weekdayIndex(now))
	var pool []domain.Fish
	for _, f := range s.cat.AllFish() {
		if f.SpawnsAt(domain.TopicCommon) || (topic != "" && f.SpawnsAt(topic)) {
			pool = append(pool, f)
		}
	}
	return pool
}

func (s *service) SpawnTick(ctx context.Context) error {
	now := s.now()
	if hour := now.Hour(); hour >= quietHourStart && hour < quietHourEnd {
		return nil
	}
	ids, err := s.repo.ListGroupIDs(ctx)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	for _, groupID := range ids {
		if err := s.spawnTickGroup(ctx, groupID, now); err != nil {
			log.Error("spawn tick failed", "group", groupID, "error", err)
		}
	}
	return nil
}

func (s *service) spawnTickGroup(ctx context.Context, groupID string, now time.Time) error {
	defer s.lockCommand(groupID)()

	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	s.refreshGroup(g, now)

	// The current fish loses patience one tick at a time.
	if g.CurrentFishID != 0 {
		g.LeaveCountdown--
		if g.LeaveCountdown <= 0 {
			g.ClearFish()
		}
	}

	if g.CurrentFishID == 0 {
		avg, err := s.averagePower(ctx, g, now)
		if err != nil {
			return err
		}
		pool := s.spawnPool(g, now)
		weights := spawn.Weights(pool, g, avg, spawn.DrawDecayDivisor, now.Unix())

		s.rngMu.Lock()
		fish, ok := s.spawner.Draw(pool, weights)
		s.rngMu.Unlock()
		if ok {
			g.CurrentFishID = fish.ID
			g.Attempted = nil
			g.LeaveCountdown = spawn.LeaveCountdown
			if g.InFever(now.Unix()) {
				g.LeaveCountdown = spawn.LeaveCountdownFever
			}
			metrics.SpawnsTotal.WithLabelValues(string(fish.Rarity)).Inc()
		}
	}
	return s.repo.SaveGroup(ctx, g)
}

// SpawnChance is one line of the display distribution. Fish the pond has
// never caught keep their rarity and odds but hide their identity.
type SpawnChance struct {
	ID      int           `json:"id,omitempty"`
	Name    string        `json:"name"`
	Rarity  domain.Rarity `json:"rarity"`
	Percent float64       `json:"percent"`
}

const unknownFishName = "??????"

func (s *service) SimulateSpawn(ctx context.Context, groupID string) (domain.CommandResult, error) {
	defer s.lockCommand(groupID)()

	now := s.now()
	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return domain.CommandResult{}, err
	}
	s.refreshGroup(g, now)

	avg, err := s.averagePower(ctx, g, now)
	if err != nil {
		return domain.CommandResult{}, err
	}
	pool := s.spawnPool(g, now)
	weights := spawn.Weights(pool, g, avg, spawn.DisplayDecayDivisor, now.Unix())

	chances := make([]SpawnChance, 0, len(pool))
	for i, f := range pool {
		if weights[i] <= 0 {
			continue
		}
		// Fish the pond has never landed stay a mystery in the forecast.
		c := SpawnChance{ID: f.ID, Name: f.Name, Rarity: f.Rarity, Percent: weights[i] * 100}
		if !g.HasLogged(f.ID) {
			c.ID = 0
			c.Name = unknownFishName
		}
		chances = append(chances, c)
	}
	if err := s.repo.SaveGroup(ctx, g); err != nil {
		return domain.CommandResult{}, err
	}
	return domain.OKPayload(fmt.Sprintf("pond average power %.0f", avg), chances), nil
}

func (s *service) FeverCheck(ctx context.Context) error {
	now := s.now()
	ids, err := s.repo.ListGroupIDs(ctx)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	for _, groupID := range ids {
		if err := s.feverCheckGroup(ctx, groupID, now); err != nil {
			log.Error("fever check failed", "group", groupID, "error", err)
		}
	}
	return nil
}

func (s *service) feverCheckGroup(ctx context.Context, groupID string, now time.Time) error {
	defer s.lockCommand(groupID)()

	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	s.refreshGroup(g, now)
	if g.InFever(now.Unix()) || g.FeedTime <= 0 {
		return nil
	}

	s.rngMu.Lock()
	hit := s.spawner.Float64() < float64(g.FeedTime)/float64(dailyFeedCap)
	if hit {
		s.triggerFever(g, now)
	}
	s.rngMu.Unlock()
	if !hit {
		return nil
	}
	logger.FromContext(ctx).Info("fever triggered", "group", groupID, "until", g.FeverExpiresAt)
	return s.repo.SaveGroup(ctx, g)
}

// triggerFever starts a 60 to 120 minute fever and samples its fish pool.
// Callers hold the group lock and rngMu.
func (s *service) triggerFever(g *domain.GroupSession, now time.Time) {
	minutes := 60 + s.spawner.Intn(61)
	g.FeverExpiresAt = now.Unix() + int64(minutes)*60
	topic := s.cat.TopicForWeekday(weekdayIndex(now))
	g.FeverFishIDs = s.spawner.FeverPool(s.cat.AllFish(), topic)
	metrics.FeversTotal.Inc()
}
