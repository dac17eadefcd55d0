package domain

// Effect keys understood by the skill aggregator. Values are per-level
// arrays; a skill at level N contributes Effect[key][N-1], clamped to the
// last entry.
const (
	EffectPower             = "power"
	EffectTopicPower        = "topic_power"
	EffectCritPercent       = "crit_percent"
	EffectCritRate          = "crit_rate"
	EffectGoldRate          = "gold_rate"
	EffectExpRate           = "exp_rate"
	EffectNewFishPower      = "new_fish_power"
	EffectOldFishCrit       = "old_fish_crit"
	EffectSuccessRate       = "success_rate"
	EffectFailReward        = "fail_reward"
	EffectFailItemPercent   = "item_percent"
	EffectRegeneratePct     = "regenerate_percent"
	EffectRetryCooldown     = "cool_down"
	EffectFeverPower        = "fever_power"
	EffectOverseaDamage     = "oversea_damage_boost"
	EffectOverseaReduce     = "oversea_damage_reduce"
	EffectOverseaRevive     = "oversea_revive_percent"
	EffectOverseaHeal       = "oversea_heal_percent"
	EffectOverseaHealReduce = "oversea_heal_reduce"
	EffectOverseaExtraRound = "oversea_extra_round"
	// Affinity skills carry the harpoon topic in Skill.Topic.
	EffectOverseaAffinity     = "oversea_affinity"
	EffectOverseaCaptainBoost = "oversea_1st_damage_boost"
	EffectOverseaMemberReduce = "oversea_member_damage_reduce"
)

// Skill is a catalog skill definition. Effect maps an effect key to its
// per-level values.
type Skill struct {
	ID       int                  `json:"id"`
	Name     string               `json:"name"`
	MaxLevel int                  `json:"max_level"`
	Score    int64                `json:"score"` // roll cost when instancing accessories
	Topic    string               `json:"topic,omitempty"`
	Effect   map[string][]float64 `json:"effect"`
}

// EffectAt returns the value of the given effect key at level. Levels past
// the end of the array clamp to the last entry; level 0 or a missing key
// yields 0.
func (s Skill) EffectAt(key string, level int) float64 {
	vals, ok := s.Effect[key]
	if !ok || level <= 0 || len(vals) == 0 {
		return 0
	}
	if level > len(vals) {
		level = len(vals)
	}
	return vals[level-1]
}

// TalentKind enumerates the elemental talent tracks. Index order matters:
// it is the order talents appear in player talent state.
var TalentKinds = []string{"fire", "water", "grass", "ice", "electric", "ghost", "ground"}

// Talent is a catalog talent definition with its exp cost curve.
type Talent struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	MaxLevel  int     `json:"max_level"`
	BaseCost  int64   `json:"base_cost"`
	PowerCost float64 `json:"power_cost"` // cost multiplier per level
}

// LevelAt returns the talent level reached with the given cumulative exp.
func (t Talent) LevelAt(exp int64) int {
	level := 0
	cost := float64(t.BaseCost)
	total := 0.0
	for level < t.MaxLevel {
		total += cost
		if float64(exp) < total {
			break
		}
		level++
		cost *= t.PowerCost
	}
	return level
}

// MaxExp returns the cumulative exp needed to reach MaxLevel.
func (t Talent) MaxExp() int64 {
	cost := float64(t.BaseCost)
	total := 0.0
	for i := 0; i < t.MaxLevel; i++ {
		total += cost
		cost *= t.PowerCost
	}
	return int64(total)
}

// AccessoryInstance is the per-player state of an instanced accessory:
// the template it was rolled from and the skills it carries.
type AccessoryInstance struct {
	TemplateID int        `json:"template_id"`
	Skills     []SkillRef `json:"skills"`
}
