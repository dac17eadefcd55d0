// Package effects aggregates the skills carried by a player's equipment
// into a flat effect context the catch, spawn and battle math reads from.
package effects

import (
	"github.com/hydrangea-games/fishpond/internal/catalog"
	"github.com/hydrangea-games/fishpond/internal/domain"
)

// Context is the aggregated effect values of everything a player has
// equipped. Most keys sum across skills; a few take the best single value.
type Context struct {
	FlatPower    float64
	TopicPower   map[string]float64 // spawn topic -> bonus power
	FeverPower   float64
	NewFishPower float64
	OldFishCrit  float64

	CritPercent float64
	CritRate    float64 // max

	GoldRate          float64
	ExpRate           float64
	SuccessRate       float64
	RegeneratePercent float64

	FailReward      float64 // max
	FailItemPercent float64 // max

	// RetryCooldownMin is the best (lowest) retry cooldown in minutes.
	// HasRetry distinguishes "no retry skill" from a zero cooldown.
	RetryCooldownMin float64
	HasRetry         bool

	OverseaDamageBoost   float64
	OverseaDamageReduce  float64 // max
	OverseaRevivePercent float64 // max
	OverseaHealPercent   float64 // max
	OverseaHealReduce    float64 // max
	OverseaExtraRound    float64
	OverseaCaptainBoost  float64
	OverseaMemberReduce  float64
	OverseaAffinity      map[string]float64 // harpoon topic -> damage bonus percent

	skillIDs map[int]bool
}

// HasSkill reports whether any equipped skill has the given id.
func (c *Context) HasSkill(id int) bool { return c.skillIDs[id] }

// Aggregate collects the skill effects of the player's equipped rod, tool
// and accessory. Rods and tools carry intrinsic skills from the catalog;
// accessories carry the skills rolled onto the player's instance.
func Aggregate(cat *catalog.Catalog, p *domain.Player) *Context {
	ctx := &Context{
		TopicPower:      map[string]float64{},
		OverseaAffinity: map[string]float64{},
		skillIDs:        map[int]bool{},
	}

	var refs []domain.SkillRef
	for _, itemID := range []int{p.Equipment.Rod, p.Equipment.Tool} {
		if itemID == 0 {
			continue
		}
		item, ok := cat.Item(itemID)
		if !ok {
			continue
		}
		refs = append(refs, item.Skills...)
	}
	if accID := p.Equipment.Accessory; accID != 0 {
		if meta, ok := p.AccessoryMeta[accID]; ok {
			refs = append(refs, meta.Skills...)
		}
	}

	for _, ref := range refs {
		skill, ok := cat.Skill(ref.ID)
		if !ok {
			continue
		}
		ctx.skillIDs[skill.ID] = true
		ctx.apply(skill, ref.Level)
	}
	return ctx
}

func (c *Context) apply(skill domain.Skill, level int) {
	at := func(key string) float64 { return skill.EffectAt(key, level) }

	c.FlatPower += at(domain.EffectPower)
	if v := at(domain.EffectTopicPower); v != 0 && skill.Topic != "" {
		c.TopicPower[skill.Topic] += v
	}
	c.FeverPower += at(domain.EffectFeverPower)
	c.NewFishPower += at(domain.EffectNewFishPower)
	c.OldFishCrit += at(domain.EffectOldFishCrit)
	c.CritPercent += at(domain.EffectCritPercent)
	c.GoldRate += at(domain.EffectGoldRate)
	c.ExpRate += at(domain.EffectExpRate)
	c.SuccessRate += at(domain.EffectSuccessRate)
	c.RegeneratePercent += at(domain.EffectRegeneratePct)
	c.OverseaDamageBoost += at(domain.EffectOverseaDamage)
	c.OverseaExtraRound += at(domain.EffectOverseaExtraRound)
	c.OverseaCaptainBoost += at(domain.EffectOverseaCaptainBoost)
	c.OverseaMemberReduce += at(domain.EffectOverseaMemberReduce)
	if v := at(domain.EffectOverseaAffinity); v != 0 && skill.Topic != "" {
		c.OverseaAffinity[skill.Topic] += v
	}

	c.CritRate = max(c.CritRate, at(domain.EffectCritRate))
	c.FailReward = max(c.FailReward, at(domain.EffectFailReward))
	c.FailItemPercent = max(c.FailItemPercent, at(domain.EffectFailItemPercent))
	c.OverseaDamageReduce = max(c.OverseaDamageReduce, at(domain.EffectOverseaReduce))
	c.OverseaRevivePercent = max(c.OverseaRevivePercent, at(domain.EffectOverseaRevive))
	c.OverseaHealPercent = max(c.OverseaHealPercent, at(domain.EffectOverseaHeal))
	c.OverseaHealReduce = max(c.OverseaHealReduce, at(domain.EffectOverseaHealReduce))

	if cd := at(domain.EffectRetryCooldown); cd > 0 {
		if !c.HasRetry || cd < c.RetryCooldownMin {
			c.RetryCooldownMin = cd
		}
		c.HasRetry = true
	}
}
