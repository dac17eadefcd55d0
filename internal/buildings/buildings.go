// Package buildings defines the nine group buildings, their upgrade
// material tables and prerequisite chains, and the upgrade state machine
// that runs over domain.BuildingState.
package buildings

import (
	"github.com/hydrangea-games/fishpond/internal/domain"
)

// Requirement is one material line of an upgrade: any mix of the listed
// item ids counting toward Count.
type Requirement struct {
	ItemIDs []int
	Label   string
	Count   int
}

func (r Requirement) withCount(n int) Requirement {
	return Requirement{ItemIDs: r.ItemIDs, Label: r.Label, Count: n}
}

// Matches reports whether the item counts toward this requirement.
func (r Requirement) Matches(itemID int) bool {
	for _, id := range r.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

// Material groups. Interchangeable drops share a requirement line.
var (
	goldCrate   = Requirement{ItemIDs: []int{298}, Label: "crate of gold"}
	goldPouch   = Requirement{ItemIDs: []int{299}, Label: "pouch of gold"}
	ssrR3Drop   = Requirement{ItemIDs: []int{301, 303, 305, 307, 309, 311, 313}, Label: "common SSR drop"}
	ssrR4Drop   = Requirement{ItemIDs: []int{302, 304, 306, 308, 310, 312}, Label: "rare SSR drop"}
	kyogreDrop  = Requirement{ItemIDs: []int{314}, Label: "sea emperor jade"}
	sandR3Drop  = Requirement{ItemIDs: []int{315, 316, 317, 318}, Label: "desert SSR drop"}
	sandR4Drop  = Requirement{ItemIDs: []int{319}, Label: "rare desert SSR drop"}
	forestR3    = Requirement{ItemIDs: []int{320, 321, 322, 323}, Label: "forest SSR drop"}
	forestR4    = Requirement{ItemIDs: []int{324}, Label: "rare forest SSR drop"}
	volcanoR3   = Requirement{ItemIDs: []int{325, 326, 327, 328}, Label: "volcano SSR drop"}
	volcanoR4   = Requirement{ItemIDs: []int{329}, Label: "rare volcano SSR drop"}
	skyR3       = Requirement{ItemIDs: []int{330, 331, 332, 333}, Label: "sky SSR drop"}
	skyR4       = Requirement{ItemIDs: []int{334}, Label: "rare sky SSR drop"}
	iceR3       = Requirement{ItemIDs: []int{335, 336, 337, 338}, Label: "snowpeak SSR drop"}
	iceR4       = Requirement{ItemIDs: []int{339}, Label: "rare snowpeak SSR drop"}
	steelR3     = Requirement{ItemIDs: []int{340, 341, 342, 343}, Label: "steel SSR drop"}
	steelR4     = Requirement{ItemIDs: []int{344}, Label: "rare steel SSR drop"}
	mysticR3    = Requirement{ItemIDs: []int{345, 346, 347, 348}, Label: "mystic SSR drop"}
	mysticR4    = Requirement{ItemIDs: []int{349}, Label: "rare mystic SSR drop"}
	seaToken    = Requirement{ItemIDs: []int{30}, Label: "proof of the sea"}
	stormToken  = Requirement{ItemIDs: []int{31}, Label: "proof of the storm"}
)

// Definition is one building's static upgrade table. Materials and
// Prereqs are keyed by the target level.
type Definition struct {
	ID        string
	Name      string
	MaxLevel  int
	Materials map[int][]Requirement
	Prereqs   map[int]map[string]int
}

// Definitions holds every building keyed by id. Order lists them in
// display order.
var (
	Order = []string{
		domain.BuildingBigPot,
		domain.BuildingFishFactory,
		domain.BuildingBuildingCenter,
		domain.BuildingFishLab,
		domain.BuildingIceHole,
		domain.BuildingMysticShop,
		domain.BuildingSevenStatue,
		domain.BuildingForgeShop,
		domain.BuildingPort,
	}

	Definitions = map[string]Definition{
		domain.BuildingBigPot: {
			ID: domain.BuildingBigPot, Name: "Big Pot", MaxLevel: 5,
			Materials: map[int][]Requirement{
				1: {goldPouch.withCount(10), ssrR3Drop.withCount(5), ssrR4Drop.withCount(2)},
				2: {goldPouch.withCount(20), ssrR3Drop.withCount(10), ssrR4Drop.withCount(5), kyogreDrop.withCount(1)},
				3: {goldCrate.withCount(10), ssrR3Drop.withCount(15), ssrR4Drop.withCount(8), kyogreDrop.withCount(2)},
				4: {goldCrate.withCount(20), ssrR3Drop.withCount(20), ssrR4Drop.withCount(10), kyogreDrop.withCount(3), forestR3.withCount(5), volcanoR3.withCount(5)},
				5: {goldCrate.withCount(30), ssrR3Drop.withCount(25), ssrR4Drop.withCount(15), kyogreDrop.withCount(5), forestR4.withCount(2), volcanoR4.withCount(2)},
			},
		},
		domain.BuildingFishFactory: {
			ID: domain.BuildingFishFactory, Name: "Fish Factory", MaxLevel: 5,
			Materials: map[int][]Requirement{
				1: {goldCrate.withCount(2), ssrR3Drop.withCount(5), ssrR4Drop.withCount(2), steelR3.withCount(5)},
				2: {goldCrate.withCount(5), ssrR3Drop.withCount(10), ssrR4Drop.withCount(5), steelR3.withCount(10)},
				3: {goldCrate.withCount(10), ssrR3Drop.withCount(20), ssrR4Drop.withCount(10), steelR3.withCount(20), steelR4.withCount(2)},
				4: {goldCrate.withCount(20), ssrR3Drop.withCount(30), ssrR4Drop.withCount(20), steelR3.withCount(30), steelR4.withCount(5), mysticR3.withCount(10)},
				5: {goldCrate.withCount(30), ssrR4Drop.withCount(20), steelR4.withCount(10), mysticR4.withCount(5)},
			},
			Prereqs: potChain(5, 0),
		},
		domain.BuildingBuildingCenter: {
			ID: domain.BuildingBuildingCenter, Name: "Building Center", MaxLevel: 5,
			Materials: map[int][]Requirement{
				1: {goldCrate.withCount(2), ssrR3Drop.withCount(5), ssrR4Drop.withCount(2), sandR3Drop.withCount(5)},
				2: {goldCrate.withCount(5), ssrR3Drop.withCount(10), ssrR4Drop.withCount(5), sandR3Drop.withCount(10)},
				3: {goldCrate.withCount(10), ssrR3Drop.withCount(20), ssrR4Drop.withCount(10), sandR3Drop.withCount(20), sandR4Drop.withCount(2)},
				4: {goldCrate.withCount(20), ssrR3Drop.withCount(30), ssrR4Drop.withCount(20), sandR3Drop.withCount(30), sandR4Drop.withCount(5), forestR3.withCount(10)},
				5: {goldCrate.withCount(30), ssrR4Drop.withCount(20), sandR4Drop.withCount(10), forestR4.withCount(5)},
			},
			Prereqs: potChain(5, 0),
		},
		domain.BuildingFishLab: {
			ID: domain.BuildingFishLab, Name: "Fish Lab", MaxLevel: 5,
			Materials: map[int][]Requirement{
				1: {goldCrate.withCount(2), ssrR3Drop.withCount(5), ssrR4Drop.withCount(2), forestR3.withCount(5)},
				2: {goldCrate.withCount(5), ssrR3Drop.withCount(10), ssrR4Drop.withCount(5), forestR3.withCount(10)},
				3: {goldCrate.withCount(10), ssrR3Drop.withCount(20), ssrR4Drop.withCount(10), forestR3.withCount(20), forestR4.withCount(2)},
				4: {goldCrate.withCount(20), ssrR3Drop.withCount(30), ssrR4Drop.withCount(20), forestR3.withCount(30), forestR4.withCount(5), volcanoR3.withCount(10)},
				5: {goldCrate.withCount(30), ssrR4Drop.withCount(20), forestR4.withCount(10), volcanoR4.withCount(5)},
			},
			Prereqs: potChain(5, 0),
		},
		domain.BuildingIceHole: {
			ID: domain.BuildingIceHole, Name: "Ice Hole", MaxLevel: 4,
			Materials: map[int][]Requirement{
				1: {goldCrate.withCount(5), ssrR3Drop.withCount(10), ssrR4Drop.withCount(5), iceR3.withCount(5)},
				2: {goldCrate.withCount(10), ssrR3Drop.withCount(20), ssrR4Drop.withCount(10), iceR3.withCount(10)},
				3: {goldCrate.withCount(20), ssrR3Drop.withCount(30), ssrR4Drop.withCount(20), iceR3.withCount(20), iceR4.withCount(5), steelR3.withCount(10)},
				4: {goldCrate.withCount(30), iceR3.withCount(30), iceR4.withCount(10), steelR4.withCount(5)},
			},
			Prereqs: potChain(4, 1),
		},
		domain.BuildingMysticShop: {
			ID: domain.BuildingMysticShop, Name: "Mystic Shop", MaxLevel: 4,
			Materials: map[int][]Requirement{
				1: {goldCrate.withCount(5), ssrR3Drop.withCount(10), ssrR4Drop.withCount(5), mysticR3.withCount(5)},
				2: {goldCrate.withCount(10), ssrR3Drop.withCount(20), ssrR4Drop.withCount(10), mysticR3.withCount(10)},
				3: {goldCrate.withCount(20), ssrR3Drop.withCount(30), ssrR4Drop.withCount(20), mysticR3.withCount(20), mysticR4.withCount(5), sandR3Drop.withCount(10)},
				4: {goldCrate.withCount(30), mysticR3.withCount(30), mysticR4.withCount(10), sandR4Drop.withCount(5)},
			},
			Prereqs: potChain(4, 1),
		},
		domain.BuildingSevenStatue: {
			ID: domain.BuildingSevenStatue, Name: "Seven Statue", MaxLevel: 3,
			Materials: map[int][]Requirement{
				1: {goldCrate.withCount(15), ssrR3Drop.withCount(30), ssrR4Drop.withCount(15), skyR3.withCount(15), skyR4.withCount(2)},
				2: {goldCrate.withCount(20), ssrR3Drop.withCount(40), ssrR4Drop.withCount(20), skyR3.withCount(20), skyR4.withCount(5), iceR3.withCount(10)},
				3: {goldCrate.withCount(30), skyR3.withCount(30), skyR4.withCount(10), iceR4.withCount(5)},
			},
			Prereqs: map[int]map[string]int{
				1: {domain.BuildingBigPot: 3, domain.BuildingIceHole: 2},
				2: {domain.BuildingBigPot: 4, domain.BuildingIceHole: 3},
				3: {domain.BuildingBigPot: 5, domain.BuildingIceHole: 4},
			},
		},
		domain.BuildingForgeShop: {
			ID: domain.BuildingForgeShop, Name: "Forge Shop", MaxLevel: 3,
			Materials: map[int][]Requirement{
				1: {goldCrate.withCount(15), ssrR3Drop.withCount(30), ssrR4Drop.withCount(15), volcanoR3.withCount(15), volcanoR4.withCount(2)},
				2: {goldCrate.withCount(20), ssrR3Drop.withCount(40), ssrR4Drop.withCount(20), volcanoR3.withCount(20), volcanoR4.withCount(5), skyR3.withCount(10)},
				3: {goldCrate.withCount(30), volcanoR3.withCount(30), volcanoR4.withCount(10), skyR4.withCount(5)},
			},
			Prereqs: map[int]map[string]int{
				1: {domain.BuildingBigPot: 3, domain.BuildingMysticShop: 2},
				2: {domain.BuildingBigPot: 4, domain.BuildingMysticShop: 3},
				3: {domain.BuildingBigPot: 5, domain.BuildingMysticShop: 4},
			},
		},
		domain.BuildingPort: {
			ID: domain.BuildingPort, Name: "Port", MaxLevel: 3,
			Materials: map[int][]Requirement{
				1: {kyogreDrop.withCount(2), sandR4Drop.withCount(1), forestR4.withCount(1), volcanoR4.withCount(1), skyR4.withCount(1), iceR4.withCount(1), steelR4.withCount(1), mysticR4.withCount(1)},
				2: {seaToken.withCount(10), sandR4Drop.withCount(2), forestR4.withCount(2), volcanoR4.withCount(2), skyR4.withCount(2), iceR4.withCount(2), steelR4.withCount(2), mysticR4.withCount(2)},
				3: {stormToken.withCount(20), sandR4Drop.withCount(5), forestR4.withCount(5), volcanoR4.withCount(5), skyR4.withCount(5), iceR4.withCount(5), steelR4.withCount(5), mysticR4.withCount(5)},
			},
			Prereqs: map[int]map[string]int{
				1: {domain.BuildingBigPot: 3, domain.BuildingForgeShop: 1},
				2: {domain.BuildingBigPot: 4, domain.BuildingForgeShop: 2},
				3: {domain.BuildingBigPot: 5, domain.BuildingForgeShop: 3},
			},
		},
	}
)

// potChain builds the common "big pot must lead by offset" prerequisite
// table up to maxLevel.
func potChain(maxLevel, offset int) map[int]map[string]int {
	pre := make(map[int]map[string]int, maxLevel)
	for lvl := 1; lvl <= maxLevel; lvl++ {
		pre[lvl] = map[string]int{domain.BuildingBigPot: lvl + offset}
	}
	return pre
}

// NextMaterials returns the material lines for the building's next level,
// or nil at max level.
func NextMaterials(def Definition, state *domain.BuildingState) []Requirement {
	return def.Materials[state.Level+1]
}

// banked sums the materials counting toward one requirement line.
func banked(state *domain.BuildingState, req Requirement) int {
	total := 0
	for _, id := range req.ItemIDs {
		total += state.Materials[id]
	}
	return total
}

// AddMaterials banks up to count units of the item toward the next level
// and returns how many were consumed. Materials past the requirement are
// refused; items no line needs consume nothing.
func AddMaterials(def Definition, state *domain.BuildingState, itemID, count int) int {
	var req Requirement
	found := false
	for _, r := range NextMaterials(def, state) {
		if r.Matches(itemID) {
			req = r
			found = true
			break
		}
	}
	if !found {
		return 0
	}
	deficit := req.Count - banked(state, req)
	if deficit <= 0 {
		return 0
	}
	added := min(count, deficit)
	if state.Materials == nil {
		state.Materials = map[int]int{}
	}
	state.Materials[itemID] += added
	return added
}

// MaterialStatus pairs each next-level requirement with the banked count.
type MaterialStatus struct {
	Requirement Requirement
	Banked      int
}

// Status returns the progress toward the next level.
func Status(def Definition, state *domain.BuildingState) []MaterialStatus {
	reqs := NextMaterials(def, state)
	out := make([]MaterialStatus, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, MaterialStatus{Requirement: r, Banked: banked(state, r)})
	}
	return out
}

// CanUpgrade reports whether every material line for the next level is
// fully banked. Prerequisites are checked separately via PrereqsMet.
func CanUpgrade(def Definition, state *domain.BuildingState) bool {
	if state.Level >= def.MaxLevel {
		return false
	}
	for _, r := range NextMaterials(def, state) {
		if banked(state, r) < r.Count {
			return false
		}
	}
	return true
}

// Upgrade advances the building one level and clears banked materials.
func Upgrade(def Definition, state *domain.BuildingState) bool {
	if !CanUpgrade(def, state) {
		return false
	}
	state.Level++
	state.Materials = nil
	return true
}

// PrereqsMet checks the other-building level requirements for the next
// level. missing reports the first unmet building id and needed level.
func PrereqsMet(def Definition, state *domain.BuildingState, g *domain.GroupSession) (missingID string, needed int, ok bool) {
	for id, lvl := range def.Prereqs[state.Level+1] {
		if g.BuildingLevel(id) < lvl {
			return id, lvl, false
		}
	}
	return "", 0, true
}
