package domain

// EquipSlot names the slot an equipable item occupies.
type EquipSlot string

const (
	SlotNone      EquipSlot = ""
	SlotRod       EquipSlot = "rod"
	SlotTool      EquipSlot = "tool"
	SlotAccessory EquipSlot = "accessory"
)

// SkillRef is a skill instance attached to an item or rolled onto an
// accessory instance.
type SkillRef struct {
	ID    int `json:"id"`
	Level int `json:"level"`
}

// Item is an immutable catalog item definition. Accessory templates carry a
// skill-point budget and a reserved id range for instantiated copies.
type Item struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Rarity      int        `json:"rarity"`
	Description string     `json:"description"`
	Price       int64      `json:"price,omitempty"`
	Slot        EquipSlot  `json:"slot,omitempty"`
	Power       int        `json:"power,omitempty"`
	FeverBonus  int        `json:"fever_bonus,omitempty"`  // extra flat power during fever
	IgnoreFever bool       `json:"ignore_fever,omitempty"` // rod keeps full power during fever
	Buyable     bool       `json:"buyable,omitempty"`
	Giftable    bool       `json:"giftable,omitempty"`
	Feed        bool       `json:"feed,omitempty"`
	BatchCraft  bool       `json:"batch_craft,omitempty"`
	CraftBy     []int      `json:"craft_by,omitempty"`
	CraftScore  int64      `json:"craft_score_cost,omitempty"`
	// Require maps a building id to the minimum level needed to buy or
	// craft the item.
	Require    map[string]int `json:"require,omitempty"`
	Skills     []SkillRef     `json:"skills,omitempty"` // intrinsic skills on rods and tools
	SkillPoint int            `json:"skill_point,omitempty"`
	IDRangeEnd int            `json:"id_range_end,omitempty"`
}

// Equipable reports whether the item can occupy an equipment slot.
func (i Item) Equipable() bool { return i.Slot != SlotNone }

// Craftable reports whether the item has a crafting recipe.
func (i Item) Craftable() bool { return len(i.CraftBy) > 0 }
