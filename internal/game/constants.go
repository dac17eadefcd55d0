package game

// Item ids the command layer matches on. Everything else resolves through
// the catalog tables.
const (
	itemFeedBasic  = 1
	itemFeedRich   = 2
	itemFeedDeluxe = 3
	itemFeedGolden = 404

	itemBoosterSmall   = 4
	itemBoosterMedium  = 5
	itemBoosterLarge   = 6
	itemBoosterDiamond = 23

	itemCardSmall   = 7
	itemCardMedium  = 8
	itemCardLarge   = 9
	itemCardDiamond = 24

	itemGlowSmall   = 10
	itemGlowMedium  = 11
	itemGlowLarge   = 12
	itemGlowSpecial = 407

	itemMasterBall = 14

	itemBookSmall  = 25
	itemBookMedium = 26
	itemBookLarge  = 27
	itemBookHuge   = 28
	itemBookCustom = 29

	itemDissolver    = 208
	itemCollectorRod = 209
	itemChampionRod  = 210
	itemGoldPouch    = 299
	itemFeverTicket  = 408
)

// Group state keys for the glow stick average-power buffs. Re-using a stick
// replaces the buff with the same key.
const (
	glowKeyNormal  = "glow_stick_normal"
	glowKeySpecial = "glow_stick_special"
)

const (
	dailyFeedCap = 5

	giftCooldownSeconds int64 = 24 * 60 * 60

	cardBaseSeconds int64 = 1200

	goldPouchAmount int64 = 1000

	// Custom talent book limits.
	customBookExpCap   = 2000
	customBookGoldRate = 10

	// Collector rod purchase gates.
	collectorRodSpecies = 100

	// Accessory instancing limits.
	accessoryCopyCap = 100
)
