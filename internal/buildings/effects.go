package buildings

import "math"

// Effect curves driven by building level. Levels start at 0 (not built).

// PotCapacity is the big pot's fuel capacity.
func PotCapacity(level int) int { return level * 100 }

// PotAvgPowerBoost is the big pot's flat addition to the pond's average
// power.
func PotAvgPowerBoost(level int) int { return level * 10 }

// PotPowerBoost converts the current fuel into a flat power bonus for
// every member.
func PotPowerBoost(fuel int) int { return fuel / 10 }

// PotConsumeSpeed is how much fuel the pot burns per consume tick.
// Overfilling past 100 burns exponentially faster.
func PotConsumeSpeed(fuel int) int {
	power := math.Max(0, float64(fuel)/100-1)
	return int(10 * math.Pow(1.6, power))
}

// PotConsumeInterval is the seconds between fuel consume ticks.
const PotConsumeInterval = 600

// FactoryFishingBonus is the fish factory's multiplier on catch rewards.
func FactoryFishingBonus(level int) float64 { return float64(level) * 0.1 }

// CenterCooldownHours is the build cooldown at the given center level.
func CenterCooldownHours(level int) int {
	hours := []int{24, 12, 6, 4, 2, 1}
	if level >= len(hours) {
		level = len(hours) - 1
	}
	return hours[level]
}

// LabExtraCharges is the fish lab's bonus charges on power boosters.
func LabExtraCharges(level int) int { return level }

// LabExtraCardSeconds is the fish lab's bonus duration on fishing cards.
func LabExtraCardSeconds(level int) int64 { return int64(level) * 600 }

// IceHoleFeverBonus is the ice hole's catch reward multiplier during fever.
func IceHoleFeverBonus(level int) float64 { return float64(level) * 0.15 }

// IceHoleCommonRateDown is how much fever suppresses common fish weights.
func IceHoleCommonRateDown(level int) float64 { return float64(level) * 0.1 }

// IceHoleSpecialRateUp is how much fever boosts limited fish weights.
func IceHoleSpecialRateUp(level int) float64 { return float64(level) * 0.3 }

// StatueShinyRate is the extra shiny chance at the given statue level.
func StatueShinyRate(level int) float64 {
	rates := []float64{0, 0.01, 0.02, 0.05}
	if level >= len(rates) {
		level = len(rates) - 1
	}
	return rates[level]
}

// PortPartyCap is the oversea party size limit.
func PortPartyCap(level int) int { return level + 1 }

// PortDailyRaids is how many battles the port supports per day.
func PortDailyRaids(level int) int { return level }
