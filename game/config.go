package game

import (
	"math"
	"time"
)

// Game rules. Grid cells are addressed [0, GridWidth) × [0, GridHeight).
const (
	// Grid
	GridWidth  = 40
	GridHeight = 30

	// HUD rectangle in the top-left corner that food never spawns into
	StatsAreaWidth  = 10
	StatsAreaHeight = 6
	StatsAreaMargin = 1

	// Snake
	StartX        = 10 // default anchor for new and repositioned snakes
	StartY        = 15
	StartSegments = 3

	// Session
	InitialSpeed = 5.0
	MaxSpeed     = 21.0
	MaxHealth    = 3
	MaxLevel     = 15 // level cap outside wrap mode
	LevelScore   = 600
	LevelUpSpeed = 2.0 // flat speed bonus on every level-up

	// Tick interval: max(MinTickMS, BaseTickMS - SpeedTickMS*speed)
	BaseTickMS  = 200
	MinTickMS   = 30
	SpeedTickMS = 6

	// Food placement
	FoodPlacementAttempts = 100
	FoodNarrowAfter       = 50 // after this many attempts x is drawn right of the HUD
	FoodFallbackNudge     = 5

	// Immortal mode: food respawn chance per tick, and how often the
	// snake picks a new random heading
	ImmortalRespawnChance = 0.05
	ImmortalTurnEvery     = 10

	// Range pickup sampling
	RangeSampleStride = 3 // check every Nth segment
	RangeCheckEvery   = 3 // evaluate every Nth tick

	// Achievement thresholds
	SnakeMasterScore = 100000
	RealPlayerScore  = 300000
	HackerScore      = 350000
	DeathMasterCount = 199
	ParanoidSeconds  = 300.0
	CosmicLevel      = 38
)

// Tier is a difficulty band selected by level.
type Tier int

const (
	TierEasy Tier = iota
	TierMedium
	TierHard
)

func (t Tier) String() string {
	switch t {
	case TierEasy:
		return "easy"
	case TierMedium:
		return "medium"
	case TierHard:
		return "hard"
	}
	return "unknown"
}

// TierSettings holds the progression constants of one tier.
type TierSettings struct {
	Tier                   Tier
	MinLevel               int
	MaxLevel               int
	PointsPerLevel         int // listed per tier; level-up uses LevelScore in every tier
	FruitsForSpeedIncrease int
	SpeedIncrease          float64
	GrowthBlocksPerFruit   int
	FruitsPerGrowth        int
}

var tierSettings = [...]TierSettings{
	TierEasy: {
		Tier:                   TierEasy,
		MinLevel:               1,
		MaxLevel:               5,
		PointsPerLevel:         600,
		FruitsForSpeedIncrease: 3,
		SpeedIncrease:          1,
		GrowthBlocksPerFruit:   1,
		FruitsPerGrowth:        3,
	},
	TierMedium: {
		Tier:                   TierMedium,
		MinLevel:               6,
		MaxLevel:               10,
		PointsPerLevel:         700,
		FruitsForSpeedIncrease: 2,
		SpeedIncrease:          1,
		GrowthBlocksPerFruit:   1,
		FruitsPerGrowth:        2,
	},
	TierHard: {
		Tier:                   TierHard,
		MinLevel:               11,
		MaxLevel:               15,
		PointsPerLevel:         900,
		FruitsForSpeedIncrease: 1,
		SpeedIncrease:          0.5,
		GrowthBlocksPerFruit:   1,
		FruitsPerGrowth:        1,
	},
}

// freshStart is what a "start fresh" transition choice resets to.
type freshStart struct {
	level  int
	speed  float64
	health int
}

var freshStarts = map[Tier]freshStart{
	TierMedium: {level: 6, speed: 8, health: 3},
	TierHard:   {level: 12, speed: 12, health: 2},
}

// Background colors for levels 1-15
var backgroundColors = [...]string{
	1: "#E6E6FA", 2: "#008080", 3: "#800000", 4: "#F5F5DC", 5: "#40E0D0",
	6: "#FF7F50", 7: "#808000", 8: "#000080", 9: "#98FB98", 10: "#36454F",
	11: "#C8A2C8", 12: "#FFFFF0", 13: "#CCCCFF", 14: "#DC143C", 15: "#191970",
}

// TickInterval maps a speed value to the run loop interval.
func TickInterval(speed float64) time.Duration {
	ms := math.Max(MinTickMS, BaseTickMS-SpeedTickMS*speed)
	return time.Duration(ms * float64(time.Millisecond))
}

// TierOf returns the difficulty tier whose level band holds level. Levels
// below the first band are easy and levels past the last are hard.
func TierOf(level int) Tier {
	if level < tierSettings[TierEasy].MinLevel {
		return TierEasy
	}
	for _, ts := range tierSettings {
		if level >= ts.MinLevel && level <= ts.MaxLevel {
			return ts.Tier
		}
	}
	return TierHard
}

// SettingsFor returns the progression settings for a tier.
func SettingsFor(t Tier) TierSettings {
	if t < TierEasy || t > TierHard {
		return tierSettings[TierHard]
	}
	return tierSettings[t]
}

// CapSpeed clamps s into [InitialSpeed, MaxSpeed].
func CapSpeed(s float64) float64 {
	return math.Min(MaxSpeed, math.Max(InitialSpeed, s))
}

// BackgroundFor returns the display background for a level. Levels past
// the palette reuse the last color.
func BackgroundFor(level int) string {
	if level < 1 {
		level = 1
	}
	if level >= len(backgroundColors) {
		level = len(backgroundColors) - 1
	}
	return backgroundColors[level]
}

// MaxFruitCount is how many times the principal fruit of a level may spawn
// before selection falls back to a lower level.
func MaxFruitCount(level int) int {
	switch {
	case level <= 5:
		return 6
	case level <= 10:
		return 7
	case level <= 14:
		return 3
	}
	return 1
}

// IsTierBoundary reports whether moving from one level to the next crosses
// into a named difficulty tier (5→6 or 10→11).
func IsTierBoundary(from, to int) bool {
	return (from == 5 && to == 6) || (from == 10 && to == 11)
}

// crossedLevelScore reports whether score passed a LevelScore multiple
// since prev.
func crossedLevelScore(prev, score int) bool {
	return score/LevelScore > prev/LevelScore
}
