package game

import (
	"golang.org/x/exp/rand"
)

// Food is the single active pickup. It keeps per-level appearance counters
// so no fruit dominates a tier for long.
type Food struct {
	position Position
	fruit    Fruit
	counts   [FruitCount + 1]int // indexed by fruit level
	rng      *rand.Rand
}

// NewFood creates a food tracker drawing placements from rng
func NewFood(rng *rand.Rand) *Food {
	return &Food{rng: rng}
}

// Position returns the food cell
func (f *Food) Position() Position {
	return f.position
}

// Fruit returns the active fruit definition
func (f *Food) Fruit() Fruit {
	return f.fruit
}

// Points returns the active fruit's value
func (f *Food) Points() int {
	return f.fruit.Points
}

// Count returns how many times the fruit of level has spawned since the
// last counter reset
func (f *Food) Count(level int) int {
	return f.counts[catalogLevel(level)]
}

// ResetCounts clears all appearance counters
func (f *Food) ResetCounts() {
	f.counts = [FruitCount + 1]int{}
}

// IsConsumedBy reports whether p is the food cell
func (f *Food) IsConsumedBy(p Position) bool {
	return f.position == p
}

// Spawn selects a fruit for level and places it on a free cell.
func (f *Food) Spawn(snake *Snake, level int) {
	f.fruit = f.selectFruit(level)
	f.counts[f.fruit.Level]++
	f.position = f.place(snake)
}

// selectFruit picks the level's fruit unless its cap is spent, in which case
// the nearest lower level under its cap supplies the fruit.
func (f *Food) selectFruit(level int) Fruit {
	level = catalogLevel(level)
	if f.counts[level] < MaxFruitCount(level) {
		return FruitForLevel(level)
	}
	if level == 1 {
		f.ResetCounts()
		return FruitForLevel(1)
	}
	prev := level - 1
	for prev >= 1 && f.counts[prev] >= MaxFruitCount(prev) {
		prev--
	}
	if prev >= 1 {
		return FruitForLevel(prev)
	}
	f.counts[level] = 0
	return FruitForLevel(level)
}

// place draws random cells, rejecting the snake and the HUD area. It never
// fails: after the attempt budget it falls back to a fixed cell.
func (f *Food) place(snake *Snake) Position {
	for attempt := 1; attempt <= FoodPlacementAttempts; attempt++ {
		var p Position
		if attempt > FoodNarrowAfter {
			p = Position{
				X: StatsAreaWidth + f.rng.Intn(GridWidth-StatsAreaWidth),
				Y: f.rng.Intn(GridHeight),
			}
		} else {
			p = Position{X: f.rng.Intn(GridWidth), Y: f.rng.Intn(GridHeight)}
		}
		if inStatsArea(p) || snake.Occupies(p) {
			continue
		}
		return p
	}

	p := Position{X: GridWidth * 3 / 4, Y: GridHeight * 3 / 4}
	if snake.Occupies(p) {
		p = Position{
			X: (p.X + FoodFallbackNudge) % GridWidth,
			Y: (p.Y + FoodFallbackNudge) % GridHeight,
		}
	}
	return p
}

func inStatsArea(p Position) bool {
	return p.X < StatsAreaWidth+StatsAreaMargin && p.Y < StatsAreaHeight+StatsAreaMargin
}
