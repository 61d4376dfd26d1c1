package game

import (
	"testing"

	"golang.org/x/exp/rand"
)

func TestSpawnAvoidsSnakeAndHUD(t *testing.T) {
	f := NewFood(rand.New(rand.NewSource(7)))
	s := NewSnake()
	for i := 0; i < 500; i++ {
		f.Spawn(s, 1)
		p := f.Position()
		if !p.InBounds() {
			t.Fatalf("spawn %d off grid: %v", i, p)
		}
		if s.Occupies(p) {
			t.Fatalf("spawn %d on the snake: %v", i, p)
		}
		if inStatsArea(p) {
			t.Fatalf("spawn %d inside the HUD: %v", i, p)
		}
	}
}

func TestSpawnFallbackWhenGridFull(t *testing.T) {
	var segs []Position
	for y := 0; y < GridHeight; y++ {
		for x := 0; x < GridWidth; x++ {
			segs = append(segs, Position{x, y})
		}
	}
	s := snakeAt(Right, segs...)
	f := NewFood(rand.New(rand.NewSource(1)))
	f.Spawn(s, 1)

	want := Position{X: (30 + FoodFallbackNudge) % GridWidth, Y: (22 + FoodFallbackNudge) % GridHeight}
	if f.Position() != want {
		t.Errorf("fallback = %v, want %v", f.Position(), want)
	}
}

func TestFruitSelectionCaps(t *testing.T) {
	f := NewFood(rand.New(rand.NewSource(3)))
	s := NewSnake()

	// level 2: six mangoes, then fall back to the level 1 fruit
	for i := 0; i < MaxFruitCount(2); i++ {
		f.Spawn(s, 2)
		if f.Fruit().Name != "Mango" {
			t.Fatalf("spawn %d = %s, want Mango", i, f.Fruit().Name)
		}
	}
	f.Spawn(s, 2)
	if f.Fruit().Name != "Orange" {
		t.Errorf("after cap = %s, want Orange", f.Fruit().Name)
	}
	if f.Count(2) != MaxFruitCount(2) || f.Count(1) != 1 {
		t.Errorf("counts = %d/%d", f.Count(2), f.Count(1))
	}
}

func TestFruitSelectionLevelOneResets(t *testing.T) {
	f := NewFood(rand.New(rand.NewSource(3)))
	s := NewSnake()
	for i := 0; i < MaxFruitCount(1); i++ {
		f.Spawn(s, 1)
	}
	f.Spawn(s, 1)
	if f.Fruit().Name != "Orange" {
		t.Errorf("fruit = %s, want Orange", f.Fruit().Name)
	}
	if f.Count(1) != 1 {
		t.Errorf("count = %d, want 1 after the reset", f.Count(1))
	}
}

func TestFruitSelectionAllCapped(t *testing.T) {
	f := NewFood(rand.New(rand.NewSource(3)))
	for lvl := 1; lvl <= 3; lvl++ {
		f.counts[lvl] = MaxFruitCount(lvl)
	}
	got := f.selectFruit(3)
	if got.Level != 3 {
		t.Errorf("fruit level = %d, want 3", got.Level)
	}
	if f.counts[3] != 0 {
		t.Errorf("count for level 3 = %d, want reset", f.counts[3])
	}
}

func TestFruitForLevelClamps(t *testing.T) {
	if FruitForLevel(0).Name != "Orange" {
		t.Errorf("FruitForLevel(0) = %s", FruitForLevel(0).Name)
	}
	if got := FruitForLevel(38); got.Name != "Banana" || got.Points != 7777 {
		t.Errorf("FruitForLevel(38) = %+v", got)
	}
	if FruitCount != MaxLevel {
		t.Errorf("FruitCount = %d, want %d", FruitCount, MaxLevel)
	}
	for l := 1; l <= FruitCount; l++ {
		if got := FruitForLevel(l); got.Level != l {
			t.Errorf("FruitForLevel(%d).Level = %d", l, got.Level)
		}
	}
}
