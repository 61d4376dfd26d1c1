package game

import (
	"testing"
	"time"
)

func TestTickInterval(t *testing.T) {
	if got := TickInterval(0); got != 200*time.Millisecond {
		t.Errorf("TickInterval(0) = %v, want 200ms", got)
	}
	if got := TickInterval(InitialSpeed); got != 170*time.Millisecond {
		t.Errorf("TickInterval(5) = %v, want 170ms", got)
	}
	prev := TickInterval(0)
	for s := 0.0; s <= 40; s += 0.5 {
		got := TickInterval(s)
		if got > prev {
			t.Fatalf("TickInterval(%v) = %v grew from %v", s, got, prev)
		}
		if got < 30*time.Millisecond {
			t.Fatalf("TickInterval(%v) = %v below 30ms", s, got)
		}
		prev = got
	}
}

func TestTierOf(t *testing.T) {
	tests := []struct {
		level int
		want  Tier
	}{
		{0, TierEasy}, {1, TierEasy}, {5, TierEasy},
		{6, TierMedium}, {10, TierMedium},
		{11, TierHard}, {15, TierHard}, {40, TierHard},
	}
	for _, tt := range tests {
		if got := TierOf(tt.level); got != tt.want {
			t.Errorf("TierOf(%d) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestTierBandsAreContiguous(t *testing.T) {
	next := 1
	for _, ts := range tierSettings {
		if ts.MinLevel != next || ts.MaxLevel < ts.MinLevel {
			t.Fatalf("%v band = %d..%d, want to start at %d", ts.Tier, ts.MinLevel, ts.MaxLevel, next)
		}
		for l := ts.MinLevel; l <= ts.MaxLevel; l++ {
			if TierOf(l) != ts.Tier {
				t.Errorf("TierOf(%d) = %v, want %v", l, TierOf(l), ts.Tier)
			}
		}
		next = ts.MaxLevel + 1
	}
	if next-1 != MaxLevel {
		t.Errorf("bands end at %d, want %d", next-1, MaxLevel)
	}
}

func TestSettingsFor(t *testing.T) {
	hard := SettingsFor(TierHard)
	if hard.SpeedIncrease != 0.5 || hard.FruitsPerGrowth != 1 || hard.MinLevel != 11 || hard.PointsPerLevel != 900 {
		t.Errorf("hard settings = %+v", hard)
	}
	easy := SettingsFor(TierEasy)
	if easy.FruitsForSpeedIncrease != 3 || easy.FruitsPerGrowth != 3 {
		t.Errorf("easy settings = %+v", easy)
	}
}

func TestCapSpeed(t *testing.T) {
	if got := CapSpeed(100); got != MaxSpeed {
		t.Errorf("CapSpeed(100) = %v", got)
	}
	if got := CapSpeed(1); got != InitialSpeed {
		t.Errorf("CapSpeed(1) = %v", got)
	}
	if got := CapSpeed(12.5); got != 12.5 {
		t.Errorf("CapSpeed(12.5) = %v", got)
	}
}

func TestIsTierBoundary(t *testing.T) {
	if !IsTierBoundary(5, 6) || !IsTierBoundary(10, 11) {
		t.Error("expected 5→6 and 10→11 to be tier boundaries")
	}
	if IsTierBoundary(4, 5) || IsTierBoundary(6, 7) || IsTierBoundary(11, 12) {
		t.Error("unexpected tier boundary")
	}
}

func TestCrossedLevelScore(t *testing.T) {
	tests := []struct {
		prev, score int
		want        bool
	}{
		{599, 600, true},
		{500, 599, false},
		{600, 1100, false},
		{1300, 9077, true}, // a big fruit still counts once
		{0, 0, false},
	}
	for _, tt := range tests {
		if got := crossedLevelScore(tt.prev, tt.score); got != tt.want {
			t.Errorf("crossedLevelScore(%d, %d) = %v, want %v", tt.prev, tt.score, got, tt.want)
		}
	}
}

func TestBackgroundFor(t *testing.T) {
	if got := BackgroundFor(1); got != "#E6E6FA" {
		t.Errorf("BackgroundFor(1) = %s", got)
	}
	if got := BackgroundFor(99); got != BackgroundFor(15) {
		t.Errorf("BackgroundFor(99) = %s, want the level 15 color", got)
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"u": Up, "DOWN": Down, " left ": Left, "r": Right} {
		got, err := ParseDirection(in)
		if err != nil || got != want {
			t.Errorf("ParseDirection(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeNormal, "wrap": ModeWrap, "infinite": ModeWrap, "paranoid": ModeImmortal} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
}

func TestPositionWrap(t *testing.T) {
	tests := []struct{ in, want Position }{
		{Position{-1, 0}, Position{GridWidth - 1, 0}},
		{Position{GridWidth, GridHeight}, Position{0, 0}},
		{Position{3, -1}, Position{3, GridHeight - 1}},
	}
	for _, tt := range tests {
		if got := tt.in.Wrap(); got != tt.want {
			t.Errorf("%v.Wrap() = %v, want %v", tt.in, got, tt.want)
		}
	}
}
