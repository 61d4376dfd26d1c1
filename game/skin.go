package game

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

// Policy answers the capability queries the engine makes once per tick.
// Implementations must not touch engine state.
type Policy interface {
	IsMovementRandomized() bool
	IsCollisionSuppressed() bool
	// PickupRadius returns the long-range pickup radius, if one is active
	PickupRadius() (int, bool)
	IsReprieveAvailable() bool
	ConsumeReprieve()
	TeleportEnabled() bool
}

// Skin is a cosmetic variant. Besides its look, a skin may grant one
// behavioral capability.
type Skin int

const (
	SkinDefault Skin = iota
	SkinRainbow
	SkinSkull    // rate-limited reprieve after a collision
	SkinParanoid // bursts of randomized movement
	SkinInfinite // long-range pickup and teleport
)

// Skin capability tuning
const (
	ReprieveCooldown     = 20 * time.Second
	RandomMoveChance     = 0.05
	RandomMoveWindow     = 2 * time.Second
	InfinitePickupRadius = 5
)

var skinNames = [...]string{
	SkinDefault:  "default",
	SkinRainbow:  "rainbow",
	SkinSkull:    "skull",
	SkinParanoid: "paranoid",
	SkinInfinite: "infinite",
}

func (s Skin) String() string {
	if s < 0 || int(s) >= len(skinNames) {
		return "unknown"
	}
	return skinNames[s]
}

// ParseSkin maps a skin name to its variant
func ParseSkin(name string) (Skin, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return SkinDefault, nil
	}
	for i, n := range skinNames {
		if n == name {
			return Skin(i), nil
		}
	}
	return SkinDefault, fmt.Errorf("%w: %q", ErrUnknownSkin, name)
}

// UnlockedBy returns the achievement that unlocks the skin; the default
// skin needs none.
func (s Skin) UnlockedBy() (string, bool) {
	switch s {
	case SkinRainbow:
		return AchievementRainbow, true
	case SkinSkull:
		return AchievementDeathMaster, true
	case SkinParanoid:
		return AchievementParanoidMaster, true
	case SkinInfinite:
		return AchievementCosmicExplorer, true
	}
	return "", false
}

// SkinPolicy is the Policy backed by the selected skin.
type SkinPolicy struct {
	skin Skin
	now  func() time.Time

	mu           sync.Mutex
	rng          *rand.Rand
	lastReprieve time.Time
	randomUntil  time.Time
}

// NewSkinPolicy creates a policy for skin. rng drives the random-movement
// bursts; now may be nil to use the wall clock.
func NewSkinPolicy(skin Skin, rng *rand.Rand, now func() time.Time) *SkinPolicy {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return &SkinPolicy{skin: skin, rng: rng, now: now}
}

// Skin returns the selected skin
func (p *SkinPolicy) Skin() Skin {
	return p.skin
}

// IsMovementRandomized opens a short random-movement window at a small
// chance per query while the paranoid skin is active.
func (p *SkinPolicy) IsMovementRandomized() bool {
	if p.skin != SkinParanoid {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	if p.rng.Float64() < RandomMoveChance {
		p.randomUntil = now.Add(RandomMoveWindow)
	}
	return now.Before(p.randomUntil)
}

// IsCollisionSuppressed is false for every skin; immunity comes from the
// immortal mode.
func (p *SkinPolicy) IsCollisionSuppressed() bool {
	return false
}

// PickupRadius reports the range catch radius of the infinite skin
func (p *SkinPolicy) PickupRadius() (int, bool) {
	if p.skin == SkinInfinite {
		return InfinitePickupRadius, true
	}
	return 0, false
}

// IsReprieveAvailable is true for the skull skin once the cooldown since
// the last reprieve has passed
func (p *SkinPolicy) IsReprieveAvailable() bool {
	if p.skin != SkinSkull {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastReprieve.IsZero() || p.now().Sub(p.lastReprieve) >= ReprieveCooldown
}

// ConsumeReprieve starts the reprieve cooldown
func (p *SkinPolicy) ConsumeReprieve() {
	p.mu.Lock()
	p.lastReprieve = p.now()
	p.mu.Unlock()
}

// TeleportEnabled is true only for the infinite skin
func (p *SkinPolicy) TeleportEnabled() bool {
	return p.skin == SkinInfinite
}

// capabilities is the per-tick resolution of a Policy
type capabilities struct {
	randomized   bool
	suppressed   bool
	pickupRadius int
	hasPickup    bool
	teleport     bool
}

func resolveCapabilities(p Policy) capabilities {
	radius, ok := p.PickupRadius()
	return capabilities{
		randomized:   p.IsMovementRandomized(),
		suppressed:   p.IsCollisionSuppressed(),
		pickupRadius: radius,
		hasPickup:    ok,
		teleport:     p.TeleportEnabled(),
	}
}
