package game

// Achievement names as stored by the persistence service
const (
	AchievementFirstTimer     = "First Timer"
	AchievementGameOver       = "Game Over"
	AchievementMediumMode     = "Medium Mode"
	AchievementHardcore       = "Hardcore"
	AchievementSnakeMaster    = "Snake Master"
	AchievementRealPlayer     = "Real Player"
	AchievementHackerMode     = "Hacker Mode"
	AchievementRainbow        = "Rainbow Stuff"
	AchievementDeathMaster    = "Death Master"
	AchievementParanoidMaster = "Paranoid Master"
	AchievementCosmicExplorer = "Cosmic Explorer"
)

// Recorder receives score and achievement events. Calls must return
// promptly; the engine makes them from inside a tick.
type Recorder interface {
	RecordScore(playerID string, score, level int)
	UnlockAchievement(playerID, name string)
}

// Renderer projects a snapshot onto a display surface. It must not call
// back into the engine.
type Renderer interface {
	Draw(Snapshot)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(Snapshot)

func (f RendererFunc) Draw(s Snapshot) { f(s) }

// EventType identifies what happened during a tick
type EventType int

const (
	EventFoodEaten EventType = iota
	EventRangeCatch
	EventCollision
	EventReprieve
	EventLevelUp
	EventSpeedUp
	EventTransitionPrompt
	EventTransitionResolved
	EventGameOver
	EventAchievement
	EventTeleport
)

func (t EventType) String() string {
	switch t {
	case EventFoodEaten:
		return "food_eaten"
	case EventRangeCatch:
		return "range_catch"
	case EventCollision:
		return "collision"
	case EventReprieve:
		return "reprieve"
	case EventLevelUp:
		return "level_up"
	case EventSpeedUp:
		return "speed_up"
	case EventTransitionPrompt:
		return "transition_prompt"
	case EventTransitionResolved:
		return "transition_resolved"
	case EventGameOver:
		return "game_over"
	case EventAchievement:
		return "achievement"
	case EventTeleport:
		return "teleport"
	}
	return "unknown"
}

// Event is emitted to the engine's listener after the state change that
// caused it.
type Event struct {
	Type        EventType
	Score       int
	Level       int
	Health      int
	Tier        Tier     // target tier for transition events
	Fruit       Fruit    // for food events
	Achievement string   // for EventAchievement
	At          Position // cell the event happened at
}

// nopRecorder drops everything
type nopRecorder struct{}

func (nopRecorder) RecordScore(string, int, int)   {}
func (nopRecorder) UnlockAchievement(string, string) {}

type nopRenderer struct{}

func (nopRenderer) Draw(Snapshot) {}
