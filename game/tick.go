package game

// tick runs one step of the session with mu held. It reports whether the
// frame should be drawn.
func (e *Engine) tick() bool {
	if e.state != StateRunning {
		return false
	}

	caps := resolveCapabilities(e.policy)
	e.rangeCatch = nil
	e.updateCounters()

	e.steer(caps)
	head := e.snake.Advance()

	if e.mode.Wraps() {
		if w := head.Wrap(); w != head {
			e.snake.SetHead(w)
			head = w
		}
		if e.mode != ModeImmortal && !caps.suppressed && e.snake.HasSelfCollision() {
			e.collide(head)
			return true
		}
	} else if !head.InBounds() || (!caps.suppressed && e.snake.HasSelfCollision()) {
		e.collide(head)
		return true
	}

	consumed, ranged := false, false
	if e.mode == ModeImmortal {
		if e.rng.Float64() < ImmortalRespawnChance {
			e.food.Spawn(e.snake, e.level)
		}
		consumed = e.food.IsConsumedBy(head)
	} else {
		consumed = e.food.IsConsumedBy(head)
		if !consumed && caps.hasPickup && e.rangeDue() {
			if seg, ok := e.rangePickup(caps.pickupRadius); ok {
				consumed, ranged = true, true
				e.rangeCatch = &seg
			}
		}
	}

	if !consumed {
		e.snake.ShrinkTail()
		return true
	}
	e.consume(ranged)
	return true
}

// updateCounters advances the time-based achievement counters
func (e *Engine) updateCounters() {
	switch e.mode {
	case ModeImmortal:
		e.immortalSeconds += TickInterval(e.speed).Seconds()
		if e.immortalSeconds >= ParanoidSeconds {
			e.unlock(AchievementParanoidMaster)
		}
	case ModeWrap:
		if e.level > e.wrapMaxLevel {
			e.wrapMaxLevel = e.level
		}
		if e.wrapMaxLevel >= CosmicLevel {
			e.unlock(AchievementCosmicExplorer)
		}
	}
}

// steer overrides the player's intent when movement is randomized
func (e *Engine) steer(caps capabilities) {
	random := caps.randomized
	if e.mode == ModeImmortal {
		e.turnTicks++
		if e.turnTicks >= ImmortalTurnEvery {
			e.turnTicks = 0
			random = true
		}
	}
	if !random {
		return
	}
	e.snake.SetIntendedDirection(directions[e.rng.Intn(len(directions))])
}

// rangeDue gates the range check to every RangeCheckEvery-th evaluation
func (e *Engine) rangeDue() bool {
	e.rangeTicks++
	if e.rangeTicks < RangeCheckEvery {
		return false
	}
	e.rangeTicks = 0
	return true
}

// rangePickup samples every RangeSampleStride-th segment, head first, and
// returns the first one within radius of the food.
func (e *Engine) rangePickup(radius int) (Position, bool) {
	food := e.food.Position()
	for i := 0; i < e.snake.Len(); i += RangeSampleStride {
		seg := e.snake.Segment(i)
		if seg.Manhattan(food) <= radius {
			return seg, true
		}
	}
	return Position{}, false
}

// collide resolves a wall or self collision. The advance that caused it is
// undone first so the body keeps its length.
func (e *Engine) collide(at Position) {
	e.snake.ShrinkTail()
	e.emit(Event{Type: EventCollision, At: at, Score: e.score, Health: e.health})

	if e.policy.IsReprieveAvailable() {
		e.policy.ConsumeReprieve()
		e.health = MaxHealth
		e.snake.Reposition(Position{X: StartX, Y: StartY})
		e.emit(Event{Type: EventReprieve, At: at, Score: e.score, Health: e.health})
		return
	}

	e.deaths++
	if e.deaths >= DeathMasterCount {
		e.unlock(AchievementDeathMaster)
	}

	e.health--
	if e.health <= 0 {
		e.health = 0
		e.gameOver()
		return
	}
	e.snake.Reposition(Position{X: StartX, Y: StartY})
}

func (e *Engine) gameOver() {
	e.state = StateGameOver
	e.disarm()
	e.recorder.RecordScore(e.playerID, e.score, e.level)
	e.unlock(AchievementGameOver)
	e.emit(Event{Type: EventGameOver, Score: e.score, Health: e.health})
}

// consume applies scoring, growth, speed and level progression for the
// food just eaten, then places new food. A tier-boundary level-up pauses
// the session instead and defers the food until the choice is made.
func (e *Engine) consume(ranged bool) {
	fruit := e.food.Fruit()
	prev := e.score
	e.score += e.food.Points()
	e.fruitsEaten++
	e.snake.SetColor(fruit.SnakeColor)

	ev := Event{Type: EventFoodEaten, Fruit: fruit, At: e.food.Position()}
	if ranged {
		ev.Type = EventRangeCatch
	}
	ev.Score, ev.Health = e.score, e.health
	e.emit(ev)
	e.checkScore()

	settings := SettingsFor(TierOf(e.level))
	switch {
	case ranged:
		// keep the advanced segment: a range catch always grows by one
	case e.fruitsEaten%settings.FruitsPerGrowth == 0:
		e.snake.GrowTail(settings.GrowthBlocksPerFruit - 1)
	default:
		e.snake.ShrinkTail()
	}

	if !ranged && e.fruitsEaten%settings.FruitsForSpeedIncrease == 0 {
		if e.setSpeed(e.speed + settings.SpeedIncrease) {
			e.emit(Event{Type: EventSpeedUp, Score: e.score, Health: e.health})
		}
	}

	if crossedLevelScore(prev, e.score) && e.levelAllowed() {
		next := e.level + 1
		if IsTierBoundary(e.level, next) && !ranged {
			e.beginTransition(TierOf(next))
			return
		}
		e.level = next
		e.setSpeed(e.speed + LevelUpSpeed)
		e.emit(Event{Type: EventLevelUp, Score: e.score, Health: e.health, Tier: TierOf(next)})
	}

	e.food.Spawn(e.snake, e.level)
}

// levelAllowed reports whether the level may still rise in this mode
func (e *Engine) levelAllowed() bool {
	return e.mode == ModeWrap || e.level < MaxLevel
}

func (e *Engine) checkScore() {
	if e.score >= SnakeMasterScore {
		e.unlock(AchievementSnakeMaster)
	}
	if e.score >= RealPlayerScore {
		e.unlock(AchievementRealPlayer)
	}
	if e.score >= HackerScore {
		e.unlock(AchievementHackerMode)
	}
}

// setSpeed applies a capped speed and reschedules the loop if it changed
func (e *Engine) setSpeed(s float64) bool {
	s = CapSpeed(s)
	if s == e.speed {
		return false
	}
	e.speed = s
	e.sched.Reschedule(TickInterval(s))
	return true
}

func (e *Engine) beginTransition(tier Tier) {
	e.state = StatePaused
	e.pendingTier = tier
	e.disarm()
	e.emit(Event{Type: EventTransitionPrompt, Tier: tier, Score: e.score, Health: e.health})
}
