// Command snake-term plays the fruit snake game in a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/renantrendt/snake-gms/game"
	"github.com/renantrendt/snake-gms/store"
	"golang.org/x/exp/rand"
)

type options struct {
	player  string
	skin    string
	mode    string
	seed    uint64
	demo    bool
	mute    bool
	logFile string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.player, "player", "", "username to record scores and achievements under")
	flag.StringVar(&o.skin, "skin", "default", "skin: default, rainbow, skull, paranoid, infinite")
	flag.StringVar(&o.mode, "mode", "normal", "mode: normal, wrap, immortal")
	flag.Uint64Var(&o.seed, "seed", 0, "random seed (0 uses the clock)")
	flag.BoolVar(&o.demo, "demo", false, "let the autopilot play")
	flag.BoolVar(&o.mute, "mute", false, "start with sound off")
	flag.StringVar(&o.logFile, "log", "", "write logs to this file")
	flag.Parse()
	return o
}

// app owns the screen loop. Engine callbacks only queue work onto channels;
// everything else runs on the loop goroutine.
type app struct {
	engine *game.Engine
	view   *view
	sound  *Sound
	pilot  *game.Autopilot
	demo   bool

	frames chan game.Snapshot
	events chan game.Event
	done   chan struct{} // closed when the screen loop exits
	last   game.Snapshot
	status string
}

// push hands a frame to the loop, replacing any frame not yet drawn
func (a *app) push(s game.Snapshot) {
	select {
	case a.frames <- s:
		return
	default:
	}
	select {
	case <-a.frames:
	default:
	}
	select {
	case a.frames <- s:
	default:
	}
}

// notify queues an event for the loop. Prompts and game over wait for room
// since the loop acts on them; other events are dropped when the queue is
// full.
func (a *app) notify(ev game.Event) {
	switch ev.Type {
	case game.EventTransitionPrompt, game.EventGameOver:
		select {
		case a.events <- ev:
		case <-a.done:
		}
		return
	}
	select {
	case a.events <- ev:
	default:
	}
}

func (a *app) run(screen tcell.Screen) {
	defer close(a.done)
	input := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			input <- ev
		}
	}()

	a.engine.Start()
	defer a.engine.Stop()

	for {
		select {
		case ev := <-input:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !a.handleKey(commandFor(ev.Key(), ev.Rune())) {
					return
				}
			case *tcell.EventResize:
				screen.Sync()
				a.view.draw(a.last, a.status)
			}

		case s := <-a.frames:
			a.last = s
			if a.demo && s.State == game.StateRunning {
				a.engine.SetDirection(a.pilot.Decide(s))
			}
			a.view.draw(s, a.status)

		case ev := <-a.events:
			a.sound.Play(ev.Type)
			a.handleEvent(ev)
		}
	}
}

func (a *app) handleEvent(ev game.Event) {
	switch ev.Type {
	case game.EventAchievement:
		a.status = "achievement unlocked: " + ev.Achievement
	case game.EventLevelUp:
		a.status = fmt.Sprintf("level %d", ev.Level)
	case game.EventReprieve:
		a.status = "reprieve"
	case game.EventTransitionPrompt:
		if a.demo {
			_ = a.engine.ResolveTransition(game.ChoiceContinue)
		}
	case game.EventGameOver:
		if a.demo {
			a.engine.Reset()
			a.engine.Start()
		}
	}
}

// handleKey applies a command and reports whether the loop should go on
func (a *app) handleKey(c command) bool {
	switch c.act {
	case actQuit:
		return false
	case actMove:
		if !a.demo {
			a.engine.SetDirection(c.dir)
		}
	case actContinue, actFresh:
		choice := game.ChoiceContinue
		if c.act == actFresh {
			choice = game.ChoiceFresh
		}
		if err := a.engine.ResolveTransition(choice); err != nil {
			a.status = err.Error()
		}
	case actRestart:
		a.status = ""
		a.engine.Reset()
		a.engine.Start()
	case actTeleport:
		if !a.engine.Teleport(a.last.Food) {
			a.status = "teleport needs the infinite skin"
		}
	case actMute:
		if a.sound.ToggleMute() {
			a.status = "sound off"
		} else {
			a.status = "sound on"
		}
	case actDemo:
		a.demo = !a.demo
		if a.demo {
			a.status = "autopilot on"
		} else {
			a.status = "autopilot off"
		}
	}
	return true
}

// openProfile logs the player in and returns the recorder and unlocked
// achievements to build the engine with.
func openProfile(ctx context.Context, name string) (store.Player, *store.AsyncRecorder, []string, error) {
	var st store.Store = store.NewMemoryStore()
	if url := os.Getenv("SUPABASE_URL"); url != "" {
		st = store.NewSupabaseStore(url, os.Getenv("SUPABASE_KEY"), nil)
	}
	player, created, err := st.GetOrCreatePlayer(ctx, name)
	if err != nil {
		return store.Player{}, nil, nil, fmt.Errorf("login %q: %w", name, err)
	}
	unlocked, err := st.Achievements(ctx, player.ID)
	if err != nil {
		return store.Player{}, nil, nil, fmt.Errorf("achievements of %q: %w", name, err)
	}
	rec := store.NewAsyncRecorder(st)
	if created {
		rec.UnlockAchievement(player.ID, game.AchievementFirstTimer)
		unlocked = append(unlocked, game.AchievementFirstTimer)
	}
	return player, rec, unlocked, nil
}

// allowedSkin returns skin if it is unlocked, else the default skin.
// Without -player every skin is available.
func allowedSkin(skin game.Skin, unlocked []string) game.Skin {
	need, ok := skin.UnlockedBy()
	if !ok {
		return skin
	}
	for _, a := range unlocked {
		if a == need {
			return skin
		}
	}
	return game.SkinDefault
}

func main() {
	o := parseFlags()

	log.SetOutput(io.Discard)
	if o.logFile != "" {
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("could not load .env: %v", err)
	}

	skin, err := game.ParseSkin(o.skin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	mode, err := game.ParseMode(o.mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	a := &app{
		sound:  NewSound(),
		demo:   o.demo,
		frames: make(chan game.Snapshot, 1),
		events: make(chan game.Event, 64),
		done:   make(chan struct{}),
	}
	seed := o.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	opts := []game.Option{
		game.WithSeed(seed),
		game.WithMode(mode),
		game.WithRenderer(game.RendererFunc(a.push)),
		game.WithEvents(a.notify),
	}

	var rec *store.AsyncRecorder
	if o.player != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		player, r, unlocked, err := openProfile(ctx, o.player)
		cancel()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		rec = r
		if allowed := allowedSkin(skin, unlocked); allowed != skin {
			a.status = fmt.Sprintf("skin %s is locked", skin)
			skin = allowed
		}
		opts = append(opts,
			game.WithPlayer(player.ID),
			game.WithRecorder(rec),
			game.WithUnlocked(unlocked...),
		)
	}
	opts = append(opts, game.WithSkin(skin))
	a.engine = game.New(opts...)
	a.pilot = game.NewAutopilot(rand.New(rand.NewSource(seed + 1)))

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "screen init: %v\n", err)
		os.Exit(1)
	}
	a.view = &view{screen: screen}

	if err := a.sound.Initialize(); err != nil {
		log.Printf("audio disabled: %v", err)
	}
	if o.mute {
		a.sound.ToggleMute()
	}

	a.run(screen)

	a.sound.Cleanup()
	screen.Fini()

	if rec != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rec.Close(ctx); err != nil {
			log.Printf("recorder drain: %v", err)
		}
		cancel()
	}
	fmt.Printf("score %d  level %d\n", a.last.Score, a.last.Level)
}
