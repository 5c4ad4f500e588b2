package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/asset"
	"github.com/lixenwraith/vignettes/audio"
	"github.com/lixenwraith/vignettes/content"
	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/engine"
	"github.com/lixenwraith/vignettes/event"
	"github.com/lixenwraith/vignettes/input"
	"github.com/lixenwraith/vignettes/registry"
	"github.com/lixenwraith/vignettes/render"
	"github.com/lixenwraith/vignettes/replay"
	"github.com/lixenwraith/vignettes/session"
	"github.com/lixenwraith/vignettes/status"
	"github.com/lixenwraith/vignettes/stream"
	"github.com/lixenwraith/vignettes/vignette"
)

const (
	frameInterval = 16 * time.Millisecond
	rigStep       = 0.05
)

var (
	listenFlag = flag.String("listen", "", "serve the websocket stream on this address, e.g. :8080")
	recordFlag = flag.String("record", "", "write a replay recording under this directory")
	debugFlag  = flag.Bool("debug", false, "write logs to "+logDir+"/"+logFileName)
	muteFlag   = flag.Bool("mute", false, "disable audio cues")
	seedFlag   = flag.Uint64("seed", 0, "random seed, 0 keeps the configured seed")
	handsFlag  = flag.Int("hands", 2, "number of keyboard-driven controllers")
)

// startHands places the rig's controllers at waist height either side of the player
var startHands = []mgl64.Vec3{{0.3, 0.8, 0}, {-0.3, 0.8, 0}}

func main() {
	// Panic Recovery: ensure terminal is reset even if the demo crashes
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	if logFile := setupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create terminal: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	// Crash handler restores the terminal before printing the trace
	core.SetCrashHook(screen.Fini)

	err = run(screen)
	screen.Fini()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vignettes: %v\n", err)
		os.Exit(1)
	}
}

func run(screen tcell.Screen) error {
	cfg := session.LoadConfig()
	if *seedFlag != 0 {
		cfg.Seed = *seedFlag
	}

	content.Register()
	entries, err := registry.Playlist(cfg.Playlist)
	if err != nil {
		return err
	}

	var cues vignette.Cues = audio.Silent{}
	audioCfg := audio.LoadConfig()
	if *muteFlag {
		audioCfg.Enabled = false
	}
	player := audio.NewPlayer(audioCfg)
	if err := player.Initialize(); err != nil {
		log.Printf("Audio initialization failed: %v (continuing without audio)", err)
	} else {
		cues = player
		defer player.Close()
	}

	library := asset.NewLibrary()
	library.LoadDefault().Then(func(err error) {
		if err != nil {
			log.Printf("asset load failed: %v", err)
		}
	})

	hands := *handsFlag
	state := input.NewState(hands)
	rig := input.NewKeyboardRig(state, hands, rigStep)
	for i := 0; i < hands && i < len(startHands); i++ {
		rig.Place(i, startHands[i])
	}

	metrics := status.NewRegistry()
	records := event.NewQueue()
	s := session.New(cfg, session.Deps{
		Input:   state,
		Assets:  library,
		Cues:    cues,
		Entries: entries,
		Metrics: metrics,
		Records: records,
	})
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stepper := engine.NewFixedStepper(float64(cfg.PhysicsHz), s.PhysicsStepFunc(), nil)
	stepper.SetMetrics(metrics)
	stepper.Start(ctx)
	defer stepper.Stop()

	var sinks []event.Sink
	var recorder *replay.Recorder
	if *recordFlag != "" {
		rec, manifest, err := replay.NewRecorder(*recordFlag, "vignettes", nil, 0)
		if err != nil {
			return fmt.Errorf("recorder: %w", err)
		}
		recorder = rec
		defer func() {
			if err := recorder.Close(); err != nil {
				log.Printf("replay: close: %v", err)
			}
		}()
		sinks = append(sinks, recorder)
		log.Printf("replay: recording to %s (frames every %dms)", recorder.Directory(), manifest.FrameIntervalMs)
	}

	if *listenFlag != "" {
		hub := stream.NewHub(state, func() any { return s.Snapshot() }, 0)
		hub.SetMetrics(metrics)
		sinks = append(sinks, hub)

		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		srv := &http.Server{Addr: *listenFlag, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		core.Go(func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("stream: listen: %v", err)
			}
		})
		core.Go(func() { hub.Run(ctx) })
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
			defer done()
			srv.Shutdown(shutdownCtx)
		}()
		log.Printf("stream: serving on %s/ws", *listenFlag)
	}

	term := render.NewTerminal(screen)

	eventChan := make(chan tcell.Event, 256)
	// Input polling uses a raw loop as it interacts directly with the terminal
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	})

	frameTicker := time.NewTicker(frameInterval)
	defer frameTicker.Stop()
	last := time.Now()

	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyRune && ev.Rune() == 'n' {
					s.Skip()
					continue
				}
				switch rig.HandleEvent(ev) {
				case input.RigQuit:
					return nil
				case input.RigNextController:
					term.SetActive(rig.Active())
				}
			}

		case now := <-frameTicker.C:
			dt := now.Sub(last).Seconds()
			last = now

			if err := s.Frame(dt); err != nil {
				log.Printf("session: frame: %v", err)
			}
			event.Pump(records, sinks...)

			snap := s.Snapshot()
			term.Draw(snap)
			if recorder != nil {
				if _, err := recorder.AppendFrame(snap.Step, snap); err != nil {
					log.Printf("replay: frame: %v", err)
				}
			}
		}
	}
}
