package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
)

func main() {
	scene := flag.String("scene", "chain.yaml", "scene file in prefabs/")
	cvars := flag.String("cvars", "physics.yaml", "physics cvar file in prefabs/")
	script := flag.String("script", "", "tengo cvar override script in prefabs/scripts/")
	frames := flag.Int("frames", 600, "frames to simulate; 0 runs until interrupted")
	fps := flag.Float64("fps", 60, "frames per second driving the simulation")
	realtime := flag.Bool("realtime", false, "pace frames with the wall clock")
	watch := flag.Bool("watch", false, "reload cvars when files under prefabs/ change")
	debug := flag.Bool("debug", false, "log contacts, broken joints and body positions")
	flag.Parse()

	game, err := NewGame(Config{
		Scene:    *scene,
		CVars:    *cvars,
		Script:   *script,
		Frames:   *frames,
		FPS:      *fps,
		Realtime: *realtime || *watch,
		Watch:    *watch,
		Debug:    *debug,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := game.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
