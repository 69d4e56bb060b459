package main

import (
	"blockdrop/client"
	"blockdrop/tetris"
	"blockdrop/window"
	"flag"
	"log"
	"log/slog"
	"os"
)

func main() {
	ui := flag.String("ui", "window", "front end to play with: window or terminal")
	configPath := flag.String("config", "", "yaml file overriding the default game config")
	addr := flag.String("addr", "localhost:9000", "versus server address")
	name := flag.String("name", "", "player name shown to the opponent")
	debug := flag.Bool("debug", false, "log debug messages")
	logPath := flag.String("log", "blockdrop.log", "file the game logs to")
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("unable to open log file: %v", err)
	}
	defer logFile.Close()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level}))

	cfg := tetris.DefaultConfig()
	if *configPath != "" {
		if cfg, err = tetris.LoadConfig(*configPath); err != nil {
			log.Fatalf("unable to load config: %v", err)
		}
	}

	game, err := tetris.NewGame(cfg, logger)
	if err != nil {
		log.Fatalf("unable to create game: %v", err)
	}

	if *name == "" {
		*name = os.Getenv("USER")
	}

	switch *ui {
	case "window":
		if err := window.New(game, logger).Run(); err != nil {
			logger.Error("window closed with error", slog.String("error", err.Error()))
			log.Fatal(err)
		}
	case "terminal":
		c, err := client.New(logger, game, &client.Options{Address: *addr, Name: *name})
		if err != nil {
			log.Fatal(err)
		}
		c.Start()
	default:
		log.Fatalf("unknown front end %q, use window or terminal", *ui)
	}
}
