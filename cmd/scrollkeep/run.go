package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	log "scrollkeep/internal/logger"

	"scrollkeep/internal/capture"
	"scrollkeep/internal/emu"
	"scrollkeep/internal/history"
	"scrollkeep/internal/tui"
)

// runMain captures a command under a pty, then opens the pager over the
// recorded scrollback.
func runMain(root rootArgs, args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var maxLines int
	var width int
	var spillDir string
	var quiet bool
	fs.IntVar(&maxLines, "max-lines", -1, "Scrollback line cap (0 = unbounded, -1 = from config)")
	fs.IntVar(&width, "width", 0, "Terminal columns for the capture (0 = from config, then 80)")
	fs.StringVar(&spillDir, "spill-dir", "", "Directory for spill files (default from config)")
	fs.BoolVar(&quiet, "quiet", false, "Do not echo command output while capturing")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse run args: %v", err)
	}
	command := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(command) == "" {
		log.Fatalf("run: no command given (scrollkeep run -- <command>)")
	}

	cfg := loadConfig(root)
	if maxLines >= 0 {
		cfg.MaxLines = maxLines
	}
	if width > 0 {
		cfg.Width = width
	}
	if spillDir != "" {
		cfg.SpillDir = spillDir
	}
	if cfg.Width <= 0 {
		cfg.Width = 80
	}

	store := history.NewStore(history.StoreOptions{
		MaxLines:       cfg.MaxLines,
		SpillThreshold: cfg.SpillThreshold,
		SpillDir:       cfg.SpillDir,
	})
	defer store.Close()
	feeder := emu.NewFeeder(store, cfg.Width)

	var echo io.Writer
	if !quiet {
		echo = os.Stdout
	}
	code, err := capture.Run(context.Background(), command, capture.Options{
		Width: cfg.Width,
		Echo:  echo,
		Sink:  feeder,
	})
	if err != nil {
		log.Warnf("capture: %v", err)
	}
	if err := feeder.Flush(); err != nil {
		log.Warnf("flush scrollback: %v", err)
	}

	if err := tui.Run(tui.Options{Scroll: store, Title: command}); err != nil {
		log.Fatalf("pager exit: %v", err)
	}
	if code != 0 {
		fmt.Fprintf(os.Stderr, "command exited with code %d\n", code)
		os.Exit(code)
	}
}
