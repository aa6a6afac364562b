package main

import (
	"flag"
	"os"
	"path/filepath"

	log "scrollkeep/internal/logger"

	"scrollkeep/internal/emu"
	"scrollkeep/internal/history"
	"scrollkeep/internal/reflow"
	"scrollkeep/internal/tui"
)

// viewMain replays a recorded output file (e.g. a script(1) typescript) into
// a scroll and opens the pager over it.
func viewMain(root rootArgs, args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	var width int
	var rewrap int
	var maxLines int
	fs.IntVar(&width, "width", 0, "Columns the output was recorded at (0 = from config, then 80)")
	fs.IntVar(&rewrap, "rewrap", 0, "Rewrap soft-wrapped lines to this many columns before viewing")
	fs.IntVar(&maxLines, "max-lines", -1, "Scrollback line cap (0 = unbounded, -1 = from config)")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse view args: %v", err)
	}
	if fs.NArg() != 1 {
		log.Fatalf("view: exactly one file expected")
	}
	path := fs.Arg(0)

	cfg := loadConfig(root)
	if width > 0 {
		cfg.Width = width
	}
	if cfg.Width <= 0 {
		cfg.Width = 80
	}
	if maxLines >= 0 {
		cfg.MaxLines = maxLines
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("view: %v", err)
	}

	store := history.NewStore(history.StoreOptions{
		MaxLines:       cfg.MaxLines,
		SpillThreshold: cfg.SpillThreshold,
		SpillDir:       cfg.SpillDir,
	})
	defer store.Close()
	feeder := emu.NewFeeder(store, cfg.Width)
	if _, err := feeder.Write(data); err != nil {
		log.Fatalf("view: feed %s: %v", path, err)
	}
	if err := feeder.Flush(); err != nil {
		log.Fatalf("view: flush: %v", err)
	}

	if rewrap > 0 {
		if err := reflow.ToWidth(store, rewrap); err != nil {
			log.Fatalf("view: rewrap: %v", err)
		}
	}

	if err := tui.Run(tui.Options{Scroll: store, Title: filepath.Base(path)}); err != nil {
		log.Fatalf("pager exit: %v", err)
	}
}
