package main

import (
	"fmt"
	"os"

	log "scrollkeep/internal/logger"

	"scrollkeep/internal/config"
)

func main() {
	log.Configure()
	if logFile, _, err := log.SetupFile(log.DefaultLogPath); err != nil {
		log.Warnf("failed to initialize log file: %v", err)
	} else {
		defer logFile.Close()
	}

	root, rest, err := parseRootArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("parse args: %v", err)
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "run":
			runMain(root, rest[1:])
			return
		case "view":
			viewMain(root, rest[1:])
			return
		case "help", "-h", "--help":
			usage()
			return
		}
	}

	usage()
	os.Exit(2)
}

func usage() {
	fmt.Fprint(os.Stderr, `scrollkeep records terminal output into searchable scrollback.

Usage:
  scrollkeep [flags] run [run flags] -- <command>
  scrollkeep [flags] view [view flags] <file>

Flags:
  -c key=value   Override config value (repeatable)
  --config PATH  Path to config file (default ~/.scrollkeep/config.toml)

Run 'scrollkeep run' to capture a command under a pty and browse the result,
or 'scrollkeep view' to browse a previously recorded output file.
`)
}

// loadConfig resolves the effective config: file, env, then -c overrides.
func loadConfig(root rootArgs) config.Config {
	cfg, err := config.Load(root.cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return config.ApplyKVOverrides(cfg, root.overrides)
}
