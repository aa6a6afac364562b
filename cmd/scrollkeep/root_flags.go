package main

import "flag"

type rootArgs struct {
	cfgPath   string
	overrides []string
}

func parseRootArgs(args []string) (rootArgs, []string, error) {
	fs := flag.NewFlagSet("scrollkeep", flag.ContinueOnError)
	var overrides stringSlice
	var cfgPath string
	fs.Var(&overrides, "c", "Override config value key=value (repeatable, applied before subcommand flags)")
	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.scrollkeep/config.toml)")
	if err := fs.Parse(args); err != nil {
		return rootArgs{}, nil, err
	}
	return rootArgs{cfgPath: cfgPath, overrides: overrides}, fs.Args(), nil
}
