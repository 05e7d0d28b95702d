package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/navgator/navgator/internal/config"
)

// handleConfig runs `navgator config [path|init]`.
func handleConfig(args []string, out io.Writer) error {
	env, err := config.EnvFromOS()
	if err != nil {
		return err
	}
	sub := "path"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "path":
		return printConfigPaths(env, out)
	case "init":
		path := config.DefaultPath(env)
		if err := config.WriteExample(path); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", path)
		return nil
	}
	return fmt.Errorf("%w: navgator config [path|init]", errUsage)
}

// printConfigPaths lists every candidate location, marking the files that
// exist, then the resolved item sources.
func printConfigPaths(env config.Env, out io.Writer) error {
	for _, p := range config.CandidatePaths(env) {
		mark := " "
		if _, err := os.Stat(p); err == nil {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %s\n", mark, p)
	}

	cfg, err := config.Load(env)
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Fprintf(out, "\nNo config found. Run `navgator config init` to create %s\n", config.DefaultPath(env))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "theme: %s\n", cfg.Theme)
	for _, p := range cfg.StaticItems {
		fmt.Fprintf(out, "static: %s\n", p)
	}
	for _, p := range cfg.IndexFolders {
		fmt.Fprintf(out, "index: %s\n", p)
	}
	return nil
}
