package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/navgator/navgator/internal/config"
	"github.com/navgator/navgator/internal/enrich"
	"github.com/navgator/navgator/internal/items"
	"github.com/navgator/navgator/internal/logging"
	"github.com/navgator/navgator/internal/preview"
	"github.com/navgator/navgator/internal/ui"
)

const Version = "0.4.0"

// Exit codes.
const (
	exitOK        = 0
	exitError     = 1
	exitCancelled = 1
	exitUsage     = 2
)

// init sets up color profile for consistent terminal colors across environments
func init() {
	initColorProfile()
}

// initColorProfile configures lipgloss color profile based on terminal capabilities.
// Prefers TrueColor for best visuals, falls back to ANSI256 for compatibility.
func initColorProfile() {
	lipgloss.SetColorProfile(colorProfile(os.Getenv))
}

// colorProfile picks the profile from NAVGATOR_COLOR (truecolor, 256, 16,
// none) or from terminal hints.
func colorProfile(getenv func(string) string) termenv.Profile {
	if colorEnv := getenv("NAVGATOR_COLOR"); colorEnv != "" {
		switch strings.ToLower(colorEnv) {
		case "truecolor", "true", "24bit":
			return termenv.TrueColor
		case "256", "ansi256":
			return termenv.ANSI256
		case "16", "ansi", "basic":
			return termenv.ANSI
		case "none", "off", "ascii":
			return termenv.Ascii
		}
	}
	if getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}

	colorTerm := getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		return termenv.TrueColor
	}

	term := getenv("TERM")
	for _, t := range []string{"xterm-256color", "screen-256color", "tmux-256color", "xterm-direct", "alacritty", "kitty", "wezterm"} {
		if strings.Contains(term, t) {
			return termenv.TrueColor
		}
	}

	// Windows Terminal, iTerm2, JetBrains, Konsole
	if getenv("WT_SESSION") != "" ||
		getenv("ITERM_SESSION_ID") != "" ||
		getenv("TERMINAL_EMULATOR") != "" ||
		getenv("KONSOLE_VERSION") != "" {
		return termenv.TrueColor
	}
	return termenv.ANSI256
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches a command line and returns the exit code.
func run(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("navgator v%s\n", Version)
			return exitOK
		case "help", "--help", "-h":
			printHelp(os.Stdout)
			return exitOK
		case "navigate":
			return handleNavigate(args[1:])
		case "tags":
			return report(handleTags(args[1:], os.Stdout))
		case "retag":
			return report(handleRetag(args[1:], os.Stdout, os.Stderr))
		case "config":
			return report(handleConfig(args[1:], os.Stdout))
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
			printHelp(os.Stderr)
			return exitUsage
		}
	}
	return handleNavigate(nil)
}

// errUsage marks errors caused by a malformed command line.
var errUsage = errors.New("usage")

// report prints err on stderr and maps it to an exit code.
func report(err error) int {
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, errUsage) {
		return exitUsage
	}
	return exitError
}

// session is the state shared by the commands that read the config.
type session struct {
	env config.Env
	cfg *config.Config
}

// loadSession reads the config and starts logging. The returned function
// flushes the log.
func loadSession() (*session, func(), error) {
	env, err := config.EnvFromOS()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(env)
	if err != nil {
		return nil, nil, err
	}

	// Logs are discarded unless NAVGATOR_DEBUG is set or [logs] dir is configured
	debugMode := os.Getenv("NAVGATOR_DEBUG") != ""
	logCfg := cfg.LogConfig(env, debugMode)
	logging.Init(logCfg)
	if logCfg.Enabled {
		watchDumpSignal(logCfg.LogDir)
	}
	return &session{env: env, cfg: cfg}, logging.Shutdown, nil
}

// watchDumpSignal dumps the ring buffer into dir on SIGUSR1.
func watchDumpSignal(dir string) {
	usr1Chan := make(chan os.Signal, 1)
	signal.Notify(usr1Chan, syscall.SIGUSR1)
	go func() {
		for range usr1Chan {
			dumpPath := filepath.Join(dir, fmt.Sprintf("crash-dump-%d.jsonl", time.Now().Unix()))
			if err := logging.DumpRingBuffer(dumpPath); err != nil {
				logging.ForComponent(logging.CompUI).Error("crash_dump_failed",
					slog.String("error", err.Error()))
			} else {
				logging.ForComponent(logging.CompUI).Info("crash_dump_written",
					slog.String("path", dumpPath))
			}
		}
	}()
}

func (s *session) items() ([]string, error) {
	list := items.Build(s.cfg.IndexFolders, s.cfg.StaticItems)
	if len(list) == 0 {
		return nil, errors.New("no items to navigate: configure [paths] index_folders or static_items")
	}
	return list, nil
}

func handleNavigate(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "Error: navigate takes no arguments\n")
		return exitUsage
	}
	sess, shutdown, err := loadSession()
	if err != nil {
		return report(err)
	}
	defer shutdown()

	list, err := sess.items()
	if err != nil {
		return report(err)
	}

	in, out, closeTTY, err := openTerminal()
	if err != nil {
		return report(err)
	}
	defer closeTTY()

	ui.InitTheme(sess.cfg.ResolveTheme())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var watcher *ui.ThemeWatcher
	if sess.cfg.Theme == "system" {
		watcher = ui.NewThemeWatcher(ctx)
		defer watcher.Close()
	}

	prev := preview.New(preview.Options{
		MaxLines:   sess.cfg.Preview.MaxLines,
		TreeDepth:  sess.cfg.Preview.TreeDepth,
		Exclude:    sess.cfg.Preview.Exclude,
		StripANSI:  lipgloss.ColorProfile() == termenv.Ascii,
		DisableErd: sess.cfg.Preview.DisableErd,
	})
	sched := enrich.New(enrich.DefaultFetchers(prev), enrich.Options{BulkRate: sess.cfg.Enrich.BulkRate})

	logging.ForComponent(logging.CompUI).Info("session_started",
		slog.Int("pid", os.Getpid()),
		slog.Int("items", len(list)),
		slog.Any("config", sess.cfg.Sources))

	res, err := ui.Run(list, sched, ui.Options{ThemeWatcher: watcher}, in, out)
	if err != nil {
		return report(err)
	}
	if res.Cancelled {
		return exitCancelled
	}
	if err := writeSelection(res.Path, os.Getenv("NAVGATOR_OUTPUT"), os.Stdout); err != nil {
		return report(err)
	}
	return exitOK
}

// writeSelection prints path on stdout, or writes it to outputFile when set
// so that a shell wrapper can read it back.
func writeSelection(path, outputFile string, stdout io.Writer) error {
	if outputFile == "" {
		_, err := fmt.Fprintln(stdout, path)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(path+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write selection: %w", err)
	}
	return nil
}

// openTerminal returns the input and output of the interface. When stdin or
// stderr is redirected, /dev/tty is used instead so that the navigator still
// works inside command substitution.
func openTerminal() (io.Reader, io.Writer, func(), error) {
	var in io.Reader = os.Stdin
	var out io.Writer = os.Stderr
	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd())) {
		return in, out, func() {}, nil
	}

	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("navgator needs a terminal: %w", err)
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		in = tty
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		out = tty
	}
	return in, out, func() { tty.Close() }, nil
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, "navgator v%s\n", Version)
	fmt.Fprintln(w, "Fuzzy directory navigator with tags and previews")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: navgator [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  (none), navigate            Open the navigator and print the chosen path")
	fmt.Fprintln(w, "  tags <path>                 List the tags of a directory")
	fmt.Fprintln(w, "  tags add <path> <tag>...    Add tags to a directory")
	fmt.Fprintln(w, "  tags rm <path> <tag>...     Remove tags from a directory")
	fmt.Fprintln(w, "  tags export [--format f]    Dump the tags of every item (yaml, json)")
	fmt.Fprintln(w, "  retag org|lang [--dry-run]  Tag repositories with their org or language")
	fmt.Fprintln(w, "  config [path]               Show the config files that are read")
	fmt.Fprintln(w, "  config init                 Write an example config")
	fmt.Fprintln(w, "  version                     Show version")
	fmt.Fprintln(w, "  help                        Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  cd \"$(navgator)\"                 # Jump to the chosen directory")
	fmt.Fprintln(w, "  navgator tags add . infra work    # Tag the current directory")
	fmt.Fprintln(w, "  navgator retag lang --dry-run     # Preview language tags")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment Variables:")
	fmt.Fprintln(w, "  NAVGATOR_CONFIG      Extra config file, read first")
	fmt.Fprintln(w, "  NAVGATOR_OUTPUT      Write the chosen path to this file instead of stdout")
	fmt.Fprintln(w, "  NAVGATOR_COLOR       Color mode: truecolor, 256, 16, none")
	fmt.Fprintln(w, "  NAVGATOR_DEBUG       Enable the debug log")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keyboard shortcuts (in the navigator):")
	fmt.Fprintln(w, "  Enter      Choose the selected directory")
	fmt.Fprintln(w, "  Esc        Cancel")
	fmt.Fprintln(w, "  Ctrl+S     Cycle sort order")
	fmt.Fprintln(w, "  Ctrl+T     Edit tags")
	fmt.Fprintln(w, "  Ctrl+U     Clear the query")
	fmt.Fprintln(w, "  Ctrl+Y     Copy the selected path")
	fmt.Fprintln(w, "  #tag       Filter by tag inside the query")
}
