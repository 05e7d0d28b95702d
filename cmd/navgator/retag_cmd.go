package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/navgator/navgator/internal/retag"
)

// handleRetag runs `navgator retag org|lang [--dry-run]`.
func handleRetag(args []string, out, errOut io.Writer) error {
	fs := newFlagSet("retag", "retag org|lang [--dry-run] [--workers n]", errOut)
	dryRun := fs.Bool("dry-run", false, "Show the changes without writing")
	workers := fs.Int("workers", 4, "Repositories processed in parallel")
	quiet := fs.Bool("quiet", false, "Hide the progress bar")
	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: navgator retag org|lang [--dry-run]", errUsage)
	}
	kind, err := retag.ParseKind(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	sess, shutdown, err := loadSession()
	if err != nil {
		return err
	}
	defer shutdown()
	list, err := sess.items()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := retag.Options{DryRun: *dryRun, Workers: *workers}
	if !*quiet {
		opts.Progress = errOut
	}
	rep, err := retag.Run(ctx, kind, list, opts)
	printRetagReport(out, rep, *dryRun)
	return err
}

func printRetagReport(out io.Writer, rep retag.Report, dryRun bool) {
	verb := "tagged"
	if dryRun {
		verb = "would tag"
	}
	for _, c := range rep.Changes {
		fmt.Fprintf(out, "%s %s: %s\n", verb, c.Dir, c.Tag)
	}

	failed := make([]string, 0, len(rep.Failed))
	for dir := range rep.Failed {
		failed = append(failed, dir)
	}
	sort.Strings(failed)
	for _, dir := range failed {
		fmt.Fprintf(out, "failed %s: %v\n", dir, rep.Failed[dir])
	}

	summary := rep.String()
	if dryRun {
		summary = strings.Replace(summary, "updated", "would update", 1)
	}
	fmt.Fprintln(out, summary)
}
