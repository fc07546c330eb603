package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joshuapare/allockit/internal/diag"
	"github.com/joshuapare/allockit/internal/script"
	"github.com/joshuapare/allockit/sysalloc"
	"github.com/joshuapare/allockit/track"
	"github.com/joshuapare/allockit/track/registry"
)

var (
	runLevel      = track.LevelTrack
	runAllocator  string
	runCapacity   int
	runWatch      bool
	runFailOnLeak bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().Var(&runLevel, "level", "Debug level: off, log, track or strict (or 0-3)")
	cmd.Flags().StringVar(&runAllocator, "allocator", "libc", "Underlying allocator: libc, heap, pool or mmap")
	cmd.Flags().IntVar(&runCapacity, "capacity", registry.DefaultCapacity, "Maximum tracked allocations")
	cmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "Re-run the script whenever it changes")
	cmd.Flags().BoolVar(&runFailOnLeak, "fail-on-leak", false, "Exit with status 3 when allocations leak")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run an allocation script under the tracker",
		Long: `The run command executes an allocation script against the tracking
allocator and prints a summary with any leaked allocations.

Scripts contain one statement per line:

  version 1
  alloc   buf 64
  calloc  tab 16 8
  realloc buf 128
  free    tab
  stray   ext 32      # allocated behind the tracker's back
  free    ext

Example:
  allocctl run leak.ezm
  allocctl run leak.ezm --level strict --allocator pool
  allocctl run leak.ezm --json --fail-on-leak
  allocctl run leak.ezm --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

func runRun(args []string) error {
	path := args[0]

	once := func() error {
		s, err := runScript(path)
		if err != nil {
			return err
		}
		if jsonOut {
			if err := printJSON(s); err != nil {
				return err
			}
		} else if !quiet || len(s.Leaks) > 0 {
			printSummary(os.Stdout, s)
		}
		if runFailOnLeak && len(s.Leaks) > 0 {
			return fmt.Errorf("%s: %d %w", path, len(s.Leaks), errLeaks)
		}
		return nil
	}

	if !runWatch {
		return once()
	}
	if err := once(); err != nil {
		printError("%v\n", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return watchFile(ctx, path, once)
}

// runScript parses and executes the script at path on a fresh tracker.
func runScript(path string) (*runSummary, error) {
	printVerbose("Parsing script: %s\n", path)
	prog, err := script.ParseFile(path)
	if err != nil {
		return nil, err
	}

	under, err := sysalloc.Lookup(runAllocator)
	if err != nil {
		return nil, err
	}

	t := track.New(runLevel, &track.Options{
		Capacity:   runCapacity,
		Underlying: under,
		Logger:     newRunLogger(),
	})
	printVerbose("Running %d statements at level %s\n", len(prog.Ops), t.Level())

	res, runErr := script.Run(t, prog)
	leaks := t.Close()
	if runErr != nil {
		return nil, runErr
	}
	return newSummary(path, t, res, leaks), nil
}

// newRunLogger builds the tracker's logger. Info lines go to stdout, or to
// stderr when stdout carries JSON.
func newRunLogger() *slog.Logger {
	var out io.Writer = os.Stdout
	if jsonOut {
		out = os.Stderr
	}
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelWarn
	}
	return diag.New(diag.Options{
		Out:     out,
		Err:     os.Stderr,
		NoColor: noColor,
		Level:   level,
	})
}
