package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fenilsonani/dupescan/internal/config"
	"github.com/fenilsonani/dupescan/internal/dedup"
	"github.com/fenilsonani/dupescan/internal/progress"
	"github.com/fenilsonani/dupescan/internal/remover"
	"github.com/fenilsonani/dupescan/internal/reporter"
	"github.com/fenilsonani/dupescan/internal/ui"
	"github.com/fenilsonani/dupescan/internal/walker"
	"github.com/fenilsonani/dupescan/pkg/utils"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath  string
	findOnly    bool
	noHash      bool
	recursive   bool
	outputFile  string
	outputFmt   string
	minSize     string
	workers     int
	dryRun      bool
	force       bool
	interactive bool
	verbose     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dupescan DIRECTORY...",
	Short: "Find and remove duplicate files",
	Long: `Dupescan checks for duplicate files in the given directories using size
comparison, hashing, and byte-by-byte verification. By default it removes
every duplicate it finds, keeping the first copy in traversal order. Use
--find to only report duplicates without deleting them.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := walker.New(walker.Options{
			Recursive:       cfg.Recursive,
			MinFileSize:     cfg.MinSizeBytes(),
			ExcludePatterns: cfg.ExcludePatterns,
		})
		paths, warnings := w.Resolve(args)
		for _, warning := range warnings {
			fmt.Fprintf(os.Stderr, "warning: %v\n", warning)
		}
		if cfg.Verbose {
			fmt.Printf("Found %d files across directories.\n", len(paths))
		}

		grouper := &dedup.Grouper{
			SkipFingerprint: cfg.SkipFingerprint,
			Workers:         cfg.Workers,
		}

		var result *dedup.Result
		var runErr error
		if interactive {
			result, runErr = runInteractive(ctx, grouper, paths)
		} else {
			result, runErr = runPlain(ctx, grouper, paths)
		}
		if result == nil {
			return runErr
		}
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "warning: scan interrupted, results are partial: %v\n", runErr)
		}

		if !interactive {
			format := cfg.OutputFormat
			if format == "" {
				format = "table"
			}
			rptr := reporter.New(os.Stdout, reporter.OutputFormat(format))
			if err := rptr.Report(result); err != nil {
				return fmt.Errorf("failed to generate report: %w", err)
			}
		}

		if outputFile != "" {
			if err := writeListFile(outputFile, result); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
		}

		if findOnly || interactive || len(result.Groups) == 0 {
			return nil
		}

		if !force && !cfg.DryRun {
			fmt.Printf("\nDelete %d duplicates (%s)? (y/N): ",
				result.DuplicateCount(), utils.FormatBytes(result.WastedSize))
			var response string
			fmt.Scanln(&response)
			if response != "y" && response != "Y" {
				fmt.Println("Deletion cancelled")
				return nil
			}
		}

		rm := remover.New(cfg.DryRun)
		removeResult := rm.Remove(result)

		if cfg.DryRun {
			fmt.Printf("\n[DRY RUN] Would delete %d files (%s)\n",
				len(removeResult.DeletedFiles), utils.FormatBytes(removeResult.DeletedSize))
		} else {
			fmt.Printf("\nRemoved %d duplicates (%s)\n",
				len(removeResult.DeletedFiles), utils.FormatBytes(removeResult.DeletedSize))
		}
		if len(removeResult.Failed) > 0 {
			fmt.Print(remover.FormatErrorSummary(removeResult.Failed))
		}

		return nil
	},
}

// runPlain runs the grouper with the single-line live progress display
func runPlain(ctx context.Context, grouper *dedup.Grouper, paths []string) (*dedup.Result, error) {
	pr := progress.NewReporter()
	defer pr.Close()

	live := ui.NewLiveProgress()
	updates := pr.Subscribe()
	displayDone := make(chan struct{})
	go func() {
		defer close(displayDone)
		for update := range updates {
			live.Update(update)
		}
	}()

	grouper.Progress = progressBridge(pr)

	result, err := grouper.Run(ctx, paths)

	pr.Close()
	<-displayDone
	live.Finish()

	return result, err
}

// runInteractive runs the grouper behind the bubbletea TUI. Interactive
// mode only browses results; deletion stays on the plain path.
func runInteractive(ctx context.Context, grouper *dedup.Grouper, paths []string) (*dedup.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pr := progress.NewReporter()
	updates := pr.Subscribe()
	done := make(chan ui.CompleteMsg, 1)
	resultCh := make(chan *dedup.Result, 1)
	errCh := make(chan error, 1)

	grouper.Progress = progressBridge(pr)

	go func() {
		result, err := grouper.Run(ctx, paths)
		resultCh <- result
		errCh <- err
		done <- ui.CompleteMsg{Result: result, Err: err}
	}()

	program := tea.NewProgram(ui.NewScanModel(updates, done), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		cancel()
		<-resultCh
		<-errCh
		return nil, fmt.Errorf("interactive mode failed: %w", err)
	}

	// Quitting mid-scan cancels the run; partial results still come back.
	cancel()
	result := <-resultCh
	runErr := <-errCh
	pr.Close()

	return result, runErr
}

// progressBridge adapts the grouper callback to reporter updates
func progressBridge(pr *progress.Reporter) dedup.ProgressFunc {
	return func(u dedup.ProgressUpdate) {
		phase := progress.PhaseSizing
		switch u.Stage {
		case dedup.StageFingerprint:
			phase = progress.PhaseHashing
		case dedup.StageVerify:
			phase = progress.PhaseVerifying
		}
		if u.Processed >= u.Total {
			phase = progress.PhaseComplete
		}
		pr.Publish(progress.Update{
			Phase:       phase,
			CurrentPath: u.Path,
			Processed:   u.Processed,
			Total:       u.Total,
			GroupsFound: u.Groups,
			WastedSize:  u.WastedSize,
		})
	}
}

// writeListFile writes the duplicate/kept TSV pairs
func writeListFile(path string, result *dedup.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return reporter.WriteList(file, result)
}

// loadConfig loads the config file and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.GetConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("recursive") {
		cfg.Recursive = recursive
	}
	if cmd.Flags().Changed("no-hash") {
		cfg.SkipFingerprint = noHash
	}
	if cmd.Flags().Changed("min-size") {
		cfg.MinFileSize = minSize
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("format") {
		cfg.OutputFormat = outputFmt
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun = dryRun
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.Flags().BoolVarP(&findOnly, "find", "f", false, "only find duplicates, don't delete them")
	rootCmd.Flags().BoolVarP(&noHash, "no-hash", "n", false, "skip hashing, compare bytes directly")
	rootCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "expand subdirectories")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write duplicate/kept pairs to a TSV file")
	rootCmd.Flags().StringVar(&outputFmt, "format", "table", "report format (table, json, yaml, summary)")
	rootCmd.Flags().StringVar(&minSize, "min-size", "", "ignore files smaller than this (e.g. 1KB)")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "concurrent bucket workers (0 = auto)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be deleted without deleting")
	rootCmd.Flags().BoolVar(&force, "force", false, "delete without confirmation")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse results in an interactive TUI (implies --find)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
