package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"mecla-go/internal/app"
	"mecla-go/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer
// app.Close(). operation identifies the CLI command being run (e.g. "Run").
func newApp(operation string, level slog.Level) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation, level)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "mecla",
	Short: "Classify media files into a date-partitioned archive tree",
	Long: "mecla moves photos and videos into output/YYYY/MM (or YYYY/\"MM <tag>\")\n" +
		"directories named after their capture date, skipping byte-identical\n" +
		"duplicates and renaming colliding files deterministically.",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Timezone:   %s\n", orDefault(cfg.Timezone, "local"))
		fmt.Printf("Database:   %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Extensions: %v\n", cfg.Extensions)
		return nil
	},
}

// run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Classify media files from --input into --output",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		exts, _ := cmd.Flags().GetStringArray("ext")
		logMode, _ := cmd.Flags().GetString("log")

		level, err := app.ParseLogMode(logMode)
		if err != nil {
			return err
		}

		a, err := newApp("Run", level)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Run(app.RunParams{
			Input:      input,
			Output:     output,
			DryRun:     dryRun,
			Extensions: exts,
		}, newProgress())
		if err != nil {
			return err
		}

		s := result.Stats
		fmt.Printf("\n=== Summary (run %s) ===\n", result.RunID)
		if dryRun {
			fmt.Println("Dry-run: no files were modified.")
		}
		fmt.Printf("Files processed:   %d\n", s.Processed)
		fmt.Printf("Moved:             %d\n", s.Moved)
		fmt.Printf("Duplicates skipped: %d\n", s.Duplicates)
		fmt.Printf("Renamed (collision): %d\n", s.Renamed)
		fmt.Printf("Unresolved:        %d\n", s.Unresolved)
		fmt.Printf("Directories pruned: %d\n", result.PrunedDirs)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past classification runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History", slog.LevelError)
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if r.FinishedAt.Valid {
				d := r.FinishedAt.Time.Sub(r.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			mode := ""
			if r.DryRun {
				mode = "  [dry-run]"
			}
			fmt.Printf("%s  %s  %-8s  %s -> %s  %s%s\n",
				r.ID,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Status,
				r.InputRoot,
				r.OutputRoot,
				duration,
				mode,
			)
		}
		return nil
	},
}

// report command
var reportCmd = &cobra.Command{
	Use:   "report RUN_ID",
	Short: "View the decision records of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Report", slog.LevelError)
		if err != nil {
			return err
		}
		defer a.Close()

		decisions, err := a.Report(args[0])
		if err != nil {
			return err
		}

		if len(decisions) == 0 {
			fmt.Println("No decisions recorded for this run.")
			return nil
		}

		for _, d := range decisions {
			switch {
			case d.Reason != "":
				fmt.Printf("%-20s %s (%s)\n", d.Action, d.SourcePath, d.Reason)
			case d.TargetPath != "":
				fmt.Printf("%-20s %s -> %s\n", d.Action, d.SourcePath, d.TargetPath)
			default:
				fmt.Printf("%-20s %s\n", d.Action, d.SourcePath)
			}
		}
		return nil
	},
}

// newProgress returns an inline progress callback when stdout is a terminal,
// nil otherwise.
func newProgress() func(done, total int) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil
	}
	return func(done, total int) {
		fmt.Printf("\r%d/%d", done, total)
		if done == total {
			fmt.Println()
		}
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)

	// run command
	runCmd.Flags().String("input", "", "Input directory (e.g. /photos/_depot)")
	runCmd.Flags().String("output", "", "Output directory (where to create YYYY/MM...)")
	runCmd.Flags().Bool("dry-run", false, "Do not modify anything, only record the decisions")
	runCmd.Flags().StringArray("ext", nil, "Extension allow-list override (repeatable: --ext jpg --ext mp4)")
	runCmd.Flags().String("log", "conflicts", "Log level: all, conflicts, errors")
	runCmd.MarkFlagRequired("input")
	runCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(runCmd)

	// history and report
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(reportCmd)
}
