package main

import (
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mpataki/slicer/internal/config"
	"github.com/mpataki/slicer/internal/document"
	"github.com/mpataki/slicer/internal/logging"
	"github.com/mpataki/slicer/internal/pipeline"
	"github.com/mpataki/slicer/internal/report"
	"github.com/mpataki/slicer/internal/scaffold"
	"github.com/mpataki/slicer/internal/storage"
	"github.com/mpataki/slicer/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "slicer [document]",
		Short: "Event model interpreter",
		Long:  "Slicer reads an event-model document and explains each slice: its flow, read models, behavioral tests and warnings.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTUI,
	}
	rootCmd.PersistentFlags().Bool("no-rules", false, "Skip rule scripts")

	rootCmd.AddCommand(newInterpretCommand())
	rootCmd.AddCommand(newScaffoldCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newShowCommand())
	rootCmd.AddCommand(newDeleteCommand())
	rootCmd.AddCommand(newModelsCommand())
	return rootCmd
}

// env is what every command needs: configuration, the history store and
// the pipeline built on top of it.
type env struct {
	cfg      *config.Config
	store    *storage.Storage
	pipeline *pipeline.Pipeline
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var rulesDirs []string
	noRules, _ := cmd.Flags().GetBool("no-rules")
	if cfg.Settings.RulesEnabled && !noRules {
		rulesDirs = cfg.RulesDirs()
	}

	return &env{
		cfg:      cfg,
		store:    store,
		pipeline: pipeline.New(store, rulesDirs, logging.Logger()),
	}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	var res *pipeline.Result
	if len(args) == 1 {
		src, err := document.Resolve(args[0], e.cfg.ModelDirs())
		if err != nil {
			return err
		}
		res, err = e.pipeline.Analyze(src, pipeline.Options{Save: e.cfg.Settings.SaveHistory})
		if err != nil {
			return err
		}
	}

	app := tui.NewApp(e.pipeline, res, e.cfg.Settings.HistoryLimit)
	p := tea.NewProgram(app, tea.WithAltScreen())

	_, err = p.Run()
	return err
}

func newInterpretCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interpret <document>",
		Short: "Interpret a document and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			format, err := report.ParseFormat(formatName)
			if err != nil {
				return err
			}
			save, _ := cmd.Flags().GetBool("save")
			skipUnchanged, _ := cmd.Flags().GetBool("skip-unchanged")

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			src, err := document.Resolve(args[0], e.cfg.ModelDirs())
			if err != nil {
				return err
			}

			save = save || e.cfg.Settings.SaveHistory
			if save && skipUnchanged {
				changed, err := e.pipeline.Changed(src)
				if err != nil {
					return err
				}
				save = changed
			}

			res, err := e.pipeline.Analyze(src, pipeline.Options{Save: save})
			if err != nil {
				return err
			}

			if err := report.Write(cmd.OutOrStdout(), format, res.Interpretation, res.RuleFindings); err != nil {
				return err
			}
			if res.AnalysisID != 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved analysis #%d\n", res.AnalysisID)
			}
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "text", "Output format: text, markdown, json or yaml")
	cmd.Flags().Bool("save", false, "Record the analysis in history")
	cmd.Flags().Bool("skip-unchanged", false, "With --save, skip saving when identical text was already recorded")
	return cmd
}

func newScaffoldCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold <document>",
		Short: "Write a proposed file layout with notes for each slice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			src, err := document.Resolve(args[0], e.cfg.ModelDirs())
			if err != nil {
				return err
			}

			res, err := e.pipeline.Analyze(src, pipeline.Options{})
			if err != nil {
				return err
			}

			if dryRun {
				for _, entry := range scaffold.Plan(out, res.Interpretation).Entries {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", entry.Dir, entry.Slice.Title)
				}
				return nil
			}

			s, err := scaffold.Create(out, res.Interpretation)
			if err != nil {
				return fmt.Errorf("failed to write scaffold: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d slices to %s\n", len(s.Entries), s.Path)
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "scaffold", "Output directory")
	cmd.Flags().Bool("dry-run", false, "Print planned paths without writing")
	return cmd
}

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			if limit <= 0 {
				limit = e.cfg.Settings.HistoryLimit
			}

			list, err := e.pipeline.ListAnalyses(limit)
			if err != nil {
				return err
			}

			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No analyses found.")
				return nil
			}

			for _, a := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "#%d %s [%d slices, %d warnings] %s\n",
					a.ID, a.SourcePath, a.SliceCount, a.WarningCount, humanize.Time(a.CreatedAt))
			}
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 0, "Number of analyses to list (default from settings)")
	return cmd
}

func newShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <analysis-id>",
		Short: "Print a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid analysis ID: %w", err)
			}
			formatName, _ := cmd.Flags().GetString("format")
			format, err := report.ParseFormat(formatName)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			a, err := e.pipeline.GetAnalysis(id)
			if err != nil {
				return fmt.Errorf("failed to get analysis: %w", err)
			}

			return report.Write(cmd.OutOrStdout(), format, a.Result, a.RuleFindings)
		},
	}

	cmd.Flags().StringP("format", "f", "text", "Output format: text, markdown, json or yaml")
	return cmd
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <analysis-id>",
		Short: "Delete a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid analysis ID: %w", err)
			}

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.pipeline.DeleteAnalysis(id); err != nil {
				return fmt.Errorf("failed to delete analysis: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted analysis #%d\n", id)
			return nil
		},
	}
}

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List documents in the project and user model directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}

			docs, err := document.LoadAll(cfg.ModelDirs())
			if err != nil {
				return err
			}

			if len(docs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No documents found.")
				return nil
			}

			for _, name := range document.Names(docs) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", name, docs[name].Path)
			}
			return nil
		},
	}
}
