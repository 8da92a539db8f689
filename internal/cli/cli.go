package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"vdata-pipeline/internal/collate"
	"vdata-pipeline/internal/config"
	"vdata-pipeline/internal/filewalker"
	"vdata-pipeline/internal/graph"
	"vdata-pipeline/internal/interpolation"
	"vdata-pipeline/internal/pipeline"
	"vdata-pipeline/internal/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	verbose    bool
}

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "vdata",
		Short: "Extract structured game data from .vdata records and localisation files",
		Long: `Parses the .vdata record files and localisation token tables of an extracted
game data directory into JSON, collates heroes, items and abilities, and
optionally exports spreadsheets, publishes to PostgreSQL and loads Neo4j.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if opts.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to the YAML config file (default pipeline.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(buildCmd(opts))
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(collateCmd(opts))
	rootCmd.AddCommand(combineCmd())
	rootCmd.AddCommand(exportCmd(opts))
	rootCmd.AddCommand(publishCmd(opts))
	rootCmd.AddCommand(graphCmd(opts))
	rootCmd.AddCommand(neighborsCmd(opts))
	rootCmd.AddCommand(artifactsCmd(opts))
	rootCmd.AddCommand(fetchCmd(opts))
	rootCmd.AddCommand(migrateCmd(opts))

	return rootCmd
}

func buildCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "build [data-dir]",
		Short: "Parse, collate and combine a game data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.DataPath = args[0]
			}
			return runBuild(cfg)
		},
	}
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse one .vdata or localisation file and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args[0])
		},
	}
}

func collateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "collate <output-dir>",
		Short: "Rerun hero, item and ability collation from written artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			src, err := collate.LoadSources(args[0])
			if err != nil {
				return err
			}
			_, err = collate.Run(src, args[0], interpolation.MergeKeybinds(cfg.Keybinds))
			return err
		},
	}
}

func combineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "combine <output-dir>",
		Short: "Rerun localisation combining from written artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := pipeline.Combine(args[0])
			return err
		},
	}
}

func exportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export <output-dir>",
		Short: "Write spreadsheet exports from written artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := recollate(opts, args[0])
			if err != nil {
				return err
			}
			pipeline.Export(args[0], res)
			return nil
		},
	}
}

func publishCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <output-dir>",
		Short: "Upload changed artifacts to PostgreSQL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPublishConfig(opts)
			if err != nil {
				return err
			}

			ctx, cancel := setupContext()
			defer cancel()

			_, err = pipeline.PublishDir(ctx, cfg.DatabaseURL, args[0], pipeline.ClientVersion(args[0]))
			return err
		},
	}
}

func graphCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "graph <output-dir>",
		Short: "Load hero, ability and item relations into Neo4j",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if !cfg.GraphEnabled() {
				return fmt.Errorf("NEO4J_URI is not set")
			}
			res, err := recollate(opts, args[0])
			if err != nil {
				return err
			}

			ctx, cancel := setupContext()
			defer cancel()

			return pipeline.LoadGraph(ctx, cfg, res)
		},
	}
}

func neighborsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "neighbors <hero|ability|item> <key>",
		Short: "List the graph relationships of one node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			label, ok := graph.ParseLabel(args[0])
			if !ok {
				return fmt.Errorf("unknown node label %q", args[0])
			}
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if !cfg.GraphEnabled() {
				return fmt.Errorf("NEO4J_URI is not set")
			}

			ctx, cancel := setupContext()
			defer cancel()

			rels, err := pipeline.Neighbors(ctx, cfg, label, args[1])
			if err != nil {
				return err
			}
			for _, r := range rels {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -[%s]-> %s\n", r.From, r.Type, r.To)
			}
			return nil
		},
	}
}

func artifactsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "artifacts <kind>",
		Short: "List published artifacts of one kind",
		Long:  "Kinds: " + strings.Join(pipeline.Kinds, ", "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(pipeline.Kinds, args[0]) {
				return fmt.Errorf("unknown artifact kind %q", args[0])
			}
			cfg, err := loadPublishConfig(opts)
			if err != nil {
				return err
			}

			ctx, cancel := setupContext()
			defer cancel()

			names, err := pipeline.ListArtifacts(ctx, cfg.DatabaseURL, args[0])
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func fetchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <name>",
		Short: "Print one published artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPublishConfig(opts)
			if err != nil {
				return err
			}

			ctx, cancel := setupContext()
			defer cancel()

			a, err := pipeline.FetchArtifact(ctx, cfg.DatabaseURL, args[0])
			if err != nil {
				return err
			}
			log.Info().
				Str("kind", a.Kind).
				Str("client_version", a.ClientVersion).
				Time("updated_at", a.UpdatedAt).
				Msg("Artifact found")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(a.Content))
			return err
		},
	}
}

// loadPublishConfig loads the configuration and requires DATABASE_URL.
func loadPublishConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if !cfg.PublishEnabled() {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	return cfg, nil
}

func migrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPublishConfig(opts)
			if err != nil {
				return err
			}

			ctx, cancel := setupContext()
			defer cancel()

			return store.Migrate(ctx, cfg.DatabaseURL)
		},
	}
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// runBuild handles the `build` command.
func runBuild(cfg *config.Config) error {
	ctx, cancel := setupContext()
	defer cancel()

	log.Info().
		Str("data", cfg.DataPath).
		Str("output", cfg.OutputDir()).
		Bool("publish", cfg.PublishEnabled()).
		Bool("graph", cfg.GraphEnabled()).
		Msg("Starting build")

	_, err := pipeline.Build(ctx, cfg)
	return err
}

// runParse handles the `parse` command.
func runParse(cmd *cobra.Command, path string) error {
	w := filewalker.NewWalker()
	entry, err := w.Entry(path)
	if err != nil {
		return err
	}
	result, err := w.ParseFile(entry)
	if err != nil {
		return err
	}
	data, err := result.Encode()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := out.Write(data); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out)
	return err
}

// recollate rebuilds the collated documents from the artifacts in outDir.
func recollate(opts *options, outDir string) (*collate.Result, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	src, err := collate.LoadSources(outDir)
	if err != nil {
		return nil, err
	}
	return collate.Collate(src, interpolation.MergeKeybinds(cfg.Keybinds)), nil
}
