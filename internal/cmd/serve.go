package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zvakanaka/orcaslicer-web/internal/config"
	"github.com/zvakanaka/orcaslicer-web/internal/observability"
	"github.com/zvakanaka/orcaslicer-web/internal/server"
	"github.com/zvakanaka/orcaslicer-web/pkg/baseindex"
	"github.com/zvakanaka/orcaslicer-web/pkg/profile"
	"github.com/zvakanaka/orcaslicer-web/pkg/profilestore"
	"github.com/zvakanaka/orcaslicer-web/pkg/scheduler"
	"github.com/zvakanaka/orcaslicer-web/pkg/slicer"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server: profile CRUD, slice submission, and status.

Example:
  orcaslicer-web serve
  orcaslicer-web serve --host 127.0.0.1 --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Override listen host")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Override listen port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverOverride := map[string]any{}
	if serveHost != "" {
		serverOverride["host"] = serveHost
	}
	if servePort != 0 {
		serverOverride["port"] = servePort
	}
	overrides := map[string]any{}
	if len(serverOverride) > 0 {
		overrides["server"] = serverOverride
	}

	cfg, err := config.Load(ctx, overrides)
	if err != nil {
		return exitError(int(foundry.ExitInvalidArgument), "Invalid configuration", err)
	}

	logger, err := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return exitError(int(foundry.ExitInvalidArgument), "Invalid logging configuration", err)
	}
	defer func() { _ = logger.Sync() }()

	store := profilestore.NewStore(cfg.Profiles.Dir)
	if err := store.EnsureDirs(); err != nil {
		return exitError(int(foundry.ExitFileNotFound), "Cannot prepare profiles directory", err)
	}
	if err := os.MkdirAll(cfg.Workspace.Dir, 0755); err != nil {
		return exitError(int(foundry.ExitFileNotFound), "Cannot prepare workspace directory", err)
	}

	index, err := baseindex.Load(cfg.Slicer.BundledProfilesDir, logger)
	if err != nil {
		return exitError(int(foundry.ExitFileNotFound), "Cannot index bundled profiles", err)
	}

	resolver := profile.NewResolver(index)
	ingestor := profile.NewIngestor(resolver, store)
	runner := slicer.NewProcessRunner(logger)
	sched := scheduler.New(runner, store, resolver, scheduler.Options{
		Binary:  cfg.Slicer.Binary,
		WorkDir: cfg.Workspace.Dir,
		Display: cfg.Slicer.Display,
		Timeout: cfg.Slicer.Timeout,
	}, logger)

	srv := server.New(cfg.Server, logger, server.Dependencies{
		Store:        store,
		Ingestor:     ingestor,
		Scheduler:    sched,
		Index:        index,
		SlicerBinary: cfg.Slicer.Binary,
	})

	logger.Info("Starting orcaslicer-web",
		zap.String("version", version),
		zap.String("slicer_binary", cfg.Slicer.Binary),
		zap.String("profiles_dir", cfg.Profiles.Dir),
		zap.Int("base_profiles", index.Count()))

	if err := srv.Run(ctx); err != nil {
		return exitError(int(foundry.ExitExternalServiceUnavailable), "Server failed", err)
	}
	return nil
}
