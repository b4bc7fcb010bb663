package cmd

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"dash-sync/core/archive"
	"dash-sync/core/config"
	"dash-sync/core/database"
	"dash-sync/core/logger"
	"dash-sync/core/snapshot"
	"dash-sync/core/storage"

	"dash-sync/feature/batches"
	"dash-sync/feature/issues"
	"dash-sync/feature/notifications"
	"dash-sync/feature/personas"
	"dash-sync/feature/projects"
	"dash-sync/feature/runs"
	"dash-sync/feature/schedules"
	"dash-sync/feature/tests"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var archiveWorkspace string

// archiveCmd uploads the current snapshot database to object storage.
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive the local snapshot database",
	Long: `Reads the snapshot rows of a workspace, bundles them into a
compressed dump and uploads it to the archive bucket, pruning the
oldest archives beyond the retention limit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		logg, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: "console"})
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()

		workspace := archiveWorkspace
		if workspace == "" {
			workspace = cfg.Sync.Workspace
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to open snapshot database", zap.Error(err))
		}
		snaps := snapshot.NewStore(db)
		if err := snaps.Init(); err != nil {
			logg.Fatal("Failed to migrate snapshot table", zap.Error(err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		kinds := []string{
			projects.Kind,
			personas.Kind,
			tests.Kind,
			runs.Kind,
			batches.Kind,
			schedules.Kind,
			notifications.Kind,
			issues.Kind,
		}
		collections := make(map[string]any, len(kinds))
		total := 0
		for _, kind := range kinds {
			recs, err := snaps.Load(ctx, kind, workspace)
			if err != nil {
				logg.Fatal("Failed to read snapshot rows", zap.String("kind", kind), zap.Error(err))
			}
			docs := make([]json.RawMessage, 0, len(recs))
			for _, r := range recs {
				docs = append(docs, json.RawMessage(r.Doc))
			}
			collections[kind] = docs
			total += len(docs)
		}

		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		arch := archive.New(store, cfg.Storage.Bucket, logg)
		if err := arch.EnsureBucket(ctx); err != nil {
			logg.Fatal("Failed to ensure archive bucket", zap.Error(err))
		}

		name, err := arch.Upload(ctx, archive.Dump{
			Workspace:   workspace,
			TakenAt:     time.Now().UTC(),
			Collections: collections,
		})
		if err != nil {
			logg.Fatal("Failed to upload archive", zap.Error(err))
		}
		if err := arch.Prune(ctx, workspace); err != nil {
			logg.Warn("Failed to prune old archives", zap.Error(err))
		}

		logg.Info("Archive uploaded",
			zap.String("object", name),
			zap.String("workspace", workspace),
			zap.Int("documents", total),
		)
		return nil
	},
}

func init() {
	archiveCmd.Flags().StringVar(&archiveWorkspace, "workspace", "", "workspace to archive, defaults to the configured one")
	RootCmd.AddCommand(archiveCmd)
}
