package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dash-sync/core/api"
	"dash-sync/core/archive"
	"dash-sync/core/config"
	"dash-sync/core/database"
	"dash-sync/core/loader"
	"dash-sync/core/logger"
	"dash-sync/core/middleware/auth"
	"dash-sync/core/middleware/rayid"
	"dash-sync/core/propagate"
	"dash-sync/core/push"
	"dash-sync/core/session"
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

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync engine",
	Long:  `Starts the sync sessions for every entity type and serves the local inspection API.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Open Snapshot Database (Optional)
		var snaps *snapshot.Store
		if db, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Snapshot database unavailable, warm starts disabled", zap.Error(err))
		} else {
			snaps = snapshot.NewStore(db)
			if err := snaps.Init(); err != nil {
				logg.Warn("Snapshot table migration failed", zap.Error(err))
				snaps = nil
			}
		}

		// 4. Upstream API Client
		client, err := api.New(cfg.Api)
		if err != nil {
			logg.Fatal("Failed to create api client", zap.Error(err))
		}
		client.SetWorkspace(cfg.Sync.Workspace)

		// 5. Push Source (Optional)
		var source push.Source
		var socket *push.Socket
		if cfg.Push.URL != "" {
			dialCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			socket, err = push.Dial(dialCtx, cfg.Push, logg)
			cancel()
			if err != nil {
				logg.Warn("Push channel unavailable, running poll-only", zap.Error(err))
				source = push.NewFake()
			} else {
				source = socket
				logg.Info("Push channel connected", zap.String("url", cfg.Push.URL))
			}
		} else {
			logg.Info("Push channel not configured, running poll-only")
			source = push.NewFake()
		}

		// 6. Build Services
		table := propagate.NewTable(logg)
		fast := time.Duration(cfg.Sync.PollSeconds) * time.Second
		slow := time.Duration(cfg.Sync.SlowPollSeconds) * time.Second

		projectsSvc := projects.NewService(client, source, table, snaps, fast, logg)
		personasSvc := personas.NewService(client, source, table, snaps, fast, logg)
		testsSvc := tests.NewService(client, source, table, snaps, slow, logg)
		runsSvc := runs.NewService(client, source, table, snaps, fast, logg)
		batchesSvc := batches.NewService(client, source, table, snaps, slow, logg)
		schedulesSvc := schedules.NewService(client, source, table, snaps, logg)
		notificationsSvc := notifications.NewService(client, source, table, snaps, slow, logg)
		issuesSvc := issues.NewService(client, source, table, snaps, slow, logg)

		registerPropagation(table, runsSvc, batchesSvc, schedulesSvc, notificationsSvc, testsSvc, personasSvc)
		logg.Info("Propagation table registered", zap.Strings("rules", table.Rules()))

		// 7. Feature Loader
		mgr := loader.NewManager()
		mgr.Register(projects.NewFeature(projectsSvc))
		mgr.Register(personas.NewFeature(personasSvc))
		mgr.Register(tests.NewFeature(testsSvc))
		mgr.Register(runs.NewFeature(runsSvc))
		mgr.Register(batches.NewFeature(batchesSvc))
		mgr.Register(schedules.NewFeature(schedulesSvc))
		mgr.Register(notifications.NewFeature(notificationsSvc))
		mgr.Register(issues.NewFeature(issuesSvc))

		// 8. Local Inspection API
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})
		app.Use(rayid.New())
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 9. Engine Control Endpoints
		hub := session.NewVisibilityHub()
		hub.Attach(mgr.SetVisible)

		app.Post("/workspace", func(c *fiber.Ctx) error {
			var body struct {
				Workspace string `json:"workspace"`
			}
			if err := c.BodyParser(&body); err != nil || body.Workspace == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "workspace is required"})
			}
			client.SetWorkspace(body.Workspace)
			mgr.SetWorkspace(body.Workspace)
			logg.Info("Workspace switched", zap.String("workspace", body.Workspace))
			return c.SendStatus(fiber.StatusNoContent)
		})
		app.Post("/visibility", func(c *fiber.Ctx) error {
			var body struct {
				Visible bool `json:"visible"`
			}
			if err := c.BodyParser(&body); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			hub.Set(body.Visible)
			return c.SendStatus(fiber.StatusNoContent)
		})

		// 10. Start Sync Sessions
		mgr.StartAll(cfg.Sync.Workspace)
		logg.Info("Sync sessions started", zap.String("workspace", cfg.Sync.Workspace))

		// 11. Periodic Snapshot Archival (Optional)
		archiveCtx, stopArchive := context.WithCancel(context.Background())
		defer stopArchive()
		if cfg.Sync.ArchiveIntervalMinutes > 0 {
			store, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Warn("Storage client unavailable, archival disabled", zap.Error(err))
			} else {
				arch := archive.New(store, cfg.Storage.Bucket, logg)
				if err := arch.EnsureBucket(archiveCtx); err != nil {
					logg.Warn("Archive bucket unavailable, archival disabled", zap.Error(err))
				} else {
					interval := time.Duration(cfg.Sync.ArchiveIntervalMinutes) * time.Minute
					take := func() archive.Dump {
						return archive.Dump{
							Workspace: client.Workspace(),
							TakenAt:   time.Now().UTC(),
							Collections: map[string]any{
								projects.Kind:      projectsSvc.Store().All(),
								personas.Kind:      personasSvc.Store().All(),
								tests.Kind:         testsSvc.Store().All(),
								runs.Kind:          runsSvc.Store().All(),
								batches.Kind:       batchesSvc.Store().All(),
								schedules.Kind:     schedulesSvc.Store().All(),
								notifications.Kind: notificationsSvc.Store().All(),
								issues.Kind:        issuesSvc.Store().All(),
							},
						}
					}
					go arch.Run(archiveCtx, interval, take)
					logg.Info("Snapshot archival enabled", zap.Duration("interval", interval))
				}
			}
		}

		// 12. Serve
		go func() {
			logg.Info("Starting inspection api", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 13. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down...")
		stopArchive()
		mgr.StopAll()
		if socket != nil {
			_ = socket.Close()
		}
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
