package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"dash-sync/core/api"
	"dash-sync/core/config"
	"dash-sync/core/logger"
	"dash-sync/core/propagate"
	"dash-sync/core/push"
	"dash-sync/core/recurrence"
	"dash-sync/feature/schedules"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scheduleFlags struct {
	test    string
	persona string
	freq    string
	date    string
	hour    int
	minute  int
	at      string
}

// scheduleCmd creates a schedule without starting the engine.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Create a test schedule",
	Long: `Creates a recurring or one-shot schedule through the upstream API.
With --at an absolute one-shot schedule is created; otherwise --freq,
--date, --hour and --minute describe a recurring rule.`,
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

		client, err := api.New(cfg.Api)
		if err != nil {
			return fmt.Errorf("failed to create api client: %w", err)
		}
		client.SetWorkspace(cfg.Sync.Workspace)

		svc := schedules.NewService(client, push.NewFake(), propagate.NewTable(logg), nil, logg)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if scheduleFlags.at != "" {
			at, err := time.Parse(time.RFC3339, scheduleFlags.at)
			if err != nil {
				return fmt.Errorf("invalid --at value: %w", err)
			}
			created, err := svc.CreateOneShot(ctx, scheduleFlags.test, scheduleFlags.persona, at)
			if err != nil {
				return err
			}
			logg.Info("One-shot schedule created",
				zap.String("id", created.ID),
				zap.String("scheduledFor", at.UTC().Format(time.RFC3339)),
			)
			return nil
		}

		date := time.Now().UTC()
		if scheduleFlags.date != "" {
			date, err = time.Parse("2006-01-02", scheduleFlags.date)
			if err != nil {
				return fmt.Errorf("invalid --date value: %w", err)
			}
		}
		created, err := svc.CreateRecurring(ctx,
			scheduleFlags.test,
			scheduleFlags.persona,
			date,
			scheduleFlags.hour,
			scheduleFlags.minute,
			recurrence.Frequency(scheduleFlags.freq),
		)
		if err != nil {
			return err
		}
		logg.Info("Recurring schedule created",
			zap.String("id", created.ID),
			zap.String("rule", created.Rule),
		)
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleFlags.test, "test", "", "test id to schedule (required)")
	scheduleCmd.Flags().StringVar(&scheduleFlags.persona, "persona", "", "persona id to run as (required)")
	scheduleCmd.Flags().StringVar(&scheduleFlags.freq, "freq", "daily", "recurrence frequency: daily, weekly or monthly")
	scheduleCmd.Flags().StringVar(&scheduleFlags.date, "date", "", "anchor date YYYY-MM-DD, defaults to today")
	scheduleCmd.Flags().IntVar(&scheduleFlags.hour, "hour", 0, "hour of day in UTC")
	scheduleCmd.Flags().IntVar(&scheduleFlags.minute, "minute", 0, "minute of hour")
	scheduleCmd.Flags().StringVar(&scheduleFlags.at, "at", "", "one-shot time in RFC3339, overrides the recurrence flags")
	RootCmd.AddCommand(scheduleCmd)
}
