package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/covaid/covaid-backend/internal/apps"
	"github.com/covaid/covaid-backend/internal/apps/blood"
	"github.com/covaid/covaid-backend/internal/apps/oxygen"
	"github.com/covaid/covaid-backend/internal/config"
	"github.com/covaid/covaid-backend/internal/database"
	"github.com/covaid/covaid-backend/internal/events"
	"github.com/covaid/covaid-backend/internal/geo"
	"github.com/covaid/covaid-backend/internal/logging"
	"github.com/covaid/covaid-backend/internal/matching"
)

func main() {
	app := &cli.App{
		Name:  "covaidctl",
		Usage: "Operator tooling for the covaid backend",
		Commands: []*cli.Command{
			migrateCmd,
			distanceCmd,
			nearestCmd,
			cleanupLogsCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println("Error: ", err)
		os.Exit(1)
	}
}

func plugins() []apps.Plugin {
	return []apps.Plugin{blood.New(), oxygen.New()}
}

func connect() (*config.Config, *gorm.DB, error) {
	cfg := config.Load()
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "Create or update every table",
	Action: func(ctx *cli.Context) error {
		_, db, err := connect()
		if err != nil {
			return err
		}
		defer database.Close(db) //nolint:errcheck

		if err := database.MigrateShared(db); err != nil {
			return err
		}
		for _, p := range plugins() {
			if err := database.MigrateModels(db, p.Models()); err != nil {
				return fmt.Errorf("migrate %s: %w", p.ID(), err)
			}
			fmt.Printf("migrated %s (%d models)\n", p.ID(), len(p.Models()))
		}
		return nil
	},
}

var distanceCmd = &cli.Command{
	Name:    "distance",
	Usage:   "Print the great-circle distance in km between two points",
	Aliases: []string{"d"},
	Flags: []cli.Flag{
		&cli.Float64Flag{Name: "lat1", Required: true, Usage: "latitude of the first point"},
		&cli.Float64Flag{Name: "lon1", Required: true, Usage: "longitude of the first point"},
		&cli.Float64Flag{Name: "lat2", Required: true, Usage: "latitude of the second point"},
		&cli.Float64Flag{Name: "lon2", Required: true, Usage: "longitude of the second point"},
	},
	Action: func(ctx *cli.Context) error {
		a := geo.Point{Lat: ctx.Float64("lat1"), Lon: ctx.Float64("lon1")}
		b := geo.Point{Lat: ctx.Float64("lat2"), Lon: ctx.Float64("lon2")}
		if !a.Valid() || !b.Valid() {
			return errors.New("coordinates out of range")
		}
		fmt.Printf("%.3f km\n", geo.Distance(a, b))
		return nil
	},
}

var nearestCmd = &cli.Command{
	Name:  "nearest",
	Usage: "Show the donors a request would be matched with, without writing anything",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "subsystem", Value: "blood", Usage: "blood or oxygen"},
		&cli.StringFlag{Name: "mobile", Required: true, Usage: "requester mobile number"},
		&cli.Float64Flag{Name: "lat", Required: true, Usage: "requester latitude"},
		&cli.Float64Flag{Name: "lon", Required: true, Usage: "requester longitude"},
	},
	Action: func(ctx *cli.Context) error {
		var plugin apps.Plugin
		for _, p := range plugins() {
			if p.ID() == ctx.String("subsystem") {
				plugin = p
			}
		}
		if plugin == nil {
			return fmt.Errorf("unknown subsystem %q", ctx.String("subsystem"))
		}

		cfg, db, err := connect()
		if err != nil {
			return err
		}
		defer database.Close(db) //nolint:errcheck

		svc := apps.NewMatchService(plugin, db, cfg, events.NopPublisher{})
		candidates, err := svc.Candidates(ctx.Context, matching.Request{
			Mobile: ctx.String("mobile"),
			Origin: geo.Point{Lat: ctx.Float64("lat"), Lon: ctx.Float64("lon")},
		})
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			fmt.Println("no donors in range")
			return nil
		}
		for i, c := range candidates {
			fmt.Printf("%d. %s  %.3f km\n", i+1, c.MobileNumber, c.Distance)
		}
		return nil
	},
}

var cleanupLogsCmd = &cli.Command{
	Name:  "cleanup-logs",
	Usage: "Delete system logs older than the retention window",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "days", Usage: "retention in days (defaults to LOG_RETENTION_DAYS)"},
	},
	Action: func(ctx *cli.Context) error {
		cfg, db, err := connect()
		if err != nil {
			return err
		}
		defer database.Close(db) //nolint:errcheck

		days := ctx.Int("days")
		if days <= 0 {
			days = cfg.LogRetentionDays
		}
		deleted, err := logging.Cleanup(db, time.Now().AddDate(0, 0, -days))
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d log rows older than %d days\n", deleted, days)
		return nil
	},
}
