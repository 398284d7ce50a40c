package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/oncallhq/oncall-manager/backend/internal/config"
	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/repository"
	"github.com/oncallhq/oncall-manager/backend/internal/schedule"
	"github.com/oncallhq/oncall-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var seedZones = []string{
	"America/Chicago", "America/New_York", "Europe/Berlin", "Asia/Tokyo", "UTC",
}

func main() {
	var op int
	var n int
	var rotationID string

	flag.IntVar(&op, "op", 0, "operation (1: insert random users, 2: insert random rotations, 3: generate periods from templates)")
	flag.IntVar(&n, "n", 5, "number of records to insert (op 1, 2) or weeks to cover (op 3)")
	flag.StringVar(&rotationID, "rotation-id", "", "rotation to generate periods for (op 3)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("no operation specified")
	case 1:
		if n <= 0 {
			slog.Error("number of users must be positive")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.UserPassword, cfg.Seed.EmailDomain)
			if err != nil {
				slog.Error("failed to generate random user", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("failed to insert user", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("users inserted", slog.Int("count", n-cnt))
	case 2:
		if n <= 0 {
			slog.Error("number of rotations must be positive")
			return
		}

		users, err := repo.GetAllUsers(true)
		if err != nil {
			slog.Error("failed to load users", slog.String("error", err.Error()))
			return
		}
		if len(users) == 0 {
			slog.Error("no users to build rotations from, run op 1 first")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			rotation := &domain.Rotation{
				Name:             fmt.Sprintf("Rotation %s", utils.GenerateRandomSecret(6)),
				Description:      "seeded rotation",
				TimeZone:         seedZones[rand.Intn(len(seedZones))],
				PeriodLengthDays: 7,
				StartDateUTC:     time.Now().UTC().Truncate(24 * time.Hour),
			}

			primary := users[rand.Intn(len(users))]
			rotation.DefaultPrimaryUserID = &primary.ID
			if len(users) > 1 {
				secondary := users[rand.Intn(len(users))]
				if secondary.ID != primary.ID {
					rotation.DefaultSecondaryUserID = &secondary.ID
				}
			}

			if err := repo.CreateRotation(rotation); err != nil {
				slog.Error("failed to insert rotation", slog.String("error", err.Error()))
				continue
			}

			// weekday business-hours template
			for dow := int32(0); dow < 5; dow++ {
				tpl := &domain.PeriodTemplate{
					RotationID: rotation.ID,
					DayOfWeek:  dow,
					StartTime:  "09:00",
					EndTime:    "17:00",
					IsActive:   true,
				}
				if err := repo.CreatePeriodTemplate(tpl); err != nil {
					slog.Error("failed to insert template", slog.String("error", err.Error()))
				}
			}

			for order, user := range users {
				member := &domain.RotationMember{
					RotationID: rotation.ID,
					UserID:     user.ID,
					SortOrder:  int32(order),
				}
				if err := repo.AddRotationMember(member); err != nil {
					slog.Error("failed to insert member", slog.String("error", err.Error()))
				}
			}

			cnt--
		}

		slog.Info("rotations inserted", slog.Int("count", n-cnt))
	case 3:
		if rotationID == "" {
			slog.Error("rotation-id is required")
			return
		}
		if n <= 0 {
			slog.Error("number of weeks must be positive")
			return
		}

		rotation, err := repo.GetRotationByID(rotationID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("rotation does not exist", slog.String("rotation_id", rotationID))
			default:
				slog.Error("failed to load rotation", slog.String("error", err.Error()))
			}
			return
		}

		templates, err := repo.GetPeriodTemplatesByRotationID(rotation.ID)
		if err != nil {
			slog.Error("failed to load templates", slog.String("error", err.Error()))
			return
		}

		winStart, winEnd := utils.GenerateRandomWeekWindow(n)

		proposed, err := schedule.ExpandTemplates(context.Background(), rotation, templates, winStart, winEnd, "")
		if err != nil {
			slog.Error("failed to expand templates", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for _, pp := range proposed {
			period := &domain.Period{
				RotationID: pp.RotationID,
				Name:       pp.Name,
				StartUTC:   pp.StartUTC,
				EndUTC:     pp.EndUTC,
			}
			if err := repo.CreatePeriod(period); err != nil {
				slog.Error("failed to insert period", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("periods inserted", slog.Int("count", cnt))
	default:
		slog.Error("invalid operation")
	}
}
