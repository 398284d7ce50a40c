package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oncallhq/oncall-manager/backend/internal/config"
	"github.com/oncallhq/oncall-manager/backend/internal/dispatch"
	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		return
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

	pingCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)
	deliverer := dispatch.NewDeliverer(time.Duration(cfg.Dispatch.DeliverTimeout) * time.Second)

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open rabbitmq channel", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		"incident_events",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("failed to declare queue", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("failed to consume messages", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("event received", slog.String("message", string(msg.Body)))

				event := domain.IncidentEvent{}
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					logger.Error("failed to decode incident event", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				endpoints, err := repo.GetAllWebhookEndpoints(true)
				if err != nil {
					logger.Error("failed to load webhook endpoints", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // requeue, the database may recover
					continue
				}

				for _, endpoint := range endpoints {
					if !dispatch.Matches(endpoint, event.Type) {
						continue
					}

					deliverCtx, deliverCancel := context.WithTimeout(ctx, time.Duration(cfg.Dispatch.DeliverTimeout)*time.Second)
					err := deliverer.Deliver(deliverCtx, endpoint, &event)
					deliverCancel()

					// no retries, receivers own their retry policy
					if err != nil {
						logger.Error("failed to deliver event",
							slog.String("endpoint", endpoint.Name),
							slog.String("event", event.Type),
							slog.String("error", err.Error()),
						)
						continue
					}

					logger.Info("event delivered",
						slog.String("endpoint", endpoint.Name),
						slog.String("event", event.Type),
					)
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("waiting for events... (press CTRL+C to exit)")
	<-sigChan

	slog.Info("shutting down dispatch worker...")
	cancel()
	wg.Wait()
	slog.Info("dispatch worker stopped")
}
