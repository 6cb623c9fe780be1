// README: Worker entry point; consumes fulfillment tasks and runs the reaper cron.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"catering/internal/config"
	"catering/internal/infra"
	"catering/internal/modules/fulfillment"
	"catering/internal/modules/order"
	"catering/internal/modules/providers"
	"catering/internal/modules/tracking"
	"catering/internal/queue"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "catering-worker")

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Error("connect postgres", "err", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	queueClient, err := queue.Dial(cfg.Rabbit.URL)
	if err != nil {
		log.Error("connect rabbitmq", "err", err)
		os.Exit(1)
	}
	defer queueClient.Close()
	if err := queueClient.DeclareTopology(); err != nil {
		log.Error("declare queue topology", "err", err)
		os.Exit(1)
	}

	orderStore := order.NewStore(dbPool)
	trackingStore := tracking.NewStore(redisClient)

	fulfillmentSvc := fulfillment.NewService(
		orderStore,
		trackingStore,
		queueClient,
		map[order.CookingProvider]fulfillment.CookingAdapter{
			order.ProviderSilpo: providers.NewSilpo(cfg.Providers.SilpoBaseURL),
			order.ProviderKFC:   providers.NewKFC(cfg.Providers.KFCBaseURL),
		},
		map[order.DeliveryProvider]fulfillment.DeliveryAdapter{
			order.ProviderUklon: providers.NewUklon(cfg.Providers.UklonBaseURL),
			order.ProviderUber:  providers.NewUber(cfg.Providers.UberBaseURL),
		},
		fulfillment.Config(cfg.Fulfillment),
		log,
	)

	reaper := cron.New()
	_, err = reaper.AddFunc("@every 10m", func() {
		if err := fulfillmentSvc.PurgeDelivered(ctx); err != nil {
			log.Error("reaper run", "err", err)
		}
	})
	if err != nil {
		log.Error("schedule reaper", "err", err)
		os.Exit(1)
	}
	reaper.Start()
	defer reaper.Stop()

	consumer := queue.NewConsumer(queueClient, fulfillmentSvc, log)
	log.Info("worker consuming", "queues", []string{queue.QueueHigh, queue.QueueDefault})
	if err := consumer.Run(ctx); err != nil {
		log.Error("consume", "err", err)
		os.Exit(1)
	}
}
