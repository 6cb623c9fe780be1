// README: API entry point; wires stores, fulfillment, and the HTTP server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catering/internal/config"
	httptransport "catering/internal/http"
	"catering/internal/infra"
	"catering/internal/modules/fulfillment"
	"catering/internal/modules/menu"
	"catering/internal/modules/order"
	"catering/internal/modules/providers"
	"catering/internal/modules/tracking"
	"catering/internal/queue"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "catering-api")

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
	menuStore := menu.NewStore(dbPool)
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

	orderSvc := order.NewService(orderStore, menuStore, fulfillmentSvc)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Orders:    orderSvc,
		Menu:      menuStore,
		Webhooks:  fulfillmentSvc,
		UberToken: cfg.Providers.UberWebhookToken,
		Log:       log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info("api listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("serve", "err", err)
		os.Exit(1)
	}
}
