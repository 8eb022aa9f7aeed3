package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"restaurant-dashboard/internal/api"
	"restaurant-dashboard/internal/backend"
	"restaurant-dashboard/internal/common/httpx"
	"restaurant-dashboard/internal/common/logger"
	"restaurant-dashboard/internal/common/mq"
	"restaurant-dashboard/internal/config"
	"restaurant-dashboard/internal/dashboard"
)

func main() {
	cfgPath := flag.String("config", "config.yml", "path to YAML config")
	port := flag.Int("port", 0, "http port (overrides config)")
	flag.Parse()

	// decimals as plain JSON numbers
	// https://github.com/shopspring/decimal/issues/21
	decimal.MarshalJSONWithoutQuotes = true

	lg := logger.New("dashboard")
	defer lg.Sync()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		lg.Error("config_load_failed", err, map[string]any{"path": *cfgPath})
		os.Exit(1)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rmq, err := mq.Dial(mq.Config{
		Host:     cfg.Rabbit.Host,
		Port:     cfg.Rabbit.Port,
		User:     cfg.Rabbit.User,
		Password: cfg.Rabbit.Password,
		VHost:    cfg.Rabbit.VHost,
	})
	if err != nil {
		lg.Error("rabbitmq_connect_failed", err, nil)
		os.Exit(1)
	}
	defer rmq.Close()
	if err := rmq.Ping(); err != nil {
		lg.Error("rabbitmq_ping_failed", err, nil)
		os.Exit(1)
	}
	lg.Info("rabbitmq_connected", map[string]any{"host": cfg.Rabbit.Host, "port": cfg.Rabbit.Port})

	platform := backend.New(
		cfg.Backend.BaseURL,
		time.Duration(cfg.Backend.TimeoutSeconds)*time.Second,
		time.Duration(cfg.Cache.TablesTTLSeconds)*time.Second,
		logger.New("backend-client"),
	)

	dash := dashboard.New(platform, lg)
	dash.LoadTables(ctx)
	if err := dash.Load(ctx, "", 1); err != nil {
		// the page renders its own error state; keep serving
		lg.Error("initial_load_failed", err, nil)
	}

	ing := dashboard.NewIngestor(rmq, dash, logger.New("ingestor"))
	go func() {
		if err := ing.Run(ctx); err != nil {
			lg.Error("ingestor_stopped", err, nil)
			cancel()
		}
	}()

	srv := api.NewServer(dash, lg)
	lg.Info("service_started", map[string]any{"port": cfg.HTTP.Port})
	if err := httpx.New(":"+strconv.Itoa(cfg.HTTP.Port), srv.Engine()).Run(ctx); err != nil {
		lg.Error("http_server_failed", err, nil)
		os.Exit(1)
	}
	lg.Info("service_stopped", nil)
}
