package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"vdv736/adapters/participants"
	"vdv736/adapters/siriclient"
	"vdv736/app"
	"vdv736/service"
)

func main() {
	// Initialize logger
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.WithPrefix(logger, "ts", log.DefaultTimestampUTC)
	logger = log.WithPrefix(logger, "caller", log.DefaultCaller)

	level.Info(logger).Log("msg", "Starting vdv736 node")

	// Load configuration
	config, err := LoadConfig()
	if err != nil {
		level.Error(logger).Log("msg", "Failed to load configuration", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log(
		"msg", "Configuration loaded",
		"role", config.Role,
		"ref", config.Ref,
		"storage", config.Storage,
		"participants", config.Participants,
	)

	directory, err := participants.Load(config.Participants)
	if err != nil {
		level.Error(logger).Log("msg", "Failed to load participant directory", "err", err)
		os.Exit(1)
	}
	self, err := directory.Lookup(config.Ref)
	if err != nil {
		level.Error(logger).Log("msg", "Own reference missing from participant directory", "ref", config.Ref, "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var stores *app.Stores
	{
		switch config.Storage {
		case StorageRedis:
			stores, err = app.OpenRedis(ctx, config.RedisURL, config.Ref)
		default:
			stores, err = app.OpenSQLite(config.SQLitePath)
		}
		if err != nil {
			level.Error(logger).Log("msg", "Failed to open storage", "storage", config.Storage, "err", err)
			os.Exit(1)
		}
		level.Info(logger).Log("msg", "Storage opened", "storage", config.Storage)
	}

	endpoint := app.NewEndpoint(config.listenAddr(self), config.ShutdownGrace, logger)
	transport := siriclient.HTTP(&http.Client{}, config.HTTPTimeout)
	clock := service.NewTimeProvider(time.Now)

	var n node
	switch config.Role {
	case RolePublisher:
		publisher := service.NewPublisher(config.Ref, stores.Subscriptions, stores.Situations, directory, transport, clock, logger)
		pn := app.NewPublisherNode(publisher, self, endpoint, stores, logger)
		n = pn
		err = startAndRun(n, func() { publishDirectory(ctx, pn.Publisher(), config.SituationsDir, logger) })
	case RoleSubscriber:
		subscriber := service.NewSubscriber(config.Ref, stores.Subscriptions, stores.Situations, directory, transport, clock, logger)
		sn := app.NewSubscriberNode(subscriber, self, endpoint, stores, logger)
		n = sn
		err = startAndRun(n, func() { runSubscriber(ctx, sn.Subscriber(), config, logger) })
	}
	if err != nil {
		level.Error(logger).Log("msg", "Failed to start endpoint", "err", err)
		_ = n.Close()
		os.Exit(1)
	}

	// Wait for interrupt signal or a failed endpoint
	select {
	case <-ctx.Done():
	case <-n.Done():
		level.Error(logger).Log("msg", "Endpoint stopped unexpectedly")
	}
	level.Info(logger).Log("msg", "Shutting down node...")

	if err := n.Close(); err != nil {
		level.Error(logger).Log("msg", "Error during shutdown", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "Node stopped")
}

type node interface {
	Start() error
	Done() <-chan struct{}
	Close() error
}

// startAndRun starts n and launches the role flow in the background.
func startAndRun(n node, flow func()) error {
	if err := n.Start(); err != nil {
		return err
	}
	go flow()
	return nil
}
