package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"vdv736/domain"
	"vdv736/service"
	"vdv736/siri"
)

// loadSituations reads every *.xml file of dir as one PtSituationElement, in file name order.
func loadSituations(dir string) ([]domain.Situation, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return nil, err
	}
	slices.Sort(files)

	situations := make([]domain.Situation, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		s, err := siri.NewSituation(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(f), err)
		}
		situations = append(situations, s)
	}
	return situations, nil
}

// publishDirectory publishes every situation file of dir once.
func publishDirectory(ctx context.Context, publisher *service.Publisher, dir string, logger log.Logger) {
	if dir == "" {
		return
	}
	situations, err := loadSituations(dir)
	if err != nil {
		level.Error(logger).Log("msg", "Failed to load situations", "dir", dir, "err", err)
		return
	}
	for _, s := range situations {
		results, err := publisher.PublishSituation(ctx, s)
		if err != nil {
			level.Error(logger).Log("msg", "Failed to publish situation", "situation", s.ID, "err", err)
			continue
		}
		for _, r := range results {
			if r.Err != nil {
				level.Warn(logger).Log("msg", "Situation not delivered", "situation", s.ID, "subscription", r.SubscriptionID, "subscriber", r.SubscriberRef, "err", r.Err)
			}
		}
	}
}

// runSubscriber subscribes to or pulls from every configured publisher, then checks the
// subscriptions every StatusInterval until ctx is done.
func runSubscriber(ctx context.Context, subscriber *service.Subscriber, config *Config, logger log.Logger) {
	for _, ref := range config.PublisherRefs {
		switch config.SubscriberMode {
		case ModeRequest:
			if err := subscriber.Request(ctx, ref); err != nil {
				level.Error(logger).Log("msg", "Request failed", "publisher", ref, "err", err)
			}
		default:
			if _, err := subscriber.Subscribe(ctx, ref); err != nil {
				level.Error(logger).Log("msg", "Subscribe failed", "publisher", ref, "err", err)
			}
		}
	}

	ticker := time.NewTicker(config.StatusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := subscriber.StatusAll(ctx); err != nil {
				level.Warn(logger).Log("msg", "Status check failed", "err", err)
			}
		}
	}
}
