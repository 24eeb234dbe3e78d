package main

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"civiq/internal/adapter/repository"
	domainrepo "civiq/internal/domain/repository"
	"civiq/pkg/config"
	"civiq/pkg/logger"
)

type stores struct {
	Reports       domainrepo.ReportRepository
	Index         domainrepo.ReportIndex
	Notifications domainrepo.NotificationRepository
	Badges        domainrepo.BadgeRepository
	Profiles      domainrepo.ProfileRepository

	closers []func() error
}

func (s *stores) Close() {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			logger.Warn("Failed to close store: %v", err)
		}
	}
}

// openStores picks Firestore or a SQL database based on STORE_DRIVER.
func openStores(ctx context.Context, cfg *config.Config, opt option.ClientOption) (*stores, error) {
	switch cfg.StoreDriver {
	case "firestore":
		client, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
		if err != nil {
			return nil, fmt.Errorf("failed to create Firestore client: %w", err)
		}
		return &stores{
			Reports:       repository.NewFirestoreReportRepository(client),
			Index:         repository.NewFirestoreReportIndex(client),
			Notifications: repository.NewFirestoreNotificationRepository(client),
			Badges:        repository.NewFirestoreBadgeRepository(client),
			Profiles:      repository.NewFirestoreProfileRepository(client),
			closers:       []func() error{client.Close},
		}, nil

	case "postgres", "sqlite":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for %s", cfg.StoreDriver)
		}
		db, err := repository.OpenSQL(cfg.StoreDriver, cfg.DatabaseURL, !cfg.IsProduction())
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &stores{
			Reports:       repository.NewGormReportRepository(db),
			Index:         repository.NewGormReportIndex(db),
			Notifications: repository.NewGormNotificationRepository(db),
			Badges:        repository.NewGormBadgeRepository(db),
			Profiles:      repository.NewGormProfileRepository(db),
			closers:       []func() error{sqlDB.Close},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
