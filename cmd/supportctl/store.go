package main

import (
	"context"
	"fmt"
	"time"

	"support-desk/internal/config"
	"support-desk/internal/database"
	"support-desk/internal/env"
	adminsvc "support-desk/internal/service/admin"
	agentsvc "support-desk/internal/service/agent"
)

// stores bundles the services the account commands need.
type stores struct {
	Admins *adminsvc.Service
	Agents *agentsvc.Service
	Close  func()
}

func loadConfig(path string) (*config.Config, error) {
	if err := env.Load(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*database.Database, func(), error) {
	db, err := database.NewDatabase(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Close(ctx)
	}
	return db, closeFn, nil
}

// openStores is swapped out by tests.
var openStores = func(ctx context.Context, configPath string) (*stores, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	db, closeFn, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &stores{
		Admins: adminsvc.New(db),
		Agents: agentsvc.New(db),
		Close:  closeFn,
	}, nil
}
