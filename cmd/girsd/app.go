package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/girs-server/girsd/internal/audit"
	"github.com/girs-server/girsd/internal/config"
	"github.com/girs-server/girsd/internal/engine"
	"github.com/girs-server/girsd/internal/events"
	"github.com/girs-server/girsd/internal/hardware"
	"github.com/girs-server/girsd/internal/hardware/loopback"
	"github.com/girs-server/girsd/internal/irsignal"
	"github.com/girs-server/girsd/internal/logging"
	"github.com/girs-server/girsd/internal/module"
	"github.com/girs-server/girsd/internal/remote"
)

// app holds the collaborators shared by every session.
type app struct {
	cfg       *config.Config
	devices   *hardware.Set
	remotes   *remote.Database
	protocols *irsignal.Protocols
	audit     *audit.Logger
	events    *events.Hub

	// evalLock serializes evaluation across sessions sharing the devices.
	evalLock sync.Mutex
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	registry := hardware.NewRegistry()
	loopback.Register(registry)

	devices := hardware.NewSet()
	for _, dc := range cfg.Hardware.Devices {
		hw, err := registry.New(dc.Type, dc.Args)
		if err != nil {
			devices.Close()
			return nil, fmt.Errorf("hardware %s: %w", dc.Name, err)
		}
		devices.Add(dc.Name, hw)
	}
	if cfg.Hardware.Default != "" {
		if _, err := devices.Select(cfg.Hardware.Default); err != nil {
			devices.Close()
			return nil, fmt.Errorf("default hardware: %w", err)
		}
	}
	if err := devices.OpenAll(ctx); err != nil {
		devices.Close()
		return nil, err
	}

	db := remote.NewDatabase()
	for _, src := range cfg.Remotes {
		set, err := remote.Load(src.Type, src.Path)
		if err != nil {
			devices.Close()
			return nil, err
		}
		db.Add(set)
		log.Printf("Loaded %d remotes from %s", len(set.Remotes), src.Path)
	}

	a := &app{
		cfg:       cfg,
		devices:   devices,
		remotes:   db,
		protocols: irsignal.Default(),
	}
	if cfg.Network.HTTP.Enabled {
		a.events = events.NewHub(cfg.Network.HTTP.EventBuffer, time.Duration(cfg.Network.HTTP.HeartbeatSec)*time.Second)
	}
	if cfg.Audit.File != "" {
		a.audit = audit.Open(cfg.Audit.File, loggingOptions(cfg))
	}
	return a, nil
}

func loggingOptions(cfg *config.Config) logging.Options {
	return logging.Options{
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}
}

func (a *app) modules() []module.Module {
	return []module.Module{
		module.NewHardware(a.devices),
		module.NewTransmit(a.devices, a.protocols),
		module.NewCapture(a.devices),
		module.NewReceive(a.devices, a.protocols, a.remotes),
		module.NewRemotes(a.remotes, a.devices, a.protocols),
		module.NewRenderer(a.protocols),
	}
}

// newSession builds the engine for one session.
func (a *app) newSession(sessionID string) (*engine.Engine, error) {
	b := engine.NewBuilder(a.cfg.Server.Version).
		Use(a.modules()...).
		SetAll(a.cfg.Parameters)
	if a.audit != nil {
		b.Observe(a.audit.Observer(sessionID))
	}
	if a.events != nil {
		b.Observe(a.events.Observer(sessionID))
	}
	return b.Build()
}

func (a *app) Close() error {
	if a.events != nil {
		a.events.Close()
	}
	err := a.devices.Close()
	if a.audit != nil {
		if cerr := a.audit.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
