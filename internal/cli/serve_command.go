package cli

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"

	"focus-tracker/internal/api"
	"focus-tracker/internal/config"
	"focus-tracker/internal/errors"
	"focus-tracker/internal/logging"
	"focus-tracker/internal/probe"
	"focus-tracker/internal/server"
	"focus-tracker/internal/tracker"
)

// ServeCommand runs the tracking daemon until its context is cancelled
type ServeCommand struct {
	config *config.Config
	probe  probe.Probe
	listen func(network, address string) (net.Listener, error)
}

// NewServeCommand creates the daemon command for cfg
func NewServeCommand(cfg *config.Config) *ServeCommand {
	return &ServeCommand{config: cfg, listen: net.Listen}
}

// WithProbe replaces the desktop probe chain
func (c *ServeCommand) WithProbe(p probe.Probe) *ServeCommand {
	c.probe = p
	return c
}

// WithListener serves on ln instead of the configured address
func (c *ServeCommand) WithListener(ln net.Listener) *ServeCommand {
	c.listen = func(string, string) (net.Listener, error) { return ln, nil }
	return c
}

// Execute opens the store, recovers any session left open by a crash, then
// runs the sampling loop and the HTTP server side by side. Cancelling ctx
// drains both; the open session is closed at the last sample.
func (c *ServeCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "serve", "usage: ft serve")
	}
	cfg := c.config

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("failed to load time zone: %w", err)
	}

	repo, err := config.CreateRepository(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	p := c.probe
	backends := []string{}
	if p == nil {
		chain := probe.NewChain(cfg.Tracker.Backends, probe.ExecRunner{}, cfg.Tracker.ProbeTimeout, logging.Logger)
		p, backends = chain, chain.Names()
	}

	coord := tracker.NewCoordinator(repo, p, tracker.Options{
		IdleTimeout:        cfg.Tracker.IdleTimeout,
		CheckpointInterval: cfg.Tracker.CheckpointInterval,
		TrackWindowTitles:  cfg.Tracker.TrackWindowTitles,
	})
	if err := coord.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover open session: %w", err)
	}

	a := api.New(repo, coord, api.Options{Location: loc, ProbeBackends: backends})
	srv := server.New(a, server.Options{Host: cfg.Server.Host, Port: cfg.Server.Port, Location: loc})

	ln, err := c.listen("tcp", srv.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr(), err)
	}

	logging.Logger.Info("focus tracker started",
		"db", cfg.GetDatabasePath(),
		"addr", ln.Addr().String(),
		"backends", backends,
		"timezone", loc.String(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return coord.Run(gctx, cfg.Tracker.PollInterval, cfg.Server.ShutdownTimeout)
	})
	g.Go(func() error {
		return srv.Serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logging.Logger.Info("focus tracker stopped", "error", err)
	return err
}
