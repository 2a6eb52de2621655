package main

import (
	"context"
	"errors"
	"time"

	"github.com/desertthunder/spotlake/internal/relay"
	"github.com/desertthunder/spotlake/internal/server"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const drainTimeout = 30 * time.Second

// Relay serves the webhook endpoint and, when configured, the NATS subscriber until interrupted.
//
// In-flight runs are cancelled on shutdown and recorded as failed.
func (r *Runner) Relay(ctx context.Context, cmd *cli.Command) error {
	manager, runs, err := r.Manager(ctx, nil)
	if err != nil {
		return err
	}

	rl := relay.NewRelay(manager, r.config.Jobs.TransformName, r.logger.With("component", "relay"))

	addr := r.config.Server.Addr()
	if cmd.IsSet("addr") {
		addr = cmd.String("addr")
	}
	srv := server.NewServer(addr, server.NewRelayRouter(rl, runs, r.logger.With("component", "http")), r.logger)

	var listener *relay.Listener
	if r.config.Events.NATSURL != "" {
		logger := r.logger.With("component", "nats")
		sub, err := relay.NewNATSSubscriber(r.config.Events, relay.NewLoggerAdapter(logger))
		if err != nil {
			return err
		}
		defer sub.Close()
		listener = relay.NewListener(sub, r.config.Events.Topic, "nats", rl, logger)
	} else {
		r.logger.Info("events.nats_url not set, serving webhook only")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx) })
	if listener != nil {
		g.Go(func() error {
			if err := listener.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	err = g.Wait()

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	if serr := manager.Shutdown(drainCtx); serr != nil {
		r.logger.Warn("job runs did not drain", "error", serr)
	}
	return err
}
