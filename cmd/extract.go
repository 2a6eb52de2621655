package main

import (
	"context"

	"github.com/desertthunder/spotlake/internal/extract"
	"github.com/desertthunder/spotlake/internal/relay"
	"github.com/desertthunder/spotlake/internal/services"
	"github.com/urfave/cli/v3"
)

// Extract fetches the configured playlist once and stores the raw body in the landing area.
//
// When events.nats_url is set, an object-created notification is published for the new key.
func (r *Runner) Extract(ctx context.Context, cmd *cli.Command) error {
	playlistID := r.config.Extract.PlaylistID
	if link := cmd.String("playlist"); link != "" {
		id, err := services.ParsePlaylistID(link)
		if err != nil {
			return err
		}
		playlistID = id
	}

	source, err := r.Source()
	if err != nil {
		return err
	}
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	var notifier extract.Notifier
	if r.config.Events.NATSURL != "" && !cmd.Bool("no-notify") {
		pub, err := relay.NewNATSPublisher(r.config.Events, relay.NewLoggerAdapter(r.logger))
		if err != nil {
			return err
		}
		publisher := relay.NewPublisher(pub, r.config.Events.Topic, store.Bucket())
		defer publisher.Close()
		notifier = publisher
	}

	extractor := extract.NewExtractor(source, store, r.Layout(), playlistID, notifier, r.logger)
	key, err := extractor.Run(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]string{
			"bucket":      store.Bucket(),
			"key":         key,
			"playlist_id": playlistID,
		}, true)
	}
	return r.writePlain("✓ Stored %s/%s\n", store.Bucket(), key)
}
