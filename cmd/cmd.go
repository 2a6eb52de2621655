// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotlake",
		Usage:   "Land Spotify playlist snapshots and transform them into Parquet datasets",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}

// extractCommand runs the raw extractor once
func extractCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Fetch the playlist once and store the raw response in the landing area",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Playlist ID, URI or link (overrides extract.playlist_id)",
			},
			&cli.BoolFlag{
				Name:  "no-notify",
				Usage: "Skip the object-created notification even when NATS is configured",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Extract,
	}
}

// transformCommand runs the transform job synchronously
func transformCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "transform",
		Usage: "Transform everything in the landing area into dataset parts and archive it",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run record as JSON",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress progress output",
			},
		},
		Action: r.Transform,
	}
}

// relayCommand serves the trigger relay
func relayCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "relay",
		Usage: "Start transform runs on object-created notifications (HTTP webhook and NATS)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides server.host and server.port)",
			},
		},
		Action: r.Relay,
	}
}

// runsCommand inspects recorded job runs
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Inspect recorded job runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List job runs, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to return",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (running, succeeded, failed)",
					},
					&cli.StringFlag{
						Name:  "job",
						Usage: "Filter by job name",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output CSV",
					},
				},
				Action: r.RunsList,
			},
			{
				Name:  "show",
				Usage: "Show a single job run",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RunsShow,
			},
		},
	}
}

// auditCommand reports on the stored datasets
func auditCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "Count files, rows and duplicate keys in each dataset",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Audit,
	}
}

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write the example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (defaults to --config)",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}
