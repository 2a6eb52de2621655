package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotlake/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	if _, err := r.Database(ctx); err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
}

// SetupConfig writes the example configuration to --output, or to --config when no output is given.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if path == "" {
		path = cmd.String("config")
	}
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set CLIENT_ID and CLIENT_SECRET, or fill in [credentials.spotify]\n")
	r.writePlain("2. Run 'spotlake setup database' to create the run database\n")
	return nil
}
