package main

import (
	"context"

	"github.com/desertthunder/spotlake/internal/formatter"
	"github.com/desertthunder/spotlake/internal/warehouse"
	"github.com/urfave/cli/v3"
)

// Audit reports files, rows and duplicate keys per dataset.
func (r *Runner) Audit(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	reports, err := warehouse.NewAuditor(store, r.Layout(), r.logger).Audit(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(reports, true)
	}

	r.writePlainHeader("Dataset audit: " + store.Bucket() + "/" + r.config.Storage.OutputPrefix)
	return r.writePlain("%s\n", formatter.AuditTable(reports))
}
