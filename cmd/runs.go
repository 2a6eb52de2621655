package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotlake/internal/formatter"
	"github.com/desertthunder/spotlake/internal/models"
	"github.com/desertthunder/spotlake/internal/repositories"
	"github.com/desertthunder/spotlake/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) runRepository(ctx context.Context) (*repositories.JobRunRepository, error) {
	db, err := r.Database(ctx)
	if err != nil {
		return nil, err
	}
	return repositories.NewJobRunRepository(db), nil
}

// RunsList prints recorded job runs, newest first.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("json") && cmd.Bool("csv") {
		return fmt.Errorf("%w: cannot specify both --json and --csv", shared.ErrInvalidArgument)
	}

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if status := cmd.String("status"); status != "" {
		if !models.RunStatus(status).Valid() {
			return fmt.Errorf("%w: status %q", shared.ErrInvalidArgument, status)
		}
		criteria["status"] = models.RunStatus(status)
	}
	if job := cmd.String("job"); job != "" {
		criteria["job_name"] = job
	}

	repo, err := r.runRepository(ctx)
	if err != nil {
		return err
	}
	runs, err := repo.List(ctx, criteria)
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(runs, true)
	case cmd.Bool("csv"):
		data, err := formatter.RunsToCSV(runs)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	if len(runs) == 0 {
		return r.writePlain("No job runs recorded\n")
	}
	return r.writePlain("%s\n", formatter.RunsTable(runs))
}

// RunsShow prints a single job run.
func (r *Runner) RunsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	repo, err := r.runRepository(ctx)
	if err != nil {
		return err
	}
	run, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(run, true)
	}
	return r.writePlain("%s", formatter.RunDetail(run))
}
