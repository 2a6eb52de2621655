package main

import (
	"context"

	"github.com/desertthunder/spotlake/internal/formatter"
	"github.com/desertthunder/spotlake/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Transform runs the transform job on the calling goroutine and records the run.
func (r *Runner) Transform(ctx context.Context, cmd *cli.Command) error {
	var progressCh chan tasks.ProgressUpdate
	done := make(chan struct{})

	if cmd.Bool("quiet") || cmd.Bool("json") {
		close(done)
	} else {
		progressCh = make(chan tasks.ProgressUpdate, 50)
		go func() {
			defer close(done)
			for update := range progressCh {
				switch update.Phase {
				case tasks.ListObjects:
					r.writePlain("📥 %s\n", update.Message)
				case tasks.WriteDataset:
					r.writePlain("💾 %s\n", update.Message)
				case tasks.ArchiveObjects:
					r.writePlain("📦 %s\n", update.Message)
				case tasks.Complete:
					r.writePlain("✓ %s\n", update.Message)
				default:
					r.writePlain("   %s\n", update.Message)
				}
			}
		}()
	}

	manager, _, err := r.Manager(ctx, progressCh)
	if err != nil {
		if progressCh != nil {
			close(progressCh)
		}
		<-done
		return err
	}

	run, err := manager.Run(ctx, r.config.Jobs.TransformName)
	if progressCh != nil {
		close(progressCh)
	}
	<-done

	if run == nil {
		return err
	}

	if cmd.Bool("json") {
		if werr := r.writeJSON(run, true); werr != nil {
			return werr
		}
		return err
	}

	r.writePlainln("%s", formatter.RunDetail(run))
	return err
}
