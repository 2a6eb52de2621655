package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlake/internal/jobs"
	"github.com/desertthunder/spotlake/internal/repositories"
	"github.com/desertthunder/spotlake/internal/services"
	"github.com/desertthunder/spotlake/internal/shared"
	"github.com/desertthunder/spotlake/internal/storage"
	"github.com/desertthunder/spotlake/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The store and database are opened on first use and shared by every command in the process.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
	source services.PlaylistSource
	store  storage.Store
	db     *sql.DB
	getenv func(string) string
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Source, Store and DB are optional; when nil they are built from the config on first use.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
	Source services.PlaylistSource
	Store  storage.Store
	DB     *sql.DB
	Getenv func(string) string
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
		source: opts.Source,
		store:  opts.Store,
		db:     opts.DB,
		getenv: opts.Getenv,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, extractCommand, transformCommand, relayCommand, runsCommand, auditCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config file named by --config when it exists, applies environment overrides and the log level.
//
// A missing config file keeps the current config, which defaults to the embedded example.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.logger.Debug("config loaded", "path", path)
	} else if cmd.IsSet("config") {
		r.logger.Warn("config file not found, using defaults", "path", path)
	}

	r.config.ApplyEnv(r.getenv)

	level := r.config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	if err := shared.SetLogLevel(r.logger, level); err != nil {
		return ctx, err
	}

	return ctx, nil
}

// Store opens the configured object store on first use.
func (r *Runner) Store(ctx context.Context) (storage.Store, error) {
	if r.store != nil {
		return r.store, nil
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, r.config.Storage)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("store opened", "driver", r.config.Storage.Driver, "bucket", store.Bucket())
	r.store = store
	return store, nil
}

// Database opens the run database and applies pending migrations on first use.
func (r *Runner) Database(ctx context.Context) (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	r.db = db
	return db, nil
}

// Source builds the Spotify client from the configured credentials on first use.
func (r *Runner) Source() (services.PlaylistSource, error) {
	if r.source != nil {
		return r.source, nil
	}

	svc, err := services.NewSpotifyService(r.config.Credentials.Spotify.Map(), r.config.Extract.RequestsPerSecond)
	if err != nil {
		return nil, err
	}
	r.source = svc
	return svc, nil
}

// Layout returns the configured bucket prefixes.
func (r *Runner) Layout() storage.Layout {
	return storage.NewLayout(r.config.Storage)
}

// Manager builds a job manager with the transform job registered under its configured name.
//
// progress may be nil.
func (r *Runner) Manager(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*jobs.Manager, *repositories.JobRunRepository, error) {
	store, err := r.Store(ctx)
	if err != nil {
		return nil, nil, err
	}
	db, err := r.Database(ctx)
	if err != nil {
		return nil, nil, err
	}

	runs := repositories.NewJobRunRepository(db)
	engine := tasks.NewTransformEngine(
		store,
		r.Layout(),
		repositories.NewLeaseRepository(db),
		r.config.Jobs.LeaseTTL,
		shared.WithLogger(r.logger, "job", r.config.Jobs.TransformName),
	)

	manager := jobs.NewManager(runs, r.logger)
	manager.Register(r.config.Jobs.TransformName, engine.Job(progress))
	return manager, runs, nil
}

// Close releases the database handle, if one was opened.
func (r *Runner) Close() {
	if r.db == nil {
		return
	}
	if err := r.db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		r.logger.Warn("failed to close database", "error", err)
	}
	r.db = nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
