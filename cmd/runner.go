package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kestrelworks/trackset/internal/auth"
	"github.com/kestrelworks/trackset/internal/repositories"
	"github.com/kestrelworks/trackset/internal/services"
	"github.com/kestrelworks/trackset/internal/shared"
	"github.com/kestrelworks/trackset/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	manager    *auth.Manager
	catalog    services.Catalog
	cache      tasks.ResolutionCache
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Manager    *auth.Manager
	Catalog    services.Catalog
	Cache      tasks.ResolutionCache
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		manager:    opts.Manager,
		catalog:    opts.Catalog,
		cache:      opts.Cache,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, resolveCommand, playlistCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// openCatalog returns the catalog client matching the active session backend.
func (r *Runner) openCatalog() (services.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}
	if r.manager == nil {
		return nil, fmt.Errorf("%w: session manager not initialized", shared.ErrServiceUnavailable)
	}

	switch r.manager.ActiveBackend() {
	case auth.BackendOAuth:
		return services.NewDataAPIClient(r.manager, services.WithDataAPIHTTPClient(r.httpClient)), nil
	case auth.BackendBrowser:
		return services.NewMusicWebClient(r.manager, services.WithMusicWebHTTPClient(r.httpClient)), nil
	default:
		return nil, fmt.Errorf("%w: run 'trackset auth login' or 'trackset setup browser' first", shared.ErrNotAuthenticated)
	}
}

// openCache opens the sqlite-backed resolution cache. The caller owns the
// returned database handle and must close it.
func (r *Runner) openCache() (tasks.ResolutionCache, *sql.DB, error) {
	if r.cache != nil {
		return r.cache, nil, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	repo := repositories.NewResolutionRepository(db)
	return repositories.NewResolutionCacheAdapter(repo), db, nil
}

// resolverPolicy maps the config's resolver section onto a [tasks.Policy].
func (r *Runner) resolverPolicy() tasks.Policy {
	return tasks.Policy{
		CandidatesPerQuery: r.config.Resolver.CandidatesPerQuery,
		NumWorkers:         r.config.Resolver.NumWorkers,
		RateLimit:          r.config.Resolver.RateLimit,
	}
}

// operationContext applies the configured resolver timeout to ctx. The
// returned cancel func is a no-op when no timeout is configured.
func (r *Runner) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.config.Resolver.TimeoutSeconds > 0 {
		return context.WithTimeout(ctx, time.Duration(r.config.Resolver.TimeoutSeconds)*time.Second)
	}
	return ctx, func() {}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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
