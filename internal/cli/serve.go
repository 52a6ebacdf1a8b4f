package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fsdcheck/pkg/cache"
	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/pipeline"
	"github.com/matzehuels/fsdcheck/pkg/server"
	"github.com/matzehuels/fsdcheck/pkg/store"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	policy   policyFlags
	addr     string
	redisURL string
	mongoURI string
	mongoDB  string
	scope    string
	timeout  time.Duration
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

POST /v1/check evaluates a graph document and optionally renders it,
GET /v1/reports lists stored reports and GET /v1/reports/{id} fetches one.

Reports and artifacts are cached in Redis when --redis is set and in the
local cache directory otherwise. Reports are stored in MongoDB when
--mongo-uri is set and kept in memory otherwise.`,
		Example: `  fsdcheck serve --addr :8080 --redis redis://localhost:6379/0 --mongo-uri mongodb://localhost:27017`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, opts)
		},
	}

	opts.policy.register(cmd)
	fl := cmd.Flags()
	fl.StringVar(&opts.addr, "addr", server.DefaultAddr, "listen address")
	fl.StringVar(&opts.redisURL, "redis", "", "Redis URL for the shared cache")
	fl.StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB URI for report storage")
	fl.StringVar(&opts.mongoDB, "mongo-db", store.DefaultDatabase, "MongoDB database name")
	fl.StringVar(&opts.scope, "cache-scope", "", "namespace for cache keys when several deployments share a cache")
	fl.DurationVar(&opts.timeout, "timeout", server.DefaultRequestTimeout, "per-request timeout")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts serveOpts) error {
	ctx := commandContext(cmd)

	cfg, err := c.loadPolicy(cmd, &opts.policy)
	if err != nil {
		return err
	}

	cc, err := c.serverCache(ctx, opts)
	if err != nil {
		return err
	}
	var keyer cache.Keyer
	if opts.scope != "" {
		keyer = cache.NewScopedKeyer(nil, opts.scope+":")
	}
	runner := pipeline.NewRunner(cc, keyer, c.Logger)
	defer runner.Close()

	st, err := c.serverStore(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(shutdownCtx); err != nil {
			c.Logger.Warn("close report store", "error", err)
		}
	}()

	srv := server.New(server.Options{
		Runner:         runner,
		Store:          st,
		Config:         cfg,
		Logger:         c.Logger,
		RequestTimeout: opts.timeout,
	})
	return srv.ListenAndServe(ctx, opts.addr)
}

func (c *CLI) serverCache(ctx context.Context, opts serveOpts) (cache.Cache, error) {
	if opts.policy.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisURL == "" {
		return newCache(false)
	}
	rc, err := cache.NewRedisCache(opts.redisURL, appName+":")
	if err != nil {
		return nil, err
	}
	if err := rc.Ping(ctx); err != nil {
		rc.Close()
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "connect to redis")
	}
	c.Logger.Info("using redis cache")
	return rc, nil
}

func (c *CLI) serverStore(ctx context.Context, opts serveOpts) (store.Store, error) {
	if opts.mongoURI == "" {
		c.Logger.Info("using in-memory report store")
		return store.NewMemoryStore(), nil
	}
	ms, err := store.NewMongoStore(ctx, opts.mongoURI, opts.mongoDB)
	if err != nil {
		return nil, err
	}
	c.Logger.Info("using mongodb report store", "database", opts.mongoDB)
	return ms, nil
}
