package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/internal/server"
	"github.com/matzehuels/masonry/pkg/config"
	"github.com/matzehuels/masonry/pkg/observability"
	"github.com/matzehuels/masonry/pkg/observability/prom"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		origins []string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

The API computes layouts and renders artifacts (POST /v1/layout,
POST /v1/render/{format}) and hosts galleries that follow resizes
(/v1/galleries). Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("cors-origin") {
				cfg.CORSOrigins = origins
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			prom.New(reg).Install()
			defer observability.Reset()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := server.New(runner,
				server.WithConfig(cfg),
				server.WithLogger(logger),
				server.WithGatherer(reg),
				server.WithBaseContext(ctx),
				server.WithGalleryDefaults(c.Config.Gallery),
			)
			printInfo("Serving on %s", StyleHighlight.Render(cfg.Addr))
			printDetail("cache: %s", c.cacheDescription(noCache))
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "allowed CORS origins (repeatable)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// cacheDescription describes the cache backend for status output.
func (c *CLI) cacheDescription(noCache bool) string {
	cc := c.Config.Cache
	switch {
	case noCache || cc.Backend == config.BackendNone:
		return "disabled"
	case cc.Backend == config.BackendRedis:
		return "redis " + cc.RedisAddr
	case cc.Dir != "":
		return "file " + cc.Dir
	}
	if dir, err := cacheDir(); err == nil {
		return "file " + dir
	}
	return "disabled"
}
