package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/plotkit/dotwhisker/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		redisURL   string
		cacheScope string
		cacheTTL   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the rendering HTTP server",
		Long: `Serve exposes the chart pipeline over HTTP. Clients POST a tidy
coefficient table to /v1/charts/{plot,secret_weapon,small_multiple}
and receive the rendered SVG or chart JSON. With --redis, artifacts
are cached by content hash so repeated requests skip the pipeline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			srv, err := server.New(ctx, server.Config{
				Addr:       addr,
				RedisURL:   redisURL,
				CacheScope: cacheScope,
				CacheTTL:   cacheTTL,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "redis URL for the shared artifact cache")
	cmd.Flags().StringVar(&cacheScope, "cache-scope", "", "prefix isolating cache keys per deployment")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 0, "artifact cache lifetime (default 168h)")

	return cmd
}
