package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jnspo1/chatgpt-stats/internal"
	"github.com/jnspo1/chatgpt-stats/internal/analytics"
	"github.com/jnspo1/chatgpt-stats/internal/server"
)

var (
	serveListen   string
	serveTemplate string
	serveTTL      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive dashboard",
	Long: `Serve the dashboard page and its data API.

Routes:
  GET /              dashboard page with the payload embedded
  GET /api/data      payload JSON (ETag aware)
  GET /api/refresh   rebuild the payload now (rate limited)
  GET /health        liveness check

The payload is rebuilt at most once per cache TTL and stops cleanly on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("listen") {
			cfg.Listen = serveListen
		}
		if flags.Changed("template") {
			cfg.Template = serveTemplate
		}
		if flags.Changed("ttl") {
			if err := cfg.CacheTTL.Set(serveTTL); err != nil {
				return err
			}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		opts, err := analyticsOptions()
		if err != nil {
			return err
		}
		srv := server.New(cfg, func(ctx context.Context) (*analytics.Payload, error) {
			return analytics.BuildFromFile(cfg.Conversations, opts)
		})
		srv.Snapshots().UseStore(internal.NewCacheManager(cfg.CacheDir), payloadCacheKey(opts), cfg.Conversations)
		if !srv.Snapshots().Warm() {
			internal.LogDebug("no cached snapshot for %s, building on first request", cfg.Conversations)
		}

		internal.PrintInfo(fmt.Sprintf("Dashboard available at http://%s", cfg.Listen))
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "127.0.0.1:8203", "Address to listen on")
	serveCmd.Flags().StringVar(&serveTemplate, "template", "web/dashboard_template.html", "Dashboard HTML template")
	serveCmd.Flags().StringVar(&serveTTL, "ttl", "1h", "How long a built payload is reused")
}
