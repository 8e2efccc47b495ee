package cli

import (
	"context"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/floorcad/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compile and download API over HTTP",
		Long: `Serve the floorcad HTTP API.

  POST /api/drawings[?id=ID]            compile a floor-plan JSON body
  GET  /api/drawings/{id}               list stored formats
  GET  /api/drawings/{id}/download      download an artifact (?format=dxf)
  GET  /healthz                         liveness probe

Settings come from the [server], [storage] and [cache] sections of the
config file and FLOORCAD_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8000)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	store, err := openStore(ctx, cfg, "")
	if err != nil {
		return err
	}
	runner, err := c.newRunner(cfg, noCache, store)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer runner.Close()

	opts := cfg.PipelineOptions()
	if len(opts.Formats) == 0 {
		opts.Formats = slices.Clone(server.DefaultFormats)
	}
	if cfg.Server.StoreSVG && !slices.Contains(opts.Formats, "svg") {
		opts.Formats = append(opts.Formats, "svg")
	}
	srv, err := server.New(server.Config{
		Addr:           addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Options:        opts,
	}, runner, c.Logger)
	if err != nil {
		return err
	}

	printSuccess("floorcad server")
	printKeyValue("address", addr)
	printKeyValue("storage", cfg.Storage.Backend)
	printKeyValue("cache", cacheLabel(cfg.Cache.Backend, noCache))
	printKeyValue("origins", strings.Join(cfg.Server.AllowedOrigins, ", "))
	printNewline()

	return srv.ListenAndServe(ctx)
}

func cacheLabel(backend string, disabled bool) string {
	if disabled {
		return "disabled"
	}
	return backend
}
