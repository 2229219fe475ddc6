package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/karmyc/pkg/server"
)

// saveTimeout bounds the final SaveAll after the server stops.
const saveTimeout = 10 * time.Second

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		screenName string
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve screens over HTTP",
		Long: `Serve the HTTP API. The configured screen is opened from the store, or
created with a single area, before the server starts listening. Every
mutation, gesture and viewport query is available under /screens/{name}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if screenName != "" {
				cfg.Server.Screen = screenName
			}
			if cmd.Flags().Changed("save-on-exit") {
				cfg.Server.SaveOnExit = save
			}

			mgr, err := c.newManager(ctx, cfg)
			if err != nil {
				return err
			}
			defer mgr.Close()

			if cfg.Server.Screen != "" {
				if _, err := mgr.OpenOrCreate(ctx, cfg.Server.Screen); err != nil {
					return err
				}
			}

			printInfo("Listening on %s", StyleHighlight.Render("http://"+cfg.Server.Addr))
			printDetail("store: %s", cfg.Store.Backend)
			err = server.New(mgr, logger).ListenAndServe(ctx, cfg.Server.Addr)

			if cfg.Server.SaveOnExit {
				saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
				defer cancel()
				if serr := mgr.SaveAll(saveCtx); serr != nil {
					logger.Error("save screens", "err", serr)
				} else {
					printSuccess("Saved %d screens", len(mgr.List()))
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config server.addr)")
	cmd.Flags().StringVar(&screenName, "screen", "", "screen opened at startup (default: config server.screen)")
	cmd.Flags().BoolVar(&save, "save-on-exit", false, "save all screens when the server stops")

	return cmd
}
