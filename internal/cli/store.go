package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/karmyc/pkg/config"
	"github.com/matzehuels/karmyc/pkg/layout"
	"github.com/matzehuels/karmyc/pkg/screen"
	"github.com/matzehuels/karmyc/pkg/store"
)

// storeCommand creates the layout store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Move layouts between files and the configured store",
		Long: `Move layouts between files and the configured store. The backend (file,
sqlite, redis, mongo, memory or null) is chosen in the [store] section of the config.`,
	}

	cmd.AddCommand(c.storeSaveCommand())
	cmd.AddCommand(c.storeLoadCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

// withManager opens the configured store for the duration of fn.
func (c *CLI) withManager(ctx context.Context, fn func(config.Config, *screen.Manager) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	mgr, err := c.newManager(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}()
	return fn(cfg, mgr)
}

// storeLocation names where a screen lives in the configured store,
// e.g. "redis team/layout:main".
func storeLocation(cfg config.Config, name string) string {
	backend := cfg.Store.Backend
	if backend == "" {
		backend = store.BackendFile
	}
	return backend + " " + cfg.Store.Keyer().LayoutKey(name)
}

// storeSaveCommand creates the "store save" subcommand.
func (c *CLI) storeSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <layout.json> <screen>",
		Short: "Store a layout file under a screen name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, name := args[0], args[1]
			return c.withManager(cmd.Context(), func(cfg config.Config, mgr *screen.Manager) error {
				t, err := mgr.Engine().LoadFile(path)
				if err != nil {
					return err
				}
				if _, err := mgr.Create(name, t); err != nil {
					return err
				}

				act := startActivity(cmd.Context(), c.out, "Saving "+name, storeLocation(cfg, name))
				err = mgr.Save(cmd.Context(), name)
				if err := act.finish(err, "Saved screen "+StyleHighlight.Render(name)); err != nil {
					return err
				}
				printTreeStats(t, false)
				return nil
			})
		},
	}
}

// storeLoadCommand creates the "store load" subcommand.
func (c *CLI) storeLoadCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "load <screen>",
		Short: "Write a stored layout to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if output == "" {
				output = name + ".json"
			}
			return c.withManager(cmd.Context(), func(cfg config.Config, mgr *screen.Manager) error {
				act := startActivity(cmd.Context(), c.out, "Loading "+name, storeLocation(cfg, name))
				scr, err := mgr.Open(cmd.Context(), name)
				act.stop()
				if err != nil {
					return err
				}
				t := scr.Tree()
				if err := layout.WriteFile(t, output); err != nil {
					return err
				}
				printSuccess("Loaded screen %s", StyleHighlight.Render(name))
				printTreeStats(t, false)
				printFile(output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <screen>.json)")

	return cmd
}

// storeListCommand creates the "store list" subcommand.
func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored screens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withManager(cmd.Context(), func(cfg config.Config, mgr *screen.Manager) error {
				names, err := mgr.Stored(cmd.Context())
				if err != nil {
					return err
				}
				if len(names) == 0 {
					printInfo("No stored screens")
					return nil
				}
				for _, name := range names {
					fmt.Println(StyleValue.Render(name))
				}
				return nil
			})
		},
	}
}

// storeDeleteCommand creates the "store delete" subcommand.
func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <screen>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored screen",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return c.withManager(cmd.Context(), func(cfg config.Config, mgr *screen.Manager) error {
				act := startActivity(cmd.Context(), c.out, "Deleting "+name, storeLocation(cfg, name))
				return act.finish(mgr.Forget(cmd.Context(), name), "Deleted screen "+StyleHighlight.Render(name))
			})
		},
	}
}
