package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/karmyc/pkg/config"
	"github.com/matzehuels/karmyc/pkg/screen"
)

// completionCommand generates shell completion scripts for karmyc.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for bash, zsh, fish or powershell.

Layout arguments complete to *.json files, store commands to the screens in
the configured store, and --orientation, --side and --format to their
accepted values.

  $ source <(karmyc completion bash)
  $ karmyc completion zsh > "${fpath[1]}/_karmyc"
  $ karmyc completion fish > ~/.config/fish/completions/karmyc.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, w := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			default:
				return root.GenPowerShellCompletionWithDesc(w)
			}
		},
	}
}

// completeLayoutFiles completes the first argument to layout files.
func completeLayoutFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeScreens completes stored screen names starting with toComplete.
func (c *CLI) completeScreens(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var names []string
	_ = c.withManager(ctx, func(_ config.Config, mgr *screen.Manager) error {
		stored, err := mgr.Stored(ctx)
		for _, name := range stored {
			if strings.HasPrefix(name, toComplete) {
				names = append(names, name)
			}
		}
		return err
	})
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeValues returns a flag completion over a fixed set of values.
func completeValues(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// registerCompletions attaches argument and flag completions to every
// subcommand of root.
func (c *CLI) registerCompletions(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		switch {
		case cmd.Name() == "store":
			for _, sub := range cmd.Commands() {
				switch sub.Name() {
				case "load", "delete":
					sub.ValidArgsFunction = c.completeScreens
				case "save":
					sub.ValidArgsFunction = completeLayoutFiles
				}
			}
		case strings.Contains(cmd.Use, "<layout.json>") || strings.Contains(cmd.Use, "[layout.json]"):
			cmd.ValidArgsFunction = completeLayoutFiles
		}
		for flag, values := range flagValues {
			if cmd.Flags().Lookup(flag) != nil {
				_ = cmd.RegisterFlagCompletionFunc(flag, completeValues(values...))
			}
		}
	}
}

var flagValues = map[string][]string{
	"orientation": {"horizontal", "vertical"},
	"side":        {"before", "after"},
	"format":      {"svg", "png", "pdf", "dot"},
}
