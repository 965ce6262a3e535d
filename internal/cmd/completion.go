package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:     "completion [bash|zsh|fish|powershell]",
	Aliases: []string{"completions", "comp"},
	Short:   "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(todo completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ todo completion bash > /etc/bash_completion.d/todo
  # macOS:
  $ todo completion bash > $(brew --prefix)/etc/bash_completion.d/todo

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ todo completion zsh > "${fpath[1]}/_todo"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ todo completion fish | source

  # To load completions for each session, execute once:
  $ todo completion fish > ~/.config/fish/completions/todo.fish

PowerShell:
  PS> todo completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> todo completion powershell > todo.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

func init() {
	rootCmd.AddCommand(completionCmd)

	branchCmd.ValidArgsFunction = completeBranches(1)
	branchDeleteCmd.ValidArgsFunction = completeBranches(1)
	branchMoveCmd.ValidArgsFunction = completeBranches(2)
	branchMergeCmd.ValidArgsFunction = completeBranches(2)
	branchDupCmd.ValidArgsFunction = completeBranches(1)

	savedShowCmd.ValidArgsFunction = completeSaved
	savedRemoveCmd.ValidArgsFunction = completeSaved
	savedRunCmd.ValidArgsFunction = completeSaved
}

// completeBranches offers known branch names for the first n positional
// arguments.
func completeBranches(n int) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) >= n {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		cc, err := NewCommandContext(cmd)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var out []cobra.Completion
		for _, b := range cc.Query.Branches(cc.State.CurrentBranch) {
			if strings.HasPrefix(strings.ToLower(b.Name), strings.ToLower(toComplete)) {
				out = append(out, b.Name)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

func completeSaved(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []cobra.Completion
	for _, name := range cc.State.SavedNames() {
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(toComplete)) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func runCompletion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletionV2(out, true)
	case "zsh":
		return rootCmd.GenZshCompletion(out)
	case "fish":
		return rootCmd.GenFishCompletion(out, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(out)
	}
	return nil
}
