// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCommand returns the completion command.
func NewCommand(rootCmd *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completions",
		Long: `Generate shell completion scripts for vtab.

Install instructions:
  Bash:       vtab completion bash > /etc/bash_completion.d/vtab
              echo 'source <(vtab completion bash)' >> ~/.bashrc
  Zsh:        vtab completion zsh > ~/.zsh/completions/_vtab
  Fish:       vtab completion fish > ~/.config/fish/completions/vtab.fish
  PowerShell: vtab completion powershell >> $PROFILE`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				fmt.Fprintln(out, "# vtab bash completion")
				fmt.Fprintln(out, "# Install: vtab completion bash > /etc/bash_completion.d/vtab")
				fmt.Fprintln(out, "# Or:      echo 'source <(vtab completion bash)' >> ~/.bashrc")
				fmt.Fprintln(out)
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				fmt.Fprintln(out, "# vtab zsh completion")
				fmt.Fprintln(out, "# Install: vtab completion zsh > ~/.zsh/completions/_vtab")
				fmt.Fprintln(out)
				return rootCmd.GenZshCompletion(out)
			case "fish":
				fmt.Fprintln(out, "# vtab fish completion")
				fmt.Fprintln(out, "# Install: vtab completion fish > ~/.config/fish/completions/vtab.fish")
				fmt.Fprintln(out)
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				fmt.Fprintln(out, "# vtab PowerShell completion")
				fmt.Fprintln(out, "# Install: vtab completion powershell >> $PROFILE")
				fmt.Fprintln(out)
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", args[0])
			}
		},
	}
	return cmd
}
