package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/sitevault/internal/version"
	"github.com/arthur-debert/sitevault/pkg/config"
	"github.com/arthur-debert/sitevault/pkg/filesystem"
	"github.com/arthur-debert/sitevault/pkg/logging"
	"github.com/arthur-debert/sitevault/pkg/xmldoc"
)

// rootElementName recognizes sitevault's own documents versus foreign
// XML files.
const rootElementName = "SiteVault"

var (
	verbosity  int
	configFile string
	storePath  string

	rootCmd = &cobra.Command{
		Use:   "sitevault",
		Short: "A crash-safe store for server connection profiles",
		Long: `sitevault keeps your server connection profiles in a single versioned
XML document, saved with a backup-then-write-then-fsync protocol so a
crash mid-write never loses the previous good state. Passwords are
base64-encoded or sealed under a master public key, never stored as
cleartext.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	initTemplateFormatting()

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default is $XDG_CONFIG_HOME/sitevault/config.toml)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Site store file (overrides the configured path)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(genconfigCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(completionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sitevault version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(sitevault completion bash)

Zsh:
  $ sitevault completion zsh > "${fpath[1]}/_sitevault"

Fish:
  $ sitevault completion fish | source

PowerShell:
  PS> sitevault completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate bash completion")
			}
		case "zsh":
			if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate zsh completion")
			}
		case "fish":
			if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
				log.Error().Err(err).Msg("Failed to generate fish completion")
			}
		case "powershell":
			if err := cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate powershell completion")
			}
		}
	},
}

// openStore loads the configuration and the site document behind every
// store-facing command.
func openStore(overwriteInvalid bool) (*xmldoc.File, *config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}

	path := cfg.StorePath
	if storePath != "" {
		path = storePath
	}

	f := newStoreFile(path)
	if _, err := f.Load(overwriteInvalid); err != nil {
		return nil, nil, err
	}
	return f, cfg, nil
}

// newStoreFile binds a store document without loading it.
func newStoreFile(path string) *xmldoc.File {
	return xmldoc.New(filesystem.NewOS(), path, rootElementName, version.Version)
}
