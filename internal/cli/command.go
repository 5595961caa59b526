package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/agritranslate/internal"
)

// CreateRootCommand creates and configures the root cobra command together
// with its serve, pipe and models subcommands. Callers set RunE on each.
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "agritranslate",
		Short: "Machine translation of UI string dictionaries",
		Long: `agritranslate translates the English UI string dictionary into a set
of Indian languages using offline translation packages, installing
missing packages from the package index on demand.

Examples:
  agritranslate                   # Translate public/locales/en/complete.json
  agritranslate --force-install   # Reinstall every target package first
  agritranslate serve             # Serve the hosted model over HTTP
  agritranslate pipe < req.json   # Translate one request from stdin
  agritranslate models            # List installed and available packages`,
		Args:          cobra.NoArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newServeCommand(flags),
		&cobra.Command{
			Use:   "pipe",
			Short: "Translate one JSON request from stdin to stdout",
			Long: `pipe reads {"targetLang": "<code>", "strings": {...}} from standard input,
installs the en-><code> package if needed and writes {"translated": {...}}
to standard output. Invalid input yields {"error": "Invalid input"} and a
non-zero exit status.`,
			Args: cobra.NoArgs,
		},
		&cobra.Command{
			Use:   "models",
			Short: "List installed and available translation packages",
			Args:  cobra.NoArgs,
		},
	)

	return rootCmd
}

func newServeCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the hosted model on POST /api/v1/translate",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&flags.Addr, "addr", flags.Addr, "Listen address")
	viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.agritranslate.yaml)")

	// Local flags
	cmd.Flags().BoolVar(&flags.ForceInstall, "force-install", false, "Reinstall all target language packages before translating")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("batch.force_install", cmd.Flags().Lookup("force-install"))
}
