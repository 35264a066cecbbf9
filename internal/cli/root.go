package cli

import (
	"fmt"
	"os"

	"github.com/ksyq12/projctl/internal/errors"
	"github.com/ksyq12/projctl/internal/logger"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	verbose    bool
	dryRun     bool
	configFile string
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "projctl",
	Short: "Docker Swarm project scaffolding behind Nginx",
	Long: `projctl creates and manages projects of Docker Swarm services that are
published through a shared Nginx reverse proxy.

Each project gets a directory with its metadata, a management script and
a README, plus an Nginx vhost. Each service added to a project gets an
Nginx config, a stack manifest and a deploy script.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() {
	// Initialize logger based on verbose flag (parsed by cobra)
	cobra.OnInitialize(func() {
		logger.Init(verbose)
	})

	cmd, err := rootCmd.ExecuteC()
	logger.Sync()
	if err != nil {
		printError(cmd, err)
		os.Exit(1)
	}
}

// printError writes err, its hints and, for usage errors, the command
// usage to stderr.
func printError(cmd *cobra.Command, err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	for _, hint := range errors.Hints(err) {
		fmt.Fprintf(os.Stderr, "  %s\n", hint)
	}
	if errors.Is(err, errors.ErrUsage) && cmd != nil {
		fmt.Fprintln(os.Stderr)
		fmt.Fprint(os.Stderr, cmd.UsageString())
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// usageArgs wraps a cobra argument validator so that its failures are
// reported as usage errors. It runs before RunE, so nothing is written.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return errors.Usage(err.Error())
		}
		return nil
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Print what would be written or run without doing it")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ~/.config/projctl/config.yaml)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Usage(err.Error())
	})
}
