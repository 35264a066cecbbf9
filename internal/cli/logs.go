package cli

import (
	"github.com/ksyq12/projctl/internal/swarm"
	"github.com/spf13/cobra"
)

var (
	logsFollow bool
	logsLines  int
)

var logsCmd = &cobra.Command{
	Use:   "logs <project> <service>",
	Short: "View logs of a service",
	Long: `View the logs of a project service through docker service logs.

Examples:
  projctl logs myapp api           # Show the last 100 lines
  projctl logs myapp api -f        # Follow logs in real-time
  projctl logs myapp api -n 50     # Show last 50 lines`,
	Args: usageArgs(cobra.ExactArgs(2)),
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 100, "Number of lines to show (0 for all)")

	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	proj, err := e.registry.LoadProject(args[0])
	if err != nil {
		return err
	}
	svc, err := e.registry.LoadService(proj.Name, args[1])
	if err != nil {
		return err
	}

	if dryRun {
		return printCommands("docker service logs " + swarm.ServiceName(proj.Name, svc.Name))
	}
	return e.stack().Logs(proj.Name, svc.Name, logsFollow, logsLines)
}
