package cli

import (
	"github.com/ksyq12/projctl/internal/output"
	"github.com/ksyq12/projctl/internal/project"
	"github.com/ksyq12/projctl/internal/scaffold"
	"github.com/spf13/cobra"
)

var templateImage string

var templateCmd = &cobra.Command{
	Use:   "template <name> <port> <domain>",
	Short: "Print the files for a standalone service",
	Long: `Print the Nginx config, stack manifest and deploy script for a service
that is not part of a project. The stack is named after the service.
Nothing is written.

Examples:
  projctl template api 3000 api.example.com
  projctl template api 3000 api.example.com --image ghcr.io/acme/api:2
  projctl template api 3000 api.example.com --json`,
	Args: usageArgs(cobra.ExactArgs(3)),
	RunE: runTemplate,
}

func init() {
	templateCmd.Flags().StringVar(&templateImage, "image", "", "Container image (default <name>:latest)")

	rootCmd.AddCommand(templateCmd)
}

func runTemplate(cmd *cobra.Command, args []string) error {
	cfg, err := deps.ConfigLoader.Load(configFile)
	if err != nil {
		return err
	}

	svc := project.ServiceSpec{
		Name:   args[0],
		Domain: args[2],
		Image:  templateImage,
	}
	if svc.Port, err = parsePort(args[1]); err != nil {
		return err
	}

	bundle, err := scaffold.New(cfg).Generator().Generate(svc, project.ProjectSpec{})
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(map[string]string{
			"nginx":   bundle.NginxConfig,
			"compose": bundle.ComposeManifest,
			"deploy":  bundle.DeployScript,
		})
	}

	output.Block(svc.Name+".conf", bundle.NginxConfig)
	output.Block(svc.Name+".yml", bundle.ComposeManifest)
	output.Block(svc.Name+".deploy.sh", bundle.DeployScript)
	return nil
}
