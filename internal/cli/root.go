package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dojocodes/dojo-deploy/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath  string
	projectPath string
	logLevel    string
}

// load reads the configuration with the persistent flag overrides applied.
func (o *rootOptions) load() (*config.Config, error) {
	return config.Load(o.configPath,
		config.WithProject(o.projectPath),
		config.WithLogLevel(o.logLevel),
	)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dojo-deploy",
		Short: "Deploy a dojo project to the dojo API",
		Long: `dojo-deploy reads a project definition (project.yml and the environment,
challenge, campaign, scoreboard and scoring rule documents it references) and
creates or updates each entity on the dojo API.

Credentials come from DOJO_USERNAME and DOJO_TOKEN; GITHUB_USERNAME fills the
${github_username} placeholder in project documents.`,
		SilenceUsage: true,
		Version:      Version,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "optional YAML configuration file")
	cmd.PersistentFlags().StringVarP(&opts.projectPath, "project", "p", "", "project manifest (default project.yml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(newDeployCmd(opts))
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dojo-deploy version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
