package cli

import (
	"github.com/dojocodes/dojo-deploy/internal/deploy"
	"github.com/dojocodes/dojo-deploy/internal/dojo"
	"github.com/dojocodes/dojo-deploy/internal/logging"
	"github.com/dojocodes/dojo-deploy/internal/project"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newDeployCmd(root *rootOptions) *cobra.Command {
	var (
		options deploy.Options
		only    []string
	)

	cmd := &cobra.Command{
		Use:     "deploy",
		Aliases: []string{"sync"},
		Short:   "Create or update every project entity on the dojo API",
		Long: `Create or update every project entity on the dojo API.

Each entity is probed with GET by id, then created with POST when the API
answers 404 or updated with PATCH when it answers 200. Any other answer stops
the deploy unless --keep-going is set.

Examples:
  # Deploy project.yml from the current directory
  dojo-deploy deploy

  # Show what would change without sending anything
  dojo-deploy deploy --dry-run

  # Only push challenges and campaigns
  dojo-deploy deploy --only challenges,campaigns`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kinds, err := parseKinds(only)
			if err != nil {
				return err
			}

			cfg, err := root.load()
			if err != nil {
				return err
			}
			if err := cfg.RequireCredentials(); err != nil {
				return err
			}

			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			runID := uuid.NewString()
			logger = logger.With(zap.String("run_id", runID))

			ctx := cmd.Context()
			loader := project.NewLoader(project.Variables(cfg.GitHubUsername, cfg.Username, cfg.Vars))
			plan, err := loader.LoadPlan(ctx, cfg.Project)
			if err != nil {
				return err
			}
			plan = plan.Filter(kinds)
			logger.Info("project loaded",
				zap.String("manifest", plan.Manifest),
				zap.Int("entities", len(plan.Entries)),
				zap.String("url", cfg.URL),
			)
			for _, kind := range dojo.Kinds {
				if count := plan.Count(kind); count > 0 {
					logger.Debug("entities to sync", zap.Stringer("kind", kind), zap.Int("count", count))
				}
			}

			client := dojo.New(cfg.URL,
				dojo.Credentials{Username: cfg.Username, Token: cfg.Token.Value()},
				dojo.WithTimeout(cfg.Timeout),
				dojo.WithRequestID(runID),
				dojo.WithLogger(logger),
			)

			summary, syncErr := deploy.New(client, logger, options).Sync(ctx, plan.Entities())
			if err := summary.Write(cmd.OutOrStdout()); err != nil {
				return err
			}
			return syncErr
		},
	}

	cmd.Flags().BoolVar(&options.DryRun, "dry-run", false, "probe the API but send no create or update")
	cmd.Flags().BoolVar(&options.KeepGoing, "keep-going", false, "continue with the next entity after a failure")
	cmd.Flags().StringSliceVar(&only, "only", nil, onlyUsage)
	return cmd
}

const onlyUsage = "restrict to these kinds (environments, challenges, campaigns, scoreboards, scoring_rules)"

func parseKinds(names []string) ([]dojo.Kind, error) {
	var kinds []dojo.Kind
	for _, name := range names {
		kind, err := dojo.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}
