package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dojocodes/dojo-deploy/internal/dojo"
	"github.com/dojocodes/dojo-deploy/internal/project"
	"github.com/spf13/cobra"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	var (
		strict bool
		only   []string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the project and check every entity without calling the API",
		Long: `Load the project and check every entity without calling the API.

Every entity must carry the fields an update needs. Fields that only a create
needs are reported as warnings, or as errors with --strict, since the API
decides at deploy time which path an entity takes.`,
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

			loader := project.NewLoader(project.Variables(cfg.GitHubUsername, cfg.Username, cfg.Vars))
			plan, err := loader.LoadPlan(cmd.Context(), cfg.Project)
			if err != nil {
				return err
			}
			plan = plan.Filter(kinds)

			out := cmd.OutOrStdout()
			var errs []error
			for _, entry := range plan.Entries {
				entity := entry.Entity
				fmt.Fprintf(out, "%s %s (%s)\n", entity.Kind(), entity.Identifier(), entry.Source)

				if err := entity.Validate(dojo.Update); err != nil {
					fmt.Fprintf(out, "  error: %v\n", err)
					errs = append(errs, err)
					continue
				}
				if err := entity.Validate(dojo.Create); err != nil {
					if strict {
						fmt.Fprintf(out, "  error: %v\n", err)
						errs = append(errs, err)
					} else {
						fmt.Fprintf(out, "  warning: %v\n", err)
					}
				}
			}

			var counts []string
			for _, kind := range dojo.Kinds {
				if count := plan.Count(kind); count > 0 {
					counts = append(counts, fmt.Sprintf("%d %s", count, kind))
				}
			}
			if len(counts) > 0 {
				fmt.Fprintf(out, "found %s\n", strings.Join(counts, ", "))
			}
			fmt.Fprintf(out, "%d entities, %d invalid\n", len(plan.Entries), len(errs))
			return errors.Join(errs...)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat fields required for creation as errors")
	cmd.Flags().StringSliceVar(&only, "only", nil, onlyUsage)
	return cmd
}
