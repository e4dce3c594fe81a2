package main

import (
	"errors"
	"fmt"

	"github.com/ryo246912/gh-pr-status/internal/service"
	"github.com/ryo246912/gh-pr-status/internal/ui"
	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	var (
		author     string
		needRebase bool
		requested  bool
		verbose    bool
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "status [owner/repo | owner]...",
		Short: "Evaluate the open pull requests of repositories",
		Long: `Evaluate every open pull request of the given repositories.
A bare owner expands to all of its repositories. Without arguments the saved
favorites are used, then the repository of the current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := resolveSpecs(a, args)
			if err != nil {
				return err
			}

			client, err := a.newClient()
			if err != nil {
				return err
			}

			opts := a.serviceOptions()
			opts.Author = author
			opts.NeedRebase = needRebase
			opts.RequestedOnly = requested

			table := ui.NewTable()
			svc := service.NewStatusService(client, table, &ui.DefaultPrompter{}, a.log, opts)
			summary, err := svc.Run(cmd.Context(), specs)
			if err != nil {
				return err
			}

			if save && len(args) > 0 {
				if _, err := a.favorites().Add(a.cfg.Host, args...); err != nil {
					return err
				}
			}

			if err := table.Render(cmd.OutOrStdout(), renderOptions(verbose)); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			a.log.Debug("evaluation finished",
				"repositories", summary.Repositories,
				"pullRequests", summary.PullRequests,
				"degraded", summary.Degraded,
				"failures", len(summary.Failures))

			if summary.Repositories == 0 && len(summary.Failures) > 0 {
				return errors.Join(summary.Failures...)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "only show pull requests opened by this login")
	cmd.Flags().BoolVar(&needRebase, "need-rebase", false, "only show pull requests that are not rebased on their base branch")
	cmd.Flags().BoolVar(&requested, "requested", false, "only show pull requests that request your review")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show full titles, labels, URLs and approvals")
	cmd.Flags().BoolVar(&save, "save", false, "save the given repositories as favorites")
	return cmd
}

func resolveSpecs(a *app, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	specs, err := a.favorites().List(a.cfg.Host)
	if err != nil {
		return nil, err
	}
	if len(specs) > 0 {
		return specs, nil
	}

	spec, err := currentRepoSpec()
	if err != nil {
		return nil, err
	}
	return []string{spec}, nil
}

func newRefreshCmd(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "refresh <owner/repo> [number]",
		Short: "Re-evaluate a single pull request",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}

			table := ui.NewTable()
			svc := service.NewStatusService(client, table, &ui.DefaultPrompter{}, a.log, a.serviceOptions())

			var arg string
			if len(args) == 2 {
				arg = args[1]
			}
			number, err := svc.PullRequestNumber(cmd.Context(), args[0], arg)
			if err != nil {
				return err
			}

			_, refreshErr := svc.Refresh(cmd.Context(), args[0], number)
			if table.Len() > 0 {
				if err := table.Render(cmd.OutOrStdout(), renderOptions(verbose)); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}
			return refreshErr
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show full titles, labels, URLs and approvals")
	return cmd
}

func newFavoritesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage saved repositories",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved repositories",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				specs, err := a.favorites().List(a.cfg.Host)
				if err != nil {
					return err
				}
				for _, spec := range specs {
					fmt.Fprintln(cmd.OutOrStdout(), spec)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <owner/repo | owner>...",
			Short: "Save repositories",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				changed, err := a.favorites().Add(a.cfg.Host, args...)
				if err != nil {
					return err
				}
				if !changed {
					fmt.Fprintln(cmd.ErrOrStderr(), "Already saved")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove [owner/repo | owner]",
			Short: "Remove a saved repository",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store := a.favorites()

				var spec string
				if len(args) == 1 {
					spec = args[0]
				} else {
					specs, err := store.List(a.cfg.Host)
					if err != nil {
						return err
					}
					prompter := &ui.DefaultPrompter{}
					if spec, err = prompter.SelectFavorite(specs); err != nil {
						return err
					}
				}

				removed, err := store.Remove(a.cfg.Host, spec)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("%s is not a favorite", spec)
				}
				return nil
			},
		},
	)
	return cmd
}
