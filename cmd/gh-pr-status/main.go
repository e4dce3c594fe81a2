package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cli/go-gh/v2/pkg/repository"
	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/ryo246912/gh-pr-status/internal/auth"
	"github.com/ryo246912/gh-pr-status/internal/config"
	"github.com/ryo246912/gh-pr-status/internal/favorites"
	"github.com/ryo246912/gh-pr-status/internal/github"
	"github.com/ryo246912/gh-pr-status/internal/logging"
	"github.com/ryo246912/gh-pr-status/internal/service"
	"github.com/ryo246912/gh-pr-status/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RepositoryAdapter adapts repository.Repository to our interface
type RepositoryAdapter struct {
	repo *repository.Repository
}

func (r *RepositoryAdapter) GetOwner() string {
	return r.repo.Owner
}

func (r *RepositoryAdapter) GetName() string {
	return r.repo.Name
}

// app holds what every subcommand shares once flags are parsed
type app struct {
	v   *viper.Viper
	cfg config.Config
	log logging.Logger
}

func (a *app) setup(cmd *cobra.Command) error {
	config.Init(a.v, cmd.Flags())
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.NewZap(cfg.LogLevel)
	return nil
}

func (a *app) newClient() (*github.Client, error) {
	ts, err := auth.NewTokenSource(auth.Options{
		Host:           a.cfg.Host,
		APIURL:         a.cfg.APIURL,
		Token:          a.cfg.Token,
		AppID:          a.cfg.AppID,
		InstallationID: a.cfg.InstallationID,
		PrivateKeyPath: a.cfg.PrivateKeyPath,
	})
	if err != nil {
		return nil, err
	}
	token, err := auth.Token(ts)
	if err != nil {
		return nil, err
	}

	client, err := github.NewClient(github.ClientOptions{
		Host:   a.cfg.Host,
		Token:  token,
		Logger: a.log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return client, nil
}

func (a *app) favorites() *favorites.Store {
	return favorites.NewStore(a.cfg.FavoritesFile)
}

func (a *app) serviceOptions() service.Options {
	ignored := make(map[string][]string, len(a.cfg.IgnoredContexts))
	for repo, contexts := range a.cfg.IgnoredContexts {
		ignored[strings.ToLower(repo)] = contexts
	}
	return service.Options{
		MinApprovals:    a.cfg.MinApprovals,
		IgnoredContexts: ignored,
	}
}

func renderOptions(verbose bool) ui.RenderOptions {
	t := term.FromEnv()
	opts := ui.RenderOptions{Verbose: verbose, IsTTY: t.IsTerminalOutput()}
	if opts.IsTTY {
		if width, _, err := t.Size(); err == nil {
			opts.Width = width
		}
	}
	return opts
}

// currentRepoSpec resolves the repository of the working directory
func currentRepoSpec() (string, error) {
	repo, err := repository.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get current repository: %w", err)
	}
	return repoSpec(&RepositoryAdapter{repo: &repo}), nil
}

func repoSpec(info github.RepositoryInfo) string {
	return info.GetOwner() + "/" + info.GetName()
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "pr-status",
		Short: "Show how close open pull requests are to being mergeable",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default $XDG_CONFIG_HOME/gh-pr-status/config.yml)")
	flags.String("api-url", config.DefaultAPIURL, "GitHub API base URL: https://api.github.com, https://api.<tenant>.ghe.com or https://<host>/api/v3")
	flags.Int("min-approvals", config.DefaultMinApprovals, "approvals required before a PR counts as approved")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(newStatusCmd(a), newRefreshCmd(a), newFavoritesCmd(a))
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
