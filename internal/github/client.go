package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cli/go-gh/v2/pkg/api"
	gogithub "github.com/google/go-github/v68/github"
	"github.com/ryo246912/gh-pr-status/internal/logging"
	"github.com/ryo246912/gh-pr-status/internal/models"
)

const acceptHeader = "application/vnd.github+json"

// ClientOptions configures a session client. The token and host are fixed for the
// lifetime of the client; a different token needs a new client.
type ClientOptions struct {
	Host   string
	Token  string
	Logger logging.Logger
}

// Client wraps GitHub API clients
type Client struct {
	fetcher *Fetcher
	gql     GraphQLQuerier
	log     logging.Logger
}

// NewClient creates REST and GraphQL clients for the given host and token
func NewClient(opts ClientOptions) (*Client, error) {
	apiOpts := api.ClientOptions{
		Host:      opts.Host,
		AuthToken: opts.Token,
		Headers:   map[string]string{"Accept": acceptHeader},
	}

	restClient, err := api.NewRESTClient(apiOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST client: %w", err)
	}

	gqlClient, err := api.NewGraphQLClient(apiOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL client: %w", err)
	}

	return NewClientWith(restClient, gqlClient, opts.Logger), nil
}

// NewClientWith builds a client over existing transports
func NewClientWith(requester Requester, gql GraphQLQuerier, log logging.Logger) *Client {
	return &Client{
		fetcher: NewFetcher(requester),
		gql:     gql,
		log:     log.WithName("github"),
	}
}

// CurrentUser fetches current user's login
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	var user gogithub.User
	if err := c.fetcher.Get(ctx, "user", &user); err != nil {
		return "", fmt.Errorf("failed to fetch current user: %w", err)
	}
	return user.GetLogin(), nil
}

// Repository fetches repository metadata
func (c *Client) Repository(ctx context.Context, owner, name string) (*gogithub.Repository, error) {
	var repo gogithub.Repository
	if err := c.fetcher.Get(ctx, fmt.Sprintf("repos/%s/%s", owner, name), &repo); err != nil {
		return nil, fmt.Errorf("failed to fetch repository %s/%s: %w", owner, name, err)
	}
	return &repo, nil
}

// OrgRepositories lists every repository of an organization
func (c *Client) OrgRepositories(ctx context.Context, org string) ([]*gogithub.Repository, error) {
	repos, err := FetchAll[*gogithub.Repository](ctx, c.fetcher, fmt.Sprintf("orgs/%s/repos", org))
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories of organization %s: %w", org, err)
	}
	return repos, nil
}

// UserRepositories lists every repository of a user
func (c *Client) UserRepositories(ctx context.Context, user string) ([]*gogithub.Repository, error) {
	repos, err := FetchAll[*gogithub.Repository](ctx, c.fetcher, fmt.Sprintf("users/%s/repos", user))
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories of user %s: %w", user, err)
	}
	return repos, nil
}

// BranchHead returns the SHA of the commit at the tip of ref
func (c *Client) BranchHead(ctx context.Context, repo, ref string) (string, error) {
	var commit gogithub.RepositoryCommit
	if err := c.fetcher.Get(ctx, fmt.Sprintf("repos/%s/commits/%s", repo, ref), &commit); err != nil {
		return "", fmt.Errorf("failed to fetch head of %s@%s: %w", repo, ref, err)
	}
	return commit.GetSHA(), nil
}

// PullRequests lists the open pull requests of repo
func (c *Client) PullRequests(ctx context.Context, repo string) ([]*gogithub.PullRequest, error) {
	prs, err := FetchAll[*gogithub.PullRequest](ctx, c.fetcher, fmt.Sprintf("repos/%s/pulls?state=open", repo))
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests of %s: %w", repo, err)
	}
	return prs, nil
}

// PullRequest fetches a single pull request
func (c *Client) PullRequest(ctx context.Context, repo string, number int) (*gogithub.PullRequest, error) {
	var pr gogithub.PullRequest
	if err := c.fetcher.Get(ctx, fmt.Sprintf("repos/%s/pulls/%d", repo, number), &pr); err != nil {
		return nil, fmt.Errorf("failed to fetch pull request %s#%d: %w", repo, number, err)
	}
	return &pr, nil
}

// PullDetail fetches comments, review comments, commits and statuses concurrently
// and merges them into one bundle. Any failure fails the whole bundle.
func (c *Client) PullDetail(ctx context.Context, pr *gogithub.PullRequest) (*models.PullRequest, error) {
	endpoints := ResolveEndpoints(pr)
	bundle := models.NewPullRequest(pr)
	c.log.Debug("fetching pull request detail", "repo", bundle.Repo, "number", bundle.Number, "shape", endpoints.Shape.String())

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		comments, err := FetchAll[*gogithub.IssueComment](ctx, c.fetcher, endpoints.Comments)
		if err != nil {
			fail(fmt.Errorf("failed to fetch comments: %w", err))
			return
		}
		bundle.Comments = comments
	}()
	go func() {
		defer wg.Done()
		comments, err := FetchAll[*gogithub.PullRequestComment](ctx, c.fetcher, endpoints.ReviewComments)
		if err != nil {
			fail(fmt.Errorf("failed to fetch review comments: %w", err))
			return
		}
		bundle.ReviewComments = comments
	}()
	go func() {
		defer wg.Done()
		commits, err := FetchAll[*gogithub.RepositoryCommit](ctx, c.fetcher, endpoints.Commits)
		if err != nil {
			fail(fmt.Errorf("failed to fetch commits: %w", err))
			return
		}
		bundle.Commits = commits
	}()
	go func() {
		defer wg.Done()
		statuses, err := FetchAll[*gogithub.RepoStatus](ctx, c.fetcher, endpoints.Statuses)
		if err != nil {
			fail(fmt.Errorf("failed to fetch statuses: %w", err))
			return
		}
		bundle.Statuses = statuses
	}()
	wg.Wait()

	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to fetch detail of %s#%d: %w", bundle.Repo, bundle.Number, errors.Join(errs...))
	}
	return bundle, nil
}

// Reviews fetches the reviews of pr. Not every server version has the endpoint,
// so a failure yields an empty list.
func (c *Client) Reviews(ctx context.Context, pr *gogithub.PullRequest) []*gogithub.PullRequestReview {
	reviews, err := FetchAll[*gogithub.PullRequestReview](ctx, c.fetcher, ResolveEndpoints(pr).Reviews)
	if err != nil {
		c.log.Debug("reviews unavailable, treating as empty", "number", pr.GetNumber(), "error", err.Error())
		return []*gogithub.PullRequestReview{}
	}
	return reviews
}

// Labels fetches the labels of pr
func (c *Client) Labels(ctx context.Context, pr *gogithub.PullRequest) ([]*gogithub.Label, error) {
	labels, err := FetchAll[*gogithub.Label](ctx, c.fetcher, ResolveEndpoints(pr).Labels)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch labels: %w", err)
	}
	return labels, nil
}

// SplitRepo splits "owner/name"
func SplitRepo(fullName string) (string, string, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/name", fullName)
	}
	return owner, name, nil
}
