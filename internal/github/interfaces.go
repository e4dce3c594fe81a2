package github

import (
	"context"

	gogithub "github.com/google/go-github/v68/github"
	"github.com/ryo246912/gh-pr-status/internal/models"
)

// GitHubClient defines the read-only GitHub operations the evaluation needs
type GitHubClient interface {
	CurrentUser(ctx context.Context) (string, error)
	Repository(ctx context.Context, owner, name string) (*gogithub.Repository, error)
	OrgRepositories(ctx context.Context, org string) ([]*gogithub.Repository, error)
	UserRepositories(ctx context.Context, user string) ([]*gogithub.Repository, error)
	BranchHead(ctx context.Context, repo, ref string) (string, error)
	PullRequests(ctx context.Context, repo string) ([]*gogithub.PullRequest, error)
	PullRequest(ctx context.Context, repo string, number int) (*gogithub.PullRequest, error)
	PullDetail(ctx context.Context, pr *gogithub.PullRequest) (*models.PullRequest, error)
	Reviews(ctx context.Context, pr *gogithub.PullRequest) []*gogithub.PullRequestReview
	Labels(ctx context.Context, pr *gogithub.PullRequest) ([]*gogithub.Label, error)
	ReviewRequested(ctx context.Context, repo, login string) (map[int]bool, error)
}

// RepositoryInfo defines repository information interface
type RepositoryInfo interface {
	GetOwner() string
	GetName() string
}

// Ensure Client implements GitHubClient interface
var _ GitHubClient = (*Client)(nil)
