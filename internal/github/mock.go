package github

import (
	"context"
	"fmt"
	"sync"

	gogithub "github.com/google/go-github/v68/github"
	"github.com/ryo246912/gh-pr-status/internal/models"
)

// MockClient implements GitHubClient for testing. It is safe for concurrent use.
type MockClient struct {
	// Control test behavior
	CurrentUserLogin string
	CurrentUserError error
	Repos            map[string]*gogithub.Repository
	OrgRepos         map[string][]*gogithub.Repository
	UserRepos        map[string][]*gogithub.Repository
	BranchHeads      map[string]string // "owner/name@ref" -> sha
	Pulls            map[string][]*gogithub.PullRequest
	Details          map[string]*models.PullRequest // "owner/name#n"
	DetailErrors     map[string]error
	ReviewsByPR      map[string][]*gogithub.PullRequestReview
	LabelsByPR       map[string][]*gogithub.Label
	Requested        map[string]map[int]bool

	// Track method calls
	mu    sync.Mutex
	calls []string
}

func prKey(repo string, number int) string {
	return fmt.Sprintf("%s#%d", repo, number)
}

func (m *MockClient) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Calls returns the recorded method calls in completion order
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount counts recorded calls equal to call
func (m *MockClient) CallCount(call string) int {
	n := 0
	for _, c := range m.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

// CurrentUser mocks the identity call
func (m *MockClient) CurrentUser(ctx context.Context) (string, error) {
	m.record("CurrentUser")
	return m.CurrentUserLogin, m.CurrentUserError
}

// Repository mocks repository metadata
func (m *MockClient) Repository(ctx context.Context, owner, name string) (*gogithub.Repository, error) {
	full := owner + "/" + name
	m.record("Repository " + full)
	if repo, ok := m.Repos[full]; ok {
		return repo, nil
	}
	return nil, NewAPIError("repository not found: " + full)
}

// OrgRepositories mocks organization listing
func (m *MockClient) OrgRepositories(ctx context.Context, org string) ([]*gogithub.Repository, error) {
	m.record("OrgRepositories " + org)
	if repos, ok := m.OrgRepos[org]; ok {
		return repos, nil
	}
	return nil, NewAPIError("organization not found: " + org)
}

// UserRepositories mocks user listing
func (m *MockClient) UserRepositories(ctx context.Context, user string) ([]*gogithub.Repository, error) {
	m.record("UserRepositories " + user)
	if repos, ok := m.UserRepos[user]; ok {
		return repos, nil
	}
	return nil, NewAPIError("user not found: " + user)
}

// BranchHead mocks the branch head lookup
func (m *MockClient) BranchHead(ctx context.Context, repo, ref string) (string, error) {
	key := repo + "@" + ref
	m.record("BranchHead " + key)
	if sha, ok := m.BranchHeads[key]; ok {
		return sha, nil
	}
	return "", NewAPIError("branch not found: " + key)
}

// PullRequests mocks the pull request listing
func (m *MockClient) PullRequests(ctx context.Context, repo string) ([]*gogithub.PullRequest, error) {
	m.record("PullRequests " + repo)
	if prs, ok := m.Pulls[repo]; ok {
		return prs, nil
	}
	return nil, NewNetworkError()
}

// PullRequest mocks a single pull request lookup
func (m *MockClient) PullRequest(ctx context.Context, repo string, number int) (*gogithub.PullRequest, error) {
	m.record("PullRequest " + prKey(repo, number))
	for _, pr := range m.Pulls[repo] {
		if pr.GetNumber() == number {
			return pr, nil
		}
	}
	return nil, NewAPIError("pull request not found: " + prKey(repo, number))
}

// PullDetail mocks the detail bundle
func (m *MockClient) PullDetail(ctx context.Context, pr *gogithub.PullRequest) (*models.PullRequest, error) {
	key := prKey(pr.GetBase().GetRepo().GetFullName(), pr.GetNumber())
	m.record("PullDetail " + key)
	if err, ok := m.DetailErrors[key]; ok {
		return nil, err
	}
	bundle := models.NewPullRequest(pr)
	if detail, ok := m.Details[key]; ok {
		bundle.Comments = detail.Comments
		bundle.ReviewComments = detail.ReviewComments
		bundle.Commits = detail.Commits
		bundle.Statuses = detail.Statuses
	}
	return bundle, nil
}

// Reviews mocks the reviews endpoint
func (m *MockClient) Reviews(ctx context.Context, pr *gogithub.PullRequest) []*gogithub.PullRequestReview {
	key := prKey(pr.GetBase().GetRepo().GetFullName(), pr.GetNumber())
	m.record("Reviews " + key)
	return m.ReviewsByPR[key]
}

// Labels mocks the labels endpoint
func (m *MockClient) Labels(ctx context.Context, pr *gogithub.PullRequest) ([]*gogithub.Label, error) {
	key := prKey(pr.GetBase().GetRepo().GetFullName(), pr.GetNumber())
	m.record("Labels " + key)
	return m.LabelsByPR[key], nil
}

// ReviewRequested mocks the review request search
func (m *MockClient) ReviewRequested(ctx context.Context, repo, login string) (map[int]bool, error) {
	m.record("ReviewRequested " + repo)
	return m.Requested[repo], nil
}

// MockRepository implements repository information for testing
type MockRepository struct {
	Owner string
	Name  string
}

func (m *MockRepository) GetOwner() string {
	return m.Owner
}

func (m *MockRepository) GetName() string {
	return m.Name
}

// CreateTestRepository builds a repository payload
func CreateTestRepository(fullName string) *gogithub.Repository {
	owner, name, _ := SplitRepo(fullName)
	return &gogithub.Repository{
		FullName:      gogithub.Ptr(fullName),
		Name:          gogithub.Ptr(name),
		Owner:         &gogithub.User{Login: gogithub.Ptr(owner)},
		DefaultBranch: gogithub.Ptr("main"),
	}
}

// CreateTestPR builds an open pull request payload
func CreateTestPR(repo string, number int, author, baseRef string) *gogithub.PullRequest {
	repository := CreateTestRepository(repo)
	return &gogithub.PullRequest{
		Number:  gogithub.Ptr(number),
		Title:   gogithub.Ptr(fmt.Sprintf("Test PR #%d", number)),
		HTMLURL: gogithub.Ptr(fmt.Sprintf("https://github.com/%s/pull/%d", repo, number)),
		User:    &gogithub.User{Login: gogithub.Ptr(author)},
		Head: &gogithub.PullRequestBranch{
			Ref:  gogithub.Ptr(fmt.Sprintf("feature-%d", number)),
			SHA:  gogithub.Ptr(fmt.Sprintf("head%d", number)),
			Repo: repository,
		},
		Base: &gogithub.PullRequestBranch{
			Ref:  gogithub.Ptr(baseRef),
			Repo: repository,
		},
	}
}

// Error helpers for testing error conditions
func NewAPIError(message string) error {
	return fmt.Errorf("API error: %s", message)
}

func NewNetworkError() error {
	return fmt.Errorf("network connection failed")
}
