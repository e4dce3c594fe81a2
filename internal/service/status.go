package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	gogithub "github.com/google/go-github/v68/github"
	"github.com/ryo246912/gh-pr-status/internal/evaluator"
	"github.com/ryo246912/gh-pr-status/internal/github"
	"github.com/ryo246912/gh-pr-status/internal/logging"
	"github.com/ryo246912/gh-pr-status/internal/models"
	"github.com/ryo246912/gh-pr-status/internal/ui"
)

var (
	// ErrAuthentication means the identity check failed; nothing was evaluated.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNoRepositories means a spec resolved to no repository.
	ErrNoRepositories = errors.New("no repositories found")
)

// Sink receives evaluated rows. Add and Remove may be called concurrently and in any order.
type Sink interface {
	Add(row models.Row)
	Remove(repo string, number int)
}

// Options tunes an evaluation run
type Options struct {
	MinApprovals    int
	IgnoredContexts map[string][]string // keyed by lower-case repository full name
	Author          string
	NeedRebase      bool
	RequestedOnly   bool
}

// Summary reports what a run did. Failures never abort sibling repositories.
// The fields are written while Run is in flight; read them only after Run returns.
type Summary struct {
	mu           sync.Mutex
	Repositories int
	PullRequests int
	Degraded     int
	Failures     []error
}

func (s *Summary) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failures = append(s.Failures, err)
}

func (s *Summary) addRepository() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Repositories++
}

func (s *Summary) addRow(row models.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PullRequests++
	if row.Degraded() {
		s.Degraded++
	}
}

// StatusService resolves repository specs and evaluates their open pull requests
type StatusService struct {
	client   github.GitHubClient
	sink     Sink
	prompter ui.Prompter
	log      logging.Logger
	opts     Options
}

// NewStatusService creates a new service instance
func NewStatusService(client github.GitHubClient, sink Sink, prompter ui.Prompter, log logging.Logger, opts Options) *StatusService {
	if opts.MinApprovals == 0 {
		opts.MinApprovals = evaluator.DefaultMinApprovals
	}
	return &StatusService{
		client:   client,
		sink:     sink,
		prompter: prompter,
		log:      log.WithName("status"),
		opts:     opts,
	}
}

// Run evaluates every open pull request of every repository the specs resolve to.
// Each pull request is an independent unit; rows reach the sink in completion order.
func (s *StatusService) Run(ctx context.Context, specs []string) (*Summary, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no repository specs given")
	}

	self, err := s.identity(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	var wg sync.WaitGroup
	for _, spec := range specs {
		wg.Add(1)
		go func(spec string) {
			defer wg.Done()
			repos, err := s.ResolveSpec(ctx, spec)
			if err != nil {
				s.log.Info("no data for spec", "spec", spec, "reason", err.Error())
				summary.fail(err)
				return
			}
			for _, repo := range repos {
				wg.Add(1)
				go func(repo string) {
					defer wg.Done()
					s.evaluateRepository(ctx, self, repo, summary)
				}(repo)
			}
		}(spec)
	}
	wg.Wait()

	return summary, nil
}

// Refresh re-evaluates a single pull request and replaces its row in the sink.
// When the pull request itself cannot be fetched the row is replaced by a degraded
// one and the error is returned along with it.
func (s *StatusService) Refresh(ctx context.Context, repoPath string, number int) (models.Row, error) {
	self, err := s.identity(ctx)
	if err != nil {
		return models.Row{}, err
	}

	owner, name, err := github.SplitRepo(repoPath)
	if err != nil {
		return models.Row{}, err
	}
	repository, err := s.client.Repository(ctx, owner, name)
	if err != nil {
		return models.Row{}, fmt.Errorf("failed to resolve repository: %w", err)
	}
	repo := repository.GetFullName()
	if repo == "" {
		repo = repoPath
	}

	pr, err := s.client.PullRequest(ctx, repo, number)
	if err != nil {
		err = fmt.Errorf("failed to refresh pull request: %w", err)
		row := models.NewDegradedRow(&models.PullRequest{Repo: repo, Number: number}, err)
		s.sink.Add(row)
		return row, err
	}
	s.sink.Remove(repo, number)

	baseHead, baseErr := s.client.BranchHead(ctx, repo, pr.GetBase().GetRef())

	row := s.evaluatePullRequest(ctx, self, repo, pr, baseHead, baseErr)
	s.sink.Add(row)
	return row, nil
}

// ResolveSpec turns "owner/name" into that repository and a bare owner into all of
// its repositories, trying the organization listing before the user listing.
func (s *StatusService) ResolveSpec(ctx context.Context, spec string) ([]string, error) {
	spec = strings.TrimSpace(spec)
	if strings.Contains(spec, "/") {
		owner, name, err := github.SplitRepo(spec)
		if err != nil {
			return nil, fmt.Errorf("%w for %s: %w", ErrNoRepositories, spec, err)
		}
		repo, err := s.client.Repository(ctx, owner, name)
		if err != nil {
			return nil, fmt.Errorf("%w for %s: %w", ErrNoRepositories, spec, err)
		}
		if repo.GetFullName() == "" {
			return []string{spec}, nil
		}
		return []string{repo.GetFullName()}, nil
	}

	repos, orgErr := s.client.OrgRepositories(ctx, spec)
	if orgErr != nil {
		s.log.Debug("organization listing failed, trying user", "owner", spec, "error", orgErr.Error())
		var userErr error
		repos, userErr = s.client.UserRepositories(ctx, spec)
		if userErr != nil {
			return nil, fmt.Errorf("%w for %s: %w", ErrNoRepositories, spec, errors.Join(orgErr, userErr))
		}
	}

	names := make([]string, 0, len(repos))
	for _, repo := range repos {
		if repo.GetArchived() {
			continue
		}
		names = append(names, repo.GetFullName())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoRepositories, spec)
	}
	return names, nil
}

// PullRequestNumber parses arg, or prompts for one of repo's open pull requests when arg is empty
func (s *StatusService) PullRequestNumber(ctx context.Context, repo, arg string) (int, error) {
	if arg != "" {
		number, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
		if err != nil {
			return 0, fmt.Errorf("invalid PR number: %w", err)
		}
		if number <= 0 {
			return 0, fmt.Errorf("PR number must be positive")
		}
		return number, nil
	}

	prs, err := s.client.PullRequests(ctx, repo)
	if err != nil {
		return 0, fmt.Errorf("failed to list open PRs: %w", err)
	}
	infos := make([]models.PullRequestInfo, 0, len(prs))
	for _, pr := range prs {
		infos = append(infos, models.NewPullRequestInfo(pr))
	}
	return s.prompter.SelectPR(infos)
}

func (s *StatusService) identity(ctx context.Context) (string, error) {
	self, err := s.client.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	if self == "" {
		return "", fmt.Errorf("%w: empty login", ErrAuthentication)
	}
	return self, nil
}

func (s *StatusService) evaluateRepository(ctx context.Context, self, repo string, summary *Summary) {
	log := s.log.WithValues("repo", repo)

	prs, err := s.client.PullRequests(ctx, repo)
	if err != nil {
		log.Error(err, "failed to list pull requests")
		summary.fail(err)
		return
	}
	summary.addRepository()

	prs, err = s.filter(ctx, self, repo, prs)
	if err != nil {
		log.Error(err, "failed to filter pull requests")
		summary.fail(err)
		return
	}
	if len(prs) == 0 {
		log.Debug("no open pull requests")
		return
	}

	heads := s.baseHeads(ctx, repo, prs)

	var wg sync.WaitGroup
	for _, pr := range prs {
		wg.Add(1)
		go func(pr *gogithub.PullRequest) {
			defer wg.Done()
			head := heads[pr.GetBase().GetRef()]
			row := s.evaluatePullRequest(ctx, self, repo, pr, head.sha, head.err)
			if s.opts.NeedRebase && !row.Degraded() && row.Rebased {
				return
			}
			summary.addRow(row)
			s.sink.Add(row)
		}(pr)
	}
	wg.Wait()
}

func (s *StatusService) filter(ctx context.Context, self, repo string, prs []*gogithub.PullRequest) ([]*gogithub.PullRequest, error) {
	var requested map[int]bool
	if s.opts.RequestedOnly {
		var err error
		requested, err = s.client.ReviewRequested(ctx, repo, self)
		if err != nil {
			return nil, err
		}
	}

	filtered := make([]*gogithub.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if s.opts.Author != "" && pr.GetUser().GetLogin() != s.opts.Author {
			continue
		}
		if s.opts.RequestedOnly && !requested[pr.GetNumber()] {
			continue
		}
		filtered = append(filtered, pr)
	}
	return filtered, nil
}

type baseHead struct {
	sha string
	err error
}

// baseHeads looks up the head commit of every distinct base ref once
func (s *StatusService) baseHeads(ctx context.Context, repo string, prs []*gogithub.PullRequest) map[string]baseHead {
	var refs []string
	seen := make(map[string]bool)
	for _, pr := range prs {
		ref := pr.GetBase().GetRef()
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}

	heads := make(map[string]baseHead, len(refs))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, ref := range refs {
		wg.Add(1)
		go func(ref string) {
			defer wg.Done()
			sha, err := s.client.BranchHead(ctx, repo, ref)
			mu.Lock()
			defer mu.Unlock()
			heads[ref] = baseHead{sha: sha, err: err}
		}(ref)
	}
	wg.Wait()
	return heads
}

// evaluatePullRequest fetches detail, labels and reviews concurrently and evaluates.
// A failed detail or base lookup yields a degraded row rather than no row.
func (s *StatusService) evaluatePullRequest(ctx context.Context, self, repo string, pr *gogithub.PullRequest, baseHead string, baseErr error) models.Row {
	var (
		wg        sync.WaitGroup
		bundle    *models.PullRequest
		detailErr error
		labels    []*gogithub.Label
		labelsErr error
		reviews   []*gogithub.PullRequestReview
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		bundle, detailErr = s.client.PullDetail(ctx, pr)
	}()
	go func() {
		defer wg.Done()
		labels, labelsErr = s.client.Labels(ctx, pr)
	}()
	go func() {
		defer wg.Done()
		reviews = s.client.Reviews(ctx, pr)
	}()
	wg.Wait()

	if labelsErr != nil {
		s.log.Debug("labels unavailable", "repo", repo, "number", pr.GetNumber(), "error", labelsErr.Error())
	}

	if detailErr == nil && baseErr != nil {
		detailErr = fmt.Errorf("failed to resolve base %s: %w", pr.GetBase().GetRef(), baseErr)
	}
	if detailErr != nil {
		partial := models.NewPullRequest(pr)
		if partial.Repo == "" {
			partial.Repo = repo
		}
		partial.Labels = labels
		s.log.Error(detailErr, "rendering degraded row", "repo", repo, "number", pr.GetNumber())
		return models.NewDegradedRow(partial, detailErr)
	}

	if bundle.Repo == "" {
		bundle.Repo = repo
	}
	bundle.Labels = labels

	verdict := evaluator.Evaluate(evaluator.Input{
		Username:        self,
		BaseHeadSHA:     baseHead,
		PullRequest:     bundle,
		Reviews:         reviews,
		MinApprovals:    s.opts.MinApprovals,
		IgnoredContexts: s.opts.IgnoredContexts[strings.ToLower(repo)],
	})
	return models.NewRow(bundle, verdict)
}
