// Package evaluator derives a merge-readiness verdict from a pull request bundle.
package evaluator

import (
	"sort"
	"strings"

	gogithub "github.com/google/go-github/v68/github"
	"github.com/ryo246912/gh-pr-status/internal/models"
)

// DefaultMinApprovals is the approval threshold when none is configured
const DefaultMinApprovals = 2

const reviewStateApproved = "APPROVED"

// approvalMarkers are matched case-sensitively against raw comment text.
var approvalMarkers = []string{":+1:", ":thumbsup:", "LGTM"}

// Input is everything a verdict depends on
type Input struct {
	Username        string
	BaseHeadSHA     string
	PullRequest     *models.PullRequest
	Reviews         []*gogithub.PullRequestReview
	MinApprovals    int
	IgnoredContexts []string
}

// Evaluate computes the verdict for one pull request
func Evaluate(in Input) models.Verdict {
	pr := in.PullRequest
	approvals := Approvals(pr.Comments, pr.ReviewComments, in.Reviews)

	v := models.Verdict{
		IsOwner:       pr.Author == in.Username,
		Approvals:     approvals,
		ApprovalCount: approvals.Len(),
		IHaveApproved: approvals.Has(in.Username),
		IsRebased:     IsRebased(pr.Commits, in.BaseHeadSHA),
		CI:            AggregateCI(pr.Statuses, in.IgnoredContexts),
	}
	v.Approved = v.ApprovalCount >= in.MinApprovals
	v.NeedsMyApproval = !v.IsOwner && !v.IHaveApproved
	v.Classification = Classify(v)
	return v
}

// IsApprovalText reports whether a comment body approves the PR
func IsApprovalText(body string) bool {
	for _, marker := range approvalMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}

// Approvals scans issue comments, then review comments, then reviews.
func Approvals(comments []*gogithub.IssueComment, reviewComments []*gogithub.PullRequestComment, reviews []*gogithub.PullRequestReview) *models.ApprovalSet {
	set := models.NewApprovalSet()
	for _, c := range comments {
		if IsApprovalText(c.GetBody()) {
			set.Add(c.GetUser().GetLogin(), c.GetBody())
		}
	}
	for _, c := range reviewComments {
		if IsApprovalText(c.GetBody()) {
			set.Add(c.GetUser().GetLogin(), c.GetBody())
		}
	}
	for _, r := range reviews {
		if r.GetState() == reviewStateApproved {
			set.Add(r.GetUser().GetLogin(), r.GetBody())
		}
	}
	return set
}

// IsRebased reports whether baseSHA is a direct parent of any commit.
// Only one level of ancestry is checked.
func IsRebased(commits []*gogithub.RepositoryCommit, baseSHA string) bool {
	if baseSHA == "" {
		return false
	}
	for _, commit := range commits {
		for _, parent := range commit.Parents {
			if parent.GetSHA() == baseSHA {
				return true
			}
		}
	}
	return false
}

// AggregateCI folds statuses into one state per context.
// Within a context a failure outranks a success, which outranks anything else.
func AggregateCI(statuses []*gogithub.RepoStatus, ignored []string) models.CIStatus {
	skip := make(map[string]bool, len(ignored))
	for _, name := range ignored {
		skip[name] = true
	}

	byContext := make(map[string]models.CIState)
	for _, status := range statuses {
		name := status.GetContext()
		if skip[name] {
			continue
		}
		current, seen := byContext[name]
		if !seen {
			current = models.CIStatePending
		}
		byContext[name] = merge(current, normalize(status.GetState()))
	}

	if len(byContext) == 0 {
		return models.CIStatus{State: models.CIStateNone}
	}

	names := make([]string, 0, len(byContext))
	for name := range byContext {
		names = append(names, name)
	}
	sort.Strings(names)

	result := models.CIStatus{Contexts: make([]models.ContextState, 0, len(names))}
	successes := 0
	for _, name := range names {
		state := byContext[name]
		result.Contexts = append(result.Contexts, models.ContextState{Context: name, State: state})
		if state == models.CIStateSuccess {
			successes++
		}
	}

	switch {
	case result.HasFailure():
		result.State = models.CIStateFailure
	case successes == len(names):
		result.State = models.CIStateSuccess
	default:
		result.State = models.CIStatePending
	}
	return result
}

func normalize(state string) models.CIState {
	switch state {
	case "success":
		return models.CIStateSuccess
	case "failure", "error":
		return models.CIStateFailure
	default:
		return models.CIStatePending
	}
}

func merge(current, next models.CIState) models.CIState {
	if current == models.CIStateFailure || next == models.CIStateFailure {
		return models.CIStateFailure
	}
	if current == models.CIStateSuccess || next == models.CIStateSuccess {
		return models.CIStateSuccess
	}
	return models.CIStatePending
}

// Classify picks the first matching classification.
func Classify(v models.Verdict) models.Classification {
	switch {
	case v.Approved && v.IsRebased:
		return models.ClassSuccess
	case !v.IHaveApproved && !v.IsOwner:
		return models.ClassInfo
	case v.IsOwner && !v.IsRebased:
		return models.ClassWarning
	case v.CI.HasFailure():
		return models.ClassDanger
	default:
		return models.ClassNeutral
	}
}
