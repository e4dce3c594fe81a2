package models

import (
	gogithub "github.com/google/go-github/v68/github"
)

// PullRequestInfo represents PR metadata shown in selection prompts
type PullRequestInfo struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	User      string `json:"user"`
	BaseRef   string `json:"base_ref"`
	Draft     bool   `json:"draft"`
	UpdatedAt string `json:"updated_at"`
}

// PullRequest is the data bundle a verdict is computed from.
// A refresh builds a new bundle; nothing is updated in place.
type PullRequest struct {
	Repo     string
	Number   int
	Title    string
	Author   string
	HeadRef  string
	BaseRef  string
	HeadRepo string
	BaseRepo string
	HeadSHA  string
	HTMLURL  string

	Comments       []*gogithub.IssueComment
	ReviewComments []*gogithub.PullRequestComment
	Commits        []*gogithub.RepositoryCommit
	Statuses       []*gogithub.RepoStatus
	Labels         []*gogithub.Label
}

// NewPullRequest copies the identifying fields of a pull request payload.
func NewPullRequest(pr *gogithub.PullRequest) *PullRequest {
	return &PullRequest{
		Repo:     pr.GetBase().GetRepo().GetFullName(),
		Number:   pr.GetNumber(),
		Title:    pr.GetTitle(),
		Author:   pr.GetUser().GetLogin(),
		HeadRef:  pr.GetHead().GetRef(),
		BaseRef:  pr.GetBase().GetRef(),
		HeadRepo: pr.GetHead().GetRepo().GetFullName(),
		BaseRepo: pr.GetBase().GetRepo().GetFullName(),
		HeadSHA:  pr.GetHead().GetSHA(),
		HTMLURL:  pr.GetHTMLURL(),
	}
}

// NewPullRequestInfo converts a pull request payload for prompting
func NewPullRequestInfo(pr *gogithub.PullRequest) PullRequestInfo {
	return PullRequestInfo{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		User:      pr.GetUser().GetLogin(),
		BaseRef:   pr.GetBase().GetRef(),
		Draft:     pr.GetDraft(),
		UpdatedAt: pr.GetUpdatedAt().Format("2006-01-02 15:04"),
	}
}

// LabelNames returns the label names in API order
func (p *PullRequest) LabelNames() []string {
	names := make([]string, 0, len(p.Labels))
	for _, label := range p.Labels {
		names = append(names, label.GetName())
	}
	return names
}
