package github

import (
	"fmt"
	"strings"

	gogithub "github.com/google/go-github/v68/github"
)

// Shape tells whether a PR payload carried its sub-resource URLs
type Shape int

const (
	// ShapeProvided payloads carry commits_url and statuses_url.
	ShapeProvided Shape = iota
	// ShapeDerived payloads come from older API versions; the URLs are built from other fields.
	ShapeDerived
)

func (s Shape) String() string {
	if s == ShapeDerived {
		return "derived"
	}
	return "provided"
}

// Endpoints locates the sub-resources of one pull request.
type Endpoints struct {
	Shape          Shape
	Comments       string
	ReviewComments string
	Commits        string
	Statuses       string
	Reviews        string
	Labels         string
}

// ResolveEndpoints selects the shape once from the payload and builds every URL.
func ResolveEndpoints(pr *gogithub.PullRequest) Endpoints {
	base := pr.GetBase().GetRepo().GetFullName()
	e := Endpoints{
		Comments:       pr.GetCommentsURL(),
		ReviewComments: pr.GetReviewCommentsURL(),
		Reviews:        pr.GetURL() + "/reviews",
		Labels:         pr.GetIssueURL() + "/labels",
	}
	if e.Comments == "" {
		e.Comments = fmt.Sprintf("repos/%s/issues/%d/comments", base, pr.GetNumber())
	}
	if e.ReviewComments == "" {
		e.ReviewComments = fmt.Sprintf("repos/%s/pulls/%d/comments", base, pr.GetNumber())
	}
	if pr.GetURL() == "" {
		e.Reviews = fmt.Sprintf("repos/%s/pulls/%d/reviews", base, pr.GetNumber())
	}
	if pr.GetIssueURL() == "" {
		e.Labels = fmt.Sprintf("repos/%s/issues/%d/labels", base, pr.GetNumber())
	}

	if pr.GetCommitsURL() != "" && pr.GetStatusesURL() != "" {
		e.Shape = ShapeProvided
		e.Commits = pr.GetCommitsURL()
		e.Statuses = pr.GetStatusesURL()
		return e
	}

	e.Shape = ShapeDerived
	e.Commits = pr.GetURL() + "/commits"
	if pr.GetURL() == "" {
		e.Commits = fmt.Sprintf("repos/%s/pulls/%d/commits", base, pr.GetNumber())
	}
	template := pr.GetBase().GetRepo().GetStatusesURL()
	if template == "" {
		template = fmt.Sprintf("repos/%s/statuses/{sha}", base)
	}
	e.Statuses = strings.ReplaceAll(template, "{sha}", pr.GetHead().GetSHA())
	return e
}
