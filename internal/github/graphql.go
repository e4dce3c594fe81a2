package github

import (
	"context"
	"fmt"

	graphql "github.com/cli/shurcooL-graphql"
)

// GraphQLQuerier runs GraphQL queries. *api.GraphQLClient from go-gh satisfies it.
type GraphQLQuerier interface {
	QueryWithContext(ctx context.Context, name string, q interface{}, variables map[string]interface{}) error
}

// ReviewRequested returns the numbers of the open pull requests in repo that
// request a review from login.
func (c *Client) ReviewRequested(ctx context.Context, repo, login string) (map[int]bool, error) {
	// NOTE: https://github.com/cli/go-gh/blob/a08820a13f257d6c5b4cb86d37db559ec6d14577/example_gh_test.go#L233
	var q struct {
		Search struct {
			Nodes []struct {
				PullRequest struct {
					Number int
				} `graphql:"... on PullRequest"`
			}
			PageInfo struct {
				HasNextPage bool
				EndCursor   string
			}
		} `graphql:"search(type: ISSUE, query: $query, first: $first, after: $endCursor)"`
	}

	variables := map[string]interface{}{
		"query":     graphql.String(fmt.Sprintf("repo:%s is:pr state:open review-requested:%s", repo, login)),
		"first":     graphql.Int(100),
		"endCursor": (*graphql.String)(nil),
	}

	numbers := make(map[int]bool)
	for {
		q.Search.Nodes = nil
		if err := c.gql.QueryWithContext(ctx, "ReviewRequested", &q, variables); err != nil {
			return nil, fmt.Errorf("failed to search review requests: %w", err)
		}
		for _, node := range q.Search.Nodes {
			numbers[node.PullRequest.Number] = true
		}
		if !q.Search.PageInfo.HasNextPage {
			return numbers, nil
		}
		variables["endCursor"] = graphql.NewString(graphql.String(q.Search.PageInfo.EndCursor))
	}
}
