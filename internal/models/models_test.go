package models

import (
	"errors"
	"testing"

	gogithub "github.com/google/go-github/v68/github"
	"github.com/stretchr/testify/assert"
)

func TestApprovalSet(t *testing.T) {
	set := NewApprovalSet()
	set.Add("bob", "LGTM")
	set.Add("alice", ":+1:")
	set.Add("bob", "LGTM again")

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Has("alice"))
	assert.False(t, set.Has("carol"))
	assert.Equal(t, []string{"bob", "alice"}, set.Logins())
	assert.Equal(t, []string{"LGTM", "LGTM again"}, set.Texts("bob"))
	assert.Equal(t, "bob: LGTM\nbob: LGTM again\nalice: :+1:\n", set.Detail())
}

func TestApprovalSet_Nil(t *testing.T) {
	var set *ApprovalSet
	assert.Zero(t, set.Len())
	assert.False(t, set.Has("bob"))
	assert.Empty(t, set.Logins())
}

func TestClassificationRank(t *testing.T) {
	order := []Classification{ClassSuccess, ClassInfo, ClassWarning, ClassDanger, ClassNeutral}
	for i := 1; i < len(order); i++ {
		assert.Less(t, order[i-1].Rank(), order[i].Rank(), "%q before %q", order[i-1], order[i])
	}
}

func TestRowLess(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Row
		expected bool
	}{
		{
			name:     "classification first",
			a:        Row{Classification: ClassSuccess, ApprovalCount: 0},
			b:        Row{Classification: ClassInfo, ApprovalCount: 5},
			expected: true,
		},
		{
			name:     "more approvals first",
			a:        Row{Classification: ClassInfo, ApprovalCount: 1},
			b:        Row{Classification: ClassInfo, ApprovalCount: 3},
			expected: false,
		},
		{
			name:     "repository then number",
			a:        Row{Repo: "octo/api", Number: 9},
			b:        Row{Repo: "octo/app", Number: 1},
			expected: true,
		},
		{
			name:     "same key",
			a:        Row{Repo: "octo/app", Number: 1},
			b:        Row{Repo: "octo/app", Number: 1},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Less(tt.b))
		})
	}
}

func TestNewRow(t *testing.T) {
	pr := NewPullRequest(&gogithub.PullRequest{
		Number:  gogithub.Ptr(4),
		Title:   gogithub.Ptr("Add thing"),
		HTMLURL: gogithub.Ptr("https://github.com/octo/app/pull/4"),
		User:    &gogithub.User{Login: gogithub.Ptr("alice")},
		Head:    &gogithub.PullRequestBranch{Ref: gogithub.Ptr("feature"), SHA: gogithub.Ptr("abc")},
		Base: &gogithub.PullRequestBranch{
			Ref:  gogithub.Ptr("main"),
			Repo: &gogithub.Repository{FullName: gogithub.Ptr("octo/app")},
		},
	})
	pr.Labels = []*gogithub.Label{{Name: gogithub.Ptr("bug")}}

	approvals := NewApprovalSet()
	approvals.Add("bob", "LGTM")
	row := NewRow(pr, Verdict{
		Approvals:       approvals,
		ApprovalCount:   1,
		IsRebased:       true,
		NeedsMyApproval: true,
		Classification:  ClassInfo,
	})

	assert.Equal(t, "octo/app", row.Repo)
	assert.Equal(t, 4, row.Number)
	assert.Equal(t, "alice", row.Author)
	assert.Equal(t, "feature", row.HeadRef)
	assert.Equal(t, "main", row.BaseRef)
	assert.Equal(t, "bob: LGTM\n", row.ApprovalDetail)
	assert.True(t, row.Rebased)
	assert.False(t, row.Degraded())
	assert.Equal(t, []string{"bug"}, pr.LabelNames())

	degraded := NewDegradedRow(pr, errors.New("boom"))
	assert.True(t, degraded.Degraded())
	assert.Equal(t, ClassNeutral, degraded.Classification)
	assert.Equal(t, "octo/app", degraded.Repo)
}
