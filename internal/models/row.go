package models

import (
	gogithub "github.com/google/go-github/v68/github"
)

// Row is what the presentation sink receives for one evaluated pull request.
type Row struct {
	Repo            string
	Number          int
	Title           string
	HTMLURL         string
	Author          string
	HeadRef         string
	BaseRef         string
	ApprovalCount   int
	ApprovalDetail  string
	Rebased         bool
	CI              CIStatus
	NeedsMyApproval bool
	Labels          []*gogithub.Label
	Classification  Classification

	// Err is set when the bundle could not be fetched; counts and flags are unknown.
	Err error
}

// NewRow combines a bundle and its verdict
func NewRow(pr *PullRequest, v Verdict) Row {
	return Row{
		Repo:            pr.Repo,
		Number:          pr.Number,
		Title:           pr.Title,
		HTMLURL:         pr.HTMLURL,
		Author:          pr.Author,
		HeadRef:         pr.HeadRef,
		BaseRef:         pr.BaseRef,
		ApprovalCount:   v.ApprovalCount,
		ApprovalDetail:  v.Approvals.Detail(),
		Rebased:         v.IsRebased,
		CI:              v.CI,
		NeedsMyApproval: v.NeedsMyApproval,
		Labels:          pr.Labels,
		Classification:  v.Classification,
	}
}

// NewDegradedRow builds a row for a PR whose bundle could not be fetched.
func NewDegradedRow(pr *PullRequest, err error) Row {
	return Row{
		Repo:           pr.Repo,
		Number:         pr.Number,
		Title:          pr.Title,
		HTMLURL:        pr.HTMLURL,
		Author:         pr.Author,
		HeadRef:        pr.HeadRef,
		BaseRef:        pr.BaseRef,
		Labels:         pr.Labels,
		Classification: ClassNeutral,
		Err:            err,
	}
}

// Degraded reports whether the row carries unknown values
func (r Row) Degraded() bool {
	return r.Err != nil
}

// Less orders rows by classification, then approvals descending, then repository and number.
func (r Row) Less(other Row) bool {
	if r.Classification.Rank() != other.Classification.Rank() {
		return r.Classification.Rank() < other.Classification.Rank()
	}
	if r.ApprovalCount != other.ApprovalCount {
		return r.ApprovalCount > other.ApprovalCount
	}
	if r.Repo != other.Repo {
		return r.Repo < other.Repo
	}
	return r.Number < other.Number
}
