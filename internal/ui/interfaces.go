package ui

import "github.com/ryo246912/gh-pr-status/internal/models"

// Prompter defines interface for user interaction
type Prompter interface {
	SelectPR(prs []models.PullRequestInfo) (int, error)
	SelectFavorite(specs []string) (string, error)
}

// DefaultPrompter implements the actual prompting logic
type DefaultPrompter struct{}

// SelectPR prompts user to select a PR
func (p *DefaultPrompter) SelectPR(prs []models.PullRequestInfo) (int, error) {
	return SelectPR(prs)
}

// SelectFavorite prompts user to select a saved spec
func (p *DefaultPrompter) SelectFavorite(specs []string) (string, error) {
	return SelectFavorite(specs)
}

// MockPrompter for testing
type MockPrompter struct {
	SelectedPRNumber int
	PRSelectionError error

	SelectedFavorite       string
	FavoriteSelectionError error

	// Call tracking
	SelectPRCalled       bool
	SelectFavoriteCalled bool
	OfferedPRs           []models.PullRequestInfo
}

// SelectPR mocks PR selection
func (m *MockPrompter) SelectPR(prs []models.PullRequestInfo) (int, error) {
	m.SelectPRCalled = true
	m.OfferedPRs = prs
	return m.SelectedPRNumber, m.PRSelectionError
}

// SelectFavorite mocks favorite selection
func (m *MockPrompter) SelectFavorite(specs []string) (string, error) {
	m.SelectFavoriteCalled = true
	return m.SelectedFavorite, m.FavoriteSelectionError
}
