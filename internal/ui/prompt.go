package ui

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/ryo246912/gh-pr-status/internal/models"
)

// PRItems formats pull requests as aligned prompt lines
func PRItems(prs []models.PullRequestInfo) []string {
	items := make([]string, len(prs))
	for i, pr := range prs {
		base := pr.BaseRef
		if pr.Draft {
			base += " (Draft)"
		}
		items[i] = fmt.Sprintf(
			"#%s %s %s %s %s",
			PadRight(fmt.Sprintf("%-6d", pr.Number), 7),
			PadRight(Truncate(pr.Title, 75), 75),
			PadRight(pr.User, 15),
			PadRight(base, 20),
			PadRight(pr.UpdatedAt, 16),
		)
	}
	return items
}

func SelectPR(prs []models.PullRequestInfo) (int, error) {
	if len(prs) == 0 {
		return 0, fmt.Errorf("no open pull requests found")
	}

	items := PRItems(prs)
	prompt := promptui.Select{
		Label: "Select PR",
		Items: items,
		Size:  12,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(input))
		},
		StartInSearchMode: true,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("prompt failed: %w", err)
	}
	return prs[idx].Number, nil
}

// SelectFavorite shows the saved repository specs
func SelectFavorite(specs []string) (string, error) {
	if len(specs) == 0 {
		return "", fmt.Errorf("no favorites saved")
	}

	prompt := promptui.Select{
		Label: "Select favorite to remove",
		Items: specs,
		Size:  12,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(specs[index]), strings.ToLower(input))
		},
		StartInSearchMode: true,
	}

	_, selected, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("favorite selection failed: %w", err)
	}
	return selected, nil
}
