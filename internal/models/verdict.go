package models

import (
	"fmt"
	"strings"
)

// ApprovalSet maps approving logins to the texts that approved, in discovery order.
type ApprovalSet struct {
	logins []string
	texts  map[string][]string
}

// NewApprovalSet returns an empty set
func NewApprovalSet() *ApprovalSet {
	return &ApprovalSet{texts: make(map[string][]string)}
}

// Add records an approval. The first approval of a login creates its entry;
// later ones only append text.
func (a *ApprovalSet) Add(login, text string) {
	if _, ok := a.texts[login]; !ok {
		a.logins = append(a.logins, login)
		a.texts[login] = []string{}
	}
	a.texts[login] = append(a.texts[login], text)
}

// Len returns the number of distinct approvers
func (a *ApprovalSet) Len() int {
	if a == nil {
		return 0
	}
	return len(a.logins)
}

// Has reports whether login approved
func (a *ApprovalSet) Has(login string) bool {
	if a == nil {
		return false
	}
	_, ok := a.texts[login]
	return ok
}

// Logins returns approvers in discovery order
func (a *ApprovalSet) Logins() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.logins...)
}

// Texts returns the approval texts of login
func (a *ApprovalSet) Texts(login string) []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.texts[login]...)
}

// Detail renders one "login: text" line per approval.
func (a *ApprovalSet) Detail() string {
	var b strings.Builder
	for _, login := range a.Logins() {
		for _, text := range a.texts[login] {
			fmt.Fprintf(&b, "%s: %s\n", login, text)
		}
	}
	return b.String()
}

// CIState is the state of a status context or of a whole PR
type CIState string

// CIState values.
const (
	CIStateNone    CIState = "none"
	CIStatePending CIState = "pending"
	CIStateSuccess CIState = "success"
	CIStateFailure CIState = "failure"
)

// ContextState is the aggregated state of one CI context
type ContextState struct {
	Context string
	State   CIState
}

// CIStatus holds the per-context states, sorted by context name
type CIStatus struct {
	State    CIState
	Contexts []ContextState
}

// HasFailure reports whether any context failed
func (c CIStatus) HasFailure() bool {
	for _, ctx := range c.Contexts {
		if ctx.State == CIStateFailure {
			return true
		}
	}
	return false
}

// Classification groups a PR by what the viewer should do about it
type Classification string

// Classification values, in priority order.
const (
	ClassSuccess Classification = "success"
	ClassInfo    Classification = "info"
	ClassWarning Classification = "warning"
	ClassDanger  Classification = "danger"
	ClassNeutral Classification = ""
)

// Rank orders classifications for display; lower sorts first.
func (c Classification) Rank() int {
	switch c {
	case ClassSuccess:
		return 0
	case ClassInfo:
		return 1
	case ClassWarning:
		return 2
	case ClassDanger:
		return 3
	default:
		return 4
	}
}

// Verdict is the evaluation result for one pull request
type Verdict struct {
	IsOwner         bool
	Approvals       *ApprovalSet
	ApprovalCount   int
	Approved        bool
	IHaveApproved   bool
	IsRebased       bool
	CI              CIStatus
	NeedsMyApproval bool
	Classification  Classification
}
