package constants

// ExpenseStatus is the canonical workflow status for rows in expenses.
type ExpenseStatus string

// Stable values (store these exact strings in DB).
const (
	StatusDraft      ExpenseStatus = "DRAFT"      // record created, asset stored, not yet processed
	StatusProcessing ExpenseStatus = "PROCESSING" // extraction in progress
	StatusPending    ExpenseStatus = "PENDING"    // extraction succeeded, awaiting human review
	StatusFailed     ExpenseStatus = "FAILED"     // terminal for automated processing
	StatusApproved   ExpenseStatus = "APPROVED"
	StatusRejected   ExpenseStatus = "REJECTED"
)

// transitions holds the legal workflow moves. FAILED has no outgoing edges;
// manual re-submission creates a new record instead.
var transitions = map[ExpenseStatus][]ExpenseStatus{
	StatusDraft:      {StatusProcessing},
	StatusProcessing: {StatusPending, StatusFailed},
	StatusPending:    {StatusApproved, StatusRejected},
}

// CanTransition reports whether from -> to is a legal workflow step.
func CanTransition(from, to ExpenseStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether automated processing stops at this status.
func (s ExpenseStatus) IsTerminal() bool {
	return s == StatusPending || s == StatusFailed || s == StatusApproved || s == StatusRejected
}
