package services

import "civic-issue-tracker/models"

// The lifecycle transition table. The admin path may move any non-terminal
// issue to one of five target statuses; the reporting citizen's only
// transition is into pending-verification by submitting proof; verification
// moves pending-verification to resolved. Resolved and rejected are final.

// adminStatusTargets are the statuses an admin status update may set
// directly. pending-verification is excluded: it is entered only through
// the citizen proof-submission path.
var adminStatusTargets = map[models.IssueStatus]bool{
	models.Pending:     true,
	models.UnderReview: true,
	models.InProgress:  true,
	models.Resolved:    true,
	models.Rejected:    true,
}

// proofSources are the statuses from which the reporting citizen may move
// an issue into pending-verification.
var proofSources = map[models.IssueStatus]bool{
	models.Pending:     true,
	models.UnderReview: true,
	models.InProgress:  true,
}

// CheckAdminTransition validates an admin-path status change from one
// status to another.
func CheckAdminTransition(from, to models.IssueStatus) error {
	if !adminStatusTargets[to] {
		return validationf("invalid status value %q", to)
	}
	if from.Terminal() {
		return ErrPrecondition
	}
	return nil
}

// CheckProofTransition validates the citizen proof-submission transition
// into pending-verification.
func CheckProofTransition(from models.IssueStatus) error {
	if !proofSources[from] {
		return ErrPrecondition
	}
	return nil
}

// CheckVerifyTransition validates the admin verification transition.
// Verification is permitted only from pending-verification.
func CheckVerifyTransition(from models.IssueStatus) error {
	if from != models.PendingVerification {
		return ErrPrecondition
	}
	return nil
}
