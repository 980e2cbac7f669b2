package services

import (
	"testing"

	"civic-issue-tracker/models"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []models.IssueStatus{
	models.Pending,
	models.UnderReview,
	models.InProgress,
	models.PendingVerification,
	models.Resolved,
	models.Rejected,
}

func TestCheckAdminTransition(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			err := CheckAdminTransition(from, to)
			switch {
			case to == models.PendingVerification:
				assert.ErrorIs(t, err, ErrValidation, "%s -> %s", from, to)
			case from.Terminal():
				assert.ErrorIs(t, err, ErrPrecondition, "%s -> %s", from, to)
			default:
				assert.NoError(t, err, "%s -> %s", from, to)
			}
		}
	}
}

func TestCheckAdminTransitionUnknownTarget(t *testing.T) {
	err := CheckAdminTransition(models.Pending, models.IssueStatus("escalated"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckProofTransition(t *testing.T) {
	for _, from := range allStatuses {
		err := CheckProofTransition(from)
		switch from {
		case models.Pending, models.UnderReview, models.InProgress:
			assert.NoError(t, err, "from %s", from)
		default:
			assert.ErrorIs(t, err, ErrPrecondition, "from %s", from)
		}
	}
}

func TestCheckVerifyTransition(t *testing.T) {
	for _, from := range allStatuses {
		err := CheckVerifyTransition(from)
		if from == models.PendingVerification {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, ErrPrecondition, "from %s", from)
		}
	}
}
