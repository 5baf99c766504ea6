package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/swiftcab/swiftcab-backend/internal/models"
)

func TestCheckTransition(t *testing.T) {
	allowed := map[[2]models.BookingStatus]bool{
		{models.BookingStatusPending, models.BookingStatusAccepted}:   true,
		{models.BookingStatusPending, models.BookingStatusCancelled}:  true,
		{models.BookingStatusAccepted, models.BookingStatusCompleted}: true,
		{models.BookingStatusAccepted, models.BookingStatusCancelled}: true,
	}

	statuses := []models.BookingStatus{
		models.BookingStatusPending,
		models.BookingStatusAccepted,
		models.BookingStatusCompleted,
		models.BookingStatusCancelled,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			err := CheckTransition(from, to)
			if allowed[[2]models.BookingStatus{from, to}] {
				assert.NoError(t, err, "%s -> %s should be allowed", from, to)
				continue
			}
			var transitionErr *InvalidTransitionError
			assert.ErrorAs(t, err, &transitionErr, "%s -> %s should be rejected", from, to)
			assert.Equal(t, from, transitionErr.From)
			assert.Equal(t, to, transitionErr.To)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(models.BookingStatusPending))
	assert.False(t, IsTerminal(models.BookingStatusAccepted))
	assert.True(t, IsTerminal(models.BookingStatusCompleted))
	assert.True(t, IsTerminal(models.BookingStatusCancelled))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(models.BookingStatusPending))
	assert.True(t, ValidStatus(models.BookingStatusCancelled))
	assert.False(t, ValidStatus(models.BookingStatus("rejected")))
	assert.False(t, ValidStatus(models.BookingStatus("")))
}
