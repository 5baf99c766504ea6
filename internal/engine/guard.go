package engine

import (
	"github.com/swiftcab/swiftcab-backend/internal/models"
)

// transitions is the single source of truth for the booking lifecycle.
// Pending is initial; Completed and Cancelled are terminal.
var transitions = map[models.BookingStatus]map[models.BookingStatus]bool{
	models.BookingStatusPending: {
		models.BookingStatusAccepted:  true,
		models.BookingStatusCancelled: true,
	},
	models.BookingStatusAccepted: {
		models.BookingStatusCompleted: true,
		models.BookingStatusCancelled: true,
	},
}

// CanTransition reports whether from -> to is a valid lifecycle edge.
func CanTransition(from, to models.BookingStatus) bool {
	return transitions[from][to]
}

// CheckTransition validates a lifecycle move and returns an
// InvalidTransitionError naming the attempted edge when it is not allowed.
// This is the business-rule check; the repository's compare-and-set is the
// final enforcement point against races.
func CheckTransition(from, to models.BookingStatus) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(s models.BookingStatus) bool {
	return len(transitions[s]) == 0
}

// ValidStatus reports whether s is one of the four booking statuses.
func ValidStatus(s models.BookingStatus) bool {
	switch s {
	case models.BookingStatusPending, models.BookingStatusAccepted,
		models.BookingStatusCompleted, models.BookingStatusCancelled:
		return true
	}
	return false
}
