package order

import (
	"dinepos/internal/models"
)

// allowedTransitions is the authoritative state machine definition. Every
// status check in the codebase goes through this table; do not duplicate it
// at call sites.
//
// Payment can be deferred from any pre-terminal state ("pay later"), but
// closed is only reachable through served or pending_payment - jumping
// straight from the kitchen states to closed would skip settlement.
// pending_payment -> active exists to undo a mistaken pay-later flag.
var allowedTransitions = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.StatusActive: {
		models.StatusPreparing:      true,
		models.StatusPendingPayment: true,
		models.StatusCancelled:      true,
	},
	models.StatusPreparing: {
		models.StatusReady:          true,
		models.StatusPendingPayment: true,
		models.StatusCancelled:      true,
	},
	models.StatusReady: {
		models.StatusServed:         true,
		models.StatusPendingPayment: true,
		models.StatusCancelled:      true,
	},
	models.StatusServed: {
		models.StatusPendingPayment: true,
		models.StatusClosed:         true,
		models.StatusCancelled:      true,
	},
	models.StatusPendingPayment: {
		models.StatusClosed:    true,
		models.StatusActive:    true,
		models.StatusCancelled: true,
	},
	models.StatusClosed:    {},
	models.StatusCancelled: {},
}

// CanTransition checks if from->to is an allowed edge.
func CanTransition(from, to models.OrderStatus) bool {
	nexts, ok := allowedTransitions[from]
	return ok && nexts[to]
}

// Terminal reports whether a status has no outgoing transitions.
func Terminal(s models.OrderStatus) bool {
	return s == models.StatusClosed || s == models.StatusCancelled
}

// NextStates returns all valid next states from a given state.
func NextStates(from models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, s := range allStatuses {
		if allowedTransitions[from][s] {
			nexts = append(nexts, s)
		}
	}
	return nexts
}

var allStatuses = []models.OrderStatus{
	models.StatusActive,
	models.StatusPreparing,
	models.StatusReady,
	models.StatusServed,
	models.StatusPendingPayment,
	models.StatusClosed,
	models.StatusCancelled,
}

// ParseStatus validates a raw string against the known statuses.
func ParseStatus(raw string) (models.OrderStatus, bool) {
	s := models.OrderStatus(raw)
	for _, known := range allStatuses {
		if s == known {
			return s, true
		}
	}
	return "", false
}
