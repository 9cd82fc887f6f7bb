package order

import (
	"testing"

	"dinepos/internal/models"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to models.OrderStatus
		ok       bool
	}{
		{models.StatusActive, models.StatusPreparing, true},
		{models.StatusActive, models.StatusPendingPayment, true},
		{models.StatusActive, models.StatusCancelled, true},
		{models.StatusActive, models.StatusClosed, false}, // skipping settlement
		{models.StatusActive, models.StatusReady, false},
		{models.StatusActive, models.StatusServed, false},

		{models.StatusPreparing, models.StatusReady, true},
		{models.StatusPreparing, models.StatusPendingPayment, true},
		{models.StatusPreparing, models.StatusCancelled, true},
		{models.StatusPreparing, models.StatusClosed, false},
		{models.StatusPreparing, models.StatusServed, false},
		{models.StatusPreparing, models.StatusActive, false},

		{models.StatusReady, models.StatusServed, true},
		{models.StatusReady, models.StatusPendingPayment, true},
		{models.StatusReady, models.StatusCancelled, true},
		{models.StatusReady, models.StatusClosed, false},
		{models.StatusReady, models.StatusActive, false},

		{models.StatusServed, models.StatusPendingPayment, true},
		{models.StatusServed, models.StatusClosed, true},
		{models.StatusServed, models.StatusCancelled, true},
		{models.StatusServed, models.StatusActive, false},

		{models.StatusPendingPayment, models.StatusClosed, true},
		{models.StatusPendingPayment, models.StatusActive, true}, // undo pay-later
		{models.StatusPendingPayment, models.StatusCancelled, true},
		{models.StatusPendingPayment, models.StatusPreparing, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.ok {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, terminal := range []models.OrderStatus{models.StatusClosed, models.StatusCancelled} {
		if !Terminal(terminal) {
			t.Errorf("Terminal(%s) = false", terminal)
		}
		for _, to := range allStatuses {
			if CanTransition(terminal, to) {
				t.Errorf("terminal state %s must not transition to %s", terminal, to)
			}
		}
		if nexts := NextStates(terminal); len(nexts) != 0 {
			t.Errorf("NextStates(%s) = %v, want empty", terminal, nexts)
		}
	}
}

func TestNonTerminalStatesAreNotTerminal(t *testing.T) {
	for _, s := range []models.OrderStatus{
		models.StatusActive, models.StatusPreparing, models.StatusReady,
		models.StatusServed, models.StatusPendingPayment,
	} {
		if Terminal(s) {
			t.Errorf("Terminal(%s) = true", s)
		}
	}
}

func TestEveryStateIsReachableFromActive(t *testing.T) {
	reached := map[models.OrderStatus]bool{models.StatusActive: true}
	frontier := []models.OrderStatus{models.StatusActive}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		for _, next := range NextStates(cur) {
			if !reached[next] {
				reached[next] = true
				frontier = append(frontier, next)
			}
		}
	}
	for _, s := range allStatuses {
		if !reached[s] {
			t.Errorf("state %s unreachable from active", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range allStatuses {
		got, ok := ParseStatus(string(s))
		if !ok || got != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, got, ok)
		}
	}
	for _, bad := range []string{"", "ACTIVE", "done", "pending"} {
		if _, ok := ParseStatus(bad); ok {
			t.Errorf("ParseStatus(%q) accepted", bad)
		}
	}
}
