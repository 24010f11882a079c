// Package statemachine enforces the order lifecycle. Orders only ever move
// forward, one step at a time: ordered -> preparing -> ready -> completed.
// There is no cancellation and no terminal-failure state.
package statemachine

import (
	"fmt"

	"canteen-rush/internal/apperrors"
	"canteen-rush/internal/models"
)

var next = map[models.OrderStatus]models.OrderStatus{
	models.StatusOrdered:   models.StatusPreparing,
	models.StatusPreparing: models.StatusReady,
	models.StatusReady:     models.StatusCompleted,
}

// CanTransition reports whether to is the single legal successor of from.
func CanTransition(from, to models.OrderStatus) bool {
	n, ok := next[from]
	return ok && n == to
}

// Validate returns ErrIllegalTransition unless to is the legal successor
// of from. Skips and regressions both fail; completed is terminal.
func Validate(from, to models.OrderStatus) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: unknown status %q", apperrors.ErrIllegalTransition, string(to))
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: cannot move %s to %s", apperrors.ErrIllegalTransition, from, to)
	}
	return nil
}
