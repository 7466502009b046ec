// Package activity keeps an append-only journal of loan lifecycle events
// for reporting. It is secondary storage: the loan tables stay the source
// of truth.
package activity

import (
	"context"

	"github.com/MANUEL666GAMER/Biblioteca/model"
)

// Journal defines the operations of a loan event store.
type Journal interface {
	Record(ctx context.Context, ev model.LoanEvent) error
	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]model.LoanEvent, error)

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
