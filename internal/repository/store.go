// Package store keeps snapshots of live calls for the admin surface. Rows
// exist only while the call is live.
package store

import (
	"context"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

// Store defines the interface for live call snapshots.
type Store interface {
	UpsertCall(ctx context.Context, call domain.CallInfo) error
	DeleteCall(ctx context.Context, callID string) error
	GetCall(ctx context.Context, callID string) (*domain.CallInfo, error)
	ListCalls(ctx context.Context, status domain.CallStatus) ([]domain.CallInfo, error)

	// Lifecycle
	Close() error
}
