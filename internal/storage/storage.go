package storage

import (
	"context"
	"time"

	"github.com/bcnelson/cicd-wizard/internal/domain"
)

// Storage defines the interface for the storage layer.
// Implementations must be safe for concurrent use and must not share
// mutable state with callers: sessions passed in and handed out are copies.
type Storage interface {
	// Close closes the storage connection.
	Close() error

	// Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	// DeleteExpiredSessions removes sessions last updated before the cutoff
	// and reports how many were removed.
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int, error)
	CountSessions(ctx context.Context) (int, error)
}
