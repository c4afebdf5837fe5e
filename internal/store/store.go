package store

import (
	"context"

	"github.com/crisphq/crisp-interview/internal/models"
)

// RootKey is the fixed key the full session snapshot lives under.
const RootKey = "crisp:interview:root"

// Store persists the engine's session snapshot so an in-progress
// interview survives a restart (the welcome-back flow). In-flight
// network handles are never part of the snapshot.
type Store interface {
	Save(ctx context.Context, s *models.SessionState) error
	Load(ctx context.Context) (*models.SessionState, bool, error)
	Clear(ctx context.Context) error
}
