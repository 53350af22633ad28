package engine

import (
	"context"

	"paper-core/internal/strategy"
	"paper-core/pkg/db"
)

// Service is the engine surface the control API consumes.
type Service interface {
	State() State
	Status() Status
	Paused() bool
	Pause()
	Resume()
	Reset()
	SetStrategyEnabled(name string, enabled bool) (strategy.Kind, error)
	ClearNotices()
	Save(ctx context.Context, store *db.Store) error
}

var _ Service = (*Engine)(nil)
