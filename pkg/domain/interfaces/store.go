package interfaces

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/metgate/pkg/domain/model"
)

// ErrNoSnapshot is returned by LatestSnapshot when nothing has been stored
var ErrNoSnapshot = goerr.New("no forecast snapshot stored")

// Store persists forecast snapshots and the release gate audit log
type Store interface {
	// SaveSnapshot stores a fetched forecast response
	SaveSnapshot(ctx context.Context, snapshot *model.ForecastSnapshot) error

	// LatestSnapshot returns the most recently stored snapshot for the
	// given forecast type, or ErrNoSnapshot
	LatestSnapshot(ctx context.Context, forecastType model.ForecastType) (*model.ForecastSnapshot, error)

	// PruneSnapshots removes snapshots retrieved before the cutoff and
	// returns the number of rows removed
	PruneSnapshots(ctx context.Context, before time.Time) (int64, error)

	// SaveGateRun appends a gate run audit record
	SaveGateRun(ctx context.Context, run *model.GateRun) error

	// ListGateRuns returns the newest gate runs, most recent first
	ListGateRuns(ctx context.Context, limit int) ([]*model.GateRun, error)

	Close() error
}
