package httpapi

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"livesched-engine/internal/config"
	"livesched-engine/internal/events"
	"livesched-engine/internal/feed"
	"livesched-engine/internal/snapshot"
	"livesched-engine/internal/store"
)

// FeedService is the part of *feed.Poller the handlers use.
type FeedService interface {
	Snapshot() *snapshot.Snapshot
	Status() feed.Status
	RefreshOnce(ctx context.Context, reqID string) error
}

type RefreshHistory interface {
	RecentRefreshes(ctx context.Context, limit int) ([]store.RefreshRecord, error)
}

type Deps struct {
	Feed    FeedService
	History RefreshHistory // optional

	Hub *events.Hub
	Log *zap.Logger

	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath   string
	LoadCfg       func() (config.Config, error)
	OnConfigSaved func(config.Config)

	AllowedOrigins []string

	// /shutdown is only mounted when both are set.
	ShutdownToken string
	Shutdown      func()
}
