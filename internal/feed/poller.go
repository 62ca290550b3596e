package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"livesched-engine/internal/domain"
	"livesched-engine/internal/events"
	"livesched-engine/internal/scheduler"
	"livesched-engine/internal/snapshot"
	"livesched-engine/internal/store"
)

const (
	KindJobs   = "jobs"
	KindGroups = "groups"
)

// Cache persists raw feed payloads so a restart can serve the last data
// before the first fetch completes. *store.DB implements it.
type Cache interface {
	SaveFeed(ctx context.Context, kind string, body []byte, at time.Time) (bool, error)
	LoadFeed(ctx context.Context, kind string) (store.CachedFeed, bool, error)
	RecordRefresh(ctx context.Context, r store.RefreshRecord) (int64, error)
}

// Builder turns a pair of feeds into a servable snapshot.
type Builder func(domain.JobFeed, domain.GroupFeed) *snapshot.Snapshot

type Source struct {
	URL    string
	Format string
}

type Options struct {
	Jobs     Source
	Groups   Source
	Timeout  time.Duration
	Interval time.Duration
}

type Status struct {
	Running         bool   `json:"running"`
	LastRunAt       string `json:"lastRunAt,omitempty"`
	LastOkAt        string `json:"lastOkAt,omitempty"`
	LastError       string `json:"lastError,omitempty"`
	Jobs            int    `json:"jobs"`
	HostGroups      int    `json:"hostGroups"`
	BrandGroups     int    `json:"brandGroups"`
	JobsFetchedAt   string `json:"jobsFetchedAt,omitempty"`
	GroupsFetchedAt string `json:"groupsFetchedAt,omitempty"`
	WarmStarted     bool   `json:"warmStarted"`
}

type Poller struct {
	client *Client
	cache  Cache
	hub    *events.Hub
	log    *zap.Logger
	clock  clockwork.Clock

	snap   atomic.Pointer[snapshot.Snapshot]
	status atomic.Value // Status

	// mu serializes refreshes and guards everything below.
	mu         sync.Mutex
	opts       Options
	build      Builder
	jobs       domain.JobFeed
	groups     domain.GroupFeed
	jobsAt     time.Time
	groupsAt   time.Time
	haveJobs   bool
	haveGroups bool
}

type PollerDeps struct {
	Client *Client
	Cache  Cache
	Hub    *events.Hub
	Log    *zap.Logger
	Clock  clockwork.Clock
	Build  Builder
}

func NewPoller(opts Options, deps PollerDeps) *Poller {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Client == nil {
		deps.Client = NewClient(ClientOptions{Timeout: opts.Timeout})
	}
	if deps.Build == nil {
		deps.Build = func(j domain.JobFeed, g domain.GroupFeed) *snapshot.Snapshot {
			return snapshot.Build(j, g, snapshot.Deps{})
		}
	}
	p := &Poller{
		client: deps.Client,
		cache:  deps.Cache,
		hub:    deps.Hub,
		log:    deps.Log.Named("poll"),
		clock:  deps.Clock,
		opts:   withDefaults(opts),
		build:  deps.Build,
	}
	p.snap.Store(deps.Build(domain.JobFeed{}, domain.GroupFeed{}))
	p.status.Store(Status{})
	return p
}

func withDefaults(o Options) Options {
	if o.Timeout <= 0 {
		o.Timeout = 20 * time.Second
	}
	if o.Interval <= 0 {
		o.Interval = time.Minute
	}
	return o
}

// Snapshot is the data currently served. Never nil.
func (p *Poller) Snapshot() *snapshot.Snapshot { return p.snap.Load() }

func (p *Poller) Status() Status { return p.status.Load().(Status) }

// Reconfigure swaps sources and snapshot builder, then rebuilds the snapshot
// from the data already held so new matching settings apply at once.
func (p *Poller) Reconfigure(opts Options, build Builder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opts = withDefaults(opts)
	if build != nil {
		p.build = build
	}
	p.snap.Store(p.build(p.jobs, p.groups))
}

// WarmStart loads the cached payloads, if any, and serves them until the
// first successful fetch. Undecodable cache entries are ignored.
func (p *Poller) WarmStart(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	warmed := false
	if c, ok, err := p.cache.LoadFeed(ctx, KindJobs); err != nil {
		return fmt.Errorf("load cached jobs: %w", err)
	} else if ok {
		if f, err := DecodeJobs(c.Body, p.opts.Jobs.Format); err != nil {
			p.log.Warn("cached jobs unreadable", zap.Error(err))
		} else {
			p.jobs, p.jobsAt, p.haveJobs, warmed = f, c.FetchedAt, true, true
		}
	}
	if c, ok, err := p.cache.LoadFeed(ctx, KindGroups); err != nil {
		return fmt.Errorf("load cached groups: %w", err)
	} else if ok {
		if f, err := DecodeGroups(c.Body, p.opts.Groups.Format); err != nil {
			p.log.Warn("cached groups unreadable", zap.Error(err))
		} else {
			p.groups, p.groupsAt, p.haveGroups, warmed = f, c.FetchedAt, true, true
		}
	}
	if !warmed {
		return nil
	}

	s := p.build(p.jobs, p.groups)
	p.snap.Store(s)
	st := p.Status()
	st.WarmStarted = true
	p.fillCounts(&st, s)
	p.status.Store(st)
	p.log.Info("warm start from cache", zap.Int("jobs", s.Len()))
	return nil
}

type fetchResult struct {
	body []byte
	at   time.Time
	err  error
}

// RefreshOnce fetches both feeds concurrently. A feed that fails keeps its
// last good payload; the returned error joins the per-feed failures.
func (p *Poller) RefreshOnce(ctx context.Context, reqID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	started := p.clock.Now()
	st := p.Status()
	st.Running = true
	st.LastRunAt = started.Format(time.RFC3339)
	p.status.Store(st)

	var jobsRes, groupsRes fetchResult
	var g errgroup.Group
	g.Go(func() error {
		jobsRes = p.fetch(ctx, p.opts.Jobs)
		return jobsRes.err
	})
	g.Go(func() error {
		groupsRes = p.fetch(ctx, p.opts.Groups)
		return groupsRes.err
	})
	_ = g.Wait()

	var errs []error
	changed := false

	if jobsRes.err != nil {
		errs = append(errs, fmt.Errorf("jobs feed: %w", jobsRes.err))
	} else if jobsRes.body != nil {
		f, err := DecodeJobs(jobsRes.body, p.opts.Jobs.Format)
		if err != nil {
			errs = append(errs, fmt.Errorf("jobs feed: %w", err))
		} else {
			p.jobs, p.jobsAt, p.haveJobs, changed = f, jobsRes.at, true, true
			p.saveCache(ctx, KindJobs, jobsRes)
		}
	}

	if groupsRes.err != nil {
		errs = append(errs, fmt.Errorf("groups feed: %w", groupsRes.err))
	} else if groupsRes.body != nil {
		f, err := DecodeGroups(groupsRes.body, p.opts.Groups.Format)
		if err != nil {
			errs = append(errs, fmt.Errorf("groups feed: %w", err))
		} else {
			p.groups, p.groupsAt, p.haveGroups, changed = f, groupsRes.at, true, true
			p.saveCache(ctx, KindGroups, groupsRes)
		}
	}

	s := p.snap.Load()
	if changed {
		s = p.build(p.jobs, p.groups)
		p.snap.Store(s)
	}

	err := errors.Join(errs...)
	finished := p.clock.Now()

	st = p.Status()
	st.Running = false
	p.fillCounts(&st, s)
	if err != nil {
		st.LastError = err.Error()
		p.log.Warn("refresh failed", zap.String("request_id", reqID), zap.Error(err))
		p.hub.Publish(events.MakeEvent(reqID, events.TypeRefreshFailed, 1, map[string]any{
			"error": err.Error(),
		}))
	} else {
		st.LastError = ""
		st.LastOkAt = finished.Format(time.RFC3339)
		p.log.Info("refresh ok",
			zap.String("request_id", reqID),
			zap.Int("jobs", st.Jobs),
			zap.Int("host_groups", st.HostGroups),
			zap.Int("brand_groups", st.BrandGroups),
		)
	}
	if changed {
		p.hub.Publish(events.MakeEvent(reqID, events.TypeSnapshotRefreshed, 1, s.Meta()))
	}
	p.status.Store(st)
	p.record(ctx, started, finished, st, err)
	return err
}

// Run refreshes on the configured interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	p.mu.Lock()
	interval := p.opts.Interval
	p.mu.Unlock()

	scheduler.Every(ctx, p.clock, interval, p.log, "refresh", func(ctx context.Context) error {
		return p.RefreshOnce(ctx, events.NewRequestID())
	})
}

// fetch returns a nil body with no error when the source has no URL.
func (p *Poller) fetch(ctx context.Context, src Source) fetchResult {
	if src.URL == "" {
		return fetchResult{}
	}
	fctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	body, err := p.client.Get(fctx, src.URL)
	return fetchResult{body: body, at: p.clock.Now(), err: err}
}

func (p *Poller) saveCache(ctx context.Context, kind string, r fetchResult) {
	if p.cache == nil {
		return
	}
	if _, err := p.cache.SaveFeed(ctx, kind, r.body, r.at); err != nil {
		p.log.Warn("cache feed", zap.String("kind", kind), zap.Error(err))
	}
}

func (p *Poller) record(ctx context.Context, started, finished time.Time, st Status, err error) {
	if p.cache == nil {
		return
	}
	rec := store.RefreshRecord{
		StartedAt:   started,
		FinishedAt:  finished,
		OK:          err == nil,
		Jobs:        st.Jobs,
		HostGroups:  st.HostGroups,
		BrandGroups: st.BrandGroups,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if _, rerr := p.cache.RecordRefresh(ctx, rec); rerr != nil {
		p.log.Warn("record refresh", zap.Error(rerr))
	}
}

func (p *Poller) fillCounts(st *Status, s *snapshot.Snapshot) {
	m := s.Meta()
	st.Jobs = m.Jobs
	st.HostGroups = m.HostGroups
	st.BrandGroups = m.BrandGroups
	if p.haveJobs {
		st.JobsFetchedAt = p.jobsAt.Format(time.RFC3339)
	}
	if p.haveGroups {
		st.GroupsFetchedAt = p.groupsAt.Format(time.RFC3339)
	}
}
