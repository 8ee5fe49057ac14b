// Package dashboard owns the client-side dashboard snapshot: the cached
// stats, recent documents, and recent activity for the authenticated user,
// kept fresh by an interval poll and by push-channel triggers.
package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/davidayox123/acadrepo-tui/internal/api"
)

// DefaultRefreshInterval is the poll period when none is configured. The
// poll acts as a fallback while the push channel is connected.
const DefaultRefreshInterval = 60 * time.Second

// Fetcher is the subset of the API client the store needs.
type Fetcher interface {
	DashboardStats(ctx context.Context, scope api.Scope) (*api.StatsView, error)
	RecentDocuments(ctx context.Context, scope api.Scope) ([]api.RecentDocument, error)
	RecentActivity(ctx context.Context, scope api.Scope) ([]api.ActivityItem, error)
}

// ScopeSource supplies the query scope for the current identity.
type ScopeSource interface {
	Scope() api.Scope
}

// Notifier receives transient, user-facing failure notifications. 401
// failures are never forwarded here; they mean the session is being torn
// down and a toast would only add noise.
type Notifier interface {
	Notify(message string)
}

// Snapshot is the cached dashboard state handed to readers. Slices are
// shared with the store; readers must not mutate them.
type Snapshot struct {
	Stats           *api.StatsView
	RecentDocuments []api.RecentDocument
	RecentActivity  []api.ActivityItem
	LastUpdated     time.Time
	Loading         bool
	Err             string
}

// Store is the dashboard synchronization layer. All methods are safe for
// concurrent use; mutation is confined to the store itself.
type Store struct {
	fetcher  Fetcher
	scope    ScopeSource
	notifier Notifier
	logger   *zap.Logger
	interval time.Duration

	// group coalesces overlapping fetches of the same endpoint into one
	// underlying request.
	group singleflight.Group

	mu        sync.Mutex
	snap      Snapshot
	inflight  int
	live      bool
	stopCh    chan struct{}
	listeners map[chan struct{}]struct{}
}

// New creates a store. A zero interval selects DefaultRefreshInterval.
// notifier may be nil.
func New(fetcher Fetcher, scope ScopeSource, notifier Notifier, logger *zap.Logger, interval time.Duration) *Store {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Store{
		fetcher:   fetcher,
		scope:     scope,
		notifier:  notifier,
		logger:    logger,
		interval:  interval,
		listeners: make(map[chan struct{}]struct{}),
	}
}

// Snapshot returns a copy of the current dashboard state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe returns a channel pinged whenever the snapshot changes. The
// caller must Unsubscribe when done.
func (s *Store) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.listeners[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (s *Store) Unsubscribe(ch chan struct{}) {
	s.mu.Lock()
	delete(s.listeners, ch)
	s.mu.Unlock()
	close(ch)
}

// broadcast pings all listeners without blocking. Callers hold s.mu.
func (s *Store) broadcast() {
	for ch := range s.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// ClearError resets the error field. Idempotent.
func (s *Store) ClearError() {
	s.mu.Lock()
	if s.snap.Err != "" {
		s.snap.Err = ""
		s.broadcast()
	}
	s.mu.Unlock()
}

// Reset drops all cached data. Called on logout or role switch.
func (s *Store) Reset() {
	s.mu.Lock()
	s.snap = Snapshot{Loading: s.inflight > 0}
	s.broadcast()
	s.mu.Unlock()
}

// SetLive records whether the push channel is connected. While live, the
// poll timer only refreshes when the snapshot has gone stale.
func (s *Store) SetLive(live bool) {
	s.mu.Lock()
	s.live = live
	s.mu.Unlock()
}

// FetchStats refreshes the stats counters.
func (s *Store) FetchStats(ctx context.Context) error {
	s.begin()
	v, err, _ := s.group.Do("stats", func() (interface{}, error) {
		return s.fetcher.DashboardStats(ctx, s.scope.Scope())
	})
	if err != nil {
		s.fail("dashboard stats", err)
		return err
	}
	s.mu.Lock()
	s.snap.Stats = v.(*api.StatsView)
	s.applyOK()
	s.mu.Unlock()
	return nil
}

// FetchRecentDocuments refreshes the recent-documents list.
func (s *Store) FetchRecentDocuments(ctx context.Context) error {
	s.begin()
	v, err, _ := s.group.Do("recent-documents", func() (interface{}, error) {
		return s.fetcher.RecentDocuments(ctx, s.scope.Scope())
	})
	if err != nil {
		s.fail("recent documents", err)
		return err
	}
	s.mu.Lock()
	s.snap.RecentDocuments = v.([]api.RecentDocument)
	s.applyOK()
	s.mu.Unlock()
	return nil
}

// FetchRecentActivity refreshes the activity feed.
func (s *Store) FetchRecentActivity(ctx context.Context) error {
	s.begin()
	v, err, _ := s.group.Do("recent-activity", func() (interface{}, error) {
		return s.fetcher.RecentActivity(ctx, s.scope.Scope())
	})
	if err != nil {
		s.fail("recent activity", err)
		return err
	}
	s.mu.Lock()
	s.snap.RecentActivity = v.([]api.ActivityItem)
	s.applyOK()
	s.mu.Unlock()
	return nil
}

// FetchAll refreshes stats, recent documents, and recent activity
// concurrently and applies the three results as one update. If any fetch
// fails the snapshot keeps its previous data and only the error changes.
func (s *Store) FetchAll(ctx context.Context) error {
	s.begin()

	var (
		wg    sync.WaitGroup
		stats *api.StatsView
		docs  []api.RecentDocument
		acts  []api.ActivityItem
		errs  [3]error
	)
	scope := s.scope.Scope()

	wg.Add(3)
	go func() {
		defer wg.Done()
		v, err, _ := s.group.Do("stats", func() (interface{}, error) {
			return s.fetcher.DashboardStats(ctx, scope)
		})
		if err != nil {
			errs[0] = err
			return
		}
		stats = v.(*api.StatsView)
	}()
	go func() {
		defer wg.Done()
		v, err, _ := s.group.Do("recent-documents", func() (interface{}, error) {
			return s.fetcher.RecentDocuments(ctx, scope)
		})
		if err != nil {
			errs[1] = err
			return
		}
		docs = v.([]api.RecentDocument)
	}()
	go func() {
		defer wg.Done()
		v, err, _ := s.group.Do("recent-activity", func() (interface{}, error) {
			return s.fetcher.RecentActivity(ctx, scope)
		})
		if err != nil {
			errs[2] = err
			return
		}
		acts = v.([]api.ActivityItem)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			s.fail("dashboard data", err)
			return err
		}
	}

	s.mu.Lock()
	s.snap.Stats = stats
	s.snap.RecentDocuments = docs
	s.snap.RecentActivity = acts
	s.applyOK()
	s.mu.Unlock()
	return nil
}

// StartAutoRefresh launches the poll timer. Starting an already-running
// timer is a no-op; there is never more than one.
func (s *Store) StartAutoRefresh() {
	s.mu.Lock()
	if s.stopCh != nil {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.stopCh = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if s.shouldPoll() {
					if err := s.FetchAll(context.Background()); err != nil {
						s.logger.Debug("auto-refresh failed", zap.Error(err))
					}
				}
			}
		}
	}()
}

// StopAutoRefresh cancels the poll timer. Safe to call when not running.
func (s *Store) StopAutoRefresh() {
	s.mu.Lock()
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	s.mu.Unlock()
}

// shouldPoll reports whether a timer tick should trigger a refresh. While
// the push channel is live the poll only fires once the snapshot has gone
// stale past the refresh interval.
func (s *Store) shouldPoll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return true
	}
	return time.Since(s.snap.LastUpdated) >= s.interval
}

func (s *Store) begin() {
	s.mu.Lock()
	s.inflight++
	s.snap.Loading = true
	s.broadcast()
	s.mu.Unlock()
}

// applyOK finishes a successful fetch. Callers hold s.mu and have already
// written the fetched fields.
func (s *Store) applyOK() {
	s.inflight--
	s.snap.Loading = s.inflight > 0
	s.snap.Err = ""
	s.snap.LastUpdated = time.Now()
	s.broadcast()
}

// fail records a fetch failure. Previous snapshot data stays in place;
// only the error changes. 401s skip the user-facing notification since
// the session is already being torn down.
func (s *Store) fail(what string, err error) {
	msg := errorMessage(what, err)
	s.mu.Lock()
	s.inflight--
	s.snap.Loading = s.inflight > 0
	s.snap.Err = msg
	s.broadcast()
	s.mu.Unlock()

	s.logger.Warn("fetch failed", zap.String("what", what), zap.Error(err))
	if s.notifier != nil && !api.IsUnauthorized(err) {
		s.notifier.Notify(msg)
	}
}

// errorMessage reduces a fetch error to one human-readable string: the
// server's message when there is one, the transport error otherwise.
func errorMessage(what string, err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "failed to fetch " + what
}
